package netsync

import "time"

// OptimisticBullet is a guest-fired projectile shown before host
// confirmation. IDs are negative and locally unique so they can never collide
// with host-assigned positive ids; Optimistic marks the speculative origin
// explicitly so consumers don't have to test the sign.
type OptimisticBullet struct {
	ID         int64
	X, Y       float64
	VX, VY     float64
	Rotation   float64
	SpawnedAt  time.Time
	Optimistic bool
}

// OptimisticTracker owns the guest's locally-predicted shots. Lifecycle per
// shot: spawned on fire input, then either reconciled (a newly confirmed host
// bullet id arrives and retires the oldest outstanding shot) or expired (no
// confirmation within the expiry window). Expiry bounds the worst case where
// the host never confirms: a lost request costs a brief visual blip, never a
// permanently orphaned local entity.
type OptimisticTracker struct {
	now     func() time.Time
	expiry  time.Duration
	nextID  int64
	pending []*OptimisticBullet // oldest first
}

// NewOptimisticTracker returns a tracker with the given confirmation window;
// pass nil for time.Now.
func NewOptimisticTracker(expiry time.Duration, now func() time.Time) *OptimisticTracker {
	if now == nil {
		now = time.Now
	}
	return &OptimisticTracker{
		now:    now,
		expiry: expiry,
		nextID: -1,
	}
}

// Spawn materializes a local shot immediately and returns it. IDs decrease
// monotonically from -1.
func (o *OptimisticTracker) Spawn(x, y, vx, vy, rotation float64) OptimisticBullet {
	b := &OptimisticBullet{
		ID: o.nextID,
		X:  x, Y: y,
		VX: vx, VY: vy,
		Rotation:   rotation,
		SpawnedAt:  o.now(),
		Optimistic: true,
	}
	o.nextID--
	o.pending = append(o.pending, b)
	return *b
}

// Reconcile retires up to n outstanding shots, oldest first (one per
// newly-confirmed bullet id seen in the latest snapshot) and returns the
// retired ids. A reconciled shot disappears the same frame its authoritative
// twin appears, so the two are never rendered together.
func (o *OptimisticTracker) Reconcile(n int) []int64 {
	if n > len(o.pending) {
		n = len(o.pending)
	}
	if n == 0 {
		return nil
	}
	retired := make([]int64, n)
	for i := 0; i < n; i++ {
		retired[i] = o.pending[i].ID
	}
	o.pending = o.pending[n:]
	return retired
}

// Expire deactivates every shot older than the expiry window, confirmed or
// not, and returns the dropped ids. Called once per guest apply pass.
func (o *OptimisticTracker) Expire() []int64 {
	now := o.now()
	var dropped []int64
	kept := o.pending[:0]
	for _, b := range o.pending {
		if now.Sub(b.SpawnedAt) >= o.expiry {
			dropped = append(dropped, b.ID)
			continue
		}
		kept = append(kept, b)
	}
	o.pending = kept
	return dropped
}

// Active returns the live shots with positions dead-reckoned to the current
// clock reading.
func (o *OptimisticTracker) Active() []OptimisticBullet {
	if len(o.pending) == 0 {
		return nil
	}
	now := o.now()
	out := make([]OptimisticBullet, len(o.pending))
	for i, b := range o.pending {
		dt := now.Sub(b.SpawnedAt).Seconds()
		out[i] = *b
		out[i].X += b.VX * dt
		out[i].Y += b.VY * dt
	}
	return out
}

// Outstanding returns how many shots await confirmation.
func (o *OptimisticTracker) Outstanding() int {
	return len(o.pending)
}
