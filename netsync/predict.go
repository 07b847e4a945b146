package netsync

import "time"

// predictState is the last authoritative sample for one projectile.
type predictState struct {
	x, y     float64
	vx, vy   float64
	rotation float64
	sampled  time.Time
}

// Predictor dead-reckons fast, short-lived projectiles between snapshots:
// position is always advanced from the last known sample as pos + vel·dt,
// never smoothed toward a target. As long as velocity is constant between
// samples, which holds for straight-flying bullets, this shows zero perceived lag.
type Predictor struct {
	now    func() time.Time
	states map[int64]*predictState
}

// NewPredictor returns a predictor reading time from now; pass nil for
// time.Now. Tests inject a fake clock.
func NewPredictor(now func() time.Time) *Predictor {
	if now == nil {
		now = time.Now
	}
	return &Predictor{
		now:    now,
		states: make(map[int64]*predictState),
	}
}

// Update stores the latest authoritative sample for id, overwriting any prior
// state. No blending: projectiles need accurate forward simulation, not
// smoothing.
func (p *Predictor) Update(id int64, x, y, vx, vy, rotation float64) {
	s, ok := p.states[id]
	if !ok {
		s = &predictState{}
		p.states[id] = s
	}
	s.x, s.y = x, y
	s.vx, s.vy = vx, vy
	s.rotation = rotation
	s.sampled = p.now()
}

// Position extrapolates id from its last sample to the current clock reading
// plus budget seconds. The budget is the estimated one-way latency: a sample
// is already that old when it arrives, so projecting past the local clock by
// the estimate lines the projectile up with where the host has it now.
// Returns ok=false for an unknown id.
func (p *Predictor) Position(id int64, budget float64) (x, y, rotation float64, ok bool) {
	s, ok := p.states[id]
	if !ok {
		return 0, 0, 0, false
	}
	dt := p.now().Sub(s.sampled).Seconds() + budget
	return s.x + s.vx*dt, s.y + s.vy*dt, s.rotation, true
}

// Remove purges id's prediction state.
func (p *Predictor) Remove(id int64) {
	delete(p.states, id)
}

// Tracked reports whether id has prediction state.
func (p *Predictor) Tracked(id int64) bool {
	_, ok := p.states[id]
	return ok
}
