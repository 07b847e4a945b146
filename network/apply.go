package network

import (
	"math"
	"time"

	"github.com/mothlight/swarmgate-mp/netsync"
	"github.com/mothlight/swarmgate-mp/shared/messages"
	"github.com/mothlight/swarmgate-mp/shared/netconfig"
)

// PlayerView is a player pose resolved for rendering. Local marks the slot
// this guest controls.
type PlayerView struct {
	Slot     int
	Local    bool
	X, Y     float64
	Rotation float64
	Health   int
	Active   bool
}

// EnemyView is an enemy resolved for rendering.
type EnemyView struct {
	ID     int64
	X, Y   float64
	Health int
	Kind   int
}

// BulletView is a projectile resolved for rendering. Optimistic marks a
// locally-predicted shot the host hasn't confirmed yet.
type BulletView struct {
	ID         int64
	X, Y       float64
	Rotation   float64
	Friendly   bool
	Optimistic bool
}

// GuestView is everything a renderer needs for one frame: plain data out,
// no engine types.
type GuestView struct {
	Players []PlayerView
	Enemies []EnemyView
	Bullets []BulletView

	Wave  int
	Score int

	IntermissionActive bool
	Countdown          *float64
	PendingWave        *int

	Latency float64 // smoothed one-way estimate, seconds
}

type enemyMeta struct {
	health int
	kind   int
}

type playerMeta struct {
	health int
	active bool
}

// GuestState reconstructs a renderable world from host snapshots. It owns the
// interpolation, prediction, latency and optimistic-fire state for the guest,
// and is only ever touched from the game-loop thread: the Client stages
// arriving snapshots, and Apply reads that slot at most once per frame, so no
// locking happens here.
type GuestState struct {
	localSlot int
	send      func(msg any) error
	now       func() time.Time

	players    *netsync.Interpolator // keyed by slot
	enemies    *netsync.Interpolator
	hostile    *netsync.Predictor
	friendly   *netsync.Predictor
	latency    *netsync.Estimator
	optimistic *netsync.OptimisticTracker

	lastTimestamp int64 // monotonicity guard: older snapshots are discarded
	lastView      time.Time

	enemyInfo     map[int64]enemyMeta
	knownHostile  map[int64]struct{}
	knownFriendly map[int64]struct{}
	playerInfo    map[int]playerMeta

	wave, score        int
	intermissionActive bool
	countdown          *float64
	pendingWave        *int
}

// NewGuestState wires a guest reconstruction layer. send pushes messages to
// the host (Client.SendFire wrapped, or a stub in tests); pass nil now for
// time.Now.
func NewGuestState(tuning netconfig.Tuning, localSlot int, send func(msg any) error, now func() time.Time) *GuestState {
	if now == nil {
		now = time.Now
	}
	return &GuestState{
		localSlot:     localSlot,
		send:          send,
		now:           now,
		players:       netsync.NewInterpolator(tuning.SmoothingRate, tuning.SnapThreshold),
		enemies:       netsync.NewInterpolator(tuning.SmoothingRate, tuning.SnapThreshold),
		hostile:       netsync.NewPredictor(now),
		friendly:      netsync.NewPredictor(now),
		latency:       netsync.NewEstimator(tuning.LatencyAlpha),
		optimistic:    netsync.NewOptimisticTracker(tuning.OptimisticExpiry, now),
		enemyInfo:     make(map[int64]enemyMeta),
		knownHostile:  make(map[int64]struct{}),
		knownFriendly: make(map[int64]struct{}),
		playerInfo:    make(map[int]playerMeta),
	}
}

// Fire sends a fire request to the host and immediately materializes the
// optimistic local copy. The returned bullet is already tracked; it will be
// retired when the authoritative echo arrives or the expiry window passes.
func (g *GuestState) Fire(x, y, dirX, dirY float64) netsync.OptimisticBullet {
	if g.send != nil {
		// Fire-and-forget; a dropped request just means this shot expires.
		_ = g.send(messages.FireRequest{
			X: x, Y: y,
			DirX: dirX, DirY: dirY,
			Timestamp: g.now().UnixMilli(),
		})
	}
	vx := dirX * netconfig.PlayerBulletSpeed
	vy := dirY * netconfig.PlayerBulletSpeed
	return g.optimistic.Spawn(x, y, vx, vy, math.Atan2(dirY, dirX))
}

// snapshotSource is the staging slot Apply drains once per frame. *Client is
// the production implementation.
type snapshotSource interface {
	latestSnapshot() (stagedSnapshot, bool)
}

var _ snapshotSource = (*Client)(nil)

// Apply is the guest's once-per-frame network pass: consume the latest staged
// snapshot if one arrived, then sweep expired optimistic shots. Expiry runs
// whether or not a snapshot came in; that is what bounds an unconfirmed shot
// when the host goes quiet.
func (g *GuestState) Apply(src snapshotSource) {
	if staged, ok := src.latestSnapshot(); ok {
		g.applySnapshot(&staged.snap, staged.receivedAt)
	}
	g.sweepOptimistic()
}

// sweepOptimistic drops optimistic shots past the expiry window. Runs every
// apply pass, snapshot or not.
func (g *GuestState) sweepOptimistic() {
	g.optimistic.Expire()
}

func (g *GuestState) applySnapshot(snap *messages.Snapshot, receivedAt time.Time) {
	// A snapshot older than what we've already applied carries no new
	// information; latest-wins, never replay.
	if snap.Timestamp < g.lastTimestamp {
		return
	}
	g.lastTimestamp = snap.Timestamp

	g.latency.Sample(snap.Timestamp, receivedAt)

	g.applyPlayer(messages.SlotHost, snap.P1)
	g.applyPlayer(messages.SlotGuest, snap.P2)

	// Enemies: create on first sight, retarget on every snapshot, purge on
	// absence. Absence is the deletion signal; a vanished id plus a new id at
	// the same spot stays two lifecycle events, never one moved entity.
	seen := make(map[int64]struct{}, len(snap.Enemies))
	for _, e := range snap.Enemies {
		if !e.Active {
			continue
		}
		seen[e.ID] = struct{}{}
		g.enemies.UpdateTarget(e.ID, e.X, e.Y, 0)
		g.enemyInfo[e.ID] = enemyMeta{health: e.Health, kind: e.Kind}
	}
	for id := range g.enemyInfo {
		if _, ok := seen[id]; !ok {
			g.enemies.Remove(id)
			delete(g.enemyInfo, id)
		}
	}

	// Hostile bullets: dead-reckoned, same lifecycle.
	seenHostile := make(map[int64]struct{}, len(snap.Bullets))
	for _, b := range snap.Bullets {
		seenHostile[b.ID] = struct{}{}
		g.hostile.Update(b.ID, b.X, b.Y, b.VX, b.VY, math.Atan2(b.VY, b.VX))
	}
	for id := range g.knownHostile {
		if _, ok := seenHostile[id]; !ok {
			g.hostile.Remove(id)
		}
	}
	g.knownHostile = seenHostile

	// Friendly bullets: every id we haven't seen before is a freshly
	// confirmed shot and retires the oldest outstanding optimistic copy.
	newConfirmed := 0
	seenFriendly := make(map[int64]struct{}, len(snap.PlayerBullets))
	for _, b := range snap.PlayerBullets {
		seenFriendly[b.ID] = struct{}{}
		if _, ok := g.knownFriendly[b.ID]; !ok {
			newConfirmed++
		}
		g.friendly.Update(b.ID, b.X, b.Y, b.VX, b.VY, b.Rotation)
	}
	for id := range g.knownFriendly {
		if _, ok := seenFriendly[id]; !ok {
			g.friendly.Remove(id)
		}
	}
	g.knownFriendly = seenFriendly
	if newConfirmed > 0 {
		g.optimistic.Reconcile(newConfirmed)
	}

	g.wave = snap.Wave
	g.score = snap.Score
	g.intermissionActive = snap.IntermissionActive
	g.countdown = snap.Countdown
	g.pendingWave = snap.PendingWave
}

// View resolves the current render state: interpolated players and enemies,
// dead-reckoned bullets, optimistic shots, and the run scalars. Called once
// per frame after Apply.
func (g *GuestState) View() GuestView {
	now := g.now()
	elapsed := 0.0
	if !g.lastView.IsZero() {
		elapsed = now.Sub(g.lastView).Seconds()
	}
	g.lastView = now

	view := GuestView{
		Wave:               g.wave,
		Score:              g.score,
		IntermissionActive: g.intermissionActive,
		Countdown:          g.countdown,
		PendingWave:        g.pendingWave,
		Latency:            g.latency.Estimate(),
	}

	for _, slot := range []int{messages.SlotHost, messages.SlotGuest} {
		meta, ok := g.playerInfo[slot]
		if !ok {
			continue
		}
		x, y, rot, ok := g.players.Position(int64(slot), elapsed)
		if !ok {
			continue
		}
		view.Players = append(view.Players, PlayerView{
			Slot:  slot,
			Local: slot == g.localSlot,
			X:     x, Y: y,
			Rotation: rot,
			Health:   meta.health,
			Active:   meta.active,
		})
	}

	for id, meta := range g.enemyInfo {
		x, y, _, ok := g.enemies.Position(id, elapsed)
		if !ok {
			continue
		}
		view.Enemies = append(view.Enemies, EnemyView{
			ID: id,
			X:  x, Y: y,
			Health: meta.health,
			Kind:   meta.kind,
		})
	}

	// Host-confirmed bullets are one-way-latency old on arrival; the estimate
	// is the extrapolation budget that projects them up to host-now.
	// Optimistic shots below are local and need no budget.
	budget := view.Latency
	for id := range g.knownHostile {
		x, y, rot, ok := g.hostile.Position(id, budget)
		if !ok {
			continue
		}
		view.Bullets = append(view.Bullets, BulletView{ID: id, X: x, Y: y, Rotation: rot})
	}
	for id := range g.knownFriendly {
		x, y, rot, ok := g.friendly.Position(id, budget)
		if !ok {
			continue
		}
		view.Bullets = append(view.Bullets, BulletView{ID: id, X: x, Y: y, Rotation: rot, Friendly: true})
	}
	for _, b := range g.optimistic.Active() {
		view.Bullets = append(view.Bullets, BulletView{
			ID: b.ID,
			X:  b.X, Y: b.Y,
			Rotation:   b.Rotation,
			Friendly:   true,
			Optimistic: true,
		})
	}

	return view
}

// Latency returns the current one-way estimate in seconds.
func (g *GuestState) Latency() float64 {
	return g.latency.Estimate()
}

func (g *GuestState) applyPlayer(slot int, p messages.PlayerState) {
	if !p.Active {
		// A deactivated slot keeps its last pose; downed players still render.
		if meta, ok := g.playerInfo[slot]; ok {
			meta.active = false
			meta.health = p.Health
			g.playerInfo[slot] = meta
		}
		return
	}
	g.players.UpdateTarget(int64(slot), p.X, p.Y, p.Rotation)
	g.playerInfo[slot] = playerMeta{health: p.Health, active: true}
}
