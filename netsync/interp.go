// Package netsync holds the guest-side reconstruction and host-side pacing
// primitives of the netplay layer: interpolation, dead reckoning, latency
// estimation, optimistic local prediction, and snapshot broadcast throttling.
// Everything here is plain data in, plain data out; nothing depends on the
// engine, the transport, or ambient globals.
package netsync

import (
	"math"

	"github.com/mothlight/swarmgate-mp/shared/gamemath"
)

// interpTarget tracks one entity's smoothing state: where it is rendered now
// and the latest authoritative sample it is converging toward.
type interpTarget struct {
	x, y     float64 // rendered position
	rotation float64 // rendered rotation

	targetX, targetY float64
	targetRot        float64

	snapped bool // target jumped past the snap threshold; next read teleports
}

// Interpolator smooths discrete snapshot positions into continuous motion for
// slow, persistent entities (enemies, the remote player). Fast projectiles go
// through Predictor instead; smoothing them toward stale targets lags
// proportionally to their speed.
type Interpolator struct {
	smoothingRate float64
	snapThreshold float64
	targets       map[int64]*interpTarget
}

// NewInterpolator returns an interpolator with the given exponential blend
// rate (1/s) and hard-snap displacement threshold (px).
func NewInterpolator(smoothingRate, snapThreshold float64) *Interpolator {
	return &Interpolator{
		smoothingRate: smoothingRate,
		snapThreshold: snapThreshold,
		targets:       make(map[int64]*interpTarget),
	}
}

// UpdateTarget records a new authoritative sample for id. It moves nothing by
// itself; motion happens in Position. A first sighting renders at the sample
// directly, and a displacement at or beyond the snap threshold marks the
// entity to teleport on the next read (spawns, respawns, large corrections)
// rather than slide across the map.
func (in *Interpolator) UpdateTarget(id int64, x, y, rotation float64) {
	t, ok := in.targets[id]
	if !ok {
		in.targets[id] = &interpTarget{
			x: x, y: y, rotation: rotation,
			targetX: x, targetY: y, targetRot: rotation,
		}
		return
	}

	t.targetX, t.targetY = x, y
	t.targetRot = rotation
	if gamemath.Dist(t.x, t.y, x, y) >= in.snapThreshold {
		t.snapped = true
	}
}

// Position advances id's rendered pose toward its latest target given elapsed
// seconds since the previous read, and returns it. The blend is exponential
// (1 - e^-rate·dt), so convergence is monotonic and never overshoots
// regardless of frame pacing. Returns ok=false for an unknown id.
func (in *Interpolator) Position(id int64, elapsed float64) (x, y, rotation float64, ok bool) {
	t, ok := in.targets[id]
	if !ok {
		return 0, 0, 0, false
	}

	if t.snapped {
		t.x, t.y, t.rotation = t.targetX, t.targetY, t.targetRot
		t.snapped = false
		return t.x, t.y, t.rotation, true
	}

	blend := 1 - math.Exp(-in.smoothingRate*elapsed)
	t.x += (t.targetX - t.x) * blend
	t.y += (t.targetY - t.y) * blend
	t.rotation += gamemath.WrapAngle(t.targetRot-t.rotation) * blend
	return t.x, t.y, t.rotation, true
}

// Remove purges id's tracking state. Called when the id disappears from a
// snapshot; absence is the deletion signal.
func (in *Interpolator) Remove(id int64) {
	delete(in.targets, id)
}

// Tracked reports whether id has interpolation state.
func (in *Interpolator) Tracked(id int64) bool {
	_, ok := in.targets[id]
	return ok
}
