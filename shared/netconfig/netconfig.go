// Package netconfig defines tunables and lightweight types shared between
// host and guest. It must have zero dependencies on any graphics library so
// the dedicated host binary stays headless.
package netconfig

import "time"

// Enemy kinds carried in snapshots. The guest only needs these to pick
// sprites; behavior is entirely host-side.
const (
	EnemyGrunt = iota
	EnemyCharger
	EnemySpitter
)

// Projectile muzzle speeds (px/s). Shared because the guest predicts its own
// shots with the same velocity the host will simulate them at.
const (
	PlayerBulletSpeed = 520.0
	EnemyBulletSpeed  = 260.0
)

// Tuning collects the empirical knobs of the sync layer. The snap threshold
// and optimistic expiry values are tied to the game's movement speeds and
// were tuned by eye, not derived; treat them as settings, not constants.
type Tuning struct {
	// SnapshotMinInterval caps the snapshot rate at the render rate.
	SnapshotMinInterval time.Duration
	// SnapshotMaxInterval bounds how far load adaptation can stretch sends.
	SnapshotMaxInterval time.Duration
	// AdaptEntityStep and AdaptStepDelay stretch the send interval by
	// AdaptStepDelay for every AdaptEntityStep serialized entities.
	AdaptEntityStep int
	AdaptStepDelay  time.Duration

	// SnapThreshold is the displacement (px) at or beyond which the
	// interpolator jumps instead of sliding.
	SnapThreshold float64
	// SmoothingRate is the exponential blend rate (1/s) toward the latest
	// interpolation target.
	SmoothingRate float64

	// OptimisticExpiry bounds how long an unconfirmed locally-predicted
	// bullet may live.
	OptimisticExpiry time.Duration

	// LatencyAlpha is the EWMA weight for new one-way latency samples.
	LatencyAlpha float64
}

// DefaultTuning returns the values the game ships with.
func DefaultTuning() Tuning {
	return Tuning{
		SnapshotMinInterval: 16 * time.Millisecond,
		SnapshotMaxInterval: 100 * time.Millisecond,
		AdaptEntityStep:     25,
		AdaptStepDelay:      8 * time.Millisecond,
		SnapThreshold:       200,
		SmoothingRate:       12,
		OptimisticExpiry:    300 * time.Millisecond,
		LatencyAlpha:        0.125,
	}
}
