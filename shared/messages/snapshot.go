package messages

// PlayerState is one player's pose inside a snapshot, keyed by slot.
type PlayerState struct {
	X, Y     float64
	Rotation float64
	Health   int
	Active   bool
}

// EnemyState is one enemy record. ID is host-assigned and stable for the
// enemy's lifetime; absence from a later snapshot means the enemy is gone.
type EnemyState struct {
	ID     int64
	X, Y   float64
	Health int
	Kind   int
	Active bool
}

// BulletState is a hostile projectile record. Velocity is carried so the
// guest can dead-reckon between snapshots.
type BulletState struct {
	ID     int64
	X, Y   float64
	VX, VY float64
}

// PlayerBulletState is a friendly projectile record.
type PlayerBulletState struct {
	ID       int64
	X, Y     float64
	VX, VY   float64
	Rotation float64
}

// Snapshot is the full networked game state at one host tick. It is the only
// host->guest state message; the guest always treats the most recently
// received snapshot as ground truth and never replays a backlog.
type Snapshot struct {
	Timestamp int64 // host clock, Unix ms

	P1, P2 PlayerState

	Enemies       []EnemyState
	Bullets       []BulletState
	PlayerBullets []PlayerBulletState

	Wave  int
	Score int

	IntermissionActive bool
	Countdown          *float64 // seconds remaining, nil outside intermission
	PendingWave        *int     // wave about to start, nil outside intermission
}
