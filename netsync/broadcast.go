package netsync

import (
	"time"

	"github.com/mothlight/swarmgate-mp/shared/messages"
	"github.com/mothlight/swarmgate-mp/shared/netconfig"
)

// Sender is the transport seam the broadcaster pushes snapshots through.
// Sends are fire-and-forget: no queueing, no retry, no delivery tracking. A
// stale snapshot is useless once superseded.
type Sender interface {
	// Ready reports whether a peer is connected and joined.
	Ready() bool
	// Send serializes and writes one message to the peer.
	Send(msg any) error
}

// Broadcaster decides whether the current simulation tick should emit a
// snapshot. It throttles to a minimum interval (the render rate) and
// stretches the effective interval as the serialized entity count grows,
// trading positional freshness for bandwidth under load.
type Broadcaster struct {
	tuning   netconfig.Tuning
	sender   Sender
	now      func() time.Time
	lastSent time.Time
}

// NewBroadcaster returns a broadcaster pushing through sender; pass nil now
// for time.Now.
func NewBroadcaster(tuning netconfig.Tuning, sender Sender, now func() time.Time) *Broadcaster {
	if now == nil {
		now = time.Now
	}
	return &Broadcaster{
		tuning: tuning,
		sender: sender,
		now:    now,
	}
}

// Interval returns the effective send interval for the given serialized
// entity count.
func (b *Broadcaster) Interval(entityCount int) time.Duration {
	iv := b.tuning.SnapshotMinInterval
	if b.tuning.AdaptEntityStep > 0 {
		iv += time.Duration(entityCount/b.tuning.AdaptEntityStep) * b.tuning.AdaptStepDelay
	}
	if iv > b.tuning.SnapshotMaxInterval {
		iv = b.tuning.SnapshotMaxInterval
	}
	return iv
}

// Broadcast is called once per simulation tick with the current entity count
// and a builder for the full snapshot. It is a no-op when the transport has
// no joined peer or the interval since the last send hasn't elapsed; the
// builder only runs when a send actually happens. Send failures are dropped;
// the next tick tries again with fresher data. Returns whether a snapshot
// went out.
func (b *Broadcaster) Broadcast(entityCount int, build func() messages.Snapshot) bool {
	if b.sender == nil || !b.sender.Ready() {
		return false
	}
	now := b.now()
	if !b.lastSent.IsZero() && now.Sub(b.lastSent) < b.Interval(entityCount) {
		return false
	}
	if err := b.sender.Send(build()); err != nil {
		return false
	}
	b.lastSent = now
	return true
}
