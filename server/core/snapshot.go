package core

import (
	"github.com/yohamta/donburi"

	"github.com/mothlight/swarmgate-mp/shared/messages"
)

// BuildSnapshot serializes the full simulation state at the given host
// timestamp (Unix ms). Every networked entity is included every time;
// deletion is signaled by omission, so there is no despawn message to lose.
func (s *Sim) BuildSnapshot(timestamp int64) messages.Snapshot {
	snap := messages.Snapshot{
		Timestamp: timestamp,
		Wave:      s.wave,
		Score:     s.score,
	}

	snap.P1 = s.playerState(1)
	snap.P2 = s.playerState(2)

	enemyQuery.Each(s.world, func(entry *donburi.Entry) {
		pos := Position.Get(entry)
		enemy := Enemy.Get(entry)
		snap.Enemies = append(snap.Enemies, messages.EnemyState{
			ID: NetID.Get(entry).ID,
			X:  pos.X, Y: pos.Y,
			Health: enemy.Health,
			Kind:   enemy.Kind,
			Active: true,
		})
	})

	bulletQuery.Each(s.world, func(entry *donburi.Entry) {
		pos := Position.Get(entry)
		vel := Velocity.Get(entry)
		bullet := Bullet.Get(entry)
		if bullet.Hostile {
			snap.Bullets = append(snap.Bullets, messages.BulletState{
				ID: NetID.Get(entry).ID,
				X:  pos.X, Y: pos.Y,
				VX: vel.VX, VY: vel.VY,
			})
			return
		}
		snap.PlayerBullets = append(snap.PlayerBullets, messages.PlayerBulletState{
			ID: NetID.Get(entry).ID,
			X:  pos.X, Y: pos.Y,
			VX: vel.VX, VY: vel.VY,
			Rotation: bullet.Rotation,
		})
	})

	if s.intermission {
		countdown := s.countdown
		pending := s.pendingWave
		snap.IntermissionActive = true
		snap.Countdown = &countdown
		snap.PendingWave = &pending
	}

	return snap
}

func (s *Sim) playerState(slot int) messages.PlayerState {
	entry := s.world.Entry(s.players[slot])
	pos := Position.Get(entry)
	p := Player.Get(entry)
	return messages.PlayerState{
		X: pos.X, Y: pos.Y,
		Rotation: p.Rotation,
		Health:   p.Health,
		Active:   p.Active,
	}
}
