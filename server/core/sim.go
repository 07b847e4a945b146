package core

import (
	"math"
	"math/rand"

	"github.com/solarlune/resolv"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/filter"

	"github.com/mothlight/swarmgate-mp/shared/gamemath"
	"github.com/mothlight/swarmgate-mp/shared/netconfig"
)

// Arena dimensions and spawn layout.
const (
	ArenaWidth  = 1280.0
	ArenaHeight = 720.0

	spawnRadius      = 300.0
	intermissionSecs = 3.0
	bulletTTL        = 2.0
	contactCooldown  = 0.8
	contactDamage    = 10
	bulletDamage     = 25
)

// Collision tags.
const (
	tagEnemy  = "enemy"
	tagPlayer = "player"
)

type PositionData struct {
	X, Y float64
}

type VelocityData struct {
	VX, VY float64
}

// NetIDData carries the host-assigned wire id. Dense, stable for the
// entity's lifetime, never reused within a run.
type NetIDData struct {
	ID int64
}

type PlayerData struct {
	Slot     int
	Health   int
	Rotation float64
	Active   bool
}

type EnemyData struct {
	Kind         int
	Health       int
	FireCooldown float64
	TouchTimer   float64
}

type BulletData struct {
	Hostile   bool
	OwnerSlot int
	Rotation  float64
	TTL       float64
}

var (
	Position = donburi.NewComponentType[PositionData]()
	Velocity = donburi.NewComponentType[VelocityData]()
	NetID    = donburi.NewComponentType[NetIDData]()
	Player   = donburi.NewComponentType[PlayerData]()
	Enemy    = donburi.NewComponentType[EnemyData]()
	Bullet   = donburi.NewComponentType[BulletData]()
)

var (
	enemyQuery  = donburi.NewQuery(filter.Contains(Position, Velocity, NetID, Enemy))
	bulletQuery = donburi.NewQuery(filter.Contains(Position, Velocity, NetID, Bullet))
)

// Sim is the authoritative wave-survival simulation. All mutation happens on
// the game-loop thread; the server stages network commands and drains them at
// tick start.
type Sim struct {
	world donburi.World
	space *resolv.Space
	objs  map[donburi.Entity]*resolv.Object
	ents  map[*resolv.Object]donburi.Entity

	players [3]donburi.Entity // indexed by slot, 0 unused

	nextID int64

	wave         int
	score        int
	intermission bool
	countdown    float64
	pendingWave  int

	rng *rand.Rand
}

// NewSim builds an empty arena with both player entities present; slot 1
// starts active (the host always plays), slot 2 activates when a guest joins.
func NewSim(seed int64) *Sim {
	s := &Sim{
		world:  donburi.NewWorld(),
		space:  resolv.NewSpace(int(ArenaWidth), int(ArenaHeight), 16, 16),
		objs:   make(map[donburi.Entity]*resolv.Object),
		ents:   make(map[*resolv.Object]donburi.Entity),
		nextID: 1,
		rng:    rand.New(rand.NewSource(seed)),
	}

	s.players[1] = s.spawnPlayer(1, ArenaWidth/2-60, ArenaHeight/2, true)
	s.players[2] = s.spawnPlayer(2, ArenaWidth/2+60, ArenaHeight/2, false)

	// First wave starts after a short intermission, same as between waves.
	s.intermission = true
	s.countdown = intermissionSecs
	s.pendingWave = 1

	return s
}

func (s *Sim) spawnPlayer(slot int, x, y float64, active bool) donburi.Entity {
	entity := s.world.Create(Position, Player)
	entry := s.world.Entry(entity)
	Position.Set(entry, &PositionData{X: x, Y: y})
	Player.Set(entry, &PlayerData{Slot: slot, Health: 100, Active: active})

	obj := resolv.NewObject(x-12, y-12, 24, 24, tagPlayer)
	obj.SetShape(resolv.NewRectangle(0, 0, 24, 24))
	s.space.Add(obj)
	s.objs[entity] = obj
	s.ents[obj] = entity
	return entity
}

// ActivatePlayer brings a slot into play (guest joined).
func (s *Sim) ActivatePlayer(slot int) {
	if slot < 1 || slot > 2 {
		return
	}
	entry := s.world.Entry(s.players[slot])
	p := Player.Get(entry)
	p.Active = true
	p.Health = 100
}

// DeactivatePlayer takes a slot out of play (guest left).
func (s *Sim) DeactivatePlayer(slot int) {
	if slot < 1 || slot > 2 {
		return
	}
	p := Player.Get(s.world.Entry(s.players[slot]))
	p.Active = false
}

// SetPlayerPose applies a pose update for a slot. The host's local input
// layer and the guest's movement messages both land here.
func (s *Sim) SetPlayerPose(slot int, x, y, rotation float64) {
	if slot < 1 || slot > 2 {
		return
	}
	entry := s.world.Entry(s.players[slot])
	pos := Position.Get(entry)
	pos.X = gamemath.Clamp(x, 0, ArenaWidth)
	pos.Y = gamemath.Clamp(y, 0, ArenaHeight)
	Player.Get(entry).Rotation = rotation

	if obj, ok := s.objs[s.players[slot]]; ok {
		obj.X = pos.X - obj.W/2
		obj.Y = pos.Y - obj.H/2
		obj.Update()
	}
}

// FireBullet spawns a friendly bullet for slot. This is the one and only
// spawn path for player shots: host-local fire and guest fire requests both
// come through here, so a guest shot gets an ordinary positive id and appears
// in the next snapshot like any other entity.
func (s *Sim) FireBullet(slot int, x, y, dirX, dirY float64) int64 {
	dirX, dirY = gamemath.Normalize(dirX, dirY)
	if dirX == 0 && dirY == 0 {
		dirX = 1
	}
	return s.spawnBullet(x, y,
		dirX*netconfig.PlayerBulletSpeed, dirY*netconfig.PlayerBulletSpeed,
		false, slot)
}

func (s *Sim) spawnBullet(x, y, vx, vy float64, hostile bool, ownerSlot int) int64 {
	entity := s.world.Create(Position, Velocity, NetID, Bullet)
	entry := s.world.Entry(entity)
	id := s.nextID
	s.nextID++
	Position.Set(entry, &PositionData{X: x, Y: y})
	Velocity.Set(entry, &VelocityData{VX: vx, VY: vy})
	NetID.Set(entry, &NetIDData{ID: id})
	Bullet.Set(entry, &BulletData{
		Hostile:   hostile,
		OwnerSlot: ownerSlot,
		Rotation:  math.Atan2(vy, vx),
		TTL:       bulletTTL,
	})

	obj := resolv.NewObject(x-3, y-3, 6, 6)
	obj.SetShape(resolv.NewRectangle(0, 0, 6, 6))
	s.space.Add(obj)
	s.objs[entity] = obj
	s.ents[obj] = entity
	return id
}

func (s *Sim) spawnEnemy(kind int, x, y float64) {
	entity := s.world.Create(Position, Velocity, NetID, Enemy)
	entry := s.world.Entry(entity)
	NetID.Set(entry, &NetIDData{ID: s.nextID})
	s.nextID++
	Position.Set(entry, &PositionData{X: x, Y: y})
	Velocity.Set(entry, &VelocityData{})
	Enemy.Set(entry, &EnemyData{
		Kind:   kind,
		Health: enemyHealth(kind),
	})

	obj := resolv.NewObject(x-14, y-14, 28, 28, tagEnemy)
	obj.SetShape(resolv.NewRectangle(0, 0, 28, 28))
	s.space.Add(obj)
	s.objs[entity] = obj
	s.ents[obj] = entity
}

func enemyHealth(kind int) int {
	switch kind {
	case netconfig.EnemyCharger:
		return 30
	case netconfig.EnemySpitter:
		return 40
	default:
		return 50
	}
}

func enemySpeed(kind int) float64 {
	switch kind {
	case netconfig.EnemyCharger:
		return 160
	case netconfig.EnemySpitter:
		return 60
	default:
		return 90
	}
}

// Step advances the simulation by dt seconds: wave progression, enemy AI,
// projectile motion and hits.
func (s *Sim) Step(dt float64) {
	s.stepWaves(dt)
	s.stepEnemies(dt)
	s.stepBullets(dt)
}

func (s *Sim) stepWaves(dt float64) {
	if s.intermission {
		s.countdown -= dt
		if s.countdown <= 0 {
			s.wave = s.pendingWave
			s.intermission = false
			s.spawnWave(s.wave)
		}
		return
	}
	if enemyQuery.Count(s.world) == 0 {
		s.intermission = true
		s.countdown = intermissionSecs
		s.pendingWave = s.wave + 1
	}
}

func (s *Sim) spawnWave(wave int) {
	count := 4 + 2*wave
	cx, cy := ArenaWidth/2, ArenaHeight/2
	for i := 0; i < count; i++ {
		angle := s.rng.Float64() * 2 * math.Pi
		x := cx + math.Cos(angle)*spawnRadius
		y := cy + math.Sin(angle)*spawnRadius
		kind := netconfig.EnemyGrunt
		switch {
		case wave >= 3 && i%4 == 0:
			kind = netconfig.EnemySpitter
		case wave >= 2 && i%3 == 0:
			kind = netconfig.EnemyCharger
		}
		s.spawnEnemy(kind, x, y)
	}
}

func (s *Sim) stepEnemies(dt float64) {
	// Spawns are deferred past the query walk; creating entities moves
	// archetypes under the iterator.
	type shot struct{ x, y, vx, vy float64 }
	var shots []shot

	enemyQuery.Each(s.world, func(entry *donburi.Entry) {
		pos := Position.Get(entry)
		vel := Velocity.Get(entry)
		enemy := Enemy.Get(entry)

		tx, ty, found := s.nearestActivePlayer(pos.X, pos.Y)
		if found {
			dirX, dirY := gamemath.Normalize(tx-pos.X, ty-pos.Y)
			speed := enemySpeed(enemy.Kind)
			vel.VX = dirX * speed
			vel.VY = dirY * speed

			if enemy.Kind == netconfig.EnemySpitter {
				enemy.FireCooldown -= dt
				if enemy.FireCooldown <= 0 {
					shots = append(shots, shot{
						x: pos.X, y: pos.Y,
						vx: dirX * netconfig.EnemyBulletSpeed,
						vy: dirY * netconfig.EnemyBulletSpeed,
					})
					enemy.FireCooldown = 2.5
				}
			}
		} else {
			vel.VX, vel.VY = 0, 0
		}

		dx := vel.VX * dt
		dy := vel.VY * dt
		pos.X += dx
		pos.Y += dy

		obj := s.objs[entry.Entity()]
		obj.X = pos.X - obj.W/2
		obj.Y = pos.Y - obj.H/2
		obj.Update()

		// Contact damage, rate-limited per enemy.
		enemy.TouchTimer -= dt
		if enemy.TouchTimer <= 0 {
			if check := obj.Check(dx, dy, tagPlayer); check != nil {
				for _, hit := range check.ObjectsByTags(tagPlayer) {
					target, ok := s.ents[hit]
					if !ok {
						continue
					}
					p := Player.Get(s.world.Entry(target))
					if !p.Active {
						continue
					}
					p.Health -= contactDamage
					if p.Health <= 0 {
						p.Health = 0
						p.Active = false
					}
					enemy.TouchTimer = contactCooldown
					break
				}
			}
		}
	})

	for _, sh := range shots {
		s.spawnBullet(sh.x, sh.y, sh.vx, sh.vy, true, 0)
	}
}

func (s *Sim) stepBullets(dt float64) {
	var dead []donburi.Entity

	bulletQuery.Each(s.world, func(entry *donburi.Entry) {
		pos := Position.Get(entry)
		vel := Velocity.Get(entry)
		bullet := Bullet.Get(entry)

		bullet.TTL -= dt
		if bullet.TTL <= 0 {
			dead = append(dead, entry.Entity())
			return
		}

		dx := vel.VX * dt
		dy := vel.VY * dt
		obj := s.objs[entry.Entity()]

		targetTag := tagEnemy
		if bullet.Hostile {
			targetTag = tagPlayer
		}
		if check := obj.Check(dx, dy, targetTag); check != nil {
			for _, hit := range check.ObjectsByTags(targetTag) {
				target, ok := s.ents[hit]
				if !ok {
					continue
				}
				if s.damage(target, bullet.Hostile) {
					dead = append(dead, entry.Entity())
					return
				}
			}
		}

		pos.X += dx
		pos.Y += dy
		obj.X = pos.X - obj.W/2
		obj.Y = pos.Y - obj.H/2
		obj.Update()

		if pos.X < 0 || pos.X > ArenaWidth || pos.Y < 0 || pos.Y > ArenaHeight {
			dead = append(dead, entry.Entity())
		}
	})

	for _, entity := range dead {
		s.removeEntity(entity)
	}
}

// damage applies a bullet hit and reports whether the bullet connected.
func (s *Sim) damage(target donburi.Entity, hostile bool) bool {
	entry := s.world.Entry(target)
	if hostile {
		p := Player.Get(entry)
		if !p.Active {
			return false
		}
		p.Health -= bulletDamage
		if p.Health <= 0 {
			p.Health = 0
			p.Active = false
		}
		return true
	}

	enemy := Enemy.Get(entry)
	enemy.Health -= bulletDamage
	if enemy.Health <= 0 {
		s.score += 10 * (enemy.Kind + 1)
		s.removeEntity(target)
	}
	return true
}

func (s *Sim) removeEntity(entity donburi.Entity) {
	if !s.world.Valid(entity) {
		return
	}
	if obj, ok := s.objs[entity]; ok {
		s.space.Remove(obj)
		delete(s.ents, obj)
		delete(s.objs, entity)
	}
	s.world.Remove(entity)
}

func (s *Sim) nearestActivePlayer(x, y float64) (px, py float64, found bool) {
	best := math.MaxFloat64
	for slot := 1; slot <= 2; slot++ {
		entry := s.world.Entry(s.players[slot])
		if !Player.Get(entry).Active {
			continue
		}
		pos := Position.Get(entry)
		d := gamemath.Dist(x, y, pos.X, pos.Y)
		if d < best {
			best = d
			px, py = pos.X, pos.Y
			found = true
		}
	}
	return px, py, found
}

// EntityCount returns how many entities the next snapshot would serialize.
func (s *Sim) EntityCount() int {
	return 2 + enemyQuery.Count(s.world) + bulletQuery.Count(s.world)
}

// Wave and Score expose run state for logging and tests.
func (s *Sim) Wave() int  { return s.wave }
func (s *Sim) Score() int { return s.score }
