package core

import (
	"log"
	"time"

	"github.com/mothlight/swarmgate-mp/shared/messages"
)

type GameLoop struct {
	server   *Server
	tickRate int
	stopChan chan struct{}
}

func NewGameLoop(server *Server, tickRate int) *GameLoop {
	return &GameLoop{
		server:   server,
		tickRate: tickRate,
		stopChan: make(chan struct{}),
	}
}

func (g *GameLoop) Run() {
	ticker := time.NewTicker(time.Second / time.Duration(g.tickRate))
	defer ticker.Stop()

	log.Printf("[server] game loop started at %d ticks/second", g.tickRate)

	dt := 1.0 / float64(g.tickRate)
	for {
		select {
		case <-g.stopChan:
			log.Println("[server] game loop stopped")
			return
		case <-ticker.C:
			g.tick(dt)
		}
	}
}

func (g *GameLoop) Stop() {
	close(g.stopChan)
}

func (g *GameLoop) tick(dt float64) {
	s := g.server
	s.ProcessCommands()
	s.sim.Step(dt)

	// Broadcast decision is the broadcaster's; building the snapshot only
	// happens when it actually sends.
	s.broadcaster.Broadcast(s.sim.EntityCount(), func() messages.Snapshot {
		return s.sim.BuildSnapshot(time.Now().UnixMilli())
	})
}
