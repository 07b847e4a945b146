package core

import (
	"log"
	"sync"
	"time"

	"github.com/leap-fish/necs/router"
	"github.com/leap-fish/necs/transports"

	"github.com/mothlight/swarmgate-mp/netsync"
	"github.com/mothlight/swarmgate-mp/shared/messages"
	"github.com/mothlight/swarmgate-mp/shared/netconfig"
)

// peer is the slice of a connected network client the join handshake and
// command handlers need. *router.NetworkClient implements it.
type peer interface {
	Id() string
	SendMessage(msg any) error
}

// Server owns the authoritative simulation and the single guest connection.
// Router callbacks run on necs goroutines; they never touch the sim directly.
// Instead they stage commands which the game loop drains at tick start, so
// all simulation mutation stays on the loop thread.
type Server struct {
	sim       *Sim
	loop      *GameLoop
	transport *transports.WsServerTransport

	version  string
	tickRate int

	broadcaster *netsync.Broadcaster

	mu       sync.Mutex
	guest    peer
	joined   bool
	commands []func(*Sim)
}

// NewServer creates a host for one guest.
func NewServer(tickRate int, version string, tuning netconfig.Tuning) *Server {
	s := &Server{
		sim:      NewSim(time.Now().UnixNano()),
		version:  version,
		tickRate: tickRate,
	}
	s.loop = NewGameLoop(s, tickRate)
	s.broadcaster = netsync.NewBroadcaster(tuning, s, nil)
	s.setupRouterCallbacks()
	return s
}

// Start runs the game loop and serves the WebSocket transport on port.
// Blocks until the transport stops.
func (s *Server) Start(port uint) error {
	go s.loop.Run()

	s.transport = transports.NewWsServerTransport(port, "", nil)
	return s.transport.Start()
}

// Stop shuts the game loop down.
func (s *Server) Stop() {
	s.loop.Stop()
}

// Ready implements netsync.Sender: a snapshot has somewhere to go once the
// guest has joined.
func (s *Server) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.joined && s.guest != nil
}

// Send implements netsync.Sender.
func (s *Server) Send(msg any) error {
	s.mu.Lock()
	guest := s.guest
	s.mu.Unlock()
	if guest == nil {
		return nil
	}
	return guest.SendMessage(msg)
}

// FireLocal folds a host-local fire input into the simulation through the
// same staged path guest requests take.
func (s *Server) FireLocal(x, y, dirX, dirY float64) {
	s.enqueue(func(sim *Sim) {
		sim.FireBullet(messages.SlotHost, x, y, dirX, dirY)
	})
}

// SetLocalPose updates the host player's pose from the local input layer.
func (s *Server) SetLocalPose(x, y, rotation float64) {
	s.enqueue(func(sim *Sim) {
		sim.SetPlayerPose(messages.SlotHost, x, y, rotation)
	})
}

func (s *Server) setupRouterCallbacks() {
	router.OnConnect(func(client *router.NetworkClient) {
		log.Printf("[server] client connected: %s", client.Id())
	})

	router.On(func(client *router.NetworkClient, req messages.JoinRequest) {
		s.onJoinRequest(client, req)
	})

	router.On(func(client *router.NetworkClient, req messages.FireRequest) {
		s.onFireRequest(client, req)
	})

	router.OnDisconnect(func(client *router.NetworkClient, err error) {
		s.onDisconnect(client, err)
	})

	router.OnError(func(client *router.NetworkClient, err error) {
		log.Printf("[server] client error: %v", err)
	})
}

func (s *Server) onJoinRequest(client peer, req messages.JoinRequest) {
	if s.version != "" && req.Version != s.version {
		log.Printf("[server] rejecting %s: version %q", client.Id(), req.Version)
		if err := client.SendMessage(messages.JoinRejected{Reason: "version mismatch"}); err != nil {
			log.Printf("[server] send reject: %v", err)
		}
		return
	}

	s.mu.Lock()
	if s.guest != nil {
		s.mu.Unlock()
		log.Printf("[server] rejecting %s: session full", client.Id())
		if err := client.SendMessage(messages.JoinRejected{Reason: "session full"}); err != nil {
			log.Printf("[server] send reject: %v", err)
		}
		return
	}
	s.guest = client
	s.joined = true
	s.mu.Unlock()

	s.enqueue(func(sim *Sim) {
		sim.ActivatePlayer(messages.SlotGuest)
	})

	log.Printf("[server] guest %q joined as slot %d", req.PlayerName, messages.SlotGuest)
	if err := client.SendMessage(messages.JoinAccepted{
		Slot:     messages.SlotGuest,
		TickRate: s.tickRate,
	}); err != nil {
		log.Printf("[server] send accept: %v", err)
	}
}

func (s *Server) onFireRequest(client peer, req messages.FireRequest) {
	s.mu.Lock()
	isGuest := client == s.guest
	s.mu.Unlock()
	if !isGuest {
		return
	}
	s.enqueue(func(sim *Sim) {
		sim.FireBullet(messages.SlotGuest, req.X, req.Y, req.DirX, req.DirY)
	})
}

func (s *Server) onDisconnect(client peer, err error) {
	s.mu.Lock()
	wasGuest := client == s.guest
	if wasGuest {
		s.guest = nil
		s.joined = false
	}
	s.mu.Unlock()

	if !wasGuest {
		return
	}
	if err != nil {
		log.Printf("[server] guest disconnected: %v", err)
	} else {
		log.Printf("[server] guest disconnected")
	}
	s.enqueue(func(sim *Sim) {
		sim.DeactivatePlayer(messages.SlotGuest)
	})
}

func (s *Server) enqueue(cmd func(*Sim)) {
	s.mu.Lock()
	s.commands = append(s.commands, cmd)
	s.mu.Unlock()
}

// ProcessCommands drains staged network commands into the sim. Called by the
// game loop at tick start, on the loop thread.
func (s *Server) ProcessCommands() {
	s.mu.Lock()
	cmds := s.commands
	s.commands = nil
	s.mu.Unlock()

	for _, cmd := range cmds {
		cmd(s.sim)
	}
}

// PlayerCount returns how many peers are in the run (host included).
func (s *Server) PlayerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.joined {
		return 2
	}
	return 1
}
