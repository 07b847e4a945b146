package core

import (
	"testing"

	"github.com/leap-fish/necs/router"

	"github.com/mothlight/swarmgate-mp/shared/messages"
	"github.com/mothlight/swarmgate-mp/shared/netconfig"
)

// Router callback registration is process-global in necs, so every test that
// constructs a Server resets the router on the way out.

// fakePeer records what the server sends it.
type fakePeer struct {
	id   string
	sent []any
}

func (f *fakePeer) Id() string { return f.id }

func (f *fakePeer) SendMessage(msg any) error {
	f.sent = append(f.sent, msg)
	return nil
}

func TestServerStagesCommandsOntoLoopThread(t *testing.T) {
	defer router.ResetRouter()

	s := NewServer(30, "", netconfig.DefaultTuning())

	if s.Ready() {
		t.Fatalf("no guest yet: broadcaster must see not-ready")
	}
	if s.PlayerCount() != 1 {
		t.Fatalf("host-only run should count 1 player, got %d", s.PlayerCount())
	}

	// Local fire is staged, not applied inline.
	s.FireLocal(600, 360, 1, 0)
	if got := len(s.sim.BuildSnapshot(0).PlayerBullets); got != 0 {
		t.Fatalf("command applied before ProcessCommands: %d bullets", got)
	}

	s.ProcessCommands()
	if got := len(s.sim.BuildSnapshot(0).PlayerBullets); got != 1 {
		t.Fatalf("expected 1 bullet after ProcessCommands, got %d", got)
	}

	// Draining leaves the queue empty.
	s.ProcessCommands()
	if got := len(s.sim.BuildSnapshot(0).PlayerBullets); got != 1 {
		t.Fatalf("commands ran twice: %d bullets", got)
	}
}

func TestJoinRejectsVersionMismatch(t *testing.T) {
	defer router.ResetRouter()
	s := NewServer(30, "1.2.0", netconfig.DefaultTuning())

	guest := &fakePeer{id: "g1"}
	s.onJoinRequest(guest, messages.JoinRequest{Version: "1.1.0", PlayerName: "late"})

	if len(guest.sent) != 1 {
		t.Fatalf("expected one reply, got %d", len(guest.sent))
	}
	rej, ok := guest.sent[0].(messages.JoinRejected)
	if !ok {
		t.Fatalf("expected JoinRejected, got %T", guest.sent[0])
	}
	if rej.Reason != "version mismatch" {
		t.Fatalf("wrong reject reason: %q", rej.Reason)
	}
	if s.Ready() || s.PlayerCount() != 1 {
		t.Fatalf("rejected guest must not take the seat")
	}
}

func TestJoinAcceptsAndActivatesGuestSlot(t *testing.T) {
	defer router.ResetRouter()
	s := NewServer(30, "1.2.0", netconfig.DefaultTuning())

	guest := &fakePeer{id: "g1"}
	s.onJoinRequest(guest, messages.JoinRequest{Version: "1.2.0", PlayerName: "p2"})

	if len(guest.sent) != 1 {
		t.Fatalf("expected one reply, got %d", len(guest.sent))
	}
	acc, ok := guest.sent[0].(messages.JoinAccepted)
	if !ok {
		t.Fatalf("expected JoinAccepted, got %T", guest.sent[0])
	}
	if acc.Slot != messages.SlotGuest || acc.TickRate != 30 {
		t.Fatalf("wrong accept payload: %+v", acc)
	}
	if !s.Ready() || s.PlayerCount() != 2 {
		t.Fatalf("joined guest should make the session ready")
	}

	// Slot activation goes through the staged command path.
	if s.sim.BuildSnapshot(0).P2.Active {
		t.Fatalf("guest slot activated before ProcessCommands")
	}
	s.ProcessCommands()
	if !s.sim.BuildSnapshot(0).P2.Active {
		t.Fatalf("guest slot not activated")
	}
}

func TestJoinRejectsSecondGuest(t *testing.T) {
	defer router.ResetRouter()
	s := NewServer(30, "", netconfig.DefaultTuning())

	first := &fakePeer{id: "g1"}
	second := &fakePeer{id: "g2"}
	s.onJoinRequest(first, messages.JoinRequest{PlayerName: "p2"})
	s.onJoinRequest(second, messages.JoinRequest{PlayerName: "p3"})

	if _, ok := first.sent[0].(messages.JoinAccepted); !ok {
		t.Fatalf("first guest should hold the seat, got %T", first.sent[0])
	}
	rej, ok := second.sent[0].(messages.JoinRejected)
	if !ok {
		t.Fatalf("expected JoinRejected for second guest, got %T", second.sent[0])
	}
	if rej.Reason != "session full" {
		t.Fatalf("wrong reject reason: %q", rej.Reason)
	}
	if s.PlayerCount() != 2 {
		t.Fatalf("second guest must not change the player count")
	}
}

func TestGuestDisconnectFreesTheSeat(t *testing.T) {
	defer router.ResetRouter()
	s := NewServer(30, "", netconfig.DefaultTuning())

	guest := &fakePeer{id: "g1"}
	s.onJoinRequest(guest, messages.JoinRequest{PlayerName: "p2"})
	s.ProcessCommands()

	s.onDisconnect(guest, nil)
	if s.Ready() || s.PlayerCount() != 1 {
		t.Fatalf("seat not freed on disconnect")
	}
	s.ProcessCommands()
	if s.sim.BuildSnapshot(0).P2.Active {
		t.Fatalf("guest slot should deactivate after disconnect")
	}

	// The freed seat is joinable again.
	next := &fakePeer{id: "g2"}
	s.onJoinRequest(next, messages.JoinRequest{PlayerName: "p3"})
	if _, ok := next.sent[0].(messages.JoinAccepted); !ok {
		t.Fatalf("rejoin after disconnect should be accepted, got %T", next.sent[0])
	}
}
