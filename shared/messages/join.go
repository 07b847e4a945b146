package messages

// Player slots. The host simulation owns slot 1; the single guest gets slot 2.
const (
	SlotHost  = 1
	SlotGuest = 2
)

// JoinRequest is sent by a guest after connecting to request joining the run.
type JoinRequest struct {
	Version    string
	PlayerName string
}

// JoinAccepted is sent by the host when a guest's join request is accepted.
type JoinAccepted struct {
	Slot     int
	TickRate int
}

// JoinRejected is sent by the host when a guest's join request is rejected.
type JoinRejected struct {
	Reason string
}
