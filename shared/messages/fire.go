package messages

// FireRequest is sent from guest to host when the guest fires. The host folds
// it into the simulation through the same spawn path as a local shot, so the
// resulting bullet gets a normal positive id and shows up in the next
// snapshot, where it reconciles against the guest's optimistic copy.
type FireRequest struct {
	X, Y       float64 // muzzle position
	DirX, DirY float64 // normalized aim direction
	Timestamp  int64   // guest clock, Unix ms
}
