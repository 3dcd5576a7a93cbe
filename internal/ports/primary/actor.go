// Package primary defines the primary ports (driving adapters) for the
// application: the service interfaces the CLI and HTTP transport call into,
// together with their request and view types.
package primary

// Actor is the authenticated identity attached to every request. It is all
// the governance engine ever learns about a caller; sessions and passwords
// stay in the identity layer.
type Actor struct {
	User string
	Role string
}

// TransitionRequest addresses one exact record version for a status
// transition.
type TransitionRequest struct {
	Actor    Actor
	RecordID string
	Version  int
}

// ReturnRequest is a return-for-changes transition; the note is required
// and anchors the attribution chain for the responding revision.
type ReturnRequest struct {
	Actor    Actor
	RecordID string
	Version  int
	Note     string
}
