package packet

import "fmt"

// SessionState represents the session's current protocol phase.
type SessionState int

const (
	StateConnected     SessionState = iota // TCP accepted, not yet logged in
	StateAuthenticated                     // logged in, in the lobby
	StateInGame                            // playing
	StateDisconnecting
)

func (s SessionState) String() string {
	switch s {
	case StateConnected:
		return "Connected"
	case StateAuthenticated:
		return "Authenticated"
	case StateInGame:
		return "InGame"
	case StateDisconnecting:
		return "Disconnecting"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}
