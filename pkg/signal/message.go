package signal

import "github.com/pion/webrtc/v3"

// Message types sent by clients.
const (
	TypeJoinAsReceiver = "join-as-receiver"
	TypeJoin           = "join"
	TypeRequestCode    = "request-code"
	TypeOffer          = "offer"
	TypeAnswer         = "answer"
	TypeICECandidate   = "ice-candidate"
	TypeStopSharing    = "stop-sharing"
)

// Message types sent by the server. Offer, answer and ice-candidate are
// relayed under their client type.
const (
	TypeCodeUpdate     = "code-update"
	TypeSharingActive  = "sharing-active"
	TypeSharingStarted = "sharing-started"
	TypeSharingStopped = "sharing-stopped"
	TypeError          = "error"
)

// Error texts sent to clients.
const (
	ErrInvalidRoom    = "Invalid room"
	ErrAlreadySharing = "Another user is already sharing"
	ErrInvalidOffer   = "Invalid offer"
)

// SignalMessage represents a WebSocket signaling message
type SignalMessage struct {
	Type      string                     `json:"type"`                // see Type* constants
	Room      string                     `json:"room,omitempty"`      // target room
	SDP       *webrtc.SessionDescription `json:"sdp,omitempty"`       // offer/answer
	Candidate *webrtc.ICECandidateInit   `json:"candidate,omitempty"` // ICE candidate
	Code      string                     `json:"code,omitempty"`      // access code (code-update)
	Active    *bool                      `json:"active,omitempty"`    // sharing-active state
	Error     string                     `json:"error,omitempty"`     // error message
}

func codeUpdate(code string) SignalMessage {
	return SignalMessage{Type: TypeCodeUpdate, Code: code}
}

func sharingActive(active bool) SignalMessage {
	return SignalMessage{Type: TypeSharingActive, Active: &active}
}

func errorMessage(text string) SignalMessage {
	return SignalMessage{Type: TypeError, Error: text}
}
