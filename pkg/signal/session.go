package signal

import (
	"strings"
)

// DefaultRoom is the single room every participant joins.
const DefaultRoom = "lab"

// Role is the part a connection plays in the session.
type Role int

const (
	RoleNone Role = iota
	RoleSharer
	RoleReceiver
)

func (r Role) String() string {
	switch r {
	case RoleSharer:
		return "sharer"
	case RoleReceiver:
		return "receiver"
	default:
		return "none"
	}
}

// Conn is one signaling connection as seen by the router.
type Conn interface {
	// ID uniquely identifies the connection for its lifetime.
	ID() string

	// Send queues msg for delivery without blocking.
	Send(msg SignalMessage)

	// Closed reports whether the connection has gone. It must turn true
	// before the router is told about the disconnect.
	Closed() bool
}

// Session is the single shared session: a fixed room, the optional active
// sharer, the optional receiver and the room's members. It is not safe for
// concurrent use; the Router serialises access.
type Session struct {
	room     string
	sharer   Conn
	receiver Conn
	members  map[string]Conn
}

// NewSession creates an empty session for room, or DefaultRoom when blank.
func NewSession(room string) *Session {
	room = strings.TrimSpace(room)
	if room == "" {
		room = DefaultRoom
	}
	return &Session{
		room:    room,
		members: make(map[string]Conn),
	}
}

// Room returns the fixed room identifier.
func (s *Session) Room() string {
	return s.room
}

// RoleOf returns the role held by the connection with id. A connection that
// is both sharer and receiver reports RoleSharer.
func (s *Session) RoleOf(id string) Role {
	switch {
	case s.sharer != nil && s.sharer.ID() == id:
		return RoleSharer
	case s.receiver != nil && s.receiver.ID() == id:
		return RoleReceiver
	default:
		return RoleNone
	}
}

func (s *Session) isSharer(id string) bool {
	return s.sharer != nil && s.sharer.ID() == id
}

func (s *Session) isReceiver(id string) bool {
	return s.receiver != nil && s.receiver.ID() == id
}

func (s *Session) join(c Conn) {
	s.members[c.ID()] = c
}

func (s *Session) leave(id string) {
	delete(s.members, id)
}

// broadcast sends msg to every room member except the one with skipID.
func (s *Session) broadcast(msg SignalMessage, skipID string) {
	for id, member := range s.members {
		if id == skipID {
			continue
		}
		member.Send(msg)
	}
}

// Snapshot is a point-in-time view of the session.
type Snapshot struct {
	Room       string
	SharerID   string
	ReceiverID string
	Members    int
}

// Sharing reports whether a sharer holds the slot.
func (s Snapshot) Sharing() bool {
	return s.SharerID != ""
}

func (s *Session) snapshot() Snapshot {
	snap := Snapshot{Room: s.room, Members: len(s.members)}
	if s.sharer != nil {
		snap.SharerID = s.sharer.ID()
	}
	if s.receiver != nil {
		snap.ReceiverID = s.receiver.ID()
	}
	return snap
}
