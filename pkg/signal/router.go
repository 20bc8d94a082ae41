package signal

import (
	"sync"

	"github.com/pion/webrtc/v3"
	"github.com/sirupsen/logrus"
)

// CodeSource provides the current access code.
type CodeSource interface {
	Current() string
}

// Router owns the session and applies connection lifecycle and negotiation
// events to it. Every event runs under one lock together with the messages
// it emits, so observers never see a half-applied transition.
type Router struct {
	session *Session
	codes   CodeSource
	mu      sync.Mutex
}

// NewRouter creates a router for session that hands out codes from codes.
func NewRouter(session *Session, codes CodeSource) *Router {
	return &Router{
		session: session,
		codes:   codes,
	}
}

// Room returns the fixed room identifier.
func (r *Router) Room() string {
	return r.session.Room()
}

// Snapshot returns the current session state.
func (r *Router) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session.snapshot()
}

// RoleOf returns the role currently held by the connection with id.
func (r *Router) RoleOf(id string) Role {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session.RoleOf(id)
}

// Handle dispatches a client message.
func (r *Router) Handle(c Conn, msg SignalMessage) {
	switch msg.Type {
	case TypeJoinAsReceiver:
		r.JoinAsReceiver(c)
	case TypeJoin:
		r.Join(c, msg.Room)
	case TypeRequestCode:
		r.RequestCode(c)
	case TypeOffer:
		r.Offer(c, msg)
	case TypeAnswer:
		r.Answer(c, msg)
	case TypeICECandidate:
		r.ICECandidate(c, msg)
	case TypeStopSharing:
		r.StopSharing(c)
	default:
		logrus.WithField("conn", c.ID()).Debugf("Unknown message type: %s", msg.Type)
	}
}

// JoinAsReceiver registers c as the receiver, replacing any previous one.
// The receiver immediately gets the access code and, if someone is sharing,
// the sharing state.
func (r *Router) JoinAsReceiver(c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.departed(c) {
		return
	}

	log := logrus.WithField("conn", c.ID())
	if prev := r.session.receiver; prev != nil && prev.ID() != c.ID() {
		log.WithField("previous", prev.ID()).Info("Receiver replaced")
	}

	r.session.receiver = c
	r.session.join(c)
	log.Info("Receiver registered")

	c.Send(codeUpdate(r.codes.Current()))
	if r.session.sharer != nil {
		c.Send(sharingActive(true))
	}
}

// Join adds c to the room. Any room other than the fixed one is rejected.
func (r *Router) Join(c Conn, room string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.departed(c) {
		return
	}

	if room != r.session.Room() {
		c.Send(errorMessage(ErrInvalidRoom))
		return
	}

	r.session.join(c)
	logrus.WithFields(logrus.Fields{"conn": c.ID(), "room": room}).Info("Client joined room")
}

// RequestCode re-sends the access code, but only to the registered receiver.
func (r *Router) RequestCode(c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.departed(c) {
		return
	}

	if !r.session.isReceiver(c.ID()) {
		return
	}
	c.Send(codeUpdate(r.codes.Current()))
}

// PushCode sends code to the registered receiver, if any. It is wired to
// credential rotation.
func (r *Router) PushCode(code string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.session.receiver != nil {
		r.session.receiver.Send(codeUpdate(code))
	}
}

// Offer makes c the active sharer unless another connection holds the
// slot, and relays the offer to the receiver.
func (r *Router) Offer(c Conn, msg SignalMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.departed(c) {
		return
	}

	if msg.Room != r.session.Room() {
		return
	}

	log := logrus.WithField("conn", c.ID())
	if !validDescription(msg.SDP, webrtc.SDPTypeOffer) {
		log.Warn("Rejected malformed offer")
		c.Send(errorMessage(ErrInvalidOffer))
		return
	}

	if r.session.sharer != nil && r.session.sharer.ID() != c.ID() {
		log.WithField("sharer", r.session.sharer.ID()).Info("Rejected offer, already sharing")
		c.Send(errorMessage(ErrAlreadySharing))
		return
	}

	r.session.sharer = c
	log.Info("Offer received, sharing active")

	if receiver := r.session.receiver; receiver != nil {
		receiver.Send(SignalMessage{Type: TypeOffer, Room: r.session.Room(), SDP: msg.SDP})
		receiver.Send(SignalMessage{Type: TypeSharingStarted})
	}

	r.session.broadcast(sharingActive(true), "")
}

// Answer relays a receiver's answer to the active sharer. It is dropped
// when nobody is sharing.
func (r *Router) Answer(c Conn, msg SignalMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.departed(c) {
		return
	}

	log := logrus.WithField("conn", c.ID())
	if r.session.sharer == nil {
		log.Debug("Answer dropped, nobody sharing")
		return
	}
	if !validDescription(msg.SDP, webrtc.SDPTypeAnswer) && !validDescription(msg.SDP, webrtc.SDPTypePranswer) {
		log.Warn("Dropped malformed answer")
		return
	}

	log.Debug("Answer relayed to sharer")
	r.session.sharer.Send(SignalMessage{Type: TypeAnswer, Room: msg.Room, SDP: msg.SDP})
}

// ICECandidate relays a candidate to every other member of the room.
func (r *Router) ICECandidate(c Conn, msg SignalMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.departed(c) {
		return
	}

	if msg.Room != r.session.Room() || msg.Candidate == nil {
		return
	}

	logrus.WithField("conn", c.ID()).Debug("ICE candidate relayed")
	r.session.broadcast(SignalMessage{Type: TypeICECandidate, Room: msg.Room, Candidate: msg.Candidate}, c.ID())
}

// StopSharing releases the sharer slot when c holds it.
func (r *Router) StopSharing(c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.departed(c) {
		return
	}

	if !r.session.isSharer(c.ID()) {
		return
	}
	logrus.WithField("conn", c.ID()).Info("Client stopped sharing")
	r.releaseSharer()
}

// Disconnect reclaims every role c held and removes it from the room.
func (r *Router) Disconnect(c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	log := logrus.WithField("conn", c.ID())
	r.session.leave(c.ID())

	if r.session.isSharer(c.ID()) {
		log.Info("Sharer disconnected")
		r.releaseSharer()
	}
	if r.session.isReceiver(c.ID()) {
		r.session.receiver = nil
		log.Info("Receiver disconnected")
	}
}

// departed reports whether c disconnected before its event got the lock.
// A closed connection must not claim a slot after its disconnect ran.
// Callers hold mu.
func (r *Router) departed(c Conn) bool {
	if !c.Closed() {
		return false
	}
	logrus.WithField("conn", c.ID()).Debug("Event from closed connection dropped")
	return true
}

// releaseSharer clears the sharer slot and tells the room. Callers hold mu.
func (r *Router) releaseSharer() {
	r.session.sharer = nil
	r.session.broadcast(SignalMessage{Type: TypeSharingStopped}, "")
	if r.session.receiver != nil {
		r.session.receiver.Send(sharingActive(false))
	}
}

// validDescription reports whether sd is a parseable description of type want.
func validDescription(sd *webrtc.SessionDescription, want webrtc.SDPType) bool {
	if sd == nil || sd.Type != want || sd.SDP == "" {
		return false
	}
	_, err := sd.Unmarshal()
	return err == nil
}
