// Package credential holds the shared access code shown on the projector
// and handed to clients that validate against it.
package credential

import (
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// DefaultCode is the access code used when none is configured.
const DefaultCode = "T0-PiProjector"

// Service exposes the current access code. Rotating the code notifies
// every registered listener; readers always see the latest value.
type Service struct {
	code      string
	listeners []func(string)
	mu        sync.RWMutex

	// notifyMu orders listener delivery the same as the rotations.
	notifyMu sync.Mutex
}

// NewService creates a service holding code, or DefaultCode when empty.
func NewService(code string) *Service {
	code = strings.TrimSpace(code)
	if code == "" {
		code = DefaultCode
	}
	return &Service{code: code}
}

// Current returns the current access code.
func (s *Service) Current() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.code
}

// Rotate replaces the access code. Blank codes are ignored. Listeners
// see concurrent rotations in the order they were applied, so the last
// code delivered is always the current one. Listeners must not call Rotate.
func (s *Service) Rotate(code string) {
	code = strings.TrimSpace(code)
	if code == "" {
		return
	}

	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	if code == s.code {
		s.mu.Unlock()
		return
	}
	s.code = code
	listeners := append([]func(string){}, s.listeners...)
	s.mu.Unlock()

	logrus.Info("access code rotated")

	for _, fn := range listeners {
		fn(code)
	}
}

// OnRotate registers fn to be called with the new code after each rotation.
func (s *Service) OnRotate(fn func(code string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}
