package gate

import (
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Default limits applied to credential checks.
const (
	DefaultWindow      = 20 * time.Second
	DefaultMaxAttempts = 6
	DefaultLockout     = 24 * time.Hour
)

// Limits configures the attempt window and lockout.
type Limits struct {
	Window      time.Duration
	MaxAttempts int
	Lockout     time.Duration
}

// DefaultLimits returns the limits used when nothing is configured.
func DefaultLimits() Limits {
	return Limits{
		Window:      DefaultWindow,
		MaxAttempts: DefaultMaxAttempts,
		Lockout:     DefaultLockout,
	}
}

// withDefaults replaces non-positive fields with their defaults.
func (l Limits) withDefaults() Limits {
	d := DefaultLimits()
	if l.Window <= 0 {
		l.Window = d.Window
	}
	if l.MaxAttempts <= 0 {
		l.MaxAttempts = d.MaxAttempts
	}
	if l.Lockout <= 0 {
		l.Lockout = d.Lockout
	}
	return l
}

// attemptRecord tracks recent attempts for one client identity.
// A zero lockedUntil means no lockout is set.
type attemptRecord struct {
	attempts    []time.Time
	lockedUntil time.Time
}

// prune drops attempts that fell out of the window as of now.
func (r *attemptRecord) prune(now time.Time, window time.Duration) {
	kept := r.attempts[:0]
	for _, ts := range r.attempts {
		if now.Sub(ts) < window {
			kept = append(kept, ts)
		}
	}
	r.attempts = kept
}

// Lockout describes an identity that is currently locked out.
type Lockout struct {
	Identity string
	Until    time.Time
}

// AttemptStore records failed credential attempts per client identity
// and decides when an identity is rate limited. Records are created on the
// first recorded attempt and live for the lifetime of the process.
type AttemptStore struct {
	limits  Limits
	clock   Clock
	records map[string]*attemptRecord
	mu      sync.Mutex
}

// NewAttemptStore creates an empty store. A nil clock uses the wall clock.
func NewAttemptStore(limits Limits, clock Clock) *AttemptStore {
	if clock == nil {
		clock = RealClock()
	}
	return &AttemptStore{
		limits:  limits.withDefaults(),
		clock:   clock,
		records: make(map[string]*attemptRecord),
	}
}

// Limits returns the effective limits.
func (s *AttemptStore) Limits() Limits {
	return s.limits
}

// RecordAttempt appends an attempt for identity and starts a lockout once
// the number of attempts inside the window reaches the threshold. It
// reports whether identity is locked out after the attempt.
func (s *AttemptStore) RecordAttempt(identity string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, exists := s.records[identity]
	if !exists {
		record = &attemptRecord{}
		s.records[identity] = record
	}

	now := s.clock.Now()
	record.prune(now, s.limits.Window)
	record.attempts = append(record.attempts, now)

	if len(record.attempts) >= s.limits.MaxAttempts {
		newlyLocked := !record.lockedUntil.After(now)
		record.lockedUntil = now.Add(s.limits.Lockout)
		if newlyLocked {
			logrus.WithFields(logrus.Fields{
				"ip":    identity,
				"until": record.lockedUntil.Format(time.RFC3339),
			}).Warn("SECURITY: identity locked out")
		}
		return true
	}
	return false
}

// IsLimited reports whether identity may not attempt a credential check.
// An active lockout wins over the attempt window; an expired lockout clears
// the record before the window is evaluated.
func (s *AttemptStore) IsLimited(identity string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, exists := s.records[identity]
	if !exists {
		return false
	}

	now := s.clock.Now()
	if !record.lockedUntil.IsZero() {
		if now.Before(record.lockedUntil) {
			return true
		}
		record.lockedUntil = time.Time{}
		record.attempts = nil
	}

	record.prune(now, s.limits.Window)
	return len(record.attempts) >= s.limits.MaxAttempts
}

// Reset clears all attempts and any lockout for identity.
func (s *AttemptStore) Reset(identity string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if record, exists := s.records[identity]; exists {
		record.attempts = nil
		record.lockedUntil = time.Time{}
	}
}

// Attempts returns the number of attempts for identity still inside the window.
func (s *AttemptStore) Attempts(identity string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, exists := s.records[identity]
	if !exists {
		return 0
	}
	record.prune(s.clock.Now(), s.limits.Window)
	return len(record.attempts)
}

// Lockouts returns the identities whose lockout has not yet expired,
// soonest expiry first.
func (s *AttemptStore) Lockouts() []Lockout {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	var locked []Lockout
	for identity, record := range s.records {
		if record.lockedUntil.After(now) {
			locked = append(locked, Lockout{Identity: identity, Until: record.lockedUntil})
		}
	}
	sort.Slice(locked, func(i, j int) bool {
		return locked[i].Until.Before(locked[j].Until)
	})
	return locked
}
