// Package gate decides whether a client may enter the session by checking a
// submitted access code, throttling repeated failures per client identity.
package gate

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Reason explains a check result.
type Reason int

const (
	ReasonGranted Reason = iota
	ReasonIncorrectCode
	ReasonRateLimited
)

func (r Reason) String() string {
	switch r {
	case ReasonGranted:
		return "granted"
	case ReasonIncorrectCode:
		return "incorrect code"
	case ReasonRateLimited:
		return "rate limited"
	default:
		return "unknown"
	}
}

// Result is the outcome of a credential check.
type Result struct {
	Admitted bool
	Reason   Reason
}

// Gate admits or denies credential checks using an AttemptStore.
type Gate struct {
	store *AttemptStore
}

// New creates a gate over store.
func New(store *AttemptStore) *Gate {
	return &Gate{store: store}
}

// Store returns the underlying attempt store.
func (g *Gate) Store() *AttemptStore {
	return g.store
}

// CheckCode compares submitted against expected case-insensitively.
// A limited identity is denied without evaluating the code or recording
// an attempt, so a correct code cannot lift an active lockout.
func (g *Gate) CheckCode(identity, submitted, expected string) Result {
	log := logrus.WithField("ip", identity)

	if g.store.IsLimited(identity) {
		log.Warn("SECURITY: rate limited")
		return Result{Admitted: false, Reason: ReasonRateLimited}
	}

	if strings.EqualFold(submitted, expected) {
		g.store.Reset(identity)
		log.Info("AUTH: valid code")
		return Result{Admitted: true, Reason: ReasonGranted}
	}

	log.Info("AUTH: invalid code")
	if g.store.RecordAttempt(identity) {
		// The attempt that trips the lockout already reports it.
		return Result{Admitted: false, Reason: ReasonRateLimited}
	}
	return Result{Admitted: false, Reason: ReasonIncorrectCode}
}

// Message returns the user-facing text for a result. Denials never reveal
// why a code was wrong.
func (g *Gate) Message(r Result) string {
	switch r.Reason {
	case ReasonGranted:
		return "Access granted"
	case ReasonRateLimited:
		return fmt.Sprintf("Too many attempts. Wait %s.", humanDuration(g.store.Limits().Lockout))
	default:
		return "Incorrect access code. Check projector screen."
	}
}

func humanDuration(d time.Duration) string {
	switch {
	case d >= time.Hour && d%time.Hour == 0:
		return plural(int(d/time.Hour), "hour")
	case d >= time.Minute && d%time.Minute == 0:
		return plural(int(d/time.Minute), "minute")
	default:
		return plural(int(d.Round(time.Second)/time.Second), "second")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
