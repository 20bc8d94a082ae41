package gate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const secret = "T0-PiProjector"

func newTestGate() (*Gate, *fakeClock) {
	clock := newFakeClock()
	return New(NewAttemptStore(DefaultLimits(), clock)), clock
}

func TestCorrectCodeAnyCaseIsAdmitted(t *testing.T) {
	g, _ := newTestGate()
	g.CheckCode("1.2.3.4", "wrong", secret)

	res := g.CheckCode("1.2.3.4", "t0-piprojector", secret)
	require.True(t, res.Admitted)
	require.Equal(t, ReasonGranted, res.Reason)
	require.Equal(t, "Access granted", g.Message(res))
	require.Zero(t, g.Store().Attempts("1.2.3.4"))
}

func TestIncorrectCodeIsRecorded(t *testing.T) {
	g, _ := newTestGate()

	res := g.CheckCode("1.2.3.4", "nope", secret)
	require.False(t, res.Admitted)
	require.Equal(t, ReasonIncorrectCode, res.Reason)
	require.Equal(t, "Incorrect access code. Check projector screen.", g.Message(res))
	require.Equal(t, 1, g.Store().Attempts("1.2.3.4"))
}

func TestSuccessResetsNearLockout(t *testing.T) {
	g, _ := newTestGate()

	for i := 0; i < DefaultMaxAttempts-1; i++ {
		require.Equal(t, ReasonIncorrectCode, g.CheckCode("1.2.3.4", "wrong", secret).Reason)
	}
	require.True(t, g.CheckCode("1.2.3.4", secret, secret).Admitted)
	require.Zero(t, g.Store().Attempts("1.2.3.4"))

	res := g.CheckCode("1.2.3.4", "wrong", secret)
	require.Equal(t, ReasonIncorrectCode, res.Reason)
	require.False(t, g.Store().IsLimited("1.2.3.4"))
}

func TestLockoutOverridesWindowExpiry(t *testing.T) {
	g, clock := newTestGate()

	var res Result
	for i := 0; i < DefaultMaxAttempts; i++ {
		res = g.CheckCode("1.2.3.4", "wrong", secret)
		clock.Advance(3 * time.Second)
	}
	require.False(t, res.Admitted)
	require.Equal(t, ReasonRateLimited, res.Reason)
	require.Equal(t, "Too many attempts. Wait 24 hours.", g.Message(res))

	// Half the attempts have left the window by now; the lockout still holds.
	clock.Advance(10 * time.Second)
	require.Less(t, g.Store().Attempts("1.2.3.4"), DefaultMaxAttempts)
	res = g.CheckCode("1.2.3.4", "wrong", secret)
	require.Equal(t, ReasonRateLimited, res.Reason)
}

func TestCorrectCodeDuringLockoutIsDenied(t *testing.T) {
	g, clock := newTestGate()
	for i := 0; i < DefaultMaxAttempts; i++ {
		g.CheckCode("1.2.3.4", "wrong", secret)
	}

	res := g.CheckCode("1.2.3.4", secret, secret)
	require.False(t, res.Admitted)
	require.Equal(t, ReasonRateLimited, res.Reason)
	require.Equal(t, DefaultMaxAttempts, g.Store().Attempts("1.2.3.4"))
	require.Len(t, g.Store().Lockouts(), 1)

	clock.Advance(DefaultLockout)
	require.True(t, g.CheckCode("1.2.3.4", secret, secret).Admitted)
}

func TestMessageUsesConfiguredLockout(t *testing.T) {
	g := New(NewAttemptStore(Limits{Lockout: 5 * time.Minute}, newFakeClock()))
	require.Equal(t, "Too many attempts. Wait 5 minutes.", g.Message(Result{Reason: ReasonRateLimited}))
}
