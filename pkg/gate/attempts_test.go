package gate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestUnknownIdentityIsNotLimited(t *testing.T) {
	store := NewAttemptStore(DefaultLimits(), newFakeClock())
	require.False(t, store.IsLimited("10.0.0.1"))
	require.Zero(t, store.Attempts("10.0.0.1"))
}

func TestLockoutAfterThresholdLastsForLockoutDuration(t *testing.T) {
	clock := newFakeClock()
	store := NewAttemptStore(DefaultLimits(), clock)

	for i := 0; i < DefaultMaxAttempts-1; i++ {
		require.False(t, store.RecordAttempt("10.0.0.1"))
		clock.Advance(time.Second)
	}
	require.False(t, store.IsLimited("10.0.0.1"))
	require.True(t, store.RecordAttempt("10.0.0.1"))
	require.True(t, store.IsLimited("10.0.0.1"))

	clock.Advance(DefaultLockout - time.Second)
	require.True(t, store.IsLimited("10.0.0.1"))

	clock.Advance(time.Second)
	require.False(t, store.IsLimited("10.0.0.1"))
	require.Zero(t, store.Attempts("10.0.0.1"))
	require.Empty(t, store.Lockouts())
}

func TestAttemptsOutsideWindowArePruned(t *testing.T) {
	clock := newFakeClock()
	store := NewAttemptStore(DefaultLimits(), clock)

	for i := 0; i < DefaultMaxAttempts-1; i++ {
		store.RecordAttempt("10.0.0.1")
	}
	clock.Advance(DefaultWindow)
	require.Zero(t, store.Attempts("10.0.0.1"))

	require.False(t, store.RecordAttempt("10.0.0.1"))
	require.False(t, store.IsLimited("10.0.0.1"))
	require.Equal(t, 1, store.Attempts("10.0.0.1"))
}

func TestIdentitiesAreIndependent(t *testing.T) {
	store := NewAttemptStore(DefaultLimits(), newFakeClock())
	for i := 0; i < DefaultMaxAttempts; i++ {
		store.RecordAttempt("10.0.0.1")
	}
	require.True(t, store.IsLimited("10.0.0.1"))
	require.False(t, store.IsLimited("10.0.0.2"))
}

func TestResetClearsLockout(t *testing.T) {
	store := NewAttemptStore(DefaultLimits(), newFakeClock())
	for i := 0; i < DefaultMaxAttempts; i++ {
		store.RecordAttempt("10.0.0.1")
	}
	require.Len(t, store.Lockouts(), 1)

	store.Reset("10.0.0.1")
	require.False(t, store.IsLimited("10.0.0.1"))
	require.Empty(t, store.Lockouts())
}

func TestLockoutsSortedByExpiry(t *testing.T) {
	clock := newFakeClock()
	store := NewAttemptStore(Limits{MaxAttempts: 1}, clock)

	store.RecordAttempt("10.0.0.2")
	clock.Advance(time.Minute)
	store.RecordAttempt("10.0.0.1")

	locked := store.Lockouts()
	require.Len(t, locked, 2)
	require.Equal(t, "10.0.0.2", locked[0].Identity)
	require.Equal(t, "10.0.0.1", locked[1].Identity)
}

func TestZeroLimitsUseDefaults(t *testing.T) {
	store := NewAttemptStore(Limits{}, nil)
	require.Equal(t, DefaultLimits(), store.Limits())
}
