package main

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
	"github.com/tomaslejdung/pigate/pkg/api"
	"github.com/tomaslejdung/pigate/pkg/settings"
)

func newTestModel(t *testing.T) model {
	t.Helper()
	s := settings.DefaultSettings()
	s.StaticDir = t.TempDir()
	return newModel(api.New(s))
}

func press(m model, key string) (model, tea.Cmd) {
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)})
	return next.(model), cmd
}

func TestDashboardShowsCode(t *testing.T) {
	m := newTestModel(t)

	view := m.View()
	require.Contains(t, view, "T0-PiProjector")
	require.Contains(t, view, "[IDLE]")
	require.Contains(t, view, "no receiver")
	require.Contains(t, view, "/youwi11nevergetme")
}

func TestDashboardRotatesCode(t *testing.T) {
	m := newTestModel(t)

	m, _ = press(m, "r")
	require.NotEqual(t, "T0-PiProjector", m.code)
	require.Equal(t, m.srv.Credentials().Current(), m.code)
	require.Contains(t, m.View(), m.code)
}

func TestDashboardClearsLockouts(t *testing.T) {
	m := newTestModel(t)
	store := m.srv.Gate().Store()
	for i := 0; i < store.Limits().MaxAttempts; i++ {
		store.RecordAttempt("10.0.0.9")
	}
	require.True(t, store.IsLimited("10.0.0.9"))

	next, _ := m.Update(tickMsg(time.Now()))
	m = next.(model)
	require.Len(t, m.lockouts, 1)
	require.Contains(t, m.View(), "10.0.0.9")

	m, _ = press(m, "u")
	require.Empty(t, m.lockouts)
	require.False(t, store.IsLimited("10.0.0.9"))
	require.Equal(t, "Cleared 1 lockout(s)", m.status)
}

func TestDashboardQuit(t *testing.T) {
	m := newTestModel(t)

	_, cmd := press(m, "q")
	require.NotNil(t, cmd)
	require.IsType(t, tea.QuitMsg{}, cmd())
}

func TestFormatDuration(t *testing.T) {
	require.Equal(t, "23h59m", formatDuration(24*time.Hour-30*time.Second))
	require.Equal(t, "4m05s", formatDuration(4*time.Minute+5*time.Second))
	require.Equal(t, "0m00s", formatDuration(-time.Second))
}
