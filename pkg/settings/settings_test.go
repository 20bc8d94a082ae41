package settings

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	m, err := NewManager(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)

	s, err := m.Load()
	require.NoError(t, err)
	require.Equal(t, DefaultSettings(), s)
}

func TestLoadKeepsDefaultsForMissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: 8443\nlockout: 5m\nmax_attempts: -1\n"), 0600))

	m, err := NewManager(path)
	require.NoError(t, err)
	s, err := m.Load()
	require.NoError(t, err)

	require.Equal(t, 8443, s.Port)
	require.Equal(t, 5*time.Minute, s.Lockout)
	require.Equal(t, 6, s.MaxAttempts)
	require.Equal(t, "lab", s.Room)
	require.Equal(t, 20*time.Second, s.RateWindow)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: [\n"), 0600))

	m, err := NewManager(path)
	require.NoError(t, err)
	s, err := m.Load()
	require.Error(t, err)
	require.Equal(t, DefaultSettings(), s)
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	m, err := NewManager(path)
	require.NoError(t, err)

	want := DefaultSettings()
	want.AccessCode = "tiger-42"
	want.CertFile = "cert.pem"
	want.KeyFile = "key.pem"
	want.Lockout = time.Hour
	require.NoError(t, m.Save(want))

	got, err := m.Load()
	require.NoError(t, err)
	require.Equal(t, want, got)
	require.True(t, got.TLS())
}

func TestDefaultPathHonoursXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	path, err := DefaultPath()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "pigate", "config.yaml"), path)
}

func TestValidateHostPath(t *testing.T) {
	for in, want := range map[string]string{
		"":           "/youwi11nevergetme",
		"/":          "/youwi11nevergetme",
		"ws":         "/youwi11nevergetme",
		"/health":    "/youwi11nevergetme",
		"projector":  "/projector",
		"/projector": "/projector",
		"/a/b-c_d.e": "/a/b-c_d.e",
		"/{room}":    "/youwi11nevergetme",
		"/my page":   "/youwi11nevergetme",
		"/x/":        "/youwi11nevergetme",
		"//x":        "/youwi11nevergetme",
	} {
		s := DefaultSettings()
		s.HostPath = in
		require.Equal(t, want, Validate(s).HostPath, in)
	}
}
