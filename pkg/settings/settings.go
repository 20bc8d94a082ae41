// Package settings loads and saves the gate's configuration file.
package settings

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Settings holds the persistable server configuration
type Settings struct {
	Port       int    `yaml:"port"`
	Room       string `yaml:"room"`
	AccessCode string `yaml:"access_code"`
	RandomCode bool   `yaml:"random_code"`
	StaticDir  string `yaml:"static_dir"`
	HostPath   string `yaml:"host_path"`
	CertFile   string `yaml:"cert_file"`
	KeyFile    string `yaml:"key_file"`
	LogLevel   string `yaml:"log_level"`
	TrustProxy bool   `yaml:"trust_proxy"`

	// Credential check throttling
	RateWindow  time.Duration `yaml:"rate_window"`
	MaxAttempts int           `yaml:"max_attempts"`
	Lockout     time.Duration `yaml:"lockout"`

	// ICE servers handed to browsers
	STUNServers []string `yaml:"stun_servers"`
	TURNServer  string   `yaml:"turn_server"`
	TURNUser    string   `yaml:"turn_user"`
	TURNPass    string   `yaml:"turn_pass"`
}

// DefaultSettings returns the default settings
func DefaultSettings() Settings {
	return Settings{
		Port:        3000,
		Room:        "lab",
		AccessCode:  "T0-PiProjector",
		StaticDir:   "static",
		HostPath:    "/youwi11nevergetme",
		LogLevel:    "info",
		RateWindow:  20 * time.Second,
		MaxAttempts: 6,
		Lockout:     24 * time.Hour,
		STUNServers: []string{"stun:stun.l.google.com:19302"},
	}
}

// TLS reports whether both certificate and key are configured.
func (s Settings) TLS() bool {
	return s.CertFile != "" && s.KeyFile != ""
}

// Manager handles loading and saving settings at one path
type Manager struct {
	path string
}

// NewManager creates a manager for path, or the default config path when empty.
func NewManager(path string) (*Manager, error) {
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, err
		}
	}
	return &Manager{path: path}, nil
}

// Path returns the config file path.
func (m *Manager) Path() string {
	return m.path
}

// DefaultPath returns the config file path.
// Uses XDG_CONFIG_HOME if set, otherwise the OS user config directory.
func DefaultPath() (string, error) {
	var configDir string

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		configDir = filepath.Join(xdg, "pigate")
	} else {
		userConfigDir, err := os.UserConfigDir()
		if err != nil {
			return "", errors.Wrap(err, "locate config dir")
		}
		configDir = filepath.Join(userConfigDir, "pigate")
	}

	return filepath.Join(configDir, "config.yaml"), nil
}

// Load reads settings from the config file.
// A missing file yields defaults; fields absent from the file keep their defaults.
func (m *Manager) Load() (Settings, error) {
	settings := DefaultSettings()

	data, err := os.ReadFile(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return settings, errors.Wrapf(err, "read %s", m.path)
	}

	if err := yaml.Unmarshal(data, &settings); err != nil {
		return DefaultSettings(), errors.Wrapf(err, "parse %s", m.path)
	}

	return Validate(settings), nil
}

// Save writes settings to the config file
func (m *Manager) Save(settings Settings) error {
	dir := filepath.Dir(m.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, "create %s", dir)
	}

	data, err := yaml.Marshal(settings)
	if err != nil {
		return errors.Wrap(err, "encode settings")
	}

	// The file may hold the access code and TURN credentials.
	return errors.Wrapf(os.WriteFile(m.path, data, 0600), "write %s", m.path)
}

// reservedPaths are served by the gate itself and cannot host the receiver page.
var reservedPaths = map[string]bool{
	"/":                 true,
	"/client":           true,
	"/health":           true,
	"/ws":               true,
	"/validate-code":    true,
	"/api/current-code": true,
	"/api/network-info": true,
}

// hostPathPattern limits the host page path to plain URL path characters,
// since it becomes part of a ServeMux pattern.
var hostPathPattern = regexp.MustCompile(`^(/[A-Za-z0-9._~-]+)+$`)

// Validate replaces out-of-range values with defaults
func Validate(s Settings) Settings {
	d := DefaultSettings()
	if s.Port <= 0 || s.Port > 65535 {
		s.Port = d.Port
	}
	if s.Room == "" {
		s.Room = d.Room
	}
	if s.HostPath != "" && !strings.HasPrefix(s.HostPath, "/") {
		s.HostPath = "/" + s.HostPath
	}
	if s.HostPath == "" || reservedPaths[s.HostPath] || !hostPathPattern.MatchString(s.HostPath) {
		s.HostPath = d.HostPath
	}
	if s.RateWindow <= 0 {
		s.RateWindow = d.RateWindow
	}
	if s.MaxAttempts <= 0 {
		s.MaxAttempts = d.MaxAttempts
	}
	if s.Lockout <= 0 {
		s.Lockout = d.Lockout
	}
	return s
}
