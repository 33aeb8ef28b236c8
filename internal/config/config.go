// Package config provides configuration management for the overlay host.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
)

// Config represents the overlay configuration.
type Config struct {
	// Toggle selects the chord that flips overlay visibility.
	Toggle ToggleConfig `json:"toggle"`

	// Log configures the structured logger.
	Log LogConfig `json:"log"`

	// Diagnostics configures the optional local diagnostics server.
	Diagnostics DiagConfig `json:"diagnostics"`

	// Tray enables the system tray icon.
	Tray bool `json:"tray"`
}

// ToggleConfig names the visibility toggle chord.
type ToggleConfig struct {
	// Key is the toggle key name (e.g. "F9").
	Key string `json:"key"`

	// Modifier is the key that must be held with Key (e.g. "Shift").
	Modifier string `json:"modifier"`
}

// LogConfig selects log level and format.
type LogConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// DiagConfig configures the diagnostics server.
type DiagConfig struct {
	Enabled bool `json:"enabled"`
	Port    int  `json:"port"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Toggle: ToggleConfig{Key: "F9", Modifier: "Shift"},
		Log:    LogConfig{Level: "info", Format: "text"},
		Diagnostics: DiagConfig{
			Enabled: false,
			Port:    18081,
		},
		Tray: true,
	}
}

// ParseKey maps a key name to its virtual-key code. Accepted names:
// F1-F24, A-Z, 0-9, Shift, Ctrl, Alt, Esc.
func ParseKey(name string) (uint32, error) {
	k := strings.ToUpper(strings.TrimSpace(name))
	switch k {
	case "SHIFT":
		return 0x10, nil
	case "CTRL", "CONTROL":
		return 0x11, nil
	case "ALT":
		return 0x12, nil
	case "ESC", "ESCAPE":
		return 0x1B, nil
	}
	if len(k) >= 2 && k[0] == 'F' {
		var n int
		if _, err := fmt.Sscanf(k[1:], "%d", &n); err == nil && n >= 1 && n <= 24 {
			return uint32(0x70 + n - 1), nil
		}
	}
	if len(k) == 1 && (k[0] >= 'A' && k[0] <= 'Z' || k[0] >= '0' && k[0] <= '9') {
		return uint32(k[0]), nil
	}
	return 0, fmt.Errorf("unknown key name %q", name)
}

// ToggleKeys resolves the configured chord to virtual-key codes.
func (c *Config) ToggleKeys() (key, modifier uint32, err error) {
	key, err = ParseKey(c.Toggle.Key)
	if err != nil {
		return 0, 0, fmt.Errorf("toggle key: %w", err)
	}
	modifier, err = ParseKey(c.Toggle.Modifier)
	if err != nil {
		return 0, 0, fmt.Errorf("toggle modifier: %w", err)
	}
	return key, modifier, nil
}

// Manager handles loading and saving configuration.
type Manager struct {
	mu         sync.Mutex
	configPath string
	config     *Config
}

// NewManager creates a manager bound to path, or to the platform default
// location when path is empty.
func NewManager(path string) (*Manager, error) {
	if path == "" {
		var err error
		path, err = defaultConfigPath()
		if err != nil {
			return nil, err
		}
	}
	return &Manager{configPath: path, config: Default()}, nil
}

func defaultConfigPath() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			appData = filepath.Join(home, "AppData", "Roaming")
		}
		configDir = filepath.Join(appData, "cerberus")
	default:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, ".config", "cerberus")
	}

	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// Load reads the configuration from disk. A missing file keeps defaults.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := os.ReadFile(m.configPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, m.config)
}

// Save writes the configuration to disk.
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := json.MarshalIndent(m.config, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(m.configPath, data, 0o644)
}

// Get returns the current configuration.
func (m *Manager) Get() *Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.config
}
