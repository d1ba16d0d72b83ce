// ABOUTME: Rhythm configuration management with cache backend selection.
// ABOUTME: Handles settings, sync preferences, and the cache factory function.

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/harperreed/rhythm/internal/cache"
	"github.com/oklog/ulid/v2"
)

// Defaults applied when a field is unset.
const (
	DefaultBackend      = "sqlite"
	DefaultTimezone     = "UTC"
	DefaultDebounce     = 3 * time.Second
	DefaultSyncTimeout  = 5 * time.Second
	DefaultSubscribeURL = "https://biorhythm-sol.vercel.app/api/subscribe"
)

// Config stores rhythm tool configuration.
type Config struct {
	// Backend selects the local cache: "sqlite" (default), "badger" or "memory".
	Backend string `json:"backend,omitempty"`

	// DataDir is the root directory for the cache and logs.
	// Supports ~ expansion for home directory. Defaults to ~/.local/share/rhythm.
	DataDir string `json:"data_dir,omitempty"`

	// Offline disables the remote replica entirely.
	Offline bool `json:"offline,omitempty"`

	// Timezone is the IANA zone that decides calendar days.
	Timezone string `json:"timezone,omitempty"`

	// Debounce is the quiet period before a remote push, as a Go duration.
	Debounce string `json:"debounce,omitempty"`

	// SyncTimeout bounds how long commands wait for the initial pull.
	SyncTimeout string `json:"sync_timeout,omitempty"`

	// ReplayPreSync re-applies actions taken before the first pull resolved.
	ReplayPreSync bool `json:"replay_pre_sync,omitempty"`

	SubscribeURL string `json:"subscribe_url,omitempty"`

	// DeviceID tags remote writes from this machine.
	DeviceID string `json:"device_id,omitempty"`
}

// GetBackend returns the configured backend, defaulting to "sqlite".
func (c *Config) GetBackend() string {
	if c.Backend == "" {
		return DefaultBackend
	}
	return c.Backend
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return cache.DataDir()
	}
	return ExpandPath(c.DataDir)
}

// GetLocation loads the configured timezone.
func (c *Config) GetLocation() (*time.Location, error) {
	name := c.Timezone
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", name, err)
	}
	return loc, nil
}

// GetDebounce returns the push quiet period.
func (c *Config) GetDebounce() (time.Duration, error) {
	return parseDuration("debounce", c.Debounce, DefaultDebounce)
}

// GetSyncTimeout returns how long to wait for the initial pull.
func (c *Config) GetSyncTimeout() (time.Duration, error) {
	return parseDuration("sync_timeout", c.SyncTimeout, DefaultSyncTimeout)
}

func parseDuration(field, value string, def time.Duration) (time.Duration, error) {
	if value == "" {
		return def, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", field, value, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be positive", field, value)
	}
	return d, nil
}

// GetSubscribeURL returns the notification subscription endpoint.
func (c *Config) GetSubscribeURL() string {
	if c.SubscribeURL == "" {
		return DefaultSubscribeURL
	}
	return c.SubscribeURL
}

// EnsureDeviceID assigns a device ID if none is set and reports whether it did.
func (c *Config) EnsureDeviceID() bool {
	if c.DeviceID != "" {
		return false
	}
	c.DeviceID = ulid.Make().String()
	return true
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// OpenCache creates a Cache implementation based on the configured backend.
func (c *Config) OpenCache() (cache.Cache, error) {
	backend := c.GetBackend()
	dataDir := c.GetDataDir()

	switch backend {
	case "sqlite":
		return cache.OpenSQLite(filepath.Join(dataDir, "rhythm.db"))
	case "badger":
		return cache.OpenBadger(filepath.Join(dataDir, "badger"))
	case "memory":
		return cache.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown backend: %q", backend)
	}
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "rhythm", "config.json")
}

// Load reads config from disk.
func Load() (*Config, error) {
	path := GetConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes config to disk.
func (c *Config) Save() error {
	path := GetConfigPath()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
