// ABOUTME: Local durable cache contract and the in-memory implementation.
// ABOUTME: Values are opaque JSON strings addressed by a flat key.
package cache

import (
	"os"
	"path/filepath"
	"sync"
)

// Keys used by the store. There are no transactions across keys.
const (
	KeyProfile = "bio_profile"
	KeyLogs    = "bio_logs"
	KeyRoutine = "bio_today_routine"
	KeyGarden  = "bio_garden"
)

// Cache is a synchronous key-value persistence layer.
type Cache interface {
	// Get returns the stored value and whether the key exists.
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Close() error
}

// Memory is a process-local Cache. It does not survive restarts.
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
}

// Compile-time check that Memory implements Cache.
var _ Cache = (*Memory)(nil)

// NewMemory creates an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

// Get returns the value stored under key.
func (m *Memory) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

// Set stores value under key.
func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

// Close is a no-op.
func (m *Memory) Close() error {
	return nil
}

// DataDir returns the default data directory following the XDG base directory layout.
func DataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "rhythm")
}
