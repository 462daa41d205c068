package cache

import (
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
)

// Closer is implemented by values that hold timers or other resources
type Closer interface {
	Close()
}

// Manager is a TTL cache whose values are closed when they leave it, whether
// deleted explicitly or swept after expiring.
type Manager struct {
	cache *cache.Cache
	// afterGet runs between Touch's read and refresh; tests use it
	afterGet func(key string)
}

// NewManager creates a cache. A positive cleanupInterval starts go-cache's
// janitor, which sweeps expired entries on that period.
func NewManager(defaultTTL, cleanupInterval time.Duration) *Manager {
	c := cache.New(defaultTTL, cleanupInterval)
	c.OnEvicted(func(key string, value interface{}) {
		if closer, ok := value.(Closer); ok {
			closer.Close()
		}
	})
	return &Manager{cache: c}
}

func (m *Manager) Get(key string) (interface{}, bool) {
	return m.cache.Get(key)
}

// Set stores value with ttl; zero uses the default TTL
func (m *Manager) Set(key string, value interface{}, ttl time.Duration) {
	m.cache.Set(key, value, ttl)
}

// Add stores value only if key is absent
func (m *Manager) Add(key string, value interface{}, ttl time.Duration) error {
	if err := m.cache.Add(key, value, ttl); err != nil {
		return fmt.Errorf("cache key '%s': %w", key, err)
	}
	return nil
}

// Touch extends the lifetime of key with the default TTL. An entry evicted
// between the read and the refresh stays evicted.
func (m *Manager) Touch(key string) (interface{}, bool) {
	value, found := m.cache.Get(key)
	if !found {
		return nil, false
	}
	if m.afterGet != nil {
		m.afterGet(key)
	}
	if err := m.cache.Replace(key, value, cache.DefaultExpiration); err != nil {
		return nil, false
	}
	return value, true
}

func (m *Manager) Delete(key string) {
	m.cache.Delete(key)
}

// Sweep evicts expired entries now instead of waiting for the janitor
func (m *Manager) Sweep() {
	m.cache.DeleteExpired()
}

func (m *Manager) Count() int {
	return m.cache.ItemCount()
}

// CloseAll evicts every entry, closing each value
func (m *Manager) CloseAll() {
	for key := range m.cache.Items() {
		m.cache.Delete(key)
	}
}
