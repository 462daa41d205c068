package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"showcase/internal/cache"
	"showcase/internal/discovery"
	"showcase/internal/notify"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrNotFound = errors.New("session not found")

// EngineFactory builds the engine of a new session. The notifier delivers
// to that session's notification queue.
type EngineFactory func(notifier notify.Notifier) *discovery.Engine

// Session is one visitor's showcase
type Session struct {
	ID            string
	Created       time.Time
	Engine        *discovery.Engine
	Notifications *notify.Queue
	onClose       func()
	closeOnce     sync.Once
}

// Close cancels the engine's timers. The registry calls it on eviction; the
// close hook runs once however often Close is called.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.Engine.Close()
		if s.onClose != nil {
			s.onClose()
		}
	})
}

// Registry keeps sessions alive while they are used. Sessions idle for longer
// than the TTL are evicted and closed.
type Registry struct {
	cache     *cache.Manager
	newEngine EngineFactory
	onClose   func()
}

func NewRegistry(c *cache.Manager, factory EngineFactory) *Registry {
	return &Registry{cache: c, newEngine: factory}
}

// OnClose registers a hook run whenever a session is closed
func (r *Registry) OnClose(fn func()) {
	r.onClose = fn
}

func key(id string) string {
	return fmt.Sprintf("session:%s", id)
}

// Create starts a new session
func (r *Registry) Create() (*Session, error) {
	queue := notify.NewQueue(20)
	s := &Session{
		ID:            uuid.NewString(),
		Created:       time.Now(),
		Notifications: queue,
		onClose:       r.onClose,
	}
	s.Engine = r.newEngine(notify.Multi{queue, notify.Log{}})

	if err := r.cache.Add(key(s.ID), s, 0); err != nil {
		s.Close()
		return nil, err
	}

	zap.S().Debugf("Created showcase session %s", s.ID)
	return s, nil
}

// Get returns a live session and extends its lifetime
func (r *Registry) Get(id string) (*Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	value, found := r.cache.Touch(key(id))
	if !found {
		return nil, ErrNotFound
	}

	s, ok := value.(*Session)
	if !ok {
		return nil, ErrNotFound
	}
	if s.Engine.Closed() {
		r.cache.Delete(key(id))
		return nil, ErrNotFound
	}
	return s, nil
}

// Delete closes and forgets a session
func (r *Registry) Delete(id string) error {
	if _, err := r.Get(id); err != nil {
		return err
	}
	r.cache.Delete(key(id))
	return nil
}

// Close closes every session
func (r *Registry) Close() {
	r.cache.CloseAll()
}

// Count returns the number of live sessions
func (r *Registry) Count() int {
	return r.cache.Count()
}
