package notify

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Kind of a user-facing notification
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Notifier receives fire-and-forget user-facing messages
type Notifier interface {
	Notify(message string, kind Kind)
}

// Notification is a delivered message
type Notification struct {
	Message string    `json:"message"`
	Kind    Kind      `json:"kind"`
	At      time.Time `json:"at"`
}

// Queue buffers notifications until a client drains them. When full the
// oldest entry is dropped.
type Queue struct {
	mu    sync.Mutex
	limit int
	items []Notification
	now   func() time.Time
}

func NewQueue(limit int) *Queue {
	if limit <= 0 {
		limit = 20
	}
	return &Queue{limit: limit, now: time.Now}
}

func (q *Queue) Notify(message string, kind Kind) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == q.limit {
		q.items = q.items[1:]
	}
	q.items = append(q.items, Notification{Message: message, Kind: kind, At: q.now()})
}

// Drain returns the buffered notifications oldest first and empties the queue
func (q *Queue) Drain() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := q.items
	q.items = nil
	if out == nil {
		out = []Notification{}
	}
	return out
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Log writes notifications to the structured logger
type Log struct {
	Logger *zap.Logger
}

func (l Log) Notify(message string, kind Kind) {
	logger := l.Logger
	if logger == nil {
		logger = zap.L()
	}
	logger.Info("notification", zap.String("kind", string(kind)), zap.String("message", message))
}

// Multi fans a notification out to several notifiers
type Multi []Notifier

func (m Multi) Notify(message string, kind Kind) {
	for _, n := range m {
		if n != nil {
			n.Notify(message, kind)
		}
	}
}

// Discard drops every notification
type Discard struct{}

func (Discard) Notify(string, Kind) {}
