// Package toast implements the Notifier port as an in-memory queue of
// one-shot notifications that the web GUI drains on its next render.
package toast

import (
	"context"
	"sync"

	"github.com/ericfisherdev/stockpanel/internal/domain/model"
	"github.com/ericfisherdev/stockpanel/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.Notifier = (*Queue)(nil)

// defaultCapacity bounds the queue when nobody is draining it.
const defaultCapacity = 50

// Queue holds pending notifications. When full, the oldest is dropped.
type Queue struct {
	mu       sync.Mutex
	pending  []model.Notification
	capacity int
}

// NewQueue creates an empty Queue with the default capacity.
func NewQueue() *Queue {
	return &Queue{capacity: defaultCapacity}
}

// Notify enqueues n.
func (q *Queue) Notify(_ context.Context, n model.Notification) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.pending) >= q.capacity {
		q.pending = q.pending[1:]
	}
	q.pending = append(q.pending, n)
}

// Drain returns all pending notifications in arrival order and empties the
// queue, so each notification is delivered once.
func (q *Queue) Drain() []model.Notification {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := q.pending
	q.pending = nil
	if out == nil {
		out = []model.Notification{}
	}
	return out
}

// Len returns the number of pending notifications.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
