package engine

import (
	"sync"

	"junkfactory/pkg/models"
)

// Queue is an unbounded FIFO of progress events, safe for one producer and
// any number of consumers.
type Queue struct {
	mu     sync.Mutex
	events []models.ProgressEvent
}

// Push appends an event.
func (q *Queue) Push(event models.ProgressEvent) {
	q.mu.Lock()
	q.events = append(q.events, event)
	q.mu.Unlock()
}

// Drain removes and returns every queued event in arrival order. It never blocks
// on the producer and returns nil when the queue is empty.
func (q *Queue) Drain() []models.ProgressEvent {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) == 0 {
		return nil
	}
	events := q.events
	q.events = nil
	return events
}

// Len returns the number of queued events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}
