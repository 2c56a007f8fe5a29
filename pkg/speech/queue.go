package speech

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// DefaultQueueCapacity bounds the number of pending utterances.
// Chat spam beyond this is dropped rather than queued.
const DefaultQueueCapacity = 5

// Item is one utterance waiting to be spoken.
type Item struct {
	ID         uuid.UUID
	Text       string
	EnqueuedAt time.Time
}

// NewItem builds a queue item for the given (already truncated) text.
func NewItem(text string) Item {
	return Item{
		ID:         uuid.New(),
		Text:       text,
		EnqueuedAt: time.Now(),
	}
}

// Queue is a bounded FIFO between the chat pipeline (producer) and the
// dispatcher worker (consumer). Enqueue never blocks: when the queue is
// full the incoming item is rejected and counted, so a slow engine can
// never stall the poll loop.
type Queue struct {
	mu    sync.Mutex
	items chan Item

	dropped atomic.Int64
}

// NewQueue creates a queue with the given capacity.
// A capacity of 0 or less uses DefaultQueueCapacity.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultQueueCapacity
	}
	return &Queue{items: make(chan Item, capacity)}
}

// TryEnqueue adds an item without blocking. Returns false when the
// queue is full; the item is dropped and the drop counter incremented.
func (q *Queue) TryEnqueue(item Item) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	select {
	case q.items <- item:
		return true
	default:
		q.dropped.Add(1)
		return false
	}
}

// Dequeue removes the oldest item, blocking until one is available or
// ctx is done.
func (q *Queue) Dequeue(ctx context.Context) (Item, bool) {
	select {
	case item := <-q.items:
		return item, true
	case <-ctx.Done():
		return Item{}, false
	}
}

// Clear discards all pending items at once. The item a consumer has
// already dequeued is not affected.
func (q *Queue) Clear() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := 0
	for {
		select {
		case <-q.items:
			n++
		default:
			return n
		}
	}
}

// Len returns the number of pending items.
func (q *Queue) Len() int {
	return len(q.items)
}

// Dropped returns how many items have been rejected on a full queue.
func (q *Queue) Dropped() int64 {
	return q.dropped.Load()
}
