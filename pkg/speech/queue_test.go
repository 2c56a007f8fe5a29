package speech

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func TestQueueBound(t *testing.T) {
	q := NewQueue(5)

	accepted := 0
	for i := 0; i < 6; i++ {
		if q.TryEnqueue(NewItem(fmt.Sprintf("msg %d", i))) {
			accepted++
		}
	}

	if accepted != 5 {
		t.Errorf("accepted %d items, want 5", accepted)
	}
	if q.Len() != 5 {
		t.Errorf("queue holds %d items, want 5", q.Len())
	}
	if q.Dropped() != 1 {
		t.Errorf("dropped = %d, want 1", q.Dropped())
	}
}

func TestQueueFIFO(t *testing.T) {
	q := NewQueue(3)
	for _, text := range []string{"a", "b", "c"} {
		q.TryEnqueue(NewItem(text))
	}

	ctx := context.Background()
	for _, want := range []string{"a", "b", "c"} {
		item, ok := q.Dequeue(ctx)
		if !ok || item.Text != want {
			t.Fatalf("dequeued (%q, %v), want %q", item.Text, ok, want)
		}
	}
}

func TestQueueClear(t *testing.T) {
	q := NewQueue(5)
	for i := 0; i < 4; i++ {
		q.TryEnqueue(NewItem("x"))
	}
	if n := q.Clear(); n != 4 {
		t.Errorf("Clear removed %d, want 4", n)
	}
	if q.Len() != 0 {
		t.Errorf("queue not empty after Clear: %d", q.Len())
	}
	// Clearing does not count as dropping.
	if q.Dropped() != 0 {
		t.Errorf("dropped = %d, want 0", q.Dropped())
	}
}

func TestQueueDequeueRespectsContext(t *testing.T) {
	q := NewQueue(1)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, ok := q.Dequeue(ctx)
	if ok {
		t.Error("Dequeue on empty queue should fail once ctx is done")
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Error("Dequeue did not return promptly after ctx cancellation")
	}
}
