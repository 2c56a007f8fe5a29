package speech

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// workerJoinTimeout bounds how long Stop and SwapEngine wait for the
// worker to finish its current utterance before abandoning it.
const workerJoinTimeout = 3 * time.Second

// Dispatcher drains the queue into the active engine from a single
// worker goroutine. Items are spoken strictly in arrival order, one at
// a time: the worker waits for each utterance to finish before starting
// the next, which throttles output independent of arrival rate.
type Dispatcher struct {
	queue  *Queue
	logger *slog.Logger

	// Lifecycle state. Start/Stop/SwapEngine must be called from a
	// single coordinating goroutine; only the queue is shared with
	// the producer side.
	engine  Engine
	cancel  context.CancelFunc
	done    chan struct{}
	running bool

	spoken atomic.Int64
}

// NewDispatcher creates a dispatcher bound to an engine.
// Call Start to begin consuming the queue.
func NewDispatcher(queue *Queue, engine Engine, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		queue:  queue,
		engine: engine,
		logger: slog.Default().With("component", "speech.dispatcher"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithDispatcherLogger sets the structured logger.
func WithDispatcherLogger(l *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) { d.logger = l.With("component", "speech.dispatcher") }
}

// Start launches the worker goroutine. Starting twice is a no-op.
func (d *Dispatcher) Start() {
	if d.running {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	d.done = make(chan struct{})
	d.running = true
	go d.work(ctx, d.engine, d.done)
	d.logger.Info("speech worker started", "engine", d.engine.Name())
}

// Stop clears all queued items immediately and stops the worker.
// Whether the utterance in progress is cut off depends on the engine:
// the offline engine interrupts mid-utterance, the online engine only
// prevents items that have not started.
func (d *Dispatcher) Stop() {
	if !d.running {
		return
	}
	cleared := d.queue.Clear()
	d.engine.Stop()
	d.cancel()
	d.join()
	d.running = false
	d.logger.Info("speech worker stopped", "cleared", cleared, "spoken", d.spoken.Load())
}

// SwapEngine discards the pending queue, stops the current worker and
// starts a new one bound to the new engine. Two workers never run
// against the same queue.
func (d *Dispatcher) SwapEngine(engine Engine) {
	wasRunning := d.running
	if wasRunning {
		d.Stop()
	}
	d.engine = engine
	if wasRunning {
		d.Start()
	}
}

// Engine returns the currently bound engine.
func (d *Dispatcher) Engine() Engine {
	return d.engine
}

// SpokenCount returns the number of utterances completed.
func (d *Dispatcher) SpokenCount() int64 {
	return d.spoken.Load()
}

func (d *Dispatcher) work(ctx context.Context, engine Engine, done chan struct{}) {
	defer close(done)
	for {
		item, ok := d.queue.Dequeue(ctx)
		if !ok {
			return
		}
		if err := engine.Speak(ctx, item.Text); err != nil {
			// Synthesis failures are per-utterance: log and move on.
			d.logger.Warn("speak failed", "engine", engine.Name(), "error", err)
			continue
		}
		d.spoken.Add(1)
		d.logger.Debug("spoke message",
			"chars", len(item.Text),
			"waited_ms", time.Since(item.EnqueuedAt).Milliseconds(),
		)
	}
}

func (d *Dispatcher) join() {
	select {
	case <-d.done:
	case <-time.After(workerJoinTimeout):
		// Best effort: the worker is blocked in a long utterance and
		// will exit once it returns.
		d.logger.Warn("speech worker did not stop in time, abandoning")
	}
}
