// Package reader runs the incoming-chat side of the bridge: it polls
// the game's chat endpoint, filters out the player's own messages and
// unwanted channels, and queues what remains for speech.
package reader

import (
	"context"
	"log/slog"

	"github.com/lecamarade/wtvoice/pkg/chat"
	"github.com/lecamarade/wtvoice/pkg/speech"
)

// Reader wires the chat poller to the speech dispatcher.
type Reader struct {
	poller     *chat.Poller
	filter     *chat.Filter
	queue      *speech.Queue
	dispatcher *speech.Dispatcher
	logger     *slog.Logger
	pollerOpts []chat.PollerOption
}

// Option configures a Reader.
type Option func(*Reader)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Reader) { r.logger = l.With("component", "reader") }
}

// WithPollerOptions passes options through to the underlying poller.
func WithPollerOptions(opts ...chat.PollerOption) Option {
	return func(r *Reader) { r.pollerOpts = append(r.pollerOpts, opts...) }
}

// New assembles a reader polling baseURL.
func New(baseURL string, filter *chat.Filter, queue *speech.Queue, dispatcher *speech.Dispatcher, opts ...Option) *Reader {
	r := &Reader{
		filter:     filter,
		queue:      queue,
		dispatcher: dispatcher,
		logger:     slog.Default().With("component", "reader"),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.poller = chat.NewPoller(baseURL, r.consume, r.pollerOpts...)
	return r
}

// Run starts the dispatcher and the poll loop and blocks until ctx is
// cancelled. The dispatcher is stopped on the way out.
func (r *Reader) Run(ctx context.Context) {
	r.dispatcher.Start()
	defer r.dispatcher.Stop()
	r.poller.Run(ctx)
}

// Poller exposes the underlying poller for health probes.
func (r *Reader) Poller() *chat.Poller {
	return r.poller
}

// consume receives one new message from the poll loop and enqueues it
// if it passes the filter. A full queue drops the newest message;
// catching up on a backlog must never replay stale chatter at length.
func (r *Reader) consume(m chat.Message) {
	text, ok := r.filter.Accept(m)
	if !ok {
		return
	}
	if !r.queue.TryEnqueue(speech.NewItem(text)) {
		r.logger.Debug("speech queue full, dropping message",
			"id", m.ID, "sender", m.Sender)
	}
}

// Dropped reports how many messages were rejected by the full queue.
func (r *Reader) Dropped() int64 {
	return r.queue.Dropped()
}
