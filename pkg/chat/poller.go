package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lecamarade/wtvoice/internal/httpc"
)

// DefaultPollInterval is how often the game chat endpoint is polled.
const DefaultPollInterval = 500 * time.Millisecond

// Sink receives accepted messages from the poll loop, in id order.
// It must not block for long: the next poll waits on it.
type Sink func(Message)

// Poller repeatedly fetches new chat entries from the game's local API.
//
// Each Poller owns its own dedup cursor. The cursor only moves forward,
// and only the poll loop advances it; delivering a batch and advancing
// the cursor happen in the same step, so no message is delivered twice.
type Poller struct {
	baseURL  string
	client   *http.Client
	probe    *http.Client
	logger   *slog.Logger
	interval time.Duration
	sink     Sink

	mu     sync.Mutex // guards cursor and seen against ResetCursor
	cursor int64
	seen   int64

	connected atomic.Bool
}

// PollerOption configures a Poller.
type PollerOption func(*Poller)

// WithInterval sets the poll interval.
func WithInterval(d time.Duration) PollerOption {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithHTTPClient overrides the HTTP client used for polling.
func WithHTTPClient(c *http.Client) PollerOption {
	return func(p *Poller) { p.client = c }
}

// WithProbeClient overrides the client used by IsReachable.
func WithProbeClient(c *http.Client) PollerOption {
	return func(p *Poller) { p.probe = c }
}

// WithPollerLogger sets the structured logger.
func WithPollerLogger(l *slog.Logger) PollerOption {
	return func(p *Poller) { p.logger = l.With("component", "chat.poller") }
}

// NewPoller creates a poller for the given base URL (e.g.
// "http://localhost:8111"). Accepted messages are handed to sink.
func NewPoller(baseURL string, sink Sink, opts ...PollerOption) *Poller {
	p := &Poller{
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   httpc.Local,
		probe:    httpc.NewClient(httpc.ProbeTimeout),
		logger:   slog.Default().With("component", "chat.poller"),
		interval: DefaultPollInterval,
		sink:     sink,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Poll performs one fetch against the chat endpoint.
//
// On transport failure or a non-success response it returns an empty
// batch and ok=false, leaving the cursor unchanged; the caller simply
// retries next cycle. On success the batch is returned in ascending id
// order and the cursor advances to the highest id seen.
func (p *Poller) Poll(ctx context.Context) ([]Message, bool) {
	p.mu.Lock()
	cursor := p.cursor
	p.mu.Unlock()

	url := fmt.Sprintf("%s/gamechat?lastId=%d", p.baseURL, cursor)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false
	}

	resp, err := p.client.Do(req)
	if err != nil {
		p.setConnected(false)
		return nil, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		p.setConnected(false)
		io.Copy(io.Discard, resp.Body)
		return nil, false
	}

	var entries []rawEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		p.logger.Debug("bad gamechat payload", "error", err)
		p.setConnected(false)
		return nil, false
	}

	p.setConnected(true)
	if len(entries) == 0 {
		return nil, true
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })

	next := cursor
	msgs := make([]Message, 0, len(entries))
	for _, e := range entries {
		// The server is asked for ids strictly greater than the
		// cursor, but a resend must still not be delivered twice.
		if e.ID <= cursor {
			continue
		}
		if e.ID > next {
			next = e.ID
		}
		if m, ok := parseEntry(e); ok {
			msgs = append(msgs, m)
		}
	}

	p.mu.Lock()
	if next > p.cursor {
		p.cursor = next
	}
	p.seen += int64(len(msgs))
	p.mu.Unlock()

	return msgs, true
}

// Run polls at the configured interval until ctx is cancelled, handing
// each message to the sink. It returns within one interval of
// cancellation.
func (p *Poller) Run(ctx context.Context) {
	p.logger.Info("chat poll loop started",
		"url", p.baseURL,
		"interval_ms", p.interval.Milliseconds(),
	)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		msgs, _ := p.Poll(ctx)
		for _, m := range msgs {
			if p.sink != nil {
				p.sink(m)
			}
		}

		select {
		case <-ctx.Done():
			p.logger.Info("chat poll loop stopped", "messages_seen", p.SeenCount())
			return
		case <-ticker.C:
		}
	}
}

// IsReachable probes the game's local server with a short timeout.
// It does not touch the cursor.
func (p *Poller) IsReachable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/", nil)
	if err != nil {
		return false
	}
	resp, err := p.probe.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return resp.StatusCode == http.StatusOK
}

// Connected reports the result of the most recent poll.
func (p *Poller) Connected() bool {
	return p.connected.Load()
}

// Cursor returns the highest message id observed so far.
func (p *Poller) Cursor() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cursor
}

// SeenCount returns the number of messages delivered so far.
func (p *Poller) SeenCount() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.seen
}

// ResetCursor rewinds the cursor to zero, for use between matches when
// the game restarts its id sequence.
func (p *Poller) ResetCursor() {
	p.mu.Lock()
	p.cursor = 0
	p.seen = 0
	p.mu.Unlock()
}

func (p *Poller) setConnected(ok bool) {
	was := p.connected.Swap(ok)
	if was != ok {
		if ok {
			p.logger.Info("game chat reachable")
		} else {
			p.logger.Debug("game chat unreachable")
		}
	}
}
