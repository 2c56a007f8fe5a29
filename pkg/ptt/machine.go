package ptt

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// State is one phase of the push-to-talk lifecycle.
type State string

const (
	StateIdle         State = "idle"
	StateRecording    State = "recording"
	StateTranscribing State = "transcribing"
	StateSending      State = "sending"
	StateSent         State = "sent"
)

// Status is delivered to the observer on every transition.
type Status struct {
	State State

	// LastText is the most recent transcription, when one exists.
	LastText string

	// Err carries a transient failure (transcription, injection).
	// Never fatal: the machine always returns to Idle.
	Err error
}

// Observer receives status changes. Delivery is asynchronous; the
// machine never blocks on an observer.
type Observer func(Status)

// Session is one in-flight utterance. At most one exists at a time.
type Session struct {
	ID        uuid.UUID
	StartedAt time.Time
}

// Config tunes the state machine.
type Config struct {
	// MinSamples is the smallest capture buffer worth transcribing,
	// in bytes. Shorter holds go straight back to Idle.
	MinSamples int

	// SentLinger is how long the Sent state is held so an observer
	// can display the delivered text.
	SentLinger time.Duration

	// Language is the expected spoken language hint.
	Language string

	// Translate requests translation to English.
	Translate bool

	Logger *slog.Logger
}

const (
	// 16kHz mono PCM16: 200ms of audio.
	defaultMinSamples = 16000 * 2 / 5

	defaultSentLinger = 1500 * time.Millisecond

	// closeJoinTimeout bounds how long Close waits for an in-flight
	// transcription before abandoning it.
	closeJoinTimeout = 2 * time.Second
)

// Machine drives the Idle → Recording → Transcribing → Sending → Sent
// cycle. Button events may arrive from any goroutine; a ButtonDown in
// any state but Idle is ignored, so nested sessions cannot exist.
type Machine struct {
	capture     Capture
	transcriber Transcriber
	injector    Injector
	cfg         Config
	logger      *slog.Logger

	mu      sync.Mutex
	state   State
	session *Session
	gen     uint64 // bumps on every transition, guards stale timers

	notifyCh chan Status
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	closed   bool
}

// NewMachine wires the collaborators into a fresh machine in Idle.
func NewMachine(capture Capture, transcriber Transcriber, injector Injector, cfg Config) *Machine {
	if cfg.MinSamples <= 0 {
		cfg.MinSamples = defaultMinSamples
	}
	if cfg.SentLinger <= 0 {
		cfg.SentLinger = defaultSentLinger
	}
	if cfg.Language == "" {
		cfg.Language = "en"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := &Machine{
		capture:     capture,
		transcriber: transcriber,
		injector:    injector,
		cfg:         cfg,
		logger:      cfg.Logger.With("component", "ptt.machine"),
		state:       StateIdle,
		notifyCh:    make(chan Status, 16),
		ctx:         ctx,
		cancel:      cancel,
	}
	return m
}

// SetObserver registers the status observer and starts the delivery
// goroutine. Call before the first button event.
func (m *Machine) SetObserver(obs Observer) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		for {
			select {
			case s := <-m.notifyCh:
				obs(s)
			case <-m.ctx.Done():
				return
			}
		}
	}()
}

// State returns the current state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// ButtonDown starts a recording session. Ignored (debounced) unless
// the machine is Idle.
func (m *Machine) ButtonDown() {
	m.mu.Lock()
	if m.closed || m.state != StateIdle {
		m.mu.Unlock()
		m.logger.Debug("button down ignored", "state", m.state)
		return
	}

	if err := m.capture.Start(m.ctx); err != nil {
		m.mu.Unlock()
		m.logger.Warn("audio capture failed to start", "error", err)
		m.notify(Status{State: StateIdle, Err: err})
		return
	}

	m.session = &Session{ID: uuid.New(), StartedAt: time.Now()}
	m.setStateLocked(StateRecording)
	m.mu.Unlock()

	m.notify(Status{State: StateRecording})
}

// ButtonUp ends the hold. A buffer below the minimum goes straight
// back to Idle; otherwise transcription runs in its own goroutine so
// the button source is never blocked.
func (m *Machine) ButtonUp() {
	m.mu.Lock()
	if m.state != StateRecording {
		m.mu.Unlock()
		return
	}

	samples, err := m.capture.Stop()
	if err != nil || len(samples) < m.cfg.MinSamples {
		m.session = nil
		m.setStateLocked(StateIdle)
		m.mu.Unlock()
		if err != nil {
			m.logger.Warn("audio capture stop failed", "error", err)
		} else {
			m.logger.Debug("capture too short, discarded", "bytes", len(samples))
		}
		m.notify(Status{State: StateIdle, Err: err})
		return
	}

	m.setStateLocked(StateTranscribing)
	m.mu.Unlock()

	m.notify(Status{State: StateTranscribing})

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.transcribeAndSend(samples)
	}()
}

// transcribeAndSend finishes the utterance: transcribe, inject, linger
// in Sent, return to Idle. Every failure path lands back in Idle.
func (m *Machine) transcribeAndSend(samples []byte) {
	text, err := m.transcriber.Transcribe(m.ctx, samples, m.cfg.Language, m.cfg.Translate)
	text = strings.TrimSpace(text)

	if err != nil || text == "" {
		if err != nil {
			m.logger.Warn("transcription failed", "error", err)
		}
		m.toIdle(Status{State: StateIdle, Err: err})
		return
	}

	m.mu.Lock()
	if m.state != StateTranscribing {
		// Torn down while we were transcribing.
		m.mu.Unlock()
		return
	}
	m.setStateLocked(StateSending)
	m.mu.Unlock()
	m.notify(Status{State: StateSending, LastText: text})

	injErr := m.injector.SendText(m.ctx, text)
	if injErr != nil {
		// Best effort: the transition sequence completes anyway.
		m.logger.Warn("chat injection failed", "error", injErr)
	}

	m.mu.Lock()
	m.setStateLocked(StateSent)
	gen := m.gen
	m.mu.Unlock()
	m.notify(Status{State: StateSent, LastText: text, Err: injErr})

	time.AfterFunc(m.cfg.SentLinger, func() {
		m.mu.Lock()
		if m.state == StateSent && m.gen == gen {
			m.session = nil
			m.setStateLocked(StateIdle)
			m.mu.Unlock()
			m.notify(Status{State: StateIdle, LastText: text})
			return
		}
		m.mu.Unlock()
	})
}

// Close tears the machine down. A session in Recording is discarded.
// In-flight transcription is given a bounded grace period and then
// abandoned; shutdown never hangs on it.
func (m *Machine) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	wasRecording := m.state == StateRecording
	m.session = nil
	m.setStateLocked(StateIdle)
	m.mu.Unlock()

	if wasRecording {
		_, _ = m.capture.Stop()
	}
	m.cancel()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(closeJoinTimeout):
		m.logger.Warn("ptt workers did not stop in time, abandoning")
	}
	return nil
}

func (m *Machine) toIdle(s Status) {
	m.mu.Lock()
	m.session = nil
	m.setStateLocked(StateIdle)
	m.mu.Unlock()
	m.notify(s)
}

// setStateLocked transitions state; callers hold m.mu.
func (m *Machine) setStateLocked(s State) {
	m.state = s
	m.gen++
}

// notify hands a status to the observer goroutine without blocking.
// Observers are cosmetic; when the buffer is full the update is lost
// rather than stalling a pipeline.
func (m *Machine) notify(s Status) {
	select {
	case m.notifyCh <- s:
	default:
	}
}
