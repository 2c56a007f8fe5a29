package speech

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"sync"
)

const (
	offlineBinary  = "espeak-ng"
	offlineBaseWPM = 175 // espeak-ng default words per minute
)

// Offline synthesizes and plays speech in a single local espeak-ng
// invocation. Latency is low and bounded; no network is involved.
//
// Offline exposes a true interrupt: Stop kills the synthesis process,
// cutting off the current utterance mid-way.
type Offline struct {
	binary string
	logger *slog.Logger

	mu    sync.Mutex
	voice string
	wpm   int
	cmd   *exec.Cmd
}

// OfflineOption configures the offline engine.
type OfflineOption func(*Offline)

// WithOfflineBinary overrides the espeak-ng binary path.
func WithOfflineBinary(path string) OfflineOption {
	return func(o *Offline) { o.binary = path }
}

// WithOfflineLogger sets the structured logger.
func WithOfflineLogger(l *slog.Logger) OfflineOption {
	return func(o *Offline) { o.logger = l.With("component", "speech.offline") }
}

// NewOffline creates the offline engine.
func NewOffline(opts ...OfflineOption) *Offline {
	o := &Offline{
		binary: offlineBinary,
		logger: slog.Default().With("component", "speech.offline"),
		voice:  "en-us",
		wpm:    offlineBaseWPM,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Speak runs espeak-ng and blocks until playback completes.
func (o *Offline) Speak(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	o.mu.Lock()
	args := []string{"-v", o.voice, "-s", strconv.Itoa(o.wpm), "--stdin"}
	cmd := exec.CommandContext(ctx, o.binary, args...)
	cmd.Stdin = strings.NewReader(text)
	if err := cmd.Start(); err != nil {
		o.mu.Unlock()
		return wrapErr("offline", fmt.Errorf("start %s: %w", o.binary, err))
	}
	o.cmd = cmd
	o.mu.Unlock()

	err := cmd.Wait()

	o.mu.Lock()
	if o.cmd == cmd {
		o.cmd = nil
	}
	o.mu.Unlock()

	if err != nil {
		if ctx.Err() != nil {
			return wrapErr("offline", ErrInterrupted)
		}
		return wrapErr("offline", fmt.Errorf("%s: %w", o.binary, err))
	}
	return nil
}

// Stop kills the current utterance, if any.
func (o *Offline) Stop() {
	o.mu.Lock()
	cmd := o.cmd
	o.mu.Unlock()
	if cmd != nil && cmd.Process != nil {
		_ = cmd.Process.Kill()
	}
}

// SetVoice selects the espeak-ng voice id (e.g. "en-us", "fr").
func (o *Offline) SetVoice(id string) {
	if id == "" {
		return
	}
	o.mu.Lock()
	o.voice = id
	o.mu.Unlock()
}

// SetRate sets the speaking rate as a percentage of normal speed.
func (o *Offline) SetRate(percent int) {
	if percent <= 0 {
		return
	}
	wpm := offlineBaseWPM * percent / 100
	if wpm < 80 {
		wpm = 80
	}
	if wpm > 450 {
		wpm = 450
	}
	o.mu.Lock()
	o.wpm = wpm
	o.mu.Unlock()
}

// Voices lists the offline voice set.
func (o *Offline) Voices() []Voice {
	return defaultOfflineVoices
}

// Name identifies the backend.
func (o *Offline) Name() string { return "offline" }

// Close stops any in-flight utterance.
func (o *Offline) Close() error {
	o.Stop()
	return nil
}
