// Package inject types recognized text into the game's chat box by
// synthesizing keystrokes with xdotool. The game window must have
// focus; injection is best effort and duplicate or lost sends are
// possible when focus changes mid-sequence.
package inject

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/lecamarade/wtvoice/internal/log"
)

const (
	// DefaultChatKey opens the chat box in the game's default binding.
	DefaultChatKey = "Return"
	// DefaultDelay between the open, type and submit steps, giving the
	// game time to show the input field.
	DefaultDelay = 150 * time.Millisecond
)

// Injector sends text into the focused window.
type Injector struct {
	binary  string
	chatKey string
	delay   time.Duration
	logger  *slog.Logger

	// run executes one xdotool invocation; tests swap it out.
	run func(ctx context.Context, args ...string) error
}

// Option configures an Injector.
type Option func(*Injector)

// WithChatKey sets the key that opens the chat box.
func WithChatKey(key string) Option {
	return func(i *Injector) {
		if key != "" {
			i.chatKey = key
		}
	}
}

// WithDelay sets the pause between keystroke steps.
func WithDelay(d time.Duration) Option {
	return func(i *Injector) {
		if d > 0 {
			i.delay = d
		}
	}
}

// WithBinary overrides the xdotool binary path.
func WithBinary(path string) Option {
	return func(i *Injector) { i.binary = path }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(i *Injector) { i.logger = l }
}

// NewInjector builds an xdotool-backed injector.
func NewInjector(opts ...Option) *Injector {
	i := &Injector{
		binary:  "xdotool",
		chatKey: DefaultChatKey,
		delay:   DefaultDelay,
		logger:  log.L(),
	}
	for _, opt := range opts {
		opt(i)
	}
	if i.run == nil {
		i.run = i.execRun
	}
	return i
}

// SendText opens the chat box, types text and submits it. The sequence
// is open-key, pause, type, pause, Return.
func (i *Injector) SendText(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	if err := i.run(ctx, "key", i.chatKey); err != nil {
		return fmt.Errorf("open chat: %w", err)
	}
	if err := i.pause(ctx); err != nil {
		return err
	}
	// --delay 0 types the whole string at once instead of the default
	// per-character stagger.
	if err := i.run(ctx, "type", "--delay", "0", "--", text); err != nil {
		return fmt.Errorf("type text: %w", err)
	}
	if err := i.pause(ctx); err != nil {
		return err
	}
	if err := i.run(ctx, "key", "Return"); err != nil {
		return fmt.Errorf("submit: %w", err)
	}

	i.logger.Debug("injected chat text", "chars", len(text))
	return nil
}

// IsAvailable reports whether the xdotool binary can be found, used for
// the startup health report.
func (i *Injector) IsAvailable() bool {
	_, err := exec.LookPath(i.binary)
	return err == nil
}

func (i *Injector) pause(ctx context.Context) error {
	select {
	case <-time.After(i.delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (i *Injector) execRun(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, i.binary, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s %s: %w: %s", i.binary, args[0], err, strings.TrimSpace(string(out)))
	}
	return nil
}
