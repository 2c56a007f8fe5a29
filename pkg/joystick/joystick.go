// Package joystick watches a Linux joystick device (/dev/input/jsN)
// for push-to-talk button presses. Events are the kernel's legacy
// joystick interface: fixed 8-byte records, no dependency beyond the
// device node itself.
package joystick

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/lecamarade/wtvoice/internal/log"
)

// Linux input joystick event types.
const (
	eventButton = 0x01
	eventAxis   = 0x02
	eventInit   = 0x80 // OR'd into type for synthetic state dumps on open
)

// eventSize is the fixed size of a struct js_event record.
const eventSize = 8

// reopenDelay between attempts when the device node is missing or the
// controller was unplugged.
const reopenDelay = 2 * time.Second

// Event is one decoded joystick event.
type Event struct {
	Time   uint32 // event timestamp in ms, kernel clock
	Value  int16  // 1 pressed / 0 released for buttons
	Type   uint8
	Number uint8 // button or axis index
}

// decodeEvent unpacks one 8-byte js_event record (little endian, as
// the kernel writes them on every supported platform).
func decodeEvent(raw []byte) Event {
	return Event{
		Time:   binary.LittleEndian.Uint32(raw[0:4]),
		Value:  int16(binary.LittleEndian.Uint16(raw[4:6])),
		Type:   raw[6],
		Number: raw[7],
	}
}

// isInit reports whether the event is a synthetic initial-state record
// emitted right after opening the device. Those replay the current
// button state and must not trigger push-to-talk.
func (e Event) isInit() bool {
	return e.Type&eventInit != 0
}

func (e Event) isButton() bool {
	return e.Type&^eventInit == eventButton
}

// Watcher reads button events from one joystick device and invokes the
// Down/Up callbacks for one configured button.
type Watcher struct {
	device string
	button uint8
	onDown func()
	onUp   func()
	logger *slog.Logger
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) { w.logger = l }
}

// NewWatcher builds a watcher for one button on one device. The
// callbacks run on the watcher's read goroutine and must not block.
func NewWatcher(device string, button int, onDown, onUp func(), opts ...Option) *Watcher {
	w := &Watcher{
		device: device,
		button: uint8(button),
		onDown: onDown,
		onUp:   onUp,
		logger: log.L(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run watches the device until ctx is cancelled. A missing or
// unplugged device is retried, so the controller can be connected
// after startup or power-cycled mid-session.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		f, err := os.Open(w.device)
		if err != nil {
			w.logger.Debug("joystick unavailable, retrying", "device", w.device, "error", err)
			select {
			case <-time.After(reopenDelay):
				continue
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		w.logger.Info("joystick connected", "device", w.device, "button", w.button)

		// Close unblocks the Read below on cancellation.
		go func() {
			<-ctx.Done()
			f.Close()
		}()

		err = w.readEvents(ctx, f)
		f.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		w.logger.Warn("joystick disconnected", "device", w.device, "error", err)

		// If the release event was lost with the disconnect, the state
		// machine's own debounce handles the dangling press.
		select {
		case <-time.After(reopenDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// readEvents decodes records from r until read failure or cancellation,
// dispatching transitions for the configured button.
func (w *Watcher) readEvents(ctx context.Context, r io.Reader) error {
	raw := make([]byte, eventSize)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := io.ReadFull(r, raw); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return io.EOF
			}
			return err
		}

		e := decodeEvent(raw)
		if e.isInit() || !e.isButton() || e.Number != w.button {
			continue
		}
		if e.Value != 0 {
			if w.onDown != nil {
				w.onDown()
			}
		} else {
			if w.onUp != nil {
				w.onUp()
			}
		}
	}
}

// Devices lists the joystick device nodes present on the system,
// sorted, for the `devices` command and config hints.
func Devices() []string {
	matches, err := filepath.Glob("/dev/input/js*")
	if err != nil {
		return nil
	}
	sort.Strings(matches)
	return matches
}
