// Package capture records microphone audio through an arecord subprocess.
// Audio is raw PCM, 16 kHz mono signed 16-bit little endian, the format
// the transcription server consumes directly.
package capture

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"sync"
	"time"

	"github.com/lecamarade/wtvoice/internal/log"
)

const (
	// SampleRate is the capture rate in Hz.
	SampleRate = 16000
	// BytesPerSample for S16_LE mono.
	BytesPerSample = 2
)

// Recorder drives one arecord session at a time. Start spawns the
// process and drains its stdout into an in-memory buffer; Stop kills
// the process and hands the buffer back. Safe for use from a single
// goroutine, which is how the push-to-talk machine calls it.
type Recorder struct {
	binary string
	device string
	logger *slog.Logger

	mu      sync.Mutex
	cmd     *exec.Cmd
	cancel  context.CancelFunc
	buf     *bytes.Buffer
	drained chan struct{}
	started time.Time
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithDevice selects an ALSA capture device (arecord -D), e.g.
// "hw:1,0" or "default". Empty means the system default.
func WithDevice(device string) Option {
	return func(r *Recorder) { r.device = device }
}

// WithBinary overrides the arecord binary path.
func WithBinary(path string) Option {
	return func(r *Recorder) { r.binary = path }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Recorder) { r.logger = l }
}

// NewRecorder builds a Recorder.
func NewRecorder(opts ...Option) *Recorder {
	r := &Recorder{
		binary: "arecord",
		logger: log.L(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start begins capturing. Any previous session still running is killed
// and its buffer discarded, so a missed release event cannot leak an
// arecord process.
func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cmd != nil {
		r.stopLocked()
	}

	ctx, cancel := context.WithCancel(ctx)

	args := []string{
		"-q",
		"-t", "raw",
		"-f", "S16_LE",
		"-c", "1",
		"-r", fmt.Sprint(SampleRate),
	}
	if r.device != "" {
		args = append(args, "-D", r.device)
	}
	cmd := exec.CommandContext(ctx, r.binary, args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return fmt.Errorf("arecord pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return fmt.Errorf("starting %s: %w", r.binary, err)
	}

	buf := &bytes.Buffer{}
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		defer cmd.Wait() //nolint:errcheck // reap, exit status is expected non-zero after kill
		r.drain(stdout, buf)
	}()

	r.cmd = cmd
	r.cancel = cancel
	r.buf = buf
	r.drained = drained
	r.started = time.Now()
	r.logger.Debug("capture started", "device", r.device)
	return nil
}

// Stop ends the session and returns the recorded PCM. Calling Stop
// without a running session returns nil, nil.
func (r *Recorder) Stop() ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cmd == nil {
		return nil, nil
	}
	samples := r.stopLocked()
	r.logger.Debug("capture stopped",
		"bytes", len(samples),
		"duration", Duration(samples),
	)
	return samples, nil
}

// stopLocked kills the process, waits for the drain goroutine, and
// returns whatever was buffered. Callers hold r.mu.
func (r *Recorder) stopLocked() []byte {
	r.cancel()
	<-r.drained
	samples := r.buf.Bytes()
	r.cmd = nil
	r.cancel = nil
	r.buf = nil
	r.drained = nil
	return samples
}

// drain copies stdout into buf. The buffer is only read after the drain
// goroutine has finished, so no locking is needed on buf itself.
func (r *Recorder) drain(stdout io.Reader, buf *bytes.Buffer) {
	chunk := make([]byte, 4096)
	for {
		n, err := stdout.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
		}
		if err != nil {
			return
		}
	}
}

// Duration reports the playback length of a PCM buffer at the capture
// format.
func Duration(samples []byte) time.Duration {
	frames := len(samples) / BytesPerSample
	return time.Duration(frames) * time.Second / SampleRate
}
