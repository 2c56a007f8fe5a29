package ptt

import (
	"context"
	"sync"
)

// MockCapture implements Capture for testing.
type MockCapture struct {
	// Samples is returned by Stop.
	Samples []byte

	// StartErr is returned by Start.
	StartErr error

	// StopErr is returned by Stop.
	StopErr error

	mu      sync.Mutex
	started int
	stopped int
}

// Start records the call.
func (c *MockCapture) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.StartErr != nil {
		return c.StartErr
	}
	c.started++
	return nil
}

// Stop records the call and returns the configured samples.
func (c *MockCapture) Stop() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopped++
	return c.Samples, c.StopErr
}

// Started returns the number of Start calls.
func (c *MockCapture) Started() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.started
}

// Stopped returns the number of Stop calls.
func (c *MockCapture) Stopped() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopped
}

// MockTranscriber implements Transcriber for testing.
type MockTranscriber struct {
	// Text and Err are returned by Transcribe.
	Text string
	Err  error

	// TranscribeFunc overrides the canned behavior when set.
	TranscribeFunc func(ctx context.Context, samples []byte, language string, translate bool) (string, error)

	mu    sync.Mutex
	calls int
}

// Transcribe returns the canned result.
func (t *MockTranscriber) Transcribe(ctx context.Context, samples []byte, language string, translate bool) (string, error) {
	t.mu.Lock()
	t.calls++
	t.mu.Unlock()
	if t.TranscribeFunc != nil {
		return t.TranscribeFunc(ctx, samples, language, translate)
	}
	return t.Text, t.Err
}

// Calls returns the number of Transcribe invocations.
func (t *MockTranscriber) Calls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.calls
}

// MockInjector implements Injector for testing.
type MockInjector struct {
	// Err is returned by SendText.
	Err error

	mu   sync.Mutex
	sent []string
}

// SendText records the text.
func (i *MockInjector) SendText(ctx context.Context, text string) error {
	i.mu.Lock()
	i.sent = append(i.sent, text)
	i.mu.Unlock()
	return i.Err
}

// Sent returns the texts delivered so far.
func (i *MockInjector) Sent() []string {
	i.mu.Lock()
	defer i.mu.Unlock()
	out := make([]string, len(i.sent))
	copy(out, i.sent)
	return out
}
