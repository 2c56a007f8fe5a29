package speech

import (
	"context"
	"sync"
	"time"
)

// MockEngine implements Engine for testing.
// All behavior can be customized via function fields.
type MockEngine struct {
	// SpeakFunc is called when Speak is invoked. If nil, Speak
	// returns immediately with no error.
	SpeakFunc func(ctx context.Context, text string) error

	// StopFunc is called when Stop is invoked.
	StopFunc func()

	mu     sync.Mutex
	spoken []string
	voice  string
	rate   int
	closed bool
}

// NewMockEngine creates a mock that records every utterance.
func NewMockEngine() *MockEngine {
	return &MockEngine{rate: 100}
}

// Speak records the text and delegates to SpeakFunc if set.
func (m *MockEngine) Speak(ctx context.Context, text string) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrEngineClosed
	}
	m.spoken = append(m.spoken, text)
	fn := m.SpeakFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, text)
	}
	return nil
}

// Stop delegates to StopFunc if set.
func (m *MockEngine) Stop() {
	if m.StopFunc != nil {
		m.StopFunc()
	}
}

// SetVoice records the selected voice.
func (m *MockEngine) SetVoice(id string) {
	m.mu.Lock()
	m.voice = id
	m.mu.Unlock()
}

// SetRate records the selected rate.
func (m *MockEngine) SetRate(percent int) {
	m.mu.Lock()
	m.rate = percent
	m.mu.Unlock()
}

// Voices returns a single fake voice.
func (m *MockEngine) Voices() []Voice {
	return []Voice{{ID: "mock", Name: "Mock", Language: "en-US"}}
}

// Name identifies the backend.
func (m *MockEngine) Name() string { return "mock" }

// Close marks the engine closed.
func (m *MockEngine) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

// Spoken returns the utterances spoken so far.
func (m *MockEngine) Spoken() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.spoken))
	copy(out, m.spoken)
	return out
}

// Voice returns the last voice set.
func (m *MockEngine) Voice() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.voice
}

// Rate returns the last rate set.
func (m *MockEngine) Rate() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rate
}

// WaitForSpoken polls until at least n utterances were spoken or the
// timeout elapses. Test helper.
func (m *MockEngine) WaitForSpoken(n int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		m.mu.Lock()
		count := len(m.spoken)
		m.mu.Unlock()
		if count >= n {
			return true
		}
		time.Sleep(2 * time.Millisecond)
	}
	return false
}
