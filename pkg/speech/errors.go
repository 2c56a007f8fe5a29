package speech

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions.
var (
	// ErrEngineClosed is returned when speaking through a closed engine.
	ErrEngineClosed = errors.New("speech: engine closed")

	// ErrNoAudio is returned when synthesis produced no audio data.
	ErrNoAudio = errors.New("speech: no audio produced")

	// ErrInterrupted is returned when an utterance was cut off by Stop.
	ErrInterrupted = errors.New("speech: interrupted")
)

// EngineError wraps an error with the backend that produced it.
type EngineError struct {
	Engine string
	Err    error
}

// Error implements the error interface.
func (e *EngineError) Error() string {
	return fmt.Sprintf("speech [%s]: %v", e.Engine, e.Err)
}

// Unwrap returns the underlying error.
func (e *EngineError) Unwrap() error {
	return e.Err
}

// wrapErr wraps an error with engine context.
func wrapErr(engine string, err error) error {
	if err == nil {
		return nil
	}
	return &EngineError{Engine: engine, Err: err}
}
