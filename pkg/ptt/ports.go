// Package ptt orchestrates one push-to-talk utterance end to end:
// joystick button down starts microphone capture, button up stops it,
// the audio is transcribed and the text injected into the game's chat.
//
// The package owns only the state machine; capture, transcription and
// injection are collaborators behind narrow interfaces.
package ptt

import "context"

// Capture records microphone audio for the duration of a button hold.
type Capture interface {
	// Start begins capturing. A capture already in progress is
	// stopped and discarded first.
	Start(ctx context.Context) error

	// Stop ends capturing and returns the recorded samples
	// (PCM16 mono). An empty buffer signals "too short, abort".
	Stop() ([]byte, error)
}

// Transcriber converts a sample buffer to text.
type Transcriber interface {
	// Transcribe returns the recognized text. When translate is set
	// the text is translated to English regardless of the spoken
	// language.
	Transcribe(ctx context.Context, samples []byte, language string, translate bool) (string, error)
}

// Injector delivers text into the game's chat input via simulated
// keystrokes. Failure is non-fatal to callers.
type Injector interface {
	SendText(ctx context.Context, text string) error
}
