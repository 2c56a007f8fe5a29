// Package speech reads chat messages aloud.
//
// It provides a unified Engine interface with two backends: an offline
// engine (local synthesis, low and bounded latency) and an online engine
// (Microsoft Edge neural voices, networked, higher and variable latency).
// A bounded Queue and a single Dispatcher worker sit between the chat
// pipeline and whichever engine is active.
//
// Example usage:
//
//	engine := speech.NewOffline()
//	defer engine.Close()
//
//	q := speech.NewQueue(5)
//	d := speech.NewDispatcher(q, engine)
//	d.Start()
//	q.TryEnqueue(speech.NewItem("enemy spotted"))
package speech

import "context"

// Engine is a speech synthesis backend.
//
// Speak blocks until the utterance has finished playing; the dispatcher
// relies on this to throttle spoken output. Implementations must be safe
// for Stop/SetVoice/SetRate to be called concurrently with Speak.
type Engine interface {
	// Speak synthesizes and plays text, returning when playback ends.
	Speak(ctx context.Context, text string) error

	// Stop interrupts the engine as far as its backend allows.
	// Engines without a true interrupt primitive only prevent audio
	// that has not started; they do not cut off an utterance mid-way.
	Stop()

	// SetVoice selects the voice by backend-specific id.
	SetVoice(id string)

	// SetRate sets the speaking rate as a percentage, 100 = normal.
	SetRate(percent int)

	// Voices lists the voices this engine can use.
	Voices() []Voice

	// Name identifies the backend ("offline", "edge", "mock").
	Name() string

	// Close releases any resources held by the engine.
	Close() error
}

// Voice describes one available voice.
type Voice struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Language string `json:"language"`
}
