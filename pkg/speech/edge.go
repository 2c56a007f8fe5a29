package speech

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"gopkg.in/hraban/opus.v2"
)

const (
	edgeWSBaseURL = "wss://speech.platform.bing.com/consumer/speech/synthesize/readaloud/edge/v1"

	// Public token used by the Edge browser's read-aloud feature.
	edgeClientToken = "6A5AA1D4EAFF4E9FB37E23D68491D6F4"

	// Edge delivers opus audio in a webm container at 24kHz mono.
	edgeOutputFormat = "webm-24khz-16bit-mono-opus"
	edgeSampleRate   = 24000

	edgeTurnTimeout = 30 * time.Second
)

// Edge synthesizes speech with Microsoft Edge neural voices over the
// read-aloud websocket protocol. Each utterance is one connection:
// synthesis first, playback after, so latency is higher and variable
// and connectivity is required.
//
// Edge has no interrupt primitive: Stop does not cut off an utterance
// that already started playing; it only matters for queued items.
type Edge struct {
	wsURL  string
	dialer *websocket.Dialer
	logger *slog.Logger
	player *pcmPlayer

	mu    sync.Mutex
	voice string
	rate  string // prosody rate, e.g. "+0%"
}

// EdgeOption configures the edge engine.
type EdgeOption func(*Edge)

// WithEdgeURL overrides the websocket endpoint (tests).
func WithEdgeURL(url string) EdgeOption {
	return func(e *Edge) { e.wsURL = url }
}

// WithEdgeLogger sets the structured logger.
func WithEdgeLogger(l *slog.Logger) EdgeOption {
	return func(e *Edge) { e.logger = l.With("component", "speech.edge") }
}

// NewEdge creates the online engine.
func NewEdge(opts ...EdgeOption) *Edge {
	e := &Edge{
		wsURL:  edgeWSBaseURL,
		dialer: websocket.DefaultDialer,
		logger: slog.Default().With("component", "speech.edge"),
		player: newPCMPlayer(edgeSampleRate),
		voice:  "en-US-GuyNeural",
		rate:   "+0%",
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Speak synthesizes text over the websocket, then plays the decoded
// audio. It blocks until playback finishes.
func (e *Edge) Speak(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	start := time.Now()
	webm, err := e.synthesize(ctx, text)
	if err != nil {
		return wrapErr("edge", err)
	}

	pcm, err := decodeOpusWebM(webm)
	if err != nil {
		return wrapErr("edge", err)
	}

	e.logger.Debug("synthesized audio",
		"chars", len(text),
		"bytes", len(pcm),
		"latency_ms", time.Since(start).Milliseconds(),
	)

	if err := e.player.play(ctx, pcm); err != nil {
		return wrapErr("edge", err)
	}
	return nil
}

// synthesize runs one read-aloud turn and returns the webm audio.
func (e *Edge) synthesize(ctx context.Context, text string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, edgeTurnTimeout)
	defer cancel()

	url := fmt.Sprintf("%s?TrustedClientToken=%s&ConnectionId=%s",
		e.wsURL, edgeClientToken, connectionID())

	conn, _, err := e.dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	deadline, _ := ctx.Deadline()
	conn.SetReadDeadline(deadline)
	conn.SetWriteDeadline(deadline)

	if err := conn.WriteMessage(websocket.TextMessage, e.configMessage()); err != nil {
		return nil, fmt.Errorf("send config: %w", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, e.ssmlMessage(text)); err != nil {
		return nil, fmt.Errorf("send ssml: %w", err)
	}

	var audio bytes.Buffer
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			return nil, fmt.Errorf("read: %w", err)
		}

		switch msgType {
		case websocket.TextMessage:
			if strings.Contains(string(data), "Path:turn.end") {
				if audio.Len() == 0 {
					return nil, ErrNoAudio
				}
				return audio.Bytes(), nil
			}
		case websocket.BinaryMessage:
			// Binary frames carry a 2-byte big-endian header
			// length, the text headers, then raw audio.
			if len(data) < 2 {
				continue
			}
			headerLen := int(binary.BigEndian.Uint16(data[:2]))
			if len(data) < 2+headerLen {
				continue
			}
			header := string(data[2 : 2+headerLen])
			if strings.Contains(header, "Path:audio") {
				audio.Write(data[2+headerLen:])
			}
		}
	}
}

func (e *Edge) configMessage() []byte {
	return []byte(fmt.Sprintf(
		"X-Timestamp:%s\r\nContent-Type:application/json; charset=utf-8\r\nPath:speech.config\r\n\r\n"+
			`{"context":{"synthesis":{"audio":{"metadataoptions":{"sentenceBoundaryEnabled":"false","wordBoundaryEnabled":"false"},"outputFormat":"%s"}}}}`,
		edgeTimestamp(), edgeOutputFormat))
}

func (e *Edge) ssmlMessage(text string) []byte {
	e.mu.Lock()
	voice, rate := e.voice, e.rate
	e.mu.Unlock()

	// Voice ids are "<lang>-<region>-<name>Neural".
	lang := "en-US"
	if parts := strings.SplitN(voice, "-", 3); len(parts) == 3 {
		lang = parts[0] + "-" + parts[1]
	}

	ssml := fmt.Sprintf(
		`<speak version='1.0' xmlns='http://www.w3.org/2001/10/synthesis' xml:lang='%s'><voice name='%s'><prosody pitch='+0Hz' rate='%s' volume='+0%%'>%s</prosody></voice></speak>`,
		lang, voice, rate, escapeXML(text))

	return []byte(fmt.Sprintf(
		"X-RequestId:%s\r\nContent-Type:application/ssml+xml\r\nX-Timestamp:%s\r\nPath:ssml\r\n\r\n%s",
		requestID(), edgeTimestamp(), ssml))
}

// Stop is a no-op for in-flight audio: the protocol offers no
// interrupt. Pending queue items are handled by the dispatcher.
func (e *Edge) Stop() {}

// SetVoice selects the Edge neural voice (e.g. "fr-FR-HenriNeural").
func (e *Edge) SetVoice(id string) {
	if id == "" {
		return
	}
	e.mu.Lock()
	e.voice = id
	e.mu.Unlock()
}

// SetRate sets the speaking rate as a percentage, 100 = normal.
// Edge expects a relative prosody value such as "+50%" or "-20%".
func (e *Edge) SetRate(percent int) {
	if percent <= 0 {
		return
	}
	e.mu.Lock()
	e.rate = fmt.Sprintf("%+d%%", percent-100)
	e.mu.Unlock()
}

// Voices lists the curated Edge voice set.
func (e *Edge) Voices() []Voice {
	return DefaultEdgeVoices
}

// Name identifies the backend.
func (e *Edge) Name() string { return "edge" }

// Close releases resources. Connections are per-utterance, so there is
// nothing persistent to tear down.
func (e *Edge) Close() error { return nil }

// decodeOpusWebM pulls the opus packets out of the webm container and
// decodes them to PCM16 mono at the edge sample rate.
func decodeOpusWebM(webm []byte) ([]byte, error) {
	packets := extractOpusPackets(webm)
	if len(packets) == 0 {
		return nil, ErrNoAudio
	}

	dec, err := opus.NewDecoder(edgeSampleRate, 1)
	if err != nil {
		return nil, fmt.Errorf("opus decoder: %w", err)
	}

	var out bytes.Buffer
	frame := make([]int16, 5760) // max opus frame: 120ms at 48kHz
	for _, pkt := range packets {
		n, err := dec.Decode(pkt, frame)
		if err != nil {
			// A single corrupt packet is a glitch, not a failure.
			continue
		}
		for _, s := range frame[:n] {
			out.WriteByte(byte(s))
			out.WriteByte(byte(s >> 8))
		}
	}
	if out.Len() == 0 {
		return nil, ErrNoAudio
	}
	return out.Bytes(), nil
}

func escapeXML(s string) string {
	r := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		"'", "&apos;",
		`"`, "&quot;",
	)
	return r.Replace(s)
}

func edgeTimestamp() string {
	return time.Now().UTC().Format("Mon Jan 02 2006 15:04:05 GMT+0000 (Coordinated Universal Time)")
}

func connectionID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func requestID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
