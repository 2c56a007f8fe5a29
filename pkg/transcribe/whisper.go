// Package transcribe converts captured speech to text through a local
// whisper.cpp server. Raw PCM from the capture layer is wrapped in a
// WAV header and posted to the server's /inference endpoint.
package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/lecamarade/wtvoice/internal/httpc"
	"github.com/lecamarade/wtvoice/internal/log"
)

// DefaultServerURL is where a locally started whisper.cpp server
// listens by default.
const DefaultServerURL = "http://localhost:8080"

// Client talks to a whisper.cpp server instance.
type Client struct {
	serverURL string
	client    *http.Client
	logger    *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client, mostly for tests.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.client = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(cl *Client) { cl.logger = l }
}

// NewClient builds a whisper.cpp client. serverURL empty means
// DefaultServerURL.
func NewClient(serverURL string, opts ...Option) *Client {
	if serverURL == "" {
		serverURL = DefaultServerURL
	}
	c := &Client{
		serverURL: serverURL,
		client:    httpc.Client,
		logger:    log.L(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// inferenceResponse is the subset of the whisper.cpp /inference reply
// we care about.
type inferenceResponse struct {
	Text  string `json:"text"`
	Error string `json:"error"`
}

// Transcribe sends PCM16 16 kHz mono samples for recognition and
// returns the recognized text. translate asks the model to translate
// into English instead of transcribing verbatim.
func (c *Client) Transcribe(ctx context.Context, samples []byte, language string, translate bool) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", "capture.wav")
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if err := WriteWAV(part, samples); err != nil {
		return "", fmt.Errorf("encode wav: %w", err)
	}

	writer.WriteField("response_format", "json")
	if language != "" {
		writer.WriteField("language", language)
	}
	if translate {
		writer.WriteField("translate", "true")
	}
	writer.Close()

	url := c.serverURL + "/inference"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("whisper server request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("whisper server error (status %d): %s", resp.StatusCode, respBody)
	}

	var result inferenceResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode whisper response: %w", err)
	}
	if result.Error != "" {
		return "", fmt.Errorf("whisper server: %s", result.Error)
	}

	c.logger.Debug("transcription complete", "text_len", len(result.Text))
	return result.Text, nil
}

// IsReachable reports whether the server answers at all, used for the
// startup health report.
func (c *Client) IsReachable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.serverURL+"/", nil)
	if err != nil {
		return false
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return true
}

// WAV format parameters matching the capture layer.
const (
	wavSampleRate    = 16000
	wavChannels      = 1
	wavBitsPerSample = 16
)

// WriteWAV wraps raw PCM16 little-endian samples in a minimal RIFF/WAVE
// header and writes the result to w.
func WriteWAV(w io.Writer, samples []byte) error {
	const headerLen = 44
	dataLen := len(samples)
	byteRate := wavSampleRate * wavChannels * wavBitsPerSample / 8
	blockAlign := wavChannels * wavBitsPerSample / 8

	header := make([]byte, 0, headerLen)
	header = append(header, "RIFF"...)
	header = appendUint32(header, uint32(headerLen-8+dataLen))
	header = append(header, "WAVE"...)
	header = append(header, "fmt "...)
	header = appendUint32(header, 16) // PCM chunk size
	header = appendUint16(header, 1)  // PCM format
	header = appendUint16(header, wavChannels)
	header = appendUint32(header, wavSampleRate)
	header = appendUint32(header, uint32(byteRate))
	header = appendUint16(header, uint16(blockAlign))
	header = appendUint16(header, wavBitsPerSample)
	header = append(header, "data"...)
	header = appendUint32(header, uint32(dataLen))

	if _, err := w.Write(header); err != nil {
		return err
	}
	_, err := w.Write(samples)
	return err
}

func appendUint32(b []byte, v uint32) []byte {
	return append(b, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

func appendUint16(b []byte, v uint16) []byte {
	return append(b, byte(v), byte(v>>8))
}
