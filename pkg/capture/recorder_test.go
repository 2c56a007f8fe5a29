package capture

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// fakeRecorderBinary writes a script that emits fixed bytes on stdout
// and then blocks, standing in for a live arecord stream.
func fakeRecorderBinary(t *testing.T, payload string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fake-arecord")
	script := "#!/bin/sh\nprintf '" + payload + "'\nsleep 30\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRecorderCapturesStream(t *testing.T) {
	r := NewRecorder(WithBinary(fakeRecorderBinary(t, "abcdef")))

	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	time.Sleep(100 * time.Millisecond)

	samples, err := r.Stop()
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	if string(samples) != "abcdef" {
		t.Errorf("samples = %q, want %q", samples, "abcdef")
	}
}

func TestRecorderRestartDiscardsPrevious(t *testing.T) {
	r := NewRecorder(WithBinary(fakeRecorderBinary(t, "xx")))
	ctx := context.Background()

	if err := r.Start(ctx); err != nil {
		t.Fatalf("first start: %v", err)
	}
	time.Sleep(50 * time.Millisecond)
	if err := r.Start(ctx); err != nil {
		t.Fatalf("second start: %v", err)
	}
	time.Sleep(100 * time.Millisecond)

	samples, err := r.Stop()
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	// Only the second session's bytes survive.
	if string(samples) != "xx" {
		t.Errorf("samples = %q, want %q", samples, "xx")
	}
}

func TestRecorderStopWithoutStart(t *testing.T) {
	r := NewRecorder()
	samples, err := r.Stop()
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	if samples != nil {
		t.Errorf("samples = %v, want nil", samples)
	}
}

func TestRecorderMissingBinary(t *testing.T) {
	r := NewRecorder(WithBinary("/nonexistent/arecord"))
	if err := r.Start(context.Background()); err == nil {
		t.Fatal("expected an error for a missing binary")
	}
}

func TestDuration(t *testing.T) {
	cases := []struct {
		name  string
		bytes int
		want  time.Duration
	}{
		{"empty", 0, 0},
		{"one second", SampleRate * BytesPerSample, time.Second},
		{"half second", SampleRate * BytesPerSample / 2, 500 * time.Millisecond},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Duration(make([]byte, tc.bytes)); got != tc.want {
				t.Errorf("Duration(%d bytes) = %v, want %v", tc.bytes, got, tc.want)
			}
		})
	}
}
