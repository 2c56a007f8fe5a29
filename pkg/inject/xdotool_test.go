package inject

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

// recordingRunner captures every xdotool invocation.
type recordingRunner struct {
	calls [][]string
	err   error
}

func (r *recordingRunner) run(ctx context.Context, args ...string) error {
	r.calls = append(r.calls, args)
	return r.err
}

func newTestInjector(r *recordingRunner, opts ...Option) *Injector {
	opts = append(opts, WithDelay(time.Millisecond))
	i := NewInjector(opts...)
	i.run = r.run
	return i
}

func TestSendTextSequence(t *testing.T) {
	rec := &recordingRunner{}
	i := newTestInjector(rec)

	if err := i.SendText(context.Background(), "attacking D4"); err != nil {
		t.Fatalf("send: %v", err)
	}

	want := [][]string{
		{"key", "Return"},
		{"type", "--delay", "0", "--", "attacking D4"},
		{"key", "Return"},
	}
	if len(rec.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", rec.calls, want)
	}
	for n := range want {
		if strings.Join(rec.calls[n], " ") != strings.Join(want[n], " ") {
			t.Errorf("call %d = %v, want %v", n, rec.calls[n], want[n])
		}
	}
}

func TestSendTextCustomChatKey(t *testing.T) {
	rec := &recordingRunner{}
	i := newTestInjector(rec, WithChatKey("t"))

	if err := i.SendText(context.Background(), "hello"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if got := rec.calls[0]; got[1] != "t" {
		t.Errorf("open-chat key = %q, want t", got[1])
	}
	// Submit is always Return regardless of the open binding.
	if got := rec.calls[len(rec.calls)-1]; got[1] != "Return" {
		t.Errorf("submit key = %q, want Return", got[1])
	}
}

func TestSendTextEmptyNoop(t *testing.T) {
	rec := &recordingRunner{}
	i := newTestInjector(rec)

	if err := i.SendText(context.Background(), "   "); err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(rec.calls) != 0 {
		t.Errorf("blank text caused %d invocations, want 0", len(rec.calls))
	}
}

func TestSendTextRunnerFailure(t *testing.T) {
	rec := &recordingRunner{err: errors.New("cannot open display")}
	i := newTestInjector(rec)

	if err := i.SendText(context.Background(), "hello"); err == nil {
		t.Fatal("expected the runner error to surface")
	}
	if len(rec.calls) != 1 {
		t.Errorf("sequence continued after a failed step: %v", rec.calls)
	}
}

func TestSendTextCancelledContext(t *testing.T) {
	rec := &recordingRunner{}
	i := NewInjector(WithDelay(time.Second))
	i.run = rec.run

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := i.SendText(ctx, "hello"); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
