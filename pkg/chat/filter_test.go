package chat

import (
	"strings"
	"testing"
)

func TestFilterAccept(t *testing.T) {
	t.Run("own messages dropped regardless of case and suffix", func(t *testing.T) {
		f := NewFilter("Le_Camarade", []string{"team", "all"}, 0)
		_, ok := f.Accept(Message{Channel: "Équipe", Sender: "Le_Camarade@psn", Content: "hello"})
		if ok {
			t.Error("own message should be dropped")
		}
		_, ok = f.Accept(Message{Channel: "Équipe", Sender: "LE_CAMARADE", Content: "hello"})
		if ok {
			t.Error("own message should be dropped case-insensitively")
		}
	})

	t.Run("disabled channel dropped", func(t *testing.T) {
		f := NewFilter("", []string{"team", "all"}, 0)
		if _, ok := f.Accept(Message{Channel: "Escadron", Sender: "x", Content: "hi"}); ok {
			t.Error("squadron message should be dropped when only team and all are enabled")
		}
	})

	t.Run("localized channel names match canonical config", func(t *testing.T) {
		f := NewFilter("", []string{"team"}, 0)
		text, ok := f.Accept(Message{Channel: "Équipe", Sender: "A", Content: "hi"})
		if !ok || text != "hi" {
			t.Errorf("got (%q, %v), want (\"hi\", true)", text, ok)
		}
	})

	t.Run("other players pass through", func(t *testing.T) {
		f := NewFilter("Le_Camarade", []string{"team", "all", "squadron"}, 0)
		text, ok := f.Accept(Message{Channel: "Tous", Sender: "moon_marble", Content: "enemy spotted"})
		if !ok || text != "enemy spotted" {
			t.Errorf("got (%q, %v), want (\"enemy spotted\", true)", text, ok)
		}
	})
}

func TestTruncate(t *testing.T) {
	t.Run("short text unchanged", func(t *testing.T) {
		if got := Truncate("hello", 200); got != "hello" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("long text cut with ellipsis inside limit", func(t *testing.T) {
		long := strings.Repeat("word ", 60)
		got := Truncate(long, 200)
		if len([]rune(got)) > 200 {
			t.Errorf("truncated length %d exceeds limit", len([]rune(got)))
		}
		if !strings.HasSuffix(got, "...") {
			t.Errorf("expected ellipsis suffix, got %q", got)
		}
	})

	t.Run("prefers word boundary", func(t *testing.T) {
		got := Truncate("aaaa bbbb cccc dddd", 12)
		if strings.Contains(strings.TrimSuffix(got, "..."), "ccc") {
			t.Errorf("cut mid-word: %q", got)
		}
	})
}
