package reader

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/lecamarade/wtvoice/pkg/chat"
	"github.com/lecamarade/wtvoice/pkg/speech"
)

type feedEntry struct {
	ID     int64  `json:"id"`
	Msg    string `json:"msg"`
	Sender string `json:"sender"`
	Enemy  bool   `json:"enemy"`
	Mode   string `json:"mode"`
}

// fakeGame serves a fixed chat feed the way the game's local server
// does, honoring the lastId cursor.
func fakeGame(t *testing.T, feed []feedEntry) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/gamechat" {
			w.WriteHeader(http.StatusOK)
			return
		}
		lastID, _ := strconv.ParseInt(r.URL.Query().Get("lastId"), 10, 64)
		out := []feedEntry{}
		for _, e := range feed {
			if e.ID > lastID {
				out = append(out, e)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(out)
	}))
}

func TestReaderSpeaksFilteredChatInOrder(t *testing.T) {
	feed := []feedEntry{
		{ID: 1, Mode: "Équipe", Sender: "Ally_One", Msg: "hi"},
		{ID: 2, Mode: "Tous", Sender: "Ally_Two", Msg: "yo"},
		{ID: 3, Mode: "Équipe", Sender: "Le_Camarade@psn", Msg: "own words"},
		{ID: 4, Mode: "Escadron", Sender: "Squad_Mate", Msg: "squad only"},
	}
	server := fakeGame(t, feed)
	defer server.Close()

	engine := speech.NewMockEngine()
	queue := speech.NewQueue(5)
	dispatcher := speech.NewDispatcher(queue, engine)
	filter := chat.NewFilter("Le_Camarade", []string{"team", "all"}, 200)

	r := New(server.URL, filter, queue, dispatcher,
		WithPollerOptions(chat.WithInterval(20*time.Millisecond)),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	if !engine.WaitForSpoken(2, 2*time.Second) {
		t.Fatalf("spoken = %v, want 2 utterances", engine.Spoken())
	}
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("reader did not stop after cancellation")
	}

	spoken := engine.Spoken()
	if len(spoken) != 2 || spoken[0] != "hi" || spoken[1] != "yo" {
		t.Errorf("spoken = %v, want [hi yo]", spoken)
	}
	if r.Dropped() != 0 {
		t.Errorf("dropped = %d, want 0", r.Dropped())
	}
}

func TestReaderDropsWhenQueueFull(t *testing.T) {
	feed := make([]feedEntry, 0, 8)
	for i := 1; i <= 8; i++ {
		feed = append(feed, feedEntry{
			ID: int64(i), Mode: "Équipe", Sender: "Ally", Msg: "line " + strconv.Itoa(i),
		})
	}
	server := fakeGame(t, feed)
	defer server.Close()

	block := make(chan struct{})
	engine := speech.NewMockEngine()
	engine.SpeakFunc = func(ctx context.Context, text string) error {
		select {
		case <-block:
		case <-ctx.Done():
		}
		return nil
	}

	queue := speech.NewQueue(3)
	dispatcher := speech.NewDispatcher(queue, engine)
	filter := chat.NewFilter("Le_Camarade", []string{"team"}, 200)

	r := New(server.URL, filter, queue, dispatcher,
		WithPollerOptions(chat.WithInterval(20*time.Millisecond)),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for r.Dropped() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	close(block)
	cancel()
	<-done

	// Eight messages into a capacity-3 queue with a stalled engine: at
	// least some must have been rejected rather than buffered without
	// bound.
	if r.Dropped() == 0 {
		t.Error("expected overflow messages to be dropped")
	}
}
