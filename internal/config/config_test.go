package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Game.BaseURL != "http://localhost:8111" {
		t.Errorf("baseUrl = %q", cfg.Game.BaseURL)
	}
	if cfg.Reader.QueueCapacity != 5 {
		t.Errorf("queueCapacity = %d, want 5", cfg.Reader.QueueCapacity)
	}
}

func TestLoadLayersOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := []byte("reader:\n  enabled: true\n  engine: edge\nptt:\n  button: 4\n")
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.Reader.Enabled || cfg.Reader.Engine != "edge" {
		t.Errorf("reader = %+v", cfg.Reader)
	}
	if cfg.PTT.Button != 4 {
		t.Errorf("button = %d, want 4", cfg.PTT.Button)
	}
	// Untouched sections keep their defaults.
	if cfg.Whisper.ServerURL != "http://localhost:8080" {
		t.Errorf("whisper url = %q", cfg.Whisper.ServerURL)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Defaults()
	cfg.Reader.OwnUsername = "Le_Camarade"
	cfg.Reader.Channels = []string{"team"}

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Reader.OwnUsername != "Le_Camarade" {
		t.Errorf("ownUsername = %q", got.Reader.OwnUsername)
	}
	if len(got.Reader.Channels) != 1 || got.Reader.Channels[0] != "team" {
		t.Errorf("channels = %v", got.Reader.Channels)
	}
}

func TestPollIntervalFloor(t *testing.T) {
	g := GameConfig{PollIntervalMs: 10}
	if got := g.PollInterval(); got != 100*time.Millisecond {
		t.Errorf("interval = %v, want floor of 100ms", got)
	}
	g.PollIntervalMs = 750
	if got := g.PollInterval(); got != 750*time.Millisecond {
		t.Errorf("interval = %v", got)
	}
}

func TestStoreUpdateDoesNotMutateSnapshots(t *testing.T) {
	store := NewStore(Defaults())
	before := store.Snapshot()

	store.Update(func(c *Config) {
		c.Reader.Channels = append(c.Reader.Channels, "squadron")
		c.Reader.Engine = "edge"
	})

	if before.Reader.Engine != "offline" {
		t.Error("earlier snapshot changed under an update")
	}
	if len(before.Reader.Channels) != 2 {
		t.Errorf("earlier snapshot channels = %v", before.Reader.Channels)
	}
	after := store.Snapshot()
	if after.Reader.Engine != "edge" || len(after.Reader.Channels) != 3 {
		t.Errorf("updated snapshot = %+v", after.Reader)
	}
}
