package config

import "sync/atomic"

// Store publishes immutable config snapshots to concurrent readers.
// Writers must not modify a snapshot after calling Replace.
type Store struct {
	current atomic.Pointer[Config]
}

// NewStore creates a store holding the given initial snapshot.
func NewStore(cfg *Config) *Store {
	s := &Store{}
	if cfg == nil {
		cfg = Defaults()
	}
	s.current.Store(cfg)
	return s
}

// Snapshot returns the current config. The returned value must be
// treated as read-only.
func (s *Store) Snapshot() *Config {
	return s.current.Load()
}

// Replace swaps in a new snapshot.
func (s *Store) Replace(cfg *Config) {
	s.current.Store(cfg)
}

// Update applies fn to a copy of the current snapshot and publishes it.
func (s *Store) Update(fn func(*Config)) {
	old := s.current.Load()
	next := *old
	// The channel slice is the only reference-typed field a caller is
	// likely to edit; copy it so the old snapshot stays frozen.
	next.Reader.Channels = append([]string(nil), old.Reader.Channels...)
	fn(&next)
	s.current.Store(&next)
}
