package chat

import "testing"

func TestParseEntry(t *testing.T) {
	t.Run("strips markup and extracts coordinate token", func(t *testing.T) {
		m, ok := parseEntry(rawEntry{
			ID:     7,
			Msg:    "Suivez-moi !<color=#FF96966E> [F4, alt. 2100 m]</color>",
			Sender: "moon_marble@psn",
			Mode:   "Équipe",
			Time:   125,
		})
		if !ok {
			t.Fatal("expected entry to parse")
		}
		if m.Content != "Suivez-moi !" {
			t.Errorf("content = %q, want %q", m.Content, "Suivez-moi !")
		}
		if m.Metadata != "[F4, alt. 2100 m]" {
			t.Errorf("metadata = %q, want %q", m.Metadata, "[F4, alt. 2100 m]")
		}
		if m.ID != 7 || m.Channel != "Équipe" || m.Sender != "moon_marble@psn" {
			t.Errorf("unexpected fields: %+v", m)
		}
	})

	t.Run("plain message has no metadata", func(t *testing.T) {
		m, ok := parseEntry(rawEntry{ID: 1, Msg: "attacking the point", Mode: "Tous"})
		if !ok {
			t.Fatal("expected entry to parse")
		}
		if m.Content != "attacking the point" || m.Metadata != "" {
			t.Errorf("got content=%q metadata=%q", m.Content, m.Metadata)
		}
	})

	t.Run("bare coordinate token without trailing text", func(t *testing.T) {
		_, ok := parseEntry(rawEntry{ID: 2, Msg: "<color=#AAA> [D3]</color>"})
		if ok {
			t.Error("entry with only a coordinate token should be dropped")
		}
	})

	t.Run("non-coordinate brackets stay in content", func(t *testing.T) {
		m, ok := parseEntry(rawEntry{ID: 3, Msg: "nice shot [lol]"})
		if !ok {
			t.Fatal("expected entry to parse")
		}
		if m.Content != "nice shot [lol]" || m.Metadata != "" {
			t.Errorf("got content=%q metadata=%q", m.Content, m.Metadata)
		}
	})

	t.Run("empty message dropped", func(t *testing.T) {
		if _, ok := parseEntry(rawEntry{ID: 4, Msg: "  "}); ok {
			t.Error("blank entry should be dropped")
		}
	})
}

func TestParseLegacyLine(t *testing.T) {
	t.Run("channel sender content shape", func(t *testing.T) {
		m, ok := ParseLegacyLine("[Équipe] moon_marble: push the left flank [B2, alt. 500 m]")
		if !ok {
			t.Fatal("expected line to parse")
		}
		if m.Channel != "Équipe" || m.Sender != "moon_marble" {
			t.Errorf("unexpected fields: %+v", m)
		}
		if m.Content != "push the left flank" || m.Metadata != "[B2, alt. 500 m]" {
			t.Errorf("got content=%q metadata=%q", m.Content, m.Metadata)
		}
	})

	t.Run("leading clock time tolerated", func(t *testing.T) {
		m, ok := ParseLegacyLine("12:41 [All] somebody: gg")
		if !ok {
			t.Fatal("expected line to parse")
		}
		if m.Sender != "somebody" || m.Content != "gg" {
			t.Errorf("unexpected fields: %+v", m)
		}
	})

	t.Run("malformed lines rejected", func(t *testing.T) {
		for _, line := range []string{
			"",
			"not a chat line",
			"[Équipe] no colon here",
			"<html><body>",
		} {
			if _, ok := ParseLegacyLine(line); ok {
				t.Errorf("line %q should be rejected", line)
			}
		}
	})
}
