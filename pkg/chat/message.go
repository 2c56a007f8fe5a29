// Package chat polls the game's local HTTP API for chat messages and
// turns raw entries into filtered, speakable text.
//
// The game exposes GET {base}/gamechat?lastId=N returning a JSON array of
// entries with ids strictly greater than N. Message text may embed inline
// markup tags and a trailing bracketed map-coordinate token.
package chat

import (
	"regexp"
	"strings"
)

// Message is one chat message as seen by the rest of the pipeline.
// Immutable once constructed.
type Message struct {
	// ID is the server-assigned monotonically increasing identifier.
	ID int64

	// Channel is the chat scope the message was sent on, as reported
	// by the game (localized, e.g. "Équipe", "Tous", "Escadron").
	Channel string

	// Sender is the player name, possibly with a platform suffix
	// (e.g. "Le_Camarade@psn").
	Sender string

	// Content is the message text with markup and the coordinate
	// token stripped.
	Content string

	// Metadata is the trailing map-position token, including brackets
	// (e.g. "[F4, alt. 2100 m]"), or empty.
	Metadata string

	// Enemy reports whether the sender is on the opposing team.
	Enemy bool

	// GameTime is the server timestamp in seconds of game time.
	GameTime int64
}

// rawEntry matches the JSON shape of one /gamechat array element.
type rawEntry struct {
	ID     int64  `json:"id"`
	Msg    string `json:"msg"`
	Sender string `json:"sender"`
	Enemy  bool   `json:"enemy"`
	Mode   string `json:"mode"`
	Time   int64  `json:"time"`
}

var (
	markupTagPattern = regexp.MustCompile(`</?[A-Za-z][^>]*>`)

	// A trailing bracketed grid reference: letter(s)+digit(s), with an
	// optional suffix such as ", alt. 2100 m".
	coordTokenPattern = regexp.MustCompile(`\s*(\[[A-Za-z]{1,2}\d{1,2}(?:[,;][^\]]*)?\])\s*$`)
)

// parseEntry converts a raw server entry into a Message.
// Returns false when the entry carries no speakable content.
//
// The order matters: markup is stripped first, then whatever bracketed
// coordinate token is left trailing becomes metadata.
func parseEntry(r rawEntry) (Message, bool) {
	text := markupTagPattern.ReplaceAllString(r.Msg, "")

	var metadata string
	if loc := coordTokenPattern.FindStringSubmatchIndex(text); loc != nil {
		metadata = text[loc[2]:loc[3]]
		text = text[:loc[0]]
	}

	content := strings.TrimSpace(text)
	if content == "" {
		return Message{}, false
	}

	return Message{
		ID:       r.ID,
		Channel:  r.Mode,
		Sender:   r.Sender,
		Content:  content,
		Metadata: metadata,
		Enemy:    r.Enemy,
		GameTime: r.Time,
	}, true
}

// legacyLinePattern matches one timestamped chat line from the old HTML
// page: "[channel] sender: content". An optional leading clock time is
// tolerated.
var legacyLinePattern = regexp.MustCompile(`^(?:\d{1,2}:\d{2}(?::\d{2})?\s+)?\[([^\]]+)\]\s+([^:]+):\s*(.+)$`)

// ParseLegacyLine parses one line of the legacy HTML chat page.
// Lines that do not match the expected shape are rejected.
//
// Retained as a documented fallback; the JSON endpoint is authoritative.
func ParseLegacyLine(line string) (Message, bool) {
	m := legacyLinePattern.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return Message{}, false
	}

	text := markupTagPattern.ReplaceAllString(m[3], "")

	var metadata string
	if loc := coordTokenPattern.FindStringSubmatchIndex(text); loc != nil {
		metadata = text[loc[2]:loc[3]]
		text = text[:loc[0]]
	}

	content := strings.TrimSpace(text)
	if content == "" {
		return Message{}, false
	}

	return Message{
		Channel:  strings.TrimSpace(m[1]),
		Sender:   strings.TrimSpace(m[2]),
		Content:  content,
		Metadata: metadata,
	}, true
}
