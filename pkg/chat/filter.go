package chat

import (
	"strings"
	"unicode/utf8"
)

// DefaultTruncateLength caps the text handed to speech synthesis.
const DefaultTruncateLength = 200

// Canonical channel names used in configuration. The game reports
// localized names; both forms are accepted in the allow-set.
const (
	ChannelTeam     = "team"
	ChannelAll      = "all"
	ChannelSquadron = "squadron"
)

var channelAliases = map[string]string{
	"team":     ChannelTeam,
	"équipe":   ChannelTeam,
	"equipe":   ChannelTeam,
	"all":      ChannelAll,
	"tous":     ChannelAll,
	"squadron": ChannelSquadron,
	"escadron": ChannelSquadron,
}

// NormalizeChannel maps a game-reported or configured channel name to
// its canonical form. Unknown names are lowercased as-is.
func NormalizeChannel(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	if canon, ok := channelAliases[key]; ok {
		return canon
	}
	return key
}

// Filter decides which messages get spoken and shapes their text.
// A Filter is immutable; build a new one when settings change.
type Filter struct {
	own   string
	allow map[string]struct{}
	limit int
}

// NewFilter builds a filter from the player's own username, the enabled
// channel set, and a truncation limit (0 means DefaultTruncateLength).
func NewFilter(ownUsername string, channels []string, truncateLength int) *Filter {
	allow := make(map[string]struct{}, len(channels))
	for _, c := range channels {
		allow[NormalizeChannel(c)] = struct{}{}
	}
	if truncateLength <= 0 {
		truncateLength = DefaultTruncateLength
	}
	return &Filter{
		own:   strings.ToLower(strings.TrimSpace(ownUsername)),
		allow: allow,
		limit: truncateLength,
	}
}

// Accept returns the speakable text for a message, or ok=false when the
// message should be dropped: the player's own messages (the sender name
// may carry a platform suffix, so a substring match is used) and any
// channel outside the allow-set.
func (f *Filter) Accept(m Message) (string, bool) {
	if f.own != "" && strings.Contains(strings.ToLower(m.Sender), f.own) {
		return "", false
	}
	if _, ok := f.allow[NormalizeChannel(m.Channel)]; !ok {
		return "", false
	}
	return Truncate(m.Content, f.limit), true
}

// Truncate cuts s to at most limit runes, preferring a word boundary,
// and marks the cut with an ellipsis inside the limit.
func Truncate(s string, limit int) string {
	if limit <= 3 || utf8.RuneCountInString(s) <= limit {
		return s
	}

	runes := []rune(s)
	cut := limit - 3
	// Back up to the previous space if one is reasonably close, so a
	// word is not chopped mid-way.
	for i := cut; i > cut-20 && i > 0; i-- {
		if runes[i] == ' ' {
			cut = i
			break
		}
	}
	return strings.TrimRight(string(runes[:cut]), " ") + "..."
}
