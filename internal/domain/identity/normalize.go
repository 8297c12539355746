package identity

import (
	"regexp"
	"strings"
)

// Player names arrive from several feeds with inconsistent suffixes and
// punctuation ("Gabriel Davis Jr.", "gabe davis", "Odell Beckham Jr"). The
// normalized form is the join key across every source, so it must be stable
// across process restarts and independent of locale.
var (
	suffixPattern   = regexp.MustCompile(`(?i)\s(Jr|Sr|[IVX]+)\.?$`)
	nonAlnumPattern = regexp.MustCompile(`[^a-zA-Z0-9\s]`)
)

// Normalize canonicalizes a free-text player name into a lookup key. It
// strips one trailing generational suffix token, removes every rune that is
// not a letter, digit or whitespace, trims and lowercases. Returns false when
// nothing usable remains.
func Normalize(name string) (string, bool) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", false
	}

	trimmed = strings.TrimSpace(suffixPattern.ReplaceAllString(trimmed, ""))
	trimmed = strings.TrimSpace(nonAlnumPattern.ReplaceAllString(trimmed, ""))
	if trimmed == "" {
		return "", false
	}

	return strings.ToLower(trimmed), true
}
