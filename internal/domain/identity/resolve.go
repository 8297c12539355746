package identity

import (
	"sort"
	"strings"
)

// Resolve finds the candidate key best matching a free-text query name.
//
// Step 1 normalizes the query and returns it when it is itself a key. Step 2
// falls back to a linear scan returning the FIRST key that contains the
// normalized query as a substring. This is deliberately first-match, not
// best-match: a short query contained in several keys can resolve to an
// unintended player, and callers needing higher precision should pre-filter
// candidates by position or team instead. Keys are scanned in sorted order so
// the fallback is deterministic across restarts; which key wins a tie is an
// implementation detail, not a contract.
func Resolve[V any](query string, candidates map[string]V) (string, bool) {
	if len(candidates) == 0 {
		return "", false
	}

	key, ok := Normalize(query)
	if !ok {
		return "", false
	}

	if _, exists := candidates[key]; exists {
		return key, true
	}

	keys := make([]string, 0, len(candidates))
	for candidate := range candidates {
		keys = append(keys, candidate)
	}
	sort.Strings(keys)

	for _, candidate := range keys {
		if strings.Contains(candidate, key) {
			return candidate, true
		}
	}

	return "", false
}
