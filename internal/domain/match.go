package domain

import "strings"

// Match is the result of a best-match lookup. Ancestors lists the enclosing
// entries innermost first; it is empty for a top-level match.
type Match struct {
	Entry           MenuEntry   `json:"entry"`
	Ancestors       []MenuEntry `json:"ancestors,omitempty"`
	MatchedSegments int         `json:"matchedSegments"`
}

// FindActiveItemBestMatch returns the entry whose router link most
// specifically matches path, or nil when nothing matches.
//
// Scores count consumed path segments. An exact link match scores the full
// segment count of path. On equal scores the entry met first in a depth-first,
// sibling-ordered walk wins.
func FindActiveItemBestMatch(entries []MenuEntry, path string) *Match {
	p := normalizePath(path)
	return bestMatch(entries, p, countSegments(p), nil)
}

func bestMatch(entries []MenuEntry, path string, total int, ancestors []MenuEntry) *Match {
	var best *Match
	for _, e := range entries {
		link := normalizePath(e.RouterLink)

		if e.RouterLink != "" && link == path {
			if best != nil && best.MatchedSegments >= total {
				return best
			}
			return &Match{Entry: e, Ancestors: ancestors, MatchedSegments: total}
		}

		if link != "" && strings.Contains(path, link) {
			score := total - countSegments(strings.Replace(path, link, "", 1))
			if score > 0 && (best == nil || score > best.MatchedSegments) {
				best = &Match{Entry: e, Ancestors: ancestors, MatchedSegments: score}
			}
		}

		if len(e.Items) > 0 {
			chain := make([]MenuEntry, 0, len(ancestors)+1)
			chain = append(chain, e)
			chain = append(chain, ancestors...)
			nested := bestMatch(e.Items, path, total, chain)
			if nested != nil && (best == nil || nested.MatchedSegments > best.MatchedSegments) {
				best = nested
			}
		}

		if best != nil && best.MatchedSegments >= total {
			return best
		}
	}
	return best
}

// normalizePath strips one leading and one trailing slash.
func normalizePath(p string) string {
	p = strings.TrimPrefix(p, "/")
	return strings.TrimSuffix(p, "/")
}

func countSegments(p string) int {
	return len(strings.FieldsFunc(p, func(r rune) bool { return r == '/' }))
}
