// Package scoring computes bounded 0-100 similarity between a cleaned
// candidate name and a set of target titles.
package scoring

import (
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"
)

// Score returns the best similarity between candidate and any of the target
// titles, as an integer from 0 to 100. Comparison is case-insensitive.
// An exact match scores 100 and containment in either direction scores 95;
// everything else falls through to Jaro-Winkler, computed over both the raw
// strings and their token-sorted forms so word reordering in spaced titles
// is tolerated. CJK and other unspaced titles have a single token and
// compare at the character level. Empty inputs score 0.
func Score(candidate string, targets []string) int {
	candidate = strings.TrimSpace(strings.ToLower(candidate))
	if candidate == "" {
		return 0
	}

	best := 0
	for _, target := range targets {
		target = strings.TrimSpace(strings.ToLower(target))
		if target == "" {
			continue
		}

		s := scorePair(candidate, target)
		if s > best {
			best = s
		}
		if best == 100 {
			break
		}
	}

	return best
}

func scorePair(candidate, target string) int {
	if candidate == target {
		return 100
	}
	if strings.Contains(candidate, target) || strings.Contains(target, candidate) {
		return 95
	}

	sim := edlib.JaroWinklerSimilarity(candidate, target)

	if tokenSim := edlib.JaroWinklerSimilarity(sortTokens(candidate), sortTokens(target)); tokenSim > sim {
		sim = tokenSim
	}

	score := int(sim * 100)
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

// sortTokens returns the whitespace-delimited tokens of s in sorted order.
// Unspaced input comes back unchanged.
func sortTokens(s string) string {
	tokens := strings.Fields(s)
	if len(tokens) < 2 {
		return s
	}
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}
