package catalog

import (
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// MatchLevel controls how much spelling drift counts as "similar".
type MatchLevel int

const (
	// MatchStrict tolerates one edit: typos like "tomatoe".
	MatchStrict MatchLevel = iota
	// MatchModerate tolerates two edits: "choclate" still finds
	// "Chocolate Cake".
	MatchModerate
	// MatchLoose tolerates four edits, for short free-text searches.
	MatchLoose
)

func (l MatchLevel) maxDistance() int {
	switch l {
	case MatchStrict:
		return 1
	case MatchLoose:
		return 4
	default:
		return 2
	}
}

// Match is one catalog hit. Distance 0 is an exact match.
type Match struct {
	Name     string `json:"name"`
	Distance int    `json:"distance"`
}

// distance scores query against the whole candidate and against each of
// its words, keeping the closest. Matching per word lets "choclate" find
// "Chocolate Cake" without the unrelated word inflating the distance;
// matching the whole name lets "chocolate cake" score its own entry as
// exact.
func distance(query, candidate string, level MatchLevel) (int, bool) {
	candidate = strings.ToLower(candidate)
	best := fuzzy.LevenshteinDistance(query, candidate)
	for _, word := range strings.Fields(candidate) {
		if d := fuzzy.LevenshteinDistance(query, word); d < best {
			best = d
		}
	}
	if best > level.maxDistance() {
		return 0, false
	}
	return best, true
}
