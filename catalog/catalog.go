// Package catalog matches scraped ingredient and tag names against the
// app's known catalog, so imports reuse existing entries instead of
// creating near-duplicates like "Chocolate" and "choclate".
package catalog

import (
	"sort"
	"strings"
)

// Catalog is an in-memory snapshot of the known names. Instances are
// immutable; rebuild to pick up catalog changes.
type Catalog struct {
	ingredients []string
	tags        []string
}

// New builds a catalog over the known ingredient and tag names.
func New(ingredients, tags []string) *Catalog {
	return &Catalog{
		ingredients: append([]string(nil), ingredients...),
		tags:        append([]string(nil), tags...),
	}
}

// FindSimilarIngredients returns known ingredients similar to query at the
// given level, closest first. An exact (case-insensitive) hit sorts ahead
// of fuzzy ones.
func (c *Catalog) FindSimilarIngredients(query string, level MatchLevel) []Match {
	return findSimilar(query, c.ingredients, level)
}

// FindSimilarTags is FindSimilarIngredients over the tag names.
func (c *Catalog) FindSimilarTags(query string, level MatchLevel) []Match {
	return findSimilar(query, c.tags, level)
}

// Lookup returns the canonical casing for an exact (case-insensitive)
// ingredient name match.
func (c *Catalog) Lookup(name string) (string, bool) {
	return lookupIn(c.ingredients, name)
}

// LookupTag is Lookup over the tag names.
func (c *Catalog) LookupTag(name string) (string, bool) {
	return lookupIn(c.tags, name)
}

func lookupIn(known []string, name string) (string, bool) {
	want := strings.ToLower(strings.TrimSpace(name))
	for _, k := range known {
		if strings.ToLower(k) == want {
			return k, true
		}
	}
	return "", false
}

func findSimilar(query string, candidates []string, level MatchLevel) []Match {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}

	var out []Match
	for _, candidate := range candidates {
		if d, ok := distance(query, candidate, level); ok {
			out = append(out, Match{Name: candidate, Distance: d})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Distance < out[j].Distance
	})
	return out
}
