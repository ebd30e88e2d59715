package catalog

import (
	"strings"

	"github.com/use-agent/forage/models"
)

// MergeResult splits converted ingredients into those matching the catalog
// and those needing user validation before they become new catalog entries.
type MergeResult struct {
	// Ingredients matched the catalog exactly (case-insensitive) and
	// carry the catalog's canonical casing. Quantity, unit and note stay
	// as scraped — the catalog only owns the name.
	Ingredients []models.NormalizedIngredient

	// Pending are unmatched ingredients queued for validation.
	Pending []models.NormalizedIngredient
}

// Resolve matches a converted recipe against the catalog in place. Exact
// ingredient and tag matches adopt the catalog's canonical casing;
// ingredients without an exact match are queued on PendingIngredients for
// user validation, each with similar known names as suggestions, rather
// than silently becoming new entries.
func (c *Catalog) Resolve(r *models.ConvertedRecipe) {
	seen := make(map[string]struct{})
	for i, ing := range r.Ingredients {
		if canonical, ok := c.Lookup(ing.Name); ok {
			r.Ingredients[i].Name = canonical
			continue
		}

		key := strings.ToLower(strings.TrimSpace(ing.Name))
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		pending := models.PendingIngredient{Ingredient: ing}
		for _, m := range c.FindSimilarIngredients(ing.Name, MatchModerate) {
			pending.Suggestions = append(pending.Suggestions, m.Name)
		}
		r.PendingIngredients = append(r.PendingIngredients, pending)
	}

	for i, tag := range r.Tags {
		if canonical, ok := c.LookupTag(tag); ok {
			r.Tags[i] = canonical
		}
	}
}

// MergeIngredients resolves scraped ingredients against the catalog.
// Duplicate names within the input (case-insensitive) collapse to the
// first occurrence, keeping its quantity.
func (c *Catalog) MergeIngredients(items []models.NormalizedIngredient) MergeResult {
	var out MergeResult
	seen := make(map[string]struct{})

	for _, item := range items {
		key := strings.ToLower(strings.TrimSpace(item.Name))
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		if canonical, ok := c.Lookup(item.Name); ok {
			item.Name = canonical
			out.Ingredients = append(out.Ingredients, item)
		} else {
			out.Pending = append(out.Pending, item)
		}
	}
	return out
}
