// Package convert turns raw scraped recipes into the normalized app-facing
// shape: parsed ingredients, ordered steps, per-100g nutrition and a merged
// tag set.
package convert

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/use-agent/forage/models"
)

// skipPrefixes mark ingredient lines that are section labels or serving
// suggestions rather than ingredients. They are routed to
// SkippedIngredients so the user can still see what was left out.
var skipPrefixes = []string{
	"for the ",
	"for serving",
	"to serve",
	"to garnish",
	"garnish:",
	"optional:",
	"pour la ",
	"pour le ",
	"pour servir",
}

var yieldNumberRe = regexp.MustCompile(`\d+`)

// Convert normalizes a scraped recipe. It never fails: missing fields
// produce zero values, and unparseable ingredient lines still come through
// with the raw line as the name.
func Convert(r *models.ScrapedRecipe) *models.ConvertedRecipe {
	out := &models.ConvertedRecipe{
		Title:       r.Title,
		Description: r.Description,
		Steps:       convertInstructions(r),
		Nutrition:   convertNutrition(r.Nutrients),
		Tags:        mergeTags(r.Keywords, r.DietaryRestrictions),
		Servings:    parseServings(r.Yields),
		ImageURL:    r.Image,
		SourceURL:   r.CanonicalURL,
		Host:        r.Host,
	}

	if r.PrepTimeMinutes != nil {
		out.PrepTimeMinutes = *r.PrepTimeMinutes
	}
	if r.CookTimeMinutes != nil {
		out.CookTimeMinutes = *r.CookTimeMinutes
	}
	// Only a total time was given: surface it as cook time rather than
	// dropping it.
	if out.PrepTimeMinutes == 0 && out.CookTimeMinutes == 0 && r.TotalTimeMinutes != nil {
		out.CookTimeMinutes = *r.TotalTimeMinutes
	}

	for _, line := range r.AllIngredients() {
		if shouldSkip(line) {
			out.SkippedIngredients = append(out.SkippedIngredients, line)
			continue
		}
		out.Ingredients = append(out.Ingredients, ParseIngredient(line))
	}

	return out
}

func shouldSkip(line string) bool {
	lower := strings.ToLower(strings.TrimSpace(line))
	for _, prefix := range skipPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

// parseServings extracts the serving count from a yield string like
// "4 servings" or "Serves 6". Zero when absent.
func parseServings(yields string) int {
	m := yieldNumberRe.FindString(yields)
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}
	return n
}
