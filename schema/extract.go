// Package schema parses structured recipe data out of raw page markup.
//
// Pages embed a machine-readable recipe description in JSON-LD script tags
// under the schema.org/Recipe vocabulary. Sites encode the Recipe object in
// three equally common ways: as the root object, as a member of a root-level
// "@graph" list, or as a member of a root-level array. All three are tried,
// in that order, first match wins.
package schema

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/forage/models"
	"github.com/ysmood/gson"
)

const ldJSONSelector = `script[type="application/ld+json"]`

// Extract parses a ScrapedRecipe from page markup. sourceURL is the URL the
// markup was fetched from; it fills Host and the canonical URL fallback.
//
// When no structured block exists, or the block yields no ingredients, the
// error kind is NoSchemaFoundInWildMode. This backend only knows how to read
// schema blocks, so "unusable schema" and "no schema" collapse into the same
// reason here; heuristic backends report NoRecipeFoundError instead.
func Extract(pageHTML, sourceURL string) (*models.ScrapedRecipe, error) {
	node, ok := findRecipeNode(pageHTML)
	if !ok {
		return nil, models.NewHostError(models.KindNoSchemaFound,
			"no recipe schema found in page", sourceURL, nil)
	}

	recipe := fromNode(node, sourceURL)
	if len(recipe.AllIngredients()) == 0 {
		return nil, models.NewHostError(models.KindNoSchemaFound,
			"recipe schema has no ingredients", sourceURL, nil)
	}

	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML)); err == nil {
		if groups := extractIngredientGroups(doc); len(groups) > 0 {
			recipe.IngredientGroups = groups
		}
		recipe.Nutrients = inferServingSize(doc, recipe.Nutrients)
	}

	return recipe, nil
}

// FromJSON builds a recipe from a raw JSON document that is (or contains)
// a Recipe object — the path used by backends that resolve the node inside
// an interpreter and hand the object back as JSON. Failures are
// NoRecipeFoundError: the interpreter looked and found nothing usable.
func FromJSON(raw, sourceURL string) (*models.ScrapedRecipe, error) {
	node, ok := resolveRecipe(gson.NewFrom(raw))
	if !ok {
		return nil, models.NewHostError(models.KindNoRecipeFound,
			"no recipe object in payload", sourceURL, nil)
	}
	recipe := fromNode(node, sourceURL)
	if len(recipe.AllIngredients()) == 0 {
		return nil, models.NewHostError(models.KindNoRecipeFound,
			"recipe has no ingredients", sourceURL, nil)
	}
	return recipe, nil
}

// findRecipeNode scans every JSON-LD block in the page and returns the first
// Recipe object resolved from any of the three accepted encodings.
func findRecipeNode(pageHTML string) (gson.JSON, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		return gson.JSON{}, false
	}

	var recipe gson.JSON
	found := false
	doc.Find(ldJSONSelector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		raw := strings.TrimSpace(s.Text())
		if raw == "" {
			return true
		}
		if node, ok := resolveRecipe(gson.NewFrom(raw)); ok {
			recipe = node
			found = true
			return false
		}
		return true
	})
	return recipe, found
}

// resolveRecipe locates the Recipe object inside one JSON-LD document:
// direct root object, first Recipe in "@graph", or first Recipe in a
// root-level array.
func resolveRecipe(root gson.JSON) (gson.JSON, bool) {
	if isRecipeType(root) {
		return root, true
	}

	switch v := root.Val().(type) {
	case map[string]interface{}:
		if _, ok := v["@graph"].([]interface{}); ok {
			for _, item := range root.Get("@graph").Arr() {
				if isRecipeType(item) {
					return item, true
				}
			}
		}
	case []interface{}:
		for _, item := range root.Arr() {
			if isRecipeType(item) {
				return item, true
			}
		}
	}

	return gson.JSON{}, false
}

// isRecipeType accepts "@type": "Recipe" as well as the list form
// "@type": ["Recipe", "NewsArticle"].
func isRecipeType(node gson.JSON) bool {
	obj, ok := node.Val().(map[string]interface{})
	if !ok {
		return false
	}
	switch t := obj["@type"].(type) {
	case string:
		return t == "Recipe"
	case []interface{}:
		for _, v := range t {
			if s, ok := v.(string); ok && s == "Recipe" {
				return true
			}
		}
	}
	return false
}

// fromNode extracts every field defensively: a malformed or missing field
// never aborts the rest of the extraction.
func fromNode(node gson.JSON, sourceURL string) *models.ScrapedRecipe {
	r := &models.ScrapedRecipe{
		Host:         models.NormalizeHost(sourceURL),
		CanonicalURL: sourceURL,
	}

	r.Title = CleanTitle(stringField(node, "name"))
	r.Description = stringField(node, "description")
	r.Ingredients = stringList(node.Get("recipeIngredient"))

	extractInstructions(node.Get("recipeInstructions"), r)

	r.Yields = yieldField(node.Get("recipeYield"))
	r.PrepTimeMinutes = durationField(node, "prepTime")
	r.CookTimeMinutes = durationField(node, "cookTime")
	r.TotalTimeMinutes = durationField(node, "totalTime")

	if img, ok := imageFrom(node.Get("image")); ok {
		r.Image = img
	}

	r.Keywords = CleanKeywords(keywordList(node.Get("keywords")), r.Ingredients, r.Title)
	r.DietaryRestrictions = dietList(node.Get("suitableForDiet"))
	r.Nutrients = nutritionMap(node.Get("nutrition"))
	r.Author = nameField(node.Get("author"))
	r.Category = firstString(node.Get("recipeCategory"))
	r.Cuisine = firstString(node.Get("recipeCuisine"))

	if u := stringField(node, "url"); u != "" {
		r.CanonicalURL = u
	}

	r.Description = CleanDescription(r.Description, r.Ingredients)

	return r
}

// extractInstructions normalizes the three recipeInstructions encodings:
// a free-text block, a list of strings, or a list of HowToStep/HowToSection
// objects. Blocks stay unsplit; the conversion pipeline owns line splitting.
func extractInstructions(node gson.JSON, r *models.ScrapedRecipe) {
	switch v := node.Val().(type) {
	case string:
		r.Instructions = strings.TrimSpace(v)
	case []interface{}:
		var steps []string
		for _, item := range node.Arr() {
			steps = append(steps, stepTexts(item)...)
		}
		r.InstructionsList = steps
	}
}

// stepTexts flattens one instruction list entry. HowToSection entries nest
// their steps under itemListElement.
func stepTexts(item gson.JSON) []string {
	switch v := item.Val().(type) {
	case string:
		if s := strings.TrimSpace(v); s != "" {
			return []string{s}
		}
		return nil
	case map[string]interface{}:
		if t, _ := v["@type"].(string); t == "HowToSection" {
			var out []string
			if _, ok := v["itemListElement"].([]interface{}); ok {
				for _, sub := range item.Get("itemListElement").Arr() {
					out = append(out, stepTexts(sub)...)
				}
			}
			return out
		}
		for _, key := range []string{"text", "name"} {
			if s, ok := v[key].(string); ok {
				if s = strings.TrimSpace(s); s != "" {
					return []string{s}
				}
			}
		}
	}
	return nil
}

// --- defensive field helpers ---

func stringField(node gson.JSON, key string) string {
	obj, ok := node.Val().(map[string]interface{})
	if !ok {
		return ""
	}
	if s, ok := obj[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

func stringList(node gson.JSON) []string {
	items, ok := node.Val().([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, v := range items {
		if s, ok := v.(string); ok {
			if s = normalizeSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// keywordList accepts an array of strings or a single comma-joined string.
func keywordList(node gson.JSON) []string {
	switch v := node.Val().(type) {
	case string:
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	case []interface{}:
		return stringList(node)
	}
	return nil
}

// dietList maps suitableForDiet entries ("https://schema.org/GlutenFreeDiet"
// or "GlutenFreeDiet") to bare names.
func dietList(node gson.JSON) []string {
	raw := keywordList(node)
	out := make([]string, 0, len(raw))
	for _, d := range raw {
		d = strings.TrimPrefix(d, "https://schema.org/")
		d = strings.TrimPrefix(d, "http://schema.org/")
		d = strings.TrimSuffix(d, "Diet")
		if d != "" {
			out = append(out, d)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// yieldField accepts "4 servings", 4, or ["4 servings", "1 cake"].
func yieldField(node gson.JSON) string {
	switch v := node.Val().(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return trimFloat(v)
	case []interface{}:
		for _, item := range node.Arr() {
			if s := yieldField(item); s != "" {
				return s
			}
		}
	}
	return ""
}

// nameField accepts "Jane", {"name": "Jane"}, or a list of either.
func nameField(node gson.JSON) string {
	switch v := node.Val().(type) {
	case string:
		return strings.TrimSpace(v)
	case map[string]interface{}:
		if s, ok := v["name"].(string); ok {
			return strings.TrimSpace(s)
		}
	case []interface{}:
		for _, item := range node.Arr() {
			if s := nameField(item); s != "" {
				return s
			}
		}
	}
	return ""
}

func firstString(node gson.JSON) string {
	switch v := node.Val().(type) {
	case string:
		return strings.TrimSpace(v)
	case []interface{}:
		for _, item := range node.Arr() {
			if s, ok := item.Val().(string); ok {
				if s = strings.TrimSpace(s); s != "" {
					return s
				}
			}
		}
	}
	return ""
}

// nutritionMap keeps the raw string values of the nutrition block, keyed by
// schema field name ("calories": "240 kcal"). Numbers are stringified so the
// conversion pipeline sees one shape.
func nutritionMap(node gson.JSON) map[string]string {
	obj, ok := node.Val().(map[string]interface{})
	if !ok {
		return nil
	}
	out := make(map[string]string, len(obj))
	for key, val := range obj {
		if strings.HasPrefix(key, "@") {
			continue
		}
		switch v := val.(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				out[key] = s
			}
		case float64:
			out[key] = trimFloat(v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(s, "\u00a0", " ")), " ")
}
