package catalog

import (
	"testing"

	"github.com/use-agent/forage/models"
)

func testCatalog() *Catalog {
	return New(
		[]string{"Chocolate Cake", "Tomato", "Olive Oil", "Salt"},
		[]string{"Dessert", "Vegan"},
	)
}

func TestFindSimilarIngredients_Typo(t *testing.T) {
	matches := testCatalog().FindSimilarIngredients("choclate", MatchModerate)
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1: %+v", len(matches), matches)
	}
	if matches[0].Name != "Chocolate Cake" || matches[0].Distance != 2 {
		t.Errorf("match = %+v", matches[0])
	}

	// Two edits is too far for strict matching.
	if got := testCatalog().FindSimilarIngredients("choclate", MatchStrict); len(got) != 0 {
		t.Errorf("strict matched %+v", got)
	}
}

// A multi-word query scores against the whole candidate name, so a catalog
// entry matches itself exactly.
func TestFindSimilarIngredients_MultiWordExact(t *testing.T) {
	matches := testCatalog().FindSimilarIngredients("CHOCOLATE cake", MatchModerate)
	if len(matches) == 0 {
		t.Fatal("entry did not match its own name")
	}
	if matches[0].Name != "Chocolate Cake" || matches[0].Distance != 0 {
		t.Errorf("match = %+v, want exact", matches[0])
	}
}

func TestFindSimilarIngredients_ExactFirst(t *testing.T) {
	c := New([]string{"Tomatoes", "Tomato"}, nil)
	matches := c.FindSimilarIngredients("tomato", MatchModerate)
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2", len(matches))
	}
	if matches[0].Name != "Tomato" || matches[0].Distance != 0 {
		t.Errorf("exact match not first: %+v", matches)
	}
}

func TestFindSimilar_Levels(t *testing.T) {
	c := New([]string{"Salt"}, nil)
	tests := []struct {
		query string
		level MatchLevel
		hit   bool
	}{
		{"salt", MatchStrict, true},
		{"slat", MatchStrict, false}, // transposition is 2 edits
		{"slat", MatchModerate, true},
		{"sal", MatchStrict, true},
		{"pepper", MatchLoose, false},
	}
	for _, tt := range tests {
		got := c.FindSimilarIngredients(tt.query, tt.level)
		if (len(got) > 0) != tt.hit {
			t.Errorf("query %q level %d: matches = %+v, want hit=%v", tt.query, tt.level, got, tt.hit)
		}
	}
}

func TestLookup(t *testing.T) {
	c := testCatalog()
	if canonical, ok := c.Lookup("CHOCOLATE cake"); !ok || canonical != "Chocolate Cake" {
		t.Errorf("Lookup = %q, %v", canonical, ok)
	}
	if _, ok := c.Lookup("choclate cake"); ok {
		t.Error("typo accepted as exact match")
	}
}

func TestFindSimilarTags(t *testing.T) {
	matches := testCatalog().FindSimilarTags("desert", MatchModerate)
	if len(matches) != 1 || matches[0].Name != "Dessert" {
		t.Errorf("matches = %+v", matches)
	}
}

func TestResolve(t *testing.T) {
	recipe := &models.ConvertedRecipe{
		Ingredients: []models.NormalizedIngredient{
			{Name: "tomato", Quantity: "2"},
			{Name: "choclate cake", Quantity: "1", Unit: "slice"},
			{Name: "harissa paste", Quantity: "1", Unit: "tsp"},
		},
		Tags: []string{"vegan", "Spicy"},
	}

	testCatalog().Resolve(recipe)

	// Matched ingredients adopt canonical casing, quantities untouched.
	if recipe.Ingredients[0].Name != "Tomato" || recipe.Ingredients[0].Quantity != "2" {
		t.Errorf("ingredient 0 = %+v", recipe.Ingredients[0])
	}

	if len(recipe.PendingIngredients) != 2 {
		t.Fatalf("pending = %+v, want 2 entries", recipe.PendingIngredients)
	}
	// The near-miss carries its closest catalog name as a suggestion.
	typo := recipe.PendingIngredients[0]
	if typo.Ingredient.Name != "choclate cake" || len(typo.Suggestions) == 0 || typo.Suggestions[0] != "Chocolate Cake" {
		t.Errorf("typo pending = %+v", typo)
	}
	if len(recipe.PendingIngredients[1].Suggestions) != 0 {
		t.Errorf("unrelated pending got suggestions: %+v", recipe.PendingIngredients[1])
	}

	// Tags: known ones canonicalized, unknown ones kept as scraped.
	if recipe.Tags[0] != "Vegan" || recipe.Tags[1] != "Spicy" {
		t.Errorf("tags = %v", recipe.Tags)
	}
}

func TestMergeIngredients(t *testing.T) {
	result := testCatalog().MergeIngredients([]models.NormalizedIngredient{
		{Name: "tomato", Quantity: "2"},
		{Name: "TOMATO", Quantity: "5"}, // in-list duplicate, dropped
		{Name: "olive oil", Quantity: "1", Unit: "tbsp"},
		{Name: "harissa paste", Quantity: "1", Unit: "tsp"},
		{Name: "  "},
	})

	if len(result.Ingredients) != 2 {
		t.Fatalf("got %d matched ingredients, want 2: %+v", len(result.Ingredients), result.Ingredients)
	}
	// Canonical casing from the catalog, scraped quantity kept.
	if result.Ingredients[0].Name != "Tomato" || result.Ingredients[0].Quantity != "2" {
		t.Errorf("ingredient 0 = %+v", result.Ingredients[0])
	}
	if result.Ingredients[1].Name != "Olive Oil" || result.Ingredients[1].Unit != "tbsp" {
		t.Errorf("ingredient 1 = %+v", result.Ingredients[1])
	}

	if len(result.Pending) != 1 || result.Pending[0].Name != "harissa paste" {
		t.Errorf("pending = %+v", result.Pending)
	}
}
