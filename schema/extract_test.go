package schema

import (
	"fmt"
	"testing"

	"github.com/use-agent/forage/models"
)

const recipeObject = `{
	"@context": "https://schema.org",
	"@type": "Recipe",
	"name": "chocolate lava cake",
	"description": "A rich molten-centered dessert that is easy to make at home for any occasion.",
	"recipeIngredient": ["200g dark chocolate", "100g butter", "3 eggs", "80g sugar"],
	"recipeInstructions": [
		{"@type": "HowToStep", "text": "1. Melt the chocolate and butter."},
		{"@type": "HowToStep", "text": "Whisk eggs with sugar."},
		{"@type": "HowToStep", "text": "Combine and bake for 10 minutes."}
	],
	"recipeYield": "4 servings",
	"prepTime": "PT15M",
	"cookTime": "PT10M",
	"image": "https://example.com/cake.jpg",
	"keywords": "dessert, chocolate lava cake, baking",
	"nutrition": {"@type": "NutritionInformation", "calories": "420 kcal", "fatContent": "28 g"},
	"author": {"@type": "Person", "name": "Jane Baker"}
}`

func pageWith(ldJSON string) string {
	return fmt.Sprintf(`<html><head>
		<title>Chocolate Lava Cake Recipe</title>
		<script type="application/ld+json">%s</script>
	</head><body><p>content</p></body></html>`, ldJSON)
}

func TestExtract_DirectRecipeObject(t *testing.T) {
	recipe, err := Extract(pageWith(recipeObject), "https://www.example.com/recipes/lava-cake")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if recipe.Title != "Chocolate lava cake" {
		t.Errorf("title = %q, want %q", recipe.Title, "Chocolate lava cake")
	}
	if len(recipe.Ingredients) != 4 {
		t.Errorf("got %d ingredients, want 4", len(recipe.Ingredients))
	}
	if len(recipe.InstructionsList) != 3 {
		t.Fatalf("got %d instructions, want 3", len(recipe.InstructionsList))
	}
	if recipe.Yields != "4 servings" {
		t.Errorf("yields = %q", recipe.Yields)
	}
	if recipe.PrepTimeMinutes == nil || *recipe.PrepTimeMinutes != 15 {
		t.Errorf("prep time = %v, want 15", recipe.PrepTimeMinutes)
	}
	if recipe.CookTimeMinutes == nil || *recipe.CookTimeMinutes != 10 {
		t.Errorf("cook time = %v, want 10", recipe.CookTimeMinutes)
	}
	if recipe.Image != "https://example.com/cake.jpg" {
		t.Errorf("image = %q", recipe.Image)
	}
	if recipe.Author != "Jane Baker" {
		t.Errorf("author = %q", recipe.Author)
	}
	if recipe.Host != "example.com" {
		t.Errorf("host = %q, want example.com", recipe.Host)
	}
	if recipe.Nutrients["calories"] != "420 kcal" {
		t.Errorf("calories = %q", recipe.Nutrients["calories"])
	}
}

// The three accepted JSON-LD encodings must produce the same recipe.
func TestExtract_EncodingEquivalence(t *testing.T) {
	encodings := map[string]string{
		"direct": recipeObject,
		"graph":  fmt.Sprintf(`{"@context": "https://schema.org", "@graph": [{"@type": "WebPage"}, %s]}`, recipeObject),
		"array":  fmt.Sprintf(`[{"@type": "BreadcrumbList"}, %s]`, recipeObject),
	}

	var reference *models.ScrapedRecipe
	for name, enc := range encodings {
		recipe, err := Extract(pageWith(enc), "https://example.com/r/1")
		if err != nil {
			t.Fatalf("%s: Extract failed: %v", name, err)
		}
		if reference == nil {
			reference = recipe
			continue
		}
		if recipe.Title != reference.Title || len(recipe.Ingredients) != len(reference.Ingredients) {
			t.Errorf("%s: extraction differs from direct encoding", name)
		}
	}
}

func TestExtract_TypeList(t *testing.T) {
	ld := `{"@type": ["Recipe", "NewsArticle"], "name": "Soup", "recipeIngredient": ["1 onion"]}`
	recipe, err := Extract(pageWith(ld), "https://example.com/soup")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if recipe.Title != "Soup" {
		t.Errorf("title = %q", recipe.Title)
	}
}

func TestExtract_NoSchema(t *testing.T) {
	_, err := Extract("<html><body><p>just text</p></body></html>", "https://example.com/x")
	se := models.AsScraperError(err)
	if se == nil || se.Kind != models.KindNoSchemaFound {
		t.Fatalf("kind = %v, want NoSchemaFoundInWildMode", se)
	}
}

func TestExtract_SchemaWithoutIngredients(t *testing.T) {
	ld := `{"@type": "Recipe", "name": "Empty"}`
	_, err := Extract(pageWith(ld), "https://example.com/x")
	se := models.AsScraperError(err)
	if se == nil || se.Kind != models.KindNoSchemaFound {
		t.Fatalf("kind = %v, want NoSchemaFoundInWildMode", se)
	}
}

func TestExtract_MalformedBlockSkipped(t *testing.T) {
	page := fmt.Sprintf(`<html><head>
		<script type="application/ld+json">{not json</script>
		<script type="application/ld+json">%s</script>
	</head></html>`, recipeObject)

	recipe, err := Extract(page, "https://example.com/r")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if recipe.Title == "" {
		t.Error("recipe not recovered from second block")
	}
}

func TestExtract_InstructionVariants(t *testing.T) {
	tests := []struct {
		name         string
		instructions string
		wantList     []string
		wantBlock    string
	}{
		{
			name:         "string block",
			instructions: `"Melt chocolate.\nBake it."`,
			wantBlock:    "Melt chocolate.\nBake it.",
		},
		{
			name:         "string list",
			instructions: `["Melt chocolate.", "Bake it."]`,
			wantList:     []string{"Melt chocolate.", "Bake it."},
		},
		{
			name:         "howto steps",
			instructions: `[{"@type":"HowToStep","text":"Melt chocolate."},{"@type":"HowToStep","name":"Bake it."}]`,
			wantList:     []string{"Melt chocolate.", "Bake it."},
		},
		{
			name: "howto sections",
			instructions: `[{"@type":"HowToSection","itemListElement":[
				{"@type":"HowToStep","text":"Melt chocolate."},
				{"@type":"HowToStep","text":"Bake it."}]}]`,
			wantList: []string{"Melt chocolate.", "Bake it."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ld := fmt.Sprintf(`{"@type":"Recipe","name":"X","recipeIngredient":["1 egg"],"recipeInstructions":%s}`, tt.instructions)
			recipe, err := Extract(pageWith(ld), "https://example.com/r")
			if err != nil {
				t.Fatalf("Extract failed: %v", err)
			}
			if tt.wantBlock != "" && recipe.Instructions != tt.wantBlock {
				t.Errorf("block = %q, want %q", recipe.Instructions, tt.wantBlock)
			}
			if len(tt.wantList) > 0 {
				if len(recipe.InstructionsList) != len(tt.wantList) {
					t.Fatalf("got %d steps, want %d", len(recipe.InstructionsList), len(tt.wantList))
				}
				for i, want := range tt.wantList {
					if recipe.InstructionsList[i] != want {
						t.Errorf("step %d = %q, want %q", i, recipe.InstructionsList[i], want)
					}
				}
			}
		})
	}
}

func TestExtract_YieldVariants(t *testing.T) {
	tests := []struct {
		yield string
		want  string
	}{
		{`"4 servings"`, "4 servings"},
		{`4`, "4"},
		{`["6 servings", "1 cake"]`, "6 servings"},
	}
	for _, tt := range tests {
		ld := fmt.Sprintf(`{"@type":"Recipe","name":"X","recipeIngredient":["1 egg"],"recipeYield":%s}`, tt.yield)
		recipe, err := Extract(pageWith(ld), "https://example.com/r")
		if err != nil {
			t.Fatalf("Extract failed for yield %s: %v", tt.yield, err)
		}
		if recipe.Yields != tt.want {
			t.Errorf("yield %s = %q, want %q", tt.yield, recipe.Yields, tt.want)
		}
	}
}

func TestExtractImage_PlaceholderRejected(t *testing.T) {
	ld := `{"@type":"Recipe","name":"X","recipeIngredient":["1 egg"],
		"image":["https://cdn.example.com/placeholder-recipe.png","https://cdn.example.com/real.jpg"]}`

	img, ok := ExtractImage(pageWith(ld))
	if !ok {
		t.Fatal("expected an image")
	}
	if img != "https://cdn.example.com/real.jpg" {
		t.Errorf("image = %q, want the non-placeholder entry", img)
	}
}

func TestExtractImage_ObjectForm(t *testing.T) {
	ld := `{"@type":"Recipe","name":"X","recipeIngredient":["1 egg"],
		"image":{"@type":"ImageObject","url":"https://cdn.example.com/cake.jpg"}}`

	img, ok := ExtractImage(pageWith(ld))
	if !ok || img != "https://cdn.example.com/cake.jpg" {
		t.Errorf("image = %q, ok = %v", img, ok)
	}
}

func TestFromJSON_ErrorKind(t *testing.T) {
	_, err := FromJSON(`{"@type": "Article"}`, "https://example.com/r")
	se := models.AsScraperError(err)
	if se == nil || se.Kind != models.KindNoRecipeFound {
		t.Fatalf("kind = %v, want NoRecipeFoundError", se)
	}
}

func TestExtract_DietaryRestrictions(t *testing.T) {
	ld := `{"@type":"Recipe","name":"X","recipeIngredient":["1 egg"],
		"suitableForDiet":["https://schema.org/GlutenFreeDiet","VeganDiet"]}`
	recipe, err := Extract(pageWith(ld), "https://example.com/r")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	want := []string{"GlutenFree", "Vegan"}
	if len(recipe.DietaryRestrictions) != len(want) {
		t.Fatalf("restrictions = %v", recipe.DietaryRestrictions)
	}
	for i, w := range want {
		if recipe.DietaryRestrictions[i] != w {
			t.Errorf("restriction %d = %q, want %q", i, recipe.DietaryRestrictions[i], w)
		}
	}
}
