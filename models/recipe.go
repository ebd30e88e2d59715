package models

// ScrapedRecipe is the raw output of one extraction attempt. Every field is
// best-effort: zero values mean "the page did not provide it". Instances are
// transient — produced per fetch, consumed by the conversion pipeline, never
// persisted.
type ScrapedRecipe struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`

	// Ingredients holds unparsed ingredient lines. IngredientGroups is
	// populated instead when the source splits ingredients by purpose.
	Ingredients      []string          `json:"ingredients,omitempty"`
	IngredientGroups []IngredientGroup `json:"ingredient_groups,omitempty"`

	// Instructions is a single free-text block; InstructionsList is the
	// pre-split ordered step list. Sources provide one or the other.
	Instructions     string   `json:"instructions,omitempty"`
	InstructionsList []string `json:"instructions_list,omitempty"`

	// Times are minutes; nil means unknown, 0 is a valid value.
	PrepTimeMinutes  *int `json:"prep_time,omitempty"`
	CookTimeMinutes  *int `json:"cook_time,omitempty"`
	TotalTimeMinutes *int `json:"total_time,omitempty"`

	Yields string `json:"yields,omitempty"`
	Image  string `json:"image,omitempty"`

	Keywords            []string `json:"keywords,omitempty"`
	DietaryRestrictions []string `json:"dietary_restrictions,omitempty"`

	// Nutrients mirrors the schema.org nutrition block: raw string values
	// like "240 kcal" or "12 g", keyed by schema field name. A synthetic
	// "servingSize" entry may be inferred from the page.
	Nutrients map[string]string `json:"nutrients,omitempty"`

	Author       string `json:"author,omitempty"`
	Category     string `json:"category,omitempty"`
	Cuisine      string `json:"cuisine,omitempty"`
	CanonicalURL string `json:"canonical_url,omitempty"`
	Host         string `json:"host,omitempty"`
	SiteName     string `json:"site_name,omitempty"`
	Language     string `json:"language,omitempty"`
}

// IngredientGroup is a purposed subset of ingredient lines ("For the dough").
type IngredientGroup struct {
	Purpose     string   `json:"purpose,omitempty"`
	Ingredients []string `json:"ingredients"`
}

// AllIngredients flattens grouped ingredients, falling back to the flat list.
func (r *ScrapedRecipe) AllIngredients() []string {
	if len(r.IngredientGroups) == 0 {
		return r.Ingredients
	}
	var out []string
	for _, g := range r.IngredientGroups {
		out = append(out, g.Ingredients...)
	}
	return out
}

// DiscoveredRecipe is a candidate found during the discovery phase, before
// any full parse. Identity key is URL.
type DiscoveredRecipe struct {
	URL      string `json:"url"`
	Title    string `json:"title"`
	ImageURL string `json:"image_url,omitempty"`
}

// DiscoveryProgress is a monotonic snapshot of the discovery phase.
type DiscoveryProgress struct {
	Phase             string             `json:"phase"`
	RecipesFound      int                `json:"recipes_found"`
	CategoriesScanned int                `json:"categories_scanned"`
	TotalCategories   int                `json:"total_categories"`
	IsComplete        bool               `json:"is_complete"`
	Recipes           []DiscoveredRecipe `json:"recipes"`
}

// ParsingProgress is updated once per recipe attempted during the parse phase.
type ParsingProgress struct {
	Current            int            `json:"current"`
	Total              int            `json:"total"`
	CurrentRecipeTitle string         `json:"current_recipe_title,omitempty"`
	FailedRecipes      []FailedRecipe `json:"failed_recipes"`
}

// FailedRecipe records a single non-fatal parse failure.
type FailedRecipe struct {
	URL    string `json:"url"`
	Title  string `json:"title,omitempty"`
	Reason string `json:"reason"`
}

// ProviderInfo is the registry's read-only description of a provider.
type ProviderInfo struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	LogoURL            string   `json:"logo_url"`
	SupportedLanguages []string `json:"supported_languages"`
}
