package models

// NormalizedIngredient is one ingredient after conversion. Quantity is a
// decimal string ("1.5", "200"); Unit may be empty.
type NormalizedIngredient struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	Unit     string `json:"unit"`
	Note     string `json:"note,omitempty"`
}

// InstructionStep is one ordered preparation step.
type InstructionStep struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// NormalizedNutrition is always expressed per 100g. EnergyKj is derived from
// EnergyKcal (kcal × 4.184, one decimal), never taken from the source, so the
// two energy units can never disagree.
type NormalizedNutrition struct {
	EnergyKcal    float64 `json:"energy_kcal"`
	EnergyKj      float64 `json:"energy_kj"`
	Fat           float64 `json:"fat"`
	SaturatedFat  float64 `json:"saturated_fat"`
	Carbohydrates float64 `json:"carbohydrates"`
	Sugar         float64 `json:"sugar"`
	Protein       float64 `json:"protein"`
	Salt          float64 `json:"salt"`
	// PortionWeight is the serving weight in grams the per-100g values
	// were scaled from; 0 when the source already reported per 100g.
	PortionWeight float64 `json:"portion_weight"`
}

// PendingIngredient is an ingredient with no exact catalog match, queued
// for user validation before it may become a new catalog entry.
// Suggestions are similar known names, closest first.
type PendingIngredient struct {
	Ingredient  NormalizedIngredient `json:"ingredient"`
	Suggestions []string             `json:"suggestions,omitempty"`
}

// ConvertedRecipe is the conversion pipeline's output: the app-facing shape
// presented to the user for validation.
type ConvertedRecipe struct {
	Title              string                 `json:"title"`
	Description        string                 `json:"description,omitempty"`
	Ingredients        []NormalizedIngredient `json:"ingredients"`
	PendingIngredients []PendingIngredient    `json:"pending_ingredients,omitempty"`
	SkippedIngredients []string               `json:"skipped_ingredients,omitempty"`
	Steps              []InstructionStep      `json:"steps"`
	Nutrition          *NormalizedNutrition   `json:"nutrition,omitempty"`
	Tags               []string               `json:"tags,omitempty"`
	Servings           int                    `json:"servings,omitempty"`
	PrepTimeMinutes    int                    `json:"prep_time_minutes,omitempty"`
	CookTimeMinutes    int                    `json:"cook_time_minutes,omitempty"`
	ImageURL           string                 `json:"image_url,omitempty"`
	SourceURL          string                 `json:"source_url,omitempty"`
	Host               string                 `json:"host,omitempty"`
}
