package schema

import "testing"

func TestExtractIngredientGroups(t *testing.T) {
	doc := docFrom(t, `<html><body>
		<ul class="ingredient-list">
			<li>2 chicken breasts</li>
			<li>1 zucchini</li>
		</ul>
		<ul class="kitchen-list">
			<li>olive oil</li>
			<li>salt</li>
		</ul>
	</body></html>`)

	groups := extractIngredientGroups(doc)
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
	if len(groups[0].Ingredients) != 2 || groups[0].Purpose != "" {
		t.Errorf("main group = %+v", groups[0])
	}
	if groups[1].Purpose != "pantry" || len(groups[1].Ingredients) != 2 {
		t.Errorf("pantry group = %+v", groups[1])
	}
}

func TestExtractIngredientGroups_SingleListIsNil(t *testing.T) {
	doc := docFrom(t, `<html><body>
		<ul class="ingredient-list"><li>2 eggs</li></ul>
	</body></html>`)

	if groups := extractIngredientGroups(doc); groups != nil {
		t.Errorf("single list reported as groups: %+v", groups)
	}
}
