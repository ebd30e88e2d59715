package schema

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/forage/models"
)

// extractIngredientGroups reads purposed ingredient groups from well-formed
// markup: an "ingredient-list" (the main group) optionally followed by a
// "kitchen-list" of pantry staples. Sites without this structure return nil
// and callers fall back to the flat schema ingredient list.
func extractIngredientGroups(doc *goquery.Document) []models.IngredientGroup {
	var groups []models.IngredientGroup

	if main := listItems(doc, "ul.ingredient-list"); len(main) > 0 {
		groups = append(groups, models.IngredientGroup{Ingredients: main})
	}
	if staples := listItems(doc, "ul.kitchen-list"); len(staples) > 0 {
		groups = append(groups, models.IngredientGroup{
			Purpose:     "pantry",
			Ingredients: staples,
		})
	}

	// A single unlabeled group carries no more information than the flat
	// list; only report groups when there is an actual split.
	if len(groups) < 2 {
		return nil
	}
	return groups
}

func listItems(doc *goquery.Document, selector string) []string {
	var items []string
	doc.Find(selector).First().Find("li").Each(func(_ int, li *goquery.Selection) {
		if text := normalizeSpace(li.Text()); text != "" {
			items = append(items, text)
		}
	})
	return items
}
