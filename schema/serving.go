package schema

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var numberRe = regexp.MustCompile(`[\d.]+`)

// inferServingSize fills in a missing "servingSize" nutrient when the page
// also displays per-100g values: portionWeight = perPortionKcal /
// per100gKcal × 100. Sites that show both tables make the serving weight
// recoverable even when the schema block omits it.
func inferServingSize(doc *goquery.Document, nutrients map[string]string) map[string]string {
	if nutrients == nil || nutrients["servingSize"] != "" {
		return nutrients
	}

	perPortion := numericValue(nutrients["calories"])
	if perPortion == 0 {
		return nutrients
	}

	per100g := findPer100gCalories(doc)
	if per100g <= 0 {
		return nutrients
	}

	grams := int(perPortion/per100g*100 + 0.5)
	if grams > 0 {
		nutrients["servingSize"] = fmt.Sprintf("%dg", grams)
	}
	return nutrients
}

// findPer100gCalories looks for a per-100g nutrition section: first by the
// ids sites commonly use, then any element whose text mentions "100g".
func findPer100gCalories(doc *goquery.Document) float64 {
	for _, id := range []string{"quantity", "100g", "per100g"} {
		if sec := doc.Find("#" + id); sec.Length() > 0 {
			if kcal := kcalFromSection(sec); kcal > 0 {
				return kcal
			}
		}
	}

	var kcal float64
	doc.Find("div,section,table,ul").EachWithBreak(func(_ int, sec *goquery.Selection) bool {
		if !strings.Contains(strings.ToLower(sec.Text()), "100g") {
			return true
		}
		if v := kcalFromSection(sec); v > 0 {
			kcal = v
			return false
		}
		return true
	})
	return kcal
}

// kcalFromSection finds a calorie label inside a nutrition section and reads
// the numeric value next to it.
func kcalFromSection(sec *goquery.Selection) float64 {
	labels := []string{"énergie (kcal)", "calories", "kcal"}
	var kcal float64
	sec.Find("*").EachWithBreak(func(_ int, el *goquery.Selection) bool {
		if el.Children().Length() > 0 {
			return true
		}
		text := strings.ToLower(strings.TrimSpace(el.Text()))
		for _, label := range labels {
			if strings.Contains(text, label) {
				if v := numericValue(el.Next().Text()); v > 0 {
					kcal = v
					return false
				}
			}
		}
		return true
	})
	return kcal
}

// numericValue extracts the first number from a string like "876kCal".
func numericValue(text string) float64 {
	if text == "" {
		return 0
	}
	text = strings.ReplaceAll(strings.ReplaceAll(text, ",", "."), " ", "")
	m := numberRe.FindString(text)
	if m == "" {
		return 0
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}
	return v
}
