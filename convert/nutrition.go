package convert

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/use-agent/forage/models"
)

var leadingNumberRe = regexp.MustCompile(`-?\d+(?:[.,]\d+)?`)

// convertNutrition normalizes the raw schema nutrition block to per-100g
// values. The source's serving size (grams) drives the scaling; without it
// the values are taken as already per 100g and PortionWeight stays 0.
//
// Energy in kJ is always derived from kcal (kcal × 4.184, one decimal) and
// never read from the source, so the two units cannot disagree. Sodium is
// converted to salt (× 2.5); sodium values above 10 are assumed to be
// milligrams and divided down first, since no real food carries 10 g of
// sodium per serving.
func convertNutrition(nutrients map[string]string) *models.NormalizedNutrition {
	if len(nutrients) == 0 {
		return nil
	}

	kcal, hasKcal := grams(nutrients["calories"])
	fat, hasFat := grams(nutrients["fatContent"])
	if !hasKcal && !hasFat {
		return nil
	}

	n := &models.NormalizedNutrition{EnergyKcal: kcal, Fat: fat}
	n.SaturatedFat, _ = grams(nutrients["saturatedFatContent"])
	n.Carbohydrates, _ = grams(nutrients["carbohydrateContent"])
	n.Sugar, _ = grams(nutrients["sugarContent"])
	n.Protein, _ = grams(nutrients["proteinContent"])

	if sodium, ok := grams(nutrients["sodiumContent"]); ok {
		if sodium > 10 {
			sodium /= 1000
		}
		n.Salt = round1(sodium * 2.5)
	}

	if portion, ok := grams(nutrients["servingSize"]); ok && portion > 0 {
		factor := 100 / portion
		n.EnergyKcal = round1(n.EnergyKcal * factor)
		n.Fat = round1(n.Fat * factor)
		n.SaturatedFat = round1(n.SaturatedFat * factor)
		n.Carbohydrates = round1(n.Carbohydrates * factor)
		n.Sugar = round1(n.Sugar * factor)
		n.Protein = round1(n.Protein * factor)
		n.Salt = round1(n.Salt * factor)
		n.PortionWeight = portion
	}

	n.EnergyKj = round1(n.EnergyKcal * 4.184)
	return n
}

// grams pulls the numeric part out of a raw nutrition value like "240 kcal",
// "12 g" or "7.2g".
func grams(raw string) (float64, bool) {
	m := leadingNumberRe.FindString(raw)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", "."), 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
