package convert

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/use-agent/forage/models"
)

// units the tokenizer recognizes, normalized form on the right.
var unitAliases = map[string]string{
	"g": "g", "gr": "g", "gram": "g", "grams": "g", "gramme": "g", "grammes": "g",
	"kg": "kg", "kilogram": "kg", "kilograms": "kg",
	"mg": "mg",
	"ml": "ml", "milliliter": "ml", "milliliters": "ml",
	"cl": "cl",
	"dl": "dl",
	"l": "l", "liter": "l", "liters": "l", "litre": "l", "litres": "l",
	"tsp": "tsp", "teaspoon": "tsp", "teaspoons": "tsp",
	"tbsp": "tbsp", "tablespoon": "tbsp", "tablespoons": "tbsp",
	"cup": "cup", "cups": "cup",
	"pinch": "pinch", "pinches": "pinch",
	"clove": "clove", "cloves": "clove",
	"slice": "slice", "slices": "slice",
	"piece": "piece", "pieces": "piece",
	"can": "can", "cans": "can",
	"bunch": "bunch", "bunches": "bunch",
	"oz": "oz", "ounce": "oz", "ounces": "oz",
	"lb": "lb", "pound": "lb", "pounds": "lb",
	"sachet": "sachet", "sachets": "sachet",
	"cc": "tsp", "càc": "tsp", "cs": "tbsp", "càs": "tbsp", // French abbreviations
}

var unicodeFractions = map[rune]float64{
	'½': 0.5, '⅓': 1.0 / 3, '⅔': 2.0 / 3, '¼': 0.25, '¾': 0.75,
	'⅕': 0.2, '⅖': 0.4, '⅗': 0.6, '⅘': 0.8, '⅛': 0.125, '⅜': 0.375,
	'⅝': 0.625, '⅞': 0.875,
}

// glued matches quantity fused to its unit: "200g", "1.5kg".
var gluedRe = regexp.MustCompile(`^(\d+(?:[.,]\d+)?)([a-zA-Zµ]+)$`)

// noteRe captures a trailing parenthetical: "flour (sifted)".
var noteRe = regexp.MustCompile(`\(([^)]*)\)`)

// ParseIngredient tokenizes one raw ingredient line into name, quantity,
// unit and note. The quantity grammar accepts integers, decimals (dot or
// comma), ASCII fractions ("1/2"), mixed numbers ("1 1/2") and unicode
// fraction glyphs. After the quantity, the next token is the unit whenever
// at least two tokens remain ("2 càs huile" → unit "càs"); with a single
// token left it is the name ("2 eggs"). Lines without a leading quantity
// come back with the whole line as the name, which is still a valid
// ingredient ("salt").
func ParseIngredient(line string) models.NormalizedIngredient {
	line = strings.TrimSpace(line)

	var note string
	if m := noteRe.FindStringSubmatch(line); m != nil {
		note = strings.TrimSpace(m[1])
		line = strings.TrimSpace(noteRe.ReplaceAllString(line, " "))
	}

	tokens := strings.Fields(line)
	qty, unit, rest := takeQuantity(tokens)

	name := strings.Join(rest, " ")
	name = strings.TrimLeft(name, "-– ")
	name = strings.TrimSpace(strings.TrimPrefix(name, "of "))

	return models.NormalizedIngredient{
		Name:     name,
		Quantity: qty,
		Unit:     unit,
		Note:     note,
	}
}

// takeQuantity consumes the leading quantity (and unit, when present) from
// the token stream and returns what is left.
func takeQuantity(tokens []string) (qty, unit string, rest []string) {
	if len(tokens) == 0 {
		return "", "", tokens
	}

	// Fused form first: "200g flour".
	if m := gluedRe.FindStringSubmatch(tokens[0]); m != nil {
		if u, ok := unitAliases[strings.ToLower(m[2])]; ok {
			return normalizeDecimal(m[1]), u, tokens[1:]
		}
	}

	value, ok := numericToken(tokens[0])
	if !ok {
		return "", "", tokens
	}
	consumed := 1

	// Mixed number: "1 1/2 cups".
	if consumed < len(tokens) {
		if frac, ok := fractionToken(tokens[consumed]); ok {
			value += frac
			consumed++
		}
	}

	// The token after the quantity is the unit, but only when at least one
	// more token remains to be the name.
	if consumed < len(tokens)-1 {
		unit = normalizeUnit(tokens[consumed])
		consumed++
	}

	return formatQuantity(value), unit, tokens[consumed:]
}

// normalizeUnit maps known unit spellings to their canonical form and keeps
// unrecognized units as written.
func normalizeUnit(tok string) string {
	tok = strings.TrimSuffix(tok, ".")
	if u, ok := unitAliases[strings.ToLower(tok)]; ok {
		return u
	}
	return tok
}

// numericToken parses an integer, decimal, fraction, or unicode fraction
// glyph (optionally glued to a leading integer, as in "1½").
func numericToken(tok string) (float64, bool) {
	if frac, ok := fractionToken(tok); ok {
		return frac, true
	}

	runes := []rune(tok)
	if last := runes[len(runes)-1]; len(runes) > 1 {
		if frac, ok := unicodeFractions[last]; ok {
			if whole, err := strconv.ParseFloat(string(runes[:len(runes)-1]), 64); err == nil {
				return whole + frac, true
			}
		}
	}

	v, err := strconv.ParseFloat(normalizeDecimal(tok), 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

// fractionToken parses "1/2" and single unicode fraction glyphs.
func fractionToken(tok string) (float64, bool) {
	if runes := []rune(tok); len(runes) == 1 {
		if frac, ok := unicodeFractions[runes[0]]; ok {
			return frac, true
		}
	}
	num, den, ok := strings.Cut(tok, "/")
	if !ok {
		return 0, false
	}
	n, err1 := strconv.Atoi(num)
	d, err2 := strconv.Atoi(den)
	if err1 != nil || err2 != nil || d == 0 || n < 0 {
		return 0, false
	}
	return float64(n) / float64(d), true
}

func normalizeDecimal(s string) string {
	return strings.ReplaceAll(s, ",", ".")
}

// formatQuantity renders a float without trailing zeros: 0.5 → "0.5",
// 2 → "2".
func formatQuantity(v float64) string {
	s := strconv.FormatFloat(v, 'f', 3, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
