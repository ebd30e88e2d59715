package convert

import (
	"strconv"
	"strings"
)

// ScaleQuantityForPersons rescales the numeric part of a quantity string
// from one serving count to another. The quantity is returned unchanged
// when it carries no numeric token, or more than one — a range like
// "2-3" or "1 to 2" cannot be scaled without guessing which number the
// user meant.
func ScaleQuantityForPersons(quantity string, fromPersons, toPersons int) string {
	if fromPersons <= 0 || toPersons <= 0 || fromPersons == toPersons {
		return quantity
	}

	tokens := strings.Fields(quantity)
	numericAt := -1
	var value float64

	for i, tok := range tokens {
		v, err := strconv.ParseFloat(strings.ReplaceAll(tok, ",", "."), 64)
		if err != nil {
			continue
		}
		if numericAt >= 0 {
			return quantity // second numeric token: ambiguous
		}
		numericAt = i
		value = v
	}

	if numericAt < 0 {
		return quantity
	}

	scaled := value * float64(toPersons) / float64(fromPersons)
	tokens[numericAt] = formatQuantity(scaled)
	return strings.Join(tokens, " ")
}
