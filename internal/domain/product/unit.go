package product

import (
	"regexp"
	"strconv"
	"strings"
)

// Unit is the normalized measurement family of a product quantity. There is
// no conversion across families: grams never become millilitres.
type Unit string

const (
	UnitEach       Unit = "Each"
	UnitGrams      Unit = "Grams"
	UnitMillilitre Unit = "Millilitre"
	UnitCentimetre Unit = "Centimetre"
)

// unitPattern matches the first run of digits optionally separated from a
// run of lowercase letters by a single space, e.g. "150g" or "10 pack".
var unitPattern = regexp.MustCompile(`(?P<quantity>[0-9]+) ?(?P<unit>[a-z]+)`)

// eachWords are size tokens that all mean "one unit of product".
var eachWords = map[string]struct{}{
	"ea": {}, "each": {}, "pk": {}, "pack": {}, "bunch": {}, "sheets": {},
	"sachets": {}, "capsules": {}, "ss": {}, "set": {}, "pair": {},
	"pairs": {}, "piece": {}, "tablets": {}, "rolls": {},
}

// NormaliseUnit maps a lowercase unit token to its multiplicative factor and
// canonical unit, e.g. "kg" -> (1000, Grams).
func NormaliseUnit(token string) (float64, Unit, error) {
	switch token {
	// Grams
	case "g":
		return 1, UnitGrams, nil
	case "kg":
		return 1000, UnitGrams, nil
	case "mg":
		return 0.001, UnitGrams, nil

	// Millilitre
	case "ml":
		return 1, UnitMillilitre, nil
	case "l":
		return 1000, UnitMillilitre, nil

	// Centimetre
	case "cm":
		return 1, UnitCentimetre, nil
	case "m", "metre":
		return 100, UnitCentimetre, nil

	// Each
	case "dozen":
		return 12, UnitEach, nil
	default:
		if _, ok := eachWords[token]; ok {
			return 1, UnitEach, nil
		}
		return 0, "", NewConversionError("unknown unit: %s", token)
	}
}

// ParseUnit extracts a normalized (quantity, unit) pair from a free-text
// size string such as "150g", "1kg" or "10 pack". It fails with a
// ConversionError when no numeric+token pattern is found or the token is
// not recognized.
func ParseUnit(size string) (float64, Unit, error) {
	size = strings.ToLower(size)
	m := unitPattern.FindStringSubmatch(size)
	if m == nil {
		return 0, "", NewConversionError("no quantity pattern in %q", size)
	}

	quantity, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, "", NewConversionError("parse quantity in %q: %s", size, err)
	}

	factor, unit, err := NormaliseUnit(m[2])
	if err != nil {
		return 0, "", err
	}
	return quantity * factor, unit, nil
}
