package pipeline

import (
	"strconv"

	"github.com/joseph-ayodele/nutrition-extractor/constants"
	"github.com/joseph-ayodele/nutrition-extractor/internal/entity"
)

// ValidateAllergens coerces raw model output into the ten-key record. Only
// real booleans are taken; anything else leaves the allergen absent.
func ValidateAllergens(raw map[string]any) entity.AllergenRecord {
	var out entity.AllergenRecord
	for _, key := range constants.AllergenKeys() {
		if b, ok := raw[key].(bool); ok {
			out.Set(key, b)
		}
	}
	return out
}

// ValidateNutrients coerces raw model output into the six-key record.
func ValidateNutrients(raw map[string]any) entity.NutrientRecord {
	out := entity.NewNutrientRecord()
	for _, key := range constants.NutrientKeys() {
		out.Set(key, nutrientString(raw[key]))
	}
	return out
}

func nutrientString(v any) string {
	switch t := v.(type) {
	case string:
		if t == "" || t == constants.NotAvailable {
			return constants.NotAvailable
		}
		return t
	case float64:
		if t == 0 {
			return constants.NotAvailable
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		if t == 0 {
			return constants.NotAvailable
		}
		return strconv.Itoa(t)
	}
	// nil, booleans and nested values carry no usable amount
	return constants.NotAvailable
}
