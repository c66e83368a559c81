package pipeline

import (
	"fmt"
	"strings"

	"github.com/joseph-ayodele/nutrition-extractor/constants"
	"github.com/joseph-ayodele/nutrition-extractor/internal/common"
	"github.com/joseph-ayodele/nutrition-extractor/internal/llm"
)

// DefaultMaxTrueAllergens is the most allergens a sheet may plausibly declare
// before the model answer is treated as a false positive.
const DefaultMaxTrueAllergens = 5

var truthyWords = map[string]struct{}{
	"true": {}, "yes": {}, "1": {}, "igen": {}, "contains": {},
}

// TrustPolicy decides whether a model answer is used or replaced by the
// pattern fallback.
type TrustPolicy struct {
	MaxTrueAllergens int
}

func DefaultTrustPolicy() TrustPolicy {
	return TrustPolicy{MaxTrueAllergens: DefaultMaxTrueAllergens}
}

// Evaluate returns nil when raw is trusted, or a ValidationDowngrade error
// naming the rule that rejected it.
func (p TrustPolicy) Evaluate(raw llm.RawOutput) error {
	if len(raw.Allergens) == 0 {
		return common.ValidationDowngrade("no allergens returned")
	}
	present := CountTrueAllergens(raw.Allergens)
	missing := NutrientsAllMissing(raw.Nutrients)

	switch {
	case present == 0 && missing:
		return common.ValidationDowngrade("no allergens present and all nutrients missing")
	case present > p.MaxTrueAllergens:
		return common.ValidationDowngrade(fmt.Sprintf("%d allergens marked present, limit %d", present, p.MaxTrueAllergens))
	case missing:
		return common.ValidationDowngrade("all nutrients missing")
	}
	return nil
}

// CountTrueAllergens counts known allergen keys whose value reads as present.
func CountTrueAllergens(allergens map[string]any) int {
	n := 0
	for _, key := range constants.AllergenKeys() {
		if isTruthy(allergens[key]) {
			n++
		}
	}
	return n
}

func isTruthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		_, ok := truthyWords[strings.ToLower(strings.TrimSpace(t))]
		return ok
	}
	return false
}

// NutrientsAllMissing reports whether no known nutrient survives field
// validation. Unknown keys are ignored and an empty map counts as all missing.
func NutrientsAllMissing(nutrients map[string]any) bool {
	return ValidateNutrients(nutrients).AllMissing()
}
