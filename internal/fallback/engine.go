package fallback

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/joseph-ayodele/nutrition-extractor/constants"
	"github.com/joseph-ayodele/nutrition-extractor/internal/entity"
)

// Engine extracts nutrients and allergens from cleaned text using the static rule table.
// It holds no per-call state and is safe for concurrent use.
type Engine struct {
	rules  []NutrientRule
	logger *slog.Logger
}

// NewEngine builds an Engine over the default rule table.
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{rules: nutrientRules, logger: logger}
}

// Extract runs every nutrient rule and the allergen table scan over text.
func (e *Engine) Extract(text string) (entity.AllergenRecord, entity.NutrientRecord) {
	nutrients := entity.NewNutrientRecord()
	for _, rule := range e.rules {
		nutrients.Set(rule.Nutrient, e.extractNutrient(rule, text))
	}
	allergens := e.extractAllergens(text)

	e.logger.Debug("fallback.extract.ok",
		"text_len", len(text),
		"nutrients_found", 6-countMissing(nutrients),
		"allergens_true", allergens.TrueCount(),
	)
	return allergens, nutrients
}

// ExtractNutrient evaluates a single nutrient's rules over text.
func (e *Engine) ExtractNutrient(nutrient, text string) string {
	for _, rule := range e.rules {
		if rule.Nutrient == nutrient {
			return e.extractNutrient(rule, text)
		}
	}
	return constants.NotAvailable
}

type nutrientMatch struct {
	span   string
	groups []string
}

func (e *Engine) firstMatch(rule NutrientRule, text string) (nutrientMatch, bool) {
	for _, re := range rule.Patterns {
		m, err := re.FindStringMatch(text)
		if err != nil {
			e.logger.Warn("fallback.pattern.timeout", "nutrient", rule.Nutrient, "pattern", re.String(), "err", err)
			continue
		}
		if m == nil {
			continue
		}
		// group 0 is the whole match
		groups := m.Groups()[1:]
		vals := make([]string, 0, len(groups))
		for _, g := range groups {
			vals = append(vals, g.String())
		}
		return nutrientMatch{span: m.String(), groups: vals}, true
	}
	return nutrientMatch{}, false
}

func (e *Engine) extractNutrient(rule NutrientRule, text string) string {
	m, ok := e.firstMatch(rule, text)
	if !ok || len(m.groups) == 0 {
		// no match, or an explicit "not specified" marker
		return constants.NotAvailable
	}

	value := firstNonEmpty(m.groups)
	if value == "" {
		return constants.NotAvailable
	}
	num, err := parseDecimal(value)
	if err != nil {
		e.logger.Warn("fallback.value.invalid", "nutrient", rule.Nutrient, "value", value)
		return constants.NotAvailable
	}

	span := strings.ToLower(m.span)
	milligrams := rule.Unit == UnitGrams && rule.Nutrient == constants.NutrientSodium && strings.Contains(span, "mg")
	if milligrams {
		num /= 1000.0
	}

	if num > rule.Ceiling {
		e.logger.Warn("fallback.value.above_ceiling", "nutrient", rule.Nutrient, "value", value, "ceiling", rule.Ceiling)
		return constants.NotAvailable
	}
	if num < rule.Floor {
		e.logger.Warn("fallback.value.below_floor", "nutrient", rule.Nutrient, "value", value, "floor", rule.Floor)
	}

	switch rule.Unit {
	case UnitEnergy:
		if len(m.groups) >= 2 && m.groups[0] != "" && m.groups[1] != "" {
			return fmt.Sprintf("%s kJ / %s kcal", m.groups[0], m.groups[1])
		}
		return value + " " + energyUnit(span)
	default:
		if milligrams {
			return fmt.Sprintf("%.3f g", num)
		}
		return value + " g"
	}
}

func energyUnit(span string) string {
	if strings.Contains(span, "kcal") && !strings.Contains(span, "kj") {
		return "kcal"
	}
	return "kJ"
}

func (e *Engine) extractAllergens(text string) entity.AllergenRecord {
	var rec entity.AllergenRecord
	for _, markers := range allergenMarkers {
		for _, mk := range markers {
			if e.matches(mk.present, text) {
				rec.Set(mk.allergen, true)
				break
			}
			if e.matches(mk.absent, text) {
				rec.Set(mk.allergen, false)
				break
			}
		}
	}
	return rec
}

func (e *Engine) matches(re *regexp2.Regexp, text string) bool {
	ok, err := re.MatchString(text)
	if err != nil {
		e.logger.Warn("fallback.pattern.timeout", "pattern", re.String(), "err", err)
		return false
	}
	return ok
}

func firstNonEmpty(vals []string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// parseDecimal accepts comma or dot as the decimal separator.
func parseDecimal(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", "."), 64)
}

func countMissing(r entity.NutrientRecord) int {
	n := 0
	for _, k := range constants.NutrientKeys() {
		if r.IsMissing(k) {
			n++
		}
	}
	return n
}
