package fallback

import (
	"time"

	"github.com/dlclark/regexp2"

	"github.com/joseph-ayodele/nutrition-extractor/constants"
)

// matchTimeout bounds each regex evaluation; the lazy `.*?` rules can backtrack badly on long OCR text.
const matchTimeout = 250 * time.Millisecond

// UnitRule selects how a matched number is rendered.
type UnitRule int

const (
	// UnitGrams renders "<v> g"; spans mentioning "mg" are converted to grams first.
	UnitGrams UnitRule = iota
	// UnitEnergy renders kJ unless the span names kcal without kJ.
	UnitEnergy
)

// NutrientRule is one row of the rule table: ordered patterns plus plausibility bounds.
// A pattern with two groups yields a combined kJ/kcal value, one group a single value,
// and zero groups marks the nutrient explicitly absent.
type NutrientRule struct {
	Nutrient string
	Unit     UnitRule
	Ceiling  float64
	Floor    float64
	Patterns []*regexp2.Regexp
}

func compile(patterns ...string) []*regexp2.Regexp {
	out := make([]*regexp2.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re := regexp2.MustCompile(p, regexp2.IgnoreCase)
		re.MatchTimeout = matchTimeout
		out = append(out, re)
	}
	return out
}

var energyPatterns = compile(
	// combined kJ/kcal forms first
	`energy/energia:\s*(\d+(?:,\d+)?)\s*kj/(\d+(?:,\d+)?)kcal`,
	`energia/energy:\s*(\d+(?:,\d+)?)\s*kj/(\d+(?:,\d+)?)kcal`,
	`energy/energia\s*(\d+(?:,\d+)?)\s*kj/(\d+(?:,\d+)?)kcal`,
	`energia/energy\s*(\d+(?:,\d+)?)\s*kj/(\d+(?:,\d+)?)kcal`,
	`energia/energy\s+value\s+(\d+(?:,\d+)?)\s*kj\s*/\s*(\d+(?:,\d+)?)\s*kcal`,
	`energia/energy\s+value\s{2,}(\d+(?:,\d+)?)\s*kj\s*/\s*(\d+(?:,\d+)?)\s*kcal`,
	`(?:energia|energy)\s+(\d+(?:,\d+)?)\s*kj/(\d+(?:,\d+)?)kcal`,
	`(?:energia|energy)[:\s]*(\d+(?:,\d+)?)\s*kj\s*/\s*(\d+(?:,\d+)?)\s*kcal`,
	`(\d+(?:,\d+)?)\s*kj\s*/\s*(\d+(?:,\d+)?)\s*kcal`,
	`(\d+(?:,\d+)?)\s*kj/(\d+(?:,\d+)?)\s*kcal`,
	`(\d+(?:,\d+)?)\s*kj\s*\((\d+(?:,\d+)?)\s*kcal\)`,

	// labelled, single unit
	`(?:energia|energy|énergie|calories|calorías)[:\s]*(\d+(?:,\d+)?)\s*(?:kj|kcal)(?!\s*/)`,
	`(?:energia|energy|énergie|calories|calorías)\s*\[(?:kj|kcal)\]\s*:\s*(\d+(?:,\d+)?)\s*(?:kj|kcal)`,

	// bare values
	`(\d+(?:,\d+)?)\s*kj(?!\s*/)`,
	`(\d+(?:,\d+)?)\s*kcal(?!\s*/)`,

	`energia\s*:\s*(\d+(?:,\d+)?)\s*kcal`,
	`energia\s+(\d+(?:,\d+)?)\s*kcal`,
	`energia\s+(\d+(?:,\d+)?)\s*kj`,
	`energia\s*\[kj\]\s*:\s*(\d+(?:,\d+)?)\s*kj`,
	`energia\s*\[kcal\]\s*:\s*(\d+(?:,\d+)?)\s*kcal`,
	`energia\s*:\s*(\d+(?:,\d+)?)\s*(?:kj|kcal)`,

	`énergie\s*:\s*(\d+(?:,\d+)?)\s*(?:kj|kcal)`,
	`calories\s*:\s*(\d+(?:,\d+)?)\s*kcal`,

	`energia\s*\(kj\)\s*:\s*(\d+(?:,\d+)?)`,
	`energia\s*\(kcal\)\s*:\s*(\d+(?:,\d+)?)`,

	// table rows: "Energia  kJ  1553 I N X"
	`energia\s+\s*kj\s+(\d+)(?:\s+[INX])?`,
	`energia\s+\s*kcal\s+(\d+)(?:\s+[INX])?`,

	`energia\s*:\s*(\d+(?:[.,]\d+)?)\s*(?:kj|kcal)`,
	`energy\s*:\s*(\d+(?:[.,]\d+)?)\s*(?:kj|kcal)`,
)

var fatPatterns = compile(
	`(?:zsír|fat|lipides|gras|grasas)[:\s]+(\d+(?:[,.]\d+)?)\s*g(?!\s*/)`,
	`(?:zsírtartalom|fat content|contenu en lipides|contenido en grasas)[:\s]+(\d+(?:[,.]\d+)?)\s*g(?!\s*/)`,
	`zsír\s+(\d+(?:[,.]\d+)?)\s*g`,
	`fat\s+(\d+(?:[,.]\d+)?)\s*g`,

	// table rows: "Zsír  g  36 N"
	`zsír\s+\s*g\s+(\d+(?:,\d+)?)(?:\s+[INX])?`,
	`zsír\s+\s*g\s+(\d+)(?:\s+[INX])?`,
	`zsír\s+\s*g\s+(\d+,\d+)(?:\s+[INX])?`,
	`zsír\s*\[\s*g\s*\]\s*(\d+(?:,\d+)?)\s*[INX]`,
	`zsír\s*\[\s*g\s*\]\s*(\d+(?:,\d+)?)\s*[NX]`,
	`zsír\s*\[g\]\s*:\s*(\d+(?:,\d+)?)\s*g`,
	`zsír\s*:\s*(\d+(?:,\d+)?)\s*g`,
	`zsír\s*g\s*:\s*(\d+(?:,\d+)?)\s*g`,
	`zsírtartalom\s*:\s*(\d+(?:,\d+)?)\s*g`,

	`fat/.*?(\d+(?:,\d+)?)\s*g`,
	`fat\s*:\s*(\d+(?:,\d+)?)\s*g`,
	`total fat\s*:\s*(\d+(?:,\d+)?)\s*g`,

	`lipides\s*:\s*(\d+(?:,\d+)?)\s*g`,
	`matières grasses\s*:\s*(\d+(?:,\d+)?)\s*g`,

	`grasas\s*:\s*(\d+(?:,\d+)?)\s*g`,
	`lípidos\s*:\s*(\d+(?:,\d+)?)\s*g`,

	`zsír\s*\(g\)\s*:\s*(\d+(?:,\d+)?)`,
	`fat\s*\(g\)\s*:\s*(\d+(?:,\d+)?)`,

	`zsir\s*:\s*(\d+(?:[.,]\d+)?)\s*g`,
	`fat\s*:\s*(\d+(?:[.,]\d+)?)\s*g`,
)

var proteinPatterns = compile(
	`(?:fehérje|protein|protéines|proteínas|proteine)[:\s]+(\d+(?:,\d+)?)\s*g(?!\s*/)`,
	`fehérje\s+(\d+(?:,\d+)?)\s*g`,
	`protein\s+(\d+(?:,\d+)?)\s*g`,

	// table rows: "Fehérje  g 21,6"
	`fehérje\s+\s*g\s+(\d+(?:,\d+)?)(?!\s*[gG])`,
	`fehérje\s*\[\s*g\s*\]\s+(\d+(?:,\d+)?)(?=\s*[INX]|\s|$)`,
	`fehérje\s*\[\s*g\s*\]\s+(\d+(?:,\d+)?)(?=\s*[NX]|\s|$)`,
	`fehérje\s*\[g\]\s*:\s*(\d+(?:,\d+)?)\s*g`,
	`fehérje\s*:\s*(\d+(?:,\d+)?)\s*g`,
	`fehérje\s*g\s*:\s*(\d+(?:,\d+)?)\s*g`,
	`fehérjetartalom\s*:\s*(\d+(?:,\d+)?)\s*g`,

	`protein/.*?(\d+(?:,\d+)?)\s*g`,
	`protein\s*:\s*(\d+(?:,\d+)?)\s*g`,
	`total protein\s*:\s*(\d+(?:,\d+)?)\s*g`,

	`protéines\s*:\s*(\d+(?:,\d+)?)\s*g`,
	`protéine\s*:\s*(\d+(?:,\d+)?)\s*g`,

	`proteínas\s*:\s*(\d+(?:,\d+)?)\s*g`,
	`proteína\s*:\s*(\d+(?:,\d+)?)\s*g`,

	`fehérje\s*\(g\)\s*:\s*(\d+(?:,\d+)?)`,
	`protein\s*\(g\)\s*:\s*(\d+(?:,\d+)?)`,

	`feherje\s*:\s*(\d+(?:[.,]\d+)?)\s*g`,
	`protein\s*:\s*(\d+(?:[.,]\d+)?)\s*g`,
	`fehérje\s*(\d+(?:[.,]\d+)?)\s*g`,
)

var carbohydratePatterns = compile(
	`(?:szénhidrát|carbohydrate|carbohydrates|glucides|hidratos de carbono)[:\s]+(\d+(?:,\d+)?)\s*g(?!\s*/)`,
	`szénhidrát\s+(\d+(?:,\d+)?)\s*g`,
	`carbohydrate\s+(\d+(?:,\d+)?)\s*g`,
	`szénhidrát\s*:\s*(\d+(?:[.,]\d+)?)\s*g`,

	// table rows: "Szénhidrát  g  1 N"
	`szénhidrát\s+\s*g\s+(\d+)(?:\s+[INX])?`,
	`szénhidrát\s*\[\s*g\s*\]\s*(\d+(?:,\d+)?)\s*[INX]`,
	`szénhidrát\s*\[\s*g\s*\]\s*(\d+(?:,\d+)?)\s*[NX]`,
	`szénhidrát\s*\[g\]\s*:\s*(\d+(?:,\d+)?)\s*g`,
	`szénhidrát\s*:\s*(\d+(?:,\d+)?)\s*g`,
	`szénhidrát\s*g\s*:\s*(\d+(?:,\d+)?)\s*g`,
	`szénhidráttartalom\s*:\s*(\d+(?:,\d+)?)\s*g`,

	`carbohydrate/.*?(\d+(?:,\d+)?)\s*g`,
	`carbohydrate\s*:\s*(\d+(?:,\d+)?)\s*g`,
	`total carbohydrate\s*:\s*(\d+(?:,\d+)?)\s*g`,
	`carbohydrates\s*:\s*(\d+(?:,\d+)?)\s*g`,

	`glucides\s*:\s*(\d+(?:,\d+)?)\s*g`,
	`hydrates de carbone\s*:\s*(\d+(?:,\d+)?)\s*g`,

	`hidratos de carbono\s*:\s*(\d+(?:,\d+)?)\s*g`,
	`carbohidratos\s*:\s*(\d+(?:,\d+)?)\s*g`,

	`szénhidrát\s*\(g\)\s*:\s*(\d+(?:,\d+)?)`,
	`carbohydrate\s*\(g\)\s*:\s*(\d+(?:,\d+)?)`,

	`szénhidrat\s*:\s*(\d+(?:[.,]\d+)?)\s*g`,
	`carbohydrate\s*:\s*(\d+(?:[.,]\d+)?)\s*g`,
)

var sugarPatterns = compile(
	`(?:cukor|sugar|sugars|sucres|azúcares)[:\s]+(\d+(?:,\d+)?)\s*g(?!\s*/)`,
	`cukor\s+(\d+(?:,\d+)?)\s*g`,
	`sugar\s+(\d+(?:,\d+)?)\s*g`,

	// table rows: "cukor  g  0,5 N"
	`cukor\s+\s*g\s+(\d+,\d+)(?:\s+[INX])?`,
	`amelyből cukor\s*[:\s]+\s*(\d+(?:,\d+)?)\s*g`,
	`amelyből cukrok\s*[:\s]+\s*(\d+(?:,\d+)?)\s*g`,
	`-of which sugars/\s*(\d+(?:,\d+)?)\s*g`,
	`-of which sugar/\s*(\d+(?:,\d+)?)\s*g`,
	`amelyből cukrok\s+(\d+(?:,\d+)?)\s*g`,
	`amelyből cukor\s+(\d+(?:,\d+)?)\s*g`,
	`sugars?\s*:\s*(\d+(?:,\d+)?)\s*g(?!\s*/)`,
	`cukrok\s*\[\s*g\s*\]\s*(\d+(?:,\d+)?)\s*[INX]`,
	`cukor\s*\[\s*g\s*\]\s*(\d+(?:,\d+)?)\s*[INX]`,
	`cukor\s*:\s*(\d+(?:,\d+)?)\s*g`,
	`cukrok\s*:\s*(\d+(?:,\d+)?)\s*g`,
	`cukor\s*g\s*:\s*(\d+(?:,\d+)?)\s*g`,
	`cukrok\s*g\s*:\s*(\d+(?:,\d+)?)\s*g`,
	`cukortartalom\s*:\s*(\d+(?:,\d+)?)\s*g`,

	`sugars/\s*(\d+(?:,\d+)?)\s*g`,
	`sugar/.*?(\d+(?:,\d+)?)\s*g`,
	`sugar\s*:\s*(\d+(?:,\d+)?)\s*g`,
	`sugars\s*:\s*(\d+(?:,\d+)?)\s*g`,
	`of which sugars\s*:\s*(\d+(?:,\d+)?)\s*g`,

	`sucres\s*:\s*(\d+(?:,\d+)?)\s*g`,
	`dont sucres\s*:\s*(\d+(?:,\d+)?)\s*g`,

	`azúcares\s*:\s*(\d+(?:,\d+)?)\s*g`,
	`de los cuales azúcares\s*:\s*(\d+(?:,\d+)?)\s*g`,

	`cukor\s*\(g\)\s*:\s*(\d+(?:,\d+)?)`,
	`sugar\s*\(g\)\s*:\s*(\d+(?:,\d+)?)`,

	`cukor\s*:\s*(\d+(?:[.,]\d+)?)\s*g`,
	`sugar\s*:\s*(\d+(?:[.,]\d+)?)\s*g`,
	`amelyből cukrok\s*[:\s]+\s*(\d+(?:[.,]\d+)?)\s*g`,
	`cukrok\s+(\d+(?:[.,]\d+)?)\s*g`,
	`amelyből cukrok\s*[:\s]+\s*(\d+(?:[.,]\d+)?)`,
	`ebből cukor\s*[:\s]+\s*(\d+(?:[.,]\d+)?)\s*g`,
)

var sodiumPatterns = compile(
	`(?:só|salt|sodium|sel|nátrium|sal)[:\s]+(\d+(?:,\d+)?)\s*g(?!\s*/)`,
	// "Só: -" states the value is absent
	`(?:só|salt|sodium)[:\s]+[-–]`,
	`só\s+(\d+(?:,\d+)?)\s*g`,
	`salt\s+(\d+(?:,\d+)?)\s*g`,

	// table rows: "Só  g  1,9 N"
	`só\s+\s*g\s+(\d+,\d+)(?:\s+[INX])?`,
	`só\s*\[\s*g\s*\]\s*(\d+(?:,\d+)?)\s*[INX]`,
	`só\s*\[\s*g\s*\]\s*(\d+(?:,\d+)?)\s*[NX]`,
	`só\s*\[g\]\s*:\s*(\d+(?:,\d+)?)\s*g`,
	`só\s*:\s*(\d+(?:,\d+)?)\s*g`,
	`só\s*g\s*:\s*(\d+(?:,\d+)?)\s*g`,
	`nátrium\s*:\s*(\d+(?:,\d+)?)\s*g`,
	`sótartalom\s*:\s*(\d+(?:,\d+)?)\s*g`,

	`salt/.*?(\d+(?:[.,]\d+)?)\s*g`,
	`salt\s*:\s*(\d+(?:[.,]\d+)?)\s*g`,
	`sodium\s*:\s*(\d+(?:[.,]\d+)?)\s*g`,
	`sodium\s*:\s*(\d+(?:[.,]\d+)?)\s*mg`,

	`sel\s*:\s*(\d+(?:,\d+)?)\s*g`,

	`sal\s*:\s*(\d+(?:,\d+)?)\s*g`,
	`sodio\s*:\s*(\d+(?:,\d+)?)\s*g`,

	`só\s*\(g\)\s*:\s*(\d+(?:,\d+)?)`,
	`salt\s*\(g\)\s*:\s*(\d+(?:,\d+)?)`,

	`so\s*:\s*(\d+(?:[.,]\d+)?)\s*g`,
)

// nutrientRules is evaluated in schema order. Ceilings and floors are per 100 g.
var nutrientRules = []NutrientRule{
	{Nutrient: constants.NutrientEnergy, Unit: UnitEnergy, Ceiling: 5000, Floor: 50, Patterns: energyPatterns},
	{Nutrient: constants.NutrientFat, Unit: UnitGrams, Ceiling: 100, Floor: 0.01, Patterns: fatPatterns},
	{Nutrient: constants.NutrientCarbohydrate, Unit: UnitGrams, Ceiling: 100, Floor: 0.01, Patterns: carbohydratePatterns},
	{Nutrient: constants.NutrientSugar, Unit: UnitGrams, Ceiling: 100, Floor: 0.01, Patterns: sugarPatterns},
	{Nutrient: constants.NutrientProtein, Unit: UnitGrams, Ceiling: 100, Floor: 0.01, Patterns: proteinPatterns},
	{Nutrient: constants.NutrientSodium, Unit: UnitGrams, Ceiling: 10, Floor: 0.001, Patterns: sodiumPatterns},
}

// Rules returns the nutrient rule table.
func Rules() []NutrientRule {
	return nutrientRules
}

// allergenKeywords lists the label synonyms checked in numbered allergen tables.
var allergenKeywords = []struct {
	Allergen string
	Keywords []string
}{
	{constants.AllergenGluten, []string{"gluten", "glutén"}},
	{constants.AllergenMilk, []string{"milk", "tej", "tejfehérje", "laktóz"}},
	{constants.AllergenEgg, []string{"egg", "tojás"}},
	{constants.AllergenCrustaceans, []string{"crustacean", "rák", "rákfélék"}},
	{constants.AllergenFish, []string{"fish", "hal"}},
	{constants.AllergenPeanut, []string{"peanut", "földimogyoró"}},
	{constants.AllergenSoy, []string{"soy", "szója"}},
	{constants.AllergenTreeNuts, []string{"almond", "walnut", "dió", "diófélék"}},
	{constants.AllergenCelery, []string{"celery", "zeller"}},
	{constants.AllergenMustard, []string{"mustard", "mustár"}},
}

// allergenMarker is a compiled "<digits> +|- ... <keyword>" matcher.
type allergenMarker struct {
	allergen string
	present  *regexp2.Regexp
	absent   *regexp2.Regexp
}

// markerWindow allows up to three whole tokens between the sign and the keyword.
// Tokens may not contain another sign, so one table row cannot bleed into the next.
const markerWindow = `\s+(?:[^\s+\-]+\s+){0,3}?[^\s+\-]*?`

var allergenMarkers = buildAllergenMarkers()

func buildAllergenMarkers() [][]allergenMarker {
	out := make([][]allergenMarker, 0, len(allergenKeywords))
	for _, ak := range allergenKeywords {
		markers := make([]allergenMarker, 0, len(ak.Keywords))
		for _, kw := range ak.Keywords {
			esc := regexp2.Escape(kw)
			present := regexp2.MustCompile(`\d+\s*\+`+markerWindow+esc, regexp2.IgnoreCase)
			absent := regexp2.MustCompile(`\d+\s*-`+markerWindow+esc, regexp2.IgnoreCase)
			present.MatchTimeout = matchTimeout
			absent.MatchTimeout = matchTimeout
			markers = append(markers, allergenMarker{allergen: ak.Allergen, present: present, absent: absent})
		}
		out = append(out, markers)
	}
	return out
}
