package fallback

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joseph-ayodele/nutrition-extractor/constants"
)

func TestCleanText(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"collapses whitespace", "Energia:\n\n  100 kJ\t", "Energia: 100 kJ"},
		{"fixes misread salt", "S6 1,2 g", "Só 1,2 g"},
		{"fixes accents", "Zsir 3 g Feherje 4 g", "Zsír 3 g Fehérje 4 g"},
		{"dot decimal to comma", "Zsír: 3.5 g", "Zsír: 3,5 g"},
		{"brackets blanked", "Zsír [g] 3", "Zsír  g  3"},
		{"letter O inside number", "15O2", "15,02"},
		{"letter l inside number", "3l5", "3,15"},
		{"keeps allergen signs", "06 + Gluten 03 - Eggs", "06 + Gluten 03 - Eggs"},
		{"strips stray punctuation", "Só* 1,2 g!", "Só  1,2 g"},
		{"plural sugar folded", "amelyből cukrok 2,4 g", "amelyből cukor 2,4 g"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CleanText(tc.in))
		})
	}
}

func TestCleanTextFeedsSugarRule(t *testing.T) {
	e := NewEngine(nil)
	assert.Equal(t, "2,4 g", e.ExtractNutrient(constants.NutrientSugar, CleanText("amelyből cukrok 2,4 g")))
}

func TestCleanTextBlanksSlashBeforeRules(t *testing.T) {
	e := NewEngine(nil)

	energy := CleanText("Energia 1173 kJ/282kcal")
	assert.Equal(t, "Energia 1173 kJ 282kcal", energy)
	assert.Equal(t, "1173 kJ", e.ExtractNutrient(constants.NutrientEnergy, energy))

	assert.Equal(t, "3,2 g", e.ExtractNutrient(constants.NutrientFat, CleanText("Zsír 3,2 g/100g")))
}
