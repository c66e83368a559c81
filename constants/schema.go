package constants

// NotAvailable marks a nutrient value that could not be determined.
const NotAvailable = "N/A"

// Nutrient keys, in the order they are reported.
const (
	NutrientEnergy       = "energy"
	NutrientFat          = "fat"
	NutrientCarbohydrate = "carbohydrate"
	NutrientSugar        = "sugar"
	NutrientProtein      = "protein"
	NutrientSodium       = "sodium"
)

// Allergen keys, in the order they are reported.
const (
	AllergenGluten      = "gluten"
	AllergenEgg         = "egg"
	AllergenCrustaceans = "crustaceans"
	AllergenFish        = "fish"
	AllergenPeanut      = "peanut"
	AllergenSoy         = "soy"
	AllergenMilk        = "milk"
	AllergenTreeNuts    = "tree_nuts"
	AllergenCelery      = "celery"
	AllergenMustard     = "mustard"
)

var nutrientKeys = []string{
	NutrientEnergy,
	NutrientFat,
	NutrientCarbohydrate,
	NutrientSugar,
	NutrientProtein,
	NutrientSodium,
}

var allergenKeys = []string{
	AllergenGluten,
	AllergenEgg,
	AllergenCrustaceans,
	AllergenFish,
	AllergenPeanut,
	AllergenSoy,
	AllergenMilk,
	AllergenTreeNuts,
	AllergenCelery,
	AllergenMustard,
}

// NutrientKeys returns a copy of the fixed nutrient schema.
func NutrientKeys() []string {
	out := make([]string, len(nutrientKeys))
	copy(out, nutrientKeys)
	return out
}

// AllergenKeys returns a copy of the fixed allergen schema.
func AllergenKeys() []string {
	out := make([]string, len(allergenKeys))
	copy(out, allergenKeys)
	return out
}

// IsNutrientKey reports whether k belongs to the nutrient schema.
func IsNutrientKey(k string) bool {
	for _, n := range nutrientKeys {
		if n == k {
			return true
		}
	}
	return false
}

// IsAllergenKey reports whether k belongs to the allergen schema.
func IsAllergenKey(k string) bool {
	for _, a := range allergenKeys {
		if a == k {
			return true
		}
	}
	return false
}
