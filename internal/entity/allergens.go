package entity

import "github.com/joseph-ayodele/nutrition-extractor/constants"

// AllergenRecord flags the presence of each regulated allergen. Zero value is all false.
type AllergenRecord struct {
	Gluten      bool `json:"gluten"`
	Egg         bool `json:"egg"`
	Crustaceans bool `json:"crustaceans"`
	Fish        bool `json:"fish"`
	Peanut      bool `json:"peanut"`
	Soy         bool `json:"soy"`
	Milk        bool `json:"milk"`
	TreeNuts    bool `json:"tree_nuts"`
	Celery      bool `json:"celery"`
	Mustard     bool `json:"mustard"`
}

func (r *AllergenRecord) field(key string) *bool {
	switch key {
	case constants.AllergenGluten:
		return &r.Gluten
	case constants.AllergenEgg:
		return &r.Egg
	case constants.AllergenCrustaceans:
		return &r.Crustaceans
	case constants.AllergenFish:
		return &r.Fish
	case constants.AllergenPeanut:
		return &r.Peanut
	case constants.AllergenSoy:
		return &r.Soy
	case constants.AllergenMilk:
		return &r.Milk
	case constants.AllergenTreeNuts:
		return &r.TreeNuts
	case constants.AllergenCelery:
		return &r.Celery
	case constants.AllergenMustard:
		return &r.Mustard
	}
	return nil
}

// Get returns the flag for key; unknown keys read as false.
func (r AllergenRecord) Get(key string) bool {
	if f := r.field(key); f != nil {
		return *f
	}
	return false
}

// Set stores the flag under key. Unknown keys are ignored and reported as false.
func (r *AllergenRecord) Set(key string, present bool) bool {
	f := r.field(key)
	if f == nil {
		return false
	}
	*f = present
	return true
}

// TrueCount returns how many allergens are flagged present.
func (r AllergenRecord) TrueCount() int {
	n := 0
	for _, k := range constants.AllergenKeys() {
		if r.Get(k) {
			n++
		}
	}
	return n
}

// Map returns the record keyed by allergen name.
func (r AllergenRecord) Map() map[string]bool {
	m := make(map[string]bool, 10)
	for _, k := range constants.AllergenKeys() {
		m[k] = r.Get(k)
	}
	return m
}
