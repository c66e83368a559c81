package entity

import (
	"encoding/json"
	"strings"

	"github.com/joseph-ayodele/nutrition-extractor/constants"
)

// NutrientRecord holds one formatted value per nutrient, or constants.NotAvailable.
type NutrientRecord struct {
	Energy       string `json:"energy"`
	Fat          string `json:"fat"`
	Carbohydrate string `json:"carbohydrate"`
	Sugar        string `json:"sugar"`
	Protein      string `json:"protein"`
	Sodium       string `json:"sodium"`
}

// NewNutrientRecord returns a record with every nutrient set to N/A.
func NewNutrientRecord() NutrientRecord {
	na := constants.NotAvailable
	return NutrientRecord{Energy: na, Fat: na, Carbohydrate: na, Sugar: na, Protein: na, Sodium: na}
}

func (r *NutrientRecord) field(key string) *string {
	switch key {
	case constants.NutrientEnergy:
		return &r.Energy
	case constants.NutrientFat:
		return &r.Fat
	case constants.NutrientCarbohydrate:
		return &r.Carbohydrate
	case constants.NutrientSugar:
		return &r.Sugar
	case constants.NutrientProtein:
		return &r.Protein
	case constants.NutrientSodium:
		return &r.Sodium
	}
	return nil
}

// Get returns the value for key, N/A for unset fields and "" for unknown keys.
func (r NutrientRecord) Get(key string) string {
	f := r.field(key)
	if f == nil {
		return ""
	}
	if strings.TrimSpace(*f) == "" {
		return constants.NotAvailable
	}
	return *f
}

// Set stores value under key. Unknown keys are ignored and reported as false.
func (r *NutrientRecord) Set(key, value string) bool {
	f := r.field(key)
	if f == nil {
		return false
	}
	if strings.TrimSpace(value) == "" {
		value = constants.NotAvailable
	}
	*f = value
	return true
}

// IsMissing reports whether key has no usable value.
func (r NutrientRecord) IsMissing(key string) bool {
	return IsMissingValue(r.Get(key))
}

// AllMissing reports whether no nutrient has a usable value.
func (r NutrientRecord) AllMissing() bool {
	for _, k := range constants.NutrientKeys() {
		if !r.IsMissing(k) {
			return false
		}
	}
	return true
}

// Normalized fills empty fields with N/A.
func (r NutrientRecord) Normalized() NutrientRecord {
	out := r
	for _, k := range constants.NutrientKeys() {
		out.Set(k, r.Get(k))
	}
	return out
}

// Map returns the record keyed by nutrient name.
func (r NutrientRecord) Map() map[string]string {
	m := make(map[string]string, 6)
	for _, k := range constants.NutrientKeys() {
		m[k] = r.Get(k)
	}
	return m
}

func (r NutrientRecord) MarshalJSON() ([]byte, error) {
	type plain NutrientRecord
	return json.Marshal(plain(r.Normalized()))
}

// IsMissingValue reports whether v is empty or the N/A sentinel.
func IsMissingValue(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || v == constants.NotAvailable
}
