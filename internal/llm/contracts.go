package llm

import (
	"context"

	"github.com/joseph-ayodele/nutrition-extractor/internal/entity"
)

// RawOutput is the model's envelope before field validation. Either map may be
// empty; values are whatever JSON types the model produced.
type RawOutput struct {
	Allergens map[string]any `json:"allergens"`
	Nutrients map[string]any `json:"nutrients"`
}

// EmptyOutput is what a failed round trip yields.
func EmptyOutput() RawOutput {
	return RawOutput{Allergens: map[string]any{}, Nutrients: map[string]any{}}
}

// FromRecords converts typed records into the raw envelope shape.
func FromRecords(a entity.AllergenRecord, n entity.NutrientRecord) RawOutput {
	out := EmptyOutput()
	for k, v := range a.Map() {
		out.Allergens[k] = v
	}
	for k, v := range n.Map() {
		out.Nutrients[k] = v
	}
	return out
}

// Gateway is the interface our pipeline depends on. Implementations never fail
// hard: on error they still return a usable (possibly empty) RawOutput.
type Gateway interface {
	Extract(ctx context.Context, text, credential string) (RawOutput, error)
}

// TextFallback parses free text when the model reply is not JSON.
type TextFallback interface {
	Extract(text string) (entity.AllergenRecord, entity.NutrientRecord)
}
