package llm

import (
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/nutrition-extractor/constants"
)

// BuildEnvelopeSchema returns the JSON Schema the model reply is checked against.
// A mismatch is only reported; decoding stays lenient.
func BuildEnvelopeSchema() map[string]any {
	allergens := map[string]any{}
	for _, k := range constants.AllergenKeys() {
		allergens[k] = map[string]any{"type": "boolean"}
	}
	nutrients := map[string]any{}
	for _, k := range constants.NutrientKeys() {
		nutrients[k] = map[string]any{"type": "string", "minLength": 1}
	}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"allergens": map[string]any{
				"type":       "object",
				"properties": allergens,
				"required":   constants.AllergenKeys(),
			},
			"nutrients": map[string]any{
				"type":       "object",
				"properties": nutrients,
				"required":   constants.NutrientKeys(),
			},
		},
		"required": []string{"allergens", "nutrients"},
	}
}

var envelopeSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	return CompileSchema("envelope.json", BuildEnvelopeSchema())
})

// ValidateEnvelope checks a model reply against the envelope schema, compiled once per process.
func ValidateEnvelope(reply []byte) error {
	schema, err := envelopeSchema()
	if err != nil {
		return err
	}
	return validateAgainst(schema, reply)
}
