package llm

import (
	"strings"
	"testing"

	"github.com/joseph-ayodele/nutrition-extractor/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPromptEmbedsText(t *testing.T) {
	p := BuildPrompt("Zsír 12,5 g")

	assert.Contains(t, p, "TEXT TO ANALYZE:\nZsír 12,5 g\n")
	assert.Contains(t, p, `"tree_nuts": true/false`)
	assert.Contains(t, p, `"sodium": "value unit" or "N/A"`)
	assert.True(t, strings.Index(p, "ALLERGEN EXTRACTION") < strings.Index(p, "NUTRITION EXTRACTION"))
}

func TestStripCodeFence(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", ` {"a":1} `, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"same line", "```json{\"a\":1}```", `{"a":1}`},
		{"no closing", "```json\n{\"a\":1}", `{"a":1}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StripCodeFence(tc.in))
		})
	}
}

func TestDecodeEnvelope(t *testing.T) {
	out, warnings, err := DecodeEnvelope(`{"allergens":{"milk":true},"nutrients":{"fat":"5 g"}}`)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, true, out.Allergens["milk"])
	assert.Equal(t, "5 g", out.Nutrients["fat"])
}

func TestDecodeEnvelopeListBecomesEmpty(t *testing.T) {
	out, warnings, err := DecodeEnvelope(`{"allergens":["milk"],"nutrients":null}`)
	require.NoError(t, err)
	assert.Len(t, warnings, 1)
	assert.Empty(t, out.Allergens)
	assert.NotNil(t, out.Nutrients)
	assert.Empty(t, out.Nutrients)
}

func TestDecodeEnvelopeRejectsNonJSON(t *testing.T) {
	_, _, err := DecodeEnvelope("Energy: 250 kcal")
	assert.Error(t, err)
}

func TestValidateAgainstEnvelopeSchema(t *testing.T) {
	good := `{"allergens":{"gluten":false,"egg":false,"crustaceans":false,"fish":false,"peanut":false,"soy":false,"milk":true,"tree_nuts":false,"celery":false,"mustard":false},
"nutrients":{"energy":"1000 kJ","fat":"5 g","carbohydrate":"N/A","sugar":"N/A","protein":"3 g","sodium":"0.2 g"}}`
	require.NoError(t, ValidateEnvelope([]byte(good)))

	bad := `{"allergens":{"milk":"yes"},"nutrients":{}}`
	err := ValidateEnvelope([]byte(bad))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/allergens/milk")

	assert.Error(t, ValidateEnvelope([]byte("not json")))
}

func TestEnvelopeSchemaCompiledOnce(t *testing.T) {
	first, err := envelopeSchema()
	require.NoError(t, err)
	second, err := envelopeSchema()
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestCompileSchemaRejectsBadDocument(t *testing.T) {
	_, err := CompileSchema("bad.json", map[string]any{"type": 12})
	assert.Error(t, err)
}

func TestFromRecords(t *testing.T) {
	var a entity.AllergenRecord
	a.Set("soy", true)
	n := entity.NewNutrientRecord()
	n.Set("protein", "8 g")

	out := FromRecords(a, n)
	assert.Equal(t, true, out.Allergens["soy"])
	assert.Equal(t, false, out.Allergens["milk"])
	assert.Equal(t, "8 g", out.Nutrients["protein"])
	assert.Equal(t, "N/A", out.Nutrients["sugar"])
	assert.Len(t, out.Allergens, 10)
	assert.Len(t, out.Nutrients, 6)
}

func TestRedactURL(t *testing.T) {
	got := RedactURL("https://host/v1beta/models/m:generateContent?key=secret")
	assert.NotContains(t, got, "secret")
	assert.Contains(t, got, "key=REDACTED")

	assert.Equal(t, "https://host/path", RedactURL("https://host/path"))
}
