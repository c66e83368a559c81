package llm

import (
	"strings"
)

// BuildPrompt renders the extraction instructions around the document text.
func BuildPrompt(text string) string {
	parts := []string{
		"Extract allergens and nutritional values from the following text. Return ONLY valid JSON.",
		"",
		"ALLERGEN EXTRACTION:",
		"- Use true/false boolean values",
		`- Mark TRUE for: "+", "I", "X", "Igen", "tartalmaz", "contains", "may contain"`,
		`- Mark FALSE for: "-", "N", "Nem", "mentes", "free from", "allergen-free"`,
		"",
		"ALLERGEN PATTERNS:",
		"- +/I/X/Igen/tartalmaz = TRUE",
		"- -/N/Nem/mentes = FALSE",
		"",
		"NUTRITION EXTRACTION:",
		"- Extract ALL nutrients: Energy, Fat, Carbohydrate, Sugar, Protein, Sodium",
		`- NEVER return "N/A" unless truly not found`,
		`- Values may use a comma or a dot as decimal separator: "6,9 g", "6.9 g", "6,9", "0,9 g", "0.9 g"`,
		`- FAT: find "Zsír", "Fat", "lipides", "grasas"`,
		`- CARBOHYDRATE: find "Szénhidrát", "Carbohydrate"`,
		`- SUGAR: look for "amelyből cukrok", "cukor", "sugar" and always extract it if present`,
		`- PROTEIN: look for "Fehérje", "Protein"`,
		`- SODIUM: look for "Só", "Nátrium", "Salt", "Sodium"`,
		`- Ignore sub-lines like "- ebből telített zsírsavak"`,
		"",
		"REQUIRED ALLERGENS TO EXTRACT:",
		"- Gluten (wheat, barley, rye, oats, glutén, búza, gluténtartalmú)",
		"- Egg (eggs, egg products, tojás)",
		"- Crustaceans (shellfish, shrimp, crab, lobster, rák, rákfélék)",
		"- Fish (any fish species, hal)",
		"- Peanut (peanuts, groundnuts, mogyoró, földimogyoró)",
		"- Soy (soybeans, soy products, szója, szójabab)",
		"- Milk (dairy, lactose, milk products, tej, laktóz)",
		"- Tree nuts (almonds, walnuts, hazelnuts, dió, diófélék, csonthéjasok)",
		"- Celery (celery root, celery leaves, zeller)",
		"- Mustard (mustard seeds, mustard powder, mustár)",
		"",
		"TEXT TO ANALYZE:",
		text,
		"",
		"Return ONLY this JSON format:",
		envelopeTemplate,
	}
	return strings.Join(parts, "\n")
}

const envelopeTemplate = `{
  "allergens": {
    "gluten": true/false,
    "egg": true/false,
    "crustaceans": true/false,
    "fish": true/false,
    "peanut": true/false,
    "soy": true/false,
    "milk": true/false,
    "tree_nuts": true/false,
    "celery": true/false,
    "mustard": true/false
  },
  "nutrients": {
    "energy": "value unit" or "N/A",
    "fat": "value unit" or "N/A",
    "carbohydrate": "value unit" or "N/A",
    "sugar": "value unit" or "N/A",
    "protein": "value unit" or "N/A",
    "sodium": "value unit" or "N/A"
  }
}`
