package fallback

import (
	"strings"

	"github.com/dlclark/regexp2"
)

// textFix is one literal OCR substitution. Order matters: later fixes see earlier output.
type textFix struct {
	wrong, right string
}

var cleanFixes = []textFix{
	{"s6", "só"},
	{"S6", "Só"},
	{"cukrok", "cukor"},
	{"Cukrok", "Cukor"},
	{"Zsir", "Zsír"},
	{"Feherje", "Fehérje"},
	{"1Z73", "1173"},
	{"1Z74", "1174"},
	{"1Z75", "1175"},
	{"amelyből cukrok", "amelyből cukor"},
	{"telített zsírsavak", "telített zsír"},
	{"zsirtartalom", "zsír tartalom"},
	{"Jellemz6érték", "Jellemzőérték"},
	{"amelyb6élcukrok", "amelyből cukrok"},
	{"amelybőltelítettzsírsavak", "amelyből telített zsírsavak"},
	{"Fehérje 3,2 2/100g", "Fehérje 3,2 g/100g"},
	{"amelyb6élcukrok 2,4 2/100g", "amelyből cukrok 2,4 g/100g"},
	{"Gluténttartalmaz6gabonafélék", "Glutént tartalmazó gabonafélék"},
	{"Rakfélék", "Rákfélék"},
	{"Szdjabab", "Szójabab"},
	{"Féldimogyoré", "Földimogyoró"},
	{"Mustarésabbolkésziilttermékek", "Mustár és abból készült termékek"},
}

type rewrite struct {
	re   *regexp2.Regexp
	repl string
}

func mustRewrite(pattern, repl string) rewrite {
	re := regexp2.MustCompile(pattern, regexp2.None)
	re.MatchTimeout = matchTimeout
	return rewrite{re: re, repl: repl}
}

// Applied in order after the literal fixes.
var cleanRewrites = []rewrite{
	mustRewrite(`[\[\]]`, "("),
	mustRewrite(`[()]`, " "),
	// "/" is blanked too, so "1173 kJ/282kcal" reaches the rules as "1173 kJ 282kcal".
	mustRewrite(`[^\w\s,.:+-]`, " "),
	mustRewrite(`(\d+)[Oo](\d+)`, "${1}.0${2}"),
	mustRewrite(`(\d+)[lI](\d+)`, "${1}.1${2}"),
	mustRewrite(`(?<=\d)\.(?=\d)`, ","),
}

// CleanText flattens whitespace, repairs known OCR substitutions, blanks brackets and
// stray punctuation, and rewrites dot decimals as comma decimals. "+" and "-" survive
// because the allergen table relies on them.
func CleanText(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	for _, f := range cleanFixes {
		text = strings.ReplaceAll(text, f.wrong, f.right)
	}
	for _, rw := range cleanRewrites {
		out, err := rw.re.Replace(text, rw.repl, -1, -1)
		if err != nil {
			continue
		}
		text = out
	}
	return strings.TrimSpace(text)
}
