package ocr

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	reCRLF       = regexp.MustCompile(`\r\n?`)
	reInlineWS   = regexp.MustCompile(`[^\S\n]+`)
	reMultiBlank = regexp.MustCompile(`\n{3,}`)
)

type textFix struct {
	wrong, right string
}

// Known OCR misreadings of Hungarian nutrition labels. Applied in order.
var labelFixes = []textFix{
	{"2sir", "Zsír"},
	{"amelyb6l", "amelyből"},
	{"amelybol", "amelyből"},
	{"telitett", "telített"},
	{"zsirsavak", "zsírsavak"},
	{"Szénhidrat", "Szénhidrát"},
	{"Natrium", "Nátrium"},
	{"tapérték", "tápérték"},
	{"Atlagos", "Átlagos"},
	{"energia", "Energia"},
	{"zsir", "Zsír"},
	{"szénhidrat", "Szénhidrát"},
	{"feherje", "Fehérje"},
	{"natrium", "Nátrium"},
}

// Normalize composes accents, collapses whitespace inside lines, drops blank
// lines and repairs known label misreadings. Line breaks are kept.
func Normalize(s string) string {
	if s == "" {
		return s
	}
	s = norm.NFC.String(s)
	s = reCRLF.ReplaceAllString(s, "\n")
	s = strings.ReplaceAll(s, "\f", "\n")
	s = reInlineWS.ReplaceAllString(s, " ")
	s = reMultiBlank.ReplaceAllString(s, "\n\n")
	return applyFixes(joinLines(s))
}

// CleanPage tidies the text of one OCR'd page before it is appended.
func CleanPage(s string) string {
	if s == "" {
		return s
	}
	return applyFixes(joinLines(norm.NFC.String(s)))
}

func joinLines(s string) string {
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

func applyFixes(s string) string {
	for _, f := range labelFixes {
		s = strings.ReplaceAll(s, f.wrong, f.right)
	}
	return s
}
