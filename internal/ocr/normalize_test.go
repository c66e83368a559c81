package ocr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"collapses inline whitespace", "Zsír \t  5 g", "Zsír 5 g"},
		{"drops blank lines", "a\n\n\n\nb\n \n", "a\nb"},
		{"crlf and form feed", "a\r\nb\fc", "a\nb\nc"},
		{"fixes misread labels", "2sir 3 g\nfeherje 4 g\nnatrium 0,1 g", "Zsír 3 g\nFehérje 4 g\nNátrium 0,1 g"},
		{"capitalizes energia", "energia 100 kJ", "Energia 100 kJ"},
		{"composes decomposed accents", "Fehe\u0301rje", "Feh\u00e9rje"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Normalize(tc.in))
		})
	}
}

func TestCleanPageKeepsLineBreaks(t *testing.T) {
	assert.Equal(t, "Szénhidrát 30 g\namelyből cukor 4 g", CleanPage("  Szénhidrat   30 g \n\n amelyb6l cukor 4 g"))
}
