package ocr

import (
	"regexp"
	"strings"

	"github.com/coregx/ahocorasick"
)

// nutritionKeywords are label words that show a text layer actually holds a nutrition table.
var nutritionKeywords = []string{
	"energia", "zsír", "szénhidrát", "fehérje", "nátrium",
	"energy", "fat", "carbohydrate", "protein", "sodium",
}

var reNumber = regexp.MustCompile(`\d+(?:,\d+)?`)

// QualityThresholds decide whether direct text is usable without OCR.
type QualityThresholds struct {
	MinChars    int
	MinKeywords int
	MinNumbers  int
}

// DefaultQualityThresholds returns the stock thresholds.
func DefaultQualityThresholds() QualityThresholds {
	return QualityThresholds{MinChars: 50, MinKeywords: 2, MinNumbers: 3}
}

// QualityReport describes a scored text.
type QualityReport struct {
	Chars    int
	Keywords int
	Numbers  int
	OK       bool
}

// QualityScorer counts keywords and numeric tokens. Safe for concurrent use.
type QualityScorer struct {
	th QualityThresholds
	ac *ahocorasick.Automaton
}

// NewQualityScorer builds the keyword automaton once.
func NewQualityScorer(th QualityThresholds) (*QualityScorer, error) {
	ac, err := ahocorasick.NewBuilder().
		AddStrings(nutritionKeywords).
		SetMatchKind(ahocorasick.LeftmostLongest).
		SetPrefilter(true).
		Build()
	if err != nil {
		return nil, err
	}
	return &QualityScorer{th: th, ac: ac}, nil
}

// Score evaluates text against the thresholds. Keywords count once each.
func (q *QualityScorer) Score(text string) QualityReport {
	trimmed := strings.TrimSpace(text)
	rep := QualityReport{Chars: len([]rune(trimmed))}
	if trimmed == "" {
		return rep
	}

	seen := make(map[int]struct{}, len(nutritionKeywords))
	for _, m := range q.ac.FindAllOverlapping([]byte(strings.ToLower(trimmed))) {
		seen[m.PatternID] = struct{}{}
	}
	rep.Keywords = len(seen)
	rep.Numbers = len(reNumber.FindAllStringIndex(trimmed, -1))
	rep.OK = rep.Chars >= q.th.MinChars &&
		rep.Keywords >= q.th.MinKeywords &&
		rep.Numbers >= q.th.MinNumbers
	return rep
}
