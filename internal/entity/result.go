package entity

import (
	"time"

	"github.com/joseph-ayodele/nutrition-extractor/constants"
)

// ExtractionResult is the terminal output of one extraction request.
type ExtractionResult struct {
	Success        bool             `json:"success"`
	Allergens      AllergenRecord   `json:"allergens"`
	Nutrients      NutrientRecord   `json:"nutrients"`
	Source         constants.Source `json:"source"`
	ExtractedText  string           `json:"extracted_text"`
	Error          string           `json:"error,omitempty"`
	ElapsedSeconds float64          `json:"elapsed_seconds"`
}

// NewFailedResult builds the result returned when extraction aborts.
func NewFailedResult(msg string, elapsed time.Duration) ExtractionResult {
	return ExtractionResult{
		Success:        false,
		Allergens:      AllergenRecord{},
		Nutrients:      NewNutrientRecord(),
		Source:         constants.SourceFallback,
		Error:          msg,
		ElapsedSeconds: elapsed.Seconds(),
	}
}
