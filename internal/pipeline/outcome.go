package pipeline

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/nutrition-extractor/constants"
)

// Stage names reported in pipeline.stage logs and metrics.
const (
	StageText     = "text"
	StageLLM      = "llm"
	StageTrust    = "trust"
	StagePatch    = "patch"
	StageFallback = "fallback"
	StageValidate = "validate"
)

// Outcome is what one stage reports instead of unwinding.
type Outcome struct {
	Stage  string
	Status constants.StageStatus
	Reason string
}

func ok(stage string) Outcome { return Outcome{Stage: stage, Status: constants.StageOK} }

func degraded(stage, reason string) Outcome {
	return Outcome{Stage: stage, Status: constants.StageDegraded, Reason: reason}
}

func fatal(stage, reason string) Outcome {
	return Outcome{Stage: stage, Status: constants.StageFatal, Reason: reason}
}

func (o Outcome) log(ctx context.Context, logger *slog.Logger, rid string) {
	level := slog.LevelInfo
	switch o.Status {
	case constants.StageDegraded:
		level = slog.LevelWarn
	case constants.StageFatal:
		level = slog.LevelError
	}
	logger.Log(ctx, level, "pipeline.stage",
		"req_id", rid,
		"stage", o.Stage,
		"status", string(o.Status),
		"reason", o.Reason,
	)
}
