package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/nutrition-extractor/constants"
	"github.com/joseph-ayodele/nutrition-extractor/internal/common"
	"github.com/joseph-ayodele/nutrition-extractor/internal/entity"
	"github.com/joseph-ayodele/nutrition-extractor/internal/fallback"
	"github.com/joseph-ayodele/nutrition-extractor/internal/llm"
	"github.com/joseph-ayodele/nutrition-extractor/internal/metrics"
	"github.com/joseph-ayodele/nutrition-extractor/internal/ocr"
)

// patchKeys are the nutrients most often dropped by the model; they are
// back-filled from the pattern fallback when the answer is otherwise trusted.
var patchKeys = []string{constants.NutrientProtein, constants.NutrientSodium, constants.NutrientSugar}

// TextExtractor is the document-to-text stage.
type TextExtractor interface {
	Extract(ctx context.Context, doc []byte) (ocr.ExtractionResult, error)
}

// Processor coordinates text extraction, the model call and the fallback.
type Processor struct {
	text     TextExtractor
	gateway  llm.Gateway
	fallback llm.TextFallback
	policy   TrustPolicy
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// Option customizes a Processor.
type Option func(*Processor)

func WithTrustPolicy(p TrustPolicy) Option   { return func(pr *Processor) { pr.policy = p } }
func WithMetrics(m *metrics.Metrics) Option  { return func(pr *Processor) { pr.metrics = m } }
func WithFallback(f llm.TextFallback) Option { return func(pr *Processor) { pr.fallback = f } }

func NewProcessor(text TextExtractor, gateway llm.Gateway, logger *slog.Logger, opts ...Option) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Processor{
		text:    text,
		gateway: gateway,
		policy:  DefaultTrustPolicy(),
		logger:  logger,
	}
	for _, o := range opts {
		o(p)
	}
	if p.fallback == nil {
		p.fallback = fallback.NewEngine(logger)
	}
	return p
}

// Process turns one PDF into an ExtractionResult. It never returns an error:
// failures are reported through Success and Error on the result.
func (p *Processor) Process(ctx context.Context, doc []byte, credential string) (res entity.ExtractionResult) {
	ctx, rid := common.EnsureRequestID(ctx)
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("pipeline.process.panic", "req_id", rid, "panic", r)
			res = entity.NewFailedResult(fmt.Sprintf("Extraction failed: %v", r), time.Since(start))
		}
		p.metrics.ObserveResult(string(res.Source), res.Success, time.Since(start))
		p.logger.Info("pipeline.process.done",
			"req_id", rid,
			"success", res.Success,
			"source", res.Source,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
	}()

	p.logger.Info("pipeline.process.start", "req_id", rid, "bytes", len(doc))

	extracted, err := p.text.Extract(ctx, doc)
	if err != nil {
		p.report(ctx, rid, fatal(StageText, err.Error()))
		return entity.NewFailedResult("Extraction failed: "+common.UserMessage(err), time.Since(start))
	}
	p.report(ctx, rid, ok(StageText))

	cleaned := fallback.CleanText(extracted.Text)
	p.logger.Debug("pipeline.text.cleaned",
		"req_id", rid,
		"method", extracted.Method,
		"raw_chars", len(extracted.Text),
		"clean_chars", len(cleaned),
	)

	raw, err := p.gateway.Extract(ctx, cleaned, credential)
	if err != nil {
		p.report(ctx, rid, degraded(StageLLM, err.Error()))
		raw = llm.EmptyOutput()
	} else {
		p.report(ctx, rid, ok(StageLLM))
	}

	var (
		allergens entity.AllergenRecord
		nutrients entity.NutrientRecord
		source    constants.Source
	)
	if err := p.policy.Evaluate(raw); err != nil {
		p.report(ctx, rid, degraded(StageTrust, common.UserMessage(err)))
		allergens, nutrients = p.fallback.Extract(cleaned)
		nutrients = nutrients.Normalized()
		source = constants.SourceFallback
		p.report(ctx, rid, ok(StageFallback))
	} else {
		p.report(ctx, rid, ok(StageTrust))
		allergens = ValidateAllergens(raw.Allergens)
		nutrients = ValidateNutrients(raw.Nutrients)
		p.report(ctx, rid, ok(StageValidate))
		if patched := p.patch(&nutrients, cleaned); len(patched) > 0 {
			p.logger.Info("pipeline.patch.applied", "req_id", rid, "keys", patched)
			p.report(ctx, rid, degraded(StagePatch, fmt.Sprintf("filled %v from patterns", patched)))
		}
		source = constants.SourceLLM
	}

	return entity.ExtractionResult{
		Success:        true,
		Allergens:      allergens,
		Nutrients:      nutrients,
		Source:         source,
		ExtractedText:  cleaned,
		ElapsedSeconds: time.Since(start).Seconds(),
	}
}

// patch fills missing patch keys from one fallback run and returns the keys it
// filled. Populated values are never overwritten.
func (p *Processor) patch(n *entity.NutrientRecord, text string) []string {
	var missing []string
	for _, key := range patchKeys {
		if n.IsMissing(key) {
			missing = append(missing, key)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	_, found := p.fallback.Extract(text)
	var filled []string
	for _, key := range missing {
		if v := found.Get(key); !entity.IsMissingValue(v) {
			n.Set(key, v)
			filled = append(filled, key)
		}
	}
	return filled
}

func (p *Processor) report(ctx context.Context, rid string, o Outcome) {
	o.log(ctx, p.logger, rid)
	p.metrics.ObserveStage(o.Stage, string(o.Status))
}
