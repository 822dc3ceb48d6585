// Package pipeline orchestrates the three-phase proposal run: extraction,
// fan-out analysis, and strategy synthesis.
//
// Phase 2 tasks are mutually independent: each consumes only the Phase-1
// extraction output and the catalog snapshot, so a failure in one never
// corrupts another and the fan-out can run fully parallel.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"proposal-engine/internal/catalog"
	"proposal-engine/internal/common/errors"
	"proposal-engine/internal/common/logger"
	"proposal-engine/internal/common/metrics"
	"proposal-engine/internal/common/observability"
	"proposal-engine/internal/compliance"
	"proposal-engine/internal/extraction"
	"proposal-engine/internal/matching"
	"proposal-engine/internal/models"
	"proposal-engine/internal/pricing"
	"proposal-engine/internal/risk"
	"proposal-engine/internal/strategy"
)

const (
	phaseExtraction = "extraction"
	phaseAnalysis   = "analysis"
	phaseSynthesis  = "synthesis"
)

// Clock abstracts time.Now for reproducible risk assessments.
type Clock func() time.Time

// Orchestrator runs the proposal pipeline end to end.
type Orchestrator struct {
	extractor   extraction.Extractor
	store       catalog.Store
	rates       pricing.Rates
	thresholds  risk.Thresholds
	checklist   []compliance.ChecklistEntry
	termsTotal  int
	synthesizer *strategy.Synthesizer
	sink        Sink
	logger      logger.Logger
	obs         *observability.Observability
	now         Clock
	onComplete  []func(context.Context, *models.ProposalBundle)
}

// Options bundle the orchestrator dependencies. Zero-value domain parameters
// fall back to package defaults; Sink and Observability may be nil.
type Options struct {
	Extractor      extraction.Extractor
	Store          catalog.Store
	Rates          pricing.Rates
	Thresholds     risk.Thresholds
	Checklist      []compliance.ChecklistEntry
	TermsEvaluated int
	Synthesizer    *strategy.Synthesizer
	Sink           Sink
	Logger         logger.Logger
	Observability  *observability.Observability
	Clock          Clock
	// OnComplete hooks run after a successful synthesis, in order. They must
	// be best-effort: a hook cannot fail the run.
	OnComplete []func(context.Context, *models.ProposalBundle)
}

func NewOrchestrator(opts Options) *Orchestrator {
	if opts.Rates == (pricing.Rates{}) {
		opts.Rates = pricing.DefaultRates
	}
	if opts.Thresholds == (risk.Thresholds{}) {
		opts.Thresholds = risk.DefaultThresholds
	}
	if len(opts.Checklist) == 0 {
		opts.Checklist = compliance.DefaultChecklist
	}
	if opts.TermsEvaluated == 0 {
		opts.TermsEvaluated = 12
	}
	if opts.Synthesizer == nil {
		opts.Synthesizer = strategy.New(strategy.DefaultWeights, strategy.DefaultBand, strategy.NewClockSource())
	}
	if opts.Sink == nil {
		opts.Sink = NopSink{}
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Orchestrator{
		extractor:   opts.Extractor,
		store:       opts.Store,
		rates:       opts.Rates,
		thresholds:  opts.Thresholds,
		checklist:   opts.Checklist,
		termsTotal:  opts.TermsEvaluated,
		synthesizer: opts.Synthesizer,
		sink:        opts.Sink,
		logger:      opts.Logger.With(map[string]interface{}{"component": "pipeline"}),
		obs:         opts.Observability,
		now:         opts.Clock,
		onComplete:  opts.OnComplete,
	}
}

// analysis holds the Phase-2 fan-out results.
type analysis struct {
	matches    []models.MatchResult
	bill       *pricing.BillOfMaterials
	risk       models.RiskAssessment
	compliance models.ComplianceResult
}

// Run executes the full pipeline for one request. Extraction failure aborts
// the run before any Phase-2 work starts; a fatal Phase-2 task cancels its
// siblings via the group context.
func (o *Orchestrator) Run(ctx context.Context, request models.RFPRequest) (*models.ProposalBundle, error) {
	start := time.Now()
	o.logger.Info("pipeline run started", map[string]interface{}{
		"requestId": request.ID,
		"title":     request.Title,
	})

	bundle, err := o.run(ctx, request)

	status := "success"
	if err != nil {
		status = "failure"
	}
	metrics.PipelineRuns.WithLabelValues(status).Inc()
	if o.obs != nil {
		o.obs.RecordRun(ctx, status)
		o.obs.RecordDuration(ctx, time.Since(start))
	}
	return bundle, err
}

func (o *Orchestrator) run(ctx context.Context, request models.RFPRequest) (*models.ProposalBundle, error) {
	// Phase 1: extraction.
	extracted, err := o.extract(ctx, request)
	if err != nil {
		o.emit(LevelError, phaseExtraction, "requirement extraction failed", map[string]interface{}{
			"requestId": request.ID,
			"error":     err.Error(),
		})
		return nil, errors.NewPipelineAbortedError(phaseExtraction, err)
	}

	items, err := o.store.List(ctx)
	if err != nil {
		o.emit(LevelError, phaseAnalysis, "catalog load failed", map[string]interface{}{
			"requestId": request.ID,
			"error":     err.Error(),
		})
		return nil, errors.NewPipelineAbortedError(phaseAnalysis, err)
	}

	// Phase 2: independent fan-out.
	result, err := o.analyze(ctx, request, extracted, items)
	if err != nil {
		return nil, errors.NewPipelineAbortedError(phaseAnalysis, err)
	}

	// Phase 3: synthesis.
	bundle := o.synthesize(request, result)

	o.emit(LevelSuccess, phaseSynthesis, "proposal generated", map[string]interface{}{
		"requestId":      request.ID,
		"proposalId":     bundle.ProposalID,
		"winProbability": bundle.WinProbability,
		"grandTotal":     bundle.Costs.GrandTotal,
	})
	o.logger.Info("pipeline run finished", map[string]interface{}{
		"requestId":  request.ID,
		"proposalId": bundle.ProposalID,
	})

	for _, hook := range o.onComplete {
		hook(ctx, bundle)
	}
	return bundle, nil
}

func (o *Orchestrator) extract(ctx context.Context, request models.RFPRequest) (*models.ExtractionResult, error) {
	ctx, span := o.startSpan(ctx, phaseExtraction)
	defer span.end()
	timer := o.phaseTimer(phaseExtraction)
	defer timer()

	o.emit(LevelInfo, phaseExtraction, "extracting requirements", map[string]interface{}{
		"requestId": request.ID,
	})

	extracted, err := o.extractor.Extract(ctx, request.Title, request.Excerpt)
	if err != nil {
		return nil, err
	}

	level := LevelSuccess
	message := "requirements extracted"
	if extracted.Inferred {
		level = LevelWarning
		message = "requirements inferred from a thin excerpt"
	}
	o.emit(level, phaseExtraction, message, map[string]interface{}{
		"requestId":    request.ID,
		"requirements": len(extracted.Requirements),
		"tests":        len(extracted.Tests),
	})
	return extracted, nil
}

func (o *Orchestrator) analyze(ctx context.Context, request models.RFPRequest, extracted *models.ExtractionResult, items []models.CatalogItem) (*analysis, error) {
	ctx, span := o.startSpan(ctx, phaseAnalysis)
	defer span.end()
	timer := o.phaseTimer(phaseAnalysis)
	defer timer()

	o.emit(LevelInfo, phaseAnalysis, "analysis fan-out started", map[string]interface{}{
		"requestId": request.ID,
		"tasks":     4,
	})

	var out analysis
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		out.matches = matching.Match(extracted.Requirements, items)
		o.emit(LevelSuccess, "matching", "candidates scored", map[string]interface{}{
			"requestId": request.ID,
			"items":     len(out.matches),
		})
		return gctx.Err()
	})

	g.Go(func() error {
		// Pricing runs its own match pass so it depends only on Phase-1
		// output, not on the sibling task.
		bill, err := pricing.Price(matching.Match(extracted.Requirements, items), extracted.Tests, len(items), o.rates)
		if err != nil {
			o.emit(LevelError, "pricing", "bill of materials failed", map[string]interface{}{
				"requestId": request.ID,
				"error":     err.Error(),
			})
			return err
		}
		out.bill = bill
		metrics.ProposalsPriced.Inc()
		o.emit(LevelSuccess, "pricing", "bill of materials priced", map[string]interface{}{
			"requestId":  request.ID,
			"grandTotal": bill.Costs.GrandTotal,
		})
		return gctx.Err()
	})

	g.Go(func() error {
		out.risk = risk.Assess(matching.Match(extracted.Requirements, items), request.DueDate, o.now(), o.thresholds)
		o.emit(LevelSuccess, "risk", "risk assessed", map[string]interface{}{
			"requestId": request.ID,
			"score":     out.risk.Score,
			"level":     string(out.risk.Level),
		})
		return gctx.Err()
	})

	g.Go(func() error {
		out.compliance = compliance.Check(request.Excerpt, o.checklist, o.termsTotal)
		o.emit(LevelSuccess, "compliance", "compliance checked", map[string]interface{}{
			"requestId": request.ID,
			"status":    string(out.compliance.Status),
		})
		return gctx.Err()
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}

func (o *Orchestrator) synthesize(request models.RFPRequest, result *analysis) *models.ProposalBundle {
	timer := o.phaseTimer(phaseSynthesis)
	defer timer()

	return o.synthesizer.Synthesize(uuid.NewString(), strategy.Inputs{
		Request:    request,
		Matches:    result.matches,
		Bill:       result.bill,
		Risk:       result.risk,
		Compliance: result.compliance,
	})
}

func (o *Orchestrator) emit(level EventLevel, component, message string, fields map[string]interface{}) {
	o.sink.Emit(newEvent(level, component, message, fields))
}

func (o *Orchestrator) phaseTimer(phase string) func() {
	start := time.Now()
	return func() {
		metrics.PhaseDuration.WithLabelValues(phase).Observe(time.Since(start).Seconds())
	}
}

// spanHandle hides the nil-observability case from the phase methods.
type spanHandle struct {
	end func()
}

func (o *Orchestrator) startSpan(ctx context.Context, name string) (context.Context, spanHandle) {
	if o.obs == nil {
		return ctx, spanHandle{end: func() {}}
	}
	ctx, span := o.obs.StartSpan(ctx, name)
	return ctx, spanHandle{end: func() { span.End() }}
}
