package assessment

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"assessment-workers/internal/common/errors"
	"assessment-workers/internal/common/logger"
	"assessment-workers/internal/common/metrics"
	"assessment-workers/internal/common/observability"
)

// Engine turns jobs into blueprints and blueprints into question sets.
// It holds only read-only state and is safe for concurrent use.
type Engine struct {
	bank     *Bank
	settings Settings
	log      logger.Logger
	seed     *int64
	now      func() time.Time
	calls    atomic.Int64
}

type Option func(*Engine)

func WithLogger(log logger.Logger) Option {
	return func(e *Engine) { e.log = log }
}

func WithBank(bank *Bank) Option {
	return func(e *Engine) { e.bank = bank }
}

func WithTotalQuestions(n int) Option {
	return func(e *Engine) { e.settings.TotalQuestions = n }
}

func WithTimeBuffer(percent int) Option {
	return func(e *Engine) { e.settings.TimeBufferPercent = percent }
}

// WithSeed makes every generation call use the same random sequence.
func WithSeed(seed int64) Option {
	return func(e *Engine) { e.seed = &seed }
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		settings: DefaultSettings(),
		log:      logger.NewNoOpLogger(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}

	if err := e.settings.validate(); err != nil {
		return nil, err
	}
	if e.bank == nil {
		bank, err := DefaultBank()
		if err != nil {
			return nil, err
		}
		e.bank = bank
	}
	return e, nil
}

func (e *Engine) Settings() Settings { return e.settings }

func (e *Engine) Bank() *Bank { return e.bank }

// AnalyzeJobRequirements classifies the job and assembles its test blueprint.
func (e *Engine) AnalyzeJobRequirements(ctx context.Context, job Job) (*JobTestBlueprint, error) {
	_, span := observability.StartSpan(ctx, "assessment.analyze", attribute.String("job.id", job.ID))
	defer span.End()

	analysis := Analyze(job)

	bp, err := Assemble(analysis, job, e.settings)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if dropped := DroppedCategories(analysis, bp); len(dropped) > 0 {
		e.log.Warn("categories dropped from blueprint", map[string]interface{}{
			"jobId":          job.ID,
			"dropped":        dropped,
			"totalQuestions": bp.TotalQuestions,
		})
	}

	metrics.BlueprintCategories.Observe(float64(len(bp.Categories)))
	span.SetAttributes(
		attribute.Int("categories", len(bp.Categories)),
		attribute.String("difficulty", string(bp.Difficulty)),
	)

	e.log.Debug("blueprint assembled", map[string]interface{}{
		"jobId":          job.ID,
		"categories":     bp.CategoryIDs(),
		"difficulty":     bp.Difficulty,
		"totalTimeLimit": bp.TotalTimeLimit,
	})

	return bp, nil
}

// GenerateTestQuestions produces exactly the blueprint's total number of
// questions in random order.
func (e *Engine) GenerateTestQuestions(ctx context.Context, bp *JobTestBlueprint) ([]GeneratedQuestion, error) {
	return e.generate(ctx, bp, e.nextSeed())
}

// GenerateTestQuestionsWithSeed is GenerateTestQuestions with a caller-chosen
// random sequence; equal seeds and blueprints give equal output.
func (e *Engine) GenerateTestQuestionsWithSeed(ctx context.Context, bp *JobTestBlueprint, seed int64) ([]GeneratedQuestion, error) {
	return e.generate(ctx, bp, seed)
}

func (e *Engine) nextSeed() int64 {
	if e.seed != nil {
		return *e.seed
	}
	return e.now().UnixNano() + e.calls.Add(1)
}

func (e *Engine) generate(ctx context.Context, bp *JobTestBlueprint, seed int64) ([]GeneratedQuestion, error) {
	if bp == nil {
		return nil, errors.NewInvalidInputError("blueprint is required")
	}

	_, span := observability.StartSpan(ctx, "assessment.generate",
		attribute.String("job.id", bp.JobID),
		attribute.Int("categories", len(bp.Categories)),
	)
	defer span.End()

	questions, err := e.buildQuestions(bp, seed)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("questions", len(questions)))
	return questions, nil
}

func (e *Engine) buildQuestions(bp *JobTestBlueprint, seed int64) ([]GeneratedQuestion, error) {
	defs, err := resolveCategories(bp)
	if err != nil {
		return nil, err
	}

	total := bp.TotalQuestions
	if total <= 0 {
		total = e.settings.TotalQuestions
	}
	if total > MaxTotalQuestions {
		return nil, errors.NewInvalidInputError(fmt.Sprintf("blueprint asks for %d questions, at most %d allowed", total, MaxTotalQuestions)).
			WithMetadata("jobId", bp.JobID)
	}
	difficulty := bp.Difficulty
	if !difficulty.Valid() {
		difficulty = DifficultyMedium
	}
	job := bp.JobContext()

	rng := rand.New(rand.NewSource(seed))
	ids := NewIDGenerator(rng, e.now)
	tracker := NewTracker()
	counts := Distribute(len(defs), total)

	out := make([]GeneratedQuestion, 0, total)
	for i, def := range defs {
		if counts[i] == 0 {
			continue
		}

		pool := e.bank.Pool(def.ID, difficulty, job)
		sel := Select(pool, counts[i], tracker, rng, ids, func(t Template) GeneratedQuestion {
			return Render(t, pool, def, job, "")
		})

		if sel.Exhausted > 0 {
			exhausted := errors.NewPoolExhaustedError(string(def.ID), string(difficulty), counts[i], pool.Len())
			e.log.Warn("question pool exhausted, repeating templates", map[string]interface{}{
				"jobId":      bp.JobID,
				"errorCode":  exhausted.Code,
				"details":    exhausted.Details,
				"repeated":   sel.Exhausted,
				"category":   def.ID,
				"difficulty": difficulty,
			})
			metrics.PoolExhaustions.WithLabelValues(string(def.ID), string(difficulty)).Add(float64(sel.Exhausted))
		}

		out = append(out, sel.Questions...)
	}

	if len(out) < total {
		return nil, errors.NewGenerationFailedError(fmt.Sprintf("generated %d of %d questions", len(out), total))
	}
	out = out[:total]

	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })

	for _, q := range out {
		metrics.QuestionsGenerated.WithLabelValues(string(q.Category), string(q.Difficulty)).Inc()
	}

	e.log.Info("questions generated", map[string]interface{}{
		"jobId":      bp.JobID,
		"count":      len(out),
		"categories": len(defs),
		"difficulty": difficulty,
	})

	return out, nil
}

// resolveCategories maps blueprint categories onto the registry definitions,
// in priority order so remainders land where Assemble put them.
func resolveCategories(bp *JobTestBlueprint) ([]CategoryDefinition, error) {
	if len(bp.Categories) == 0 {
		return nil, errors.NewConfigurationError("blueprint has no categories")
	}

	defs := make([]CategoryDefinition, 0, len(bp.Categories))
	seen := make(map[CategoryID]struct{}, len(bp.Categories))
	for _, c := range bp.Categories {
		def, ok := LookupCategory(c.ID)
		if !ok {
			return nil, errors.NewConfigurationError(fmt.Sprintf("unknown category %q", c.ID)).
				WithMetadata("category", string(c.ID))
		}
		if _, dup := seen[c.ID]; dup {
			return nil, errors.NewConfigurationError(fmt.Sprintf("category %q listed twice", c.ID)).
				WithMetadata("category", string(c.ID))
		}
		seen[c.ID] = struct{}{}
		defs = append(defs, def)
	}
	sort.SliceStable(defs, func(i, j int) bool {
		return priorityIndex[defs[i].ID] < priorityIndex[defs[j].ID]
	})
	return defs, nil
}
