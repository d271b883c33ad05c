package generatetestquestions

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"

	"assessment-workers/internal/assessment"
	"assessment-workers/internal/common/camunda"
	"assessment-workers/internal/common/errors"
	"assessment-workers/internal/common/logger"
	"assessment-workers/internal/common/metrics"
	"assessment-workers/internal/common/validation"
	"assessment-workers/pkg/registry"
)

const (
	TaskType  = "assessment.generate-test-questions"
	ConfigKey = "generate-test-questions"
)

// Generator is the slice of the assessment engine this worker needs.
type Generator interface {
	GenerateTestQuestions(ctx context.Context, bp *assessment.JobTestBlueprint) ([]assessment.GeneratedQuestion, error)
	GenerateTestQuestionsWithSeed(ctx context.Context, bp *assessment.JobTestBlueprint, seed int64) ([]assessment.GeneratedQuestion, error)
	Settings() assessment.Settings
}

type Handler struct {
	config       *Config
	engine       Generator
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
	inputSchema  []byte
	now          func() time.Time
}

type HandlerOptions struct {
	Config   *Config
	Engine   Generator
	Registry *registry.ActivityRegistry
	Logger   logger.Logger
	Clock    func() time.Time
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", ConfigKey, err)
	}
	if opts.Engine == nil {
		return nil, fmt.Errorf("%s requires an assessment engine", ConfigKey)
	}

	reg := opts.Registry
	if reg == nil {
		var err error
		if reg, err = registry.Default(); err != nil {
			return nil, err
		}
	}
	activity, ok := reg.Lookup(TaskType)
	if !ok {
		return nil, fmt.Errorf("task type %s is not in the activity registry", TaskType)
	}
	schema, err := activity.InputSchemaJSON()
	if err != nil {
		return nil, fmt.Errorf("input schema for %s: %w", TaskType, err)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewStructured("info", "json")
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})

	now := opts.Clock
	if now == nil {
		now = time.Now
	}

	return &Handler{
		config:       cfg,
		engine:       opts.Engine,
		logger:       log,
		errorHandler: errors.NewErrorHandler(log),
		inputSchema:  schema,
		now:          now,
	}, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	startTime := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":             job.GetKey(),
		"processInstanceKey": job.GetProcessInstanceKey(),
	})

	input, err := h.parseInput(job)
	if err == nil {
		var output *Output
		if output, err = h.Execute(ctx, input); err == nil {
			err = h.completeJob(ctx, client, job, output)
		}
	}

	if err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.CodeOf(err))).Inc()
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return err
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(startTime).Seconds())
	return nil
}

// Execute generates one test from the blueprint.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input.Blueprint == nil {
		return nil, errors.NewInvalidInputError("blueprint is required")
	}

	var (
		questions []assessment.GeneratedQuestion
		err       error
	)
	if input.Seed != nil {
		questions, err = h.engine.GenerateTestQuestionsWithSeed(ctx, input.Blueprint, *input.Seed)
	} else {
		questions, err = h.engine.GenerateTestQuestions(ctx, input.Blueprint)
	}
	if err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, errors.NewTimeoutError("assessment", ctx.Err())
	}

	counts := make(map[assessment.CategoryID]int)
	seconds := 0
	for _, q := range questions {
		counts[q.Category]++
		seconds += q.TimeLimit
	}

	// A caller's limit may be longer than the questions need, never shorter.
	timeLimit := max(input.Blueprint.TotalTimeLimit, assessment.TimeLimit(seconds, h.engine.Settings().TimeBufferPercent))

	return &Output{
		TestID:         uuid.NewString(),
		Questions:      questions,
		TotalQuestions: len(questions),
		TotalTimeLimit: timeLimit,
		CategoryCounts: counts,
		GeneratedAt:    h.now().UTC(),
	}, nil
}

func (h *Handler) parseInput(job entities.Job) (*Input, error) {
	variables, err := job.GetVariablesAsMap()
	if err != nil {
		return nil, errors.NewParseError(err)
	}

	result, err := validation.ValidateInput(variables, h.inputSchema)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	if !result.Valid {
		return nil, errors.NewValidationFailedError(result.Summary())
	}

	var input Input
	if err := json.Unmarshal([]byte(job.GetVariables()), &input); err != nil {
		return nil, errors.NewParseError(err)
	}
	return &input, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) error {
	request, err := client.NewCompleteJobCommand().JobKey(job.GetKey()).VariablesFromObject(output)
	if err != nil {
		return errors.NewInternalError(err)
	}

	if _, err := camunda.Retry(ctx, camunda.DefaultRetryConfig, func(ctx context.Context) error {
		_, sendErr := request.Send(ctx)
		return sendErr
	}); err != nil {
		return errors.NewExternalServiceError("zeebe", err)
	}

	h.logger.Info("job completed", map[string]interface{}{
		"jobKey":         job.GetKey(),
		"testId":         output.TestID,
		"totalQuestions": output.TotalQuestions,
		"categoryCounts": output.CategoryCounts,
	})
	return nil
}

func (h *Handler) GetTaskType() string { return TaskType }

func (h *Handler) GetConfig() *Config { return h.config }
