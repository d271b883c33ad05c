package analyzejobrequirements

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
	"assessment-workers/internal/common/database"
	"assessment-workers/internal/common/errors"
	"assessment-workers/internal/common/logger"
	"assessment-workers/internal/common/metrics"
	"assessment-workers/internal/common/validation"
	"assessment-workers/pkg/registry"
)

const (
	TaskType = "assessment.analyze-job-requirements"
	// ConfigKey names the worker's entry under workers in config.yaml.
	ConfigKey = "analyze-job-requirements"

	cacheKeyPrefix = "assessment:blueprint:"
)

// cacheNamespace scopes the name-based UUIDs used as blueprint cache keys.
var cacheNamespace = uuid.MustParse("6f1c7b52-3f0e-5a8e-9d43-2b7f0c9e4a11")

// Analyzer is the slice of the assessment engine this worker needs.
type Analyzer interface {
	AnalyzeJobRequirements(ctx context.Context, job assessment.Job) (*assessment.JobTestBlueprint, error)
	Settings() assessment.Settings
}

type Handler struct {
	config       *Config
	engine       Analyzer
	cache        *database.RedisClient
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
	inputSchema  []byte
}

type HandlerOptions struct {
	Config   *Config
	Engine   Analyzer
	Cache    *database.RedisClient
	Registry *registry.ActivityRegistry
	Logger   logger.Logger
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
	if cfg.CacheEnabled && opts.Cache == nil {
		return nil, fmt.Errorf("%s: cache enabled but no redis client given", ConfigKey)
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

	return &Handler{
		config:       cfg,
		engine:       opts.Engine,
		cache:        opts.Cache,
		logger:       log,
		errorHandler: errors.NewErrorHandler(log),
		inputSchema:  schema,
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

// Execute analyzes the job, serving and refreshing the blueprint cache when
// one is configured. Cache failures never fail the job.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	useCache := h.config.CacheEnabled && h.cache != nil
	key := CacheKey(input.Job, h.engine.Settings())

	if useCache {
		if input.Refresh {
			metrics.BlueprintCache.WithLabelValues("bypass").Inc()
		} else if bp, ok := h.lookup(ctx, key); ok {
			return &Output{Blueprint: bp, CacheHit: true}, nil
		}
	}

	bp, err := h.engine.AnalyzeJobRequirements(ctx, input.Job)
	if err != nil {
		return nil, err
	}

	if useCache {
		if err := h.cache.SetJSON(ctx, key, bp, h.config.CacheTTL); err != nil {
			metrics.BlueprintCache.WithLabelValues("error").Inc()
			h.logger.Warn("failed to cache blueprint", map[string]interface{}{
				"jobId": input.Job.ID,
				"key":   key,
				"error": err.Error(),
			})
		}
	}

	return &Output{Blueprint: bp, CacheHit: false}, nil
}

func (h *Handler) lookup(ctx context.Context, key string) (*assessment.JobTestBlueprint, bool) {
	var bp assessment.JobTestBlueprint
	found, err := h.cache.GetJSON(ctx, key, &bp)
	switch {
	case err != nil:
		metrics.BlueprintCache.WithLabelValues("error").Inc()
		h.logger.Warn("blueprint cache lookup failed, recomputing", map[string]interface{}{
			"key":       key,
			"errorCode": string(errors.CodeOf(err)),
			"error":     err.Error(),
		})
		return nil, false
	case !found:
		metrics.BlueprintCache.WithLabelValues("miss").Inc()
		return nil, false
	default:
		metrics.BlueprintCache.WithLabelValues("hit").Inc()
		return &bp, true
	}
}

// CacheKey derives a stable key from the job and the engine settings that
// shape its blueprint.
func CacheKey(job assessment.Job, settings assessment.Settings) string {
	payload, _ := json.Marshal(struct {
		Job      assessment.Job      `json:"job"`
		Settings assessment.Settings `json:"settings"`
	}{job, settings})
	return cacheKeyPrefix + uuid.NewSHA1(cacheNamespace, payload).String()
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
		"jobKey":     job.GetKey(),
		"jobId":      output.Blueprint.JobID,
		"categories": output.Blueprint.CategoryIDs(),
		"cacheHit":   output.CacheHit,
	})
	return nil
}

func (h *Handler) GetTaskType() string { return TaskType }

func (h *Handler) GetConfig() *Config { return h.config }
