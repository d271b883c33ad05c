// internal/common/camunda/client.go
package camunda

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"assessment-workers/internal/common/errors"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Client wraps the Zeebe gRPC client with enhanced error handling and retry logic.
type Client struct {
	client zbc.Client
	config *ClientConfig
}

// ClientConfig holds configuration for the Camunda/Zeebe client.
type ClientConfig struct {
	GatewayAddress         string
	UsePlaintextConnection bool
	ConnectionTimeout      time.Duration
	RequestTimeout         time.Duration
	RetryConfig            *RetryConfig
}

// RetryConfig defines retry behavior for transient failures.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// DefaultRetryConfig is used when a client or caller passes none.
var DefaultRetryConfig = &RetryConfig{
	MaxRetries: 3,
	BaseDelay:  1 * time.Second,
	MaxDelay:   10 * time.Second,
}

// NewClient creates a new Camunda client with default configuration.
func NewClient(address string) (*Client, error) {
	config := &ClientConfig{
		GatewayAddress:         address,
		UsePlaintextConnection: true,
		ConnectionTimeout:      10 * time.Second,
		RequestTimeout:         30 * time.Second,
		RetryConfig:            DefaultRetryConfig,
	}
	return NewClientWithConfig(config)
}

// NewClientWithConfig creates a Camunda client and checks the broker topology.
func NewClientWithConfig(config *ClientConfig) (*Client, error) {
	if config.RetryConfig == nil {
		config.RetryConfig = DefaultRetryConfig
	}

	zeebeClient, err := zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         config.GatewayAddress,
		UsePlaintextConnection: config.UsePlaintextConnection,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Zeebe client: %w", err)
	}

	// Test connection with timeout
	ctx, cancel := context.WithTimeout(context.Background(), config.ConnectionTimeout)
	defer cancel()

	if _, err := zeebeClient.NewTopologyCommand().Send(ctx); err != nil {
		zeebeClient.Close()
		return nil, fmt.Errorf("failed to connect to Zeebe broker at %s: %w", config.GatewayAddress, err)
	}

	return &Client{
		client: zeebeClient,
		config: config,
	}, nil
}

// GetClient returns the raw Zeebe client for advanced usage (e.g., job polling).
func (c *Client) GetClient() zbc.Client {
	return c.client
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	return c.client.Close()
}

// ExecuteWithRetry runs a Zeebe command, retrying transient failures with
// exponential backoff, and maps the final error to a StandardError.
func (c *Client) ExecuteWithRetry(
	ctx context.Context,
	commandFunc func(context.Context) (interface{}, error),
	operationName string,
) (interface{}, error) {
	var result interface{}
	attempts, err := Retry(ctx, c.config.RetryConfig, func(ctx context.Context) error {
		var err error
		result, err = commandFunc(ctx)
		return err
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("operation %s cancelled after %d attempts: %w", operationName, attempts, ctx.Err())
		}
		return nil, mapZeebeError(err, operationName, attempts-1)
	}
	return result, nil
}

// Retry calls fn until it succeeds, returns a non-retryable error, exhausts
// cfg.MaxRetries, or ctx is done. It reports the number of attempts made.
func Retry(ctx context.Context, cfg *RetryConfig, fn func(context.Context) error) (int, error) {
	if cfg == nil {
		cfg = DefaultRetryConfig
	}

	var err error
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if err = fn(ctx); err == nil {
			return attempt + 1, nil
		}
		if !isRetryableZeebeError(err) || attempt == cfg.MaxRetries {
			return attempt + 1, err
		}

		delay := cfg.BaseDelay * time.Duration(1<<attempt)
		if delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return attempt + 1, err
		}
	}
	return cfg.MaxRetries + 1, err
}

type zeebeFailure int

const (
	failureOther zeebeFailure = iota
	failureUnavailable
	failureTimeout
	failureNotFound
	failureExists
	failureDenied
)

// failurePhrases classifies errors that carry no gRPC status, such as
// dial errors surfaced before a stream is established.
var failurePhrases = []struct {
	phrase string
	kind   zeebeFailure
}{
	{"connection refused", failureUnavailable},
	{"connection reset", failureUnavailable},
	{"broken pipe", failureUnavailable},
	{"unavailable", failureUnavailable},
	{"unreachable", failureUnavailable},
	{"deadline exceeded", failureTimeout},
	{"timeout", failureTimeout},
	{"not found", failureNotFound},
	{"already exists", failureExists},
	{"permission denied", failureDenied},
	{"unauthorized", failureDenied},
}

func classifyZeebeError(err error) zeebeFailure {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return failureTimeout
	}
	if st, ok := status.FromError(err); ok {
		switch st.Code() {
		case codes.Unavailable, codes.ResourceExhausted, codes.Aborted:
			return failureUnavailable
		case codes.DeadlineExceeded:
			return failureTimeout
		case codes.NotFound:
			return failureNotFound
		case codes.AlreadyExists:
			return failureExists
		case codes.PermissionDenied, codes.Unauthenticated:
			return failureDenied
		case codes.Unknown:
			// fall through to message matching
		default:
			return failureOther
		}
	}

	msg := strings.ToLower(err.Error())
	for _, p := range failurePhrases {
		if strings.Contains(msg, p.phrase) {
			return p.kind
		}
	}
	return failureOther
}

func isRetryableZeebeError(err error) bool {
	switch classifyZeebeError(err) {
	case failureUnavailable, failureTimeout:
		return true
	}
	return false
}

// mapZeebeError converts a Zeebe failure into a StandardError.
func mapZeebeError(err error, operation string, attempt int) error {
	detail := fmt.Sprintf("Zeebe operation '%s' failed", operation)
	if attempt > 0 {
		detail += fmt.Sprintf(" after %d attempts", attempt)
	}
	detail = fmt.Sprintf("%s: %s", detail, err.Error())

	switch classifyZeebeError(err) {
	case failureUnavailable:
		return errors.NewExternalServiceError("zeebe", stderrors.New(detail))
	case failureTimeout:
		return errors.NewTimeoutError("zeebe", stderrors.New(detail))
	case failureNotFound:
		return errors.NewResourceNotFoundError("zeebe", detail)
	case failureExists:
		return errors.NewBusinessRuleError(detail, "Resource already exists")
	case failureDenied:
		return errors.NewAuthenticationError(detail)
	default:
		return errors.NewExternalServiceError("zeebe", stderrors.New(detail))
	}
}

// HealthCheck performs a basic health check against the Zeebe broker.
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.ConnectionTimeout)
	defer cancel()

	_, err := c.client.NewTopologyCommand().Send(ctx)
	if err != nil {
		return fmt.Errorf("zeebe health check failed: %w", err)
	}
	return nil
}
