package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObservability_RecordJob(t *testing.T) {
	obs := New("assessment-workers-test")
	defer obs.Shutdown()

	ctx := context.Background()
	assert.NotPanics(t, func() {
		obs.RecordJobProcessed(ctx, "assessment.generate-test-questions", "completed")
		obs.RecordJobDuration(ctx, "assessment.generate-test-questions", 25*time.Millisecond, "completed")
	})
}

func TestObservability_ZeroValue(t *testing.T) {
	obs := &Observability{}
	assert.NotPanics(t, func() {
		obs.RecordJobProcessed(context.Background(), "t", "failed")
		obs.RecordJobDuration(context.Background(), "t", time.Second, "failed")
		obs.Shutdown()
	})
}

func TestEnableTracing_Disabled(t *testing.T) {
	obs := &Observability{serviceName: "test"}
	require.NoError(t, obs.EnableTracing(TracingConfig{Enabled: false}))
	assert.Nil(t, obs.tracerProvider)

	_, span := obs.StartSpan(context.Background(), "assessment.analyze")
	defer span.End()
	assert.False(t, span.SpanContext().IsSampled())
}

func TestEnableTracing_Enabled(t *testing.T) {
	obs := &Observability{serviceName: "test"}
	require.NoError(t, obs.EnableTracing(TracingConfig{
		Enabled:        true,
		JaegerEndpoint: "http://127.0.0.1:1/api/traces",
		SampleRatio:    1,
	}))
	require.NotNil(t, obs.tracerProvider)
	obs.Shutdown()
}
