package registry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)
	require.NoError(t, reg.Validate())

	for _, taskType := range []string{
		"assessment.analyze-job-requirements",
		"assessment.generate-test-questions",
	} {
		activity, ok := reg.Lookup(taskType)
		require.True(t, ok, taskType)

		schema, err := activity.InputSchemaJSON()
		require.NoError(t, err)
		assert.True(t, json.Valid(schema))
		assert.Greater(t, activity.TimeoutDuration(time.Minute), time.Duration(0))
	}

	_, ok := reg.Lookup("crm.user.create")
	assert.False(t, ok)
}

func TestLoadRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activities.json")
	require.NoError(t, os.WriteFile(path, defaultRegistryData, 0o600))

	reg, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.Len(t, reg.Activities, 2)

	_, err = LoadRegistry(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name        string
		data        string
		errContains string
	}{
		{
			name:        "not json",
			data:        "{",
			errContains: "failed to parse",
		},
		{
			name:        "missing fields",
			data:        `{"activities":[{"id":"a"}]}`,
			errContains: "taskType is required",
		},
		{
			name: "duplicate task type",
			data: `{"activities":[
				{"id":"a","taskType":"t","inputSchema":{"type":"object"}},
				{"id":"b","taskType":"t","inputSchema":{"type":"object"}}
			]}`,
			errContains: "duplicate taskType",
		},
		{
			name:        "bad timeout",
			data:        `{"activities":[{"id":"a","taskType":"t","inputSchema":{"type":"object"},"timeout":"soon"}]}`,
			errContains: "invalid timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, err := Parse([]byte(tt.data))
			assert.Nil(t, reg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestActivity_TimeoutDuration(t *testing.T) {
	assert.Equal(t, 10*time.Second, (&Activity{Timeout: "10s"}).TimeoutDuration(time.Minute))
	assert.Equal(t, time.Minute, (&Activity{}).TimeoutDuration(time.Minute))
	assert.Equal(t, time.Minute, (&Activity{Timeout: "-1s"}).TimeoutDuration(time.Minute))
}
