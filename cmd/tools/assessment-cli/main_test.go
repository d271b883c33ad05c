package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assessment-workers/internal/assessment"
)

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

const engineerJob = `{"id":"job-a","title":"Senior Software Engineer","skills":["JavaScript","React"]}`

func TestAnalyze(t *testing.T) {
	out, err := runCLI(t, engineerJob, "analyze")
	require.NoError(t, err)

	var bp assessment.JobTestBlueprint
	require.NoError(t, json.Unmarshal([]byte(out), &bp))
	assert.Equal(t, "job-a", bp.JobID)
	assert.Equal(t, assessment.DifficultyHard, bp.Difficulty)
	assert.Equal(t, 20, bp.TotalQuestions)
}

func TestGenerate_Seeded(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.json")
	require.NoError(t, os.WriteFile(path, []byte(engineerJob), 0o600))

	out, err := runCLI(t, "", "generate", "--job", path, "--seed", "42", "--total-questions", "10")
	require.NoError(t, err)

	var result generateResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Len(t, result.Questions, 10)

	again, err := runCLI(t, "", "generate", "--job", path, "--seed", "42", "--total-questions", "10")
	require.NoError(t, err)
	var second generateResult
	require.NoError(t, json.Unmarshal([]byte(again), &second))

	for i := range result.Questions {
		assert.Equal(t, result.Questions[i].Question, second.Questions[i].Question)
	}
}

func TestCommands_Errors(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		args  []string
	}{
		{name: "bad job json", stdin: "{", args: []string{"analyze"}},
		{name: "missing job file", args: []string{"analyze", "--job", filepath.Join(t.TempDir(), "nope.json")}},
		{name: "invalid total", stdin: engineerJob, args: []string{"generate", "--total-questions", "0"}},
		{name: "missing bank", args: []string{"bank", "validate", "--path", filepath.Join(t.TempDir(), "nope.yaml")}},
		{name: "missing registry", args: []string{"registry", "validate", "--path", filepath.Join(t.TempDir(), "nope.json")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, tt.stdin, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestBankValidate(t *testing.T) {
	out, err := runCLI(t, "", "bank", "validate")
	require.NoError(t, err)

	var result struct {
		Valid     bool                          `json:"valid"`
		Templates map[assessment.CategoryID]int `json:"templates"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.True(t, result.Valid)
	assert.Len(t, result.Templates, len(assessment.PriorityOrder))
	assert.Equal(t, 27, result.Templates[assessment.CategoryCoding])
}

func TestRegistryValidate(t *testing.T) {
	out, err := runCLI(t, "", "registry", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "assessment.generate-test-questions")
	assert.Contains(t, out, "assessment.analyze-job-requirements")
}
