package assessment

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assessment-workers/internal/common/config"
	"assessment-workers/internal/common/errors"
)

func TestNewFromConfig(t *testing.T) {
	seed := int64(5)
	engine, err := NewFromConfig(config.AssessmentConfig{
		TotalQuestions:    12,
		TimeBufferPercent: 0,
		Seed:              &seed,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, Settings{TotalQuestions: 12, TimeBufferPercent: 0}, engine.Settings())

	bp, err := engine.AnalyzeJobRequirements(context.Background(), Job{Title: "Data Analyst"})
	require.NoError(t, err)
	first, err := engine.GenerateTestQuestions(context.Background(), bp)
	require.NoError(t, err)
	second, err := engine.GenerateTestQuestions(context.Background(), bp)
	require.NoError(t, err)
	assert.Equal(t, questionTexts(first), questionTexts(second))
}

func questionTexts(questions []GeneratedQuestion) []string {
	texts := make([]string, len(questions))
	for i, q := range questions {
		texts[i] = q.Question
	}
	return texts
}

func TestNewFromConfig_BankPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bank.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimalBankYAML(2)), 0o600))

	engine, err := NewFromConfig(config.AssessmentConfig{TotalQuestions: 8, TimeBufferPercent: 10, BankPath: path}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, engine.Bank().Size(CategoryLogical))

	_, err = NewFromConfig(config.AssessmentConfig{
		TotalQuestions:    8,
		TimeBufferPercent: 10,
		BankPath:          filepath.Join(t.TempDir(), "missing.yaml"),
	}, nil)
	assert.True(t, errors.IsCode(err, errors.ErrCodeConfiguration))
}
