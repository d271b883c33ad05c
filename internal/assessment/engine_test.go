package assessment

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assessment-workers/internal/common/errors"
)

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	engine, err := New(opts...)
	require.NoError(t, err)
	return engine
}

func assertWellFormed(t *testing.T, bp *JobTestBlueprint, questions []GeneratedQuestion) {
	t.Helper()

	require.Len(t, questions, bp.TotalQuestions)

	expected := make(map[CategoryID]int)
	for i, c := range Distribute(len(bp.Categories), bp.TotalQuestions) {
		if c > 0 {
			expected[bp.Categories[i].ID] = c
		}
	}
	assert.Equal(t, expected, countByCategory(questions))

	ids := make(map[string]struct{})
	keys := make(map[string]struct{})
	for _, q := range questions {
		assert.NotEmpty(t, q.ID)
		assert.Equal(t, bp.Difficulty, q.Difficulty)
		assert.NotNil(t, q.Traits)

		_, dupID := ids[q.ID]
		assert.False(t, dupID, "duplicate id %s", q.ID)
		ids[q.ID] = struct{}{}

		key := ContentKey(q.Question, q.Category)
		_, dupKey := keys[key]
		assert.False(t, dupKey, "duplicate content %q", q.Question)
		keys[key] = struct{}{}
	}
}

// ==========================
// End-to-End Scenario Tests
// ==========================

func TestEngine_Scenarios(t *testing.T) {
	tests := []struct {
		name           string
		job            Job
		validateOutput func(t *testing.T, bp *JobTestBlueprint, questions []GeneratedQuestion)
	}{
		{
			name: "senior software engineer",
			job:  Job{ID: "job-a", Title: "Senior Software Engineer", Skills: []string{"JavaScript", "React"}},
			validateOutput: func(t *testing.T, bp *JobTestBlueprint, questions []GeneratedQuestion) {
				assert.Equal(t, DifficultyHard, bp.Difficulty)
				assert.Equal(t, 3, countByCategory(questions)[CategoryCoding])
				for _, q := range questions {
					if q.Category == CategoryCoding {
						assert.Equal(t, TypeCoding, q.Type)
						assert.Equal(t, 180, q.TimeLimit)
					}
				}
			},
		},
		{
			name: "sales representative",
			job:  Job{ID: "job-b", Title: "Sales Representative", Skills: []string{"Customer Service"}},
			validateOutput: func(t *testing.T, bp *JobTestBlueprint, questions []GeneratedQuestion) {
				assert.Equal(t, []CategoryID{CategoryVerbal, CategorySituational, CategoryPersonality}, bp.CategoryIDs())
				assert.Equal(t, map[CategoryID]int{
					CategoryVerbal:      7,
					CategorySituational: 7,
					CategoryPersonality: 6,
				}, countByCategory(questions))
			},
		},
		{
			name: "empty job",
			job:  Job{},
			validateOutput: func(t *testing.T, bp *JobTestBlueprint, questions []GeneratedQuestion) {
				assert.Equal(t, map[CategoryID]int{
					CategorySituational: 10,
					CategoryPersonality: 10,
				}, countByCategory(questions))
			},
		},
		{
			name: "lead mechanical engineer",
			job: Job{
				ID:          "job-m",
				Title:       "Lead Mechanical Engineer",
				Skills:      []string{"Python", "Excel", "Communication"},
				Description: "Budget planning, quality audits and team leadership.",
			},
			validateOutput: func(t *testing.T, bp *JobTestBlueprint, questions []GeneratedQuestion) {
				assert.Contains(t, bp.CategoryIDs(), CategoryMechanical)
				assert.NotZero(t, countByCategory(questions)[CategoryMechanical])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := newRecordingLogger(t)
			engine := newTestEngine(t, WithLogger(log))

			bp, err := engine.AnalyzeJobRequirements(context.Background(), tt.job)
			require.NoError(t, err)

			questions, err := engine.GenerateTestQuestions(context.Background(), bp)
			require.NoError(t, err)

			assertWellFormed(t, bp, questions)
			assert.Empty(t, log.warnings())
			tt.validateOutput(t, bp, questions)
		})
	}
}

func TestEngine_PoolExhaustionFallback(t *testing.T) {
	bank, err := LoadBank([]byte(minimalBankYAML(3)))
	require.NoError(t, err)

	log := newRecordingLogger(t)
	engine := newTestEngine(t, WithBank(bank), WithLogger(log), WithTotalQuestions(12))

	bp, err := engine.AnalyzeJobRequirements(context.Background(), Job{ID: "job-d"})
	require.NoError(t, err)
	require.Equal(t, []CategoryID{CategorySituational, CategoryPersonality}, bp.CategoryIDs())

	questions, err := engine.GenerateTestQuestions(context.Background(), bp)
	require.NoError(t, err)
	require.Len(t, questions, 12)

	assert.Equal(t, map[CategoryID]int{CategorySituational: 6, CategoryPersonality: 6}, countByCategory(questions))

	ids := make(map[string]struct{})
	for _, q := range questions {
		ids[q.ID] = struct{}{}
	}
	assert.Len(t, ids, 12)

	warnings := log.warnings()
	require.Len(t, warnings, 2)
	for _, w := range warnings {
		assert.Equal(t, "question pool exhausted, repeating templates", w.msg)
		assert.Equal(t, errors.ErrCodePoolExhausted, w.fields["errorCode"])
		assert.Equal(t, 3, w.fields["repeated"])
	}
}

func TestEngine_DroppedCategoriesAreLogged(t *testing.T) {
	log := newRecordingLogger(t)
	engine := newTestEngine(t, WithLogger(log), WithTotalQuestions(4))

	bp, err := engine.AnalyzeJobRequirements(context.Background(), Job{
		ID:     "job-small",
		Title:  "Senior Software Engineer",
		Skills: []string{"JavaScript"},
	})
	require.NoError(t, err)
	assert.Len(t, bp.Categories, 4)

	warnings := log.warnings()
	require.Len(t, warnings, 1)
	assert.Equal(t, "categories dropped from blueprint", warnings[0].msg)
}

// ==========================
// Randomness Tests
// ==========================

func TestEngine_SeededGenerationIsReproducible(t *testing.T) {
	engine := newTestEngine(t, WithSeed(42), WithClock(fixedNow))
	job := Job{ID: "job-a", Title: "Senior Software Engineer", Skills: []string{"JavaScript", "React"}}

	bp, err := engine.AnalyzeJobRequirements(context.Background(), job)
	require.NoError(t, err)

	first, err := engine.GenerateTestQuestions(context.Background(), bp)
	require.NoError(t, err)
	second, err := engine.GenerateTestQuestions(context.Background(), bp)
	require.NoError(t, err)

	assert.Equal(t, first, second)

	other := newTestEngine(t, WithClock(fixedNow))
	third, err := other.GenerateTestQuestionsWithSeed(context.Background(), bp, 42)
	require.NoError(t, err)
	assert.Equal(t, first, third)
}

func TestEngine_UnseededCallsDiffer(t *testing.T) {
	engine := newTestEngine(t, WithClock(fixedNow))
	bp, err := engine.AnalyzeJobRequirements(context.Background(), Job{Title: "Data Analyst"})
	require.NoError(t, err)

	first, err := engine.GenerateTestQuestions(context.Background(), bp)
	require.NoError(t, err)
	second, err := engine.GenerateTestQuestions(context.Background(), bp)
	require.NoError(t, err)

	assert.NotEqual(t, first[0].ID, second[0].ID)
}

func TestEngine_ConcurrentGeneration(t *testing.T) {
	engine := newTestEngine(t)
	bp, err := engine.AnalyzeJobRequirements(context.Background(), Job{
		Title:  "Python Developer",
		Skills: []string{"Python", "SQL"},
	})
	require.NoError(t, err)

	const workers = 16
	results := make([][]GeneratedQuestion, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = engine.GenerateTestQuestions(context.Background(), bp)
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assertWellFormed(t, bp, results[i])
	}
}

// ==========================
// Error Handling Tests
// ==========================

func TestEngine_GenerateErrors(t *testing.T) {
	situational, _ := LookupCategory(CategorySituational)

	tests := []struct {
		name      string
		blueprint *JobTestBlueprint
		code      errors.ErrorCode
	}{
		{
			name:      "nil blueprint",
			blueprint: nil,
			code:      errors.ErrCodeInvalidInput,
		},
		{
			name:      "no categories",
			blueprint: &JobTestBlueprint{TotalQuestions: 5, Difficulty: DifficultyEasy},
			code:      errors.ErrCodeConfiguration,
		},
		{
			name: "unknown category",
			blueprint: &JobTestBlueprint{
				Categories:     []CategoryDefinition{situational, {ID: "astrology"}},
				TotalQuestions: 5,
				Difficulty:     DifficultyEasy,
			},
			code: errors.ErrCodeConfiguration,
		},
		{
			name: "total above ceiling",
			blueprint: &JobTestBlueprint{
				Categories:     []CategoryDefinition{situational},
				TotalQuestions: 1 << 40,
				Difficulty:     DifficultyEasy,
			},
			code: errors.ErrCodeInvalidInput,
		},
		{
			name: "duplicate category",
			blueprint: &JobTestBlueprint{
				Categories:     []CategoryDefinition{situational, situational},
				TotalQuestions: 5,
				Difficulty:     DifficultyEasy,
			},
			code: errors.ErrCodeConfiguration,
		},
	}

	engine := newTestEngine(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			questions, err := engine.GenerateTestQuestions(context.Background(), tt.blueprint)
			assert.Nil(t, questions)
			assert.True(t, errors.IsCode(err, tt.code), "got %v", err)
		})
	}
}

func TestEngine_BlueprintDefaults(t *testing.T) {
	personality, _ := LookupCategory(CategoryPersonality)
	engine := newTestEngine(t, WithTotalQuestions(8))

	questions, err := engine.GenerateTestQuestions(context.Background(), &JobTestBlueprint{
		Categories: []CategoryDefinition{personality},
		Difficulty: "impossible",
	})
	require.NoError(t, err)

	require.Len(t, questions, 8)
	for _, q := range questions {
		assert.Equal(t, DifficultyMedium, q.Difficulty)
	}
}

func TestEngine_CategoryOrderFollowsPriority(t *testing.T) {
	situational, _ := LookupCategory(CategorySituational)
	personality, _ := LookupCategory(CategoryPersonality)
	verbal, _ := LookupCategory(CategoryVerbal)
	engine := newTestEngine(t, WithSeed(7))

	questions, err := engine.GenerateTestQuestions(context.Background(), &JobTestBlueprint{
		Categories:     []CategoryDefinition{personality, situational, verbal},
		TotalQuestions: 8,
		Difficulty:     DifficultyMedium,
	})
	require.NoError(t, err)

	assert.Equal(t, map[CategoryID]int{
		CategoryVerbal:      3,
		CategorySituational: 3,
		CategoryPersonality: 2,
	}, countByCategory(questions))
}

func TestEngine_MaxTotalQuestions(t *testing.T) {
	situational, _ := LookupCategory(CategorySituational)
	engine := newTestEngine(t)

	questions, err := engine.GenerateTestQuestions(context.Background(), &JobTestBlueprint{
		Categories:     []CategoryDefinition{situational},
		TotalQuestions: MaxTotalQuestions,
		Difficulty:     DifficultyHard,
	})
	require.NoError(t, err)
	assert.Len(t, questions, MaxTotalQuestions)
}

func TestNew_InvalidSettings(t *testing.T) {
	_, err := New(WithTotalQuestions(0))
	assert.True(t, errors.IsCode(err, errors.ErrCodeConfiguration))

	_, err = New(WithTotalQuestions(MaxTotalQuestions + 1))
	assert.True(t, errors.IsCode(err, errors.ErrCodeConfiguration))

	_, err = New(WithTimeBuffer(-1))
	assert.True(t, errors.IsCode(err, errors.ErrCodeConfiguration))
}

func TestGeneratedQuestion_JSONShape(t *testing.T) {
	engine := newTestEngine(t, WithSeed(1))
	bp, err := engine.AnalyzeJobRequirements(context.Background(), Job{Title: "Sales Representative"})
	require.NoError(t, err)

	questions, err := engine.GenerateTestQuestions(context.Background(), bp)
	require.NoError(t, err)

	data, err := json.Marshal(questions[0])
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, key := range []string{"_id", "question", "type", "category", "difficulty", "traits", "weight", "timeLimit"} {
		assert.Contains(t, raw, key)
	}
}
