package generatetestquestions

import (
	"time"

	"assessment-workers/internal/assessment"
)

type Input struct {
	Blueprint *assessment.JobTestBlueprint `json:"blueprint"`
	// Seed pins the random sequence so a test can be regenerated exactly.
	Seed *int64 `json:"seed,omitempty"`
}

type Output struct {
	TestID         string                         `json:"testId"`
	Questions      []assessment.GeneratedQuestion `json:"questions"`
	TotalQuestions int                            `json:"totalQuestions"`
	TotalTimeLimit int                            `json:"totalTimeLimit"`
	CategoryCounts map[assessment.CategoryID]int  `json:"categoryCounts"`
	GeneratedAt    time.Time                      `json:"generatedAt"`
}
