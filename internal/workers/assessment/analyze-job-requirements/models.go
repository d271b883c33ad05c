package analyzejobrequirements

import "assessment-workers/internal/assessment"

type Input struct {
	Job assessment.Job `json:"job"`
	// Refresh skips the cache lookup and overwrites the cached blueprint.
	Refresh bool `json:"refresh,omitempty"`
}

type Output struct {
	Blueprint *assessment.JobTestBlueprint `json:"blueprint"`
	CacheHit  bool                         `json:"cacheHit"`
}
