package assessment

import (
	"fmt"

	"assessment-workers/internal/common/errors"
)

const (
	DefaultTotalQuestions    = 20
	DefaultTimeBufferPercent = 10

	// MaxTotalQuestions bounds a single test, whether it comes from the
	// engine settings or from a caller's blueprint.
	MaxTotalQuestions = 200
)

// Settings controls blueprint sizing.
type Settings struct {
	TotalQuestions    int
	TimeBufferPercent int
}

func DefaultSettings() Settings {
	return Settings{
		TotalQuestions:    DefaultTotalQuestions,
		TimeBufferPercent: DefaultTimeBufferPercent,
	}
}

func (s Settings) validate() error {
	if s.TotalQuestions <= 0 {
		return errors.NewConfigurationError(fmt.Sprintf("total questions must be positive, got %d", s.TotalQuestions))
	}
	if s.TotalQuestions > MaxTotalQuestions {
		return errors.NewConfigurationError(fmt.Sprintf("total questions must be at most %d, got %d", MaxTotalQuestions, s.TotalQuestions))
	}
	if s.TimeBufferPercent < 0 {
		return errors.NewConfigurationError(fmt.Sprintf("time buffer must not be negative, got %d", s.TimeBufferPercent))
	}
	return nil
}

// Distribute splits total across n ordered slots: every slot gets total/n and
// the first total%n slots get one more. When n > total the trailing slots get zero.
func Distribute(n, total int) []int {
	if n <= 0 {
		return nil
	}
	if total < 0 {
		total = 0
	}
	counts := make([]int, n)
	base, extra := total/n, total%n
	for i := range counts {
		counts[i] = base
		if i < extra {
			counts[i]++
		}
	}
	return counts
}

// Assemble builds the blueprint for an analyzed job. Categories that receive
// no questions under Distribute are left out; callers compare against
// analysis.Categories to report them.
func Assemble(analysis Analysis, job Job, settings Settings) (*JobTestBlueprint, error) {
	if err := settings.validate(); err != nil {
		return nil, err
	}
	if len(analysis.Categories) == 0 {
		return nil, errors.NewConfigurationError("analysis produced no categories")
	}

	counts := Distribute(len(analysis.Categories), settings.TotalQuestions)

	bp := &JobTestBlueprint{
		JobID:          job.ID,
		JobTitle:       job.Title,
		Categories:     make([]CategoryDefinition, 0, len(analysis.Categories)),
		QuestionCounts: make(map[CategoryID]int, len(analysis.Categories)),
		TotalQuestions: settings.TotalQuestions,
		Difficulty:     analysis.Difficulty,
		Skills:         append([]string{}, analysis.Skills...),
		Traits:         append([]string{}, analysis.Traits...),
	}
	if !bp.Difficulty.Valid() {
		bp.Difficulty = DifficultyMedium
	}

	seconds := 0
	for i, id := range analysis.Categories {
		if counts[i] == 0 {
			continue
		}
		def, ok := LookupCategory(id)
		if !ok {
			return nil, errors.NewConfigurationError(fmt.Sprintf("unknown category %q", id)).
				WithMetadata("category", string(id))
		}
		bp.Categories = append(bp.Categories, def)
		bp.QuestionCounts[id] = counts[i]
		seconds += def.PrimaryType().SecondsPerQuestion * counts[i]
	}

	bp.TotalTimeLimit = TimeLimit(seconds, settings.TimeBufferPercent)
	return bp, nil
}

// TimeLimit applies a percentage buffer to seconds, rounding up.
func TimeLimit(seconds, bufferPercent int) int {
	return (seconds*(100+bufferPercent) + 99) / 100
}

// DroppedCategories returns the analyzed categories missing from the blueprint.
func DroppedCategories(analysis Analysis, bp *JobTestBlueprint) []CategoryID {
	kept := make(map[CategoryID]struct{}, len(bp.Categories))
	for _, c := range bp.Categories {
		kept[c.ID] = struct{}{}
	}
	var dropped []CategoryID
	for _, id := range analysis.Categories {
		if _, ok := kept[id]; !ok {
			dropped = append(dropped, id)
		}
	}
	return dropped
}
