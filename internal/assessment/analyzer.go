package assessment

import (
	"sort"
	"strings"
)

// Analyze classifies a job into assessment categories, traits and a difficulty.
// It never fails: missing fields are treated as empty and degrade to the
// baseline categories at medium difficulty.
func Analyze(job Job) Analysis {
	skills := mergeSkills(job.Skills, job.Requirements)
	skillSet := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		skillSet[strings.ToLower(s)] = struct{}{}
	}

	title := strings.ToLower(strings.TrimSpace(job.Title))
	text := strings.ToLower(job.Description) + " " + title

	categories := make(map[CategoryID]struct{})
	add := func(ids ...CategoryID) {
		for _, id := range ids {
			categories[id] = struct{}{}
		}
	}

	for _, skill := range skills {
		add(SkillCategories(skill)...)
	}

	for _, rule := range categoryKeywords {
		if containsAny(text, rule.keywords) {
			add(rule.category)
		}
	}

	for _, rule := range coverageRules {
		if containsAny(title, rule.titleKeywords) || hasAnySkill(skillSet, rule.skills) {
			add(rule.categories...)
		}
	}

	add(baselineCategories...)

	if containsAny(title, analyticalTitles) || hasAnySkill(skillSet, analyticalSkills) {
		add(CategoryLogical, CategoryNumerical)
	}
	if containsAny(title, communicationTitles) || hasAnySkill(skillSet, communicationSkills) {
		add(CategoryVerbal)
	}

	var traits []string
	for _, rule := range traitKeywords {
		if containsAny(text, rule.keywords) {
			traits = append(traits, rule.trait)
		}
	}

	return Analysis{
		Categories: sortByPriority(categories),
		Traits:     traits,
		Difficulty: DetermineDifficulty(job.Title, job.ExperienceLevel),
		Skills:     skills,
	}
}

// DetermineDifficulty maps seniority words in the title or experience level to a pool difficulty.
func DetermineDifficulty(title, experienceLevel string) Difficulty {
	t := strings.ToLower(title)
	e := strings.ToLower(experienceLevel)

	switch {
	case containsAny(t, hardDifficultyWords) || containsAny(e, hardDifficultyWords):
		return DifficultyHard
	case containsAny(t, mediumDifficultyWords) || containsAny(e, mediumDifficultyWords):
		return DifficultyMedium
	case containsAny(t, easyDifficultyWords) || containsAny(e, easyDifficultyWords):
		return DifficultyEasy
	default:
		return DifficultyMedium
	}
}

func sortByPriority(set map[CategoryID]struct{}) []CategoryID {
	out := make([]CategoryID, 0, len(set))
	for id := range set {
		if _, known := priorityIndex[id]; known {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return priorityIndex[out[i]] < priorityIndex[out[j]]
	})
	return out
}

// mergeSkills concatenates skills and requirements, trimming blanks and
// dropping case-insensitive repeats while keeping first-seen spelling.
func mergeSkills(lists ...[]string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, list := range lists {
		for _, s := range list {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			key := strings.ToLower(s)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}

func containsAny(text string, keywords []string) bool {
	if text == "" {
		return false
	}
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

func hasAnySkill(skills map[string]struct{}, wanted []string) bool {
	for _, w := range wanted {
		if _, ok := skills[w]; ok {
			return true
		}
	}
	return false
}
