package assessment

import (
	"strings"
)

const (
	jobTitlePlaceholder     = "{{jobTitle}}"
	primarySkillPlaceholder = "{{primarySkill}}"

	fallbackJobTitle     = "a member of the team"
	fallbackPrimarySkill = "the team's main"
)

// Render turns a template into a question for the given pool and job. It has
// no side effects; the returned question shares no memory with the bank.
func Render(tpl Template, pool Pool, def CategoryDefinition, job JobContext, id string) GeneratedQuestion {
	r := placeholderReplacer(job)
	qt := def.PrimaryType()

	q := GeneratedQuestion{
		ID:                id,
		Question:          r.Replace(tpl.Question),
		Type:              qt.Type,
		Category:          def.ID,
		CorrectAnswer:     r.Replace(tpl.Answer),
		Explanation:       r.Replace(tpl.Explanation),
		Difficulty:        pool.Difficulty,
		Weight:            qt.Weight,
		TimeLimit:         qt.SecondsPerQuestion,
		CodeSnippet:       tpl.Code,
		MechanicalDiagram: tpl.Diagram,
	}

	if len(tpl.Options) > 0 {
		q.Options = make([]string, len(tpl.Options))
		for i, o := range tpl.Options {
			q.Options[i] = r.Replace(o)
		}
	}
	if tpl.Chart != nil {
		q.ChartData = copyMap(tpl.Chart)
	}

	q.Traits = mergeTraits(pool.Traits, tpl.Traits, ruleTraits(pool.TraitRules, q.Question))
	return q
}

func placeholderReplacer(job JobContext) *strings.Replacer {
	title := strings.TrimSpace(job.Title)
	if title == "" {
		title = fallbackJobTitle
	}
	skill := fallbackPrimarySkill
	for _, s := range job.Skills {
		if s = strings.TrimSpace(s); s != "" {
			skill = s
			break
		}
	}
	return strings.NewReplacer(jobTitlePlaceholder, title, primarySkillPlaceholder, skill)
}

func ruleTraits(rules []TraitRule, text string) []string {
	lower := strings.ToLower(text)
	var out []string
	for _, rule := range rules {
		if containsAny(lower, rule.Keywords) {
			out = append(out, rule.Traits...)
		}
	}
	return out
}

// mergeTraits concatenates trait lists, keeping the first occurrence of each.
func mergeTraits(lists ...[]string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, list := range lists {
		for _, t := range list {
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}

func copyMap(in map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		return copyMap(val)
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = copyValue(item)
		}
		return out
	default:
		return val
	}
}
