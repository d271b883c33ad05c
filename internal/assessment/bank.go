package assessment

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"assessment-workers/internal/common/errors"
	"assessment-workers/internal/common/validation"
)

//go:embed questions.yaml
var defaultBankData []byte

//go:embed bank.schema.json
var bankSchema []byte

const anyDifficulty = "any"

// Template is one authored question in the bank.
type Template struct {
	ID          string                 `yaml:"id"`
	Difficulty  string                 `yaml:"difficulty"`
	Question    string                 `yaml:"question"`
	Options     []string               `yaml:"options"`
	Answer      string                 `yaml:"answer,omitempty"`
	Explanation string                 `yaml:"explanation,omitempty"`
	Traits      []string               `yaml:"traits,omitempty"`
	Language    string                 `yaml:"language,omitempty"`
	Audience    string                 `yaml:"audience,omitempty"`
	Code        string                 `yaml:"code,omitempty"`
	Diagram     string                 `yaml:"diagram,omitempty"`
	Chart       map[string]interface{} `yaml:"chart,omitempty"`
}

func (t Template) appliesTo(d Difficulty) bool {
	return t.Difficulty == anyDifficulty || t.Difficulty == string(d)
}

// TraitRule adds traits to questions whose rendered text contains any keyword.
type TraitRule struct {
	Keywords []string `yaml:"keywords"`
	Traits   []string `yaml:"traits"`
}

type categoryData struct {
	Traits     []string    `yaml:"traits"`
	TraitRules []TraitRule `yaml:"trait_rules"`
	Templates  []Template  `yaml:"templates"`
}

type bankFile struct {
	Version    int                          `yaml:"version"`
	Categories map[CategoryID]*categoryData `yaml:"categories"`
}

// Bank is the immutable set of question templates, indexed by category.
type Bank struct {
	version    int
	categories map[CategoryID]*categoryData
}

// Pool is the candidate set for one category and difficulty. The first
// Preferred templates form the tier the selector draws from first.
type Pool struct {
	Category   CategoryID
	Difficulty Difficulty
	Templates  []Template
	Preferred  int
	Traits     []string
	TraitRules []TraitRule
}

func (p Pool) Len() int { return len(p.Templates) }

var (
	defaultBank     *Bank
	defaultBankErr  error
	defaultBankOnce sync.Once
)

// DefaultBank returns the embedded bank, parsed and validated once per process.
func DefaultBank() (*Bank, error) {
	defaultBankOnce.Do(func() {
		defaultBank, defaultBankErr = LoadBank(defaultBankData)
	})
	return defaultBank, defaultBankErr
}

// LoadBankFile loads an alternative bank from disk.
func LoadBankFile(path string) (*Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewConfigurationError(fmt.Sprintf("failed to read question bank %s: %v", path, err))
	}
	return LoadBank(data)
}

// LoadBank parses and validates a YAML question bank.
func LoadBank(data []byte) (*Bank, error) {
	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.NewConfigurationError(fmt.Sprintf("failed to parse question bank: %v", err))
	}

	result, err := validation.ValidateDocument(raw, bankSchema)
	if err != nil {
		return nil, errors.NewConfigurationError(err.Error())
	}
	if !result.Valid {
		return nil, errors.NewConfigurationError("question bank does not match schema: " + result.Summary())
	}

	var file bankFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, errors.NewConfigurationError(fmt.Sprintf("failed to decode question bank: %v", err))
	}

	bank := &Bank{version: file.Version, categories: file.Categories}
	if err := bank.validate(); err != nil {
		return nil, err
	}
	return bank, nil
}

func (b *Bank) validate() error {
	var problems []string
	seen := make(map[string]CategoryID)

	for id, cat := range b.categories {
		if _, ok := LookupCategory(id); !ok {
			problems = append(problems, fmt.Sprintf("unknown category %q", id))
			continue
		}
		for _, t := range cat.Templates {
			if prev, dup := seen[t.ID]; dup {
				problems = append(problems, fmt.Sprintf("template id %q repeated in %s and %s", t.ID, prev, id))
			}
			seen[t.ID] = id
			if t.Answer != "" && !containsString(t.Options, t.Answer) {
				problems = append(problems, fmt.Sprintf("template %q: answer is not one of its options", t.ID))
			}
		}
	}

	for _, id := range PriorityOrder {
		cat, ok := b.categories[id]
		if !ok {
			problems = append(problems, fmt.Sprintf("category %q has no templates", id))
			continue
		}
		for _, d := range Difficulties {
			if countMatching(cat.Templates, func(t Template) bool { return t.appliesTo(d) }) == 0 {
				problems = append(problems, fmt.Sprintf("category %q has no %s templates", id, d))
			}
			switch id {
			case CategoryCoding:
				if countMatching(cat.Templates, func(t Template) bool { return t.appliesTo(d) && t.Language == "general" }) == 0 {
					problems = append(problems, fmt.Sprintf("coding has no general %s templates", d))
				}
			case CategorySituational:
				if countMatching(cat.Templates, func(t Template) bool { return t.appliesTo(d) && audienceOf(t) == "general" }) == 0 {
					problems = append(problems, fmt.Sprintf("situational has no general %s templates", d))
				}
			}
		}
	}

	if len(problems) > 0 {
		sort.Strings(problems)
		return errors.NewConfigurationError("invalid question bank: " + strings.Join(problems, "; "))
	}
	return nil
}

func (b *Bank) Version() int { return b.version }

// Size returns the number of templates for a category.
func (b *Bank) Size(id CategoryID) int {
	cat, ok := b.categories[id]
	if !ok {
		return 0
	}
	return len(cat.Templates)
}

// Pool returns the templates for a category at a difficulty, ordered so that
// the ones matching the job come first.
func (b *Bank) Pool(id CategoryID, d Difficulty, job JobContext) Pool {
	pool := Pool{Category: id, Difficulty: d}
	cat, ok := b.categories[id]
	if !ok {
		return pool
	}
	pool.Traits = cat.Traits
	pool.TraitRules = cat.TraitRules

	var candidates []Template
	for _, t := range cat.Templates {
		if t.appliesTo(d) {
			candidates = append(candidates, t)
		}
	}

	var preferred, rest []Template
	switch id {
	case CategoryCoding:
		preferred, rest = splitCoding(candidates, job.Skills)
	case CategorySituational:
		preferred, rest = splitSituational(candidates, job.Title)
	default:
		rest = candidates
	}

	pool.Templates = append(preferred, rest...)
	pool.Preferred = len(preferred)
	return pool
}

var (
	javascriptSkills = []string{"javascript", "react"}
	pythonSkills     = []string{"python"}
)

func splitCoding(candidates []Template, skills []string) (preferred, rest []Template) {
	set := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		set[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
	}

	var lang string
	switch {
	case hasAnySkill(set, javascriptSkills):
		lang = "javascript"
	case hasAnySkill(set, pythonSkills):
		lang = "python"
	default:
		return nil, candidates
	}

	for _, t := range candidates {
		switch t.Language {
		case lang:
			preferred = append(preferred, t)
		case "general":
			rest = append(rest, t)
		}
	}
	return preferred, rest
}

type audienceRule struct {
	audience      string
	titleKeywords []string
}

var audienceRules = []audienceRule{
	{"development", []string{"developer", "engineer", "programmer"}},
	{"management", []string{"manager", "lead", "director"}},
	{"sales", []string{"sales", "account"}},
}

func splitSituational(candidates []Template, title string) (preferred, rest []Template) {
	t := strings.ToLower(title)
	audience := ""
	for _, rule := range audienceRules {
		if containsAny(t, rule.titleKeywords) {
			audience = rule.audience
			break
		}
	}

	for _, tpl := range candidates {
		switch a := audienceOf(tpl); {
		case a == "general":
			rest = append(rest, tpl)
		case audience != "" && a == audience:
			preferred = append(preferred, tpl)
		}
	}
	return preferred, rest
}

func audienceOf(t Template) string {
	if t.Audience == "" {
		return "general"
	}
	return t.Audience
}

func countMatching(templates []Template, match func(Template) bool) int {
	n := 0
	for _, t := range templates {
		if match(t) {
			n++
		}
	}
	return n
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
