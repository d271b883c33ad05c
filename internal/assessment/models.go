package assessment

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Difficulties lists every pool difficulty, easiest first.
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

type CategoryID string

const (
	CategoryNumerical         CategoryID = "numerical"
	CategoryLogical           CategoryID = "logical"
	CategoryVerbal            CategoryID = "verbal"
	CategoryAttentionToDetail CategoryID = "attention_to_detail"
	CategorySituational       CategoryID = "situational"
	CategoryPersonality       CategoryID = "personality"
	CategoryCoding            CategoryID = "coding"
	CategoryMechanical        CategoryID = "mechanical"
)

type QuestionType string

const (
	TypeMultipleChoice QuestionType = "multiple_choice"
	TypeNumerical      QuestionType = "numerical"
	TypeLogical        QuestionType = "logical"
	TypeVerbal         QuestionType = "verbal"
	TypeSituational    QuestionType = "situational"
	TypeCoding         QuestionType = "coding"
	TypeMechanical     QuestionType = "mechanical"
)

// Job is the read-only job record the engine analyzes.
type Job struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Skills          []string `json:"skills"`
	Requirements    []string `json:"requirements"`
	ExperienceLevel string   `json:"experienceLevel,omitempty"`
}

type QuestionTypeSpec struct {
	Type               QuestionType `json:"type"`
	Weight             int          `json:"weight"`
	SecondsPerQuestion int          `json:"timePerQuestion"`
}

type CategoryDefinition struct {
	ID            CategoryID         `json:"id"`
	Name          string             `json:"name"`
	Description   string             `json:"description"`
	QuestionTypes []QuestionTypeSpec `json:"questionTypes"`
}

// PrimaryType is the question type every question in the category is rendered as.
func (c CategoryDefinition) PrimaryType() QuestionTypeSpec {
	if len(c.QuestionTypes) == 0 {
		return QuestionTypeSpec{Type: TypeMultipleChoice, Weight: 1}
	}
	return c.QuestionTypes[0]
}

type JobTestBlueprint struct {
	JobID          string               `json:"jobId"`
	JobTitle       string               `json:"jobTitle"`
	Categories     []CategoryDefinition `json:"categories"`
	QuestionCounts map[CategoryID]int   `json:"questionCounts,omitempty"`
	TotalQuestions int                  `json:"totalQuestions"`
	TotalTimeLimit int                  `json:"totalTimeLimit"`
	Difficulty     Difficulty           `json:"difficulty"`
	Skills         []string             `json:"skills"`
	Traits         []string             `json:"traits"`
}

// CategoryIDs returns the blueprint's categories in blueprint order.
func (b *JobTestBlueprint) CategoryIDs() []CategoryID {
	ids := make([]CategoryID, len(b.Categories))
	for i, c := range b.Categories {
		ids[i] = c.ID
	}
	return ids
}

type GeneratedQuestion struct {
	ID                string                 `json:"_id"`
	Question          string                 `json:"question"`
	Type              QuestionType           `json:"type"`
	Category          CategoryID             `json:"category"`
	Options           []string               `json:"options,omitempty"`
	CorrectAnswer     string                 `json:"correctAnswer,omitempty"`
	Explanation       string                 `json:"explanation,omitempty"`
	Difficulty        Difficulty             `json:"difficulty"`
	Traits            []string               `json:"traits"`
	Weight            int                    `json:"weight"`
	TimeLimit         int                    `json:"timeLimit"`
	CodeSnippet       string                 `json:"codeSnippet,omitempty"`
	ChartData         map[string]interface{} `json:"chartData,omitempty"`
	MechanicalDiagram string                 `json:"mechanicalDiagram,omitempty"`
}

// Analysis is the classifier output consumed by the blueprint assembler.
type Analysis struct {
	Categories []CategoryID
	Traits     []string
	Difficulty Difficulty
	Skills     []string
}

// JobContext is the slice of job data templates may interpolate.
type JobContext struct {
	Title  string
	Skills []string
}

func (b *JobTestBlueprint) JobContext() JobContext {
	return JobContext{Title: b.JobTitle, Skills: b.Skills}
}
