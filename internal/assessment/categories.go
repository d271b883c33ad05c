package assessment

import "strings"

// PriorityOrder is the fixed category order used for blueprints and question
// distribution. Categories earlier in the list receive remainder questions first.
var PriorityOrder = []CategoryID{
	CategoryNumerical,
	CategoryLogical,
	CategoryVerbal,
	CategoryAttentionToDetail,
	CategorySituational,
	CategoryPersonality,
	CategoryCoding,
	CategoryMechanical,
}

var categoryRegistry = map[CategoryID]CategoryDefinition{
	CategoryNumerical: {
		ID:            CategoryNumerical,
		Name:          "Numerical Reasoning",
		Description:   "Tests mathematical ability, data interpretation, and numerical problem-solving skills",
		QuestionTypes: []QuestionTypeSpec{{Type: TypeNumerical, Weight: 1, SecondsPerQuestion: 90}},
	},
	CategoryLogical: {
		ID:            CategoryLogical,
		Name:          "Logical Reasoning",
		Description:   "Evaluates pattern recognition, deductive reasoning, and abstract thinking",
		QuestionTypes: []QuestionTypeSpec{{Type: TypeLogical, Weight: 1, SecondsPerQuestion: 60}},
	},
	CategoryVerbal: {
		ID:            CategoryVerbal,
		Name:          "Verbal Reasoning",
		Description:   "Assesses language comprehension, critical reading, and communication skills",
		QuestionTypes: []QuestionTypeSpec{{Type: TypeVerbal, Weight: 1, SecondsPerQuestion: 75}},
	},
	CategoryAttentionToDetail: {
		ID:            CategoryAttentionToDetail,
		Name:          "Attention to Detail",
		Description:   "Measures accuracy, precision, and ability to spot errors or inconsistencies",
		QuestionTypes: []QuestionTypeSpec{{Type: TypeMultipleChoice, Weight: 1, SecondsPerQuestion: 45}},
	},
	CategorySituational: {
		ID:            CategorySituational,
		Name:          "Situational Judgment",
		Description:   "Evaluates decision-making skills in workplace scenarios",
		QuestionTypes: []QuestionTypeSpec{{Type: TypeSituational, Weight: 1, SecondsPerQuestion: 90}},
	},
	CategoryPersonality: {
		ID:            CategoryPersonality,
		Name:          "Personality Assessment",
		Description:   "Assesses behavioral traits, work style, and cultural fit",
		QuestionTypes: []QuestionTypeSpec{{Type: TypeMultipleChoice, Weight: 1, SecondsPerQuestion: 30}},
	},
	CategoryCoding: {
		ID:            CategoryCoding,
		Name:          "Coding Aptitude",
		Description:   "Tests programming logic, algorithm design, and technical problem-solving",
		QuestionTypes: []QuestionTypeSpec{{Type: TypeCoding, Weight: 1, SecondsPerQuestion: 180}},
	},
	CategoryMechanical: {
		ID:            CategoryMechanical,
		Name:          "Mechanical Reasoning",
		Description:   "Evaluates understanding of physical principles, mechanics, and spatial reasoning",
		QuestionTypes: []QuestionTypeSpec{{Type: TypeMechanical, Weight: 1, SecondsPerQuestion: 75}},
	},
}

var priorityIndex = func() map[CategoryID]int {
	idx := make(map[CategoryID]int, len(PriorityOrder))
	for i, id := range PriorityOrder {
		idx[id] = i
	}
	return idx
}()

// LookupCategory returns the registered definition for id.
func LookupCategory(id CategoryID) (CategoryDefinition, bool) {
	def, ok := categoryRegistry[id]
	if !ok {
		return CategoryDefinition{}, false
	}
	def.QuestionTypes = append([]QuestionTypeSpec(nil), def.QuestionTypes...)
	return def, true
}

// Categories returns every registered definition in priority order.
func Categories() []CategoryDefinition {
	out := make([]CategoryDefinition, 0, len(PriorityOrder))
	for _, id := range PriorityOrder {
		def, _ := LookupCategory(id)
		out = append(out, def)
	}
	return out
}

// skillCategories maps lower-cased skill names to the categories they exercise.
var skillCategories = lowerKeys(map[string][]CategoryID{
	// technical
	"JavaScript": {CategoryCoding, CategoryLogical},
	"Python":     {CategoryCoding, CategoryLogical},
	"Java":       {CategoryCoding, CategoryLogical},
	"React":      {CategoryCoding, CategoryLogical},
	"Node.js":    {CategoryCoding, CategoryLogical},
	"SQL":        {CategoryCoding, CategoryLogical},
	"HTML":       {CategoryCoding},
	"CSS":        {CategoryCoding},
	"TypeScript": {CategoryCoding, CategoryLogical},
	"Angular":    {CategoryCoding, CategoryLogical},
	"Vue.js":     {CategoryCoding, CategoryLogical},
	"PHP":        {CategoryCoding, CategoryLogical},
	"C++":        {CategoryCoding, CategoryLogical},
	"C#":         {CategoryCoding, CategoryLogical},
	"Go":         {CategoryCoding, CategoryLogical},
	"Rust":       {CategoryCoding, CategoryLogical},
	"Swift":      {CategoryCoding, CategoryLogical},
	"Kotlin":     {CategoryCoding, CategoryLogical},

	// data and analytics
	"Data Analysis":    {CategoryNumerical, CategoryLogical},
	"Statistics":       {CategoryNumerical, CategoryLogical},
	"Machine Learning": {CategoryNumerical, CategoryLogical, CategoryCoding},
	"Data Science":     {CategoryNumerical, CategoryLogical, CategoryCoding},
	"Excel":            {CategoryNumerical},
	"Power BI":         {CategoryNumerical, CategoryLogical},
	"Tableau":          {CategoryNumerical, CategoryLogical},
	"R":                {CategoryCoding, CategoryNumerical},
	"MATLAB":           {CategoryCoding, CategoryNumerical},

	// business and finance
	"Accounting":          {CategoryNumerical, CategoryAttentionToDetail},
	"Finance":             {CategoryNumerical, CategoryLogical},
	"Financial Analysis":  {CategoryNumerical, CategoryLogical},
	"Budget Management":   {CategoryNumerical, CategorySituational},
	"Investment Analysis": {CategoryNumerical, CategoryLogical},
	"Risk Management":     {CategoryLogical, CategorySituational},
	"Project Management":  {CategorySituational, CategoryLogical},
	"Business Analysis":   {CategoryLogical, CategorySituational},

	// engineering
	"Mechanical Engineering": {CategoryMechanical, CategoryNumerical, CategoryLogical},
	"Electrical Engineering": {CategoryMechanical, CategoryNumerical, CategoryLogical},
	"Civil Engineering":      {CategoryMechanical, CategoryNumerical, CategoryLogical},
	"Chemical Engineering":   {CategoryNumerical, CategoryLogical},
	"Software Engineering":   {CategoryCoding, CategoryLogical},
	"DevOps":                 {CategoryCoding, CategoryLogical, CategorySituational},
	"System Administration":  {CategoryCoding, CategoryLogical, CategorySituational},
	"Network Engineering":    {CategoryLogical, CategoryMechanical},
	"Quality Assurance":      {CategoryAttentionToDetail, CategoryLogical},
	"Testing":                {CategoryAttentionToDetail, CategoryLogical},

	// sales and marketing
	"Sales":             {CategorySituational, CategoryVerbal, CategoryPersonality},
	"Marketing":         {CategoryVerbal, CategoryLogical, CategorySituational},
	"Digital Marketing": {CategoryLogical, CategorySituational},
	"SEO":               {CategoryLogical, CategoryAttentionToDetail},
	"SEM":               {CategoryNumerical, CategoryLogical},
	"Social Media":      {CategoryVerbal, CategorySituational},
	"Content Marketing": {CategoryVerbal, CategorySituational},
	"Brand Management":  {CategorySituational, CategoryVerbal},
	"Customer Service":  {CategorySituational, CategoryVerbal, CategoryPersonality},
	"Customer Success":  {CategorySituational, CategoryVerbal, CategoryPersonality},

	// management
	"Team Leadership":       {CategorySituational, CategoryPersonality, CategoryVerbal},
	"Management":            {CategorySituational, CategoryPersonality, CategoryVerbal},
	"Strategic Planning":    {CategoryLogical, CategorySituational},
	"Operations Management": {CategoryLogical, CategorySituational, CategoryNumerical},
	"People Management":     {CategorySituational, CategoryPersonality},
	"Change Management":     {CategorySituational, CategoryPersonality},

	// healthcare
	"Nursing":           {CategorySituational, CategoryAttentionToDetail, CategoryPersonality},
	"Medicine":          {CategoryLogical, CategorySituational, CategoryAttentionToDetail},
	"Healthcare":        {CategorySituational, CategoryPersonality, CategoryAttentionToDetail},
	"Pharmacy":          {CategoryAttentionToDetail, CategoryNumerical},
	"Medical Research":  {CategoryLogical, CategoryNumerical, CategoryAttentionToDetail},
	"Clinical Research": {CategoryLogical, CategoryNumerical, CategoryAttentionToDetail},

	// design
	"UI/UX Design":   {CategoryLogical, CategorySituational, CategoryAttentionToDetail},
	"Graphic Design": {CategoryAttentionToDetail, CategorySituational},
	"Web Design":     {CategoryCoding, CategoryAttentionToDetail},
	"Product Design": {CategoryLogical, CategorySituational},

	// general
	"Communication":       {CategoryVerbal, CategorySituational},
	"Problem Solving":     {CategoryLogical, CategorySituational},
	"Critical Thinking":   {CategoryLogical},
	"Attention to Detail": {CategoryAttentionToDetail},
	"Time Management":     {CategorySituational, CategoryPersonality},
	"Teamwork":            {CategorySituational, CategoryPersonality},
	"Leadership":          {CategorySituational, CategoryPersonality},
	"Adaptability":        {CategorySituational, CategoryPersonality},
	"Creativity":          {CategorySituational, CategoryLogical},
	"Analytical Thinking": {CategoryLogical, CategoryNumerical},
})

// SkillCategories returns the categories a skill maps to, matching case-insensitively.
func SkillCategories(skill string) []CategoryID {
	cats := skillCategories[strings.ToLower(strings.TrimSpace(skill))]
	return append([]CategoryID(nil), cats...)
}

type keywordRule struct {
	category CategoryID
	keywords []string
}

// Checked against lower-cased "description title".
var categoryKeywords = []keywordRule{
	{CategoryNumerical, []string{"math", "calculation", "budget", "financial", "analysis", "data", "statistics", "metrics", "revenue", "profit"}},
	{CategoryLogical, []string{"problem solving", "analytical", "reasoning", "logic", "strategy", "planning", "decision", "evaluate"}},
	{CategoryVerbal, []string{"communication", "writing", "presentation", "documentation", "report", "client interaction", "stakeholder"}},
	{CategoryCoding, []string{"programming", "development", "software", "code", "algorithm", "technical", "system", "database"}},
	{CategoryMechanical, []string{"engineering", "mechanical", "physical", "equipment", "machinery", "technical drawing", "cad"}},
	{CategoryAttentionToDetail, []string{"accuracy", "precision", "quality", "review", "audit", "compliance", "documentation"}},
	{CategorySituational, []string{"leadership", "team", "management", "decision", "conflict", "collaboration", "customer"}},
	{CategoryPersonality, []string{"culture", "values", "attitude", "behavior", "interpersonal", "emotional intelligence"}},
}

type traitRule struct {
	trait    string
	keywords []string
}

var traitKeywords = []traitRule{
	{"analytical", []string{"analysis", "analytical", "data", "research"}},
	{"leadership", []string{"lead", "manage", "supervisor", "director"}},
	{"teamwork", []string{"team", "collaborate", "cooperation"}},
	{"communication", []string{"communicate", "present", "write", "report"}},
	{"creativity", []string{"creative", "innovative", "design", "brainstorm"}},
	{"adaptability", []string{"adapt", "flexible", "change", "dynamic"}},
}

// coverageRule force-adds categories for common job archetypes.
type coverageRule struct {
	name          string
	titleKeywords []string
	skills        []string
	categories    []CategoryID
}

var coverageRules = []coverageRule{
	{
		name:          "technical",
		titleKeywords: []string{"developer", "programmer", "engineer"},
		skills:        []string{"javascript", "python", "java", "react", "node.js"},
		categories:    []CategoryID{CategoryCoding, CategoryLogical, CategoryAttentionToDetail},
	},
	{
		name:          "management",
		titleKeywords: []string{"manager", "lead", "director", "head"},
		categories:    []CategoryID{CategorySituational, CategoryVerbal, CategoryPersonality},
	},
	{
		name:          "finance",
		titleKeywords: []string{"finance", "accounting", "analyst"},
		skills:        []string{"excel", "financial analysis", "accounting"},
		categories:    []CategoryID{CategoryNumerical, CategoryAttentionToDetail, CategoryLogical},
	},
	{
		name:          "sales",
		titleKeywords: []string{"sales", "marketing", "business development"},
		categories:    []CategoryID{CategoryVerbal, CategorySituational, CategoryPersonality},
	},
	{
		name:          "healthcare",
		titleKeywords: []string{"nurse", "doctor", "healthcare", "medical"},
		categories:    []CategoryID{CategoryAttentionToDetail, CategorySituational, CategoryPersonality},
	},
	{
		name:          "engineering",
		titleKeywords: []string{"mechanical", "civil", "electrical", "engineering"},
		categories:    []CategoryID{CategoryMechanical, CategoryNumerical, CategoryLogical},
	},
	{
		name:          "data",
		titleKeywords: []string{"data", "analyst", "scientist"},
		skills:        []string{"data analysis", "statistics", "machine learning"},
		categories:    []CategoryID{CategoryNumerical, CategoryLogical, CategoryCoding},
	},
}

var (
	analyticalTitles      = []string{"analyst", "scientist", "researcher", "engineer", "developer"}
	analyticalSkills      = []string{"data analysis", "statistics", "research", "problem solving"}
	communicationTitles   = []string{"manager", "sales", "marketing", "consultant", "coordinator", "representative"}
	communicationSkills   = []string{"communication", "presentation", "client management", "team leadership"}
	baselineCategories    = []CategoryID{CategorySituational, CategoryPersonality}
	hardDifficultyWords   = []string{"senior", "lead", "principal", "architect", "director"}
	mediumDifficultyWords = []string{"mid", "intermediate"}
	easyDifficultyWords   = []string{"junior", "entry", "associate"}
)

func lowerKeys(in map[string][]CategoryID) map[string][]CategoryID {
	out := make(map[string][]CategoryID, len(in))
	for k, v := range in {
		out[strings.ToLower(k)] = v
	}
	return out
}
