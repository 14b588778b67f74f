package model

// OutlineResponses holds the four free-text prompts a student answers
// before an essay outline is generated.
type OutlineResponses struct {
	AboutYourself      string `json:"aboutYourself"`
	UniqueQuality      string `json:"uniqueQuality"`
	StoryAboutLovedOne string `json:"storyAboutLovedOne"`
	CollegeInfo        string `json:"collegeInfo"`
}

func (r OutlineResponses) Empty() bool {
	return r.AboutYourself == "" && r.UniqueQuality == "" &&
		r.StoryAboutLovedOne == "" && r.CollegeInfo == ""
}

type OutlineResult struct {
	Introduction string `json:"introduction"`
	UniqueTrait  string `json:"uniqueTrait"`
	Story        string `json:"story"`
	CollegeGoal  string `json:"collegeGoal"`
	AIOutline    string `json:"aiOutline"`
}

type RubricScore struct {
	Score  float64 `json:"score"`
	Reason string  `json:"reason"`
}

type PriorityFix struct {
	Issue         string `json:"issue"`
	WhyItMatters  string `json:"why_it_matters"`
	HowToFix      string `json:"how_to_fix"`
	BeforeExample string `json:"before_example"`
	AfterExample  string `json:"after_example"`
}

type EssayMeta struct {
	WordCount int `json:"word_count"`
	CharCount int `json:"char_count"`
}

type EssayGrade struct {
	Score         float64                `json:"score"`
	Summary       string                 `json:"summary"`
	RubricScores  map[string]RubricScore `json:"rubric_scores"`
	Strengths     []string               `json:"strengths"`
	Weaknesses    []string               `json:"weaknesses"`
	PriorityFixes []PriorityFix          `json:"priority_fixes"`
	Meta          EssayMeta              `json:"meta"`
}
