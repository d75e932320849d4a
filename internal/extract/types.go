package extract

// Technical levels accepted in structured output.
const (
	LevelBasic        = "basic"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
)

// Processing types reported in artifacts.
const (
	ProcessingStructured = "structured"
	ProcessingFallback   = "fallback"
)

// QuestionAnswer is one analyzed question.
type QuestionAnswer struct {
	Question             string   `json:"question"`
	Answer               string   `json:"answer"`
	Category             string   `json:"category"`
	TechnicalLevel       string   `json:"technical_level"`
	AWSServicesMentioned []string `json:"aws_services_mentioned"`
}

// Result is the outcome of analyzing a question set. When FallbackUsed is
// set every answer carries sentinel values rather than model output.
type Result struct {
	TotalQuestions   int              `json:"total_questions"`
	QuestionsAnswers []QuestionAnswer `json:"questions_answers"`
	Summary          string           `json:"summary"`
	KeyTopics        []string         `json:"key_topics"`
	RawResponseText  string           `json:"raw_response_text,omitempty"`
	FallbackUsed     bool             `json:"fallback_used,omitempty"`
}

// ProcessingType names the path that produced r.
func (r Result) ProcessingType() string {
	if r.FallbackUsed {
		return ProcessingFallback
	}
	return ProcessingStructured
}
