package entity

// GenerateQuestionsRequest asks the generator service for the clarification
// questions of one session.
type GenerateQuestionsRequest struct {
	SessionID    string  `json:"session_id"`
	PlanID       *string `json:"plan_id,omitempty"`
	MaxQuestions int     `json:"max_questions"`
}

type GeneratedQuestion struct {
	Text     string       `json:"text"`
	Kind     QuestionKind `json:"kind"`
	Options  []string     `json:"options,omitempty"`
	Required *bool        `json:"required,omitempty"`
}

type GenerateQuestionsResponse struct {
	Questions []GeneratedQuestion `json:"questions"`
}
