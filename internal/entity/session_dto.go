package entity

import (
	"encoding/json"
	"fmt"
	"time"
)

type StartSessionRequest struct {
	PlanID *string `json:"plan_id,omitempty"`
}

type StartSessionResponse struct {
	SessionID string `json:"session_id"`
}

// AnswerValue accepts either a JSON string or a JSON number, since scale
// questions are answered with numbers and everything else with text.
type AnswerValue string

func (v *AnswerValue) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = AnswerValue(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*v = AnswerValue(n.String())
		return nil
	}

	return fmt.Errorf("answer value must be a string or a number")
}

type SubmitAnswerRequest struct {
	QuestionID string      `json:"question_id"`
	Value      AnswerValue `json:"value"`
}

type SubmitAnswerResponse struct {
	Success bool `json:"success"`
}

type CompleteSessionResponse struct {
	PlanID string `json:"plan_id"`
}

type QuestionDTO struct {
	ID       string       `json:"id"`
	Position int          `json:"position"`
	Kind     QuestionKind `json:"kind"`
	Text     string       `json:"text"`
	Options  []string     `json:"options,omitempty"`
	Required bool         `json:"required"`
}

type AnswerDTO struct {
	QuestionID  string    `json:"question_id"`
	Value       string    `json:"value"`
	SubmittedAt time.Time `json:"timestamp"`
}

type SessionDTO struct {
	ID                   string        `json:"session_id"`
	PlanID               *string       `json:"plan_id,omitempty"`
	Status               SessionStatus `json:"status"`
	CurrentQuestionIndex int           `json:"current_question_index"`
	Questions            []QuestionDTO `json:"questions"`
	Answers              []AnswerDTO   `json:"answers"`
	IsComplete           bool          `json:"is_complete"`
	Error                *string       `json:"error,omitempty"`
	CreatedAt            time.Time     `json:"created_at"`
	UpdatedAt            time.Time     `json:"updated_at"`
	CompletedAt          *time.Time    `json:"completed_at,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
