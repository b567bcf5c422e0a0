package entity

import (
	"fmt"
	"time"
)

type SessionStatus string

// Session status is the coarse lifecycle tag of a clarification session.
// It is distinct from ClarificationSession.IsComplete, which only records
// that the question stream has ended.
const (
	SessionStatusPending    SessionStatus = "pending"     // Session created, no answer submitted yet
	SessionStatusInProgress SessionStatus = "in_progress" // At least one answer recorded
	SessionStatusCompleted  SessionStatus = "completed"   // Finalized, plan materialized
	SessionStatusError      SessionStatus = "error"       // Stream or generator failure
)

type QuestionKind string

const (
	QuestionKindOpen           QuestionKind = "open"
	QuestionKindMultipleChoice QuestionKind = "multiple_choice"
	QuestionKindScale          QuestionKind = "scale"

	// SWOT-style categories, used for downstream plan staging only.
	QuestionKindStrength    QuestionKind = "strength"
	QuestionKindWeakness    QuestionKind = "weakness"
	QuestionKindOpportunity QuestionKind = "opportunity"
	QuestionKindThreat      QuestionKind = "threat"
)

func (k QuestionKind) Validate() error {
	switch k {
	case QuestionKindOpen, QuestionKindMultipleChoice, QuestionKindScale,
		QuestionKindStrength, QuestionKindWeakness, QuestionKindOpportunity, QuestionKindThreat:
		return nil
	default:
		return fmt.Errorf("unknown question kind: %s", k)
	}
}

// Question is a single clarification prompt. Its text is frozen when the
// question finishes streaming.
type Question struct {
	ID        string       `json:"id"`
	SessionID string       `json:"session_id,omitempty"`
	Position  int          `json:"position"` // arrival order, 0-based
	Kind      QuestionKind `json:"kind"`
	Text      string       `json:"text"`
	Options   []string     `json:"options,omitempty"`
	Required  bool         `json:"required"`
	CreatedAt time.Time    `json:"created_at"`
}

// Answer is a single response. Answers are append-only: resubmitting for the
// same question creates a new entry.
type Answer struct {
	ID          string    `json:"id,omitempty"`
	SessionID   string    `json:"session_id,omitempty"`
	QuestionID  string    `json:"question_id"`
	Value       string    `json:"value"`
	SubmittedAt time.Time `json:"timestamp"`
}

// ClarificationSession is the aggregate root of one clarification run.
type ClarificationSession struct {
	ID                   string        `json:"session_id"`
	PlanID               *string       `json:"plan_id,omitempty"` // plan being refined, absent for new plans
	Status               SessionStatus `json:"status"`
	CurrentQuestionIndex int           `json:"current_question_index"` // -1 until the first question arrives
	Questions            []Question    `json:"questions"`
	Answers              []Answer      `json:"answers"`
	IsComplete           bool          `json:"is_complete"` // question stream has ended
	Error                *string       `json:"error,omitempty"`
	CreatedAt            time.Time     `json:"created_at"`
	UpdatedAt            time.Time     `json:"updated_at"`
	CompletedAt          *time.Time    `json:"completed_at,omitempty"`
}

type StreamEventType string

const (
	StreamEventQuestion   StreamEventType = "question"   // text fragment for the in-progress question
	StreamEventCompletion StreamEventType = "completion" // freeze streamed text into a Question
	StreamEventEnd        StreamEventType = "end"        // no more questions will arrive
	StreamEventError      StreamEventType = "error"      // aborts the session
)

// StreamEvent is the wire-level unit pushed over the question stream.
type StreamEvent struct {
	Type     StreamEventType `json:"type"`
	Data     string          `json:"data,omitempty"`
	ID       string          `json:"id,omitempty"`
	Kind     QuestionKind    `json:"questionType,omitempty"`
	Options  []string        `json:"options,omitempty"`
	Required *bool           `json:"required,omitempty"`
}

type PlanStatus string

const (
	PlanStatusOngoing   PlanStatus = "ongoing"
	PlanStatusCompleted PlanStatus = "completed"
	PlanStatusDeleted   PlanStatus = "deleted"
)

type TaskStatus string

const (
	TaskStatusActive    TaskStatus = "active"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusDeleted   TaskStatus = "deleted"
)

type TaskPriority string

const (
	TaskPriorityHigh   TaskPriority = "high"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityLow    TaskPriority = "low"
)

type Task struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description *string      `json:"description,omitempty"`
	DueDate     *time.Time   `json:"due_date,omitempty"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	Completed   bool         `json:"completed"`
}

type PlanStage struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
	Tasks     []Task `json:"tasks"`
}

// Plan is the entity produced by session finalization.
type Plan struct {
	ID             string      `json:"id"`
	Title          string      `json:"title"`
	Description    string      `json:"description,omitempty"`
	CurrentStageID string      `json:"current_stage_id"`
	Stages         []PlanStage `json:"stages"`
	Status         PlanStatus  `json:"status"`
	Progress       int         `json:"progress"` // 0-100
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}
