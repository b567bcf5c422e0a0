// Package session implements the clarification session state machine: it
// assembles streamed question fragments into frozen questions, records
// answers, and gates finalization until the stream has ended and every
// question is answered.
package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/24thNight/clarify-backend/internal/entity"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Machine owns the state of a single clarification session. It is an explicit
// value: every consumer constructs and holds its own instance, there is no
// shared global store. Machine is not safe for concurrent use; callers that
// feed it from a stream goroutine must serialize access themselves.
type Machine struct {
	logger *zap.Logger

	session       *entity.ClarificationSession
	streaming     bool
	buf           strings.Builder
	invalidEvents int
}

func NewMachine(logger *zap.Logger) *Machine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Machine{logger: logger}
}

// Init resets all session fields to their defaults and assigns a fresh
// session id. Always fully overwrites prior state.
func (m *Machine) Init(planID *string) {
	now := time.Now()
	m.session = &entity.ClarificationSession{
		ID:                   uuid.New().String(),
		PlanID:               planID,
		Status:               entity.SessionStatusPending,
		CurrentQuestionIndex: -1,
		Questions:            []entity.Question{},
		Answers:              []entity.Answer{},
		IsComplete:           false,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	m.streaming = false
	m.buf.Reset()
	m.invalidEvents = 0
}

// Bind replaces the locally generated session id with one assigned by the
// backend, so that answers and stream subscriptions refer to the same session.
func (m *Machine) Bind(sessionID string) {
	if m.session == nil {
		return
	}
	m.session.ID = sessionID
}

// HandleStreamEvent is the sole entry point for inbound stream data. Events
// that violate the expected sequence are rejected and counted, never applied;
// the machine itself never fails on malformed input.
func (m *Machine) HandleStreamEvent(ev entity.StreamEvent) {
	if m.session == nil {
		m.reject(ev, "no active session")
		return
	}

	switch ev.Type {
	case entity.StreamEventQuestion:
		if !m.streaming {
			m.streaming = true
			m.buf.Reset()
		}
		// Fragments are concatenated exactly as received; the payload
		// carries any needed whitespace.
		m.buf.WriteString(ev.Data)

	case entity.StreamEventCompletion:
		m.completeQuestion(ev)

	case entity.StreamEventEnd:
		m.session.IsComplete = true
		m.clearStreaming()
		m.touch()
		if len(m.session.Questions) > 0 && len(m.session.Answers) >= len(m.session.Questions) {
			m.Complete()
		}

	case entity.StreamEventError:
		msg := ev.Data
		m.session.Error = &msg
		m.session.Status = entity.SessionStatusError
		m.clearStreaming()
		m.touch()

	default:
		m.reject(ev, "unknown event type")
	}
}

func (m *Machine) completeQuestion(ev entity.StreamEvent) {
	if !m.streaming {
		m.reject(ev, "completion while not streaming")
		return
	}
	if ev.ID == "" {
		m.reject(ev, "completion without question id")
		return
	}
	for _, q := range m.session.Questions {
		if q.ID == ev.ID {
			m.reject(ev, "duplicate question id")
			return
		}
	}

	kind := ev.Kind
	if kind == "" {
		kind = entity.QuestionKindOpen
	}
	required := true
	if ev.Required != nil {
		required = *ev.Required
	}

	question := entity.Question{
		ID:        ev.ID,
		SessionID: m.session.ID,
		Position:  len(m.session.Questions),
		Kind:      kind,
		Text:      m.buf.String(),
		Options:   ev.Options,
		Required:  required,
		CreatedAt: time.Now(),
	}

	m.session.Questions = append(m.session.Questions, question)
	m.session.CurrentQuestionIndex++
	m.clearStreaming()
	m.touch()
}

// AddAnswer appends an answer for a received question. The question must
// already exist; answers are never edited or removed, a resubmission creates
// a new entry.
func (m *Machine) AddAnswer(ans entity.Answer) error {
	if m.session == nil {
		return entity.ErrNoActiveSession
	}

	found := false
	for _, q := range m.session.Questions {
		if q.ID == ans.QuestionID {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("%w: %s", entity.ErrQuestionNotFound, ans.QuestionID)
	}

	if ans.SubmittedAt.IsZero() {
		ans.SubmittedAt = time.Now()
	}
	ans.SessionID = m.session.ID

	m.session.Answers = append(m.session.Answers, ans)
	if m.session.Status != entity.SessionStatusCompleted && m.session.Status != entity.SessionStatusError {
		m.session.Status = entity.SessionStatusInProgress
	}
	m.touch()
	return nil
}

// CanFinish reports whether the session may be handed to the plan
// materializer: the stream has ended and every received question has an
// answer. Status is deliberately not consulted here; orchestration layers
// decide whether an errored session may still be finalized.
func (m *Machine) CanFinish() bool {
	if m.session == nil {
		return false
	}
	if !m.session.IsComplete {
		return false
	}
	return len(m.session.Questions) > 0 && len(m.session.Answers) >= len(m.session.Questions)
}

// Complete transitions the session to its terminal completed status.
// Callers are expected to check CanFinish first.
func (m *Machine) Complete() {
	if m.session == nil {
		return
	}
	now := time.Now()
	m.session.Status = entity.SessionStatusCompleted
	m.session.CompletedAt = &now
	m.clearStreaming()
	m.touch()
}

// Reset clears the machine back to its initial, sessionless form.
func (m *Machine) Reset() {
	m.session = nil
	m.streaming = false
	m.buf.Reset()
	m.invalidEvents = 0
}

// Session returns a snapshot copy of the current session, or nil when no
// session is active.
func (m *Machine) Session() *entity.ClarificationSession {
	if m.session == nil {
		return nil
	}
	snapshot := *m.session
	snapshot.Questions = append([]entity.Question(nil), m.session.Questions...)
	snapshot.Answers = append([]entity.Answer(nil), m.session.Answers...)
	return &snapshot
}

// CurrentQuestion returns the question at the cursor, if any.
func (m *Machine) CurrentQuestion() (entity.Question, bool) {
	if m.session == nil {
		return entity.Question{}, false
	}
	idx := m.session.CurrentQuestionIndex
	if idx < 0 || idx >= len(m.session.Questions) {
		return entity.Question{}, false
	}
	return m.session.Questions[idx], true
}

// StreamedText returns the accumulated text of the in-progress question.
func (m *Machine) StreamedText() string {
	return m.buf.String()
}

func (m *Machine) IsStreaming() bool {
	return m.streaming
}

// InvalidEvents counts stream events that were rejected because they violated
// the expected sequence. Exposed for observability.
func (m *Machine) InvalidEvents() int {
	return m.invalidEvents
}

func (m *Machine) reject(ev entity.StreamEvent, reason string) {
	m.invalidEvents++
	m.logger.Debug("rejected stream event",
		zap.String("event_type", string(ev.Type)),
		zap.String("event_id", ev.ID),
		zap.String("reason", reason),
	)
}

func (m *Machine) clearStreaming() {
	m.streaming = false
	m.buf.Reset()
}

func (m *Machine) touch() {
	m.session.UpdatedAt = time.Now()
}
