package session

import (
	"testing"
	"time"

	"github.com/24thNight/clarify-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fragment(data string) entity.StreamEvent {
	return entity.StreamEvent{Type: entity.StreamEventQuestion, Data: data}
}

func completion(id string, kind entity.QuestionKind) entity.StreamEvent {
	return entity.StreamEvent{Type: entity.StreamEventCompletion, ID: id, Kind: kind}
}

func TestQuestionAssemblyConcatenatesFragmentsExactly(t *testing.T) {
	m := NewMachine(nil)
	m.Init(nil)

	m.HandleStreamEvent(fragment("What is"))
	m.HandleStreamEvent(fragment(" your"))
	m.HandleStreamEvent(fragment(" goal?"))
	m.HandleStreamEvent(completion("q1", entity.QuestionKindOpen))

	s := m.Session()
	require.Len(t, s.Questions, 1)
	assert.Equal(t, "What is your goal?", s.Questions[0].Text)
}

func TestCompletionAdvancesIndexByOne(t *testing.T) {
	m := NewMachine(nil)
	m.Init(nil)

	assert.Equal(t, -1, m.Session().CurrentQuestionIndex)

	for i, id := range []string{"q1", "q2", "q3"} {
		m.HandleStreamEvent(fragment("text"))
		m.HandleStreamEvent(completion(id, entity.QuestionKindOpen))

		s := m.Session()
		assert.Equal(t, i, s.CurrentQuestionIndex)
		assert.Len(t, s.Questions, i+1)
	}
}

func TestCannotFinishBeforeStreamEnds(t *testing.T) {
	m := NewMachine(nil)
	m.Init(nil)

	for _, id := range []string{"q1", "q2"} {
		m.HandleStreamEvent(fragment("question " + id))
		m.HandleStreamEvent(completion(id, entity.QuestionKindOpen))
		require.NoError(t, m.AddAnswer(entity.Answer{QuestionID: id, Value: "answer"}))
	}

	// Two questions, two answers, but no end event yet.
	assert.False(t, m.CanFinish())
}

func TestCanFinishWhenAllQuestionsAnswered(t *testing.T) {
	m := NewMachine(nil)
	m.Init(nil)

	for _, id := range []string{"q1", "q2", "q3"} {
		m.HandleStreamEvent(fragment("question " + id))
		m.HandleStreamEvent(completion(id, entity.QuestionKindOpen))
		require.NoError(t, m.AddAnswer(entity.Answer{QuestionID: id, Value: "answer"}))
	}
	m.HandleStreamEvent(entity.StreamEvent{Type: entity.StreamEventEnd})

	assert.True(t, m.CanFinish())
}

func TestCannotFinishWithUnansweredQuestions(t *testing.T) {
	m := NewMachine(nil)
	m.Init(nil)

	for _, id := range []string{"q1", "q2", "q3"} {
		m.HandleStreamEvent(fragment("question " + id))
		m.HandleStreamEvent(completion(id, entity.QuestionKindOpen))
	}
	require.NoError(t, m.AddAnswer(entity.Answer{QuestionID: "q1", Value: "a"}))
	require.NoError(t, m.AddAnswer(entity.Answer{QuestionID: "q2", Value: "b"}))
	m.HandleStreamEvent(entity.StreamEvent{Type: entity.StreamEventEnd})

	assert.True(t, m.Session().IsComplete)
	assert.False(t, m.CanFinish())
}

func TestResetReturnsToInitialState(t *testing.T) {
	m := NewMachine(nil)
	m.Init(nil)
	m.HandleStreamEvent(fragment("partial"))
	m.HandleStreamEvent(completion("q1", entity.QuestionKindScale))
	require.NoError(t, m.AddAnswer(entity.Answer{QuestionID: "q1", Value: "5"}))
	m.HandleStreamEvent(entity.StreamEvent{Type: entity.StreamEventEnd})

	m.Reset()

	assert.Nil(t, m.Session())
	assert.False(t, m.IsStreaming())
	assert.Empty(t, m.StreamedText())
	assert.Zero(t, m.InvalidEvents())
	assert.False(t, m.CanFinish())
}

func TestFullSessionScenario(t *testing.T) {
	m := NewMachine(nil)
	m.Init(nil)

	m.HandleStreamEvent(fragment("What"))
	m.HandleStreamEvent(fragment(" is your goal?"))
	m.HandleStreamEvent(completion("q1", entity.QuestionKindOpen))

	s := m.Session()
	require.Len(t, s.Questions, 1)
	q := s.Questions[0]
	assert.Equal(t, "q1", q.ID)
	assert.Equal(t, "What is your goal?", q.Text)
	assert.Equal(t, entity.QuestionKindOpen, q.Kind)
	assert.True(t, q.Required)
	assert.Equal(t, 0, s.CurrentQuestionIndex)

	require.NoError(t, m.AddAnswer(entity.Answer{
		QuestionID:  "q1",
		Value:       "Learn TS",
		SubmittedAt: time.Now(),
	}))
	assert.Len(t, m.Session().Answers, 1)
	assert.Equal(t, entity.SessionStatusInProgress, m.Session().Status)

	m.HandleStreamEvent(entity.StreamEvent{Type: entity.StreamEventEnd})

	s = m.Session()
	assert.True(t, s.IsComplete)
	// All answers were already in, so the end event finishes the session.
	assert.Equal(t, entity.SessionStatusCompleted, s.Status)
	assert.NotNil(t, s.CompletedAt)
	assert.True(t, m.CanFinish())
}

func TestErrorEventSetsErrorStatus(t *testing.T) {
	m := NewMachine(nil)
	m.Init(nil)

	m.HandleStreamEvent(fragment("question"))
	m.HandleStreamEvent(completion("q1", entity.QuestionKindOpen))
	require.NoError(t, m.AddAnswer(entity.Answer{QuestionID: "q1", Value: "a"}))

	m.HandleStreamEvent(entity.StreamEvent{Type: entity.StreamEventError, Data: "boom"})

	s := m.Session()
	assert.Equal(t, entity.SessionStatusError, s.Status)
	require.NotNil(t, s.Error)
	assert.Equal(t, "boom", *s.Error)
	assert.False(t, m.IsStreaming())

	// The finalization gate only checks stream completion and answer counts;
	// refusing to finalize an errored session is the orchestrator's call.
	m.HandleStreamEvent(entity.StreamEvent{Type: entity.StreamEventEnd})
	assert.True(t, m.CanFinish())
}

func TestInvalidTransitionsAreRejectedAndCounted(t *testing.T) {
	m := NewMachine(nil)
	m.Init(nil)

	// Completion while not streaming.
	m.HandleStreamEvent(completion("q1", entity.QuestionKindOpen))
	assert.Equal(t, 1, m.InvalidEvents())
	assert.Empty(t, m.Session().Questions)

	// Completion without an id.
	m.HandleStreamEvent(fragment("text"))
	m.HandleStreamEvent(entity.StreamEvent{Type: entity.StreamEventCompletion})
	assert.Equal(t, 2, m.InvalidEvents())

	// Duplicate question id.
	m.HandleStreamEvent(completion("q1", entity.QuestionKindOpen))
	m.HandleStreamEvent(fragment("again"))
	m.HandleStreamEvent(completion("q1", entity.QuestionKindOpen))
	assert.Equal(t, 3, m.InvalidEvents())
	assert.Len(t, m.Session().Questions, 1)

	// Unknown event tag.
	m.HandleStreamEvent(entity.StreamEvent{Type: "heartbeat"})
	assert.Equal(t, 4, m.InvalidEvents())
}

func TestAddAnswerRejectsUnknownQuestion(t *testing.T) {
	m := NewMachine(nil)

	err := m.AddAnswer(entity.Answer{QuestionID: "q1", Value: "a"})
	assert.ErrorIs(t, err, entity.ErrNoActiveSession)

	m.Init(nil)
	err = m.AddAnswer(entity.Answer{QuestionID: "q1", Value: "a"})
	assert.ErrorIs(t, err, entity.ErrQuestionNotFound)
}

func TestResubmissionAppendsNewEntry(t *testing.T) {
	m := NewMachine(nil)
	m.Init(nil)

	m.HandleStreamEvent(fragment("pick one"))
	m.HandleStreamEvent(completion("q1", entity.QuestionKindMultipleChoice))

	require.NoError(t, m.AddAnswer(entity.Answer{QuestionID: "q1", Value: "first"}))
	require.NoError(t, m.AddAnswer(entity.Answer{QuestionID: "q1", Value: "second"}))

	answers := m.Session().Answers
	require.Len(t, answers, 2)
	assert.Equal(t, "first", answers[0].Value)
	assert.Equal(t, "second", answers[1].Value)
}

func TestCompletionDefaultsKindAndRequired(t *testing.T) {
	m := NewMachine(nil)
	m.Init(nil)

	m.HandleStreamEvent(fragment("rate it"))
	notRequired := false
	m.HandleStreamEvent(entity.StreamEvent{
		Type:     entity.StreamEventCompletion,
		ID:       "q1",
		Options:  []string{"a", "b"},
		Required: &notRequired,
	})

	q := m.Session().Questions[0]
	assert.Equal(t, entity.QuestionKindOpen, q.Kind)
	assert.False(t, q.Required)
	assert.Equal(t, []string{"a", "b"}, q.Options)
}
