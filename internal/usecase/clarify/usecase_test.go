package clarify

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/24thNight/clarify-backend/internal/config"
	"github.com/24thNight/clarify-backend/internal/entity"
	"github.com/24thNight/clarify-backend/internal/pkg/validator"
	"github.com/24thNight/clarify-backend/internal/stream"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*entity.ClarificationSession
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*entity.ClarificationSession)}
}

func (r *fakeSessionRepo) CreateSession(_ context.Context, session *entity.ClarificationSession) (*entity.ClarificationSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *session
	copied.CreatedAt = time.Now()
	copied.UpdatedAt = copied.CreatedAt
	r.sessions[session.ID] = &copied
	result := copied
	return &result, nil
}

func (r *fakeSessionRepo) GetSessionByID(_ context.Context, id string) (*entity.ClarificationSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return nil, entity.ErrSessionNotFound
	}
	copied := *session
	return &copied, nil
}

func (r *fakeSessionRepo) UpdateSessionStatus(_ context.Context, id string, status entity.SessionStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return entity.ErrSessionNotFound
	}
	session.Status = status
	return nil
}

func (r *fakeSessionRepo) UpdateSessionProgress(_ context.Context, id string, index int, isComplete bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return entity.ErrSessionNotFound
	}
	session.CurrentQuestionIndex = index
	session.IsComplete = isComplete
	return nil
}

func (r *fakeSessionRepo) UpdateSessionError(_ context.Context, id string, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return entity.ErrSessionNotFound
	}
	session.Status = entity.SessionStatusError
	session.Error = &message
	return nil
}

func (r *fakeSessionRepo) CompleteSession(_ context.Context, id string, planID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return entity.ErrSessionNotFound
	}
	now := time.Now()
	session.Status = entity.SessionStatusCompleted
	session.PlanID = &planID
	session.CompletedAt = &now
	return nil
}

func (r *fakeSessionRepo) DeleteSession(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return entity.ErrSessionNotFound
	}
	delete(r.sessions, id)
	return nil
}

type fakeQuestionRepo struct {
	mu        sync.Mutex
	questions map[string]*entity.Question
	order     map[string][]string
}

func newFakeQuestionRepo() *fakeQuestionRepo {
	return &fakeQuestionRepo{
		questions: make(map[string]*entity.Question),
		order:     make(map[string][]string),
	}
}

func (r *fakeQuestionRepo) CreateQuestion(_ context.Context, question *entity.Question) (*entity.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *question
	copied.CreatedAt = time.Now()
	r.questions[question.ID] = &copied
	r.order[question.SessionID] = append(r.order[question.SessionID], question.ID)
	result := copied
	return &result, nil
}

func (r *fakeQuestionRepo) GetQuestionByID(_ context.Context, id string) (*entity.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	question, ok := r.questions[id]
	if !ok {
		return nil, entity.ErrQuestionNotFound
	}
	copied := *question
	return &copied, nil
}

func (r *fakeQuestionRepo) ListQuestionsBySession(_ context.Context, sessionID string) ([]entity.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var questions []entity.Question
	for _, id := range r.order[sessionID] {
		questions = append(questions, *r.questions[id])
	}
	return questions, nil
}

type fakeAnswerRepo struct {
	mu      sync.Mutex
	answers []entity.Answer
}

func (r *fakeAnswerRepo) CreateAnswer(_ context.Context, answer *entity.Answer) (*entity.Answer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *answer
	copied.SubmittedAt = time.Now()
	r.answers = append(r.answers, copied)
	result := copied
	return &result, nil
}

func (r *fakeAnswerRepo) ListAnswersBySession(_ context.Context, sessionID string) ([]entity.Answer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var answers []entity.Answer
	for _, answer := range r.answers {
		if answer.SessionID == sessionID {
			answers = append(answers, answer)
		}
	}
	return answers, nil
}

func (r *fakeAnswerRepo) CountAnsweredQuestions(_ context.Context, sessionID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[string]struct{})
	for _, answer := range r.answers {
		if answer.SessionID == sessionID {
			seen[answer.QuestionID] = struct{}{}
		}
	}
	return len(seen), nil
}

type fakeGenerator struct {
	questions []entity.GeneratedQuestion
	err       error
}

func (g *fakeGenerator) GenerateQuestions(_ context.Context, _ *entity.GenerateQuestionsRequest) (*entity.GenerateQuestionsResponse, error) {
	if g.err != nil {
		return nil, g.err
	}
	return &entity.GenerateQuestionsResponse{Questions: g.questions}, nil
}

type fakeMaterializer struct {
	lastSession *entity.ClarificationSession
}

func (m *fakeMaterializer) MaterializeFromSession(_ context.Context, session *entity.ClarificationSession) (*entity.Plan, error) {
	m.lastSession = session
	return &entity.Plan{
		ID:     uuid.New().String(),
		Title:  "Generated plan",
		Status: entity.PlanStatusOngoing,
	}, nil
}

func newTestUsecase(t *testing.T, generator GeneratorConnector) *ClarifyUsecase {
	t.Helper()
	return NewUsecase(
		newFakeSessionRepo(),
		newFakeQuestionRepo(),
		&fakeAnswerRepo{},
		validator.New(),
		generator,
		&fakeMaterializer{},
		stream.NewHub(16, zap.NewNop()),
		config.StreamConfig{FragmentSize: 5, MaxQuestions: 10},
		zap.NewNop(),
	)
}

// drainStream reads until the subscriber channel closes.
func drainStream(t *testing.T, ch <-chan entity.StreamEvent) []entity.StreamEvent {
	t.Helper()
	var events []entity.StreamEvent
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return events
			}
			events = append(events, ev)
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for stream events")
		}
	}
}

func TestStartSessionStreamsGeneratedQuestions(t *testing.T) {
	uc := newTestUsecase(t, &fakeGenerator{questions: []entity.GeneratedQuestion{
		{Text: "What is your main goal?", Kind: entity.QuestionKindOpen},
		{Text: "How many hours per week?", Kind: entity.QuestionKindScale},
	}})
	ctx := context.Background()

	session, err := uc.StartSession(ctx, &entity.StartSessionRequest{})
	require.NoError(t, err)
	assert.Equal(t, entity.SessionStatusPending, session.Status)
	assert.Equal(t, -1, session.CurrentQuestionIndex)

	ch, cancel, err := uc.SubscribeStream(ctx, session.ID)
	require.NoError(t, err)
	defer cancel()

	events := drainStream(t, ch)
	require.NotEmpty(t, events)
	assert.Equal(t, entity.StreamEventEnd, events[len(events)-1].Type)

	// Reassemble fragments per question and check exact concatenation.
	var texts []string
	var buf strings.Builder
	for _, ev := range events {
		switch ev.Type {
		case entity.StreamEventQuestion:
			buf.WriteString(ev.Data)
		case entity.StreamEventCompletion:
			texts = append(texts, buf.String())
			buf.Reset()
		}
	}
	assert.Equal(t, []string{"What is your main goal?", "How many hours per week?"}, texts)

	loaded, err := uc.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.True(t, loaded.IsComplete)
	assert.Len(t, loaded.Questions, 2)
	assert.Equal(t, 1, loaded.CurrentQuestionIndex)
}

func TestSubmitAnswerRejectsUnknownQuestion(t *testing.T) {
	uc := newTestUsecase(t, &fakeGenerator{questions: []entity.GeneratedQuestion{
		{Text: "Only question"},
	}})
	ctx := context.Background()

	session, err := uc.StartSession(ctx, &entity.StartSessionRequest{})
	require.NoError(t, err)

	ch, cancel, err := uc.SubscribeStream(ctx, session.ID)
	require.NoError(t, err)
	defer cancel()
	drainStream(t, ch)

	_, err = uc.SubmitAnswer(ctx, session.ID, &entity.SubmitAnswerRequest{
		QuestionID: uuid.New().String(),
		Value:      "answer to nothing",
	})
	assert.ErrorIs(t, err, entity.ErrQuestionNotFound)
}

func TestCompleteSessionGate(t *testing.T) {
	uc := newTestUsecase(t, &fakeGenerator{questions: []entity.GeneratedQuestion{
		{Text: "First question"},
		{Text: "Second question"},
	}})
	ctx := context.Background()

	session, err := uc.StartSession(ctx, &entity.StartSessionRequest{})
	require.NoError(t, err)

	ch, cancel, err := uc.SubscribeStream(ctx, session.ID)
	require.NoError(t, err)
	defer cancel()
	drainStream(t, ch)

	loaded, err := uc.GetSession(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Questions, 2)

	// One of two questions answered: gate stays closed.
	_, err = uc.SubmitAnswer(ctx, session.ID, &entity.SubmitAnswerRequest{
		QuestionID: loaded.Questions[0].ID,
		Value:      "first answer",
	})
	require.NoError(t, err)

	_, err = uc.CompleteSession(ctx, session.ID)
	assert.ErrorIs(t, err, entity.ErrSessionNotFinishable)

	// Resubmission does not open the gate either.
	_, err = uc.SubmitAnswer(ctx, session.ID, &entity.SubmitAnswerRequest{
		QuestionID: loaded.Questions[0].ID,
		Value:      "revised first answer",
	})
	require.NoError(t, err)

	_, err = uc.CompleteSession(ctx, session.ID)
	assert.ErrorIs(t, err, entity.ErrSessionNotFinishable)

	_, err = uc.SubmitAnswer(ctx, session.ID, &entity.SubmitAnswerRequest{
		QuestionID: loaded.Questions[1].ID,
		Value:      "second answer",
	})
	require.NoError(t, err)

	plan, err := uc.CompleteSession(ctx, session.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, plan.ID)

	final, err := uc.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.SessionStatusCompleted, final.Status)
	require.NotNil(t, final.PlanID)
	assert.Equal(t, plan.ID, *final.PlanID)

	_, err = uc.CompleteSession(ctx, session.ID)
	assert.ErrorIs(t, err, entity.ErrSessionCompleted)
}

func TestGeneratorFailureMarksSessionError(t *testing.T) {
	uc := newTestUsecase(t, &fakeGenerator{err: errors.New("generator unavailable")})
	ctx := context.Background()

	session, err := uc.StartSession(ctx, &entity.StartSessionRequest{})
	require.NoError(t, err)

	ch, cancel, err := uc.SubscribeStream(ctx, session.ID)
	require.NoError(t, err)
	defer cancel()

	events := drainStream(t, ch)
	require.NotEmpty(t, events)
	assert.Equal(t, entity.StreamEventError, events[len(events)-1].Type)

	loaded, err := uc.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.SessionStatusError, loaded.Status)
	require.NotNil(t, loaded.Error)

	_, err = uc.SubmitAnswer(ctx, session.ID, &entity.SubmitAnswerRequest{
		QuestionID: uuid.New().String(),
		Value:      "too late",
	})
	assert.ErrorIs(t, err, entity.ErrSessionFailed)

	_, err = uc.CompleteSession(ctx, session.ID)
	assert.ErrorIs(t, err, entity.ErrSessionFailed)
}

func TestAbandonSessionRemovesEverything(t *testing.T) {
	uc := newTestUsecase(t, &fakeGenerator{questions: []entity.GeneratedQuestion{
		{Text: "Question"},
	}})
	ctx := context.Background()

	session, err := uc.StartSession(ctx, &entity.StartSessionRequest{})
	require.NoError(t, err)

	ch, cancel, err := uc.SubscribeStream(ctx, session.ID)
	require.NoError(t, err)
	defer cancel()
	drainStream(t, ch)

	require.NoError(t, uc.AbandonSession(ctx, session.ID))

	_, err = uc.GetSession(ctx, session.ID)
	assert.ErrorIs(t, err, entity.ErrSessionNotFound)

	_, _, err = uc.SubscribeStream(ctx, session.ID)
	assert.ErrorIs(t, err, entity.ErrSessionNotFound)
}
