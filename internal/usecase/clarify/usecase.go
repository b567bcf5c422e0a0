package clarify

import (
	"context"
	"fmt"

	"github.com/24thNight/clarify-backend/internal/config"
	"github.com/24thNight/clarify-backend/internal/entity"
	"github.com/24thNight/clarify-backend/internal/pkg/validator"
	"github.com/24thNight/clarify-backend/internal/repository"
	"github.com/24thNight/clarify-backend/internal/stream"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// ClarifyUsecase implements the clarification session business logic
type ClarifyUsecase struct {
	sessionRepo  repository.SessionRepository
	questionRepo repository.QuestionRepository
	answerRepo   repository.AnswerRepository
	validator    *validator.Validator
	generator    GeneratorConnector
	materializer PlanMaterializer
	hub          *stream.Hub
	streamCfg    config.StreamConfig
	logger       *zap.Logger
}

// NewUsecase creates a new clarification use case
func NewUsecase(
	sessionRepo repository.SessionRepository,
	questionRepo repository.QuestionRepository,
	answerRepo repository.AnswerRepository,
	validator *validator.Validator,
	generator GeneratorConnector,
	materializer PlanMaterializer,
	hub *stream.Hub,
	streamCfg config.StreamConfig,
	logger *zap.Logger,
) *ClarifyUsecase {
	return &ClarifyUsecase{
		sessionRepo:  sessionRepo,
		questionRepo: questionRepo,
		answerRepo:   answerRepo,
		validator:    validator,
		generator:    generator,
		materializer: materializer,
		hub:          hub,
		streamCfg:    streamCfg,
		logger:       logger,
	}
}

// StartSession creates a session and kicks off question generation in the
// background. Clients pick up the questions through SubscribeStream.
func (uc *ClarifyUsecase) StartSession(ctx context.Context, req *entity.StartSessionRequest) (*entity.ClarificationSession, error) {
	if err := uc.validator.ValidateStartSession(req); err != nil {
		return nil, err
	}

	session := &entity.ClarificationSession{
		ID:                   uuid.New().String(),
		PlanID:               req.PlanID,
		Status:               entity.SessionStatusPending,
		CurrentQuestionIndex: -1,
	}

	created, err := uc.sessionRepo.CreateSession(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	uc.hub.Open(created.ID)

	// The pump outlives the start request but keeps its log context.
	go uc.pumpQuestions(context.WithoutCancel(ctx), created)

	ctxzap.Info(ctx, "clarification session started",
		zap.String("session_id", created.ID),
		zap.Stringp("plan_id", created.PlanID),
	)

	return created, nil
}

// SubscribeStream attaches a subscriber to the session question stream. The
// returned channel replays everything published so far, then follows live.
func (uc *ClarifyUsecase) SubscribeStream(ctx context.Context, sessionID string) (<-chan entity.StreamEvent, func(), error) {
	if _, err := uc.sessionRepo.GetSessionByID(ctx, sessionID); err != nil {
		return nil, nil, fmt.Errorf("get session: %w", err)
	}

	ch, cancel, err := uc.hub.Subscribe(sessionID)
	if err != nil {
		return nil, nil, fmt.Errorf("subscribe stream: %w", err)
	}

	return ch, cancel, nil
}

// SubmitAnswer records an answer for a frozen question. Answers are
// append-only: answering the same question again adds a new record.
func (uc *ClarifyUsecase) SubmitAnswer(ctx context.Context, sessionID string, req *entity.SubmitAnswerRequest) (*entity.Answer, error) {
	if err := uc.validator.ValidateSubmitAnswer(req); err != nil {
		return nil, err
	}

	session, err := uc.sessionRepo.GetSessionByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	switch session.Status {
	case entity.SessionStatusCompleted:
		return nil, entity.ErrSessionCompleted
	case entity.SessionStatusError:
		return nil, entity.ErrSessionFailed
	}

	question, err := uc.questionRepo.GetQuestionByID(ctx, req.QuestionID)
	if err != nil {
		return nil, fmt.Errorf("get question: %w", err)
	}
	if question.SessionID != sessionID {
		return nil, entity.ErrQuestionNotFound
	}

	answer := &entity.Answer{
		ID:         uuid.New().String(),
		SessionID:  sessionID,
		QuestionID: req.QuestionID,
		Value:      string(req.Value),
	}

	created, err := uc.answerRepo.CreateAnswer(ctx, answer)
	if err != nil {
		return nil, fmt.Errorf("create answer: %w", err)
	}

	if session.Status == entity.SessionStatusPending {
		if err := uc.sessionRepo.UpdateSessionStatus(ctx, sessionID, entity.SessionStatusInProgress); err != nil {
			return nil, fmt.Errorf("update session status: %w", err)
		}
	}

	ctxzap.Info(ctx, "answer recorded",
		zap.String("session_id", sessionID),
		zap.String("question_id", req.QuestionID),
	)

	return created, nil
}

// GetSession loads the full session aggregate.
func (uc *ClarifyUsecase) GetSession(ctx context.Context, sessionID string) (*entity.ClarificationSession, error) {
	session, err := uc.sessionRepo.GetSessionByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	questions, err := uc.questionRepo.ListQuestionsBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}

	answers, err := uc.answerRepo.ListAnswersBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}

	session.Questions = questions
	session.Answers = answers

	return session, nil
}

// CompleteSession finalizes the session and materializes the plan. The gate
// requires a finished stream, at least one question, and every question
// having at least one answer.
func (uc *ClarifyUsecase) CompleteSession(ctx context.Context, sessionID string) (*entity.Plan, error) {
	session, err := uc.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	switch session.Status {
	case entity.SessionStatusCompleted:
		return nil, entity.ErrSessionCompleted
	case entity.SessionStatusError:
		return nil, entity.ErrSessionFailed
	}

	if !session.IsComplete || len(session.Questions) == 0 {
		return nil, entity.ErrSessionNotFinishable
	}

	answered, err := uc.answerRepo.CountAnsweredQuestions(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("count answered questions: %w", err)
	}
	if answered < len(session.Questions) {
		return nil, entity.ErrSessionNotFinishable
	}

	plan, err := uc.materializer.MaterializeFromSession(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("materialize plan: %w", err)
	}

	if err := uc.sessionRepo.CompleteSession(ctx, sessionID, plan.ID); err != nil {
		return nil, fmt.Errorf("complete session: %w", err)
	}

	ctxzap.Info(ctx, "session finalized",
		zap.String("session_id", sessionID),
		zap.String("plan_id", plan.ID),
		zap.Int("question_count", len(session.Questions)),
	)

	return plan, nil
}

// AbandonSession drops the session and its stream entirely.
func (uc *ClarifyUsecase) AbandonSession(ctx context.Context, sessionID string) error {
	uc.hub.Remove(sessionID)

	if err := uc.sessionRepo.DeleteSession(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	ctxzap.Info(ctx, "session abandoned", zap.String("session_id", sessionID))

	return nil
}
