package clarify

import (
	"context"
	"time"

	"github.com/24thNight/clarify-backend/internal/entity"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// pumpQuestions fetches the question batch and replays it onto the session
// stream as fragments, one completion event per question, and a terminal end
// or error event. Runs in its own goroutine per session.
func (uc *ClarifyUsecase) pumpQuestions(ctx context.Context, session *entity.ClarificationSession) {
	resp, err := uc.generator.GenerateQuestions(ctx, &entity.GenerateQuestionsRequest{
		SessionID:    session.ID,
		PlanID:       session.PlanID,
		MaxQuestions: uc.streamCfg.MaxQuestions,
	})
	if err != nil {
		uc.failSession(ctx, session.ID, "question generation failed")
		return
	}

	for i, generated := range resp.Questions {
		question := &entity.Question{
			ID:        uuid.New().String(),
			SessionID: session.ID,
			Position:  i,
			Kind:      generated.Kind,
			Text:      generated.Text,
			Options:   generated.Options,
			Required:  true,
		}
		if question.Kind == "" {
			question.Kind = entity.QuestionKindOpen
		}
		if generated.Required != nil {
			question.Required = *generated.Required
		}

		if _, err := uc.questionRepo.CreateQuestion(ctx, question); err != nil {
			ctxzap.Error(ctx, "failed to persist question",
				zap.String("session_id", session.ID),
				zap.Error(err),
			)
			uc.failSession(ctx, session.ID, "failed to persist question")
			return
		}

		if err := uc.emitQuestion(ctx, session.ID, question); err != nil {
			ctxzap.Warn(ctx, "question stream interrupted",
				zap.String("session_id", session.ID),
				zap.Error(err),
			)
			return
		}

		if err := uc.sessionRepo.UpdateSessionProgress(ctx, session.ID, i, false); err != nil {
			ctxzap.Error(ctx, "failed to update session progress",
				zap.String("session_id", session.ID),
				zap.Error(err),
			)
		}
	}

	if err := uc.hub.Publish(session.ID, entity.StreamEvent{Type: entity.StreamEventEnd}); err != nil {
		ctxzap.Warn(ctx, "failed to publish end event",
			zap.String("session_id", session.ID),
			zap.Error(err),
		)
	}

	if err := uc.sessionRepo.UpdateSessionProgress(ctx, session.ID, len(resp.Questions)-1, true); err != nil {
		ctxzap.Error(ctx, "failed to mark stream complete",
			zap.String("session_id", session.ID),
			zap.Error(err),
		)
	}

	uc.hub.Close(session.ID)

	ctxzap.Info(ctx, "question stream finished",
		zap.String("session_id", session.ID),
		zap.Int("question_count", len(resp.Questions)),
	)
}

// emitQuestion streams the question text in fragments and then a completion
// event that freezes it.
func (uc *ClarifyUsecase) emitQuestion(ctx context.Context, sessionID string, question *entity.Question) error {
	fragmentSize := uc.streamCfg.FragmentSize
	if fragmentSize <= 0 {
		fragmentSize = len(question.Text)
	}

	runes := []rune(question.Text)
	for start := 0; start < len(runes); start += fragmentSize {
		end := start + fragmentSize
		if end > len(runes) {
			end = len(runes)
		}

		err := uc.hub.Publish(sessionID, entity.StreamEvent{
			Type: entity.StreamEventQuestion,
			Data: string(runes[start:end]),
		})
		if err != nil {
			return err
		}

		if uc.streamCfg.FragmentDelay > 0 {
			select {
			case <-time.After(uc.streamCfg.FragmentDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	required := question.Required
	return uc.hub.Publish(sessionID, entity.StreamEvent{
		Type:     entity.StreamEventCompletion,
		ID:       question.ID,
		Kind:     question.Kind,
		Options:  question.Options,
		Required: &required,
	})
}

// failSession records the failure and pushes a terminal error event so
// connected clients abort instead of waiting forever.
func (uc *ClarifyUsecase) failSession(ctx context.Context, sessionID, message string) {
	ctxzap.Error(ctx, "clarification session failed",
		zap.String("session_id", sessionID),
		zap.String("reason", message),
	)

	if err := uc.sessionRepo.UpdateSessionError(ctx, sessionID, message); err != nil {
		ctxzap.Error(ctx, "failed to record session error",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
	}

	if err := uc.hub.Publish(sessionID, entity.StreamEvent{
		Type: entity.StreamEventError,
		Data: message,
	}); err != nil {
		ctxzap.Warn(ctx, "failed to publish error event",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
	}

	uc.hub.Close(sessionID)
}
