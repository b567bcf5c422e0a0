package clarification

import (
	"context"

	"github.com/24thNight/clarify-backend/internal/entity"
)

type ClarificationUsecase interface {
	StartSession(ctx context.Context, req *entity.StartSessionRequest) (*entity.ClarificationSession, error)
	GetSession(ctx context.Context, sessionID string) (*entity.ClarificationSession, error)
	SubscribeStream(ctx context.Context, sessionID string) (<-chan entity.StreamEvent, func(), error)
	SubmitAnswer(ctx context.Context, sessionID string, req *entity.SubmitAnswerRequest) (*entity.Answer, error)
	CompleteSession(ctx context.Context, sessionID string) (*entity.Plan, error)
	AbandonSession(ctx context.Context, sessionID string) error
}
