package clarify

import (
	"context"

	"github.com/24thNight/clarify-backend/internal/entity"
)

type GeneratorConnector interface {
	GenerateQuestions(ctx context.Context, req *entity.GenerateQuestionsRequest) (*entity.GenerateQuestionsResponse, error)
}

// PlanMaterializer turns a finished session into a persisted plan.
type PlanMaterializer interface {
	MaterializeFromSession(ctx context.Context, session *entity.ClarificationSession) (*entity.Plan, error)
}
