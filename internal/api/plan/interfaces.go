package plan

import (
	"context"

	"github.com/24thNight/clarify-backend/internal/entity"
)

type PlanUsecase interface {
	CreatePlan(ctx context.Context, req *entity.CreatePlanRequest) (*entity.Plan, error)
	GetPlan(ctx context.Context, id string) (*entity.Plan, error)
	ListPlans(ctx context.Context) ([]entity.Plan, error)
	UpdatePlan(ctx context.Context, id string, req *entity.UpdatePlanRequest) (*entity.Plan, error)
	DeletePlan(ctx context.Context, id string) error
	ExportPlan(ctx context.Context, id string, format entity.ResultFormat) (data []byte, contentType, filename string, err error)
}
