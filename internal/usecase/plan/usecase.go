package plan

import (
	"context"
	"fmt"

	"github.com/24thNight/clarify-backend/internal/config"
	"github.com/24thNight/clarify-backend/internal/entity"
	"github.com/24thNight/clarify-backend/internal/pkg/formatter"
	"github.com/24thNight/clarify-backend/internal/pkg/validator"
	"github.com/24thNight/clarify-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// PlanUsecase implements plan business logic
type PlanUsecase struct {
	planRepo         repository.PlanRepository
	validator        *validator.Validator
	cache            *gocache.Cache
	formatterFactory *formatter.Factory
	logger           *zap.Logger
}

// NewUsecase creates a new plan use case
func NewUsecase(
	planRepo repository.PlanRepository,
	validator *validator.Validator,
	cacheCfg config.PlanCacheConfig,
	formatterFactory *formatter.Factory,
	logger *zap.Logger,
) *PlanUsecase {
	return &PlanUsecase{
		planRepo:         planRepo,
		validator:        validator,
		cache:            gocache.New(cacheCfg.TTL, cacheCfg.CleanupInterval),
		formatterFactory: formatterFactory,
		logger:           logger,
	}
}

func (uc *PlanUsecase) CreatePlan(ctx context.Context, req *entity.CreatePlanRequest) (*entity.Plan, error) {
	if err := uc.validator.ValidateCreatePlan(req); err != nil {
		return nil, err
	}

	plan := &entity.Plan{
		ID:          uuid.New().String(),
		Title:       req.Title,
		Description: req.Description,
		Status:      entity.PlanStatusOngoing,
	}

	created, err := uc.planRepo.CreatePlan(ctx, plan)
	if err != nil {
		return nil, fmt.Errorf("create plan: %w", err)
	}

	uc.cache.SetDefault(created.ID, created)

	ctxzap.Info(ctx, "plan created", zap.String("plan_id", created.ID))

	return created, nil
}

func (uc *PlanUsecase) GetPlan(ctx context.Context, id string) (*entity.Plan, error) {
	if cached, ok := uc.cache.Get(id); ok {
		return cached.(*entity.Plan), nil
	}

	plan, err := uc.planRepo.GetPlanByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get plan: %w", err)
	}

	uc.cache.SetDefault(id, plan)

	return plan, nil
}

func (uc *PlanUsecase) ListPlans(ctx context.Context) ([]entity.Plan, error) {
	plans, err := uc.planRepo.ListPlans(ctx)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	return plans, nil
}

func (uc *PlanUsecase) UpdatePlan(ctx context.Context, id string, req *entity.UpdatePlanRequest) (*entity.Plan, error) {
	if err := uc.validator.ValidateUpdatePlan(req); err != nil {
		return nil, err
	}

	plan, err := uc.planRepo.GetPlanByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get plan: %w", err)
	}

	if req.Title != nil {
		plan.Title = *req.Title
	}
	if req.Description != nil {
		plan.Description = *req.Description
	}
	if req.Status != nil {
		plan.Status = *req.Status
	}
	if req.CurrentStageID != nil {
		plan.CurrentStageID = *req.CurrentStageID
	}
	if req.Progress != nil {
		plan.Progress = *req.Progress
	}

	updated, err := uc.planRepo.UpdatePlan(ctx, plan)
	if err != nil {
		return nil, fmt.Errorf("update plan: %w", err)
	}

	uc.cache.SetDefault(id, updated)

	ctxzap.Info(ctx, "plan updated", zap.String("plan_id", id))

	return updated, nil
}

func (uc *PlanUsecase) DeletePlan(ctx context.Context, id string) error {
	if err := uc.planRepo.DeletePlan(ctx, id); err != nil {
		return fmt.Errorf("delete plan: %w", err)
	}

	uc.cache.Delete(id)

	ctxzap.Info(ctx, "plan deleted", zap.String("plan_id", id))

	return nil
}

// ExportPlan renders the plan in the requested format and returns the bytes
// together with content type and a suggested filename.
func (uc *PlanUsecase) ExportPlan(ctx context.Context, id string, format entity.ResultFormat) ([]byte, string, string, error) {
	if err := uc.validator.ValidateExportFormat(format); err != nil {
		return nil, "", "", err
	}

	plan, err := uc.GetPlan(ctx, id)
	if err != nil {
		return nil, "", "", err
	}

	f, err := uc.formatterFactory.Create(format)
	if err != nil {
		return nil, "", "", fmt.Errorf("create formatter: %w", err)
	}

	data, err := f.Format(plan)
	if err != nil {
		return nil, "", "", fmt.Errorf("format plan: %w", err)
	}

	filename := "plan-" + plan.ID + f.FileExtension()

	ctxzap.Info(ctx, "plan exported",
		zap.String("plan_id", id),
		zap.String("format", string(format)),
		zap.Int("size", len(data)),
	)

	return data, f.ContentType(), filename, nil
}
