package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/24thNight/clarify-backend/internal/entity"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PlanRepository defines the interface for plan persistence
type PlanRepository interface {
	CreatePlan(ctx context.Context, plan *entity.Plan) (*entity.Plan, error)
	GetPlanByID(ctx context.Context, id string) (*entity.Plan, error)
	ListPlans(ctx context.Context) ([]entity.Plan, error)
	UpdatePlan(ctx context.Context, plan *entity.Plan) (*entity.Plan, error)
	DeletePlan(ctx context.Context, id string) error
}

var _ PlanRepository = &PlanPostgres{}

type PlanPostgres struct {
	db *pgxpool.Pool
}

func NewPlanPostgres(db *pgxpool.Pool) *PlanPostgres {
	return &PlanPostgres{db: db}
}

const planColumns = `id, title, description, current_stage_id, stages, status, progress, created_at, updated_at`

func (r *PlanPostgres) CreatePlan(ctx context.Context, plan *entity.Plan) (*entity.Plan, error) {
	planID, err := pgUUID(plan.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid plan ID: %w", err)
	}

	stages := plan.Stages
	if stages == nil {
		stages = []entity.PlanStage{}
	}

	row := r.db.QueryRow(ctx, `
		INSERT INTO plans (id, title, description, current_stage_id, stages, status, progress)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+planColumns,
		planID, plan.Title, plan.Description, plan.CurrentStageID,
		stages, string(plan.Status), plan.Progress,
	)

	created, err := scanPlan(row)
	if err != nil {
		return nil, fmt.Errorf("create plan: %w", err)
	}

	return created, nil
}

func (r *PlanPostgres) GetPlanByID(ctx context.Context, id string) (*entity.Plan, error) {
	planID, err := pgUUID(id)
	if err != nil {
		return nil, fmt.Errorf("invalid plan ID: %w", err)
	}

	row := r.db.QueryRow(ctx, `
		SELECT `+planColumns+`
		FROM plans
		WHERE id = $1 AND status != $2`,
		planID, string(entity.PlanStatusDeleted),
	)

	plan, err := scanPlan(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrPlanNotFound
		}
		return nil, fmt.Errorf("get plan: %w", err)
	}

	return plan, nil
}

func (r *PlanPostgres) ListPlans(ctx context.Context) ([]entity.Plan, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+planColumns+`
		FROM plans
		WHERE status != $1
		ORDER BY created_at DESC`,
		string(entity.PlanStatusDeleted),
	)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()

	var plans []entity.Plan
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan plan: %w", err)
		}
		plans = append(plans, *plan)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}

	return plans, nil
}

func (r *PlanPostgres) UpdatePlan(ctx context.Context, plan *entity.Plan) (*entity.Plan, error) {
	planID, err := pgUUID(plan.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid plan ID: %w", err)
	}

	stages := plan.Stages
	if stages == nil {
		stages = []entity.PlanStage{}
	}

	row := r.db.QueryRow(ctx, `
		UPDATE plans
		SET title = $2, description = $3, current_stage_id = $4, stages = $5,
		    status = $6, progress = $7, updated_at = now()
		WHERE id = $1
		RETURNING `+planColumns,
		planID, plan.Title, plan.Description, plan.CurrentStageID,
		stages, string(plan.Status), plan.Progress,
	)

	updated, err := scanPlan(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrPlanNotFound
		}
		return nil, fmt.Errorf("update plan: %w", err)
	}

	return updated, nil
}

// DeletePlan soft-deletes: the row stays for completed sessions that
// reference it.
func (r *PlanPostgres) DeletePlan(ctx context.Context, id string) error {
	planID, err := pgUUID(id)
	if err != nil {
		return fmt.Errorf("invalid plan ID: %w", err)
	}

	tag, err := r.db.Exec(ctx, `
		UPDATE plans
		SET status = $2, updated_at = now()
		WHERE id = $1 AND status != $2`,
		planID, string(entity.PlanStatusDeleted),
	)
	if err != nil {
		return fmt.Errorf("delete plan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return entity.ErrPlanNotFound
	}

	return nil
}

func scanPlan(row pgx.Row) (*entity.Plan, error) {
	var (
		id             pgtype.UUID
		title          string
		description    string
		currentStageID string
		stages         []entity.PlanStage
		status         string
		progress       int32
		createdAt      pgtype.Timestamptz
		updatedAt      pgtype.Timestamptz
	)

	if err := row.Scan(&id, &title, &description, &currentStageID, &stages, &status, &progress, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	return &entity.Plan{
		ID:             uuidString(id),
		Title:          title,
		Description:    description,
		CurrentStageID: currentStageID,
		Stages:         stages,
		Status:         entity.PlanStatus(status),
		Progress:       int(progress),
		CreatedAt:      createdAt.Time,
		UpdatedAt:      updatedAt.Time,
	}, nil
}
