package plan

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/24thNight/clarify-backend/internal/config"
	"github.com/24thNight/clarify-backend/internal/entity"
	"github.com/24thNight/clarify-backend/internal/pkg/formatter"
	"github.com/24thNight/clarify-backend/internal/pkg/validator"
	"github.com/24thNight/clarify-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakePlanRepo struct {
	mu    sync.Mutex
	plans map[string]*entity.Plan
	gets  int
}

var _ repository.PlanRepository = &fakePlanRepo{}

func newFakePlanRepo() *fakePlanRepo {
	return &fakePlanRepo{plans: make(map[string]*entity.Plan)}
}

func (r *fakePlanRepo) CreatePlan(_ context.Context, plan *entity.Plan) (*entity.Plan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *plan
	copied.CreatedAt = time.Now()
	copied.UpdatedAt = copied.CreatedAt
	r.plans[plan.ID] = &copied
	result := copied
	return &result, nil
}

func (r *fakePlanRepo) GetPlanByID(_ context.Context, id string) (*entity.Plan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gets++
	plan, ok := r.plans[id]
	if !ok || plan.Status == entity.PlanStatusDeleted {
		return nil, entity.ErrPlanNotFound
	}
	copied := *plan
	return &copied, nil
}

func (r *fakePlanRepo) ListPlans(_ context.Context) ([]entity.Plan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var plans []entity.Plan
	for _, plan := range r.plans {
		if plan.Status != entity.PlanStatusDeleted {
			plans = append(plans, *plan)
		}
	}
	return plans, nil
}

func (r *fakePlanRepo) UpdatePlan(_ context.Context, plan *entity.Plan) (*entity.Plan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.plans[plan.ID]; !ok {
		return nil, entity.ErrPlanNotFound
	}
	copied := *plan
	copied.UpdatedAt = time.Now()
	r.plans[plan.ID] = &copied
	result := copied
	return &result, nil
}

func (r *fakePlanRepo) DeletePlan(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	plan, ok := r.plans[id]
	if !ok || plan.Status == entity.PlanStatusDeleted {
		return entity.ErrPlanNotFound
	}
	plan.Status = entity.PlanStatusDeleted
	return nil
}

func newTestUsecase() (*PlanUsecase, *fakePlanRepo) {
	repo := newFakePlanRepo()
	uc := NewUsecase(
		repo,
		validator.New(),
		config.PlanCacheConfig{TTL: time.Minute, CleanupInterval: time.Minute},
		formatter.NewFactory(),
		zap.NewNop(),
	)
	return uc, repo
}

func answeredSession(questions []entity.Question, answers []entity.Answer) *entity.ClarificationSession {
	return &entity.ClarificationSession{
		ID:         uuid.New().String(),
		Status:     entity.SessionStatusInProgress,
		Questions:  questions,
		Answers:    answers,
		IsComplete: true,
	}
}

func TestMaterializeGroupsTasksByQuestionKind(t *testing.T) {
	uc, _ := newTestUsecase()

	q1 := entity.Question{ID: uuid.New().String(), Kind: entity.QuestionKindOpen, Text: "What is the goal?", Required: true}
	q2 := entity.Question{ID: uuid.New().String(), Kind: entity.QuestionKindStrength, Text: "What are you good at?", Required: true}
	q3 := entity.Question{ID: uuid.New().String(), Kind: entity.QuestionKindThreat, Text: "What could derail this?", Required: false}

	base := time.Now()
	session := answeredSession(
		[]entity.Question{q1, q2, q3},
		[]entity.Answer{
			{QuestionID: q1.ID, Value: "Learn to play the piano", SubmittedAt: base},
			{QuestionID: q2.ID, Value: "Good sense of rhythm", SubmittedAt: base},
			{QuestionID: q3.ID, Value: "Busy work schedule", SubmittedAt: base},
		},
	)

	plan, err := uc.MaterializeFromSession(context.Background(), session)
	require.NoError(t, err)

	assert.Equal(t, "Learn to play the piano", plan.Title)
	assert.Equal(t, entity.PlanStatusOngoing, plan.Status)
	require.Len(t, plan.Stages, 3)

	assert.Equal(t, "Assess your position", plan.Stages[0].Title)
	assert.Equal(t, "Opportunities and risks", plan.Stages[1].Title)
	assert.Equal(t, "Core actions", plan.Stages[2].Title)
	assert.Equal(t, plan.Stages[0].ID, plan.CurrentStageID)

	require.Len(t, plan.Stages[2].Tasks, 1)
	task := plan.Stages[2].Tasks[0]
	assert.Equal(t, "Learn to play the piano", task.Title)
	require.NotNil(t, task.Description)
	assert.Equal(t, "What is the goal?", *task.Description)
	assert.Equal(t, entity.TaskPriorityHigh, task.Priority)

	// Optional question produces a medium-priority task.
	assert.Equal(t, entity.TaskPriorityMedium, plan.Stages[1].Tasks[0].Priority)
}

func TestMaterializeUsesLatestAnswerPerQuestion(t *testing.T) {
	uc, _ := newTestUsecase()

	q := entity.Question{ID: uuid.New().String(), Kind: entity.QuestionKindOpen, Text: "Goal?", Required: true}
	base := time.Now()
	session := answeredSession(
		[]entity.Question{q},
		[]entity.Answer{
			{QuestionID: q.ID, Value: "First attempt", SubmittedAt: base},
			{QuestionID: q.ID, Value: "Revised goal", SubmittedAt: base.Add(time.Second)},
		},
	)

	plan, err := uc.MaterializeFromSession(context.Background(), session)
	require.NoError(t, err)

	assert.Equal(t, "Revised goal", plan.Title)
	require.Len(t, plan.Stages, 1)
	require.Len(t, plan.Stages[0].Tasks, 1)
	assert.Equal(t, "Revised goal", plan.Stages[0].Tasks[0].Title)
}

func TestMaterializeRefinesExistingPlan(t *testing.T) {
	uc, _ := newTestUsecase()
	ctx := context.Background()

	existing, err := uc.CreatePlan(ctx, &entity.CreatePlanRequest{Title: "Original title"})
	require.NoError(t, err)

	q := entity.Question{ID: uuid.New().String(), Kind: entity.QuestionKindOpen, Text: "Goal?", Required: true}
	session := answeredSession(
		[]entity.Question{q},
		[]entity.Answer{{QuestionID: q.ID, Value: "Refined direction", SubmittedAt: time.Now()}},
	)
	session.PlanID = &existing.ID

	plan, err := uc.MaterializeFromSession(ctx, session)
	require.NoError(t, err)

	assert.Equal(t, existing.ID, plan.ID)
	assert.Equal(t, "Original title", plan.Title)
	require.Len(t, plan.Stages, 1)
}

func TestGetPlanReadsThroughCache(t *testing.T) {
	uc, repo := newTestUsecase()
	ctx := context.Background()

	created, err := uc.CreatePlan(ctx, &entity.CreatePlanRequest{Title: "Cached plan"})
	require.NoError(t, err)

	before := repo.gets
	for i := 0; i < 3; i++ {
		plan, err := uc.GetPlan(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Cached plan", plan.Title)
	}
	assert.Equal(t, before, repo.gets)
}

func TestDeletePlanInvalidatesCache(t *testing.T) {
	uc, _ := newTestUsecase()
	ctx := context.Background()

	created, err := uc.CreatePlan(ctx, &entity.CreatePlanRequest{Title: "Short-lived plan"})
	require.NoError(t, err)

	require.NoError(t, uc.DeletePlan(ctx, created.ID))

	_, err = uc.GetPlan(ctx, created.ID)
	assert.ErrorIs(t, err, entity.ErrPlanNotFound)
}

func TestExportPlanMarkdown(t *testing.T) {
	uc, _ := newTestUsecase()
	ctx := context.Background()

	created, err := uc.CreatePlan(ctx, &entity.CreatePlanRequest{Title: "Exported plan"})
	require.NoError(t, err)

	data, contentType, filename, err := uc.ExportPlan(ctx, created.ID, entity.FormatMarkdown)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Exported plan")
	assert.Equal(t, "text/markdown; charset=utf-8", contentType)
	assert.Equal(t, "plan-"+created.ID+".md", filename)

	_, _, _, err = uc.ExportPlan(ctx, created.ID, entity.ResultFormat("txt"))
	assert.ErrorIs(t, err, entity.ErrInvalidParameter)
}
