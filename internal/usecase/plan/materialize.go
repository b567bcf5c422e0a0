package plan

import (
	"context"
	"fmt"

	"github.com/24thNight/clarify-backend/internal/entity"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const maxTaskTitleLen = 80

// Stage titles, in presentation order.
const (
	stagePosition     = "Assess your position"
	stageEnvironment  = "Opportunities and risks"
	stageCoreActions  = "Core actions"
	defaultPlanTitle  = "New plan"
	maxPlanTitleRunes = 60
)

// MaterializeFromSession converts an answered clarification session into a
// plan. Each answered question becomes a task; SWOT-style question kinds
// decide which stage the task lands in. When the session refines an existing
// plan, its stages are rebuilt in place.
func (uc *PlanUsecase) MaterializeFromSession(ctx context.Context, session *entity.ClarificationSession) (*entity.Plan, error) {
	stages := buildStages(session)

	currentStageID := ""
	if len(stages) > 0 {
		currentStageID = stages[0].ID
	}

	if session.PlanID != nil && *session.PlanID != "" {
		existing, err := uc.planRepo.GetPlanByID(ctx, *session.PlanID)
		if err != nil {
			return nil, fmt.Errorf("get plan being refined: %w", err)
		}

		existing.Stages = stages
		existing.CurrentStageID = currentStageID
		existing.Progress = 0
		existing.Status = entity.PlanStatusOngoing

		updated, err := uc.planRepo.UpdatePlan(ctx, existing)
		if err != nil {
			return nil, fmt.Errorf("update refined plan: %w", err)
		}

		uc.cache.SetDefault(updated.ID, updated)

		ctxzap.Info(ctx, "plan refined from session",
			zap.String("plan_id", updated.ID),
			zap.String("session_id", session.ID),
		)

		return updated, nil
	}

	plan := &entity.Plan{
		ID:             uuid.New().String(),
		Title:          derivePlanTitle(session),
		CurrentStageID: currentStageID,
		Stages:         stages,
		Status:         entity.PlanStatusOngoing,
	}

	created, err := uc.planRepo.CreatePlan(ctx, plan)
	if err != nil {
		return nil, fmt.Errorf("create materialized plan: %w", err)
	}

	uc.cache.SetDefault(created.ID, created)

	ctxzap.Info(ctx, "plan materialized from session",
		zap.String("plan_id", created.ID),
		zap.String("session_id", session.ID),
		zap.Int("stage_count", len(created.Stages)),
	)

	return created, nil
}

func buildStages(session *entity.ClarificationSession) []entity.PlanStage {
	latest := latestAnswers(session)

	buckets := map[string][]entity.Task{}
	for _, question := range session.Questions {
		answer, ok := latest[question.ID]
		if !ok {
			continue
		}

		priority := entity.TaskPriorityMedium
		if question.Required {
			priority = entity.TaskPriorityHigh
		}

		description := question.Text
		task := entity.Task{
			ID:          uuid.New().String(),
			Title:       truncate(answer.Value, maxTaskTitleLen),
			Description: &description,
			Status:      entity.TaskStatusActive,
			Priority:    priority,
		}

		title := stageTitleFor(question.Kind)
		buckets[title] = append(buckets[title], task)
	}

	var stages []entity.PlanStage
	for _, title := range []string{stagePosition, stageEnvironment, stageCoreActions} {
		tasks, ok := buckets[title]
		if !ok {
			continue
		}
		stages = append(stages, entity.PlanStage{
			ID:    uuid.New().String(),
			Title: title,
			Tasks: tasks,
		})
	}

	return stages
}

// latestAnswers picks the newest answer per question, since answers are
// append-only and resubmissions supersede earlier entries.
func latestAnswers(session *entity.ClarificationSession) map[string]entity.Answer {
	latest := make(map[string]entity.Answer, len(session.Questions))
	for _, answer := range session.Answers {
		current, ok := latest[answer.QuestionID]
		if !ok || answer.SubmittedAt.After(current.SubmittedAt) {
			latest[answer.QuestionID] = answer
		}
	}
	return latest
}

func stageTitleFor(kind entity.QuestionKind) string {
	switch kind {
	case entity.QuestionKindStrength, entity.QuestionKindWeakness:
		return stagePosition
	case entity.QuestionKindOpportunity, entity.QuestionKindThreat:
		return stageEnvironment
	default:
		return stageCoreActions
	}
}

// derivePlanTitle uses the latest answer to the first open question, falling
// back to a generic title.
func derivePlanTitle(session *entity.ClarificationSession) string {
	latest := latestAnswers(session)
	for _, question := range session.Questions {
		if question.Kind != entity.QuestionKindOpen {
			continue
		}
		if answer, ok := latest[question.ID]; ok && answer.Value != "" {
			return truncate(answer.Value, maxPlanTitleRunes)
		}
	}
	return defaultPlanTitle
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
