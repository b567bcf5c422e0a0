package generator

import (
	"context"

	"github.com/24thNight/clarify-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// MockConnector returns a canned question set so the service can run
// without the external generator.
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
	}
}

func boolPtr(b bool) *bool { return &b }

func (m *MockConnector) GenerateQuestions(ctx context.Context, req *entity.GenerateQuestionsRequest) (
	*entity.GenerateQuestionsResponse, error,
) {
	ctxzap.Info(ctx, "[MOCK] generating clarification questions",
		zap.String("session_id", req.SessionID),
	)

	questions := []entity.GeneratedQuestion{
		{
			Text: "What outcome would make this plan a success for you?",
			Kind: entity.QuestionKindOpen,
		},
		{
			Text:    "How much time can you commit to it each week?",
			Kind:    entity.QuestionKindMultipleChoice,
			Options: []string{"Less than 2 hours", "2-5 hours", "5-10 hours", "More than 10 hours"},
		},
		{
			Text: "On a scale of 1 to 10, how familiar are you with this area already?",
			Kind: entity.QuestionKindScale,
		},
		{
			Text: "What existing skills or resources can you lean on?",
			Kind: entity.QuestionKindStrength,
		},
		{
			Text: "What has blocked you when you attempted something similar before?",
			Kind: entity.QuestionKindWeakness,
		},
		{
			Text:     "Are there upcoming events or deadlines this plan could take advantage of?",
			Kind:     entity.QuestionKindOpportunity,
			Required: boolPtr(false),
		},
		{
			Text:     "What is most likely to derail the plan, and can it be mitigated?",
			Kind:     entity.QuestionKindThreat,
			Required: boolPtr(false),
		},
	}

	if req.MaxQuestions > 0 && req.MaxQuestions < len(questions) {
		questions = questions[:req.MaxQuestions]
	}

	ctxzap.Info(ctx, "[MOCK] questions generated", zap.Int("question_count", len(questions)))

	return &entity.GenerateQuestionsResponse{Questions: questions}, nil
}
