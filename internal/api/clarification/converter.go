package clarification

import "github.com/24thNight/clarify-backend/internal/entity"

// toSessionDTO converts a ClarificationSession entity to its API shape
func toSessionDTO(session *entity.ClarificationSession) *entity.SessionDTO {
	questions := make([]entity.QuestionDTO, 0, len(session.Questions))
	for _, q := range session.Questions {
		questions = append(questions, entity.QuestionDTO{
			ID:       q.ID,
			Position: q.Position,
			Kind:     q.Kind,
			Text:     q.Text,
			Options:  q.Options,
			Required: q.Required,
		})
	}

	answers := make([]entity.AnswerDTO, 0, len(session.Answers))
	for _, a := range session.Answers {
		answers = append(answers, entity.AnswerDTO{
			QuestionID:  a.QuestionID,
			Value:       a.Value,
			SubmittedAt: a.SubmittedAt,
		})
	}

	return &entity.SessionDTO{
		ID:                   session.ID,
		PlanID:               session.PlanID,
		Status:               session.Status,
		CurrentQuestionIndex: session.CurrentQuestionIndex,
		Questions:            questions,
		Answers:              answers,
		IsComplete:           session.IsComplete,
		Error:                session.Error,
		CreatedAt:            session.CreatedAt,
		UpdatedAt:            session.UpdatedAt,
		CompletedAt:          session.CompletedAt,
	}
}
