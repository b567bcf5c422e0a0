package validator

import (
	"fmt"

	"github.com/24thNight/clarify-backend/internal/entity"
	"github.com/google/uuid"
)

// ValidateStartSession validates StartSessionRequest
func (v *Validator) ValidateStartSession(req *entity.StartSessionRequest) error {
	if req.PlanID != nil && *req.PlanID != "" {
		if _, err := uuid.Parse(*req.PlanID); err != nil {
			return fmt.Errorf("%w: plan_id", entity.ErrInvalidParameter)
		}
	}
	return nil
}

// ValidateSubmitAnswer validates answer submission
func (v *Validator) ValidateSubmitAnswer(req *entity.SubmitAnswerRequest) error {
	if req.QuestionID == "" {
		return fmt.Errorf("%w: question_id", entity.ErrMissingField)
	}
	if req.Value == "" {
		return fmt.Errorf("%w: value", entity.ErrMissingField)
	}
	if len(req.Value) > v.maxAnswerLength {
		return fmt.Errorf("%w: value exceeds %d characters", entity.ErrInvalidParameter, v.maxAnswerLength)
	}
	return nil
}
