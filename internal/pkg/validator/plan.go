package validator

import (
	"fmt"

	"github.com/24thNight/clarify-backend/internal/entity"
)

// ValidateCreatePlan validates CreatePlanRequest
func (v *Validator) ValidateCreatePlan(req *entity.CreatePlanRequest) error {
	if req.Title == "" {
		return fmt.Errorf("%w: title", entity.ErrMissingField)
	}
	if len(req.Title) > v.maxTitleLength {
		return fmt.Errorf("%w: title exceeds %d characters", entity.ErrInvalidParameter, v.maxTitleLength)
	}
	return nil
}

// ValidateUpdatePlan validates UpdatePlanRequest
func (v *Validator) ValidateUpdatePlan(req *entity.UpdatePlanRequest) error {
	if req.Title != nil && *req.Title == "" {
		return fmt.Errorf("%w: title", entity.ErrMissingField)
	}
	if req.Title != nil && len(*req.Title) > v.maxTitleLength {
		return fmt.Errorf("%w: title exceeds %d characters", entity.ErrInvalidParameter, v.maxTitleLength)
	}
	if req.Progress != nil && (*req.Progress < 0 || *req.Progress > 100) {
		return fmt.Errorf("%w: progress must be between 0 and 100", entity.ErrInvalidParameter)
	}
	if req.Status != nil {
		switch *req.Status {
		case entity.PlanStatusOngoing, entity.PlanStatusCompleted, entity.PlanStatusDeleted:
		default:
			return fmt.Errorf("%w: status", entity.ErrInvalidParameter)
		}
	}
	return nil
}

// ValidateExportFormat validates a plan export format
func (v *Validator) ValidateExportFormat(format entity.ResultFormat) error {
	if err := format.Validate(); err != nil {
		return fmt.Errorf("%w: format", entity.ErrInvalidParameter)
	}
	return nil
}
