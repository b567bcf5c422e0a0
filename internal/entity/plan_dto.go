package entity

type ResultFormat string

const (
	FormatMarkdown ResultFormat = "md"
	FormatPDF      ResultFormat = "pdf"
	FormatDOCX     ResultFormat = "docx"
)

func (f ResultFormat) Validate() error {
	switch f {
	case FormatMarkdown, FormatPDF, FormatDOCX:
		return nil
	default:
		return ErrInvalidParameter
	}
}

type CreatePlanRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

type UpdatePlanRequest struct {
	Title          *string     `json:"title,omitempty"`
	Description    *string     `json:"description,omitempty"`
	Status         *PlanStatus `json:"status,omitempty"`
	CurrentStageID *string     `json:"current_stage_id,omitempty"`
	Progress       *int        `json:"progress,omitempty"`
}
