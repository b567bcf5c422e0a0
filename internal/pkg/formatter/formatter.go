package formatter

import (
	"fmt"

	"github.com/24thNight/clarify-backend/internal/entity"
)

type Formatter interface {
	Format(plan *entity.Plan) ([]byte, error)
	ContentType() string
	FileExtension() string
}

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Create(format entity.ResultFormat) (Formatter, error) {
	switch format {
	case entity.FormatMarkdown:
		return NewMarkdownFormatter(), nil
	case entity.FormatPDF:
		return NewPDFFormatter(), nil
	case entity.FormatDOCX:
		return NewDOCXFormatter(), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

func taskLine(task entity.Task) string {
	marker := " "
	if task.Completed {
		marker = "x"
	}
	return fmt.Sprintf("[%s] %s (%s)", marker, task.Title, task.Priority)
}
