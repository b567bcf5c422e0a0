package formatter

import (
	"bytes"
	"fmt"

	"github.com/24thNight/clarify-backend/internal/entity"
)

const (
	markdownContentType   = "text/markdown; charset=utf-8"
	markdownFileExtension = ".md"
)

type MarkdownFormatter struct{}

func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

func (mf *MarkdownFormatter) Format(plan *entity.Plan) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", plan.Title)
	if plan.Description != "" {
		fmt.Fprintf(&buf, "%s\n\n", plan.Description)
	}
	fmt.Fprintf(&buf, "Status: %s — progress %d%%\n\n", plan.Status, plan.Progress)

	for _, stage := range plan.Stages {
		fmt.Fprintf(&buf, "## %s\n\n", stage.Title)
		for _, task := range stage.Tasks {
			fmt.Fprintf(&buf, "- %s\n", taskLine(task))
			if task.Description != nil && *task.Description != "" {
				fmt.Fprintf(&buf, "  %s\n", *task.Description)
			}
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

func (mf *MarkdownFormatter) ContentType() string {
	return markdownContentType
}

func (mf *MarkdownFormatter) FileExtension() string {
	return markdownFileExtension
}
