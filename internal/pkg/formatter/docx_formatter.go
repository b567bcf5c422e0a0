package formatter

import (
	"bytes"
	"fmt"

	"github.com/24thNight/clarify-backend/internal/entity"
	"github.com/unidoc/unioffice/document"
)

const (
	docxContentType   = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	docxFileExtension = ".docx"
)

type DOCXFormatter struct{}

func NewDOCXFormatter() *DOCXFormatter {
	return &DOCXFormatter{}
}

func (df *DOCXFormatter) Format(plan *entity.Plan) ([]byte, error) {
	doc := document.New()
	defer doc.Close()

	titlePar := doc.AddParagraph()
	titlePar.SetStyle("Heading1")
	titlePar.AddRun().AddText(plan.Title)

	if plan.Description != "" {
		doc.AddParagraph().AddRun().AddText(plan.Description)
	}

	statusPar := doc.AddParagraph()
	statusPar.AddRun().AddText(fmt.Sprintf("Status: %s — progress %d%%", plan.Status, plan.Progress))

	for _, stage := range plan.Stages {
		stagePar := doc.AddParagraph()
		stagePar.SetStyle("Heading2")
		stagePar.AddRun().AddText(stage.Title)

		for _, task := range stage.Tasks {
			taskPar := doc.AddParagraph()
			taskPar.AddRun().AddText("- " + taskLine(task))
			if task.Description != nil && *task.Description != "" {
				doc.AddParagraph().AddRun().AddText("  " + *task.Description)
			}
		}
	}

	var buf bytes.Buffer
	if err := doc.Save(&buf); err != nil {
		return nil, fmt.Errorf("render docx: %w", err)
	}
	return buf.Bytes(), nil
}

func (df *DOCXFormatter) ContentType() string {
	return docxContentType
}

func (df *DOCXFormatter) FileExtension() string {
	return docxFileExtension
}
