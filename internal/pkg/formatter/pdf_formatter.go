package formatter

import (
	"bytes"
	"fmt"
	"os"

	"github.com/24thNight/clarify-backend/internal/entity"
	"github.com/jung-kurt/gofpdf"
)

const (
	pdfContentType   = "application/pdf"
	pdfFileExtension = ".pdf"

	// pdfFontName is the internal name used by gofpdf for the UTF-8 capable font.
	pdfFontName = "DejaVuSans"

	// In the container we copy fonts next to the binary under ./ttf;
	// the source-relative path covers `go run` from the repo root.
	pdfFontRuntimePath = "ttf/DejaVuSans.ttf"
	pdfFontSourcePath  = "internal/pkg/formatter/ttf/DejaVuSans.ttf"
)

type PDFFormatter struct{}

func NewPDFFormatter() *PDFFormatter {
	return &PDFFormatter{}
}

func resolveFontPath() string {
	if _, err := os.Stat(pdfFontRuntimePath); err == nil {
		return pdfFontRuntimePath
	}
	if _, err := os.Stat(pdfFontSourcePath); err == nil {
		return pdfFontSourcePath
	}
	return ""
}

func (pf *PDFFormatter) Format(plan *entity.Plan) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	fontName := "Arial"
	if fontPath := resolveFontPath(); fontPath != "" {
		pdf.AddUTF8Font(pdfFontName, "", fontPath)
		pdf.AddUTF8Font(pdfFontName, "B", fontPath)
		fontName = pdfFontName
	}

	pdf.SetFont(fontName, "B", 18)
	pdf.MultiCell(0, 10, plan.Title, "", "L", false)
	pdf.Ln(2)

	if plan.Description != "" {
		pdf.SetFont(fontName, "", 11)
		pdf.MultiCell(0, 6, plan.Description, "", "L", false)
		pdf.Ln(2)
	}

	pdf.SetFont(fontName, "", 10)
	pdf.MultiCell(0, 6, fmt.Sprintf("Status: %s — progress %d%%", plan.Status, plan.Progress), "", "L", false)
	pdf.Ln(4)

	for _, stage := range plan.Stages {
		pdf.SetFont(fontName, "B", 14)
		pdf.MultiCell(0, 8, stage.Title, "", "L", false)
		pdf.Ln(1)

		pdf.SetFont(fontName, "", 11)
		for _, task := range stage.Tasks {
			pdf.MultiCell(0, 6, "  - "+taskLine(task), "", "L", false)
			if task.Description != nil && *task.Description != "" {
				pdf.MultiCell(0, 6, "    "+*task.Description, "", "L", false)
			}
		}
		pdf.Ln(3)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (pf *PDFFormatter) ContentType() string {
	return pdfContentType
}

func (pf *PDFFormatter) FileExtension() string {
	return pdfFileExtension
}
