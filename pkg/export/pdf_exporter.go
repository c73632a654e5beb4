package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const (
	pageWidthMM   = 210.0
	pageMarginMM  = 10.0
	headerCellMM  = 8.0
	bodyCellMM    = 7.0
	cellPaddingMM = 2.0
)

// Document is a titled tabular PDF report.
type Document struct {
	Title   string
	Summary []string
	Data    Dataset
}

// PDFExporter renders documents into an A4 portrait PDF table.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a PDF with a centered title, summary lines and a weighted-width table.
func (e *PDFExporter) Render(doc Document) ([]byte, error) {
	if len(doc.Data.Columns) == 0 {
		return nil, fmt.Errorf("pdf requires at least one column")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMarginMM, 15, pageMarginMM)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if doc.Title != "" {
		pdf.SetFont("Arial", "B", 16)
		pdf.CellFormat(0, 10, tr(doc.Title), "", 1, "C", false, 0, "")
		pdf.Ln(4)
	}
	if len(doc.Summary) > 0 {
		pdf.SetFont("Arial", "", 11)
		for _, line := range doc.Summary {
			pdf.CellFormat(0, 7, tr(line), "", 1, "L", false, 0, "")
		}
		pdf.Ln(4)
	}

	widths := columnWidths(doc.Data.Columns, pageWidthMM-2*pageMarginMM)

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for i, col := range doc.Data.Columns {
		pdf.CellFormat(widths[i], headerCellMM, tr(col.Header), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range doc.Data.Rows {
		for i, col := range doc.Data.Columns {
			value := fitText(pdf, tr(row[col.Key]), widths[i]-cellPaddingMM)
			pdf.CellFormat(widths[i], bodyCellMM, value, "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func columnWidths(cols []Column, total float64) []float64 {
	sum := 0.0
	weights := make([]float64, len(cols))
	for i, col := range cols {
		w := col.Weight
		if w <= 0 {
			w = 1
		}
		weights[i] = w
		sum += w
	}
	widths := make([]float64, len(cols))
	for i, w := range weights {
		widths[i] = total * w / sum
	}
	return widths
}

// fitText truncates value with an ellipsis so it fits in width at the current font.
func fitText(pdf *gofpdf.Fpdf, value string, width float64) string {
	if pdf.GetStringWidth(value) <= width {
		return value
	}
	runes := []rune(value)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := string(runes) + "..."
		if pdf.GetStringWidth(candidate) <= width {
			return candidate
		}
	}
	return ""
}
