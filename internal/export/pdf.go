package export

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
)

type pdfColor struct{ R, G, B int }

var (
	headingColor = pdfColor{R: 68, G: 114, B: 196}
	mutedColor   = pdfColor{R: 110, G: 110, B: 110}
)

const fontFamily = "Arial"

func (s *Sink) newPDF(orientation string) (*gofpdf.Fpdf, func(string) string) {
	pdf := gofpdf.New(orientation, "mm", s.pageSize, "")
	pdf.SetMargins(18, 20, 18)
	pdf.SetAutoPageBreak(true, 20)
	// Core fonts are cp1252; translate UTF-8 input rather than emit mojibake.
	return pdf, pdf.UnicodeTranslatorFromDescriptor("")
}

func (s *Sink) renderPDF(w io.Writer, doc Document) error {
	pdf, tr := s.newPDF("P")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(fontFamily, "", 8)
		pdf.SetTextColor(mutedColor.R, mutedColor.G, mutedColor.B)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	pdf.SetFont(fontFamily, "B", 20)
	pdf.SetTextColor(0, 0, 0)
	pdf.MultiCell(0, 10, tr(doc.Title), "", "L", false)
	if doc.Subtitle != "" {
		pdf.SetFont(fontFamily, "", 12)
		pdf.SetTextColor(mutedColor.R, mutedColor.G, mutedColor.B)
		pdf.MultiCell(0, 7, tr(doc.Subtitle), "", "L", false)
	}
	pdf.SetFont(fontFamily, "", 9)
	pdf.CellFormat(0, 6, "Generated "+s.now().Format("2006-01-02 15:04"), "", 1, "L", false, 0, "")
	pdf.Ln(6)

	for _, section := range doc.Sections {
		pdf.SetFont(fontFamily, "B", 13)
		pdf.SetTextColor(headingColor.R, headingColor.G, headingColor.B)
		pdf.MultiCell(0, 8, tr(section.Heading), "", "L", false)
		pdf.SetFont(fontFamily, "", 11)
		pdf.SetTextColor(0, 0, 0)
		for _, line := range section.Lines {
			pdf.MultiCell(0, 6, tr(line), "", "L", false)
		}
		pdf.Ln(4)
	}
	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}

// renderDeck lays out a title slide followed by one landscape slide per
// section.
func (s *Sink) renderDeck(w io.Writer, doc Document) error {
	pdf, tr := s.newPDF("L")
	pageW, pageH := pdf.GetPageSize()

	pdf.AddPage()
	pdf.SetFillColor(headingColor.R, headingColor.G, headingColor.B)
	pdf.Rect(0, 0, pageW, pageH, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetY(pageH / 3)
	pdf.SetFont(fontFamily, "B", 32)
	pdf.MultiCell(0, 14, tr(doc.Title), "", "C", false)
	if doc.Subtitle != "" {
		pdf.SetFont(fontFamily, "", 16)
		pdf.MultiCell(0, 9, tr(doc.Subtitle), "", "C", false)
	}

	for idx, section := range doc.Sections {
		pdf.AddPage()
		pdf.SetFillColor(headingColor.R, headingColor.G, headingColor.B)
		pdf.Rect(0, 0, pageW, 6, "F")
		pdf.SetY(18)
		pdf.SetFont(fontFamily, "B", 24)
		pdf.SetTextColor(headingColor.R, headingColor.G, headingColor.B)
		pdf.MultiCell(0, 12, tr(section.Heading), "", "L", false)
		pdf.Ln(4)
		pdf.SetFont(fontFamily, "", 15)
		pdf.SetTextColor(30, 30, 30)
		for _, line := range section.Lines {
			pdf.MultiCell(0, 9, tr("- "+line), "", "L", false)
		}
		pdf.SetY(pageH - 14)
		pdf.SetFont(fontFamily, "", 9)
		pdf.SetTextColor(mutedColor.R, mutedColor.G, mutedColor.B)
		pdf.CellFormat(0, 6, fmt.Sprintf("%d / %d", idx+1, len(doc.Sections)), "", 0, "R", false, 0, "")
	}
	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}
