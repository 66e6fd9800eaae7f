package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/rs/zerolog/log"

	"github.com/yourusername/tickerlens/internal/analysis"
	"github.com/yourusername/tickerlens/internal/view"
)

const (
	pdfFont       = "Arial"
	pdfPageWidth  = 190.0 // A4 minus 10mm margins
	pdfLabelWidth = 58.0
	pdfRowHeight  = 6.0
)

// pdfDoc is a thin writer over fpdf for view tables and narratives.
type pdfDoc struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func newPDFDoc(title string) *pdfDoc {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 12)
	pdf.SetTitle(title, true)
	pdf.SetCreator("tickerlens", true)
	pdf.AddPage()

	d := &pdfDoc{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
	pdf.SetFont(pdfFont, "B", 16)
	pdf.CellFormat(0, 10, d.tr(title), "", 1, "L", false, 0, "")
	pdf.Ln(2)
	return d
}

func (d *pdfDoc) heading(text string) {
	d.pdf.Ln(3)
	d.pdf.SetFont(pdfFont, "B", 12)
	r, g, b := view.RGB(0)
	d.pdf.SetTextColor(r, g, b)
	d.pdf.CellFormat(0, 8, d.tr(text), "", 1, "L", false, 0, "")
	d.pdf.SetTextColor(0, 0, 0)
}

func (d *pdfDoc) paragraph(text string, style string) {
	d.pdf.SetFont(pdfFont, style, 9)
	d.pdf.MultiCell(0, 5, d.tr(text), "", "L", false)
}

func (d *pdfDoc) fields(fields []view.Field) {
	for _, f := range fields {
		d.pdf.SetFont(pdfFont, "B", 9)
		d.pdf.CellFormat(35, 5, d.tr(f.Label+":"), "", 0, "L", false, 0, "")
		d.pdf.SetFont(pdfFont, "", 9)
		d.pdf.CellFormat(0, 5, d.tr(f.Value), "", 1, "L", false, 0, "")
	}
}

func (d *pdfDoc) table(t view.Table) {
	if t.Title != "" {
		d.pdf.SetFont(pdfFont, "B", 10)
		d.pdf.CellFormat(0, 7, d.tr(t.Title), "", 1, "L", false, 0, "")
	}

	cols := len(t.Columns)
	if cols == 0 {
		cols = 1
	}
	colWidth := (pdfPageWidth - pdfLabelWidth) / float64(cols)

	if len(t.Columns) > 0 {
		d.pdf.SetFont(pdfFont, "B", 8)
		d.pdf.SetFillColor(233, 236, 239)
		d.pdf.CellFormat(pdfLabelWidth, pdfRowHeight, d.tr(t.LabelHeader), "1", 0, "L", true, 0, "")
		for _, c := range t.Columns {
			d.pdf.CellFormat(colWidth, pdfRowHeight, d.tr(d.fit(c, colWidth)), "1", 0, "C", true, 0, "")
		}
		d.pdf.Ln(-1)
	}

	for _, row := range t.Rows {
		switch row.Kind {
		case view.RowSection:
			d.pdf.SetFont(pdfFont, "B", 8)
			d.pdf.SetFillColor(241, 243, 245)
			d.pdf.CellFormat(pdfPageWidth, pdfRowHeight, d.tr(row.Label), "1", 1, "L", true, 0, "")
			continue
		case view.RowEmphasis:
			d.pdf.SetFont(pdfFont, "B", 8)
		default:
			d.pdf.SetFont(pdfFont, "", 8)
		}
		d.pdf.CellFormat(pdfLabelWidth, pdfRowHeight, d.tr(row.Label), "1", 0, "L", false, 0, "")
		for _, cell := range row.Cells {
			d.cellColor(cell.Class)
			d.pdf.CellFormat(colWidth, pdfRowHeight, d.tr(cell.Text), "1", 0, "R", false, 0, "")
			d.pdf.SetTextColor(0, 0, 0)
		}
		d.pdf.Ln(-1)
	}
	d.pdf.Ln(2)
}

func (d *pdfDoc) cellColor(class string) {
	switch class {
	case "positive":
		r, g, b := view.RGB(2)
		d.pdf.SetTextColor(r, g, b)
	case "negative":
		r, g, b := view.RGB(1)
		d.pdf.SetTextColor(r, g, b)
	}
}

// fit shortens s until it fits in width millimetres at the current font.
func (d *pdfDoc) fit(s string, width float64) string {
	r := []rune(s)
	for len(r) > 1 && d.pdf.GetStringWidth(string(r)) > width-2 {
		r = r[:len(r)-1]
	}
	return string(r)
}

func (d *pdfDoc) sections(secs []view.Section) {
	for _, s := range secs {
		d.heading(s.Title)
		if s.Empty() {
			d.paragraph(s.Placeholder, "I")
			continue
		}
		for _, t := range s.Tables {
			d.table(t)
		}
	}
}

func (d *pdfDoc) insights(summary string, points []analysis.Insight, disclaimer string) {
	if summary != "" {
		d.paragraph(summary, "")
		d.pdf.Ln(1)
	}
	for _, p := range points {
		if p.Title != "" {
			d.pdf.SetFont(pdfFont, "B", 9)
			d.pdf.MultiCell(0, 5, d.tr(p.Title), "", "L", false)
		}
		d.paragraph(p.Text, "")
		d.pdf.Ln(1)
	}
	d.paragraph(disclaimer, "I")
}

func (d *pdfDoc) bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("writing PDF output: %w", err)
	}
	log.Debug().Int("pdf_size", buf.Len()).Msg("PDF generated")
	return buf.Bytes(), nil
}

// CompanyPDF renders a single-company report.
func CompanyPDF(p *view.CompanyPage) ([]byte, error) {
	d := newPDFDoc(p.Name + " (" + p.Symbol + ")")

	if p.Profile != nil {
		d.paragraph(p.Profile.Price+"  "+p.Profile.Change, "B")
		d.pdf.Ln(1)
		d.fields(p.Profile.Fields)
		if p.Profile.Description != "" {
			d.pdf.Ln(2)
			d.paragraph(p.Profile.Description, "")
		}
	} else {
		d.paragraph(p.ProfileNote, "I")
	}

	d.sections(p.Sections)

	d.heading("Smart Analysis")
	if n := p.Narrative; n != nil {
		d.insights(n.Summary, n.Insights, n.Disclaimer)
	} else {
		d.paragraph(p.NarrativeNote, "I")
	}

	return d.bytes()
}

// ComparisonPDF renders a multi-company report.
func ComparisonPDF(p *view.ComparisonPage) ([]byte, error) {
	d := newPDFDoc("Comparison: " + strings.Join(p.Symbols, ", "))

	for _, w := range p.Warnings {
		d.paragraph(w, "I")
	}
	d.table(p.Profiles)
	d.sections(p.Sections)

	d.heading("Comparative Analysis")
	if c := p.Comparison; c != nil {
		d.insights(c.Intro, c.Points, c.Disclaimer)
	} else {
		d.paragraph(p.ComparisonNote, "I")
	}

	return d.bytes()
}
