package utils

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"chemequip/internal/models"

	"github.com/go-pdf/fpdf"
)

const ReportTitle = "Chemical Equipment Report"

// PDFLayout positions are baselines in points measured up from the bottom
// edge of the page.
type PDFLayout struct {
	TitleX       float64
	TitleY       float64
	LeftX        float64
	SummaryY     float64
	SummaryStep  float64
	HeaderGap    float64
	HeaderStep   float64
	RowStep      float64
	TopY         float64
	BottomMargin float64
	Columns      [5]float64
}

var DefaultPDFLayout = PDFLayout{
	TitleX:       150,
	TitleY:       800,
	LeftX:        50,
	SummaryY:     760,
	SummaryStep:  20,
	HeaderGap:    40,
	HeaderStep:   20,
	RowStep:      15,
	TopY:         800,
	BottomMargin: 50,
	Columns:      [5]float64{50, 150, 260, 350, 450},
}

// PageSpan is the half-open range of reading indices drawn on one page.
type PageSpan struct {
	Start int
	End   int
}

func (l PDFLayout) headerY() float64 {
	return l.SummaryY - 3*l.SummaryStep - l.HeaderGap
}

func (l PDFLayout) firstRowY() float64 {
	return l.headerY() - l.HeaderStep
}

// Paginate splits rows into pages. A page break happens before a row whose
// baseline would fall below BottomMargin; the cursor then restarts at TopY.
func (l PDFLayout) Paginate(rows int) []PageSpan {
	spans := []PageSpan{{Start: 0}}
	y := l.firstRowY()

	for i := 0; i < rows; i++ {
		if y < l.BottomMargin {
			spans[len(spans)-1].End = i
			spans = append(spans, PageSpan{Start: i})
			y = l.TopY
		}
		y -= l.RowStep
	}
	spans[len(spans)-1].End = rows

	return spans
}

type PDFOptions struct {
	Layout   PDFLayout
	Compress bool
}

// WritePDFReport renders the summary and every reading to w and returns the
// number of pages written.
func WritePDFReport(w io.Writer, summary *models.EquipmentSummary, items []models.Equipment, opts PDFOptions) (int, error) {
	layout := opts.Layout
	if layout.RowStep <= 0 {
		layout = DefaultPDFLayout
	}

	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetCompression(opts.Compress)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(ReportTitle, true)
	pdf.SetCreator("chemequip", true)

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	_, pageHeight := pdf.GetPageSize()
	text := func(x, y float64, s string) {
		pdf.Text(x, pageHeight-y, tr(s))
	}

	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	text(layout.TitleX, layout.TitleY, ReportTitle)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Total Equipment: %d", summary.Total),
		fmt.Sprintf("Average Flowrate: %.2f", summary.AvgFlowrate),
		fmt.Sprintf("Average Pressure: %.2f", summary.AvgPressure),
		fmt.Sprintf("Average Temperature: %.2f", summary.AvgTemperature),
	}
	for i, line := range lines {
		text(layout.LeftX, layout.SummaryY-float64(i)*layout.SummaryStep, line)
	}

	pdf.SetFont("Helvetica", "B", 12)
	for i, heading := range []string{"Name", "Type", "Flowrate", "Pressure", "Temperature"} {
		text(layout.Columns[i], layout.headerY(), heading)
	}

	pdf.SetFont("Helvetica", "", 11)
	for page, span := range layout.Paginate(len(items)) {
		y := layout.firstRowY()
		if page > 0 {
			pdf.AddPage()
			y = layout.TopY
		}

		for _, item := range items[span.Start:span.End] {
			cells := []string{
				item.Name,
				item.Type,
				FormatReading(item.Flowrate),
				FormatReading(item.Pressure),
				FormatReading(item.Temperature),
			}
			for i, cell := range cells {
				text(layout.Columns[i], y, cell)
			}
			y -= layout.RowStep
		}
	}

	pages := pdf.PageNo()
	if err := pdf.Output(w); err != nil {
		return 0, fmt.Errorf("failed to write PDF: %w", err)
	}
	return pages, nil
}

// FormatReading prints a float the way the readings table shows it: shortest
// exact form, always with a fractional part ("10.0", "12.5").
func FormatReading(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
