package report

import (
	"bytes"
	"fmt"
	"math"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/holinflow/hflow/internal/cli"
	"github.com/holinflow/hflow/internal/model"
	"github.com/holinflow/hflow/internal/projection"
)

// Page geometry in mm (A4 portrait).
const (
	pageWidth    = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 20.0
	contentWidth = pageWidth - marginLeft - marginRight

	chartHeight = 70.0
)

// ProjectionInput is everything the projection PDF shows.
type ProjectionInput struct {
	Request   model.PlanRequest
	Summary   model.ReportSummary
	Series    []model.ProjectionPoint
	Generated time.Time
}

// ProjectionPDF renders a one-page growth projection. The core PDF fonts are
// Latin-1 only, so labels are in English and amounts are in units of
// 10,000 KRW.
func ProjectionPDF(in ProjectionInput) ([]byte, error) {
	if len(in.Series) == 0 {
		return nil, fmt.Errorf("projection pdf: empty series")
	}
	if in.Generated.IsZero() {
		in.Generated = time.Now()
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(marginLeft, marginTop, marginRight)
	pdf.SetAutoPageBreak(true, marginBottom)
	pdf.SetCreationDate(in.Generated)
	pdf.SetTitle("HolinFlow Projection", false)
	pdf.AddPage()

	years := in.Series[len(in.Series)-1].Year

	pdf.SetFont("Helvetica", "B", 20)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(contentWidth, 12, "HolinFlow Asset Growth Projection", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(100, 100, 100)
	pdf.CellFormat(contentWidth, 6, "Generated: "+in.Generated.Format("2 January 2006"), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	drawSummary(pdf, in, years)
	pdf.Ln(6)
	drawChart(pdf, in.Series)
	pdf.Ln(6)
	drawTable(pdf, in.Series)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("projection pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func drawSummary(pdf *fpdf.Fpdf, in ProjectionInput, years int) {
	rows := [][2]string{
		{"Monthly income goal", cli.FormatInt(in.Request.MonthlyGoal)},
		{"Risk preference", in.Request.RiskLevel.English()},
		{"Current assets", cli.FormatInt(in.Summary.CurrentAssets)},
		{"Expected annual return", cli.FormatPct2(in.Summary.WeightedAnnualReturn)},
		{fmt.Sprintf("Projected value after %d years", years), cli.FormatInt(projection.FinalValue(in.Series))},
	}

	pdf.SetFillColor(0, 51, 102)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(contentWidth, 8, "Summary (amounts in 10,000 KRW)", "1", 1, "L", true, 0, "")

	pdf.SetTextColor(30, 30, 30)
	pdf.SetFont("Helvetica", "", 10)
	for i, r := range rows {
		if i%2 == 0 {
			pdf.SetFillColor(245, 247, 250)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		pdf.CellFormat(contentWidth*0.6, 7, r[0], "LB", 0, "L", true, 0, "")
		pdf.CellFormat(contentWidth*0.4, 7, r[1], "RB", 1, "R", true, 0, "")
	}
}

func drawChart(pdf *fpdf.Fpdf, series []model.ProjectionPoint) {
	hi := 0.0
	for _, p := range series {
		if !math.IsNaN(p.Value) && !math.IsInf(p.Value, 0) && p.Value > hi {
			hi = p.Value
		}
	}
	if hi <= 0 {
		hi = 1
	}

	top := pdf.GetY()
	base := top + chartHeight
	slot := contentWidth / float64(len(series))
	barW := slot * 0.7

	pdf.SetDrawColor(200, 200, 200)
	pdf.Line(marginLeft, base, marginLeft+contentWidth, base)

	labeled := make(map[int]bool)
	for _, y := range projection.TickYears(series) {
		labeled[y] = true
	}

	pdf.SetFillColor(67, 133, 190)
	pdf.SetFont("Helvetica", "", 7)
	pdf.SetTextColor(90, 90, 90)
	for i, p := range series {
		x := marginLeft + float64(i)*slot + (slot-barW)/2
		h := 0.0
		if p.Value > 0 && !math.IsInf(p.Value, 0) {
			h = p.Value / hi * (chartHeight - 4)
		}
		if h > 0 {
			pdf.Rect(x, base-h, barW, h, "F")
		}
		if labeled[p.Year] {
			pdf.SetXY(marginLeft+float64(i)*slot, base+1)
			pdf.CellFormat(slot, 4, fmt.Sprintf("%dy", p.Year), "", 0, "C", false, 0, "")
		}
	}
	pdf.SetXY(marginLeft, base+6)
}

func drawTable(pdf *fpdf.Fpdf, series []model.ProjectionPoint) {
	colW := contentWidth / 2

	pdf.SetFillColor(70, 90, 110)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(colW, 7, "Year", "1", 0, "C", true, 0, "")
	pdf.CellFormat(colW, 7, "Value (10,000 KRW)", "1", 1, "C", true, 0, "")

	pdf.SetTextColor(30, 30, 30)
	pdf.SetFont("Helvetica", "", 9)
	for i, p := range series {
		if i%2 == 0 {
			pdf.SetFillColor(250, 250, 250)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		pdf.CellFormat(colW, 6, fmt.Sprintf("%d", p.Year), "LR", 0, "C", true, 0, "")
		pdf.CellFormat(colW, 6, cli.FormatInt(p.Value), "LR", 1, "R", true, 0, "")
	}
	pdf.CellFormat(contentWidth, 0, "", "T", 1, "", false, 0, "")
}
