package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"taskboard/internal/models"
)

// Generator renders task reports; an interface so handlers can be tested
// without producing real PDFs.
type Generator interface {
	GenerateTaskReport(summary models.TaskSummary, tasks []models.Task) ([]byte, error)
}

type ReportGenerator struct{}

func NewReportGenerator() *ReportGenerator {
	return &ReportGenerator{}
}

func (g *ReportGenerator) GenerateTaskReport(summary models.TaskSummary, tasks []models.Task) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Task report", false)
	pdf.SetAuthor("Taskboard", false)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, "Task report", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 7, "Generated "+time.Now().Format("2006-01-02 15:04"), "", 1, "C", false, 0, "")
	g.hr(pdf)
	pdf.Ln(3)

	g.sectionTitle(pdf, "Summary")
	g.kvLine(pdf, "Pending", fmt.Sprintf("%d", summary.Pending))
	g.kvLine(pdf, "Completed", fmt.Sprintf("%d", summary.Completed))
	g.kvLine(pdf, "Cancelled", fmt.Sprintf("%d", summary.Cancelled))
	g.kvLine(pdf, "Total", fmt.Sprintf("%d", summary.Total))
	pdf.Ln(2)
	g.hr(pdf)

	g.sectionTitle(pdf, "Tasks")
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(15, 7, "ID", "1", 0, "C", false, 0, "")
	pdf.CellFormat(85, 7, "Title", "1", 0, "L", false, 0, "")
	pdf.CellFormat(30, 7, "Status", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 7, "Due", "1", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, t := range tasks {
		title := t.Title
		if len(title) > 45 {
			title = title[:42] + "..."
		}
		pdf.CellFormat(15, 7, fmt.Sprintf("%d", t.ID), "1", 0, "C", false, 0, "")
		pdf.CellFormat(85, 7, title, "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 7, t.Status.Label(), "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 7, t.DueDate.Format("2006-01-02 15:04"), "1", 1, "C", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *ReportGenerator) sectionTitle(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
}

func (g *ReportGenerator) kvLine(pdf *gofpdf.Fpdf, key, value string) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(45, 6, key, "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, value, "", 1, "L", false, 0, "")
}

func (g *ReportGenerator) hr(pdf *gofpdf.Fpdf) {
	x, y := pdf.GetX(), pdf.GetY()
	pdf.SetDrawColor(180, 180, 180)
	pdf.Line(20, y+1, 190, y+1)
	pdf.SetXY(x, y+3)
}
