package pdf

import (
	"fmt"
	"io"
	"os"

	"github.com/jung-kurt/gofpdf"

	"taskboard/internal/analytics"
)

// Generator renders the analytics report (handy to fake in handler tests).
type Generator interface {
	AnalyticsReport(w io.Writer, owner string, r *analytics.Report) error
}

// ReportGenerator draws reports with gofpdf. With a TTF font path the text is
// rendered as UTF-8; otherwise the core Helvetica font is used.
type ReportGenerator struct {
	FontPath string
	fontName string
}

func NewReportGenerator(fontPath string) *ReportGenerator {
	g := &ReportGenerator{FontPath: fontPath, fontName: "Helvetica"}
	if fontPath != "" {
		if _, err := os.Stat(fontPath); err == nil {
			g.fontName = "ReportFont"
		} else {
			g.FontPath = ""
		}
	}
	return g
}

func (g *ReportGenerator) AnalyticsReport(w io.Writer, owner string, r *analytics.Report) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Taskboard analytics", true)
	pdf.SetAuthor("Taskboard", true)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	g.addFont(pdf)
	tr := g.translator(pdf)
	pdf.AddPage()

	// заголовок
	pdf.SetFont(g.fontName, "B", 18)
	pdf.CellFormat(0, 10, tr("Analytics report"), "", 1, "C", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 7, tr(fmt.Sprintf("%s, %s", owner, r.GeneratedAt.Format("02.01.2006 15:04"))), "", 1, "C", false, 0, "")
	g.hr(pdf)

	ov := r.Overview
	g.sectionTitle(pdf, tr("Overview"))
	g.kvLine(pdf, tr("Projects"), fmt.Sprint(ov.TotalProjects))
	g.kvLine(pdf, tr("Tasks"), fmt.Sprint(ov.Total))
	g.kvLine(pdf, tr("Completed"), fmt.Sprint(ov.Completed))
	g.kvLine(pdf, tr("In progress"), fmt.Sprint(ov.InProgress))
	g.kvLine(pdf, tr("To do"), fmt.Sprint(ov.Todo))
	g.kvLine(pdf, tr("Completion"), fmt.Sprintf("%d%%", ov.CompletionRate))
	g.kvLine(pdf, tr("Priority"), fmt.Sprintf("high %d / medium %d / low %d",
		ov.ByPriority.High, ov.ByPriority.Medium, ov.ByPriority.Low))
	g.hr(pdf)

	g.sectionTitle(pdf, tr("Completed in the last 7 days"))
	for _, d := range r.Productivity {
		g.kvLine(pdf, tr(d.Name+" "+d.Date), fmt.Sprint(d.Count))
	}
	g.hr(pdf)

	g.sectionTitle(pdf, tr("Projects"))
	g.projectTable(pdf, tr, r.Projects)
	g.hr(pdf)

	g.sectionTitle(pdf, tr("Recent activity"))
	if len(ov.RecentActivity) == 0 {
		pdf.CellFormat(0, 6, tr("No tasks yet."), "", 1, "L", false, 0, "")
	}
	for _, t := range ov.RecentActivity {
		line := fmt.Sprintf("#%d %s [%s] %s, %s", t.ID, t.Title, t.Status, t.ProjectName,
			t.UpdatedAt.In(r.GeneratedAt.Location()).Format("02.01.2006 15:04"))
		pdf.MultiCell(0, 6, tr(line), "", "L", false)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

func (g *ReportGenerator) projectTable(pdf *gofpdf.Fpdf, tr func(string) string, rows []analytics.ProjectStats) {
	widths := []float64{70, 20, 20, 25, 15, 20}
	head := []string{"Project", "Total", "Done", "In progress", "To do", "Progress"}
	pdf.SetFont(g.fontName, "B", 10)
	for i, h := range head {
		pdf.CellFormat(widths[i], 7, tr(h), "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont(g.fontName, "", 10)
	for _, p := range rows {
		cells := []string{
			p.Name,
			fmt.Sprint(p.TotalTasks),
			fmt.Sprint(p.Completed),
			fmt.Sprint(p.InProgress),
			fmt.Sprint(p.Todo),
			fmt.Sprintf("%d%%", p.Progress),
		}
		for i, c := range cells {
			align := "R"
			if i == 0 {
				align = "L"
			}
			pdf.CellFormat(widths[i], 6, tr(c), "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}
}

func (g *ReportGenerator) sectionTitle(pdf *gofpdf.Fpdf, s string) {
	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 7, s, "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
}

func (g *ReportGenerator) kvLine(pdf *gofpdf.Fpdf, key, val string) {
	pdf.SetFont(g.fontName, "B", 11)
	pdf.CellFormat(45, 6, key+":", "", 0, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, val, "", 1, "L", false, 0, "")
}

func (g *ReportGenerator) hr(pdf *gofpdf.Fpdf) {
	y := pdf.GetY() + 1.5
	pdf.SetLineWidth(0.2)
	pdf.Line(20, y, 190, y)
	pdf.SetY(y + 2)
}

func (g *ReportGenerator) addFont(pdf *gofpdf.Fpdf) {
	if g.FontPath == "" {
		return
	}
	pdf.AddUTF8Font(g.fontName, "", g.FontPath)
	pdf.AddUTF8Font(g.fontName, "B", g.FontPath)
}

// translator maps UTF-8 to cp1252 for the core fonts; UTF-8 fonts need nothing.
func (g *ReportGenerator) translator(pdf *gofpdf.Fpdf) func(string) string {
	if g.FontPath != "" {
		return func(s string) string { return s }
	}
	return pdf.UnicodeTranslatorFromDescriptor("")
}
