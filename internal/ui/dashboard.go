package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/dsablic/klio/internal/age"
	"github.com/dsablic/klio/internal/analysis"
	"github.com/dsablic/klio/internal/bytesize"
	"github.com/dsablic/klio/internal/model"
	"github.com/dsablic/klio/internal/output"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")).MarginTop(1)
	labelStyle  = lipgloss.NewStyle().Width(16)
	countStyle  = lipgloss.NewStyle().Width(10).Align(lipgloss.Right)
	cardStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 2)
	riskStyle = map[model.RiskCategory]lipgloss.Style{
		model.RiskPII:          lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		model.RiskFinancial:    lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		model.RiskLegal:        lipgloss.NewStyle().Foreground(lipgloss.Color("75")),
		model.RiskConfidential: lipgloss.NewStyle().Foreground(lipgloss.Color("141")),
	}
)

// RenderDashboard draws a snapshot as summary cards followed by one bar
// chart per age bucket. width is the bar width in cells.
func RenderDashboard(snap model.Snapshot, width int) string {
	if width <= 0 {
		width = 30
	}
	bar := progress.New(progress.WithDefaultGradient(), progress.WithWidth(width), progress.WithoutPercentage())
	stats := snap.Stats

	var b strings.Builder
	b.WriteString(titleStyle.Render("Drive analysis: "+snap.DirectoryID) + "\n")
	b.WriteString(infoStyle.Render("Generated "+snap.GeneratedAt) + "\n")

	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		cardStyle.Render("Documents\n"+humanize.Comma(int64(stats.DocCount))),
		cardStyle.Render("Sensitive\n"+humanize.Comma(int64(stats.SensitiveDocuments))),
		cardStyle.Render("Duplicates\n"+humanize.Comma(int64(stats.DuplicateDocuments))),
		cardStyle.Render("Stale\n"+humanize.Comma(int64(stats.StaleDocuments))),
		cardStyle.Render("Storage\n"+bytesize.Format(stats.TotalSize)),
	)
	b.WriteString(cards + "\n")

	if len(stats.TopOwners) > 0 {
		b.WriteString(headerStyle.Render("Top owners") + "\n")
		for _, o := range stats.TopOwners {
			b.WriteString(labelStyle.Render(humanize.Comma(int64(o.Count))+" files") + o.Owner + "\n")
		}
	}

	b.WriteString(headerStyle.Render("Age distribution") + "\n")
	for _, s := range age.Summarize(stats) {
		b.WriteString(row(bar, s.Bucket.Label(), s.Percentage, fmt.Sprintf("%s  %s", humanize.Comma(int64(s.Count)), bytesize.Format(s.Size))))
	}

	for _, bucket := range model.AgeBuckets {
		bs := stats.AgeDistribution[bucket]
		b.WriteString(headerStyle.Render(bucket.Label()) + "\n")
		for _, c := range output.TypeOrder(bs.Types) {
			t := bs.Types[c]
			if t.Count == 0 {
				continue
			}
			b.WriteString(row(bar, string(c), t.Percentage, fmt.Sprintf("%s  %s", humanize.Comma(int64(t.Count)), bytesize.Format(t.Size))))
		}
		for _, c := range model.RiskCategories {
			r := bs.Risks[c]
			if r.Count == 0 {
				continue
			}
			label := riskStyle[c].Render(string(c))
			b.WriteString(row(bar, label, r.Percentage, fmt.Sprintf("%d findings, %.0f%% confidence", r.Count, r.Confidence*100)))
			for _, f := range analysis.TopFindings(r, output.TopFindings) {
				b.WriteString("    " + infoStyle.Render(f.File.Name+" ("+f.FindingType+")") + "\n")
			}
		}
	}
	return b.String()
}

func row(bar progress.Model, label string, pct float64, detail string) string {
	return labelStyle.Render(label) +
		bar.ViewAs(pct/100) +
		countStyle.Render(fmt.Sprintf("%.0f%%", pct)) + "  " +
		infoStyle.Render(detail) + "\n"
}
