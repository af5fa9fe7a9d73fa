package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rovshanmuradov/memescope/internal/backtest"
	"github.com/rovshanmuradov/memescope/internal/risk"
	"github.com/rovshanmuradov/memescope/internal/storage/models"
	"github.com/rovshanmuradov/memescope/internal/ui/component"
	"github.com/rovshanmuradov/memescope/internal/ui/style"
)

func renderAssessments(items []risk.Assessment) string {
	table := component.NewTable().
		SetSelectable(false).
		AddColumn("Symbol", 12, lipgloss.Left).
		AddColumn("Score", 7, lipgloss.Center).
		AddColumn("Risk", 13, lipgloss.Left)

	rows := make([]component.TableRow, len(items))
	for i, a := range items {
		s := style.ScoreStyle(a.Color)
		rows[i] = component.TableRow{
			Data:   []string{a.Symbol, fmt.Sprintf("%d/%d", a.Score, risk.MaxScore), string(a.Label)},
			Styles: map[int]lipgloss.Style{1: s, 2: s},
		}
	}
	table.SetRows(rows)

	var b strings.Builder
	b.WriteString(table.View())
	b.WriteString("\n")
	for _, a := range items {
		if len(a.Warnings) == 0 {
			continue
		}
		b.WriteString(style.SubHeaderStyle.Render(a.Symbol))
		b.WriteString("\n")
		for _, w := range a.Warnings {
			b.WriteString("  " + style.WarningStyle.Render("! "+w) + "\n")
		}
	}
	return b.String()
}

func renderReport(report *backtest.Report) string {
	table := component.NewTable().
		SetSelectable(false).
		AddColumn("#", 5, lipgloss.Right).
		AddColumn("Symbol", 12, lipgloss.Left).
		AddColumn("Score", 7, lipgloss.Center).
		AddColumn("Outcome", 12, lipgloss.Left).
		AddColumn("Hit", 5, lipgloss.Center).
		AddColumn("Accuracy", 10, lipgloss.Right)

	rows := make([]component.TableRow, len(report.Records))
	for i, rec := range report.Records {
		hit := "yes"
		if !rec.Correct {
			hit = "no"
		}
		rows[i] = component.TableRow{Data: []string{
			fmt.Sprintf("%d", rec.Index+1),
			rec.Symbol,
			fmt.Sprintf("%d", rec.Score),
			string(rec.Outcome),
			hit,
			fmt.Sprintf("%.2f%%", rec.RunningAccuracy),
		}}
		if !rec.Correct {
			rows[i].Styles = map[int]lipgloss.Style{4: style.ErrorStyle}
		}
	}
	table.SetRows(rows)

	return table.View() + "\n" + renderSummary(report.ID, report.Summary.Total, report.Summary.Correct,
		report.Summary.Accuracy, report.Summary.TruePositives, report.Summary.FalsePositives,
		report.Summary.TrueNegatives, report.Summary.FalseNegatives)
}

func renderSummary(id string, total, correct int, accuracy float64, tp, fp, tn, fn int) string {
	var b strings.Builder
	b.WriteString(style.SubHeaderStyle.Render(fmt.Sprintf("Run %s", id)))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Accuracy: %.2f%% (%d/%d)\n", accuracy, correct, total)
	fmt.Fprintf(&b, "Caught rugs: %d  Missed rugs: %d  False alarms: %d  Clean passes: %d\n", tp, fn, fp, tn)
	return b.String()
}

func renderHistory(items []*models.Assessment) string {
	if len(items) == 0 {
		return style.MutedStyle.Render("No stored assessments") + "\n"
	}
	table := component.NewTable().
		SetSelectable(false).
		AddColumn("Time", 21, lipgloss.Left).
		AddColumn("Symbol", 12, lipgloss.Left).
		AddColumn("Score", 7, lipgloss.Center).
		AddColumn("Risk", 13, lipgloss.Left).
		AddColumn("Warnings", 10, lipgloss.Right)

	rows := make([]component.TableRow, len(items))
	for i, a := range items {
		rows[i] = component.TableRow{Data: []string{
			a.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
			a.Symbol,
			fmt.Sprintf("%d", a.Score),
			a.Label,
			fmt.Sprintf("%d", len(a.Warnings)),
		}}
	}
	return table.SetRows(rows).View() + "\n"
}

func renderRun(run *models.BacktestRun) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Started: %s\n", run.StartedAt.UTC().Format("2006-01-02 15:04:05"))
	for _, rec := range run.Records {
		mark := "+"
		if !rec.Correct {
			mark = "-"
		}
		fmt.Fprintf(&b, "%s %3d %-12s score=%-2d %-10s acc=%.2f%%\n",
			mark, rec.Index+1, rec.Symbol, rec.Score, rec.Outcome, rec.RunningAccuracy)
	}
	b.WriteString(renderSummary(run.ID, run.Total, run.Correct, run.Accuracy,
		run.TruePositives, run.FalsePositives, run.TrueNegatives, run.FalseNegatives))
	return b.String()
}
