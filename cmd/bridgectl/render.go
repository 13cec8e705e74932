package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Dan9191/salary-bridge/internal/models"
	"github.com/Dan9191/salary-bridge/internal/utils"
)

var (
	colorBorder = lipgloss.Color("#282726")
	colorText   = lipgloss.Color("#FFFCF0")
	colorMuted  = lipgloss.Color("#6F6E69")
	colorAccent = lipgloss.Color("#3AA99F")
	colorGreen  = lipgloss.Color("#879A39")
	colorOrange = lipgloss.Color("#DA702C")
	colorRed    = lipgloss.Color("#D14D41")
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorText)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	labelStyle  = lipgloss.NewStyle().Foreground(colorMuted).Width(26)
	valueStyle  = lipgloss.NewStyle().Foreground(colorText)
	okStyle     = lipgloss.NewStyle().Foreground(colorGreen)
	warnStyle   = lipgloss.NewStyle().Foreground(colorOrange)
	badStyle    = lipgloss.NewStyle().Foreground(colorRed)
	boxStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)
)

// scoreStyle colors a risk score: high is safe
func scoreStyle(score float64) lipgloss.Style {
	switch {
	case score >= 70:
		return okStyle
	case score >= 40:
		return warnStyle
	default:
		return badStyle
	}
}

func row(label, value string) string {
	return labelStyle.Render(label) + value
}

// renderResult renders the inputs and the derived runway in a box
func renderResult(in models.RunwayInputs, res models.RunwayResult) string {
	status := okStyle.Render("covered")
	if !res.IsSafe {
		status = badStyle.Render("shortfall")
	}

	lines := []string{
		titleStyle.Render("Salary Bridge"),
		"",
		row("Current salary", valueStyle.Render(utils.FormatCurrency(in.CurrentSalary))),
		row("Monthly expenses", valueStyle.Render(utils.FormatCurrency(in.MonthlyExpenses))),
		row("Transition months", valueStyle.Render(fmt.Sprintf("%d", in.TransitionMonths))),
		row("Target salary", valueStyle.Render(utils.FormatCurrency(in.TargetSalary))),
		"",
		row("Bridge amount", valueStyle.Render(utils.FormatCurrency(res.BridgeAmount))),
		row("Monthly net at target", valueStyle.Render(utils.FormatCurrency(res.MonthlyNetTarget))),
		row("Net monthly gap", valueStyle.Render(utils.FormatCurrency(res.NetMonthlyGap))+"  "+status),
		row("Risk score", scoreStyle(res.RiskScore).Render(fmt.Sprintf("%.0f / 100", res.RiskScore))),
		row("Months to save bridge", valueStyle.Render(fmt.Sprintf("%d", res.EstimatedSavingsMonths))),
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}

// renderPlan renders the narrative sections
func renderPlan(outcome models.PlanOutcome) string {
	var b strings.Builder
	title := "Financial plan"
	if outcome.Fallback {
		title += " (offline template)"
	}
	b.WriteString(headerStyle.Render(title))
	b.WriteString("\n\n")

	section := func(name, body string) {
		b.WriteString(titleStyle.Render(name))
		b.WriteString("\n")
		b.WriteString(body)
		b.WriteString("\n\n")
	}
	section("Savings strategy", outcome.Plan.SavingsStrategy)

	audits := make([]string, 0, len(outcome.Plan.ExpenseAudits))
	for _, a := range outcome.Plan.ExpenseAudits {
		audits = append(audits, "  - "+a)
	}
	section("Expense audit", strings.Join(audits, "\n"))
	section("Safety net", outcome.Plan.SafetyNetAssessment)
	b.WriteString(titleStyle.Render("Bridge tactics"))
	b.WriteString("\n")
	b.WriteString(outcome.Plan.BridgeTactics)
	return b.String()
}
