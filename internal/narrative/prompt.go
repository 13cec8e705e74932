package narrative

import (
	"fmt"
	"math"
	"strings"

	"github.com/Dan9191/salary-bridge/internal/models"
)

// BuildPrompt embeds the inputs and the derived gap into the request sent to
// the text service
func BuildPrompt(in models.RunwayInputs, res models.RunwayResult) string {
	direction := "Deficit"
	if res.NetMonthlyGap >= 0 {
		direction = "Surplus"
	}

	var b strings.Builder
	b.WriteString("Generate a personalized financial transition plan for a career pivot.\n\n")
	b.WriteString("DATA:\n")
	fmt.Fprintf(&b, "Current Salary: $%.0f\n", in.CurrentSalary)
	fmt.Fprintf(&b, "Monthly Expenses (Burn): $%.0f\n", in.MonthlyExpenses)
	fmt.Fprintf(&b, "Runway Needed: %d months\n", in.TransitionMonths)
	fmt.Fprintf(&b, "Target Future Salary: $%.0f\n", in.TargetSalary)
	fmt.Fprintf(&b, "Calculated Gap/Surplus: %s of $%.2f/mo\n\n", direction, math.Abs(res.NetMonthlyGap))
	b.WriteString("OUTPUT REQUIREMENTS:\n")
	fmt.Fprintf(&b, "1. \"savingsStrategy\": Concrete advice on how much to save monthly starting NOW to hit the runway goal ($%.0f).\n", res.BridgeAmount)
	b.WriteString("2. \"expenseAudits\": 3 specific, actionable areas to cut costs temporarily during the transition.\n")
	fmt.Fprintf(&b, "3. \"safetyNetAssessment\": Honest risk evaluation of the %d month timeline.\n", in.TransitionMonths)
	b.WriteString("4. \"bridgeTactics\": 1 creative way to bridge the income gap if the new role pays less.\n")
	return b.String()
}
