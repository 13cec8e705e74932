package narrative

import (
	"fmt"

	"github.com/Dan9191/salary-bridge/internal/models"
	"github.com/Dan9191/salary-bridge/internal/utils"
)

// prepMonths is the saving period the canned strategy assumes before quitting
const prepMonths = 6

// Fallback builds the canned plan shown when the text service is unavailable.
// It depends only on the numbers, so the same inputs always give the same text.
func Fallback(in models.RunwayInputs, res models.RunwayResult) models.FinancialPlan {
	assessment := "High Risk: Your burn rate exceeds your target income. You will need to dip into savings monthly."
	if res.IsSafe {
		assessment = "Your target salary covers your burn rate, making this a Low Risk transition."
	}

	return models.FinancialPlan{
		SavingsStrategy: fmt.Sprintf(
			"To secure your %d-month runway of %s, you need to set aside approximately %s/month for the next %d months before quitting.",
			in.TransitionMonths, utils.FormatCurrency(res.BridgeAmount),
			utils.FormatCurrency(res.BridgeAmount/prepMonths), prepMonths),
		ExpenseAudits: []string{
			"Pause all aggressive investment contributions (401k match only) to maximize liquidity.",
			"Audit subscription services and negotiate recurring bills (internet, insurance).",
			"Reduce discretionary dining/travel budget by 40% temporarily.",
		},
		SafetyNetAssessment: assessment,
		BridgeTactics:       "Consider negotiating a signing bonus or taking on a short-term advisory contract to buffer the lower base salary.",
	}
}
