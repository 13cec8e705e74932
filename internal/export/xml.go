// Package export renders a runway record as an XML report for spreadsheet import.
package export

import (
	"fmt"
	"strconv"
	"time"

	"github.com/beevik/etree"

	"github.com/Dan9191/salary-bridge/internal/models"
)

// RecordXML renders rec as an indented XML document
func RecordXML(rec *models.RunwayRecord) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("RunwayReport")
	root.CreateAttr("user", rec.UserID)
	if !rec.UpdatedAt.IsZero() {
		root.CreateAttr("updated", rec.UpdatedAt.UTC().Format(time.RFC3339))
	}

	in := root.CreateElement("Inputs")
	addNumber(in, "CurrentSalary", rec.Inputs.CurrentSalary)
	addNumber(in, "MonthlyExpenses", rec.Inputs.MonthlyExpenses)
	in.CreateElement("TransitionMonths").SetText(strconv.Itoa(rec.Inputs.TransitionMonths))
	addNumber(in, "TargetSalary", rec.Inputs.TargetSalary)

	res := root.CreateElement("Result")
	addNumber(res, "BridgeAmount", rec.Result.BridgeAmount)
	addNumber(res, "MonthlyNetTarget", rec.Result.MonthlyNetTarget)
	addNumber(res, "NetMonthlyGap", rec.Result.NetMonthlyGap)
	res.CreateElement("IsSafe").SetText(strconv.FormatBool(rec.Result.IsSafe))
	addNumber(res, "RiskScore", rec.Result.RiskScore)
	res.CreateElement("EstimatedSavingsMonths").SetText(strconv.Itoa(rec.Result.EstimatedSavingsMonths))

	if rec.Plan != nil {
		plan := root.CreateElement("FinancialPlan")
		plan.CreateElement("SavingsStrategy").SetText(rec.Plan.SavingsStrategy)
		audits := plan.CreateElement("ExpenseAudits")
		for _, item := range rec.Plan.ExpenseAudits {
			audits.CreateElement("Audit").SetText(item)
		}
		plan.CreateElement("SafetyNetAssessment").SetText(rec.Plan.SafetyNetAssessment)
		plan.CreateElement("BridgeTactics").SetText(rec.Plan.BridgeTactics)
	}

	doc.Indent(2)
	data, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("failed to render XML: %w", err)
	}
	return data, nil
}

func addNumber(parent *etree.Element, name string, v float64) {
	parent.CreateElement(name).SetText(strconv.FormatFloat(v, 'f', 2, 64))
}
