package lists

import (
	"encoding/json"
	"net/http"

	budgetdomain "giftboard/internal/domain/budget"
	commonhandler "giftboard/internal/transport/httpserver/handler/common"
	"github.com/shopspring/decimal"
)

func writeError(w http.ResponseWriter, status int, code, message string) {
	commonhandler.WriteError(w, status, code, message)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	commonhandler.WriteJSON(w, status, payload)
}

func decodeJSON(r *http.Request, dst interface{}) error {
	return commonhandler.DecodeJSON(r, dst)
}

func parseIntParam(value string, fallback int) (int, error) {
	return commonhandler.ParseIntParam(value, fallback)
}

type optionalNullableString struct {
	Set   bool
	Value *string
}

func (o *optionalNullableString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}

	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}

	o.Value = &value
	return nil
}

type optionalNullableDecimal struct {
	Set   bool
	Value *decimal.Decimal
}

func (o *optionalNullableDecimal) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}

	var value decimal.Decimal
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}

	o.Value = &value
	return nil
}

type budgetSummaryResponse struct {
	BudgetTotal      *decimal.Decimal `json:"budget_total"`
	PurchasedAmount  decimal.Decimal  `json:"purchased_amount"`
	PlannedAmount    decimal.Decimal  `json:"planned_amount"`
	Remaining        *decimal.Decimal `json:"remaining"`
	PurchasedPercent decimal.Decimal  `json:"purchased_percent"`
	PlannedPercent   decimal.Decimal  `json:"planned_percent"`
	RemainingPercent decimal.Decimal  `json:"remaining_percent"`
	IsOverBudget     bool             `json:"is_over_budget"`
}

// toBudgetSummaryResponse clamps percents into [0, 100] so overspent
// meters render full instead of overflowing.
func toBudgetSummaryResponse(summary budgetdomain.Summary) budgetSummaryResponse {
	return budgetSummaryResponse{
		BudgetTotal:      summary.BudgetTotal,
		PurchasedAmount:  summary.PurchasedAmount,
		PlannedAmount:    summary.PlannedAmount,
		Remaining:        summary.Remaining,
		PurchasedPercent: clampPercent(summary.PurchasedPercent),
		PlannedPercent:   clampPercent(summary.PlannedPercent),
		RemainingPercent: clampPercent(summary.RemainingPercent),
		IsOverBudget:     summary.IsOverBudget,
	}
}

var hundred = decimal.NewFromInt(100)

func clampPercent(value decimal.Decimal) decimal.Decimal {
	if value.IsNegative() {
		return decimal.Zero
	}
	if value.GreaterThan(hundred) {
		return hundred
	}
	return value
}
