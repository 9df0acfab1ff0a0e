package budget

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// LineAmount computes the money a single line represents. The discount
// price wins over the regular price when both are set. A line without
// any price counts as zero no matter the quantity, and quantities
// below one are treated as one.
func LineAmount(line Line) decimal.Decimal {
	price := line.Price
	if line.DiscountPrice != nil {
		price = line.DiscountPrice
	}
	if price == nil {
		return decimal.Zero
	}

	quantity := line.Quantity
	if quantity < 1 {
		quantity = 1
	}

	return price.Mul(decimal.NewFromInt(int64(quantity)))
}

// Accumulate folds lines into purchased and planned totals. Items that
// were bought (purchased or received) count as purchased, everything
// else as planned. The result does not depend on line order.
func Accumulate(lines []Line) Totals {
	var totals Totals
	for _, line := range lines {
		amount := LineAmount(line)
		if line.Status.Purchased() {
			totals.Purchased = totals.Purchased.Add(amount)
		} else {
			totals.Planned = totals.Planned.Add(amount)
		}
	}
	return totals
}

// BuildSummary turns totals into a budget meter. Without a budget the
// amounts are still reported but percentages degrade to 0/0/100 and
// the meter can never be over budget. A zero budget with any spending
// reports 100 percent instead of dividing by zero. Percentages are not
// clamped here, so RemainingPercent goes negative when overspent.
func BuildSummary(budgetTotal *decimal.Decimal, totals Totals) Summary {
	summary := Summary{
		PurchasedAmount:  totals.Purchased,
		PlannedAmount:    totals.Planned,
		RemainingPercent: hundred,
	}

	if budgetTotal == nil {
		return summary
	}

	total := *budgetTotal
	remaining := total.Sub(totals.Purchased).Sub(totals.Planned)

	summary.BudgetTotal = &total
	summary.Remaining = &remaining
	summary.IsOverBudget = totals.Committed().GreaterThan(total)
	summary.PurchasedPercent = percentOf(totals.Purchased, total)
	summary.PlannedPercent = percentOf(totals.Planned, total)
	summary.RemainingPercent = hundred.Sub(summary.PurchasedPercent).Sub(summary.PlannedPercent)

	return summary
}

func percentOf(amount, total decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		if amount.IsZero() {
			return decimal.Zero
		}
		return hundred
	}
	return amount.Mul(hundred).DivRound(total, 2)
}
