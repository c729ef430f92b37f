/*
costs.go - Cost totals and profit margin

PURPOSE:
  Pricing a party means knowing what it costs to throw one. Variable costs
  are either flat amounts or percentages of the contract value (commission,
  card fees); fixed costs are a monthly overhead total. The margin view
  subtracts variable costs from the contract value and expresses the result
  as a percentage.

PRECISION:
  Costs and margins stay int64 cents; only percentages go through
  decimal.Decimal. Percentage-of-value costs round half-up to the nearest
  cent, matching how the business always invoiced them.
*/
package crm

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// TotalVariableCostCents sums the active variable costs for a party of the
// given contract value. Percent entries take valueCents*percent/100 rounded
// to the nearest cent; flat entries contribute their value as-is.
func TotalVariableCostCents(costs []VariableCost, valueCents int64) int64 {
	var total int64
	for _, c := range costs {
		if !c.Active {
			continue
		}
		if c.Percent > 0 {
			share := decimal.NewFromInt(valueCents).
				Mul(decimal.NewFromInt(int64(c.Percent))).
				Div(hundred).
				Round(0)
			total += share.IntPart()
		} else {
			total += c.ValueCents
		}
	}
	return total
}

// TotalFixedCostCents sums the active fixed monthly costs.
func TotalFixedCostCents(costs []FixedCost) int64 {
	var total int64
	for _, c := range costs {
		if c.Active {
			total += c.ValueCents
		}
	}
	return total
}

// Margin is the profitability view of a single party value.
type Margin struct {
	VariableCostCents int64
	GrossMarginCents  int64

	// MarginPercent is gross margin over contract value, as a decimal
	// percentage. Zero for a zero-value contract.
	MarginPercent decimal.Decimal
}

// ProfitMargin computes the gross margin of a party priced at valueCents
// against the given variable costs.
func ProfitMargin(costs []VariableCost, valueCents int64) Margin {
	variable := TotalVariableCostCents(costs, valueCents)
	gross := valueCents - variable

	m := Margin{
		VariableCostCents: variable,
		GrossMarginCents:  gross,
		MarginPercent:     decimal.Zero,
	}
	if valueCents != 0 {
		m.MarginPercent = decimal.NewFromInt(gross).
			Mul(hundred).
			Div(decimal.NewFromInt(valueCents))
	}
	return m
}
