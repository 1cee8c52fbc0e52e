package valuation

import (
	"github.com/dyike/FundaGo/consts"
	"github.com/dyike/FundaGo/models"
	"github.com/shopspring/decimal"
)

// Condition is the outcome of one undervaluation test.
type Condition struct {
	Metric consts.MetricName
	Passed bool
}

func below(v decimal.NullDecimal, limit decimal.Decimal) bool {
	return v.Valid && v.Decimal.LessThan(limit)
}

func above(v decimal.NullDecimal, limit decimal.Decimal) bool {
	return v.Valid && v.Decimal.GreaterThan(limit)
}

func positive(v decimal.NullDecimal) bool {
	return v.Valid && v.Decimal.IsPositive()
}

// Conditions evaluates every undervaluation test. Comparisons are strict and an
// undefined metric always fails.
func Conditions(m models.Metrics, t models.Thresholds) []Condition {
	return []Condition{
		{Metric: consts.Metric_PERatio, Passed: positive(m.PERatio) && below(m.PERatio, t.PE)},
		{Metric: consts.Metric_PBRatio, Passed: positive(m.PBRatio) && below(m.PBRatio, t.PB)},
		{Metric: consts.Metric_DividendYield, Passed: above(m.DividendYield, t.DividendYield)},
		{Metric: consts.Metric_ROE, Passed: above(m.ROE, t.ROE)},
		{Metric: consts.Metric_DebtToEquity, Passed: below(m.DebtToEquity, t.DebtToEquity)},
		{Metric: consts.Metric_MarginOfSafety, Passed: above(m.MarginOfSafety, t.MarginOfSafety)},
	}
}

// IsUndervalued is true only when every condition passes.
func IsUndervalued(m models.Metrics, t models.Thresholds) bool {
	for _, c := range Conditions(m, t) {
		if !c.Passed {
			return false
		}
	}
	return true
}
