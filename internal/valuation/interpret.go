package valuation

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/dyike/FundaGo/consts"
	"github.com/dyike/FundaGo/models"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// FormatMoney renders an amount as $1,234.56.
func FormatMoney(d decimal.Decimal) string {
	return "$" + humanize.FormatFloat("#,###.##", d.Round(2).InexactFloat64())
}

// FormatPercent renders a fraction as a percentage with two decimals.
func FormatPercent(d decimal.Decimal) string {
	return d.Mul(hundred).StringFixed(2) + "%"
}

// FormatRatio renders a plain ratio with two decimals.
func FormatRatio(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// FormatValue renders a metric without any threshold commentary.
func FormatValue(name consts.MetricName, v decimal.NullDecimal) string {
	if !v.Valid {
		return "N/A"
	}
	switch name {
	case consts.Metric_CurrentPrice, consts.Metric_MarketCap, consts.Metric_EPS,
		consts.Metric_FreeCashFlow, consts.Metric_IntrinsicValue, consts.Metric_DDMIntrinsicValue:
		return FormatMoney(v.Decimal)
	case consts.Metric_DividendYield, consts.Metric_ROE, consts.Metric_MarginOfSafety:
		return FormatPercent(v.Decimal)
	default:
		return FormatRatio(v.Decimal)
	}
}

// Interpret describes a metric against its threshold.
func Interpret(name consts.MetricName, v decimal.NullDecimal, t models.Thresholds) string {
	if !v.Valid {
		return fmt.Sprintf("%s: Data not available.", name)
	}
	value := v.Decimal
	var text string

	switch name {
	case consts.Metric_PERatio:
		if positive(v) && below(v, t.PE) {
			text = fmt.Sprintf("%s (Below threshold of %s, potentially undervalued)", FormatRatio(value), t.PE)
		} else {
			text = fmt.Sprintf("%s (Above threshold of %s, may be overvalued)", FormatRatio(value), t.PE)
		}
	case consts.Metric_PBRatio:
		if positive(v) && below(v, t.PB) {
			text = fmt.Sprintf("%s (Below threshold of %s, potentially undervalued)", FormatRatio(value), t.PB)
		} else {
			text = fmt.Sprintf("%s (Above threshold of %s, may be overvalued or high intangible assets)", FormatRatio(value), t.PB)
		}
	case consts.Metric_DividendYield:
		limit := t.DividendYield.Mul(hundred)
		if above(v, t.DividendYield) {
			text = fmt.Sprintf("%s (Above threshold of %s%%, attractive dividend)", FormatPercent(value), limit)
		} else {
			text = fmt.Sprintf("%s (Below threshold of %s%%, lower dividend yield)", FormatPercent(value), limit)
		}
	case consts.Metric_ROE:
		limit := t.ROE.Mul(hundred)
		if above(v, t.ROE) {
			text = fmt.Sprintf("%s (Above threshold of %s%%, strong profitability)", FormatPercent(value), limit)
		} else {
			text = fmt.Sprintf("%s (Below threshold of %s%%, weaker profitability)", FormatPercent(value), limit)
		}
	case consts.Metric_DebtToEquity:
		if below(v, t.DebtToEquity) {
			text = fmt.Sprintf("%s (Below threshold of %s, healthy debt level)", FormatRatio(value), t.DebtToEquity)
		} else {
			text = fmt.Sprintf("%s (Above threshold of %s, higher leverage)", FormatRatio(value), t.DebtToEquity)
		}
	case consts.Metric_MarginOfSafety:
		limit := t.MarginOfSafety.Mul(hundred)
		if above(v, t.MarginOfSafety) {
			text = fmt.Sprintf("%s (Above threshold of %s%%, good margin of safety)", FormatPercent(value), limit)
		} else {
			text = fmt.Sprintf("%s (Below threshold of %s%%, insufficient margin of safety)", FormatPercent(value), limit)
		}
	default:
		text = FormatValue(name, v)
	}

	return fmt.Sprintf("%s: %s", name, text)
}
