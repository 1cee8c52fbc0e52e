package valuation

import (
	"fmt"
	"strings"

	"github.com/dyike/FundaGo/consts"
	"github.com/dyike/FundaGo/models"
	"github.com/shopspring/decimal"
)

// Strategy selects how intrinsic value per share is estimated.
type Strategy int

const (
	// ConstantPerpetuity values the latest free cash flow as a flat perpetuity.
	ConstantPerpetuity Strategy = iota + 1
	// FiveYearProjection grows free cash flow at its historical average rate,
	// adds an exit-multiple terminal value and discounts everything back.
	FiveYearProjection
)

func (s Strategy) String() string {
	switch s {
	case ConstantPerpetuity:
		return consts.Strategy_ConstantPerpetuity
	case FiveYearProjection:
		return consts.Strategy_FiveYearProjection
	default:
		return "unknown"
	}
}

// ParseStrategy accepts the names printed by String.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case consts.Strategy_ConstantPerpetuity, "constant", "constant-perpetuity":
		return ConstantPerpetuity, nil
	case consts.Strategy_FiveYearProjection, "dcf", "five-year", "five-year-projection":
		return FiveYearProjection, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
}

// DCFParams are the assumptions behind the intrinsic value estimates.
type DCFParams struct {
	DiscountRate       decimal.Decimal `json:"discount_rate"`
	TerminalMultiple   decimal.Decimal `json:"terminal_multiple"`
	ProjectionYears    int             `json:"projection_years"`
	DividendGrowthRate decimal.Decimal `json:"dividend_growth_rate"`
}

func DefaultDCFParams() DCFParams {
	return DCFParams{
		DiscountRate:       decimal.RequireFromString("0.10"),
		TerminalMultiple:   decimal.NewFromInt(10),
		ProjectionYears:    5,
		DividendGrowthRate: decimal.RequireFromString("0.05"),
	}
}

// safeDiv returns an undefined value instead of dividing by zero.
func safeDiv(n, d decimal.Decimal) decimal.NullDecimal {
	if d.IsZero() {
		return models.Undefined
	}
	return models.Some(n.Div(d))
}

// AverageGrowth is the mean year-over-year change of a newest-first series.
// Pairs whose older value is zero are skipped; with no usable pair the rate is zero.
func AverageGrowth(history []decimal.Decimal) decimal.Decimal {
	if len(history) < 2 {
		return decimal.Zero
	}
	sum := decimal.Zero
	count := 0
	for i := 1; i < len(history); i++ {
		newer, older := history[i-1], history[i]
		rate := safeDiv(newer.Sub(older), older)
		if !rate.Valid {
			continue
		}
		sum = sum.Add(rate.Decimal)
		count++
	}
	if count == 0 {
		return decimal.Zero
	}
	return sum.Div(decimal.NewFromInt(int64(count)))
}

// perpetuityValue is fcf / r / shares.
func perpetuityValue(fcf, shares decimal.Decimal, p DCFParams) decimal.NullDecimal {
	if shares.IsZero() || p.DiscountRate.IsZero() {
		return models.Undefined
	}
	return models.Some(fcf.Div(p.DiscountRate).Div(shares))
}

// projectedValue discounts ProjectionYears of grown cash flow plus a terminal value.
func projectedValue(fcf, growth, shares decimal.Decimal, p DCFParams) decimal.NullDecimal {
	if shares.IsZero() || p.ProjectionYears < 1 {
		return models.Undefined
	}
	one := decimal.NewFromInt(1)
	growthFactor := one.Add(growth)
	discountFactor := one.Add(p.DiscountRate)

	total := decimal.Zero
	last := fcf
	for year := 1; year <= p.ProjectionYears; year++ {
		t := decimal.NewFromInt(int64(year))
		projected := fcf.Mul(growthFactor.Pow(t))
		total = total.Add(projected.Div(discountFactor.Pow(t)))
		last = projected
	}
	terminal := last.Mul(p.TerminalMultiple)
	horizon := decimal.NewFromInt(int64(p.ProjectionYears))
	total = total.Add(terminal.Div(discountFactor.Pow(horizon)))

	return models.Some(total.Div(shares))
}

// ddmValue is the Gordon growth dividend discount model on the trailing dividend.
func ddmValue(price, dividendYield decimal.Decimal, p DCFParams) decimal.NullDecimal {
	dps := price.Mul(dividendYield)
	if dps.IsZero() {
		return models.Undefined
	}
	return safeDiv(dps, p.DiscountRate.Sub(p.DividendGrowthRate))
}
