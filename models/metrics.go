package models

import (
	"time"

	"github.com/dyike/FundaGo/consts"
	"github.com/shopspring/decimal"
)

// Metrics is the result of one valuation. An invalid NullDecimal means the
// metric could not be computed.
type Metrics struct {
	CurrentPrice           decimal.NullDecimal `json:"current_price"`
	MarketCap              decimal.NullDecimal `json:"market_cap"`
	EPS                    decimal.NullDecimal `json:"eps"`
	Beta                   decimal.NullDecimal `json:"beta"`
	PERatio                decimal.NullDecimal `json:"pe_ratio"`
	PBRatio                decimal.NullDecimal `json:"pb_ratio"`
	DividendYield          decimal.NullDecimal `json:"dividend_yield"`
	ROE                    decimal.NullDecimal `json:"roe"`
	DebtToEquity           decimal.NullDecimal `json:"debt_to_equity"`
	FreeCashFlow           decimal.NullDecimal `json:"free_cash_flow"`
	IntrinsicValuePerShare decimal.NullDecimal `json:"intrinsic_value_per_share"`
	DDMIntrinsicValue      decimal.NullDecimal `json:"ddm_intrinsic_value"`
	MarginOfSafety         decimal.NullDecimal `json:"margin_of_safety"`
	AverageFCFGrowth       decimal.NullDecimal `json:"average_fcf_growth"`
}

// Get returns the metric with the given display name.
func (m Metrics) Get(name consts.MetricName) (decimal.NullDecimal, bool) {
	switch name {
	case consts.Metric_CurrentPrice:
		return m.CurrentPrice, true
	case consts.Metric_MarketCap:
		return m.MarketCap, true
	case consts.Metric_EPS:
		return m.EPS, true
	case consts.Metric_Beta:
		return m.Beta, true
	case consts.Metric_PERatio:
		return m.PERatio, true
	case consts.Metric_PBRatio:
		return m.PBRatio, true
	case consts.Metric_DividendYield:
		return m.DividendYield, true
	case consts.Metric_ROE:
		return m.ROE, true
	case consts.Metric_DebtToEquity:
		return m.DebtToEquity, true
	case consts.Metric_FreeCashFlow:
		return m.FreeCashFlow, true
	case consts.Metric_IntrinsicValue:
		return m.IntrinsicValuePerShare, true
	case consts.Metric_DDMIntrinsicValue:
		return m.DDMIntrinsicValue, true
	case consts.Metric_MarginOfSafety:
		return m.MarginOfSafety, true
	}
	return Undefined, false
}

// Thresholds are the value-investing cutoffs a company is compared against.
type Thresholds struct {
	PE             decimal.Decimal `json:"pe"`
	PB             decimal.Decimal `json:"pb"`
	DividendYield  decimal.Decimal `json:"dividend_yield"`
	ROE            decimal.Decimal `json:"roe"`
	DebtToEquity   decimal.Decimal `json:"debt_to_equity"`
	MarginOfSafety decimal.Decimal `json:"margin_of_safety"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		PE:             decimal.NewFromInt(15),
		PB:             decimal.NewFromInt(1),
		DividendYield:  decimal.RequireFromString("0.03"),
		ROE:            decimal.RequireFromString("0.15"),
		DebtToEquity:   decimal.NewFromInt(1),
		MarginOfSafety: decimal.RequireFromString("0.20"),
	}
}

// Company is the descriptive part of an overview.
type Company struct {
	Name        string `json:"name"`
	Sector      string `json:"sector"`
	Description string `json:"description"`
}

// Analysis is the outcome of valuing one ticker.
type Analysis struct {
	ID          string    `json:"id,omitempty"`
	Ticker      string    `json:"ticker"`
	Company     Company   `json:"company"`
	Strategy    string    `json:"strategy"`
	Metrics     Metrics   `json:"metrics"`
	Undervalued bool      `json:"undervalued"`
	CreatedAt   time.Time `json:"created_at"`
}
