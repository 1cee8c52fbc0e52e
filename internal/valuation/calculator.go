package valuation

import (
	"strings"
	"time"

	"github.com/dyike/FundaGo/consts"
	"github.com/dyike/FundaGo/models"
	"github.com/shopspring/decimal"
)

// Calculator derives valuation metrics from fetched statements.
type Calculator struct {
	params DCFParams
}

// NewCalculator creates a calculator with the default DCF assumptions.
func NewCalculator() *Calculator {
	return &Calculator{params: DefaultDCFParams()}
}

// NewCalculatorWithParams creates a calculator with custom DCF assumptions.
func NewCalculatorWithParams(params DCFParams) *Calculator {
	return &Calculator{params: params}
}

// Calculate computes metrics for one company. Missing statements or quote abort
// the whole calculation; zero denominators only leave the affected metric undefined.
func (c *Calculator) Calculate(raw models.RawFinancials, quote *models.Quote, strategy Strategy) (*models.Metrics, error) {
	if strategy != ConstantPerpetuity && strategy != FiveYearProjection {
		return nil, ErrUnknownStrategy
	}

	in, err := Extract(raw)
	if err != nil {
		return nil, err
	}
	if quote == nil || !quote.Price.IsPositive() {
		return nil, &MissingDataError{Statement: consts.Function_GlobalQuote, Field: "05. price"}
	}
	price := quote.Price

	fcf := in.FreeCashFlow()
	growth := AverageGrowth(in.FCFHistory)

	var intrinsic decimal.NullDecimal
	switch strategy {
	case ConstantPerpetuity:
		intrinsic = perpetuityValue(fcf, in.SharesOutstanding, c.params)
	case FiveYearProjection:
		intrinsic = projectedValue(fcf, growth, in.SharesOutstanding, c.params)
	}

	margin := models.Undefined
	if intrinsic.Valid {
		margin = safeDiv(intrinsic.Decimal.Sub(price), intrinsic.Decimal)
	}

	return &models.Metrics{
		CurrentPrice:           models.Some(price),
		MarketCap:              models.Some(in.MarketCap),
		EPS:                    models.Some(in.EPS),
		Beta:                   models.Some(in.Beta),
		PERatio:                models.Some(in.PERatio),
		PBRatio:                models.Some(in.PBRatio),
		DividendYield:          models.Some(in.DividendYield),
		ROE:                    safeDiv(in.NetIncome, in.ShareholderEquity),
		DebtToEquity:           safeDiv(in.TotalLiabilities, in.ShareholderEquity),
		FreeCashFlow:           models.Some(fcf),
		IntrinsicValuePerShare: intrinsic,
		DDMIntrinsicValue:      ddmValue(price, in.DividendYield, c.params),
		MarginOfSafety:         margin,
		AverageFCFGrowth:       models.Some(growth),
	}, nil
}

// Analyze runs the calculator and the classifier for one ticker.
func (c *Calculator) Analyze(ticker string, raw models.RawFinancials, quote *models.Quote, strategy Strategy, thresholds models.Thresholds) (*models.Analysis, error) {
	metrics, err := c.Calculate(raw, quote, strategy)
	if err != nil {
		return nil, err
	}
	return &models.Analysis{
		Ticker: strings.ToUpper(ticker),
		Company: models.Company{
			Name:        orNA(raw.Overview.Name),
			Sector:      orNA(raw.Overview.Sector),
			Description: orNA(raw.Overview.Description),
		},
		Strategy:    strategy.String(),
		Metrics:     *metrics,
		Undervalued: IsUndervalued(*metrics, thresholds),
		CreatedAt:   time.Now(),
	}, nil
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}
