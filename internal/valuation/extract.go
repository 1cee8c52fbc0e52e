package valuation

import (
	"github.com/dyike/FundaGo/consts"
	"github.com/dyike/FundaGo/models"
	"github.com/shopspring/decimal"
)

// maxHistory is how many annual cash flow periods feed the growth estimate.
const maxHistory = 5

// Inputs are the resolved numbers the calculator works on.
type Inputs struct {
	NetIncome           decimal.Decimal
	OperatingCashflow   decimal.Decimal
	CapitalExpenditures decimal.Decimal
	TotalLiabilities    decimal.Decimal
	ShareholderEquity   decimal.Decimal

	SharesOutstanding decimal.Decimal
	MarketCap         decimal.Decimal
	PERatio           decimal.Decimal
	PBRatio           decimal.Decimal
	DividendYield     decimal.Decimal
	EPS               decimal.Decimal
	Beta              decimal.Decimal

	// FCFHistory holds operating cash flow minus capex per annual period, newest first.
	FCFHistory []decimal.Decimal
}

// FreeCashFlow of the most recent period.
func (in Inputs) FreeCashFlow() decimal.Decimal {
	return in.OperatingCashflow.Sub(in.CapitalExpenditures)
}

// resolve is the single place absent fields get their defaults.
func resolve(v decimal.NullDecimal, def decimal.Decimal) decimal.Decimal {
	if !v.Valid {
		return def
	}
	return v.Decimal
}

// Extract pulls the most recent annual period out of raw statements.
func Extract(raw models.RawFinancials) (Inputs, error) {
	if len(raw.IncomeStatement) == 0 {
		return Inputs{}, &MissingDataError{Statement: consts.Function_IncomeStatement, Field: "annualReports"}
	}
	if len(raw.CashFlow) == 0 {
		return Inputs{}, &MissingDataError{Statement: consts.Function_CashFlow, Field: "annualReports"}
	}
	if len(raw.BalanceSheet) == 0 {
		return Inputs{}, &MissingDataError{Statement: consts.Function_BalanceSheet, Field: "annualReports"}
	}

	zero := decimal.Zero
	ov := raw.Overview
	income := raw.IncomeStatement[0]
	cash := raw.CashFlow[0]
	balance := raw.BalanceSheet[0]

	in := Inputs{
		NetIncome:           resolve(income.NetIncome, zero),
		OperatingCashflow:   resolve(cash.OperatingCashflow, zero),
		CapitalExpenditures: resolve(cash.CapitalExpenditures, zero),
		TotalLiabilities:    resolve(balance.TotalLiabilities, zero),
		ShareholderEquity:   resolve(balance.TotalShareholderEquity, zero),

		SharesOutstanding: resolve(ov.SharesOutstanding, zero),
		MarketCap:         resolve(ov.MarketCapitalization, zero),
		PERatio:           resolve(ov.PERatio, zero),
		PBRatio:           resolve(ov.PriceToBookRatio, zero),
		DividendYield:     resolve(ov.DividendYield, zero),
		EPS:               resolve(ov.EPS, zero),
		Beta:              resolve(ov.Beta, decimal.NewFromInt(1)),
	}

	n := len(raw.CashFlow)
	if n > maxHistory {
		n = maxHistory
	}
	in.FCFHistory = make([]decimal.Decimal, 0, n)
	for _, report := range raw.CashFlow[:n] {
		ocf := resolve(report.OperatingCashflow, zero)
		capex := resolve(report.CapitalExpenditures, zero)
		in.FCFHistory = append(in.FCFHistory, ocf.Sub(capex))
	}

	return in, nil
}
