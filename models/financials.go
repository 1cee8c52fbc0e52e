package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Overview holds the company profile and headline ratios.
type Overview struct {
	Symbol               string              `json:"symbol"`
	Name                 string              `json:"name"`
	Sector               string              `json:"sector"`
	Description          string              `json:"description"`
	MarketCapitalization decimal.NullDecimal `json:"market_capitalization"`
	PERatio              decimal.NullDecimal `json:"pe_ratio"`
	PriceToBookRatio     decimal.NullDecimal `json:"price_to_book_ratio"`
	DividendYield        decimal.NullDecimal `json:"dividend_yield"`
	EPS                  decimal.NullDecimal `json:"eps"`
	Beta                 decimal.NullDecimal `json:"beta"`
	SharesOutstanding    decimal.NullDecimal `json:"shares_outstanding"`
}

// IncomeReport is one annual income statement.
type IncomeReport struct {
	FiscalDateEnding string              `json:"fiscal_date_ending"`
	NetIncome        decimal.NullDecimal `json:"net_income"`
}

// CashFlowReport is one annual cash flow statement.
type CashFlowReport struct {
	FiscalDateEnding    string              `json:"fiscal_date_ending"`
	OperatingCashflow   decimal.NullDecimal `json:"operating_cashflow"`
	CapitalExpenditures decimal.NullDecimal `json:"capital_expenditures"`
}

// BalanceReport is one annual balance sheet.
type BalanceReport struct {
	FiscalDateEnding       string              `json:"fiscal_date_ending"`
	TotalLiabilities       decimal.NullDecimal `json:"total_liabilities"`
	TotalShareholderEquity decimal.NullDecimal `json:"total_shareholder_equity"`
}

// RawFinancials is everything fetched for one company before any defaulting.
// Annual reports are ordered newest first.
type RawFinancials struct {
	Overview        Overview         `json:"overview"`
	IncomeStatement []IncomeReport   `json:"income_statement"`
	CashFlow        []CashFlowReport `json:"cash_flow"`
	BalanceSheet    []BalanceReport  `json:"balance_sheet"`
	FetchedAt       time.Time        `json:"fetched_at"`
}

// Quote is the current trading price for a ticker.
type Quote struct {
	Symbol    string          `json:"symbol"`
	Price     decimal.Decimal `json:"price"`
	Source    string          `json:"source"`
	FetchedAt time.Time       `json:"fetched_at"`
}

// Some wraps a defined value.
func Some(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NewNullDecimal(d)
}

// Undefined is a metric with no value.
var Undefined = decimal.NullDecimal{}
