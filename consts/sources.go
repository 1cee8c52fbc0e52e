package consts

// Alpha Vantage query functions
const (
	Function_Overview        = "OVERVIEW"
	Function_IncomeStatement = "INCOME_STATEMENT"
	Function_BalanceSheet    = "BALANCE_SHEET"
	Function_CashFlow        = "CASH_FLOW"
	Function_GlobalQuote     = "GLOBAL_QUOTE"
)

// Quote providers
const (
	Source_AlphaVantage = "alphavantage"
	Source_Yahoo        = "yahoo"
	Source_Longport     = "longport"
)

// Yield series names
const (
	Series_USTreasury = "US Treasury"
	Series_AUTreasury = "AU Treasury"
)

const (
	Strategy_ConstantPerpetuity = "perpetuity"
	Strategy_FiveYearProjection = "projection"
)
