package consts

// MetricName is the display name of a valuation metric.
type MetricName string

const (
	Metric_CurrentPrice      MetricName = "Current Price"
	Metric_MarketCap         MetricName = "Market Capitalization"
	Metric_EPS               MetricName = "Earnings Per Share (EPS)"
	Metric_Beta              MetricName = "Beta"
	Metric_PERatio           MetricName = "P/E Ratio"
	Metric_PBRatio           MetricName = "P/B Ratio"
	Metric_DividendYield     MetricName = "Dividend Yield"
	Metric_ROE               MetricName = "Return on Equity (ROE)"
	Metric_DebtToEquity      MetricName = "Debt to Equity Ratio"
	Metric_FreeCashFlow      MetricName = "Free Cash Flow (FCF)"
	Metric_IntrinsicValue    MetricName = "Intrinsic Value per Share (DCF)"
	Metric_DDMIntrinsicValue MetricName = "DDM Intrinsic Value"
	Metric_MarginOfSafety    MetricName = "Margin of Safety"
)

// ReportMetrics is the order in which an analysis is printed.
var ReportMetrics = []MetricName{
	Metric_CurrentPrice,
	Metric_PERatio,
	Metric_PBRatio,
	Metric_DividendYield,
	Metric_ROE,
	Metric_DebtToEquity,
	Metric_FreeCashFlow,
	Metric_IntrinsicValue,
	Metric_MarginOfSafety,
}

// InfoMetrics are printed alongside the report but never classified.
var InfoMetrics = []MetricName{
	Metric_MarketCap,
	Metric_EPS,
	Metric_Beta,
	Metric_DDMIntrinsicValue,
}
