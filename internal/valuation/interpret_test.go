package valuation

import (
	"testing"

	"github.com/dyike/FundaGo/consts"
	"github.com/dyike/FundaGo/models"
)

func TestInterpret(t *testing.T) {
	thresholds := models.DefaultThresholds()

	tests := []struct {
		name  consts.MetricName
		value string
		want  string
	}{
		{consts.Metric_PERatio, "12", "P/E Ratio: 12.00 (Below threshold of 15, potentially undervalued)"},
		{consts.Metric_PERatio, "-3", "P/E Ratio: -3.00 (Above threshold of 15, may be overvalued)"},
		{consts.Metric_PBRatio, "1.5", "P/B Ratio: 1.50 (Above threshold of 1, may be overvalued or high intangible assets)"},
		{consts.Metric_DividendYield, "0.04", "Dividend Yield: 4.00% (Above threshold of 3%, attractive dividend)"},
		{consts.Metric_ROE, "0.2", "Return on Equity (ROE): 20.00% (Above threshold of 15%, strong profitability)"},
		{consts.Metric_DebtToEquity, "1.2", "Debt to Equity Ratio: 1.20 (Above threshold of 1, higher leverage)"},
		{consts.Metric_MarginOfSafety, "0.2", "Margin of Safety: 20.00% (Below threshold of 20%, insufficient margin of safety)"},
		{consts.Metric_FreeCashFlow, "1234567.891", "Free Cash Flow (FCF): $1,234,567.89"},
		{consts.Metric_Beta, "0.9", "Beta: 0.90"},
	}

	for _, tt := range tests {
		t.Run(string(tt.name), func(t *testing.T) {
			got := Interpret(tt.name, nd(tt.value), thresholds)
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestInterpretUndefined(t *testing.T) {
	got := Interpret(consts.Metric_ROE, models.Undefined, models.DefaultThresholds())
	if got != "Return on Equity (ROE): Data not available." {
		t.Fatalf("unexpected text %q", got)
	}
	if FormatValue(consts.Metric_ROE, models.Undefined) != "N/A" {
		t.Fatal("expected N/A")
	}
}
