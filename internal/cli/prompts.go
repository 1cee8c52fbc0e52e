package cli

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"

	"github.com/dyike/FundaGo/consts"
	"github.com/dyike/FundaGo/internal/valuation"
	"github.com/dyike/FundaGo/pkg/dataflows"
)

// validateTicker is the survey validator for ticker input.
func validateTicker(val interface{}) error {
	str, ok := val.(string)
	if !ok {
		return fmt.Errorf("invalid input type")
	}
	return dataflows.ValidateSymbol(str)
}

// PromptForTicker prompts the user to enter a stock ticker symbol
func PromptForTicker() (string, error) {
	var ticker string
	prompt := &survey.Input{
		Message: "Enter the stock ticker symbol (e.g., AAPL, MSFT, BHP.AX):",
		Help:    "Letters, digits, dots and hyphens. Exchange suffixes such as .AX are kept.",
	}

	if err := survey.AskOne(prompt, &ticker, survey.WithValidator(validateTicker)); err != nil {
		return "", err
	}
	return dataflows.NormalizeSymbol(ticker), nil
}

var strategyDescriptions = map[string]string{
	consts.Strategy_ConstantPerpetuity: "latest free cash flow as a flat perpetuity",
	consts.Strategy_FiveYearProjection: "five years of growth plus a terminal multiple",
}

// PromptForStrategy asks for the intrinsic value method, defaulting to def.
func PromptForStrategy(def string) (valuation.Strategy, error) {
	options := []string{consts.Strategy_ConstantPerpetuity, consts.Strategy_FiveYearProjection}
	if _, err := valuation.ParseStrategy(def); err != nil {
		def = consts.Strategy_ConstantPerpetuity
	}

	var choice string
	prompt := &survey.Select{
		Message: "Select the valuation strategy:",
		Options: options,
		Default: def,
		Description: func(value string, _ int) string {
			return strategyDescriptions[value]
		},
	}
	if err := survey.AskOne(prompt, &choice); err != nil {
		return 0, err
	}
	return valuation.ParseStrategy(choice)
}
