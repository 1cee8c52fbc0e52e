package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dyike/FundaGo/internal/display"
	"github.com/dyike/FundaGo/internal/valuation"
	"github.com/dyike/FundaGo/models"
	"github.com/dyike/FundaGo/pkg/dataflows"
)

// BatchManager runs analyses over a list of tickers, one at a time. The Alpha
// Vantage limiter serialises requests anyway.
type BatchManager struct {
	analyzer *Analyzer
	// OnResult is called after each ticker finishes.
	OnResult func(BatchResult)
}

// BatchResult represents the result of a single analysis in batch
type BatchResult struct {
	Symbol   string
	Status   BatchStatus
	Analysis *models.Analysis
	Err      error
	Duration time.Duration
}

// BatchStatus represents the status of batch analysis item
type BatchStatus int

const (
	BatchPending BatchStatus = iota
	BatchRunning
	BatchCompleted
	BatchFailed
)

func (bs BatchStatus) String() string {
	switch bs {
	case BatchPending:
		return "pending"
	case BatchRunning:
		return "running"
	case BatchCompleted:
		return "completed"
	case BatchFailed:
		return "failed"
	default:
		return "unknown"
	}
}

func NewBatchManager(analyzer *Analyzer) *BatchManager {
	return &BatchManager{analyzer: analyzer}
}

// RunBatchAnalysis analyses every symbol. A failed ticker is logged and the
// scan moves on; only cancellation stops it early.
func (bm *BatchManager) RunBatchAnalysis(ctx context.Context, symbols []string, strategy valuation.Strategy) ([]BatchResult, error) {
	if len(symbols) == 0 {
		return nil, fmt.Errorf("no symbols provided for batch analysis")
	}

	results := make([]BatchResult, 0, len(symbols))
	for _, symbol := range symbols {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		start := time.Now()
		res := BatchResult{Symbol: symbol, Status: BatchRunning}
		res.Analysis, res.Err = bm.analyzer.RunAnalysis(ctx, symbol, strategy)
		res.Duration = time.Since(start)
		if res.Err != nil {
			res.Status = BatchFailed
			log.Error().Err(res.Err).Str("Ticker", symbol).Msg("analysis failed")
		} else {
			res.Status = BatchCompleted
		}

		results = append(results, res)
		if bm.OnResult != nil {
			bm.OnResult(res)
		}
	}
	return results, nil
}

// ScanRows converts batch results for the summary table.
func ScanRows(results []BatchResult) []display.ScanRow {
	rows := make([]display.ScanRow, 0, len(results))
	for _, r := range results {
		rows = append(rows, display.ScanRow{Ticker: r.Symbol, Analysis: r.Analysis, Err: r.Err})
	}
	return rows
}

// LoadSymbolsFromFile loads symbols from a text file (one symbol per line)
func LoadSymbolsFromFile(filename string) ([]string, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read symbols file: %w", err)
	}

	var symbols []string
	for _, line := range strings.Split(string(data), "\n") {
		symbol := strings.TrimSpace(strings.ToUpper(line))
		if symbol != "" && !strings.HasPrefix(symbol, "#") {
			symbols = append(symbols, symbol)
		}
	}

	if len(symbols) == 0 {
		return nil, fmt.Errorf("no valid symbols found in file: %s", filename)
	}
	return symbols, nil
}

// ValidateSymbols normalizes symbols and splits out the malformed ones.
// Duplicates are dropped.
func ValidateSymbols(symbols []string) ([]string, []string) {
	var valid, invalid []string
	seen := make(map[string]bool)

	for _, symbol := range symbols {
		if err := dataflows.ValidateSymbol(symbol); err != nil {
			invalid = append(invalid, symbol)
			continue
		}
		symbol = dataflows.NormalizeSymbol(symbol)
		if seen[symbol] {
			continue
		}
		seen[symbol] = true
		valid = append(valid, symbol)
	}
	return valid, invalid
}
