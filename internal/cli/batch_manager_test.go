package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/dyike/FundaGo/internal/valuation"
	"github.com/dyike/FundaGo/pkg/dataflows"
)

func TestRunBatchAnalysisContinuesAfterFailure(t *testing.T) {
	data := &fakeCollector{prices: map[string]string{"AAA": "30", "CCC": "45"}}
	bm := NewBatchManager(NewAnalyzer(testConfig(t), data))

	var seen []string
	bm.OnResult = func(r BatchResult) { seen = append(seen, r.Symbol+":"+r.Status.String()) }

	results, err := bm.RunBatchAnalysis(context.Background(), []string{"AAA", "BBB", "CCC"}, valuation.ConstantPerpetuity)
	if err != nil {
		t.Fatalf("RunBatchAnalysis: %v", err)
	}
	want := []string{"AAA:completed", "BBB:failed", "CCC:completed"}
	if !reflect.DeepEqual(seen, want) {
		t.Fatalf("results = %v, want %v", seen, want)
	}
	if !errors.Is(results[1].Err, dataflows.ErrInvalidSymbol) {
		t.Errorf("BBB error = %v", results[1].Err)
	}
	if !results[0].Analysis.Undervalued || results[2].Analysis.Undervalued {
		t.Errorf("verdicts: AAA %v, CCC %v", results[0].Analysis.Undervalued, results[2].Analysis.Undervalued)
	}

	rows := ScanRows(results)
	if len(rows) != 3 || rows[1].Err == nil || rows[0].Analysis == nil {
		t.Errorf("scan rows = %+v", rows)
	}
}

func TestRunBatchAnalysisCancelled(t *testing.T) {
	data := &fakeCollector{prices: map[string]string{"AAA": "30"}}
	bm := NewBatchManager(NewAnalyzer(testConfig(t), data))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results, err := bm.RunBatchAnalysis(ctx, []string{"AAA"}, valuation.ConstantPerpetuity)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(results) != 0 || data.calls != 0 {
		t.Errorf("nothing should run after cancel: %d results, %d calls", len(results), data.calls)
	}
}

func TestRunBatchAnalysisEmpty(t *testing.T) {
	bm := NewBatchManager(NewAnalyzer(testConfig(t), &fakeCollector{}))
	if _, err := bm.RunBatchAnalysis(context.Background(), nil, valuation.ConstantPerpetuity); err == nil {
		t.Fatal("expected error for empty symbol list")
	}
}

func TestValidateSymbols(t *testing.T) {
	valid, invalid := ValidateSymbols([]string{"bhp.ax", "CBA.AX", "BHP.AX", "bad symbol", "", "^GSPC"})
	if want := []string{"BHP.AX", "CBA.AX", "^GSPC"}; !reflect.DeepEqual(valid, want) {
		t.Errorf("valid = %v, want %v", valid, want)
	}
	if want := []string{"bad symbol", ""}; !reflect.DeepEqual(invalid, want) {
		t.Errorf("invalid = %v, want %v", invalid, want)
	}
}

func TestLoadSymbolsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "asx.txt")
	content := "# ASX 20\nbhp.ax\n\n  cba.ax  \n#wes.ax\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	symbols, err := LoadSymbolsFromFile(path)
	if err != nil {
		t.Fatalf("LoadSymbolsFromFile: %v", err)
	}
	if want := []string{"BHP.AX", "CBA.AX"}; !reflect.DeepEqual(symbols, want) {
		t.Errorf("symbols = %v, want %v", symbols, want)
	}

	empty := filepath.Join(t.TempDir(), "empty.txt")
	if err := os.WriteFile(empty, []byte("# nothing\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSymbolsFromFile(empty); err == nil {
		t.Error("expected error for a file without symbols")
	}
}
