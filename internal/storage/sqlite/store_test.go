package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dyike/FundaGo/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "nested", "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func analysis(ticker string, undervalued bool) *models.Analysis {
	return &models.Analysis{
		Ticker:   ticker,
		Company:  models.Company{Name: ticker + " Inc", Sector: "TECHNOLOGY", Description: "N/A"},
		Strategy: "perpetuity",
		Metrics: models.Metrics{
			CurrentPrice:           models.Some(decimal.NewFromInt(40)),
			IntrinsicValuePerShare: models.Some(decimal.NewFromInt(50)),
			MarginOfSafety:         models.Some(decimal.RequireFromString("0.2")),
			DebtToEquity:           models.Undefined,
		},
		Undervalued: undervalued,
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestSaveAndGetAnalysis(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	a := analysis("IBM", true)
	if err := store.SaveAnalysis(ctx, a); err != nil {
		t.Fatalf("SaveAnalysis: %v", err)
	}
	if a.ID == "" {
		t.Fatal("expected an id to be assigned")
	}
	if a.CreatedAt.IsZero() {
		t.Fatal("expected created_at to be assigned")
	}

	got, err := store.GetAnalysis(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetAnalysis: %v", err)
	}
	if got == nil {
		t.Fatal("analysis not found")
	}
	if got.Ticker != "IBM" || got.Company.Name != "IBM Inc" || !got.Undervalued {
		t.Errorf("got %+v", got.Analysis)
	}
	if !got.CreatedAt.Equal(a.CreatedAt) {
		t.Errorf("created_at = %v, want %v", got.CreatedAt, a.CreatedAt)
	}
	if !got.Metrics.MarginOfSafety.Valid || !got.Metrics.MarginOfSafety.Decimal.Equal(decimal.RequireFromString("0.2")) {
		t.Errorf("margin of safety = %v", got.Metrics.MarginOfSafety)
	}
	if got.Metrics.DebtToEquity.Valid {
		t.Errorf("undefined metric came back as %v", got.Metrics.DebtToEquity)
	}
}

func TestGetAnalysisMissing(t *testing.T) {
	store := openTestStore(t)
	got, err := store.GetAnalysis(context.Background(), "nope")
	if err != nil {
		t.Fatalf("GetAnalysis: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
}

func TestSaveAnalysisValidation(t *testing.T) {
	store := openTestStore(t)
	if err := store.SaveAnalysis(context.Background(), nil); err == nil {
		t.Error("expected error for nil analysis")
	}
	if err := store.SaveAnalysis(context.Background(), &models.Analysis{}); err == nil {
		t.Error("expected error for missing ticker")
	}
}

func TestListAnalysesPaging(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, ticker := range []string{"AAA", "BBB", "AAA", "CCC"} {
		a := analysis(ticker, i%2 == 0)
		a.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		if err := store.SaveAnalysis(ctx, a); err != nil {
			t.Fatalf("SaveAnalysis %s: %v", ticker, err)
		}
	}

	page, err := store.ListAnalyses(ctx, "", 0, 3)
	if err != nil {
		t.Fatalf("ListAnalyses: %v", err)
	}
	if len(page) != 3 {
		t.Fatalf("page size = %d, want 3", len(page))
	}
	if page[0].Ticker != "CCC" || page[2].Ticker != "BBB" {
		t.Errorf("order = %s %s %s", page[0].Ticker, page[1].Ticker, page[2].Ticker)
	}

	rest, err := store.ListAnalyses(ctx, "", page[2].RowID, 3)
	if err != nil {
		t.Fatalf("ListAnalyses cursor: %v", err)
	}
	if len(rest) != 1 || rest[0].Ticker != "AAA" {
		t.Fatalf("rest = %+v", rest)
	}

	byTicker, err := store.ListAnalyses(ctx, "aaa", 0, 0)
	if err != nil {
		t.Fatalf("ListAnalyses ticker: %v", err)
	}
	if len(byTicker) != 2 {
		t.Fatalf("AAA analyses = %d, want 2", len(byTicker))
	}
}

func TestDeleteAnalysis(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	a := analysis("MSFT", false)
	if err := store.SaveAnalysis(ctx, a); err != nil {
		t.Fatal(err)
	}
	if err := store.DeleteAnalysis(ctx, a.ID); err != nil {
		t.Fatalf("DeleteAnalysis: %v", err)
	}
	if err := store.DeleteAnalysis(ctx, a.ID); err == nil {
		t.Fatal("expected error deleting twice")
	}
}
