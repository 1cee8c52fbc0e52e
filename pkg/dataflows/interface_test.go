package dataflows

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/dyike/FundaGo/models"
)

type fakeQuoteSource struct {
	name  string
	price string
	err   error
	calls int
}

func (f *fakeQuoteSource) Name() string { return f.name }

func (f *fakeQuoteSource) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &models.Quote{Symbol: symbol, Price: decimal.RequireFromString(f.price), Source: f.name}, nil
}

func TestQuoteChainFallsBackInOrder(t *testing.T) {
	av := &fakeQuoteSource{name: "alphavantage", err: ErrRateLimited}
	yahoo := &fakeQuoteSource{name: "yahoo", price: "41.5"}
	longport := &fakeQuoteSource{name: "longport", price: "41.6"}

	chain := NewQuoteChain(av, yahoo, longport)
	q, err := chain.GetQuote(context.Background(), "BHP")
	if err != nil {
		t.Fatalf("GetQuote: %v", err)
	}
	if q.Source != "yahoo" {
		t.Errorf("expected yahoo to answer, got %s", q.Source)
	}
	if av.calls != 1 || yahoo.calls != 1 || longport.calls != 0 {
		t.Errorf("unexpected call counts %d/%d/%d", av.calls, yahoo.calls, longport.calls)
	}
}

func TestQuoteChainAllFail(t *testing.T) {
	chain := NewQuoteChain(
		&fakeQuoteSource{name: "alphavantage", err: ErrRateLimited},
		&fakeQuoteSource{name: "yahoo", err: errors.New("boom")},
	)

	_, err := chain.GetQuote(context.Background(), "BHP")
	if !errors.Is(err, ErrQuoteUnavailable) {
		t.Fatalf("expected ErrQuoteUnavailable, got %v", err)
	}
	if !errors.Is(err, ErrRateLimited) {
		t.Errorf("expected the rate limit cause to be kept, got %v", err)
	}
}

func TestQuoteChainStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	second := &fakeQuoteSource{name: "yahoo", price: "1"}
	chain := NewQuoteChain(&fakeQuoteSource{name: "alphavantage", err: context.Canceled}, second)

	if _, err := chain.GetQuote(ctx, "BHP"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if second.calls != 0 {
		t.Error("no source should be tried after cancellation")
	}
}

func TestNewDataFlowInterfaceQuoteOrder(t *testing.T) {
	cfg := testConfig(t)
	dfi := NewDataFlowInterface(cfg)

	got := dfi.QuoteSources()
	if len(got) != 2 || got[0] != "alphavantage" || got[1] != "yahoo" {
		t.Fatalf("expected alphavantage then yahoo without longport credentials, got %v", got)
	}
}
