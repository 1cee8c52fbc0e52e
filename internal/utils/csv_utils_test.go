package utils

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dyike/FundaGo/models"
)

func TestYieldsCSVRoundTrip(t *testing.T) {
	c := NewCSVManager(t.TempDir())
	series := &models.YieldSeries{
		Name: "US Treasury",
		Points: []models.YieldPoint{
			{Date: time.Date(2023, 7, 3, 0, 0, 0, 0, time.UTC), TwoYear: decimal.RequireFromString("4.94"), TenYear: decimal.RequireFromString("3.86")},
			{Date: time.Date(2023, 7, 5, 0, 0, 0, 0, time.UTC), TwoYear: decimal.RequireFromString("4.99"), TenYear: decimal.RequireFromString("3.95")},
		},
	}

	path, err := c.WriteYieldsToCSV(series)
	if err != nil {
		t.Fatalf("WriteYieldsToCSV: %v", err)
	}
	if !strings.HasPrefix(filepath.Base(path), "us_treasury_2_records_") {
		t.Errorf("file name = %s", filepath.Base(path))
	}

	got, err := c.ReadYieldsFromCSV("US Treasury", path)
	if err != nil {
		t.Fatalf("ReadYieldsFromCSV: %v", err)
	}
	if len(got.Points) != 2 {
		t.Fatalf("points = %d, want 2", len(got.Points))
	}
	p := got.Points[1]
	if !p.Date.Equal(series.Points[1].Date) || !p.TenYear.Equal(decimal.RequireFromString("3.95")) {
		t.Errorf("point = %+v", p)
	}
	if !p.Spread().Equal(decimal.RequireFromString("-1.04")) {
		t.Errorf("spread = %s", p.Spread())
	}
}

func TestReadYieldsFromCSVErrors(t *testing.T) {
	dir := t.TempDir()
	c := NewCSVManager(dir)

	tests := []struct {
		name    string
		content string
	}{
		{name: "header only", content: "Date,TwoYear,TenYear,Spread\n"},
		{name: "bad date", content: "Date,TwoYear,TenYear,Spread\n03/07/2023,4.9,3.8,-1.1\n"},
		{name: "bad yield", content: "Date,TwoYear,TenYear,Spread\n2023-07-03,N/A,3.8,\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, strings.ReplaceAll(tt.name, " ", "_")+".csv")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := c.ReadYieldsFromCSV("US Treasury", path); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestWriteAnalysesToCSV(t *testing.T) {
	c := NewCSVManager(t.TempDir())
	analyses := []models.Analysis{{
		ID:       "abc",
		Ticker:   "IBM",
		Company:  models.Company{Name: "International Business Machines"},
		Strategy: "perpetuity",
		Metrics: models.Metrics{
			CurrentPrice:   models.Some(decimal.NewFromInt(170)),
			ROE:            models.Undefined,
			MarginOfSafety: models.Some(decimal.RequireFromString("-0.25")),
		},
		CreatedAt: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
	}}

	path, err := c.WriteAnalysesToCSV(analyses)
	if err != nil {
		t.Fatalf("WriteAnalysesToCSV: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	row := records[1]
	if row[1] != "IBM" || row[4] != "2024-05-01T09:00:00Z" || row[5] != "170" {
		t.Errorf("row = %v", row)
	}
	if row[9] != "" {
		t.Errorf("undefined ROE should be empty, got %q", row[9])
	}
	if row[13] != "-0.25" || row[14] != "false" {
		t.Errorf("row = %v", row)
	}
}
