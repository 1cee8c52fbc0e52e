package utils

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dyike/FundaGo/models"
)

const csvDateLayout = "2006-01-02"

var yieldHeaders = []string{"Date", "TwoYear", "TenYear", "Spread"}

type CSVManager struct {
	basePath string
}

func NewCSVManager(basePath string) *CSVManager {
	return &CSVManager{
		basePath: basePath,
	}
}

func slug(name string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", "_"))
}

func (c *CSVManager) create(dir, filename string) (*os.File, string, error) {
	dirPath := filepath.Join(c.basePath, "csv", dir)
	if err := os.MkdirAll(dirPath, 0o755); err != nil {
		return nil, "", fmt.Errorf("failed to create directory: %w", err)
	}
	filePath := filepath.Join(dirPath, filename)
	file, err := os.Create(filePath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create CSV file: %w", err)
	}
	return file, filePath, nil
}

// WriteYieldsToCSV writes a series under csv/yields/ and returns the file path.
func (c *CSVManager) WriteYieldsToCSV(series *models.YieldSeries) (string, error) {
	filename := fmt.Sprintf("%s_%d_records_%s.csv",
		slug(series.Name), len(series.Points), time.Now().Format("20060102_150405"))
	file, filePath, err := c.create("yields", filename)
	if err != nil {
		return "", err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(yieldHeaders); err != nil {
		return "", fmt.Errorf("failed to write headers: %w", err)
	}
	for _, p := range series.Points {
		row := []string{
			p.Date.Format(csvDateLayout),
			p.TwoYear.String(),
			p.TenYear.String(),
			p.Spread().String(),
		}
		if err := writer.Write(row); err != nil {
			return "", fmt.Errorf("failed to write row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("failed to flush CSV: %w", err)
	}
	return filePath, nil
}

// ReadYieldsFromCSV reads a file written by WriteYieldsToCSV. The spread column
// is ignored and recomputed from the yields.
func (c *CSVManager) ReadYieldsFromCSV(name, filePath string) (*models.YieldSeries, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, fmt.Errorf("no data in CSV file")
	}

	series := &models.YieldSeries{Name: name}
	for i, record := range records[1:] {
		if len(record) < 3 {
			continue
		}
		date, err := time.Parse(csvDateLayout, record[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: bad date %q", i+2, record[0])
		}
		two, err := decimal.NewFromString(record[1])
		if err != nil {
			return nil, fmt.Errorf("row %d: bad 2 year yield %q", i+2, record[1])
		}
		ten, err := decimal.NewFromString(record[2])
		if err != nil {
			return nil, fmt.Errorf("row %d: bad 10 year yield %q", i+2, record[2])
		}
		series.Points = append(series.Points, models.YieldPoint{Date: date, TwoYear: two, TenYear: ten})
	}
	return series, nil
}

// WriteAnalysesToCSV writes one row per analysis under csv/analyses/.
func (c *CSVManager) WriteAnalysesToCSV(analyses []models.Analysis) (string, error) {
	filename := fmt.Sprintf("analyses_%d_records_%s.csv", len(analyses), time.Now().Format("20060102_150405"))
	file, filePath, err := c.create("analyses", filename)
	if err != nil {
		return "", err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	headers := []string{
		"ID", "Ticker", "Name", "Strategy", "CreatedAt",
		"Price", "PE", "PB", "DividendYield", "ROE", "DebtToEquity",
		"FreeCashFlow", "IntrinsicValue", "MarginOfSafety", "Undervalued",
	}
	if err := writer.Write(headers); err != nil {
		return "", fmt.Errorf("failed to write headers: %w", err)
	}

	for _, a := range analyses {
		m := a.Metrics
		row := []string{
			a.ID, a.Ticker, a.Company.Name, a.Strategy, a.CreatedAt.Format(time.RFC3339),
			cell(m.CurrentPrice), cell(m.PERatio), cell(m.PBRatio), cell(m.DividendYield),
			cell(m.ROE), cell(m.DebtToEquity), cell(m.FreeCashFlow),
			cell(m.IntrinsicValuePerShare), cell(m.MarginOfSafety),
			fmt.Sprintf("%t", a.Undervalued),
		}
		if err := writer.Write(row); err != nil {
			return "", fmt.Errorf("failed to write row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("failed to flush CSV: %w", err)
	}
	return filePath, nil
}

// cell leaves undefined metrics empty.
func cell(v decimal.NullDecimal) string {
	if !v.Valid {
		return ""
	}
	return v.Decimal.String()
}
