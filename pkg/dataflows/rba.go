package dataflows

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx/v3"

	"github.com/dyike/FundaGo/consts"
	"github.com/dyike/FundaGo/models"
)

const (
	rbaF2File  = "f02d.xlsx"
	rbaF2Sheet = "Data"

	// Column positions in the F2 "Data" sheet.
	rbaDateCol    = 0
	rbaTwoYearCol = 1
	rbaTenYearCol = 4
)

var rbaDateLayouts = []string{"02-Jan-2006", "2-Jan-2006", "02-Jan-06", "2006-01-02", "Jan-2006"}

// RBAClient downloads the Reserve Bank of Australia F2 government bond yields table.
type RBAClient struct {
	client      *resty.Client
	retry       *RetryConfig
	tablesURL   string
	fallbackURL string
	dataDir     string
}

func NewRBAClient(cfg *Config) *RBAClient {
	client := resty.New()
	client.SetTimeout(cfg.RequestTimeout())

	return &RBAClient{
		client:      client,
		retry:       DefaultRetryConfig(),
		tablesURL:   cfg.RBATablesURL,
		fallbackURL: cfg.RBAF2URL,
		dataDir:     cfg.DataDir,
	}
}

// SetRetryConfig replaces the backoff used for transport failures.
func (rc *RBAClient) SetRetryConfig(r *RetryConfig) {
	rc.retry = r
}

// DefaultPath is where the downloaded workbook is stored.
func (rc *RBAClient) DefaultPath() string {
	return filepath.Join(rc.dataDir, rbaF2File)
}

func (rc *RBAClient) get(ctx context.Context, target string) ([]byte, error) {
	var body []byte
	err := WithRetry(ctx, rc.retry, func() error {
		resp, err := rc.client.R().SetContext(ctx).Get(target)
		if err != nil {
			return fmt.Errorf("get %s: %w", target, err)
		}
		if resp.StatusCode() >= http.StatusInternalServerError {
			return fmt.Errorf("get %s: status %d", target, resp.StatusCode())
		}
		if resp.StatusCode() != http.StatusOK {
			return Permanent(fmt.Errorf("get %s: status %d", target, resp.StatusCode()))
		}
		body = resp.Body()
		return nil
	})
	return body, err
}

// FindF2Link scans the statistical tables page for the f02d.xlsx link and
// resolves it against the page URL.
func (rc *RBAClient) FindF2Link(ctx context.Context) (string, error) {
	page, err := rc.get(ctx, rc.tablesURL)
	if err != nil {
		return "", err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return "", fmt.Errorf("parse rba tables page: %w", err)
	}

	base, err := url.Parse(rc.tablesURL)
	if err != nil {
		return "", err
	}

	var found *url.URL
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return true
		}
		// links carry a cache-busting query, match on the path only
		if strings.HasSuffix(strings.ToLower(ref.Path), rbaF2File) {
			found = base.ResolveReference(ref)
			return false
		}
		return true
	})
	if found == nil {
		return "", fmt.Errorf("no %s link on %s", rbaF2File, rc.tablesURL)
	}
	return found.String(), nil
}

// DownloadF2 saves the workbook under DataDir and returns its path. When the
// link cannot be discovered the configured fixed URL is used.
func (rc *RBAClient) DownloadF2(ctx context.Context) (string, error) {
	link, err := rc.FindF2Link(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		log.Warn().Err(err).Str("URL", rc.fallbackURL).Msg("rba link discovery failed, using fixed url")
		link = rc.fallbackURL
	}

	body, err := rc.get(ctx, link)
	if err != nil {
		return "", err
	}

	path := rc.DefaultPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	log.Info().Str("URL", link).Str("Path", path).Int("Bytes", len(body)).Msg("downloaded rba f2 table")
	return path, nil
}

// ReadF2 reads the 2 and 10 year yields from the F2 workbook. Rows whose first
// cell is not a date are headers and are skipped, as are rows missing either yield.
func ReadF2(path string) (*models.YieldSeries, error) {
	wb, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	sheet, ok := wb.Sheet[rbaF2Sheet]
	if !ok {
		return nil, fmt.Errorf("%s has no %q sheet", path, rbaF2Sheet)
	}

	var points []models.YieldPoint
	err = sheet.ForEachRow(func(r *xlsx.Row) error {
		date, ok := rbaDate(r.GetCell(rbaDateCol), wb.Date1904)
		if !ok {
			return nil
		}
		two := cellNumber(r.GetCell(rbaTwoYearCol))
		ten := cellNumber(r.GetCell(rbaTenYearCol))
		if !two.Valid || !ten.Valid {
			return nil
		}
		points = append(points, models.YieldPoint{Date: date, TwoYear: two.Decimal, TenYear: ten.Decimal})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoYieldData, consts.Series_AUTreasury)
	}

	SortPoints(points)
	return &models.YieldSeries{Name: consts.Series_AUTreasury, Points: points}, nil
}

func rbaDate(cell *xlsx.Cell, date1904 bool) (time.Time, bool) {
	if cell == nil {
		return time.Time{}, false
	}
	if cell.IsTime() {
		t, err := cell.GetTime(date1904)
		return t, err == nil
	}
	text := strings.TrimSpace(cell.Value)
	for _, layout := range rbaDateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func cellNumber(cell *xlsx.Cell) decimal.NullDecimal {
	if cell == nil {
		return models.Undefined
	}
	return ParseNumber(cell.Value)
}
