package dataflows

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	"github.com/dyike/FundaGo/consts"
	"github.com/dyike/FundaGo/models"
)

const treasuryDateLayout = "2006-01-02T15:04:05"

// TreasuryClient pages through the Treasury daily yield curve feed.
type TreasuryClient struct {
	client  *resty.Client
	baseURL string
	retry   *RetryConfig
	dataDir string
	// maxPages bounds a runaway feed; the full history is well under it.
	maxPages int
}

func NewTreasuryClient(cfg *Config) *TreasuryClient {
	client := resty.New()
	client.SetTimeout(cfg.RequestTimeout())

	return &TreasuryClient{
		client:   client,
		baseURL:  cfg.TreasuryBaseURL,
		retry:    DefaultRetryConfig(),
		dataDir:  cfg.DataDir,
		maxPages: 200,
	}
}

// SetRetryConfig replaces the backoff used for transport failures.
func (tc *TreasuryClient) SetRetryConfig(rc *RetryConfig) {
	tc.retry = rc
}

// DefaultPath is where fetched US yields are stored.
func (tc *TreasuryClient) DefaultPath() string {
	return filepath.Join(tc.dataDir, "us_treasury_yields.json")
}

// Atom feed, matched on local names so the d:/m: namespaces do not matter.
type treasuryFeed struct {
	Entries []treasuryEntry `xml:"entry"`
}

type treasuryEntry struct {
	Properties struct {
		Date    string `xml:"NEW_DATE"`
		TwoYear string `xml:"BC_2YEAR"`
		TenYear string `xml:"BC_10YEAR"`
	} `xml:"content>properties"`
}

// ParseTreasuryXML returns the usable points of one feed page together with the
// number of entries the page held. Entries missing either yield are skipped.
func ParseTreasuryXML(r io.Reader) ([]models.YieldPoint, int, error) {
	var feed treasuryFeed
	if err := xml.NewDecoder(r).Decode(&feed); err != nil {
		return nil, 0, fmt.Errorf("decode treasury feed: %w", err)
	}

	points := make([]models.YieldPoint, 0, len(feed.Entries))
	for _, e := range feed.Entries {
		date, err := parseTreasuryDate(e.Properties.Date)
		if err != nil {
			log.Debug().Err(err).Msg("skipping treasury entry")
			continue
		}
		two, ten := ParseNumber(e.Properties.TwoYear), ParseNumber(e.Properties.TenYear)
		if !two.Valid || !ten.Valid {
			continue
		}
		points = append(points, models.YieldPoint{Date: date, TwoYear: two.Decimal, TenYear: ten.Decimal})
	}
	return points, len(feed.Entries), nil
}

func parseTreasuryDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(treasuryDateLayout, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

// fetchPage returns the page's points, its entry count, and false when the
// server answered with a non-200 status.
func (tc *TreasuryClient) fetchPage(ctx context.Context, year string, page int) ([]models.YieldPoint, int, bool, error) {
	var (
		points  []models.YieldPoint
		entries int
		ok      bool
	)
	err := WithRetry(ctx, tc.retry, func() error {
		resp, err := tc.client.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"data":                 "daily_treasury_yield_curve",
				"field_tdr_date_value": year,
				"page":                 strconv.Itoa(page),
			}).
			Get(tc.baseURL)
		if err != nil {
			return fmt.Errorf("treasury page %d: %w", page, err)
		}
		if resp.StatusCode() >= http.StatusInternalServerError {
			return fmt.Errorf("treasury page %d: status %d", page, resp.StatusCode())
		}
		if resp.StatusCode() != http.StatusOK {
			ok = false
			return nil
		}

		points, entries, err = ParseTreasuryXML(bytes.NewReader(resp.Body()))
		if err != nil {
			return Permanent(err)
		}
		ok = true
		return nil
	})
	return points, entries, ok, err
}

// FetchYields downloads pages 0, 1, ... until a page has no entries or the
// server stops answering 200. year is "all" or a four digit year.
func (tc *TreasuryClient) FetchYields(ctx context.Context, year string) ([]models.YieldPoint, error) {
	if year == "" {
		year = "all"
	}

	var all []models.YieldPoint
	for page := 0; page < tc.maxPages; page++ {
		points, entries, ok, err := tc.fetchPage(ctx, year, page)
		if err != nil {
			return nil, err
		}
		if !ok || entries == 0 {
			log.Debug().Int("Page", page).Bool("OK", ok).Msg("treasury feed exhausted")
			break
		}
		log.Debug().Int("Page", page).Int("Points", len(points)).Msg("fetched treasury page")
		all = append(all, points...)
	}

	if len(all) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoYieldData, consts.Series_USTreasury)
	}
	SortPoints(all)
	return all, nil
}

// SortPoints orders points by date, oldest first.
func SortPoints(points []models.YieldPoint) {
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})
}

// SaveYields writes a series as JSON.
func SaveYields(path string, series *models.YieldSeries) error {
	if err := SaveDataToFile(series, path); err != nil {
		return fmt.Errorf("save %s yields: %w", series.Name, err)
	}
	return nil
}

// LoadYields reads a series saved by SaveYields. Files ending in .xml are
// parsed as a Treasury feed page instead.
func LoadYields(path string) (*models.YieldSeries, error) {
	if strings.EqualFold(filepath.Ext(path), ".xml") {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		points, _, err := ParseTreasuryXML(f)
		if err != nil {
			return nil, err
		}
		if len(points) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrNoYieldData, path)
		}
		SortPoints(points)
		return &models.YieldSeries{Name: consts.Series_USTreasury, Points: points}, nil
	}

	var series models.YieldSeries
	if err := LoadDataFromFile(path, &series); err != nil {
		return nil, fmt.Errorf("load yields from %s: %w", path, err)
	}
	if len(series.Points) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoYieldData, path)
	}
	return &series, nil
}
