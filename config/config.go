package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/dyike/FundaGo/consts"
	"github.com/dyike/FundaGo/models"
)

const (
	DefaultAlphaVantageBaseURL = "https://www.alphavantage.co"
	DefaultTreasuryBaseURL     = "https://home.treasury.gov/resource-center/data-chart-center/interest-rates/pages/xml"
	DefaultRBATablesURL        = "https://www.rba.gov.au/statistics/tables/"
	DefaultRBAF2URL            = "https://www.rba.gov.au/statistics/tables/xls/f02d.xlsx"
)

type Config struct {
	ProjectDir   string `json:"project_dir"`
	ResultsDir   string `json:"results_dir"`
	DataDir      string `json:"data_dir"`
	DataCacheDir string `json:"data_cache_dir"`
	DBPath       string `json:"db_path"`

	Debug        bool   `json:"debug"`
	LogLevel     string `json:"log_level"`
	CacheEnabled bool   `json:"cache_enabled"`

	// Alpha Vantage
	AlphaVantageAPIKey    string `json:"alphavantage_api_key"`
	AlphaVantageBaseURL   string `json:"alphavantage_base_url"`
	RequestsPerMinute     int    `json:"requests_per_minute"`
	RequestTimeoutSeconds int    `json:"request_timeout_seconds"`

	// Yield curve sources
	TreasuryBaseURL string `json:"treasury_base_url"`
	RBATablesURL    string `json:"rba_tables_url"`
	RBAF2URL        string `json:"rba_f2_url"`

	// Longport API Configuration
	LongportAppKey      string `json:"longport_app_key"`
	LongportAppSecret   string `json:"longport_app_secret"`
	LongportAccessToken string `json:"longport_access_token"`

	// Valuation
	Strategy           string            `json:"strategy"`
	DiscountRate       decimal.Decimal   `json:"discount_rate"`
	TerminalMultiple   decimal.Decimal   `json:"terminal_multiple"`
	ProjectionYears    int               `json:"projection_years"`
	DividendGrowthRate decimal.Decimal   `json:"dividend_growth_rate"`
	Thresholds         models.Thresholds `json:"thresholds"`
}

// DefaultConfig roots every directory at the working directory and applies
// .env and environment overrides.
func DefaultConfig() *Config {
	currentDir, _ := os.Getwd()
	cfg := DefaultConfigWithRoot(currentDir)
	cfg.ApplyEnv()
	return cfg
}

// DefaultConfigWithRoot returns the built-in defaults with directories under root.
func DefaultConfigWithRoot(root string) *Config {
	return &Config{
		ProjectDir:   root,
		ResultsDir:   filepath.Join(root, "results"),
		DataDir:      filepath.Join(root, "data"),
		DataCacheDir: filepath.Join(root, "data", "cache"),
		DBPath:       filepath.Join(root, "data", "fundago.db"),

		Debug:        false,
		LogLevel:     "info",
		CacheEnabled: true,

		AlphaVantageBaseURL:   DefaultAlphaVantageBaseURL,
		RequestsPerMinute:     5,
		RequestTimeoutSeconds: 30,

		TreasuryBaseURL: DefaultTreasuryBaseURL,
		RBATablesURL:    DefaultRBATablesURL,
		RBAF2URL:        DefaultRBAF2URL,

		Strategy:           consts.Strategy_ConstantPerpetuity,
		DiscountRate:       decimal.RequireFromString("0.10"),
		TerminalMultiple:   decimal.NewFromInt(10),
		ProjectionYears:    5,
		DividendGrowthRate: decimal.RequireFromString("0.05"),
		Thresholds:         models.DefaultThresholds(),
	}
}

// ApplyEnv loads .env from the working directory and overrides fields from the environment.
func (c *Config) ApplyEnv() {
	_ = godotenv.Load()
	c.loadFromEnv()
}

func (c *Config) loadFromEnv() {
	if val := os.Getenv("FUNDAGO_PROJECT_DIR"); val != "" {
		c.ProjectDir = val
	}
	if val := os.Getenv("FUNDAGO_RESULTS_DIR"); val != "" {
		c.ResultsDir = val
	}
	if val := os.Getenv("FUNDAGO_DATA_DIR"); val != "" {
		c.DataDir = val
	}
	if val := os.Getenv("FUNDAGO_DATA_CACHE_DIR"); val != "" {
		c.DataCacheDir = val
	}
	if val := os.Getenv("FUNDAGO_DB_PATH"); val != "" {
		c.DBPath = val
	}

	if val := os.Getenv("FUNDAGO_DEBUG"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.Debug = enabled
		}
	}
	if val := os.Getenv("FUNDAGO_LOG_LEVEL"); val != "" {
		c.LogLevel = val
	}
	if val := os.Getenv("FUNDAGO_CACHE_ENABLED"); val != "" {
		if cache, err := strconv.ParseBool(val); err == nil {
			c.CacheEnabled = cache
		}
	}

	if val := os.Getenv("ALPHAVANTAGE_API_KEY"); val != "" {
		c.AlphaVantageAPIKey = val
	}
	if val := os.Getenv("FUNDAGO_ALPHAVANTAGE_BASE_URL"); val != "" {
		c.AlphaVantageBaseURL = val
	}
	if val := os.Getenv("FUNDAGO_REQUESTS_PER_MINUTE"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.RequestsPerMinute = v
		}
	}
	if val := os.Getenv("FUNDAGO_REQUEST_TIMEOUT"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.RequestTimeoutSeconds = v
		}
	}

	if val := os.Getenv("FUNDAGO_TREASURY_URL"); val != "" {
		c.TreasuryBaseURL = val
	}
	if val := os.Getenv("FUNDAGO_RBA_TABLES_URL"); val != "" {
		c.RBATablesURL = val
	}

	if val := os.Getenv("LONGPORT_APP_KEY"); val != "" {
		c.LongportAppKey = val
	}
	if val := os.Getenv("LONGPORT_APP_SECRET"); val != "" {
		c.LongportAppSecret = val
	}
	if val := os.Getenv("LONGPORT_ACCESS_TOKEN"); val != "" {
		c.LongportAccessToken = val
	}

	if val := os.Getenv("FUNDAGO_STRATEGY"); val != "" {
		c.Strategy = strings.ToLower(val)
	}
	if val := os.Getenv("FUNDAGO_DISCOUNT_RATE"); val != "" {
		if v, err := decimal.NewFromString(val); err == nil {
			c.DiscountRate = v
		}
	}
}

// RequestTimeout bounds each HTTP request.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// HasLongport reports whether all Longport credentials are present.
func (c *Config) HasLongport() bool {
	return c.LongportAppKey != "" && c.LongportAppSecret != "" && c.LongportAccessToken != ""
}

func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.DataDir) == "" {
		errs = append(errs, errors.New("data_dir is required"))
	}
	if c.RequestsPerMinute < 1 {
		errs = append(errs, fmt.Errorf("requests_per_minute must be positive, got %d", c.RequestsPerMinute))
	}
	if c.RequestTimeoutSeconds < 1 {
		errs = append(errs, fmt.Errorf("request_timeout_seconds must be positive, got %d", c.RequestTimeoutSeconds))
	}
	switch c.Strategy {
	case consts.Strategy_ConstantPerpetuity, consts.Strategy_FiveYearProjection:
	default:
		errs = append(errs, fmt.Errorf("unknown strategy %q", c.Strategy))
	}
	if !c.DiscountRate.IsPositive() {
		errs = append(errs, errors.New("discount_rate must be positive"))
	}
	if c.ProjectionYears < 1 {
		errs = append(errs, errors.New("projection_years must be at least 1"))
	}
	if !c.TerminalMultiple.IsPositive() {
		errs = append(errs, errors.New("terminal_multiple must be positive"))
	}
	if c.DividendGrowthRate.GreaterThanOrEqual(c.DiscountRate) {
		errs = append(errs, fmt.Errorf("dividend_growth_rate %s must be below discount_rate %s", c.DividendGrowthRate, c.DiscountRate))
	}
	errs = append(errs, validateThresholds(c.Thresholds)...)
	return errors.Join(errs...)
}

// validateThresholds requires the "below" cutoffs to be positive, since a zero
// P/E or P/B cutoff can never be passed, and the "above" cutoffs to be non-negative.
func validateThresholds(t models.Thresholds) []error {
	var errs []error
	positive := []struct {
		key string
		v   decimal.Decimal
	}{
		{"thresholds.pe", t.PE},
		{"thresholds.pb", t.PB},
		{"thresholds.debt_to_equity", t.DebtToEquity},
	}
	for _, f := range positive {
		if !f.v.IsPositive() {
			errs = append(errs, fmt.Errorf("%s must be positive, got %s", f.key, f.v))
		}
	}
	nonNegative := []struct {
		key string
		v   decimal.Decimal
	}{
		{"thresholds.dividend_yield", t.DividendYield},
		{"thresholds.roe", t.ROE},
		{"thresholds.margin_of_safety", t.MarginOfSafety},
	}
	for _, f := range nonNegative {
		if f.v.IsNegative() {
			errs = append(errs, fmt.Errorf("%s must not be negative, got %s", f.key, f.v))
		}
	}
	return errs
}

// loadConfigFromFile decodes path over cfg, so fields absent from the file
// keep the values cfg already holds.
func loadConfigFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) EnsureDirectories() error {
	dirs := []string{c.ProjectDir, c.ResultsDir, c.DataDir, c.DataCacheDir}
	if c.DBPath != "" {
		dirs = append(dirs, filepath.Dir(c.DBPath))
	}
	for _, dir := range dirs {
		path := strings.TrimSpace(dir)
		if path == "" {
			continue
		}
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", path, err)
		}
	}
	return nil
}
