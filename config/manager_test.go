package config

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dyike/FundaGo/models"
)

func TestManagerCreatesAndUpdates(t *testing.T) {
	dir := t.TempDir()
	mgr, err := NewManager(WithConfigDir(dir))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	path := filepath.Join(dir, "config.json")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not created: %v", err)
	}

	cfg := mgr.Get()
	if cfg.DataDir != filepath.Join(dir, "data") {
		t.Fatalf("expected data dir under config dir, got %s", cfg.DataDir)
	}
	cfg.ProjectDir = filepath.Join(dir, "project")
	cfg.ResultsDir = filepath.Join(dir, "results")
	cfg.DataDir = filepath.Join(dir, "data")
	cfg.DataCacheDir = filepath.Join(dir, "cache")

	data, _ := json.Marshal(cfg)
	if err := mgr.UpdateFromJSON(string(data)); err != nil {
		t.Fatalf("UpdateFromJSON: %v", err)
	}

	updated := mgr.Get()
	if updated.ProjectDir != cfg.ProjectDir {
		t.Fatalf("expected project dir %s, got %s", cfg.ProjectDir, updated.ProjectDir)
	}
}

func TestManagerRejectsInvalidConfig(t *testing.T) {
	mgr, err := NewManager(WithConfigDir(t.TempDir()))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	cfg := mgr.Get()
	cfg.Strategy = "graham"
	if err := mgr.Update(cfg); err == nil {
		t.Fatal("expected unknown strategy to be rejected")
	}
	if mgr.Get().Strategy == "graham" {
		t.Fatal("invalid config must not be applied")
	}
}

func TestManagerSet(t *testing.T) {
	mgr, err := NewManager(WithConfigDir(t.TempDir()))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	tests := []struct {
		key   string
		value string
		check func(Config) bool
	}{
		{"strategy", "projection", func(c Config) bool { return c.Strategy == "projection" }},
		{"requests_per_minute", "75", func(c Config) bool { return c.RequestsPerMinute == 75 }},
		{"alphavantage_api_key", "12345", func(c Config) bool { return c.AlphaVantageAPIKey == "12345" }},
		{"thresholds.pe", "12.5", func(c Config) bool { return c.Thresholds.PE.Equal(decimal.RequireFromString("12.5")) }},
		{"cache_enabled", "false", func(c Config) bool { return !c.CacheEnabled }},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if err := mgr.Set(tt.key, tt.value); err != nil {
				t.Fatalf("Set(%s): %v", tt.key, err)
			}
			if !tt.check(mgr.Get()) {
				t.Fatalf("Set(%s, %s) not applied", tt.key, tt.value)
			}
		})
	}

	if err := mgr.Set("no_such_key", "1"); err == nil {
		t.Fatal("expected unknown key error")
	}
	if err := mgr.Set("requests_per_minute", "fast"); err == nil {
		t.Fatal("expected invalid value error")
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfigWithRoot(t.TempDir())
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}

	cfg.RequestsPerMinute = 0
	cfg.DiscountRate = decimal.Zero
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation errors")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("ALPHAVANTAGE_API_KEY", "demo")
	t.Setenv("FUNDAGO_STRATEGY", "Projection")
	t.Setenv("FUNDAGO_REQUESTS_PER_MINUTE", "75")

	cfg := DefaultConfigWithRoot(t.TempDir())
	cfg.loadFromEnv()

	if cfg.AlphaVantageAPIKey != "demo" {
		t.Errorf("expected api key from env, got %q", cfg.AlphaVantageAPIKey)
	}
	if cfg.Strategy != "projection" {
		t.Errorf("expected projection strategy, got %q", cfg.Strategy)
	}
	if cfg.RequestsPerMinute != 75 {
		t.Errorf("expected 75 requests per minute, got %d", cfg.RequestsPerMinute)
	}
}

func TestManagerWatchReloads(t *testing.T) {
	dir := t.TempDir()
	mgr, err := NewManager(WithConfigDir(dir), WithDebounce(50*time.Millisecond))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan struct{}, 1)
	if err := mgr.Watch(ctx, func(cfg Config) {
		reloaded <- struct{}{}
	}); err != nil {
		t.Fatalf("Watch: %v", err)
	}

	cfg := mgr.Get()
	cfg.ProjectDir = filepath.Join(dir, "changed")
	cfg.RequestsPerMinute = 30

	if err := writeConfigFile(mgr.Path(), cfg); err != nil {
		t.Fatalf("writeConfigFile: %v", err)
	}

	select {
	case <-reloaded:
	case <-time.After(2 * time.Second):
		t.Fatalf("watcher did not fire on config change")
	}
	if mgr.Get().RequestsPerMinute != 30 {
		t.Fatalf("expected reloaded requests per minute, got %d", mgr.Get().RequestsPerMinute)
	}
}

func TestManagerLoadsExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	content := `{"strategy":"projection","requests_per_minute":12,"thresholds":{"pe":"20"}}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	mgr, err := NewManager(WithConfigPath(path))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	cfg := mgr.Get()
	if cfg.Strategy != "projection" || cfg.RequestsPerMinute != 12 {
		t.Errorf("file values not loaded: strategy %q, rpm %d", cfg.Strategy, cfg.RequestsPerMinute)
	}

	// fields missing from the file keep their defaults
	defaults := DefaultConfigWithRoot(dir)
	if cfg.DataDir != defaults.DataDir || cfg.RequestTimeoutSeconds != defaults.RequestTimeoutSeconds {
		t.Errorf("missing fields not defaulted: %+v", cfg)
	}
	want := models.DefaultThresholds()
	want.PE = decimal.NewFromInt(20)
	got := cfg.Thresholds
	pairs := [][2]decimal.Decimal{
		{got.PE, want.PE}, {got.PB, want.PB}, {got.DividendYield, want.DividendYield},
		{got.ROE, want.ROE}, {got.DebtToEquity, want.DebtToEquity}, {got.MarginOfSafety, want.MarginOfSafety},
	}
	for i, p := range pairs {
		if !p[0].Equal(p[1]) {
			t.Errorf("threshold %d = %s, want %s", i, p[0], p[1])
		}
	}
}

func TestManagerRejectsBrokenFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"malformed json", `{"strategy":`},
		{"zero pb", `{"thresholds":{"pb":"0"}}`},
		{"unknown strategy", `{"strategy":"graham"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.json")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := NewManager(WithConfigPath(path)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestManagerSetRejectsInvalid(t *testing.T) {
	mgr, err := NewManager(WithConfigDir(t.TempDir()))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	for _, kv := range [][2]string{
		{"thresholds.margin_of_safety", "-5"},
		{"thresholds.pb", "0"},
		{"dividend_growth_rate", "0.10"},
	} {
		if err := mgr.Set(kv[0], kv[1]); err == nil {
			t.Errorf("Set(%s, %s) should fail", kv[0], kv[1])
		}
	}
	if !mgr.Get().Thresholds.MarginOfSafety.Equal(decimal.RequireFromString("0.20")) {
		t.Errorf("rejected value applied: %s", mgr.Get().Thresholds.MarginOfSafety)
	}

	if err := mgr.Set("dividend_growth_rate", "0"); err != nil {
		t.Fatalf("zero dividend growth should be allowed: %v", err)
	}
	reopened, err := NewManager(WithConfigPath(mgr.Path()))
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if !reopened.Get().DividendGrowthRate.IsZero() {
		t.Errorf("dividend growth after reload = %s", reopened.Get().DividendGrowthRate)
	}
}

func TestValidateThresholds(t *testing.T) {
	tests := []struct {
		name  string
		apply func(*models.Thresholds)
	}{
		{"pe zero", func(th *models.Thresholds) { th.PE = decimal.Zero }},
		{"pb negative", func(th *models.Thresholds) { th.PB = decimal.NewFromInt(-1) }},
		{"debt to equity zero", func(th *models.Thresholds) { th.DebtToEquity = decimal.Zero }},
		{"dividend yield negative", func(th *models.Thresholds) { th.DividendYield = decimal.RequireFromString("-0.01") }},
		{"roe negative", func(th *models.Thresholds) { th.ROE = decimal.RequireFromString("-0.15") }},
		{"margin of safety negative", func(th *models.Thresholds) { th.MarginOfSafety = decimal.NewFromInt(-5) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfigWithRoot(t.TempDir())
			tt.apply(&cfg.Thresholds)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}

	cfg := DefaultConfigWithRoot(t.TempDir())
	cfg.Thresholds.DividendYield = decimal.Zero
	cfg.Thresholds.ROE = decimal.Zero
	cfg.Thresholds.MarginOfSafety = decimal.Zero
	if err := cfg.Validate(); err != nil {
		t.Errorf("zero lower bounds should validate: %v", err)
	}
}

func TestManagerWatchIgnoresInvalidEdit(t *testing.T) {
	dir := t.TempDir()
	mgr, err := NewManager(WithConfigDir(dir), WithDebounce(50*time.Millisecond))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan Config, 2)
	if err := mgr.Watch(ctx, func(cfg Config) { reloaded <- cfg }); err != nil {
		t.Fatalf("Watch: %v", err)
	}

	if err := os.WriteFile(mgr.Path(), []byte(`{"thresholds":{"pe":"-1"}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case cfg := <-reloaded:
		t.Fatalf("invalid edit applied: %+v", cfg.Thresholds)
	case <-time.After(500 * time.Millisecond):
	}
	if !mgr.Get().Thresholds.PE.Equal(decimal.NewFromInt(15)) {
		t.Errorf("pe = %s", mgr.Get().Thresholds.PE)
	}
}
