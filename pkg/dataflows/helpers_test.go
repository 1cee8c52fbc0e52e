package dataflows

import (
	"net/http"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/jarcoal/httpmock"

	"github.com/dyike/FundaGo/config"
)

func testConfig(t *testing.T) *Config {
	t.Helper()
	cfg := config.DefaultConfigWithRoot(t.TempDir())
	cfg.AlphaVantageAPIKey = "TEST"
	cfg.CacheEnabled = false
	cfg.RequestsPerMinute = 600
	return cfg
}

func fastRetry() *RetryConfig {
	return &RetryConfig{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, Multiplier: 2}
}

func mockClient(t *testing.T, client *resty.Client) {
	t.Helper()
	httpmock.ActivateNonDefault(client.GetClient())
	t.Cleanup(func() {
		httpmock.DeactivateNonDefault(client.GetClient())
		httpmock.Reset()
	})
}

// byQuery answers with the body registered for the value of one query parameter.
func byQuery(param string, bodies map[string]string) httpmock.Responder {
	return func(req *http.Request) (*http.Response, error) {
		body, ok := bodies[req.URL.Query().Get(param)]
		if !ok {
			return httpmock.NewStringResponse(http.StatusNotFound, "not found"), nil
		}
		return httpmock.NewStringResponse(http.StatusOK, body), nil
	}
}
