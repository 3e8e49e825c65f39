package footballdata

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/moimsport/matchfeed/internal/platform/logging"
	"github.com/moimsport/matchfeed/internal/platform/resilience"
	"github.com/moimsport/matchfeed/internal/usecase"
)

const (
	defaultBaseURL   = "https://api.football-data.org/v4"
	maxResponseBytes = 6 << 20
	dateLayout       = "2006-01-02"
)

var errFootballDataTransient = crerr.New("football-data transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Token          string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client talks to the football-data.org v4 API.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	token          string
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 15 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		token:          strings.TrimSpace(cfg.Token),
		maxRetries:     maxRetries,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

type matchesEnvelope struct {
	Matches []matchItem `json:"matches"`
}

type matchItem struct {
	ID          int64   `json:"id"`
	Competition teamRef `json:"competition"`
	UTCDate     string  `json:"utcDate"`
	Status      string  `json:"status"`
	HomeTeam    teamRef `json:"homeTeam"`
	AwayTeam    teamRef `json:"awayTeam"`
	Venue       string  `json:"venue"`
	Category    *int    `json:"category"`
}

// teamRef covers both team and competition sub-objects; either field
// may be absent upstream.
type teamRef struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// FetchMatches lists matches for one competition inside the inclusive
// [dateFrom, dateTo] calendar window. A payload whose matches field is
// missing or malformed yields zero matches rather than an error.
func (c *Client) FetchMatches(ctx context.Context, competitionCode string, dateFrom, dateTo time.Time) ([]usecase.ExternalMatch, error) {
	competitionCode = strings.ToUpper(strings.TrimSpace(competitionCode))
	if competitionCode == "" {
		return nil, fmt.Errorf("competition code is required")
	}

	query := map[string]string{
		"competitions": competitionCode,
		"dateFrom":     dateFrom.Format(dateLayout),
		"dateTo":       dateTo.Format(dateLayout),
	}
	raw, err := c.doRequest(ctx, "/matches", query)
	if err != nil {
		return nil, fmt.Errorf("fetch matches competition=%s: %w", competitionCode, err)
	}

	var envelope matchesEnvelope
	if err := sonic.Unmarshal(raw, &envelope); err != nil {
		c.logger.WarnContext(ctx, "upstream payload has no usable matches list, treating as empty",
			"competition", competitionCode,
			"error", err,
		)
		return nil, nil
	}

	out := make([]usecase.ExternalMatch, 0, len(envelope.Matches))
	for _, item := range envelope.Matches {
		code := strings.ToUpper(strings.TrimSpace(item.Competition.Code))
		if code == "" {
			code = competitionCode
		}
		out = append(out, usecase.ExternalMatch{
			ID:              item.ID,
			CompetitionCode: code,
			UTCDate:         strings.TrimSpace(item.UTCDate),
			Status:          strings.TrimSpace(item.Status),
			HomeTeam:        optionalName(item.HomeTeam.Name),
			AwayTeam:        optionalName(item.AwayTeam.Name),
			Venue:           optionalName(item.Venue),
			Category:        item.Category,
		})
	}
	return out, nil
}

func (c *Client) doRequest(ctx context.Context, path string, query map[string]string) ([]byte, error) {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "football-data circuit breaker rejected request", "state", c.breaker.State())
			return nil, fmt.Errorf("%w: match data provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}

	fullURL := c.baseURL + path
	if encoded := values.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	raw, err := c.executeRequest(ctx, fullURL)
	if c.circuitEnabled {
		if err != nil && crerr.Is(err, errFootballDataTransient) {
			c.breaker.RecordFailure()
		} else {
			c.breaker.RecordSuccess()
		}
	}
	return raw, err
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")
		if c.token != "" {
			req.Header.Set("X-Auth-Token", c.token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %s", errFootballDataTransient, sanitizeSensitiveText(err.Error(), c.token))
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
			_ = resp.Body.Close()
			if readErr != nil {
				lastErr = fmt.Errorf("%w: read response body: %v", errFootballDataTransient, readErr)
			} else if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return raw, nil
			} else {
				if isRetryableStatus(resp.StatusCode) {
					lastErr = fmt.Errorf("%w: provider status=%d body=%s", errFootballDataTransient, resp.StatusCode, abbreviateBody(raw))
				} else {
					lastErr = fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
					return nil, lastErr
				}
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("provider request failed")
	}
	c.logger.WarnContext(ctx, "football-data request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func isRetryableStatus(status int) bool {
	if status == http.StatusTooManyRequests || status == http.StatusRequestTimeout {
		return true
	}
	return status >= 500
}

func abbreviateBody(raw []byte) string {
	body := strings.TrimSpace(string(raw))
	if len(body) > 512 {
		return body[:512] + "..."
	}
	return body
}

func sanitizeSensitiveText(value, token string) string {
	value = strings.TrimSpace(value)
	if value == "" || token == "" {
		return value
	}
	return strings.ReplaceAll(value, token, "REDACTED")
}

func optionalName(raw string) *string {
	out := strings.TrimSpace(raw)
	if out == "" {
		return nil
	}
	return &out
}
