package sleeper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/draftedge/draftedge/internal/apperr"
	"github.com/draftedge/draftedge/internal/domain/directory"
	"github.com/draftedge/draftedge/internal/domain/identity"
	"github.com/draftedge/draftedge/internal/domain/metric"
	"github.com/draftedge/draftedge/internal/platform/logging"
	"github.com/draftedge/draftedge/internal/platform/resilience"
	"github.com/draftedge/draftedge/internal/usecase"
)

const (
	defaultBaseURL        = "https://api.sleeper.app/v1"
	defaultLookbackHours  = 48
	defaultTrendingLimit  = 25
	maxDirectoryBodyBytes = 64 << 20
)

var errSleeperTransient = crerr.New("sleeper transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

type Client struct {
	httpClient     *http.Client
	baseURL        string
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
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
		httpClient.Timeout = 60 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		maxRetries:     max(cfg.MaxRetries, 0),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.ProbeBudget),
		circuitEnabled: breakerCfg.Enabled,
	}
}

type playerPayload struct {
	FullName  string     `json:"full_name"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Position  string     `json:"position"`
	Team      string     `json:"team"`
	Status    string     `json:"status"`
	YearsExp  metric.Int `json:"years_exp"`
	Age       metric.Int `json:"age"`
}

// FetchDirectory downloads the full player directory and builds the lookup
// index. Name collisions resolve last-write-wins; with upstream map ordering
// being arbitrary, the winner is arbitrary but the index stays usable.
func (c *Client) FetchDirectory(ctx context.Context) (directory.Index, error) {
	var payload map[string]playerPayload
	if err := c.doJSON(ctx, "/players/nfl", nil, &payload); err != nil {
		return directory.Index{}, fmt.Errorf("fetch player directory: %w", err)
	}

	ix := directory.Index{
		ByID:     make(map[string]directory.Entry, len(payload)),
		NameToID: make(map[string]string, len(payload)),
	}

	for id, p := range payload {
		name := strings.TrimSpace(p.FullName)
		if name == "" {
			name = strings.TrimSpace(strings.TrimSpace(p.FirstName) + " " + strings.TrimSpace(p.LastName))
		}
		if name == "" {
			continue
		}

		ix.ByID[id] = directory.Entry{
			ID:       id,
			FullName: name,
			Position: strings.TrimSpace(p.Position),
			Team:     strings.TrimSpace(p.Team),
			Status:   strings.TrimSpace(p.Status),
			YearsExp: p.YearsExp,
			Age:      p.Age,
		}

		if key, ok := identity.Normalize(name); ok {
			ix.NameToID[key] = id
		}
	}

	return ix, nil
}

type trendingPayload struct {
	PlayerID string `json:"player_id"`
	Count    int    `json:"count"`
}

// FetchTrending returns the players most added across leagues in the
// lookback window. Zero arguments fall back to the defaults.
func (c *Client) FetchTrending(ctx context.Context, lookbackHours, limit int) ([]usecase.TrendingPlayer, error) {
	if lookbackHours <= 0 {
		lookbackHours = defaultLookbackHours
	}
	if limit <= 0 {
		limit = defaultTrendingLimit
	}

	query := map[string]string{
		"lookback_hours": strconv.Itoa(lookbackHours),
		"limit":          strconv.Itoa(limit),
	}

	var payload []trendingPayload
	if err := c.doJSON(ctx, "/players/nfl/trending/add", query, &payload); err != nil {
		return nil, fmt.Errorf("fetch trending players: %w", err)
	}

	out := make([]usecase.TrendingPlayer, 0, len(payload))
	for _, item := range payload {
		if strings.TrimSpace(item.PlayerID) == "" {
			continue
		}
		out = append(out, usecase.TrendingPlayer{PlayerID: item.PlayerID, Count: item.Count})
	}
	return out, nil
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "sleeper circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("%w: player directory provider is temporarily unavailable", apperr.ErrDependencyUnavailable)
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

	out, err, _ := c.flight.Do(fullURL, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && crerr.Is(reqErr, errSleeperTransient) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode directory payload: %w", err)
	}
	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %v", errSleeperTransient, err)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxDirectoryBodyBytes))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errSleeperTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: provider status=%d", errSleeperTransient, resp.StatusCode)
			default:
				return nil, fmt.Errorf("provider status=%d", resp.StatusCode)
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
	c.logger.WarnContext(ctx, "sleeper request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func isRetryableStatus(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
