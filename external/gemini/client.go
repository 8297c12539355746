package gemini

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"

	"github.com/draftedge/draftedge/internal/platform/logging"
	"github.com/draftedge/draftedge/internal/platform/resilience"
	"github.com/draftedge/draftedge/internal/apperr"
)

const (
	defaultBaseURL     = "https://generativelanguage.googleapis.com"
	defaultModel       = "gemini-2.5-flash-lite-preview-06-17"
	maxAnswerBodyBytes = 8 << 20
	apiKeyHeader       = "x-goog-api-key"
)

var errGeminiTransient = crerr.New("gemini transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Model          string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client talks to the generative language API. The API key is supplied per
// call, not at construction: every request carries the caller's own key so
// quota and billing stay with the caller.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	model          string
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
		httpClient.Timeout = 90 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		model:          model,
		maxRetries:     max(cfg.MaxRetries, 0),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.ProbeBudget),
		circuitEnabled: breakerCfg.Enabled,
	}
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// GenerateContent sends one prompt and returns the concatenated text of the
// first candidate.
func (c *Client) GenerateContent(ctx context.Context, apiKey, prompt string) (string, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return "", fmt.Errorf("%w: api key is required", apperr.ErrUnauthorized)
	}
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("%w: prompt is empty", apperr.ErrInvalidInput)
	}

	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "gemini circuit breaker rejected request", "state", c.breaker.State())
			return "", fmt.Errorf("%w: analysis provider is temporarily unavailable", apperr.ErrDependencyUnavailable)
		}
	}

	body, err := sonic.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	fullURL := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
	raw, reqErr := c.executeRequest(ctx, fullURL, apiKey, body)
	if c.circuitEnabled {
		if reqErr != nil && crerr.Is(reqErr, errGeminiTransient) {
			c.breaker.RecordFailure()
		} else {
			c.breaker.RecordSuccess()
		}
	}
	if reqErr != nil {
		return "", reqErr
	}

	var resp generateResponse
	if err := sonic.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("decode model response: %w", err)
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: model returned no candidates", apperr.ErrDependencyUnavailable)
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	for _, p := range resp.Candidates[0].Content.Parts {
		_, _ = buf.WriteString(p.Text)
	}

	text := strings.TrimSpace(buf.String())
	if text == "" {
		return "", fmt.Errorf("%w: model returned an empty answer", apperr.ErrDependencyUnavailable)
	}
	return text, nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL, apiKey string, body []byte) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, fullURL, strings.NewReader(string(body)))
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(apiKeyHeader, apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %v", errGeminiTransient, err)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxAnswerBodyBytes))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errGeminiTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
				return nil, fmt.Errorf("%w: analysis provider rejected the api key", apperr.ErrUnauthorized)
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: provider status=%d", errGeminiTransient, resp.StatusCode)
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
	c.logger.WarnContext(ctx, "gemini request failed", "error", lastErr)
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
