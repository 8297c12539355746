package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	crerr "github.com/cockroachdb/errors"

	"github.com/draftedge/draftedge/internal/platform/logging"
	"github.com/draftedge/draftedge/internal/platform/resilience"
	"github.com/draftedge/draftedge/internal/apperr"
)

const (
	defaultBaseURL      = "https://raw.githubusercontent.com/dynastyprocess/data/master/files"
	maxFeedPayloadBytes = 32 << 20
)

// Canonical file names within the data repository.
const (
	RankingsFile     = "db_fpecr_latest.csv"
	PlayerValuesFile = "values-players.csv"
	PickValuesFile   = "values-picks.csv"
)

var errFeedTransient = crerr.New("feed transient failure")

type DownloaderConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Downloader fetches feed files over HTTP. Each file's Last-Modified stamp
// and body are remembered so unchanged files are served from memory via a
// conditional request instead of being re-downloaded.
type Downloader struct {
	httpClient     *http.Client
	baseURL        string
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool

	mu     sync.Mutex
	cached map[string]cachedFile
}

type cachedFile struct {
	body         []byte
	lastModified string
}

func NewDownloader(cfg DownloaderConfig) *Downloader {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 30 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Downloader{
		httpClient:     httpClient,
		baseURL:        baseURL,
		maxRetries:     max(cfg.MaxRetries, 0),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.ProbeBudget),
		circuitEnabled: breakerCfg.Enabled,
		cached:         make(map[string]cachedFile),
	}
}

// Fetch returns the named file's contents. The second return value reports
// whether the bytes came from the in-memory copy after a 304.
func (d *Downloader) Fetch(ctx context.Context, filename string) ([]byte, bool, error) {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return nil, false, fmt.Errorf("%w: filename is required", apperr.ErrInvalidInput)
	}

	if d.circuitEnabled {
		if err := d.breaker.Allow(); err != nil {
			d.logger.WarnContext(ctx, "feed circuit breaker rejected request", "file", filename, "state", d.breaker.State())
			return nil, false, fmt.Errorf("%w: rankings feed is temporarily unavailable", apperr.ErrDependencyUnavailable)
		}
	}

	d.mu.Lock()
	prior := d.cached[filename]
	d.mu.Unlock()

	body, notModified, lastModified, err := d.execute(ctx, filename, prior.lastModified)
	if d.circuitEnabled {
		if err != nil && crerr.Is(err, errFeedTransient) {
			d.breaker.RecordFailure()
		} else {
			d.breaker.RecordSuccess()
		}
	}
	if err != nil {
		return nil, false, err
	}

	if notModified {
		if len(prior.body) == 0 {
			// 304 without a cached body should not happen; treat it as a miss
			// and force a clean fetch next cycle.
			d.mu.Lock()
			delete(d.cached, filename)
			d.mu.Unlock()
			return nil, false, fmt.Errorf("%w: not-modified response with no cached copy of %s", errFeedTransient, filename)
		}
		return prior.body, true, nil
	}

	d.mu.Lock()
	d.cached[filename] = cachedFile{body: body, lastModified: lastModified}
	d.mu.Unlock()

	return body, false, nil
}

func (d *Downloader) execute(ctx context.Context, filename, ifModifiedSince string) ([]byte, bool, string, error) {
	fullURL := d.baseURL + "/" + filename

	var lastErr error
	for attempt := 0; attempt <= d.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, false, "", fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Accept", "text/csv")
		if ifModifiedSince != "" {
			req.Header.Set("If-Modified-Since", ifModifiedSince)
		}

		resp, err := d.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %v", errFeedTransient, err)
		} else {
			body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxFeedPayloadBytes))
			_ = resp.Body.Close()

			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errFeedTransient, readErr)
			case resp.StatusCode == http.StatusNotModified:
				return nil, true, ifModifiedSince, nil
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return body, false, resp.Header.Get("Last-Modified"), nil
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: feed status=%d file=%s", errFeedTransient, resp.StatusCode, filename)
			default:
				return nil, false, "", fmt.Errorf("feed status=%d file=%s", resp.StatusCode, filename)
			}
		}

		if attempt == d.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, false, "", ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("feed request failed")
	}
	d.logger.WarnContext(ctx, "feed download failed", "url", fullURL, "error", lastErr)
	return nil, false, "", lastErr
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
