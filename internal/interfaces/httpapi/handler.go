package httpapi

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"

	"github.com/draftedge/draftedge/internal/usecase"
)

const apiKeyHeader = "X-Api-Key"

type Handler struct {
	playerService   *usecase.PlayerService
	analysisService *usecase.AnalysisService
	refreshService  *usecase.RefreshService
	logger          *slog.Logger
}

func NewHandler(
	playerService *usecase.PlayerService,
	analysisService *usecase.AnalysisService,
	refreshService *usecase.RefreshService,
	logger *slog.Logger,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		playerService:   playerService,
		analysisService: analysisService,
		refreshService:  refreshService,
		logger:          logger,
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz reports readiness: the service can answer data queries only after
// the first snapshot has been published.
func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Readyz")
	defer span.End()

	if !h.playerService.Ready() {
		writeError(ctx, w, fmt.Errorf("%w: first data refresh has not completed yet", usecase.ErrDataNotReady))
		return
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ready"})
}

func apiKeyFrom(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(apiKeyHeader))
}

// decodeBody decodes a JSON request body. An empty body yields the zero
// request so operations without required fields work with no payload at all;
// field validation happens in the usecase layer.
func decodeBody[T any](r *http.Request) (T, error) {
	var req T
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			var zero T
			return zero, nil
		}
		var zero T
		return zero, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return req, nil
}

// queryFlag treats "1", "true", "yes" (any case) as set.
func queryFlag(r *http.Request, name string) bool {
	switch strings.ToLower(strings.TrimSpace(r.URL.Query().Get(name))) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}

func queryLimit(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, fmt.Errorf("%w: limit must be a non-negative integer", usecase.ErrInvalidInput)
	}
	return limit, nil
}
