package httpapi

import (
	"fmt"
	"net/http"

	"github.com/draftedge/draftedge/internal/usecase"
)

func (h *Handler) RunRefreshJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunRefreshJob")
	defer span.End()

	if h.refreshService == nil {
		writeError(ctx, w, fmt.Errorf("%w: refresh service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	report, err := h.refreshService.Refresh(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "refresh job failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, report)
}
