package httpapi

import (
	"net/http"
	"strings"
)

func (h *Handler) ListPlayerValues(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPlayerValues")
	defer span.End()

	table, err := h.playerService.PlayerValues(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, table)
}

func (h *Handler) ListPickValues(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPickValues")
	defer span.End()

	table, err := h.playerService.PickValues(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, table)
}

func (h *Handler) GetPlayerValue(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPlayerValue")
	defer span.End()

	name := strings.TrimSpace(r.PathValue("name"))
	row, err := h.playerService.PlayerValue(ctx, name)
	if err != nil {
		h.logger.WarnContext(ctx, "player value lookup failed", "name", name, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, row)
}

func (h *Handler) GetPickValue(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPickValue")
	defer span.End()

	pick := strings.TrimSpace(r.PathValue("pick"))
	row, err := h.playerService.PickValue(ctx, pick)
	if err != nil {
		h.logger.WarnContext(ctx, "pick value lookup failed", "pick", pick, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, row)
}
