package httpapi

import (
	"net/http"
	"strings"

	"github.com/draftedge/draftedge/internal/usecase"
)

func (h *Handler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPlayers")
	defer span.End()

	limit, err := queryLimit(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	filter := usecase.PlayerFilter{
		Position:   r.URL.Query().Get("position"),
		Team:       r.URL.Query().Get("team"),
		Category:   r.URL.Query().Get("category"),
		RookieOnly: queryFlag(r, "rookie"),
		Limit:      limit,
	}
	players, err := h.playerService.ListPlayers(ctx, filter)
	if err != nil {
		h.logger.WarnContext(ctx, "list players failed", "position", filter.Position, "category", filter.Category, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, players)
}

func (h *Handler) SearchPlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SearchPlayers")
	defer span.End()

	limit, err := queryLimit(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	query := r.URL.Query().Get("query")
	if query == "" {
		query = r.URL.Query().Get("q")
	}
	players, err := h.playerService.SearchPlayers(ctx, query, limit)
	if err != nil {
		h.logger.WarnContext(ctx, "player search failed", "query", query, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, players)
}

func (h *Handler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPlayer")
	defer span.End()

	name := strings.TrimSpace(r.PathValue("name"))
	player, err := h.playerService.ResolvePlayer(ctx, name)
	if err != nil {
		h.logger.WarnContext(ctx, "resolve player failed", "name", name, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, player)
}

func (h *Handler) ListRookies(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListRookies")
	defer span.End()

	position := r.URL.Query().Get("position")
	strict := queryFlag(r, "strict")
	rookies, err := h.playerService.ListRookies(ctx, position, strict)
	if err != nil {
		h.logger.WarnContext(ctx, "list rookies failed", "strict", strict, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, rookies)
}

func (h *Handler) ListTrendingPlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTrendingPlayers")
	defer span.End()

	trending, err := h.playerService.Trending(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "list trending players failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, trending)
}

func (h *Handler) GetLastUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLastUpdate")
	defer span.End()

	info, err := h.playerService.LastUpdate(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, info)
}
