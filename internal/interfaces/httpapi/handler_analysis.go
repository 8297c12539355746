package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/draftedge/draftedge/internal/usecase"
)

type analysisDTO struct {
	Analysis string `json:"analysis"`
}

func (h *Handler) RunDossier(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunDossier")
	defer span.End()

	req, err := decodeBody[usecase.DossierRequest](r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	analysis, err := h.analysisService.Dossier(ctx, apiKeyFrom(r), req)
	if err != nil {
		h.logger.WarnContext(ctx, "dossier analysis failed", "player", req.PlayerName, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, analysisDTO{Analysis: analysis})
}

func (h *Handler) RunRookieRankings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunRookieRankings")
	defer span.End()

	raw, err := h.analysisService.RookieRankings(ctx, apiKeyFrom(r))
	if err != nil {
		h.logger.WarnContext(ctx, "rookie rankings analysis failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, json.RawMessage(raw))
}

func (h *Handler) RunKeeperEvaluation(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunKeeperEvaluation")
	defer span.End()

	req, err := decodeBody[usecase.KeeperRequest](r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	analysis, err := h.analysisService.KeeperEvaluation(ctx, apiKeyFrom(r), req)
	if err != nil {
		h.logger.WarnContext(ctx, "keeper evaluation failed", "keepers", len(req.Keepers), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, analysisDTO{Analysis: analysis})
}

func (h *Handler) RunTradeAnalysis(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunTradeAnalysis")
	defer span.End()

	req, err := decodeBody[usecase.TradeRequest](r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	analysis, err := h.analysisService.TradeAnalysis(ctx, apiKeyFrom(r), req)
	if err != nil {
		h.logger.WarnContext(ctx, "trade analysis failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, analysisDTO{Analysis: analysis})
}

func (h *Handler) RunPositionalTiers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunPositionalTiers")
	defer span.End()

	req, err := decodeBody[usecase.TiersRequest](r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	raw, err := h.analysisService.PositionalTiers(ctx, apiKeyFrom(r), req)
	if err != nil {
		h.logger.WarnContext(ctx, "positional tiers failed", "position", req.Position, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, json.RawMessage(raw))
}

func (h *Handler) RunMarketInefficiencies(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunMarketInefficiencies")
	defer span.End()

	req, err := decodeBody[usecase.MarketRequest](r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	raw, err := h.analysisService.MarketInefficiencies(ctx, apiKeyFrom(r), req)
	if err != nil {
		h.logger.WarnContext(ctx, "market inefficiencies failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, json.RawMessage(raw))
}

func (h *Handler) RunWaiverSwap(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunWaiverSwap")
	defer span.End()

	req, err := decodeBody[usecase.WaiverSwapRequest](r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	analysis, err := h.analysisService.WaiverSwap(ctx, apiKeyFrom(r), req)
	if err != nil {
		h.logger.WarnContext(ctx, "waiver swap analysis failed", "player_to_add", req.PlayerToAdd, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, analysisDTO{Analysis: analysis})
}

func (h *Handler) RunWaiverWire(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunWaiverWire")
	defer span.End()

	req, err := decodeBody[usecase.WaiverWireRequest](r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	analysis, err := h.analysisService.WaiverWire(ctx, apiKeyFrom(r), req)
	if err != nil {
		h.logger.WarnContext(ctx, "waiver wire analysis failed", "roster_size", len(req.TeamRoster), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, analysisDTO{Analysis: analysis})
}

func (h *Handler) RunSuggestPosition(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSuggestPosition")
	defer span.End()

	req, err := decodeBody[usecase.SuggestPositionRequest](r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	analysis, err := h.analysisService.SuggestPosition(ctx, apiKeyFrom(r), req)
	if err != nil {
		h.logger.WarnContext(ctx, "suggest position failed", "round", req.CurrentRound, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, analysisDTO{Analysis: analysis})
}

func (h *Handler) RunPickEvaluator(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunPickEvaluator")
	defer span.End()

	req, err := decodeBody[usecase.PickEvaluatorRequest](r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	analysis, err := h.analysisService.PickEvaluator(ctx, apiKeyFrom(r), req)
	if err != nil {
		h.logger.WarnContext(ctx, "pick evaluator failed", "player", req.PlayerToPick, "round", req.CurrentRound, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, analysisDTO{Analysis: analysis})
}

func (h *Handler) RunRosterComposition(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunRosterComposition")
	defer span.End()

	req, err := decodeBody[usecase.RosterCompositionRequest](r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	analysis, err := h.analysisService.RosterComposition(ctx, apiKeyFrom(r), req)
	if err != nil {
		h.logger.WarnContext(ctx, "roster composition failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, analysisDTO{Analysis: analysis})
}
