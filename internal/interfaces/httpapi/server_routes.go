package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	mux.HandleFunc("GET /readyz", handler.Readyz)
}

func registerPlayerRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/players", handler.ListPlayers)
	mux.HandleFunc("GET /v1/players/search", handler.SearchPlayers)
	mux.HandleFunc("GET /v1/players/trending", handler.ListTrendingPlayers)
	mux.HandleFunc("GET /v1/players/{name}", handler.GetPlayer)
	mux.HandleFunc("GET /v1/rookies", handler.ListRookies)
	mux.HandleFunc("GET /v1/meta/last-update", handler.GetLastUpdate)
}

func registerValueRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/values/players", handler.ListPlayerValues)
	mux.HandleFunc("GET /v1/values/players/{name}", handler.GetPlayerValue)
	mux.HandleFunc("GET /v1/values/picks", handler.ListPickValues)
	mux.HandleFunc("GET /v1/values/picks/{pick}", handler.GetPickValue)
}

func registerAnalysisRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v1/analysis/dossier", handler.RunDossier)
	mux.HandleFunc("POST /v1/analysis/rookie-rankings", handler.RunRookieRankings)
	mux.HandleFunc("POST /v1/analysis/keepers", handler.RunKeeperEvaluation)
	mux.HandleFunc("POST /v1/analysis/trade", handler.RunTradeAnalysis)
	mux.HandleFunc("POST /v1/analysis/tiers", handler.RunPositionalTiers)
	mux.HandleFunc("POST /v1/analysis/market-inefficiencies", handler.RunMarketInefficiencies)
	mux.HandleFunc("POST /v1/analysis/waiver-swap", handler.RunWaiverSwap)
	mux.HandleFunc("POST /v1/analysis/waiver-wire", handler.RunWaiverWire)
	mux.HandleFunc("POST /v1/analysis/suggest-position", handler.RunSuggestPosition)
	mux.HandleFunc("POST /v1/analysis/pick-evaluator", handler.RunPickEvaluator)
	mux.HandleFunc("POST /v1/analysis/roster-composition", handler.RunRosterComposition)
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/refresh", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunRefreshJob)))
}
