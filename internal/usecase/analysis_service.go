package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"

	"github.com/draftedge/draftedge/internal/domain/fusion"
	"github.com/draftedge/draftedge/internal/domain/identity"
	"github.com/draftedge/draftedge/internal/domain/metric"
	"github.com/draftedge/draftedge/internal/domain/rankings"
	"github.com/draftedge/draftedge/internal/platform/cache"
	"github.com/draftedge/draftedge/internal/platform/logging"
	"github.com/draftedge/draftedge/internal/platform/snapshot"
)

const (
	rookiePromptLimit    = 50
	availablePlayerLimit = 50
	marketCandidateLimit = 150
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// AnalysisService builds prompts from the current snapshot and runs them
// through the analysis provider. Answers are cached per prompt input until
// the next data refresh purges the cache; the caller's API key is never part
// of a cache key.
type AnalysisService struct {
	store    *snapshot.Store[DataSnapshot]
	provider AnalysisProvider
	cache    *cache.Store
	logger   *logging.Logger
}

func NewAnalysisService(store *snapshot.Store[DataSnapshot], provider AnalysisProvider, responseCache *cache.Store, logger *logging.Logger) *AnalysisService {
	if logger == nil {
		logger = logging.Default()
	}
	return &AnalysisService{
		store:    store,
		provider: provider,
		cache:    responseCache,
		logger:   logger,
	}
}

type DossierRequest struct {
	PlayerName string `json:"playerName" validate:"required"`
	Category   string `json:"category"`
}

type KeeperCandidate struct {
	Name    string `json:"name" validate:"required"`
	Round   int    `json:"round" validate:"required,min=2"`
	Context string `json:"context"`
}

type KeeperRequest struct {
	Keepers  []KeeperCandidate `json:"keepers" validate:"required,min=1,dive"`
	Category string            `json:"category"`
}

type TradeRequest struct {
	MyAssets      []string `json:"myAssets" validate:"required,min=1"`
	PartnerAssets []string `json:"partnerAssets" validate:"required,min=1"`
	ScoringFormat string   `json:"scoringFormat"`
	Category      string   `json:"category"`
}

type TiersRequest struct {
	Position string `json:"position" validate:"required"`
	Category string `json:"category"`
}

type MarketRequest struct {
	Category string `json:"category"`
}

type WaiverSwapRequest struct {
	Roster      map[string]string `json:"roster" validate:"required,min=1"`
	PlayerToAdd string            `json:"playerToAdd" validate:"required"`
	Category    string            `json:"category"`
}

type WaiverWireRequest struct {
	TeamRoster []string `json:"teamRoster" validate:"required,min=1"`
	Category   string   `json:"category"`
}

type SuggestPositionRequest struct {
	CurrentRound int               `json:"currentRound" validate:"required,min=1"`
	DraftBoard   map[string]string `json:"draftBoard"`
	Category     string            `json:"category"`
}

type PickEvaluatorRequest struct {
	CurrentRound int               `json:"currentRound" validate:"required,min=1"`
	PlayerToPick string            `json:"playerToPick" validate:"required"`
	DraftBoard   map[string]string `json:"draftBoard"`
	Category     string            `json:"category"`
}

type RosterCompositionRequest struct {
	Composition map[string]int `json:"composition" validate:"required,min=1"`
}

func (s *AnalysisService) Dossier(ctx context.Context, apiKey string, req DossierRequest) (string, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AnalysisService.Dossier")
	defer span.End()

	snap, cat, err := s.prepare(req, req.Category)
	if err != nil {
		return "", err
	}

	prompt := dossierPrompt(playerContext(snap, req.PlayerName, cat))
	return s.cachedMarkdown(ctx, apiKey, "dossier", req, prompt)
}

func (s *AnalysisService) RookieRankings(ctx context.Context, apiKey string) ([]byte, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AnalysisService.RookieRankings")
	defer span.End()

	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	rookies := make([]fusion.Record, 0, len(snap.Boards.Rookie))
	for _, rec := range snap.Players {
		if rec.RookieListed {
			rookies = append(rookies, rec)
		}
	}
	if len(rookies) == 0 {
		return nil, fmt.Errorf("%w: no rookie rankings loaded", ErrDataNotReady)
	}
	sortByRank(rookies, rankings.CategoryRookie)
	if len(rookies) > rookiePromptLimit {
		rookies = rookies[:rookiePromptLimit]
	}

	lines := make([]string, 0, len(rookies))
	for _, rec := range rookies {
		stats := rec.Rookie
		lines = append(lines, fmt.Sprintf("- %s (%s, %s) - ECR: %s, SD: %s, Best: %s, Worst: %s, RankDelta: %s",
			rec.DisplayName, rec.Position, rec.Team,
			floatOrNA(stats.Rank), floatOrNA(stats.StdDev), intOrNA(stats.Best), intOrNA(stats.Worst), floatOrNA(stats.RankDelta),
		))
	}

	return s.cachedJSON(ctx, apiKey, "rookie_rankings", struct{}{}, rookieRankingsPrompt(lines))
}

func (s *AnalysisService) KeeperEvaluation(ctx context.Context, apiKey string, req KeeperRequest) (string, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AnalysisService.KeeperEvaluation")
	defer span.End()

	snap, cat, err := s.prepare(req, req.Category)
	if err != nil {
		return "", err
	}

	blocks := make([]string, 0, len(req.Keepers))
	for _, k := range req.Keepers {
		block := playerContext(snap, k.Name, cat)
		block += fmt.Sprintf("\n  - Keeper Cost: A round %d pick", k.Round-1)
		if trimmed := strings.TrimSpace(k.Context); trimmed != "" {
			block += fmt.Sprintf("\n  - Additional Context: %s", trimmed)
		}
		blocks = append(blocks, block)
	}

	return s.cachedMarkdown(ctx, apiKey, "keeper_evaluation", req, keeperEvaluationPrompt(strings.Join(blocks, "\n")))
}

func (s *AnalysisService) TradeAnalysis(ctx context.Context, apiKey string, req TradeRequest) (string, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AnalysisService.TradeAnalysis")
	defer span.End()

	snap, cat, err := s.prepare(req, req.Category)
	if err != nil {
		return "", err
	}

	prompt := tradeAnalysisPrompt(
		strings.TrimSpace(req.ScoringFormat),
		assetContext(snap, req.MyAssets, cat),
		assetContext(snap, req.PartnerAssets, cat),
	)
	return s.cachedMarkdown(ctx, apiKey, "trade_analysis", req, prompt)
}

func (s *AnalysisService) PositionalTiers(ctx context.Context, apiKey string, req TiersRequest) ([]byte, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AnalysisService.PositionalTiers")
	defer span.End()

	snap, cat, err := s.prepare(req, req.Category)
	if err != nil {
		return nil, err
	}

	position := strings.ToUpper(strings.TrimSpace(req.Position))
	players := make([]fusion.Record, 0, 64)
	for _, rec := range snap.Players {
		if strings.EqualFold(positionOf(rec), position) && rec.Stats(cat).Rank.Known {
			players = append(players, rec)
		}
	}
	if len(players) == 0 {
		return nil, fmt.Errorf("%w: no ranked players at position %q", ErrNotFound, position)
	}
	sortByRank(players, cat)

	type tierPlayer struct {
		Name      string       `json:"name"`
		Position  string       `json:"position"`
		Team      string       `json:"team"`
		ECR       metric.Float `json:"ecr"`
		SD        metric.Float `json:"sd"`
		Best      metric.Int   `json:"best"`
		Worst     metric.Int   `json:"worst"`
		RankDelta metric.Float `json:"rank_delta"`
	}
	list := make([]tierPlayer, 0, len(players))
	for _, rec := range players {
		stats := rec.Stats(cat)
		list = append(list, tierPlayer{
			Name:      rec.DisplayName,
			Position:  rec.Position,
			Team:      rec.Team,
			ECR:       stats.Rank,
			SD:        stats.StdDev,
			Best:      stats.Best,
			Worst:     stats.Worst,
			RankDelta: stats.RankDelta,
		})
	}

	listJSON, err := sonic.MarshalIndent(list, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode tier candidates: %w", err)
	}

	return s.cachedJSON(ctx, apiKey, "positional_tiers", req, positionalTiersPrompt(position, string(listJSON)))
}

func (s *AnalysisService) MarketInefficiencies(ctx context.Context, apiKey string, req MarketRequest) ([]byte, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AnalysisService.MarketInefficiencies")
	defer span.End()

	snap, cat, err := s.prepare(req, req.Category)
	if err != nil {
		return nil, err
	}

	candidates := make([]fusion.Record, 0, len(snap.Players))
	for _, rec := range snap.Players {
		if rec.Stats(cat).Rank.Known {
			candidates = append(candidates, rec)
		}
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no ranked players loaded", ErrDataNotReady)
	}
	sortByRank(candidates, cat)
	if len(candidates) > marketCandidateLimit {
		candidates = candidates[:marketCandidateLimit]
	}

	lines := make([]string, 0, len(candidates))
	for _, rec := range candidates {
		stats := rec.Stats(cat)
		rookie := "No"
		if rec.RookieListed {
			rookie = "Yes"
		}
		status := rec.Status
		if status == "" {
			status = "N/A"
		}
		lines = append(lines, fmt.Sprintf("- %s (%s, %s): ECR=%s, SD=%s, Best=%s, Worst=%s, RankDelta=%s, Is Rookie: %s, Status=%s",
			rec.DisplayName, rec.Position, rec.Team,
			floatOrNA(stats.Rank), floatOrNA(stats.StdDev), intOrNA(stats.Best), intOrNA(stats.Worst), floatOrNA(stats.RankDelta),
			rookie, status,
		))
	}

	return s.cachedJSON(ctx, apiKey, "market_inefficiencies", req, marketInefficienciesPrompt(strings.Join(lines, "\n")))
}

func (s *AnalysisService) WaiverSwap(ctx context.Context, apiKey string, req WaiverSwapRequest) (string, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AnalysisService.WaiverSwap")
	defer span.End()

	snap, cat, err := s.prepare(req, req.Category)
	if err != nil {
		return "", err
	}

	slots := sortedKeys(req.Roster)
	blocks := make([]string, 0, len(slots))
	for _, slot := range slots {
		name := strings.TrimSpace(req.Roster[slot])
		if name == "" {
			continue
		}
		blocks = append(blocks, fmt.Sprintf("(%s) %s", slot, playerContext(snap, name, cat)))
	}

	prompt := waiverSwapPrompt(strings.Join(blocks, "\n"), playerContext(snap, req.PlayerToAdd, cat))
	return s.cachedMarkdown(ctx, apiKey, "waiver_swap", req, prompt)
}

func (s *AnalysisService) WaiverWire(ctx context.Context, apiKey string, req WaiverWireRequest) (string, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AnalysisService.WaiverWire")
	defer span.End()

	snap, cat, err := s.prepare(req, req.Category)
	if err != nil {
		return "", err
	}

	rostered := make(map[string]struct{}, len(req.TeamRoster))
	for _, name := range req.TeamRoster {
		if key, ok := identity.Normalize(name); ok {
			rostered[key] = struct{}{}
		}
	}

	available := make([]fusion.Record, 0, len(snap.Players))
	for key, rec := range snap.Players {
		if _, taken := rostered[key]; taken {
			continue
		}
		if rec.Stats(cat).Rank.Known {
			available = append(available, rec)
		}
	}
	sortByRank(available, cat)
	if len(available) > availablePlayerLimit {
		available = available[:availablePlayerLimit]
	}

	lines := make([]string, 0, len(available))
	for _, rec := range available {
		stats := rec.Stats(cat)
		lines = append(lines, fmt.Sprintf("- %s (%s, %s) - ECR: %s, SD: %s, Best: %s, Worst: %s, RankDelta: %s",
			rec.DisplayName, rec.Position, rec.Team,
			floatOrNA(stats.Rank), floatOrNA(stats.StdDev), intOrNA(stats.Best), intOrNA(stats.Worst), floatOrNA(stats.RankDelta),
		))
	}

	roster := make([]string, 0, len(req.TeamRoster))
	for _, name := range req.TeamRoster {
		roster = append(roster, playerContext(snap, name, cat))
	}

	prompt := waiverWirePrompt(strings.Join(roster, "\n"), strings.Join(lines, "\n"))
	return s.cachedMarkdown(ctx, apiKey, "waiver_wire", req, prompt)
}

func (s *AnalysisService) SuggestPosition(ctx context.Context, apiKey string, req SuggestPositionRequest) (string, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AnalysisService.SuggestPosition")
	defer span.End()

	snap, cat, err := s.prepare(req, req.Category)
	if err != nil {
		return "", err
	}

	prompt := suggestPositionPrompt(req.CurrentRound, draftSummary(snap, req.DraftBoard, cat, "No picks made yet."))
	return s.cachedText(ctx, apiKey, "suggest_position", req, prompt)
}

func (s *AnalysisService) PickEvaluator(ctx context.Context, apiKey string, req PickEvaluatorRequest) (string, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AnalysisService.PickEvaluator")
	defer span.End()

	snap, cat, err := s.prepare(req, req.Category)
	if err != nil {
		return "", err
	}

	prompt := pickEvaluatorPrompt(
		req.CurrentRound,
		draftSummary(snap, req.DraftBoard, cat, "This is my first pick."),
		playerContext(snap, req.PlayerToPick, cat),
	)
	return s.cachedMarkdown(ctx, apiKey, "pick_evaluator", req, prompt)
}

func (s *AnalysisService) RosterComposition(ctx context.Context, apiKey string, req RosterCompositionRequest) (string, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AnalysisService.RosterComposition")
	defer span.End()

	if err := validateRequest(req); err != nil {
		return "", err
	}

	positions := sortedKeys(req.Composition)
	parts := make([]string, 0, len(positions))
	for _, pos := range positions {
		parts = append(parts, fmt.Sprintf("%d %s", req.Composition[pos], pos))
	}

	return s.cachedText(ctx, apiKey, "roster_composition", req, rosterCompositionPrompt(strings.Join(parts, ", ")))
}

func (s *AnalysisService) snapshot() (DataSnapshot, error) {
	snap, ok := s.store.Load()
	if !ok {
		return DataSnapshot{}, fmt.Errorf("%w: first data refresh has not completed yet", ErrDataNotReady)
	}
	return snap, nil
}

// prepare validates the request, checks data readiness and resolves the
// ranking category preference.
func (s *AnalysisService) prepare(req any, category string) (DataSnapshot, rankings.Category, error) {
	if err := validateRequest(req); err != nil {
		return DataSnapshot{}, "", err
	}

	snap, err := s.snapshot()
	if err != nil {
		return DataSnapshot{}, "", err
	}

	cat := rankings.CategoryOverall
	if trimmed := strings.TrimSpace(category); trimmed != "" {
		parsed, err := rankings.ParseCategoryName(trimmed)
		if err != nil {
			return DataSnapshot{}, "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		cat = parsed
	}

	return snap, cat, nil
}

func requireAPIKey(apiKey string) error {
	if strings.TrimSpace(apiKey) == "" {
		return fmt.Errorf("%w: api key is required", ErrUnauthorized)
	}
	return nil
}

func validateRequest(req any) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

func (s *AnalysisService) cachedMarkdown(ctx context.Context, apiKey, op string, req any, prompt string) (string, error) {
	if err := requireAPIKey(apiKey); err != nil {
		return "", err
	}
	out, err := s.cached(ctx, op, req, func(ctx context.Context) (any, error) {
		return s.provider.Analyze(ctx, apiKey, prompt)
	})
	if err != nil {
		return "", err
	}
	text, ok := out.(string)
	if !ok {
		return "", fmt.Errorf("unexpected cached payload type %T", out)
	}
	return text, nil
}

func (s *AnalysisService) cachedText(ctx context.Context, apiKey, op string, req any, prompt string) (string, error) {
	if err := requireAPIKey(apiKey); err != nil {
		return "", err
	}
	out, err := s.cached(ctx, op, req, func(ctx context.Context) (any, error) {
		return s.provider.AnalyzeText(ctx, apiKey, prompt)
	})
	if err != nil {
		return "", err
	}
	text, ok := out.(string)
	if !ok {
		return "", fmt.Errorf("unexpected cached payload type %T", out)
	}
	return text, nil
}

func (s *AnalysisService) cachedJSON(ctx context.Context, apiKey, op string, req any, prompt string) ([]byte, error) {
	if err := requireAPIKey(apiKey); err != nil {
		return nil, err
	}
	out, err := s.cached(ctx, op, req, func(ctx context.Context) (any, error) {
		return s.provider.AnalyzeJSON(ctx, apiKey, prompt)
	})
	if err != nil {
		return nil, err
	}
	raw, ok := out.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected cached payload type %T", out)
	}
	return raw, nil
}

func (s *AnalysisService) cached(ctx context.Context, op string, req any, load func(context.Context) (any, error)) (any, error) {
	if apiErr := ctx.Err(); apiErr != nil {
		return nil, apiErr
	}
	if s.cache == nil {
		return load(ctx)
	}

	key, err := cacheKey(op, req)
	if err != nil {
		// A request that cannot be serialized still deserves an answer,
		// just an uncached one.
		s.logger.WarnContext(ctx, "analysis cache key build failed", "op", op, "error", err)
		return load(ctx)
	}
	return s.cache.GetOrLoad(ctx, key, load)
}

func cacheKey(op string, req any) (string, error) {
	payload, err := sonic.MarshalString(req)
	if err != nil {
		return "", err
	}
	return "analysis:" + op + ":" + payload, nil
}

// playerContext renders one player's context block for a prompt, falling
// back to a stub line when the name resolves to nothing.
func playerContext(snap DataSnapshot, name string, cat rankings.Category) string {
	key, ok := identity.Resolve(name, snap.Players)
	if !ok {
		return fmt.Sprintf("- Player: %s (no ranking data available)", strings.TrimSpace(name))
	}
	return fusion.FormatContext(snap.Players[key], cat)
}

// assetContext renders trade assets; draft picks pass through as plain
// bullet lines since they have no player context.
func assetContext(snap DataSnapshot, assets []string, cat rankings.Category) string {
	blocks := make([]string, 0, len(assets))
	for _, asset := range assets {
		trimmed := strings.TrimSpace(asset)
		if trimmed == "" {
			continue
		}
		if strings.Contains(strings.ToLower(trimmed), "pick") {
			blocks = append(blocks, "- "+trimmed)
			continue
		}
		blocks = append(blocks, playerContext(snap, trimmed, cat))
	}
	return strings.Join(blocks, "\n")
}

func draftSummary(snap DataSnapshot, board map[string]string, cat rankings.Category, empty string) string {
	if len(board) == 0 {
		return empty
	}

	rounds := sortedKeys(board)
	parts := make([]string, 0, len(rounds))
	for _, round := range rounds {
		name := strings.TrimSpace(board[round])
		if name == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: Drafted %s", round, playerContext(snap, name, cat)))
	}
	if len(parts) == 0 {
		return empty
	}
	return strings.Join(parts, "\n")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func floatOrNA(f metric.Float) string {
	if !f.Known {
		return "N/A"
	}
	return fmt.Sprintf("%.1f", f.Value)
}

func intOrNA(i metric.Int) string {
	if !i.Known {
		return "N/A"
	}
	return fmt.Sprintf("%d", i.Value)
}
