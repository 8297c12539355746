package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/draftedge/draftedge/internal/domain/fusion"
	"github.com/draftedge/draftedge/internal/domain/identity"
	"github.com/draftedge/draftedge/internal/domain/rankings"
	"github.com/draftedge/draftedge/internal/domain/values"
	"github.com/draftedge/draftedge/internal/platform/logging"
	"github.com/draftedge/draftedge/internal/platform/snapshot"
)

const defaultListLimit = 100

// PlayerService answers read queries against the current data snapshot.
type PlayerService struct {
	store  *snapshot.Store[DataSnapshot]
	logger *logging.Logger
}

func NewPlayerService(store *snapshot.Store[DataSnapshot], logger *logging.Logger) *PlayerService {
	if logger == nil {
		logger = logging.Default()
	}
	return &PlayerService{store: store, logger: logger}
}

func (s *PlayerService) snapshot() (DataSnapshot, error) {
	snap, ok := s.store.Load()
	if !ok {
		return DataSnapshot{}, fmt.Errorf("%w: first data refresh has not completed yet", ErrDataNotReady)
	}
	return snap, nil
}

// ResolvePlayer finds one player by free-text name, using exact normalized
// match first and substring fallback second.
func (s *PlayerService) ResolvePlayer(ctx context.Context, name string) (fusion.Record, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.ResolvePlayer")
	defer span.End()

	if strings.TrimSpace(name) == "" {
		return fusion.Record{}, fmt.Errorf("%w: player name is required", ErrInvalidInput)
	}

	snap, err := s.snapshot()
	if err != nil {
		return fusion.Record{}, err
	}

	key, ok := identity.Resolve(name, snap.Players)
	if !ok {
		return fusion.Record{}, fmt.Errorf("%w: no player matches %q", ErrNotFound, name)
	}
	return snap.Players[key], nil
}

// PlayerFilter narrows a player listing. Category keeps only players ranked
// on that board and also picks the sort order; empty means overall.
type PlayerFilter struct {
	Position   string
	Team       string
	Category   string
	RookieOnly bool
	Limit      int
}

// ListPlayers returns players ordered by rank in the requested category,
// optionally filtered by position, team, board membership, and the rookie
// flag. Unranked players sort last.
func (s *PlayerService) ListPlayers(ctx context.Context, filter PlayerFilter) ([]fusion.Record, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.ListPlayers")
	defer span.End()

	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	cat := rankings.CategoryOverall
	hasRankOnly := false
	if raw := strings.ToLower(strings.TrimSpace(filter.Category)); raw != "" {
		cat, err = rankings.ParseCategoryName(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		hasRankOnly = true
	}

	position := strings.ToUpper(strings.TrimSpace(filter.Position))
	team := strings.ToUpper(strings.TrimSpace(filter.Team))

	out := make([]fusion.Record, 0, len(snap.Players))
	for _, rec := range snap.Players {
		if position != "" && !strings.EqualFold(positionOf(rec), position) {
			continue
		}
		if team != "" && !strings.EqualFold(rec.Team, team) {
			continue
		}
		if hasRankOnly && !rec.Stats(cat).Rank.Known {
			continue
		}
		if filter.RookieOnly && !rec.RookieListed {
			continue
		}
		out = append(out, rec)
	}

	sortByRank(out, cat)
	return clampRecords(out, filter.Limit), nil
}

// SearchPlayers matches the query as a substring of the normalized key or
// the display name, case-insensitively.
func (s *PlayerService) SearchPlayers(ctx context.Context, query string, limit int) ([]fusion.Record, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.SearchPlayers")
	defer span.End()

	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: search query is required", ErrInvalidInput)
	}

	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	needle, ok := identity.Normalize(query)
	if !ok {
		return nil, fmt.Errorf("%w: search query has no usable characters", ErrInvalidInput)
	}

	out := make([]fusion.Record, 0, 16)
	for key, rec := range snap.Players {
		if strings.Contains(key, needle) || strings.Contains(strings.ToLower(rec.DisplayName), needle) {
			out = append(out, rec)
		}
	}

	sortByRank(out, rankings.CategoryOverall)
	return clampRecords(out, limit), nil
}

// ListRookies returns rookie board members only, ordered by rookie rank. A
// zero-experience veteran absent from the rookie board does not qualify.
// Strict additionally requires a known zero years-of-experience; board
// membership and zero experience are independent signals and only strict
// mode combines them.
func (s *PlayerService) ListRookies(ctx context.Context, position string, strict bool) ([]fusion.Record, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.ListRookies")
	defer span.End()

	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	position = strings.ToUpper(strings.TrimSpace(position))

	out := make([]fusion.Record, 0, len(snap.Boards.Rookie))
	for _, rec := range snap.Players {
		if !rec.RookieListed {
			continue
		}
		if strict && !(rec.YearsExp.Known && rec.YearsExp.Value == 0) {
			continue
		}
		if position != "" && !strings.EqualFold(positionOf(rec), position) {
			continue
		}
		out = append(out, rec)
	}

	sortByRank(out, rankings.CategoryRookie)
	return out, nil
}

// PlayerValues returns the full market value table keyed by the feed's
// verbatim identity strings.
func (s *PlayerService) PlayerValues(ctx context.Context) (values.Table, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.PlayerValues")
	defer span.End()

	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	return snap.PlayerValues, nil
}

// PickValues returns the full draft pick value table.
func (s *PlayerService) PickValues(ctx context.Context) (values.Table, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.PickValues")
	defer span.End()

	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	return snap.PickValues, nil
}

// PlayerValue looks up a market value row by the feed's verbatim identity
// value. An exact match wins; otherwise a case-insensitive scan over sorted
// keys decides.
func (s *PlayerService) PlayerValue(ctx context.Context, name string) (values.Row, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.PlayerValue")
	defer span.End()

	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	return lookupValueRow(snap.PlayerValues, name, "player")
}

// PickValue looks up a draft pick value row by its verbatim label, for
// example "2026 Pick 1.04" or "Mid 1st".
func (s *PlayerService) PickValue(ctx context.Context, pick string) (values.Row, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.PickValue")
	defer span.End()

	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	return lookupValueRow(snap.PickValues, pick, "pick")
}

// TrendingView is a trending row enriched with directory identity.
type TrendingView struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Position string `json:"position,omitempty"`
	Team     string `json:"team,omitempty"`
	Count    int    `json:"count"`
}

// Trending returns the most-added players, joined against the directory for
// display names. Rows whose ID the directory no longer knows keep the bare
// ID.
func (s *PlayerService) Trending(ctx context.Context) ([]TrendingView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.Trending")
	defer span.End()

	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	out := make([]TrendingView, 0, len(snap.Trending))
	for _, row := range snap.Trending {
		view := TrendingView{PlayerID: row.PlayerID, Name: row.PlayerID, Count: row.Count}
		if entry, ok := snap.Directory.ByID[row.PlayerID]; ok {
			view.Name = entry.FullName
			view.Position = entry.Position
			view.Team = entry.Team
		}
		out = append(out, view)
	}
	return out, nil
}

// LastUpdateInfo reports when the snapshot was built and which sources were
// missing from it.
type LastUpdateInfo struct {
	RefreshedAt time.Time `json:"refreshedAt"`
	PlayerCount int       `json:"playerCount"`
	Degraded    []string  `json:"degraded,omitempty"`
}

func (s *PlayerService) LastUpdate(ctx context.Context) (LastUpdateInfo, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.LastUpdate")
	defer span.End()

	snap, err := s.snapshot()
	if err != nil {
		return LastUpdateInfo{}, err
	}
	return LastUpdateInfo{
		RefreshedAt: snap.RefreshedAt,
		PlayerCount: len(snap.Players),
		Degraded:    snap.Degraded,
	}, nil
}

// Ready reports whether a snapshot has been published yet.
func (s *PlayerService) Ready() bool {
	_, ok := s.store.Load()
	return ok
}

func lookupValueRow(table values.Table, id, kind string) (values.Row, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: %s identity is required", ErrInvalidInput, kind)
	}
	if len(table) == 0 {
		return nil, fmt.Errorf("%w: %s values are not loaded", ErrDataNotReady, kind)
	}

	if row, ok := table[id]; ok {
		return row, nil
	}

	keys := make([]string, 0, len(table))
	for key := range table {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if strings.EqualFold(key, id) {
			return table[key], nil
		}
	}

	return nil, fmt.Errorf("%w: no %s value for %q", ErrNotFound, kind, id)
}

func positionOf(rec fusion.Record) string {
	// Positional board entries can carry a rank suffix ("WR1"); compare on
	// the alphabetic prefix.
	pos := rec.Position
	for i, r := range pos {
		if r >= '0' && r <= '9' {
			return pos[:i]
		}
	}
	return pos
}

func sortByRank(recs []fusion.Record, cat rankings.Category) {
	sort.SliceStable(recs, func(i, j int) bool {
		a, b := recs[i].Stats(cat).Rank, recs[j].Stats(cat).Rank
		switch {
		case a.Known && b.Known && a.Value != b.Value:
			return a.Value < b.Value
		case a.Known != b.Known:
			return a.Known
		default:
			return recs[i].Key < recs[j].Key
		}
	})
}

func clampRecords(recs []fusion.Record, limit int) []fusion.Record {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if len(recs) > limit {
		return recs[:limit]
	}
	return recs
}
