package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/draftedge/draftedge/internal/domain/directory"
	"github.com/draftedge/draftedge/internal/domain/fusion"
	"github.com/draftedge/draftedge/internal/domain/rankings"
	"github.com/draftedge/draftedge/internal/domain/values"
	"github.com/draftedge/draftedge/internal/infrastructure/feed"
	"github.com/draftedge/draftedge/internal/platform/cache"
	"github.com/draftedge/draftedge/internal/platform/logging"
	"github.com/draftedge/draftedge/internal/platform/snapshot"
)

// DataSnapshot is the immutable result of one refresh pass. Every read path
// works off a snapshot, so a refresh can never expose half-built state.
type DataSnapshot struct {
	Players      map[string]fusion.Record
	Boards       rankings.Set
	Directory    directory.Index
	PlayerValues values.Table
	PickValues   values.Table
	Trending     []TrendingPlayer
	RefreshedAt  time.Time
	Degraded     []string
}

// RefreshReport summarizes a completed refresh for logs and the internal job
// endpoint.
type RefreshReport struct {
	RefreshedAt  time.Time `json:"refreshedAt"`
	PlayerCount  int       `json:"playerCount"`
	Degraded     []string  `json:"degraded,omitempty"`
	RankingsFrom string    `json:"rankingsFrom"`
}

const (
	sourceNetwork = "network"
	sourceCache   = "cache"
)

type RefreshServiceConfig struct {
	Feeds          FeedSource
	Directory      DirectoryProvider
	Store          *snapshot.Store[DataSnapshot]
	AnalysisCache  *cache.Store
	Logger         *logging.Logger
	Pool           *ants.Pool
	TrendingWindow int
	TrendingLimit  int
}

// RefreshService rebuilds the data snapshot from all upstream sources. The
// sources are fetched in parallel; any subset may fail and the refresh still
// publishes what survived, except when every ranking board comes back empty.
// In that case the previous snapshot is kept untouched.
type RefreshService struct {
	feeds          FeedSource
	directory      DirectoryProvider
	store          *snapshot.Store[DataSnapshot]
	analysisCache  *cache.Store
	logger         *logging.Logger
	pool           *ants.Pool
	trendingWindow int
	trendingLimit  int

	mu sync.Mutex
}

func NewRefreshService(cfg RefreshServiceConfig) *RefreshService {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &RefreshService{
		feeds:          cfg.Feeds,
		directory:      cfg.Directory,
		store:          cfg.Store,
		analysisCache:  cfg.AnalysisCache,
		logger:         logger,
		pool:           cfg.Pool,
		trendingWindow: cfg.TrendingWindow,
		trendingLimit:  cfg.TrendingLimit,
	}
}

type refreshResults struct {
	mu           sync.Mutex
	boards       rankings.Set
	directory    directory.Index
	playerValues values.Table
	pickValues   values.Table
	trending     []TrendingPlayer
	degraded     []string
	fromCache    bool
}

func (r *refreshResults) fail(source string) {
	r.mu.Lock()
	r.degraded = append(r.degraded, source)
	r.mu.Unlock()
}

// Refresh runs one full ingest pass. Only one refresh runs at a time;
// concurrent calls serialize.
func (s *RefreshService) Refresh(ctx context.Context) (RefreshReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, span := startUsecaseSpan(ctx, "usecase.RefreshService.Refresh")
	defer span.End()

	started := time.Now()
	results := &refreshResults{}

	tasks := []struct {
		name string
		run  func(context.Context)
	}{
		{"rankings", func(ctx context.Context) { s.loadRankings(ctx, results) }},
		{"player_values", func(ctx context.Context) { s.loadPlayerValues(ctx, results) }},
		{"pick_values", func(ctx context.Context) { s.loadPickValues(ctx, results) }},
		{"directory", func(ctx context.Context) { s.loadDirectory(ctx, results) }},
		{"trending", func(ctx context.Context) { s.loadTrending(ctx, results) }},
	}

	var wg sync.WaitGroup
	for _, task := range tasks {
		wg.Add(1)
		run := task.run
		job := func() {
			defer wg.Done()
			run(ctx)
		}
		if s.pool != nil {
			if err := s.pool.Submit(job); err != nil {
				// Pool exhausted or closed; run inline rather than dropping
				// the source.
				job()
			}
		} else {
			go job()
		}
	}
	wg.Wait()

	if results.boards.Empty() {
		s.logger.ErrorContext(ctx, "refresh aborted, all ranking boards empty",
			"degraded", results.degraded,
			"elapsed_ms", time.Since(started).Milliseconds(),
		)
		return RefreshReport{}, fmt.Errorf("%w: no ranking data available, keeping previous snapshot", ErrDependencyUnavailable)
	}

	snap := DataSnapshot{
		Players:      fusion.Fuse(results.boards, results.directory),
		Boards:       results.boards,
		Directory:    results.directory,
		PlayerValues: results.playerValues,
		PickValues:   results.pickValues,
		Trending:     results.trending,
		RefreshedAt:  time.Now().UTC(),
		Degraded:     results.degraded,
	}
	s.store.Swap(snap)

	if s.analysisCache != nil {
		s.analysisCache.Purge(ctx)
	}

	rankingsFrom := sourceNetwork
	if results.fromCache {
		rankingsFrom = sourceCache
	}

	s.logger.InfoContext(ctx, "snapshot refreshed",
		"players", len(snap.Players),
		"overall", len(snap.Boards.Overall),
		"positional", len(snap.Boards.Positional),
		"rookie", len(snap.Boards.Rookie),
		"directory", len(snap.Directory.ByID),
		"degraded", snap.Degraded,
		"rankings_from", rankingsFrom,
		"elapsed_ms", time.Since(started).Milliseconds(),
	)

	return RefreshReport{
		RefreshedAt:  snap.RefreshedAt,
		PlayerCount:  len(snap.Players),
		Degraded:     snap.Degraded,
		RankingsFrom: rankingsFrom,
	}, nil
}

func (s *RefreshService) loadRankings(ctx context.Context, results *refreshResults) {
	data, cached, err := s.feeds.Fetch(ctx, feed.RankingsFile)
	if err != nil {
		s.logger.WarnContext(ctx, "rankings feed fetch failed", "error", err)
		results.fail("rankings")
		return
	}

	set, err := feed.ParseRankings(data)
	if err != nil {
		s.logger.WarnContext(ctx, "rankings feed parse failed", "error", err)
		results.fail("rankings")
		return
	}

	results.mu.Lock()
	results.boards = set
	results.fromCache = cached
	results.mu.Unlock()
}

func (s *RefreshService) loadPlayerValues(ctx context.Context, results *refreshResults) {
	table, err := s.loadValuesFile(ctx, feed.PlayerValuesFile)
	if err != nil {
		s.logger.WarnContext(ctx, "player values fetch failed", "error", err)
		results.fail("player_values")
		return
	}
	results.mu.Lock()
	results.playerValues = table
	results.mu.Unlock()
}

func (s *RefreshService) loadPickValues(ctx context.Context, results *refreshResults) {
	table, err := s.loadValuesFile(ctx, feed.PickValuesFile)
	if err != nil {
		s.logger.WarnContext(ctx, "pick values fetch failed", "error", err)
		results.fail("pick_values")
		return
	}
	results.mu.Lock()
	results.pickValues = table
	results.mu.Unlock()
}

func (s *RefreshService) loadValuesFile(ctx context.Context, filename string) (values.Table, error) {
	data, _, err := s.feeds.Fetch(ctx, filename)
	if err != nil {
		return nil, err
	}
	return feed.ParseValues(data)
}

func (s *RefreshService) loadDirectory(ctx context.Context, results *refreshResults) {
	ix, err := s.directory.FetchDirectory(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "player directory fetch failed", "error", err)
		results.fail("directory")
		return
	}
	results.mu.Lock()
	results.directory = ix
	results.mu.Unlock()
}

func (s *RefreshService) loadTrending(ctx context.Context, results *refreshResults) {
	trending, err := s.directory.FetchTrending(ctx, s.trendingWindow, s.trendingLimit)
	if err != nil {
		s.logger.WarnContext(ctx, "trending fetch failed", "error", err)
		results.fail("trending")
		return
	}
	results.mu.Lock()
	results.trending = trending
	results.mu.Unlock()
}
