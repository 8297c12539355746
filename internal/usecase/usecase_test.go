package usecase

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/draftedge/draftedge/internal/domain/directory"
	"github.com/draftedge/draftedge/internal/domain/fusion"
	"github.com/draftedge/draftedge/internal/domain/metric"
	"github.com/draftedge/draftedge/internal/domain/rankings"
	"github.com/draftedge/draftedge/internal/infrastructure/feed"
	"github.com/draftedge/draftedge/internal/platform/cache"
	"github.com/draftedge/draftedge/internal/platform/snapshot"
)

const testRankingsCSV = `player,pos,team,bye,ecr,sd,best,worst,rank_delta,ecr_type
Justin Jefferson,WR,MIN,6,2.5,1.1,1,5,-0.5,bo
Justin Jefferson,WR,MIN,6,1.0,0.8,1,3,0.0,bp
Malik Nabers,WR,NYG,11,3.0,2.2,1,8,1.5,drk
Bijan Robinson,RB,ATL,5,4.0,1.9,2,9,0.2,bo
`

type fakeFeeds struct {
	files map[string][]byte
	errs  map[string]error
}

func (f *fakeFeeds) Fetch(_ context.Context, filename string) ([]byte, bool, error) {
	if err, ok := f.errs[filename]; ok {
		return nil, false, err
	}
	data, ok := f.files[filename]
	if !ok {
		return nil, false, errors.New("no such file")
	}
	return data, false, nil
}

type fakeDirectory struct {
	ix       directory.Index
	ixErr    error
	trending []TrendingPlayer
	trendErr error
}

func (f *fakeDirectory) FetchDirectory(context.Context) (directory.Index, error) {
	return f.ix, f.ixErr
}

func (f *fakeDirectory) FetchTrending(context.Context, int, int) ([]TrendingPlayer, error) {
	return f.trending, f.trendErr
}

type fakeProvider struct {
	answer  string
	raw     []byte
	err     error
	calls   atomic.Int32
	prompts []string
}

func (f *fakeProvider) Analyze(_ context.Context, _, prompt string) (string, error) {
	f.calls.Add(1)
	f.prompts = append(f.prompts, prompt)
	return f.answer, f.err
}

func (f *fakeProvider) AnalyzeJSON(_ context.Context, _, prompt string) ([]byte, error) {
	f.calls.Add(1)
	f.prompts = append(f.prompts, prompt)
	return f.raw, f.err
}

func (f *fakeProvider) AnalyzeText(_ context.Context, _, prompt string) (string, error) {
	f.calls.Add(1)
	f.prompts = append(f.prompts, prompt)
	return f.answer, f.err
}

func testDirectoryIndex() directory.Index {
	return directory.Index{
		ByID: map[string]directory.Entry{
			"4881": {ID: "4881", FullName: "Justin Jefferson", Position: "WR", Team: "MIN", Status: "Active", YearsExp: metric.IntOf(5), Age: metric.IntOf(26)},
		},
		NameToID: map[string]string{"justin jefferson": "4881"},
	}
}

func healthyFeeds() *fakeFeeds {
	return &fakeFeeds{files: map[string][]byte{
		feed.RankingsFile:     []byte(testRankingsCSV),
		feed.PlayerValuesFile: []byte("player,value\nJustin Jefferson,9800\n"),
		feed.PickValuesFile:   []byte("pick,value\n2026 Pick 1.04,5400\n"),
	}}
}

func newRefreshFixture(feeds *fakeFeeds, dir *fakeDirectory) (*RefreshService, *snapshot.Store[DataSnapshot], *cache.Store) {
	store := &snapshot.Store[DataSnapshot]{}
	responseCache := cache.NewStore(time.Hour)
	svc := NewRefreshService(RefreshServiceConfig{
		Feeds:         feeds,
		Directory:     dir,
		Store:         store,
		AnalysisCache: responseCache,
	})
	return svc, store, responseCache
}

func TestRefresh_PublishesFusedSnapshot(t *testing.T) {
	dir := &fakeDirectory{ix: testDirectoryIndex(), trending: []TrendingPlayer{{PlayerID: "4881", Count: 900}}}
	svc, store, _ := newRefreshFixture(healthyFeeds(), dir)

	report, err := svc.Refresh(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if report.PlayerCount != 3 {
		t.Fatalf("player count = %d, want 3", report.PlayerCount)
	}
	if len(report.Degraded) != 0 {
		t.Fatalf("unexpected degraded sources: %v", report.Degraded)
	}

	snap, ok := store.Load()
	if !ok {
		t.Fatal("snapshot not published")
	}
	jj, ok := snap.Players["justin jefferson"]
	if !ok {
		t.Fatal("fused player missing")
	}
	if !jj.YearsExp.Known || jj.YearsExp.Value != 5 {
		t.Fatalf("directory enrichment missing: %+v", jj.YearsExp)
	}
	if _, ok := snap.PickValues["2026 Pick 1.04"]; !ok {
		t.Fatal("pick values not loaded")
	}
}

func TestRefresh_TotalRankingFailureKeepsPreviousSnapshot(t *testing.T) {
	dir := &fakeDirectory{ix: testDirectoryIndex()}
	feeds := healthyFeeds()
	svc, store, _ := newRefreshFixture(feeds, dir)

	if _, err := svc.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	before, _ := store.Load()

	feeds.errs = map[string]error{feed.RankingsFile: errors.New("feed down")}
	_, err := svc.Refresh(context.Background())
	if !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}

	after, ok := store.Load()
	if !ok {
		t.Fatal("previous snapshot lost")
	}
	if !after.RefreshedAt.Equal(before.RefreshedAt) {
		t.Fatal("failed refresh replaced the snapshot")
	}
}

func TestRefresh_PartialFailurePublishesDegraded(t *testing.T) {
	feeds := healthyFeeds()
	feeds.errs = map[string]error{feed.PlayerValuesFile: errors.New("values down")}
	dir := &fakeDirectory{ixErr: errors.New("directory down"), trendErr: errors.New("trending down")}
	svc, store, _ := newRefreshFixture(feeds, dir)

	report, err := svc.Refresh(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	degraded := strings.Join(report.Degraded, ",")
	for _, want := range []string{"player_values", "directory", "trending"} {
		if !strings.Contains(degraded, want) {
			t.Fatalf("degraded = %v, missing %s", report.Degraded, want)
		}
	}

	snap, _ := store.Load()
	rec, ok := snap.Players["justin jefferson"]
	if !ok {
		t.Fatal("rankings-only snapshot missing players")
	}
	if rec.YearsExp.Known {
		t.Fatal("years exp should be unknown without a directory")
	}
}

func TestRefresh_PurgesAnalysisCache(t *testing.T) {
	dir := &fakeDirectory{ix: testDirectoryIndex()}
	svc, _, responseCache := newRefreshFixture(healthyFeeds(), dir)
	ctx := context.Background()

	responseCache.Set(ctx, "analysis:dossier:stale", "old answer")
	if _, err := svc.Refresh(ctx); err != nil {
		t.Fatal(err)
	}
	if _, ok := responseCache.Get(ctx, "analysis:dossier:stale"); ok {
		t.Fatal("refresh must purge cached analyses")
	}
}

func publishedStore(t *testing.T) *snapshot.Store[DataSnapshot] {
	t.Helper()
	dir := &fakeDirectory{ix: testDirectoryIndex(), trending: []TrendingPlayer{{PlayerID: "4881", Count: 900}, {PlayerID: "gone", Count: 10}}}
	svc, store, _ := newRefreshFixture(healthyFeeds(), dir)
	if _, err := svc.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	return store
}

func TestPlayerService_ResolvePlayer(t *testing.T) {
	svc := NewPlayerService(publishedStore(t), nil)
	ctx := context.Background()

	rec, err := svc.ResolvePlayer(ctx, "Justin Jefferson")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Key != "justin jefferson" {
		t.Fatalf("resolved %q", rec.Key)
	}

	// Substring fallback.
	rec, err = svc.ResolvePlayer(ctx, "Nabers")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Key != "malik nabers" {
		t.Fatalf("resolved %q", rec.Key)
	}

	if _, err := svc.ResolvePlayer(ctx, "Nobody Real"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.ResolvePlayer(ctx, "  "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestPlayerService_NotReadyBeforeFirstRefresh(t *testing.T) {
	svc := NewPlayerService(&snapshot.Store[DataSnapshot]{}, nil)
	if _, err := svc.ResolvePlayer(context.Background(), "anyone"); !errors.Is(err, ErrDataNotReady) {
		t.Fatalf("expected ErrDataNotReady, got %v", err)
	}
}

func TestPlayerService_ListPlayersOrderAndFilter(t *testing.T) {
	svc := NewPlayerService(publishedStore(t), nil)
	ctx := context.Background()

	all, err := svc.ListPlayers(ctx, PlayerFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("len = %d, want 3", len(all))
	}
	if all[0].Key != "justin jefferson" || all[1].Key != "bijan robinson" {
		t.Fatalf("overall rank order broken: %s, %s", all[0].Key, all[1].Key)
	}
	// Rookie with no overall rank sorts last.
	if all[2].Key != "malik nabers" {
		t.Fatalf("unranked player not last: %s", all[2].Key)
	}

	wrs, err := svc.ListPlayers(ctx, PlayerFilter{Position: "wr"})
	if err != nil {
		t.Fatal(err)
	}
	if len(wrs) != 2 {
		t.Fatalf("wr filter returned %d", len(wrs))
	}

	// Category filter keeps only players ranked on that board.
	positional, err := svc.ListPlayers(ctx, PlayerFilter{Category: "positional"})
	if err != nil {
		t.Fatal(err)
	}
	if len(positional) != 1 || positional[0].Key != "justin jefferson" {
		t.Fatalf("positional filter = %+v", positional)
	}

	flagged, err := svc.ListPlayers(ctx, PlayerFilter{RookieOnly: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(flagged) != 1 || flagged[0].Key != "malik nabers" {
		t.Fatalf("rookie flag filter = %+v", flagged)
	}

	if _, err := svc.ListPlayers(ctx, PlayerFilter{Category: "dynasty"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown category, got %v", err)
	}
}

func TestPlayerService_ListRookiesStrict(t *testing.T) {
	svc := NewPlayerService(publishedStore(t), nil)
	ctx := context.Background()

	rookies, err := svc.ListRookies(ctx, "", false)
	if err != nil {
		t.Fatal(err)
	}
	if len(rookies) != 1 || rookies[0].Key != "malik nabers" {
		t.Fatalf("rookies = %+v", rookies)
	}

	// Strict needs a known zero years-of-experience; the fixture rookie has
	// no directory entry, so experience is unknown and strict excludes him.
	strict, err := svc.ListRookies(ctx, "", true)
	if err != nil {
		t.Fatal(err)
	}
	if len(strict) != 0 {
		t.Fatalf("strict rookies = %+v", strict)
	}

	rbs, err := svc.ListRookies(ctx, "rb", false)
	if err != nil {
		t.Fatal(err)
	}
	if len(rbs) != 0 {
		t.Fatalf("position-filtered rookies = %+v", rbs)
	}
}

func TestPlayerService_ValueLookups(t *testing.T) {
	svc := NewPlayerService(publishedStore(t), nil)
	ctx := context.Background()

	row, err := svc.PlayerValue(ctx, "Justin Jefferson")
	if err != nil {
		t.Fatal(err)
	}
	if row["value"] != "9800" {
		t.Fatalf("row = %v", row)
	}

	// Case-insensitive fallback after exact miss.
	if _, err := svc.PickValue(ctx, "2026 pick 1.04"); err != nil {
		t.Fatalf("case-insensitive pick lookup failed: %v", err)
	}

	if _, err := svc.PlayerValue(ctx, "Nobody"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPlayerService_TrendingJoinsDirectory(t *testing.T) {
	svc := NewPlayerService(publishedStore(t), nil)

	rows, err := svc.Trending(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %+v", rows)
	}
	if rows[0].Name != "Justin Jefferson" || rows[0].Team != "MIN" {
		t.Fatalf("directory join failed: %+v", rows[0])
	}
	// Unknown IDs keep the bare ID as the name.
	if rows[1].Name != "gone" {
		t.Fatalf("unknown id row = %+v", rows[1])
	}
}

func newAnalysisFixture(t *testing.T, provider *fakeProvider) *AnalysisService {
	t.Helper()
	return NewAnalysisService(publishedStore(t), provider, cache.NewStore(time.Hour), nil)
}

func TestAnalysisService_DossierBuildsContextAndCaches(t *testing.T) {
	provider := &fakeProvider{answer: "**Confidence: ✅ High**\n\n---\n\nElite."}
	svc := newAnalysisFixture(t, provider)
	ctx := context.Background()
	req := DossierRequest{PlayerName: "Justin Jefferson"}

	out, err := svc.Dossier(ctx, "key-1", req)
	if err != nil {
		t.Fatal(err)
	}
	if out != provider.answer {
		t.Fatalf("answer = %q", out)
	}
	if len(provider.prompts) != 1 {
		t.Fatalf("provider called %d times", len(provider.prompts))
	}
	prompt := provider.prompts[0]
	if !strings.Contains(prompt, "- Player: Justin Jefferson (WR, MIN)") {
		t.Fatalf("player context missing from prompt:\n%s", prompt)
	}
	if !strings.Contains(prompt, "### Final Verdict") {
		t.Fatalf("task missing from prompt:\n%s", prompt)
	}

	// Second identical request is served from cache, even with another key.
	if _, err := svc.Dossier(ctx, "key-2", req); err != nil {
		t.Fatal(err)
	}
	if n := provider.calls.Load(); n != 1 {
		t.Fatalf("provider called %d times, want 1", n)
	}
}

func TestAnalysisService_RequiresAPIKey(t *testing.T) {
	svc := newAnalysisFixture(t, &fakeProvider{answer: "x"})

	_, err := svc.Dossier(context.Background(), "  ", DossierRequest{PlayerName: "Justin Jefferson"})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestAnalysisService_RejectsUnknownCategory(t *testing.T) {
	svc := newAnalysisFixture(t, &fakeProvider{answer: "x"})

	_, err := svc.Dossier(context.Background(), "key", DossierRequest{PlayerName: "Justin Jefferson", Category: "dynasty"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestAnalysisService_ValidatesRequests(t *testing.T) {
	svc := newAnalysisFixture(t, &fakeProvider{answer: "x"})
	ctx := context.Background()

	if _, err := svc.Dossier(ctx, "key", DossierRequest{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("empty dossier request: %v", err)
	}
	if _, err := svc.KeeperEvaluation(ctx, "key", KeeperRequest{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("empty keeper request: %v", err)
	}
	if _, err := svc.TradeAnalysis(ctx, "key", TradeRequest{MyAssets: []string{"A"}}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("one-sided trade request: %v", err)
	}
}

func TestAnalysisService_TradePicksPassThrough(t *testing.T) {
	provider := &fakeProvider{answer: "fair"}
	svc := newAnalysisFixture(t, provider)

	_, err := svc.TradeAnalysis(context.Background(), "key", TradeRequest{
		MyAssets:      []string{"Justin Jefferson"},
		PartnerAssets: []string{"2026 Pick 1.04", "Malik Nabers"},
		ScoringFormat: "Half-PPR",
	})
	if err != nil {
		t.Fatal(err)
	}

	prompt := provider.prompts[0]
	if !strings.Contains(prompt, "- 2026 Pick 1.04\n") {
		t.Fatalf("pick asset not passed through:\n%s", prompt)
	}
	if !strings.Contains(prompt, "Half-PPR league") {
		t.Fatalf("scoring format not substituted:\n%s", prompt)
	}
}

func TestAnalysisService_WaiverWireExcludesRosteredPlayers(t *testing.T) {
	provider := &fakeProvider{answer: "adds"}
	svc := newAnalysisFixture(t, provider)

	_, err := svc.WaiverWire(context.Background(), "key", WaiverWireRequest{
		TeamRoster: []string{"Justin Jefferson"},
	})
	if err != nil {
		t.Fatal(err)
	}

	prompt := provider.prompts[0]
	_, available, found := strings.Cut(prompt, "**Top Available Waiver Wire Players:**")
	if !found {
		t.Fatalf("available section missing:\n%s", prompt)
	}
	if strings.Contains(available, "Justin Jefferson") {
		t.Fatalf("rostered player offered as available:\n%s", available)
	}
	if !strings.Contains(available, "Bijan Robinson") {
		t.Fatalf("free agent missing:\n%s", available)
	}
}

func TestAnalysisService_RookieRankingsJSON(t *testing.T) {
	provider := &fakeProvider{raw: []byte(`{"rookies": []}`)}
	svc := newAnalysisFixture(t, provider)

	out, err := svc.RookieRankings(context.Background(), "key")
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `{"rookies": []}` {
		t.Fatalf("out = %s", out)
	}
	prompt := provider.prompts[0]
	if !strings.Contains(prompt, "Malik Nabers") {
		t.Fatalf("rookie data missing:\n%s", prompt)
	}
	if strings.Contains(prompt, "Justin Jefferson") {
		t.Fatalf("veteran leaked into rookie prompt:\n%s", prompt)
	}
}

func TestFormatContextInPrompt_UsesCategoryPreference(t *testing.T) {
	provider := &fakeProvider{answer: "ok"}
	svc := newAnalysisFixture(t, provider)

	_, err := svc.Dossier(context.Background(), "key", DossierRequest{PlayerName: "Justin Jefferson", Category: "positional"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(provider.prompts[0], "Positional ECR: 1.0") {
		t.Fatalf("positional preference ignored:\n%s", provider.prompts[0])
	}
}

func TestMetricInTierPayload(t *testing.T) {
	// Unknown metrics must encode as null in the tier candidate list.
	f := metric.Float{}
	b, err := f.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "null" {
		t.Fatalf("unknown metric = %s", b)
	}
}

func TestDraftSummaryFallbacks(t *testing.T) {
	snap := DataSnapshot{Players: map[string]fusion.Record{}}
	if got := draftSummary(snap, nil, rankings.CategoryOverall, "No picks made yet."); got != "No picks made yet." {
		t.Fatalf("empty board summary = %q", got)
	}
	if got := draftSummary(snap, map[string]string{"Round 1": " "}, rankings.CategoryOverall, "empty"); got != "empty" {
		t.Fatalf("blank picks summary = %q", got)
	}
}
