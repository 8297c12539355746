package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/draftedge/draftedge/internal/apperr"
	"github.com/draftedge/draftedge/internal/domain/rankings"
)

const rankingsCSV = `player,pos,team,bye,ecr,sd,best,worst,rank_delta,ecr_type
Justin Jefferson,WR,MIN,6,2.5,1.1,1,5,-0.5,bo
Justin Jefferson,WR,MIN,6,1.0,0.8,1,3,0.0,bp
Malik Nabers,WR,NYG,11,3.0,2.2,1,8,1.5,drk
Gabriel Davis Jr.,WR,JAX,12,88.4,NA,70,110,,bo
Someone Else,RB,FA,,50.0,3.0,40,60,0.5,xx
,,,,,,,,,bo
`

func TestParseRankings_PartitionsByTag(t *testing.T) {
	set, err := ParseRankings([]byte(rankingsCSV))
	if err != nil {
		t.Fatal(err)
	}

	if len(set.Overall) != 2 {
		t.Fatalf("overall board size = %d, want 2", len(set.Overall))
	}
	if len(set.Positional) != 1 {
		t.Fatalf("positional board size = %d, want 1", len(set.Positional))
	}
	if len(set.Rookie) != 1 {
		t.Fatalf("rookie board size = %d, want 1", len(set.Rookie))
	}

	jj, ok := set.Overall["justin jefferson"]
	if !ok {
		t.Fatal("overall board missing justin jefferson")
	}
	if jj.DisplayName != "Justin Jefferson" || jj.Category != rankings.CategoryOverall {
		t.Fatalf("entry = %+v", jj)
	}
	if !jj.Rank.Known || jj.Rank.Value != 2.5 {
		t.Fatalf("rank = %+v, want 2.5", jj.Rank)
	}
	if !jj.Bye.Known || jj.Bye.Value != 6 {
		t.Fatalf("bye = %+v, want 6", jj.Bye)
	}

	// Suffix stripped in the join key, original spelling retained.
	davis, ok := set.Overall["gabriel davis"]
	if !ok {
		t.Fatal("suffix not stripped from join key")
	}
	if davis.DisplayName != "Gabriel Davis Jr." {
		t.Fatalf("display name = %q", davis.DisplayName)
	}
	if davis.StdDev.Known {
		t.Fatal("NA std dev should be unknown")
	}
	if davis.RankDelta.Known {
		t.Fatal("empty rank delta should be unknown")
	}
}

func TestParseRankings_DropsUnknownTags(t *testing.T) {
	set, err := ParseRankings([]byte(rankingsCSV))
	if err != nil {
		t.Fatal(err)
	}

	for _, board := range []rankings.Board{set.Overall, set.Positional, set.Rookie} {
		if _, ok := board["someone else"]; ok {
			t.Fatal("row with unknown tag survived ingest")
		}
	}
}

func TestParseRankings_AlternateNameColumn(t *testing.T) {
	csv := "player_name,ecr,ecr_type\nC.J. Stroud,12.0,bo\n"
	set, err := ParseRankings([]byte(csv))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := set.Overall["cj stroud"]; !ok {
		t.Fatal("player_name column not accepted")
	}
}

func TestParseRankings_MissingRequiredColumns(t *testing.T) {
	if _, err := ParseRankings([]byte("player,ecr\nA,1.0\n")); err == nil {
		t.Fatal("missing ecr_type column must fail")
	}
	if _, err := ParseRankings([]byte("ecr,ecr_type\n1.0,bo\n")); err == nil {
		t.Fatal("missing name column must fail")
	}
}

func TestParseValues_RawIdentityKeys(t *testing.T) {
	csv := "pick,value,tier\n2026 Pick 1.04,5400,1\nMid 1st,4100,1\n"
	table, err := ParseValues([]byte(csv))
	if err != nil {
		t.Fatal(err)
	}

	row, ok := table["2026 Pick 1.04"]
	if !ok {
		t.Fatalf("pick label mangled, table keys: %v", keysOf(table))
	}
	if row["value"] != "5400" {
		t.Fatalf("row = %v", row)
	}
}

func TestParseValues_IdentityColumnPriority(t *testing.T) {
	// player_name outranks player when both exist.
	csv := "player,player_name,value\nignored,Justin Jefferson,9000\n"
	table, err := ParseValues([]byte(csv))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := table["Justin Jefferson"]; !ok {
		t.Fatalf("wrong identity column used, keys: %v", keysOf(table))
	}
}

func TestParseValues_MissingIdentityColumn(t *testing.T) {
	if _, err := ParseValues([]byte("value,tier\n100,1\n")); err == nil {
		t.Fatal("missing identity column must fail")
	}
}

func keysOf[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func TestDownloader_ConditionalFetch(t *testing.T) {
	var requests atomic.Int32
	const stamp = "Wed, 21 Oct 2026 07:28:00 GMT"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if r.Header.Get("If-Modified-Since") == stamp {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("Last-Modified", stamp)
		_, _ = w.Write([]byte("player,ecr,ecr_type\nA,1.0,bo\n"))
	}))
	defer srv.Close()

	d := NewDownloader(DownloaderConfig{BaseURL: srv.URL, Timeout: time.Second})
	ctx := context.Background()

	body, cached, err := d.Fetch(ctx, RankingsFile)
	if err != nil {
		t.Fatal(err)
	}
	if cached {
		t.Fatal("first fetch cannot be served from cache")
	}
	if !strings.HasPrefix(string(body), "player,") {
		t.Fatalf("unexpected body: %s", body)
	}

	body2, cached2, err := d.Fetch(ctx, RankingsFile)
	if err != nil {
		t.Fatal(err)
	}
	if !cached2 {
		t.Fatal("unchanged file should be served from the cached copy")
	}
	if string(body2) != string(body) {
		t.Fatal("cached body differs from original")
	}
	if requests.Load() != 2 {
		t.Fatalf("server saw %d requests, want 2", requests.Load())
	}
}

func TestDownloader_EmptyFilenameIsInvalidInput(t *testing.T) {
	d := NewDownloader(DownloaderConfig{BaseURL: "http://localhost", Timeout: time.Second})
	_, _, err := d.Fetch(context.Background(), "  ")
	if !errors.Is(err, apperr.ErrInvalidInput) {
		t.Fatalf("expected apperr.ErrInvalidInput, got %v", err)
	}
}

func TestDownloader_RetriesTransientStatus(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	d := NewDownloader(DownloaderConfig{BaseURL: srv.URL, Timeout: time.Second, MaxRetries: 2})
	body, _, err := d.Fetch(context.Background(), PlayerValuesFile)
	if err != nil {
		t.Fatal(err)
	}
	if string(body) != "ok" {
		t.Fatalf("body = %q", body)
	}
	if requests.Load() != 2 {
		t.Fatalf("server saw %d requests, want 2", requests.Load())
	}
}

func TestDownloader_PermanentStatusDoesNotRetry(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	d := NewDownloader(DownloaderConfig{BaseURL: srv.URL, Timeout: time.Second, MaxRetries: 3})
	if _, _, err := d.Fetch(context.Background(), PickValuesFile); err == nil {
		t.Fatal("expected error for 404")
	}
	if requests.Load() != 1 {
		t.Fatalf("server saw %d requests, want 1", requests.Load())
	}
}
