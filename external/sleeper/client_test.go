package sleeper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFetchDirectory_BuildsIndex(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/players/nfl" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{
			"4881": {"full_name": "Justin Jefferson", "position": "WR", "team": "MIN", "status": "Active", "years_exp": 5, "age": 26},
			"9999": {"first_name": "Malik", "last_name": "Nabers", "position": "WR", "team": "NYG", "status": "Active", "years_exp": 0, "age": 22},
			"0001": {"position": "DEF", "team": "SF"}
		}`))
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{BaseURL: srv.URL, Timeout: time.Second})
	ix, err := c.FetchDirectory(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if len(ix.ByID) != 2 {
		t.Fatalf("index size = %d, want 2 (nameless record dropped)", len(ix.ByID))
	}

	jj, ok := ix.Lookup("justin jefferson")
	if !ok {
		t.Fatal("normalized name lookup failed")
	}
	if !jj.YearsExp.Known || jj.YearsExp.Value != 5 || jj.Team != "MIN" {
		t.Fatalf("entry = %+v", jj)
	}

	nabers, ok := ix.Lookup("malik nabers")
	if !ok {
		t.Fatal("first/last name fallback not indexed")
	}
	if nabers.FullName != "Malik Nabers" {
		t.Fatalf("full name = %q", nabers.FullName)
	}
	if !nabers.YearsExp.Known || nabers.YearsExp.Value != 0 {
		t.Fatalf("rookie experience must stay a known 0, got %+v", nabers.YearsExp)
	}
}

func TestFetchDirectory_NullExperienceStaysUnknown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"7777": {"full_name": "Depth Chart Guy", "position": "RB", "team": "FA", "years_exp": null, "age": null}
		}`))
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{BaseURL: srv.URL, Timeout: time.Second})
	ix, err := c.FetchDirectory(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	e, ok := ix.Lookup("depth chart guy")
	if !ok {
		t.Fatal("lookup failed")
	}
	if e.YearsExp.Known {
		t.Fatalf("null years_exp must decode as unknown, got %+v", e.YearsExp)
	}
	if e.Age.Known {
		t.Fatalf("null age must decode as unknown, got %+v", e.Age)
	}
}

func TestFetchDirectory_UpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{BaseURL: srv.URL, Timeout: time.Second})
	ix, err := c.FetchDirectory(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if !ix.Empty() {
		t.Fatal("failed fetch must return an empty index")
	}
}

func TestFetchTrending_DefaultsAndDecoding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/players/nfl/trending/add" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("lookback_hours") != "48" || q.Get("limit") != "25" {
			t.Errorf("default query not applied: %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`[{"player_id": "4881", "count": 1200}]`))
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{BaseURL: srv.URL, Timeout: time.Second})
	out, err := c.FetchTrending(context.Background(), 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 || out[0].PlayerID != "4881" || out[0].Count != 1200 {
		t.Fatalf("trending = %+v", out)
	}
}
