package cli

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/skillcat/pkg/catalog"
	"github.com/matzehuels/skillcat/pkg/config"
	"github.com/matzehuels/skillcat/pkg/query"
	"github.com/matzehuels/skillcat/pkg/snapshot"
	"github.com/matzehuels/skillcat/pkg/store"
)

var fixtureTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func fixtureEntries() []catalog.Entry {
	return []catalog.Entry{
		{ID: "a1", Slug: "pdf", Name: "PDF Tools", Description: "Read and fill PDF forms",
			Author: "anthropics", RepoFullName: "anthropics/skills", Path: "pdf",
			RepoURL: "https://github.com/anthropics/skills/tree/main/pdf",
			Stars:   900, Tier: 1, Category: catalog.CategoryDocumentation,
			Categories: []catalog.Category{catalog.CategoryDocumentation},
			Tags:       []string{"official"}, Source: catalog.SourceOfficial, UpdatedAt: fixtureTime},
		{ID: "b2", Slug: "git-helper", Name: "Git Helper", Description: "Commit message helper",
			Author: "alice", RepoFullName: "alice/git-helper", RepoURL: "https://github.com/alice/git-helper",
			Stars: 40, Tier: 3, Category: catalog.CategoryDevOps,
			Categories: []catalog.Category{catalog.CategoryDevOps, catalog.CategoryAutomation},
			Tags:       []string{"git"}, Source: catalog.SourceTopic, UpdatedAt: fixtureTime},
		{ID: "c3", Slug: "docs-writer", Name: "Docs Writer", Description: "Draft release notes",
			Author: "bob", RepoFullName: "bob/docs-writer", RepoURL: "https://github.com/bob/docs-writer",
			Stars: 12, Tier: 4, Category: catalog.CategoryWriting,
			Categories: []catalog.Category{catalog.CategoryWriting},
			Tags:       []string{}, Source: catalog.SourceSearch, UpdatedAt: fixtureTime},
	}
}

// fixtureCatalog writes an index plus one enriched detail and opens it.
func fixtureCatalog(t *testing.T) (*query.Catalog, config.OutputConfig) {
	t.Helper()
	out := config.Default().Output
	out.Dir = t.TempDir()
	st := store.NewFileStore(out)

	entries := fixtureEntries()
	if err := st.WriteIndex(snapshot.Build(entries, fixtureTime, fixtureTime)); err != nil {
		t.Fatal(err)
	}
	d := catalog.NewDetail(entries[0])
	d.Readme = "# PDF Tools\n\nFill forms."
	if err := st.WriteDetail(&d); err != nil {
		t.Fatal(err)
	}

	cat, err := query.Open(st)
	if err != nil {
		t.Fatal(err)
	}
	return cat, out
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	cat, _ := fixtureCatalog(t)
	srv := httptest.NewServer(newRouter(cat, log.New(io.Discard)))
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, v any) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("GET %s Content-Type = %q, want application/json", url, ct)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("GET %s: decode: %v", url, err)
	}
	return resp.StatusCode
}

type searchResponse struct {
	Total  int             `json:"total"`
	Skills []catalog.Entry `json:"skills"`
}

func slugsOf(entries []catalog.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Slug
	}
	return out
}

func TestServeHealth(t *testing.T) {
	srv := newTestServer(t)

	var body map[string]any
	if code := getJSON(t, srv.URL+"/healthz", &body); code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if body["status"] != "ok" || body["skills"] != float64(3) {
		t.Errorf("healthz = %v", body)
	}
}

func TestServeIndexAndStats(t *testing.T) {
	srv := newTestServer(t)

	var snap catalog.Snapshot
	if code := getJSON(t, srv.URL+"/api/index", &snap); code != http.StatusOK {
		t.Fatalf("index status = %d", code)
	}
	if snap.Total != 3 || len(snap.Skills) != 3 || snap.Version != catalog.FormatVersion {
		t.Errorf("index = total %d, %d skills, version %q", snap.Total, len(snap.Skills), snap.Version)
	}

	var stats struct {
		Total int           `json:"total"`
		Stats catalog.Stats `json:"stats"`
	}
	getJSON(t, srv.URL+"/api/stats", &stats)
	if stats.Total != 3 {
		t.Errorf("stats total = %d, want 3", stats.Total)
	}
	if stats.Stats.ByTier[1] != 1 || stats.Stats.BySource[catalog.SourceTopic] != 1 {
		t.Errorf("stats = %+v", stats.Stats)
	}
}

func TestServeSlugs(t *testing.T) {
	srv := newTestServer(t)

	var slugs []string
	getJSON(t, srv.URL+"/api/slugs", &slugs)
	if len(slugs) != 3 {
		t.Fatalf("slugs = %v, want 3", slugs)
	}
}

func TestServeSearch(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"all by stars", "", []string{"pdf", "git-helper", "docs-writer"}},
		{"substring", "?q=commit", []string{"git-helper"}},
		{"category includes secondary", "?category=automation", []string{"git-helper"}},
		{"tier", "?tier=4", []string{"docs-writer"}},
		{"sort by name", "?sort=name", []string{"docs-writer", "git-helper", "pdf"}},
		{"limit", "?limit=1", []string{"pdf"}},
		{"fuzzy", "?q=gthlp&fuzzy=true", []string{"git-helper"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp searchResponse
			if code := getJSON(t, srv.URL+"/api/skills"+tt.query, &resp); code != http.StatusOK {
				t.Fatalf("status = %d, want 200", code)
			}
			got := slugsOf(resp.Skills)
			if len(got) != len(tt.want) || resp.Total != len(tt.want) {
				t.Fatalf("slugs = %v (total %d), want %v", got, resp.Total, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("slugs = %v, want %v", got, tt.want)
					break
				}
			}
		})
	}
}

func TestServeSearchBadInput(t *testing.T) {
	srv := newTestServer(t)

	for _, q := range []string{"?tier=9", "?category=nope", "?sort=random", "?fuzzy=maybe", "?limit=-1"} {
		var body map[string]string
		if code := getJSON(t, srv.URL+"/api/skills"+q, &body); code != http.StatusBadRequest {
			t.Errorf("GET /api/skills%s status = %d, want 400", q, code)
		}
		if body["code"] != "INVALID_INPUT" || body["error"] == "" {
			t.Errorf("GET /api/skills%s body = %v", q, body)
		}
	}
}

func TestServeDetail(t *testing.T) {
	srv := newTestServer(t)

	var stored catalog.Detail
	if code := getJSON(t, srv.URL+"/api/skills/pdf", &stored); code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if stored.Readme != "# PDF Tools\n\nFill forms." {
		t.Errorf("stored readme = %q", stored.Readme)
	}

	var synth catalog.Detail
	getJSON(t, srv.URL+"/api/skills/git-helper", &synth)
	if synth.Readme != "Commit message helper" || synth.AuthorURL != "https://github.com/alice" {
		t.Errorf("synthesized detail = readme %q, author url %q", synth.Readme, synth.AuthorURL)
	}
}

func TestServeDetailErrors(t *testing.T) {
	srv := newTestServer(t)

	var body map[string]string
	if code := getJSON(t, srv.URL+"/api/skills/missing", &body); code != http.StatusNotFound {
		t.Errorf("unknown slug status = %d, want 404", code)
	}
	if body["code"] != "NOT_FOUND" {
		t.Errorf("unknown slug code = %q", body["code"])
	}

	if code := getJSON(t, srv.URL+"/api/skills/Bad_Slug", &body); code != http.StatusBadRequest {
		t.Errorf("invalid slug status = %d, want 400", code)
	}
}

func TestServeUnknownRoute(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/nothing")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}
