package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/ehwaz/internal/corpus"
	"github.com/starford/ehwaz/internal/index"
	"github.com/starford/ehwaz/internal/storage"
)

// testEnv sets up a temp corpus, SQLite index, service, and router.
// An empty authToken means auth is disabled.
func testEnv(t *testing.T, authToken string, files map[string]string) (*Service, http.Handler, string) {
	t.Helper()

	corpusDir := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(corpusDir, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	store, err := storage.NewFS(corpusDir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}

	dbFile, err := os.CreateTemp("", "ehwaz-api-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	proc := corpus.NewProcessor(store, logger)
	if err := index.Sync(db, store, proc, logger); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	svc := NewService(store, db, proc, logger)
	router := NewRouter(svc, authToken != "", authToken, nil, corpusDir)
	return svc, router, corpusDir
}

func defaultFiles() map[string]string {
	return map[string]string{
		"Alpha.md": "---\ntitle: Alpha\nimportance: 4\ntags:\n  - core\n---\nAlpha links to [[Beta]] and [[Missing Article]].",
		"Beta.md":  "---\ntitle: Beta\nrelated_articles:\n  - alpha\n---\nBeta mentions [[Alpha]] too.",
	}
}

func get(t *testing.T, router http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestListArticles(t *testing.T) {
	_, router, _ := testEnv(t, "", defaultFiles())

	w := get(t, router, "/articles")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp ArticleListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Total != 2 || len(resp.Articles) != 2 {
		t.Fatalf("total = %d, articles = %d", resp.Total, len(resp.Articles))
	}
	if resp.Articles[0].Slug != "alpha" {
		t.Errorf("first slug = %q, want alpha", resp.Articles[0].Slug)
	}
}

func TestGetArticle(t *testing.T) {
	_, router, _ := testEnv(t, "", defaultFiles())

	w := get(t, router, "/articles/alpha")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var detail ArticleDetail
	if err := json.Unmarshal(w.Body.Bytes(), &detail); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if detail.Title != "Alpha" || detail.Metadata.Importance != 4 {
		t.Errorf("detail = %+v", detail)
	}
	if len(detail.OutboundLinks) != 2 {
		t.Errorf("outbound = %d, want 2", len(detail.OutboundLinks))
	}
	if len(detail.InboundLinks) != 1 || detail.InboundLinks[0] != "beta" {
		t.Errorf("inbound = %v, want [beta]", detail.InboundLinks)
	}
	if detail.Content == "" {
		t.Error("content should carry the raw file")
	}
}

func TestGetArticleNotFound(t *testing.T) {
	_, router, _ := testEnv(t, "", defaultFiles())

	if w := get(t, router, "/articles/nope"); w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestGraphEndpoint(t *testing.T) {
	_, router, _ := testEnv(t, "", defaultFiles())

	w := get(t, router, "/graph")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		Graph            map[string]json.RawMessage `json:"graph"`
		TotalConnections int                        `json:"total_connections"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Graph) != 2 {
		t.Errorf("nodes = %d, want 2", len(resp.Graph))
	}
	if resp.TotalConnections == 0 {
		t.Error("expected at least one connection")
	}
}

func TestReportEndpoint(t *testing.T) {
	_, router, _ := testEnv(t, "", defaultFiles())

	w := get(t, router, "/report")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		Summary struct {
			BrokenLinks int `json:"broken_links"`
		} `json:"summary"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Summary.BrokenLinks != 1 {
		t.Errorf("broken links = %d, want 1 for the missing target", resp.Summary.BrokenLinks)
	}
}

func TestSearchEndpoint(t *testing.T) {
	_, router, _ := testEnv(t, "", defaultFiles())

	if w := get(t, router, "/search"); w.Code != http.StatusBadRequest {
		t.Errorf("missing q: status = %d, want 400", w.Code)
	}

	w := get(t, router, "/search?q=mentions")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp SearchResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Results) != 1 || resp.Results[0].Slug != "beta" {
		t.Errorf("results = %+v, want single hit for beta", resp.Results)
	}
}

func TestBacklinksEndpoint(t *testing.T) {
	_, router, _ := testEnv(t, "", defaultFiles())

	w := get(t, router, "/backlinks/beta")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp BacklinksResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Backlinks) != 1 || resp.Backlinks[0] != "alpha" {
		t.Errorf("backlinks = %v, want [alpha]", resp.Backlinks)
	}
}

func TestAuth(t *testing.T) {
	_, router, _ := testEnv(t, "secret", defaultFiles())

	if w := get(t, router, "/articles"); w.Code != http.StatusUnauthorized {
		t.Errorf("no token: status = %d, want 401", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/articles", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("bad token: status = %d, want 401", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/articles", nil)
	req.Header.Set("Authorization", "Bearer secret")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("good token: status = %d, want 200", w.Code)
	}
}

func TestInvalidateRefreshesSnapshot(t *testing.T) {
	svc, router, corpusDir := testEnv(t, "", defaultFiles())

	w := get(t, router, "/dataset")
	var before struct {
		TotalCount int `json:"total_count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &before); err != nil {
		t.Fatal(err)
	}
	if before.TotalCount != 2 {
		t.Fatalf("total = %d, want 2", before.TotalCount)
	}

	if err := os.WriteFile(filepath.Join(corpusDir, "Gamma.md"), []byte("---\ntitle: Gamma\n---\nNew."), 0o644); err != nil {
		t.Fatal(err)
	}

	// Snapshot is cached until invalidated.
	w = get(t, router, "/dataset")
	var cached struct {
		TotalCount int `json:"total_count"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &cached)
	if cached.TotalCount != 2 {
		t.Errorf("cached total = %d, want 2", cached.TotalCount)
	}

	svc.Invalidate()

	w = get(t, router, "/dataset")
	var after struct {
		TotalCount int `json:"total_count"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &after)
	if after.TotalCount != 3 {
		t.Errorf("total = %d after invalidate, want 3", after.TotalCount)
	}
}

func TestAssetServing(t *testing.T) {
	_, router, corpusDir := testEnv(t, "", defaultFiles())

	assetsDir := filepath.Join(corpusDir, "assets")
	if err := os.MkdirAll(assetsDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(assetsDir, "pic.png"), []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}

	if w := get(t, router, "/assets/pic.png"); w.Code != http.StatusOK {
		t.Errorf("asset fetch status = %d", w.Code)
	}
	if w := get(t, router, "/assets/missing.png"); w.Code != http.StatusNotFound {
		t.Errorf("missing asset status = %d, want 404", w.Code)
	}
}
