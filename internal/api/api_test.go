package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/starford/onboard/internal/capability"
	"github.com/starford/onboard/internal/index"
	"github.com/starford/onboard/internal/pageservice"
	"github.com/starford/onboard/internal/render"
	"github.com/starford/onboard/internal/testutil"
	"github.com/starford/onboard/internal/toc"
)

// testEnv builds a service over a temp content dir holding files, synced
// into a temp index, and returns the API router and the HTML site router.
func testEnv(t *testing.T, files map[string]string) (http.Handler, http.Handler) {
	t.Helper()
	dir, store := testutil.TestContent(t)
	for p, c := range files {
		testutil.WriteFile(t, dir, p, c)
	}
	db := testutil.TestDB(t)
	f := toc.Default()
	if err := index.Sync(db, store, f, slog.New(slog.NewTextHandler(io.Discard, nil))); err != nil {
		t.Fatal(err)
	}
	svc := pageservice.NewService(store, db, f, capability.New([]string{"requests", "pywebio", "os.path"}))

	site := chi.NewRouter()
	NewSite(svc, render.New()).Mount(site)
	return NewRouter(svc, nil), site
}

func do(t *testing.T, h http.Handler, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestFormatTOC(t *testing.T) {
	router, _ := testEnv(t, nil)

	body, _ := json.Marshal(FormatRequest{Content: "# Title\n## Section A\ntext line\n### Sub A.1"})
	w := do(t, router, http.MethodPost, "/toc", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp FormatResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.TOC != "[Section A](#SectionA)\n  [Sub A.1](#SubA.1)" {
		t.Errorf("toc = %q", resp.TOC)
	}
	if !strings.HasPrefix(resp.Content, "# Title\n## Section A ¶") {
		t.Errorf("content = %q", resp.Content)
	}
}

func TestFormatTOC_EmptyContent(t *testing.T) {
	router, _ := testEnv(t, nil)
	w := do(t, router, http.MethodPost, "/toc", []byte(`{"content":""}`))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp FormatResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.TOC != "" || resp.Content != "" {
		t.Errorf("resp = %+v, want empty", resp)
	}
}

func TestFormatTOC_CustomMarker(t *testing.T) {
	router, _ := testEnv(t, nil)
	w := do(t, router, http.MethodPost, "/toc", []byte(`{"content":"== Part","marker":"="}`))
	var resp FormatResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.TOC != "[Part](#Part)" {
		t.Errorf("toc = %q", resp.TOC)
	}
}

func TestFormatTOC_Invalid(t *testing.T) {
	router, _ := testEnv(t, nil)
	for name, body := range map[string]string{
		"bad json":    `{"content":`,
		"long marker": `{"content":"x","marker":"##"}`,
		"space":       `{"content":"x","marker":" "}`,
	} {
		w := do(t, router, http.MethodPost, "/toc", []byte(body))
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", name, w.Code)
		}
	}
}

func TestFormatTOC_TooLarge(t *testing.T) {
	router, _ := testEnv(t, nil)

	head := "## Big\n"
	post := func(n int) *httptest.ResponseRecorder {
		body, _ := json.Marshal(FormatRequest{Content: head + strings.Repeat("é", n-len([]rune(head)))})
		return do(t, router, http.MethodPost, "/toc", body)
	}

	w := post(maxFormatRunes)
	if w.Code != http.StatusOK {
		t.Fatalf("at limit: status = %d, body = %.200s", w.Code, w.Body.String())
	}
	var resp FormatResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.TOC != "[Big](#Big)" {
		t.Errorf("toc = %q", resp.TOC)
	}

	if w := post(maxFormatRunes + 1); w.Code != http.StatusBadRequest {
		t.Errorf("over limit: status = %d, want 400", w.Code)
	}
}

func TestWelcome(t *testing.T) {
	router, _ := testEnv(t, nil)
	w := do(t, router, http.MethodGet, "/welcome", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var v struct {
		Title  string `json:"title"`
		TOC    string `json:"toc"`
		Blocks []struct {
			Kind string `json:"kind"`
			Text string `json:"text"`
		} `json:"blocks"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &v)
	if !strings.Contains(v.TOC, "[1. Register](#1.Register)") {
		t.Errorf("toc = %q", v.TOC)
	}
	last := v.Blocks[len(v.Blocks)-1]
	if last.Kind != "scrollable" || last.Text != "pywebio\nrequests" {
		t.Errorf("capability block = %+v", last)
	}

	req := httptest.NewRequest(http.MethodGet, "/welcome", nil)
	req.Header.Set("If-None-Match", w.Header().Get("ETag"))
	w2 := httptest.NewRecorder()
	router.ServeHTTP(w2, req)
	if w2.Code != http.StatusNotModified {
		t.Errorf("conditional get = %d, want 304", w2.Code)
	}
}

func TestListAndGetPage(t *testing.T) {
	router, _ := testEnv(t, map[string]string{
		"guides/deploy.md": "# Deploy\n## Build\n## Ship",
		"intro.md":         "---\norder: -1\n---\n# Intro\n",
	})

	w := do(t, router, http.MethodGet, "/pages", nil)
	var list PageListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if list.Total != 2 || list.Pages[0].Path != "intro.md" {
		t.Errorf("list = %+v", list)
	}

	for _, target := range []string{"/pages/guides/deploy.md", "/pages/guides%2Fdeploy.md"} {
		w = do(t, router, http.MethodGet, target, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: status = %d", target, w.Code)
		}
		var p PageDetail
		_ = json.Unmarshal(w.Body.Bytes(), &p)
		if p.Title != "Deploy" || p.TOC != "[Build](#Build)\n[Ship](#Ship)" {
			t.Errorf("%s: page = %+v", target, p)
		}
		if w.Header().Get("ETag") != `"`+p.Checksum+`"` {
			t.Errorf("etag = %q", w.Header().Get("ETag"))
		}
	}
}

func TestGetPage_Errors(t *testing.T) {
	router, _ := testEnv(t, nil)
	if w := do(t, router, http.MethodGet, "/pages/nope.md", nil); w.Code != http.StatusNotFound {
		t.Errorf("missing = %d, want 404", w.Code)
	}
	if w := do(t, router, http.MethodGet, "/pages/..%2Fescape.md", nil); w.Code != http.StatusBadRequest {
		t.Errorf("traversal = %d, want 400", w.Code)
	}
}

func TestCapabilities(t *testing.T) {
	router, _ := testEnv(t, nil)
	w := do(t, router, http.MethodGet, "/capabilities", nil)
	var resp CapabilitiesResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Capabilities) != 2 || resp.Text != "pywebio\nrequests" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestSearch(t *testing.T) {
	router, _ := testEnv(t, map[string]string{"deploy.md": "# Deploy\n## Launch your app"})

	w := do(t, router, http.MethodGet, "/search?q=Launch", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("search = %d, body = %s", w.Code, w.Body.String())
	}
	var resp SearchResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Results) != 1 || resp.Results[0].Anchor != "Launchyourapp" {
		t.Errorf("results = %+v", resp.Results)
	}

	if w := do(t, router, http.MethodGet, "/search", nil); w.Code != http.StatusBadRequest {
		t.Errorf("search no query = %d, want 400", w.Code)
	}
}

func TestSite(t *testing.T) {
	_, site := testEnv(t, map[string]string{"deploy.md": "# Deploy\n## Build"})

	w := do(t, site, http.MethodGet, "/", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Header().Get("Content-Type"), "text/html") {
		t.Fatalf("welcome = %d %s", w.Code, w.Header().Get("Content-Type"))
	}
	if !strings.Contains(w.Body.String(), "Welcome to App Builder") {
		t.Error("welcome html missing title")
	}

	w = do(t, site, http.MethodGet, "/view/deploy.md", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `<a name="Build">`) {
		t.Errorf("page = %d %s", w.Code, w.Body.String())
	}

	if w := do(t, site, http.MethodGet, "/view/missing.md", nil); w.Code != http.StatusNotFound {
		t.Errorf("missing page = %d, want 404", w.Code)
	}
}

func TestEventsMounted(t *testing.T) {
	_, store := testutil.TestContent(t)
	svc := pageservice.NewService(store, testutil.TestDB(t), toc.Default(), capability.New(nil))
	stub := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		<-r.Context().Done()
	})
	router := NewRouter(svc, stub)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "text/event-stream" {
		t.Errorf("events = %d %q", w.Code, w.Header().Get("Content-Type"))
	}
}
