package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"figment/internal/artifact"
	"figment/internal/chat"
	"figment/internal/diagram/intent"
	"figment/internal/diagram/render"
	diagramspec "figment/internal/diagram/spec"
	"figment/internal/figures"
	"figment/internal/handler"
	"figment/internal/imagestore"
	"figment/internal/llmclient"
	"figment/internal/middleware"
	"figment/internal/server"
	"figment/internal/token"
)

type failingDot struct{}

func (failingDot) RenderSVG(_ context.Context, _ []byte) ([]byte, error) {
	return nil, errors.New("dot: not found")
}

type env struct {
	srv    *httptest.Server
	store  *artifact.Store
	images *imagestore.MemoryStore
}

func newEnv(t *testing.T, llm llmclient.Client) *env {
	t.Helper()
	store, err := artifact.NewStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	images := imagestore.NewMemoryStore()
	chatSvc := chat.NewService(llm, images, figures.NewResolver("RiverMeadow"), chat.NewMemoryStore(), "RiverMeadow")

	rng := rand.New(rand.NewSource(7))
	pipeline := render.NewPipeline(llm, store, failingDot{})
	tokens := token.NewStore(16, time.Minute)
	mux := server.NewMux(
		handler.NewChatHandler(chatSvc),
		handler.NewDiagramHandler(intent.NewClassifier("RiverMeadow", rng), diagramspec.NewSynthesizer(rng), pipeline, store),
		handler.NewAuthHandler(tokens),
		middleware.Auth(tokens, false),
	)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return &env{srv: srv, store: store, images: images}
}

func postJSON(t *testing.T, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	var out map[string]any
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp, out
}

func TestChatEndpoint(t *testing.T) {
	e := newEnv(t, llmclient.NewFakeClient("See Figure 3 for the console."))
	e.images.AddDocument("doc-1", "Figure 3 shows the console.",
		figures.DocumentImage{ID: 3, DocumentID: "doc-1", ImagePath: "img/3.png", Caption: "Figure 3 - Appliance console"},
	)

	resp, out := postJSON(t, e.srv.URL+"/api/chat", `{"documentId":"doc-1","message":"Where is the console?"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	refs, ok := out["references"].([]any)
	if !ok || len(refs) != 1 {
		t.Fatalf("references = %v, want one entry", out["references"])
	}
	ref := refs[0].(map[string]any)
	if ref["id"] != float64(3) || ref["type"] != "image" {
		t.Errorf("reference = %v", ref)
	}
}

func TestChatEndpointRejectsEmptyMessage(t *testing.T) {
	e := newEnv(t, llmclient.NewFakeClient("x"))
	resp, _ := postJSON(t, e.srv.URL+"/api/chat", `{"message":"  "}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestDiagramEndpointNonDiagramPrompt(t *testing.T) {
	e := newEnv(t, llmclient.NewFakeClient("unused"))
	resp, out := postJSON(t, e.srv.URL+"/api/diagrams", `{"prompt":"What is OS migration?"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if out["generated"] != false {
		t.Fatalf("generated = %v, want false", out["generated"])
	}
}

func TestDiagramEndpointGenerates(t *testing.T) {
	// DOT output is discarded because the renderer fails; the Mermaid
	// tier then succeeds.
	mermaid := "graph TD\n  A[Source] --> B[Target]\n  B --> C[Cutover]"
	e := newEnv(t, llmclient.NewFakeClient("digraph g { a -> b; c -> d; }", mermaid))

	resp, out := postJSON(t, e.srv.URL+"/api/diagrams", `{"prompt":"create a migration diagram"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if out["generated"] != true {
		t.Fatalf("generated = %v, want true", out["generated"])
	}
	svgURL, _ := out["svgUrl"].(string)
	if !strings.HasPrefix(svgURL, "/api/diagrams/svg/") {
		t.Fatalf("svgUrl = %q", svgURL)
	}

	got, err := http.Get(e.srv.URL + svgURL)
	if err != nil {
		t.Fatalf("GET svg: %v", err)
	}
	defer got.Body.Close()
	if got.StatusCode != http.StatusOK || !strings.HasPrefix(got.Header.Get("Content-Type"), "image/svg+xml") {
		t.Fatalf("svg fetch: status %d, type %s", got.StatusCode, got.Header.Get("Content-Type"))
	}
}

func TestSVGFallbackStripsXMLSuffix(t *testing.T) {
	e := newEnv(t, llmclient.NewFakeClient("unused"))
	name, err := e.store.Write(context.Background(), artifact.KindSVG, "flow", "svg", []byte("<svg>real</svg>"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	resp, err := http.Get(e.srv.URL + "/api/diagrams/svg/" + name + ".xml")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/svg+xml" {
		t.Fatalf("content type = %s", ct)
	}
}

func TestSVGFallbackHTMLSibling(t *testing.T) {
	e := newEnv(t, llmclient.NewFakeClient("unused"))
	htmlPath := filepath.Join(e.store.Root(), "html", "flow_1_ab.html")
	if err := os.WriteFile(htmlPath, []byte("<!DOCTYPE html><html></html>"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	resp, err := http.Get(e.srv.URL + "/api/diagrams/svg/flow_1_ab.svg")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK || !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html") {
		t.Fatalf("status %d, type %s; want html sibling", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
}

func TestSVGFallbackPlaceholderNever404s(t *testing.T) {
	e := newEnv(t, llmclient.NewFakeClient("unused"))
	resp, err := http.Get(e.srv.URL + "/api/diagrams/svg/stale_123_zz.svg")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200 placeholder", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !strings.Contains(string(body), "Diagram not found") {
		t.Fatalf("body = %q, want placeholder svg", body)
	}
}

func TestSourceEndpoint404(t *testing.T) {
	e := newEnv(t, llmclient.NewFakeClient("unused"))
	resp, err := http.Get(e.srv.URL + "/api/diagrams/source/missing.dot")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestIssueTokenThenAuthenticatedRequest(t *testing.T) {
	e := newEnv(t, llmclient.NewFakeClient("unused"))

	resp, out := postJSON(t, e.srv.URL+"/api/auth/token", `{"userId":"alice"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	tok, _ := out["token"].(string)
	if len(tok) != 48 {
		t.Fatalf("token = %q, want 48 hex chars", tok)
	}

	req, err := http.NewRequest(http.MethodGet, e.srv.URL+"/api/chat/history", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer "+tok)
	authed, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer authed.Body.Close()
	if authed.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", authed.StatusCode)
	}
}

func TestIssueTokenRequiresUserID(t *testing.T) {
	e := newEnv(t, llmclient.NewFakeClient("unused"))
	resp, _ := postJSON(t, e.srv.URL+"/api/auth/token", `{"userId":""}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestStaleBearerTokenRejected(t *testing.T) {
	e := newEnv(t, llmclient.NewFakeClient("unused"))
	req, err := http.NewRequest(http.MethodGet, e.srv.URL+"/api/chat/history", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer 0123456789abcdef")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}
