package server_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/beliefmap/pixels-go/embedder/mock"
	"github.com/beliefmap/pixels-go/extract"
	"github.com/beliefmap/pixels-go/pipeline"
	"github.com/beliefmap/pixels-go/pixel"
	"github.com/beliefmap/pixels-go/server"
	"github.com/beliefmap/pixels-go/store"
	"github.com/beliefmap/pixels-go/store/chromem"
)

type stubExtractor struct {
	result *pixel.ExtractionResult
	err    error
}

func (s *stubExtractor) Extract(ctx context.Context, messages []extract.Message) (*pixel.ExtractionResult, error) {
	return s.result, s.err
}

func newTestServer(t *testing.T, extractor pipeline.Extractor) (http.Handler, store.Store) {
	t.Helper()
	s, err := chromem.New(mock.New())
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	coordinator := pipeline.New(extractor, s, nil)
	return server.New(coordinator, s).Router(), s
}

func pixelResult() *pixel.ExtractionResult {
	return &pixel.ExtractionResult{
		Pixel: &pixel.Draft{
			Statement:       "Hard work always pays off",
			Context:         "Career discussion",
			Explanation:     "Strong meritocratic framing",
			ColorStage:      pixel.StageVector{Orange: 0.8, Blue: 0.2},
			ConfidenceScore: 0.9,
		},
	}
}

func doRequest(t *testing.T, handler http.Handler, method, target, userID, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	handler, _ := newTestServer(t, &stubExtractor{result: pixelResult()})
	rec := doRequest(t, handler, http.MethodGet, "/api/health", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestPixelGenerationStoresPixel(t *testing.T) {
	handler, s := newTestServer(t, &stubExtractor{result: pixelResult()})

	body := `{"chatId":"chat-1","messages":[{"id":"m1","role":"user","parts":[{"type":"text","text":"hi"}]}]}`
	rec := doRequest(t, handler, http.MethodPost, "/api/pixel-generation", "user-1", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Status string `json:"status"`
		Result struct {
			StoredPixelID string `json:"storedPixelId"`
		} `json:"result"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "done" || resp.Result.StoredPixelID == "" {
		t.Errorf("response = %s", rec.Body.String())
	}

	all, err := s.GetAll(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if all.Len() != 1 {
		t.Errorf("stored = %d, want 1", all.Len())
	}
	if all.Metadatas[0].ChatID != "chat-1" {
		t.Errorf("chatId = %q, want chat-1", all.Metadatas[0].ChatID)
	}
}

func TestPixelGenerationRequiresUser(t *testing.T) {
	handler, _ := newTestServer(t, &stubExtractor{result: pixelResult()})
	rec := doRequest(t, handler, http.MethodPost, "/api/pixel-generation", "", `{"messages":[]}`)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestPixelGenerationBadBody(t *testing.T) {
	handler, _ := newTestServer(t, &stubExtractor{result: pixelResult()})
	rec := doRequest(t, handler, http.MethodPost, "/api/pixel-generation", "user-1", "{not json")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestPixelGenerationExtractorFailure(t *testing.T) {
	handler, _ := newTestServer(t, &stubExtractor{err: context.DeadlineExceeded})
	rec := doRequest(t, handler, http.MethodPost, "/api/pixel-generation", "user-1", `{"messages":[]}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["status"] != "error" {
		t.Errorf("response = %s", rec.Body.String())
	}
	// Diagnostics stay in the log, never in the user-facing body.
	if strings.Contains(resp["message"], "deadline") {
		t.Errorf("error message leaks internals: %q", resp["message"])
	}
}

func TestGetAndDeletePixels(t *testing.T) {
	handler, s := newTestServer(t, &stubExtractor{result: pixelResult()})
	ctx := context.Background()

	md := &pixel.Metadata{
		Statement:  "seed",
		Context:    "seed context",
		ColorStage: &pixel.StageVector{Teal: 0.4},
		Timestamp:  "2024-05-01T00:00:00Z",
	}
	for _, id := range []string{"p1", "p2"} {
		if err := s.Add(ctx, "user-1", "context: seed context\nstatement: seed", md, id); err != nil {
			t.Fatalf("seed store: %v", err)
		}
	}

	rec := doRequest(t, handler, http.MethodGet, "/api/pixels", "user-1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	var all store.GetAllResult
	if err := json.Unmarshal(rec.Body.Bytes(), &all); err != nil {
		t.Fatalf("decode get response: %v", err)
	}
	if all.Len() != 2 {
		t.Fatalf("returned = %d, want 2", all.Len())
	}

	rec = doRequest(t, handler, http.MethodDelete, "/api/pixels?id=p1", "user-1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}
	var deleted map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &deleted); err != nil {
		t.Fatalf("decode delete response: %v", err)
	}
	if deleted["deletedId"] != "p1" {
		t.Errorf("delete response = %s", rec.Body.String())
	}

	rec = doRequest(t, handler, http.MethodDelete, "/api/pixels", "user-1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("delete all status = %d", rec.Code)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &deleted); err != nil {
		t.Fatalf("decode delete all response: %v", err)
	}
	if count, ok := deleted["deletedCount"].(float64); !ok || count != 1 {
		t.Errorf("delete all response = %s, want deletedCount 1", rec.Body.String())
	}
}

func TestProjection(t *testing.T) {
	handler, s := newTestServer(t, &stubExtractor{result: pixelResult()})
	ctx := context.Background()

	entries := []struct {
		id, statement, ts string
	}{
		{"p1", "first", "2024-01-10T00:00:00Z"},
		{"p2", "second", "2024-02-10T00:00:00Z"},
		{"p3", "third", "2024-03-10T00:00:00Z"},
	}
	for _, e := range entries {
		md := &pixel.Metadata{
			Statement:  e.statement,
			Context:    "test",
			ColorStage: &pixel.StageVector{Red: -0.9},
			Timestamp:  e.ts,
		}
		if err := s.Add(ctx, "user-1", "context: test\nstatement: "+e.statement, md, e.id); err != nil {
			t.Fatalf("seed store: %v", err)
		}
	}

	rec := doRequest(t, handler, http.MethodGet, "/api/pixels/projection", "user-1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Points []struct {
			ID       string     `json:"id"`
			Color    string     `json:"color"`
			Position [3]float64 `json:"position"`
		} `json:"points"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Points) != 3 {
		t.Fatalf("points = %d, want 3", len(resp.Points))
	}
	for _, p := range resp.Points {
		if p.Color != "#ff0000" {
			t.Errorf("point %s color = %q, want red", p.ID, p.Color)
		}
	}

	// Time window keeps only the February pixel.
	rec = doRequest(t, handler, http.MethodGet,
		"/api/pixels/projection?start=2024-02-01T00:00:00Z&end=2024-02-28T00:00:00Z", "user-1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("filtered status = %d", rec.Code)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode filtered response: %v", err)
	}
	if len(resp.Points) != 1 || resp.Points[0].ID != "p2" {
		t.Errorf("filtered points = %+v, want only p2", resp.Points)
	}

	rec = doRequest(t, handler, http.MethodGet, "/api/pixels/projection?scale=-1", "user-1", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad scale status = %d, want 400", rec.Code)
	}
}
