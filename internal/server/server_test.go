package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/projectsentinel/sentinel/internal/database"
	"github.com/projectsentinel/sentinel/internal/enrich"
	"github.com/projectsentinel/sentinel/internal/entity"
	"github.com/projectsentinel/sentinel/internal/nlp"
)

type mockTranslator struct{}

func (m *mockTranslator) Translate(_ context.Context, text, sourceLang string) (*nlp.TranslationResult, error) {
	return &nlp.TranslationResult{
		TranslatedText:   "Attack reported in Maroua.",
		DetectedLanguage: sourceLang,
		ProcessingTime:   0.2,
	}, nil
}

type mockExtractor struct{}

func (m *mockExtractor) ExtractEntities(_ context.Context, _ string) (*nlp.ExtractionResult, error) {
	entities := []entity.Entity{
		{Word: "Maroua", Group: entity.GroupLocation, Confidence: 0.95, Start: 19, End: 25},
	}
	return &nlp.ExtractionResult{Entities: entities, EntityCount: len(entities), ProcessingTime: 0.3}, nil
}

func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestServer(t *testing.T) (*Server, *database.DB) {
	t.Helper()
	db := openTestDB(t)
	enricher := enrich.New(db, &mockTranslator{}, &mockExtractor{})
	return New(db, enricher), db
}

func doJSON(t *testing.T, srv *Server, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	var parsed map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &parsed); err != nil {
			t.Fatalf("invalid JSON response: %v\n%s", err, rec.Body.String())
		}
	}
	return rec, parsed
}

func TestHealthRoute(t *testing.T) {
	srv, _ := newTestServer(t)
	rec, body := doJSON(t, srv, "GET", "/health", "")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %v", body["status"])
	}
}

func TestIngestProcessesArticle(t *testing.T) {
	srv, _ := newTestServer(t)
	rec, body := doJSON(t, srv, "POST", "/api/articles",
		`{"url": "https://a.cm/1", "title": "Attaque à Maroua", "source": "Tribune", "raw_text": "Une attaque armée a été signalée près de Maroua dans la région du nord avec des morts et des blessés."}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if body["stage"] != "processed" {
		t.Errorf("expected processed stage, got %v", body["stage"])
	}
	if body["language"] != "fr" {
		t.Errorf("expected fr, got %v", body["language"])
	}
	if body["latitude"] == nil || body["longitude"] == nil {
		t.Error("expected resolved location")
	}
}

func TestIngestDuplicate(t *testing.T) {
	srv, _ := newTestServer(t)
	payload := `{"url": "https://a.cm/1", "title": "A", "raw_text": "text"}`
	doJSON(t, srv, "POST", "/api/articles", payload)
	rec, _ := doJSON(t, srv, "POST", "/api/articles", payload)
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", rec.Code)
	}
}

func TestIngestValidation(t *testing.T) {
	srv, _ := newTestServer(t)
	rec, _ := doJSON(t, srv, "POST", "/api/articles", `{"title": "no url"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	rec, _ = doJSON(t, srv, "POST", "/api/articles", `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed JSON, got %d", rec.Code)
	}
}

func TestGetArticleWithLogs(t *testing.T) {
	srv, _ := newTestServer(t)
	_, created := doJSON(t, srv, "POST", "/api/articles",
		`{"url": "https://a.cm/1", "title": "Attaque à Maroua", "raw_text": "Une attaque armée a été signalée près de Maroua dans la région du nord avec des morts et des blessés."}`)
	id, _ := created["id"].(string)
	if id == "" {
		t.Fatal("expected article id in ingest response")
	}

	rec, body := doJSON(t, srv, "GET", "/api/articles/"+id, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	logs, ok := body["processing_logs"].([]any)
	if !ok || len(logs) == 0 {
		t.Fatalf("expected processing logs, got %v", body["processing_logs"])
	}
	first := logs[0].(map[string]any)
	if first["operation"] != "translation" {
		t.Errorf("expected first log operation translation, got %v", first["operation"])
	}
}

func TestGetArticleNotFound(t *testing.T) {
	srv, _ := newTestServer(t)
	rec, _ := doJSON(t, srv, "GET", "/api/articles/missing", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestEventsGeoJSON(t *testing.T) {
	srv, _ := newTestServer(t)
	doJSON(t, srv, "POST", "/api/articles",
		`{"url": "https://a.cm/1", "title": "Attaque à Maroua", "raw_text": "Une attaque armée a été signalée près de Maroua dans la région du nord avec des morts et des blessés."}`)

	rec, body := doJSON(t, srv, "GET", "/api/events", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body["type"] != "FeatureCollection" {
		t.Errorf("expected FeatureCollection, got %v", body["type"])
	}
	features, _ := body["features"].([]any)
	if len(features) != 1 {
		t.Fatalf("expected 1 feature, got %d", len(features))
	}
	feature := features[0].(map[string]any)
	geometry := feature["geometry"].(map[string]any)
	coords := geometry["coordinates"].([]any)
	// GeoJSON order is longitude first
	if coords[0].(float64) != 14.3197 || coords[1].(float64) != 10.5969 {
		t.Errorf("expected [14.3197, 10.5969], got %v", coords)
	}
}

func TestEventsPriorityFilter(t *testing.T) {
	srv, _ := newTestServer(t)
	doJSON(t, srv, "POST", "/api/articles",
		`{"url": "https://a.cm/1", "title": "Attaque à Maroua", "raw_text": "Une attaque armée a été signalée près de Maroua dans la région du nord avec des morts et des blessés."}`)

	rec, body := doJSON(t, srv, "GET", "/api/events?priority=1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	features, _ := body["features"].([]any)
	if len(features) != 0 {
		t.Errorf("expected no critical events, got %d", len(features))
	}
}

func TestStatsRoute(t *testing.T) {
	srv, db := newTestServer(t)
	db.InsertArticle("https://a.cm/1", "A", nil, nil, "text")

	rec, body := doJSON(t, srv, "GET", "/api/stats", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body["total_articles"].(float64) != 1 {
		t.Errorf("expected 1 total article, got %v", body["total_articles"])
	}
	if body["pending_articles"].(float64) != 1 {
		t.Errorf("expected 1 pending article, got %v", body["pending_articles"])
	}
}

func TestReportRoute(t *testing.T) {
	srv, _ := newTestServer(t)
	req := httptest.NewRequest("GET", "/report", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "<h1") {
		t.Error("expected rendered HTML heading")
	}
	if !strings.Contains(body, "Situation Report") {
		t.Error("expected report title")
	}
}
