// Package server exposes the article store over HTTP: a JSON ingest and
// query API, a GeoJSON event feed and a rendered situation report.
package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/projectsentinel/sentinel/internal/database"
	"github.com/projectsentinel/sentinel/internal/enrich"
	"github.com/projectsentinel/sentinel/internal/priority"
	"github.com/projectsentinel/sentinel/internal/report"
)

var md = goldmark.New()

// Server is the HTTP server for ingesting and querying articles.
type Server struct {
	db       *database.DB
	enricher *enrich.Enricher
	mux      *http.ServeMux
}

// New creates a new Server. The enricher is used to process articles
// submitted through the ingest endpoint; it may be nil, in which case
// submitted articles stay pending until the next processing run.
func New(db *database.DB, enricher *enrich.Enricher) *Server {
	s := &Server{db: db, enricher: enricher, mux: http.NewServeMux()}
	s.routes()
	return s
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/articles", s.handleArticles)
	s.mux.HandleFunc("/api/articles/", s.handleArticleByID)
	s.mux.HandleFunc("/api/events", s.handleEvents)
	s.mux.HandleFunc("/api/stats", s.handleStats)
	s.mux.HandleFunc("/report", s.handleReport)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type ingestRequest struct {
	URL           string  `json:"url"`
	Title         string  `json:"title"`
	Source        *string `json:"source"`
	PublishedDate *string `json:"published_date"`
	RawText       string  `json:"raw_text"`
}

func (s *Server) handleArticles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.URL == "" || req.Title == "" {
		writeError(w, http.StatusBadRequest, "url and title are required")
		return
	}

	id, err := s.db.InsertArticle(req.URL, req.Title, req.Source, req.PublishedDate, req.RawText)
	if err != nil {
		log.Printf("Error inserting article: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if id == "" {
		writeError(w, http.StatusConflict, "article with this URL already exists")
		return
	}

	if s.enricher != nil && req.RawText != "" {
		article, err := s.db.GetArticleByID(id)
		if err == nil && article != nil {
			if err := s.enricher.ProcessArticle(r.Context(), article); err != nil {
				log.Printf("Error processing article %s: %v", id, err)
			}
		}
	}

	article, err := s.db.GetArticleByID(id)
	if err != nil || article == nil {
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusCreated, articleJSON(article))
}

func (s *Server) handleArticleByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/articles/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "article not found")
		return
	}

	article, err := s.db.GetArticleByID(id)
	if err != nil {
		log.Printf("Error loading article %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if article == nil {
		writeError(w, http.StatusNotFound, "article not found")
		return
	}

	logs, err := s.db.GetLogsForArticle(id)
	if err != nil {
		log.Printf("Error loading logs for %s: %v", id, err)
	}

	resp := articleJSON(article)
	entries := make([]map[string]any, 0, len(logs))
	for _, l := range logs {
		entries = append(entries, map[string]any{
			"operation":       l.Operation,
			"status":          l.Status,
			"message":         l.Message,
			"processing_time": l.ProcessingTime,
			"created_at":      l.CreatedAt,
		})
	}
	resp["processing_logs"] = entries
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	limit := queryInt(r, "limit", 100)
	days := queryInt(r, "days", 0)
	pri := queryInt(r, "priority", 0)
	source := r.URL.Query().Get("source")

	articles, err := s.db.GetLocatedArticles(limit, days, source, pri)
	if err != nil {
		log.Printf("Error loading events: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	features := make([]map[string]any, 0, len(articles))
	for _, a := range articles {
		features = append(features, map[string]any{
			"type": "Feature",
			"geometry": map[string]any{
				"type":        "Point",
				"coordinates": []float64{*a.Longitude, *a.Latitude},
			},
			"properties": map[string]any{
				"id":             a.ID,
				"title":          a.Title,
				"url":            a.URL,
				"source":         a.Source,
				"published_date": a.PublishedDate,
				"language":       a.Language,
				"priority":       a.Priority,
				"priority_label": priority.Label(a.Priority),
				"entity_count":   a.EntityCount,
			},
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"type":     "FeatureCollection",
		"features": features,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	stats, err := s.db.GetStats()
	if err != nil {
		log.Printf("Error loading stats: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"total_articles":     stats.TotalArticles,
		"processed_articles": stats.ProcessedArticles,
		"pending_articles":   stats.PendingArticles,
		"failed_articles":    stats.FailedArticles,
		"located_articles":   stats.LocatedArticles,
		"by_source":          stats.BySource,
		"by_priority":        stats.ByPriority,
		"by_stage":           stats.ByStage,
	})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	days := queryInt(r, "days", 7)
	markdown, err := report.NewComposer(s.db).Compose(days)
	if err != nil {
		log.Printf("Error composing report: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		log.Printf("Error rendering report: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, "<!DOCTYPE html>\n<html><head><title>Situation Report</title></head><body>\n%s</body></html>\n", buf.String())
}

func articleJSON(a *database.Article) map[string]any {
	return map[string]any{
		"id":              a.ID,
		"url":             a.URL,
		"title":           a.Title,
		"source":          a.Source,
		"published_date":  a.PublishedDate,
		"language":        a.Language,
		"stage":           string(a.Stage),
		"priority":        a.Priority,
		"priority_label":  priority.Label(a.Priority),
		"entity_count":    a.EntityCount,
		"latitude":        a.Latitude,
		"longitude":       a.Longitude,
		"results":         a.Results,
		"content_fetched": a.ContentFetched,
		"created_at":      a.CreatedAt,
		"updated_at":      a.UpdatedAt,
	}
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// Serve starts the HTTP server on the given port.
func Serve(db *database.DB, enricher *enrich.Enricher, port int) error {
	srv := New(db, enricher)
	addr := fmt.Sprintf("127.0.0.1:%d", port)
	log.Printf("Server listening on http://%s", addr)
	return http.ListenAndServe(addr, srv.Handler())
}
