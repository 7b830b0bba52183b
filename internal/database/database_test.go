package database

import (
	"path/filepath"
	"testing"

	"github.com/projectsentinel/sentinel/internal/entity"
	"github.com/projectsentinel/sentinel/internal/nlp"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func ptr(s string) *string { return &s }

func TestInsertArticle(t *testing.T) {
	db := openTestDB(t)
	id, err := db.InsertArticle("https://example.cm/a", "Army deploys to Far North",
		ptr("Cameroon Tribune"), ptr("2026-08-20"), "Raw article text here.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id == "" {
		t.Fatal("expected non-empty article ID")
	}

	a, err := db.GetArticleByID(id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Stage != StagePending {
		t.Errorf("expected pending stage, got %s", a.Stage)
	}
	if a.Language != "unknown" {
		t.Errorf("expected unknown language, got %s", a.Language)
	}
	if a.HasLocation() {
		t.Error("expected no location on a new article")
	}
}

func TestInsertDuplicateArticle(t *testing.T) {
	db := openTestDB(t)
	db.InsertArticle("https://example.cm/dup", "First", nil, nil, "")
	id, err := db.InsertArticle("https://example.cm/dup", "Duplicate", nil, nil, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "" {
		t.Error("expected empty ID for duplicate URL")
	}
}

func TestGetArticlesByStage(t *testing.T) {
	db := openTestDB(t)
	db.InsertArticle("https://a.cm", "A", nil, nil, "text")
	db.InsertArticle("https://b.cm", "B", nil, nil, "text")

	pending, err := db.GetArticlesByStage(StagePending, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pending) != 2 {
		t.Errorf("expected 2 pending articles, got %d", len(pending))
	}

	processed, _ := db.GetArticlesByStage(StageProcessed, 0)
	if len(processed) != 0 {
		t.Errorf("expected 0 processed articles, got %d", len(processed))
	}
}

func TestStageTransitions(t *testing.T) {
	db := openTestDB(t)
	id, _ := db.InsertArticle("https://a.cm", "A", nil, nil, "text")

	if err := db.UpdateArticleStage(id, StagePending, StageTranslating); err != nil {
		t.Fatalf("pending -> translating: %v", err)
	}
	if err := db.UpdateArticleStage(id, StageTranslating, StageExtractingEntities); err != nil {
		t.Fatalf("translating -> extracting_entities: %v", err)
	}

	// Backward jump is rejected before touching the database.
	if err := db.UpdateArticleStage(id, StageExtractingEntities, StagePending); err == nil {
		t.Error("expected error for backward transition")
	}

	// Guarded update: article is no longer pending.
	if err := db.UpdateArticleStage(id, StagePending, StageTranslating); err == nil {
		t.Error("expected error when current stage does not match")
	}
}

func TestCompleteArticle(t *testing.T) {
	db := openTestDB(t)
	id, _ := db.InsertArticle("https://a.cm", "A", nil, nil, "text")
	db.UpdateArticleStage(id, StagePending, StageTranslating)
	db.UpdateArticleStage(id, StageTranslating, StageExtractingEntities)

	results := Results{
		Translation: &nlp.TranslationResult{TranslatedText: "text", DetectedLanguage: "en"},
		Entities: &nlp.ExtractionResult{
			Entities:    []entity.Entity{{Word: "Douala", Group: entity.GroupLocation, Confidence: 0.9}},
			EntityCount: 1,
		},
	}
	if err := db.CompleteArticle(id, results); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a, _ := db.GetArticleByID(id)
	if a.Stage != StageProcessed {
		t.Errorf("expected processed, got %s", a.Stage)
	}
	if a.Results.Translation == nil || a.Results.Translation.TranslatedText != "text" {
		t.Error("expected translation result to round-trip")
	}
	if a.Results.Entities == nil || a.Results.Entities.Entities[0].Word != "Douala" {
		t.Error("expected entities result to round-trip")
	}

	// processed is terminal
	if err := db.CompleteArticle(id, results); err == nil {
		t.Error("expected error completing an already-processed article")
	}
}

func TestFailArticle(t *testing.T) {
	db := openTestDB(t)
	id, _ := db.InsertArticle("https://a.cm", "A", nil, nil, "text")
	db.UpdateArticleStage(id, StagePending, StageTranslating)

	if err := db.FailArticle(id, Results{Error: "merge fault"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a, _ := db.GetArticleByID(id)
	if a.Stage != StageFailed {
		t.Errorf("expected failed, got %s", a.Stage)
	}
	if a.Results.Error != "merge fault" {
		t.Errorf("expected stored error message, got %q", a.Results.Error)
	}
}

func TestFailArticleDoesNotTouchProcessed(t *testing.T) {
	db := openTestDB(t)
	id, _ := db.InsertArticle("https://a.cm", "A", nil, nil, "text")
	db.UpdateArticleStage(id, StagePending, StageTranslating)
	db.UpdateArticleStage(id, StageTranslating, StageExtractingEntities)
	db.CompleteArticle(id, Results{})

	db.FailArticle(id, Results{Error: "late fault"})
	a, _ := db.GetArticleByID(id)
	if a.Stage != StageProcessed {
		t.Errorf("expected processed to stay terminal, got %s", a.Stage)
	}
}

func TestRequeueFailedArticles(t *testing.T) {
	db := openTestDB(t)
	failed, _ := db.InsertArticle("https://a.cm", "A", nil, nil, "text")
	db.UpdateArticleStage(failed, StagePending, StageTranslating)
	db.FailArticle(failed, Results{Error: "merge fault"})
	processed, _ := db.InsertArticle("https://b.cm", "B", nil, nil, "text")
	db.UpdateArticleStage(processed, StagePending, StageTranslating)
	db.UpdateArticleStage(processed, StageTranslating, StageExtractingEntities)
	db.CompleteArticle(processed, Results{})

	n, err := db.RequeueFailedArticles()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 requeued article, got %d", n)
	}

	a, _ := db.GetArticleByID(failed)
	if a.Stage != StagePending {
		t.Errorf("expected pending after requeue, got %s", a.Stage)
	}
	if a.Results.Error != "" {
		t.Errorf("expected cleared results, got error %q", a.Results.Error)
	}
	b, _ := db.GetArticleByID(processed)
	if b.Stage != StageProcessed {
		t.Errorf("expected processed untouched, got %s", b.Stage)
	}
}

func TestLocationAndEnrichmentFields(t *testing.T) {
	db := openTestDB(t)
	id, _ := db.InsertArticle("https://a.cm", "A", nil, nil, "text")

	db.UpdateArticleLanguage(id, "fr")
	db.SetArticleLocation(id, 3.8480, 11.5021)
	db.UpdateArticleEntityCount(id, 4)
	db.UpdateArticlePriority(id, 1)

	a, _ := db.GetArticleByID(id)
	if a.Language != "fr" {
		t.Errorf("expected fr, got %s", a.Language)
	}
	if !a.HasLocation() || *a.Latitude != 3.8480 {
		t.Errorf("expected location to be set, got %+v", a)
	}
	if a.EntityCount != 4 || a.Priority != 1 {
		t.Errorf("unexpected enrichment fields: count=%d priority=%d", a.EntityCount, a.Priority)
	}
}

func TestProcessingLogs(t *testing.T) {
	db := openTestDB(t)
	id, _ := db.InsertArticle("https://a.cm", "A", nil, nil, "text")

	dur := 0.42
	db.InsertProcessingLog(id, OpTranslation, LogStarted, "Detected language: fr", nil)
	db.InsertProcessingLog(id, OpTranslation, LogCompleted, "Translation successful", &dur)

	logs, err := db.GetLogsForArticle(id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("expected 2 logs, got %d", len(logs))
	}
	if logs[0].Status != LogStarted || logs[1].Status != LogCompleted {
		t.Error("expected logs in insertion order")
	}
	if logs[1].ProcessingTime == nil || *logs[1].ProcessingTime != 0.42 {
		t.Error("expected processing time to round-trip")
	}
}

func TestGetLocatedArticles(t *testing.T) {
	db := openTestDB(t)
	located, _ := db.InsertArticle("https://a.cm", "Located", ptr("Tribune"), nil, "text")
	db.UpdateArticleStage(located, StagePending, StageTranslating)
	db.UpdateArticleStage(located, StageTranslating, StageExtractingEntities)
	db.SetArticleLocation(located, 4.0511, 9.7679)
	db.UpdateArticlePriority(located, 2)
	db.CompleteArticle(located, Results{})

	db.InsertArticle("https://b.cm", "Unlocated", nil, nil, "text")

	articles, err := db.GetLocatedArticles(100, 30, "", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(articles) != 1 || articles[0].Title != "Located" {
		t.Fatalf("expected only the located processed article, got %+v", articles)
	}

	filtered, _ := db.GetLocatedArticles(100, 30, "", 1)
	if len(filtered) != 0 {
		t.Error("expected priority filter to exclude the article")
	}

	bySource, _ := db.GetLocatedArticles(100, 30, "Trib", 0)
	if len(bySource) != 1 {
		t.Error("expected source substring filter to match")
	}
}

func TestGetStats(t *testing.T) {
	db := openTestDB(t)
	a, _ := db.InsertArticle("https://a.cm", "A", ptr("Tribune"), nil, "text")
	db.InsertArticle("https://b.cm", "B", ptr("Tribune"), nil, "text")
	db.UpdateArticleStage(a, StagePending, StageTranslating)
	db.FailArticle(a, Results{Error: "x"})

	stats, err := db.GetStats()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TotalArticles != 2 {
		t.Errorf("expected 2 total, got %d", stats.TotalArticles)
	}
	if stats.FailedArticles != 1 || stats.PendingArticles != 1 {
		t.Errorf("unexpected stage counts: %+v", stats)
	}
	if stats.BySource["Tribune"] != 2 {
		t.Errorf("expected 2 Tribune articles, got %d", stats.BySource["Tribune"])
	}
}
