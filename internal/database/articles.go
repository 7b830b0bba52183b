package database

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

const articleColumns = `id, url, title, source, raw_text, published_date, language, stage,
	priority, entity_count, latitude, longitude, results_json, content_fetched, created_at, updated_at`

// InsertArticle inserts a new pending article and returns its ID.
// Returns "" without error when the URL is already stored.
func (db *DB) InsertArticle(url, title string, source, publishedDate *string, rawText string) (string, error) {
	id := uuid.NewString()
	_, err := db.conn.Exec(
		`INSERT INTO articles (id, url, title, source, published_date, raw_text)
		VALUES (?, ?, ?, ?, ?, ?)`,
		id, url, title, source, publishedDate, rawText,
	)
	if err != nil {
		// Duplicate URL constraint
		return "", nil //nolint: nilerr
	}
	return id, nil
}

// GetArticleByID returns a single article, or nil when not found.
func (db *DB) GetArticleByID(id string) (*Article, error) {
	row := db.conn.QueryRow(
		`SELECT `+articleColumns+` FROM articles WHERE id = ?`, id,
	)
	a, err := scanArticle(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// GetArticlesByStage returns up to limit articles in the given stage,
// oldest first. limit <= 0 means no limit.
func (db *DB) GetArticlesByStage(stage Stage, limit int) ([]Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles WHERE stage = ? ORDER BY created_at ASC`
	args := []any{string(stage)}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanArticles(rows)
}

// GetLocatedArticles returns processed articles that carry a coordinate,
// newest first, with optional filters. days <= 0, source == "" and
// priority <= 0 disable the respective filter.
func (db *DB) GetLocatedArticles(limit, days int, source string, priority int) ([]Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles
		WHERE stage = ? AND latitude IS NOT NULL AND longitude IS NOT NULL`
	args := []any{string(StageProcessed)}

	if days > 0 {
		query += fmt.Sprintf(" AND created_at >= datetime('now', '-%d days')", days)
	}
	if source != "" {
		query += " AND source LIKE ?"
		args = append(args, "%"+source+"%")
	}
	if priority > 0 {
		query += " AND priority = ?"
		args = append(args, priority)
	}

	query += " ORDER BY published_date DESC, created_at DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanArticles(rows)
}

// GetArticlesNeedingFetch returns pending articles with empty raw text whose
// content has not been fetched yet.
func (db *DB) GetArticlesNeedingFetch() ([]Article, error) {
	rows, err := db.conn.Query(
		`SELECT ` + articleColumns + ` FROM articles
		WHERE raw_text = '' AND content_fetched = 0 AND stage = 'pending'
		ORDER BY created_at ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanArticles(rows)
}

// UpdateArticleRawText stores fetched article text.
func (db *DB) UpdateArticleRawText(id, rawText string) error {
	_, err := db.conn.Exec(
		`UPDATE articles SET raw_text = ?, content_fetched = 1, updated_at = datetime('now') WHERE id = ?`,
		rawText, id,
	)
	return err
}

// MarkArticleFetchAttempted marks that we tried to fetch content.
func (db *DB) MarkArticleFetchAttempted(id string) error {
	_, err := db.conn.Exec(
		`UPDATE articles SET content_fetched = 1, updated_at = datetime('now') WHERE id = ?`, id,
	)
	return err
}

// UpdateArticleLanguage stores the detected language.
func (db *DB) UpdateArticleLanguage(id, lang string) error {
	_, err := db.conn.Exec(
		`UPDATE articles SET language = ?, updated_at = datetime('now') WHERE id = ?`,
		lang, id,
	)
	return err
}

// UpdateArticleStage moves an article between stages. The transition is
// validated and the update is guarded on the expected current stage, so a
// concurrent writer cannot produce an invalid jump.
func (db *DB) UpdateArticleStage(id string, from, to Stage) error {
	if !ValidTransition(from, to) {
		return fmt.Errorf("invalid stage transition %s -> %s", from, to)
	}

	res, err := db.conn.Exec(
		`UPDATE articles SET stage = ?, updated_at = datetime('now') WHERE id = ? AND stage = ?`,
		string(to), id, string(from),
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("article %s is not in stage %s", id, from)
	}
	return nil
}

// SetArticleLocation stores a resolved coordinate.
func (db *DB) SetArticleLocation(id string, latitude, longitude float64) error {
	_, err := db.conn.Exec(
		`UPDATE articles SET latitude = ?, longitude = ?, updated_at = datetime('now') WHERE id = ?`,
		latitude, longitude, id,
	)
	return err
}

// UpdateArticleEntityCount stores the merged entity count.
func (db *DB) UpdateArticleEntityCount(id string, count int) error {
	_, err := db.conn.Exec(
		`UPDATE articles SET entity_count = ?, updated_at = datetime('now') WHERE id = ?`,
		count, id,
	)
	return err
}

// UpdateArticlePriority stores the classified priority tier.
func (db *DB) UpdateArticlePriority(id string, priority int) error {
	_, err := db.conn.Exec(
		`UPDATE articles SET priority = ?, updated_at = datetime('now') WHERE id = ?`,
		priority, id,
	)
	return err
}

// CompleteArticle stores the accumulated results and marks the article
// processed. Only valid from the extracting_entities stage.
func (db *DB) CompleteArticle(id string, results Results) error {
	data, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("marshaling results: %w", err)
	}

	res, err := db.conn.Exec(
		`UPDATE articles SET results_json = ?, stage = ?, updated_at = datetime('now')
		WHERE id = ? AND stage = ?`,
		string(data), string(StageProcessed), id, string(StageExtractingEntities),
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("article %s is not in stage %s", id, StageExtractingEntities)
	}
	return nil
}

// FailArticle marks the article failed and stores the results, including the
// error message the caller set. Failed is reachable from any non-terminal
// stage; a processed article stays processed.
func (db *DB) FailArticle(id string, results Results) error {
	data, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("marshaling results: %w", err)
	}

	_, err = db.conn.Exec(
		`UPDATE articles SET results_json = ?, stage = ?, updated_at = datetime('now')
		WHERE id = ? AND stage NOT IN (?, ?)`,
		string(data), string(StageFailed), id, string(StageProcessed), string(StageFailed),
	)
	return err
}

// RequeueFailedArticles resets every failed article back to pending so the
// next processing run picks it up again. This is an operator action that
// sidesteps the normal stage transitions; stored results are cleared.
func (db *DB) RequeueFailedArticles() (int, error) {
	res, err := db.conn.Exec(
		`UPDATE articles SET stage = ?, results_json = '{}', entity_count = 0, updated_at = datetime('now')
		WHERE stage = ?`,
		string(StagePending), string(StageFailed),
	)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func scanArticles(rows *sql.Rows) ([]Article, error) {
	var articles []Article
	for rows.Next() {
		a, err := scanArticleRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		articles = append(articles, *a)
	}
	return articles, rows.Err()
}

func scanArticle(row *sql.Row) (*Article, error) {
	return scanArticleRow(row.Scan)
}

func scanArticleRow(scan func(dest ...any) error) (*Article, error) {
	var a Article
	var stage, resultsJSON string
	var fetched int
	if err := scan(&a.ID, &a.URL, &a.Title, &a.Source, &a.RawText, &a.PublishedDate,
		&a.Language, &stage, &a.Priority, &a.EntityCount, &a.Latitude, &a.Longitude,
		&resultsJSON, &fetched, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	a.Stage = Stage(stage)
	a.ContentFetched = fetched != 0
	if resultsJSON != "" {
		if err := json.Unmarshal([]byte(resultsJSON), &a.Results); err != nil {
			return nil, fmt.Errorf("decoding results for article %s: %w", a.ID, err)
		}
	}
	return &a, nil
}
