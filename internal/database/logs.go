package database

// InsertProcessingLog appends an audit record for a pipeline operation.
// Log entries are never updated or deleted.
func (db *DB) InsertProcessingLog(articleID, operation, status, message string, processingTime *float64) error {
	_, err := db.conn.Exec(
		`INSERT INTO processing_logs (article_id, operation, status, message, processing_time)
		VALUES (?, ?, ?, ?, ?)`,
		articleID, operation, status, message, processingTime,
	)
	return err
}

// GetLogsForArticle returns the processing logs for an article, oldest first.
func (db *DB) GetLogsForArticle(articleID string) ([]ProcessingLog, error) {
	rows, err := db.conn.Query(
		`SELECT id, article_id, operation, status, message, processing_time, created_at
		FROM processing_logs WHERE article_id = ? ORDER BY id ASC`, articleID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []ProcessingLog
	for rows.Next() {
		var l ProcessingLog
		if err := rows.Scan(&l.ID, &l.ArticleID, &l.Operation, &l.Status,
			&l.Message, &l.ProcessingTime, &l.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
