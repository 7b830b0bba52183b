package database

// GetStats returns aggregate counts over the stored articles.
func (db *DB) GetStats() (*Stats, error) {
	s := &Stats{
		BySource:   make(map[string]int),
		ByPriority: make(map[int]int),
		ByStage:    make(map[string]int),
	}

	rows, err := db.conn.Query(`SELECT stage, COUNT(*) FROM articles GROUP BY stage`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var stage string
		var count int
		if err := rows.Scan(&stage, &count); err != nil {
			return nil, err
		}
		s.ByStage[stage] = count
		s.TotalArticles += count
		switch Stage(stage) {
		case StageProcessed:
			s.ProcessedArticles = count
		case StagePending:
			s.PendingArticles = count
		case StageFailed:
			s.FailedArticles = count
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := db.conn.QueryRow(
		`SELECT COUNT(*) FROM articles WHERE latitude IS NOT NULL AND longitude IS NOT NULL`,
	).Scan(&s.LocatedArticles); err != nil {
		return nil, err
	}

	srcRows, err := db.conn.Query(
		`SELECT COALESCE(source, 'unknown'), COUNT(*) FROM articles GROUP BY source ORDER BY COUNT(*) DESC LIMIT 10`,
	)
	if err != nil {
		return nil, err
	}
	defer srcRows.Close()
	for srcRows.Next() {
		var source string
		var count int
		if err := srcRows.Scan(&source, &count); err != nil {
			return nil, err
		}
		s.BySource[source] = count
	}
	if err := srcRows.Err(); err != nil {
		return nil, err
	}

	priRows, err := db.conn.Query(`SELECT priority, COUNT(*) FROM articles GROUP BY priority`)
	if err != nil {
		return nil, err
	}
	defer priRows.Close()
	for priRows.Next() {
		var priority, count int
		if err := priRows.Scan(&priority, &count); err != nil {
			return nil, err
		}
		s.ByPriority[priority] = count
	}
	return s, priRows.Err()
}
