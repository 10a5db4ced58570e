//go:build sqlite_fts5

package index

import (
	"database/sql"
	"fmt"

	"github.com/starford/onboard/internal/toc"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS headings_fts USING fts5(
			path UNINDEXED,
			position UNINDEXED,
			title,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsReplace(tx *sql.Tx, path string, headings []toc.Heading) error {
	if err := ftsDelete(tx, path); err != nil {
		return err
	}
	for _, h := range headings {
		if _, err := tx.Exec(`INSERT INTO headings_fts (path, position, title) VALUES (?, ?, ?)`,
			path, h.Line, h.Title); err != nil {
			return fmt.Errorf("index: upsert fts: %w", err)
		}
	}
	return nil
}

func ftsDelete(tx *sql.Tx, path string) error {
	if _, err := tx.Exec(`DELETE FROM headings_fts WHERE path = ?`, path); err != nil {
		return fmt.Errorf("index: delete fts: %w", err)
	}
	return nil
}

// SearchHeadings runs an FTS5 match over heading titles, best match first.
func (db *DB) SearchHeadings(query string, limit int) ([]HeadingHit, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT h.path, p.title, h.level, h.title, h.anchor
		FROM headings_fts f
		JOIN headings h ON h.path = f.path AND h.position = f.position
		JOIN pages p ON p.path = h.path
		WHERE headings_fts MATCH ?
		ORDER BY f.rank
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()
	return scanHits(rows)
}
