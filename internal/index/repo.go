package index

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/starford/onboard/internal/toc"
)

// PageRow represents a row in the pages table.
type PageRow struct {
	Path      string    `json:"path"`
	Title     string    `json:"title"`
	Checksum  string    `json:"checksum"`
	Order     int       `json:"order"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HeadingHit is one heading matched by a search.
type HeadingHit struct {
	Path      string `json:"path"`
	PageTitle string `json:"page_title"`
	Level     int    `json:"level"`
	Title     string `json:"title"`
	Anchor    string `json:"anchor"`
}

// UpsertPage replaces a page row and its headings in one transaction.
func (db *DB) UpsertPage(p PageRow, headings []toc.Heading) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.Exec(`
		INSERT INTO pages (path, title, checksum, ord, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			title      = excluded.title,
			checksum   = excluded.checksum,
			ord        = excluded.ord,
			updated_at = excluded.updated_at
	`, p.Path, p.Title, p.Checksum, p.Order, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert page: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM headings WHERE path = ?`, p.Path); err != nil {
		return fmt.Errorf("index: clear headings: %w", err)
	}
	if len(headings) > 0 {
		stmt, err := tx.Prepare(`INSERT INTO headings (path, position, level, title, anchor) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare heading insert: %w", err)
		}
		defer stmt.Close()
		for _, h := range headings {
			if _, err := stmt.Exec(p.Path, h.Line, h.Level, h.Title, h.Anchor); err != nil {
				return fmt.Errorf("index: insert heading: %w", err)
			}
		}
	}

	if err := ftsReplace(tx, p.Path, headings); err != nil {
		return err
	}

	return tx.Commit()
}

// DeletePage removes a page and its headings.
func (db *DB) DeletePage(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := ftsDelete(tx, path); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM headings WHERE path = ?`, path); err != nil {
		return fmt.Errorf("index: delete headings: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM pages WHERE path = ?`, path); err != nil {
		return fmt.Errorf("index: delete page: %w", err)
	}
	return tx.Commit()
}

// GetPage returns the row for path, or nil when it is not indexed.
func (db *DB) GetPage(path string) (*PageRow, error) {
	var p PageRow
	err := db.conn.QueryRow(`SELECT path, title, checksum, ord, updated_at FROM pages WHERE path = ?`, path).
		Scan(&p.Path, &p.Title, &p.Checksum, &p.Order, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("index: get page: %w", err)
	}
	return &p, nil
}

// ListPages returns every page ordered by its configured order, then path.
func (db *DB) ListPages() ([]PageRow, error) {
	rows, err := db.conn.Query(`SELECT path, title, checksum, ord, updated_at FROM pages ORDER BY ord, path`)
	if err != nil {
		return nil, fmt.Errorf("index: list pages: %w", err)
	}
	defer rows.Close()

	var out []PageRow
	for rows.Next() {
		var p PageRow
		if err := rows.Scan(&p.Path, &p.Title, &p.Checksum, &p.Order, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Headings returns the indexed headings of a page in document order.
func (db *DB) Headings(path string) ([]toc.Heading, error) {
	rows, err := db.conn.Query(`SELECT position, level, title, anchor FROM headings WHERE path = ? ORDER BY position`, path)
	if err != nil {
		return nil, fmt.Errorf("index: headings: %w", err)
	}
	defer rows.Close()

	var out []toc.Heading
	for rows.Next() {
		var h toc.Heading
		if err := rows.Scan(&h.Line, &h.Level, &h.Title, &h.Anchor); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// AllChecksums maps every indexed path to its checksum.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM pages`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

func scanHits(rows *sql.Rows) ([]HeadingHit, error) {
	var out []HeadingHit
	for rows.Next() {
		var h HeadingHit
		if err := rows.Scan(&h.Path, &h.PageTitle, &h.Level, &h.Title, &h.Anchor); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
