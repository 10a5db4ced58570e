//go:build !sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/starford/onboard/internal/toc"
)

// Without FTS5 the headings table is searched with LIKE.
func initFTS(_ *sql.DB) error { return nil }

func ftsReplace(_ *sql.Tx, _ string, _ []toc.Heading) error { return nil }

func ftsDelete(_ *sql.Tx, _ string) error { return nil }

// likeEscaper makes LIKE wildcards in a query match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SearchHeadings matches heading titles containing query, in page order.
func (db *DB) SearchHeadings(query string, limit int) ([]HeadingHit, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT h.path, p.title, h.level, h.title, h.anchor
		FROM headings h
		JOIN pages p ON p.path = h.path
		WHERE h.title LIKE ? ESCAPE '\'
		ORDER BY p.ord, h.path, h.position
		LIMIT ?
	`, "%"+likeEscaper.Replace(query)+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()
	return scanHits(rows)
}
