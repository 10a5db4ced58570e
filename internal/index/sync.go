package index

import (
	"log/slog"
	"strings"
	"time"

	"github.com/starford/onboard/internal/checksum"
	"github.com/starford/onboard/internal/parser"
	"github.com/starford/onboard/internal/storage"
	"github.com/starford/onboard/internal/toc"
)

// Sync brings the index in line with the content directory:
//   - new or changed files are parsed and upserted
//   - indexed pages whose files are gone are deleted
func Sync(db *DB, store storage.Provider, f *toc.Formatter, logger *slog.Logger) error {
	metas, err := store.List("")
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}
		if checksums[m.Path] == m.Checksum {
			continue
		}

		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if err := IndexFile(db, f, m.Path, data); err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		logger.Debug("sync: indexed", slog.String("path", m.Path))
	}

	for p := range checksums {
		if _, ok := disk[p]; ok {
			continue
		}
		if err := db.DeletePage(p); err != nil {
			logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: removed stale", slog.String("path", p))
		}
	}

	return nil
}

// IndexFile parses a content file and upserts the page with its headings.
func IndexFile(db *DB, f *toc.Formatter, path string, data []byte) error {
	res, err := parser.Parse(data, f)
	if err != nil {
		return err
	}
	return db.UpsertPage(PageRow{
		Path:      path,
		Title:     res.Title,
		Checksum:  checksum.Sum(data),
		Order:     res.Order,
		UpdatedAt: time.Now().UTC(),
	}, f.Headings(strings.Split(res.Body, "\n")))
}
