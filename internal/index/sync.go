package index

import (
	"log/slog"

	"github.com/starford/ehwaz/internal/checksum"
	"github.com/starford/ehwaz/internal/corpus"
	"github.com/starford/ehwaz/internal/slug"
	"github.com/starford/ehwaz/internal/storage"
)

// Sync walks the corpus and brings the index up to date:
//   - new/changed files are processed and upserted
//   - files removed from disk are deleted from the index
func Sync(db *DB, store storage.Provider, proc *corpus.Processor, logger *slog.Logger) error {
	infos, err := store.List("")
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(infos))
	for _, fi := range infos {
		disk[fi.Path] = struct{}{}

		if checksums[fi.Path] == fi.Checksum {
			continue
		}

		data, err := store.Read(fi.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", fi.Path), slog.String("error", err.Error()))
			continue
		}
		if err := indexFile(db, proc, fi.Path, data); err != nil {
			logger.Warn("sync: index failed", slog.String("path", fi.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("path", fi.Path))
		}
	}

	// Remove stale entries.
	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeleteArticle(slug.FromPath(p)); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

// indexFile processes data into an article and upserts it into the DB.
func indexFile(db *DB, proc *corpus.Processor, path string, data []byte) error {
	article, err := proc.Process(path, data)
	if err != nil {
		return err
	}

	row := ArticleRow{
		Slug:        article.Slug,
		Path:        path,
		Title:       article.Title,
		Checksum:    checksum.Sum(data),
		Importance:  article.Metadata.Importance,
		Tags:        article.Metadata.Tags,
		ProcessedAt: article.ProcessedAt,
	}
	return db.UpsertArticle(row, article.Body, article.Links)
}
