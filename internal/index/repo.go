package index

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/starford/ehwaz/internal/models"
)

// ArticleRow represents a row in the articles table.
type ArticleRow struct {
	Slug        string
	Path        string
	Title       string
	Checksum    string
	Importance  int
	Tags        []string
	ProcessedAt time.Time
}

// SearchResult represents one search hit.
type SearchResult struct {
	Slug    string
	Title   string
	Snippet string
}

// UpsertArticle inserts or replaces an article, its FTS entry, and its
// internal outbound links within a transaction. External links are not
// indexed.
func (db *DB) UpsertArticle(row ArticleRow, body string, links []models.ExtractedLink) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	tagsJSON, _ := json.Marshal(row.Tags)

	// Upsert articles table (includes body for fallback search).
	_, err = tx.Exec(`
		INSERT INTO articles (slug, path, title, checksum, importance, tags, body, processed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(slug) DO UPDATE SET
			path         = excluded.path,
			title        = excluded.title,
			checksum     = excluded.checksum,
			importance   = excluded.importance,
			tags         = excluded.tags,
			body         = excluded.body,
			processed_at = excluded.processed_at
	`, row.Slug, row.Path, row.Title, row.Checksum, row.Importance, string(tagsJSON), body, row.ProcessedAt)
	if err != nil {
		return fmt.Errorf("index: upsert article: %w", err)
	}

	// FTS upsert (no-op when FTS5 tag is absent).
	if err := ftsUpsert(tx, row.Slug, row.Title, body, row.Tags); err != nil {
		return err
	}

	// Replace links: delete old then bulk insert.
	_, _ = tx.Exec(`DELETE FROM links WHERE source = ?`, row.Slug)
	stmt, err := tx.Prepare(`INSERT OR IGNORE INTO links (source, target, kind, position) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("index: prepare link insert: %w", err)
	}
	defer stmt.Close()
	for _, l := range links {
		if !l.Kind.Internal() {
			continue
		}
		if _, err := stmt.Exec(row.Slug, l.Target, l.Kind.String(), l.Position); err != nil {
			return fmt.Errorf("index: insert link: %w", err)
		}
	}

	return tx.Commit()
}

// DeleteArticle removes an article, its FTS entry, and its outgoing links.
func (db *DB) DeleteArticle(slug string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, slug)
	_, _ = tx.Exec(`DELETE FROM links WHERE source = ?`, slug)
	_, _ = tx.Exec(`DELETE FROM articles WHERE slug = ?`, slug)

	return tx.Commit()
}

// GetArticle returns the stored row for a slug, or nil when absent.
func (db *DB) GetArticle(slug string) (*ArticleRow, error) {
	var (
		row      ArticleRow
		tagsJSON string
	)
	err := db.conn.QueryRow(`
		SELECT slug, path, title, checksum, importance, tags, processed_at
		FROM articles WHERE slug = ?
	`, slug).Scan(&row.Slug, &row.Path, &row.Title, &row.Checksum, &row.Importance, &tagsJSON, &row.ProcessedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("index: get article: %w", err)
	}
	_ = json.Unmarshal([]byte(tagsJSON), &row.Tags)
	return &row, nil
}

// ListArticles returns paginated rows with an optional tag filter. Sort is
// one of "title", "importance", "processed_at" (default slug order).
func (db *DB) ListArticles(limit, offset int, tag, sort string) ([]ArticleRow, int, error) {
	if limit <= 0 {
		limit = 50
	}

	where := ""
	args := []any{}
	if tag != "" {
		// Tags are stored as a JSON array of strings.
		where = ` WHERE tags LIKE ?`
		args = append(args, `%"`+tag+`"%`)
	}

	var total int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM articles`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count articles: %w", err)
	}

	order := ` ORDER BY slug`
	switch sort {
	case "title":
		order = ` ORDER BY title`
	case "importance":
		order = ` ORDER BY importance DESC, slug`
	case "processed_at":
		order = ` ORDER BY processed_at DESC`
	}

	args = append(args, limit, offset)
	rows, err := db.conn.Query(`
		SELECT slug, path, title, checksum, importance, tags, processed_at
		FROM articles`+where+order+` LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list articles: %w", err)
	}
	defer rows.Close()

	var out []ArticleRow
	for rows.Next() {
		var (
			r        ArticleRow
			tagsJSON string
		)
		if err := rows.Scan(&r.Slug, &r.Path, &r.Title, &r.Checksum, &r.Importance, &tagsJSON, &r.ProcessedAt); err != nil {
			return nil, 0, err
		}
		_ = json.Unmarshal([]byte(tagsJSON), &r.Tags)
		out = append(out, r)
	}
	return out, total, rows.Err()
}

// GetChecksum returns the stored checksum for a slug, or empty string if not
// found.
func (db *DB) GetChecksum(slug string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM articles WHERE slug = ?`, slug).Scan(&cs)
	if err != nil {
		return "", nil // not found is fine
	}
	return cs, nil
}

// AllChecksums returns every indexed article's checksum keyed by source path.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM articles`)
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

// Backlinks returns the distinct slugs that link to the given target, in
// slug order.
func (db *DB) Backlinks(target string) ([]string, error) {
	rows, err := db.conn.Query(`SELECT DISTINCT source FROM links WHERE target = ? ORDER BY source`, target)
	if err != nil {
		return nil, fmt.Errorf("index: backlinks: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
