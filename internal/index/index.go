package index

import "github.com/starford/ehwaz/internal/models"

// ArticleIndex defines the interface for article indexing operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type ArticleIndex interface {
	UpsertArticle(row ArticleRow, body string, links []models.ExtractedLink) error
	DeleteArticle(slug string) error
	GetChecksum(slug string) (string, error)
	GetArticle(slug string) (*ArticleRow, error)
	ListArticles(limit, offset int, tag, sort string) ([]ArticleRow, int, error)
	Search(query string, limit int) ([]SearchResult, error)
	Backlinks(target string) ([]string, error)
	AllChecksums() (map[string]string, error)
	Close() error
}

// Verify *DB satisfies ArticleIndex at compile time.
var _ ArticleIndex = (*DB)(nil)
