package api

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/starford/ehwaz/internal/apperr"
	"github.com/starford/ehwaz/internal/corpus"
	"github.com/starford/ehwaz/internal/graph"
	"github.com/starford/ehwaz/internal/index"
	"github.com/starford/ehwaz/internal/models"
	"github.com/starford/ehwaz/internal/storage"
	"github.com/starford/ehwaz/internal/validate"
)

// Service coordinates corpus, index, and validation for the API layer.
//
// Heavy derived views (dataset, graph, report) are computed from one corpus
// snapshot and cached until Invalidate is called, so a burst of requests
// after a file change re-processes the corpus once.
type Service struct {
	store storage.Provider
	db    index.ArticleIndex
	proc  *corpus.Processor
	log   *slog.Logger

	mu   sync.Mutex
	snap *snapshot
}

type snapshot struct {
	data   *corpus.ArticlesData
	graph  *graph.Graph
	report *validate.Report
}

// NewService creates a new API service.
func NewService(store storage.Provider, db index.ArticleIndex, proc *corpus.Processor, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: store, db: db, proc: proc, log: log}
}

// Invalidate drops the cached snapshot. Called after watcher-driven changes.
func (s *Service) Invalidate() {
	s.mu.Lock()
	s.snap = nil
	s.mu.Unlock()
}

func (s *Service) load(ctx context.Context) (*snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap != nil {
		return s.snap, nil
	}

	started := time.Now()
	articles, err := s.proc.ProcessAll(ctx)
	if err != nil {
		return nil, err
	}
	s.snap = &snapshot{
		data:   corpus.Export(articles),
		graph:  graph.Build(articles),
		report: validate.New(articles).Run(),
	}
	s.log.Debug("snapshot rebuilt",
		slog.Int("articles", len(articles)),
		slog.Duration("took", time.Since(started)))
	return s.snap, nil
}

// Articles returns the full processed dataset.
func (s *Service) Articles(ctx context.Context) (*corpus.ArticlesData, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return snap.data, nil
}

// Graph returns the link graph built from the current corpus.
func (s *Service) Graph(ctx context.Context) (*graph.Graph, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return snap.graph, nil
}

// Report returns the validation report for the current corpus.
func (s *Service) Report(ctx context.Context) (*validate.Report, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return snap.report, nil
}

// ArticleDetail is the response payload for a single article.
type ArticleDetail struct {
	Slug          string                 `json:"slug"`
	Title         string                 `json:"title"`
	Metadata      models.ArticleMetadata `json:"metadata"`
	Content       string                 `json:"content"`
	OutboundLinks []models.ExtractedLink `json:"outbound_links"`
	InboundLinks  []string               `json:"inbound_links"`
	ProcessedAt   time.Time              `json:"processed_at"`
}

// ArticleListItem is a lightweight item in a list response.
type ArticleListItem struct {
	Slug        string    `json:"slug"`
	Path        string    `json:"path"`
	Title       string    `json:"title"`
	Importance  int       `json:"importance"`
	Tags        []string  `json:"tags"`
	ProcessedAt time.Time `json:"processed_at"`
}

// GetArticle returns one article from the current snapshot, including its
// body and inbound slugs.
func (s *Service) GetArticle(ctx context.Context, slug string) (*ArticleDetail, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	for _, a := range snap.data.Articles {
		if a.Slug != slug {
			continue
		}
		body, err := s.store.Read(a.Path)
		if err != nil {
			return nil, fmt.Errorf("api: read article body: %w", err)
		}
		links := a.Links
		if links == nil {
			links = []models.ExtractedLink{}
		}
		inbound := a.InboundLinks
		if inbound == nil {
			inbound = []string{}
		}
		return &ArticleDetail{
			Slug:          a.Slug,
			Title:         a.Title,
			Metadata:      a.Metadata,
			Content:       string(body),
			OutboundLinks: links,
			InboundLinks:  inbound,
			ProcessedAt:   a.ProcessedAt,
		}, nil
	}
	return nil, apperr.ErrNotFound
}

// ListArticles returns paginated articles from the index with optional
// tag filter.
func (s *Service) ListArticles(_ context.Context, limit, offset int, tag, sort string) ([]ArticleListItem, int, error) {
	rows, total, err := s.db.ListArticles(limit, offset, tag, sort)
	if err != nil {
		return nil, 0, err
	}
	items := make([]ArticleListItem, len(rows))
	for i, r := range rows {
		tags := r.Tags
		if tags == nil {
			tags = []string{}
		}
		items[i] = ArticleListItem{
			Slug:        r.Slug,
			Path:        r.Path,
			Title:       r.Title,
			Importance:  r.Importance,
			Tags:        tags,
			ProcessedAt: r.ProcessedAt,
		}
	}
	return items, total, nil
}

// Search delegates to the index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	return s.db.Search(query, limit)
}

// Backlinks returns the slugs linking to target, from the index.
func (s *Service) Backlinks(_ context.Context, target string) ([]string, error) {
	bl, err := s.db.Backlinks(target)
	if err != nil {
		return nil, err
	}
	if bl == nil {
		bl = []string{}
	}
	return bl, nil
}
