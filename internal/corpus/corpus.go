// Package corpus loads an article directory into processed Article records.
// It owns the parse → validate → extract pipeline and the exported JSON
// dataset shape.
package corpus

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/starford/ehwaz/internal/extract"
	"github.com/starford/ehwaz/internal/metadata"
	"github.com/starford/ehwaz/internal/models"
	"github.com/starford/ehwaz/internal/slug"
	"github.com/starford/ehwaz/internal/storage"
)

// Processor turns corpus files into Article records.
type Processor struct {
	store   storage.Provider
	log     *slog.Logger
	workers int
}

// NewProcessor creates a Processor reading from store. Worker count defaults
// to GOMAXPROCS.
func NewProcessor(store storage.Provider, log *slog.Logger) *Processor {
	if log == nil {
		log = slog.Default()
	}
	return &Processor{
		store:   store,
		log:     log,
		workers: runtime.GOMAXPROCS(0),
	}
}

// SetWorkers overrides the parallel extraction limit. Values below one are
// ignored.
func (p *Processor) SetWorkers(n int) {
	if n >= 1 {
		p.workers = n
	}
}

// Process builds one Article from a file's raw bytes. The slug is derived
// from the file name, never from frontmatter.
func (p *Processor) Process(path string, content []byte) (models.Article, error) {
	meta, body, err := metadata.Parse(content)
	if err != nil {
		return models.Article{}, fmt.Errorf("corpus: %s: %w", path, err)
	}
	if err := metadata.Validate(meta); err != nil {
		return models.Article{}, fmt.Errorf("corpus: %s: %w", path, err)
	}
	return models.Article{
		Slug:        slug.FromPath(path),
		Title:       meta.Title,
		Metadata:    meta,
		Body:        body,
		Path:        path,
		Links:       extract.Links(body),
		ProcessedAt: time.Now().UTC(),
	}, nil
}

// ProcessAll walks the corpus and processes every markdown file in parallel.
// Documents that fail parsing or metadata validation are logged and excluded;
// I/O failures abort the run. The result is ordered by slug.
func (p *Processor) ProcessAll(ctx context.Context) ([]models.Article, error) {
	files, err := p.store.List("")
	if err != nil {
		return nil, fmt.Errorf("corpus: walk: %w", err)
	}

	results := make([]*models.Article, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, fi := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := p.store.Read(fi.Path)
			if err != nil {
				return err
			}
			article, err := p.Process(fi.Path, data)
			if err != nil {
				p.log.Warn("skipping article", "path", fi.Path, "error", err)
				return nil
			}
			results[i] = &article
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("corpus: process: %w", err)
	}

	articles := make([]models.Article, 0, len(results))
	for _, a := range results {
		if a != nil {
			articles = append(articles, *a)
		}
	}
	sort.Slice(articles, func(i, j int) bool { return articles[i].Slug < articles[j].Slug })

	p.log.Info("corpus processed",
		"files", len(files),
		"articles", len(articles),
		"skipped", len(files)-len(articles))
	return articles, nil
}

// ArticleExport is one article in the published dataset, augmented with the
// slugs that link to it.
type ArticleExport struct {
	models.Article
	InboundLinks []string `json:"inbound_links"`
}

// ArticlesData is the full processed dataset written by the process command
// and served over the API.
type ArticlesData struct {
	GeneratedAt  time.Time       `json:"generated_at"`
	TotalCount   int             `json:"total_count"`
	HomeArticles []string        `json:"home_articles"`
	Articles     []ArticleExport `json:"articles"`
}

// Export assembles the dataset from processed articles. Inbound slugs are
// derived by re-scanning outbound links so the export never drifts from the
// bodies; self-links do not count.
func Export(articles []models.Article) *ArticlesData {
	known := make(map[string]bool, len(articles))
	for _, a := range articles {
		known[a.Slug] = true
	}

	inbound := make(map[string]map[string]bool)
	for _, a := range articles {
		for _, l := range a.Links {
			if !l.Kind.Internal() || l.Target == a.Slug || !known[l.Target] {
				continue
			}
			if inbound[l.Target] == nil {
				inbound[l.Target] = make(map[string]bool)
			}
			inbound[l.Target][a.Slug] = true
		}
	}

	data := &ArticlesData{
		GeneratedAt: time.Now().UTC(),
		TotalCount:  len(articles),
	}
	for _, a := range articles {
		sources := make([]string, 0, len(inbound[a.Slug]))
		for src := range inbound[a.Slug] {
			sources = append(sources, src)
		}
		sort.Strings(sources)
		data.Articles = append(data.Articles, ArticleExport{Article: a, InboundLinks: sources})
		if a.Metadata.HomeDisplay {
			data.HomeArticles = append(data.HomeArticles, a.Slug)
		}
	}
	return data
}
