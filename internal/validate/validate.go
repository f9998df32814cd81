// Package validate walks the corpus and classifies link errors, structural
// warnings, and per-article statistics into a single immutable report.
package validate

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/starford/ehwaz/internal/models"
)

// ErrorKind classifies a validation error.
type ErrorKind int

const (
	// BrokenLink is an internal outbound link whose target is not a known slug.
	BrokenLink ErrorKind = iota
	// InvalidRelatedArticle is a related_articles entry that matches no slug.
	InvalidRelatedArticle
)

// String returns the wire name of the kind.
func (k ErrorKind) String() string {
	switch k {
	case BrokenLink:
		return "broken_link"
	case InvalidRelatedArticle:
		return "invalid_related_article"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// MarshalJSON encodes the kind as its wire name.
func (k ErrorKind) MarshalJSON() ([]byte, error) { return json.Marshal(k.String()) }

// UnmarshalJSON decodes a wire name back into an ErrorKind.
func (k *ErrorKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "broken_link":
		*k = BrokenLink
	case "invalid_related_article":
		*k = InvalidRelatedArticle
	default:
		return fmt.Errorf("validate: unknown error kind %q", s)
	}
	return nil
}

// WarningKind classifies a heuristic warning.
type WarningKind int

const (
	// HighImportanceFewLinks: importance >= 4 but fewer than 2 inbound links.
	HighImportanceFewLinks WarningKind = iota
	// LowImportanceManyLinks: importance <= 2 but 5 or more inbound links.
	LowImportanceManyLinks
	// MissingBacklinks: zero outbound and zero inbound links (fully orphaned).
	MissingBacklinks
)

// String returns the wire name of the kind.
func (k WarningKind) String() string {
	switch k {
	case HighImportanceFewLinks:
		return "high_importance_few_links"
	case LowImportanceManyLinks:
		return "low_importance_many_links"
	case MissingBacklinks:
		return "missing_backlinks"
	}
	return fmt.Sprintf("WarningKind(%d)", int(k))
}

// MarshalJSON encodes the kind as its wire name.
func (k WarningKind) MarshalJSON() ([]byte, error) { return json.Marshal(k.String()) }

// UnmarshalJSON decodes a wire name back into a WarningKind.
func (k *WarningKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "high_importance_few_links":
		*k = HighImportanceFewLinks
	case "low_importance_many_links":
		*k = LowImportanceManyLinks
	case "missing_backlinks":
		*k = MissingBacklinks
	default:
		return fmt.Errorf("validate: unknown warning kind %q", s)
	}
	return nil
}

// Error is one validation finding that should block a gated pipeline.
type Error struct {
	Kind       ErrorKind `json:"kind"`
	Source     string    `json:"source_article"`
	Target     string    `json:"target_reference"`
	Context    string    `json:"context,omitempty"`
	Suggestion string    `json:"suggestion,omitempty"`
}

// Warning is a heuristic finding that never affects gating.
type Warning struct {
	Kind       WarningKind `json:"kind"`
	Source     string      `json:"source_article"`
	Context    string      `json:"context,omitempty"`
	Suggestion string      `json:"suggestion,omitempty"`
}

// Stats holds per-article link statistics.
type Stats struct {
	OutboundLinks   int  `json:"outbound_links"`
	InboundLinks    int  `json:"inbound_links"`
	BrokenOutbound  int  `json:"broken_outbound_links"`
	InvalidRelated  int  `json:"invalid_related_articles"`
	HasErrors       bool `json:"has_errors"`
	HasWarnings     bool `json:"has_warnings"`
}

// Summary aggregates the report. Every count is derived from the error and
// warning lists; no field is maintained independently.
type Summary struct {
	TotalArticles        int `json:"total_articles"`
	TotalLinks           int `json:"total_links"`
	BrokenLinks          int `json:"broken_links"`
	InvalidReferences    int `json:"invalid_references"`
	OrphanedArticles     int `json:"orphaned_articles"`
	ArticlesWithErrors   int `json:"articles_with_errors"`
	ArticlesWithWarnings int `json:"articles_with_warnings"`
}

// Report is the result of one validation run. Constructed once, read-only
// afterward.
type Report struct {
	GeneratedAt  string           `json:"generated_at"`
	Summary      Summary          `json:"summary"`
	Errors       []Error          `json:"errors"`
	Warnings     []Warning        `json:"warnings"`
	ArticleStats map[string]Stats `json:"article_stats"`
}

// Validator validates an immutable corpus snapshot.
type Validator struct {
	articles []models.Article
	known    map[string]struct{}
}

// New creates a validator over the given corpus.
func New(articles []models.Article) *Validator {
	known := make(map[string]struct{}, len(articles))
	for i := range articles {
		known[articles[i].Slug] = struct{}{}
	}
	return &Validator{articles: articles, known: known}
}

// Run validates every article and produces the full report. Articles are
// visited in ascending slug order so error and warning ordering is
// deterministic. Findings are data: Run never fails because of them.
func (v *Validator) Run() *Report {
	ordered := make([]*models.Article, 0, len(v.articles))
	for i := range v.articles {
		ordered = append(ordered, &v.articles[i])
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Slug < ordered[j].Slug })

	report := &Report{
		GeneratedAt:  time.Now().UTC().Format(time.RFC3339),
		Errors:       []Error{},
		Warnings:     []Warning{},
		ArticleStats: make(map[string]Stats, len(ordered)),
	}

	for _, article := range ordered {
		errs, warns, stats := v.validateArticle(article)
		report.Errors = append(report.Errors, errs...)
		report.Warnings = append(report.Warnings, warns...)
		report.ArticleStats[article.Slug] = stats
	}

	report.Summary = v.summarize(report)
	return report
}

// validateArticle checks one article independently: broken outbound links,
// invalid related-article references, and the heuristic warnings.
func (v *Validator) validateArticle(article *models.Article) ([]Error, []Warning, Stats) {
	var errs []Error
	var warns []Warning

	internal := article.InternalLinks()

	broken := 0
	for _, link := range internal {
		if _, ok := v.known[link.Target]; ok {
			continue
		}
		errs = append(errs, Error{
			Kind:       BrokenLink,
			Source:     article.Slug,
			Target:     link.Target,
			Context:    link.Context,
			Suggestion: v.suggest(link.Target),
		})
		broken++
	}

	invalid := 0
	for _, related := range article.Metadata.RelatedArticles {
		if _, ok := v.known[related]; ok {
			continue
		}
		errs = append(errs, Error{
			Kind:       InvalidRelatedArticle,
			Source:     article.Slug,
			Target:     related,
			Context:    "front matter related_articles",
			Suggestion: v.suggest(related),
		})
		invalid++
	}

	// Inbound count by full re-scan, deliberately independent of the graph
	// builder so validation stays correct when the graph is bypassed.
	inbound := v.countInbound(article.Slug)

	if article.Metadata.Importance >= 4 && inbound < 2 {
		warns = append(warns, Warning{
			Kind:       HighImportanceFewLinks,
			Source:     article.Slug,
			Context:    fmt.Sprintf("importance %d, %d inbound links", article.Metadata.Importance, inbound),
			Suggestion: "link to this article from related ones, or lower its importance",
		})
	}
	if article.Metadata.Importance <= 2 && inbound >= 5 {
		warns = append(warns, Warning{
			Kind:       LowImportanceManyLinks,
			Source:     article.Slug,
			Context:    fmt.Sprintf("importance %d, %d inbound links", article.Metadata.Importance, inbound),
			Suggestion: "consider raising the importance of this well-connected article",
		})
	}
	if len(internal) == 0 && inbound == 0 {
		warns = append(warns, Warning{
			Kind:       MissingBacklinks,
			Source:     article.Slug,
			Context:    "no inbound or outbound links",
			Suggestion: "add links to or from this article to connect it to the corpus",
		})
	}

	stats := Stats{
		OutboundLinks:  len(internal),
		InboundLinks:   inbound,
		BrokenOutbound: broken,
		InvalidRelated: invalid,
		HasErrors:      len(errs) > 0,
		HasWarnings:    len(warns) > 0,
	}
	return errs, warns, stats
}

// countInbound counts internal link occurrences across all other articles
// that point at slug.
func (v *Validator) countInbound(slug string) int {
	n := 0
	for i := range v.articles {
		if v.articles[i].Slug == slug {
			continue
		}
		for _, link := range v.articles[i].Links {
			if link.Kind.Internal() && link.Target == slug {
				n++
			}
		}
	}
	return n
}

// summarize derives the aggregate counts from the collected findings.
func (v *Validator) summarize(report *Report) Summary {
	s := Summary{TotalArticles: len(v.articles)}

	for _, stats := range report.ArticleStats {
		s.TotalLinks += stats.OutboundLinks
		if stats.HasErrors {
			s.ArticlesWithErrors++
		}
		if stats.HasWarnings {
			s.ArticlesWithWarnings++
		}
	}
	for _, e := range report.Errors {
		switch e.Kind {
		case BrokenLink:
			s.BrokenLinks++
		case InvalidRelatedArticle:
			s.InvalidReferences++
		}
	}
	for _, w := range report.Warnings {
		if w.Kind == MissingBacklinks {
			s.OrphanedArticles++
		}
	}
	return s
}
