package validate

import (
	"testing"

	"github.com/starford/ehwaz/internal/models"
)

func article(slug string, meta models.ArticleMetadata, targets ...string) models.Article {
	links := make([]models.ExtractedLink, 0, len(targets))
	for i, tgt := range targets {
		links = append(links, models.ExtractedLink{
			Target:   tgt,
			Kind:     models.WikiLink,
			Position: i * 10,
			Context:  "near " + tgt,
		})
	}
	if meta.Importance == 0 {
		meta.Importance = 3
	}
	return models.Article{Slug: slug, Metadata: meta, Links: links}
}

func TestRunBrokenAndInvalid(t *testing.T) {
	report := New([]models.Article{
		article("article1", models.ArticleMetadata{
			RelatedArticles: []string{"article2", "missing"},
		}, "article2", "nonexistent"),
		article("article2", models.ArticleMetadata{}),
	}).Run()

	if len(report.Errors) != 2 {
		t.Fatalf("got %d errors, want 2: %+v", len(report.Errors), report.Errors)
	}
	if report.Summary.BrokenLinks != 1 {
		t.Errorf("broken links = %d, want 1", report.Summary.BrokenLinks)
	}
	if report.Summary.InvalidReferences != 1 {
		t.Errorf("invalid references = %d, want 1", report.Summary.InvalidReferences)
	}

	var broken, invalid *Error
	for i := range report.Errors {
		switch report.Errors[i].Kind {
		case BrokenLink:
			broken = &report.Errors[i]
		case InvalidRelatedArticle:
			invalid = &report.Errors[i]
		}
	}
	if broken == nil || broken.Source != "article1" || broken.Target != "nonexistent" {
		t.Errorf("broken link error = %+v", broken)
	}
	if invalid == nil || invalid.Source != "article1" || invalid.Target != "missing" {
		t.Errorf("invalid reference error = %+v", invalid)
	}
}

func TestRunCleanCorpus(t *testing.T) {
	report := New([]models.Article{
		article("a", models.ArticleMetadata{}, "b"),
		article("b", models.ArticleMetadata{}, "a"),
	}).Run()

	if len(report.Errors) != 0 {
		t.Errorf("errors = %+v, want none", report.Errors)
	}
	if len(report.Warnings) != 0 {
		t.Errorf("warnings = %+v, want none", report.Warnings)
	}
	if report.Summary.TotalArticles != 2 || report.Summary.TotalLinks != 2 {
		t.Errorf("summary = %+v", report.Summary)
	}
}

func TestWarningHighImportanceFewLinks(t *testing.T) {
	report := New([]models.Article{
		article("famous", models.ArticleMetadata{Importance: 5}, "hub"),
		article("hub", models.ArticleMetadata{}),
	}).Run()

	if !hasWarning(report, HighImportanceFewLinks, "famous") {
		t.Errorf("missing high-importance warning: %+v", report.Warnings)
	}
}

func TestWarningLowImportanceManyLinks(t *testing.T) {
	articles := []models.Article{
		article("popular", models.ArticleMetadata{Importance: 1}, "s1"),
	}
	for _, s := range []string{"s1", "s2", "s3", "s4", "s5", "s6"} {
		articles = append(articles, article(s, models.ArticleMetadata{}, "popular"))
	}
	report := New(articles).Run()

	if !hasWarning(report, LowImportanceManyLinks, "popular") {
		t.Errorf("missing low-importance warning: %+v", report.Warnings)
	}
	if report.ArticleStats["popular"].InboundLinks != 6 {
		t.Errorf("inbound = %d, want 6", report.ArticleStats["popular"].InboundLinks)
	}
}

func TestWarningMissingBacklinks(t *testing.T) {
	report := New([]models.Article{
		article("island", models.ArticleMetadata{}),
		article("a", models.ArticleMetadata{}, "b"),
		article("b", models.ArticleMetadata{}, "a"),
	}).Run()

	if !hasWarning(report, MissingBacklinks, "island") {
		t.Errorf("missing orphan warning: %+v", report.Warnings)
	}
	if report.Summary.OrphanedArticles != 1 {
		t.Errorf("orphaned = %d, want 1", report.Summary.OrphanedArticles)
	}
}

func TestRunDeterministicOrder(t *testing.T) {
	articles := []models.Article{
		article("zeta", models.ArticleMetadata{}, "ghost-z"),
		article("alpha", models.ArticleMetadata{}, "ghost-a"),
	}
	r1 := New(articles).Run()
	r2 := New(articles).Run()

	if len(r1.Errors) != 2 || r1.Errors[0].Source != "alpha" || r1.Errors[1].Source != "zeta" {
		t.Fatalf("errors not in slug order: %+v", r1.Errors)
	}
	for i := range r1.Errors {
		if r1.Errors[i] != r2.Errors[i] {
			t.Fatalf("runs disagree at %d: %+v vs %+v", i, r1.Errors[i], r2.Errors[i])
		}
	}
}

func TestSuggestion(t *testing.T) {
	report := New([]models.Article{
		article("graph-theory", models.ArticleMetadata{}),
		article("notes", models.ArticleMetadata{}, "graph-theory-"),
	}).Run()

	if len(report.Errors) != 1 {
		t.Fatalf("got %d errors, want 1", len(report.Errors))
	}
	want := "did you mean 'graph-theory'?"
	if got := report.Errors[0].Suggestion; got != want {
		t.Errorf("suggestion = %q, want %q", got, want)
	}
}

func TestSuggestionNoneBelowThreshold(t *testing.T) {
	report := New([]models.Article{
		article("graph-theory", models.ArticleMetadata{}),
		article("notes", models.ArticleMetadata{}, "zzzz"),
	}).Run()

	if len(report.Errors) != 1 {
		t.Fatalf("got %d errors, want 1", len(report.Errors))
	}
	if got := report.Errors[0].Suggestion; got != "" {
		t.Errorf("suggestion = %q, want empty", got)
	}
}

func hasWarning(r *Report, kind WarningKind, source string) bool {
	for _, w := range r.Warnings {
		if w.Kind == kind && w.Source == source {
			return true
		}
	}
	return false
}
