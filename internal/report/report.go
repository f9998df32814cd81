// Package report renders a validation report into its textual
// representations and persists them as file artifacts.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/starford/ehwaz/internal/validate"
)

// Artifact file names written by WriteFiles.
const (
	JSONFile     = "validation-report.json"
	ConsoleFile  = "validation-report.txt"
	MarkdownFile = "validation-report.md"
	SummaryFile  = "validation-summary.txt"
)

// topArticles bounds the problematic-article list in the console and
// markdown forms.
const topArticles = 10

// FormatJSON renders the machine-readable form.
func FormatJSON(r *validate.Report) (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("report: marshal json: %w", err)
	}
	return string(data), nil
}

// ParseJSON decodes a report previously rendered with FormatJSON.
func ParseJSON(data []byte) (*validate.Report, error) {
	var r validate.Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("report: parse json: %w", err)
	}
	return &r, nil
}

// FormatConsole renders the human-readable console form.
func FormatConsole(r *validate.Report) string {
	var b strings.Builder

	b.WriteString("🔍 Link Validation Report\n")
	fmt.Fprintf(&b, "📅 Generated: %s\n\n", r.GeneratedAt)

	b.WriteString("📊 Summary:\n")
	fmt.Fprintf(&b, "   📚 Total articles: %d\n", r.Summary.TotalArticles)
	fmt.Fprintf(&b, "   🔗 Total links: %d\n", r.Summary.TotalLinks)
	if r.Summary.BrokenLinks > 0 {
		fmt.Fprintf(&b, "   ❌ Broken links: %d\n", r.Summary.BrokenLinks)
	} else {
		b.WriteString("   ✅ All links valid\n")
	}
	if r.Summary.InvalidReferences > 0 {
		fmt.Fprintf(&b, "   ⚠️  Invalid references: %d\n", r.Summary.InvalidReferences)
	}
	if r.Summary.OrphanedArticles > 0 {
		fmt.Fprintf(&b, "   🏝️  Orphaned articles: %d\n", r.Summary.OrphanedArticles)
	}
	fmt.Fprintf(&b, "   📄 Articles with errors: %d\n", r.Summary.ArticlesWithErrors)
	fmt.Fprintf(&b, "   ⚠️  Articles with warnings: %d\n", r.Summary.ArticlesWithWarnings)

	if len(r.Errors) > 0 {
		b.WriteString("\n❌ Errors:\n")
		for i, e := range r.Errors {
			fmt.Fprintf(&b, "%d. %s\n", i+1, FormatError(e))
		}
	}

	if len(r.Warnings) > 0 {
		b.WriteString("\n⚠️  Warnings:\n")
		for i, w := range r.Warnings {
			fmt.Fprintf(&b, "%d. %s\n", i+1, FormatWarning(w))
		}
	}

	if problematic := rankProblematic(r); len(problematic) > 0 {
		b.WriteString("\n📈 Article Statistics:\n")
		for _, slug := range problematic {
			stats := r.ArticleStats[slug]
			fmt.Fprintf(&b, "   📄 %s: ", slug)

			var issues []string
			if stats.BrokenOutbound > 0 {
				issues = append(issues, fmt.Sprintf("%d broken links", stats.BrokenOutbound))
			}
			if stats.InvalidRelated > 0 {
				issues = append(issues, fmt.Sprintf("%d invalid references", stats.InvalidRelated))
			}
			if len(issues) > 0 {
				b.WriteString(strings.Join(issues, ", "))
			} else {
				b.WriteString("warnings only")
			}
			fmt.Fprintf(&b, " (%d out, %d in)\n", stats.OutboundLinks, stats.InboundLinks)
		}
	}

	if r.Summary.BrokenLinks > 0 || r.Summary.InvalidReferences > 0 {
		b.WriteString("\n💡 Recommendations:\n")
		b.WriteString("   • Fix broken links by updating article references\n")
		b.WriteString("   • Remove invalid entries from related_articles in front matter\n")
		b.WriteString("   • Consider creating missing articles if they are frequently referenced\n")
	}
	if r.Summary.OrphanedArticles > 0 {
		b.WriteString("   • Add links to/from orphaned articles to improve connectivity\n")
	}

	return b.String()
}

// FormatError renders a single error line.
func FormatError(e validate.Error) string {
	var kind string
	switch e.Kind {
	case validate.BrokenLink:
		kind = "🔗 Broken Link"
	case validate.InvalidRelatedArticle:
		kind = "📋 Invalid Related Article"
	}

	s := fmt.Sprintf("%s: %s → %s", kind, e.Source, e.Target)
	if e.Context != "" {
		s += fmt.Sprintf(" (%s)", e.Context)
	}
	if e.Suggestion != "" {
		s += fmt.Sprintf(" | 💡 %s", e.Suggestion)
	}
	return s
}

// FormatWarning renders a single warning line.
func FormatWarning(w validate.Warning) string {
	var kind string
	switch w.Kind {
	case validate.HighImportanceFewLinks:
		kind = "📉 High Importance, Few Links"
	case validate.LowImportanceManyLinks:
		kind = "📈 Low Importance, Many Links"
	case validate.MissingBacklinks:
		kind = "🔗 Missing Backlinks"
	}

	s := fmt.Sprintf("%s: %s", kind, w.Source)
	if w.Context != "" {
		s += fmt.Sprintf(" (%s)", w.Context)
	}
	if w.Suggestion != "" {
		s += fmt.Sprintf(" | 💡 %s", w.Suggestion)
	}
	return s
}

// FormatMarkdown renders the structured-document form.
func FormatMarkdown(r *validate.Report) string {
	var b strings.Builder

	b.WriteString("# Link Validation Report\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", r.GeneratedAt)

	b.WriteString("## Summary\n\n")
	b.WriteString("| Metric | Count |\n|---|---|\n")
	fmt.Fprintf(&b, "| Total articles | %d |\n", r.Summary.TotalArticles)
	fmt.Fprintf(&b, "| Total links | %d |\n", r.Summary.TotalLinks)
	fmt.Fprintf(&b, "| Broken links | %d |\n", r.Summary.BrokenLinks)
	fmt.Fprintf(&b, "| Invalid references | %d |\n", r.Summary.InvalidReferences)
	fmt.Fprintf(&b, "| Orphaned articles | %d |\n", r.Summary.OrphanedArticles)
	fmt.Fprintf(&b, "| Articles with errors | %d |\n", r.Summary.ArticlesWithErrors)
	fmt.Fprintf(&b, "| Articles with warnings | %d |\n", r.Summary.ArticlesWithWarnings)

	if len(r.Errors) > 0 {
		b.WriteString("\n## Errors\n\n")
		for _, e := range r.Errors {
			fmt.Fprintf(&b, "- **%s**: `%s` → `%s`", e.Kind, e.Source, e.Target)
			if e.Suggestion != "" {
				fmt.Fprintf(&b, " — %s", e.Suggestion)
			}
			b.WriteString("\n")
		}
	}

	if len(r.Warnings) > 0 {
		b.WriteString("\n## Warnings\n\n")
		for _, w := range r.Warnings {
			fmt.Fprintf(&b, "- **%s**: `%s`", w.Kind, w.Source)
			if w.Context != "" {
				fmt.Fprintf(&b, " (%s)", w.Context)
			}
			b.WriteString("\n")
		}
	}

	if problematic := rankProblematic(r); len(problematic) > 0 {
		b.WriteString("\n## Top problematic articles\n\n")
		b.WriteString("| Article | Broken | Invalid | Out | In |\n|---|---|---|---|---|\n")
		for _, slug := range problematic {
			stats := r.ArticleStats[slug]
			fmt.Fprintf(&b, "| %s | %d | %d | %d | %d |\n",
				slug, stats.BrokenOutbound, stats.InvalidRelated, stats.OutboundLinks, stats.InboundLinks)
		}
	}

	return b.String()
}

// FormatCISummary renders the condensed pass/fail one-liner for automation
// gating.
func FormatCISummary(r *validate.Report) string {
	var b strings.Builder

	if r.Summary.BrokenLinks == 0 && r.Summary.InvalidReferences == 0 {
		b.WriteString("✅ All links valid")
	} else {
		b.WriteString("❌ Validation failed:")
		if r.Summary.BrokenLinks > 0 {
			fmt.Fprintf(&b, " %d broken links", r.Summary.BrokenLinks)
		}
		if r.Summary.InvalidReferences > 0 {
			fmt.Fprintf(&b, " %d invalid references", r.Summary.InvalidReferences)
		}
	}
	if r.Summary.ArticlesWithWarnings > 0 {
		fmt.Fprintf(&b, " (%d warnings)", r.Summary.ArticlesWithWarnings)
	}
	return b.String()
}

// WriteFiles persists all four representations into dir, creating it when
// missing. Each artifact is independently regenerable from the report value.
func WriteFiles(r *validate.Report, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("report: create output dir: %w", err)
	}

	jsonBody, err := FormatJSON(r)
	if err != nil {
		return err
	}

	artifacts := map[string]string{
		JSONFile:     jsonBody,
		ConsoleFile:  FormatConsole(r),
		MarkdownFile: FormatMarkdown(r),
		SummaryFile:  FormatCISummary(r),
	}
	for name, body := range artifacts {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			return fmt.Errorf("report: write %s: %w", path, err)
		}
	}
	return nil
}

// rankProblematic returns up to topArticles slugs with findings, ordered by
// descending error count, then slug for stable output.
func rankProblematic(r *validate.Report) []string {
	var slugs []string
	for slug, stats := range r.ArticleStats {
		if stats.HasErrors || stats.HasWarnings {
			slugs = append(slugs, slug)
		}
	}
	sort.Slice(slugs, func(i, j int) bool {
		a := r.ArticleStats[slugs[i]]
		b := r.ArticleStats[slugs[j]]
		ai := a.BrokenOutbound + a.InvalidRelated
		bi := b.BrokenOutbound + b.InvalidRelated
		if ai != bi {
			return ai > bi
		}
		return slugs[i] < slugs[j]
	})
	if len(slugs) > topArticles {
		slugs = slugs[:topArticles]
	}
	return slugs
}
