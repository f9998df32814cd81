// Package extract scans Markdown bodies for cross-article references.
//
// Two grammars are recognized, matched independently and merged:
//
//	[[target]] / [[target|display]]   wiki-style; target is slugified
//	[display](target)                 markdown-style; target used verbatim,
//	                                  classified External when it carries an
//	                                  external scheme
//
// Unterminated or improperly nested bracket sequences are simply not
// matched. The merged result is ordered by match position so reports are
// reproducible.
package extract

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/starford/ehwaz/internal/models"
	"github.com/starford/ehwaz/internal/slug"
)

var (
	wikiRe     = regexp.MustCompile(`\[\[([^\[\]]+)\]\]`)
	markdownRe = regexp.MustCompile(`\[([^\[\]]+)\]\(([^()]+)\)`)
)

// contextWindow is the rune budget for the snippet stored on each link.
const contextWindow = 100

// Links returns every reference in body, ordered by the byte position of the
// match start. Duplicate links at different positions are all retained; the
// graph builder counts them as separate occurrences.
func Links(body string) []models.ExtractedLink {
	var links []models.ExtractedLink

	for _, m := range wikiRe.FindAllStringSubmatchIndex(body, -1) {
		start, end := m[0], m[1]
		inner := body[m[2]:m[3]]

		target := inner
		display := ""
		if i := strings.Index(inner, "|"); i >= 0 {
			target = inner[:i]
			display = strings.TrimSpace(inner[i+1:])
		}

		links = append(links, models.ExtractedLink{
			Target:       slug.Normalize(target),
			Kind:         models.WikiLink,
			OriginalText: body[start:end],
			DisplayText:  display,
			Position:     start,
			Context:      snippet(body, start),
		})
	}

	for _, m := range markdownRe.FindAllStringSubmatchIndex(body, -1) {
		start, end := m[0], m[1]
		display := body[m[2]:m[3]]
		target := body[m[4]:m[5]]

		kind := models.MarkdownLink
		if isExternal(target) {
			kind = models.ExternalLink
		}

		links = append(links, models.ExtractedLink{
			Target:       target,
			Kind:         kind,
			OriginalText: body[start:end],
			DisplayText:  display,
			Position:     start,
			Context:      snippet(body, start),
		})
	}

	sort.SliceStable(links, func(i, j int) bool {
		return links[i].Position < links[j].Position
	})

	return links
}

// isExternal reports whether target carries a recognized external scheme.
func isExternal(target string) bool {
	return strings.HasPrefix(target, "http") ||
		strings.HasPrefix(target, "mailto:") ||
		strings.HasPrefix(target, "//")
}

// ValidateFormat checks the structural validity of one extracted link. Empty
// internal targets and scheme-less external targets are reported here, not
// by the extractor itself.
func ValidateFormat(link models.ExtractedLink) error {
	switch link.Kind {
	case models.WikiLink, models.MarkdownLink:
		if link.Target == "" {
			return fmt.Errorf("extract: %s link target cannot be empty", link.Kind)
		}
	case models.ExternalLink:
		if !isExternal(link.Target) {
			return fmt.Errorf("extract: external link must start with http, mailto:, or //")
		}
	}
	return nil
}

// snippet returns a cleaned window of text around pos: surrounding runes up
// to contextWindow, joined across lines with single spaces.
func snippet(body string, pos int) string {
	runes := []rune(body)
	center := len([]rune(body[:pos]))

	half := contextWindow / 2
	start := center - half
	if start < 0 {
		start = 0
	}
	end := center + half
	if end > len(runes) {
		end = len(runes)
	}

	window := string(runes[start:end])
	var parts []string
	for _, line := range strings.Split(window, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			parts = append(parts, line)
		}
	}
	joined := strings.Join(parts, " ")
	if r := []rune(joined); len(r) > contextWindow {
		joined = string(r[:contextWindow])
	}
	return joined
}
