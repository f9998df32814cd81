// Package models defines the domain types for Ehwaz.
package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// LinkKind classifies an extracted reference. The set is closed: every
// consumer switches exhaustively over these three values.
type LinkKind int

const (
	// WikiLink is a [[target]] or [[target|display]] reference whose target
	// is slugified before resolution.
	WikiLink LinkKind = iota
	// MarkdownLink is a [display](target) reference to another article; the
	// target is used verbatim.
	MarkdownLink
	// ExternalLink is a [display](target) reference whose target carries an
	// external scheme (http, mailto:, //). Never resolved against the corpus.
	ExternalLink
)

// String returns the wire name of the kind.
func (k LinkKind) String() string {
	switch k {
	case WikiLink:
		return "wiki"
	case MarkdownLink:
		return "markdown"
	case ExternalLink:
		return "external"
	}
	return fmt.Sprintf("LinkKind(%d)", int(k))
}

// MarshalJSON encodes the kind as its wire name.
func (k LinkKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON decodes a wire name back into a LinkKind.
func (k *LinkKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "wiki":
		*k = WikiLink
	case "markdown":
		*k = MarkdownLink
	case "external":
		*k = ExternalLink
	default:
		return fmt.Errorf("models: unknown link kind %q", s)
	}
	return nil
}

// Internal reports whether the kind resolves against the corpus.
func (k LinkKind) Internal() bool {
	switch k {
	case WikiLink, MarkdownLink:
		return true
	case ExternalLink:
		return false
	}
	return false
}

// ExtractedLink is one reference found in an article body. Position is the
// byte offset of the match start in the body; links with identical text at
// different positions are distinct (duplicates feed graph occurrence counts).
type ExtractedLink struct {
	Target       string   `json:"target"`
	Kind         LinkKind `json:"kind"`
	OriginalText string   `json:"original_text"`
	DisplayText  string   `json:"display_text,omitempty"`
	Position     int      `json:"position"`
	Context      string   `json:"context,omitempty"`
}

// ArticleMetadata holds the structured frontmatter fields of an article.
// Optional fields default as documented; violations of the importance range
// or an empty title are validation failures, not parse failures.
type ArticleMetadata struct {
	Title           string   `yaml:"title" json:"title"`
	HomeDisplay     bool     `yaml:"home_display" json:"home_display"`
	Category        string   `yaml:"category" json:"category,omitempty"`
	Importance      int      `yaml:"importance" json:"importance"`
	RelatedArticles []string `yaml:"related_articles" json:"related_articles"`
	Tags            []string `yaml:"tags" json:"tags"`
	CreatedAt       string   `yaml:"created_at" json:"created_at,omitempty"`
	UpdatedAt       string   `yaml:"updated_at" json:"updated_at,omitempty"`
	AuthorImage     string   `yaml:"author_image" json:"author_image,omitempty"`
}

// Article is the immutable record produced for one source file. Inbound
// links are never stored here; they are derived on demand so there is a
// single source of truth.
type Article struct {
	Slug        string          `json:"slug"`
	Title       string          `json:"title"`
	Metadata    ArticleMetadata `json:"metadata"`
	Body        string          `json:"-"`
	Path        string          `json:"file_path"`
	Links       []ExtractedLink `json:"outbound_links"`
	ProcessedAt time.Time       `json:"processed_at"`
}

// InternalLinks returns the outbound links that resolve against the corpus,
// in source order.
func (a *Article) InternalLinks() []ExtractedLink {
	var out []ExtractedLink
	for _, l := range a.Links {
		if l.Kind.Internal() {
			out = append(out, l)
		}
	}
	return out
}
