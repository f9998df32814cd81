// Package metadata parses and validates article frontmatter.
package metadata

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/ehwaz/internal/models"
)

// Default returns the metadata applied when an article carries no
// frontmatter, and the base onto which a present block is decoded.
func Default() models.ArticleMetadata {
	return models.ArticleMetadata{
		Title:      "Untitled",
		Importance: 3,
	}
}

// Parse splits raw article content into metadata and body. A missing
// frontmatter block is not an error: defaults are returned together with the
// unchanged content. Malformed data inside a present block is a hard
// failure and is propagated, never defaulted.
func Parse(content []byte) (models.ArticleMetadata, string, error) {
	meta := Default()
	body, err := frontmatter.Parse(bytes.NewReader(content), &meta)
	if err != nil {
		return models.ArticleMetadata{}, "", fmt.Errorf("metadata: parse frontmatter: %w", err)
	}
	return meta, string(body), nil
}

// Validate enforces the metadata invariants: importance within [1,5], a
// non-empty trimmed title, and parseable RFC3339 timestamps when present.
// Each violation yields its own human-readable reason.
func Validate(meta models.ArticleMetadata) error {
	return validation.ValidateStruct(&meta,
		validation.Field(&meta.Title,
			validation.By(nonBlankRule("title"))),
		validation.Field(&meta.Importance,
			validation.By(importanceRule)),
		validation.Field(&meta.CreatedAt,
			validation.By(timestampRule("created_at"))),
		validation.Field(&meta.UpdatedAt,
			validation.By(timestampRule("updated_at"))),
	)
}

// importanceRule enforces the closed [1,5] range. Ozzo's threshold rules
// skip zero values, which would let an explicit importance of 0 through.
func importanceRule(value interface{}) error {
	n, _ := value.(int)
	if n < 1 || n > 5 {
		return fmt.Errorf("importance must be between 1 and 5, got %d", n)
	}
	return nil
}

// nonBlankRule rejects values that are empty after trimming.
func nonBlankRule(field string) validation.RuleFunc {
	return func(value interface{}) error {
		s, _ := value.(string)
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s cannot be empty", field)
		}
		return nil
	}
}

// timestampRule validates an optional RFC3339 timestamp field.
func timestampRule(field string) validation.RuleFunc {
	return func(value interface{}) error {
		s, _ := value.(string)
		if s == "" {
			return nil
		}
		if _, err := time.Parse(time.RFC3339, s); err != nil {
			return fmt.Errorf("%s is not a valid RFC3339 datetime", field)
		}
		return nil
	}
}
