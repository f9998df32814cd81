package metadata

import (
	"strings"
	"testing"

	"github.com/starford/ehwaz/internal/models"
)

func TestParseFrontmatter(t *testing.T) {
	content := []byte(`---
title: Graph Theory
importance: 4
home_display: true
tags:
  - math
related_articles:
  - topology
---
Body text here.`)

	meta, body, err := Parse(content)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if meta.Title != "Graph Theory" {
		t.Errorf("title = %q", meta.Title)
	}
	if meta.Importance != 4 {
		t.Errorf("importance = %d", meta.Importance)
	}
	if !meta.HomeDisplay {
		t.Error("home_display not set")
	}
	if len(meta.Tags) != 1 || meta.Tags[0] != "math" {
		t.Errorf("tags = %v", meta.Tags)
	}
	if len(meta.RelatedArticles) != 1 || meta.RelatedArticles[0] != "topology" {
		t.Errorf("related = %v", meta.RelatedArticles)
	}
	if strings.TrimSpace(string(body)) != "Body text here." {
		t.Errorf("body = %q", body)
	}
}

func TestParseNoFrontmatter(t *testing.T) {
	meta, body, err := Parse([]byte("just a body"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if meta.Title != "Untitled" {
		t.Errorf("title = %q, want default Untitled", meta.Title)
	}
	if meta.Importance != 3 {
		t.Errorf("importance = %d, want default 3", meta.Importance)
	}
	if body != "just a body" {
		t.Errorf("body = %q", body)
	}
}

func TestParsePartialFrontmatterKeepsDefaults(t *testing.T) {
	meta, _, err := Parse([]byte("---\ntitle: Only Title\n---\nbody"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if meta.Title != "Only Title" {
		t.Errorf("title = %q", meta.Title)
	}
	if meta.Importance != 3 {
		t.Errorf("importance = %d, want default 3 when omitted", meta.Importance)
	}
}

func TestParseMalformed(t *testing.T) {
	_, _, err := Parse([]byte("---\ntitle: [unclosed\n---\nbody"))
	if err == nil {
		t.Fatal("expected error for malformed frontmatter")
	}
}

func TestValidate(t *testing.T) {
	valid := Default()
	valid.CreatedAt = "2024-01-15T10:00:00Z"

	cases := []struct {
		name    string
		mutate  func(*models.ArticleMetadata)
		wantErr bool
	}{
		{"defaults valid", func(m *models.ArticleMetadata) {}, false},
		{"blank title", func(m *models.ArticleMetadata) { m.Title = "   " }, true},
		{"importance too low", func(m *models.ArticleMetadata) { m.Importance = 0 }, true},
		{"importance too high", func(m *models.ArticleMetadata) { m.Importance = 6 }, true},
		{"importance boundary 1", func(m *models.ArticleMetadata) { m.Importance = 1 }, false},
		{"importance boundary 5", func(m *models.ArticleMetadata) { m.Importance = 5 }, false},
		{"bad created_at", func(m *models.ArticleMetadata) { m.CreatedAt = "yesterday" }, true},
		{"bad updated_at", func(m *models.ArticleMetadata) { m.UpdatedAt = "2024-13-99" }, true},
		{"empty timestamps ok", func(m *models.ArticleMetadata) { m.CreatedAt = ""; m.UpdatedAt = "" }, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			m := valid
			c.mutate(&m)
			err := Validate(m)
			if (err != nil) != c.wantErr {
				t.Errorf("Validate = %v, wantErr %v", err, c.wantErr)
			}
		})
	}
}
