// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Ehwaz tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/ehwaz/internal/corpus"
	"github.com/starford/ehwaz/internal/graph"
	"github.com/starford/ehwaz/internal/index"
	"github.com/starford/ehwaz/internal/report"
	"github.com/starford/ehwaz/internal/storage"
	"github.com/starford/ehwaz/internal/validate"
)

// Server wraps the MCP server with Ehwaz tools. All tools are read-only:
// the corpus is never mutated through MCP.
type Server struct {
	mcp   *server.MCPServer
	store storage.Provider
	db    index.ArticleIndex
	proc  *corpus.Processor
}

// New creates a new MCP server with all Ehwaz tools registered.
func New(store storage.Provider, db index.ArticleIndex, proc *corpus.Processor) *Server {
	s := &Server{store: store, db: db, proc: proc}

	s.mcp = server.NewMCPServer(
		"Ehwaz",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_articles",
		mcp.WithDescription("Full-text search through article bodies and titles."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchArticles)

	s.mcp.AddTool(mcp.NewTool("read_article",
		mcp.WithDescription("Read the full content of a markdown article by slug."),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Article slug (e.g. graph-theory)")),
	), s.readArticle)

	s.mcp.AddTool(mcp.NewTool("list_articles",
		mcp.WithDescription("List the slugs of all articles in the corpus."),
	), s.listArticles)

	s.mcp.AddTool(mcp.NewTool("get_backlinks",
		mcp.WithDescription("Find all articles that link to the specified slug."),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Slug to find backlinks for")),
	), s.getBacklinks)

	s.mcp.AddTool(mcp.NewTool("validate_links",
		mcp.WithDescription("Validate all internal links and related_articles references "+
			"across the corpus and return the condensed report."),
	), s.validateLinks)

	s.mcp.AddTool(mcp.NewTool("get_link_graph",
		mcp.WithDescription("Build and return the article link graph with connection "+
			"counts and bidirectional pairs."),
	), s.getLinkGraph)

	s.mcp.AddTool(mcp.NewTool("get_frontmatter_contract",
		mcp.WithDescription("Returns the canonical Ehwaz article frontmatter contract. "+
			"Call this before authoring articles to ensure correct structure."),
	), s.getFrontmatterContract)

	// Resource: frontmatter contract.
	s.mcp.AddResource(
		mcp.NewResource("ehwaz://article-format", "Article Format Contract",
			mcp.WithResourceDescription("Canonical markdown article format the corpus follows."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readArticleFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) searchArticles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.db.Search(query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readArticle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slug, err := req.RequireString("slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	row, err := s.db.GetArticle(slug)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if row == nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", slug)), nil
	}
	data, err := s.store.Read(row.Path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", slug)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) listArticles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rows, _, err := s.db.ListArticles(0, 0, "", "")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var slugs []string
	for _, r := range rows {
		slugs = append(slugs, r.Slug)
	}
	return mcp.NewToolResultText(strings.Join(slugs, "\n")), nil
}

func (s *Server) getBacklinks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slug, err := req.RequireString("slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	bl, err := s.db.Backlinks(slug)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(bl) == 0 {
		return mcp.NewToolResultText("no backlinks found"), nil
	}
	return mcp.NewToolResultText(strings.Join(bl, "\n")), nil
}

func (s *Server) validateLinks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	articles, err := s.proc.ProcessAll(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rep := validate.New(articles).Run()
	summary := report.FormatCISummary(rep)
	body, err := report.FormatJSON(rep)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(summary + "\n\n" + body), nil
}

func (s *Server) getLinkGraph(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	articles, err := s.proc.ProcessAll(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	g := graph.Build(articles)
	out, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getFrontmatterContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(ArticleFormatContract), nil
}

func (s *Server) readArticleFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "ehwaz://article-format",
			MIMEType: "text/markdown",
			Text:     ArticleFormatContract,
		},
	}, nil
}
