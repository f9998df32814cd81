package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/ehwaz/internal"
	"github.com/starford/ehwaz/internal/corpus"
	"github.com/starford/ehwaz/internal/graph"
	"github.com/starford/ehwaz/internal/index"
	"github.com/starford/ehwaz/internal/mcpserver"
	"github.com/starford/ehwaz/internal/report"
	"github.com/starford/ehwaz/internal/storage"
	"github.com/starford/ehwaz/internal/validate"
	pkgconfig "github.com/starford/ehwaz/pkg/config"
)

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func newProcessor(articlesDir string, logger *slog.Logger) (*corpus.Processor, storage.Provider, error) {
	store, err := storage.NewFS(articlesDir)
	if err != nil {
		return nil, nil, fmt.Errorf("open articles dir: %w", err)
	}
	return corpus.NewProcessor(store, logger), store, nil
}

func runProcess(ctx context.Context, cmd *cli.Command) error {
	logger := newLogger(cmd.Bool("verbose"))

	proc, _, err := newProcessor(cmd.String("articles-dir"), logger)
	if err != nil {
		return err
	}

	articles, err := proc.ProcessAll(ctx)
	if err != nil {
		return fmt.Errorf("process articles: %w", err)
	}

	outDir := cmd.String("output-dir")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	dataset := corpus.Export(articles)
	if err := writeJSONFile(filepath.Join(outDir, "articles.json"), dataset); err != nil {
		return err
	}

	g := graph.Build(articles)
	if err := writeJSONFile(filepath.Join(outDir, "link-graph.json"), g); err != nil {
		return err
	}

	logger.Info("dataset written",
		slog.Int("articles", dataset.TotalCount),
		slog.String("output", outDir))
	return nil
}

func runValidate(ctx context.Context, cmd *cli.Command) error {
	logger := newLogger(cmd.Bool("verbose"))

	proc, _, err := newProcessor(cmd.String("articles-dir"), logger)
	if err != nil {
		return err
	}

	articles, err := proc.ProcessAll(ctx)
	if err != nil {
		return fmt.Errorf("process articles: %w", err)
	}

	rep := validate.New(articles).Run()

	switch format := cmd.String("format"); format {
	case "json":
		out, err := report.FormatJSON(rep)
		if err != nil {
			return err
		}
		fmt.Println(out)
	case "markdown":
		fmt.Println(report.FormatMarkdown(rep))
	case "ci":
		fmt.Println(report.FormatCISummary(rep))
	case "console":
		fmt.Println(report.FormatConsole(rep))
	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	if outDir := cmd.String("output-dir"); outDir != "" {
		if err := report.WriteFiles(rep, outDir); err != nil {
			return fmt.Errorf("write report files: %w", err)
		}
	}

	if cmd.Bool("fail-on-error") && rep.Summary.BrokenLinks+rep.Summary.InvalidReferences > 0 {
		return cli.Exit("", 1)
	}
	return nil
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.Load(cmd.String("config"), cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	logger := newLogger(cmd.Bool("verbose"))

	proc, store, err := newProcessor(cmd.String("articles-dir"), logger)
	if err != nil {
		return err
	}

	db, err := index.Open(cmd.String("db"))
	if err != nil {
		return fmt.Errorf("open index: %w", err)
	}
	defer db.Close()

	if err := index.Sync(db, store, proc, logger); err != nil {
		return fmt.Errorf("sync index: %w", err)
	}

	return mcpserver.New(store, db, proc).ServeStdio()
}

func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

func main() {
	articlesFlag := &cli.StringFlag{
		Name:    "articles-dir",
		Aliases: []string{"a"},
		Usage:   "Directory containing markdown articles",
		Value:   "./articles",
		Sources: cli.EnvVars("EHWAZ_ARTICLES_DIR"),
	}
	verboseFlag := &cli.BoolFlag{
		Name:    "verbose",
		Aliases: []string{"v"},
		Usage:   "Enable debug logging",
	}

	cmd := &cli.Command{
		Name:  "ehwaz",
		Usage: "Link integrity and graph tooling for markdown knowledge bases",
		Commands: []*cli.Command{
			{
				Name:   "process",
				Usage:  "Process the corpus and export the article dataset and link graph",
				Action: runProcess,
				Flags: []cli.Flag{
					articlesFlag,
					&cli.StringFlag{
						Name:    "output-dir",
						Aliases: []string{"o"},
						Usage:   "Directory to write the generated dataset into",
						Value:   "./public/data",
						Sources: cli.EnvVars("EHWAZ_OUTPUT_DIR"),
					},
					verboseFlag,
				},
			},
			{
				Name:   "validate",
				Usage:  "Validate internal links and related article references",
				Action: runValidate,
				Flags: []cli.Flag{
					articlesFlag,
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Report format: console, json, markdown, or ci",
						Value:   "console",
					},
					&cli.StringFlag{
						Name:    "output-dir",
						Aliases: []string{"o"},
						Usage:   "Also write report artifacts into this directory",
					},
					&cli.BoolFlag{
						Name:  "fail-on-error",
						Usage: "Exit non-zero when broken links or invalid references exist",
					},
					verboseFlag,
				},
			},
			{
				Name:   "serve",
				Usage:  "Run the HTTP API server with live corpus watching",
				Action: runServe,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "config",
						Aliases:     []string{"c"},
						Usage:       "Path to config file",
						DefaultText: "config/config.yaml",
						Value:       "config/config.yaml",
						Sources:     cli.EnvVars("APP_CONFIG_FILE"),
					},
				},
			},
			{
				Name:   "mcp",
				Usage:  "Run the MCP server on stdio",
				Action: runMCP,
				Flags: []cli.Flag{
					articlesFlag,
					&cli.StringFlag{
						Name:    "db",
						Usage:   "Path to the SQLite article index",
						Value:   "./ehwaz.db",
						Sources: cli.EnvVars("EHWAZ_DB_PATH"),
					},
					verboseFlag,
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
