package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v2"

	"github.com/ladlekit/ladle/internal/config"
	"github.com/ladlekit/ladle/internal/errors"
	"github.com/ladlekit/ladle/internal/extract"
	"github.com/ladlekit/ladle/internal/history"
	"github.com/ladlekit/ladle/internal/llm"
	"github.com/ladlekit/ladle/internal/pipeline"
	"github.com/ladlekit/ladle/internal/source"
	"github.com/ladlekit/ladle/internal/vault"
	"github.com/ladlekit/ladle/internal/web"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(cfg *config.Config, store *history.Store) *cli.App {
	app := &cli.App{
		Name:    "ladle",
		Usage:   "Recipe ingestion for your document vault",
		Version: Version,
		Commands: []*cli.Command{
			ingestCmd(cfg, store),
			historyCmd(store),
			serveCmd(cfg, store),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// ingestCmd creates the ingest command.
func ingestCmd(cfg *config.Config, store *history.Store) *cli.Command {
	return &cli.Command{
		Name:      "ingest",
		Usage:     "Extract a recipe from text or an Instagram URL and save it to the vault",
		ArgsUsage: "[input]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "auto", Usage: "Input kind: text|instagram|auto"},
			&cli.StringFlag{Name: "file", Usage: "Read input from a file instead of an argument or stdin"},
			&cli.StringFlag{Name: "overwrite", Usage: "When target exists: never|if_ingredients_match|always"},
			&cli.BoolFlag{Name: "preview", Aliases: []string{"p"}, Usage: "Render the recipe without writing it"},
			&cli.StringFlag{Name: "vault", Usage: "Vault root directory (overrides config)"},
			&cli.StringFlag{Name: "model", Usage: "Extraction model name (overrides config)"},
			&cli.BoolFlag{Name: "verbose", Usage: "Enable debug logging"},
		},
		Action: func(c *cli.Context) error {
			input, err := readInput(c)
			if err != nil {
				return outputError(err)
			}

			runCfg := applyFlags(cfg, c)
			policy, err := resolvePolicy(c.String("overwrite"), runCfg)
			if err != nil {
				return outputError(err)
			}

			p, err := buildPipelineWithLogger(runCfg, store, newLogger(c.Bool("verbose"), runCfg.LogLevel))
			if err != nil {
				return outputError(err)
			}

			result, err := p.Ingest(c.Context, pipeline.IngestInput{
				Input:     input,
				Format:    source.Format(c.String("format")),
				Overwrite: policy,
				Preview:   c.Bool("preview"),
			})
			if err != nil {
				return outputError(err)
			}

			if c.Bool("preview") {
				fmt.Print(result.Markdown)
				return nil
			}
			return outputJSON(result)
		},
	}
}

// historyCmd creates the history command.
func historyCmd(store *history.Store) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List recent ingest runs",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: 50, Usage: "Maximum entries to return"},
		},
		Action: func(c *cli.Context) error {
			if store == nil {
				return outputError(errors.NewInvalidRequest("history is not available"))
			}
			entries, err := store.List(c.Context, c.Int("limit"))
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			if entries == nil {
				entries = []history.Entry{}
			}
			return outputJSON(map[string]any{"entries": entries})
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(cfg *config.Config, store *history.Store) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Aliases: []string{"b"}, Value: "127.0.0.1", Usage: "Bind address"},
			&cli.IntFlag{Name: "port", Value: 8481, Usage: "Listen port"},
			&cli.StringFlag{Name: "vault", Usage: "Vault root directory (overrides config)"},
			&cli.BoolFlag{Name: "verbose", Usage: "Enable debug logging"},
		},
		Action: func(c *cli.Context) error {
			runCfg := applyFlags(cfg, c)
			logger := newLogger(c.Bool("verbose"), runCfg.LogLevel)

			p, err := buildPipelineWithLogger(runCfg, store, logger)
			if err != nil {
				return outputError(err)
			}

			srv := web.NewServer(p, store, Version, c.String("bind"), c.Int("port"), logger)
			return web.Run(srv, logger)
		},
	}
}

// buildPipeline assembles the full ingest pipeline from config.
func buildPipeline(cfg *config.Config, store *history.Store) (*pipeline.Pipeline, error) {
	return buildPipelineWithLogger(cfg, store, newLogger(false, cfg.LogLevel))
}

func buildPipelineWithLogger(cfg *config.Config, store *history.Store, logger *log.Logger) (*pipeline.Pipeline, error) {
	if cfg.VaultPath == "" {
		return nil, errors.NewInvalidRequest("vault path is not configured; set vault_path in config.json, LADLE_VAULT_PATH, or --vault")
	}

	writer, err := vault.NewWriter(cfg.VaultPath, cfg.RecipesDir, logger)
	if err != nil {
		return nil, err
	}

	client, err := llm.NewOpenAIClient(llm.Config{
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.Model,
		APIKey:  cfg.LLM.APIKey,
		Timeout: time.Duration(cfg.LLM.TimeoutSeconds) * time.Second,
	})
	if err != nil {
		return nil, err
	}

	fetcher := source.NewHTTPCaptionFetcher(source.FetcherConfig{
		MaxAttempts: cfg.Fetch.MaxAttempts,
		Timeout:     time.Duration(cfg.Fetch.TimeoutSeconds) * time.Second,
	}, logger)

	return pipeline.New(extract.New(client, logger), writer, pipeline.Options{
		Fetcher:  fetcher,
		Recorder: recorderOrNil(store),
		Logger:   logger,
	}), nil
}

// applyFlags returns a copy of cfg with command-line overrides applied.
func applyFlags(cfg *config.Config, c *cli.Context) *config.Config {
	out := *cfg
	if v := c.String("vault"); v != "" {
		out.VaultPath = v
	}
	if v := c.String("model"); v != "" {
		out.LLM.Model = v
	}
	return &out
}

// resolvePolicy picks the overwrite policy from the flag, falling back to
// the configured default.
func resolvePolicy(flag string, cfg *config.Config) (vault.OverwritePolicy, error) {
	if flag == "" {
		flag = cfg.OverwritePolicy
	}
	return vault.ParsePolicy(flag)
}

// readInput resolves the ingest input from the positional argument, --file,
// or piped stdin, in that order.
func readInput(c *cli.Context) (string, error) {
	if c.NArg() > 0 {
		return c.Args().First(), nil
	}
	if path := c.String("file"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", errors.NewInvalidRequest(fmt.Sprintf("failed to read input file: %v", err))
		}
		return string(data), nil
	}
	if stdinHasData() {
		return readStdin()
	}
	return "", errors.NewInvalidRequest("no input: pass text as an argument, use --file, or pipe via stdin")
}

func recorderOrNil(store *history.Store) pipeline.Recorder {
	if store == nil {
		return nil
	}
	return store
}

// newLogger builds the application logger writing to stderr so stdout
// stays clean for JSON and markdown output.
func newLogger(verbose bool, level string) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
	})
	if verbose {
		logger.SetLevel(log.DebugLevel)
		return logger
	}
	if parsed, err := log.ParseLevel(level); err == nil {
		logger.SetLevel(parsed)
	}
	return logger
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if lerr, ok := err.(*errors.LadleError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", lerr.Code, lerr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all content from stdin.
func readStdin() (string, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
