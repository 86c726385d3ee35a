package cmd

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/ziadkadry99/doc-web/internal/config"
	"github.com/ziadkadry99/doc-web/internal/fetch"
	"github.com/ziadkadry99/doc-web/internal/highlight"
	"github.com/ziadkadry99/doc-web/internal/logging"
	"github.com/ziadkadry99/doc-web/internal/markdown"
	"github.com/ziadkadry99/doc-web/internal/viewer"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `docweb init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// newLogger builds the zap logger; --verbose forces debug level.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	return logging.New(level)
}

// newFetcher reads the docs from base_url when set, else from docs_dir.
func newFetcher(cfg *config.Config) fetch.Fetcher {
	if cfg.BaseURL != "" {
		return fetch.NewHTTPFetcher(cfg.BaseURL)
	}
	return fetch.NewDirFetcher(os.DirFS(cfg.DocsDir))
}

func newRenderer(cfg *config.Config) *markdown.Renderer {
	var opts []markdown.Option
	if cfg.Render.Sanitize {
		opts = append(opts, markdown.WithSanitize())
	}
	return markdown.New(opts...)
}

// viewerSetup derives the viewer settings and shared collaborators.
func viewerSetup(cfg *config.Config, logger *zap.Logger) (viewer.Config, viewer.Deps) {
	vcfg := viewer.Config{
		SiteTitle:     cfg.Title,
		Index:         cfg.Index,
		SummaryMD:     cfg.SummaryMD,
		OpenNewWindow: cfg.OpenNewWindow,
	}
	deps := viewer.Deps{
		Fetcher:     newFetcher(cfg),
		Renderer:    newRenderer(cfg),
		Highlighter: highlight.New(cfg.Render.HighlightStyle),
		Logger:      logger,
	}
	return vcfg, deps
}
