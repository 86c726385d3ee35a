package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ziadkadry99/doc-web/internal/server"
	"github.com/ziadkadry99/doc-web/internal/session"
	"github.com/ziadkadry99/doc-web/internal/watch"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the documentation site",
	Long: `Starts the docweb HTTP server: the site shell, the raw markdown under /docs,
and one websocket session per open browser tab. With --watch, every open tab
reloads its sidebar and page when a file under docs_dir changes.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Int("port", 0, "port to listen on (overrides server.port)")
	serveCmd.Flags().Bool("watch", false, "reload open pages when docs change")
	serveCmd.Flags().Bool("open", false, "open browser automatically")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port, _ = cmd.Flags().GetInt("port")
	}
	if w, _ := cmd.Flags().GetBool("watch"); w {
		cfg.Server.Watch = true
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer logger.Sync()

	vcfg, deps := viewerSetup(cfg, logger)
	hub := session.NewHub()
	handler := session.NewHandler(hub, vcfg, deps, session.ScrollSettings{
		Interval:         cfg.ScrollInterval(),
		BackTopThreshold: cfg.Scroll.BackTopThreshold,
	}, logger)

	// Remote docs are fetched from base_url; only local docs are served here.
	docsDir := cfg.DocsDir
	if cfg.BaseURL != "" {
		docsDir = ""
	}

	srv := server.New(server.Config{
		Port:     cfg.Server.Port,
		DocsDir:  docsDir,
		AllowAll: cfg.Server.AllowAllOrigins,
		Site: server.Site{
			Title:       cfg.Title,
			Keywords:    cfg.Keywords,
			Description: cfg.Description,
			GitHub:      cfg.GitHub,
		},
	}, hub, handler, deps.Highlighter, logger)

	// Graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Server.Watch {
		if docsDir == "" {
			fmt.Fprintln(os.Stderr, "Warning: --watch needs local docs; ignored because base_url is set")
		} else {
			w := watch.New(docsDir, func() {
				n := hub.RefreshAll()
				logger.Info("docs changed", zap.Int("sessions_refreshed", n))
			}, logger)
			go func() {
				if err := w.Run(ctx); err != nil {
					logger.Error("docs watcher stopped", zap.Error(err))
				}
			}()
		}
	}

	go func() {
		<-ctx.Done()
		fmt.Fprintln(os.Stderr, "\nShutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	url := fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
	if open, _ := cmd.Flags().GetBool("open"); open {
		go openBrowser(url)
	}

	fmt.Fprintf(os.Stderr, "docweb %s serving %q at %s\n", Version, cfg.Title, url)
	if docsDir != "" {
		fmt.Fprintf(os.Stderr, "  Docs: %s\n", docsDir)
	} else {
		fmt.Fprintf(os.Stderr, "  Docs: %s\n", cfg.BaseURL)
	}
	fmt.Fprintln(os.Stderr, "Press Ctrl+C to stop.")

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
