package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/theimaginaryfoundation/bluum-journal/journal"
	"github.com/theimaginaryfoundation/bluum-journal/journal/config"
	"github.com/theimaginaryfoundation/bluum-journal/journal/provider"
)

func main() {
	cfg, explicit, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}
	file, err := config.Load(cfg.ConfigPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}
	applyFile(&cfg, file, explicit)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}
	if cfg.APIKey == "" {
		fmt.Fprintln(os.Stderr, "missing OPENAI_API_KEY or OPENROUTER_API_KEY (or pass -api-key)")
		os.Exit(2)
	}
	catalog, err := journal.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}

	level, _ := config.ParseLogLevel(cfg.LogLevel)
	logger := config.NewLogger(os.Stderr, level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := provider.NewClient(provider.Options{APIKey: cfg.APIKey, BaseURL: cfg.BaseURL})
	s := &server{
		classifier: journal.Dispatcher{
			Provider: provider.OpenAI{
				Client:          client,
				Model:           cfg.Model,
				MaxOutputTokens: cfg.MaxOutputTokens,
			},
			Timeout: cfg.Timeout,
			Logger:  logger,
			Screen:  cfg.Screen,
		},
		catalog:      catalog,
		logger:       logger,
		maxBodyBytes: cfg.MaxBodyBytes,
		maxHistory:   cfg.MaxHistory,
	}

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Listen, "model", cfg.Model)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Timeout+5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", "error", err)
			os.Exit(1)
		}
		logger.Info("stopped")
	}
}

func parseFlags(fs *flag.FlagSet, args []string) (Config, map[string]bool, error) {
	cfg := defaultConfig()
	fs.SetOutput(os.Stderr)

	fs.StringVar(&cfg.ConfigPath, "config", "", "Optional YAML settings file (flags override it)")
	fs.StringVar(&cfg.Listen, "listen", cfg.Listen, "HTTP listen address")
	fs.StringVar(&cfg.CatalogPath, "catalog", "", "Mood catalog JSON (default: built-in prompts)")
	fs.StringVar(&cfg.Model, "model", cfg.Model, "Model name at the provider")
	fs.StringVar(&cfg.BaseURL, "base-url", "", "OpenAI-compatible base URL (e.g. https://openrouter.ai/api/v1/)")
	fs.StringVar(&cfg.APIKey, "api-key", "", "API key (overrides OPENAI_API_KEY / OPENROUTER_API_KEY)")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Per-request provider timeout")
	fs.Int64Var(&cfg.MaxOutputTokens, "max-output-tokens", 0, "Provider max output tokens (0 = default)")
	fs.BoolVar(&cfg.Screen, "screen", cfg.Screen, "Forward a keyword screening hint to the provider")
	fs.Int64Var(&cfg.MaxBodyBytes, "max-body-bytes", cfg.MaxBodyBytes, "Largest accepted request body")
	fs.IntVar(&cfg.MaxHistory, "max-history", cfg.MaxHistory, "Most reflections accepted per request (0 = unlimited)")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "trace, debug, info, warn or error")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage:\n  %s [flags]\n\nFlags:\n", filepath.Base(os.Args[0]))
		fs.PrintDefaults()
		fmt.Fprintln(fs.Output(), "\nExample:")
		fmt.Fprintln(fs.Output(), "  go run ./cmd/journal-server -listen :8080 -base-url https://openrouter.ai/api/v1/")
	}

	if err := fs.Parse(args); err != nil {
		return Config{}, nil, err
	}
	explicit := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { explicit[f.Name] = true })
	return cfg, explicit, nil
}
