package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/theimaginaryfoundation/bluum-journal/journal"
	"github.com/theimaginaryfoundation/bluum-journal/journal/config"
	"github.com/theimaginaryfoundation/bluum-journal/journal/fileutils"
	"github.com/theimaginaryfoundation/bluum-journal/journal/provider"
)

const (
	resultSuffix = ".result.json"
	errorSuffix  = ".error.json"
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

	level, _ := config.ParseLogLevel(cfg.LogLevel)
	logger := config.NewLogger(os.Stderr, level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := provider.NewClient(provider.Options{APIKey: cfg.APIKey, BaseURL: cfg.BaseURL})
	c := classifier{
		dispatcher: journal.Dispatcher{
			Provider: provider.OpenAI{
				Client:          client,
				Model:           cfg.Model,
				MaxOutputTokens: cfg.MaxOutputTokens,
			},
			Timeout: cfg.Timeout,
			Logger:  logger,
			Screen:  cfg.Screen,
		},
		policy: provider.DefaultPolicy(uint64(cfg.Retries)),
	}
	c.policy.Logger = logger

	if !cfg.batch() {
		req, err := buildSingleRequest(cfg)
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(2)
		}
		res, err := c.classify(ctx, req)
		if err != nil {
			fmt.Fprintf(os.Stderr, "classify failed (%s): %s\n", journal.ErrorKind(err), err.Error())
			os.Exit(1)
		}
		if err := writeJSON(os.Stdout, res, cfg.Pretty); err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
		return
	}

	inputFiles, err := collectInputFiles(cfg.InPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}
	if len(inputFiles) == 0 {
		fmt.Fprintln(os.Stderr, "no input .json request files found")
		os.Exit(2)
	}

	sum, err := runBatch(ctx, c, inputFiles, cfg, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, "requests=%d classified=%d skipped=%d failed=%d\n", len(inputFiles), sum.classified, sum.skipped, sum.failed)
	if sum.failed > 0 {
		os.Exit(1)
	}
}

func parseFlags(fs *flag.FlagSet, args []string) (Config, map[string]bool, error) {
	cfg := defaultConfig()
	fs.SetOutput(os.Stderr)

	fs.StringVar(&cfg.ConfigPath, "config", "", "Optional YAML settings file (flags override it)")
	fs.StringVar(&cfg.Prompt, "prompt", "", "Current reflection prompt")
	fs.StringVar(&cfg.Entry, "entry", "", "Current journal entry (may be empty)")
	fs.StringVar(&cfg.HistoryPath, "history", "", "JSON file with earlier [{prompt, entry}] reflections, oldest first")
	fs.StringVar(&cfg.Mood, "mood", "", "Pick the prompt from the mood catalog instead of -prompt")
	fs.IntVar(&cfg.MoodIndex, "mood-index", 0, "Which prompt of the mood to use")
	fs.StringVar(&cfg.CatalogPath, "catalog", "", "Mood catalog JSON (default: built-in prompts)")
	fs.StringVar(&cfg.InPath, "in", "", "Request .json file OR directory of request files (batch mode)")
	fs.StringVar(&cfg.OutDir, "out", "", "Directory for result files (default: next to each request)")
	fs.IntVar(&cfg.Concurrency, "concurrency", cfg.Concurrency, "Parallel requests in batch mode")
	fs.BoolVar(&cfg.Resume, "resume", cfg.Resume, "Skip requests that already have a result file")
	fs.BoolVar(&cfg.Overwrite, "overwrite", false, "Re-classify even when a result file exists")
	fs.StringVar(&cfg.Model, "model", cfg.Model, "Model name at the provider")
	fs.StringVar(&cfg.BaseURL, "base-url", "", "OpenAI-compatible base URL (e.g. https://openrouter.ai/api/v1/)")
	fs.StringVar(&cfg.APIKey, "api-key", "", "API key (overrides OPENAI_API_KEY / OPENROUTER_API_KEY)")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Per-request provider timeout")
	fs.Int64Var(&cfg.MaxOutputTokens, "max-output-tokens", 0, "Provider max output tokens (0 = default)")
	fs.IntVar(&cfg.Retries, "retries", 0, "Retries with backoff when the provider is unavailable")
	fs.BoolVar(&cfg.Screen, "screen", cfg.Screen, "Forward a keyword screening hint to the provider")
	fs.BoolVar(&cfg.Pretty, "pretty", false, "Pretty-print JSON output")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "trace, debug, info, warn or error")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage:\n  %s [flags]\n\nFlags:\n", filepath.Base(os.Args[0]))
		fs.PrintDefaults()
		fmt.Fprintln(fs.Output(), "\nExamples:")
		fmt.Fprintln(fs.Output(), `  go run ./cmd/journal-classify -prompt "What made you smile today?" -entry "My dog greeted me at the door!"`)
		fmt.Fprintln(fs.Output(), "  go run ./cmd/journal-classify -in requests/ -concurrency 8 -retries 2")
	}

	if err := fs.Parse(args); err != nil {
		return Config{}, nil, err
	}
	explicit := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	if cfg.InPath != "" {
		cfg.InPath = filepath.Clean(cfg.InPath)
	}
	if cfg.OutDir != "" {
		cfg.OutDir = filepath.Clean(cfg.OutDir)
	}
	return cfg, explicit, nil
}

func buildSingleRequest(cfg Config) (journal.Request, error) {
	prompt := cfg.Prompt
	if cfg.Mood != "" {
		catalog, err := journal.LoadCatalog(cfg.CatalogPath)
		if err != nil {
			return journal.Request{}, err
		}
		prompt, err = catalog.Prompt(cfg.Mood, cfg.MoodIndex)
		if err != nil {
			return journal.Request{}, err
		}
	}

	req := journal.Request{Prompt: prompt, Entry: cfg.Entry}
	if cfg.HistoryPath != "" {
		if err := fileutils.ReadJSONStrict(cfg.HistoryPath, &req.History); err != nil {
			return journal.Request{}, fmt.Errorf("read -history: %w", err)
		}
	}
	return req, nil
}

// classifier adds caller-side retry on top of the single-shot dispatcher.
type classifier struct {
	dispatcher journal.Dispatcher
	policy     provider.Policy
}

func (c classifier) classify(ctx context.Context, req journal.Request) (journal.Result, error) {
	var res journal.Result
	err := provider.Retry(ctx, c.policy, func(ctx context.Context) error {
		var err error
		res, err = c.dispatcher.Classify(ctx, req)
		return err
	})
	if err != nil {
		return journal.Result{}, err
	}
	return res, nil
}

type batchSummary struct {
	classified int64
	skipped    int64
	failed     int64
}

type errorRecord struct {
	Request   string `json:"request"`
	ErrorKind string `json:"error_kind"`
	Error     string `json:"error"`
}

// runBatch classifies every file. A failed request is recorded next to its result
// path and does not stop the others; only an interrupted context or a write
// failure aborts the batch.
func runBatch(ctx context.Context, c classifier, files []string, cfg Config, logger *slog.Logger) (batchSummary, error) {
	var sum batchSummary
	concurrency := cfg.Concurrency
	if concurrency == 0 {
		concurrency = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	start := time.Now()
	var done int64
	for _, inFile := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			resultPath := outputPath(cfg.InPath, cfg.OutDir, inFile, resultSuffix)
			errorPath := outputPath(cfg.InPath, cfg.OutDir, inFile, errorSuffix)
			if cfg.Resume && !cfg.Overwrite && fileutils.FileExists(resultPath) {
				atomic.AddInt64(&sum.skipped, 1)
				return nil
			}

			var req journal.Request
			var err error
			if err = fileutils.ReadJSONStrict(inFile, &req); err != nil {
				err = fmt.Errorf("%w: %w", journal.ErrInvalidInput, err)
			}
			var res journal.Result
			if err == nil {
				res, err = c.classify(gctx, req)
			}

			if err != nil {
				if errors.Is(err, context.Canceled) && gctx.Err() != nil {
					return err
				}
				atomic.AddInt64(&sum.failed, 1)
				logger.Warn("request failed", "file", filepath.Base(inFile), "kind", journal.ErrorKind(err), "error", err)
				rec := errorRecord{Request: inFile, ErrorKind: journal.ErrorKind(err), Error: err.Error()}
				return fileutils.ReplaceOutcome(errorPath, resultPath, rec, cfg.Pretty)
			}

			if err := fileutils.ReplaceOutcome(resultPath, errorPath, res, cfg.Pretty); err != nil {
				return fmt.Errorf("write result for %s: %w", inFile, err)
			}
			atomic.AddInt64(&sum.classified, 1)

			n := atomic.AddInt64(&done, 1)
			fmt.Fprintf(os.Stderr, "progress journal-classify: %d/%d (last=%s category=%s elapsed=%s)\n",
				n, len(files), filepath.Base(inFile), res.Category, time.Since(start).Round(time.Second))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return sum, err
	}
	return sum, nil
}

// outputPath mirrors inFile's location under outDir (or keeps it beside inFile)
// and swaps its extension for suffix.
func outputPath(inRoot, outDir, inFile, suffix string) string {
	name := strings.TrimSuffix(filepath.Base(inFile), filepath.Ext(inFile)) + suffix
	if outDir == "" {
		return filepath.Join(filepath.Dir(inFile), name)
	}
	rel, err := filepath.Rel(inRoot, filepath.Dir(inFile))
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = "."
	}
	return filepath.Join(outDir, rel, name)
}

func isOutputFile(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, resultSuffix) || strings.HasSuffix(lower, errorSuffix)
}

func collectInputFiles(inputPath string) ([]string, error) {
	fi, err := os.Stat(inputPath)
	if err != nil {
		return nil, fmt.Errorf("stat -in: %w", err)
	}

	if !fi.IsDir() {
		if strings.ToLower(filepath.Ext(inputPath)) != ".json" {
			return nil, fmt.Errorf("input file must be .json: %s", inputPath)
		}
		return []string{inputPath}, nil
	}

	var files []string
	err = filepath.WalkDir(inputPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		name := d.Name()
		if strings.ToLower(filepath.Ext(name)) != ".json" || isOutputFile(name) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk input dir: %w", err)
	}
	sort.Strings(files)
	return files, nil
}

func writeJSON(w io.Writer, v any, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
