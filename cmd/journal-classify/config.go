package main

import (
	"errors"
	"time"

	"github.com/theimaginaryfoundation/bluum-journal/journal"
	"github.com/theimaginaryfoundation/bluum-journal/journal/config"
	"github.com/theimaginaryfoundation/bluum-journal/journal/provider"
)

type Config struct {
	ConfigPath string

	// Single-request mode.
	Prompt      string
	Entry       string
	HistoryPath string
	Mood        string
	MoodIndex   int
	CatalogPath string

	// Batch mode.
	InPath      string
	OutDir      string
	Concurrency int
	Resume      bool
	Overwrite   bool

	Model           string
	BaseURL         string
	APIKey          string
	Timeout         time.Duration
	MaxOutputTokens int64
	Retries         int
	Screen          bool

	Pretty   bool
	LogLevel string
}

func (c Config) batch() bool { return c.InPath != "" }

func (c Config) Validate() error {
	if c.InPath == "" && c.Prompt == "" && c.Mood == "" {
		return errors.New("missing -in, -prompt or -mood")
	}
	if c.InPath != "" && (c.Prompt != "" || c.Mood != "" || c.Entry != "" || c.HistoryPath != "") {
		return errors.New("-in cannot be combined with -prompt, -mood, -entry or -history")
	}
	if c.Prompt != "" && c.Mood != "" {
		return errors.New("use either -prompt or -mood, not both")
	}
	if c.MoodIndex < 0 {
		return errors.New("mood-index must be >= 0")
	}
	if c.Model == "" {
		return errors.New("missing -model")
	}
	if c.Timeout <= 0 {
		return errors.New("timeout must be > 0")
	}
	if c.Retries < 0 {
		return errors.New("retries must be >= 0")
	}
	if c.Concurrency < 0 {
		return errors.New("concurrency must be >= 0")
	}
	if c.MaxOutputTokens < 0 {
		return errors.New("max-output-tokens must be >= 0")
	}
	if _, err := config.ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

func defaultConfig() Config {
	return Config{
		Model:       provider.DefaultModel,
		Timeout:     journal.DefaultTimeout,
		Concurrency: 4,
		Resume:      true,
		Screen:      true,
		LogLevel:    "info",
	}
}

// applyFile fills every setting whose flag was not given explicitly.
func applyFile(cfg *Config, f config.File, explicit map[string]bool) {
	if !explicit["model"] && f.Provider.Model != "" {
		cfg.Model = f.Provider.Model
	}
	if !explicit["base-url"] && f.Provider.BaseURL != "" {
		cfg.BaseURL = f.Provider.BaseURL
	}
	if !explicit["timeout"] && f.Provider.Timeout > 0 {
		cfg.Timeout = time.Duration(f.Provider.Timeout)
	}
	if !explicit["max-output-tokens"] && f.Provider.MaxOutputTokens > 0 {
		cfg.MaxOutputTokens = f.Provider.MaxOutputTokens
	}
	if !explicit["retries"] && f.Retries > 0 {
		cfg.Retries = f.Retries
	}
	if !explicit["screen"] && f.Screen != nil {
		cfg.Screen = *f.Screen
	}
	if !explicit["catalog"] && f.PromptCatalog != "" {
		cfg.CatalogPath = f.PromptCatalog
	}
	if !explicit["log-level"] && f.LogLevel != "" {
		cfg.LogLevel = f.LogLevel
	}
	cfg.APIKey = f.ResolveAPIKey(cfg.APIKey)
}
