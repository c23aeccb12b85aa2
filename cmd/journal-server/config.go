package main

import (
	"errors"
	"time"

	"github.com/theimaginaryfoundation/bluum-journal/journal"
	"github.com/theimaginaryfoundation/bluum-journal/journal/config"
	"github.com/theimaginaryfoundation/bluum-journal/journal/provider"
)

type Config struct {
	ConfigPath      string
	Listen          string
	CatalogPath     string
	Model           string
	BaseURL         string
	APIKey          string
	Timeout         time.Duration
	MaxOutputTokens int64
	Screen          bool
	MaxBodyBytes    int64
	MaxHistory      int
	LogLevel        string
}

func (c Config) Validate() error {
	if c.Listen == "" {
		return errors.New("missing -listen")
	}
	if c.Model == "" {
		return errors.New("missing -model")
	}
	if c.Timeout <= 0 {
		return errors.New("timeout must be > 0")
	}
	if c.MaxBodyBytes <= 0 {
		return errors.New("max-body-bytes must be > 0")
	}
	if c.MaxHistory < 0 {
		return errors.New("max-history must be >= 0")
	}
	if _, err := config.ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

func defaultConfig() Config {
	return Config{
		Listen:       "127.0.0.1:8080",
		Model:        provider.DefaultModel,
		Timeout:      journal.DefaultTimeout,
		Screen:       true,
		MaxBodyBytes: 256 << 10,
		MaxHistory:   50,
		LogLevel:     "info",
	}
}

func applyFile(cfg *Config, f config.File, explicit map[string]bool) {
	if !explicit["listen"] && f.Listen != "" {
		cfg.Listen = f.Listen
	}
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
