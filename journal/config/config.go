// Package config loads the optional YAML settings file shared by the
// bluum-journal binaries. Command-line flags always take precedence.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// File is the on-disk settings document.
//
//	provider:
//	  base_url: https://openrouter.ai/api/v1/
//	  model: gpt-5-mini
//	  api_key_env: OPENROUTER_API_KEY
//	  timeout: 45s
//	  max_output_tokens: 600
//	retries: 2
//	screen: true
//	prompt_catalog: ./prompts.json
//	log_level: info
type File struct {
	Provider      ProviderConfig `yaml:"provider"`
	Retries       int            `yaml:"retries"`
	Screen        *bool          `yaml:"screen"`
	PromptCatalog string         `yaml:"prompt_catalog"`
	LogLevel      string         `yaml:"log_level"`
	Listen        string         `yaml:"listen"`
}

// ProviderConfig describes the text-generation endpoint.
type ProviderConfig struct {
	BaseURL         string   `yaml:"base_url"`
	Model           string   `yaml:"model"`
	APIKey          string   `yaml:"api_key"`
	APIKeyEnv       string   `yaml:"api_key_env"`
	Timeout         Duration `yaml:"timeout"`
	MaxOutputTokens int64    `yaml:"max_output_tokens"`
}

// Duration accepts Go duration strings ("45s", "1m30s") in YAML.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("duration: %w", err)
	}
	if strings.TrimSpace(s) == "" {
		*d = 0
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Load reads and validates path. An empty path returns a zero File.
func Load(path string) (File, error) {
	var f File
	if path == "" {
		return f, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, &f); err != nil {
		return File{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := f.Validate(); err != nil {
		return File{}, fmt.Errorf("config %s: %w", path, err)
	}
	return f, nil
}

func (f File) Validate() error {
	if f.Retries < 0 {
		return fmt.Errorf("retries must be >= 0")
	}
	if f.Provider.Timeout < 0 {
		return fmt.Errorf("provider.timeout must be >= 0")
	}
	if f.Provider.MaxOutputTokens < 0 {
		return fmt.Errorf("provider.max_output_tokens must be >= 0")
	}
	if _, err := ParseLogLevel(f.LogLevel); err != nil {
		return err
	}
	return nil
}

// ResolveAPIKey picks the first non-empty key from: explicit, the config file,
// the configured env var, OPENAI_API_KEY, OPENROUTER_API_KEY.
func (f File) ResolveAPIKey(explicit string) string {
	candidates := []string{explicit, f.Provider.APIKey}
	if f.Provider.APIKeyEnv != "" {
		candidates = append(candidates, os.Getenv(f.Provider.APIKeyEnv))
	}
	candidates = append(candidates, os.Getenv("OPENAI_API_KEY"), os.Getenv("OPENROUTER_API_KEY"))
	for _, k := range candidates {
		if k = strings.TrimSpace(k); k != "" {
			return k
		}
	}
	return ""
}
