package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	p := filepath.Join(dir, "bluum.yaml")
	doc := `provider:
  base_url: https://openrouter.ai/api/v1/
  model: meta-llama/llama-3.2-3b-instruct
  api_key: from-file
  timeout: 30s
  max_output_tokens: 400
retries: 2
screen: false
log_level: debug
listen: ":9090"
`
	if err := os.WriteFile(p, []byte(doc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	f, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if f.Provider.BaseURL != "https://openrouter.ai/api/v1/" || f.Provider.Model != "meta-llama/llama-3.2-3b-instruct" {
		t.Fatalf("provider=%+v", f.Provider)
	}
	if time.Duration(f.Provider.Timeout) != 30*time.Second {
		t.Fatalf("Timeout=%v", time.Duration(f.Provider.Timeout))
	}
	if f.Provider.MaxOutputTokens != 400 || f.Retries != 2 || f.LogLevel != "debug" || f.Listen != ":9090" {
		t.Fatalf("file=%+v", f)
	}
	if f.Screen == nil || *f.Screen {
		t.Fatalf("Screen=%v", f.Screen)
	}
	if got := f.ResolveAPIKey(""); got != "from-file" {
		t.Fatalf("ResolveAPIKey=%q", got)
	}
	if got := f.ResolveAPIKey("explicit"); got != "explicit" {
		t.Fatalf("ResolveAPIKey=%q", got)
	}
}

func TestLoad_EmptyPath(t *testing.T) {
	t.Parallel()

	f, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if f.Provider.Model != "" || f.Screen != nil {
		t.Fatalf("expected zero file, got %+v", f)
	}
}

func TestLoad_Invalid(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cases := map[string]string{
		"bad duration": "provider:\n  timeout: soon\n",
		"bad level":    "log_level: loud\n",
		"neg retries":  "retries: -1\n",
		"not yaml":     "provider: [\n",
	}
	for name, doc := range cases {
		p := filepath.Join(dir, strings.ReplaceAll(name, " ", "_")+".yaml")
		if err := os.WriteFile(p, []byte(doc), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		if _, err := Load(p); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("expected missing file error")
	}
}

func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]slog.Level{
		"":        slog.LevelInfo,
		"INFO":    slog.LevelInfo,
		" trace ": LevelTrace,
		"debug":   slog.LevelDebug,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range cases {
		got, err := ParseLogLevel(in)
		if err != nil || got != want {
			t.Fatalf("ParseLogLevel(%q)=%v,%v want %v", in, got, err, want)
		}
	}
	if _, err := ParseLogLevel("verbose"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestNewLogger_RendersTrace(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewLogger(&buf, LevelTrace)
	logger.Log(t.Context(), LevelTrace, "payload", "input", "{}")
	if !strings.Contains(buf.String(), "level=TRACE") {
		t.Fatalf("log=%q", buf.String())
	}
}
