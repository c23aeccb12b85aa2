package journal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultCatalog(t *testing.T) {
	t.Parallel()

	c := DefaultCatalog()
	moods := c.Moods()
	if len(moods) == 0 {
		t.Fatalf("no moods")
	}
	for i := 1; i < len(moods); i++ {
		if moods[i-1] > moods[i] {
			t.Fatalf("moods not sorted: %v", moods)
		}
	}

	p, err := c.Prompt("happy", 0)
	if err != nil {
		t.Fatalf("Prompt: %v", err)
	}
	if p != "What made you smile today?" {
		t.Fatalf("Prompt=%q", p)
	}
	if _, err := c.Prompt("Happy", 99); err == nil {
		t.Fatalf("expected out of range error")
	}
	if _, err := c.Prompt("furious", 0); err == nil || !strings.Contains(err.Error(), "unknown mood") {
		t.Fatalf("err=%v", err)
	}
}

func TestLoadCatalog(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	good := filepath.Join(dir, "prompts.json")
	if err := os.WriteFile(good, []byte(`{"Proud":["What did you finish today?"]}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	c, err := LoadCatalog(good)
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	if got := c.Moods(); len(got) != 1 || got[0] != "Proud" {
		t.Fatalf("Moods=%v", got)
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"Proud":[" "]}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadCatalog(bad); err == nil {
		t.Fatalf("expected blank prompt error")
	}
	if _, err := LoadCatalog(filepath.Join(dir, "missing.json")); err == nil {
		t.Fatalf("expected read error")
	}
}
