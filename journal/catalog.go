package journal

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

//go:embed prompts.json
var defaultCatalogJSON []byte

// Catalog maps a mood to the reflection prompts offered for it.
type Catalog map[string][]string

// DefaultCatalog returns the built-in mood prompts.
func DefaultCatalog() Catalog {
	c, err := ParseCatalog(defaultCatalogJSON)
	if err != nil {
		panic(fmt.Sprintf("embedded prompts.json: %v", err))
	}
	return c
}

// LoadCatalog reads a mood catalog from path. An empty path yields DefaultCatalog.
func LoadCatalog(path string) (Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompt catalog: %w", err)
	}
	return ParseCatalog(b)
}

// ParseCatalog decodes and validates a catalog. Every mood needs at least one non-blank prompt.
func ParseCatalog(b []byte) (Catalog, error) {
	var c Catalog
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("decode prompt catalog: %w", err)
	}
	if len(c) == 0 {
		return nil, fmt.Errorf("prompt catalog is empty")
	}
	for mood, prompts := range c {
		if strings.TrimSpace(mood) == "" {
			return nil, fmt.Errorf("prompt catalog has a blank mood")
		}
		if len(prompts) == 0 {
			return nil, fmt.Errorf("mood %q has no prompts", mood)
		}
		for i, p := range prompts {
			if strings.TrimSpace(p) == "" {
				return nil, fmt.Errorf("mood %q prompt %d is blank", mood, i)
			}
		}
	}
	return c, nil
}

// Moods returns mood names sorted alphabetically.
func (c Catalog) Moods() []string {
	moods := make([]string, 0, len(c))
	for m := range c {
		moods = append(moods, m)
	}
	sort.Strings(moods)
	return moods
}

// Prompt returns prompt i for mood. Mood lookup is case-insensitive.
func (c Catalog) Prompt(mood string, i int) (string, error) {
	prompts, ok := c[mood]
	if !ok {
		for m, p := range c {
			if strings.EqualFold(m, mood) {
				prompts, ok = p, true
				break
			}
		}
	}
	if !ok {
		return "", fmt.Errorf("unknown mood %q (have %s)", mood, strings.Join(c.Moods(), ", "))
	}
	if i < 0 || i >= len(prompts) {
		return "", fmt.Errorf("mood %q has %d prompts, index %d out of range", mood, len(prompts), i)
	}
	return prompts[i], nil
}
