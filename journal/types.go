package journal

import (
	"fmt"
	"strings"
)

// Category is the label attached to a journal entry's emotional or intent signal.
type Category string

const (
	CategoryPositive    Category = "positive"
	CategoryQuiet       Category = "quiet"
	CategorySafety      Category = "safety"
	CategoryInstruction Category = "instruction"
	CategoryUnclear     Category = "unclear"
)

// Categories lists every valid Category in a stable order.
func Categories() []Category {
	return []Category{
		CategoryPositive,
		CategoryQuiet,
		CategorySafety,
		CategoryInstruction,
		CategoryUnclear,
	}
}

func (c Category) Valid() bool {
	switch c {
	case CategoryPositive, CategoryQuiet, CategorySafety, CategoryInstruction, CategoryUnclear:
		return true
	}
	return false
}

// ParseCategory matches s exactly. Case and surrounding whitespace are significant.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}

// Reflection is one past prompt-and-answer turn.
type Reflection struct {
	Prompt string `json:"prompt"`
	Entry  string `json:"entry"`
}

// ReflectionHistory is ordered oldest first.
type ReflectionHistory []Reflection

// Request is a single classification call.
type Request struct {
	Prompt  string            `json:"prompt"`
	Entry   string            `json:"entry"`
	History ReflectionHistory `json:"history,omitempty"`
}

// Validate rejects a request whose current prompt is empty or whitespace-only.
// An empty entry is allowed.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Prompt) == "" {
		return fmt.Errorf("%w: current prompt is empty", ErrInvalidInput)
	}
	return nil
}

// Result is the provider's classification of the current entry.
type Result struct {
	Category     Category `json:"category"`
	ResponseText string   `json:"response_text"`
}

// WordCount counts whitespace-separated words.
func WordCount(s string) int {
	return len(strings.Fields(s))
}
