package journal

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestRender_PreservesHistoryOrder(t *testing.T) {
	t.Parallel()

	req := Request{
		Prompt: "How are you feeling?",
		Entry:  "better today",
		History: ReflectionHistory{
			{Prompt: "P1 first prompt", Entry: "E1 first entry"},
			{Prompt: "P2 second prompt", Entry: "E2 second entry"},
		},
	}
	c, err := Render(req, "")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	order := []string{"P1 first prompt", "E1 first entry", "P2 second prompt", "E2 second entry"}
	last := -1
	for _, s := range order {
		i := strings.Index(c.Input, s)
		if i < 0 {
			t.Fatalf("%q missing from input: %s", s, c.Input)
		}
		if i <= last {
			t.Fatalf("%q out of order in input: %s", s, c.Input)
		}
		last = i
	}

	var payload classificationPayload
	if err := json.Unmarshal([]byte(c.Input), &payload); err != nil {
		t.Fatalf("input is not JSON: %v", err)
	}
	if len(payload.ReflectionHistory) != 2 || payload.ReflectionHistory[0].Prompt != "P1 first prompt" {
		t.Fatalf("history=%+v", payload.ReflectionHistory)
	}
	if payload.CurrentPrompt != req.Prompt || payload.CurrentEntry != req.Entry {
		t.Fatalf("current=%q/%q", payload.CurrentPrompt, payload.CurrentEntry)
	}
	if payload.ResponseConstraints.MaxWords != MaxResponseWords {
		t.Fatalf("MaxWords=%d", payload.ResponseConstraints.MaxWords)
	}
}

func TestRender_EmptyHistoryAndPreamble(t *testing.T) {
	t.Parallel()

	c, err := Render(Request{Prompt: "Describe your day."}, "")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(c.Input, `"reflection_history":[]`) {
		t.Fatalf("expected empty history array: %s", c.Input)
	}
	if strings.Contains(c.Input, "screening_hint") {
		t.Fatalf("unexpected screening hint: %s", c.Input)
	}
	for _, rule := range []string{
		"Never generate creative content",
		"Never give advice",
		"Never hold a conversation",
		"Always bring the user back to current_prompt",
		"Samaritans (call 116 123)",
		"Shout (text SHOUT to 85258)",
		"NHS 111 (call 111)",
	} {
		if !strings.Contains(c.Instructions, rule) {
			t.Fatalf("preamble missing %q", rule)
		}
	}
}

func TestRender_Hint(t *testing.T) {
	t.Parallel()

	c, err := Render(Request{Prompt: "p", Entry: "idk"}, CategoryQuiet)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(c.Input, `"screening_hint":"quiet"`) {
		t.Fatalf("hint missing: %s", c.Input)
	}
}
