package provider

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/theimaginaryfoundation/bluum-journal/journal"
)

func responseBody(text string) string {
	b, _ := json.Marshal(map[string]any{
		"id":         "resp_test",
		"object":     "response",
		"created_at": 1,
		"status":     "completed",
		"model":      "test-model",
		"output": []any{
			map[string]any{
				"type":   "message",
				"id":     "msg_test",
				"status": "completed",
				"role":   "assistant",
				"content": []any{
					map[string]any{"type": "output_text", "text": text, "annotations": []any{}},
				},
			},
		},
	})
	return string(b)
}

func newTestProvider(t *testing.T, h http.HandlerFunc) OpenAI {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return OpenAI{
		Client: NewClient(Options{APIKey: "test-key", BaseURL: srv.URL + "/"}),
		Model:  "test-model",
	}
}

func TestOpenAI_CompleteSendsStrictSchema(t *testing.T) {
	t.Parallel()

	bodies := make(chan map[string]any, 1)
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || !strings.HasSuffix(r.URL.Path, "/responses") {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization=%q", got)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		bodies <- body
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, responseBody(`{"category":"quiet","response_text":"Tell me a bit more?"}`))
	})

	c, err := journal.Render(journal.Request{Prompt: "How are you feeling?", Entry: "idk"}, "")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	out, err := p.Complete(context.Background(), c)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != `{"category":"quiet","response_text":"Tell me a bit more?"}` {
		t.Fatalf("out=%q", out)
	}

	body := <-bodies
	if body["model"] != "test-model" {
		t.Fatalf("model=%v", body["model"])
	}
	if instr, _ := body["instructions"].(string); !strings.Contains(instr, "journaling companion") {
		t.Fatalf("instructions=%q", instr)
	}
	text, _ := body["text"].(map[string]any)
	format, _ := text["format"].(map[string]any)
	if format["type"] != "json_schema" || format["strict"] != true || format["name"] != "JournalClassification" {
		t.Fatalf("format=%#v", format)
	}
	raw, _ := json.Marshal(body["input"])
	if !strings.Contains(string(raw), "current_prompt") {
		t.Fatalf("input missing payload: %s", raw)
	}
}

func TestOpenAI_DispatcherEndToEnd(t *testing.T) {
	t.Parallel()

	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, responseBody(`{"category":"positive","response_text":"What a warm welcome!"}`))
	})
	d := journal.Dispatcher{Provider: p, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	res, err := d.Classify(context.Background(), journal.Request{Prompt: "What made you smile today?", Entry: "My dog greeted me at the door!"})
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if res.Category != journal.CategoryPositive || res.ResponseText != "What a warm welcome!" {
		t.Fatalf("res=%+v", res)
	}
}

func TestOpenAI_ServerErrorIsNotRetriedBySDK(t *testing.T) {
	t.Parallel()

	var hits int64
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"error":{"message":"boom","type":"server_error"}}`)
	})
	d := journal.Dispatcher{Provider: p, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	_, err := d.Classify(context.Background(), journal.Request{Prompt: "p", Entry: "e"})
	if !errors.Is(err, journal.ErrProviderUnavailable) {
		t.Fatalf("err=%v, want ErrProviderUnavailable", err)
	}
	if !IsServerError(err) || IsRateLimit(err) {
		t.Fatalf("IsServerError=%v IsRateLimit=%v", IsServerError(err), IsRateLimit(err))
	}
	if got := atomic.LoadInt64(&hits); got != 1 {
		t.Fatalf("hits=%d, want 1", got)
	}
}

func TestOpenAI_SlowProviderTimesOut(t *testing.T) {
	t.Parallel()

	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	d := journal.Dispatcher{
		Provider: p,
		Timeout:  50 * time.Millisecond,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	_, err := d.Classify(context.Background(), journal.Request{Prompt: "p", Entry: "e"})
	if !errors.Is(err, journal.ErrProviderUnavailable) {
		t.Fatalf("err=%v, want ErrProviderUnavailable", err)
	}
}

func TestOpenAI_ProseOutputIsMalformed(t *testing.T) {
	t.Parallel()

	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, responseBody("Here is your JSON: {\"category\":\"quiet\",\"response_text\":\"hi\"}"))
	})
	d := journal.Dispatcher{Provider: p, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	_, err := d.Classify(context.Background(), journal.Request{Prompt: "p", Entry: "e"})
	if !errors.Is(err, journal.ErrMalformedResponse) {
		t.Fatalf("err=%v, want ErrMalformedResponse", err)
	}
}
