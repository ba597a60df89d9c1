package summarizer_test

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
	"unicode/utf8"

	"inkpad/internal/summarizer"

	"github.com/openai/openai-go/v3/option"
)

type stubSummarizer struct {
	out   string
	err   error
	calls int
}

func (s *stubSummarizer) Summarize(context.Context, summarizer.Input) (string, error) {
	s.calls++

	return s.out, s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestExtractive(t *testing.T) {
	s := summarizer.NewExtractive()

	out, err := s.Summarize(context.Background(), summarizer.Input{
		Text:      "今天早上我在图书馆读了一本关于历史的书。总结一下这一天过得非常充实而且愉快。",
		MaxLength: 300,
	})
	if err != nil {
		t.Fatalf("Summarize returned error: %v", err)
	}
	if !strings.HasSuffix(out, "。") || !strings.Contains(out, "图书馆") {
		t.Fatalf("unexpected summary: %q", out)
	}

	out, err = s.Summarize(context.Background(), summarizer.Input{Text: "```\ncode\n```"})
	if err != nil || out != "" {
		t.Fatalf("expected empty summary for code-only text, got %q, %v", out, err)
	}
}

func TestChainSkipsFailuresAndEmptyResults(t *testing.T) {
	failing := &stubSummarizer{err: errors.New("unavailable")}
	empty := &stubSummarizer{out: "   "}
	good := &stubSummarizer{out: " 摘要。 "}
	unused := &stubSummarizer{out: "never"}

	chain := summarizer.NewChain(discardLogger(), failing, nil, empty, good, unused)

	out, err := chain.Summarize(context.Background(), summarizer.Input{Text: "正文"})
	if err != nil {
		t.Fatalf("Summarize returned error: %v", err)
	}
	if out != "摘要。" {
		t.Fatalf("unexpected summary: %q", out)
	}
	if failing.calls != 1 || empty.calls != 1 || good.calls != 1 || unused.calls != 0 {
		t.Fatalf("unexpected call counts: %d %d %d %d", failing.calls, empty.calls, good.calls, unused.calls)
	}
}

func TestChainAllEmpty(t *testing.T) {
	chain := summarizer.NewChain(discardLogger(), &stubSummarizer{}, &stubSummarizer{err: errors.New("x")})

	out, err := chain.Summarize(context.Background(), summarizer.Input{Text: "正文"})
	if err != nil || out != "" {
		t.Fatalf("expected empty result without error, got %q, %v", out, err)
	}
}

func TestChainStopsOnCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	step := &stubSummarizer{out: "摘要"}
	chain := summarizer.NewChain(discardLogger(), step)

	if _, err := chain.Summarize(ctx, summarizer.Input{Text: "正文"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if step.calls != 0 {
		t.Fatalf("expected no calls after cancellation")
	}
}

func TestFallback(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		maxLength int
		want      string
	}{
		{"short text", "# 标题\n\n一段**正文**", 300, "标题 一段正文"},
		{"cut with ellipsis", "一二三四五六七八九十", 8, "一二三四五..."},
		{"tiny budget", "一二三四五六七八九十", 2, "一二"},
		{"empty", "  ", 10, ""},
		{"zero budget", "正文", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := summarizer.Fallback(tt.text, tt.maxLength)
			if got != tt.want {
				t.Fatalf("Fallback = %q, want %q", got, tt.want)
			}
			if utf8.RuneCountInString(got) > tt.maxLength {
				t.Fatalf("Fallback exceeded %d runes: %q", tt.maxLength, got)
			}
		})
	}
}

func responsesHandler(t *testing.T, requests *atomic.Int32, reply func(n int32, body map[string]any) string) http.HandlerFunc {
	t.Helper()

	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || !strings.HasSuffix(r.URL.Path, "/responses") {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			http.NotFound(w, r)

			return
		}

		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request body: %v", err)
		}

		n := requests.Add(1)

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, reply(n, body))
	}
}

func completedResponse(text string) string {
	out, _ := json.Marshal(map[string]any{
		"id":         "resp_1",
		"object":     "response",
		"created_at": 0,
		"status":     "completed",
		"model":      "gpt-5-mini",
		"output": []any{map[string]any{
			"type":   "message",
			"id":     "msg_1",
			"status": "completed",
			"role":   "assistant",
			"content": []any{map[string]any{
				"type":        "output_text",
				"text":        text,
				"annotations": []any{},
			}},
		}},
	})

	return string(out)
}

const incompleteResponse = `{"id":"resp_0","object":"response","created_at":0,"status":"incomplete",` +
	`"incomplete_details":{"reason":"max_output_tokens"},"model":"gpt-5-mini","output":[]}`

func TestOpenAISummarizerRetriesWithLargerBudget(t *testing.T) {
	var requests atomic.Int32
	var budgets []float64

	srv := httptest.NewServer(responsesHandler(t, &requests, func(n int32, body map[string]any) string {
		if v, ok := body["max_output_tokens"].(float64); ok {
			budgets = append(budgets, v)
		}
		if n == 1 {
			return incompleteResponse
		}

		return completedResponse("  缓存让博客\n更快。 ")
	}))
	defer srv.Close()

	s, err := summarizer.NewOpenAISummarizer("test-key", "", option.WithBaseURL(srv.URL), option.WithMaxRetries(0))
	if err != nil {
		t.Fatalf("NewOpenAISummarizer returned error: %v", err)
	}

	out, err := s.Summarize(context.Background(), summarizer.Input{Text: "正文", MaxLength: 300})
	if err != nil {
		t.Fatalf("Summarize returned error: %v", err)
	}

	if out != "缓存让博客 更快。" {
		t.Fatalf("unexpected summary: %q", out)
	}
	if requests.Load() != 2 {
		t.Fatalf("expected two requests, got %d", requests.Load())
	}
	if len(budgets) != 2 || budgets[0] != 512 || budgets[1] != 1024 {
		t.Fatalf("unexpected token budgets: %v", budgets)
	}
}

func TestOpenAISummarizerCapsLength(t *testing.T) {
	var requests atomic.Int32

	srv := httptest.NewServer(responsesHandler(t, &requests, func(int32, map[string]any) string {
		return completedResponse(strings.Repeat("长", 50))
	}))
	defer srv.Close()

	s, err := summarizer.NewOpenAISummarizer("test-key", "gpt-test", option.WithBaseURL(srv.URL), option.WithMaxRetries(0))
	if err != nil {
		t.Fatalf("NewOpenAISummarizer returned error: %v", err)
	}

	out, err := s.Summarize(context.Background(), summarizer.Input{Text: "正文", MaxLength: 20})
	if err != nil {
		t.Fatalf("Summarize returned error: %v", err)
	}

	if utf8.RuneCountInString(out) > 20 || !strings.HasSuffix(out, "...") {
		t.Fatalf("expected capped summary, got %q", out)
	}
}

func TestOpenAISummarizerSendsSourceURL(t *testing.T) {
	var (
		requests atomic.Int32
		prompt   string
	)

	srv := httptest.NewServer(responsesHandler(t, &requests, func(_ int32, body map[string]any) string {
		prompt, _ = body["input"].(string)

		return completedResponse("摘要。")
	}))
	defer srv.Close()

	s, err := summarizer.NewOpenAISummarizer("test-key", "", option.WithBaseURL(srv.URL), option.WithMaxRetries(0))
	if err != nil {
		t.Fatalf("NewOpenAISummarizer returned error: %v", err)
	}

	_, err = s.Summarize(context.Background(), summarizer.Input{
		Text:      "正文",
		SourceURL: "https://example.com/post",
		MaxLength: 100,
	})
	if err != nil {
		t.Fatalf("Summarize returned error: %v", err)
	}

	if want := "Source:\nhttps://example.com/post\nContent:\n正文"; prompt != want {
		t.Fatalf("unexpected prompt:\ngot  %q\nwant %q", prompt, want)
	}
}

func TestOpenAISummarizerRejectsEmptyInput(t *testing.T) {
	if _, err := summarizer.NewOpenAISummarizer(" ", ""); err == nil {
		t.Fatalf("expected error for empty API key")
	}

	s, err := summarizer.NewOpenAISummarizer("test-key", "")
	if err != nil {
		t.Fatalf("NewOpenAISummarizer returned error: %v", err)
	}

	if _, err = s.Summarize(context.Background(), summarizer.Input{Text: "  "}); err == nil {
		t.Fatalf("expected error for empty input")
	}
}
