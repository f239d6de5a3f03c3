package render

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/tidwall/gjson"

	"github.com/chris/snug/internal/agent"
	"github.com/chris/snug/internal/llm"
)

func TestText_ReplyNotStreamed(t *testing.T) {
	var out, errOut bytes.Buffer
	r := NewText(&out, &errOut, Options{})

	if r.Stream() != nil {
		t.Error("expected no stream writer when streaming is off")
	}
	if err := r.Reply("s", &agent.Result{Reply: "hello\n\n"}); err != nil {
		t.Fatalf("Reply: %v", err)
	}
	if out.String() != "hello\n" {
		t.Errorf("stdout = %q, want %q", out.String(), "hello\n")
	}
	if errOut.Len() != 0 {
		t.Errorf("expected no notices, got %q", errOut.String())
	}
}

func TestText_ReplyStreamedFinishesLine(t *testing.T) {
	var out, errOut bytes.Buffer
	r := NewText(&out, &errOut, Options{Stream: true})

	w := r.Stream()
	if w == nil {
		t.Fatal("expected a stream writer")
	}
	w.Write([]byte("partial"))
	r.Reply("s", &agent.Result{Reply: "partial"})
	if out.String() != "partial\n" {
		t.Errorf("stdout = %q, want %q", out.String(), "partial\n")
	}
}

func TestText_TruncationNoticeOnlyWhenVerbose(t *testing.T) {
	plan := llm.Plan{Truncated: true, Dropped: 3, Turns: make([]llm.Turn, 2), HistoryTokens: 2000, FullTokens: 5300}

	var quiet bytes.Buffer
	NewText(&bytes.Buffer{}, &quiet, Options{HistoryBudget: 2048}).Context(plan)
	if quiet.Len() != 0 {
		t.Errorf("expected no notice without verbose, got %q", quiet.String())
	}

	var loud bytes.Buffer
	NewText(&bytes.Buffer{}, &loud, Options{Verbose: true, HistoryBudget: 2048}).Context(plan)
	got := loud.String()
	if !strings.Contains(got, "dropped 3 older turns") || !strings.Contains(got, "2,048-token") ||
		!strings.Contains(got, "full history ~5,300 tokens") {
		t.Errorf("unexpected notice: %q", got)
	}
}

func TestText_Error(t *testing.T) {
	var errOut bytes.Buffer
	NewText(&bytes.Buffer{}, &errOut, Options{}).Error(errors.New("boom"), "generation")
	if !strings.Contains(errOut.String(), "error:") || !strings.Contains(errOut.String(), "boom") {
		t.Errorf("unexpected error output: %q", errOut.String())
	}
}

func TestJSON_Reply(t *testing.T) {
	var out bytes.Buffer
	r := NewJSON(&out, false)
	if r.Stream() != nil {
		t.Error("JSON output must not stream")
	}
	err := r.Reply("abc", &agent.Result{
		Reply:           "line one\n\"two\"",
		Truncated:       true,
		Dropped:         2,
		Included:        1,
		EstimatedTokens: 42,
		FullTokens:      90,
		OutputTokens:    7,
	})
	if err != nil {
		t.Fatalf("Reply: %v", err)
	}
	doc := out.String()
	if !gjson.Valid(doc) {
		t.Fatalf("invalid JSON: %s", doc)
	}
	checks := map[string]string{
		"response":              "line one\n\"two\"",
		"session":               "abc",
		"truncated":             "true",
		"dropped_turns":         "2",
		"included_turns":        "1",
		"estimated_tokens":      "42",
		"full_estimated_tokens": "90",
		"prompt_truncated":      "false",
		"usage.output_tokens":   "7",
	}
	for path, want := range checks {
		if got := gjson.Get(doc, path).String(); got != want {
			t.Errorf("%s = %q, want %q", path, got, want)
		}
	}
	if strings.Count(doc, "\n") != 1 {
		t.Errorf("expected a single line, got %q", doc)
	}
}

func TestJSON_PrettyAndError(t *testing.T) {
	var out bytes.Buffer
	NewJSON(&out, true).Error(errors.New("context exceeded"), "context")
	doc := out.String()
	if !strings.Contains(doc, "\n  \"error\"") {
		t.Errorf("expected indented output, got %q", doc)
	}
	if gjson.Get(doc, "category").String() != "context" {
		t.Errorf("unexpected category in %s", doc)
	}
}

func TestNew_UnknownFormat(t *testing.T) {
	if _, err := New("yaml", &bytes.Buffer{}, &bytes.Buffer{}, Options{}); err == nil {
		t.Error("expected an error for an unknown format")
	}
}
