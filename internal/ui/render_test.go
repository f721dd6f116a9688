package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"

	"github.com/ediscovery/chatbox/internal/chatapi"
)

func TestHighlightCode(t *testing.T) {
	out := highlightCode(`{"a": 1}`, "json")

	if PlainText(out) != `{"a": 1}` {
		t.Errorf("highlighting should not change the text, got %q", PlainText(out))
	}
	if out == `{"a": 1}` {
		t.Error("expected ANSI styling in highlighted output")
	}
}

func TestHighlightCode_UnknownLanguage(t *testing.T) {
	out := highlightCode("plain words", "no-such-language")
	if PlainText(out) != "plain words" {
		t.Errorf("got %q", PlainText(out))
	}
}

func TestSplitQueryResult(t *testing.T) {
	reply := chatapi.QueryResult{
		Query:   "MATCH (p:Person) RETURN p.name",
		Results: []byte(`[{"p.name":"Ann"}]`),
	}

	query, results, ok := splitQueryResult(reply.Render())
	if !ok {
		t.Fatal("rendered query reply should be recognized")
	}
	if query != reply.Query {
		t.Errorf("query = %q", query)
	}
	if !strings.Contains(results, `"p.name": "Ann"`) {
		t.Errorf("results = %q", results)
	}
}

func TestSplitQueryResult_PlainText(t *testing.T) {
	tests := []string{
		"Paris",
		"Cypher Query: inline mention",
		"Cypher Query:\nMATCH (n) RETURN n",
	}
	for _, s := range tests {
		if _, _, ok := splitQueryResult(s); ok {
			t.Errorf("splitQueryResult(%q) should not match", s)
		}
	}
}

func TestRenderContent_QueryResult(t *testing.T) {
	reply := chatapi.QueryResult{Query: "MATCH (n) RETURN n", Results: []byte(`[]`)}

	out := PlainText(renderContent(reply.Render(), 80))

	for _, want := range []string{chatapi.QueryHeader, "MATCH (n) RETURN n", chatapi.ResultsHeader, "[]"} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderMarkdown_CodeBlock(t *testing.T) {
	content := "Here you go:\n```json\n{\"ok\": true}\n```\nDone."

	out := PlainText(renderMarkdown(content, 80))

	if strings.Contains(out, "```") {
		t.Errorf("fences should be removed:\n%s", out)
	}
	for _, want := range []string{"Here you go:", `{"ok": true}`, "Done."} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestRenderMarkdown_UnterminatedBlock(t *testing.T) {
	out := PlainText(renderMarkdown("```\nstill code", 80))
	if !strings.Contains(out, "still code") {
		t.Errorf("unterminated block content lost: %q", out)
	}
}

func TestRenderMarkdown_Wraps(t *testing.T) {
	long := strings.Repeat("word ", 30)

	out := renderMarkdown(long, 20)

	for _, line := range strings.Split(out, "\n") {
		if w := ansi.StringWidth(line); w > 20 {
			t.Errorf("line width %d exceeds 20: %q", w, PlainText(line))
		}
	}
}

func TestFitCode(t *testing.T) {
	out := fitCode("short\n"+strings.Repeat("x", 50), 10)
	lines := strings.Split(out, "\n")

	if lines[0] != "short" {
		t.Errorf("short line changed: %q", lines[0])
	}
	if ansi.StringWidth(lines[1]) != 10 || !strings.HasSuffix(lines[1], "…") {
		t.Errorf("long line not truncated: %q", lines[1])
	}
}
