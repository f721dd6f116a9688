package ui

import (
	"bytes"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/x/ansi"

	"github.com/ediscovery/chatbox/internal/chatapi"
)

// queryLanguage is the closest lexer chroma ships for Cypher.
const queryLanguage = "sql"

// highlightCode applies syntax highlighting to code using chroma
func highlightCode(code, language string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get("monokai")
	if style == nil {
		style = styles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}

	// Lexers append a newline to their input; drop it but keep any trailing
	// reset sequence.
	out := buf.String()
	if !strings.HasSuffix(code, "\n") {
		lines := strings.Split(out, "\n")
		if n := len(lines); n > 1 && ansi.Strip(lines[n-1]) == "" {
			out = strings.Join(lines[:n-1], "\n") + lines[n-1]
		}
	}
	return out
}

// renderContent renders one message body for the chat viewport. Query
// replies get their query and results highlighted; everything else is
// treated as light markdown with fenced code blocks.
func renderContent(content string, width int) string {
	if width <= 0 {
		width = DefaultWrapWidth
	}
	if query, results, ok := splitQueryResult(content); ok {
		return renderQueryResult(query, results, width)
	}
	return renderMarkdown(content, width)
}

// splitQueryResult recognizes the rendered form of a query reply.
func splitQueryResult(content string) (query, results string, ok bool) {
	prefix := chatapi.QueryHeader + "\n"
	if !strings.HasPrefix(content, prefix) {
		return "", "", false
	}
	rest := strings.TrimPrefix(content, prefix)
	sep := "\n\n" + chatapi.ResultsHeader + "\n"
	i := strings.Index(rest, sep)
	if i < 0 {
		return "", "", false
	}
	return rest[:i], rest[i+len(sep):], true
}

func renderQueryResult(query, results string, width int) string {
	var sb strings.Builder
	sb.WriteString(ChatSectionStyle.Render(chatapi.QueryHeader))
	sb.WriteString("\n")
	sb.WriteString(fitCode(highlightCode(query, queryLanguage), width))
	sb.WriteString("\n\n")
	sb.WriteString(ChatSectionStyle.Render(chatapi.ResultsHeader))
	sb.WriteString("\n")
	sb.WriteString(fitCode(highlightCode(results, "json"), width))
	return sb.String()
}

// renderMarkdown renders text with syntax-highlighted fenced code blocks.
// Prose lines are word wrapped to width; code lines are cut instead so
// indentation survives.
func renderMarkdown(content string, width int) string {
	var result strings.Builder
	lines := strings.Split(content, "\n")
	inCodeBlock := false
	codeBlockLang := ""
	var codeBlockContent strings.Builder

	flush := func() {
		result.WriteString(fitCode(highlightCode(codeBlockContent.String(), codeBlockLang), width))
		result.WriteString("\n")
	}

	for _, line := range lines {
		if strings.HasPrefix(line, "```") {
			if !inCodeBlock {
				inCodeBlock = true
				codeBlockLang = strings.TrimSpace(strings.TrimPrefix(line, "```"))
				codeBlockContent.Reset()
			} else {
				inCodeBlock = false
				flush()
				codeBlockLang = ""
			}
			continue
		}

		if inCodeBlock {
			if codeBlockContent.Len() > 0 {
				codeBlockContent.WriteString("\n")
			}
			codeBlockContent.WriteString(line)
			continue
		}

		result.WriteString(ChatMessageStyle.Render(ansi.Wrap(line, width, "")))
		result.WriteString("\n")
	}

	// Unterminated block: show what we have
	if inCodeBlock {
		flush()
	}

	return strings.TrimRight(result.String(), "\n")
}

// fitCode truncates each highlighted line to width cells.
func fitCode(code string, width int) string {
	lines := strings.Split(code, "\n")
	for i, l := range lines {
		if ansi.StringWidth(l) > width {
			lines[i] = ansi.Truncate(l, width, "…")
		}
	}
	return strings.Join(lines, "\n")
}

// PlainText strips terminal styling from rendered output.
func PlainText(rendered string) string {
	return ansi.Strip(rendered)
}
