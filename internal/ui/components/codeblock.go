// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
)

// =============================================================================
// SYNTAX HIGHLIGHTING (Chroma-based)
// =============================================================================

// highlightCode applies syntax highlighting to code using the chroma library.
// This provides ANSI-safe highlighting for terminal output.
func highlightCode(code, language string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := chromaStyles.Get("monokai")
	if style == nil {
		style = chromaStyles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code // Fallback to plain text
	}

	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}
	return buf.String()
}

// HighlightFences highlights fenced code blocks in plain text, leaving prose
// untouched. Used when full markdown rendering is disabled.
func HighlightFences(content string) string {
	var out strings.Builder
	lines := strings.Split(content, "\n")

	inFence := false
	var lang string
	var code []string

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			if !inFence {
				inFence = true
				lang = strings.TrimPrefix(trimmed, "```")
				code = code[:0]
				continue
			}
			out.WriteString(strings.TrimRight(highlightCode(strings.Join(code, "\n"), lang), "\n"))
			out.WriteString("\n")
			inFence = false
			continue
		}
		if inFence {
			code = append(code, line)
			continue
		}
		out.WriteString(line)
		out.WriteString("\n")
	}

	// An unterminated fence is emitted as-is; the stream may still be
	// mid-block.
	if inFence {
		out.WriteString("```" + lang + "\n")
		out.WriteString(strings.Join(code, "\n"))
		out.WriteString("\n")
	}

	return strings.TrimRight(out.String(), "\n")
}
