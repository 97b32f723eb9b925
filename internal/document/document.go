// Package document prepares uploaded files for lesson extraction. HTML is
// reduced to readable article text, markdown is flattened to plain text,
// everything else passes through as-is.
package document

import (
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"strings"

	readability "github.com/go-shiori/go-readability"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"
)

// maxDocumentBytes caps how much of an uploaded file is read.
const maxDocumentBytes = 2 << 20

// PrepareText reads a document and returns plain text suitable for
// prompting. The format is chosen by file extension.
func PrepareText(name string, r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxDocumentBytes))
	if err != nil {
		return "", fmt.Errorf("reading document: %w", err)
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".html", ".htm":
		return htmlText(name, data), nil
	case ".md", ".markdown":
		return markdownText(data), nil
	default:
		return strings.TrimSpace(string(data)), nil
	}
}

// DocType guesses the assurance document type from its filename.
func DocType(name string) string {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "gateway"):
		return "gateway_review"
	case strings.Contains(lower, "nista"):
		return "nista"
	case strings.Contains(lower, "closure"):
		return "project_closure"
	default:
		return "assurance_report"
	}
}

// htmlText extracts the readable article text from an HTML document,
// falling back to the raw markup if extraction fails.
func htmlText(name string, data []byte) string {
	pageURL := &url.URL{Scheme: "file", Path: "/" + filepath.Base(name)}
	article, err := readability.FromReader(strings.NewReader(string(data)), pageURL)
	if err != nil {
		return strings.TrimSpace(string(data))
	}
	text := strings.TrimSpace(article.TextContent)
	if text == "" {
		return strings.TrimSpace(string(data))
	}
	return text
}

// markdownText flattens markdown to plain text by walking the parsed AST
// and collecting text segments, with line breaks between blocks.
func markdownText(source []byte) string {
	root := goldmark.New().Parser().Parse(gmtext.NewReader(source))

	var b strings.Builder
	ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			if n.Type() == ast.TypeBlock && b.Len() > 0 {
				b.WriteString("\n")
			}
			return ast.WalkContinue, nil
		}
		switch t := n.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteString("\n")
			}
		case *ast.AutoLink:
			b.Write(t.URL(source))
		case *ast.FencedCodeBlock:
			writeLines(&b, t, source)
		case *ast.CodeBlock:
			writeLines(&b, t, source)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}

func writeLines(b *strings.Builder, n ast.Node, source []byte) {
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		segment := lines.At(i)
		b.Write(segment.Value(source))
	}
}
