// Package goldmark renders message bodies.
package goldmark

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

// Render renders the markdown in a message body as HTML. Raw HTML in the input is omitted,
// message bodies are user input.
func Render(body string) (template.HTML, error) {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.Strikethrough,
			extension.Linkify,
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(html.WithHardWraps()),
	)

	data := []byte(body)
	root := md.Parser().Parse(text.NewReader(data))

	var buf bytes.Buffer
	if err := md.Renderer().Render(&buf, data, root); err != nil {
		return "", fmt.Errorf("rendering markdown: %v", err)
	}

	return template.HTML(buf.String()), nil
}
