// Package highlight formats diffs with chroma formatters and styles.
package highlight

import (
	"fmt"
	"html"
	"html/template"
	"io"
	"strings"

	"chat.znkr.io/editdiff/diff"
	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/styles"
)

var class = map[chroma.TokenType]string{
	chroma.GenericDeleted:  "hl-del",
	chroma.GenericInserted: "hl-ins",
}

type Option func(*highlighter)

// Formatter selects the chroma formatter by name, e.g. "terminal256" or "html".
func Formatter(name string) Option {
	return func(hl *highlighter) {
		hl.formatterName = name
	}
}

// Style selects the chroma style by name, e.g. "github" or "monokai".
func Style(name string) Option {
	return func(hl *highlighter) {
		hl.styleName = name
	}
}

// Side formats one side of a diff. Changed tokens are formatted as deletions for the original and
// as insertions for the edited side.
func Side(w io.Writer, segs []diff.Segment, side diff.Side, opts ...Option) error {
	hl, err := fromOptions(opts)
	if err != nil {
		return err
	}
	changed := chroma.GenericInserted
	if side == diff.Original {
		changed = chroma.GenericDeleted
	}
	tokens := make([]chroma.Token, 0, len(segs))
	for _, seg := range segs {
		typ := chroma.Text
		if seg.Changed {
			typ = changed
		}
		tokens = append(tokens, chroma.Token{Type: typ, Value: seg.Text})
	}
	return hl.format(w, tokens)
}

// Unified formats the merged view of a diff.
func Unified(w io.Writer, edits []diff.Edit, opts ...Option) error {
	hl, err := fromOptions(opts)
	if err != nil {
		return err
	}
	tokens := make([]chroma.Token, 0, len(edits))
	for _, e := range edits {
		tokens = append(tokens, chroma.Token{Type: tokenType(e.Op), Value: e.String})
	}
	return hl.format(w, tokens)
}

// Spans renders the merged view of a diff as HTML. Deleted and inserted tokens are wrapped in
// spans with the classes hl-del and hl-ins.
func Spans(edits []diff.Edit) template.HTML {
	var sb strings.Builder
	for i := 0; i < len(edits); {
		// Consecutive tokens of the same kind share a span.
		j := i + 1
		for j < len(edits) && edits[j].Op == edits[i].Op {
			j++
		}
		cls := class[tokenType(edits[i].Op)]
		if cls != "" {
			fmt.Fprintf(&sb, "<span class=\"%s\">", cls)
		}
		for _, e := range edits[i:j] {
			sb.WriteString(html.EscapeString(e.String))
		}
		if cls != "" {
			sb.WriteString("</span>")
		}
		i = j
	}
	return template.HTML(sb.String())
}

func tokenType(op diff.Op) chroma.TokenType {
	switch op {
	case diff.Delete:
		return chroma.GenericDeleted
	case diff.Insert:
		return chroma.GenericInserted
	default:
		return chroma.Text
	}
}

type highlighter struct {
	formatterName, styleName string

	formatter chroma.Formatter
	style     *chroma.Style
}

func fromOptions(opts []Option) (*highlighter, error) {
	hl := &highlighter{
		formatterName: "terminal256",
		styleName:     "github",
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(hl)
	}

	var ok bool
	if hl.formatter, ok = formatters.Registry[hl.formatterName]; !ok {
		return nil, fmt.Errorf("unknown formatter %q", hl.formatterName)
	}
	if hl.style, ok = styles.Registry[hl.styleName]; !ok {
		return nil, fmt.Errorf("unknown style %q", hl.styleName)
	}
	return hl, nil
}

func (hl *highlighter) format(w io.Writer, tokens []chroma.Token) error {
	if err := hl.formatter.Format(w, hl.style, chroma.Literator(tokens...)); err != nil {
		return fmt.Errorf("formatting diff: %v", err)
	}
	return nil
}
