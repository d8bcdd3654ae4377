// Package markup provides ways to mark changed tokens for different output media.
package markup

import (
	"fmt"
	"html"
	"maps"
	"slices"

	"chat.znkr.io/editdiff/diff"
	"github.com/fatih/color"
)

// HTML wraps changed tokens in <s> and <b> without escaping them. Use [EscapedHTML] when the
// token text isn't trusted.
var HTML = diff.HTML

// EscapedHTML wraps changed tokens in <s> and <b> and escapes the text of all changed tokens.
// Unchanged tokens must be escaped by the caller, see [Escape].
var EscapedHTML diff.Markup = diff.MarkupFunc(func(side diff.Side, text string) string {
	return diff.HTML.Changed(side, html.EscapeString(text))
})

// Markdown uses GitHub flavored strikethrough and strong emphasis.
var Markdown diff.Markup = diff.MarkupFunc(func(side diff.Side, text string) string {
	if side == diff.Original {
		return "~~" + text + "~~"
	}
	return "**" + text + "**"
})

// Plain uses the same brackets as wdiff(1).
var Plain diff.Markup = diff.MarkupFunc(func(side diff.Side, text string) string {
	if side == diff.Original {
		return "[-" + text + "-]"
	}
	return "{+" + text + "+}"
})

var (
	deleted  = color.New(color.FgRed, color.CrossedOut)
	inserted = color.New(color.FgGreen, color.Bold)
)

// Terminal uses ANSI escape codes. Colors are disabled when color.NoColor is set, in that case
// changed tokens aren't marked at all.
var Terminal diff.Markup = diff.MarkupFunc(func(side diff.Side, text string) string {
	if side == diff.Original {
		return deleted.Sprint(text)
	}
	return inserted.Sprint(text)
})

var byName = map[string]diff.Markup{
	"html":     HTML,
	"html-esc": EscapedHTML,
	"markdown": Markdown,
	"plain":    Plain,
	"terminal": Terminal,
}

// ByName returns the markup registered under name.
func ByName(name string) (diff.Markup, error) {
	m, ok := byName[name]
	if !ok {
		return nil, fmt.Errorf("unknown markup %q, must be one of %v", name, Names())
	}
	return m, nil
}

// Names returns the names of all markups.
func Names() []string {
	return slices.Sorted(maps.Keys(byName))
}

// Escape renders one side of r for an HTML page: all token text is escaped and changed tokens
// are marked with <s> or <b>.
func Escape(r *diff.Result, side diff.Side) string {
	escaped := make([]string, len(r.Tokens(side)))
	for i, tok := range r.Tokens(side) {
		escaped[i] = html.EscapeString(tok)
	}
	return diff.Render(escaped, r.Alignment, side)
}
