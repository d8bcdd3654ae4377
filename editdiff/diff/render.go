package diff

import (
	"strconv"
	"strings"
)

// Side selects one of the two revisions of a diff.
type Side int

const (
	Original Side = iota // The revision before the edit
	Edited               // The revision after the edit
)

func (s Side) String() string {
	switch s {
	case Original:
		return "original"
	case Edited:
		return "edited"
	default:
		return "Side(" + strconv.Itoa(int(s)) + ")"
	}
}

func (s Side) coord(p Pair) int {
	if s == Original {
		return p.X
	}
	return p.Y
}

// Segment is a token of one side of a diff, tagged with whether it's part of the change.
type Segment struct {
	Text    string
	Changed bool
}

// Segments tags every token of one side of an alignment. Tokens whose index isn't part of a
// (on the given side) are changed.
func Segments(tokens []string, a Alignment, side Side) []Segment {
	if len(tokens) == 0 {
		return nil
	}
	segs := make([]Segment, 0, len(tokens))
	k := 0
	for i, tok := range tokens {
		if k < len(a) && side.coord(a[k]) == i {
			segs = append(segs, Segment{tok, false})
			k++
		} else {
			segs = append(segs, Segment{tok, true})
		}
	}
	return segs
}

// Markup decorates changed tokens.
type Markup interface {
	// Changed returns text marked as changed on the given side.
	Changed(side Side, text string) string
}

// MarkupFunc adapts a function to the [Markup] interface.
type MarkupFunc func(side Side, text string) string

func (f MarkupFunc) Changed(side Side, text string) string { return f(side, text) }

// Tags is a markup that wraps changed tokens in an HTML element, one per side. The token text
// is written as is.
type Tags struct {
	Original, Edited string
}

func (t Tags) Changed(side Side, text string) string {
	tag := t.Original
	if side == Edited {
		tag = t.Edited
	}
	return "<" + tag + ">" + text + "</" + tag + ">"
}

// HTML strikes through changed tokens of the original and marks changed tokens of the edited
// side as bold.
var HTML Markup = Tags{Original: "s", Edited: "b"}

// Render renders one side of an alignment using [HTML].
func Render(tokens []string, a Alignment, side Side) string {
	return RenderMarkup(tokens, a, side, HTML)
}

// RenderMarkup concatenates tokens, changed tokens are decorated by m.
func RenderMarkup(tokens []string, a Alignment, side Side, m Markup) string {
	var sb strings.Builder
	for _, seg := range Segments(tokens, a, side) {
		if seg.Changed {
			sb.WriteString(m.Changed(side, seg.Text))
		} else {
			sb.WriteString(seg.Text)
		}
	}
	return sb.String()
}
