// Package diff computes token level differences between two revisions of a text and renders
// them with change markers.
//
// A text is split into words and separator characters by [Tokenize]. Two token sequences are
// aligned along a longest common subsequence by [Align]; tokens that are not part of the
// alignment are the ones that changed. [Render] re-serializes one side of the alignment with
// every changed token wrapped in a marker: struck through on the original side and emphasized
// on the edited side.
//
// All functions in this package are pure and safe for concurrent use.
package diff

import "strconv"

// Op describes an edit operation.
type Op int

const (
	Match  Op = iota // Token is present in both revisions
	Delete           // Token of the original revision that's missing in the edited one
	Insert           // Token of the edited revision that's missing in the original one
)

var opNames = [...]string{"match", "delete", "insert"}

func (op Op) String() string {
	if op < 0 || int(op) >= len(opNames) {
		return "Op(" + strconv.Itoa(int(op)) + ")"
	}
	return opNames[op]
}

// Edit describes a single token of the merged view of a diff.
type Edit struct {
	Op     Op
	String string
}

// Result is the diff of two texts.
type Result struct {
	Original  []string  // Tokens of the original text
	Edited    []string  // Tokens of the edited text
	Alignment Alignment // Alignment of Original and Edited
}

// Compare tokenizes original and edited and aligns the resulting token sequences.
func Compare(original, edited string) *Result {
	x := Tokenize(original)
	y := Tokenize(edited)
	return &Result{
		Original:  x,
		Edited:    y,
		Alignment: Align(x, y),
	}
}

// Diff is a shortcut for [Compare] followed by rendering both sides with [HTML].
func Diff(original, edited string) (renderedOriginal, renderedEdited string) {
	r := Compare(original, edited)
	return r.Render(Original, HTML), r.Render(Edited, HTML)
}

// Tokens returns the token sequence of the given side.
func (r *Result) Tokens(side Side) []string {
	switch side {
	case Original:
		return r.Original
	case Edited:
		return r.Edited
	default:
		panic("invalid side: " + side.String())
	}
}

// Segments returns the tagged tokens of the given side.
func (r *Result) Segments(side Side) []Segment {
	return Segments(r.Tokens(side), r.Alignment, side)
}

// Render renders the given side using m to mark changed tokens.
func (r *Result) Render(side Side, m Markup) string {
	return RenderMarkup(r.Tokens(side), r.Alignment, side, m)
}

// Edits returns the merged view of the diff.
func (r *Result) Edits() []Edit {
	return Edits(r.Original, r.Edited, r.Alignment)
}

// Changed reports whether any token differs between both revisions.
func (r *Result) Changed() bool {
	return len(r.Alignment) != len(r.Original) || len(r.Alignment) != len(r.Edited)
}

// Edits merges x and y into a single stream of edits using the alignment a. Within a run of
// changes, deletions come before insertions.
func Edits(x, y []string, a Alignment) []Edit {
	edits := make([]Edit, 0, len(x)+len(y)-len(a))
	s, t := 0, 0
	for _, p := range a {
		for ; s < p.X; s++ {
			edits = append(edits, Edit{Delete, x[s]})
		}
		for ; t < p.Y; t++ {
			edits = append(edits, Edit{Insert, y[t]})
		}
		edits = append(edits, Edit{Match, x[s]})
		s++
		t++
	}
	for ; s < len(x); s++ {
		edits = append(edits, Edit{Delete, x[s]})
	}
	for ; t < len(y); t++ {
		edits = append(edits, Edit{Insert, y[t]})
	}
	return edits
}
