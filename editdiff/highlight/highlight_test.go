package highlight

import (
	"bytes"
	"strings"
	"testing"

	"chat.znkr.io/editdiff/diff"
	"github.com/google/go-cmp/cmp"
)

func TestSpans(t *testing.T) {
	tests := []struct {
		name     string
		original string
		edited   string
		want     string
	}{
		{
			name: "empty",
		},
		{
			name:     "unchanged",
			original: "Hi there.",
			edited:   "Hi there.",
			want:     "Hi there.",
		},
		{
			name:     "replaced",
			original: "I like cats.",
			edited:   "I like dogs.",
			want:     `I like <span class="hl-del">cats</span><span class="hl-ins">dogs</span>.`,
		},
		{
			name:     "runs-share-a-span",
			original: "Hello",
			edited:   "Hello dear world",
			want:     `Hello<span class="hl-ins"> dear world</span>`,
		},
		{
			name:     "escaped",
			original: "a < b",
			edited:   "a > b",
			want:     `a <span class="hl-del">&lt;</span><span class="hl-ins">&gt;</span> b`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Spans(diff.Compare(tt.original, tt.edited).Edits())
			if diff := cmp.Diff(tt.want, string(got)); diff != "" {
				t.Errorf("Spans result is different (-want, +got):\n%s", diff)
			}
		})
	}
}

func TestSide_Noop(t *testing.T) {
	r := diff.Compare("I like cats.", "I like dogs.")
	for _, side := range []diff.Side{diff.Original, diff.Edited} {
		var buf bytes.Buffer
		if err := Side(&buf, r.Segments(side), side, Formatter("noop")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got, want := buf.String(), strings.Join(r.Tokens(side), ""); got != want {
			t.Errorf("Side(%v) = %q, want %q", side, got, want)
		}
	}
}

func TestUnified_Terminal(t *testing.T) {
	r := diff.Compare("I like cats.", "I like dogs.")
	var buf bytes.Buffer
	if err := Unified(&buf, r.Edits(), Formatter("terminal16m"), Style("monokai")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	for _, s := range []string{"cats", "dogs", "\x1b["} {
		if !strings.Contains(out, s) {
			t.Errorf("output %q doesn't contain %q", out, s)
		}
	}
}

func TestOptions_Unknown(t *testing.T) {
	var buf bytes.Buffer
	if err := Unified(&buf, nil, Formatter("crayon")); err == nil {
		t.Error("expected error for unknown formatter, got nil")
	}
	if err := Unified(&buf, nil, Style("paisley")); err == nil {
		t.Error("expected error for unknown style, got nil")
	}
}
