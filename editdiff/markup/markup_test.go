package markup

import (
	"testing"

	"chat.znkr.io/editdiff/diff"
	"github.com/fatih/color"
	"github.com/google/go-cmp/cmp"
)

func TestMarkups(t *testing.T) {
	noColor := color.NoColor
	color.NoColor = false
	t.Cleanup(func() { color.NoColor = noColor })

	tests := []struct {
		name         string
		markup       string
		original     string
		edited       string
		wantOriginal string
		wantEdited   string
	}{
		{
			name:         "html",
			markup:       "html",
			original:     "I like <cats>.",
			edited:       "I like <dogs>.",
			wantOriginal: "I like <s><cats></s>.",
			wantEdited:   "I like <b><dogs></b>.",
		},
		{
			name:         "html-esc",
			markup:       "html-esc",
			original:     "I like <cats>.",
			edited:       "I like <dogs>.",
			wantOriginal: "I like <s>&lt;cats&gt;</s>.",
			wantEdited:   "I like <b>&lt;dogs&gt;</b>.",
		},
		{
			name:         "markdown",
			markup:       "markdown",
			original:     "I like cats.",
			edited:       "I like dogs.",
			wantOriginal: "I like ~~cats~~.",
			wantEdited:   "I like **dogs**.",
		},
		{
			name:         "plain",
			markup:       "plain",
			original:     "I like cats.",
			edited:       "I like dogs.",
			wantOriginal: "I like [-cats-].",
			wantEdited:   "I like {+dogs+}.",
		},
		{
			name:         "terminal",
			markup:       "terminal",
			original:     "I like cats.",
			edited:       "I like dogs.",
			wantOriginal: "I like \x1b[31;9mcats\x1b[0m.",
			wantEdited:   "I like \x1b[32;1mdogs\x1b[0m.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ByName(tt.markup)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			r := diff.Compare(tt.original, tt.edited)
			if diff := cmp.Diff(tt.wantOriginal, r.Render(diff.Original, m)); diff != "" {
				t.Errorf("rendered original is different (-want, +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantEdited, r.Render(diff.Edited, m)); diff != "" {
				t.Errorf("rendered edited is different (-want, +got):\n%s", diff)
			}
		})
	}
}

func TestByName_Unknown(t *testing.T) {
	if _, err := ByName("sparkles"); err == nil {
		t.Error("expected error, got nil")
	}
}

func TestNames(t *testing.T) {
	want := []string{"html", "html-esc", "markdown", "plain", "terminal"}
	if diff := cmp.Diff(want, Names()); diff != "" {
		t.Errorf("Names result is different (-want, +got):\n%s", diff)
	}
}

func TestEscape(t *testing.T) {
	r := diff.Compare(`a & b`, `a & "c"`)
	if got, want := Escape(r, diff.Original), "a &amp; <s>b</s>"; got != want {
		t.Errorf("Escape(Original) = %q, want %q", got, want)
	}
	if got, want := Escape(r, diff.Edited), "a &amp; <b>&#34;</b><b>c</b><b>&#34;</b>"; got != want {
		t.Errorf("Escape(Edited) = %q, want %q", got, want)
	}
}
