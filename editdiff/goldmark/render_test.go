package goldmark

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "empty",
			in:   "",
			want: "",
		},
		{
			name: "simple_paragraph",
			in:   "Hello, world!",
			want: "<p>Hello, world!</p>\n",
		},
		{
			name: "emphasis_and_strikethrough",
			in:   "I *really* like ~~cats~~ dogs.",
			want: "<p>I <em>really</em> like <del>cats</del> dogs.</p>\n",
		},
		{
			name: "hard_wraps",
			in:   "first\nsecond",
			want: "<p>first<br>\nsecond</p>\n",
		},
		{
			name: "raw_html_is_omitted",
			in:   "<script>alert(1)</script>",
			want: "<!-- raw HTML omitted -->\n",
		},
		{
			name: "linkify",
			in:   "see https://znkr.io",
			want: "<p>see <a href=\"https://znkr.io\">https://znkr.io</a></p>\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Render(tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, string(got)); diff != "" {
				t.Errorf("Render() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
