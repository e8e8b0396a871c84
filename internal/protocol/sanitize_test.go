package protocol

import (
	"html"
	"testing"
)

func TestSanitizeHTMLEscapesSignificantCharacters(t *testing.T) {
	got := SanitizeHTML(`<script>alert("x&y")</script>`)
	want := "&lt;script&gt;alert(&quot;x&amp;y&quot;)&lt;&#x2F;script&gt;"
	if got != want {
		t.Errorf("SanitizeHTML = %q, want %q", got, want)
	}
}

func TestSanitizeHTMLRoundTrip(t *testing.T) {
	inputs := []string{
		"<script>",
		`it's a "test" & more`,
		"path/to/thing",
		"plain text stays plain",
		"",
	}
	for _, in := range inputs {
		escaped := SanitizeHTML(in)
		if back := html.UnescapeString(escaped); back != in {
			t.Errorf("round trip of %q: escaped %q, unescaped %q", in, escaped, back)
		}
	}
}

func TestSanitizeHTMLLeavesSafeContent(t *testing.T) {
	in := "hello world 123 _-+=@#"
	if got := SanitizeHTML(in); got != in {
		t.Errorf("SanitizeHTML(%q) = %q, want unchanged", in, got)
	}
}
