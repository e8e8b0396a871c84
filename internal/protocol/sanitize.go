package protocol

import "strings"

// htmlReplacer escapes the characters that carry meaning in HTML so
// stored content can be rendered verbatim. Escaping happens exactly
// once, before persistence; clients unescape for display.
var htmlReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
	"/", "&#x2F;",
)

// SanitizeHTML escapes HTML-significant characters in message content.
func SanitizeHTML(s string) string {
	return htmlReplacer.Replace(s)
}
