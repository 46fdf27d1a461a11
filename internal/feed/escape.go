package feed

import "strings"

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

// EscapeHTML neutralizes the five HTML-significant characters in untrusted text.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}
