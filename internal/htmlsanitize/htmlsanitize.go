// Package htmlsanitize cleans user-supplied rich text before it is stored or
// rendered.
package htmlsanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	ugc    = bluemonday.UGCPolicy()
	strict = bluemonday.StrictPolicy()
)

// Description keeps basic formatting markup and drops scripts, styles and
// event handlers.
func Description(input string) string {
	return strings.TrimSpace(ugc.Sanitize(input))
}

// PlainText strips all markup, for exports.
func PlainText(input string) string {
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(input)))
}
