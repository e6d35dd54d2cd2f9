package catalog

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer cleans a course's rich-text block before it is rendered.
// Normalized courses carry that block exactly as the document had it.
type Sanitizer struct {
	richText  *bluemonday.Policy
	plainText *bluemonday.Policy
}

func NewSanitizer() *Sanitizer {
	plainText := bluemonday.StrictPolicy()
	plainText.AddSpaceWhenStrippingTag(true)

	return &Sanitizer{
		richText:  bluemonday.UGCPolicy(),
		plainText: plainText,
	}
}

// RichText keeps safe formatting markup and drops scripts, handlers and
// unsafe URLs.
func (s *Sanitizer) RichText(markup string) string {
	return strings.TrimSpace(s.richText.Sanitize(markup))
}

// PlainText strips all markup and collapses whitespace.
func (s *Sanitizer) PlainText(markup string) string {
	text := html.UnescapeString(s.plainText.Sanitize(markup))
	return strings.Join(strings.Fields(text), " ")
}
