package fetch

import (
	"crypto/sha256"
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// stripper removes every HTML tag; content arrives from feeds with markup
// embedded in descriptions.
var stripper = bluemonday.StrictPolicy()

// NormalizeText strips markup, unescapes entities, and collapses whitespace.
func NormalizeText(s string) string {
	s = stripper.Sanitize(s)
	s = html.UnescapeString(s)
	return strings.Join(strings.Fields(s), " ")
}

// Checksum returns the content hash used to detect exact duplicates across
// re-normalization.
func Checksum(text string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(text)))
}
