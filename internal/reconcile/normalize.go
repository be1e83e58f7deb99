package reconcile

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Normalizer maps a name to the key used for equality comparison.
type Normalizer func(string) string

// Identity compares names as they are. Used for file ids.
func Identity(s string) string {
	return s
}

// isSpace reports Unicode white space and the information separators
// U+001C..U+001F.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}

// Normalize canonicalizes a filename for comparison: NFC composition,
// surrounding whitespace trimmed, full Unicode lowercase. The result is
// never stored or used as a path.
func Normalize(name string) string {
	name = norm.NFC.String(name)
	name = strings.TrimFunc(name, isSpace)
	// cases.Caser keeps state and is not safe for concurrent use.
	return cases.Lower(language.Und).String(name)
}
