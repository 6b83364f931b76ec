// Package slug turns display names into URL handles and resolves
// collisions against existing handles.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Letters that do not decompose into a base letter plus a combining mark.
var specialLetters = strings.NewReplacer(
	"ł", "l",
	"ß", "ss",
	"ø", "o",
	"æ", "ae",
	"œ", "oe",
	"đ", "d",
	"ð", "d",
	"þ", "th",
)

// Make derives a slug from name: lower case ASCII letters and digits, with
// every other run of characters collapsed into a single '-'. Diacritics
// are dropped, so "Zażółć Gęślą" becomes "zazolc-gesla". The result may be
// empty when name holds no letters or digits.
func Make(name string) string {
	s := specialLetters.Replace(strings.ToLower(name))

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(t, s); err == nil {
		s = folded
	}

	var b strings.Builder
	b.Grow(len(s))
	dash := false
	for _, r := range s {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(r)
			continue
		}
		dash = true
	}

	return b.String()
}
