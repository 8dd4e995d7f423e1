// Package keygen derives stable menu item keys from display names.
package keygen

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Fallback is used when a name contains no usable characters.
const Fallback = "MENU_ITEM"

// Key converts a display name into an UPPER_SNAKE menu key.
// It NFD-normalizes, strips combining marks, uppercases, turns every run of
// separators into a single underscore and drops everything else.
func Key(name string) string {
	name = norm.NFD.String(name)

	var b strings.Builder
	pendingSep := false
	for _, r := range name {
		switch {
		case unicode.Is(unicode.Mn, r):
			continue
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(unicode.ToUpper(r))
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == '.' || r == '/':
			pendingSep = true
		}
	}

	if b.Len() == 0 {
		return Fallback
	}
	return b.String()
}

// Unique returns Key(name), or the first of Key(name)_2, Key(name)_3, ...
// that is not in taken.
func Unique(name string, taken map[string]bool) string {
	base := Key(name)
	if !taken[base] {
		return base
	}
	for n := 2; ; n++ {
		candidate := base + "_" + strconv.Itoa(n)
		if !taken[candidate] {
			return candidate
		}
	}
}

// Generator adapts Unique to the key generator port of the menu service.
type Generator struct{}

// Generate returns a key for name that does not collide with taken.
func (Generator) Generate(name string, taken map[string]bool) string {
	return Unique(name, taken)
}
