// internal/textnorm/textnorm.go

// Package textnorm folds question text into a lowercase, accent-free form so
// that French and English signal matching does not depend on typography.
package textnorm

import "strings"

var accentReplacer = strings.NewReplacer(
	"à", "a", "â", "a", "ä", "a",
	"é", "e", "è", "e", "ê", "e", "ë", "e",
	"î", "i", "ï", "i",
	"ô", "o", "ö", "o",
	"ù", "u", "û", "u", "ü", "u",
	"ç", "c",
	"œ", "oe",
	"’", "'",
)

// Fold lowercases s and strips the accents common in French livestock
// vocabulary ("mâle" -> "male", "mortalité" -> "mortalite").
func Fold(s string) string {
	return accentReplacer.Replace(strings.ToLower(s))
}

// Contains reports whether the folded haystack contains the folded needle.
func Contains(haystack, needle string) bool {
	return strings.Contains(Fold(haystack), Fold(needle))
}
