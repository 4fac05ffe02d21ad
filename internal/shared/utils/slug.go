package utils

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	slugInvalid = regexp.MustCompile(`[^a-z0-9-]+`)
	slugDashes  = regexp.MustCompile(`-+`)
)

// GenerateSlug turns a product or category name into a URL slug.
// "Café Grinder Pro 2" → "cafe-grinder-pro-2"
func GenerateSlug(input string) string {
	lower := strings.ToLower(RemoveDiacritics(input))
	hyphenated := strings.Join(strings.Fields(lower), "-")
	cleaned := slugInvalid.ReplaceAllString(hyphenated, "")
	return strings.Trim(slugDashes.ReplaceAllString(cleaned, "-"), "-")
}

// RemoveDiacritics strips combining marks after NFD decomposition.
func RemoveDiacritics(input string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, input)
	if err != nil {
		return input
	}
	return strings.NewReplacer("đ", "d", "Đ", "D", "ø", "o", "Ø", "O", "ß", "ss").Replace(out)
}
