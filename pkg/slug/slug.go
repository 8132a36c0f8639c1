package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

	// Letters that do not decompose into base letter plus combining mark.
	special = strings.NewReplacer(
		"ı", "i", "ß", "ss", "æ", "ae", "ø", "o", "œ", "oe", "ł", "l", "đ", "d", "þ", "th",
	)
)

// Generate turns name into a lowercase, hyphen-separated ASCII path segment.
//
//	"Kadın Giyim"      -> "kadin-giyim"
//	"Größe & Farbe"    -> "grosse-farbe"
//	"  Hello   World!" -> "hello-world"
func Generate(name string) string {
	s := special.Replace(strings.ToLower(strings.TrimSpace(name)))

	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if out, _, err := transform.String(t, s); err == nil {
		s = out
	}

	return strings.Trim(nonAlnum.ReplaceAllString(s, "-"), "-")
}

// Path joins the slugs of segments with "/", dropping empty ones.
func Path(segments ...string) string {
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		if s := Generate(seg); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "/")
}
