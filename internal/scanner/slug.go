package scanner

import (
	"regexp"
	"strings"
)

// Latvian diacritics map onto their base letters before the ASCII pass so
// "Kopštāle" becomes "kopstale", not "kop-t-le".
// Input is lowercased first, so the table only needs the lowercase alphabet.
var latvianTranslit = map[rune]rune{
	'ā': 'a', 'č': 'c', 'ē': 'e', 'ģ': 'g', 'ī': 'i', 'ķ': 'k',
	'ļ': 'l', 'ņ': 'n', 'š': 's', 'ū': 'u', 'ž': 'z',
}

var (
	slugInvalidRun = regexp.MustCompile(`[^a-z0-9]+`)
	slugPattern    = regexp.MustCompile(`^[a-z0-9-]+$`)
)

// Slug length bounds for a valid subject record.
const (
	SlugMinLen = 2
	SlugMaxLen = 100
)

// Slugify derives a URL-safe identifier from a display name. It is total and
// deterministic; an empty input yields an empty slug, which record validation
// rejects downstream.
func Slugify(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range strings.ToLower(name) {
		if mapped, ok := latvianTranslit[r]; ok {
			b.WriteRune(mapped)
			continue
		}
		b.WriteRune(r)
	}
	slug := slugInvalidRun.ReplaceAllString(b.String(), "-")
	return strings.Trim(slug, "-")
}

// ValidSlug reports whether slug satisfies the index invariant.
func ValidSlug(slug string) bool {
	if len(slug) < SlugMinLen || len(slug) > SlugMaxLen {
		return false
	}
	return slugPattern.MatchString(slug)
}
