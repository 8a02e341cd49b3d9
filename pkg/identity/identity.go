// Package identity derives stable identifiers and URL slugs for catalogue
// entries.
//
// All functions are pure. [ComputeID] depends only on its inputs, so the
// same repository keeps the same ID across runs and machines. Slug
// assignment is deterministic given a fixed input order: the merge stage
// owns a [SlugSet] and claims slugs from it in final sort order.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	// IDLength is the number of hex characters kept from the digest.
	IDLength = 16

	// MaxSlugLength caps the length of a single slugified component.
	MaxSlugLength = 50

	// fallbackSlug is used when a name has no slug-safe characters at all.
	fallbackSlug = "skill"
)

// ComputeID returns the content-derived identifier of a repository or of a
// sub-path within it.
func ComputeID(fullName, subPath string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(fullName + ":" + subPath)))
	return hex.EncodeToString(sum[:])[:IDLength]
}

var (
	slugStrip    = regexp.MustCompile(`[^a-z0-9_\s-]`)
	slugCollapse = regexp.MustCompile(`[\s_-]+`)
)

// Slugify converts free text to a lowercase, hyphen-separated slug of at most
// [MaxSlugLength] characters. Accented letters are folded to their base
// letter; any other character outside [a-z0-9] is dropped. The result is
// empty when nothing slug-safe remains.
func Slugify(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	s = foldDiacritics(s)
	s = slugStrip.ReplaceAllString(s, "")
	s = slugCollapse.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > MaxSlugLength {
		s = strings.TrimRight(s[:MaxSlugLength], "-")
	}
	return s
}

func foldDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// SlugSet is the set of slugs already claimed within one snapshot.
type SlugSet map[string]struct{}

// NewSlugSet returns an empty set.
func NewSlugSet() SlugSet { return SlugSet{} }

// Has reports whether slug is taken.
func (s SlugSet) Has(slug string) bool {
	_, ok := s[slug]
	return ok
}

// Add marks slug as taken.
func (s SlugSet) Add(slug string) { s[slug] = struct{}{} }

// Claim picks a free slug for (name, author) with [AssignUniqueSlug] and
// records it in the set.
func (s SlugSet) Claim(name, author string) string {
	slug := AssignUniqueSlug(name, author, s)
	s.Add(slug)
	return slug
}

// AssignUniqueSlug returns a slug for name that is not in existing. It tries
// the plain name, then author-name, then author-name-2, -3 and so on. The set
// is not modified.
func AssignUniqueSlug(name, author string, existing SlugSet) string {
	base := Slugify(name)
	if base == "" {
		base = fallbackSlug
	}
	if !existing.Has(base) {
		return base
	}

	prefixed := base
	if a := Slugify(author); a != "" {
		prefixed = a + "-" + base
	}
	if !existing.Has(prefixed) {
		return prefixed
	}

	for n := 2; ; n++ {
		slug := fmt.Sprintf("%s-%d", prefixed, n)
		if !existing.Has(slug) {
			return slug
		}
	}
}

var (
	namePrefix = regexp.MustCompile(`(?i)^(claude-|cc-|skill-|skills-)`)
	nameSuffix = regexp.MustCompile(`(?i)(-skill|-skills|-claude|-code)$`)
)

// ExtractSkillName turns a repository or directory name into a display
// name: common "claude-"/"skill-" affixes are removed, hyphens become
// spaces, and each word is capitalized.
func ExtractSkillName(repoName string) string {
	s := namePrefix.ReplaceAllString(repoName, "")
	s = nameSuffix.ReplaceAllString(s, "")
	s = strings.TrimSpace(strings.ReplaceAll(s, "-", " "))
	if s == "" {
		return repoName
	}
	return cases.Title(language.Und, cases.NoLower).String(s)
}
