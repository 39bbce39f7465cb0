package recipe

import (
	"regexp"
	"sort"
	"strings"

	"github.com/gosimple/slug"
)

// whitespaceRegex matches one or more whitespace characters
var whitespaceRegex = regexp.MustCompile(`\s+`)

// NormalizeIngredient normalizes an ingredient string for comparison:
// 1. Trim leading/trailing whitespace
// 2. Lowercase
// 3. Collapse internal whitespace to single spaces
func NormalizeIngredient(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	s = whitespaceRegex.ReplaceAllString(s, " ")
	return s
}

// IngredientsEqual reports whether two ingredient lists contain the same
// items after normalization. Order is ignored; duplicates count.
func IngredientsEqual(a, b []string) bool {
	na := normalizeSorted(a)
	nb := normalizeSorted(b)
	if len(na) != len(nb) {
		return false
	}
	for i := range na {
		if na[i] != nb[i] {
			return false
		}
	}
	return true
}

// normalizeSorted normalizes each entry, drops blanks, and sorts.
func normalizeSorted(items []string) []string {
	out := make([]string, 0, len(items))
	for _, s := range items {
		n := NormalizeIngredient(s)
		if n != "" {
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return out
}

// Slug derives the filesystem-safe filename stem for a title: lowercase,
// non-alphanumeric runs collapsed to a single hyphen, trimmed of leading
// and trailing hyphens. Returns "" for titles with no usable characters;
// callers must treat that as an invalid title.
func Slug(title string) string {
	return slug.Make(title)
}
