package domain

import (
	"regexp"
	"strings"
)

// nameSeparators matches runs of characters that are equivalent in package
// names across ecosystems (PEP 503 normalisation).
var nameSeparators = regexp.MustCompile(`[-_.]+`)

// NormalizeName canonicalises a package name so that native and
// foreign-ecosystem spellings of the same package collide. Names are
// lowercased and runs of `-`, `_` and `.` collapse to a single dash,
// following the PEP 503 rules that pip applies.
func NormalizeName(name string) string {
	return nameSeparators.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
}
