package domain

import (
	"strconv"
	"strings"
)

// CompareVersions orders two version strings using the conda version
// scheme. It returns -1, 0 or 1 when a sorts before, equal to or after b.
//
// The scheme is a superset of the common numeric-dotted form:
//
//   - an optional "N!" epoch prefix dominates the rest of the version
//   - components are split on ".", "-" and "_" and then into numeric and
//     alphabetic runs, so "1.0a1" orders as [1, [0, "a", 1]]
//   - shorter versions are padded with zeros, so "1.0" == "1.0.0"
//   - alphabetic parts sort before numeric ones ("1.0a1" < "1.0"), with
//     two special cases: "dev" sorts before every other part and "post"
//     sorts after every other part
//   - a "+local" suffix is compared the same way, but only as a tie-break
//
// This is not semver; conda versions like "1.0.post1" or "2024.0_1" have
// no semver equivalent.
func CompareVersions(a, b string) int {
	av := parseVersion(a)
	bv := parseVersion(b)

	if av.epoch != bv.epoch {
		return compareInt(av.epoch, bv.epoch)
	}
	if c := compareComponents(av.main, bv.main); c != 0 {
		return c
	}
	// A local suffix sorts after the same version without one.
	switch {
	case len(av.local) == 0 && len(bv.local) == 0:
		return 0
	case len(av.local) == 0:
		return -1
	case len(bv.local) == 0:
		return 1
	default:
		return compareComponents(av.local, bv.local)
	}
}

// versionToken is one numeric or alphabetic run within a version component.
type versionToken struct {
	num   int64
	str   string
	isNum bool
}

// zeroToken pads missing components and parts.
var zeroToken = versionToken{num: 0, isNum: true}

type parsedVersion struct {
	epoch int64
	main  [][]versionToken
	local [][]versionToken
}

func parseVersion(v string) parsedVersion {
	v = strings.ToLower(strings.TrimSpace(v))

	var p parsedVersion
	if bang := strings.IndexByte(v, '!'); bang >= 0 {
		if n, err := strconv.ParseInt(v[:bang], 10, 64); err == nil {
			p.epoch = n
		}
		v = v[bang+1:]
	}

	main := v
	if plus := strings.IndexByte(v, '+'); plus >= 0 {
		main = v[:plus]
		p.local = splitComponents(v[plus+1:])
	}
	p.main = splitComponents(main)
	return p
}

func splitComponents(v string) [][]versionToken {
	if v == "" {
		return nil
	}
	fields := strings.FieldsFunc(v, func(r rune) bool {
		return r == '.' || r == '-' || r == '_'
	})
	components := make([][]versionToken, 0, len(fields))
	for _, f := range fields {
		components = append(components, splitRuns(f))
	}
	return components
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// splitRuns breaks a component into alternating numeric and alphabetic
// tokens: "0a1" becomes [0, "a", 1].
func splitRuns(component string) []versionToken {
	var tokens []versionToken
	start := 0
	for start < len(component) {
		end := start
		numeric := isDigit(component[start])
		for end < len(component) && isDigit(component[end]) == numeric {
			end++
		}
		run := component[start:end]
		if numeric {
			n, err := strconv.ParseInt(run, 10, 64)
			if err != nil {
				// Numeric run too large for int64; fall back to string
				// ordering which still yields a deterministic result.
				tokens = append(tokens, versionToken{str: run})
			} else {
				tokens = append(tokens, versionToken{num: n, isNum: true})
			}
		} else {
			tokens = append(tokens, versionToken{str: run})
		}
		start = end
	}
	if len(tokens) == 0 {
		tokens = append(tokens, zeroToken)
	}
	return tokens
}

func compareComponents(a, b [][]versionToken) int {
	n := max(len(a), len(b))
	for i := 0; i < n; i++ {
		ca := []versionToken{zeroToken}
		cb := []versionToken{zeroToken}
		if i < len(a) {
			ca = a[i]
		}
		if i < len(b) {
			cb = b[i]
		}
		if c := compareTokenRuns(ca, cb); c != 0 {
			return c
		}
	}
	return 0
}

func compareTokenRuns(a, b []versionToken) int {
	n := max(len(a), len(b))
	for i := 0; i < n; i++ {
		ta := zeroToken
		tb := zeroToken
		if i < len(a) {
			ta = a[i]
		}
		if i < len(b) {
			tb = b[i]
		}
		if c := compareToken(ta, tb); c != 0 {
			return c
		}
	}
	return 0
}

func compareToken(a, b versionToken) int {
	switch {
	case a.isNum && b.isNum:
		return compareInt(a.num, b.num)
	case a.isNum:
		// Numbers sort after strings, except "post" which is an infinity.
		if b.str == "post" {
			return -1
		}
		return 1
	case b.isNum:
		if a.str == "post" {
			return 1
		}
		return -1
	default:
		return compareAlpha(a.str, b.str)
	}
}

func compareAlpha(a, b string) int {
	if a == b {
		return 0
	}
	// "dev" sorts before every other string, "post" after.
	switch {
	case a == "dev" || b == "post":
		return -1
	case b == "dev" || a == "post":
		return 1
	case a < b:
		return -1
	default:
		return 1
	}
}

func compareInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
