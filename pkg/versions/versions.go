// Package versions compares dataset release tokens such as "8.0", "11.2" or
// "7.0-beta".
//
// Tokens are ordered component-wise as dot-separated integers, never
// lexically: "11.0" sorts above "9.0" and "2.0" above "1.12". Missing
// components count as zero, so "8" and "8.0" are equal. Anything after the
// numeric prefix is a pre-release suffix, which sorts below the bare release
// with the same numbers ("8.0-beta" < "8.0").
package versions

import (
	"slices"
	"strconv"
	"strings"
)

// DefaultPrereleaseMarkers are the substrings that flag a token as a
// pre-release when no markers are configured.
var DefaultPrereleaseMarkers = []string{"beta", "alpha", "rc"}

// Version is a parsed version token.
type Version struct {
	Raw    string
	Parts  []int
	Suffix string
}

// Parse splits a token into its numeric components and suffix.
// Parse never fails: a token with no leading digits has no parts and the whole
// token as its suffix.
func Parse(token string) Version {
	v := Version{Raw: token}
	rest := strings.TrimPrefix(strings.TrimSpace(token), "v")

	for rest != "" {
		end := 0
		for end < len(rest) && rest[end] >= '0' && rest[end] <= '9' {
			end++
		}
		if end == 0 {
			break
		}
		n, err := strconv.Atoi(rest[:end])
		if err != nil {
			break
		}
		v.Parts = append(v.Parts, n)
		rest = rest[end:]
		if len(rest) > 1 && rest[0] == '.' && rest[1] >= '0' && rest[1] <= '9' {
			rest = rest[1:]
			continue
		}
		break
	}
	v.Suffix = strings.TrimLeft(rest, ".-_+")
	return v
}

// Prerelease reports whether the version carries a non-numeric suffix.
func (v Version) Prerelease() bool { return v.Suffix != "" }

// Compare returns -1, 0 or 1 as a is lower than, equal to, or higher than b.
func Compare(a, b string) int {
	return Parse(a).Compare(Parse(b))
}

// Compare orders v against o.
func (v Version) Compare(o Version) int {
	n := max(len(v.Parts), len(o.Parts))
	for i := range n {
		x, y := part(v.Parts, i), part(o.Parts, i)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
	}
	switch {
	case v.Suffix == o.Suffix:
		return 0
	case v.Suffix == "":
		return 1
	case o.Suffix == "":
		return -1
	}
	return strings.Compare(v.Suffix, o.Suffix)
}

func part(p []int, i int) int {
	if i < len(p) {
		return p[i]
	}
	return 0
}

// Newer reports whether a is strictly higher than b.
func Newer(a, b string) bool { return Compare(a, b) > 0 }

// Sort orders tokens ascending in place.
func Sort(tokens []string) {
	slices.SortStableFunc(tokens, Compare)
}

// Latest returns the highest token, or "" for an empty slice.
func Latest(tokens []string) string {
	if len(tokens) == 0 {
		return ""
	}
	return slices.MaxFunc(tokens, Compare)
}

// IsPrerelease reports whether token contains any of markers
// (case-insensitive). An empty markers slice uses [DefaultPrereleaseMarkers].
func IsPrerelease(token string, markers []string) bool {
	if len(markers) == 0 {
		markers = DefaultPrereleaseMarkers
	}
	lower := strings.ToLower(token)
	for _, m := range markers {
		if m != "" && strings.Contains(lower, strings.ToLower(m)) {
			return true
		}
	}
	return false
}
