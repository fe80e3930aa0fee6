// Package version orders artifact versions and matches them against version
// ranges.
//
// Ordering is delegated to github.com/Masterminds/semver/v3 whenever both
// sides parse as (loose) semantic versions. Versions that do not parse, such
// as four-component releases or "r09"-style tags, fall back to a
// segment-by-segment comparison so every version string has a total order.
//
// Two range notations are understood:
//
//   - Maven interval notation: "[1.0,2.0)", "(,1.0]", "[1.5]", "[1.0,)" and
//     unions such as "[1,2),[3,4)".
//   - Semver constraints: "^1.2", "~1.4", ">=1.0.0 <2.0.0", "1.x || 2.x".
//
// Any other expression is a plain (soft) version that names itself.
package version

import (
	"regexp"
	"slices"
	"strconv"
	"strings"

	mm "github.com/Masterminds/semver/v3"
)

// SnapshotQualifier marks a moving development version.
const SnapshotQualifier = "SNAPSHOT"

// Version is a parsed version string. The zero value sorts before everything.
type Version struct {
	raw string
	sv  *mm.Version
}

// Parse parses raw. Parsing never fails: unparseable versions keep their raw
// form and use the fallback ordering.
func Parse(raw string) Version {
	raw = strings.TrimSpace(raw)
	sv, err := mm.NewVersion(raw)
	if err != nil {
		return Version{raw: raw}
	}
	return Version{raw: raw, sv: sv}
}

// String returns the version exactly as it was given to Parse.
func (v Version) String() string { return v.raw }

// IsSemver reports whether the version parsed as a semantic version.
func (v Version) IsSemver() bool { return v.sv != nil }

// IsSnapshot reports whether v is a snapshot, either symbolic
// ("1.0-SNAPSHOT") or timestamped ("1.0-20110101.123456-1").
func (v Version) IsSnapshot() bool {
	return strings.HasSuffix(v.raw, "-"+SnapshotQualifier) || snapshotRe.MatchString(v.raw)
}

// Compare returns -1, 0 or 1 when a is older than, equal to or newer than b.
// "1.0" and "1.0.0" compare equal.
func Compare(a, b Version) int {
	if a.sv != nil && b.sv != nil {
		return a.sv.Compare(b.sv)
	}
	return compareSegments(a.raw, b.raw)
}

// Less reports whether a sorts before b.
func Less(a, b Version) bool { return Compare(a, b) < 0 }

// Sort sorts raw version strings in ascending order.
func Sort(versions []string) {
	slices.SortStableFunc(versions, func(a, b string) int {
		return Compare(Parse(a), Parse(b))
	})
}

// Highest returns the newest of versions, or "" for an empty list.
func Highest(versions []string) string {
	var best string
	for i, v := range versions {
		if i == 0 || Compare(Parse(v), Parse(best)) > 0 {
			best = v
		}
	}
	return best
}

var snapshotRe = regexp.MustCompile(`^(.*)-(\d{8}\.\d{6})-(\d+)$`)

// BaseVersion normalizes a timestamped snapshot to its symbolic form:
// "1.0-20110101.123456-1" becomes "1.0-SNAPSHOT". Other versions are
// returned unchanged.
func BaseVersion(raw string) string {
	if m := snapshotRe.FindStringSubmatch(raw); m != nil {
		return m[1] + "-" + SnapshotQualifier
	}
	return raw
}

// compareSegments orders versions that are not semver. Numeric segments
// compare numerically and sort after textual qualifiers at the same
// position, so "1.0.0.1" > "1.0.0.0" and "1.0" > "1.0-beta".
func compareSegments(a, b string) int {
	as, bs := segments(a), segments(b)
	for i := range max(len(as), len(bs)) {
		if i >= len(as) {
			return trailing(bs[i:])
		}
		if i >= len(bs) {
			return -trailing(as[i:])
		}
		if c := compareSegment(as[i], bs[i]); c != 0 {
			return c
		}
	}
	return 0
}

// trailing decides the order when one version is a prefix of the other.
// Extra numeric segments make the longer version newer; an extra qualifier
// makes it older ("1.0-beta" < "1.0").
func trailing(rest []string) int {
	for _, s := range rest {
		if n, err := strconv.Atoi(s); err == nil {
			if n == 0 {
				continue
			}
			return -1
		}
		return 1
	}
	return 0
}

func compareSegment(a, b string) int {
	an, aErr := strconv.Atoi(a)
	bn, bErr := strconv.Atoi(b)
	switch {
	case aErr == nil && bErr == nil:
		switch {
		case an < bn:
			return -1
		case an > bn:
			return 1
		}
		return 0
	case aErr == nil:
		return 1
	case bErr == nil:
		return -1
	}
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

func segments(v string) []string {
	return strings.FieldsFunc(v, func(r rune) bool { return r == '.' || r == '-' || r == '_' })
}
