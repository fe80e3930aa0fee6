package version

import (
	"fmt"
	"strings"

	mm "github.com/Masterminds/semver/v3"
)

// Range is a parsed version range.
type Range struct {
	expr       string
	intervals  []interval
	constraint *mm.Constraints
}

type bound struct {
	v         Version
	inclusive bool
	set       bool
}

type interval struct {
	lower, upper bound
}

// IsRange reports whether expr is a range rather than a plain version.
func IsRange(expr string) bool {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return false
	}
	if expr[0] == '[' || expr[0] == '(' {
		return true
	}
	return isConstraint(expr)
}

func isConstraint(expr string) bool {
	return strings.ContainsAny(expr, "^~<>=*|, ") || strings.HasSuffix(expr, ".x")
}

// ParseRange parses a Maven interval expression or a semver constraint.
func ParseRange(expr string) (Range, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return Range{}, fmt.Errorf("version: empty range")
	}
	if expr[0] != '[' && expr[0] != '(' {
		c, err := mm.NewConstraint(expr)
		if err != nil {
			return Range{}, fmt.Errorf("version: parse constraint %q: %w", expr, err)
		}
		return Range{expr: expr, constraint: c}, nil
	}

	r := Range{expr: expr}
	rest := expr
	for rest != "" {
		if rest[0] != '[' && rest[0] != '(' {
			return Range{}, fmt.Errorf("version: parse range %q: unexpected %q", expr, rest)
		}
		end := strings.IndexAny(rest, "])")
		if end < 0 {
			return Range{}, fmt.Errorf("version: parse range %q: unbounded interval", expr)
		}
		iv, err := parseInterval(rest[:end+1])
		if err != nil {
			return Range{}, fmt.Errorf("version: parse range %q: %w", expr, err)
		}
		r.intervals = append(r.intervals, iv)
		rest = strings.TrimLeft(strings.TrimSpace(rest[end+1:]), ",")
		rest = strings.TrimSpace(rest)
	}
	return r, nil
}

// MustParseRange is like ParseRange but panics on error.
func MustParseRange(expr string) Range {
	r, err := ParseRange(expr)
	if err != nil {
		panic(err)
	}
	return r
}

func parseInterval(s string) (interval, error) {
	lowerIncl := s[0] == '['
	upperIncl := s[len(s)-1] == ']'
	inner := strings.TrimSpace(s[1 : len(s)-1])

	lo, hi, found := strings.Cut(inner, ",")
	if !found {
		if !lowerIncl || !upperIncl || inner == "" {
			return interval{}, fmt.Errorf("single version %q must be written [v]", s)
		}
		v := Parse(inner)
		return interval{
			lower: bound{v: v, inclusive: true, set: true},
			upper: bound{v: v, inclusive: true, set: true},
		}, nil
	}
	if strings.Contains(hi, ",") {
		return interval{}, fmt.Errorf("interval %q has more than two bounds", s)
	}

	var iv interval
	if lo = strings.TrimSpace(lo); lo != "" {
		iv.lower = bound{v: Parse(lo), inclusive: lowerIncl, set: true}
	}
	if hi = strings.TrimSpace(hi); hi != "" {
		iv.upper = bound{v: Parse(hi), inclusive: upperIncl, set: true}
	}
	if iv.lower.set && iv.upper.set && Compare(iv.lower.v, iv.upper.v) > 0 {
		return interval{}, fmt.Errorf("interval %q has lower bound above upper bound", s)
	}
	return iv, nil
}

// String returns the original expression.
func (r Range) String() string { return r.expr }

// Contains reports whether v lies inside the range.
func (r Range) Contains(v Version) bool {
	if r.constraint != nil {
		return v.sv != nil && r.constraint.Check(v.sv)
	}
	for _, iv := range r.intervals {
		if iv.contains(v) {
			return true
		}
	}
	return false
}

func (iv interval) contains(v Version) bool {
	if iv.lower.set {
		c := Compare(v, iv.lower.v)
		if c < 0 || (c == 0 && !iv.lower.inclusive) {
			return false
		}
	}
	if iv.upper.set {
		c := Compare(v, iv.upper.v)
		if c > 0 || (c == 0 && !iv.upper.inclusive) {
			return false
		}
	}
	return true
}

// Filter returns the versions inside r in ascending order.
func (r Range) Filter(versions []string) []string {
	var out []string
	for _, raw := range versions {
		if r.Contains(Parse(raw)) {
			out = append(out, raw)
		}
	}
	Sort(out)
	return out
}
