package policy

import (
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/depcollect/pkg/artifact"
	"github.com/matzehuels/depcollect/pkg/collect"
)

// ScopeSelector drops transitive dependencies by scope. The dependencies
// listed in a request without a root are always selected; everything below
// a real dependency (the root included) is filtered.
type ScopeSelector struct {
	included   []string
	excluded   []string
	transitive bool
}

// NewScopeSelector excludes the given scopes from transitive dependencies.
func NewScopeSelector(excluded ...string) *ScopeSelector {
	return NewScopeFilter(nil, excluded)
}

// NewScopeFilter selects transitive dependencies whose scope is in included
// (all when empty) and not in excluded.
func NewScopeFilter(included, excluded []string) *ScopeSelector {
	return &ScopeSelector{included: sortedCopy(included), excluded: sortedCopy(excluded)}
}

func (s *ScopeSelector) Select(d artifact.Dependency) bool {
	if !s.transitive {
		return true
	}
	if len(s.included) > 0 && !slices.Contains(s.included, d.Scope) {
		return false
	}
	return !slices.Contains(s.excluded, d.Scope)
}

// DeriveChild turns transitive once a real dependency is being expanded.
func (s *ScopeSelector) DeriveChild(ctx collect.Context) collect.Selector {
	if s.transitive || ctx.Dependency == nil {
		return s
	}
	return &ScopeSelector{included: s.included, excluded: s.excluded, transitive: true}
}

func (s *ScopeSelector) PolicyKey() string {
	return strconv.FormatBool(s.transitive) + "|" + strings.Join(s.included, ",") + "|" + strings.Join(s.excluded, ",")
}

// OptionalSelector drops optional dependencies of dependencies, keeping
// optional dependencies declared directly by the root.
type OptionalSelector struct {
	depth int
}

func NewOptionalSelector() *OptionalSelector { return &OptionalSelector{} }

func (s *OptionalSelector) Select(d artifact.Dependency) bool {
	return s.depth < 2 || !d.Optional
}

func (s *OptionalSelector) DeriveChild(collect.Context) collect.Selector {
	if s.depth >= 2 {
		return s
	}
	return &OptionalSelector{depth: s.depth + 1}
}

func (s *OptionalSelector) PolicyKey() string { return strconv.Itoa(s.depth) }

// ExclusionSelector drops dependencies matched by an exclusion declared
// anywhere on the path from the root.
type ExclusionSelector struct {
	exclusions []artifact.Exclusion
}

func NewExclusionSelector(exclusions ...artifact.Exclusion) *ExclusionSelector {
	return &ExclusionSelector{exclusions: mergeExclusions(nil, exclusions)}
}

func (s *ExclusionSelector) Select(d artifact.Dependency) bool {
	for _, e := range s.exclusions {
		if e.Matches(d.Artifact) {
			return false
		}
	}
	return true
}

func (s *ExclusionSelector) DeriveChild(ctx collect.Context) collect.Selector {
	if ctx.Dependency == nil || len(ctx.Dependency.Exclusions) == 0 {
		return s
	}
	merged := mergeExclusions(s.exclusions, ctx.Dependency.Exclusions)
	if len(merged) == len(s.exclusions) {
		return s
	}
	return &ExclusionSelector{exclusions: merged}
}

func (s *ExclusionSelector) PolicyKey() string {
	keys := make([]string, len(s.exclusions))
	for i, e := range s.exclusions {
		keys[i] = e.String()
	}
	return strings.Join(keys, ",")
}

// mergeExclusions returns the union of a and b, sorted and deduplicated.
func mergeExclusions(a, b []artifact.Exclusion) []artifact.Exclusion {
	out := slices.Concat(a, b)
	slices.SortFunc(out, func(x, y artifact.Exclusion) int { return strings.Compare(x.String(), y.String()) })
	return slices.Compact(out)
}

// AndSelector selects a dependency only if every member does.
type AndSelector struct {
	selectors []collect.Selector
}

// And combines selectors. Nil members are ignored.
func And(selectors ...collect.Selector) *AndSelector {
	var s AndSelector
	for _, sel := range selectors {
		if sel != nil {
			s.selectors = append(s.selectors, sel)
		}
	}
	return &s
}

func (s *AndSelector) Select(d artifact.Dependency) bool {
	for _, sel := range s.selectors {
		if !sel.Select(d) {
			return false
		}
	}
	return true
}

func (s *AndSelector) DeriveChild(ctx collect.Context) collect.Selector {
	derived := make([]collect.Selector, len(s.selectors))
	for i, sel := range s.selectors {
		derived[i] = sel.DeriveChild(ctx)
	}
	return &AndSelector{selectors: derived}
}

func (s *AndSelector) PolicyKey() string {
	keys := make([]string, len(s.selectors))
	for i, sel := range s.selectors {
		keys[i] = collect.PolicyKey(sel)
	}
	return strings.Join(keys, ";")
}

func sortedCopy(s []string) []string {
	out := slices.Clone(s)
	slices.Sort(out)
	return slices.Compact(out)
}
