package artifact

import (
	"testing"

	"github.com/matzehuels/depcollect/pkg/errors"
)

func TestParse(t *testing.T) {
	tests := []struct {
		coord string
		want  Artifact
	}{
		{"g:a:1.0", Artifact{Group: "g", Name: "a", Version: "1.0", Extension: "jar"}},
		{"g:a:pom:1.0", Artifact{Group: "g", Name: "a", Version: "1.0", Extension: "pom"}},
		{"g:a:jar:sources:1.0", Artifact{Group: "g", Name: "a", Version: "1.0", Extension: "jar", Classifier: "sources"}},
		{"g:a::1.0", Artifact{Group: "g", Name: "a", Version: "1.0", Extension: "jar"}},
	}

	for _, tt := range tests {
		t.Run(tt.coord, func(t *testing.T) {
			got, err := Parse(tt.coord)
			if err != nil {
				t.Fatalf("Parse() error: %v", err)
			}
			if !Equal(got, tt.want) {
				t.Errorf("Parse() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseInvalid(t *testing.T) {
	for _, coord := range []string{"", "g:a", "g::1.0", "a:b:c:d:e:f", "g/x:a:1.0", "..:a:1.0", "g:a:1.0/evil"} {
		_, err := Parse(coord)
		if !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("Parse(%q) error = %v, want INVALID_INPUT", coord, err)
		}
	}
}

func TestStringRoundTrip(t *testing.T) {
	for _, coord := range []string{"g:a:1.0", "g:a:pom:1.0", "g:a:jar:tests:2.0"} {
		if got := MustParse(coord).String(); got != coord {
			t.Errorf("String() = %q, want %q", got, coord)
		}
	}
}

func TestIdentity(t *testing.T) {
	snap := MustParse("g:a:1.0-20110101.123456-1")
	sym := MustParse("g:a:1.0-SNAPSHOT")
	if !Same(snap, sym) {
		t.Error("timestamped and symbolic snapshot should be the same artifact")
	}
	if Same(MustParse("g:a:1.0"), MustParse("g:a:1.1")) {
		t.Error("different releases should not be the same artifact")
	}
	if Same(MustParse("g:a:1.0"), MustParse("g:a:jar:tests:1.0")) {
		t.Error("classifier is part of identity")
	}
	if snap.BaseVersion() != "1.0-SNAPSHOT" {
		t.Errorf("BaseVersion() = %q", snap.BaseVersion())
	}
}

func TestVersionlessID(t *testing.T) {
	if got := MustParse("g:a:1.0").VersionlessID(); got != "g:a:jar" {
		t.Errorf("VersionlessID() = %q", got)
	}
	if got := MustParse("g:a:jar:tests:1.0").VersionlessID(); got != "g:a:jar:tests" {
		t.Errorf("VersionlessID() = %q", got)
	}
}

func TestWithPropertyCopies(t *testing.T) {
	a := MustParse("g:a:1.0").WithProperty(PropType, "pom")
	b := a.WithProperty(PropLocalPath, "/tmp/a.jar")

	if a.HasProperty(PropLocalPath) {
		t.Error("WithProperty mutated the original")
	}
	if b.Property(PropType) != "pom" || b.Property(PropLocalPath) != "/tmp/a.jar" {
		t.Errorf("unexpected properties %v", b.Properties)
	}
	if a.Key() == b.Key() {
		t.Error("Key() should include properties")
	}
}

func TestDependencyCopies(t *testing.T) {
	ex := []Exclusion{{Group: "x", Name: "y"}}
	d := NewDependency(MustParse("g:a:1.0"), "").WithExclusions(ex)
	ex[0].Group = "changed"

	if d.Scope != ScopeCompile {
		t.Errorf("Scope = %q, want compile", d.Scope)
	}
	if d.Exclusions[0].Group != "x" {
		t.Error("WithExclusions shares the caller's slice")
	}

	d2 := d.WithScope(ScopeTest)
	d2.Exclusions[0].Name = "changed"
	if d.Exclusions[0].Name != "y" {
		t.Error("WithScope shares the exclusion slice")
	}
}

func TestExclusionMatches(t *testing.T) {
	a := MustParse("org.x:core:jar:tests:1.0")
	tests := []struct {
		ex   Exclusion
		want bool
	}{
		{Exclusion{Group: "org.x", Name: "core"}, true},
		{Exclusion{Group: "*", Name: "*"}, true},
		{Exclusion{Group: "org.x", Name: "*", Classifier: "tests"}, true},
		{Exclusion{Group: "org.x", Name: "core", Classifier: "sources"}, false},
		{Exclusion{Group: "org.x", Name: "core", Extension: "pom"}, false},
		{Exclusion{Group: "org.y", Name: "core"}, false},
	}
	for _, tt := range tests {
		if got := tt.ex.Matches(a); got != tt.want {
			t.Errorf("%v.Matches(%v) = %v, want %v", tt.ex, a, got, tt.want)
		}
	}

	d := NewDependency(MustParse("g:b:1.0"), ScopeCompile).WithExclusions([]Exclusion{{Group: "org.x", Name: "*"}})
	if !d.Excludes(a) {
		t.Error("Excludes() = false, want true")
	}
}

func TestParseExclusion(t *testing.T) {
	e, ok := ParseExclusion("g:a")
	if !ok || e.Group != "g" || e.Name != "a" {
		t.Errorf("ParseExclusion(g:a) = %+v, %v", e, ok)
	}
	if _, ok := ParseExclusion("g"); ok {
		t.Error("ParseExclusion(g) should fail")
	}
}
