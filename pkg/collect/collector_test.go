package collect

import (
	"context"
	stderrors "errors"
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/matzehuels/depcollect/pkg/artifact"
	"github.com/matzehuels/depcollect/pkg/errors"
	"github.com/matzehuels/depcollect/pkg/graph"
	"github.com/matzehuels/depcollect/pkg/observability"
	"github.com/matzehuels/depcollect/pkg/repository"
	"github.com/matzehuels/depcollect/pkg/resolve"
	"github.com/matzehuels/depcollect/pkg/transform"
	"github.com/matzehuels/depcollect/pkg/version"
)

// fakeRepo serves versions and descriptors from memory and counts calls.
type fakeRepo struct {
	versions map[string][]string                 // "g:a" -> ascending versions
	descs    map[string]*resolve.DescriptorResult // "g:a:v" -> descriptor
	pinned   map[string]repository.Repository    // "g:a:v" -> supplying repository

	rangeCalls map[string]int
	readCalls  map[string]int
	readRepos  map[string][]repository.RemoteRepository
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		versions:   make(map[string][]string),
		descs:      make(map[string]*resolve.DescriptorResult),
		pinned:     make(map[string]repository.Repository),
		rangeCalls: make(map[string]int),
		readCalls:  make(map[string]int),
		readRepos:  make(map[string][]repository.RemoteRepository),
	}
}

// add registers coord ("g:a:v") with the given compile dependencies.
func (f *fakeRepo) add(coord string, deps ...string) *resolve.DescriptorResult {
	a := artifact.MustParse(coord)
	ga := a.Group + ":" + a.Name
	f.versions[ga] = append(f.versions[ga], a.Version)
	version.Sort(f.versions[ga])
	desc := &resolve.DescriptorResult{Artifact: a}
	for _, d := range deps {
		desc.Dependencies = append(desc.Dependencies, dep(d))
	}
	f.descs[a.String()] = desc
	return desc
}

func (f *fakeRepo) ResolveVersionRange(_ context.Context, req resolve.VersionRangeRequest) (*resolve.VersionRangeResult, error) {
	a := req.Artifact
	f.rangeCalls[a.String()]++
	all := f.versions[a.Group+":"+a.Name]

	res := &resolve.VersionRangeResult{Constraint: a.Version, Repositories: map[string]repository.Repository{}}
	if version.IsRange(a.Version) {
		r, err := version.ParseRange(a.Version)
		if err != nil {
			return nil, err
		}
		res.Versions = r.Filter(all)
	} else if slices.Contains(all, a.Version) {
		res.Versions = []string{a.Version}
	}
	for _, v := range res.Versions {
		if r, ok := f.pinned[a.WithVersion(v).String()]; ok {
			res.Repositories[v] = r
		}
	}
	return res, nil
}

func (f *fakeRepo) ReadDescriptor(_ context.Context, req resolve.DescriptorRequest) (*resolve.DescriptorResult, error) {
	k := req.Artifact.String()
	f.readCalls[k]++
	f.readRepos[k] = req.Repositories
	desc, ok := f.descs[k]
	if !ok {
		return nil, errors.New(errors.ErrCodeArtifactNotFound, "no descriptor for %s", k)
	}
	return desc, nil
}

func dep(coord string) artifact.Dependency {
	return artifact.NewDependency(artifact.MustParse(coord), "")
}

func rootReq(coord string) Request {
	d := dep(coord)
	return Request{Root: &d, Repositories: []repository.RemoteRepository{repository.Central}}
}

func newCollector(t *testing.T, f *fakeRepo, opts Options) *Collector {
	t.Helper()
	c, err := New(f, f, repository.NewManager(), opts)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return c
}

func children(n *graph.Node) []string {
	var out []string
	for _, e := range n.Children {
		out = append(out, e.Dependency.Artifact.String())
	}
	return out
}

func child(t *testing.T, n *graph.Node, coord string) *graph.Edge {
	t.Helper()
	for _, e := range n.Children {
		if e.Dependency.Artifact.String() == coord {
			return e
		}
	}
	t.Fatalf("no child %s among %v", coord, children(n))
	return nil
}

// versionManager overrides versions by versionless id at every depth.
type versionManager map[string]string

func (m versionManager) Manage(d artifact.Dependency) *Management {
	if v, ok := m[d.Artifact.VersionlessID()]; ok {
		return &Management{Version: &v}
	}
	return nil
}
func (m versionManager) DeriveChild(Context) Manager { return m }
func (m versionManager) PolicyKey() string           { return fmt.Sprint(map[string]string(m)) }

// fullManager applies a complete Management to every dependency whose
// versionless id it lists.
type fullManager map[string]*Management

func (m fullManager) Manage(d artifact.Dependency) *Management { return m[d.Artifact.VersionlessID()] }
func (m fullManager) DeriveChild(Context) Manager              { return m }

type rejectRoot struct{}

func (rejectRoot) Traverse(artifact.Dependency) bool { return false }
func (rejectRoot) DeriveChild(Context) Traverser     { return traverseAll{} }

func TestNewRequiresCollaborators(t *testing.T) {
	f := newFakeRepo()
	agg := repository.NewManager()
	for _, tc := range []struct {
		name string
		res  resolve.VersionRangeResolver
		rdr  resolve.DescriptorReader
		agg  repository.Aggregator
	}{
		{"resolver", nil, f, agg},
		{"reader", f, nil, agg},
		{"aggregator", f, f, nil},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.res, tc.rdr, tc.agg, Options{})
			if !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("New() error = %v, want %s", err, errors.ErrCodeInvalidInput)
			}
		})
	}
}

func TestCollectSimpleTree(t *testing.T) {
	f := newFakeRepo()
	f.add("g:app:1.0", "g:a:1.0", "g:b:1.0")
	f.add("g:a:1.0", "g:c:1.0")
	f.add("g:b:1.0")
	f.add("g:c:1.0")

	res, err := newCollector(t, f, Options{}).Collect(context.Background(), nil, rootReq("g:app:1.0"))
	if err != nil {
		t.Fatalf("Collect() error: %v", err)
	}
	root := res.Root
	if root.Dependency.Artifact.String() != "g:app:1.0" || root.Version != "1.0" {
		t.Errorf("root = %v (version %q)", root, root.Version)
	}
	if got := children(root.Target); !slices.Equal(got, []string{"g:a:1.0", "g:b:1.0"}) {
		t.Errorf("root children = %v", got)
	}
	a := child(t, root.Target, "g:a:1.0")
	if got := children(a.Target); !slices.Equal(got, []string{"g:c:1.0"}) {
		t.Errorf("a children = %v", got)
	}
	if a.Source != root.Target {
		t.Error("edge source not set to parent node")
	}
	if a.Scope != artifact.ScopeCompile {
		t.Errorf("scope = %q, want compile", a.Scope)
	}
	if s := graph.Summarize(root); s.Nodes != 4 || s.Edges != 3 || s.MaxDepth != 2 {
		t.Errorf("stats = %+v", s)
	}
}

func TestCollectRecordsPremanagedVersion(t *testing.T) {
	f := newFakeRepo()
	f.add("g:app:1.0", "g:a:1.0")
	f.add("g:a:1.0", "g:b:1.0")
	f.add("g:b:1.0")
	f.add("g:b:2.0")

	sess := &Session{Manager: versionManager{"g:b:jar": "2.0"}}
	res, err := newCollector(t, f, Options{}).Collect(context.Background(), sess, rootReq("g:app:1.0"))
	if err != nil {
		t.Fatalf("Collect() error: %v", err)
	}
	a := child(t, res.Root.Target, "g:a:1.0")
	b := child(t, a.Target, "g:b:2.0")
	if b.PremanagedVersion != "1.0" {
		t.Errorf("PremanagedVersion = %q, want 1.0", b.PremanagedVersion)
	}
	if b.Version != "2.0" || !b.Managed() {
		t.Errorf("edge version = %q managed=%v", b.Version, b.Managed())
	}
	if a.PremanagedVersion != "" {
		t.Errorf("unmanaged edge has PremanagedVersion %q", a.PremanagedVersion)
	}
	if f.readCalls["g:b:1.0"] != 0 {
		t.Error("descriptor of the premanaged version was read")
	}
}

func TestCollectAppliesManagedScopeExclusionsAndProperties(t *testing.T) {
	runtime, compile := artifact.ScopeRuntime, artifact.ScopeCompile
	tests := []struct {
		name           string
		scope          *string
		wantScope      string
		wantPremanaged string
	}{
		{"scope differs", &runtime, artifact.ScopeRuntime, artifact.ScopeCompile},
		{"scope unchanged", &compile, artifact.ScopeCompile, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeRepo()
			f.add("g:app:1.0", "g:a:1.0")
			f.add("g:a:1.0", "g:b:1.0")
			f.add("g:b:1.0")

			ex := []artifact.Exclusion{{Group: "g", Name: "x"}}
			props := map[string]string{"pinned.by": "bom"}
			sess := &Session{Manager: fullManager{
				"g:a:jar": {Scope: tt.scope, Exclusions: ex, Properties: props},
			}}
			res, err := newCollector(t, f, Options{}).Collect(context.Background(), sess, rootReq("g:app:1.0"))
			if err != nil {
				t.Fatalf("Collect() error: %v", err)
			}

			a := child(t, res.Root.Target, "g:a:1.0")
			if a.Scope != tt.wantScope || a.Dependency.Scope != tt.wantScope {
				t.Errorf("scope = %q (dependency %q), want %q", a.Scope, a.Dependency.Scope, tt.wantScope)
			}
			if a.PremanagedScope != tt.wantPremanaged {
				t.Errorf("PremanagedScope = %q, want %q", a.PremanagedScope, tt.wantPremanaged)
			}
			if a.Managed() != (tt.wantPremanaged != "") {
				t.Errorf("Managed() = %v", a.Managed())
			}
			if !slices.Equal(a.Dependency.Exclusions, ex) {
				t.Errorf("exclusions = %v, want %v", a.Dependency.Exclusions, ex)
			}
			if got := a.Dependency.Artifact.Property("pinned.by"); got != "bom" {
				t.Errorf("property pinned.by = %q, want bom", got)
			}
			if a.PremanagedVersion != "" {
				t.Errorf("PremanagedVersion = %q, want empty", a.PremanagedVersion)
			}
			if got := children(a.Target); !slices.Equal(got, []string{"g:b:1.0"}) {
				t.Errorf("a children = %v", got)
			}
		})
	}
}

func TestCollectBreaksCycles(t *testing.T) {
	f := newFakeRepo()
	f.add("g:app:1.0", "g:a:1.0")
	f.add("g:a:1.0", "g:b:1.0")
	f.add("g:b:1.0", "g:a:1.0", "g:c:1.0")
	f.add("g:c:1.0")

	hooks := &countingHooks{}
	res, err := newCollector(t, f, Options{Hooks: hooks}).Collect(context.Background(), nil, rootReq("g:app:1.0"))
	if err != nil {
		t.Fatalf("Collect() error: %v", err)
	}
	b := child(t, child(t, res.Root.Target, "g:a:1.0").Target, "g:b:1.0")
	if got := children(b.Target); !slices.Equal(got, []string{"g:c:1.0"}) {
		t.Errorf("b children = %v, want only c", got)
	}
	if hooks.duplicates != 1 {
		t.Errorf("duplicates = %d, want 1", hooks.duplicates)
	}
}

func TestCollectCycleThroughRoot(t *testing.T) {
	f := newFakeRepo()
	f.add("g:app:1.0", "g:a:1.0")
	f.add("g:a:1.0", "g:app:1.0")

	res, err := newCollector(t, f, Options{}).Collect(context.Background(), nil, rootReq("g:app:1.0"))
	if err != nil {
		t.Fatalf("Collect() error: %v", err)
	}
	a := child(t, res.Root.Target, "g:a:1.0")
	if len(a.Target.Children) != 0 {
		t.Errorf("a children = %v, want none", children(a.Target))
	}
}

func TestCollectSharesNodes(t *testing.T) {
	f := newFakeRepo()
	f.add("g:app:1.0", "g:a:1.0", "g:b:1.0")
	f.add("g:a:1.0", "g:c:[1.0,2.0)")
	f.add("g:b:1.0", "g:c:[1.0,2.0)")
	f.add("g:c:1.5", "g:d:1.0")
	f.add("g:d:1.0")

	hooks := &countingHooks{}
	res, err := newCollector(t, f, Options{Hooks: hooks}).Collect(context.Background(), nil, rootReq("g:app:1.0"))
	if err != nil {
		t.Fatalf("Collect() error: %v", err)
	}
	ca := child(t, child(t, res.Root.Target, "g:a:1.0").Target, "g:c:1.5")
	cb := child(t, child(t, res.Root.Target, "g:b:1.0").Target, "g:c:1.5")
	if ca == cb {
		t.Error("edges should be distinct")
	}
	if ca.Target != cb.Target {
		t.Error("both edges should target the same node")
	}
	if ca.Dependency != cb.Dependency {
		t.Error("equal dependencies should be interned")
	}
	if ca.VersionConstraint != "[1.0,2.0)" || ca.Version != "1.5" {
		t.Errorf("constraint/version = %q/%q", ca.VersionConstraint, ca.Version)
	}
	if n := f.readCalls["g:c:1.5"]; n != 1 {
		t.Errorf("descriptor of c read %d times, want 1", n)
	}
	if n := f.rangeCalls["g:c:[1.0,2.0)"]; n != 1 {
		t.Errorf("range of c resolved %d times, want 1", n)
	}
	if hooks.reused != 1 {
		t.Errorf("reused = %d, want 1", hooks.reused)
	}
	if s := graph.Summarize(res.Root); s.Shared != 1 || s.Nodes != 5 {
		t.Errorf("stats = %+v", s)
	}
}

func TestCollectDoesNotShareAcrossPolicies(t *testing.T) {
	f := newFakeRepo()
	f.add("g:app:1.0", "g:a:1.0")
	f.add("g:a:1.0", "g:c:1.0")
	f.add("g:c:1.0", "g:d:1.0")
	f.add("g:d:1.0")

	req := rootReq("g:app:1.0")
	req.Dependencies = []artifact.Dependency{dep("g:c:1.0")}

	sess := &Session{Selector: depthSelector{}}
	res, err := newCollector(t, f, Options{}).Collect(context.Background(), sess, req)
	if err != nil {
		t.Fatalf("Collect() error: %v", err)
	}
	top := child(t, res.Root.Target, "g:c:1.0")
	nested := child(t, child(t, res.Root.Target, "g:a:1.0").Target, "g:c:1.0")
	if top.Target == nested.Target {
		t.Error("nodes expanded under different selectors must not be shared")
	}
}

// depthSelector accepts everything but has a distinct key per depth.
type depthSelector struct{ depth int }

func (depthSelector) Select(artifact.Dependency) bool { return true }
func (s depthSelector) DeriveChild(Context) Selector  { return depthSelector{s.depth + 1} }

func TestCollectRelocation(t *testing.T) {
	f := newFakeRepo()
	f.add("g:app:1.0", "old:r1:1.0")
	f.add("old:r1:1.0")
	f.add("mid:r2:1.0")
	f.add("new:r3:1.0", "g:x:1.0")
	f.add("g:x:1.0")
	f.descs["old:r1:1.0"] = &resolve.DescriptorResult{
		Artifact:    artifact.MustParse("mid:r2:1.0"),
		Relocations: []artifact.Artifact{artifact.MustParse("old:r1:1.0")},
	}
	f.descs["mid:r2:1.0"] = &resolve.DescriptorResult{
		Artifact:    artifact.MustParse("new:r3:1.0"),
		Relocations: []artifact.Artifact{artifact.MustParse("mid:r2:1.0")},
	}

	hooks := &countingHooks{}
	res, err := newCollector(t, f, Options{Hooks: hooks}).Collect(context.Background(), nil, rootReq("g:app:1.0"))
	if err != nil {
		t.Fatalf("Collect() error: %v", err)
	}
	if got := children(res.Root.Target); !slices.Equal(got, []string{"new:r3:1.0"}) {
		t.Fatalf("root children = %v, want the relocated artifact", got)
	}
	e := res.Root.Target.Children[0]
	var relocs []string
	for _, r := range e.Relocations {
		relocs = append(relocs, r.String())
	}
	if !slices.Equal(relocs, []string{"old:r1:1.0", "mid:r2:1.0"}) {
		t.Errorf("relocations = %v", relocs)
	}
	if got := children(e.Target); !slices.Equal(got, []string{"g:x:1.0"}) {
		t.Errorf("relocated node children = %v", got)
	}
	if hooks.relocations != 2 {
		t.Errorf("relocation events = %d, want 2", hooks.relocations)
	}
}

func TestCollectRelocationKeepsVersionForSameArtifact(t *testing.T) {
	f := newFakeRepo()
	f.add("g:app:1.0", "g:a:1.0")
	f.add("g:a:1.0")
	f.descs["g:a:1.0"] = &resolve.DescriptorResult{
		Artifact:    artifact.MustParse("g:a:jar:shaded:1.0"),
		Relocations: []artifact.Artifact{artifact.MustParse("g:a:1.0")},
	}
	f.add("g:a:jar:shaded:1.0")
	f.add("g:a:jar:shaded:3.0")

	sess := &Session{Manager: versionManager{"g:a:jar:shaded": "3.0"}}
	res, err := newCollector(t, f, Options{}).Collect(context.Background(), sess, rootReq("g:app:1.0"))
	if err != nil {
		t.Fatalf("Collect() error: %v", err)
	}
	if got := children(res.Root.Target); !slices.Equal(got, []string{"g:a:jar:shaded:1.0"}) {
		t.Errorf("root children = %v, want version kept after relocation", got)
	}
}

func TestCollectRelocationLoop(t *testing.T) {
	f := newFakeRepo()
	f.add("g:app:1.0", "g:a:1.0")
	f.add("g:a:1.0")
	f.add("g:b:1.0")
	f.descs["g:a:1.0"] = &resolve.DescriptorResult{
		Artifact:    artifact.MustParse("g:b:1.0"),
		Relocations: []artifact.Artifact{artifact.MustParse("g:a:1.0")},
	}
	f.descs["g:b:1.0"] = &resolve.DescriptorResult{
		Artifact:    artifact.MustParse("g:a:1.0"),
		Relocations: []artifact.Artifact{artifact.MustParse("g:b:1.0")},
	}

	res, err := newCollector(t, f, Options{MaxRelocations: 3}).Collect(context.Background(), nil, rootReq("g:app:1.0"))
	if !errors.Is(err, errors.ErrCodeRelocationLoop) {
		t.Fatalf("Collect() error = %v, want %s", err, errors.ErrCodeRelocationLoop)
	}
	if len(res.Root.Target.Children) != 0 {
		t.Errorf("root children = %v", children(res.Root.Target))
	}
}

func TestCollectRecordsRangeErrorsAndContinues(t *testing.T) {
	f := newFakeRepo()
	f.add("g:app:1.0", "g:a:1.0", "g:missing:[5,6)", "g:c:1.0")
	f.add("g:a:1.0")
	f.add("g:c:1.0")
	f.add("g:missing:1.0")

	res, err := newCollector(t, f, Options{}).Collect(context.Background(), nil, rootReq("g:app:1.0"))
	var ce *CollectionError
	if !stderrors.As(err, &ce) {
		t.Fatalf("Collect() error = %v, want *CollectionError", err)
	}
	if ce.Result != res {
		t.Error("CollectionError should carry the returned result")
	}
	if len(res.Errors) != 1 || !errors.Is(res.Errors[0], errors.ErrCodeVersionRange) {
		t.Errorf("errors = %v, want one %s", res.Errors, errors.ErrCodeVersionRange)
	}
	if got := children(res.Root.Target); !slices.Equal(got, []string{"g:a:1.0", "g:c:1.0"}) {
		t.Errorf("root children = %v, siblings should still be collected", got)
	}
	if ce.Code() != errors.ErrCodeCollection {
		t.Errorf("Code() = %s", ce.Code())
	}
}

func TestCollectRecordsDescriptorErrors(t *testing.T) {
	f := newFakeRepo()
	f.add("g:app:1.0", "g:a:[1,2]", "g:c:1.0")
	f.add("g:a:1.0")
	f.add("g:a:2.0")
	f.add("g:c:1.0")
	delete(f.descs, "g:a:1.0")

	res, err := newCollector(t, f, Options{}).Collect(context.Background(), nil, rootReq("g:app:1.0"))
	if !errors.Is(err, errors.ErrCodeDescriptor) {
		t.Fatalf("Collect() error = %v, want %s", err, errors.ErrCodeDescriptor)
	}
	if got := children(res.Root.Target); !slices.Equal(got, []string{"g:a:2.0", "g:c:1.0"}) {
		t.Errorf("root children = %v", got)
	}
}

func TestCollectRootFailureIsFatal(t *testing.T) {
	f := newFakeRepo()
	f.add("g:app:1.0")

	for _, coord := range []string{"g:app:[2,3)", "g:unknown:1.0"} {
		t.Run(coord, func(t *testing.T) {
			res, err := newCollector(t, f, Options{}).Collect(context.Background(), nil, rootReq(coord))
			if !errors.Is(err, errors.ErrCodeVersionRange) {
				t.Fatalf("Collect() error = %v, want %s", err, errors.ErrCodeVersionRange)
			}
			if res.Root != nil {
				t.Error("root must be nil when the root range fails")
			}
		})
	}
}

func TestCollectPinsRootToHighestVersion(t *testing.T) {
	f := newFakeRepo()
	f.add("g:app:1.0")
	f.add("g:app:1.2", "g:a:1.0")
	f.add("g:a:1.0")

	res, err := newCollector(t, f, Options{}).Collect(context.Background(), nil, rootReq("g:app:[1,2)"))
	if err != nil {
		t.Fatalf("Collect() error: %v", err)
	}
	if res.Root.Version != "1.2" || res.Root.VersionConstraint != "[1,2)" {
		t.Errorf("root version = %q constraint = %q", res.Root.Version, res.Root.VersionConstraint)
	}
	if len(res.Root.Target.Children) != 1 {
		t.Errorf("root children = %v", children(res.Root.Target))
	}
}

func TestCollectExpandsEveryVersionInRange(t *testing.T) {
	f := newFakeRepo()
	f.add("g:app:1.0", "g:lib:[1.5,1.8]")
	for _, v := range []string{"1.0", "1.5", "1.6", "1.8", "2.0"} {
		f.add("g:lib:" + v)
	}

	res, err := newCollector(t, f, Options{}).Collect(context.Background(), nil, rootReq("g:app:1.0"))
	if err != nil {
		t.Fatalf("Collect() error: %v", err)
	}
	want := []string{"g:lib:1.5", "g:lib:1.6", "g:lib:1.8"}
	if got := children(res.Root.Target); !slices.Equal(got, want) {
		t.Errorf("root children = %v, want %v", got, want)
	}
	for _, e := range res.Root.Target.Children {
		if e.VersionConstraint != "[1.5,1.8]" {
			t.Errorf("%s constraint = %q", e, e.VersionConstraint)
		}
	}
}

func TestCollectWithoutRoot(t *testing.T) {
	f := newFakeRepo()
	f.add("g:a:1.0", "g:b:1.0")
	f.add("g:b:1.0")

	req := Request{
		Dependencies: []artifact.Dependency{dep("g:a:1.0")},
		Repositories: []repository.RemoteRepository{repository.Central},
	}
	res, err := newCollector(t, f, Options{}).Collect(context.Background(), nil, req)
	if err != nil {
		t.Fatalf("Collect() error: %v", err)
	}
	if res.Root.Dependency != nil || !res.Root.IsRoot() {
		t.Errorf("root edge = %v, want synthetic", res.Root)
	}
	a := child(t, res.Root.Target, "g:a:1.0")
	if got := children(a.Target); !slices.Equal(got, []string{"g:b:1.0"}) {
		t.Errorf("a children = %v", got)
	}
}

func TestCollectRequestDependenciesWin(t *testing.T) {
	f := newFakeRepo()
	f.add("g:app:1.0", "g:a:1.0", "g:b:1.0")
	f.add("g:a:1.0")
	f.add("g:a:2.0")
	f.add("g:b:1.0")

	req := rootReq("g:app:1.0")
	req.Dependencies = []artifact.Dependency{dep("g:a:2.0")}
	res, err := newCollector(t, f, Options{}).Collect(context.Background(), nil, req)
	if err != nil {
		t.Fatalf("Collect() error: %v", err)
	}
	if got := children(res.Root.Target); !slices.Equal(got, []string{"g:a:2.0", "g:b:1.0"}) {
		t.Errorf("root children = %v", got)
	}
}

func TestCollectRootNotTraversed(t *testing.T) {
	f := newFakeRepo()
	f.add("g:app:1.0", "g:a:1.0")
	f.add("g:a:1.0")

	sess := &Session{Traverser: rejectRoot{}}
	res, err := newCollector(t, f, Options{}).Collect(context.Background(), sess, rootReq("g:app:1.0"))
	if err != nil {
		t.Fatalf("Collect() error: %v", err)
	}
	if len(res.Root.Target.Children) != 0 {
		t.Errorf("root children = %v, want none", children(res.Root.Target))
	}
}

func TestCollectLocalPathSkipsDescriptor(t *testing.T) {
	f := newFakeRepo()
	f.add("g:app:1.0")
	f.add("g:sys:1.0", "g:never:1.0")

	req := rootReq("g:app:1.0")
	local := dep("g:sys:1.0")
	local.Artifact = local.Artifact.WithProperty(artifact.PropLocalPath, "/opt/lib/sys.jar")
	local.Scope = artifact.ScopeSystem
	req.Dependencies = []artifact.Dependency{local}

	res, err := newCollector(t, f, Options{}).Collect(context.Background(), nil, req)
	if err != nil {
		t.Fatalf("Collect() error: %v", err)
	}
	e := child(t, res.Root.Target, "g:sys:1.0")
	if len(e.Target.Children) != 0 {
		t.Errorf("local dependency was traversed: %v", children(e.Target))
	}
	if f.readCalls["g:sys:1.0"] != 0 {
		t.Error("descriptor read for an artifact with a local path")
	}
	if e.Dependency.Artifact.Property(artifact.PropLocalPath) == "" {
		t.Error("local path property lost")
	}
}

func TestCollectNarrowsRepositories(t *testing.T) {
	f := newFakeRepo()
	other := repository.NewRemote("other", "https://repo.example.com/maven")
	f.add("g:app:1.0", "g:a:1.0", "g:b:1.0")
	f.add("g:a:1.0")
	f.add("g:b:1.0")
	f.pinned["g:a:1.0"] = other
	f.pinned["g:b:1.0"] = repository.LocalRepository{Dir: "/tmp/repo"}

	req := rootReq("g:app:1.0")
	req.Repositories = append(req.Repositories, other)
	res, err := newCollector(t, f, Options{}).Collect(context.Background(), nil, req)
	if err != nil {
		t.Fatalf("Collect() error: %v", err)
	}
	a := child(t, res.Root.Target, "g:a:1.0")
	if got := repository.IDs(a.Target.Repositories); !slices.Equal(got, []string{"other"}) {
		t.Errorf("a repositories = %v, want [other]", got)
	}
	if got := repository.IDs(f.readRepos["g:a:1.0"]); !slices.Equal(got, []string{"other"}) {
		t.Errorf("descriptor of a read from %v", got)
	}
	b := child(t, res.Root.Target, "g:b:1.0")
	if len(b.Target.Repositories) != 0 {
		t.Errorf("b repositories = %v, want none", b.Target.Repositories)
	}
	if got := repository.IDs(res.Root.Target.Repositories); len(got) != 2 {
		t.Errorf("root repositories = %v", got)
	}
}

func TestCollectTransformer(t *testing.T) {
	f := newFakeRepo()
	f.add("g:app:1.0", "g:a:1.0")
	f.add("g:a:1.0")

	replaced := graph.NewEdge(nil, graph.NewNode(nil, nil))
	sess := &Session{Transformer: transform.Func(func(context.Context, *graph.Edge) (*graph.Edge, error) {
		return replaced, nil
	})}
	res, err := newCollector(t, f, Options{}).Collect(context.Background(), sess, rootReq("g:app:1.0"))
	if err != nil || res.Root != replaced {
		t.Fatalf("Collect() = %v, %v; want transformed root", res.Root, err)
	}

	sess.Transformer = transform.Func(func(context.Context, *graph.Edge) (*graph.Edge, error) {
		return nil, stderrors.New("boom")
	})
	res, err = newCollector(t, f, Options{}).Collect(context.Background(), sess, rootReq("g:app:1.0"))
	if !errors.Is(err, errors.ErrCodeTransform) {
		t.Fatalf("Collect() error = %v, want %s", err, errors.ErrCodeTransform)
	}
	if res.Root == nil || len(res.Root.Target.Children) != 1 {
		t.Error("untransformed graph should be kept on transform failure")
	}
}

func TestCollectCanceled(t *testing.T) {
	f := newFakeRepo()
	f.add("g:app:1.0", "g:a:1.0")
	f.add("g:a:1.0")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := newCollector(t, f, Options{}).Collect(ctx, nil, rootReq("g:app:1.0"))
	if !errors.Is(err, errors.ErrCodeCanceled) {
		t.Fatalf("Collect() error = %v, want %s", err, errors.ErrCodeCanceled)
	}
	if !stderrors.Is(err, context.Canceled) {
		t.Error("error should wrap context.Canceled")
	}
	if len(res.Root.Target.Children) != 0 {
		t.Error("no dependency should be processed after cancellation")
	}
}

func TestCollectUsesRegisteredHooks(t *testing.T) {
	observability.Reset()
	defer observability.Reset()
	hooks := &countingHooks{}
	observability.SetCollectHooks(hooks)

	f := newFakeRepo()
	f.add("g:app:1.0", "g:a:1.0")
	f.add("g:a:1.0")
	if _, err := newCollector(t, f, Options{}).Collect(context.Background(), nil, rootReq("g:app:1.0")); err != nil {
		t.Fatalf("Collect() error: %v", err)
	}
	if hooks.started != 1 || hooks.completed != 1 {
		t.Errorf("start/complete = %d/%d", hooks.started, hooks.completed)
	}
	if hooks.nodes != 2 || hooks.ranges != 2 || hooks.reads != 2 {
		t.Errorf("nodes=%d ranges=%d reads=%d", hooks.nodes, hooks.ranges, hooks.reads)
	}
}

type countingHooks struct {
	observability.NoopCollectHooks
	started, completed, nodes int
	ranges, reads             int
	reused, duplicates        int
	relocations               int
}

func (h *countingHooks) OnCollectStart(context.Context, string) { h.started++ }
func (h *countingHooks) OnCollectComplete(_ context.Context, _ string, nodes, _ int, _ time.Duration, _ error) {
	h.completed++
	h.nodes = nodes
}
func (h *countingHooks) OnRangeResolved(context.Context, string, int, error) { h.ranges++ }
func (h *countingHooks) OnDescriptorRead(context.Context, string, error)     { h.reads++ }
func (h *countingHooks) OnNodeReused(context.Context, string)                { h.reused++ }
func (h *countingHooks) OnDuplicate(context.Context, string)                 { h.duplicates++ }
func (h *countingHooks) OnRelocation(context.Context, string, string)        { h.relocations++ }
