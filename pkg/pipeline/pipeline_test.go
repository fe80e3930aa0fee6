package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/depcollect/pkg/cache"
	"github.com/matzehuels/depcollect/pkg/catalog"
	"github.com/matzehuels/depcollect/pkg/collect"
	"github.com/matzehuels/depcollect/pkg/config"
	errs "github.com/matzehuels/depcollect/pkg/errors"
	"github.com/matzehuels/depcollect/pkg/repository"
)

const fixture = `
[[artifact]]
coordinate = "org.example:app"
  [[artifact.release]]
  version = "1.0"
    [[artifact.release.dependency]]
    coordinate = "org.example:lib:[1.0,2.0)"

[[artifact]]
coordinate = "org.example:lib"
  [[artifact.release]]
  version = "1.0"
    [[artifact.release.dependency]]
    coordinate = "org.example:core:1.0"
  [[artifact.release]]
  version = "1.4"
    [[artifact.release.dependency]]
    coordinate = "org.example:core:2.0"

[[artifact]]
coordinate = "org.example:core"
  [[artifact.release]]
  version = "1.0"
  [[artifact.release]]
  version = "2.0"
`

func newTestRunner(t *testing.T) *Runner {
	t.Helper()
	cat, err := catalog.Parse(fixture)
	if err != nil {
		t.Fatal(err)
	}
	r, err := NewRunnerWithSource(config.Defaults(), nil, cat, nil)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func render(t *testing.T, res *Result, format string) string {
	t.Helper()
	var buf bytes.Buffer
	if err := Render(context.Background(), &buf, res, format, RenderOptions{}); err != nil {
		t.Fatalf("Render(%s) error: %v", format, err)
	}
	return buf.String()
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"tree", false},
		{"json", false},
		{"dot", false},
		{"svg", false},
		{"png", true},
		{"TREE", true},
		{"", true},
	}
	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"root", Options{Root: "g:a:1.0"}, false},
		{"dependencies only", Options{Dependencies: []Dependency{{Coordinate: "g:a:1.0", Scope: "runtime"}}}, false},
		{"empty", Options{}, true},
		{"bad root", Options{Root: "nonsense"}, true},
		{"bad dependency", Options{Root: "g:a:1.0", Dependencies: []Dependency{{Coordinate: "x"}}}, true},
		{"bad managed", Options{Root: "g:a:1.0", Managed: []Dependency{{Coordinate: "x"}}}, true},
		{"bad exclusion", Options{Root: "g:a:1.0", Dependencies: []Dependency{{Coordinate: "g:b:1.0", Exclusions: []string{"nogroup"}}}}, true},
		{"bad repository", Options{Root: "g:a:1.0", Repositories: []string{"https://x"}}, true},
		{"strategy", Options{Root: "g:a:1.0", Strategy: "highest"}, false},
		{"bad strategy", Options{Root: "g:a:1.0", Strategy: "newest"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && errs.GetCode(err) != errs.ErrCodeInvalidInput {
				t.Errorf("code = %s", errs.GetCode(err))
			}
		})
	}
}

func TestRequestRepositories(t *testing.T) {
	opts := Options{Root: "g:a:1.0", Repositories: []string{"central=https://mirror.example.com/", "extra=https://extra.example.com"}}
	req, err := opts.request([]repository.RemoteRepository{repository.Central, repository.NewRemote("corp", "https://corp.example.com")})
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, r := range req.Repositories {
		got = append(got, r.ID+"="+r.URL)
	}
	want := []string{"central=https://mirror.example.com", "extra=https://extra.example.com", "corp=https://corp.example.com"}
	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Errorf("repositories = %v, want %v", got, want)
	}
}

func TestRunnerCollect(t *testing.T) {
	r := newTestRunner(t)
	defer r.Close()

	res, err := r.Collect(context.Background(), Options{Root: "org.example:app:1.0"})
	if err != nil {
		t.Fatalf("Collect() error: %v", err)
	}
	if res.Stats.Nodes != 5 || res.Stats.Edges != 4 || res.Stats.MaxDepth != 2 {
		t.Errorf("stats = %+v", res.Stats)
	}

	want := `org.example:app:1.0
  org.example:lib:1.0 [compile]
    org.example:core:1.0 [compile]
  org.example:lib:1.4 [compile]
    org.example:core:2.0 [compile]
`
	if got := render(t, res, FormatTree); got != want {
		t.Errorf("tree =\n%s\nwant\n%s", got, want)
	}
}

func TestRunnerStrategy(t *testing.T) {
	r := newTestRunner(t)
	tests := map[string]string{
		"nearest": "org.example:app:1.0\n  org.example:lib:1.0 [compile]\n    org.example:core:1.0 [compile]\n",
		"highest": "org.example:app:1.0\n  org.example:lib:1.4 [compile]\n    org.example:core:2.0 [compile]\n",
	}
	for strategy, want := range tests {
		t.Run(strategy, func(t *testing.T) {
			res, err := r.Collect(context.Background(), Options{Root: "org.example:app:1.0", Strategy: strategy})
			if err != nil {
				t.Fatal(err)
			}
			if got := render(t, res, FormatTree); got != want {
				t.Errorf("tree =\n%s\nwant\n%s", got, want)
			}
		})
	}
}

func TestRunnerRootFailure(t *testing.T) {
	r := newTestRunner(t)
	res, err := r.Collect(context.Background(), Options{Root: "org.example:missing:1.0"})
	if err == nil {
		t.Fatal("Collect() should fail for an unknown root")
	}
	var ce *collect.CollectionError
	if !asCollectionError(err, &ce) {
		t.Errorf("error = %T, want *collect.CollectionError", err)
	}
	if !res.Failed() || len(res.Messages()) == 0 {
		t.Errorf("result = %+v", res)
	}
	if err := Render(context.Background(), &bytes.Buffer{}, res, FormatTree, RenderOptions{}); err == nil {
		t.Error("rendering a failed result should fail")
	}

	if res, err := r.Collect(context.Background(), Options{}); res != nil || err == nil {
		t.Error("invalid options should return no result")
	}
}

func asCollectionError(err error, target **collect.CollectionError) bool {
	ce, ok := err.(*collect.CollectionError)
	*target = ce
	return ok
}

func TestRunnerDependenciesOnly(t *testing.T) {
	r := newTestRunner(t)
	res, err := r.Collect(context.Background(), Options{
		Dependencies: []Dependency{{Coordinate: "org.example:lib:1.4", Scope: "runtime"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	got := render(t, res, FormatTree)
	if !strings.HasPrefix(got, "__root__\n  org.example:lib:1.4 [runtime]\n") {
		t.Errorf("tree =\n%s", got)
	}
}

func TestRenderFormats(t *testing.T) {
	r := newTestRunner(t)
	res, err := r.Collect(context.Background(), Options{Root: "org.example:app:1.0"})
	if err != nil {
		t.Fatal(err)
	}

	var doc struct {
		Root  string `json:"root"`
		Nodes []struct {
			ID string `json:"id"`
		} `json:"nodes"`
	}
	if err := json.Unmarshal([]byte(render(t, res, FormatJSON)), &doc); err != nil {
		t.Fatalf("json output: %v", err)
	}
	if doc.Root != "org.example:app:1.0" || len(doc.Nodes) != 5 {
		t.Errorf("json = %+v", doc)
	}

	dot := render(t, res, FormatDOT)
	if !strings.Contains(dot, `"org.example:app:1.0" -> "org.example:lib:1.4"`) {
		t.Errorf("dot output missing edge:\n%s", dot)
	}
}

func TestNewRunnerFromSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.toml")
	if err := os.WriteFile(path, []byte(fixture), 0o644); err != nil {
		t.Fatal(err)
	}
	s := config.Defaults()
	s.Catalog = path
	s.Cache.Backend = cache.BackendMemory

	r, err := NewRunner(context.Background(), s, nil)
	if err != nil {
		t.Fatalf("NewRunner() error: %v", err)
	}
	defer r.Close()
	res, err := r.Collect(context.Background(), Options{Root: "org.example:lib:1.0", Refresh: true})
	if err != nil {
		t.Fatal(err)
	}
	if res.Stats.Nodes != 2 {
		t.Errorf("stats = %+v", res.Stats)
	}

	s.Catalog = filepath.Join(t.TempDir(), "missing.toml")
	if _, err := NewRunner(context.Background(), s, nil); !errs.Is(err, errs.ErrCodeFileNotFound) {
		t.Errorf("missing catalog: %v", err)
	}

	s = config.Defaults()
	s.Cache.Backend = "floppy"
	if _, err := NewRunner(context.Background(), s, nil); err == nil {
		t.Error("invalid settings should fail")
	}
}
