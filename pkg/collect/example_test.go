package collect_test

import (
	"context"
	"fmt"

	"github.com/matzehuels/depcollect/pkg/artifact"
	"github.com/matzehuels/depcollect/pkg/collect"
	"github.com/matzehuels/depcollect/pkg/graph"
	"github.com/matzehuels/depcollect/pkg/repository"
	"github.com/matzehuels/depcollect/pkg/resolve"
)

func ExampleCollector_Collect() {
	// A tiny in-memory repository: app → lib → core, app → core
	deps := map[string][]string{
		"org.example:app:1.0":  {"org.example:lib:1.0", "org.example:core:2.0"},
		"org.example:lib:1.0":  {"org.example:core:2.0"},
		"org.example:core:2.0": nil,
	}

	resolver := resolve.ResolverFunc(func(_ context.Context, req resolve.VersionRangeRequest) (*resolve.VersionRangeResult, error) {
		return &resolve.VersionRangeResult{Versions: []string{req.Artifact.Version}, Constraint: req.Artifact.Version}, nil
	})
	reader := resolve.ReaderFunc(func(_ context.Context, req resolve.DescriptorRequest) (*resolve.DescriptorResult, error) {
		desc := &resolve.DescriptorResult{Artifact: req.Artifact}
		for _, d := range deps[req.Artifact.String()] {
			desc.Dependencies = append(desc.Dependencies, artifact.NewDependency(artifact.MustParse(d), ""))
		}
		return desc, nil
	})

	c, err := collect.New(resolver, reader, repository.NewManager(), collect.Options{})
	if err != nil {
		panic(err)
	}

	root := artifact.NewDependency(artifact.MustParse("org.example:app:1.0"), "")
	res, err := c.Collect(context.Background(), nil, collect.Request{Root: &root})
	if err != nil {
		panic(err)
	}

	graph.Walk(res.Root, func(e *graph.Edge, depth int) bool {
		fmt.Printf("%*s%s\n", depth*2, "", e.Artifact())
		return true
	})

	stats := graph.Summarize(res.Root)
	fmt.Println("nodes:", stats.Nodes, "shared:", stats.Shared)
	// Output:
	// org.example:app:1.0
	//   org.example:lib:1.0
	//     org.example:core:2.0
	//   org.example:core:2.0
	// nodes: 3 shared: 1
}
