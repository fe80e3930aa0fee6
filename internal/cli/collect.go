package cli

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/depcollect/pkg/errors"
	"github.com/matzehuels/depcollect/pkg/pipeline"
)

// collectFlags holds the request flags shared by collect and tree.
type collectFlags struct {
	deps     []string
	managed  []string
	repos    []string
	strategy string
	context  string
	refresh  bool
}

func (f *collectFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringArrayVar(&f.deps, "dep", nil, "add a direct dependency (group:name[:ext[:classifier]]:version[@scope])")
	flags.StringArrayVar(&f.managed, "managed", nil, "add a managed dependency (same syntax as --dep)")
	flags.StringArrayVarP(&f.repos, "repo", "r", nil, "add a remote repository (id=url)")
	flags.StringVar(&f.strategy, "strategy", "", "resolve version conflicts: nearest or highest (default: keep the full graph)")
	flags.StringVar(&f.context, "context", "", "request context recorded on every edge")
	flags.BoolVar(&f.refresh, "refresh", false, "bypass cached repository responses")
}

// options converts the flags and an optional root coordinate.
func (f *collectFlags) options(args []string) (pipeline.Options, error) {
	opts := pipeline.Options{
		Repositories:   f.repos,
		RequestContext: f.context,
		Strategy:       f.strategy,
		Refresh:        f.refresh,
	}
	if len(args) > 0 {
		opts.Root = args[0]
	}
	var err error
	if opts.Dependencies, err = parseDepFlags(f.deps); err != nil {
		return opts, err
	}
	if opts.Managed, err = parseDepFlags(f.managed); err != nil {
		return opts, err
	}
	return opts, opts.Validate()
}

// parseDepFlags splits "coords@scope" values. Optional dependencies carry a
// trailing "?" on the scope, e.g. "g:a:1.0@runtime?" or "g:a:1.0@?".
func parseDepFlags(values []string) ([]pipeline.Dependency, error) {
	out := make([]pipeline.Dependency, 0, len(values))
	for _, v := range values {
		coord, scope, _ := strings.Cut(v, "@")
		if coord == "" {
			return nil, errs.New(errs.ErrCodeInvalidInput, "empty dependency %q", v)
		}
		d := pipeline.Dependency{Coordinate: coord}
		d.Scope, d.Optional = strings.CutSuffix(scope, "?")
		out = append(out, d)
	}
	return out, nil
}

// collectCommand creates the collect command.
func (c *CLI) collectCommand() *cobra.Command {
	var (
		flags   collectFlags
		format  string
		output  string
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "collect [coordinate]",
		Short: "Collect the transitive dependencies of an artifact",
		Long: `Collect resolves the root artifact and expands its dependencies recursively.

The root is given as group:name[:extension[:classifier]]:version. Without a
root, the dependencies passed with --dep are collected below a synthetic node.`,
		Example: `  depcollect collect org.slf4j:slf4j-simple:2.0.9
  depcollect collect org.example:app:1.0 --strategy nearest -f json -o graph.json
  depcollect collect --dep com.google.guava:guava:33.0.0-jre --dep junit:junit:4.13.2@test`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := pipeline.ValidateFormat(format); err != nil {
				return err
			}
			opts, err := flags.options(args)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			runner, err := c.newRunner(ctx)
			if err != nil {
				return err
			}
			defer runner.Close()

			spin := newSpinnerWithContext(ctx, "Collecting dependencies...")
			spin.Start()
			res, collectErr := runner.Collect(ctx, opts)
			if res == nil || res.Failed() {
				spin.StopWithError("Collection failed")
				return collectErr
			}
			spin.Stop()

			w, closeOut, err := openOutput(cmd, output)
			if err != nil {
				return err
			}
			renderErr := pipeline.Render(ctx, w, res, format, pipeline.RenderOptions{Verbose: verbose})
			if err := closeOut(); err != nil && renderErr == nil {
				renderErr = err
			}
			if renderErr != nil {
				return renderErr
			}

			if collectErr != nil {
				printWarning("Collected with %d errors", len(res.Collection.Errors))
				for _, msg := range res.Messages() {
					printDetail("%s", msg)
				}
			} else {
				printSuccess("Collected %s", res.Duration.Round(time.Millisecond))
			}
			printStats(res.Stats, len(res.Collection.Errors))
			if output != "" && output != "-" {
				printFile(output)
			}
			return collectErr
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", pipeline.FormatTree, "output format: tree, json, dot or svg")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write output to a file instead of stdout")
	cmd.Flags().BoolVar(&verbose, "verbose-tree", false, "annotate managed versions, scopes and relocations")

	return cmd
}
