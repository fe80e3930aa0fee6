package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/depcollect/pkg/dag"
	pkgio "github.com/matzehuels/depcollect/pkg/io"
	"github.com/matzehuels/depcollect/pkg/pipeline"
)

// renderCommand re-renders a graph previously exported with
// "collect -f json".
func (c *CLI) renderCommand() *cobra.Command {
	var (
		format   string
		output   string
		detailed bool
	)

	cmd := &cobra.Command{
		Use:     "render <graph.json>",
		Short:   "Render an exported JSON graph as DOT or SVG",
		Example: `  depcollect render graph.json -f svg -o graph.svg`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := pipeline.ValidateFormat(format); err != nil {
				return err
			}
			g, err := pkgio.ImportJSON(args[0])
			if err != nil {
				return err
			}
			loggerFromContext(cmd.Context()).Debug("imported graph", "path", args[0], "roots", dag.NodeIDs(g.Sources()))

			w, closeOut, err := openOutput(cmd, output)
			if err != nil {
				return err
			}
			renderErr := pipeline.RenderDAG(cmd.Context(), w, g, format, pipeline.RenderOptions{Verbose: detailed})
			if err := closeOut(); err != nil && renderErr == nil {
				renderErr = err
			}
			if renderErr != nil {
				return renderErr
			}
			if output != "" && output != "-" {
				printSuccess("Rendered %d nodes", g.NodeCount())
				printStats(dagStats(g), 0)
				printFile(output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", pipeline.FormatDOT, "output format: dot, svg or json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write output to a file instead of stdout")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "add metadata to node labels")
	return cmd
}
