package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/depcollect/pkg/pipeline"
)

// treeCommand creates the tree command. It collects like collect but
// renders a tree, optionally in an interactive browser.
func (c *CLI) treeCommand() *cobra.Command {
	var (
		flags       collectFlags
		interactive bool
		verbose     bool
	)

	cmd := &cobra.Command{
		Use:   "tree [coordinate]",
		Short: "Print or browse the dependency tree of an artifact",
		Example: `  depcollect tree org.slf4j:slf4j-simple:2.0.9
  depcollect tree org.example:app:1.0 -i`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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
			spin.Stop()
			if res == nil || res.Failed() {
				return collectErr
			}

			if interactive {
				p := tea.NewProgram(NewTreeModel(res.Collection.Root), tea.WithContext(ctx), tea.WithAltScreen())
				if _, err := p.Run(); err != nil {
					return err
				}
			} else if err := pipeline.Render(ctx, cmd.OutOrStdout(), res, pipeline.FormatTree, pipeline.RenderOptions{Verbose: verbose}); err != nil {
				return err
			}

			for _, msg := range res.Messages() {
				printWarning("%s", msg)
			}
			return collectErr
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "browse the tree interactively")
	cmd.Flags().BoolVar(&verbose, "verbose-tree", false, "annotate managed versions, scopes and relocations")
	return cmd
}
