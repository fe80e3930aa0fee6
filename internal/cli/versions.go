package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	errs "github.com/matzehuels/depcollect/pkg/errors"
)

// versionsCommand creates the versions command.
func (c *CLI) versionsCommand() *cobra.Command {
	var asTable bool

	cmd := &cobra.Command{
		Use:     "versions group:name",
		Short:   "List the versions of an artifact available in the configured repositories",
		Example: `  depcollect versions org.slf4j:slf4j-api`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			group, name, ok := strings.Cut(args[0], ":")
			if !ok || group == "" || name == "" || strings.Contains(name, ":") {
				return errs.New(errs.ErrCodeInvalidInput, "expected group:name, got %q", args[0])
			}
			ctx := cmd.Context()

			runner, err := c.newRunner(ctx)
			if err != nil {
				return err
			}
			defer runner.Close()

			prog := newProgress(loggerFromContext(ctx))
			versions, err := runner.Versions(ctx, group, name)
			if err != nil {
				return err
			}
			prog.done("listed versions", "artifact", args[0], "count", len(versions))

			out := cmd.OutOrStdout()
			if !asTable {
				for _, v := range versions {
					fmt.Fprintln(out, v)
				}
				return nil
			}
			fmt.Fprintln(out, versionTable(args[0], versions))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&asTable, "table", "t", false, "print a table marking the newest and snapshot versions")
	return cmd
}

// versionTable renders versions, oldest first, in a bordered table.
func versionTable(title string, versions []string) string {
	rows := make([][]string, len(versions))
	for i, v := range versions {
		note := ""
		switch {
		case i == len(versions)-1:
			note = "latest"
		case strings.HasSuffix(v, "-SNAPSHOT"):
			note = "snapshot"
		}
		rows[i] = []string{strconv.Itoa(i + 1), v, note}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", title, "").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 0:
				return StyleDim
			case row == len(rows)-1:
				return lipgloss.NewStyle().Foreground(colorGreen)
			}
			return lipgloss.NewStyle()
		})
	return t.Render()
}
