package cli

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/depcollect/pkg/buildinfo"
	"github.com/matzehuels/depcollect/pkg/cache"
	"github.com/matzehuels/depcollect/pkg/config"
	"github.com/matzehuels/depcollect/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "depcollect"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Global flags.
	settingsPath string
	offline      bool
	noCache      bool
	catalog      string
	verbose      bool
}

// New creates a CLI whose logger writes to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "depcollect builds transitive dependency graphs from Maven repositories",
		Long: `depcollect resolves version ranges, reads artifact descriptors and expands
dependencies recursively into a graph, applying scope, optional and exclusion
filtering, dependency management and relocations along the way.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.SetLogLevel(LogDebug)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}
	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	flags.StringVar(&c.settingsPath, "config", "", "settings file (default $XDG_CONFIG_HOME/depcollect/settings.toml)")
	flags.BoolVar(&c.offline, "offline", false, "serve repository responses from the cache only")
	flags.BoolVar(&c.noCache, "no-cache", false, "disable the response cache")
	flags.StringVar(&c.catalog, "catalog", "", "read artifacts from a TOML catalog instead of remote repositories")

	root.AddCommand(c.collectCommand())
	root.AddCommand(c.treeCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.versionsCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.versionCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Settings & Runner Factory
// =============================================================================

// loadSettings merges the settings sources and applies the global flags.
func (c *CLI) loadSettings() (config.Settings, error) {
	s, err := config.Read(c.settingsPath)
	if err != nil {
		return s, err
	}
	if c.offline {
		s.Offline = true
	}
	if c.noCache {
		s.Cache.Backend = cache.BackendNone
	}
	if c.catalog != "" {
		s.Catalog = c.catalog
	}
	return s, s.Validate()
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context) (*pipeline.Runner, error) {
	s, err := c.loadSettings()
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(ctx, s, loggerFromContext(ctx))
}

// =============================================================================
// Paths
// =============================================================================

// fileCacheDir returns the directory of the file cache backend.
func fileCacheDir(s config.Settings) (string, error) {
	if s.Cache.Dir != "" {
		return s.Cache.Dir, nil
	}
	return cache.DefaultDir()
}

// openOutput returns stdout for "" and "-", otherwise creates path.
func openOutput(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}
