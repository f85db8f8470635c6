package cli

import (
	"github.com/spf13/cobra"

	"github.com/jakoblorz/go-modsync/internal/filesystem"
	"github.com/jakoblorz/go-modsync/internal/logging"
	"github.com/jakoblorz/go-modsync/internal/progress"
	"github.com/jakoblorz/go-modsync/internal/reconcile"
	"github.com/jakoblorz/go-modsync/internal/upgrade"
)

// UpgradeCommand handles the upgrade command
type UpgradeCommand struct {
	fs    filesystem.FileSystem
	cc    *commandContext
	plain bool
}

// NewUpgradeCommand creates a new upgrade command
func NewUpgradeCommand(fs filesystem.FileSystem, cc *commandContext) *cobra.Command {
	cmd := &UpgradeCommand{fs: fs, cc: cc}

	cobraCmd := &cobra.Command{
		Use:     "upgrade",
		Aliases: []string{"update"},
		Short:   "Download the latest compatible version of every mod",
		Long: `Resolves the latest compatible release of every active mod and its dependencies,
marks the files of disabled mods with a .disabled suffix and brings the output
directory up to date. Stale jars are moved to the .old directory.`,
		Args: cobra.NoArgs,
		RunE: cmd.Run,
	}

	cobraCmd.Flags().BoolVar(&cmd.plain, "plain", false, "Print progress lines without colors")

	return cobraCmd
}

// Run executes the upgrade command
func (c *UpgradeCommand) Run(cmd *cobra.Command, args []string) error {
	doc, err := c.cc.loadDocument()
	if err != nil {
		return err
	}
	// The document is not saved again, so the resolved directory can replace the written one
	doc.Profile.OutputDir = c.cc.outputDir(doc)

	styles := progress.DefaultStyles()
	if c.plain {
		styles = progress.PlainStyles()
	}

	reconciler := reconcile.NewReconciler(c.fs,
		reconcile.WithHTTPClient(c.cc.deps.HTTPClient),
		reconcile.WithWorkers(c.cc.workers()),
		reconcile.WithUserAgent(c.cc.userAgent()),
		reconcile.WithLogger(logging.For("reconcile")),
		reconcile.WithOutput(cmd.OutOrStdout()),
	)

	runner := upgrade.NewRunner(c.fs, c.cc.resolver(), reconciler,
		upgrade.WithOutput(cmd.OutOrStdout()),
		upgrade.WithLogger(c.cc.logger),
		upgrade.WithConcurrency(c.cc.workers()),
		upgrade.WithStyles(styles),
	)

	return runner.Run(cmd.Context(), doc)
}
