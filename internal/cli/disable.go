package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jakoblorz/go-modsync/internal/filesystem"
	"github.com/jakoblorz/go-modsync/internal/logging"
	"github.com/jakoblorz/go-modsync/internal/models"
	"github.com/jakoblorz/go-modsync/internal/toggle"
)

// toggleFunc moves records between the active and disabled sets of a profile
type toggleFunc func(profile *models.Profile, selectors []string, picker toggle.Picker) ([]models.ModRecord, error)

// ToggleCommand handles the disable and enable commands
type ToggleCommand struct {
	fs    filesystem.FileSystem
	cc    *commandContext
	apply toggleFunc
	verb  string
	sync  bool
}

// NewDisableCommand creates a new disable command
func NewDisableCommand(fs filesystem.FileSystem, cc *commandContext) *cobra.Command {
	cmd := &ToggleCommand{fs: fs, cc: cc, apply: toggle.Disable, verb: "Disabled"}

	cobraCmd := &cobra.Command{
		Use:   "disable [mods...]",
		Short: "Disable mods without removing them from the profile",
		Long: `Moves mods from the active set to the disabled set.

Mods are selected by name, identifier (project id, CurseForge id or owner/repo) or slug.
Without arguments an interactive selection is shown. Nothing changes unless every
argument names a mod.`,
		Example: `  modsync disable sodium "Iris Shaders"
  modsync disable CaffeineMC/lithium`,
		RunE: cmd.Run,
	}

	cobraCmd.Flags().BoolVar(&cmd.sync, "sync", false, "Rename installed files to match the new state immediately")

	return cobraCmd
}

// NewEnableCommand creates a new enable command
func NewEnableCommand(fs filesystem.FileSystem, cc *commandContext) *cobra.Command {
	cmd := &ToggleCommand{fs: fs, cc: cc, apply: toggle.Enable, verb: "Enabled"}

	cobraCmd := &cobra.Command{
		Use:   "enable [mods...]",
		Short: "Enable previously disabled mods",
		Long: `Moves mods from the disabled set back to the active set.

Selectors work like they do for disable. Without arguments an interactive
selection of the disabled mods is shown.`,
		RunE: cmd.Run,
	}

	cobraCmd.Flags().BoolVar(&cmd.sync, "sync", false, "Rename installed files to match the new state immediately")

	return cobraCmd
}

// Run executes the disable or enable command
func (c *ToggleCommand) Run(cmd *cobra.Command, args []string) error {
	doc, err := c.cc.loadDocument()
	if err != nil {
		return err
	}

	moved, err := c.apply(&doc.Profile, args, c.cc.picker())
	if err != nil {
		return err
	}
	if len(moved) == 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No mods selected")
		return nil
	}

	if err := c.cc.saveDocument(doc); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", c.verb, toggle.Names(moved))

	if c.sync {
		changes, err := toggle.SyncMarkers(c.fs, c.cc.outputDir(doc), &doc.Profile, nil, logging.For("markers"))
		if err != nil {
			return err
		}
		for _, change := range changes {
			c.cc.logger.Info("marker updated", "action", change.Action, "file", change.To)
		}
	}

	return nil
}
