package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jakoblorz/go-modsync/internal/filesystem"
	"github.com/jakoblorz/go-modsync/internal/toggle"
)

// RemoveCommand handles the remove command
type RemoveCommand struct {
	fs filesystem.FileSystem
	cc *commandContext
}

// NewRemoveCommand creates a new remove command
func NewRemoveCommand(fs filesystem.FileSystem, cc *commandContext) *cobra.Command {
	cmd := &RemoveCommand{fs: fs, cc: cc}

	cobraCmd := &cobra.Command{
		Use:     "remove [mods...]",
		Aliases: []string{"rm"},
		Short:   "Remove mods from the profile",
		Long: `Removes active or disabled mods from the profile. Selectors work like they do
for disable. Without arguments an interactive selection of all mods is shown.`,
		RunE: cmd.Run,
	}

	return cobraCmd
}

// Run executes the remove command
func (c *RemoveCommand) Run(cmd *cobra.Command, args []string) error {
	doc, err := c.cc.loadDocument()
	if err != nil {
		return err
	}

	removed, err := toggle.Remove(&doc.Profile, args, c.cc.picker())
	if err != nil {
		return err
	}
	if len(removed) == 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No mods selected")
		return nil
	}

	if err := c.cc.saveDocument(doc); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", toggle.Names(removed))
	return nil
}
