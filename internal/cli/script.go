package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jakoblorz/go-modsync/internal/config"
	"github.com/jakoblorz/go-modsync/internal/filesystem"
)

// ScriptCommand handles the script command
type ScriptCommand struct {
	fs filesystem.FileSystem
	cc *commandContext
}

// NewScriptCommand creates a new script command
func NewScriptCommand(fs filesystem.FileSystem, cc *commandContext) *cobra.Command {
	cmd := &ScriptCommand{fs: fs, cc: cc}

	cobraCmd := &cobra.Command{
		Use:   "script <name>",
		Short: "Apply a setup script to the profile",
		Long: fmt.Sprintf(`Applies a named setup script to the profile.

Available scripts: %s

  setup:quilt    resolve Fabric mods on Quilt, replacing Fabric API with QFAPI
  setup:sinytra  run Fabric mods on Forge through Sinytra Connector`, strings.Join(config.ScriptNames(), ", ")),
		Args:      cobra.ExactArgs(1),
		ValidArgs: config.ScriptNames(),
		RunE:      cmd.Run,
	}

	return cobraCmd
}

// Run executes the script command
func (c *ScriptCommand) Run(cmd *cobra.Command, args []string) error {
	doc, err := c.cc.loadDocument()
	if err != nil {
		return err
	}

	if err := config.RunScript(doc, args[0]); err != nil {
		return err
	}

	if err := c.cc.saveDocument(doc); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ Applied %s\n", args[0])
	return nil
}
