package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jakoblorz/go-modsync/internal/filesystem"
)

// NewRootCommand creates the root command
func NewRootCommand(fs filesystem.FileSystem, deps Deps) *cobra.Command {
	cc := newCommandContext(fs, deps)

	rootCmd := &cobra.Command{
		Use:   "modsync",
		Short: "Keep a Minecraft mods directory in sync with a profile",
		Long: `A CLI tool for managing Minecraft mod profiles.

modsync resolves the latest compatible release of every mod in a profile,
including dependencies, from Modrinth, CurseForge and GitHub releases,
and brings the output directory up to date.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return cc.setup(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cc.profilePath, "profile", "p", "", "Profile document to use (default from settings, then modsync.yaml)")
	rootCmd.PersistentFlags().StringVar(&cc.settingsFile, "settings", "", "Settings file to read instead of the default location")
	rootCmd.PersistentFlags().CountVarP(&cc.verbosity, "verbose", "v", "Increase log verbosity (-v info, -vv debug)")

	// Add subcommands
	rootCmd.AddCommand(NewUpgradeCommand(fs, cc))
	rootCmd.AddCommand(NewDisableCommand(fs, cc))
	rootCmd.AddCommand(NewEnableCommand(fs, cc))
	rootCmd.AddCommand(NewAddCommand(fs, cc))
	rootCmd.AddCommand(NewRemoveCommand(fs, cc))
	rootCmd.AddCommand(NewListCommand(fs, cc))
	rootCmd.AddCommand(NewScriptCommand(fs, cc))

	return rootCmd
}

// Execute runs the root command
func Execute() error {
	fs := filesystem.NewOSFileSystem()

	rootCmd := NewRootCommand(fs, Deps{})

	if err := rootCmd.Execute(); err != nil {
		return fmt.Errorf("command failed: %w", err)
	}

	return nil
}
