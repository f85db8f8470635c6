package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jakoblorz/go-modsync/internal/filesystem"
	"github.com/jakoblorz/go-modsync/internal/models"
	"github.com/jakoblorz/go-modsync/internal/platform"
)

// AddCommand handles the add command
type AddCommand struct {
	fs       filesystem.FileSystem
	cc       *commandContext
	name     string
	slug     string
	disabled bool
	noVerify bool
}

// NewAddCommand creates a new add command
func NewAddCommand(fs filesystem.FileSystem, cc *commandContext) *cobra.Command {
	cmd := &AddCommand{fs: fs, cc: cc}

	cobraCmd := &cobra.Command{
		Use:   "add <identifier>...",
		Short: "Add mods to the profile",
		Long: `Adds mods to the profile by identifier.

Identifiers:
  owner/repo   GitHub repository releases
  238222       CurseForge project id
  AANobbMI     Modrinth project id or slug

Append @<release> to pin a specific version, e.g. sodium@mc1.20.1-0.5.3.

Every mod is looked up on its platform first. Modrinth slugs are replaced by the
project id, and the display name and file slug are taken from the project unless
--name or --slug is given. CurseForge lookups need an API key.`,
		Example: `  modsync add sodium lithium
  modsync add CaffeineMC/lithium-fabric --name Lithium
  modsync add 238222@4712866`,
		Args: requireArgs("identifier"),
		RunE: cmd.Run,
	}

	cobraCmd.Flags().StringVar(&cmd.name, "name", "", "Display name (only with a single identifier)")
	cobraCmd.Flags().StringVar(&cmd.slug, "slug", "", "File slug used to match installed jars (only with a single identifier)")
	cobraCmd.Flags().BoolVar(&cmd.disabled, "disabled", false, "Add the mods to the disabled set")
	cobraCmd.Flags().BoolVar(&cmd.noVerify, "no-verify", false, "Add the identifiers as typed, without looking them up")

	return cobraCmd
}

// Run executes the add command
func (c *AddCommand) Run(cmd *cobra.Command, args []string) error {
	if (c.name != "" || c.slug != "") && len(args) > 1 {
		return fmt.Errorf("--name and --slug can only be used with a single identifier")
	}

	doc, err := c.cc.loadDocument()
	if err != nil {
		return err
	}

	var added []models.ModRecord
	for _, raw := range args {
		id, err := models.ParseIdentifier(raw)
		if err != nil {
			return err
		}

		var project *platform.Project
		switch {
		case c.noVerify:
		case id.Kind == models.KindGitHub:
			if id, err = c.verifyRepository(cmd.Context(), id); err != nil {
				return err
			}
		default:
			if project, err = c.describe(cmd.Context(), id); err != nil {
				return err
			}
			if project != nil {
				id = project.ID
			}
		}
		if doc.Profile.Contains(id) {
			return fmt.Errorf("%s is already present in this profile", id.OverrideKey())
		}

		record := models.NewModRecord(c.recordName(id, project), id, c.recordSlug(id, project))
		record.PinRelease = id.IsPinned()
		if c.disabled {
			doc.Profile.Disabled = append(doc.Profile.Disabled, record)
		} else {
			doc.Profile.Mods = append(doc.Profile.Mods, record)
		}
		added = append(added, record)
	}

	if err := c.cc.saveDocument(doc); err != nil {
		return err
	}

	for _, record := range added {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ Added %s (%s)\n", record.Name, record.Identifier)
	}
	return nil
}

// verifyRepository looks the repository up and returns the identifier with its canonical owner and name
func (c *AddCommand) verifyRepository(ctx context.Context, id models.ModIdentifier) (models.ModIdentifier, error) {
	repo, err := c.cc.github().GetRepository(ctx, id.Owner, id.Repo)
	if err != nil {
		return id, fmt.Errorf("failed to look up %s: %w", id.OverrideKey(), err)
	}
	return models.GitHubRepository(repo.Owner, repo.Name).Pinned(id.Pin), nil
}

// describe returns nil when the configured resolver cannot look projects up
func (c *AddCommand) describe(ctx context.Context, id models.ModIdentifier) (*platform.Project, error) {
	describer := c.cc.describer()
	if describer == nil {
		c.cc.logger.Debug("resolver cannot look up projects", "mod", id.String())
		return nil, nil
	}

	project, err := describer.Describe(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to look up %s: %w", id.OverrideKey(), err)
	}
	return project, nil
}

func (c *AddCommand) recordName(id models.ModIdentifier, project *platform.Project) string {
	if c.name != "" {
		return c.name
	}
	if project != nil && project.Name != "" {
		return project.Name
	}
	if id.Kind == models.KindGitHub {
		return id.Repo
	}
	return id.OverrideKey()
}

// recordSlug falls back to the Modrinth project, which is the slug when the user typed one
func (c *AddCommand) recordSlug(id models.ModIdentifier, project *platform.Project) string {
	if c.slug != "" {
		return c.slug
	}
	if project != nil && project.Slug != "" {
		return project.Slug
	}
	if id.Kind == models.KindModrinth {
		return id.ProjectID
	}
	return ""
}
