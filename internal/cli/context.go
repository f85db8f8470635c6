package cli

import (
	"fmt"
	"net/http"
	"path/filepath"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/jakoblorz/go-modsync/internal/config"
	"github.com/jakoblorz/go-modsync/internal/filesystem"
	"github.com/jakoblorz/go-modsync/internal/github"
	"github.com/jakoblorz/go-modsync/internal/logging"
	"github.com/jakoblorz/go-modsync/internal/platform"
	"github.com/jakoblorz/go-modsync/internal/toggle"
	"github.com/jakoblorz/go-modsync/internal/tui"
)

// Deps are the collaborators commands run with. Nil fields are built from the settings.
type Deps struct {
	Settings   *config.Settings
	Resolver   platform.Resolver
	GitHub     github.GitHubClient
	Picker     toggle.Picker
	HTTPClient *http.Client
}

// commandContext is the state shared by all subcommands of one invocation
type commandContext struct {
	fs   filesystem.FileSystem
	deps Deps

	profilePath  string
	settingsFile string
	verbosity    int

	settings *config.Settings
	logger   *log.Logger
}

func newCommandContext(fs filesystem.FileSystem, deps Deps) *commandContext {
	return &commandContext{
		fs:     fs,
		deps:   deps,
		logger: logging.Discard(),
	}
}

// setup loads the settings and configures logging; it runs before every subcommand
func (c *commandContext) setup(cmd *cobra.Command) error {
	c.logger = logging.Setup(cmd.ErrOrStderr(), c.verbosity)

	if c.deps.Settings != nil {
		c.settings = c.deps.Settings
	} else {
		settings, err := config.LoadSettings(config.LoadOptions{SettingsFile: c.settingsFile})
		if err != nil {
			return err
		}
		c.settings = settings
	}

	if c.profilePath == "" {
		c.profilePath = c.settings.Profile
	}
	if c.profilePath == "" {
		c.profilePath = config.DefaultProfilePath
	}
	if !filepath.IsAbs(c.profilePath) {
		wd, err := c.fs.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}
		c.profilePath = filepath.Join(wd, c.profilePath)
	}

	c.logger.Debug("settings loaded", "profile", c.profilePath, "workers", c.settings.Workers)
	return nil
}

func (c *commandContext) loadDocument() (*config.Document, error) {
	return config.LoadProfile(c.fs, c.profilePath)
}

// outputDir is the profile's output directory, resolved against the profile file
func (c *commandContext) outputDir(doc *config.Document) string {
	return doc.ResolveOutputDir(c.profilePath)
}

func (c *commandContext) saveDocument(doc *config.Document) error {
	return config.SaveProfile(c.fs, c.profilePath, doc)
}

func (c *commandContext) picker() toggle.Picker {
	if c.deps.Picker != nil {
		return c.deps.Picker
	}
	return tui.NewModPicker()
}

func (c *commandContext) resolver() platform.Resolver {
	if c.deps.Resolver != nil {
		return c.deps.Resolver
	}
	return newRouter(c.settings, c.deps.HTTPClient, c.github())
}

// describer is nil when an injected resolver cannot look projects up
func (c *commandContext) describer() platform.Describer {
	if c.deps.Resolver == nil {
		return newRouter(c.settings, c.deps.HTTPClient, c.github())
	}
	if d, ok := c.deps.Resolver.(platform.Describer); ok {
		return d
	}
	return nil
}

func (c *commandContext) github() github.GitHubClient {
	if c.deps.GitHub != nil {
		return c.deps.GitHub
	}
	if c.settings.GitHubToken != "" {
		return github.NewClient(c.settings.GitHubToken)
	}
	c.logger.Info("no GitHub token configured, using unauthenticated requests")
	return github.NewClientWithoutAuth()
}

func (c *commandContext) workers() int {
	if c.settings == nil || c.settings.Workers <= 0 {
		return 1
	}
	return c.settings.Workers
}

func (c *commandContext) userAgent() string {
	if c.settings != nil && c.settings.UserAgent != "" {
		return c.settings.UserAgent
	}
	return platform.DefaultUserAgent
}

// newRouter builds the platform backends from the settings
func newRouter(s *config.Settings, httpClient *http.Client, ghClient github.GitHubClient) *platform.Router {
	common := []platform.Option{platform.WithUserAgent(s.UserAgent)}
	if httpClient != nil {
		common = append(common, platform.WithHTTPClient(httpClient))
	}

	return &platform.Router{
		Modrinth:   platform.NewModrinthResolver(slices.Concat(common, []platform.Option{platform.WithBaseURL(s.ModrinthURL)})...),
		CurseForge: platform.NewCurseForgeResolver(s.CurseForgeAPIKey, slices.Concat(common, []platform.Option{platform.WithBaseURL(s.CurseForgeURL)})...),
		GitHub:     platform.NewGitHubResolver(ghClient),
	}
}

// requireArgs is cobra.MinimumNArgs with a friendlier message
func requireArgs(what string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return fmt.Errorf("at least one %s is required", what)
		}
		return nil
	}
}
