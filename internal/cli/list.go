package cli

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/spf13/cobra"

	"github.com/jakoblorz/go-modsync/internal/config"
	"github.com/jakoblorz/go-modsync/internal/filesystem"
	"github.com/jakoblorz/go-modsync/internal/models"
	"github.com/jakoblorz/go-modsync/internal/tui"
)

// DefaultListTemplate renders a profile for the list command
const DefaultListTemplate = `{{ header .Name }}
  Output directory  {{ .OutputDir }}
  Game versions     {{ join ", " .GameVersions | default "any" }}
  Mod loaders       {{ join ", " .ModLoaders | default "any" }}

{{ header (printf "Mods (%d)" (len .Mods)) }}
{{- range .Mods }}
  {{ .Line }}{{ if $.Verbose }}{{ if .Slug }}  slug={{ .Slug }}{{ end }}{{ if .Pinned }}  pinned{{ end }}{{ end }}
{{- else }}
  none
{{- end }}
{{- if .Disabled }}

{{ header (printf "Disabled (%d)" (len .Disabled)) }}
{{- range .Disabled }}
  {{ disabled .Line }}{{ if and $.Verbose .Slug }}  slug={{ .Slug }}{{ end }}
{{- end }}
{{- end }}
{{- if and .Verbose .Overrides }}

{{ header "Overrides" }}
{{- range .Overrides }}
  {{ .From }} -> {{ .To }}
{{- end }}
{{- end }}
`

// ListData is the data passed to the list template
type ListData struct {
	Name         string
	OutputDir    string
	GameVersions []string
	ModLoaders   []string
	Mods         []ListMod
	Disabled     []ListMod
	Overrides    []ListOverride
	Verbose      bool
}

// ListMod is one mod row of the list template
type ListMod struct {
	Name       string
	Identifier string
	Line       string
	Slug       string
	Pinned     bool
}

// ListOverride is one override row of the list template
type ListOverride struct {
	From string
	To   string
}

// ListCommand handles the list command
type ListCommand struct {
	fs           filesystem.FileSystem
	cc           *commandContext
	verbose      bool
	templateFile string
}

// NewListCommand creates a new list command
func NewListCommand(fs filesystem.FileSystem, cc *commandContext) *cobra.Command {
	cmd := &ListCommand{fs: fs, cc: cc}

	cobraCmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show the mods of the profile",
		Args:    cobra.NoArgs,
		RunE:    cmd.Run,
	}

	cobraCmd.Flags().BoolVar(&cmd.verbose, "verbose", false, "Show slugs, pins and overrides")
	cobraCmd.Flags().StringVar(&cmd.templateFile, "template", "", "Render with a custom text/template file (sprig functions available)")

	return cobraCmd
}

// Run executes the list command
func (c *ListCommand) Run(cmd *cobra.Command, args []string) error {
	doc, err := c.cc.loadDocument()
	if err != nil {
		return err
	}

	tmpl, err := c.template()
	if err != nil {
		return err
	}

	out, err := RenderList(tmpl, NewListData(doc, c.verbose))
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

func (c *ListCommand) template() (*template.Template, error) {
	text := DefaultListTemplate
	if c.templateFile != "" {
		data, err := c.fs.ReadFile(c.templateFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read template: %w", err)
		}
		text = string(data)
	}
	return ParseListTemplate(text)
}

// ParseListTemplate parses text with the sprig functions and the list styles
func ParseListTemplate(text string) (*template.Template, error) {
	funcs := sprig.TxtFuncMap()
	funcs["header"] = func(s string) string { return tui.HeaderStyle.Render(s) }
	funcs["disabled"] = func(s string) string { return tui.DisabledStyle.Render(s) }

	tmpl, err := template.New("list").Funcs(funcs).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}
	return tmpl, nil
}

// RenderList executes tmpl and trims trailing newlines
func RenderList(tmpl *template.Template, data ListData) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render template: %w", err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// NewListData flattens a profile document for the list template
func NewListData(doc *config.Document, verbose bool) ListData {
	p := doc.Profile

	data := ListData{
		Name:         p.Name,
		OutputDir:    p.OutputDir,
		GameVersions: p.Filters.GameVersions,
		Mods:         listMods(p.Mods),
		Disabled:     listMods(p.Disabled),
		Verbose:      verbose,
	}
	for _, l := range p.Filters.ModLoaders {
		data.ModLoaders = append(data.ModLoaders, l.String())
	}

	for key, target := range doc.Overrides {
		data.Overrides = append(data.Overrides, ListOverride{From: key, To: fmt.Sprintf("%s %s", target.Kind, target)})
	}
	sort.Slice(data.Overrides, func(i, j int) bool { return data.Overrides[i].From < data.Overrides[j].From })

	return data
}

func listMods(records []models.ModRecord) []ListMod {
	mods := make([]ListMod, 0, len(records))
	for _, r := range records {
		mods = append(mods, ListMod{
			Name:       r.Name,
			Identifier: r.Identifier.String(),
			Line:       tui.OptionLabel(r),
			Slug:       r.Slug,
			Pinned:     r.Identifier.IsPinned() || r.PinRelease,
		})
	}
	return mods
}
