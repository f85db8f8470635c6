package tui

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/jakoblorz/go-modsync/internal/models"
)

// ModPicker lets the user choose mods with a huh multi-select form
type ModPicker struct {
	theme *huh.Theme
}

// NewModPicker creates a picker using the default theme
func NewModPicker() *ModPicker {
	return &ModPicker{theme: NewHuhTheme()}
}

// Pick shows records and returns the chosen indices; nil when the user aborted
func (p *ModPicker) Pick(title string, records []models.ModRecord) ([]int, error) {
	selected := make([]int, 0, len(records))

	keyMap := huh.NewDefaultKeyMap()
	keyMap.MultiSelect.Toggle.SetKeys(" ", "x")
	keyMap.MultiSelect.Toggle.SetHelp("space", "toggle")
	keyMap.MultiSelect.Submit.SetKeys("enter")
	keyMap.MultiSelect.Submit.SetHelp("enter", "confirm")

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[int]().
				Title(title).
				Options(Options(records)...).
				Value(&selected),
		),
	).
		WithTheme(p.theme).
		WithShowHelp(true).
		WithProgramOptions(tea.WithAltScreen()).
		WithKeyMap(keyMap)

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil, nil
		}
		return nil, err
	}

	return selected, nil
}

// Options builds one option per record, valued by its index
func Options(records []models.ModRecord) []huh.Option[int] {
	opts := make([]huh.Option[int], 0, len(records))
	for i, r := range records {
		opts = append(opts, huh.NewOption(OptionLabel(r), i))
	}
	return opts
}

// OptionLabel renders a record as "MR AANobbMI  Sodium"
func OptionLabel(r models.ModRecord) string {
	return fmt.Sprintf("%-11s  %s", r.Identifier.Label(), r.DisplayName())
}
