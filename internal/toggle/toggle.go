package toggle

import (
	"slices"
	"strings"

	"github.com/jakoblorz/go-modsync/internal/models"
)

// Disable moves the selected active mods to the disabled set and returns them.
// Without selectors the picker is asked to choose from the active mods.
// Nothing is moved unless every selector matched.
func Disable(profile *models.Profile, selectors []string, picker Picker) ([]models.ModRecord, error) {
	indices, err := choose("Select mods to disable", profile.Mods, selectors, picker)
	if err != nil {
		return nil, err
	}
	return transfer(&profile.Mods, &profile.Disabled, indices), nil
}

// Enable moves the selected disabled mods back to the active set and returns them
func Enable(profile *models.Profile, selectors []string, picker Picker) ([]models.ModRecord, error) {
	indices, err := choose("Select mods to enable", profile.Disabled, selectors, picker)
	if err != nil {
		return nil, err
	}
	return transfer(&profile.Disabled, &profile.Mods, indices), nil
}

// Remove deletes the selected mods from the profile. Selectors are matched against
// the active mods first and then against the disabled ones.
func Remove(profile *models.Profile, selectors []string, picker Picker) ([]models.ModRecord, error) {
	if len(selectors) == 0 {
		all := append(append([]models.ModRecord(nil), profile.Mods...), profile.Disabled...)
		indices, err := choose("Select mods to remove", all, nil, picker)
		if err != nil {
			return nil, err
		}

		var active, disabled []int
		for _, i := range indices {
			if i < len(profile.Mods) {
				active = append(active, i)
			} else {
				disabled = append(disabled, i-len(profile.Mods))
			}
		}
		removed := transfer(&profile.Mods, nil, active)
		return append(removed, transfer(&profile.Disabled, nil, disabled)...), nil
	}

	var active, disabled []string
	for _, selector := range selectors {
		if _, err := Select(profile.Mods, []string{selector}); err == nil {
			active = append(active, selector)
			continue
		}
		if _, err := Select(profile.Disabled, []string{selector}); err != nil {
			return nil, err
		}
		disabled = append(disabled, selector)
	}

	activeIdx, _ := Select(profile.Mods, active)
	disabledIdx, _ := Select(profile.Disabled, disabled)

	removed := transfer(&profile.Mods, nil, activeIdx)
	return append(removed, transfer(&profile.Disabled, nil, disabledIdx)...), nil
}

// transfer removes the records at indices from src, highest index first so earlier
// indices stay valid, and appends them to dst when dst is set.
// The remaining records keep their order.
func transfer(src, dst *[]models.ModRecord, indices []int) []models.ModRecord {
	desc := slices.Clone(indices)
	slices.Sort(desc)
	slices.Reverse(desc)

	moved := make([]models.ModRecord, 0, len(desc))
	for _, i := range desc {
		record := (*src)[i]
		*src = slices.Delete(*src, i, i+1)
		moved = append(moved, record)
		if dst != nil {
			*dst = append(*dst, record)
		}
	}
	return moved
}

// Names joins the names of records for a one-line summary like "Disabled a, b"
func Names(records []models.ModRecord) string {
	names := make([]string, 0, len(records))
	for _, r := range records {
		names = append(names, r.Name)
	}
	return strings.Join(names, ", ")
}
