// Package toggle moves mods between the active and disabled sets of a profile
// and mirrors that state onto the installed files.
package toggle

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jakoblorz/go-modsync/internal/models"
)

// ErrNoSelectors is returned when no selectors were given and no picker is available
var ErrNoSelectors = errors.New("no mods given and interactive selection is not available")

// SelectorNotFoundError is returned when a selector matches no mod
type SelectorNotFoundError struct {
	Selector string
}

func (e *SelectorNotFoundError) Error() string {
	return fmt.Sprintf("a mod with ID or name %s is not present in this profile", e.Selector)
}

// Picker lets the user choose records interactively. It returns the chosen indices,
// or none when the user aborted.
type Picker interface {
	Pick(title string, records []models.ModRecord) ([]int, error)
}

// Select resolves selectors to indices of records. Each selector takes the first record it
// matches by name, identifier or slug. Selection either succeeds for every selector or fails
// on the first one without a match. The returned indices are unique and ascending.
func Select(records []models.ModRecord, selectors []string) ([]int, error) {
	seen := make(map[int]bool, len(selectors))
	indices := make([]int, 0, len(selectors))

	for _, selector := range selectors {
		selector = strings.TrimSpace(selector)

		index := -1
		for i, record := range records {
			if record.Matches(selector) {
				index = i
				break
			}
		}
		if index < 0 {
			return nil, &SelectorNotFoundError{Selector: selector}
		}

		if !seen[index] {
			seen[index] = true
			indices = append(indices, index)
		}
	}

	sort.Ints(indices)
	return indices, nil
}

// choose picks indices from selectors, or interactively when there are none
func choose(title string, records []models.ModRecord, selectors []string, picker Picker) ([]int, error) {
	if len(selectors) > 0 {
		return Select(records, selectors)
	}
	if len(records) == 0 {
		return nil, nil
	}
	if picker == nil {
		return nil, ErrNoSelectors
	}

	picked, err := picker.Pick(title, records)
	if err != nil {
		return nil, fmt.Errorf("failed to select mods: %w", err)
	}

	valid := make([]int, 0, len(picked))
	seen := make(map[int]bool, len(picked))
	for _, i := range picked {
		if i < 0 || i >= len(records) {
			return nil, fmt.Errorf("selection index %d out of range", i)
		}
		if !seen[i] {
			seen[i] = true
			valid = append(valid, i)
		}
	}
	sort.Ints(valid)
	return valid, nil
}
