package toggle

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/jakoblorz/go-modsync/internal/filesystem"
	"github.com/jakoblorz/go-modsync/internal/logging"
	"github.com/jakoblorz/go-modsync/internal/models"
)

// DisabledMarker is appended to the filename of installed files of disabled mods
const DisabledMarker = ".disabled"

// slug separators that may follow a slug in a filename, e.g. "sodium-fabric-0.5.jar"
const slugSeparators = "-_+."

// MarkerAction is the kind of change applied to a file
type MarkerAction string

const (
	ActionMark   MarkerAction = "mark"
	ActionUnmark MarkerAction = "unmark"
	// ActionDrop removes a marked file whose unmarked counterpart already exists
	ActionDrop MarkerAction = "drop"
)

// MarkerChange is one planned or applied change to a file in the output directory
type MarkerChange struct {
	Action MarkerAction
	From   string
	To     string
	Slug   string
}

// MarkerMismatchError is returned when installed files disagree with the disabled set
type MarkerMismatchError struct {
	Changes []MarkerChange
}

func (e *MarkerMismatchError) Error() string {
	files := make([]string, 0, len(e.Changes))
	for _, c := range e.Changes {
		files = append(files, filepath.Base(c.From))
	}
	return fmt.Sprintf("disabled markers out of sync for %s", strings.Join(files, ", "))
}

// SyncMarkers renames files in outputDir so that exactly the installed files of disabled mods
// carry the disabled marker. Files named in keep are wanted by active mods and never carry it,
// whatever slug they match. The directory is created if it does not exist. Running it again
// without changing the profile applies no further changes.
func SyncMarkers(fsys filesystem.FileSystem, outputDir string, profile *models.Profile, keep []string, logger *log.Logger) ([]MarkerChange, error) {
	if logger == nil {
		logger = logging.Discard()
	}

	if err := fsys.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	for _, m := range profile.Disabled {
		if m.FileSlug() == "" {
			logger.Warn("disabled mod has no slug, its files cannot be matched", "mod", m.Name)
		}
	}

	changes, err := planMarkers(fsys, outputDir, profile, keep)
	if err != nil {
		return nil, err
	}

	for _, c := range changes {
		switch c.Action {
		case ActionMark, ActionUnmark:
			if err := fsys.Rename(c.From, c.To); err != nil {
				return nil, fmt.Errorf("failed to rename %s: %w", filepath.Base(c.From), err)
			}
		case ActionDrop:
			if err := fsys.Remove(c.From); err != nil {
				return nil, fmt.Errorf("failed to remove %s: %w", filepath.Base(c.From), err)
			}
		}
		logger.Info("updated disabled marker", "action", string(c.Action), "file", filepath.Base(c.From), "slug", c.Slug)
	}

	return changes, nil
}

// AuditMarkers checks that no file in outputDir would be changed by SyncMarkers
func AuditMarkers(fsys filesystem.FileSystem, outputDir string, profile *models.Profile, keep []string) error {
	changes, err := planMarkers(fsys, outputDir, profile, keep)
	if err != nil {
		return err
	}
	if len(changes) > 0 {
		return &MarkerMismatchError{Changes: changes}
	}
	return nil
}

func planMarkers(fsys filesystem.FileSystem, outputDir string, profile *models.Profile, keep []string) ([]MarkerChange, error) {
	entries, err := fsys.ReadDir(outputDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read output directory: %w", err)
	}

	known := profile.KnownSlugs()
	// Longest first, so "sodium-extra" wins over "sodium"
	sort.SliceStable(known, func(i, j int) bool { return len(known[i]) > len(known[j]) })
	disabled := profile.DisabledSlugs()

	wanted := make(map[string]bool, len(keep))
	for _, name := range keep {
		wanted[name] = true
	}

	var changes []MarkerChange
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		marked := hasSuffixFold(name, DisabledMarker)
		plain := name
		if marked {
			plain = name[:len(name)-len(DisabledMarker)]
		}
		if !hasSuffixFold(plain, ".jar") {
			continue
		}

		slug, _ := MatchSlug(plain, known)
		isDisabled := slug != "" && disabled[slug] && !wanted[plain]
		path := filepath.Join(outputDir, name)

		switch {
		case isDisabled && !marked:
			changes = append(changes, MarkerChange{Action: ActionMark, From: path, To: path + DisabledMarker, Slug: slug})
		case !isDisabled && marked:
			target := filepath.Join(outputDir, plain)
			if fsys.Exists(target) {
				changes = append(changes, MarkerChange{Action: ActionDrop, From: path, To: target, Slug: slug})
			} else {
				changes = append(changes, MarkerChange{Action: ActionUnmark, From: path, To: target, Slug: slug})
			}
		}
	}

	return changes, nil
}

// MatchSlug returns the first slug (slugs should be sorted longest first) that names the file:
// the lower-cased name without ".jar" equals the slug or starts with it followed by a separator.
func MatchSlug(filename string, slugs []string) (string, bool) {
	base := strings.ToLower(filename)
	if hasSuffixFold(base, ".jar") {
		base = base[:len(base)-len(".jar")]
	}

	for _, slug := range slugs {
		if slug == "" || !strings.HasPrefix(base, slug) {
			continue
		}
		if len(base) == len(slug) || strings.ContainsRune(slugSeparators, rune(base[len(slug)])) {
			return slug, true
		}
	}
	return "", false
}

func hasSuffixFold(s, suffix string) bool {
	return len(s) >= len(suffix) && strings.EqualFold(s[len(s)-len(suffix):], suffix)
}
