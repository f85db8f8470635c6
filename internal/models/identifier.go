package models

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// IdentifierKind represents the platform a mod is hosted on
type IdentifierKind string

const (
	KindModrinth   IdentifierKind = "modrinth"
	KindCurseForge IdentifierKind = "curseforge"
	KindGitHub     IdentifierKind = "github"
)

// IsValid checks if the identifier kind is valid
func (k IdentifierKind) IsValid() bool {
	switch k {
	case KindModrinth, KindCurseForge, KindGitHub:
		return true
	default:
		return false
	}
}

// String returns the string representation of IdentifierKind
func (k IdentifierKind) String() string {
	return string(k)
}

// ModIdentifier is the canonical reference to a mod on one platform.
//
// Exactly one group of fields is meaningful, selected by Kind:
//   - KindModrinth:   ProjectID
//   - KindCurseForge: ModID
//   - KindGitHub:     Owner and Repo
//
// Pin optionally fixes a specific release (Modrinth version ID, CurseForge file ID or
// GitHub release tag). The struct is comparable, so identifiers are used directly as map keys.
type ModIdentifier struct {
	Kind      IdentifierKind
	ProjectID string
	ModID     int
	Owner     string
	Repo      string
	Pin       string
}

// ModrinthProject creates an identifier for a Modrinth project
func ModrinthProject(projectID string) ModIdentifier {
	return ModIdentifier{Kind: KindModrinth, ProjectID: projectID}
}

// CurseForgeProject creates an identifier for a CurseForge project
func CurseForgeProject(modID int) ModIdentifier {
	return ModIdentifier{Kind: KindCurseForge, ModID: modID}
}

// GitHubRepository creates an identifier for a GitHub repository
func GitHubRepository(owner, repo string) ModIdentifier {
	return ModIdentifier{Kind: KindGitHub, Owner: owner, Repo: repo}
}

// Pinned returns a copy of the identifier pinned to the given release
func (id ModIdentifier) Pinned(pin string) ModIdentifier {
	id.Pin = pin
	return id
}

// IsPinned reports whether the identifier is fixed to a specific release
func (id ModIdentifier) IsPinned() bool {
	return id.Pin != ""
}

// Unpinned returns the identifier without its pin
func (id ModIdentifier) Unpinned() ModIdentifier {
	id.Pin = ""
	return id
}

// Validate checks that the fields required by Kind are set
func (id ModIdentifier) Validate() error {
	switch id.Kind {
	case KindModrinth:
		if id.ProjectID == "" {
			return fmt.Errorf("modrinth identifier has no project id")
		}
	case KindCurseForge:
		if id.ModID <= 0 {
			return fmt.Errorf("curseforge identifier has invalid mod id %d", id.ModID)
		}
	case KindGitHub:
		if id.Owner == "" || id.Repo == "" {
			return fmt.Errorf("github identifier must have owner and repo")
		}
	default:
		return fmt.Errorf("unknown identifier kind: %q", id.Kind)
	}
	return nil
}

// OverrideKey returns the string an override map is keyed by: the project id,
// or owner/repo for repositories. Pins are not part of the key.
func (id ModIdentifier) OverrideKey() string {
	switch id.Kind {
	case KindModrinth:
		return id.ProjectID
	case KindCurseForge:
		return strconv.Itoa(id.ModID)
	case KindGitHub:
		return id.Owner + "/" + id.Repo
	default:
		return ""
	}
}

// String returns the canonical form, e.g. "AANobbMI", "238222@4567" or "owner/repo@v1.0.0"
func (id ModIdentifier) String() string {
	key := id.OverrideKey()
	if id.IsPinned() {
		return key + "@" + id.Pin
	}
	return key
}

// Label returns a short platform-prefixed label used in selection lists
func (id ModIdentifier) Label() string {
	switch id.Kind {
	case KindModrinth:
		return fmt.Sprintf("MR %-8s", id.ProjectID)
	case KindCurseForge:
		return fmt.Sprintf("CF %-8d", id.ModID)
	case KindGitHub:
		return fmt.Sprintf("GH %-8s", "…")
	default:
		return "??"
	}
}

// MatchesSelector reports whether a user supplied selector names this identifier.
// Repository selectors compare case-insensitively.
func (id ModIdentifier) MatchesSelector(selector string) bool {
	switch id.Kind {
	case KindModrinth:
		return id.ProjectID == selector
	case KindCurseForge:
		return strconv.Itoa(id.ModID) == selector
	case KindGitHub:
		return strings.EqualFold(id.Owner+"/"+id.Repo, selector)
	default:
		return false
	}
}

// ParseIdentifier parses a user supplied identifier.
//
//	owner/repo   GitHub repository
//	12345        CurseForge project
//	AANobbMI     Modrinth project (id or slug)
//
// A trailing "@pin" pins the identifier to a specific release.
func ParseIdentifier(raw string) (ModIdentifier, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ModIdentifier{}, fmt.Errorf("empty identifier")
	}

	var pin string
	if i := strings.LastIndex(s, "@"); i >= 0 {
		pin = s[i+1:]
		s = s[:i]
		if pin == "" || s == "" {
			return ModIdentifier{}, fmt.Errorf("invalid identifier: %s", raw)
		}
	}

	var id ModIdentifier
	switch {
	case strings.Contains(s, "/"):
		parts := strings.Split(s, "/")
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return ModIdentifier{}, fmt.Errorf("invalid repository identifier: %s (expected owner/repo)", raw)
		}
		id = GitHubRepository(parts[0], parts[1])
	case isDigits(s):
		modID, err := strconv.Atoi(s)
		if err != nil {
			return ModIdentifier{}, fmt.Errorf("invalid curseforge identifier %s: %w", raw, err)
		}
		id = CurseForgeProject(modID)
	default:
		id = ModrinthProject(s)
	}

	if err := id.Validate(); err != nil {
		return ModIdentifier{}, err
	}
	return id.Pinned(pin), nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// yamlIdentifier is the on-disk form of a ModIdentifier
type yamlIdentifier struct {
	Modrinth   string `yaml:"modrinth,omitempty"`
	CurseForge int    `yaml:"curseforge,omitempty"`
	GitHub     string `yaml:"github,omitempty"`
	Pin        string `yaml:"pin,omitempty"`
}

// MarshalYAML implements yaml.Marshaler
func (id ModIdentifier) MarshalYAML() (interface{}, error) {
	out := yamlIdentifier{Pin: id.Pin}
	switch id.Kind {
	case KindModrinth:
		out.Modrinth = id.ProjectID
	case KindCurseForge:
		out.CurseForge = id.ModID
	case KindGitHub:
		out.GitHub = id.Owner + "/" + id.Repo
	default:
		return nil, fmt.Errorf("cannot encode identifier of kind %q", id.Kind)
	}
	return out, nil
}

// UnmarshalYAML implements yaml.Unmarshaler
func (id *ModIdentifier) UnmarshalYAML(value *yaml.Node) error {
	var in yamlIdentifier
	if err := value.Decode(&in); err != nil {
		return err
	}

	set := 0
	var parsed ModIdentifier
	if in.Modrinth != "" {
		set++
		parsed = ModrinthProject(in.Modrinth)
	}
	if in.CurseForge != 0 {
		set++
		parsed = CurseForgeProject(in.CurseForge)
	}
	if in.GitHub != "" {
		set++
		owner, repo, ok := strings.Cut(in.GitHub, "/")
		if !ok {
			return fmt.Errorf("line %d: invalid github identifier %q (expected owner/repo)", value.Line, in.GitHub)
		}
		parsed = GitHubRepository(owner, repo)
	}
	if set != 1 {
		return fmt.Errorf("line %d: identifier must name exactly one of modrinth, curseforge or github", value.Line)
	}
	if err := parsed.Validate(); err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}

	*id = parsed.Pinned(in.Pin)
	return nil
}
