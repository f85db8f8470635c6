package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// AppName is the application name
	AppName = "modsync"

	// SettingsFileName is the settings file inside the config directory
	SettingsFileName = "settings.yaml"

	// DefaultProfilePath is the profile document used when none is given
	DefaultProfilePath = "modsync.yaml"

	envPrefix = "MODSYNC"
)

// Settings are the user-level options that are not part of a profile
type Settings struct {
	Profile          string `mapstructure:"profile"`
	Workers          int    `mapstructure:"workers"`
	CurseForgeAPIKey string `mapstructure:"curseforge_api_key"`
	GitHubToken      string `mapstructure:"github_token"`
	UserAgent        string `mapstructure:"user_agent"`
	ModrinthURL      string `mapstructure:"modrinth_url"`
	CurseForgeURL    string `mapstructure:"curseforge_url"`
}

// LoadOptions controls where settings are read from
type LoadOptions struct {
	// SettingsFile is read exclusively when set
	SettingsFile string
	// ConfigDir overrides the platform config directory
	ConfigDir string
}

// ConfigDir returns $XDG_CONFIG_HOME/modsync, defaulting to ~/.config/modsync
func ConfigDir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, AppName), nil
}

// LoadSettings merges defaults, the optional settings file and MODSYNC_* environment variables
func LoadSettings(opts LoadOptions) (*Settings, error) {
	v := viper.New()

	v.SetDefault("profile", DefaultProfilePath)
	v.SetDefault("workers", 8)
	v.SetDefault("curseforge_api_key", "")
	v.SetDefault("github_token", "")
	v.SetDefault("user_agent", "")
	v.SetDefault("modrinth_url", "")
	v.SetDefault("curseforge_url", "")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	path := opts.SettingsFile
	if path == "" {
		dir := opts.ConfigDir
		if dir == "" {
			var err error
			if dir, err = ConfigDir(); err != nil {
				return nil, err
			}
		}
		if candidate := filepath.Join(dir, SettingsFileName); fileExists(candidate) {
			path = candidate
		}
	} else if !fileExists(path) {
		return nil, fmt.Errorf("settings file not found: %s", path)
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read settings: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}

	if s.GitHubToken == "" {
		s.GitHubToken = firstEnv("GH_TOKEN", "GITHUB_TOKEN")
	}
	if s.Workers <= 0 {
		return nil, fmt.Errorf("workers must be positive, got %d", s.Workers)
	}

	return &s, nil
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
