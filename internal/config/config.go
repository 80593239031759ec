package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Default remote template URLs, one per sync mode.
const (
	DefaultProjectTemplateURL = "https://raw.githubusercontent.com/BrianInAz/context-standards/main/AGENTS.md"
	DefaultGlobalTemplateURL  = "https://raw.githubusercontent.com/BrianInAz/context-standards/main/AGENTS.global.md"
)

// DocumentName is the canonical context document filename.
const DocumentName = "AGENTS.md"

// StoreDirName is the canonical store directory for global installs,
// created directly under the user's home directory.
const StoreDirName = ".context-standards"

// Config holds user-tunable settings. Every field has a baked-in default;
// a config file only overrides what it sets.
type Config struct {
	// Policy selects the divergence policy: "always-replace" or
	// "preserve-if-larger".
	Policy string `yaml:"policy"`

	// LinkMode selects how aliases are materialized: "symlink" or "copy".
	LinkMode string `yaml:"link_mode"`

	// Channel is the webhook notification channel.
	Channel string `yaml:"channel"`

	Remote  Remote  `yaml:"remote"`
	Aliases Aliases `yaml:"aliases"`
}

// Remote holds the template URL per sync mode.
type Remote struct {
	Project string `yaml:"project"`
	Global  string `yaml:"global"`
}

// Aliases enumerates alias paths per sync mode, relative to the sync root.
// The alias set is configuration, not logic: consumers that expect the
// context document under a different name get an entry here, nothing else.
type Aliases struct {
	Project []string `yaml:"project"`
	Global  []string `yaml:"global"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config {
	return Config{
		Policy:   "always-replace",
		LinkMode: "symlink",
		Channel:  "#context-standards",
		Remote: Remote{
			Project: DefaultProjectTemplateURL,
			Global:  DefaultGlobalTemplateURL,
		},
		Aliases: Aliases{
			Project: []string{
				".cursorrules",
				filepath.Join(".claude", "CLAUDE.md"),
				filepath.Join(".gemini", "GEMINI.md"),
				filepath.Join(".roo", "roo.md"),
			},
			Global: []string{
				filepath.Join(".claude", "CLAUDE.md"),
				filepath.Join(".gemini", "GEMINI.md"),
				filepath.Join(".codex", "AGENTS.md"),
			},
		},
	}
}

// Load reads the config file at path and merges it over the defaults.
// A missing file is not an error: the defaults are returned as-is.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if file.Policy != "" {
		cfg.Policy = file.Policy
	}
	if file.LinkMode != "" {
		cfg.LinkMode = file.LinkMode
	}
	if file.Channel != "" {
		cfg.Channel = file.Channel
	}
	if file.Remote.Project != "" {
		cfg.Remote.Project = file.Remote.Project
	}
	if file.Remote.Global != "" {
		cfg.Remote.Global = file.Remote.Global
	}
	if len(file.Aliases.Project) > 0 {
		cfg.Aliases.Project = file.Aliases.Project
	}
	if len(file.Aliases.Global) > 0 {
		cfg.Aliases.Global = file.Aliases.Global
	}

	return cfg, nil
}

// LoadDefault loads config.yaml from the config directory.
func LoadDefault() (Config, error) {
	dir := Dir()
	if dir == "" {
		return DefaultConfig(), nil
	}
	return Load(filepath.Join(dir, "config.yaml"))
}
