// Package config defines core configuration types for treewrite.
// These types are pure data structures; loading and merging live in
// internal/configloader.
package config

import "time"

// LanguageAuto selects the grammar per file from its name and content.
const LanguageAuto = "auto"

// BackupsConfig controls backup behavior when rewriting files.
type BackupsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Mode    string `yaml:"mode"` // "sidecar" or "none"
}

// PatternConfig tunes the regular-expression engine used by substitutions.
type PatternConfig struct {
	// MatchTimeout bounds a single substitution; zero uses the engine default.
	MatchTimeout time.Duration `yaml:"match_timeout,omitempty"`
}

// OutputFormat specifies how run results are reported.
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatDiff OutputFormat = "diff"
)

// IsValid returns true if the format is known.
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatText, FormatJSON, FormatDiff:
		return true
	default:
		return false
	}
}

// Flavor specifies the Markdown flavor used for .md files.
type Flavor string

const (
	FlavorCommonMark Flavor = "commonmark"
	FlavorGFM        Flavor = "gfm"
)

// Config is the root configuration structure for treewrite.
type Config struct {
	// Language is "auto" or the name of a grammar to force for every file.
	Language string `yaml:"language"`

	// Flavor is the Markdown flavor ("commonmark" or "gfm").
	Flavor Flavor `yaml:"flavor"`

	// Extensions maps a language to extra file extensions (with leading
	// dot) that should be parsed with it.
	Extensions map[string][]string `yaml:"extensions,omitempty"`

	// Ignore contains glob patterns for files to skip.
	Ignore []string `yaml:"ignore,omitempty"`

	// Gitignore makes discovery honor .gitignore files.
	Gitignore bool `yaml:"gitignore"`

	// Backups configures backup behavior when rewriting.
	Backups BackupsConfig `yaml:"backups"`

	// Pattern tunes regular-expression substitutions.
	Pattern PatternConfig `yaml:"pattern,omitempty"`

	// CLI-level options (not persisted to config files).

	// DryRun shows what would change without writing.
	DryRun bool `yaml:"-"`

	// Check reports pending rewrites and fails without writing.
	Check bool `yaml:"-"`

	// Format specifies the output format.
	Format OutputFormat `yaml:"-"`

	// Jobs specifies the number of parallel workers.
	Jobs int `yaml:"-"`

	// NoBackups disables backup creation.
	NoBackups bool `yaml:"-"`
}

// NewConfig returns a Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Language:  LanguageAuto,
		Flavor:    FlavorGFM,
		Gitignore: true,
		Backups: BackupsConfig{
			Enabled: true,
			Mode:    "sidecar",
		},
		Format: FormatText,
		Jobs:   0, // 0 means use GOMAXPROCS
	}
}

// BackupsEnabled reports whether a run should write backups.
func (c *Config) BackupsEnabled() bool {
	return c.Backups.Enabled && c.Backups.Mode != "none" && !c.NoBackups
}
