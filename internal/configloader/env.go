package configloader

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/yaklabco/treewrite/pkg/config"
)

// envVarPrefix is the prefix for all treewrite environment variables.
const envVarPrefix = "TREEWRITE_"

// envVar binds one environment variable to a config setter.
type envVar struct {
	description string
	apply       func(cfg *config.Config, value string) error
}

//nolint:gochecknoglobals // Read-only lookup table.
var envVars = map[string]envVar{
	"LANGUAGE": {"Grammar for every file, or auto", func(cfg *config.Config, v string) error {
		cfg.Language = v
		return nil
	}},
	"FLAVOR": {"Markdown flavor: commonmark or gfm", func(cfg *config.Config, v string) error {
		cfg.Flavor = config.Flavor(v)
		return nil
	}},
	"FORMAT": {"Output format: text, json or diff", func(cfg *config.Config, v string) error {
		cfg.Format = config.OutputFormat(v)
		return nil
	}},
	"BACKUPS_MODE": {"Backup mode: sidecar or none", func(cfg *config.Config, v string) error {
		cfg.Backups.Mode = v
		return nil
	}},
	"IGNORE": {"Comma-separated list of ignore patterns", func(cfg *config.Config, v string) error {
		cfg.Ignore = parseSliceValue(v)
		return nil
	}},
	"DRY_RUN":         {"Dry-run mode: true or false", boolSetter(func(c *config.Config) *bool { return &c.DryRun })},
	"NO_BACKUPS":      {"Disable backups: true or false", boolSetter(func(c *config.Config) *bool { return &c.NoBackups })},
	"BACKUPS_ENABLED": {"Enable backups: true or false", boolSetter(func(c *config.Config) *bool { return &c.Backups.Enabled })},
	"GITIGNORE":       {"Honor .gitignore: true or false", boolSetter(func(c *config.Config) *bool { return &c.Gitignore })},
	"JOBS": {"Number of parallel workers (0 = auto)", func(cfg *config.Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid integer %q", v)
		}
		cfg.Jobs = n
		return nil
	}},
	"MATCH_TIMEOUT": {"Substitution timeout, e.g. 2s", func(cfg *config.Config, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid duration %q", v)
		}
		cfg.Pattern.MatchTimeout = d
		return nil
	}},
}

func boolSetter(field func(*config.Config) *bool) func(*config.Config, string) error {
	return func(cfg *config.Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid boolean %q (expected true/false/1/0)", v)
		}
		*field(cfg) = b
		return nil
	}
}

// LoadFromEnv applies TREEWRITE_* environment variable overrides.
func LoadFromEnv(cfg *config.Config) error {
	if cfg == nil {
		return nil
	}

	for suffix, ev := range envVars {
		name := envVarPrefix + suffix
		value := os.Getenv(name)
		if value == "" {
			continue
		}
		if err := ev.apply(cfg, value); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// parseSliceValue parses a comma-separated string into trimmed elements.
func parseSliceValue(value string) []string {
	var result []string
	for part := range strings.SplitSeq(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// ListEnvVars returns the supported environment variables, sorted, with
// their descriptions.
func ListEnvVars() [][2]string {
	out := make([][2]string, 0, len(envVars))
	for suffix, ev := range envVars {
		out = append(out, [2]string{envVarPrefix + suffix, ev.description})
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}
