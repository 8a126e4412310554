package configloader

import (
	"maps"

	"github.com/yaklabco/treewrite/pkg/config"
)

// merge overlays the flag-level override on base:
//   - scalars overwrite when non-zero;
//   - booleans overwrite only when true, so an unset flag cannot clear a
//     file setting;
//   - slices replace when non-nil and maps merge key by key.
func merge(base, override *config.Config) *config.Config {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	result := base.Clone()

	if override.Language != "" {
		result.Language = override.Language
	}
	if override.Flavor != "" {
		result.Flavor = override.Flavor
	}
	if override.Format != "" {
		result.Format = override.Format
	}
	if override.Jobs != 0 {
		result.Jobs = override.Jobs
	}
	if override.Backups.Mode != "" {
		result.Backups.Mode = override.Backups.Mode
	}
	if override.Pattern.MatchTimeout != 0 {
		result.Pattern.MatchTimeout = override.Pattern.MatchTimeout
	}

	result.DryRun = result.DryRun || override.DryRun
	result.Check = result.Check || override.Check
	result.NoBackups = result.NoBackups || override.NoBackups

	if override.Ignore != nil {
		result.Ignore = append([]string(nil), override.Ignore...)
	}
	if override.Extensions != nil {
		if result.Extensions == nil {
			result.Extensions = make(map[string][]string, len(override.Extensions))
		}
		maps.Copy(result.Extensions, override.Extensions)
	}

	return result
}

// MergeAll merges configurations in order, later ones taking precedence.
func MergeAll(configs ...*config.Config) *config.Config {
	if len(configs) == 0 {
		return nil
	}

	result := configs[0]
	for _, cfg := range configs[1:] {
		result = merge(result, cfg)
	}
	return result
}
