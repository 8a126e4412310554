package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/treewrite/pkg/config"
)

func TestFromYAML(t *testing.T) {
	t.Parallel()

	data := []byte(`
language: python
flavor: commonmark
extensions:
  python: [".pyi"]
ignore: ["build/**"]
gitignore: false
backups:
  enabled: false
  mode: none
pattern:
  match_timeout: 250ms
`)

	cfg, err := config.FromYAML(data)
	require.NoError(t, err)

	assert.Equal(t, "python", cfg.Language)
	assert.Equal(t, config.FlavorCommonMark, cfg.Flavor)
	assert.Equal(t, []string{".pyi"}, cfg.Extensions["python"])
	assert.Equal(t, []string{"build/**"}, cfg.Ignore)
	assert.False(t, cfg.Gitignore)
	assert.Equal(t, "none", cfg.Backups.Mode)
	assert.Equal(t, 250*time.Millisecond, cfg.Pattern.MatchTimeout)
}

func TestFromYAML_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
	}{
		{"unknown key", "langauge: python\n"},
		{"bad type", "ignore: 3\n"},
		{"bad duration", "pattern:\n  match_timeout: soon\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := config.FromYAML([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestFromYAML_Empty(t *testing.T) {
	t.Parallel()

	cfg, err := config.FromYAML([]byte("\n"))
	require.NoError(t, err)
	assert.Empty(t, cfg.Language)
}

func TestDefaultTemplateParses(t *testing.T) {
	t.Parallel()

	cfg, err := config.FromYAML([]byte(config.DefaultTemplate))
	require.NoError(t, err)
	assert.Equal(t, config.LanguageAuto, cfg.Language)
	assert.True(t, cfg.Backups.Enabled)
	assert.Equal(t, 5*time.Second, cfg.Pattern.MatchTimeout)
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	cfg.Ignore = []string{"a/**"}
	cfg.Extensions = map[string][]string{"go": {".go.tmpl"}}

	data, err := cfg.ToYAML()
	require.NoError(t, err)

	back, err := config.FromYAML(data)
	require.NoError(t, err)
	assert.Equal(t, cfg.Language, back.Language)
	assert.Equal(t, cfg.Ignore, back.Ignore)
	assert.Equal(t, cfg.Extensions, back.Extensions)
	assert.Equal(t, cfg.Backups, back.Backups)
}

func TestClone(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	cfg.Ignore = []string{"a"}
	cfg.Extensions = map[string][]string{"go": {".x"}}
	cfg.DryRun = true

	clone := cfg.Clone()
	clone.Ignore[0] = "b"
	clone.Extensions["go"][0] = ".y"

	assert.Equal(t, "a", cfg.Ignore[0])
	assert.Equal(t, ".x", cfg.Extensions["go"][0])
	assert.True(t, clone.DryRun)
}

func TestFormatIsValid(t *testing.T) {
	t.Parallel()

	assert.True(t, config.FormatText.IsValid())
	assert.True(t, config.FormatDiff.IsValid())
	assert.False(t, config.OutputFormat("sarif").IsValid())
}

func TestBackupsEnabled(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	assert.True(t, cfg.BackupsEnabled())

	cfg.NoBackups = true
	assert.False(t, cfg.BackupsEnabled())

	cfg = config.NewConfig()
	cfg.Backups.Mode = "none"
	assert.False(t, cfg.BackupsEnabled())
}
