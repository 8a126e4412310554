package configloader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// ConfigPaths represents discovered configuration file paths. Missing
// files are empty strings.
type ConfigPaths struct {
	// System is the system-wide config path (e.g., /etc/treewrite/config.yaml).
	System string

	// User is the user-level config path (e.g., ~/.config/treewrite/config.yaml).
	User string

	// Project is the project-level config path (e.g., ./.treewrite.yml).
	Project string

	// Explicit is a config path provided via --config.
	Explicit string
}

// ProjectConfigFiles are the project config names searched for, in order
// of preference.
//
//nolint:gochecknoglobals // Read-only lookup table.
var ProjectConfigFiles = []string{
	".treewrite.yml",
	".treewrite.yaml",
	"treewrite.yml",
	"treewrite.yaml",
}

//nolint:gochecknoglobals // Read-only lookup table.
var vcsRootMarkers = []string{".git", ".hg", ".svn"}

// DiscoverPaths finds configuration files in standard locations.
func DiscoverPaths(ctx context.Context, workDir string) (*ConfigPaths, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context cancelled: %w", err)
	}

	project, err := FindProjectConfig(ctx, workDir)
	if err != nil {
		return nil, err
	}

	return &ConfigPaths{
		System:  findConfigInDir(systemConfigDir()),
		User:    findConfigInDir(UserConfigDir()),
		Project: project,
	}, nil
}

func systemConfigDir() string {
	if runtime.GOOS == "windows" {
		programData := os.Getenv("ProgramData")
		if programData == "" {
			programData = `C:\ProgramData`
		}
		return filepath.Join(programData, "treewrite")
	}
	return "/etc/treewrite"
}

// UserConfigDir returns $XDG_CONFIG_HOME/treewrite, falling back to
// ~/.config/treewrite. It returns "" when no home directory is known.
func UserConfigDir() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "treewrite")
}

// userConfigNames are the file names looked up in the system and user
// config directories.
//
//nolint:gochecknoglobals // Read-only lookup table.
var userConfigNames = []string{"config.yaml", "config.yml"}

func findConfigInDir(dir string) string {
	if dir == "" {
		return ""
	}
	return firstFile(dir, userConfigNames)
}

// FindProjectConfig searches startDir and its parents for a project config
// file. A directory holding a VCS marker ends the search after it is
// checked, as do the home directory and the filesystem root.
func FindProjectConfig(ctx context.Context, startDir string) (string, error) {
	if startDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		startDir = wd
	}

	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}
	home, _ := os.UserHomeDir()

	for {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("context cancelled: %w", err)
		}
		if path := firstFile(dir, ProjectConfigFiles); path != "" {
			return path, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir || dir == home || isVCSRoot(dir) {
			return "", nil
		}
		dir = parent
	}
}

// isVCSRoot reports whether dir holds a VCS marker. .git may be a file in
// worktrees and submodules.
func isVCSRoot(dir string) bool {
	for _, marker := range vcsRootMarkers {
		if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
			return true
		}
	}
	return false
}

// firstFile returns the first of names that exists as a regular file in
// dir, or "".
func firstFile(dir string, names []string) string {
	for _, name := range names {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}
