package runner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"

	"github.com/yaklabco/treewrite/pkg/config"
	"github.com/yaklabco/treewrite/pkg/langdetect"
)

// Target is a discovered file and the language it will be parsed as.
type Target struct {
	Path     string
	Language string
}

// discoverer holds the state of one discovery walk.
type discoverer struct {
	opts    Options
	workDir string
	forced  string
	byExt   map[string]string
	ignore  *gitignore.GitIgnore

	// gitignores maps a directory to the .gitignore compiled from it.
	gitignores map[string]*gitignore.GitIgnore
}

// Discover finds the files under opts.Paths that have a supported
// language and are not ignored. Targets are sorted by path.
//
// Explicitly named files are always kept when their language is known,
// even if an ignore pattern matches them. With a forced language, a walk
// keeps only files that would be detected as that language, while named
// files are parsed with it regardless.
func Discover(ctx context.Context, opts Options) ([]Target, error) {
	workDir, err := resolveWorkDir(opts.WorkingDir)
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}

	d := &discoverer{
		opts:       opts,
		workDir:    workDir,
		byExt:      extensionTable(opts.Extensions),
		ignore:     gitignore.CompileIgnoreLines(opts.Ignore...),
		gitignores: make(map[string]*gitignore.GitIgnore),
	}
	if opts.Language != "" && opts.Language != config.LanguageAuto {
		if !langdetect.IsSupported(opts.Language) {
			return nil, fmt.Errorf("unsupported language %q", opts.Language)
		}
		d.forced = opts.Language
	}

	paths := opts.Paths
	if len(paths) == 0 {
		paths = []string{"."}
	}

	seen := make(map[string]bool)
	var targets []Target
	add := func(t Target) {
		if !seen[t.Path] {
			seen[t.Path] = true
			targets = append(targets, t)
		}
	}

	for _, input := range paths {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("discovery cancelled: %w", err)
		}

		abs := input
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(workDir, abs)
		}
		abs = filepath.Clean(abs)

		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", input, err)
		}

		if !info.IsDir() {
			if t, ok := d.named(abs); ok {
				add(t)
			}
			continue
		}

		walked, err := d.walk(ctx, abs)
		if err != nil {
			return nil, err
		}
		for _, t := range walked {
			add(t)
		}
	}

	sort.Slice(targets, func(i, j int) bool { return targets[i].Path < targets[j].Path })
	return targets, nil
}

func resolveWorkDir(workDir string) (string, error) {
	if workDir == "" {
		return os.Getwd()
	}
	return filepath.Abs(workDir)
}

func extensionTable(extensions map[string][]string) map[string]string {
	table := make(map[string]string)
	for language, exts := range extensions {
		if !langdetect.IsSupported(language) {
			continue
		}
		for _, ext := range exts {
			table[strings.ToLower(ext)] = language
		}
	}
	return table
}

// named resolves the language of a file given on the command line. Content
// is consulted for files without a telling extension.
func (d *discoverer) named(path string) (Target, bool) {
	if d.forced != "" {
		return Target{Path: path, Language: d.forced}, true
	}
	if lang, ok := d.byPath(path); ok {
		return Target{Path: path, Language: lang}, true
	}

	content, err := readHead(path)
	if err != nil {
		return Target{}, false
	}
	lang, ok := langdetect.ByContent(content)
	return Target{Path: path, Language: lang}, ok
}

func (d *discoverer) byPath(path string) (string, bool) {
	if lang, ok := d.byExt[strings.ToLower(filepath.Ext(path))]; ok {
		return lang, true
	}
	return langdetect.ByPath(path)
}

const headSize = 4096

func readHead(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, headSize)
	n, err := f.Read(buf)
	if err != nil && n == 0 {
		return nil, err
	}
	return buf[:n], nil
}

func (d *discoverer) walk(ctx context.Context, root string) ([]Target, error) {
	var targets []Target

	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			if errors.Is(walkErr, fs.ErrPermission) {
				return nil
			}
			return walkErr
		}

		if entry.IsDir() {
			if path != root && strings.HasPrefix(entry.Name(), ".") {
				return filepath.SkipDir
			}
			if path != root && d.ignored(path, true) {
				return filepath.SkipDir
			}
			if d.opts.Gitignore {
				d.loadGitignore(path)
			}
			return nil
		}

		if entry.Type()&fs.ModeSymlink != 0 {
			info, err := os.Stat(path)
			if err != nil {
				return nil //nolint:nilerr // broken symlinks are skipped
			}
			if info.IsDir() {
				if !d.opts.FollowSymlinks {
					return nil
				}
				real, err := filepath.EvalSymlinks(path)
				if err != nil {
					return nil //nolint:nilerr // unresolvable symlinks are skipped
				}
				sub, err := d.walk(ctx, real)
				if err != nil {
					return err
				}
				targets = append(targets, sub...)
				return nil
			}
		}

		if strings.HasPrefix(entry.Name(), ".") || d.ignored(path, false) {
			return nil
		}

		lang, ok := d.byPath(path)
		if !ok || (d.forced != "" && lang != d.forced) {
			return nil
		}
		targets = append(targets, Target{Path: path, Language: lang})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	return targets, nil
}

func (d *discoverer) loadGitignore(dir string) {
	path := filepath.Join(dir, ".gitignore")
	if _, err := os.Stat(path); err != nil {
		return
	}
	gi, err := gitignore.CompileIgnoreFile(path)
	if err != nil {
		return
	}
	d.gitignores[dir] = gi
}

// ignored reports whether path matches an ignore pattern or a .gitignore
// in one of its ancestor directories.
func (d *discoverer) ignored(path string, isDir bool) bool {
	if matches(d.ignore, d.workDir, path, isDir) {
		return true
	}
	for dir := filepath.Dir(path); ; dir = filepath.Dir(dir) {
		if gi, ok := d.gitignores[dir]; ok && matches(gi, dir, path, isDir) {
			return true
		}
		if parent := filepath.Dir(dir); parent == dir {
			return false
		}
	}
}

func matches(gi *gitignore.GitIgnore, base, path string, isDir bool) bool {
	rel, err := filepath.Rel(base, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return false
	}
	rel = filepath.ToSlash(rel)
	if gi.MatchesPath(rel) {
		return true
	}
	return isDir && gi.MatchesPath(rel+"/")
}
