package config

// DefaultTemplate is the commented configuration written by "treewrite init".
const DefaultTemplate = `# treewrite configuration
#
# Settings are merged from /etc/treewrite/config.yaml, the user config in
# $XDG_CONFIG_HOME/treewrite/config.yaml, this file, TREEWRITE_* environment
# variables and finally command-line flags.

# Grammar used for every file: auto, python, javascript, typescript, rust,
# go or markdown. "auto" picks one per file from its name and content.
language: auto

# Markdown flavor: commonmark or gfm.
flavor: gfm

# Extra extensions per language.
# extensions:
#   python: [".pyi"]

# Glob patterns to skip.
ignore:
  - "vendor/**"
  - "node_modules/**"

# Skip files matched by .gitignore.
gitignore: true

# Keep a copy of each rewritten file next to it (file.treewrite.bak).
backups:
  enabled: true
  mode: sidecar

# Regular-expression substitutions give up after this long.
pattern:
  match_timeout: 5s
`
