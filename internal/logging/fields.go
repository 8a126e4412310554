package logging

// Field name constants for structured logging.
const (
	// Common fields.
	FieldError      = "error"
	FieldPath       = "path"
	FieldPaths      = "paths"
	FieldFiles      = "files"
	FieldOutput     = "output"
	FieldWorkingDir = "working_dir"
	FieldReason     = "reason"
	FieldConfig     = "config"
	FieldRunID      = "run_id"

	// Configuration fields.
	FieldLanguage = "language"
	FieldDryRun   = "dry_run"
	FieldJobs     = "jobs"
	FieldPlan     = "plan"

	// Session fields.
	FieldSession    = "session"
	FieldGeneration = "generation"
	FieldNodes      = "nodes"
	FieldQuery      = "query"
	FieldMatches    = "matches"
	FieldEdits      = "edits"
	FieldPass       = "pass"

	// Statistics fields.
	FieldFilesDiscovered = "files_discovered"
	FieldFilesProcessed  = "files_processed"
	FieldFilesModified   = "files_modified"
	FieldFilesErrored    = "files_errored"
	FieldEditsApplied    = "edits_applied"

	// Version fields.
	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"
)
