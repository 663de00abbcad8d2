package logging

// Field names for structured log entries.
const (
	FieldError  = "error"
	FieldPath   = "path"
	FieldSource = "source"
	FieldOutput = "output"
	FieldTitle  = "title"
	FieldFormat = "format"
	FieldEngine = "engine"
	FieldJobs   = "jobs"
	FieldConfig = "config"

	FieldDiscovered = "discovered"
	FieldWritten    = "written"
	FieldSkipped    = "skipped"
	FieldFailed     = "failed"
	FieldElapsed    = "elapsed"
)
