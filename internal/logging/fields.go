package logging

// Field names for structured logging.
const (
	// Common fields.
	FieldError  = "error"
	FieldPath   = "path"
	FieldInput  = "input"
	FieldOutput = "output"
	FieldSource = "source"

	// Format fields.
	FieldCursor     = "cursor"
	FieldScopeStart = "scope_start"
	FieldScopeEnd   = "scope_end"
	FieldWidth      = "width"
	FieldAlgorithm  = "algorithm"
	FieldNewline    = "newline"
	FieldChanged    = "changed"
	FieldLanguage   = "language"

	// Version fields.
	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"
)
