package logging

// Structured field names.
const (
	FieldError   = "error"
	FieldPath    = "path"
	FieldFiles   = "files"
	FieldVersion = "version"
	FieldHash    = "hash"
	FieldState   = "state"

	FieldLines         = "lines"
	FieldFunctions     = "functions"
	FieldStrings       = "strings"
	FieldReferences    = "references"
	FieldNotifications = "notifications"
	FieldSubscriber    = "subscriber"
	FieldDuration      = "duration"
)
