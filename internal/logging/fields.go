package logging

// Standardized structured logging keys.
const (
	FieldComponent = "component"
	FieldSessionID = "session_id"
	FieldEventType = "event_type"
	FieldErrorHint = "error_hint"
	FieldError     = "error"
	FieldPath      = "path"
	FieldSerial    = "serial"
	FieldState     = "state"
	FieldPages     = "pages"
)
