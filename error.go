package fieldselector

// ConfigError reports an invalid schema or configuration at construction
// time. These are programmer errors in how the selector is wired up, so
// they surface immediately instead of being corrected silently. Details
// carries the offending group or field for logging and serialization.
type ConfigError struct {
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return e.Message
}
