package driven

// ConfigStore holds the raw lightway settings keyed by dotted path, e.g.
// "derive.policy" or "validation.facilities". It does no validation of
// its own; the typed view with defaults and environment overrides is
// built from it by the config loader.
//
// Typed getters return the zero value for a missing key or a value of
// another type.
type ConfigStore interface {
	Get(key string) (any, bool)
	GetString(key string) string
	GetInt(key string) int
	// GetFloat widens integer values.
	GetFloat(key string) float64
	GetBool(key string) bool
	// GetStringSlice drops non-string elements.
	GetStringSlice(key string) []string

	// Keys lists leaf keys in sorted order. Arrays of tables, such as
	// postprocess.operators, are a single leaf.
	Keys() []string

	// Set stores and persists a value.
	Set(key string, value any) error
	Save() error
	Load() error

	// Path locates the backing file, or ":memory:".
	Path() string
}
