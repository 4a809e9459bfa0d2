package driven

// ConfigStore holds configuration as dotted keys ("retrieval.top_k").
// The typed getters return the zero value for missing keys and for values
// of another type; GetFloat also accepts integers.
type ConfigStore interface {
	Get(key string) (any, bool)
	GetString(key string) string
	GetInt(key string) int
	GetFloat(key string) float64
	GetBool(key string) bool
	GetStringSlice(key string) []string
	// GetStringMap returns the string values under "prefix.", keyed by the
	// rest of the key.
	GetStringMap(prefix string) map[string]string

	// Set stores and persists one value.
	Set(key string, value any) error
	Save() error
	Load() error
	Path() string
}
