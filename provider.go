package appconf

// Provider supplies raw configuration values by key. Implementations answer
// nil for keys they have no value for; a Defaulted answer is "no value, but
// remember this fallback".
type Provider interface {
	// BindKey maps a bind to this provider's lookup key, or "" if the
	// provider is irrelevant to the bind (an argument provider with no
	// matching argument, for instance).
	BindKey(b *Bind) string

	// Get returns the value for key, or nil when the provider has no answer.
	Get(key string) any
}

// BackingStore is a Provider that also accepts writes and persists itself.
// Exactly one provider on an AppConfig may be a BackingStore; it is the
// target of all writes and saves.
type BackingStore interface {
	Provider

	// Set writes value at the dot-separated key, creating intermediate
	// tables as needed. Addressing failures (invalid or out-of-range list
	// indices, non-addressable intermediate nodes) return a *PathError.
	Set(key string, value any) error

	// Save persists the store. An empty path means save in place, to the
	// store's own origin path.
	Save(path string) error

	// Contains reports whether the key path exists, even if its value is nil.
	Contains(key string) bool
}
