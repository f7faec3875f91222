package appconf

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var (
	// ErrConfigNotFound is returned when the configuration file does not exist.
	ErrConfigNotFound = errors.New("config file not found")

	// ErrNoBackingStore is returned when a write or save is attempted on a
	// config with no backing store among its providers. Read-only configs
	// running purely on defaults are legal, so reads never return this.
	ErrNoBackingStore = errors.New("no backing store configured")

	// ErrInterpolationCycle is returned when ${...} references form a loop.
	ErrInterpolationCycle = errors.New("interpolation cycle")
)

// PrivateConfigError reports a config referencing a key under the "private"
// namespace that the companion private file does not define (or the companion
// file is missing entirely).
type PrivateConfigError struct {
	// Key is the unresolved interpolation key, e.g. "private.secrets.api_key".
	Key string
	// ConfigFile is the file containing the reference.
	ConfigFile string
	// PrivateFile is the expected companion file.
	PrivateFile string
}

func (e *PrivateConfigError) Error() string {
	verb := "was not found"
	if _, err := os.Stat(e.PrivateFile); err == nil {
		verb = "is missing key"
	}
	return fmt.Sprintf("config %q references private key %q, but %q %s; create or update %q with the required private keys",
		filepath.Base(e.ConfigFile), e.Key, filepath.Base(e.PrivateFile), verb, e.PrivateFile)
}

// PathError reports an addressing failure during store set, identifying the
// offending segment within the full dotted key.
type PathError struct {
	// Path is the full dotted key with the failing segment highlighted,
	// e.g. "servers.**3**.port".
	Path string
	// Reason describes the failure.
	Reason string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("%s in %q", e.Reason, e.Path)
}
