package appconf

import (
	"fmt"
	"strings"
)

// Mode selects how a bind combines answers from multiple providers.
type Mode int

const (
	// ModeNone resolves to the first real answer in provider priority order.
	ModeNone Mode = iota

	// ModeAppend concatenates list-valued answers from every provider, in
	// priority order. A non-list answer is appended as a single element.
	ModeAppend
)

// Converter transforms a resolved value. List-valued results are converted
// element-wise; the engine never calls a converter on a nil result. A
// returned error propagates unwrapped to the caller.
type Converter func(value any) (any, error)

// Bind declares a link between a named property and a path in the backing
// store, plus resolution policy. A Bind is a type-level declaration: one
// instance is shared by every AppConfig built from the same builder and is
// immutable after registration. Per-instance state (the set-cache) lives on
// the AppConfig.
type Bind struct {
	storePath      string
	argKey         string
	name           string
	mode           Mode
	converter      Converter
	defaultValue   any
	hasDefault     bool
	requireDefault bool
}

// BindOption customizes a Bind at construction.
type BindOption func(*Bind)

// WithArgKey sets the lookup key argument providers use for this bind.
// Unset, the key defaults to the property name at registration time.
func WithArgKey(key string) BindOption {
	return func(b *Bind) { b.argKey = key }
}

// WithAppend switches the bind to ModeAppend.
func WithAppend() BindOption {
	return func(b *Bind) { b.mode = ModeAppend }
}

// WithConverter sets the value converter.
func WithConverter(fn Converter) BindOption {
	return func(b *Bind) { b.converter = fn }
}

// WithDefault sets the static default, the lowest-priority fallback short of
// a provider's own remembered default.
func WithDefault(value any) BindOption {
	return func(b *Bind) {
		b.defaultValue = value
		b.hasDefault = true
	}
}

// NewBind declares a bind for the given dot-separated store path. Path
// segments are bare keys (letters, digits, underscores, dashes) or numeric
// list indices; a malformed path is a programmer error and panics.
func NewBind(storePath string, opts ...BindOption) *Bind {
	if storePath == "" {
		panic("appconf: bind store path cannot be empty")
	}
	for _, segment := range strings.Split(storePath, ".") {
		if !isValidKeySegment(segment) {
			panic(fmt.Sprintf("appconf: bind store path %q has invalid segment %q", storePath, segment))
		}
	}
	b := &Bind{storePath: storePath}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// NewBindWithDefault declares a bind whose resolution never yields nil: the
// static default is guaranteed. It is a typing convenience; resolution is
// otherwise identical to NewBind with WithDefault. A nil default is a
// programmer error and panics immediately.
func NewBindWithDefault(storePath string, def any, opts ...BindOption) *Bind {
	if def == nil {
		panic(fmt.Sprintf("appconf: bind %q declared with guaranteed default but default is nil", storePath))
	}
	opts = append(opts, WithDefault(def))
	b := NewBind(storePath, opts...)
	b.requireDefault = true
	return b
}

// StorePath returns the bind's path into the backing store.
func (b *Bind) StorePath() string { return b.storePath }

// ArgKey returns the lookup key for argument providers.
func (b *Bind) ArgKey() string { return b.argKey }

// Name returns the property name the bind was registered under, or "" before
// registration.
func (b *Bind) Name() string { return b.name }

// Default returns the static default and whether one was declared.
func (b *Bind) Default() (any, bool) { return b.defaultValue, b.hasDefault }

// register fixes the property name, defaulting the arg key to it. Called once
// by the builder; a bind registered under two names is a programmer error.
func (b *Bind) register(name string) error {
	if b.name != "" && b.name != name {
		return fmt.Errorf("bind for %q already registered as %q, cannot re-register as %q", b.storePath, b.name, name)
	}
	b.name = name
	if b.argKey == "" {
		b.argKey = name
	}
	return nil
}
