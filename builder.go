package appconf

import (
	"errors"
	"fmt"

	"github.com/spf13/pflag"
)

// ValidatorFunc validates a fully built AppConfig. It runs at the end of the
// build and fails the build on error.
type ValidatorFunc func(c *AppConfig) error

// Builder provides a fluent interface for assembling an AppConfig: argument
// providers in priority order, an optional backing store, bind declarations,
// and bind defaults.
type Builder struct {
	configFile   string
	tree         map[string]any
	argProviders []Provider
	bindNames    []string
	binds        map[string]*Bind
	bindDefaults map[string]any
	validators   []ValidatorFunc
	err          error
}

// NewBuilder creates a new configuration builder.
func NewBuilder() *Builder {
	return &Builder{
		binds:        make(map[string]*Bind),
		bindDefaults: make(map[string]any),
	}
}

// WithConfigFile sets the backing store's config file. The file is loaded at
// Build time; a missing file is not fatal (the config runs on arguments and
// defaults, and Build returns ErrConfigNotFound alongside the usable config).
func (b *Builder) WithConfigFile(path string) *Builder {
	b.configFile = path
	return b
}

// WithTree sets an in-memory document tree as the backing store, for configs
// not backed by a file. Save then requires an explicit path.
func (b *Builder) WithTree(tree map[string]any) *Builder {
	b.tree = tree
	return b
}

// WithFlagSet adds a parsed pflag.FlagSet as an argument provider. Providers
// added earlier have higher priority; all argument providers outrank the
// backing store.
func (b *Builder) WithFlagSet(fs *pflag.FlagSet) *Builder {
	b.argProviders = append(b.argProviders, NewFlagSetProvider(fs))
	return b
}

// WithArgs adds a pre-parsed argument namespace as a provider.
func (b *Builder) WithArgs(values map[string]any) *Builder {
	b.argProviders = append(b.argProviders, NewNamespace(values))
	return b
}

// WithProvider adds a custom argument provider.
func (b *Builder) WithProvider(p Provider) *Builder {
	b.argProviders = append(b.argProviders, p)
	return b
}

// Bind declares a property under name.
func (b *Builder) Bind(name string, bind *Bind) *Builder {
	if _, exists := b.binds[name]; exists {
		if b.err == nil {
			b.err = fmt.Errorf("bind %q declared twice", name)
		}
		return b
	}
	b.bindNames = append(b.bindNames, name)
	b.binds[name] = bind
	return b
}

// WithBindDefaults registers fallback defaults keyed by property name.
func (b *Builder) WithBindDefaults(defaults map[string]any) *Builder {
	for name, value := range defaults {
		b.bindDefaults[name] = value
	}
	return b
}

// WithValidator adds a validation function run at the end of the build.
// Multiple validators execute in the order added.
func (b *Builder) WithValidator(fn ValidatorFunc) *Builder {
	if fn != nil {
		b.validators = append(b.validators, fn)
	}
	return b
}

// Build assembles the AppConfig. Argument providers come first in the order
// added, then the backing store. A missing config file is reported as
// ErrConfigNotFound but still yields a usable config; any other load error is
// fatal.
func (b *Builder) Build() (*AppConfig, error) {
	if b.err != nil {
		return nil, b.err
	}

	providers := make([]Provider, 0, len(b.argProviders)+1)
	providers = append(providers, b.argProviders...)

	var softErr error
	switch {
	case b.configFile != "":
		sp, err := NewStoreProvider(b.configFile)
		if err != nil {
			if !errors.Is(err, ErrConfigNotFound) {
				return nil, err
			}
			softErr = err
		} else {
			providers = append(providers, sp)
		}
	case b.tree != nil:
		providers = append(providers, NewStoreProviderFromTree(b.tree))
	}

	cfg, err := New(providers...)
	if err != nil {
		return nil, err
	}

	for _, name := range b.bindNames {
		if err := cfg.RegisterBind(name, b.binds[name]); err != nil {
			return nil, err
		}
	}
	cfg.SetBindDefaults(b.bindDefaults)

	for _, validator := range b.validators {
		if err := validator(cfg); err != nil {
			return nil, fmt.Errorf("configuration validation failed: %w", err)
		}
	}

	// ErrConfigNotFound or nil
	return cfg, softErr
}

// MustBuild is like Build but panics on error. ErrConfigNotFound is not
// fatal; the application can proceed on arguments and defaults.
func (b *Builder) MustBuild() *AppConfig {
	cfg, err := b.Build()
	if err != nil && !errors.Is(err, ErrConfigNotFound) {
		panic(fmt.Sprintf("appconf build failed: %v", err))
	}
	return cfg
}
