package appconf

import (
	"errors"
	"fmt"
)

// Quick builds an AppConfig from a config file, an optional parsed argument
// namespace, and bind declarations. This covers the common case of one
// argument source over one file.
func Quick(configFile string, args map[string]any, binds map[string]*Bind) (*AppConfig, error) {
	b := NewBuilder().WithConfigFile(configFile)
	if args != nil {
		b = b.WithArgs(args)
	}
	for name, bind := range binds {
		b = b.Bind(name, bind)
	}
	return b.Build()
}

// MustQuick is like Quick but panics on error. ErrConfigNotFound is not
// fatal; the application can proceed on arguments and defaults.
func MustQuick(configFile string, args map[string]any, binds map[string]*Bind) *AppConfig {
	cfg, err := Quick(configFile, args, binds)
	if err != nil && !errors.Is(err, ErrConfigNotFound) {
		panic(fmt.Sprintf("appconf initialization failed: %v", err))
	}
	return cfg
}
