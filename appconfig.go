package appconf

import (
	"fmt"
	"sort"
	"strings"
)

// AppConfig routes named property access through registered binds and an
// ordered list of providers. Provider order is priority order, first is
// highest. At most one provider is the backing store; it receives all writes
// and saves.
//
// AppConfig is synchronous and unsynchronized. Callers sharing an instance
// across goroutines must serialize access.
type AppConfig struct {
	providers    []Provider
	store        BackingStore
	binds        map[string]*Bind
	bindDefaults map[string]any

	// cache holds explicitly-assigned values per property name. A cached
	// value wins over all resolution until the instance is discarded.
	cache map[string]any
}

// New creates an AppConfig over the given providers, highest priority first.
// The first provider implementing BackingStore becomes the write target; a
// second one is a configuration error. A config with no backing store is
// legal until the first write or save.
func New(providers ...Provider) (*AppConfig, error) {
	c := &AppConfig{
		providers:    providers,
		binds:        make(map[string]*Bind),
		bindDefaults: make(map[string]any),
		cache:        make(map[string]any),
	}
	for _, p := range providers {
		bs, ok := p.(BackingStore)
		if !ok {
			continue
		}
		if c.store != nil {
			return nil, fmt.Errorf("multiple backing stores configured; exactly one provider may accept writes")
		}
		c.store = bs
	}
	return c, nil
}

// RegisterBind declares a property. The bind's argument key defaults to name
// if not set explicitly.
func (c *AppConfig) RegisterBind(name string, b *Bind) error {
	if name == "" {
		return fmt.Errorf("bind name cannot be empty")
	}
	if _, exists := c.binds[name]; exists {
		return fmt.Errorf("bind %q already registered", name)
	}
	if err := b.register(name); err != nil {
		return err
	}
	c.binds[name] = b
	return nil
}

// SetBindDefaults registers fallback defaults keyed by property name. They
// rank below any provider's real answer and above a bind's static default.
func (c *AppConfig) SetBindDefaults(defaults map[string]any) {
	for name, value := range defaults {
		c.bindDefaults[name] = value
	}
}

// Bind returns the registered bind for name, or nil.
func (c *AppConfig) Bind(name string) *Bind { return c.binds[name] }

// BindNames returns the registered property names, sorted.
func (c *AppConfig) BindNames() []string {
	names := make([]string, 0, len(c.binds))
	for name := range c.binds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get resolves the value for name. A registered bind resolves through the
// set-cache and then the precedence engine; an unbound name reads straight
// from the backing store. Reads never fail on a missing store; they resolve
// to nil.
func (c *AppConfig) Get(name string) (any, error) {
	b, bound := c.binds[name]
	if !bound {
		if c.store == nil {
			return nil, nil
		}
		return c.store.Get(name), nil
	}
	if cached, ok := c.cache[name]; ok {
		return cached, nil
	}
	return resolveBind(b, c.providers, c.bindDefaults)
}

// Set assigns a value. A registered bind writes through to the backing store
// at its store path and populates the set-cache, so the very next Get returns
// exactly this value regardless of what providers would resolve. An unbound
// name writes directly to the store.
func (c *AppConfig) Set(name string, value any) error {
	if c.store == nil {
		return ErrNoBackingStore
	}
	b, bound := c.binds[name]
	if !bound {
		return c.store.Set(name, value)
	}
	if err := c.store.Set(b.StorePath(), value); err != nil {
		return err
	}
	c.cache[name] = value
	return nil
}

// Save persists the backing store. An empty path saves in place.
func (c *AppConfig) Save(path string) error {
	if c.store == nil {
		return ErrNoBackingStore
	}
	return c.store.Save(path)
}

// Contains reports whether the backing store has a value at the dot-separated
// key, even when that value is nil.
func (c *AppConfig) Contains(key string) bool {
	if c.store == nil {
		return false
	}
	return c.store.Contains(key)
}

// Debug renders every registered bind with its store path, argument key,
// cached value, and resolved value, for troubleshooting precedence.
func (c *AppConfig) Debug() string {
	var b strings.Builder
	b.WriteString("Registered binds:\n")
	for _, name := range c.BindNames() {
		bind := c.binds[name]
		fmt.Fprintf(&b, "  %s:\n", name)
		fmt.Fprintf(&b, "    store path: %s\n", bind.StorePath())
		fmt.Fprintf(&b, "    arg key:    %s\n", bind.ArgKey())
		if cached, ok := c.cache[name]; ok {
			fmt.Fprintf(&b, "    cached:     %v\n", cached)
		}
		resolved, err := c.Get(name)
		if err != nil {
			fmt.Fprintf(&b, "    resolved:   error: %v\n", err)
		} else {
			fmt.Fprintf(&b, "    resolved:   %v\n", resolved)
		}
	}
	return b.String()
}
