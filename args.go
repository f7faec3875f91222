package appconf

import (
	"github.com/spf13/pflag"
)

// Namespace is a Provider over pre-parsed argument values, keyed by argument
// name. A missing or nil entry is no answer. Entries in the defaults map are
// answered as Defaulted markers so they rank below real values from any
// provider during resolution.
type Namespace struct {
	values   map[string]any
	defaults map[string]any
}

// NewNamespace wraps a map of explicitly-provided argument values.
func NewNamespace(values map[string]any) *Namespace {
	return &Namespace{values: values}
}

// NewNamespaceWithDefaults wraps argument values plus a defaults map. The
// defaults are consulted only when no explicit value exists, and are wrapped
// in Defaulted markers.
func NewNamespaceWithDefaults(values, defaults map[string]any) *Namespace {
	return &Namespace{values: values, defaults: defaults}
}

// BindKey returns the bind's argument key.
func (n *Namespace) BindKey(b *Bind) string { return b.ArgKey() }

// Get returns the explicit value for key, a Defaulted marker for a default,
// or nil.
func (n *Namespace) Get(key string) any {
	if value, ok := n.values[key]; ok && value != nil {
		return value
	}
	if def, ok := n.defaults[key]; ok && def != nil {
		return Defaulted{Value: def}
	}
	return nil
}

// FlagSetProvider is a Provider over a parsed pflag.FlagSet. A flag the user
// set answers with its typed value; an unset flag answers with its default
// wrapped in a Defaulted marker; an undefined flag is no answer.
//
// pflag's Changed tracking does the work the original argparse integration
// needed a defaults extractor for: it already distinguishes an explicit
// --port=8080 from the flag's built-in default.
type FlagSetProvider struct {
	flags *pflag.FlagSet
}

// NewFlagSetProvider wraps fs, which must already be parsed.
func NewFlagSetProvider(fs *pflag.FlagSet) *FlagSetProvider {
	return &FlagSetProvider{flags: fs}
}

// BindKey returns the bind's argument key.
func (p *FlagSetProvider) BindKey(b *Bind) string { return b.ArgKey() }

// Get returns the flag's typed value, its default as a Defaulted marker if
// the user never set it, or nil for an undefined flag.
func (p *FlagSetProvider) Get(key string) any {
	flag := p.flags.Lookup(key)
	if flag == nil {
		return nil
	}
	value := p.typedValue(key, flag)
	if value == nil {
		return nil
	}
	if flag.Changed {
		return value
	}
	return Defaulted{Value: value}
}

// typedValue extracts the flag's value in its native type, falling back to
// the string rendering for flag types without a typed accessor.
func (p *FlagSetProvider) typedValue(key string, flag *pflag.Flag) any {
	switch flag.Value.Type() {
	case "string":
		v, _ := p.flags.GetString(key)
		return v
	case "bool":
		v, _ := p.flags.GetBool(key)
		return v
	case "int":
		v, _ := p.flags.GetInt(key)
		return v
	case "int64":
		v, _ := p.flags.GetInt64(key)
		return v
	case "float64":
		v, _ := p.flags.GetFloat64(key)
		return v
	case "duration":
		v, _ := p.flags.GetDuration(key)
		return v
	case "stringSlice":
		v, _ := p.flags.GetStringSlice(key)
		return v
	case "stringArray":
		v, _ := p.flags.GetStringArray(key)
		return v
	case "intSlice":
		v, _ := p.flags.GetIntSlice(key)
		return v
	default:
		return flag.Value.String()
	}
}
