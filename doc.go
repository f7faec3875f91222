// Package appconf binds typed application properties to values merged from
// multiple sources: command-line arguments, a hierarchical YAML/TOML/JSON
// document, and declared defaults, with a well-defined precedence order and
// write-through semantics.
//
// Each property is declared once as a Bind, linking a name to a dot-separated
// path in the backing document plus an optional argument key, accumulation
// mode, converter, and static default. Reads resolve the bind against the
// ordered providers; writes go through to the backing store and are cached so
// the next read returns exactly the assigned value.
//
// Resolution order (highest to lowest):
//  1. Per-instance set-cache (a value previously assigned via Set)
//  2. First provider, in priority order, answering with a real value
//  3. Bind defaults registered on the config object (by property name)
//  4. The bind's static default
//  5. A provider's own default, remembered from a Defaulted marker
//
// A provider that answers with a Defaulted marker is treated as not having an
// answer; the wrapped value only wins when nothing else does. This keeps a
// flag's built-in default below the config file even though the flag provider
// is consulted first.
//
// Quick Start:
//
//	cfg, err := appconf.NewBuilder().
//	    WithConfigFile("config.yaml").
//	    WithFlagSet(flags).
//	    Bind("port", appconf.NewBind("server.port")).
//	    Bind("paths", appconf.NewBind("paths", appconf.WithConverter(toAbs))).
//	    Build()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	port, _ := cfg.Int64("port")
//	cfg.Set("port", 9090)
//	cfg.Save("")
//
// A companion file named <stem>_private.<ext> beside the config file is
// merged in automatically, ${path.to.key} interpolations are resolved, and
// the top-level "private" section is stripped from the effective document.
//
// The package is synchronous and single-threaded: concurrent mutation of the
// same AppConfig must be serialized by the caller.
package appconf
