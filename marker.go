package appconf

import "fmt"

// Defaulted marks a value as a provider's built-in default rather than an
// explicit user choice. The resolution engine treats a Defaulted answer as
// unresolved: it remembers the wrapped value but keeps consulting
// lower-priority providers, and only unwraps it when nothing else (including
// bind defaults and static defaults) produces a value.
//
// Providers wrap their own defaults before the engine sees them; a pflag
// provider, for example, answers Defaulted{flag default} for flags the user
// never set.
type Defaulted struct {
	Value any
}

// String renders the wrapped value, so a marker is transparent in help text
// and debug output.
func (d Defaulted) String() string {
	return fmt.Sprintf("%v", d.Value)
}
