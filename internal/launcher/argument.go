// internal/launcher/argument.go
package launcher

import (
	"fmt"
	"strings"
)

// Arg is a single chromium command line flag: a key plus an ordered list of
// values. A key with no values renders as a bare flag ("--headless"), one or
// more values render as "--key=v1,v2".
type Arg struct {
	Key    string
	Values []string
}

// KeyArg builds a bare flag argument.
func KeyArg(key string) Arg {
	return Arg{Key: key}
}

// ValueArg builds a single-value argument.
func ValueArg(key string, value interface{}) Arg {
	return Arg{Key: key, Values: []string{fmt.Sprint(value)}}
}

// ValuesArg builds a multi-value argument.
func ValuesArg(key string, values ...string) Arg {
	return Arg{Key: key, Values: values}
}

// ParseArg parses a raw command line token like "--headless" or
// "--lang=en-US,en" into an Arg. The leading dashes are optional.
func ParseArg(raw string) (Arg, error) {
	trimmed := strings.TrimLeft(strings.TrimSpace(raw), "-")
	if trimmed == "" {
		return Arg{}, fmt.Errorf("empty browser argument %q", raw)
	}
	key, value, found := strings.Cut(trimmed, "=")
	if key == "" {
		return Arg{}, fmt.Errorf("browser argument %q has no flag name", raw)
	}
	if !found {
		return KeyArg(key), nil
	}
	return ValuesArg(key, strings.Split(value, ",")...), nil
}

// Arguments accumulates command line arguments keyed by flag name and
// deduplicates them for the final command line. No ordering is guaranteed
// across distinct keys, but values contributed to the same key keep their
// contribution order.
type Arguments struct {
	args map[string][]string
}

// NewArguments returns an empty argument set.
func NewArguments() *Arguments {
	return &Arguments{args: make(map[string][]string)}
}

// Has reports whether a flag with the given key was already contributed.
func (a *Arguments) Has(key string) bool {
	_, ok := a.args[key]
	return ok
}

// Add merges one argument into the set. When the key already exists the new
// values are appended to the existing value list rather than replacing it.
// Callers that want replacement semantics must disable the default argument
// set and contribute the full list themselves.
func (a *Arguments) Add(arg Arg) *Arguments {
	if existing, ok := a.args[arg.Key]; ok {
		a.args[arg.Key] = append(existing, arg.Values...)
	} else {
		// Copy so later appends never alias a caller-owned slice.
		a.args[arg.Key] = append([]string(nil), arg.Values...)
	}
	return a
}

// AddAll merges a sequence of arguments in order.
func (a *Arguments) AddAll(args ...Arg) *Arguments {
	for _, arg := range args {
		a.Add(arg)
	}
	return a
}

// Build renders the final command line tokens.
func (a *Arguments) Build() []string {
	tokens := make([]string, 0, len(a.args))
	for key, values := range a.args {
		if len(values) == 0 {
			tokens = append(tokens, "--"+key)
		} else {
			tokens = append(tokens, fmt.Sprintf("--%s=%s", key, strings.Join(values, ",")))
		}
	}
	return tokens
}
