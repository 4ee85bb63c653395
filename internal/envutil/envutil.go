// Package envutil provides helpers for working with environment variable
// lists in "KEY=VALUE" form. The resolver never consults os.Getenv directly;
// every lookup goes through a snapshot built with these helpers.
package envutil

import (
	"sort"
	"strings"
)

// Env is an immutable snapshot of environment variables.
// The zero value is an empty environment.
type Env struct {
	vars []string
}

// New returns an Env holding a copy of vars. Later entries win when a key
// appears more than once, matching how a shell builds its environment.
func New(vars []string) Env {
	return Env{vars: MergeEnv(nil, vars)}
}

// Lookup returns the value of key and whether it was present.
func (e Env) Lookup(key string) (string, bool) {
	return GetEnv(e.vars, key)
}

// Get returns the value of key, or "" if it is unset.
func (e Env) Get(key string) string {
	v, _ := GetEnv(e.vars, key)
	return v
}

// GetEnv gets a value from an env slice.
// Returns the value and true if found, or empty string and false if not.
func GetEnv(env []string, key string) (string, bool) {
	prefix := key + "="
	for _, e := range env {
		if strings.HasPrefix(e, prefix) {
			return e[len(prefix):], true
		}
	}
	return "", false
}

// MergeEnv merges additional env vars into base, with additional taking precedence.
// Returns a new slice. Variables in additional override those in base with the same key.
func MergeEnv(base, additional []string) []string {
	overrides := make(map[string]string, len(additional))
	overrideOrder := make([]string, 0, len(additional))
	for _, e := range additional {
		key := envKey(e)
		if _, exists := overrides[key]; !exists {
			overrideOrder = append(overrideOrder, key)
		}
		overrides[key] = e
	}

	// Copy base, replacing any overridden keys.
	replaced := make(map[string]bool, len(overrides))
	result := make([]string, 0, len(base)+len(additional))
	for _, e := range base {
		key := envKey(e)
		if override, ok := overrides[key]; ok {
			if !replaced[key] {
				result = append(result, override)
			}
			replaced[key] = true
		} else {
			result = append(result, e)
		}
	}

	// Append any additional vars that weren't in base, preserving order.
	for _, key := range overrideOrder {
		if !replaced[key] {
			result = append(result, overrides[key])
		}
	}

	return result
}

// FromMap converts a key/value map into a "KEY=VALUE" slice sorted by key,
// so the result is deterministic.
func FromMap(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+m[k])
	}
	return out
}

func envKey(e string) string {
	if idx := strings.IndexByte(e, '='); idx >= 0 {
		return e[:idx]
	}
	return e
}
