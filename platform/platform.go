package platform

import (
	"path/filepath"
	"sort"
	"strings"
)

// Platform is a host agent runtime.
type Platform struct {
	// Name is the short identifier used in configuration (e.g. "claude").
	Name string

	// DisplayName is the human-readable product name.
	DisplayName string

	// ConfigDirs lists configuration directories relative to the user's
	// home directory, using forward slashes (e.g. ".config/opencode").
	ConfigDirs []string
}

// builtin is the table of known platforms, kept sorted by Name.
var builtin = []Platform{
	{Name: "claude", DisplayName: "Claude Code", ConfigDirs: []string{".claude"}},
	{Name: "factory", DisplayName: "Factory Droid", ConfigDirs: []string{".factory"}},
	{Name: "opencode", DisplayName: "OpenCode", ConfigDirs: []string{".config/opencode"}},
	{Name: "pi", DisplayName: "Pi", ConfigDirs: []string{".pi"}},
}

// Builtin returns a copy of the built-in platform table.
func Builtin() []Platform {
	out := make([]Platform, len(builtin))
	for i, p := range builtin {
		out[i] = p
		out[i].ConfigDirs = append([]string(nil), p.ConfigDirs...)
	}
	return out
}

// Names returns the names of all built-in platforms in sorted order.
func Names() []string {
	names := make([]string, 0, len(builtin))
	for _, p := range builtin {
		names = append(names, p.Name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the built-in platform with the given name. The match is
// case-insensitive.
func Lookup(name string) (Platform, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, p := range Builtin() {
		if p.Name == name {
			return p, true
		}
	}
	return Platform{}, false
}

// ConfigDirs returns the configuration directories of the given platforms,
// joined onto home. Duplicates are removed and order is preserved. When home
// is empty no directories are returned, because a home-relative directory
// cannot be located without it.
func ConfigDirs(home string, platforms []Platform) []string {
	if home == "" {
		return nil
	}
	seen := make(map[string]struct{})
	var dirs []string
	for _, p := range platforms {
		for _, rel := range p.ConfigDirs {
			dir := filepath.Join(home, filepath.FromSlash(rel))
			if _, ok := seen[dir]; ok {
				continue
			}
			seen[dir] = struct{}{}
			dirs = append(dirs, dir)
		}
	}
	return dirs
}
