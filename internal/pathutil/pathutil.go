// Package pathutil resolves path-like strings the way a shell would see them
// and classifies the canonical result against the guard's zones: the working
// directory, temp directories, safe devices, platform configuration
// directories and protected files.
//
// Every zone comparison uses the canonical form of a path, with symlinks
// followed at every component. A symlink inside the working directory that
// points elsewhere is therefore classified by where it points, not where it
// lives.
package pathutil

import (
	"path/filepath"
	"strings"
)

// ---------------------------------------------------------------------------
// Containment
// ---------------------------------------------------------------------------

// IsWithin reports whether path equals root or is a strict descendant of it.
// Both arguments should be absolute and canonical. The check is done through
// filepath.Rel: a relative result that climbs out with ".." (as a whole
// segment) or that is itself absolute means the paths share no such ancestry.
//
// Examples:
//   - IsWithin("/work", "/work")          : true
//   - IsWithin("/work", "/work/a/b")      : true
//   - IsWithin("/work", "/work/..cache")  : true
//   - IsWithin("/work", "/workspace")     : false
//   - IsWithin("/work", "/etc/passwd")    : false
func IsWithin(root, path string) bool {
	if root == "" || path == "" {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	if filepath.IsAbs(rel) {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// hasRootPrefix reports whether path equals root or starts with root
// followed by a separator. It is a purely lexical check.
func hasRootPrefix(path, root string) bool {
	if root == "" {
		return false
	}
	if path == root {
		return true
	}
	sep := string(filepath.Separator)
	if root == sep {
		return strings.HasPrefix(path, sep)
	}
	return strings.HasPrefix(path, root+sep)
}

// ---------------------------------------------------------------------------
// Path Helpers
// ---------------------------------------------------------------------------

// ContainsNullByte returns true if the string contains a null byte.
func ContainsNullByte(s string) bool {
	return strings.ContainsRune(s, '\x00')
}
