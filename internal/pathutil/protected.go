package pathutil

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gobwas/glob"
)

// protectedRule matches paths, relative to the working directory, that must
// never be the target of a write or delete even though they are inside it.
type protectedRule struct {
	name    string
	re      *regexp.Regexp
	exclude *regexp.Regexp
	glob    glob.Glob
	// baseOnly makes a slash-free glob match the final path element at any
	// depth, the way a .gitignore line without a slash does.
	baseOnly bool
}

// builtinProtected is matched case-insensitively, since the common macOS
// filesystems are case-insensitive and ".GIT/config" is ".git/config" there.
var builtinProtected = []protectedRule{
	{
		name:    ".env file",
		re:      regexp.MustCompile(`(?i)(^|/)\.env(\.[^/]+)?$`),
		exclude: regexp.MustCompile(`(?i)\.example$`),
	},
	{
		name: ".git directory",
		re:   regexp.MustCompile(`(?i)(^|/)\.git(/|$)`),
	},
}

func (p protectedRule) match(rel string) bool {
	if p.glob != nil {
		if p.baseOnly {
			return p.glob.Match(rel[strings.LastIndex(rel, "/")+1:])
		}
		return p.glob.Match(rel)
	}
	if !p.re.MatchString(rel) {
		return false
	}
	return p.exclude == nil || !p.exclude.MatchString(rel)
}

// compileProtected returns the built-in rules followed by one rule per glob.
func compileProtected(globs []string) ([]protectedRule, error) {
	rules := append([]protectedRule(nil), builtinProtected...)
	for _, pattern := range globs {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		g, err := glob.Compile(strings.TrimPrefix(pattern, "/"), '/')
		if err != nil {
			return nil, fmt.Errorf("pathutil: protected pattern %q: %w", pattern, err)
		}
		rules = append(rules, protectedRule{
			name:     pattern,
			glob:     g,
			baseOnly: !strings.Contains(pattern, "/"),
		})
	}
	return rules, nil
}

// matchProtected returns the name of the first protected rule matching the
// canonical path, or "" if none does. Paths outside the working directory
// are never protected.
func (r *Resolver) matchProtected(canon string) string {
	if r.workErr != nil || !IsWithin(r.canonWork, canon) {
		return ""
	}
	rel, err := filepath.Rel(r.canonWork, canon)
	if err != nil || rel == "." {
		return ""
	}
	rel = filepath.ToSlash(rel)
	for _, p := range r.protected {
		if p.match(rel) {
			return p.name
		}
	}
	return ""
}
