package pathutil

import (
	"errors"
	"regexp"
	"strings"
)

// ErrNoHomeDir is returned when a path refers to the home directory but the
// resolver was built without one.
var ErrNoHomeDir = errors.New("pathutil: home directory is unknown")

// envRefPattern matches $NAME, ${NAME} and ${NAME:-default}.
var envRefPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:-([^}]*))?\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

// Expand replaces shell references in path with literal text:
//   - a leading "~" (exactly "~" or "~/...") becomes the home directory;
//   - $NAME and ${NAME} become the variable's value, with HOME mapped to the
//     home directory and PWD mapped to workDir (the directory the command is
//     running in, not the guard process's own PWD);
//   - ${NAME:-default} becomes the value, or default when unset or empty;
//   - unresolved names become the empty string.
//
// "~user" forms are left untouched. If workDir is empty the resolver's
// working directory is used for PWD.
func (r *Resolver) Expand(path, workDir string) (string, error) {
	if workDir == "" {
		workDir = r.workDir
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		if r.home == "" {
			return "", ErrNoHomeDir
		}
		path = r.home + path[1:]
	}

	if !strings.Contains(path, "$") {
		return path, nil
	}

	var expandErr error
	out := envRefPattern.ReplaceAllStringFunc(path, func(ref string) string {
		sub := envRefPattern.FindStringSubmatch(ref)
		name := sub[1]
		if name == "" {
			name = sub[4]
		}
		val, err := r.lookupVar(name, workDir)
		if err != nil && expandErr == nil {
			expandErr = err
		}
		if val == "" && sub[2] != "" {
			return sub[3]
		}
		return val
	})
	if expandErr != nil {
		return "", expandErr
	}
	return out, nil
}

func (r *Resolver) lookupVar(name, workDir string) (string, error) {
	switch name {
	case "HOME":
		if r.home == "" {
			return "", ErrNoHomeDir
		}
		return r.home, nil
	case "PWD":
		return workDir, nil
	default:
		return r.env.Get(name), nil
	}
}
