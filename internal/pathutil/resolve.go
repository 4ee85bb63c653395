package pathutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/zhangyunhao116/pathguard/internal/envutil"
)

// maxSymlinkHops bounds manual resolution of dangling symlinks. It matches
// the MAXSYMLINKS limit of Linux.
const maxSymlinkHops = 40

// ErrSymlinkLoop is returned when a chain of dangling symlinks is too long
// to follow.
var ErrSymlinkLoop = errors.New("pathutil: too many levels of symbolic links")

// ErrUnknownBase is returned when a relative path is resolved against a
// base directory that contains a null byte. Callers use such a base to mark
// a directory they lost track of.
var ErrUnknownBase = errors.New("pathutil: base directory is unknown")

// errNullByte is returned for paths that no filesystem call would accept.
var errNullByte = errors.New("pathutil: path contains a null byte")

// Filesystem lookups, replaceable in tests.
var (
	evalSymlinksFn = filepath.EvalSymlinks
	lstatFn        = os.Lstat
	readlinkFn     = os.Readlink
)

// defaultTempRoots are the temp directories recognised on every platform,
// including the macOS /private aliases that /tmp and /var/tmp resolve to.
var defaultTempRoots = []string{"/tmp", "/var/tmp", "/private/tmp", "/private/var/tmp"}

// safeDevices may always be written to; nothing written there persists.
var safeDevices = []string{"/dev/null", "/dev/stdin", "/dev/stdout", "/dev/stderr"}

// Options configures a Resolver.
type Options struct {
	// WorkDir is the absolute working directory the resolver is bound to.
	WorkDir string

	// HomeDir is the user's home directory. Empty means unknown, in which
	// case "~" and $HOME references fail to resolve.
	HomeDir string

	// Env supplies values for $NAME expansion and $TMPDIR.
	Env envutil.Env

	// TempDirs lists extra temp roots in addition to the defaults.
	TempDirs []string

	// PlatformDirs lists platform configuration directories. Entries may be
	// absolute or start with "~/".
	PlatformDirs []string

	// ProtectedGlobs lists extra protected patterns, matched against the
	// path relative to the working directory.
	ProtectedGlobs []string
}

// Resolver expands and canonicalizes paths and answers zone questions
// against a fixed working directory. It is immutable after construction and
// safe for concurrent use.
type Resolver struct {
	workDir   string
	canonWork string
	workErr   error
	home      string
	env       envutil.Env

	tempRoots     []string
	platformRoots []string
	protected     []protectedRule
}

// NewResolver builds a Resolver. The working directory is made absolute and
// canonicalized once; if canonicalization fails every within-working-dir
// check answers false.
func NewResolver(opts Options) (*Resolver, error) {
	if opts.WorkDir == "" {
		return nil, errors.New("pathutil: working directory must not be empty")
	}
	if ContainsNullByte(opts.WorkDir) {
		return nil, errNullByte
	}
	workDir, err := filepath.Abs(opts.WorkDir)
	if err != nil {
		return nil, fmt.Errorf("pathutil: cannot make working directory absolute: %w", err)
	}

	protected, err := compileProtected(opts.ProtectedGlobs)
	if err != nil {
		return nil, err
	}

	var home string
	if opts.HomeDir != "" {
		home = filepath.Clean(opts.HomeDir)
	}

	r := &Resolver{
		workDir:   workDir,
		home:      home,
		env:       opts.Env,
		protected: protected,
	}
	r.canonWork, r.workErr = r.canonical(workDir, 0)

	temps := append([]string(nil), defaultTempRoots...)
	if tmp, ok := opts.Env.Lookup("TMPDIR"); ok && filepath.IsAbs(tmp) {
		temps = append(temps, tmp)
	}
	temps = append(temps, opts.TempDirs...)
	r.tempRoots = r.zoneRoots(temps)
	r.platformRoots = r.zoneRoots(opts.PlatformDirs)

	return r, nil
}

// zoneRoots expands each root and returns both its lexical and canonical
// forms, so a zone matches whether or not the caller's path went through
// the same symlinks. Roots that cannot be expanded are dropped.
func (r *Resolver) zoneRoots(roots []string) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(p string) {
		if p == "" {
			return
		}
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	for _, root := range roots {
		expanded, err := r.Expand(root, r.workDir)
		if err != nil || !filepath.IsAbs(expanded) {
			continue
		}
		clean := filepath.Clean(expanded)
		add(clean)
		if canon, err := r.canonical(clean, 0); err == nil {
			add(canon)
		}
	}
	return out
}

// WorkDir returns the absolute working directory.
func (r *Resolver) WorkDir() string { return r.workDir }

// CanonicalWorkDir returns the canonical working directory, or "" if it
// could not be resolved.
func (r *Resolver) CanonicalWorkDir() string { return r.canonWork }

// HomeDir returns the home directory, or "" if unknown.
func (r *Resolver) HomeDir() string { return r.home }

// Abs expands path and makes it absolute against base (the working
// directory when base is empty) without touching the filesystem.
func (r *Resolver) Abs(path, base string) (string, error) {
	if ContainsNullByte(path) {
		return "", errNullByte
	}
	if base == "" {
		base = r.workDir
	}
	expanded, err := r.Expand(path, base)
	if err != nil {
		return "", err
	}
	if !filepath.IsAbs(expanded) {
		expanded = filepath.Join(base, expanded)
	}
	if ContainsNullByte(expanded) {
		// Only base can have introduced it.
		return "", ErrUnknownBase
	}
	return filepath.Clean(expanded), nil
}

// ResolveReal expands path, resolves it against base (the working directory
// when base is empty) and follows symlinks at every component. Paths that do
// not exist yet resolve through their deepest existing ancestor, so a file
// about to be created is classified by where it would really land.
// Lookup failures other than "does not exist" are returned as errors.
func (r *Resolver) ResolveReal(path, base string) (string, error) {
	abs, err := r.Abs(path, base)
	if err != nil {
		return "", err
	}
	return r.canonical(abs, 0)
}

// canonical resolves symlinks in an absolute, clean path.
func (r *Resolver) canonical(p string, hops int) (string, error) {
	resolved, err := evalSymlinksFn(p)
	if err == nil {
		return resolved, nil
	}
	if !isMissing(err) {
		return "", err
	}

	parent := filepath.Dir(p)
	if parent == p {
		return p, nil
	}
	realParent, err := r.canonical(parent, hops)
	if err != nil {
		return "", err
	}
	candidate := filepath.Join(realParent, filepath.Base(p))

	fi, err := lstatFn(candidate)
	if err != nil {
		if isMissing(err) {
			return candidate, nil
		}
		return "", err
	}
	if fi.Mode()&fs.ModeSymlink == 0 {
		return candidate, nil
	}

	// A dangling symlink: follow it by hand so the link is classified by
	// the (not yet existing) target it would write through.
	if hops >= maxSymlinkHops {
		return "", ErrSymlinkLoop
	}
	target, err := readlinkFn(candidate)
	if err != nil {
		return "", err
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(realParent, target)
	}
	return r.canonical(filepath.Clean(target), hops+1)
}
