package pathutil

import "path/filepath"

// Classification is the zone membership of one path.
type Classification struct {
	// Input is the path as given.
	Input string

	// Path is the canonical absolute path, or "" when resolution failed.
	Path string

	// Err is the resolution failure, if any. A failed resolution belongs to
	// no zone except SafeDevice, which is also judged lexically.
	Err error

	WithinWorkingDir bool
	Temp             bool
	SafeDevice       bool
	PlatformConfig   bool

	// Protected names the protected pattern the path matched, or "".
	Protected string
}

// SafeForWrite reports whether the path is a safe device or inside a temp
// directory.
func (c Classification) SafeForWrite() bool {
	return c.SafeDevice || c.Temp
}

// Classify resolves path against base (the working directory when base is
// empty) and reports every zone it belongs to.
func (r *Resolver) Classify(path, base string) Classification {
	c := Classification{Input: path}

	abs, err := r.Abs(path, base)
	if err != nil {
		c.Err = err
		return c
	}
	c.SafeDevice = isSafeDevice(abs)

	canon, err := r.canonical(abs, 0)
	if err != nil {
		c.Err = err
		return c
	}
	c.Path = canon
	c.SafeDevice = c.SafeDevice || isSafeDevice(canon)
	c.WithinWorkingDir = r.workErr == nil && IsWithin(r.canonWork, canon)
	c.Temp = underAnyRoot(canon, r.tempRoots)
	c.PlatformConfig = underAnyRoot(canon, r.platformRoots)
	c.Protected = r.matchProtected(canon)
	return c
}

// IsWithinWorkingDir reports whether path, resolved against the working
// directory, is the working directory or inside it. Resolution failures
// answer false.
func (r *Resolver) IsWithinWorkingDir(path string) bool {
	return r.Classify(path, "").WithinWorkingDir
}

// IsSafeForWrite reports whether path is a safe device or a temp path.
func (r *Resolver) IsSafeForWrite(path string) bool {
	return r.Classify(path, "").SafeForWrite()
}

// IsTempPath reports whether path is inside a temp directory.
func (r *Resolver) IsTempPath(path string) bool {
	return r.Classify(path, "").Temp
}

// IsPlatformPath reports whether path is inside a platform configuration
// directory.
func (r *Resolver) IsPlatformPath(path string) bool {
	return r.Classify(path, "").PlatformConfig
}

// IsProtectedPath reports whether path is a protected path inside the
// working directory, and the name of the pattern it matched.
func (r *Resolver) IsProtectedPath(path string) (bool, string) {
	name := r.Classify(path, "").Protected
	return name != "", name
}

func isSafeDevice(p string) bool {
	p = filepath.ToSlash(p)
	for _, dev := range safeDevices {
		if p == dev {
			return true
		}
	}
	return false
}

func underAnyRoot(p string, roots []string) bool {
	for _, root := range roots {
		if hasRootPrefix(p, root) {
			return true
		}
	}
	return false
}
