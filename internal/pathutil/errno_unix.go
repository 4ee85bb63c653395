//go:build unix

package pathutil

import (
	"errors"
	"io/fs"

	"golang.org/x/sys/unix"
)

// isMissing reports whether err means the path, or one of its ancestors,
// does not exist. ENOTDIR is included because it is what a lookup returns
// when an ancestor is a regular file, which is just as absent for our
// purposes. Any other failure (EACCES, ELOOP, EIO) is not "missing" and must
// make the caller fail closed.
func isMissing(err error) bool {
	return errors.Is(err, fs.ErrNotExist) ||
		errors.Is(err, unix.ENOENT) ||
		errors.Is(err, unix.ENOTDIR)
}
