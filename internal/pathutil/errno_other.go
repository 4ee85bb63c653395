//go:build !unix

package pathutil

import (
	"errors"
	"io/fs"
	"syscall"
)

func isMissing(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR)
}
