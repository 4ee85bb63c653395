package pathguard

import (
	"errors"
	"fmt"

	"github.com/zhangyunhao116/pathguard/internal/pathutil"
)

// Sentinel errors returned by the pathguard package.
var (
	// ErrConfigInvalid indicates the provided configuration failed validation.
	ErrConfigInvalid = errors.New("pathguard: invalid configuration")

	// ErrBlocked indicates a command or path was blocked by the guard.
	ErrBlocked = errors.New("pathguard: blocked")

	// ErrNoHomeDir indicates a path referred to the home directory but the
	// guard has none. Analysis treats such paths as outside every zone.
	ErrNoHomeDir = pathutil.ErrNoHomeDir

	// ErrSymlinkLoop indicates a chain of dangling symlinks was too long to
	// follow. Analysis treats such paths as outside every zone.
	ErrSymlinkLoop = pathutil.ErrSymlinkLoop
)

// BlockedError is returned by Verdict.Err for a blocked verdict.
// It wraps ErrBlocked so that errors.Is(err, ErrBlocked) still works.
type BlockedError struct {
	// Command is the command that was blocked, if the check was a command
	// check.
	Command string
	// Path is the offending path, if any.
	Path string
	// Reason explains why the operation was blocked.
	Reason string
	// Rule identifies the check that blocked it.
	Rule string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("%s: %s", ErrBlocked.Error(), e.Reason)
}

func (e *BlockedError) Unwrap() error {
	return ErrBlocked
}
