//go:build unix

package diskfs

import (
	"errors"
	"syscall"
)

// classifyErrno maps POSIX errno values onto the portable error taxonomy.
func classifyErrno(err error) (ErrorCode, bool) {
	var errno syscall.Errno
	if !errors.As(err, &errno) {
		return Unknown, false
	}
	switch errno {
	case syscall.ENOENT:
		return FileNotFound, true
	case syscall.EISDIR:
		return FileIsADirectory, true
	case syscall.ENOTDIR:
		return FileNotADirectory, true
	case syscall.EEXIST:
		return FileExists, true
	case syscall.EPERM, syscall.EACCES:
		return NoPermissions, true
	default:
		return Unknown, true
	}
}
