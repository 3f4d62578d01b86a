//go:build windows

package diskfs

// classifyErrno has no reliable EISDIR/ENOTDIR equivalent on Windows (the
// win32 error codes os.PathError wraps there don't map onto the POSIX errno
// space the portable error taxonomy enumerates), so classification falls back to the
// portable fs.ErrNotExist/ErrExist/ErrPermission sentinels checked by classify
// in errors.go.
func classifyErrno(err error) (ErrorCode, bool) {
	return Unknown, false
}
