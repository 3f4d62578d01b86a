//go:build !unix && !windows

package diskfs

// classifyErrno has no POSIX-errno or win32-error source to consult on
// targets that are neither unix nor windows (plan9, js/wasm); classification
// falls back to the portable fs.ErrNotExist/ErrExist/ErrPermission
// sentinels checked by classify in errors.go.
func classifyErrno(err error) (ErrorCode, bool) {
	return Unknown, false
}
