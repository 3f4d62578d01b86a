package diskfs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// ErrorCode is the portable error taxonomy every public operation fails
// with. Native OS error codes are translated into one of these by
// translateError / translateWriteError.
type ErrorCode int

const (
	// Unknown covers any native error this layer does not recognize.
	Unknown ErrorCode = iota
	// FileNotFound corresponds to ENOENT.
	FileNotFound
	// FileIsADirectory corresponds to EISDIR.
	FileIsADirectory
	// FileNotADirectory corresponds to ENOTDIR.
	FileNotADirectory
	// FileExists corresponds to EEXIST.
	FileExists
	// NoPermissions corresponds to EPERM/EACCES.
	NoPermissions
	// FileWriteLocked is an upgrade of NoPermissions once a write-lock probe
	// (owner-write bit clear) confirms the resource itself is the reason.
	FileWriteLocked
)

func (c ErrorCode) String() string {
	switch c {
	case FileNotFound:
		return "FileNotFound"
	case FileIsADirectory:
		return "FileIsADirectory"
	case FileNotADirectory:
		return "FileNotADirectory"
	case FileExists:
		return "FileExists"
	case NoPermissions:
		return "NoPermissions"
	case FileWriteLocked:
		return "FileWriteLocked"
	default:
		return "Unknown"
	}
}

// A ProviderError is the wrapped form every public operation returns on
// failure: a portable Code, the Path it concerns (if any), a human-readable
// Message, and the original Cause for diagnostics.
type ProviderError struct {
	Code    ErrorCode
	Path    Path
	Message string
	Cause   error
}

func (e *ProviderError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Path, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the original, native error.
func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// UnsupportedOperationError is returned by operations that cannot be carried
// out at all, e.g. Read, Write or Close on an unknown descriptor.
type UnsupportedOperationError struct {
	Message string
	Cause   error
}

func (e *UnsupportedOperationError) Error() string {
	return "UnsupportedOperationError: " + e.Message
}

// Unwrap returns nil or the cause.
func (e *UnsupportedOperationError) Unwrap() error {
	return e.Cause
}

// translateError maps a native error into the portable taxonomy. Already
// wrapped *ProviderError values pass through unchanged, so wrapping is
// idempotent.
func translateError(err error, path Path) error {
	if err == nil {
		return nil
	}

	var existing *ProviderError
	if errors.As(err, &existing) {
		return err
	}

	code := classify(err)
	return &ProviderError{Code: code, Path: path, Message: err.Error(), Cause: err}
}

func classify(err error) ErrorCode {
	if code, ok := classifyErrno(err); ok {
		return code
	}
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return FileNotFound
	case errors.Is(err, fs.ErrExist):
		return FileExists
	case errors.Is(err, fs.ErrPermission):
		return NoPermissions
	default:
		return Unknown
	}
}

// translateWriteError is the write-error upgrade:
// if the derived code is NoPermissions and the target path is known, stat it
// and upgrade to FileWriteLocked when the owner-write bit is clear. A failing
// probe is swallowed and leaves the original error untouched (best-effort).
func translateWriteError(err error, path Path, resolved string) error {
	wrapped := translateError(err, path)
	if wrapped == nil {
		return nil
	}

	var perr *ProviderError
	if !errors.As(wrapped, &perr) || perr.Code != NoPermissions || resolved == "" {
		return wrapped
	}

	info, statErr := os.Stat(resolved)
	if statErr != nil {
		return wrapped
	}
	if info.Mode().Perm()&0o200 == 0 {
		perr.Code = FileWriteLocked
	}
	return wrapped
}
