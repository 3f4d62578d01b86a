package diskfs

import "runtime"

// Capability is a bit in the capability bitset the provider advertises to its
// caller.
type Capability uint32

const (
	FileReadWrite Capability = 1 << iota
	FileOpenReadWriteClose
	FileReadStream
	FileFolderCopy
	FileWriteUnlock
	// PathCaseSensitive is only set on platforms whose local filesystem is
	// case-sensitive (Linux).
	PathCaseSensitive
)

// computeCapabilities is evaluated lazily on first read and is static for the
// lifetime of the provider instance.
func computeCapabilities() Capability {
	caps := FileReadWrite | FileOpenReadWriteClose | FileReadStream | FileFolderCopy | FileWriteUnlock
	if !isCaseInsensitiveFS() {
		caps |= PathCaseSensitive
	}
	return caps
}

// Has reports whether c includes every bit set in want.
func (c Capability) Has(want Capability) bool {
	return c&want == want
}

// isCaseInsensitiveFS reports whether the host filesystem treats paths
// case-insensitively, which gates the same-resource-different-case
// detection in rename/copy.
func isCaseInsensitiveFS() bool {
	return runtime.GOOS == "windows" || runtime.GOOS == "darwin"
}
