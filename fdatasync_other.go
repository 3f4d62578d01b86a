//go:build !linux

package diskfs

import "os"

// fdatasync falls back to a full fsync on platforms without a distinct
// fdatasync syscall exposed through golang.org/x/sys (darwin, bsd, windows).
// File.Sync already routes to FlushFileBuffers on Windows and fsync
// elsewhere, which is a strictly stronger durability guarantee than
// fdatasync, applied here for the same post-close durability step of
// the descriptor table's Close.
func fdatasync(f *os.File) error {
	return f.Sync()
}
