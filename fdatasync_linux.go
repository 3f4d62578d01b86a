//go:build linux

package diskfs

import (
	"os"

	"golang.org/x/sys/unix"
)

// fdatasync flushes file data (and only the metadata needed to retrieve it)
// to stable storage, the durability step of Close.
func fdatasync(f *os.File) error {
	return unix.Fdatasync(int(f.Fd()))
}
