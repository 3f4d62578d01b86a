//go:build linux

package diskfs

import (
	"os"

	"golang.org/x/sys/unix"
)

// birthTimeMillis resolves the creation ("birth") time
// for ctime. Plain stat(2) on Linux only exposes the metadata change time, so
// this uses statx(2) (unix.Statx) with STATX_BTIME and falls back to the
// modification time on filesystems/kernels that don't report it.
func birthTimeMillis(resolved string, info os.FileInfo) uint64 {
	var stx unix.Statx_t
	err := unix.Statx(unix.AT_FDCWD, resolved, 0, unix.STATX_BTIME, &stx)
	if err != nil || stx.Mask&unix.STATX_BTIME == 0 {
		return uint64(info.ModTime().UnixMilli())
	}
	return uint64(stx.Btime.Sec)*1000 + uint64(stx.Btime.Nsec)/1e6
}
