package diskfs

import (
	"context"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// writeRetryAttempts and writeRetryDelay implement the fixed retry policy:
// on a truncating open the file was just emptied, so a failure here leaves
// the file empty and the caller's data lost; transient contenders (AV
// scanners, indexers) warrant a few retries.
const (
	writeRetryAttempts = 3
	writeRetryDelay    = 100 * time.Millisecond
)

// OpenOptions controls Open.
type OpenOptions struct {
	Create bool
	Write  bool
	Unlock bool
}

type openDescriptor struct {
	file     *os.File
	resolved string
	resource Path
}

// descriptorTable is the file-descriptor position cache. It tracks, per integer
// handle, the last-known logical offset and whether the handle was opened for
// writing, so that positional reads/writes can skip redundant seeks whenever
// the caller's requested offset already matches the cached position.
type descriptorTable struct {
	mu       sync.Mutex
	files    map[int]*openDescriptor
	pos      map[int]int64 // presence == known position
	writable map[int]Path
	nextFD   int

	// canFlush is sticky false once any fdatasync failure is observed;
	// exotic mounts may reject sync repeatedly
	// and each failure is costly, so we stop trying for the provider's
	// lifetime.
	canFlush atomic.Bool

	logger Logger
}

func newDescriptorTable(logger Logger) *descriptorTable {
	d := &descriptorTable{
		files:    make(map[int]*openDescriptor),
		pos:      make(map[int]int64),
		writable: make(map[int]Path),
		logger:   logger,
	}
	d.canFlush.Store(true)
	return d
}

// Open runs the open algorithm: best-effort write-unlock,
// OS-specific write-open flag selection (including the Windows
// truncate-then-r+ path), and position-cache initialization.
func (d *descriptorTable) Open(_ context.Context, resource Path, resolved string, opts OpenOptions) (int, error) {
	if opts.Write && opts.Unlock {
		bestEffortUnlock(resolved)
	}

	file, err := openForIntent(resolved, opts, d.logger)
	if err != nil {
		if opts.Write {
			return 0, translateWriteError(err, resource, resolved)
		}
		return 0, translateError(err, resource)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextFD++
	fd := d.nextFD
	d.files[fd] = &openDescriptor{file: file, resolved: resolved, resource: resource}
	d.pos[fd] = 0
	if opts.Write {
		d.writable[fd] = resource
	}
	return fd, nil
}

// bestEffortUnlock sets the owner-write bit if it is clear, swallowing any
// error: unlocking is best-effort only.
func bestEffortUnlock(resolved string) {
	info, err := os.Stat(resolved)
	if err != nil {
		return
	}
	if info.Mode().Perm()&0o200 == 0 {
		_ = os.Chmod(resolved, info.Mode().Perm()|0o200)
	}
}

// openForIntent picks the OS open flags for the requested intent.
func openForIntent(resolved string, opts OpenOptions, logger Logger) (*os.File, error) {
	if !opts.Write {
		return os.OpenFile(resolved, os.O_RDONLY, 0)
	}

	if runtime.GOOS == "windows" {
		if file, ok := tryWindowsPreservingOpen(resolved, opts, logger); ok {
			return file, nil
		}
	}

	flag := os.O_WRONLY
	if opts.Create {
		flag |= os.O_CREATE | os.O_TRUNC
	} else {
		flag |= os.O_TRUNC
	}
	return os.OpenFile(resolved, flag, 0o644)
}

// tryWindowsPreservingOpen implements the Windows write-open path:
// opening with O_TRUNC on Windows destroys a file's hidden attribute and
// alternate data streams, so instead we truncate first (a separate syscall
// that does not touch attributes) and reopen without truncation. If the
// truncate fails for any reason other than the file not existing yet, we log
// and fall through to the regular truncate-or-create open.
func tryWindowsPreservingOpen(resolved string, opts OpenOptions, logger Logger) (*os.File, bool) {
	err := os.Truncate(resolved, 0)
	switch {
	case err == nil:
		file, openErr := os.OpenFile(resolved, os.O_RDWR, 0o644)
		if openErr == nil {
			return file, true
		}
		return nil, false
	case os.IsNotExist(err) && opts.Create:
		return nil, false
	default:
		if logger != nil {
			logger.Warn("windows pre-truncate failed, falling back to truncate-on-open", Fields{"path": resolved, "error": err.Error()})
		}
		return nil, false
	}
}

// Close runs the close algorithm: drop the position cache
// entry, fdatasync writable descriptors while canFlush holds, then close.
func (d *descriptorTable) Close(fd int) error {
	d.mu.Lock()
	desc, known := d.files[fd]
	delete(d.pos, fd)
	_, wasWritable := d.writable[fd]
	delete(d.writable, fd)
	delete(d.files, fd)
	d.mu.Unlock()

	if !known {
		return &UnsupportedOperationError{Message: "close: unknown descriptor"}
	}

	if wasWritable && d.canFlush.Load() {
		if err := fdatasync(desc.file); err != nil {
			d.canFlush.Store(false)
			if d.logger != nil {
				d.logger.Warn("fdatasync failed, disabling future flushes", Fields{"path": desc.resolved, "error": err.Error()})
			}
		}
	}

	if err := desc.file.Close(); err != nil {
		return translateError(err, desc.resource)
	}
	return nil
}

// normalizePos decides whether an offset needs an explicit seek: nil means "pass no
// explicit offset, use the descriptor's current position", matching the
// caller's cached expectation; a non-nil value is an explicit seek.
func (d *descriptorTable) normalizePos(fd int, requested int64) (normalized *int64, ok bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, known := d.files[fd]; !known {
		return nil, false
	}
	if cur, has := d.pos[fd]; has && cur == requested {
		return nil, true
	}
	v := requested
	return &v, true
}

// finalizePos applies the position-update rules: an
// explicit (non-nil) normalized offset leaves the cached position untouched
// regardless of outcome (pread/pwrite semantics do not move the underlying
// file offset); a nil normalized offset advances the position by n on success
// or removes it entirely on failure.
func (d *descriptorTable) finalizePos(fd int, normalized *int64, n int, callErr error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if normalized != nil {
		return
	}
	if callErr == nil {
		d.pos[fd] += int64(n)
	} else {
		delete(d.pos, fd)
	}
}

// Read runs the read state machine. Reads are not retried.
func (d *descriptorTable) Read(fd int, pos int64, dst []byte) (int, error) {
	d.mu.Lock()
	desc, known := d.files[fd]
	d.mu.Unlock()
	if !known {
		return 0, &UnsupportedOperationError{Message: "read: unknown descriptor"}
	}

	normalized, ok := d.normalizePos(fd, pos)
	if !ok {
		return 0, &UnsupportedOperationError{Message: "read: unknown descriptor"}
	}

	var n int
	var err error
	if normalized == nil {
		n, err = desc.file.Read(dst)
	} else {
		n, err = desc.file.ReadAt(dst, *normalized)
	}

	d.finalizePos(fd, normalized, n, err)
	if err != nil {
		return n, translateError(err, desc.resource)
	}
	return n, nil
}

// Write runs the write state machine, wrapped in the fixed
// 3-attempts/100ms retry policy via backoff/v4's constant backoff.
func (d *descriptorTable) Write(fd int, pos int64, src []byte) (int, error) {
	d.mu.Lock()
	desc, known := d.files[fd]
	d.mu.Unlock()
	if !known {
		return 0, &UnsupportedOperationError{Message: "write: unknown descriptor"}
	}

	normalized, ok := d.normalizePos(fd, pos)
	if !ok {
		return 0, &UnsupportedOperationError{Message: "write: unknown descriptor"}
	}

	var n int
	policy := backoff.WithMaxRetries(backoff.NewConstantBackOff(writeRetryDelay), writeRetryAttempts-1)
	opErr := backoff.Retry(func() error {
		var writeErr error
		if normalized == nil {
			n, writeErr = desc.file.Write(src)
		} else {
			n, writeErr = desc.file.WriteAt(src, *normalized)
		}
		return writeErr
	}, policy)

	d.finalizePos(fd, normalized, n, opErr)
	if opErr != nil {
		return n, translateWriteError(opErr, desc.resource, desc.resolved)
	}
	return n, nil
}

// WritablePath reports the resource fd was opened for writing, if any.
func (d *descriptorTable) WritablePath(fd int) (Path, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.writable[fd]
	return p, ok
}
