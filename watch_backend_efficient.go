package diskfs

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// efficientBackend wraps fsnotify's native OS event source (inotify, kqueue,
// ReadDirectoryChangesW) behind the uniform watchBackend interface. This is
// the cross-platform backend selected when polling isn't forced
// and the legacy heuristic doesn't apply.
type efficientBackend struct {
	onChange     func(FileChange)
	onLogMessage func(LogLevel, string)

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	watched map[string]struct{}
	verbose bool
	done    chan struct{}
}

func newEfficientBackend(folders []watchRequest, onChange func(FileChange), onLogMessage func(LogLevel, string), verbose bool, _ Config) watchBackend {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		onLogMessage(LogError, "efficient watcher unavailable, falling back to polling: "+err.Error())
		return newPollingBackend(folders, onChange, onLogMessage, verbose, Config{})
	}

	b := &efficientBackend{
		onChange:     onChange,
		onLogMessage: onLogMessage,
		watcher:      w,
		watched:      make(map[string]struct{}),
		verbose:      verbose,
		done:         make(chan struct{}),
	}
	b.watch(folders)
	go b.loop()
	return b
}

func (b *efficientBackend) loop() {
	for {
		select {
		case <-b.done:
			return
		case ev, ok := <-b.watcher.Events:
			if !ok {
				return
			}
			b.handle(ev)
		case err, ok := <-b.watcher.Errors:
			if !ok {
				return
			}
			b.onLogMessage(LogError, "efficient watcher: "+err.Error())
		}
	}
}

func (b *efficientBackend) handle(ev fsnotify.Event) {
	if b.verbose {
		b.onLogMessage(LogTrace, "fsnotify event: "+ev.String())
	}
	var kind FileChangeType
	switch {
	case ev.Op&fsnotify.Create != 0:
		kind = FileChangeAdded
	case ev.Op&fsnotify.Remove != 0, ev.Op&fsnotify.Rename != 0:
		kind = FileChangeDeleted
	case ev.Op&fsnotify.Write != 0, ev.Op&fsnotify.Chmod != 0:
		kind = FileChangeUpdated
	default:
		return
	}
	b.onChange(FileChange{Type: kind, Path: Path(filepath.ToSlash(ev.Name))})
}

// watch reconfigures the backend to the given folder list, adding newly
// requested roots and removing ones no longer present; the backend itself
// is responsible for diffing against what it already has watched.
func (b *efficientBackend) watch(folders []watchRequest) {
	b.mu.Lock()
	defer b.mu.Unlock()

	roots := make([]string, 0, len(folders))
	for _, f := range folders {
		roots = append(roots, f.resolved)
	}

	for path := range b.watched {
		if !underAnyRoot(path, roots) {
			_ = b.watcher.Remove(path)
			delete(b.watched, path)
		}
	}
	for _, root := range roots {
		if _, ok := b.watched[root]; ok {
			continue
		}
		b.addTree(root)
	}
}

func underAnyRoot(path string, roots []string) bool {
	for _, root := range roots {
		if path == root || (len(path) > len(root) && path[:len(root)+1] == root+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// addTree walks root and registers every subdirectory with fsnotify, which,
// like the inotify it wraps on Linux, only watches a single directory per
// Add call.
func (b *efficientBackend) addTree(root string) {
	_ = filepath.Walk(root, func(p string, info os.FileInfo, err error) error {
		if err != nil || !info.IsDir() {
			return nil
		}
		if addErr := b.watcher.Add(p); addErr != nil {
			b.onLogMessage(LogWarn, "efficient watcher: add "+p+": "+addErr.Error())
			return nil
		}
		b.watched[p] = struct{}{}
		return nil
	})
}

func (b *efficientBackend) setVerboseLogging(verbose bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.verbose = verbose
}

func (b *efficientBackend) dispose() {
	close(b.done)
	_ = b.watcher.Close()
}
