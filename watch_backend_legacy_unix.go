//go:build linux

package diskfs

// newLegacyBackend on Linux is the "Unix" leg of the legacy split:
// historically a dedicated inotify-recursive library, but inotify
// itself only watches directories one at a time just like the efficient
// backend's fsnotify wrapper, so the legacy-Linux leg and the
// cross-platform-efficient backend are the same mechanism here. It exists as
// its own named constructor to keep the legacy/efficient selection visible
// at the call site.
func newLegacyBackend(folders []watchRequest, onChange func(FileChange), onLogMessage func(LogLevel, string), verbose bool, cfg Config) watchBackend {
	return newEfficientBackend(folders, onChange, onLogMessage, verbose, cfg)
}
