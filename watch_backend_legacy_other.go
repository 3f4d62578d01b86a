//go:build !linux

package diskfs

// newLegacyBackend on non-Linux platforms stands in for the NSFW-backed
// legacy watcher: no NSFW binding is available here, so rather than
// fabricate one this leg falls back to the polling backend, with the
// substitution logged once at construction so it's visible in the field.
func newLegacyBackend(folders []watchRequest, onChange func(FileChange), onLogMessage func(LogLevel, string), verbose bool, cfg Config) watchBackend {
	onLogMessage(LogInfo, "legacy watcher requested on a non-Linux platform; using the polling backend")
	return newPollingBackend(folders, onChange, onLogMessage, verbose, cfg)
}
