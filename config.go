package diskfs

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// LegacyWatcherMode is the tri-state of the legacyWatcher config option.
type LegacyWatcherMode string

const (
	LegacyWatcherAuto LegacyWatcherMode = ""
	LegacyWatcherOn   LegacyWatcherMode = "on"
	LegacyWatcherOff  LegacyWatcherMode = "off"
)

// defaultBufferSize is readFileStream's default chunk size.
const defaultBufferSize = 64 * 1024

// Config carries the provider's construction-time options.
type Config struct {
	// BufferSize is the readFileStream chunk size. Default 64 KiB.
	BufferSize int

	// UsePolling forces the polling watcher backend.
	UsePolling bool
	// PollingExcludes are glob patterns, matched against an entry's base
	// name, whose entries (and, for directories, subtrees) the polling
	// backend skips while scanning.
	PollingExcludes []string
	// PollingInterval is the polling backend's period.
	PollingInterval time.Duration

	// LegacyWatcher forces ("on"/"off") or defers ("" / auto) the
	// legacy-vs-efficient backend heuristic.
	LegacyWatcher LegacyWatcherMode

	// ProductChannel is the release channel tag ("stable" or anything else)
	// that feeds the legacy-watcher default heuristic when LegacyWatcher is
	// LegacyWatcherAuto.
	ProductChannel string
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		BufferSize:      defaultBufferSize,
		PollingInterval: time.Second,
		LegacyWatcher:   LegacyWatcherAuto,
		ProductChannel:  "stable",
	}
}

// LoadConfig reads Config from viper, applying DefaultConfig's values as
// fallbacks. Keys mirror the option table:
// bufferSize, watcher.usePolling, watcher.pollingInterval, legacyWatcher,
// productChannel.
func LoadConfig(v *viper.Viper) Config {
	if v == nil {
		v = viper.New()
	}
	cfg := DefaultConfig()

	v.SetDefault("bufferSize", cfg.BufferSize)
	v.SetDefault("watcher.usePolling", cfg.UsePolling)
	v.SetDefault("watcher.pollingInterval", cfg.PollingInterval)
	v.SetDefault("legacyWatcher", string(cfg.LegacyWatcher))
	v.SetDefault("productChannel", cfg.ProductChannel)

	cfg.BufferSize = v.GetInt("bufferSize")
	cfg.UsePolling = v.GetBool("watcher.usePolling")
	cfg.PollingExcludes = v.GetStringSlice("watcher.pollingExcludes")
	cfg.PollingInterval = v.GetDuration("watcher.pollingInterval")
	cfg.LegacyWatcher = LegacyWatcherMode(strings.ToLower(v.GetString("legacyWatcher")))
	if channel := v.GetString("productChannel"); channel != "" {
		cfg.ProductChannel = channel
	}

	return cfg
}

// useLegacyWatcher resolves the tri-state heuristic:
// if forced, honor it; otherwise default to legacy for a single-folder list
// on the stable channel, efficient otherwise.
func (c Config) useLegacyWatcher(folderCount int) bool {
	switch c.LegacyWatcher {
	case LegacyWatcherOn:
		return true
	case LegacyWatcherOff:
		return false
	default:
		return c.ProductChannel == "stable" && folderCount == 1
	}
}
