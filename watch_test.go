package diskfs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// identityResolve/identityUnresolve stand in for a Provider's resolve/
// unresolve pair in multiplexer-only tests that don't construct a Provider.
func identityResolve(p Path) (string, error) { return p.String(), nil }
func identityUnresolve(s string) Path        { return Path(s) }

func TestWatchRecursiveCoalescesIntoOneBackend(t *testing.T) {
	cfg := DefaultConfig()
	cfg.UsePolling = true
	logger := NewLogrusLogger(nil)

	var onFile Emitter[FileChange]
	var onError Emitter[string]
	m := newWatchMultiplexer(cfg, logger, &onFile, &onError, identityResolve, identityUnresolve)
	defer m.dispose()

	var constructed int
	m.newBackend = func(folders []watchRequest, onChange func(FileChange), onLogMessage func(LogLevel, string), verbose bool, cfg Config) watchBackend {
		constructed++
		return newPollingBackend(folders, onChange, onLogMessage, verbose, cfg)
	}

	d1 := m.watchRecursive("/a", WatchOptions{})
	d2 := m.watchRecursive("/b", WatchOptions{})
	d3 := m.watchRecursive("/c", WatchOptions{})
	defer d1.Dispose()
	defer d2.Dispose()
	defer d3.Dispose()

	// the delayer is zero-delay but still asynchronous; give it a moment to
	// coalesce the three synchronous requests into one refresh.
	deadline := time.Now().Add(2 * time.Second)
	for constructed == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	if constructed != 1 {
		t.Fatalf("expected exactly one backend construction, got %d", constructed)
	}
	if len(m.requests) != 3 {
		t.Fatalf("expected 3 pending requests, got %d", len(m.requests))
	}
}

func TestWatchRecursiveDisposeRemovesExactlyOneRequest(t *testing.T) {
	cfg := DefaultConfig()
	cfg.UsePolling = true
	logger := NewLogrusLogger(nil)

	var onFile Emitter[FileChange]
	var onError Emitter[string]
	m := newWatchMultiplexer(cfg, logger, &onFile, &onError, identityResolve, identityUnresolve)
	defer m.dispose()

	d1 := m.watchRecursive("/same", WatchOptions{})
	d2 := m.watchRecursive("/same", WatchOptions{})

	m.mu.Lock()
	count := len(m.requests)
	m.mu.Unlock()
	if count != 2 {
		t.Fatalf("duplicate requests should not collapse, got %d", count)
	}

	d1.Dispose()
	m.mu.Lock()
	count = len(m.requests)
	m.mu.Unlock()
	if count != 1 {
		t.Fatalf("expected 1 request after disposing one duplicate, got %d", count)
	}
	d2.Dispose()
}

func TestUseLegacyWatcherHeuristic(t *testing.T) {
	cases := []struct {
		name        string
		mode        LegacyWatcherMode
		channel     string
		folderCount int
		want        bool
	}{
		{"forced on", LegacyWatcherOn, "stable", 5, true},
		{"forced off", LegacyWatcherOff, "stable", 1, false},
		{"auto single folder stable channel", LegacyWatcherAuto, "stable", 1, true},
		{"auto multi folder stable channel", LegacyWatcherAuto, "stable", 2, false},
		{"auto single folder other channel", LegacyWatcherAuto, "insiders", 1, false},
	}
	for _, tc := range cases {
		cfg := Config{LegacyWatcher: tc.mode, ProductChannel: tc.channel}
		assert.Equal(t, tc.want, cfg.useLegacyWatcher(tc.folderCount), tc.name)
	}
}
