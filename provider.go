package diskfs

import (
	"context"
	"path/filepath"
	"sync"
)

// Provider is the local disk filesystem provider: it resolves resource paths
// onto the host filesystem and serves stat/readdir, bulk I/O, descriptor I/O,
// mutations, and watching on top of it.
type Provider struct {
	root   string
	config Config
	logger Logger

	descriptors *descriptorTable
	watcher     *watchMultiplexer

	onDidChangeFile         Emitter[FileChange]
	onDidErrorOccur         Emitter[string]
	onDidChangeCapabilities Emitter[struct{}]

	capsOnce sync.Once
	caps     Capability
}

// NewProvider constructs a Provider rooted at root. Every resource Path is
// resolved relative to it rather than at the OS filesystem root.
func NewProvider(root string, cfg Config, logger Logger) *Provider {
	if logger == nil {
		logger = NewLogrusLogger(nil)
	}
	p := &Provider{
		root:        root,
		config:      cfg,
		logger:      logger,
		descriptors: newDescriptorTable(logger),
	}
	p.watcher = newWatchMultiplexer(cfg, logger, &p.onDidChangeFile, &p.onDidErrorOccur, p.resolve, p.unresolve)
	return p
}

// resolve turns a resource Path into an absolute host filesystem path,
// joined under the provider's configurable root.
func (p *Provider) resolve(resource Path) (string, error) {
	uri := ResourceURI{Scheme: "file", Path: resource}
	rel, err := ToFilePath(uri)
	if err != nil {
		return "", err
	}
	if p.root == "" {
		return rel, nil
	}
	return joinRoot(p.root, rel), nil
}

func joinRoot(root, rel string) string {
	if root[len(root)-1] == '/' {
		return root + rel[1:]
	}
	return root + rel
}

// unresolve is the inverse of resolve: it turns an absolute host filesystem
// path back into a resource Path relative to the provider's root, so that
// watcher backends (which only ever see host paths) can report change
// events in the same namespace every other operation uses.
func (p *Provider) unresolve(hostPath string) Path {
	if p.root == "" {
		return Path(filepath.ToSlash(hostPath))
	}
	rel, err := filepath.Rel(p.root, hostPath)
	if err != nil {
		return Path(filepath.ToSlash(hostPath))
	}
	return Path("/" + filepath.ToSlash(rel))
}

// Capabilities returns the provider's static capability bitset, computed
// lazily on first call.
func (p *Provider) Capabilities() Capability {
	p.capsOnce.Do(func() { p.caps = computeCapabilities() })
	return p.caps
}

// OnDidChangeFile subscribes to change events reported by watchers.
func (p *Provider) OnDidChangeFile(listener func(FileChange)) (unsubscribe func()) {
	return p.onDidChangeFile.Subscribe(listener)
}

// OnDidErrorOccur subscribes to error-severity log messages surfaced by a
// watcher backend.
func (p *Provider) OnDidErrorOccur(listener func(string)) (unsubscribe func()) {
	return p.onDidErrorOccur.Subscribe(listener)
}

// OnDidChangeCapabilities subscribes to capability-change notifications.
// This implementation's capability bitset is static once computed, so this
// emitter never fires in this implementation.
func (p *Provider) OnDidChangeCapabilities(listener func()) (unsubscribe func()) {
	return p.onDidChangeCapabilities.Subscribe(func(struct{}) { listener() })
}

// Watch registers a single path watch on its own polling backend; that
// backend scans the whole subtree beneath resource (see watchNonRecursive).
func (p *Provider) Watch(resource Path) Disposable {
	return p.watcher.watchNonRecursive(resource)
}

// WatchRecursive registers a recursive watch.
func (p *Provider) WatchRecursive(resource Path, opts WatchOptions) Disposable {
	return p.watcher.watchRecursive(resource, opts)
}

// Open opens a resource, exposing the descriptor table's
// position cache through the Provider's public surface.
func (p *Provider) Open(ctx context.Context, resource Path, opts OpenOptions) (int, error) {
	resolved, err := p.resolve(resource)
	if err != nil {
		return 0, err
	}
	return p.descriptors.Open(ctx, resource, resolved, opts)
}

// Close releases an open descriptor.
func (p *Provider) Close(fd int) error {
	return p.descriptors.Close(fd)
}

// Read reads from an open descriptor.
func (p *Provider) Read(fd int, pos int64, dst []byte) (int, error) {
	return p.descriptors.Read(fd, pos, dst)
}

// Write writes to an open descriptor.
func (p *Provider) Write(fd int, pos int64, src []byte) (int, error) {
	return p.descriptors.Write(fd, pos, src)
}

// Dispose releases the active watcher and unsubscribes its log-level hook.
func (p *Provider) Dispose() {
	p.watcher.dispose()
}
