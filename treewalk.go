package diskfs

import (
	"bytes"
	"context"
	"io"
)

// TreeEntry pairs a resource path with its stat record, the result unit of
// Walk/ReadDirs.
type TreeEntry struct {
	Path Path
	Stat StatRecord
}

// WalkFunc is invoked for every entry Walk visits. Returning a non-nil error
// stops the whole walk, and Walk returns that error.
type WalkFunc func(entry TreeEntry, err error) error

// Walk recursively visits root and everything beneath it using ReadDir/Stat,
// the provider's descriptor-free metadata operations.
func Walk(p *Provider, root Path, fn WalkFunc) error {
	entries, err := p.ReadDir(root)
	if err != nil {
		return fn(TreeEntry{Path: root}, err)
	}

	for _, entry := range entries {
		child := root.Child(entry.Name)
		stat, statErr := p.Stat(child)
		if statErr != nil {
			if err := fn(TreeEntry{Path: child}, statErr); err != nil {
				return err
			}
			continue
		}
		if err := fn(TreeEntry{Path: child, Stat: stat}, nil); err != nil {
			return err
		}
		if stat.Type&Directory != 0 {
			if err := Walk(p, child, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

// ReadDirs fully and recursively lists root, collecting every visited entry.
func ReadDirs(p *Provider, root Path) ([]TreeEntry, error) {
	var out []TreeEntry
	err := Walk(p, root, func(entry TreeEntry, err error) error {
		if err != nil {
			return err
		}
		out = append(out, entry)
		return nil
	})
	return out, err
}

// ReadFully drains a ReadFileStream into memory, for callers that only need
// the bytes and not a streaming reader.
func ReadFully(p *Provider, resource Path) ([]byte, error) {
	reader, err := p.ReadFileStream(context.Background(), resource)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	buf := &bytes.Buffer{}
	if _, err := io.Copy(buf, reader); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
