package diskfs

import (
	"os"
	"path/filepath"
)

// statResult is the combined stat result: the target's own
// info, whether the entry itself is a symlink, and whether it is dangling.
type statResult struct {
	resolved string
	info     os.FileInfo
	isLink   bool
	dangling bool
}

// combinedStat resolves symlinks: Lstat first
// to detect whether the entry itself is a symlink, then Stat to follow it and
// detect a dangling target.
func combinedStat(resolved string) (statResult, error) {
	lst, err := os.Lstat(resolved)
	if err != nil {
		return statResult{}, err
	}
	if lst.Mode()&os.ModeSymlink == 0 {
		return statResult{resolved: resolved, info: lst}, nil
	}

	target, err := os.Stat(resolved)
	if err != nil {
		if os.IsNotExist(err) {
			return statResult{resolved: resolved, info: lst, isLink: true, dangling: true}, nil
		}
		return statResult{}, err
	}
	return statResult{resolved: resolved, info: target, isLink: true}, nil
}

func classifyType(r statResult) FileType {
	if r.dangling {
		return Unknown | SymbolicLink
	}

	var t FileType
	switch {
	case r.info.Mode().IsRegular():
		t = File
	case r.info.IsDir():
		t = Directory
	default:
		t = Unknown
	}
	if r.isLink {
		t |= SymbolicLink
	}
	return t
}

func toStatRecord(r statResult) StatRecord {
	return StatRecord{
		Type:  classifyType(r),
		Ctime: birthTimeMillis(r.resolved, r.info),
		Mtime: uint64(r.info.ModTime().UnixMilli()),
		Size:  uint64(r.info.Size()),
	}
}

// Stat returns metadata for a resource.
func (p *Provider) Stat(resource Path) (StatRecord, error) {
	resolved, err := p.resolve(resource)
	if err != nil {
		return StatRecord{}, err
	}
	r, err := combinedStat(resolved)
	if err != nil {
		return StatRecord{}, translateError(err, resource)
	}
	return toStatRecord(r), nil
}

// DirEntry is a single readdir result.
type DirEntry struct {
	Name string
	Type FileType
}

// ReadDir lists a directory's entries: per-entry failures (typically a
// permission-denied symlink target) are logged and dropped rather than
// failing the whole listing; only a top-level failure to open the directory
// propagates.
func (p *Provider) ReadDir(resource Path) ([]DirEntry, error) {
	resolved, err := p.resolve(resource)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(resolved)
	if err != nil {
		return nil, translateError(err, resource)
	}

	out := make([]DirEntry, 0, len(entries))
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			p.logDroppedEntry(resource, entry.Name(), err)
			continue
		}

		entryType := File
		if info.IsDir() {
			entryType = Directory
		} else if info.Mode()&os.ModeSymlink != 0 {
			// Recursive stat on the joined path so the caller can tell a
			// link-to-directory from a link-to-file.
			childResource := resource.Child(entry.Name())
			stat, err := combinedStat(filepath.Join(resolved, entry.Name()))
			if err != nil {
				p.logDroppedEntry(childResource, entry.Name(), err)
				continue
			}
			entryType = classifyType(stat)
		} else if !info.Mode().IsRegular() {
			entryType = Unknown
		}

		out = append(out, DirEntry{Name: entry.Name(), Type: entryType})
	}
	return out, nil
}

func (p *Provider) logDroppedEntry(dir Path, name string, err error) {
	if p.logger == nil {
		return
	}
	p.logger.Warn("dropping unreadable directory entry", Fields{
		"dir": dir.String(), "name": name, "error": err.Error(),
	})
}
