package diskfs

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
	"time"
)

// Mkdir creates a directory: delegates to the OS, errors propagate.
func (p *Provider) Mkdir(resource Path) error {
	resolved, err := p.resolve(resource)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(resolved, os.ModePerm); err != nil {
		return translateError(err, resource)
	}
	return nil
}

// DeleteOptions controls Delete. UseTrash is accepted but
// delegated upstream; this provider always performs a permanent delete.
type DeleteOptions struct {
	Recursive bool
	UseTrash  bool
}

// Delete removes a resource. Recursive deletion uses the
// move-to-temporary-sibling-then-unlink idiom so that a Windows
// file-in-use error on the original path doesn't abort the whole operation.
func (p *Provider) Delete(resource Path, opts DeleteOptions) error {
	resolved, err := p.resolve(resource)
	if err != nil {
		return err
	}
	if !opts.Recursive {
		if err := os.Remove(resolved); err != nil {
			return translateError(err, resource)
		}
		return nil
	}
	if err := moveThenDelete(resolved); err != nil {
		return translateError(err, resource)
	}
	return nil
}

// moveThenDelete renames target into a temporary sibling before recursively
// unlinking it, tolerating transient file-in-use conditions on the original
// path.
func moveThenDelete(resolved string) error {
	parent := filepath.Dir(resolved)
	tmp := filepath.Join(parent, fmt.Sprintf(".diskfs-trash-%d", time.Now().UnixNano()))
	if err := os.Rename(resolved, tmp); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return os.RemoveAll(resolved)
	}
	return os.RemoveAll(tmp)
}

// RenameOptions controls Rename and Copy.
type RenameOptions struct {
	Overwrite bool
}

// Rename moves a resource, sharing moveOrCopy's target validation with
// Copy.
func (p *Provider) Rename(from, to Path, opts RenameOptions) error {
	return p.moveOrCopy(from, to, opts, false)
}

// Copy duplicates a resource, sharing moveOrCopy's target validation with
// Rename. Symlinks are preserved rather than followed (preserveSymlinks:
// true).
func (p *Provider) Copy(from, to Path, opts RenameOptions) error {
	return p.moveOrCopy(from, to, opts, true)
}

func (p *Provider) moveOrCopy(from, to Path, opts RenameOptions, isCopy bool) error {
	if from.String() == to.String() {
		return nil
	}

	caseInsensitive := isCaseInsensitiveFS()
	sameResourceDifferentCase := caseInsensitive && from.EqualFold(to) && from.String() != to.String()

	if isCopy && sameResourceDifferentCase {
		return &ProviderError{Code: FileExists, Path: to, Message: "case-only copy is not supported"}
	}

	fromResolved, err := p.resolve(from)
	if err != nil {
		return err
	}
	toResolved, err := p.resolve(to)
	if err != nil {
		return err
	}

	if !sameResourceDifferentCase {
		if _, statErr := os.Lstat(toResolved); statErr == nil {
			if !opts.Overwrite {
				return &ProviderError{Code: FileExists, Path: to, Message: "target exists and overwrite is false"}
			}
			if err := moveThenDelete(toResolved); err != nil {
				return translateError(err, to)
			}
		}
	}

	var opErr error
	if isCopy {
		opErr = copyRecursive(fromResolved, toResolved)
	} else {
		opErr = os.Rename(fromResolved, toResolved)
	}
	if opErr == nil {
		return nil
	}
	return rewriteMutationError(opErr, from, to)
}

// rewriteMutationError rewrites EINVAL/EBUSY/ENAMETOOLONG, typically a
// symlink cycle or a locking condition that is otherwise opaque, into a
// message naming the source basename and the target's parent basename.
func rewriteMutationError(err error, from, to Path) error {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.EINVAL, syscall.EBUSY, syscall.ENAMETOOLONG:
			return &ProviderError{
				Code: Unknown,
				Path: from,
				Message: fmt.Sprintf(
					"unable to move/copy %q into %q: %s",
					from.Name(), to.Parent().Name(), err.Error(),
				),
				Cause: err,
			}
		}
	}
	return translateError(err, from)
}

// copyRecursive copies src to dst, preserving symlinks rather than following
// them.
func copyRecursive(src, dst string) error {
	return filepath.Walk(src, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		switch {
		case info.Mode()&os.ModeSymlink != 0:
			link, err := os.Readlink(path)
			if err != nil {
				return err
			}
			return os.Symlink(link, target)
		case info.IsDir():
			return os.MkdirAll(target, info.Mode().Perm())
		default:
			return copyFile(path, target, info.Mode().Perm())
		}
	})
}

func copyFile(src, dst string, perm os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
