package diskfs

import (
	"testing"
)

func TestRenameMovesFile(t *testing.T) {
	p := NewProvider(t.TempDir(), DefaultConfig(), nil)
	defer p.Dispose()

	if err := p.WriteFile("/a", []byte("content"), WriteFileOptions{Create: true, Overwrite: true}); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := p.Rename("/a", "/b", RenameOptions{}); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if _, err := p.Stat("/a"); err == nil {
		t.Fatalf("expected /a to be gone after rename")
	}
	got, err := p.ReadFile("/b")
	if err != nil {
		t.Fatalf("ReadFile(/b): %v", err)
	}
	if string(got) != "content" {
		t.Fatalf("got %q, want %q", got, "content")
	}
}

func TestRenameWithoutOverwriteFailsOnExistingTarget(t *testing.T) {
	p := NewProvider(t.TempDir(), DefaultConfig(), nil)
	defer p.Dispose()

	if err := p.WriteFile("/a", []byte("1"), WriteFileOptions{Create: true, Overwrite: true}); err != nil {
		t.Fatalf("WriteFile a: %v", err)
	}
	if err := p.WriteFile("/b", []byte("2"), WriteFileOptions{Create: true, Overwrite: true}); err != nil {
		t.Fatalf("WriteFile b: %v", err)
	}
	err := p.Rename("/a", "/b", RenameOptions{Overwrite: false})
	assertProviderErrorCode(t, err, FileExists)
}

func TestCopyPreservesSourceAndDuplicatesContent(t *testing.T) {
	p := NewProvider(t.TempDir(), DefaultConfig(), nil)
	defer p.Dispose()

	if err := p.WriteFile("/a", []byte("dup-me"), WriteFileOptions{Create: true, Overwrite: true}); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := p.Copy("/a", "/b", RenameOptions{}); err != nil {
		t.Fatalf("Copy: %v", err)
	}

	srcGot, err := p.ReadFile("/a")
	if err != nil || string(srcGot) != "dup-me" {
		t.Fatalf("source changed: got %q err %v", srcGot, err)
	}
	dstGot, err := p.ReadFile("/b")
	if err != nil || string(dstGot) != "dup-me" {
		t.Fatalf("destination mismatch: got %q err %v", dstGot, err)
	}
}

func TestCopyRecursesIntoDirectories(t *testing.T) {
	p := NewProvider(t.TempDir(), DefaultConfig(), nil)
	defer p.Dispose()

	if err := p.Mkdir("/dir/nested"); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	if err := p.WriteFile("/dir/nested/file.txt", []byte("nested"), WriteFileOptions{Create: true, Overwrite: true}); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := p.Copy("/dir", "/dir2", RenameOptions{}); err != nil {
		t.Fatalf("Copy: %v", err)
	}
	got, err := p.ReadFile("/dir2/nested/file.txt")
	if err != nil {
		t.Fatalf("ReadFile after recursive copy: %v", err)
	}
	if string(got) != "nested" {
		t.Fatalf("got %q, want %q", got, "nested")
	}
}

func TestDeleteRecursiveRemovesTree(t *testing.T) {
	p := NewProvider(t.TempDir(), DefaultConfig(), nil)
	defer p.Dispose()

	if err := p.Mkdir("/dir"); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	if err := p.WriteFile("/dir/file.txt", []byte("x"), WriteFileOptions{Create: true, Overwrite: true}); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := p.Delete("/dir", DeleteOptions{Recursive: true}); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := p.Stat("/dir"); err == nil {
		t.Fatalf("expected /dir to be gone")
	}
}
