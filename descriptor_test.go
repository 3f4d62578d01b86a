package diskfs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func newTestDescriptorTable(t *testing.T) (*descriptorTable, string) {
	t.Helper()
	dir := t.TempDir()
	return newDescriptorTable(NewLogrusLogger(nil)), dir
}

func TestDescriptorPositionAdvancesOnImplicitOffset(t *testing.T) {
	d, dir := newTestDescriptorTable(t)
	path := filepath.Join(dir, "hello.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	fd, err := d.Open(context.Background(), Path("/hello.txt"), path, OpenOptions{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer d.Close(fd)

	buf := make([]byte, 3)
	n, err := d.Read(fd, 0, buf)
	if err != nil || n != 3 || string(buf[:n]) != "hel" {
		t.Fatalf("first read: n=%d err=%v buf=%q", n, err, buf[:n])
	}
	if got := d.pos[fd]; got != 3 {
		t.Fatalf("pos after first read = %d, want 3", got)
	}

	buf2 := make([]byte, 2)
	n, err = d.Read(fd, 3, buf2)
	if err != nil || n != 2 || string(buf2[:n]) != "lo" {
		t.Fatalf("second read: n=%d err=%v buf=%q", n, err, buf2[:n])
	}
	if got := d.pos[fd]; got != 5 {
		t.Fatalf("pos after second read = %d, want 5", got)
	}
}

func TestDescriptorExplicitSeekLeavesPositionUnchanged(t *testing.T) {
	d, dir := newTestDescriptorTable(t)
	path := filepath.Join(dir, "hello.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	fd, err := d.Open(context.Background(), Path("/hello.txt"), path, OpenOptions{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer d.Close(fd)

	buf := make([]byte, 5)
	if _, err := d.Read(fd, 0, buf[:3]); err != nil {
		t.Fatalf("prime read: %v", err)
	}
	if _, err := d.Read(fd, 3, buf[:2]); err != nil {
		t.Fatalf("advance read: %v", err)
	}
	if got := d.pos[fd]; got != 5 {
		t.Fatalf("pos before explicit seek = %d, want 5", got)
	}

	one := make([]byte, 1)
	n, err := d.Read(fd, 0, one)
	if err != nil || n != 1 {
		t.Fatalf("explicit-seek read: n=%d err=%v", n, err)
	}
	if got := d.pos[fd]; got != 5 {
		t.Fatalf("pos after explicit seek = %d, want unchanged 5", got)
	}
}

func TestDescriptorCloseDropsPositionAndWritable(t *testing.T) {
	d, dir := newTestDescriptorTable(t)
	path := filepath.Join(dir, "w.txt")

	fd, err := d.Open(context.Background(), Path("/w.txt"), path, OpenOptions{Create: true, Write: true})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, ok := d.WritablePath(fd); !ok {
		t.Fatalf("expected fd to be writable before close")
	}
	if err := d.Close(fd); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, has := d.pos[fd]; has {
		t.Fatalf("pos should not contain fd after close")
	}
	if _, ok := d.WritablePath(fd); ok {
		t.Fatalf("writable should not contain fd after close")
	}
}

func TestDescriptorWriteThenReadBackMatches(t *testing.T) {
	d, dir := newTestDescriptorTable(t)
	path := filepath.Join(dir, "rw.txt")

	fd, err := d.Open(context.Background(), Path("/rw.txt"), path, OpenOptions{Create: true, Write: true})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	content := []byte("roundtrip")
	if _, err := d.Write(fd, 0, content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := d.Close(fd); err != nil {
		t.Fatalf("Close: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != string(content) {
		t.Fatalf("got %q, want %q", got, content)
	}
}
