package diskfs

import (
	"strconv"
	"testing"
)

// conformanceCheck is one property the provider must hold, adapted from the
// teacher's CTS Check/Run harness: a name plus a function that exercises a
// fresh Provider and reports the first violation it finds.
type conformanceCheck struct {
	name string
	test func(t *testing.T, p *Provider)
}

var conformanceChecks = []conformanceCheck{
	{"empty root lists nothing", checkEmptyRoot},
	{"write then read round-trips at various lengths", checkWriteReadRoundTrip},
	{"create-false on a missing file fails FileNotFound", checkCreateFalseMissing},
	{"overwrite-false on an existing file fails FileExists", checkOverwriteFalseExisting},
	{"rename/copy of a path to itself is a no-op", checkSelfRenameCopy},
}

func TestConformance(t *testing.T) {
	for _, check := range conformanceChecks {
		check := check
		t.Run(check.name, func(t *testing.T) {
			p := NewProvider(t.TempDir(), DefaultConfig(), nil)
			defer p.Dispose()
			check.test(t, p)
		})
	}
}

func checkEmptyRoot(t *testing.T, p *Provider) {
	list, err := p.ReadDir("/")
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected an empty root, got %d entries", len(list))
	}
}

func checkWriteReadRoundTrip(t *testing.T, p *Provider) {
	lengths := []int{0, 1, 2, 3, 512, 4096, 4097, 8193}
	for _, n := range lengths {
		content := generateTestBytes(n)
		name := Path("/round_" + strconv.Itoa(n) + ".bin")
		if err := p.WriteFile(name, content, WriteFileOptions{Create: true, Overwrite: true}); err != nil {
			t.Fatalf("WriteFile(%d bytes): %v", n, err)
		}
		got, err := p.ReadFile(name)
		if err != nil {
			t.Fatalf("ReadFile(%d bytes): %v", n, err)
		}
		if len(got) != len(content) {
			t.Fatalf("length mismatch for %d bytes: got %d", n, len(got))
		}
		for i := range got {
			if got[i] != content[i] {
				t.Fatalf("content mismatch for %d bytes at offset %d", n, i)
			}
		}
	}
}

func checkCreateFalseMissing(t *testing.T, p *Provider) {
	err := p.WriteFile("/nonexistent/b", []byte{0x00}, WriteFileOptions{Create: false, Overwrite: true})
	assertProviderErrorCode(t, err, FileNotFound)
}

func checkOverwriteFalseExisting(t *testing.T, p *Provider) {
	if err := p.WriteFile("/a", []byte{0x41}, WriteFileOptions{Create: true, Overwrite: true}); err != nil {
		t.Fatalf("seed WriteFile: %v", err)
	}
	err := p.WriteFile("/a", []byte{0x42}, WriteFileOptions{Create: false, Overwrite: false})
	assertProviderErrorCode(t, err, FileExists)
}

func checkSelfRenameCopy(t *testing.T, p *Provider) {
	if err := p.WriteFile("/self", []byte{0x01}, WriteFileOptions{Create: true, Overwrite: true}); err != nil {
		t.Fatalf("seed WriteFile: %v", err)
	}
	if err := p.Rename("/self", "/self", RenameOptions{}); err != nil {
		t.Fatalf("self-rename should be a no-op, got %v", err)
	}
	if err := p.Copy("/self", "/self", RenameOptions{}); err != nil {
		t.Fatalf("self-copy should be a no-op, got %v", err)
	}
}

func generateTestBytes(n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = byte(i)
	}
	return out
}

func assertProviderErrorCode(t *testing.T, err error, want ErrorCode) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected an error with code %s, got nil", want)
	}
	perr, ok := err.(*ProviderError)
	if !ok {
		t.Fatalf("expected *ProviderError, got %T (%v)", err, err)
	}
	if perr.Code != want {
		t.Fatalf("expected code %s, got %s", want, perr.Code)
	}
}
