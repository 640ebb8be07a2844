package blockfs_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/KarpelesLab/blockfs"
)

const testBlocks = 256

var testCtx = blockfs.RequestContext{Uid: 500, Gid: 500}

func mustMount(t *testing.T, dev blockfs.BlockDevice) *blockfs.FileSystem {
	t.Helper()
	fsys, err := blockfs.New(dev)
	if err != nil {
		t.Fatalf("New: %s", err)
	}
	return fsys
}

func errnoOf(t *testing.T, err error) int {
	t.Helper()
	var e *blockfs.Errno
	if !errors.As(err, &e) {
		t.Fatalf("expected *blockfs.Errno, got %T (%v)", err, err)
	}
	return e.Code()
}

// TestMkdirAndReaddir covers scenario 1: a fresh directory has only
// "." and ".." and the mode getattr reports is S_IFDIR|0755.
func TestMkdirAndReaddir(t *testing.T) {
	dev := mustFormat(testBlocks)
	fsys := mustMount(t, dev)

	if err := fsys.Mkdir(testCtx, "/d", 0755); err != nil {
		t.Fatalf("Mkdir: %s", err)
	}

	attr, err := fsys.Getattr("/d")
	if err != nil {
		t.Fatalf("Getattr: %s", err)
	}
	if attr.Mode != blockfs.S_IFDIR|0755 {
		t.Errorf("mode = %#o, want %#o", attr.Mode, blockfs.S_IFDIR|0755)
	}

	var names []string
	err = fsys.Readdir("/d", func(e blockfs.DirEntry) { names = append(names, e.Name) })
	if err != nil {
		t.Fatalf("Readdir: %s", err)
	}
	if len(names) != 2 || names[0] != "." || names[1] != ".." {
		t.Errorf("readdir = %v, want [. ..]", names)
	}
}

// TestCreateWriteRead covers scenario 2.
func TestCreateWriteRead(t *testing.T) {
	dev := mustFormat(testBlocks)
	fsys := mustMount(t, dev)

	if err := fsys.Mkdir(testCtx, "/d", 0755); err != nil {
		t.Fatalf("Mkdir: %s", err)
	}
	if err := fsys.Create(testCtx, "/d/f", 0644); err != nil {
		t.Fatalf("Create: %s", err)
	}

	n, err := fsys.Write("/d/f", []byte("hello"), 0)
	if err != nil || n != 5 {
		t.Fatalf("Write: n=%d err=%s", n, err)
	}

	buf := make([]byte, 5)
	n, err = fsys.Read("/d/f", buf, 0)
	if err != nil || n != 5 {
		t.Fatalf("Read: n=%d err=%s", n, err)
	}
	if string(buf) != "hello" {
		t.Errorf("read %q, want %q", buf, "hello")
	}
}

// TestCreateExisting covers scenario 3.
func TestCreateExisting(t *testing.T) {
	dev := mustFormat(testBlocks)
	fsys := mustMount(t, dev)

	if err := fsys.Create(testCtx, "/a", 0666); err != nil {
		t.Fatalf("Create: %s", err)
	}
	err := fsys.Create(testCtx, "/a", 0666)
	if err == nil {
		t.Fatal("expected error on second create")
	}
	if !errors.Is(err, blockfs.ErrExist) {
		t.Errorf("err = %v, want ErrExist", err)
	}
}

// TestRmdirNotEmpty covers scenario 4.
func TestRmdirNotEmpty(t *testing.T) {
	dev := mustFormat(testBlocks)
	fsys := mustMount(t, dev)

	if err := fsys.Mkdir(testCtx, "/d", 0755); err != nil {
		t.Fatalf("Mkdir: %s", err)
	}
	if err := fsys.Create(testCtx, "/d/x", 0644); err != nil {
		t.Fatalf("Create: %s", err)
	}

	err := fsys.Rmdir("/d")
	if !errors.Is(err, blockfs.ErrNotEmpty) {
		t.Errorf("Rmdir on non-empty dir: err = %v, want ErrNotEmpty", err)
	}

	if err := fsys.Unlink("/d/x"); err != nil {
		t.Fatalf("Unlink: %s", err)
	}
	if err := fsys.Rmdir("/d"); err != nil {
		t.Fatalf("Rmdir after unlink: %s", err)
	}
}

// TestMultiBlockReadWrite covers scenario 5: a write spanning several
// blocks reads back correctly at an interior block boundary.
func TestMultiBlockReadWrite(t *testing.T) {
	dev := mustFormat(testBlocks)
	fsys := mustMount(t, dev)

	if err := fsys.Create(testCtx, "/f", 0644); err != nil {
		t.Fatalf("Create: %s", err)
	}

	size := blockfs.BlockSize*2 + 500
	pattern := make([]byte, size)
	for i := range pattern {
		pattern[i] = byte(i)
	}

	n, err := fsys.Write("/f", pattern, 0)
	if err != nil || n != size {
		t.Fatalf("Write: n=%d err=%s", n, err)
	}

	out := make([]byte, blockfs.BlockSize)
	n, err = fsys.Read("/f", out, blockfs.BlockSize)
	if err != nil || n != blockfs.BlockSize {
		t.Fatalf("Read: n=%d err=%s", n, err)
	}
	if !bytes.Equal(out, pattern[blockfs.BlockSize:2*blockfs.BlockSize]) {
		t.Error("readback at block boundary did not match pattern")
	}
}

// TestRename covers scenario 6.
func TestRename(t *testing.T) {
	dev := mustFormat(testBlocks)
	fsys := mustMount(t, dev)

	if err := fsys.Create(testCtx, "/f", 0644); err != nil {
		t.Fatalf("Create: %s", err)
	}
	if err := fsys.Create(testCtx, "/a", 0644); err != nil {
		t.Fatalf("Create: %s", err)
	}
	if err := fsys.Mkdir(testCtx, "/d", 0755); err != nil {
		t.Fatalf("Mkdir: %s", err)
	}

	if err := fsys.Rename("/f", "/g"); err != nil {
		t.Fatalf("Rename: %s", err)
	}
	if _, err := fsys.Getattr("/f"); !errors.Is(err, blockfs.ErrNoEntry) {
		t.Errorf("Getattr(/f) after rename: err = %v, want ErrNoEntry", err)
	}
	if _, err := fsys.Getattr("/g"); err != nil {
		t.Errorf("Getattr(/g) after rename: %s", err)
	}

	if err := fsys.Rename("/a", "/d/b"); !errors.Is(err, blockfs.ErrInvalidArgument) {
		t.Errorf("cross-directory Rename: err = %v, want ErrInvalidArgument", err)
	}
}

// TestTruncate covers scenario 7.
func TestTruncate(t *testing.T) {
	dev := mustFormat(testBlocks)
	fsys := mustMount(t, dev)

	if err := fsys.Create(testCtx, "/f", 0644); err != nil {
		t.Fatalf("Create: %s", err)
	}

	if err := fsys.Truncate("/f", 10); !errors.Is(err, blockfs.ErrInvalidArgument) {
		t.Errorf("Truncate(10): err = %v, want ErrInvalidArgument", err)
	}

	if _, err := fsys.Write("/f", []byte("hello"), 0); err != nil {
		t.Fatalf("Write: %s", err)
	}
	if err := fsys.Truncate("/f", 0); err != nil {
		t.Fatalf("Truncate(0): %s", err)
	}
	attr, err := fsys.Getattr("/f")
	if err != nil {
		t.Fatalf("Getattr: %s", err)
	}
	if attr.Size != 0 {
		t.Errorf("size after truncate = %d, want 0", attr.Size)
	}
}

// TestWriteReadRoundTrip is the property from spec §8: write(p, buf, n,
// 0); read(p, out, n, 0) round-trips for any n <= K*B.
func TestWriteReadRoundTrip(t *testing.T) {
	dev := mustFormat(testBlocks)
	fsys := mustMount(t, dev)

	if err := fsys.Create(testCtx, "/f", 0644); err != nil {
		t.Fatalf("Create: %s", err)
	}

	n := blockfs.BlockSize*3 + 123
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = byte(i * 7)
	}

	wrote, err := fsys.Write("/f", buf, 0)
	if err != nil || wrote != n {
		t.Fatalf("Write: n=%d err=%s", wrote, err)
	}

	out := make([]byte, n)
	read, err := fsys.Read("/f", out, 0)
	if err != nil || read != n {
		t.Fatalf("Read: n=%d err=%s", read, err)
	}
	if !bytes.Equal(out, buf) {
		t.Error("round-trip mismatch")
	}
}

// TestWritePastEOF covers the write-forbids-holes rule.
func TestWritePastEOF(t *testing.T) {
	dev := mustFormat(testBlocks)
	fsys := mustMount(t, dev)

	if err := fsys.Create(testCtx, "/f", 0644); err != nil {
		t.Fatalf("Create: %s", err)
	}
	_, err := fsys.Write("/f", []byte("x"), 10)
	if !errors.Is(err, blockfs.ErrInvalidArgument) {
		t.Errorf("write past EOF: err = %v, want ErrInvalidArgument", err)
	}

	// appending exactly at EOF is legal
	if _, err := fsys.Write("/f", []byte("abc"), 0); err != nil {
		t.Fatalf("Write: %s", err)
	}
	if _, err := fsys.Write("/f", []byte("def"), 3); err != nil {
		t.Errorf("append at EOF: %s", err)
	}
}

// TestUnlinkFreesBlocks covers the create-then-unlink invariant from
// spec §8: every bitmap bit that was 0 before is 0 after.
func TestUnlinkFreesBlocks(t *testing.T) {
	dev := mustFormat(testBlocks)
	fsys := mustMount(t, dev)

	before := fsys.Statfs().Bfree

	if err := fsys.Create(testCtx, "/f", 0644); err != nil {
		t.Fatalf("Create: %s", err)
	}
	if _, err := fsys.Write("/f", make([]byte, blockfs.BlockSize*3), 0); err != nil {
		t.Fatalf("Write: %s", err)
	}
	if err := fsys.Unlink("/f"); err != nil {
		t.Fatalf("Unlink: %s", err)
	}

	after := fsys.Statfs().Bfree
	if after != before {
		t.Errorf("free blocks after create+unlink = %d, want %d", after, before)
	}
}

// TestStatfsAccounting covers the statfs invariant: f_bfree + used ==
// f_blocks.
func TestStatfsAccounting(t *testing.T) {
	dev := mustFormat(testBlocks)
	fsys := mustMount(t, dev)

	if err := fsys.Create(testCtx, "/f", 0644); err != nil {
		t.Fatalf("Create: %s", err)
	}
	if _, err := fsys.Write("/f", make([]byte, blockfs.BlockSize*2), 0); err != nil {
		t.Fatalf("Write: %s", err)
	}

	st := fsys.Statfs()
	// blocks 2..6 are in use: root inode, root directory block, the
	// inode of /f and its two data blocks.
	used := uint32(5)
	if st.Bfree+used != st.Blocks {
		t.Errorf("Bfree(%d) + used(%d) != Blocks(%d)", st.Bfree, used, st.Blocks)
	}
}

// TestDirectoryFull covers the 128-entry exhaustion path (ErrNoSpace).
func TestDirectoryFull(t *testing.T) {
	dev := mustFormat(testBlocks)
	fsys := mustMount(t, dev)

	if err := fsys.Mkdir(testCtx, "/d", 0755); err != nil {
		t.Fatalf("Mkdir: %s", err)
	}
	for i := 0; i < blockfs.DirEntries; i++ {
		name := "/d/f" + itoa(i)
		if err := fsys.Create(testCtx, name, 0644); err != nil {
			t.Fatalf("Create(%s): %s", name, err)
		}
	}
	err := fsys.Create(testCtx, "/d/overflow", 0644)
	if !errors.Is(err, blockfs.ErrNoSpace) {
		t.Errorf("129th create: err = %v, want ErrNoSpace", err)
	}
}

// TestNameTruncation covers the 27-byte name truncation rule.
func TestNameTruncation(t *testing.T) {
	dev := mustFormat(testBlocks)
	fsys := mustMount(t, dev)

	long := "123456789012345678901234567890" // 30 chars, > MaxNameLen
	if err := fsys.Create(testCtx, "/"+long, 0644); err != nil {
		t.Fatalf("Create: %s", err)
	}

	var names []string
	err := fsys.Readdir("/", func(e blockfs.DirEntry) {
		if e.Name != "." && e.Name != ".." {
			names = append(names, e.Name)
		}
	})
	if err != nil {
		t.Fatalf("Readdir: %s", err)
	}
	if len(names) != 1 || len(names[0]) != blockfs.MaxNameLen {
		t.Errorf("names = %v, want one %d-byte name", names, blockfs.MaxNameLen)
	}
}

// TestNotADirectory covers intermediate-component and target-type
// errors.
func TestNotADirectory(t *testing.T) {
	dev := mustFormat(testBlocks)
	fsys := mustMount(t, dev)

	if err := fsys.Create(testCtx, "/f", 0644); err != nil {
		t.Fatalf("Create: %s", err)
	}
	_, err := fsys.Getattr("/f/x")
	if !errors.Is(err, blockfs.ErrNotADirectory) {
		t.Errorf("Getattr through a file: err = %v, want ErrNotADirectory", err)
	}

	if err := fsys.Rmdir("/f"); !errors.Is(err, blockfs.ErrNotADirectory) {
		t.Errorf("Rmdir on a file: err = %v, want ErrNotADirectory", err)
	}
}

// TestUnlinkDirectory covers the unlink-on-directory error.
func TestUnlinkDirectory(t *testing.T) {
	dev := mustFormat(testBlocks)
	fsys := mustMount(t, dev)

	if err := fsys.Mkdir(testCtx, "/d", 0755); err != nil {
		t.Fatalf("Mkdir: %s", err)
	}
	if err := fsys.Unlink("/d"); !errors.Is(err, blockfs.ErrIsADirectory) {
		t.Errorf("Unlink on a directory: err = %v, want ErrIsADirectory", err)
	}
}

// TestIOError covers block-device failures surfacing unchanged.
func TestIOError(t *testing.T) {
	dev := mustFormat(testBlocks)
	fsys := mustMount(t, dev)
	dev.failAt = 0

	_, err := fsys.Getattr("/")
	if !errors.Is(err, blockfs.ErrIO) {
		t.Errorf("Getattr with failing device: err = %v, want ErrIO", err)
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
