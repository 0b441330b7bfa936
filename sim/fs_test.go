package sim

import (
	"io"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/clktmr/playdate/firmware"
)

func newTestFS(t *testing.T) (*fileHost, string, string) {
	t.Helper()
	bundle, data := t.TempDir(), t.TempDir()
	fh := newFileHost(bundle, data)
	t.Cleanup(fh.close)
	return fh, bundle, data
}

func TestFileRoundTrip(t *testing.T) {
	fh, _, _ := newTestFS(t)
	api := fh.api()

	fd, code := api.Open("save.dat", firmware.FileWrite)
	if code != firmware.FSOK {
		t.Fatalf("open failed with %v", code)
	}
	if n := api.Write(fd, []byte("best=9000")); n != 9 {
		t.Fatalf("expected 9 bytes written, got %v", n)
	}
	if n := api.Flush(fd); n != 0 {
		t.Fatalf("flush failed with %v", n)
	}
	// A write handle doesn't read.
	if n := api.Read(fd, make([]byte, 4)); n != int32(firmware.FSInvalid) {
		t.Fatalf("expected %v, got %v", firmware.FSInvalid, n)
	}
	if code := api.Close(fd); code != firmware.FSOK {
		t.Fatalf("close failed with %v", code)
	}

	fd, code = api.Open("save.dat", firmware.FileReadData)
	if code != firmware.FSOK {
		t.Fatalf("open failed with %v", code)
	}
	buf := make([]byte, 16)
	if n := api.Read(fd, buf); n != 9 || string(buf[:n]) != "best=9000" {
		t.Fatalf("unexpected read %v, %q", n, buf)
	}
	// Reads at the end return zero, not an error.
	if n := api.Read(fd, buf); n != 0 {
		t.Fatalf("expected 0 at end of file, got %v", n)
	}
	if code := api.Seek(fd, 5, io.SeekStart); code != firmware.FSOK {
		t.Fatalf("seek failed with %v", code)
	}
	if n := api.Tell(fd); n != 5 {
		t.Fatalf("expected position 5, got %v", n)
	}
	if n := api.Read(fd, buf); n != 4 || string(buf[:n]) != "9000" {
		t.Fatalf("unexpected read %v, %q", n, buf)
	}
	if code := api.Close(fd); code != firmware.FSOK {
		t.Fatalf("close failed with %v", code)
	}

	if code := api.Close(fd); code != firmware.FSBadHandle {
		t.Fatalf("expected %v, got %v", firmware.FSBadHandle, code)
	}
}

func TestBundleShadowing(t *testing.T) {
	fh, bundle, data := newTestFS(t)
	api := fh.api()

	os.MkdirAll(filepath.Join(bundle, "assets"), 0o777)
	os.WriteFile(filepath.Join(bundle, "assets", "map.txt"), []byte("shipped"), 0o666)

	read := func(mode firmware.FileOptions) string {
		t.Helper()
		fd, code := api.Open("assets/map.txt", mode)
		if code != firmware.FSOK {
			t.Fatalf("open failed with %v", code)
		}
		defer api.Close(fd)
		buf := make([]byte, 16)
		n := api.Read(fd, buf)
		if n < 0 {
			t.Fatalf("read failed with %v", n)
		}
		return string(buf[:n])
	}

	if got := read(firmware.FileRead | firmware.FileReadData); got != "shipped" {
		t.Fatalf("expected the bundle copy, got %q", got)
	}

	os.MkdirAll(filepath.Join(data, "assets"), 0o777)
	os.WriteFile(filepath.Join(data, "assets", "map.txt"), []byte("patched"), 0o666)

	// The data directory shadows the bundle.
	if got := read(firmware.FileRead | firmware.FileReadData); got != "patched" {
		t.Fatalf("expected the data copy, got %q", got)
	}
	if got := read(firmware.FileRead); got != "shipped" {
		t.Fatalf("expected the bundle copy, got %q", got)
	}

	// Writes land in the data directory, never the bundle.
	fd, code := api.Open("assets/map.txt", firmware.FileWrite)
	if code != firmware.FSOK {
		t.Fatalf("open failed with %v", code)
	}
	api.Write(fd, []byte("overwritten"))
	api.Close(fd)
	if got := read(firmware.FileRead); got != "shipped" {
		t.Fatalf("bundle modified, got %q", got)
	}
}

func TestWriteNeedsParent(t *testing.T) {
	fh, _, _ := newTestFS(t)
	api := fh.api()

	if _, code := api.Open("nested/log.txt", firmware.FileWrite); code != firmware.FSNoEntry {
		t.Fatalf("expected %v, got %v", firmware.FSNoEntry, code)
	}
	if code := api.Mkdir("nested"); code != firmware.FSOK {
		t.Fatalf("mkdir failed with %v", code)
	}
	fd, code := api.Open("nested/log.txt", firmware.FileWrite)
	if code != firmware.FSOK {
		t.Fatalf("open failed with %v", code)
	}
	api.Write(fd, []byte("one"))
	api.Close(fd)

	// Append picks up where the last write ended.
	fd, code = api.Open("nested/log.txt", firmware.FileAppend)
	if code != firmware.FSOK {
		t.Fatalf("open failed with %v", code)
	}
	api.Write(fd, []byte("two"))
	api.Close(fd)

	st, code := api.Stat("nested/log.txt")
	if code != firmware.FSOK || st.Size != 6 {
		t.Fatalf("expected 6 bytes, got %+v, %v", st, code)
	}
}

func TestPathEscape(t *testing.T) {
	fh, _, _ := newTestFS(t)
	api := fh.api()

	if _, code := api.Open("../outside", firmware.FileWrite); code != firmware.FSInvalid {
		t.Fatalf("expected %v, got %v", firmware.FSInvalid, code)
	}
	if code := api.Mkdir("a/../../b"); code != firmware.FSInvalid {
		t.Fatalf("expected %v, got %v", firmware.FSInvalid, code)
	}

	// A leading slash roots at the game's directory, not the host's.
	fd, code := api.Open("/rooted.txt", firmware.FileWrite)
	if code != firmware.FSOK {
		t.Fatalf("open failed with %v", code)
	}
	api.Close(fd)
	if _, code := api.Stat("rooted.txt"); code != firmware.FSOK {
		t.Fatalf("stat failed with %v", code)
	}
}

func TestListFiles(t *testing.T) {
	fh, bundle, data := newTestFS(t)
	api := fh.api()

	os.WriteFile(filepath.Join(bundle, "b.txt"), nil, 0o666)
	os.WriteFile(filepath.Join(bundle, "shared.txt"), nil, 0o666)
	os.Mkdir(filepath.Join(bundle, "lvl"), 0o777)
	os.WriteFile(filepath.Join(data, "a.txt"), nil, 0o666)
	os.WriteFile(filepath.Join(data, "shared.txt"), nil, 0o666)
	os.WriteFile(filepath.Join(data, ".hidden"), nil, 0o666)

	var names []string
	dirs := make(map[string]bool)
	collect := func(name string, isDir bool) {
		names = append(names, name)
		dirs[name] = isDir
	}

	if code := api.ListFiles(".", collect, false); code != firmware.FSOK {
		t.Fatalf("list failed with %v", code)
	}
	want := []string{"a.txt", "b.txt", "lvl", "shared.txt"}
	if !slices.Equal(names, want) {
		t.Fatalf("expected %v, got %v", want, names)
	}
	if !dirs["lvl"] || dirs["a.txt"] {
		t.Fatalf("unexpected directory flags %v", dirs)
	}

	names = names[:0]
	if code := api.ListFiles(".", collect, true); code != firmware.FSOK {
		t.Fatalf("list failed with %v", code)
	}
	if !slices.Contains(names, ".hidden") {
		t.Fatalf("expected hidden entries, got %v", names)
	}

	if code := api.ListFiles("missing", collect, false); code != firmware.FSNoEntry {
		t.Fatalf("expected %v, got %v", firmware.FSNoEntry, code)
	}
	if code := api.ListFiles("a.txt", collect, false); code != firmware.FSNotDir {
		t.Fatalf("expected %v, got %v", firmware.FSNotDir, code)
	}
}

func TestUnlink(t *testing.T) {
	fh, _, _ := newTestFS(t)
	api := fh.api()

	api.Mkdir("dir")
	fd, _ := api.Open("dir/f.txt", firmware.FileWrite)
	api.Close(fd)

	if code := api.Unlink("dir", false); code != firmware.FSInvalid {
		t.Fatalf("expected %v for a filled directory, got %v", firmware.FSInvalid, code)
	}
	if code := api.Unlink("dir", true); code != firmware.FSOK {
		t.Fatalf("unlink failed with %v", code)
	}
	if _, code := api.Stat("dir"); code != firmware.FSNoEntry {
		t.Fatalf("expected %v, got %v", firmware.FSNoEntry, code)
	}
	if code := api.Unlink("dir", false); code != firmware.FSNoEntry {
		t.Fatalf("expected %v, got %v", firmware.FSNoEntry, code)
	}
}

func TestRename(t *testing.T) {
	fh, _, _ := newTestFS(t)
	api := fh.api()

	fd, _ := api.Open("tmp.txt", firmware.FileWrite)
	api.Write(fd, []byte("x"))
	api.Close(fd)

	if code := api.Rename("tmp.txt", "kept.txt"); code != firmware.FSOK {
		t.Fatalf("rename failed with %v", code)
	}
	if _, code := api.Stat("tmp.txt"); code != firmware.FSNoEntry {
		t.Fatalf("expected %v, got %v", firmware.FSNoEntry, code)
	}
	if st, code := api.Stat("kept.txt"); code != firmware.FSOK || st.Size != 1 {
		t.Fatalf("unexpected stat %+v, %v", st, code)
	}
	if code := api.Rename("missing", "x"); code != firmware.FSNoEntry {
		t.Fatalf("expected %v, got %v", firmware.FSNoEntry, code)
	}
}
