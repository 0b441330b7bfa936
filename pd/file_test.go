package pd

import (
	"errors"
	"io"
	"io/fs"
	"testing"

	pdtesting "github.com/clktmr/playdate/testing"
)

func TestFileErrors(t *testing.T) {
	tests := map[string]struct {
		setup    func(h *pdtesting.Host)
		op       func(p FS) error
		expected error
		pathOp   string
	}{
		"openMissing": {
			op:       func(p FS) error { _, err := p.Open("nope.txt"); return err },
			expected: fs.ErrNotExist,
			pathOp:   "open",
		},
		"statMissing": {
			op:       func(p FS) error { _, err := p.Stat("nope.txt"); return err },
			expected: fs.ErrNotExist,
			pathOp:   "stat",
		},
		"mkdirExists": {
			setup:    func(h *pdtesting.Host) { h.AddDir("saves") },
			op:       func(p FS) error { return p.Mkdir("saves") },
			expected: fs.ErrExist,
			pathOp:   "mkdir",
		},
		"mkdirNoParent": {
			op:       func(p FS) error { return p.Mkdir("a/b/c") },
			expected: fs.ErrNotExist,
			pathOp:   "mkdir",
		},
		"removeMissing": {
			op:       func(p FS) error { return p.Remove("nope.txt") },
			expected: fs.ErrNotExist,
			pathOp:   "remove",
		},
		"renameMissing": {
			op:       func(p FS) error { return p.Rename("nope.txt", "other.txt") },
			expected: fs.ErrNotExist,
			pathOp:   "rename",
		},
		"readdirOnFile": {
			setup:    func(h *pdtesting.Host) { h.AddFile("f.txt", nil) },
			op:       func(p FS) error { _, err := p.ReadDir("f.txt"); return err },
			expected: ErrNotDir,
			pathOp:   "readdir",
		},
		"noSpace": {
			setup: func(h *pdtesting.Host) { h.SpaceLeft = 4 },
			op: func(p FS) error {
				return p.WriteFile("big.bin", make([]byte, 64))
			},
			expected: ErrNoSpace,
			pathOp:   "write",
		},
		"readClosed": {
			setup: func(h *pdtesting.Host) { h.AddFile("f.txt", []byte("x")) },
			op: func(p FS) error {
				f, err := p.Open("f.txt")
				if err != nil {
					return err
				}
				f.Close()
				_, err = f.Read(make([]byte, 1))
				return err
			},
			expected: fs.ErrClosed,
			pathOp:   "read",
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			h := newHost(t)
			p, err := Init(h.API)
			if err != nil {
				t.Fatal(err)
			}
			if tc.setup != nil {
				tc.setup(h)
			}

			err = tc.op(p.FS())
			if !errors.Is(err, tc.expected) {
				t.Fatalf("expected %v, got %v", tc.expected, err)
			}
			var perr *fs.PathError
			if !errors.As(err, &perr) {
				t.Fatalf("expected a path error, got %T", err)
			}
			if perr.Op != tc.pathOp {
				t.Fatalf("expected op %q, got %q", tc.pathOp, perr.Op)
			}
		})
	}
}

func TestFileRoundTrip(t *testing.T) {
	h := newHost(t)
	p, err := Init(h.API)
	if err != nil {
		t.Fatal(err)
	}
	fsys := p.FS()

	data := []byte("score=9000\n")
	if err := fsys.WriteFile("save.txt", data); err != nil {
		t.Fatal(err)
	}
	got, err := fsys.ReadFile("save.txt")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(data) {
		t.Fatalf("expected %q, got %q", data, got)
	}

	info, err := fsys.Stat("save.txt")
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() != int64(len(data)) || info.IsDir() {
		t.Fatalf("unexpected stat %v %v", info.Size(), info.IsDir())
	}
	if info.ModTime().IsZero() {
		t.Fatal("no modification time")
	}

	// Appending keeps the old contents.
	f, err := fsys.Append("save.txt")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.Write([]byte("lives=3\n")); err != nil {
		t.Fatal(err)
	}
	if err := f.Sync(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	got, _ = fsys.ReadFile("save.txt")
	if string(got) != "score=9000\nlives=3\n" {
		t.Fatalf("unexpected contents %q", got)
	}

	// Creating truncates.
	if err := fsys.WriteFile("save.txt", []byte("fresh")); err != nil {
		t.Fatal(err)
	}
	got, _ = fsys.ReadFile("save.txt")
	if string(got) != "fresh" {
		t.Fatalf("unexpected contents %q", got)
	}
}

func TestFileSeek(t *testing.T) {
	h := newHost(t)
	p, err := Init(h.API)
	if err != nil {
		t.Fatal(err)
	}
	h.AddFile("data.bin", []byte("0123456789"))

	f, err := p.FS().Open("data.bin")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	pos, err := f.Seek(-2, io.SeekEnd)
	if err != nil || pos != 8 {
		t.Fatalf("expected position 8, got %v, %v", pos, err)
	}
	tail, err := io.ReadAll(f)
	if err != nil || string(tail) != "89" {
		t.Fatalf("expected %q, got %q, %v", "89", tail, err)
	}

	if pos, err = f.Seek(2, io.SeekStart); err != nil || pos != 2 {
		t.Fatalf("expected position 2, got %v, %v", pos, err)
	}
	if pos, err = f.Seek(3, io.SeekCurrent); err != nil || pos != 5 {
		t.Fatalf("expected position 5, got %v, %v", pos, err)
	}

	if _, err := f.Seek(-1, io.SeekStart); !errors.Is(err, fs.ErrInvalid) {
		t.Fatalf("expected %v, got %v", fs.ErrInvalid, err)
	}

	// Reading past the end reports a clean end of file.
	if _, err := f.Seek(0, io.SeekEnd); err != nil {
		t.Fatal(err)
	}
	if n, err := f.Read(make([]byte, 4)); n != 0 || err != io.EOF {
		t.Fatalf("expected EOF, got %v, %v", n, err)
	}
}

func TestReadDir(t *testing.T) {
	h := newHost(t)
	p, err := Init(h.API)
	if err != nil {
		t.Fatal(err)
	}
	h.AddFile("saves/slot0.bin", []byte("a"))
	h.AddFile("saves/slot1.bin", []byte("bb"))
	h.AddFile("saves/.backup", nil)
	h.AddDir("saves/old")

	entries, err := p.FS().ReadDir("saves")
	if err != nil {
		t.Fatal(err)
	}

	expected := []struct {
		name string
		dir  bool
	}{
		{"old", true},
		{"slot0.bin", false},
		{"slot1.bin", false},
	}
	if len(entries) != len(expected) {
		t.Fatalf("expected %v entries, got %v", len(expected), len(entries))
	}
	for i, want := range expected {
		if entries[i].Name() != want.name || entries[i].IsDir() != want.dir {
			t.Fatalf("entry %v: expected %v, got %v %v",
				i, want, entries[i].Name(), entries[i].IsDir())
		}
	}

	info, err := entries[2].Info()
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() != 2 {
		t.Fatalf("expected size 2, got %v", info.Size())
	}
}

func TestRemoveAll(t *testing.T) {
	h := newHost(t)
	p, err := Init(h.API)
	if err != nil {
		t.Fatal(err)
	}
	h.AddFile("tmp/a/b.txt", []byte("x"))
	h.AddFile("tmp/c.txt", []byte("y"))

	if err := p.FS().Remove("tmp"); err == nil {
		t.Fatal("expected error removing a populated directory")
	}
	if err := p.FS().RemoveAll("tmp"); err != nil {
		t.Fatal(err)
	}
	if _, err := p.FS().Stat("tmp"); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected %v, got %v", fs.ErrNotExist, err)
	}
}
