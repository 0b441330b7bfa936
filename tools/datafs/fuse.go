//go:build linux || darwin

package datafs

import (
	"errors"
	"io/fs"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"rsc.io/rsc/fuse"

	"github.com/clktmr/playdate/drivers/datastore"
)

// Serves the image's records as a flat directory until interrupted.
func mount(image, dir string) error {
	c, err := fuse.Mount(dir)
	if err != nil {
		return err
	}
	r, err := os.OpenFile(image, os.O_RDWR, 0)
	if err != nil {
		return err
	}
	store, err := datastore.Read(r)
	if err != nil {
		return err
	}

	sigintr := make(chan os.Signal, 1)
	signal.Notify(sigintr, os.Interrupt)

	go c.Serve(&fusefs{store})
	<-sigintr

	cmd := exec.Command("/bin/umount", dir)
	_, err = cmd.CombinedOutput()
	return err
}

// fusefs implements the file system and the root dir Node.
type fusefs struct {
	store *datastore.FS
}

func (p *fusefs) Root() (fuse.Node, fuse.Error) {
	return p, nil
}

func (p *fusefs) Attr() fuse.Attr {
	stat, _ := p.store.Root().Stat()
	return fuse.Attr{
		Mode:  stat.Mode(),
		Mtime: stat.ModTime(),
	}
}

func (p *fusefs) Lookup(name string, intr fuse.Intr) (fuse.Node, fuse.Error) {
	f, err := p.store.Open(name)
	if err != nil {
		return nil, errno(err)
	}
	rec, ok := f.(*datastore.File)
	if !ok {
		return p, nil // must be the root dir
	}
	return &fusefile{rec, p.store}, nil
}

func (p *fusefs) ReadDir(intr fuse.Intr) ([]fuse.Dirent, fuse.Error) {
	names := p.store.Names()
	fuseEntries := make([]fuse.Dirent, len(names))
	for i, v := range names {
		fuseEntries[i] = fuse.Dirent{
			Name: v,
		}
	}

	return fuseEntries, nil
}

func (p *fusefs) Create(req *fuse.CreateRequest, res *fuse.CreateResponse, intr fuse.Intr) (fuse.Node, fuse.Handle, fuse.Error) {
	err := p.store.WriteRecord(req.Name, nil)
	if err != nil {
		return nil, nil, errno(err)
	}
	f, err := p.store.Open(req.Name)
	if err != nil {
		return nil, nil, errno(err)
	}

	file := &fusefile{f.(*datastore.File), p.store}
	return file, file, nil
}

func (p *fusefs) Remove(req *fuse.RemoveRequest, intr fuse.Intr) fuse.Error {
	err := p.store.Remove(req.Name)
	if err != nil {
		return errno(err)
	}
	return nil
}

func (p *fusefs) Rename(req *fuse.RenameRequest, newDir fuse.Node, intr fuse.Intr) fuse.Error {
	data, err := p.store.ReadRecord(req.OldName)
	if err != nil {
		return errno(err)
	}
	if err := p.store.WriteRecord(req.NewName, data); err != nil {
		return errno(err)
	}
	if err := p.store.Remove(req.OldName); err != nil {
		return errno(err)
	}
	return nil
}

// fusefile implements both Node and Handle.
type fusefile struct {
	*datastore.File

	store *datastore.FS
}

func (p *fusefile) Attr() fuse.Attr {
	return fuse.Attr{
		Mode:  p.Mode(),
		Mtime: p.ModTime(),
		Size:  uint64(p.Size()),
	}
}

func (p *fusefile) ReadAll(intr fuse.Intr) ([]byte, fuse.Error) {
	b, err := p.store.ReadRecord(p.File.Name())
	if err != nil {
		return nil, errno(err)
	}
	return b, nil
}

// Only WriteAll is supported. Write is not implemented on purpose because a
// partial write would leave the slot's length and checksum stale.
func (p *fusefile) WriteAll(data []byte, intr fuse.Intr) fuse.Error {
	err := p.store.WriteRecord(p.File.Name(), data)
	if err != nil {
		return errno(err)
	}
	return nil
}

func (p *fusefile) Fsync(req *fuse.FsyncRequest, intr fuse.Intr) fuse.Error {
	return nil
}

func errno(err error) fuse.Error {
	if errors.Is(err, datastore.ErrNoSpace) {
		return fuse.Errno(syscall.ENOSPC)
	} else if errors.Is(err, datastore.ErrReadOnly) {
		return fuse.Errno(syscall.EROFS)
	} else if errors.Is(err, datastore.ErrTooLarge) {
		return fuse.Errno(syscall.EFBIG)
	} else if errors.Is(err, datastore.ErrNameTooLong) {
		return fuse.Errno(syscall.ENAMETOOLONG)
	} else if errors.Is(err, datastore.ErrChecksum) {
		return fuse.Errno(syscall.EIO)
	} else if errors.Is(err, fs.ErrInvalid) {
		return fuse.Errno(syscall.EINVAL)
	} else if errors.Is(err, fs.ErrExist) {
		return fuse.Errno(syscall.EEXIST)
	} else if errors.Is(err, fs.ErrNotExist) {
		return fuse.Errno(syscall.ENOENT)
	} else {
		return fuse.EIO
	}
}
