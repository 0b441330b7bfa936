// Package datastore implements a slotted record store for save data. Records
// live in fixed-size slots behind a single table, each guarded by a CRC-8 and
// named in the launcher's glyph set.
package datastore

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"io/fs"

	"github.com/sigurn/crc8"
)

var (
	ErrInconsistent = errors.New("damaged datastore")
	ErrReadOnly     = errors.New("read-only datastore")
	ErrChecksum     = errors.New("checksum mismatch")
	ErrNoSpace      = errors.New("no free slot")
	ErrNameTooLong  = errors.New("name too long")
	ErrTooLarge     = errors.New("record exceeds slot size")
)

var recordCRC8 = crc8.MakeTable(crc8.Params{Poly: 0x31, Init: 0xFF, RefIn: false, RefOut: false, XorOut: 0x00, Check: 0xF7, Name: "CRC-8/NRSC-5"})

const (
	version   = 1
	headerLen = 16
	slotLen   = 16
	nameLen   = 12
)

var magic = [4]byte{'P', 'D', 'D', 'S'}

type header struct {
	Magic   [4]byte
	Version uint8
	_       uint8
	Slots   uint16
	Size    uint16
	_       [6]byte
}

type slot struct {
	Name [nameLen]byte
	Len  uint16
	Seq  uint8
	Sum  uint8
}

var freeSlot [nameLen]byte

type FS struct {
	dev io.ReaderAt

	hdr   header
	slots []slot
}

// Read mounts the datastore found on dev. Writes require dev to also
// implement io.WriterAt.
func Read(dev io.ReaderAt) (p *FS, err error) {
	p = &FS{dev: dev}

	r := io.NewSectionReader(dev, 0, headerLen)
	err = binary.Read(r, binary.BigEndian, &p.hdr)
	if err != nil {
		return nil, err
	}
	if p.hdr.Magic != magic || p.hdr.Version != version {
		return nil, ErrInconsistent
	}
	if p.hdr.Slots == 0 || p.hdr.Size == 0 {
		return nil, ErrInconsistent
	}

	p.slots = make([]slot, p.hdr.Slots)
	r = io.NewSectionReader(dev, headerLen, int64(p.hdr.Slots)*slotLen)
	err = binary.Read(r, binary.BigEndian, &p.slots)
	if err != nil {
		return nil, err
	}
	for i := range p.slots {
		if p.slots[i].Len > p.hdr.Size {
			return nil, ErrInconsistent
		}
	}

	return p, nil
}

// Format writes an empty datastore with the given geometry to dev.
func Format(dev io.WriterAt, slots, size int) error {
	if slots < 1 || slots > 0xffff || size < 1 || size > 0xffff {
		return fs.ErrInvalid
	}

	ow := io.NewOffsetWriter(dev, 0)
	hdr := header{Magic: magic, Version: version, Slots: uint16(slots), Size: uint16(size)}
	if err := binary.Write(ow, binary.BigEndian, hdr); err != nil {
		return err
	}
	return binary.Write(ow, binary.BigEndian, make([]slot, slots))
}

// ImageSize returns the size in bytes of a datastore with the given geometry.
func ImageSize(slots, size int) int64 {
	return headerLen + int64(slots)*(slotLen+int64(size))
}

func (p *FS) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, fs.ErrInvalid
	}
	if name == "." {
		return p.Root(), nil
	}

	enc, err := encodeName(name)
	if err != nil {
		return nil, err
	}
	i := p.lookup(enc)
	if i < 0 {
		return nil, fs.ErrNotExist
	}
	return newFile(p, i), nil
}

// ReadRecord returns a verified copy of the named record.
func (p *FS) ReadRecord(name string) ([]byte, error) {
	enc, err := encodeName(name)
	if err != nil {
		return nil, err
	}
	i := p.lookup(enc)
	if i < 0 {
		return nil, fs.ErrNotExist
	}

	s := &p.slots[i]
	data := make([]byte, s.Len)
	if _, err := p.dev.ReadAt(data, p.payloadOff(i)); err != nil {
		return nil, err
	}
	csum := crc8.Init(recordCRC8)
	csum = crc8.Update(csum, data, recordCRC8)
	if crc8.Complete(csum, recordCRC8) != s.Sum {
		return nil, ErrChecksum
	}
	return data, nil
}

// WriteRecord stores data under name, reusing the record's slot if it already
// exists.
func (p *FS) WriteRecord(name string, data []byte) error {
	dev, ok := p.dev.(io.WriterAt)
	if !ok {
		return ErrReadOnly
	}
	if len(data) > int(p.hdr.Size) {
		return ErrTooLarge
	}
	if !fs.ValidPath(name) || name == "." {
		return fs.ErrInvalid
	}

	enc, err := encodeName(name)
	if err != nil {
		return err
	}
	i := p.lookup(enc)
	if i < 0 {
		i = p.lookup(freeSlot)
		if i < 0 {
			return ErrNoSpace
		}
	}

	if _, err := dev.WriteAt(data, p.payloadOff(i)); err != nil {
		return err
	}
	csum := crc8.Init(recordCRC8)
	csum = crc8.Update(csum, data, recordCRC8)

	s := &p.slots[i]
	s.Name = enc
	s.Len = uint16(len(data))
	s.Seq += 1
	s.Sum = crc8.Complete(csum, recordCRC8)
	return p.writeSlot(i)
}

// Remove frees the named record's slot.
func (p *FS) Remove(name string) error {
	enc, err := encodeName(name)
	if err != nil {
		return err
	}
	i := p.lookup(enc)
	if i < 0 {
		return fs.ErrNotExist
	}
	p.slots[i] = slot{}
	return p.writeSlot(i)
}

// Names returns the stored record names in slot order.
func (p *FS) Names() []string {
	names := make([]string, 0, len(p.slots))
	for i := range p.slots {
		if p.slots[i].Name == freeSlot {
			continue
		}
		names = append(names, decodeName(p.slots[i].Name))
	}
	return names
}

func (p *FS) Size() int64 {
	return int64(p.hdr.Slots) * int64(p.hdr.Size)
}

func (p *FS) Free() int64 {
	free := int64(0)
	for i := range p.slots {
		if p.slots[i].Name == freeSlot {
			free += 1
		}
	}
	return free * int64(p.hdr.Size)
}

func (p *FS) Root() *rootDir {
	return &rootDir{fs: p}
}

func (p *FS) lookup(enc [nameLen]byte) int {
	for i := range p.slots {
		if p.slots[i].Name == enc {
			return i
		}
	}
	return -1
}

func (p *FS) payloadOff(i int) int64 {
	return headerLen + int64(p.hdr.Slots)*slotLen + int64(i)*int64(p.hdr.Size)
}

// Write a slot's table entry back to disk.
func (p *FS) writeSlot(i int) error {
	dev, ok := p.dev.(io.WriterAt)
	if !ok {
		return ErrReadOnly
	}
	ow := io.NewOffsetWriter(dev, headerLen+int64(i)*slotLen)
	return binary.Write(ow, binary.BigEndian, &p.slots[i])
}

func encodeName(name string) (enc [nameLen]byte, err error) {
	s, err := NameCode.NewEncoder().String(name)
	if err != nil {
		return
	}
	if len(s) > nameLen {
		return enc, ErrNameTooLong
	}
	copy(enc[:], s)
	if enc == freeSlot {
		return enc, fs.ErrInvalid
	}
	return
}

func decodeName(enc [nameLen]byte) string {
	null := bytes.IndexByte(enc[:], 0)
	if null == -1 {
		null = nameLen
	}
	s, _ := NameCode.NewDecoder().String(string(enc[:null]))
	return s
}
