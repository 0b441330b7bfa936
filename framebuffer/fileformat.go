package framebuffer

import (
	"compress/zlib"
	"encoding/binary"
	"errors"
	"image"
	"io"
)

type header struct {
	Width, Height uint16
}

// Load reads a frame stored with Store. The returned frame has its own
// backing and the natural stride for its width.
func Load(r io.Reader) (*Frame, error) {
	zr, err := zlib.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	var hdr header
	err = binary.Read(zr, binary.BigEndian, &hdr)
	if err != nil {
		return nil, err
	}
	fb := New(image.Rect(0, 0, int(hdr.Width), int(hdr.Height)))
	_, err = io.ReadFull(zr, fb.Pix)
	if err != nil && err != io.EOF {
		return nil, err
	}
	return fb, nil
}

// Store writes the frame's packed pixels, zlib compressed. Frames wrapping
// firmware memory with an oversized stride store fine, the padding is
// dropped.
func (p *Frame) Store(w io.Writer) error {
	r := p.Rect
	if r.Dx() > 0xffff || r.Dy() > 0xffff {
		return errors.New("framebuffer: frame too large to store")
	}
	stride := ((r.Dx()+7)/8 + 3) &^ 3
	rowBytes := (r.Dx() + 7) / 8

	zw := zlib.NewWriter(w)
	err := binary.Write(zw, binary.BigEndian, header{uint16(r.Dx()), uint16(r.Dy())})
	if err != nil {
		return err
	}
	var pad [4]byte
	for y := r.Min.Y; y < r.Max.Y; y++ {
		if _, err := zw.Write(p.Row(y)[:rowBytes]); err != nil {
			return err
		}
		if _, err := zw.Write(pad[:stride-rowBytes]); err != nil {
			return err
		}
	}
	return zw.Close()
}
