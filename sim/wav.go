package sim

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// clip is a decoded sound file, interleaved PCM frames at the file's own
// sample rate.
type clip struct {
	rate     int
	channels int
	data     []int16
}

// decodeWAV parses a RIFF WAVE file holding integer PCM, the format the
// firmware's sample loaders accept. 8 bit samples are widened to 16 bit.
func decodeWAV(raw []byte) (*clip, error) {
	if len(raw) < 12 || string(raw[0:4]) != "RIFF" || string(raw[8:12]) != "WAVE" {
		return nil, errors.New("not a wave file")
	}
	var (
		c    clip
		bits int
	)
	for off := 12; off+8 <= len(raw); {
		id := string(raw[off : off+4])
		size := int(binary.LittleEndian.Uint32(raw[off+4 : off+8]))
		off += 8
		if size < 0 || off+size > len(raw) {
			return nil, errors.New("truncated chunk")
		}
		body := raw[off : off+size]
		off += size + size&1 // chunks are word aligned

		switch id {
		case "fmt ":
			if len(body) < 16 {
				return nil, errors.New("short fmt chunk")
			}
			if format := binary.LittleEndian.Uint16(body[0:2]); format != 1 {
				return nil, fmt.Errorf("unsupported wave format %#x", format)
			}
			c.channels = int(binary.LittleEndian.Uint16(body[2:4]))
			c.rate = int(binary.LittleEndian.Uint32(body[4:8]))
			bits = int(binary.LittleEndian.Uint16(body[14:16]))
			if c.channels < 1 || c.channels > 2 || c.rate <= 0 {
				return nil, fmt.Errorf("unsupported layout, %d channels at %d Hz",
					c.channels, c.rate)
			}
			if bits != 8 && bits != 16 {
				return nil, fmt.Errorf("unsupported sample size %d", bits)
			}
		case "data":
			if bits == 0 {
				return nil, errors.New("data chunk before fmt")
			}
			switch bits {
			case 8:
				c.data = make([]int16, len(body))
				for i, b := range body {
					c.data[i] = (int16(b) - 0x80) << 8
				}
			case 16:
				c.data = make([]int16, len(body)/2)
				for i := range c.data {
					c.data[i] = int16(binary.LittleEndian.Uint16(body[2*i:]))
				}
			}
			frames := len(c.data) / c.channels
			c.data = c.data[:frames*c.channels]
			return &c, nil
		}
	}
	return nil, errors.New("no data chunk")
}
