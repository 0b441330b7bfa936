package sim

import (
	"encoding/binary"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/clktmr/playdate/firmware"
)

// Sample frames per second on the output, the rate the firmware's sound
// clock counts in.
const outputRate = 44100

// soundHost serves the Sound group. It doubles as the io.Reader handed to
// oto, which pulls mixed frames from the audio goroutine while the game loop
// mutates the voices. Without an output device it stays silent and reports
// time from the wall clock instead.
type soundHost struct {
	files *fileHost
	logw  io.Writer

	mu      sync.Mutex
	samples map[uintptr]*clip
	players map[uintptr]*voice
	next    uintptr
	active  bool

	clock atomic.Int64 // frames rendered
	start time.Time

	out *oto.Player
}

// voice is one sample or file player. pos is the playback position in clip
// frames, advanced by the mixer.
type voice struct {
	sample  uintptr
	clip    *clip
	stream  bool
	playing bool
	paused  bool
	repeat  int32
	rate    float32
	vol     [2]float32
	pos     float64
}

func newSoundHost(files *fileHost, mute bool, logw io.Writer) *soundHost {
	s := &soundHost{
		files:   files,
		logw:    logw,
		samples: make(map[uintptr]*clip),
		players: make(map[uintptr]*voice),
		active:  true,
		start:   time.Now(),
	}
	if mute {
		return s
	}
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   outputRate,
		ChannelCount: 2,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		fmt.Fprintln(logw, "sim: audio unavailable:", err)
		return s
	}
	<-ready
	s.out = ctx.NewPlayer(s)
	s.out.Play()
	return s
}

func (s *soundHost) close() {
	if s.out != nil {
		s.out.Close()
	}
}

// Read renders the next chunk of interleaved 16 bit stereo frames. Voices
// advance even while the outputs are switched off, only the result is
// silenced then.
func (s *soundHost) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	frames := len(p) / 4

	s.mu.Lock()
	for _, v := range s.players {
		v.mix(p, frames)
	}
	if !s.active {
		for i := range p {
			p[i] = 0
		}
	}
	s.mu.Unlock()

	s.clock.Add(int64(frames))
	return len(p), nil
}

func (v *voice) mix(p []byte, frames int) {
	c := v.clip
	if c == nil || !v.playing || v.paused || len(c.data) == 0 {
		return
	}
	clipFrames := len(c.data) / c.channels
	step := float64(v.rate) * float64(c.rate) / outputRate
	for i := 0; i < frames; i++ {
		n := int(v.pos)
		if n < 0 || n >= clipFrames {
			if !v.wrap(clipFrames) {
				return
			}
			n = int(v.pos)
		}
		var l, r int32
		if c.channels == 2 {
			l, r = int32(c.data[2*n]), int32(c.data[2*n+1])
		} else {
			l = int32(c.data[n])
			r = l
		}
		mixInto(p, 4*i, int32(float32(l)*v.vol[0]))
		mixInto(p, 4*i+2, int32(float32(r)*v.vol[1]))
		v.pos += step
	}
}

// wrap moves the position into the next repetition once it leaves the clip,
// in either direction. It reports whether the voice keeps playing.
func (v *voice) wrap(clipFrames int) bool {
	if v.repeat != 0 {
		v.repeat--
		if v.repeat == 0 {
			v.playing = false
			v.pos = 0
			return false
		}
	}
	if v.pos < 0 {
		v.pos += float64(clipFrames)
	} else {
		v.pos -= float64(clipFrames)
	}
	if v.pos < 0 || v.pos >= float64(clipFrames) {
		v.playing = false
		v.pos = 0
		return false
	}
	return true
}

func mixInto(p []byte, i int, s int32) {
	s += int32(int16(binary.LittleEndian.Uint16(p[i:])))
	if s > 32767 {
		s = 32767
	} else if s < -32768 {
		s = -32768
	}
	binary.LittleEndian.PutUint16(p[i:], uint16(s))
}

func (s *soundHost) load(path string) *clip {
	data, code := s.files.readAll(path)
	if code != firmware.FSOK {
		return nil
	}
	c, err := decodeWAV(data)
	if err != nil {
		fmt.Fprintf(s.logw, "sim: %s: %v\n", path, err)
		return nil
	}
	return c
}

func (s *soundHost) api() *firmware.Sound {
	return &firmware.Sound{
		GetCurrentTime: func() uint32 {
			if s.out == nil {
				ms := uint64(time.Since(s.start).Milliseconds())
				return uint32(ms * outputRate / 1000)
			}
			return uint32(s.clock.Load())
		},
		SetOutputsActive: func(headphone, speaker bool) {
			s.mu.Lock()
			s.active = headphone || speaker
			s.mu.Unlock()
		},

		LoadSample: func(path string) uintptr {
			c := s.load(path)
			if c == nil {
				return 0
			}
			s.mu.Lock()
			defer s.mu.Unlock()
			s.next++
			s.samples[s.next] = c
			return s.next
		},
		FreeSample: func(sample uintptr) {
			s.mu.Lock()
			defer s.mu.Unlock()
			c := s.samples[sample]
			if c == nil {
				return
			}
			delete(s.samples, sample)
			for _, v := range s.players {
				if v.sample == sample {
					v.clip = nil
					v.playing = false
				}
			}
		},

		NewSamplePlayer: func() uintptr {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.next++
			s.players[s.next] = &voice{rate: 1, vol: [2]float32{1, 1}}
			return s.next
		},
		NewFilePlayer: func() uintptr {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.next++
			s.players[s.next] = &voice{
				stream: true, rate: 1, vol: [2]float32{1, 1},
			}
			return s.next
		},
		FreePlayer: func(player uintptr) {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.players, player)
		},

		SetSample: func(player, sample uintptr) int32 {
			s.mu.Lock()
			defer s.mu.Unlock()
			v := s.players[player]
			c := s.samples[sample]
			if v == nil || v.stream || c == nil {
				return 0
			}
			v.sample = sample
			v.clip = c
			v.pos = 0
			return 1
		},
		LoadIntoPlayer: func(player uintptr, path string) int32 {
			s.mu.Lock()
			v := s.players[player]
			s.mu.Unlock()
			if v == nil || !v.stream {
				return 0
			}
			c := s.load(path)
			if c == nil {
				return 0
			}
			s.mu.Lock()
			v.clip = c
			v.pos = 0
			s.mu.Unlock()
			return 1
		},
		Play: func(player uintptr, repeat int32, rate float32) int32 {
			s.mu.Lock()
			defer s.mu.Unlock()
			v := s.players[player]
			if v == nil || v.clip == nil {
				return 0
			}
			v.playing = true
			v.paused = false
			v.repeat = repeat
			if rate != 0 {
				v.rate = rate
			}
			return 1
		},
		Stop: func(player uintptr) {
			s.mu.Lock()
			defer s.mu.Unlock()
			if v := s.players[player]; v != nil {
				v.playing = false
				v.pos = 0
			}
		},
		SetPaused: func(player uintptr, paused bool) {
			s.mu.Lock()
			defer s.mu.Unlock()
			if v := s.players[player]; v != nil {
				v.paused = paused
			}
		},
		IsPlaying: func(player uintptr) bool {
			s.mu.Lock()
			defer s.mu.Unlock()
			v := s.players[player]
			return v != nil && v.playing && !v.paused
		},
		SetVolume: func(player uintptr, left, right float32) {
			s.mu.Lock()
			defer s.mu.Unlock()
			if v := s.players[player]; v != nil {
				v.vol = [2]float32{left, right}
			}
		},
		Volume: func(player uintptr) (left, right float32) {
			s.mu.Lock()
			defer s.mu.Unlock()
			if v := s.players[player]; v != nil {
				return v.vol[0], v.vol[1]
			}
			return 0, 0
		},
		SetRate: func(player uintptr, rate float32) {
			s.mu.Lock()
			defer s.mu.Unlock()
			if v := s.players[player]; v != nil {
				v.rate = rate
			}
		},
		Length: func(player uintptr) float32 {
			s.mu.Lock()
			defer s.mu.Unlock()
			v := s.players[player]
			if v == nil || v.clip == nil {
				return 0
			}
			c := v.clip
			return float32(len(c.data)/c.channels) / float32(c.rate)
		},
		SetOffset: func(player uintptr, seconds float32) {
			s.mu.Lock()
			defer s.mu.Unlock()
			if v := s.players[player]; v != nil && v.clip != nil {
				v.pos = float64(seconds) * float64(v.clip.rate)
			}
		},
		Offset: func(player uintptr) float32 {
			s.mu.Lock()
			defer s.mu.Unlock()
			if v := s.players[player]; v != nil && v.clip != nil {
				return float32(v.pos / float64(v.clip.rate))
			}
			return 0
		},
	}
}
