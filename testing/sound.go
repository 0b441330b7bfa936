package testing

import (
	"github.com/clktmr/playdate/firmware"
)

type hostSample struct {
	path  string
	freed bool
}

type hostPlayer struct {
	sample  uintptr
	path    string
	stream  bool
	playing bool
	paused  bool
	repeat  int32
	rate    float32
	volume  [2]float32
	offset  float32
	freed   bool
}

func (h *Host) soundAPI() *firmware.Sound {
	return &firmware.Sound{
		GetCurrentTime: func() uint32 {
			// 44100 sample frames per second, derived from the
			// millisecond clock.
			return uint32(uint64(h.now) * 44100 / 1000)
		},
		SetOutputsActive: func(headphone, speaker bool) {
			h.Outputs = [2]bool{headphone, speaker}
		},

		LoadSample: func(path string) uintptr {
			if _, ok := h.FileData(path); !ok {
				return 0
			}
			h.nextHandle++
			h.samples[h.nextHandle] = &hostSample{path: path}
			return h.nextHandle
		},
		FreeSample: func(sample uintptr) {
			if s := h.samples[sample]; s != nil {
				s.freed = true
			}
		},

		NewSamplePlayer: func() uintptr {
			h.nextHandle++
			h.players[h.nextHandle] = &hostPlayer{rate: 1, volume: [2]float32{1, 1}}
			return h.nextHandle
		},
		NewFilePlayer: func() uintptr {
			h.nextHandle++
			h.players[h.nextHandle] = &hostPlayer{
				stream: true, rate: 1, volume: [2]float32{1, 1},
			}
			return h.nextHandle
		},
		FreePlayer: func(player uintptr) {
			if p := h.players[player]; p != nil {
				p.freed = true
				p.playing = false
			}
		},

		SetSample: func(player, sample uintptr) int32 {
			p := h.players[player]
			s := h.samples[sample]
			if p == nil || p.freed || p.stream || s == nil || s.freed {
				return 0
			}
			p.sample = sample
			p.path = s.path
			return 1
		},
		LoadIntoPlayer: func(player uintptr, path string) int32 {
			p := h.players[player]
			if p == nil || p.freed || !p.stream {
				return 0
			}
			if _, ok := h.FileData(path); !ok {
				return 0
			}
			p.path = path
			return 1
		},
		Play: func(player uintptr, repeat int32, rate float32) int32 {
			p := h.players[player]
			if p == nil || p.freed || p.path == "" {
				return 0
			}
			p.playing = true
			p.paused = false
			p.repeat = repeat
			if rate != 0 {
				p.rate = rate
			}
			return 1
		},
		Stop: func(player uintptr) {
			if p := h.players[player]; p != nil {
				p.playing = false
				p.offset = 0
			}
		},
		SetPaused: func(player uintptr, paused bool) {
			if p := h.players[player]; p != nil {
				p.paused = paused
			}
		},
		IsPlaying: func(player uintptr) bool {
			p := h.players[player]
			return p != nil && p.playing && !p.paused
		},
		SetVolume: func(player uintptr, left, right float32) {
			if p := h.players[player]; p != nil {
				p.volume = [2]float32{left, right}
			}
		},
		Volume: func(player uintptr) (left, right float32) {
			if p := h.players[player]; p != nil {
				return p.volume[0], p.volume[1]
			}
			return 0, 0
		},
		SetRate: func(player uintptr, rate float32) {
			if p := h.players[player]; p != nil {
				p.rate = rate
			}
		},
		Length: func(player uintptr) float32 {
			p := h.players[player]
			if p == nil || p.path == "" {
				return 0
			}
			if length, ok := h.SoundLengths[p.path]; ok {
				return length
			}
			return 1
		},
		SetOffset: func(player uintptr, seconds float32) {
			if p := h.players[player]; p != nil {
				p.offset = seconds
			}
		},
		Offset: func(player uintptr) float32 {
			if p := h.players[player]; p != nil {
				return p.offset
			}
			return 0
		},
	}
}
