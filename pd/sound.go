package pd

import (
	"errors"
	"fmt"
	"time"
)

// ErrSound reports a failed sound operation. The firmware doesn't tell the
// cause, usually it's a missing file or exhausted audio memory.
var ErrSound = errors.New("pd: sound failure")

// Sound plays samples and streams files through the firmware mixer.
type Sound struct{ pd *PD }

// Time returns the audio clock, counted in sample frames at 44100 Hz since
// boot. It advances steadier than the frame clock.
func (s Sound) Time() uint32 { return s.pd.api.Sound.GetCurrentTime() }

// SetOutputsActive routes the mix to the headphone jack, the speaker or
// both.
func (s Sound) SetOutputsActive(headphone, speaker bool) {
	s.pd.api.Sound.SetOutputsActive(headphone, speaker)
}

// LoadSample decodes a sound file into memory. Use it for short effects that
// play often, longer tracks are better streamed with NewFilePlayer.
func (s Sound) LoadSample(path string) (*Sample, error) {
	handle := s.pd.api.Sound.LoadSample(path)
	if handle == 0 {
		return nil, fmt.Errorf("load sample %s: %w", path, ErrSound)
	}
	return &Sample{pd: s.pd, handle: handle}, nil
}

// NewSamplePlayer returns a player for decoded samples. Assign the sound
// with SetSample before playing.
func (s Sound) NewSamplePlayer() (*Player, error) {
	handle := s.pd.api.Sound.NewSamplePlayer()
	if handle == 0 {
		return nil, fmt.Errorf("new sample player: %w", ErrSound)
	}
	return &Player{pd: s.pd, handle: handle}, nil
}

// NewFilePlayer returns a player that streams path from storage.
func (s Sound) NewFilePlayer(path string) (*Player, error) {
	handle := s.pd.api.Sound.NewFilePlayer()
	if handle == 0 {
		return nil, fmt.Errorf("new file player: %w", ErrSound)
	}
	if s.pd.api.Sound.LoadIntoPlayer(handle, path) == 0 {
		s.pd.api.Sound.FreePlayer(handle)
		return nil, fmt.Errorf("open %s: %w", path, ErrSound)
	}
	return &Player{pd: s.pd, handle: handle}, nil
}

// Sample is a sound decoded into memory, playable by any number of players.
type Sample struct {
	pd     *PD
	handle uintptr
}

// Free releases the sample's memory. Players still set to it go silent.
func (s *Sample) Free() { s.pd.api.Sound.FreeSample(s.handle) }

// Player plays a single sound, either a decoded Sample or a streamed file.
type Player struct {
	pd     *PD
	handle uintptr
}

// SetSample assigns the sound the player will play.
func (p *Player) SetSample(s *Sample) error {
	if p.pd.api.Sound.SetSample(p.handle, s.handle) == 0 {
		return fmt.Errorf("set sample: %w", ErrSound)
	}
	return nil
}

// Play starts playback from the current offset. The sound plays repeat
// times, zero loops until Stop. A rate of 1.0 plays at recorded speed,
// negative rates play backwards.
func (p *Player) Play(repeat int, rate float32) error {
	if p.pd.api.Sound.Play(p.handle, int32(repeat), rate) == 0 {
		return fmt.Errorf("play: %w", ErrSound)
	}
	return nil
}

func (p *Player) Stop() { p.pd.api.Sound.Stop(p.handle) }

// SetPaused suspends playback without losing the position.
func (p *Player) SetPaused(paused bool) { p.pd.api.Sound.SetPaused(p.handle, paused) }

func (p *Player) IsPlaying() bool { return p.pd.api.Sound.IsPlaying(p.handle) }

// SetVolume sets the playback volume per channel, 0 to 1.
func (p *Player) SetVolume(left, right float32) {
	p.pd.api.Sound.SetVolume(p.handle, left, right)
}

func (p *Player) Volume() (left, right float32) {
	return p.pd.api.Sound.Volume(p.handle)
}

// SetRate changes the playback speed, 1.0 is recorded speed.
func (p *Player) SetRate(rate float32) { p.pd.api.Sound.SetRate(p.handle, rate) }

// Length returns the duration of the loaded sound at rate 1.0.
func (p *Player) Length() time.Duration {
	return time.Duration(p.pd.api.Sound.Length(p.handle) * float32(time.Second))
}

// SetOffset seeks playback to the given position.
func (p *Player) SetOffset(offset time.Duration) {
	p.pd.api.Sound.SetOffset(p.handle, float32(offset)/float32(time.Second))
}

func (p *Player) Offset() time.Duration {
	return time.Duration(p.pd.api.Sound.Offset(p.handle) * float32(time.Second))
}

// Free releases the player. It must not be used afterwards.
func (p *Player) Free() { p.pd.api.Sound.FreePlayer(p.handle) }
