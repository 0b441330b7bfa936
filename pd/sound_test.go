package pd

import (
	"errors"
	"testing"
	"time"
)

func TestSamplePlayer(t *testing.T) {
	h := newHost(t)
	p, err := Init(h.API)
	if err != nil {
		t.Fatal(err)
	}
	h.AddFile("sfx/jump.wav", []byte("RIFF"))

	if _, err := p.Sound().LoadSample("sfx/missing.wav"); !errors.Is(err, ErrSound) {
		t.Fatalf("expected %v, got %v", ErrSound, err)
	}

	sample, err := p.Sound().LoadSample("sfx/jump.wav")
	if err != nil {
		t.Fatal(err)
	}
	player, err := p.Sound().NewSamplePlayer()
	if err != nil {
		t.Fatal(err)
	}
	if err := player.SetSample(sample); err != nil {
		t.Fatal(err)
	}

	if err := player.Play(1, 1.0); err != nil {
		t.Fatal(err)
	}
	if !player.IsPlaying() {
		t.Fatal("player not playing")
	}

	player.SetPaused(true)
	if player.IsPlaying() {
		t.Fatal("paused player still playing")
	}
	player.SetPaused(false)

	player.Stop()
	if player.IsPlaying() {
		t.Fatal("stopped player still playing")
	}

	player.Free()
	sample.Free()
}

func TestFilePlayer(t *testing.T) {
	h := newHost(t)
	p, err := Init(h.API)
	if err != nil {
		t.Fatal(err)
	}
	h.AddFile("music/theme.mp3", []byte("ID3"))
	h.SoundLengths["music/theme.mp3"] = 4

	if _, err := p.Sound().NewFilePlayer("music/missing.mp3"); !errors.Is(err, ErrSound) {
		t.Fatalf("expected %v, got %v", ErrSound, err)
	}

	player, err := p.Sound().NewFilePlayer("music/theme.mp3")
	if err != nil {
		t.Fatal(err)
	}
	defer player.Free()

	if got := player.Length(); got != 4*time.Second {
		t.Fatalf("expected 4s, got %v", got)
	}

	player.SetVolume(0.5, 0.25)
	if left, right := player.Volume(); left != 0.5 || right != 0.25 {
		t.Fatalf("expected 0.5/0.25, got %v/%v", left, right)
	}

	player.SetOffset(2 * time.Second)
	if got := player.Offset(); got != 2*time.Second {
		t.Fatalf("expected 2s, got %v", got)
	}

	// Loop forever until stopped.
	if err := player.Play(0, 1.0); err != nil {
		t.Fatal(err)
	}
	if !player.IsPlaying() {
		t.Fatal("player not playing")
	}
}

func TestAudioClock(t *testing.T) {
	h := newHost(t)
	p, err := Init(h.API)
	if err != nil {
		t.Fatal(err)
	}

	h.AdvanceTime(time.Second)
	if got := p.Sound().Time(); got != 44100 {
		t.Fatalf("expected 44100 sample frames, got %v", got)
	}

	p.Sound().SetOutputsActive(true, false)
	if h.Outputs != [2]bool{true, false} {
		t.Fatalf("unexpected outputs %v", h.Outputs)
	}
}
