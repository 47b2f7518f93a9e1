package synth

import (
	"fmt"
	"os"
	"sync"

	meltysynth "github.com/sinshu/go-meltysynth/meltysynth"
)

const (
	// Everything plays on one MIDI channel; the instrument program is
	// switched on it instead of spreading programs across channels.
	channel = 0

	// Key velocity for interactive notes. The log format carries no
	// velocity, so replay uses the same fixed value.
	velocity = 100

	ccBankSelect  = 0x00
	ccVolume      = 0x07
	ccAllNotesOff = 0x7B
	msgControl    = 0xB0
	msgProgram    = 0xC0
)

// Engine wraps the meltysynth synthesizer behind the small surface the
// rest of the program needs. All methods are safe for concurrent use:
// the audio output goroutine pulls samples while the input loop fires
// note events.
type Engine struct {
	mu    sync.Mutex
	synth *meltysynth.Synthesizer
	rate  int32
}

// New loads a soundfont and builds a synthesizer at the given sample
// rate.
func New(soundfont string, rate int32) (*Engine, error) {
	f, err := os.Open(soundfont)
	if err != nil {
		return nil, fmt.Errorf("open soundfont: %w", err)
	}
	defer f.Close()

	sf, err := meltysynth.NewSoundFont(f)
	if err != nil {
		return nil, fmt.Errorf("load soundfont %s: %w", soundfont, err)
	}
	settings := meltysynth.NewSynthesizerSettings(rate)
	s, err := meltysynth.NewSynthesizer(sf, settings)
	if err != nil {
		return nil, fmt.Errorf("create synthesizer: %w", err)
	}
	return &Engine{synth: s, rate: rate}, nil
}

// SampleRate returns the rate the engine renders at.
func (e *Engine) SampleRate() int32 { return e.rate }

// SetInstrument switches the active program via bank select plus
// program change, mirroring how a soundfont addresses its programs.
func (e *Engine) SetInstrument(preset, bank int32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.synth.ProcessMidiMessage(channel, msgControl, ccBankSelect, bank)
	e.synth.ProcessMidiMessage(channel, msgProgram, preset, 0)
}

// SetVolume sets the channel volume from a 0-100 level.
func (e *Engine) SetVolume(level int) {
	if level < 0 {
		level = 0
	}
	if level > 100 {
		level = 100
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.synth.ProcessMidiMessage(channel, msgControl, ccVolume, int32(level*127/100))
}

// NoteOn starts a note. Out-of-range indexes are dropped rather than
// wrapped; the key tables upstream keep notes in range.
func (e *Engine) NoteOn(note int32) {
	if note < 0 || note > 127 {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.synth.NoteOn(channel, note, velocity)
}

// NoteOff releases a note.
func (e *Engine) NoteOff(note int32) {
	if note < 0 || note > 127 {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.synth.NoteOff(channel, note)
}

// AllNotesOff releases every sounding note, letting releases decay.
func (e *Engine) AllNotesOff() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.synth.ProcessMidiMessage(channel, msgControl, ccAllNotesOff, 0)
}

// Render synthesizes len(left) frames into the given channel buffers.
func (e *Engine) Render(left, right []float32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.synth.Render(left, right)
}
