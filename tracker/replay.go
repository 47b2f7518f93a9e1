package tracker

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"time"

	"sfkeys/debug"
)

// Synth is the subset of the synthesis engine that replay drives.
type Synth interface {
	SetInstrument(preset, bank int32)
	SetVolume(level int)
	NoteOn(note int32)
	NoteOff(note int32)
	AllNotesOff()
	Render(left, right []float32)
}

// EngineOpener builds a synth for the soundfont named in the log's
// first set-soundfont record. The live opener also hooks the engine to
// an audio output; the render opener hands back a bare engine.
type EngineOpener func(soundfont string, rate int32) (Synth, error)

const (
	defaultRate = 44100

	// renderBlock is the number of frames synthesized per call in
	// render mode. Event boundaries are honored exactly; blocks only
	// bound the scratch buffers.
	renderBlock = 1024

	// tailMS is rendered after the final record so decaying notes
	// ring out instead of being cut at the last event.
	tailMS = 1000
)

// Play replays a parsed session log in real time: each record is
// applied after sleeping its elapsed delta. Audio comes out of
// whatever output the opener wired up.
func Play(events []Event, open EngineOpener) error {
	return run(events, open, &liveClock{})
}

// RenderPCM replays a parsed session log offline, synthesizing
// exactly elapsed_ms*rate/1000 frames between records, and returns
// interleaved 16-bit little-endian stereo PCM plus the sample rate in
// effect. No wall clock is involved, so the output is deterministic.
func RenderPCM(events []Event, open EngineOpener) ([]byte, int32, error) {
	clk := &renderClock{}
	if err := run(events, open, clk); err != nil {
		return nil, 0, err
	}
	return clk.pcm, clk.rate, nil
}

// clock is the one point where the two replay modes differ: how
// "wait N milliseconds" between records is interpreted.
type clock interface {
	setRate(rate int32)
	wait(eng Synth, ms int64)
	finish(eng Synth)
}

type liveClock struct{}

func (*liveClock) setRate(int32) {}

func (*liveClock) wait(_ Synth, ms int64) {
	time.Sleep(time.Duration(ms) * time.Millisecond)
}

func (*liveClock) finish(Synth) {}

type renderClock struct {
	rate   int32
	ms     int64 // cumulative log time
	frames int64
	pcm    []byte
	left   []float32
	right  []float32
}

func (c *renderClock) setRate(rate int32) { c.rate = rate }

func (c *renderClock) wait(eng Synth, ms int64) {
	// Advance to the absolute frame position of this event so rounding
	// never drifts across a long session.
	c.ms += ms
	target := c.ms * int64(c.rate) / 1000
	if eng == nil {
		// No soundfont loaded yet; the gap is silence.
		c.pcm = append(c.pcm, make([]byte, (target-c.frames)*4)...)
		c.frames = target
		return
	}
	if c.left == nil {
		c.left = make([]float32, renderBlock)
		c.right = make([]float32, renderBlock)
	}
	for c.frames < target {
		n := target - c.frames
		if n > renderBlock {
			n = renderBlock
		}
		eng.Render(c.left[:n], c.right[:n])
		c.pcm = appendPCM16(c.pcm, c.left[:n], c.right[:n])
		c.frames += n
	}
}

func (c *renderClock) finish(eng Synth) {
	c.wait(eng, tailMS)
}

// run is the single linear replay pass shared by both modes. The first
// set-soundfont record initializes the engine; a missing one is a
// corrupt log. Records with unknown kind-ids are skipped so logs from
// newer versions still mostly replay.
func run(events []Event, open EngineOpener, clk clock) error {
	if len(events) == 0 {
		return fmt.Errorf("session log is empty")
	}
	rate := int32(defaultRate)
	for _, ev := range events {
		if ev.Kind == KindSetSampleRate {
			if v, err := strconv.Atoi(ev.Payload); err == nil && v > 0 {
				rate = int32(v)
			}
			break
		}
	}
	clk.setRate(rate)

	var eng Synth
	for i, ev := range events {
		clk.wait(eng, ev.ElapsedMS)
		if err := apply(&eng, ev, rate, open); err != nil {
			return fmt.Errorf("record %d (%s): %w", i+1, ev.Kind, err)
		}
	}
	if eng == nil {
		return fmt.Errorf("session log has no set-soundfont record")
	}
	clk.finish(eng)
	return nil
}

func apply(eng *Synth, ev Event, rate int32, open EngineOpener) error {
	switch ev.Kind {
	case KindSetSoundfont:
		if *eng != nil {
			debug.Log("replay", "extra set-soundfont record ignored: %s", ev.Payload)
			return nil
		}
		e, err := open(ev.Payload, rate)
		if err != nil {
			return err
		}
		*eng = e
		return nil
	case KindSetSampleRate:
		// Consumed by the pre-scan; the engine is created at this rate.
		return nil
	}

	if *eng == nil {
		debug.Log("replay", "%s before set-soundfont, skipped", ev.Kind)
		return nil
	}
	switch ev.Kind {
	case KindSetVolume:
		v, err := strconv.Atoi(ev.Payload)
		if err != nil {
			return fmt.Errorf("bad volume payload %q", ev.Payload)
		}
		(*eng).SetVolume(v)
	case KindSetInstrument:
		preset, bank, err := ParseInstrumentPayload(ev.Payload)
		if err != nil {
			return err
		}
		(*eng).SetInstrument(preset, bank)
	case KindPlayNote:
		n, err := strconv.Atoi(ev.Payload)
		if err != nil {
			return fmt.Errorf("bad note payload %q", ev.Payload)
		}
		(*eng).NoteOn(int32(n))
	case KindStopNote:
		n, err := strconv.Atoi(ev.Payload)
		if err != nil {
			return fmt.Errorf("bad note payload %q", ev.Payload)
		}
		(*eng).NoteOff(int32(n))
	case KindStopAllNotes:
		(*eng).AllNotesOff()
	default:
		debug.Log("replay", "unknown kind-id %d skipped", int(ev.Kind))
	}
	return nil
}

// appendPCM16 converts stereo float32 frames to interleaved 16-bit
// little-endian samples and appends them to dst.
func appendPCM16(dst []byte, left, right []float32) []byte {
	var frame [4]byte
	for i := range left {
		binary.LittleEndian.PutUint16(frame[0:], uint16(clip16(left[i])))
		binary.LittleEndian.PutUint16(frame[2:], uint16(clip16(right[i])))
		dst = append(dst, frame[:]...)
	}
	return dst
}

func clip16(v float32) int16 {
	switch {
	case v <= -1:
		return -math.MaxInt16
	case v >= 1:
		return math.MaxInt16
	}
	return int16(v * math.MaxInt16)
}
