package netplay

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"sfkeys/tracker"
)

// fakeSynth records what the listener plays.
type fakeSynth struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeSynth) record(s string) {
	f.mu.Lock()
	f.calls = append(f.calls, s)
	f.mu.Unlock()
}

func (f *fakeSynth) snapshot() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeSynth) SetInstrument(preset, bank int32) { f.record("instrument") }
func (f *fakeSynth) SetVolume(level int)              { f.record("volume") }
func (f *fakeSynth) NoteOn(note int32)                { f.record("on") }
func (f *fakeSynth) NoteOff(note int32)               { f.record("off") }
func (f *fakeSynth) AllNotesOff()                     { f.record("alloff") }
func (f *fakeSynth) Render(left, right []float32)     {}

func TestBroadcastToListener(t *testing.T) {
	b, err := Serve("127.0.0.1:0")
	require.NoError(t, err)
	defer b.Close()

	eng := &fakeSynth{}
	l, err := Join(b.Addr(), eng)
	require.NoError(t, err)
	defer l.Close()

	done := make(chan error, 1)
	go func() { done <- l.Run() }()

	// The subscribe datagram has to land before events are sent.
	require.Eventually(t, func() bool { return b.Listeners() == 1 },
		2*time.Second, 10*time.Millisecond)

	b.Record(tracker.KindPlayNote, "60")
	b.Record(tracker.KindStopNote, "60")
	b.Record(tracker.KindStopAllNotes, "")

	require.Eventually(t, func() bool { return len(eng.snapshot()) == 3 },
		2*time.Second, 10*time.Millisecond)
	require.Equal(t, []string{"on", "off", "alloff"}, eng.snapshot())

	require.NoError(t, l.Close())
	require.NoError(t, <-done)
}

func TestListenerSkipsNonPlayableRecords(t *testing.T) {
	eng := &fakeSynth{}
	l := &Listener{eng: eng}

	// Soundfont and sample rate are local choices on the listening
	// machine; unknown kinds come from newer players.
	l.apply("1.0.other.sf2")
	l.apply("2.0.48000")
	l.apply("99.0.future")
	l.apply("not a record")
	l.apply("4.0.(24, 1)")
	l.apply("5.0.60")

	require.Equal(t, []string{"instrument", "on"}, eng.snapshot())
}

func TestBroadcasterWithoutListenersIsQuiet(t *testing.T) {
	b, err := Serve("127.0.0.1:0")
	require.NoError(t, err)
	defer b.Close()

	require.Equal(t, 0, b.Listeners())
	b.Record(tracker.KindPlayNote, "60") // nowhere to go, no panic
	require.NoError(t, b.Close())
	require.NoError(t, b.Close())
}
