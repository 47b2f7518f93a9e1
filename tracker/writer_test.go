package tracker

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestOpenEmptyPathIsNop(t *testing.T) {
	w := Open("")
	// Everything must be harmless on the disabled variant.
	w.Record(KindPlayNote, "60")
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
}

func TestOpenUnwritablePathIsNop(t *testing.T) {
	w := Open(filepath.Join(t.TempDir(), "no", "such", "dir", "s.log"))
	w.Record(KindPlayNote, "60")
	require.NoError(t, w.Close())
}

func TestWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.log")

	start := time.Now()
	w := Open(path)
	w.Record(KindSetSoundfont, "font.v1.sf2")
	w.Record(KindSetSampleRate, IntPayload(44100))
	w.Record(KindSetVolume, IntPayload(75))
	w.Record(KindPlayNote, NotePayload(60))
	time.Sleep(25 * time.Millisecond)
	w.Record(KindStopNote, NotePayload(60))
	w.Record(KindStopAllNotes, "")
	require.NoError(t, w.Close())
	wall := time.Since(start).Milliseconds()

	events, err := ReadLog(path)
	require.NoError(t, err)

	kinds := make([]Kind, len(events))
	payloads := make([]string, len(events))
	var total int64
	for i, ev := range events {
		kinds[i] = ev.Kind
		payloads[i] = ev.Payload
		require.GreaterOrEqual(t, ev.ElapsedMS, int64(0))
		total += ev.ElapsedMS
	}
	require.Equal(t, []Kind{
		KindSetSoundfont, KindSetSampleRate, KindSetVolume,
		KindPlayNote, KindStopNote, KindStopAllNotes,
	}, kinds)
	require.Equal(t, []string{"font.v1.sf2", "44100", "75", "60", "60", ""}, payloads)

	// Deltas sum to roughly the wall time of the writing phase.
	require.GreaterOrEqual(t, total, int64(25))
	require.LessOrEqual(t, total, wall+1)
}

type captureWriter struct {
	kinds  []Kind
	closed int
}

func (c *captureWriter) Record(kind Kind, payload string) { c.kinds = append(c.kinds, kind) }
func (c *captureWriter) Close() error                     { c.closed++; return nil }

func TestTeeFansOut(t *testing.T) {
	a, b := &captureWriter{}, &captureWriter{}
	w := Tee(a, Open(""), b)

	w.Record(KindPlayNote, "60")
	require.NoError(t, w.Close())

	require.Equal(t, []Kind{KindPlayNote}, a.kinds)
	require.Equal(t, []Kind{KindPlayNote}, b.kinds)
	require.Equal(t, 1, a.closed)
	require.Equal(t, 1, b.closed)
}

func TestTeeCollapses(t *testing.T) {
	// All no-ops stays a no-op; a single live writer comes back as-is.
	require.IsType(t, nopWriter{}, Tee(Open(""), nil))

	a := &captureWriter{}
	require.Equal(t, Writer(a), Tee(a, Open("")))
}

func TestCloseIdempotent(t *testing.T) {
	w := Open(filepath.Join(t.TempDir(), "s.log"))
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
	// Recording after close is a no-op, not a crash.
	w.Record(KindPlayNote, "60")
}
