package tracker

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const exampleLog = "1.0.sf.sf2\n2.0.44100\n3.0.75\n5.12.60\n6.340.60\n7.1000.\n"

func TestParseExampleLog(t *testing.T) {
	events, err := Parse(strings.NewReader(exampleLog))
	require.NoError(t, err)
	require.Equal(t, []Event{
		{KindSetSoundfont, 0, "sf.sf2"},
		{KindSetSampleRate, 0, "44100"},
		{KindSetVolume, 0, "75"},
		{KindPlayNote, 12, "60"},
		{KindStopNote, 340, "60"},
		{KindStopAllNotes, 1000, ""},
	}, events)
}

func TestParseCorruptLineIsFatal(t *testing.T) {
	_, err := Parse(strings.NewReader("1.0.sf.sf2\nbogus line\n5.0.60\n"))
	require.Error(t, err)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, 2, pe.Line)
}

func TestParseKeepsUnknownKinds(t *testing.T) {
	// Future kinds must survive parsing; replay skips them.
	events, err := Parse(strings.NewReader("1.0.sf.sf2\n99.5.whatever\n5.0.60\n"))
	require.NoError(t, err)
	require.Len(t, events, 3)
	require.Equal(t, Kind(99), events[1].Kind)
	require.False(t, events[1].Kind.Known())
}

func TestReadLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.log")
	require.NoError(t, os.WriteFile(path, []byte(exampleLog), 0644))

	events, err := ReadLog(path)
	require.NoError(t, err)
	require.Len(t, events, 6)
}

func TestReadLogMissingFile(t *testing.T) {
	_, err := ReadLog(filepath.Join(t.TempDir(), "nope.log"))
	require.Error(t, err)
}
