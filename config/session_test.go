package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSessionRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := &Session{
		NoteOffset:      36,
		Soundfont:       "/fonts/gm.sf2",
		InstrumentIndex: 7,
		Listing:         "  0  Grand Piano (preset 0, bank 0)\n",
	}
	require.NoError(t, SaveSession(dir, s))

	got := LoadSession(dir, "/fonts/gm.sf2")
	require.NotNil(t, got)
	require.Equal(t, s, got)
}

func TestLoadSessionSoundfontMismatch(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, SaveSession(dir, &Session{Soundfont: "/fonts/a.sf2"}))
	require.Nil(t, LoadSession(dir, "/fonts/b.sf2"))
}

func TestLoadSessionAbsentOrCorrupt(t *testing.T) {
	dir := t.TempDir()
	require.Nil(t, LoadSession(dir, "/fonts/gm.sf2"))

	// Corrupt saves fall back to defaults, never error.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "session.json"), []byte("{not json"), 0644))
	require.Nil(t, LoadSession(dir, "/fonts/gm.sf2"))
}

func TestClearSession(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, SaveSession(dir, &Session{Soundfont: "x"}))
	require.NoError(t, ClearSession(dir))
	require.Nil(t, LoadSession(dir, "x"))
	// Clearing twice is fine.
	require.NoError(t, ClearSession(dir))
}
