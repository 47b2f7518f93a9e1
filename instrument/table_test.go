package instrument

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const dumpOutput = `instruments in font.sf2:

"Violin" (preset 40) (bank 0)
"Grand Piano" (preset 0) (bank 0)
"Grand Piano" (preset 0) (bank 8)
"Church Organ" (preset 19) (bank 0)

4 instruments
`

func TestParseDump(t *testing.T) {
	table, err := ParseDump(dumpOutput)
	require.NoError(t, err)
	// Sorted by name, then preset, then bank; headers and blank
	// lines ignored.
	require.Equal(t, []Entry{
		{Name: "Church Organ", Preset: 19, Bank: 0},
		{Name: "Grand Piano", Preset: 0, Bank: 0},
		{Name: "Grand Piano", Preset: 0, Bank: 8},
		{Name: "Violin", Preset: 40, Bank: 0},
	}, table)
}

func TestParseDumpNoInstruments(t *testing.T) {
	_, err := ParseDump("nothing useful here\n")
	require.Error(t, err)
}

func TestLoadTableUsesCache(t *testing.T) {
	cacheDir := t.TempDir()
	cached := []Entry{{Name: "Grand Piano", Preset: 0, Bank: 0}}
	data, err := json.Marshal(cached)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(
		filepath.Join(cacheDir, "font.sf2.instruments.json"), data, 0644))

	// The tool doesn't exist; a cache hit must not invoke it.
	table, err := LoadTable("/some/dir/font.sf2", cacheDir, "definitely-not-a-real-tool")
	require.NoError(t, err)
	require.Equal(t, cached, table)
}

func TestLoadTableMissingTool(t *testing.T) {
	_, err := LoadTable("/some/dir/font.sf2", t.TempDir(), "definitely-not-a-real-tool")
	require.Error(t, err)
	var te *ToolError
	require.ErrorAs(t, err, &te)
	require.Equal(t, "definitely-not-a-real-tool", te.Tool)
}

func TestClearCache(t *testing.T) {
	cacheDir := t.TempDir()
	path := filepath.Join(cacheDir, "font.sf2.instruments.json")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0644))

	require.NoError(t, ClearCache(cacheDir))
	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err))

	// Clearing an already-empty cache is fine.
	require.NoError(t, ClearCache(cacheDir))
}

func TestListing(t *testing.T) {
	out := Listing([]Entry{
		{Name: "Grand Piano", Preset: 0, Bank: 0},
		{Name: "Violin", Preset: 40, Bank: 0},
	})
	require.Contains(t, out, "0  Grand Piano (preset 0, bank 0)")
	require.Contains(t, out, "1  Violin (preset 40, bank 0)")
}
