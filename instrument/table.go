package instrument

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"sfkeys/debug"
)

// Entry is one selectable instrument program of a soundfont.
type Entry struct {
	Name   string `json:"name"`
	Preset int32  `json:"preset"`
	Bank   int32  `json:"bank"`
}

// ToolError reports that the external instrument-dump tool is missing
// or failed. Without the listing there is nothing to select from, so
// this is fatal at startup.
type ToolError struct {
	Tool string
	Err  error
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("instrument dump tool %q: %v", e.Tool, e.Err)
}

func (e *ToolError) Unwrap() error { return e.Err }

// dump tool output: "<name>" (preset <int>) (bank <int>)
var dumpLine = regexp.MustCompile(`^"(.*)" \(preset (\d+)\) \(bank (\d+)\)$`)

// LoadTable returns the ordered instrument table for a soundfont. The
// table is cached under cacheDir keyed by the soundfont's base
// filename; on a cache miss the external dump tool is invoked and its
// output parsed and cached. Tables are sorted ascending by name, then
// preset, then bank.
func LoadTable(soundfont, cacheDir, tool string) ([]Entry, error) {
	cachePath := cacheFile(cacheDir, soundfont)
	if table, err := readCache(cachePath); err == nil {
		return table, nil
	}

	table, err := dump(soundfont, tool)
	if err != nil {
		return nil, err
	}
	if err := writeCache(cachePath, table); err != nil {
		// The table itself is fine; a failed cache write just means
		// the tool runs again next time.
		debug.Log("instrument", "cache write failed: %v", err)
	}
	return table, nil
}

// ClearCache removes all cached instrument tables.
func ClearCache(cacheDir string) error {
	matches, err := filepath.Glob(filepath.Join(cacheDir, "*.instruments.json"))
	if err != nil {
		return err
	}
	for _, m := range matches {
		if err := os.Remove(m); err != nil {
			return err
		}
	}
	return nil
}

func cacheFile(cacheDir, soundfont string) string {
	return filepath.Join(cacheDir, filepath.Base(soundfont)+".instruments.json")
}

func readCache(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var table []Entry
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, err
	}
	if len(table) == 0 {
		return nil, fmt.Errorf("empty cached table")
	}
	return table, nil
}

func writeCache(path string, table []Entry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(table, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func dump(soundfont, tool string) ([]Entry, error) {
	if _, err := exec.LookPath(tool); err != nil {
		return nil, &ToolError{Tool: tool, Err: err}
	}
	out, err := exec.Command(tool, soundfont).Output()
	if err != nil {
		return nil, &ToolError{Tool: tool, Err: err}
	}
	table, err := ParseDump(string(out))
	if err != nil {
		return nil, &ToolError{Tool: tool, Err: err}
	}
	return table, nil
}

// ParseDump extracts (name, preset, bank) triples from the dump tool's
// textual output and sorts them. Lines that don't match the listing
// form are ignored; the tools print headers and blank lines around it.
func ParseDump(out string) ([]Entry, error) {
	var table []Entry
	for _, line := range strings.Split(out, "\n") {
		m := dumpLine.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		preset, _ := strconv.Atoi(m[2])
		bank, _ := strconv.Atoi(m[3])
		table = append(table, Entry{Name: m[1], Preset: int32(preset), Bank: int32(bank)})
	}
	if len(table) == 0 {
		return nil, fmt.Errorf("no instrument lines in dump output")
	}
	Sort(table)
	return table, nil
}

// Sort orders a table ascending by name, then preset, then bank.
func Sort(table []Entry) {
	sort.Slice(table, func(i, j int) bool {
		a, b := table[i], table[j]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		if a.Preset != b.Preset {
			return a.Preset < b.Preset
		}
		return a.Bank < b.Bank
	})
}

// Listing renders the table as the numbered text shown in the browser
// and persisted with the saved session.
func Listing(table []Entry) string {
	var out strings.Builder
	for i, e := range table {
		fmt.Fprintf(&out, "%3d  %s (preset %d, bank %d)\n", i, e.Name, e.Preset, e.Bank)
	}
	return out.String()
}
