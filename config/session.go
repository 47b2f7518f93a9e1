package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"sfkeys/debug"
)

// Session is the saved "where I left off" state: restored at startup
// when the soundfont matches the one being opened, otherwise ignored.
// Concurrent program instances against the same saves dir race on this
// file; last writer wins.
type Session struct {
	NoteOffset      int    `json:"noteOffset"`
	Soundfont       string `json:"soundfont"`
	InstrumentIndex int    `json:"instrumentIndex"`

	// Listing is written for humans reading the save file, so the
	// instrument index above means something without the soundfont at
	// hand. It is never read back; the live table always comes from
	// the instrument cache.
	Listing string `json:"listing,omitempty"`
}

func sessionPath(savesDir string) string {
	return filepath.Join(savesDir, "session.json")
}

// LoadSession returns the saved session for the given soundfont, or
// nil when there is none. A corrupt or mismatched save is treated as
// "no saved session", never as an error.
func LoadSession(savesDir, soundfont string) *Session {
	data, err := os.ReadFile(sessionPath(savesDir))
	if err != nil {
		return nil
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		debug.Log("config", "corrupt session save ignored: %v", err)
		return nil
	}
	if s.Soundfont != soundfont {
		return nil
	}
	return &s
}

// SaveSession persists s for the next run.
func SaveSession(savesDir string, s *Session) error {
	if err := os.MkdirAll(savesDir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(sessionPath(savesDir), data, 0644)
}

// ClearSession removes the saved session, if any.
func ClearSession(savesDir string) error {
	err := os.Remove(sessionPath(savesDir))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
