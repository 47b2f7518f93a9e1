package config

import (
	"os"
	"path/filepath"
)

// DefaultDumpTool is the external soundfont instrument-dump command
// invoked to build the instrument table.
const DefaultDumpTool = "sf2dump"

// Config carries the process-wide paths and external-tool names.
// It is built once in main and passed to components explicitly; no
// component reads the environment or the home directory on its own.
type Config struct {
	CacheDir string // cached instrument tables, one file per soundfont
	SavesDir string // saved session state
	DumpTool string // instrument-dump command name
	LogFile  string // debug log destination
}

// Default returns the standard layout under ~/.config/sfkeys.
func Default() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	root := filepath.Join(home, ".config", "sfkeys")
	return &Config{
		CacheDir: filepath.Join(root, "cache"),
		SavesDir: filepath.Join(root, "saves"),
		DumpTool: DefaultDumpTool,
		LogFile:  filepath.Join(root, "debug.log"),
	}, nil
}

// EnsureDirs creates the cache and saves directories if needed.
func (c *Config) EnsureDirs() error {
	if err := os.MkdirAll(c.CacheDir, 0755); err != nil {
		return err
	}
	return os.MkdirAll(c.SavesDir, 0755)
}
