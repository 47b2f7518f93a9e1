package tracker

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// ParseError marks a corrupt session log. The format has no record
// boundary beyond newlines, so there is no resync: parsing aborts at
// the first bad line.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("session log line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ReadLog parses a whole session log file into its ordered event
// sequence. An unreadable file or a malformed line is fatal; records
// with unknown kind-ids are kept as-is and skipped later by replay.
func ReadLog(path string) ([]Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open session log: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads events from r, one per line. Empty trailing lines are
// tolerated; anything else malformed is a *ParseError.
func Parse(r io.Reader) ([]Event, error) {
	var events []Event
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" {
			continue
		}
		ev, err := parseLine(line)
		if err != nil {
			return nil, &ParseError{Line: lineNo, Err: err}
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read session log: %w", err)
	}
	return events, nil
}
