package tracker

import (
	"fmt"
	"os"
	"time"

	"sfkeys/debug"
)

// Writer appends session events to a log. Tracking is optional: Open
// hands back a no-op variant when no path is given or the file cannot
// be created, so callers never special-case a disabled tracker.
type Writer interface {
	// Record appends one event, stamped with the time elapsed since
	// the previous Record call (or since the writer was opened).
	Record(kind Kind, payload string)
	// Close flushes and releases the log file. Idempotent.
	Close() error
}

// Open returns an active file-backed writer, or a no-op writer when
// path is empty or unwritable. Write-side tracking failures must never
// interrupt an interactive session.
func Open(path string) Writer {
	if path == "" {
		return nopWriter{}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		debug.Log("tracker", "cannot open session log %s: %v", path, err)
		return nopWriter{}
	}
	return &fileWriter{file: f, last: time.Now()}
}

type fileWriter struct {
	file *os.File
	last time.Time
}

func (w *fileWriter) Record(kind Kind, payload string) {
	if w.file == nil {
		return
	}
	now := time.Now()
	elapsed := now.Sub(w.last).Milliseconds()
	if elapsed < 0 {
		elapsed = 0
	}
	w.last = now
	ev := Event{Kind: kind, ElapsedMS: elapsed, Payload: payload}
	if _, err := fmt.Fprintln(w.file, ev.Encode()); err != nil {
		debug.Log("tracker", "session log write failed, disabling: %v", err)
		w.file.Close()
		w.file = nil
	}
}

func (w *fileWriter) Close() error {
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

// nopWriter is the disabled variant: every method is a harmless no-op.
type nopWriter struct{}

func (nopWriter) Record(Kind, string) {}
func (nopWriter) Close() error        { return nil }

// Tee fans each event out to every given writer, so one session can
// both append to its log file and broadcast to the network. No-op
// writers are dropped; with one live writer left, it is returned as-is.
func Tee(writers ...Writer) Writer {
	live := make([]Writer, 0, len(writers))
	for _, w := range writers {
		if _, nop := w.(nopWriter); nop || w == nil {
			continue
		}
		live = append(live, w)
	}
	switch len(live) {
	case 0:
		return nopWriter{}
	case 1:
		return live[0]
	}
	return teeWriter(live)
}

type teeWriter []Writer

func (t teeWriter) Record(kind Kind, payload string) {
	for _, w := range t {
		w.Record(kind, payload)
	}
}

func (t teeWriter) Close() error {
	var first error
	for _, w := range t {
		if err := w.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
