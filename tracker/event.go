package tracker

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies a logged session action. The numeric values are the
// on-disk kind-ids and must never be renumbered.
type Kind int

const (
	KindSetSoundfont Kind = iota + 1
	KindSetSampleRate
	KindSetVolume
	KindSetInstrument
	KindPlayNote
	KindStopNote
	KindStopAllNotes
)

func (k Kind) String() string {
	switch k {
	case KindSetSoundfont:
		return "set-soundfont"
	case KindSetSampleRate:
		return "set-sample-rate"
	case KindSetVolume:
		return "set-volume"
	case KindSetInstrument:
		return "set-instrument"
	case KindPlayNote:
		return "play-note"
	case KindStopNote:
		return "stop-note"
	case KindStopAllNotes:
		return "stop-all-notes"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Known reports whether k is one of the kinds this version writes.
// Unknown kinds in a log are skipped during replay, not rejected.
func (k Kind) Known() bool {
	return k >= KindSetSoundfont && k <= KindStopAllNotes
}

// Event is one record of a session log. Records are immutable once
// created; ElapsedMS is the delta since the previous record, not an
// absolute time.
type Event struct {
	Kind      Kind
	ElapsedMS int64
	Payload   string
}

// Encode renders the on-disk line form: <kind>.<elapsed_ms>.<payload>.
// The payload may itself contain dots; parsing caps the split at three
// fields to allow that.
func (e Event) Encode() string {
	return strconv.Itoa(int(e.Kind)) + "." + strconv.FormatInt(e.ElapsedMS, 10) + "." + e.Payload
}

// parseLine decodes one log line. A non-integer kind-id or elapsed
// field means the file is corrupt.
func parseLine(line string) (Event, error) {
	parts := strings.SplitN(line, ".", 3)
	if len(parts) != 3 {
		return Event{}, fmt.Errorf("want 3 dot-separated fields, got %d", len(parts))
	}
	kind, err := strconv.Atoi(parts[0])
	if err != nil {
		return Event{}, fmt.Errorf("bad kind-id %q", parts[0])
	}
	elapsed, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return Event{}, fmt.Errorf("bad elapsed field %q", parts[1])
	}
	if elapsed < 0 {
		return Event{}, fmt.Errorf("negative elapsed field %q", parts[1])
	}
	return Event{Kind: Kind(kind), ElapsedMS: elapsed, Payload: parts[2]}, nil
}

// InstrumentPayload renders a (preset, bank) pair in the literal-pair
// payload form used by set-instrument records.
func InstrumentPayload(preset, bank int32) string {
	return fmt.Sprintf("(%d, %d)", preset, bank)
}

// ParseInstrumentPayload decodes a "(preset, bank)" payload.
func ParseInstrumentPayload(s string) (preset, bank int32, err error) {
	inner := strings.TrimSpace(s)
	if !strings.HasPrefix(inner, "(") || !strings.HasSuffix(inner, ")") {
		return 0, 0, fmt.Errorf("bad instrument payload %q", s)
	}
	inner = inner[1 : len(inner)-1]
	fields := strings.Split(inner, ",")
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("bad instrument payload %q", s)
	}
	p, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("bad instrument preset in %q", s)
	}
	b, err := strconv.Atoi(strings.TrimSpace(fields[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("bad instrument bank in %q", s)
	}
	return int32(p), int32(b), nil
}

// NotePayload renders a note index payload.
func NotePayload(note int32) string {
	return strconv.Itoa(int(note))
}

// IntPayload renders an integer payload (sample rate, volume).
func IntPayload(v int) string {
	return strconv.Itoa(v)
}
