package tui

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"sfkeys/instrument"
	"sfkeys/midi"
	"sfkeys/tracker"
)

// MaxNote is the highest playable note index.
const MaxNote = 115

// Instrument is the part of the synth engine the interactive surface
// drives.
type Instrument interface {
	SetVolume(level int)
	NoteOn(note int32)
	NoteOff(note int32)
	AllNotesOff()
}

// Options wires the model to its collaborators. Track is never nil;
// a disabled tracker is the no-op writer.
type Options struct {
	Engine    Instrument
	Selector  *instrument.Selector
	Track     tracker.Writer
	Tracking  bool
	Devices   *midi.DeviceManager // nil when -midi is off
	Soundfont string
	Volume    int
	Offset    int
}

type Model struct {
	engine    Instrument
	selector  *instrument.Selector
	track     tracker.Writer
	deviceMgr *midi.DeviceManager

	keys    *KeyTrie
	pending *KeyTrie // mid-sequence position, nil between chords

	soundfont string
	volume    int
	offset    int
	tracking  bool

	active   map[int32]bool
	quitting bool
	width    int
	height   int
}

// NoteMsg carries one external MIDI keyboard event into the update
// loop.
type NoteMsg midi.NoteEvent

func NewModel(o Options) Model {
	return Model{
		engine:    o.Engine,
		selector:  o.Selector,
		track:     o.Track,
		deviceMgr: o.Devices,
		keys:      DefaultKeymap(),
		soundfont: o.Soundfont,
		volume:    o.Volume,
		offset:    o.Offset,
		tracking:  o.Tracking,
		active:    make(map[int32]bool),
	}
}

// Offset returns the note-range offset, for session save at exit.
func (m Model) Offset() int { return m.offset }

func ListenForNotes(deviceMgr *midi.DeviceManager) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-deviceMgr.Notes()
		if !ok {
			return nil
		}
		return NoteMsg(ev)
	}
}

func (m Model) Init() tea.Cmd {
	if m.deviceMgr != nil {
		return ListenForNotes(m.deviceMgr)
	}
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case NoteMsg:
		// MIDI notes go up to 127; the playable range does not.
		if note := int32(msg.Note); note <= MaxNote {
			if msg.On {
				m.noteOn(note)
			} else {
				m.noteOff(note)
			}
		}
		return m, ListenForNotes(m.deviceMgr)

	case tea.KeyMsg:
		return m.handleKey(msg.String())
	}

	return m, nil
}

func (m Model) handleKey(key string) (tea.Model, tea.Cmd) {
	// A chord in progress consumes the next key outright; a miss
	// resets the walk and swallows the key.
	if m.pending != nil {
		slot, next, ok := m.keys.Step(m.pending, key)
		m.pending = next
		if ok && next == nil {
			m.toggleSlot(slot)
		}
		return m, nil
	}

	switch key {
	case "q", "ctrl+c":
		m.stopAll()
		m.quitting = true
		return m, tea.Quit

	case " ":
		m.stopAll()

	case "up":
		m.selector.Next(1)
	case "down":
		m.selector.Prev(1)

	case "left":
		m.shiftRange(-12)
	case "right":
		m.shiftRange(12)

	case "pgup":
		m.setVolume(m.volume + 5)
	case "pgdown":
		m.setVolume(m.volume - 5)

	default:
		slot, next, ok := m.keys.Step(nil, key)
		if !ok {
			return m, nil
		}
		m.pending = next
		if next == nil {
			m.toggleSlot(slot)
		}
	}
	return m, nil
}

// toggleSlot starts the slot's note, or stops it when it is already
// sounding. Terminals deliver no key releases, so a second press is
// the release.
func (m *Model) toggleSlot(slot int32) {
	note := slot + int32(m.offset)
	if note < 0 || note > MaxNote {
		return
	}
	if m.active[note] {
		m.noteOff(note)
	} else {
		m.noteOn(note)
	}
}

func (m *Model) noteOn(note int32) {
	m.engine.NoteOn(note)
	m.active[note] = true
	m.track.Record(tracker.KindPlayNote, tracker.NotePayload(note))
}

func (m *Model) noteOff(note int32) {
	m.engine.NoteOff(note)
	delete(m.active, note)
	m.track.Record(tracker.KindStopNote, tracker.NotePayload(note))
}

func (m *Model) stopAll() {
	m.engine.AllNotesOff()
	m.active = make(map[int32]bool)
	m.track.Record(tracker.KindStopAllNotes, "")
}

func (m *Model) setVolume(v int) {
	if v < 0 {
		v = 0
	}
	if v > 100 {
		v = 100
	}
	if v == m.volume {
		return
	}
	m.volume = v
	m.engine.SetVolume(v)
	m.track.Record(tracker.KindSetVolume, tracker.IntPayload(v))
}

func (m *Model) shiftRange(delta int) {
	o := m.offset + delta
	if o < 0 {
		o = 0
	}
	if max := MaxNote - int(KeyboardWidth()); o > max {
		o = max
	}
	m.offset = o
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	headerStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	cursorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Bold(true)

	trackTag := ""
	if m.tracking {
		trackTag = "  REC"
	}
	header := headerStyle.Render(fmt.Sprintf("sfkeys  %s  vol:%3d  offset:%3d%s",
		filepath.Base(m.soundfont), m.volume, m.offset, trackTag))

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")
	out.WriteString(m.browserView(cursorStyle, dimStyle))
	out.WriteString("\n")
	out.WriteString(m.notesView(dimStyle))
	out.WriteString("\n\n")
	out.WriteString(dimStyle.Render("keys:play  \\+key:high range  space:all off  ↑/↓:instrument  ←/→:octave  pgup/pgdn:volume  q:quit"))

	return out.String()
}

// browserView shows a window of the instrument table around the
// current selection.
func (m Model) browserView(cur, dim lipgloss.Style) string {
	table := m.selector.Table()
	if len(table) == 0 {
		return dim.Render("  (no instruments)") + "\n"
	}

	const window = 9
	idx := m.selector.Index()
	start := idx - window/2
	if start > len(table)-window {
		start = len(table) - window
	}
	if start < 0 {
		start = 0
	}
	end := start + window
	if end > len(table) {
		end = len(table)
	}

	var out strings.Builder
	for i := start; i < end; i++ {
		e := table[i]
		line := fmt.Sprintf("%3d  %s (preset %d, bank %d)", i, e.Name, e.Preset, e.Bank)
		if i == idx {
			out.WriteString(cur.Render("> " + line))
		} else {
			out.WriteString(dim.Render("  " + line))
		}
		out.WriteString("\n")
	}
	return out.String()
}

func (m Model) notesView(dim lipgloss.Style) string {
	if len(m.active) == 0 {
		return dim.Render("  no notes sounding")
	}
	notes := make([]int, 0, len(m.active))
	for n := range m.active {
		notes = append(notes, int(n))
	}
	sort.Ints(notes)
	parts := make([]string, len(notes))
	for i, n := range notes {
		parts[i] = fmt.Sprintf("%d", n)
	}
	return "  sounding: " + strings.Join(parts, " ")
}
