package midi

import (
	"context"
	"strings"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver

	"sfkeys/debug"
)

// DeviceManager handles hot-plug detection of MIDI keyboards. Any
// input port that appears is opened and its note events merged into
// one channel; unplugged ports are closed again.
type DeviceManager struct {
	keyboards map[string]*KeyboardController
	mu        sync.RWMutex
	notes     chan NoteEvent
	pollRate  time.Duration
}

// NewDeviceManager creates a new device manager
func NewDeviceManager() *DeviceManager {
	return &DeviceManager{
		keyboards: make(map[string]*KeyboardController),
		notes:     make(chan NoteEvent, 64),
		pollRate:  time.Second,
	}
}

// Notes returns the merged note event stream of all connected
// keyboards.
func (dm *DeviceManager) Notes() <-chan NoteEvent {
	return dm.notes
}

// Run starts the polling loop (blocking - run in goroutine)
func (dm *DeviceManager) Run(ctx context.Context) {
	ticker := time.NewTicker(dm.pollRate)
	defer ticker.Stop()

	// Initial scan
	dm.scan()

	for {
		select {
		case <-ctx.Done():
			dm.closeAll()
			close(dm.notes)
			return
		case <-ticker.C:
			dm.scan()
		}
	}
}

func (dm *DeviceManager) scan() {
	// Get current MIDI ports with timeout (CoreMIDI can hang)
	ch := make(chan []drivers.In, 1)
	go func() {
		ch <- gomidi.GetInPorts()
	}()

	var inPorts []drivers.In
	select {
	case inPorts = <-ch:
	case <-time.After(3 * time.Second):
		// CoreMIDI is hung - skip this scan
		return
	}

	seenIDs := make(map[string]bool)
	for i, inPort := range inPorts {
		if isVirtual(inPort.String()) {
			continue
		}
		id := inPort.String()
		seenIDs[id] = true

		dm.mu.RLock()
		_, exists := dm.keyboards[id]
		dm.mu.RUnlock()
		if exists {
			continue
		}

		kb, err := NewKeyboardController(id, inPorts[i], dm.notes)
		if err != nil {
			debug.Log("midi", "cannot open %s: %v", id, err)
			continue
		}
		dm.mu.Lock()
		dm.keyboards[id] = kb
		dm.mu.Unlock()
		debug.Log("midi", "keyboard connected: %s", id)
	}

	// Check for disconnects
	dm.mu.Lock()
	for id, kb := range dm.keyboards {
		if !seenIDs[id] {
			kb.Close()
			delete(dm.keyboards, id)
			debug.Log("midi", "keyboard disconnected: %s", id)
		}
	}
	dm.mu.Unlock()
}

func (dm *DeviceManager) closeAll() {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	for _, kb := range dm.keyboards {
		kb.Close()
	}
	dm.keyboards = make(map[string]*KeyboardController)
}

// isVirtual filters out loopback/through ports that would echo our
// own output back as input.
func isVirtual(name string) bool {
	name = strings.ToLower(name)
	return strings.Contains(name, "through") || strings.Contains(name, "virtual")
}
