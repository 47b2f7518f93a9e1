package midi

import (
	"fmt"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// NoteEvent is one note on/off from an external MIDI keyboard.
type NoteEvent struct {
	Note     uint8
	Velocity uint8
	On       bool
}

// KeyboardController listens to one MIDI input port and forwards its
// note events into the shared channel owned by the DeviceManager.
type KeyboardController struct {
	id       string
	stopFunc func()
}

// NewKeyboardController opens the input port. Note-ons with zero
// velocity count as note-offs, as usual.
func NewKeyboardController(id string, inPort drivers.In, notes chan<- NoteEvent) (*KeyboardController, error) {
	kb := &KeyboardController{id: id}

	stop, err := gomidi.ListenTo(inPort, func(msg gomidi.Message, timestampms int32) {
		var channel, note, velocity uint8
		switch {
		case msg.GetNoteOn(&channel, &note, &velocity):
			ev := NoteEvent{Note: note, Velocity: velocity, On: velocity > 0}
			select {
			case notes <- ev:
			default:
			}
		case msg.GetNoteOff(&channel, &note, &velocity):
			select {
			case notes <- NoteEvent{Note: note, On: false}:
			default:
			}
		}
	})
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	kb.stopFunc = stop
	return kb, nil
}

func (kb *KeyboardController) ID() string {
	return kb.id
}

func (kb *KeyboardController) Close() error {
	if kb.stopFunc != nil {
		kb.stopFunc()
	}
	return nil
}
