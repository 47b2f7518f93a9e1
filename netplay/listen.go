package netplay

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	"sfkeys/debug"
	"sfkeys/tracker"
)

// Listener joins a broadcasting player and applies the received events
// to a local synth. The listener plays through its own soundfont, so
// set-soundfont and set-sample-rate records are skipped along with
// unknown kinds; a datagram that doesn't parse is dropped rather than
// fatal, the stream has no history to corrupt.
type Listener struct {
	conn *net.UDPConn
	eng  tracker.Synth
}

// Join subscribes to the broadcaster at addr, playing through eng.
func Join(addr string, eng tracker.Synth) (*Listener, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("broadcast address: %w", err)
	}
	conn, err := net.DialUDP("udp", nil, udpAddr)
	if err != nil {
		return nil, fmt.Errorf("join broadcast: %w", err)
	}
	if _, err := conn.Write([]byte("1")); err != nil {
		conn.Close()
		return nil, fmt.Errorf("subscribe: %w", err)
	}
	return &Listener{conn: conn, eng: eng}, nil
}

// Run receives and plays events until Close is called or the socket
// fails.
func (l *Listener) Run() error {
	buf := make([]byte, 512)
	for {
		n, err := l.conn.Read(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("receive: %w", err)
		}
		for _, line := range strings.Split(strings.TrimSpace(string(buf[:n])), "\n") {
			if line == "" {
				continue
			}
			l.apply(line)
		}
	}
}

func (l *Listener) apply(line string) {
	events, err := tracker.Parse(strings.NewReader(line))
	if err != nil || len(events) == 0 {
		debug.Log("netplay", "bad datagram dropped: %q", line)
		return
	}
	ev := events[0]
	switch ev.Kind {
	case tracker.KindSetVolume:
		if v, err := strconv.Atoi(ev.Payload); err == nil {
			l.eng.SetVolume(v)
		}
	case tracker.KindSetInstrument:
		if preset, bank, err := tracker.ParseInstrumentPayload(ev.Payload); err == nil {
			l.eng.SetInstrument(preset, bank)
		}
	case tracker.KindPlayNote:
		if note, err := strconv.Atoi(ev.Payload); err == nil {
			l.eng.NoteOn(int32(note))
		}
	case tracker.KindStopNote:
		if note, err := strconv.Atoi(ev.Payload); err == nil {
			l.eng.NoteOff(int32(note))
		}
	case tracker.KindStopAllNotes:
		l.eng.AllNotesOff()
	default:
		debug.Log("netplay", "skipping %s record", ev.Kind)
	}
}

// Close unsubscribes by closing the socket; Run returns.
func (l *Listener) Close() error {
	return l.conn.Close()
}
