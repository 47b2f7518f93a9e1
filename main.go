package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"sfkeys/config"
	"sfkeys/debug"
	"sfkeys/instrument"
	"sfkeys/midi"
	"sfkeys/netplay"
	"sfkeys/synth"
	"sfkeys/tracker"
	"sfkeys/tui"
)

func main() {
	rate := flag.Int("rate", 44100, "Sample rate in Hz.")
	volume := flag.Int("volume", 75, "Initial volume (0-100).")
	driver := flag.String("driver", "", "Audio driver hint; the system default output is used when empty.")
	trackPath := flag.String("track", "", "Write a session log of all events to this file.")
	replayPath := flag.String("replay", "", "Replay a session log instead of starting a session.")
	renderPath := flag.String("render", "", "With -replay, render the session to this WAV file instead of playing it live.")
	useMIDI := flag.Bool("midi", false, "Also take note input from connected MIDI keyboards.")
	serveAddr := flag.String("serve", "", "Broadcast session events over UDP on this address (host:port).")
	listenAddr := flag.String("listen", "", "Join a broadcasting player at this address and play along.")
	tool := flag.String("tool", config.DefaultDumpTool, "Instrument dump tool command.")
	instIndex := flag.Int("instrument", -1, "Select an instrument by index at startup.")
	instName := flag.String("instrument-name", "", "Select an instrument by name substring at startup.")
	clearCache := flag.Bool("clear-cache", false, "Remove cached instrument tables and exit.")
	clearSave := flag.Bool("clear-save", false, "Remove the saved session and exit.")
	flag.Parse()

	cfg, err := config.Default()
	if err == nil {
		cfg.DumpTool = *tool
		err = run(cfg, options{
			rate:       int32(*rate),
			volume:     *volume,
			driver:     *driver,
			trackPath:  *trackPath,
			replayPath: *replayPath,
			renderPath: *renderPath,
			useMIDI:    *useMIDI,
			serveAddr:  *serveAddr,
			listenAddr: *listenAddr,
			instIndex:  *instIndex,
			instName:   *instName,
			clearCache: *clearCache,
			clearSave:  *clearSave,
			soundfont:  flag.Arg(0),
		})
	}
	if err != nil {
		// The TUI is already torn down by the time errors surface
		// here, so the diagnostic prints on a clean screen.
		fmt.Fprintln(os.Stderr, "sfkeys:", err)
		os.Exit(1)
	}
}

type options struct {
	rate       int32
	volume     int
	driver     string
	trackPath  string
	replayPath string
	renderPath string
	useMIDI    bool
	serveAddr  string
	listenAddr string
	instIndex  int
	instName   string
	clearCache bool
	clearSave  bool
	soundfont  string
}

func run(cfg *config.Config, o options) error {
	if o.clearCache || o.clearSave {
		if o.clearCache {
			if err := instrument.ClearCache(cfg.CacheDir); err != nil {
				return err
			}
		}
		if o.clearSave {
			if err := config.ClearSession(cfg.SavesDir); err != nil {
				return err
			}
		}
		return nil
	}

	if err := debug.Enable(cfg.LogFile); err == nil {
		defer debug.Disable()
	}
	if o.driver != "" {
		debug.Log("main", "driver hint %q noted; output uses the system default device", o.driver)
	}

	if o.replayPath != "" {
		return replay(o.replayPath, o.renderPath)
	}
	if o.listenAddr != "" {
		return listen(o.listenAddr, o.soundfont, o.rate)
	}
	return session(cfg, o)
}

// listen joins a broadcasting player and plays its events through a
// local soundfont until interrupted.
func listen(addr, soundfont string, rate int32) error {
	if soundfont == "" {
		return errors.New("no soundfont given (usage: sfkeys -listen host:port <soundfont.sf2>)")
	}
	eng, err := synth.New(soundfont, rate)
	if err != nil {
		return err
	}
	out, err := synth.NewOutput(eng)
	if err != nil {
		return err
	}
	defer out.Close()

	l, err := netplay.Join(addr, eng)
	if err != nil {
		return err
	}
	defer l.Close()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	go func() {
		<-sig
		l.Close()
	}()

	fmt.Printf("playing along with %s, ctrl+c to stop\n", addr)
	return l.Run()
}

// replay plays back a session log, live or rendered to a WAV file.
// Any problem with the log is fatal before output starts: partial
// playback of a corrupt session is worse than refusing.
func replay(logPath, renderPath string) error {
	events, err := tracker.ReadLog(logPath)
	if err != nil {
		return err
	}

	if renderPath != "" {
		pcm, rate, err := tracker.RenderPCM(events, func(soundfont string, rate int32) (tracker.Synth, error) {
			return synth.New(soundfont, rate)
		})
		if err != nil {
			return err
		}
		f, err := os.Create(renderPath)
		if err != nil {
			return err
		}
		defer f.Close()
		return synth.WriteWAV(f, pcm, rate)
	}

	var out *synth.Output
	err = tracker.Play(events, func(soundfont string, rate int32) (tracker.Synth, error) {
		eng, err := synth.New(soundfont, rate)
		if err != nil {
			return nil, err
		}
		out, err = synth.NewOutput(eng)
		if err != nil {
			return nil, err
		}
		return eng, nil
	})
	if out != nil {
		// Let the last releases ring out before the device closes.
		time.Sleep(time.Second)
		out.Close()
	}
	return err
}

// session runs the interactive player.
func session(cfg *config.Config, o options) error {
	if o.soundfont == "" {
		return errors.New("no soundfont given (usage: sfkeys [flags] <soundfont.sf2>)")
	}
	if err := cfg.EnsureDirs(); err != nil {
		return err
	}

	table, err := instrument.LoadTable(o.soundfont, cfg.CacheDir, cfg.DumpTool)
	if err != nil {
		return err
	}

	eng, err := synth.New(o.soundfont, o.rate)
	if err != nil {
		return err
	}
	out, err := synth.NewOutput(eng)
	if err != nil {
		return err
	}
	defer out.Close()

	// The writer is closed on every exit path below; tracking being
	// optional (or broken) never touches the session itself.
	track := tracker.Open(o.trackPath)
	if o.serveAddr != "" {
		bcast, err := netplay.Serve(o.serveAddr)
		if err != nil {
			track.Close()
			return err
		}
		track = tracker.Tee(track, bcast)
	}
	defer track.Close()
	track.Record(tracker.KindSetSoundfont, o.soundfont)
	track.Record(tracker.KindSetSampleRate, tracker.IntPayload(int(o.rate)))
	track.Record(tracker.KindSetVolume, tracker.IntPayload(o.volume))
	eng.SetVolume(o.volume)

	selector := instrument.NewSelector(table, func(e instrument.Entry) {
		eng.SetInstrument(e.Preset, e.Bank)
		track.Record(tracker.KindSetInstrument, tracker.InstrumentPayload(e.Preset, e.Bank))
	})

	saved := config.LoadSession(cfg.SavesDir, o.soundfont)
	offset := 24
	startIndex := 0
	if saved != nil {
		offset = saved.NoteOffset
		startIndex = saved.InstrumentIndex
	}

	// Startup selection is strict: an instrument the user asked for
	// by flag must exist. Interactive stepping afterwards is not.
	selector.Strict = true
	switch {
	case o.instName != "":
		err = selector.SelectName(o.instName)
	case o.instIndex >= 0:
		err = selector.Select(o.instIndex)
	default:
		err = selector.Select(startIndex)
	}
	if err != nil {
		return err
	}
	selector.Strict = false

	var deviceMgr *midi.DeviceManager
	if o.useMIDI {
		deviceMgr = midi.NewDeviceManager()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go deviceMgr.Run(ctx)
	}

	m := tui.NewModel(tui.Options{
		Engine:    eng,
		Selector:  selector,
		Track:     track,
		Tracking:  o.trackPath != "",
		Devices:   deviceMgr,
		Soundfont: o.soundfont,
		Volume:    o.volume,
		Offset:    offset,
	})
	p := tea.NewProgram(m, tea.WithAltScreen())

	final, err := p.Run()
	if err != nil {
		return err
	}

	if fm, ok := final.(tui.Model); ok {
		offset = fm.Offset()
	}
	save := &config.Session{
		NoteOffset:      offset,
		Soundfont:       o.soundfont,
		InstrumentIndex: selector.Index(),
		Listing:         instrument.Listing(table),
	}
	if err := config.SaveSession(cfg.SavesDir, save); err != nil {
		debug.Log("main", "session save failed: %v", err)
	}
	return nil
}
