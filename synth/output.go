package synth

import (
	"fmt"

	"github.com/ebitengine/oto/v3"
)

// Output streams an engine's audio to the system device. The oto
// player pulls from Stream on its own goroutine; the engine's lock
// serializes that against note events.
type Output struct {
	player *oto.Player
}

// NewOutput opens the audio device at the engine's sample rate and
// starts playback immediately.
func NewOutput(e *Engine) (*Output, error) {
	opts := &oto.NewContextOptions{
		SampleRate:   int(e.SampleRate()),
		ChannelCount: 2,
		Format:       oto.FormatSignedInt16LE,
	}
	ctx, ready, err := oto.NewContext(opts)
	if err != nil {
		return nil, fmt.Errorf("open audio device: %w", err)
	}
	<-ready

	player := ctx.NewPlayer(&Stream{engine: e})
	player.Play()
	return &Output{player: player}, nil
}

// Close stops playback and releases the device.
func (o *Output) Close() error {
	return o.player.Close()
}

// Stream adapts an Engine to the io.Reader oto consumes: interleaved
// 16-bit little-endian stereo frames.
type Stream struct {
	engine *Engine
	left   []float32
	right  []float32
}

func (s *Stream) Read(p []byte) (int, error) {
	frames := len(p) / 4
	if frames == 0 {
		return 0, nil
	}
	if len(s.left) < frames {
		s.left = make([]float32, frames)
		s.right = make([]float32, frames)
	}
	s.engine.Render(s.left[:frames], s.right[:frames])
	EncodeFrames(p, s.left[:frames], s.right[:frames])
	return frames * 4, nil
}
