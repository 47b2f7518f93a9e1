package synth

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// EncodeFrames interleaves stereo float32 frames into dst as 16-bit
// little-endian samples. dst must hold at least len(left)*4 bytes.
func EncodeFrames(dst []byte, left, right []float32) {
	for i := range left {
		binary.LittleEndian.PutUint16(dst[4*i:], uint16(sample16(left[i])))
		binary.LittleEndian.PutUint16(dst[4*i+2:], uint16(sample16(right[i])))
	}
}

func sample16(v float32) int16 {
	switch {
	case v <= -1:
		return -math.MaxInt16
	case v >= 1:
		return math.MaxInt16
	}
	return int16(v * math.MaxInt16)
}

// WriteWAV wraps interleaved 16-bit stereo PCM in a minimal RIFF/WAVE
// container at the given sample rate.
func WriteWAV(w io.Writer, pcm []byte, rate int32) error {
	dataLen := uint32(len(pcm))
	var header [44]byte
	copy(header[0:], "RIFF")
	binary.LittleEndian.PutUint32(header[4:], 36+dataLen)
	copy(header[8:], "WAVE")
	copy(header[12:], "fmt ")
	binary.LittleEndian.PutUint32(header[16:], 16)
	binary.LittleEndian.PutUint16(header[20:], 1) // PCM
	binary.LittleEndian.PutUint16(header[22:], 2) // stereo
	binary.LittleEndian.PutUint32(header[24:], uint32(rate))
	binary.LittleEndian.PutUint32(header[28:], uint32(rate)*4)
	binary.LittleEndian.PutUint16(header[32:], 4)
	binary.LittleEndian.PutUint16(header[34:], 16)
	copy(header[36:], "data")
	binary.LittleEndian.PutUint32(header[40:], dataLen)

	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("write wav header: %w", err)
	}
	if _, err := w.Write(pcm); err != nil {
		return fmt.Errorf("write wav data: %w", err)
	}
	return nil
}
