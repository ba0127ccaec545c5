package audio

import (
	"encoding/binary"
	"fmt"
)

// DecodeFrame converts raw little-endian PCM bytes to mono samples in
// [-1, 1]. Multi-channel frames are averaged into one sample. The byte
// length must be whole frames; a short tail is a stream defect upstream
// should have caught.
func DecodeFrame(data []byte, f Format) ([]float64, error) {
	fb := f.FrameBytes()
	if fb == 0 {
		return nil, fmt.Errorf("invalid format: %+v", f)
	}
	if len(data)%fb != 0 {
		return nil, fmt.Errorf("PCM data length %d is not whole %d-byte frames", len(data), fb)
	}

	out := make([]float64, len(data)/fb)
	sampleBytes := f.BitDepth / 8

	for i := range out {
		base := i * fb
		var sum float64
		for ch := 0; ch < f.Channels; ch++ {
			sum += decodeSample(data[base+ch*sampleBytes:], f.BitDepth)
		}
		out[i] = sum / float64(f.Channels)
	}
	return out, nil
}

func decodeSample(data []byte, bitDepth int) float64 {
	switch bitDepth {
	case 8:
		return float64(int8(data[0])) / 128.0
	case 16:
		return float64(int16(binary.LittleEndian.Uint16(data))) / 32768.0
	default: // 32
		return float64(int32(binary.LittleEndian.Uint32(data))) / 2147483648.0
	}
}
