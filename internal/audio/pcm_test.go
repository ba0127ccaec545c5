package audio

import (
	"math"
	"testing"
)

func TestFormat_Validate(t *testing.T) {
	testCases := []struct {
		name    string
		format  Format
		wantErr bool
	}{
		{"valid 16-bit mono", Format{48000, 16, 1}, false},
		{"valid 32-bit stereo", Format{44100, 32, 2}, false},
		{"valid 8-bit", Format{8000, 8, 1}, false},
		{"zero rate", Format{0, 16, 1}, true},
		{"negative rate", Format{-8000, 16, 1}, true},
		{"24-bit unsupported", Format{48000, 24, 1}, true},
		{"zero channels", Format{48000, 16, 0}, true},
		{"too many channels", Format{48000, 16, 6}, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.format.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr = %v", err, tc.wantErr)
			}
		})
	}
}

func TestDecodeFrame_16BitMono(t *testing.T) {
	f := Format{SampleRate: 8000, BitDepth: 16, Channels: 1}

	// 0, max positive, min negative
	data := []byte{
		0x00, 0x00,
		0xff, 0x7f,
		0x00, 0x80,
	}

	samples, err := DecodeFrame(data, f)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if len(samples) != 3 {
		t.Fatalf("expected 3 samples, got %d", len(samples))
	}

	if samples[0] != 0 {
		t.Errorf("sample 0 = %f, want 0", samples[0])
	}
	if math.Abs(samples[1]-32767.0/32768.0) > 1e-12 {
		t.Errorf("sample 1 = %f, want just below 1", samples[1])
	}
	if samples[2] != -1.0 {
		t.Errorf("sample 2 = %f, want -1", samples[2])
	}
}

func TestDecodeFrame_StereoAveragesToMono(t *testing.T) {
	f := Format{SampleRate: 8000, BitDepth: 16, Channels: 2}

	// L = 0x4000 (0.5), R = 0x0000 (0.0) -> 0.25
	data := []byte{0x00, 0x40, 0x00, 0x00}

	samples, err := DecodeFrame(data, f)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if len(samples) != 1 {
		t.Fatalf("expected 1 sample, got %d", len(samples))
	}
	if samples[0] != 0.25 {
		t.Errorf("stereo average = %f, want 0.25", samples[0])
	}
}

func TestDecodeFrame_8And32Bit(t *testing.T) {
	s8, err := DecodeFrame([]byte{0x80, 0x40}, Format{8000, 8, 1})
	if err != nil {
		t.Fatalf("DecodeFrame 8-bit: %v", err)
	}
	if s8[0] != -1.0 || s8[1] != 0.5 {
		t.Errorf("8-bit samples = %v, want [-1 0.5]", s8)
	}

	s32, err := DecodeFrame([]byte{0x00, 0x00, 0x00, 0x80}, Format{8000, 32, 1})
	if err != nil {
		t.Fatalf("DecodeFrame 32-bit: %v", err)
	}
	if s32[0] != -1.0 {
		t.Errorf("32-bit sample = %f, want -1", s32[0])
	}
}

func TestDecodeFrame_PartialFrame(t *testing.T) {
	f := Format{SampleRate: 8000, BitDepth: 16, Channels: 2}
	if _, err := DecodeFrame([]byte{0x01, 0x02, 0x03}, f); err == nil {
		t.Error("expected error for partial frame data")
	}
}
