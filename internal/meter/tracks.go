package meter

import "time"

// MinMaxPoint is one closed bucket's level aggregate: two values per pixel
// column. HasData is false for empty buckets, which renderers should paint
// as gaps rather than interpolate across.
type MinMaxPoint struct {
	Start   time.Time
	End     time.Time
	MinDB   float64
	MaxDB   float64
	HasData bool
}

// MinMaxTrack is the read-only level projection of the day buffer, one entry
// per closed bucket, oldest first.
type MinMaxTrack []MinMaxPoint

// SpectrumColumn is one closed bucket's mean spectrum. Magnitudes is nil for
// empty buckets.
type SpectrumColumn struct {
	Start      time.Time
	End        time.Time
	BinWidth   float64
	Magnitudes []float64
}

// SpectrumTrack is the read-only spectrum projection of the day buffer.
type SpectrumTrack []SpectrumColumn

// NewMinMaxTrack projects closed buckets, oldest first, onto a level track.
func NewMinMaxTrack(buckets []Bucket) MinMaxTrack {
	track := make(MinMaxTrack, len(buckets))
	for i, b := range buckets {
		track[i] = MinMaxPoint{
			Start:   b.Start,
			End:     b.End,
			MinDB:   b.MinDB,
			MaxDB:   b.MaxDB,
			HasData: b.HasData(),
		}
	}
	return track
}

// NewSpectrumTrack projects closed buckets, oldest first, onto a spectrum
// track. Empty buckets carry a nil magnitude slice.
func NewSpectrumTrack(buckets []Bucket) SpectrumTrack {
	track := make(SpectrumTrack, len(buckets))
	for i, b := range buckets {
		col := SpectrumColumn{
			Start:    b.Start,
			End:      b.End,
			BinWidth: b.BinWidth,
		}
		if b.HasData() {
			col.Magnitudes = append([]float64(nil), b.Spectrum...)
		}
		track[i] = col
	}
	return track
}
