package storage

import (
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/dwmair/daymeter/internal/meter"
)

func closeWithError(cl interface{ Close() error }, err *error) {
	if cErr := cl.Close(); cErr != nil && *err == nil {
		*err = cErr
	}
}

func rollbackWithError(rb interface{ Rollback() error }, err *error) {
	if cErr := rb.Rollback(); cErr != nil && *err == nil {
		*err = cErr
	}
}

// encodeSpectrum packs magnitudes as little-endian float64s.
func encodeSpectrum(mags []float64) []byte {
	if len(mags) == 0 {
		return nil
	}
	out := make([]byte, 8*len(mags))
	for i, m := range mags {
		binary.LittleEndian.PutUint64(out[i*8:], math.Float64bits(m))
	}
	return out
}

func decodeSpectrum(data []byte) ([]float64, error) {
	if len(data) == 0 {
		return nil, nil
	}
	if len(data)%8 != 0 {
		return nil, fmt.Errorf("spectrum blob length %d is not whole float64s", len(data))
	}
	out := make([]float64, len(data)/8)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[i*8:]))
	}
	return out, nil
}

func toBucketData(sessionID int64, b meter.Bucket) bucketData {
	data := bucketData{
		SessionID:   sessionID,
		StartTime:   b.Start.UTC(),
		EndTime:     b.End.UTC(),
		BinWidth:    b.BinWidth,
		SampleCount: b.Count,
	}
	if b.HasData() {
		data.MinDB = sql.NullFloat64{Float64: b.MinDB, Valid: true}
		data.MaxDB = sql.NullFloat64{Float64: b.MaxDB, Valid: true}
		data.Spectrum = encodeSpectrum(b.Spectrum)
	}
	return data
}

func toBucket(d bucketData) (meter.Bucket, error) {
	spectrum, err := decodeSpectrum(d.Spectrum)
	if err != nil {
		return meter.Bucket{}, err
	}

	b := meter.Bucket{
		Start:    d.StartTime,
		End:      d.EndTime,
		BinWidth: d.BinWidth,
		Spectrum: spectrum,
		Count:    d.SampleCount,
		Closed:   true,
	}
	if d.MinDB.Valid {
		b.MinDB = d.MinDB.Float64
	}
	if d.MaxDB.Valid {
		b.MaxDB = d.MaxDB.Float64
	}
	return b, nil
}
