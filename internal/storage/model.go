package storage

import (
	"database/sql"
	"time"
)

// Session describes one recorded monitoring run.
type Session struct {
	ID        int64
	StartTime time.Time
	Source    string // capture backend, e.g. "alsa"
	DeviceID  string
	Config    *string // backend configuration as JSON, if recorded
}

// bucketData is the row shape for one closed bucket. min_db and max_db are
// NULL for empty (no-data) buckets.
type bucketData struct {
	SessionID   int64
	StartTime   time.Time
	EndTime     time.Time
	MinDB       sql.NullFloat64
	MaxDB       sql.NullFloat64
	BinWidth    float64
	Spectrum    []byte // mean spectrum as little-endian float64s
	SampleCount int
}
