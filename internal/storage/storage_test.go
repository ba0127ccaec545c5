package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/dwmair/daymeter/internal/meter"
)

func TestSpectrumBlobRoundTrip(t *testing.T) {
	in := []float64{0, 1.5, -3.25, 0.371}

	out, err := decodeSpectrum(encodeSpectrum(in))
	if err != nil {
		t.Fatalf("decodeSpectrum: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("expected %d magnitudes, got %d", len(in), len(out))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("magnitude %d = %f, want %f", i, out[i], in[i])
		}
	}

	if got, err := decodeSpectrum(nil); err != nil || got != nil {
		t.Errorf("decodeSpectrum(nil) = %v, %v, want nil, nil", got, err)
	}
	if _, err := decodeSpectrum([]byte{1, 2, 3}); err == nil {
		t.Error("expected error for truncated blob")
	}
}

func TestBucketConversion_EmptyBucket(t *testing.T) {
	start := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	b := meter.Bucket{
		Start:  start,
		End:    start.Add(3 * time.Minute),
		Closed: true,
	}

	data := toBucketData(7, b)
	if data.MinDB.Valid || data.MaxDB.Valid {
		t.Error("empty bucket must store NULL min/max")
	}
	if data.Spectrum != nil {
		t.Error("empty bucket must store no spectrum blob")
	}

	back, err := toBucket(data)
	if err != nil {
		t.Fatalf("toBucket: %v", err)
	}
	if back.HasData() {
		t.Error("restored empty bucket must report no data")
	}
	if !back.Start.Equal(b.Start) || !back.End.Equal(b.End) {
		t.Errorf("restored bounds = [%s, %s], want [%s, %s]", back.Start, back.End, b.Start, b.End)
	}
}

func TestSqliteStore_RoundTrip(t *testing.T) {
	store := NewSqliteStore(filepath.Join(t.TempDir(), "meter.db"))
	defer store.Close()

	ctx := context.Background()

	sessionID, err := store.CreateSession(ctx, "alsa", "hw:0,0", map[string]any{"rate": 48000})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if sessionID <= 0 {
		t.Fatalf("session ID = %d, want > 0", sessionID)
	}

	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	slot := 3 * time.Minute

	buckets := []meter.Bucket{
		{
			Start:    start,
			End:      start.Add(slot),
			MinDB:    -60.5,
			MaxDB:    -42.0,
			Spectrum: []float64{0.1, 0.2, 0.3},
			BinWidth: 46.875,
			Count:    18,
			Closed:   true,
		},
		{
			Start:  start.Add(slot),
			End:    start.Add(2 * slot),
			Closed: true, // empty slot
		},
		{
			Start:    start.Add(2 * slot),
			End:      start.Add(3 * slot),
			MinDB:    -55.0,
			MaxDB:    -55.0,
			Spectrum: []float64{0.4, 0.5, 0.6},
			BinWidth: 46.875,
			Count:    1,
			Closed:   true,
		},
	}

	if err = store.StoreBuckets(ctx, sessionID, buckets); err != nil {
		t.Fatalf("StoreBuckets: %v", err)
	}

	sess, err := store.Session(ctx, sessionID)
	if err != nil {
		t.Fatalf("Session: %v", err)
	}
	if sess.Source != "alsa" || sess.DeviceID != "hw:0,0" {
		t.Errorf("session = %+v, want source alsa, device hw:0,0", sess)
	}
	if sess.Config == nil {
		t.Error("session config must be recorded")
	}

	reader, err := store.ReadBuckets(ctx, sessionID)
	if err != nil {
		t.Fatalf("ReadBuckets: %v", err)
	}
	defer reader.Close()

	var got []meter.Bucket
	for reader.Next(ctx) {
		got = append(got, reader.Current())
	}
	if err = reader.Error(); err != nil {
		t.Fatalf("reader error: %v", err)
	}

	if len(got) != len(buckets) {
		t.Fatalf("read %d buckets, want %d", len(got), len(buckets))
	}
	for i, want := range buckets {
		b := got[i]
		if !b.Start.Equal(want.Start) || !b.End.Equal(want.End) {
			t.Errorf("bucket %d bounds = [%s, %s], want [%s, %s]", i, b.Start, b.End, want.Start, want.End)
		}
		if b.HasData() != want.HasData() {
			t.Errorf("bucket %d HasData = %v, want %v", i, b.HasData(), want.HasData())
		}
		if b.HasData() {
			if b.MinDB != want.MinDB || b.MaxDB != want.MaxDB {
				t.Errorf("bucket %d min/max = %f/%f, want %f/%f", i, b.MinDB, b.MaxDB, want.MinDB, want.MaxDB)
			}
			if len(b.Spectrum) != len(want.Spectrum) {
				t.Fatalf("bucket %d spectrum length = %d, want %d", i, len(b.Spectrum), len(want.Spectrum))
			}
			for j := range want.Spectrum {
				if b.Spectrum[j] != want.Spectrum[j] {
					t.Errorf("bucket %d magnitude %d = %f, want %f", i, j, b.Spectrum[j], want.Spectrum[j])
				}
			}
		}
	}
}

func TestSqliteStore_ReadBucketsTimeRange(t *testing.T) {
	store := NewSqliteStore(filepath.Join(t.TempDir(), "meter.db"))
	defer store.Close()

	ctx := context.Background()

	sessionID, err := store.CreateSession(ctx, "pulse", "default", nil)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	slot := 3 * time.Minute

	var buckets []meter.Bucket
	for i := 0; i < 10; i++ {
		buckets = append(buckets, meter.Bucket{
			Start:  start.Add(time.Duration(i) * slot),
			End:    start.Add(time.Duration(i+1) * slot),
			MinDB:  -50,
			MaxDB:  -40,
			Count:  1,
			Closed: true,
		})
	}
	if err = store.StoreBuckets(ctx, sessionID, buckets); err != nil {
		t.Fatalf("StoreBuckets: %v", err)
	}

	// Buckets 2..5 overlap [start+2*slot, start+6*slot).
	reader, err := store.ReadBuckets(ctx, sessionID,
		WithTimeRange(start.Add(2*slot), start.Add(6*slot)))
	if err != nil {
		t.Fatalf("ReadBuckets: %v", err)
	}
	defer reader.Close()

	var n int
	var prev time.Time
	for reader.Next(ctx) {
		b := reader.Current()
		if n > 0 && !b.Start.After(prev) {
			t.Error("buckets must be ordered by start time")
		}
		prev = b.Start
		n++
	}
	if err = reader.Error(); err != nil {
		t.Fatalf("reader error: %v", err)
	}
	if n != 4 {
		t.Errorf("read %d buckets, want 4", n)
	}
}

func TestSqliteStore_RejectsOpenBucket(t *testing.T) {
	store := NewSqliteStore(filepath.Join(t.TempDir(), "meter.db"))
	defer store.Close()

	ctx := context.Background()

	sessionID, err := store.CreateSession(ctx, "alsa", "hw:0,0", nil)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	open := meter.Bucket{Start: time.Now(), End: time.Now().Add(3 * time.Minute)}
	if err = store.StoreBuckets(ctx, sessionID, []meter.Bucket{open}); err == nil {
		t.Error("expected error when storing an open bucket")
	}
}
