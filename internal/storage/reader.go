package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dwmair/daymeter/internal/meter"
)

// ErrNoData indicates that no buckets exist for the given parameters.
var ErrNoData = errors.New("no data available")

// BucketReader provides an iterator-based interface for reading a session's
// buckets with optional time filtering.
type BucketReader interface {
	// Session returns metadata about the session this reader is accessing.
	Session() *Session

	// Next advances the iterator and returns true if there is another bucket
	// to read, false when the iteration is complete or if an error occurred.
	Next(context.Context) bool

	// Current returns the current bucket in the iteration.
	// If called after Next() returns false, the behavior is undefined.
	Current() meter.Bucket

	// Error returns any error that occurred during iteration.
	Error() error

	// Close releases any resources associated with the reader.
	// After Close is called, the reader should not be used.
	Close() error
}

// ReaderOption configures a BucketReader with specific filtering criteria.
type ReaderOption func(*SqliteBucketReader)

// WithStartTime excludes buckets that end at or before t.
func WithStartTime(t time.Time) ReaderOption {
	return func(r *SqliteBucketReader) {
		r.startTime = &t
	}
}

// WithEndTime excludes buckets that start at or after t.
func WithEndTime(t time.Time) ReaderOption {
	return func(r *SqliteBucketReader) {
		r.endTime = &t
	}
}

// WithTimeRange sets both start and end time filters.
func WithTimeRange(startTime, endTime time.Time) ReaderOption {
	return func(r *SqliteBucketReader) {
		r.startTime = &startTime
		r.endTime = &endTime
	}
}

// SqliteBucketReader implements BucketReader for SQLite database backend.
type SqliteBucketReader struct {
	db *sql.DB

	sessionID int64
	session   *Session

	startTime *time.Time
	endTime   *time.Time

	current meter.Bucket
	rows    *sql.Rows
	err     error
}

func newSqliteBucketReader(ctx context.Context, db *sql.DB, sessionID int64, opts ...ReaderOption) (*SqliteBucketReader, error) {
	br := &SqliteBucketReader{
		db:        db,
		sessionID: sessionID,
	}
	for _, opt := range opts {
		opt(br)
	}
	if err := br.init(ctx); err != nil {
		return nil, fmt.Errorf("initializing reader: %w", err)
	}
	return br, nil
}

func (br *SqliteBucketReader) init(ctx context.Context) error {
	if br.db == nil {
		return errors.New("database connection required")
	}
	if br.sessionID <= 0 {
		return errors.New("session ID required")
	}
	if br.startTime != nil && br.endTime != nil && br.startTime.After(*br.endTime) {
		return fmt.Errorf("start time %s is after end time %s", br.startTime, br.endTime)
	}

	if err := br.loadSession(ctx); err != nil {
		return fmt.Errorf("loading session: %w", err)
	}
	if err := br.initQuery(ctx); err != nil {
		return fmt.Errorf("initializing query: %w", err)
	}
	return nil
}

func (br *SqliteBucketReader) loadSession(ctx context.Context) (err error) {
	stmt, err := br.db.PrepareContext(ctx, selectSessionSQL)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer closeWithError(stmt, &err)

	var sess Session
	var config sql.NullString
	if err = stmt.QueryRowContext(ctx, br.sessionID).Scan(&sess.ID, &sess.StartTime, &sess.Source, &sess.DeviceID, &config); err != nil {
		return fmt.Errorf("querying session: %w", err)
	}
	if config.Valid {
		sess.Config = &config.String
	}

	br.session = &sess
	return
}

func (br *SqliteBucketReader) initQuery(ctx context.Context) (err error) {
	var sb strings.Builder
	sb.WriteString(selectBucketsSQL)

	args := []any{br.sessionID}
	if br.startTime != nil {
		sb.WriteString(" AND end_time > ?")
		args = append(args, br.startTime.UTC())
	}
	if br.endTime != nil {
		sb.WriteString(" AND start_time < ?")
		args = append(args, br.endTime.UTC())
	}
	sb.WriteString(" ORDER BY start_time")

	stmt, err := br.db.PrepareContext(ctx, sb.String())
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer closeWithError(stmt, &err)

	if br.rows, err = stmt.QueryContext(ctx, args...); err != nil {
		return err
	}
	return nil
}

func (br *SqliteBucketReader) Session() *Session {
	return br.session
}

func (br *SqliteBucketReader) Next(ctx context.Context) bool {
	if br.err != nil || br.rows == nil {
		return false
	}

	select {
	case <-ctx.Done():
		br.err = ctx.Err()
		return false
	default:
	}

	if !br.rows.Next() {
		return false
	}

	var data bucketData
	if br.err = br.rows.Scan(
		&data.StartTime,
		&data.EndTime,
		&data.MinDB,
		&data.MaxDB,
		&data.BinWidth,
		&data.Spectrum,
		&data.SampleCount,
	); br.err != nil {
		br.err = fmt.Errorf("scanning bucket: %w", br.err)
		return false
	}

	if br.current, br.err = toBucket(data); br.err != nil {
		return false
	}
	return true
}

func (br *SqliteBucketReader) Current() meter.Bucket {
	return br.current
}

func (br *SqliteBucketReader) Error() error {
	if br.err != nil {
		return br.err
	}
	if br.rows != nil {
		return br.rows.Err()
	}
	return nil
}

func (br *SqliteBucketReader) Close() error {
	if br.rows != nil {
		err := br.rows.Close()
		br.rows = nil
		return err
	}
	return nil
}
