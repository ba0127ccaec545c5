package storage

import (
	_ "embed"
)

const (
	insertSessionSQL = `
INSERT INTO sessions (
                      start_time,
                      source,
                      device_id,
                      config)
VALUES (CURRENT_TIMESTAMP, ?, ?, ?)`

	selectSessionSQL = `
SELECT
    id,
    start_time,
    source,
    device_id,
    config
FROM sessions
WHERE
    id = ?`

	selectSessionsSQL = `
SELECT
    id,
    start_time,
    source,
    device_id,
    config
FROM sessions
ORDER BY start_time`

	insertBucketSQL = `
INSERT INTO buckets (session_id,
                     start_time,
                     end_time,
                     min_db,
                     max_db,
                     bin_width,
                     spectrum,
                     sample_count)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	selectBucketsSQL = `
SELECT
    start_time,
    end_time,
    min_db,
    max_db,
    bin_width,
    spectrum,
    sample_count
FROM buckets
WHERE
    session_id = ?`
)

//go:embed schema.sql
var schemaSQL string
