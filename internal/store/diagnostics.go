package store

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/abhisek/geofix/internal/geo"
)

// ProviderFailure is one recorded provider failure notification.
type ProviderFailure struct {
	ID       int64  `db:"id"`
	QueryID  string `db:"query_id"`
	Code     string `db:"code"`
	Message  string `db:"message"`
	AtUnixMs int64  `db:"at_unix_ms"`
}

// At returns the failure time.
func (f ProviderFailure) At() time.Time {
	return time.UnixMilli(f.AtUnixMs).UTC()
}

// Fix is one recorded query resolution. Rejections carry zero
// coordinates and their outcome string.
type Fix struct {
	ID             int64   `db:"id"`
	QueryID        string  `db:"query_id"`
	Latitude       float64 `db:"lat"`
	Longitude      float64 `db:"lon"`
	AccuracyM      float64 `db:"accuracy_m"`
	SampleUnixMs   int64   `db:"sample_unix_ms"`
	ResolvedUnixMs int64   `db:"resolved_unix_ms"`
	Outcome        string  `db:"outcome"`
}

// SampleTime returns the fulfilling sample's measurement time.
func (f Fix) SampleTime() time.Time {
	return time.UnixMilli(f.SampleUnixMs).UTC()
}

// ResolvedAt returns the resolution time.
func (f Fix) ResolvedAt() time.Time {
	return time.UnixMilli(f.ResolvedUnixMs).UTC()
}

// DiagnosticsRepo records and queries failure and fix history.
// It satisfies the arbiter's Recorder interface.
type DiagnosticsRepo struct {
	db *sqlx.DB
}

// RecordFailure stores one provider failure notification.
func (r *DiagnosticsRepo) RecordFailure(queryID string, cause error, at time.Time) error {
	_, err := r.db.Exec(
		`INSERT INTO provider_failures (query_id, code, message, at_unix_ms) VALUES (?, ?, ?, ?)`,
		queryID, codeFor(cause), cause.Error(), at.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("record provider failure: %w", err)
	}
	return nil
}

// RecordFix stores one query resolution.
func (r *DiagnosticsRepo) RecordFix(queryID string, s geo.Sample, outcome string, at time.Time) error {
	var sampleMs int64
	if !s.Time.IsZero() {
		sampleMs = s.Time.UnixMilli()
	}
	_, err := r.db.Exec(
		`INSERT INTO fixes (query_id, lat, lon, accuracy_m, sample_unix_ms, resolved_unix_ms, outcome)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		queryID, s.Latitude, s.Longitude, s.AccuracyM, sampleMs, at.UnixMilli(), outcome,
	)
	if err != nil {
		return fmt.Errorf("record fix: %w", err)
	}
	return nil
}

// RecentFailures returns up to limit failures, newest first.
func (r *DiagnosticsRepo) RecentFailures(limit int) ([]ProviderFailure, error) {
	var out []ProviderFailure
	err := r.db.Select(&out,
		`SELECT * FROM provider_failures ORDER BY at_unix_ms DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query provider failures: %w", err)
	}
	return out, nil
}

// RecentFixes returns up to limit resolutions, newest first.
func (r *DiagnosticsRepo) RecentFixes(limit int) ([]Fix, error) {
	var out []Fix
	err := r.db.Select(&out,
		`SELECT * FROM fixes ORDER BY resolved_unix_ms DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query fixes: %w", err)
	}
	return out, nil
}

// codeFor collapses a failure cause into a short stable code for the
// failures table.
func codeFor(err error) string {
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return "network_timeout"
		}
		return "network"
	}
	return "provider"
}
