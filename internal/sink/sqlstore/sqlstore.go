// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package sqlstore persists records in a SQLite database.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/GermanBionicSystems/powermon/internal/sampler"
	"go.uber.org/multierr"

	// Registers the "sqlite" driver.
	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS readings (
	unix_timestamp   INTEGER NOT NULL,
	bus_voltage_v    REAL NOT NULL,
	current_ma       REAL NOT NULL,
	power_mw         REAL NOT NULL,
	shunt_voltage_mv REAL NOT NULL
)`

// Store is a sampler.Sink appending to the readings table.
type Store struct {
	db     *sql.DB
	insert *sql.Stmt
}

// Open opens or creates the database at path and the readings table.
// ":memory:" gives a private in-memory database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: %w", err)
	}
	// Every connection to ":memory:" is a different database.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlstore: create table: %w", err)
	}
	insert, err := db.Prepare(`INSERT INTO readings
		(unix_timestamp, bus_voltage_v, current_ma, power_mw, shunt_voltage_mv)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlstore: %w", err)
	}
	return &Store{db: db, insert: insert}, nil
}

// Write implements sampler.Sink.
func (s *Store) Write(rec sampler.Record) error {
	if _, err := s.insert.Exec(rec.Time.Unix(), rec.BusVoltage, rec.Current, rec.Power, rec.ShuntVoltage); err != nil {
		return fmt.Errorf("sqlstore: insert: %w", err)
	}
	return nil
}

// Since returns the records stored at or after t, oldest first.
func (s *Store) Since(ctx context.Context, t time.Time) ([]sampler.Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT unix_timestamp, bus_voltage_v, current_ma, power_mw, shunt_voltage_mv
		FROM readings WHERE unix_timestamp >= ? ORDER BY unix_timestamp, rowid`, t.Unix())
	if err != nil {
		return nil, fmt.Errorf("sqlstore: query: %w", err)
	}
	defer rows.Close()
	var out []sampler.Record
	for rows.Next() {
		var ts int64
		var r sampler.Record
		if err := rows.Scan(&ts, &r.BusVoltage, &r.Current, &r.Power, &r.ShuntVoltage); err != nil {
			return nil, fmt.Errorf("sqlstore: scan: %w", err)
		}
		r.Time = time.Unix(ts, 0)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close implements sampler.Sink.
func (s *Store) Close() error {
	return multierr.Combine(s.insert.Close(), s.db.Close())
}

var _ sampler.Sink = &Store{}
