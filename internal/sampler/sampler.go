// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package sampler reads an ina226 periodically and hands each record to a set
// of sinks.
package sampler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/GermanBionicSystems/powermon/ina226"
	"github.com/edaniels/golog"
	"github.com/jonboulle/clockwork"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Source is the part of *ina226.Dev used by the sampler.
type Source interface {
	Wait() error
	Read(f ina226.Fields) (ina226.Reading, error)
}

// Record is one timestamped measurement.
type Record struct {
	Time         time.Time
	BusVoltage   float64 // V
	Current      float64 // mA
	Power        float64 // mW
	ShuntVoltage float64 // mV
}

// Sink persists or displays records.
type Sink interface {
	Write(rec Record) error
	Close() error
}

// Config configures a Sampler.
type Config struct {
	// Interval between two samples. Required.
	Interval time.Duration
	// NominalVoltage, when positive, replaces the power measured by the device
	// with Current × NominalVoltage. Useful when the shunt is on the low side
	// and the bus voltage is not the supply voltage.
	NominalVoltage float64

	Clock  clockwork.Clock
	Logger golog.Logger
}

// Sampler drives one Source.
type Sampler struct {
	cfg   Config
	src   Source
	sinks []Sink
}

// New returns a Sampler reading src every cfg.Interval.
func New(cfg Config, src Source, sinks ...Sink) (*Sampler, error) {
	if src == nil {
		return nil, errors.New("sampler: source required")
	}
	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("sampler: invalid interval %s", cfg.Interval)
	}
	if cfg.NominalVoltage < 0 {
		return nil, fmt.Errorf("sampler: invalid nominal voltage %g", cfg.NominalVoltage)
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop().Sugar()
	}
	return &Sampler{cfg: cfg, src: src, sinks: sinks}, nil
}

// SampleOnce waits for a conversion and returns the measurements.
func (s *Sampler) SampleOnce() (Record, error) {
	if err := s.src.Wait(); err != nil {
		return Record{}, fmt.Errorf("sampler: %w", err)
	}
	r, err := s.src.Read(ina226.FieldAll)
	if err != nil {
		return Record{}, fmt.Errorf("sampler: %w", err)
	}
	rec := Record{
		Time:         s.cfg.Clock.Now(),
		BusVoltage:   r.BusVoltage,
		Current:      r.Current,
		Power:        r.Power,
		ShuntVoltage: r.ShuntVoltage,
	}
	if s.cfg.NominalVoltage > 0 {
		rec.Power = rec.Current * s.cfg.NominalVoltage
	}
	return rec, nil
}

// Publish writes rec to every sink. A failing sink doesn't prevent the
// others from receiving rec.
func (s *Sampler) Publish(rec Record) error {
	var err error
	for _, sk := range s.sinks {
		err = multierr.Append(err, sk.Write(rec))
	}
	return err
}

// Run samples until ctx is canceled or the device fails.
//
// Sink errors are logged and sampling continues.
func (s *Sampler) Run(ctx context.Context) error {
	t := s.cfg.Clock.NewTicker(s.cfg.Interval)
	defer t.Stop()
	s.cfg.Logger.Debugw("sampling", "interval", s.cfg.Interval, "sinks", len(s.sinks))
	for n := 0; ; n++ {
		rec, err := s.SampleOnce()
		if err != nil {
			return err
		}
		if err := s.Publish(rec); err != nil {
			s.cfg.Logger.Warnw("sink write failed", "sample", n, "error", err)
		}
		// A pending tick must not win over a cancellation.
		if ctx.Err() != nil {
			s.cfg.Logger.Debugw("sampling stopped", "samples", n+1)
			return nil
		}
		select {
		case <-ctx.Done():
			s.cfg.Logger.Debugw("sampling stopped", "samples", n+1)
			return nil
		case <-t.Chan():
		}
	}
}

// Close closes every sink.
func (s *Sampler) Close() error {
	var err error
	for _, sk := range s.sinks {
		err = multierr.Append(err, sk.Close())
	}
	return err
}
