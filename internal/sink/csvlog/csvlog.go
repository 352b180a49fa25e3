// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package csvlog writes records as comma separated lines:
//
//	date,time,unix,bus_voltage_V,current_mA,power_mW,shunt_voltage_mV
//	2024-03-01,12:00:00,1709294400,5.024,245.38,1233,2.454
package csvlog

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/GermanBionicSystems/powermon/internal/sampler"
)

// Writer is a sampler.Sink writing one line per record.
type Writer struct {
	w   *csv.Writer
	c   io.Closer
	loc *time.Location
}

// New returns a Writer on w. Times are printed in loc, local time if nil.
//
// w is not closed by Close.
func New(w io.Writer, loc *time.Location) *Writer {
	if loc == nil {
		loc = time.Local
	}
	return &Writer{w: csv.NewWriter(w), loc: loc}
}

// NewCloser is like New but Close also closes wc.
func NewCloser(wc io.WriteCloser, loc *time.Location) *Writer {
	l := New(wc, loc)
	l.c = wc
	return l
}

// Write implements sampler.Sink. Each line is flushed immediately.
func (l *Writer) Write(rec sampler.Record) error {
	t := rec.Time.In(l.loc)
	err := l.w.Write([]string{
		t.Format(time.DateOnly),
		t.Format(time.TimeOnly),
		strconv.FormatInt(t.Unix(), 10),
		strconv.FormatFloat(rec.BusVoltage, 'f', 3, 64),
		strconv.FormatFloat(rec.Current, 'f', 2, 64),
		strconv.FormatFloat(rec.Power, 'f', 0, 64),
		strconv.FormatFloat(rec.ShuntVoltage, 'f', 3, 64),
	})
	if err != nil {
		return err
	}
	l.w.Flush()
	return l.w.Error()
}

// Close implements sampler.Sink.
func (l *Writer) Close() error {
	l.w.Flush()
	if err := l.w.Error(); err != nil {
		return err
	}
	if l.c != nil {
		return l.c.Close()
	}
	return nil
}

var _ sampler.Sink = &Writer{}
