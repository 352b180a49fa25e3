// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package csvlog

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/GermanBionicSystems/powermon/internal/sampler"
)

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, time.UTC)
	recs := []sampler.Record{
		{Time: time.Unix(1709294400, 0), BusVoltage: 5.0236, Current: 245.378, Power: 1232.8, ShuntVoltage: 2.4537},
		{Time: time.Unix(1709294401, 0), BusVoltage: 0, Current: -0.1, Power: -2.5, ShuntVoltage: -0.0025},
	}
	for _, r := range recs {
		if err := l.Write(r); err != nil {
			t.Fatal(err)
		}
	}
	want := "2024-03-01,12:00:00,1709294400,5.024,245.38,1233,2.454\n" +
		"2024-03-01,12:00:01,1709294401,0.000,-0.10,-2,-0.003\n"
	if got := buf.String(); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("broken pipe")
}

func TestWrite_Error(t *testing.T) {
	l := New(failingWriter{}, time.UTC)
	if err := l.Write(sampler.Record{Time: time.Unix(0, 0)}); err == nil {
		t.Fatal("expected an error")
	}
}

type closer struct {
	bytes.Buffer
	closed bool
}

func (c *closer) Close() error {
	c.closed = true
	return nil
}

func TestClose(t *testing.T) {
	c := &closer{}
	l := NewCloser(c, nil)
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}
	if !c.closed {
		t.Error("underlying writer not closed")
	}
}

func TestClose_Borrowed(t *testing.T) {
	c := &closer{}
	l := New(c, time.UTC)
	if err := l.Write(sampler.Record{Time: time.Unix(0, 0)}); err != nil {
		t.Fatal(err)
	}
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}
	if c.closed {
		t.Fatal("Close closed a writer it doesn't own")
	}
	if _, err := c.WriteString("still open\n"); err != nil {
		t.Fatal(err)
	}
}
