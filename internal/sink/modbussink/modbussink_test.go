// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package modbussink

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/GermanBionicSystems/powermon/internal/sampler"
)

type fakeWriter struct {
	unitID uint8
	addr   uint16
	regs   []uint16
	err    error
	closed bool
}

func (f *fakeWriter) WriteRegisters(unitID uint8, addr uint16, regs []uint16) error {
	f.unitID = unitID
	f.addr = addr
	f.regs = append([]uint16(nil), regs...)
	return f.err
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestEncode(t *testing.T) {
	regs := Encode(sampler.Record{Time: time.Unix(0x6553f100, 0), BusVoltage: 1, Current: -2, Power: 0.5, ShuntVoltage: 0})
	want := []uint16{0x6553, 0xf100, 0x3f80, 0x0000, 0xc000, 0x0000, 0x3f00, 0x0000, 0x0000, 0x0000}
	if len(regs) != RecordRegisters {
		t.Fatalf("got %d registers", len(regs))
	}
	for i := range want {
		if regs[i] != want[i] {
			t.Errorf("register %d = 0x%04x, want 0x%04x", i, regs[i], want[i])
		}
	}
	v := math.Float32frombits(uint32(regs[4])<<16 | uint32(regs[5]))
	if v != -2 {
		t.Errorf("decoded current %g", v)
	}
}

func TestSink(t *testing.T) {
	f := &fakeWriter{}
	s, err := New(f, 3, 100)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Write(sampler.Record{Time: time.Unix(1, 0), Current: 1}); err != nil {
		t.Fatal(err)
	}
	if f.unitID != 3 || f.addr != 100 || len(f.regs) != RecordRegisters {
		t.Errorf("wrote unit=%d addr=%d %d registers", f.unitID, f.addr, len(f.regs))
	}
	f.err = errors.New("connection reset")
	if err := s.Write(sampler.Record{}); !errors.Is(err, f.err) {
		t.Errorf("expected the client error, got %v", err)
	}
	if err := s.Close(); err != nil || !f.closed {
		t.Errorf("Close() = %v, closed=%t", err, f.closed)
	}
}

func TestNew_AddressOverflow(t *testing.T) {
	if _, err := New(&fakeWriter{}, 1, 0xfff8); err == nil {
		t.Error("expected an error")
	}
	if _, err := New(&fakeWriter{}, 1, 0xfff6); err != nil {
		t.Errorf("last valid address rejected: %v", err)
	}
}

func TestDial(t *testing.T) {
	if _, err := Dial("", time.Second); err == nil {
		t.Error("expected an error without endpoint")
	}
}
