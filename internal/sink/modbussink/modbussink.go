// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package modbussink publishes records as holding registers on a Modbus TCP
// server.
//
// A record takes RecordRegisters consecutive registers starting at the
// configured address:
//
//	+0  unix time, uint32, high word first
//	+2  bus voltage in V, float32
//	+4  current in mA, float32
//	+6  power in mW, float32
//	+8  shunt voltage in mV, float32
//
// Float values are IEEE 754, high word first.
package modbussink

import (
	"fmt"

	"github.com/GermanBionicSystems/powermon/common"
	"github.com/GermanBionicSystems/powermon/internal/sampler"
)

// RecordRegisters is the number of registers written per record.
const RecordRegisters = 10

// RegisterWriter writes holding registers to one unit.
type RegisterWriter interface {
	WriteRegisters(unitID uint8, addr uint16, regs []uint16) error
	Close() error
}

// Sink is a sampler.Sink writing each record to the same registers.
type Sink struct {
	w       RegisterWriter
	unitID  uint8
	address uint16
}

// New returns a Sink writing through w.
func New(w RegisterWriter, unitID uint8, address uint16) (*Sink, error) {
	if int(address)+RecordRegisters > 0x10000 {
		return nil, fmt.Errorf("modbussink: address %d leaves no room for %d registers", address, RecordRegisters)
	}
	return &Sink{w: w, unitID: unitID, address: address}, nil
}

// Encode returns the registers of rec.
func Encode(rec sampler.Record) []uint16 {
	regs := make([]uint16, 0, RecordRegisters)
	ts := common.Uint32Registers(uint32(rec.Time.Unix()))
	regs = append(regs, ts[:]...)
	for _, v := range []float64{rec.BusVoltage, rec.Current, rec.Power, rec.ShuntVoltage} {
		f := common.Float32Registers(float32(v))
		regs = append(regs, f[:]...)
	}
	return regs
}

// Write implements sampler.Sink.
func (s *Sink) Write(rec sampler.Record) error {
	if err := s.w.WriteRegisters(s.unitID, s.address, Encode(rec)); err != nil {
		return fmt.Errorf("modbussink: unit=%d addr=%d: %w", s.unitID, s.address, err)
	}
	return nil
}

// Close implements sampler.Sink.
func (s *Sink) Close() error {
	return s.w.Close()
}

var _ sampler.Sink = &Sink{}
