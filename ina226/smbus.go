// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ina226

import (
	"fmt"

	"github.com/GermanBionicSystems/powermon/common"
	"github.com/go-daq/smbus"
)

// wordConn is the subset of *smbus.Conn used by SMBus.
type wordConn interface {
	ReadWord(addr, reg uint8) (uint16, error)
	WriteWord(addr, reg uint8, v uint16) error
	Close() error
}

// SMBus accesses the registers with SMBus word transfers on a Linux
// /dev/i2c-N character device.
//
// SMBus words travel least significant byte first so every word is swapped.
type SMBus struct {
	conn wordConn
	bus  int
	addr uint8
}

// OpenSMBus opens /dev/i2c-<bus> and selects addr.
func OpenSMBus(bus int, addr uint8) (*SMBus, error) {
	c, err := smbus.Open(bus, addr)
	if err != nil {
		return nil, fmt.Errorf("%w: i2c-%d address 0x%02x: %w", ErrDeviceNotFound, bus, addr, err)
	}
	return &SMBus{conn: c, bus: bus, addr: addr}, nil
}

// ReadRegister implements Registers.
func (s *SMBus) ReadRegister(reg uint8) (uint16, error) {
	v, err := s.conn.ReadWord(s.addr, reg)
	if err != nil {
		return 0, &TransportError{Op: "read", Register: reg, Err: err}
	}
	return common.Swap16(v), nil
}

// WriteRegister implements Registers.
func (s *SMBus) WriteRegister(reg uint8, v uint16) error {
	if err := s.conn.WriteWord(s.addr, reg, common.Swap16(v)); err != nil {
		return &TransportError{Op: "write", Register: reg, Err: err}
	}
	return nil
}

// Close closes the character device.
func (s *SMBus) Close() error {
	return s.conn.Close()
}

func (s *SMBus) String() string {
	return fmt.Sprintf("i2c-%d(0x%02x)", s.bus, s.addr)
}
