// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ina226

import (
	"github.com/GermanBionicSystems/powermon/common"
	"periph.io/x/conn/v3/i2c"
)

// Registers gives access to the 16-bit registers of one device.
//
// Values are in the device's logical order; an implementation takes care of
// the byte order used on the wire.
type Registers interface {
	ReadRegister(reg uint8) (uint16, error)
	WriteRegister(reg uint8, v uint16) error
}

// i2cRegisters accesses the registers through periph.io. The device sends
// the most significant byte first.
type i2cRegisters struct {
	d *i2c.Dev
}

func (r *i2cRegisters) ReadRegister(reg uint8) (uint16, error) {
	var b [2]byte
	if err := r.d.Tx([]byte{reg}, b[:]); err != nil {
		return 0, &TransportError{Op: "read", Register: reg, Err: err}
	}
	return common.Word(b[:]), nil
}

func (r *i2cRegisters) WriteRegister(reg uint8, v uint16) error {
	w := []byte{reg, 0, 0}
	common.PutWord(w[1:], v)
	if err := r.d.Tx(w, nil); err != nil {
		return &TransportError{Op: "write", Register: reg, Err: err}
	}
	return nil
}

func (r *i2cRegisters) String() string {
	return r.d.String()
}
