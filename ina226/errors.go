// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ina226

import (
	"errors"
	"fmt"
)

var (
	// ErrDeviceNotFound is returned when the bus can't be opened or the chip
	// doesn't identify itself as an INA226.
	ErrDeviceNotFound = errors.New("ina226: device not found")
	// ErrCalibrationOverflow is returned when the shunt resistance and the
	// maximum current don't produce a calibration value in [1, 65535].
	ErrCalibrationOverflow = errors.New("ina226: calibration out of range")
	// ErrInvalidConfigurationCode is returned when a configuration field is
	// outside of 0-7.
	ErrInvalidConfigurationCode = errors.New("ina226: invalid configuration code")
	// ErrConversionTimeout is returned by Wait when the conversion ready flag
	// never shows up.
	ErrConversionTimeout = errors.New("ina226: timed out waiting for conversion")
)

// TransportError is returned when a register transfer fails.
type TransportError struct {
	// Op is either "read" or "write".
	Op       string
	Register uint8
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("ina226: %s register 0x%02x: %v", e.Op, e.Register, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
