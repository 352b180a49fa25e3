// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package ina226 controls a Texas Instruments INA226 current, voltage and
// power monitor IC over an i2c bus.
//
// The device measures the voltage across an external shunt resistor and the
// bus voltage. Current and power are computed by the chip once the
// calibration register has been written, see Dev.Calibrate.
//
// Registers can be reached through a periph.io i2c.Bus (NewI2C) or through a
// Linux SMBus character device (NewSMBus).
//
// # Datasheet
//
// https://www.ti.com/lit/ds/symlink/ina226.pdf
package ina226
