// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ina226

// DefaultAddress is the i2c address with A0 and A1 tied to GND.
const DefaultAddress uint16 = 0x40

const (
	regConfiguration  uint8 = 0x00 // CONFIGURATION REGISTER (R/W)
	regShuntVoltage   uint8 = 0x01 // SHUNT VOLTAGE REGISTER (R)
	regBusVoltage     uint8 = 0x02 // BUS VOLTAGE REGISTER (R)
	regPower          uint8 = 0x03 // POWER REGISTER (R)
	regCurrent        uint8 = 0x04 // CURRENT REGISTER (R)
	regCalibration    uint8 = 0x05 // CALIBRATION REGISTER (R/W)
	regMaskEnable     uint8 = 0x06 // MASK/ENABLE REGISTER (R/W)
	regManufacturerID uint8 = 0xFE // MANUFACTURER ID REGISTER (R)
	regDieID          uint8 = 0xFF // DIE ID REGISTER (R)
)

const (
	// "TI" in ASCII.
	manufacturerTI uint16 = 0x5449

	// Conversion Ready Flag in the mask/enable register.
	flagConversionReady uint16 = 1 << 3

	wordReset     uint16 = 1 << 15
	wordPowerDown uint16 = 0x0000
)

const (
	// Fixed internal value used to scale the calibration register.
	calibrationScale = 0.00512
	// The current register is a signed 16-bit value.
	currentSteps = 1 << 15

	busVoltageLSB   = 1.25e-3 // V
	shuntVoltageLSB = 2.5e-3  // mV
	powerLSBRatio   = 25
)
