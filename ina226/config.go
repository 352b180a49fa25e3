// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ina226

import (
	"fmt"
	"strconv"
	"time"
)

// ConversionTime is the 3-bit code of an ADC conversion time.
type ConversionTime uint8

// Conversion times supported by the device.
const (
	ConversionTime140us ConversionTime = iota
	ConversionTime204us
	ConversionTime332us
	ConversionTime588us
	ConversionTime1100us
	ConversionTime2116us
	ConversionTime4156us
	ConversionTime8244us
)

// Duration returns the nominal time of one conversion.
func (c ConversionTime) Duration() time.Duration {
	return time.Duration(conversionTimes[c&fieldMask]) * time.Microsecond
}

func (c ConversionTime) String() string {
	if c > maxCode {
		return "ConversionTime(" + strconv.Itoa(int(c)) + ")"
	}
	return c.Duration().String()
}

// Averaging is the 3-bit code of the number of samples averaged per reading.
type Averaging uint8

// Sample counts supported by the device.
const (
	Averages1 Averaging = iota
	Averages4
	Averages16
	Averages64
	Averages128
	Averages256
	Averages512
	Averages1024
)

// Samples returns the number of samples averaged.
func (a Averaging) Samples() int {
	return int(averageSamples[a&fieldMask])
}

func (a Averaging) String() string {
	if a > maxCode {
		return "Averaging(" + strconv.Itoa(int(a)) + ")"
	}
	return strconv.Itoa(a.Samples()) + " samples"
}

// Mode is the 3-bit operating mode.
type Mode uint8

// Operating modes.
const (
	ModePowerDown Mode = iota
	ModeShuntTriggered
	ModeBusTriggered
	ModeShuntBusTriggered
	ModeADCOff
	ModeShuntContinuous
	ModeBusContinuous
	ModeShuntBusContinuous
)

// Config is the content of the configuration register.
type Config struct {
	BusConversion   ConversionTime
	ShuntConversion ConversionTime
	Averaging       Averaging
	Mode            Mode
}

// DefaultConfig converts both channels continuously in 8.244ms, averaging 16
// samples.
var DefaultConfig = Config{
	BusConversion:   ConversionTime8244us,
	ShuntConversion: ConversionTime8244us,
	Averaging:       Averages16,
	Mode:            ModeShuntBusContinuous,
}

const (
	maxCode        = 7
	fieldMask      = 0x07
	averagingShift = 9
	busShift       = 6
	shuntShift     = 3
)

// Validate returns ErrInvalidConfigurationCode if a field doesn't fit in
// three bits.
func (c Config) Validate() error {
	if c.BusConversion > maxCode {
		return fmt.Errorf("%w: bus conversion time %d", ErrInvalidConfigurationCode, c.BusConversion)
	}
	if c.ShuntConversion > maxCode {
		return fmt.Errorf("%w: shunt conversion time %d", ErrInvalidConfigurationCode, c.ShuntConversion)
	}
	if c.Averaging > maxCode {
		return fmt.Errorf("%w: averaging %d", ErrInvalidConfigurationCode, c.Averaging)
	}
	if c.Mode > maxCode {
		return fmt.Errorf("%w: mode %d", ErrInvalidConfigurationCode, c.Mode)
	}
	return nil
}

// Encode returns the configuration register word. Out of range fields are
// masked; call Validate first.
func (c Config) Encode() uint16 {
	return uint16(c.Averaging&fieldMask)<<averagingShift |
		uint16(c.BusConversion&fieldMask)<<busShift |
		uint16(c.ShuntConversion&fieldMask)<<shuntShift |
		uint16(c.Mode&fieldMask)
}

// DecodeConfig returns the fields of a configuration register word. The reset
// bit and the reserved bits are ignored.
func DecodeConfig(w uint16) Config {
	return Config{
		BusConversion:   ConversionTime(w >> busShift & fieldMask),
		ShuntConversion: ConversionTime(w >> shuntShift & fieldMask),
		Averaging:       Averaging(w >> averagingShift & fieldMask),
		Mode:            Mode(w & fieldMask),
	}
}

func (c Config) String() string {
	return fmt.Sprintf("bus=%s shunt=%s avg=%s mode=%d", c.BusConversion, c.ShuntConversion, c.Averaging, c.Mode)
}

// In µs, indexed by code.
var (
	conversionTimes = [8]uint32{140, 204, 332, 588, 1100, 2116, 4156, 8244}
	// Extra time per averaged sample, 10% of the conversion time.
	averageOverheads = [8]uint32{14, 20, 33, 59, 110, 212, 416, 824}
	averageSamples   = [8]uint32{1, 4, 16, 64, 128, 256, 512, 1024}
)

// WaitTime returns the expected duration of one complete measurement with c:
// a bus and a shunt conversion for each averaged sample, plus the averaging
// overhead of the slowest channel when more than one sample is taken.
func WaitTime(c Config) time.Duration {
	bus := c.BusConversion & fieldMask
	shunt := c.ShuntConversion & fieldMask
	avg := c.Averaging & fieldMask
	us := conversionTimes[bus] + conversionTimes[shunt]
	if avg != 0 {
		us += averageOverheads[max(bus, shunt)]
	}
	return time.Duration(us*averageSamples[avg]) * time.Microsecond
}
