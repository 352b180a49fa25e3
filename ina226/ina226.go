// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ina226

import (
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// Opts holds the configuration applied when the device is opened.
//
// Zero values are replaced with the corresponding value of DefaultOpts.
type Opts struct {
	// ShuntResistance is the value of the external sense resistor.
	ShuntResistance physic.ElectricResistance
	// MaxCurrent is the largest current expected through the shunt.
	MaxCurrent physic.ElectricCurrent
	// Config is written after calibration. nil selects DefaultConfig.
	Config *Config

	// MaxPolls bounds the number of conversion ready polls done by Wait
	// after the computed wait time elapsed.
	MaxPolls int
	// PollInterval is the initial delay between two polls. It doubles after
	// each poll up to MaxPollInterval.
	PollInterval    time.Duration
	MaxPollInterval time.Duration

	// Clock is used for the delays in Wait. Defaults to the real clock.
	Clock clockwork.Clock
}

// DefaultOpts is a 10mΩ shunt with a 4A range.
var DefaultOpts = Opts{
	ShuntResistance: 10 * physic.MilliOhm,
	MaxCurrent:      4 * physic.Ampere,
	Config:          &DefaultConfig,
	MaxPolls:        64,
	PollInterval:    100 * time.Microsecond,
	MaxPollInterval: 10 * time.Millisecond,
}

// Calibration is the result of ComputeCalibration.
type Calibration struct {
	// CurrentLSB is the current represented by one step of the current
	// register, in A.
	CurrentLSB float64
	// Register is the value written to the calibration register.
	Register uint16
}

// ComputeCalibration returns the calibration register value for a shunt of
// shuntOhm Ω and a maximum expected current of maxAmp A.
//
// The current LSB is derived back from the truncated register value so that
// conversions stay exact.
func ComputeCalibration(shuntOhm, maxAmp float64) (Calibration, error) {
	raw := math.Floor(calibrationScale / (maxAmp / currentSteps * shuntOhm))
	// Negated to also catch NaN.
	if !(raw >= 1 && raw <= math.MaxUint16) {
		return Calibration{}, fmt.Errorf("%w: shunt %gΩ and max current %gA give %g", ErrCalibrationOverflow, shuntOhm, maxAmp, raw)
	}
	reg := uint16(raw)
	return Calibration{
		CurrentLSB: calibrationScale / (shuntOhm * float64(reg)),
		Register:   reg,
	}, nil
}

// Fields selects the measurements returned by Read.
type Fields uint8

// Measurements that can be read.
const (
	FieldBusVoltage Fields = 1 << iota
	FieldCurrent
	FieldPower
	FieldShuntVoltage

	FieldAll = FieldBusVoltage | FieldCurrent | FieldPower | FieldShuntVoltage
)

// Reading is the result of Read. Only the measurements listed in Fields are
// populated.
type Reading struct {
	BusVoltage   float64 // V
	Current      float64 // mA
	Power        float64 // mW
	ShuntVoltage float64 // mV

	Fields Fields
}

// PowerMonitor represents measurements from the device in physic units.
type PowerMonitor struct {
	Shunt   physic.ElectricPotential
	Voltage physic.ElectricPotential
	Current physic.ElectricCurrent
	Power   physic.Power
}

// Dev is a handle to an ina226 power monitor.
type Dev struct {
	r     Registers
	clock clockwork.Clock
	opts  Opts

	mu  sync.Mutex
	cal Calibration
	cfg uint16
}

// New opens a handle to an ina226 reachable through r.
//
// The manufacturer ID is checked, then the calibration and the configuration
// from opts are written.
func New(r Registers, opts *Opts) (*Dev, error) {
	o := DefaultOpts
	if opts != nil {
		o = *opts
		if o.ShuntResistance == 0 {
			o.ShuntResistance = DefaultOpts.ShuntResistance
		}
		if o.MaxCurrent == 0 {
			o.MaxCurrent = DefaultOpts.MaxCurrent
		}
		if o.Config == nil {
			o.Config = DefaultOpts.Config
		}
		if o.MaxPolls <= 0 {
			o.MaxPolls = DefaultOpts.MaxPolls
		}
		if o.PollInterval <= 0 {
			o.PollInterval = DefaultOpts.PollInterval
		}
		if o.MaxPollInterval < o.PollInterval {
			o.MaxPollInterval = max(o.PollInterval, DefaultOpts.MaxPollInterval)
		}
	}
	d := &Dev{r: r, clock: o.Clock, opts: o}
	if d.clock == nil {
		d.clock = clockwork.NewRealClock()
	}
	if err := d.setup(); err != nil {
		return nil, err
	}
	return d, nil
}

// NewI2C opens a handle to an ina226 on an i2c bus.
//
// addr is usually DefaultAddress; A0 and A1 select one of 16 addresses in
// 0x40-0x4F.
func NewI2C(b i2c.Bus, addr uint16, opts *Opts) (*Dev, error) {
	return New(&i2cRegisters{d: &i2c.Dev{Bus: b, Addr: addr}}, opts)
}

// NewSMBus opens /dev/i2c-<bus> and returns a handle to the ina226 at addr.
//
// Close releases the character device.
func NewSMBus(bus int, addr uint8, opts *Opts) (*Dev, error) {
	s, err := OpenSMBus(bus, addr)
	if err != nil {
		return nil, err
	}
	d, err := New(s, opts)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	return d, nil
}

func (d *Dev) setup() error {
	id, err := d.r.ReadRegister(regManufacturerID)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDeviceNotFound, err)
	}
	if id != manufacturerTI {
		return fmt.Errorf("%w: unexpected manufacturer id 0x%04x", ErrDeviceNotFound, id)
	}
	if err := d.Calibrate(d.opts.ShuntResistance, d.opts.MaxCurrent); err != nil {
		return err
	}
	return d.Configure(*d.opts.Config)
}

// Calibrate computes and writes the calibration register.
//
// On error, the previous calibration is kept.
func (d *Dev) Calibrate(shunt physic.ElectricResistance, maxCurrent physic.ElectricCurrent) error {
	c, err := ComputeCalibration(float64(shunt)/float64(physic.Ohm), float64(maxCurrent)/float64(physic.Ampere))
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.r.WriteRegister(regCalibration, c.Register); err != nil {
		return err
	}
	d.cal = c
	return nil
}

// Calibration returns the calibration currently in use.
func (d *Dev) Calibration() Calibration {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cal
}

// Configure validates c and writes it to the configuration register.
func (d *Dev) Configure(c Config) error {
	if err := c.Validate(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.writeConfig(c.Encode())
}

// Reset sets the reset bit. The device reverts all its registers to their
// power-on values, so Calibrate and Configure must be called again before
// reading current or power.
func (d *Dev) Reset() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.writeConfig(wordReset)
}

// Disable powers the device down.
func (d *Dev) Disable() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.writeConfig(wordPowerDown)
}

func (d *Dev) writeConfig(w uint16) error {
	if err := d.r.WriteRegister(regConfiguration, w); err != nil {
		return err
	}
	d.cfg = w
	return nil
}

// Config returns the last configuration written.
func (d *Dev) Config() Config {
	return DecodeConfig(d.Word())
}

// Word returns the last configuration word written.
func (d *Dev) Word() uint16 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cfg
}

// Wait blocks for the time a measurement takes with the current
// configuration, then polls until the conversion ready flag is set.
//
// Returns ErrConversionTimeout once Opts.MaxPolls polls have been done
// without seeing the flag. Reading the mask/enable register clears the flag.
func (d *Dev) Wait() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.clock.Sleep(WaitTime(DecodeConfig(d.cfg)))
	interval := d.opts.PollInterval
	for polls := 1; ; polls++ {
		v, err := d.r.ReadRegister(regMaskEnable)
		if err != nil {
			return err
		}
		if v&flagConversionReady != 0 {
			return nil
		}
		if polls >= d.opts.MaxPolls {
			return fmt.Errorf("%w after %d polls", ErrConversionTimeout, polls)
		}
		d.clock.Sleep(interval)
		interval = min(2*interval, d.opts.MaxPollInterval)
	}
}

// Read reads the measurements selected by f, in order bus voltage, current,
// power and shunt voltage. The first failing transfer aborts the read.
func (d *Dev) Read(f Fields) (Reading, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	r := Reading{Fields: f & FieldAll}
	if f&FieldBusVoltage != 0 {
		raw, err := d.r.ReadRegister(regBusVoltage)
		if err != nil {
			return Reading{}, err
		}
		r.BusVoltage = busVoltage(raw)
	}
	if f&FieldCurrent != 0 {
		raw, err := d.r.ReadRegister(regCurrent)
		if err != nil {
			return Reading{}, err
		}
		r.Current = current(raw, d.cal.CurrentLSB)
	}
	if f&FieldPower != 0 {
		raw, err := d.r.ReadRegister(regPower)
		if err != nil {
			return Reading{}, err
		}
		r.Power = power(raw, d.cal.CurrentLSB)
	}
	if f&FieldShuntVoltage != 0 {
		raw, err := d.r.ReadRegister(regShuntVoltage)
		if err != nil {
			return Reading{}, err
		}
		r.ShuntVoltage = shuntVoltage(raw)
	}
	return r, nil
}

// Sense reads all the measurements.
//
// It doesn't wait for a conversion; call Wait first for a fresh value.
func (d *Dev) Sense(p *PowerMonitor) error {
	r, err := d.Read(FieldAll)
	if err != nil {
		return err
	}
	p.Shunt = physic.ElectricPotential(math.Round(r.ShuntVoltage * float64(physic.MilliVolt)))
	p.Voltage = physic.ElectricPotential(math.Round(r.BusVoltage * float64(physic.Volt)))
	p.Current = physic.ElectricCurrent(math.Round(r.Current * float64(physic.MilliAmpere)))
	p.Power = physic.Power(math.Round(r.Power * float64(physic.MilliWatt)))
	return nil
}

// ManufacturerID returns the content of the manufacturer ID register, 0x5449
// for Texas Instruments.
func (d *Dev) ManufacturerID() (uint16, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.r.ReadRegister(regManufacturerID)
}

// DieID returns the content of the die ID register.
func (d *Dev) DieID() (uint16, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.r.ReadRegister(regDieID)
}

// Halt implements conn.Resource. It powers the device down.
func (d *Dev) Halt() error {
	return d.Disable()
}

// Close releases the underlying transport when it owns a resource, as the
// one opened by NewSMBus does. The device is left running.
func (d *Dev) Close() error {
	if c, ok := d.r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (d *Dev) String() string {
	if s, ok := d.r.(fmt.Stringer); ok {
		return "ina226{" + s.String() + "}"
	}
	return "ina226"
}

func busVoltage(raw uint16) float64 {
	return float64(raw) * busVoltageLSB
}

func current(raw uint16, lsb float64) float64 {
	return float64(int16(raw)) * 1000 * lsb
}

func power(raw uint16, lsb float64) float64 {
	return float64(int16(raw)) * powerLSBRatio * 1000 * lsb
}

func shuntVoltage(raw uint16) float64 {
	return float64(int16(raw)) * shuntVoltageLSB
}

var _ conn.Resource = &Dev{}
