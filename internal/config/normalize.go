// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package config

import (
	"math"
	"time"

	"github.com/GermanBionicSystems/powermon/ina226"
	"periph.io/x/conn/v3/physic"
)

const (
	defaultShuntOhm    = 0.01
	defaultMaxCurrentA = 4
	defaultIntervalMs  = 1000
	defaultTimeoutMs   = 1000
	defaultGaugeWidth  = 40
)

// Normalize fills in the defaults. It must be called after Validate.
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}
	d := &cfg.Device
	if d.Transport == "" {
		d.Transport = "periph"
	}
	if d.Address == 0 {
		d.Address = ina226.DefaultAddress
	}
	if d.ShuntOhm == 0 {
		d.ShuntOhm = defaultShuntOhm
	}
	if d.MaxCurrentA == 0 {
		d.MaxCurrentA = defaultMaxCurrentA
	}
	if cfg.Sampling.IntervalMs == 0 {
		cfg.Sampling.IntervalMs = defaultIntervalMs
	}
	if m := cfg.Sinks.Modbus; m != nil && m.TimeoutMs == 0 {
		m.TimeoutMs = defaultTimeoutMs
	}
	if g := cfg.Sinks.Gauge; g != nil && g.Width == 0 {
		g.Width = defaultGaugeWidth
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

// Configuration returns the configuration register content, starting from
// ina226.DefaultConfig.
func (d *DeviceConfig) Configuration() ina226.Config {
	c := ina226.DefaultConfig
	if d.BusConversion != nil {
		c.BusConversion = ina226.ConversionTime(*d.BusConversion)
	}
	if d.ShuntConversion != nil {
		c.ShuntConversion = ina226.ConversionTime(*d.ShuntConversion)
	}
	if d.Averaging != nil {
		c.Averaging = ina226.Averaging(*d.Averaging)
	}
	if d.Mode != nil {
		c.Mode = ina226.Mode(*d.Mode)
	}
	return c
}

// Opts returns the driver options. Zero wait values keep the driver
// defaults.
func (c *Config) Opts() *ina226.Opts {
	dc := c.Device.Configuration()
	return &ina226.Opts{
		ShuntResistance: physic.ElectricResistance(math.Round(c.Device.ShuntOhm * float64(physic.Ohm))),
		MaxCurrent:      physic.ElectricCurrent(math.Round(c.Device.MaxCurrentA * float64(physic.Ampere))),
		Config:          &dc,
		MaxPolls:        c.Wait.MaxPolls,
		PollInterval:    time.Duration(c.Wait.PollIntervalUs) * time.Microsecond,
		MaxPollInterval: time.Duration(c.Wait.MaxPollIntervalUs) * time.Microsecond,
	}
}

// Interval returns the sampling interval.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.Sampling.IntervalMs) * time.Millisecond
}
