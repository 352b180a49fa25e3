// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package config

import (
	"errors"
	"fmt"
	"math"

	"github.com/GermanBionicSystems/powermon/ina226"
	"go.uber.org/zap/zapcore"
	"periph.io/x/conn/v3/physic"
)

// Validate checks the configuration. It doesn't mutate it.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config: nil")
	}
	d := cfg.Device
	switch d.Transport {
	case "", "periph", "smbus":
	default:
		return fmt.Errorf("device: unknown transport %q", d.Transport)
	}
	if d.Address > 0x7f {
		return fmt.Errorf("device: address 0x%x is not a 7-bit address", d.Address)
	}
	if d.SMBus < 0 {
		return fmt.Errorf("device: invalid smbus number %d", d.SMBus)
	}
	if d.ShuntOhm < 0 || d.MaxCurrentA < 0 {
		return errors.New("device: shunt_ohm and max_current_a must not be negative")
	}
	if d.ShuntOhm > 0 || d.MaxCurrentA > 0 {
		shunt, maxA := d.ShuntOhm, d.MaxCurrentA
		if shunt == 0 {
			shunt = defaultShuntOhm
		}
		if maxA == 0 {
			maxA = defaultMaxCurrentA
		}
		// The driver takes nano unit integers; zero would select its default.
		shuntN, maxN := nanoUnits(shunt, float64(physic.Ohm)), nanoUnits(maxA, float64(physic.Ampere))
		if shuntN == 0 {
			return fmt.Errorf("device: shunt_ohm %g: %w", d.ShuntOhm, ina226.ErrCalibrationOverflow)
		}
		if maxN == 0 {
			return fmt.Errorf("device: max_current_a %g: %w", d.MaxCurrentA, ina226.ErrCalibrationOverflow)
		}
		if _, err := ina226.ComputeCalibration(shuntN/float64(physic.Ohm), maxN/float64(physic.Ampere)); err != nil {
			return fmt.Errorf("device: %w", err)
		}
	}
	for _, c := range []struct {
		name string
		code *uint8
	}{
		{"bus_conversion", d.BusConversion},
		{"shunt_conversion", d.ShuntConversion},
		{"averaging", d.Averaging},
		{"mode", d.Mode},
	} {
		if c.code != nil && *c.code > 7 {
			return fmt.Errorf("device: %s: %w: %d", c.name, ina226.ErrInvalidConfigurationCode, *c.code)
		}
	}

	w := cfg.Wait
	if w.MaxPolls < 0 || w.PollIntervalUs < 0 || w.MaxPollIntervalUs < 0 {
		return errors.New("wait: values must not be negative")
	}
	if w.PollIntervalUs > 0 && w.MaxPollIntervalUs > 0 && w.MaxPollIntervalUs < w.PollIntervalUs {
		return errors.New("wait: max_poll_interval_us must be >= poll_interval_us")
	}

	if cfg.Sampling.IntervalMs < 0 {
		return fmt.Errorf("sampling: invalid interval_ms %d", cfg.Sampling.IntervalMs)
	}
	if cfg.Sampling.NominalVoltage < 0 {
		return fmt.Errorf("sampling: invalid nominal_voltage %g", cfg.Sampling.NominalVoltage)
	}

	if m := cfg.Sinks.Modbus; m != nil {
		if m.Endpoint == "" {
			return errors.New("sinks.modbus: endpoint required")
		}
		if m.TimeoutMs < 0 {
			return fmt.Errorf("sinks.modbus: invalid timeout_ms %d", m.TimeoutMs)
		}
	}
	if g := cfg.Sinks.Gauge; g != nil && g.Width < 0 {
		return fmt.Errorf("sinks.gauge: invalid width %d", g.Width)
	}

	if cfg.Log.Level != "" {
		if _, err := zapcore.ParseLevel(cfg.Log.Level); err != nil {
			return fmt.Errorf("log: %w", err)
		}
	}
	return nil
}

// nanoUnits returns v scaled to unit and rounded, or 0 when the result is not
// a positive int64.
func nanoUnits(v, unit float64) float64 {
	n := math.Round(v * unit)
	if !(n >= 1 && n < math.MaxInt64) {
		return 0
	}
	return n
}
