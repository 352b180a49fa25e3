// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/GermanBionicSystems/powermon/ina226"
	"periph.io/x/conn/v3/physic"
)

const full = `
device:
  transport: smbus
  smbus: 1
  address: 0x41
  shunt_ohm: 0.1
  max_current_a: 0.8
  bus_conversion: 4
  shunt_conversion: 4
  averaging: 0
  mode: 7
wait:
  max_polls: 10
  poll_interval_us: 200
  max_poll_interval_us: 2000
sampling:
  interval_ms: 500
  nominal_voltage: 5
sinks:
  csv: true
  sqlite: /tmp/power.db
  modbus:
    endpoint: 127.0.0.1:502
    unit_id: 2
    address: 100
  gauge: {}
log:
  level: debug
`

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "powermon.yaml")
	if err := os.WriteFile(path, []byte(full), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := Validate(cfg); err != nil {
		t.Fatal(err)
	}
	Normalize(cfg)
	if cfg.Device.Transport != "smbus" || cfg.Device.SMBus != 1 || cfg.Device.Address != 0x41 {
		t.Errorf("device = %+v", cfg.Device)
	}
	if cfg.Sinks.Modbus.TimeoutMs != 1000 || cfg.Sinks.Gauge.Width != 40 {
		t.Errorf("sink defaults not applied: %+v %+v", cfg.Sinks.Modbus, cfg.Sinks.Gauge)
	}
	if !cfg.Logging() {
		t.Error("Logging() = false")
	}
	if d := cfg.Interval(); d != 500*time.Millisecond {
		t.Errorf("Interval() = %s", d)
	}

	o := cfg.Opts()
	if o.ShuntResistance != 100*physic.MilliOhm || o.MaxCurrent != 800*physic.MilliAmpere {
		t.Errorf("opts = %s %s", o.ShuntResistance, o.MaxCurrent)
	}
	want := ina226.Config{
		BusConversion:   ina226.ConversionTime1100us,
		ShuntConversion: ina226.ConversionTime1100us,
		Averaging:       ina226.Averages1,
		Mode:            ina226.ModeShuntBusContinuous,
	}
	if *o.Config != want {
		t.Errorf("Config = %v, want %v", *o.Config, want)
	}
	if o.MaxPolls != 10 || o.PollInterval != 200*time.Microsecond || o.MaxPollInterval != 2*time.Millisecond {
		t.Errorf("wait opts = %d %s %s", o.MaxPolls, o.PollInterval, o.MaxPollInterval)
	}
}

func TestDefaults(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := Validate(cfg); err != nil {
		t.Fatal(err)
	}
	Normalize(cfg)
	if cfg.Logging() {
		t.Error("empty configuration enables logging")
	}
	if cfg.Device.Transport != "periph" || cfg.Device.Address != 0x40 || cfg.Device.ShuntOhm != 0.01 || cfg.Device.MaxCurrentA != 4 {
		t.Errorf("device defaults = %+v", cfg.Device)
	}
	if cfg.Sampling.IntervalMs != 1000 || cfg.Log.Level != "info" {
		t.Errorf("defaults = %+v %+v", cfg.Sampling, cfg.Log)
	}
	o := cfg.Opts()
	if *o.Config != ina226.DefaultConfig {
		t.Errorf("Config = %v", *o.Config)
	}
	if o.ShuntResistance != 10*physic.MilliOhm || o.MaxCurrent != 4*physic.Ampere {
		t.Errorf("opts = %s %s", o.ShuntResistance, o.MaxCurrent)
	}
}

func TestParse_UnknownField(t *testing.T) {
	if _, err := Parse([]byte("device:\n  shunt: 0.01\n")); err == nil {
		t.Fatal("expected an error on an unknown key")
	}
}

func TestValidate(t *testing.T) {
	var tests = []struct {
		name string
		yaml string
		err  string
	}{
		{"transport", "device: {transport: usb}", "unknown transport"},
		{"address", "device: {address: 0x80}", "7-bit"},
		{"negative shunt", "device: {shunt_ohm: -1}", "negative"},
		{"calibration", "device: {shunt_ohm: 100, max_current_a: 10}", "calibration"},
		{"code", "device: {mode: 8}", "mode"},
		{"wait", "wait: {poll_interval_us: 100, max_poll_interval_us: 10}", "max_poll_interval_us"},
		{"interval", "sampling: {interval_ms: -1}", "interval_ms"},
		{"nominal", "sampling: {nominal_voltage: -5}", "nominal_voltage"},
		{"modbus", "sinks: {modbus: {unit_id: 1}}", "endpoint"},
		{"level", "log: {level: loud}", "log"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte(tt.yaml))
			if err != nil {
				t.Fatal(err)
			}
			err = Validate(cfg)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.err) {
				t.Errorf("error %q doesn't mention %q", err, tt.err)
			}
		})
	}
}

func TestValidate_Resolution(t *testing.T) {
	var tests = []struct {
		name string
		yaml string
		err  string
	}{
		{"shunt", "device: {shunt_ohm: 0.0000000001, max_current_a: 30000000}", "shunt_ohm"},
		{"current", "device: {shunt_ohm: 30000000, max_current_a: 0.0000000001}", "max_current_a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte(tt.yaml))
			if err != nil {
				t.Fatal(err)
			}
			err = Validate(cfg)
			if !errors.Is(err, ina226.ErrCalibrationOverflow) {
				t.Fatalf("expected ErrCalibrationOverflow, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.err) {
				t.Errorf("error %q doesn't mention %q", err, tt.err)
			}
		})
	}
}

func TestValidate_CodesOrder(t *testing.T) {
	cfg, err := Parse([]byte("device: {mode: 8, averaging: 9, shunt_conversion: 10, bus_conversion: 11}"))
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 20; i++ {
		err := Validate(cfg)
		if err == nil || !strings.Contains(err.Error(), "bus_conversion") {
			t.Fatalf("expected the bus_conversion code to be reported, got %v", err)
		}
	}
}

func TestValidate_Codes(t *testing.T) {
	cfg, err := Parse([]byte("device: {averaging: 9}"))
	if err != nil {
		t.Fatal(err)
	}
	if err := Validate(cfg); !errors.Is(err, ina226.ErrInvalidConfigurationCode) {
		t.Errorf("expected ErrInvalidConfigurationCode, got %v", err)
	}
}
