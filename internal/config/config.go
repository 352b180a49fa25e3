// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package config loads the YAML configuration of the ina226 command.
//
// Zero values select defaults, see Normalize. A minimal file:
//
//	device:
//	  shunt_ohm: 0.01
//	  max_current_a: 4
//	sinks:
//	  sqlite: /var/lib/powermon/power.db
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Device   DeviceConfig   `yaml:"device"`
	Wait     WaitConfig     `yaml:"wait"`
	Sampling SamplingConfig `yaml:"sampling"`
	Sinks    SinksConfig    `yaml:"sinks"`
	Log      LogConfig      `yaml:"log"`
}

// ---- DEVICE ----

type DeviceConfig struct {
	// Transport is "periph" (default) or "smbus".
	Transport string `yaml:"transport"`
	// Bus is the periph bus name, empty for the first one.
	Bus string `yaml:"bus"`
	// SMBus is the N of /dev/i2c-N with the smbus transport.
	SMBus   int    `yaml:"smbus"`
	Address uint16 `yaml:"address"`

	ShuntOhm    float64 `yaml:"shunt_ohm"`
	MaxCurrentA float64 `yaml:"max_current_a"`

	// 3-bit codes; nil keeps the default configuration value.
	BusConversion   *uint8 `yaml:"bus_conversion"`
	ShuntConversion *uint8 `yaml:"shunt_conversion"`
	Averaging       *uint8 `yaml:"averaging"`
	Mode            *uint8 `yaml:"mode"`
}

// ---- WAIT ----

type WaitConfig struct {
	MaxPolls          int `yaml:"max_polls"`
	PollIntervalUs    int `yaml:"poll_interval_us"`
	MaxPollIntervalUs int `yaml:"max_poll_interval_us"`
}

// ---- SAMPLING ----

type SamplingConfig struct {
	IntervalMs     int     `yaml:"interval_ms"`
	NominalVoltage float64 `yaml:"nominal_voltage"`
}

// ---- SINKS ----

type SinksConfig struct {
	// CSV prints each record on stdout.
	CSV    bool          `yaml:"csv"`
	SQLite string        `yaml:"sqlite"`
	Modbus *ModbusConfig `yaml:"modbus"`
	Gauge  *GaugeConfig  `yaml:"gauge"`
}

type ModbusConfig struct {
	Endpoint  string `yaml:"endpoint"`
	UnitID    uint8  `yaml:"unit_id"`
	Address   uint16 `yaml:"address"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

type GaugeConfig struct {
	Width int `yaml:"width"`
}

// ---- LOG ----

type LogConfig struct {
	// Level is a zap level name, "info" by default.
	Level string `yaml:"level"`
}

// Logging reports whether a sink is configured, which selects the continuous
// sampling mode of the command.
func (c *Config) Logging() bool {
	return c.Sinks.CSV || c.Sinks.SQLite != "" || c.Sinks.Modbus != nil || c.Sinks.Gauge != nil
}

// Load reads the configuration at path. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a YAML document. An empty document gives the zero Config.
func Parse(b []byte) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return cfg, nil
}
