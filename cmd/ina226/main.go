// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// ina226 reads an INA226 power monitor once or logs its measurements.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GermanBionicSystems/powermon/gauge"
	"github.com/GermanBionicSystems/powermon/ina226"
	"github.com/GermanBionicSystems/powermon/internal/config"
	"github.com/GermanBionicSystems/powermon/internal/sampler"
	"github.com/GermanBionicSystems/powermon/internal/sink/csvlog"
	"github.com/GermanBionicSystems/powermon/internal/sink/modbussink"
	"github.com/GermanBionicSystems/powermon/internal/sink/sqlstore"
	"github.com/edaniels/golog"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

var errUsage = errors.New("invalid arguments")

// openBus is replaced in tests.
var openBus = func(name string) (i2c.BusCloser, error) {
	if _, err := host.Init(); err != nil {
		return nil, err
	}
	return i2creg.Open(name)
}

type flags struct {
	power, current, voltage, shunt, all bool
	gauge, debug                        bool
	sql, config                         string
}

func (f *flags) fields() ina226.Fields {
	if f.all {
		return ina226.FieldAll
	}
	var r ina226.Fields
	if f.power {
		r |= ina226.FieldPower
	}
	if f.current {
		r |= ina226.FieldCurrent
	}
	if f.voltage {
		r |= ina226.FieldBusVoltage
	}
	if f.shunt {
		r |= ina226.FieldShuntVoltage
	}
	return r
}

func newFlagSet(f *flags, out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("ina226", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.BoolVar(&f.power, "p", false, "display the power")
	fs.BoolVar(&f.current, "c", false, "display the current")
	fs.BoolVar(&f.voltage, "v", false, "display the bus voltage")
	fs.BoolVar(&f.shunt, "s", false, "display the shunt voltage")
	fs.BoolVar(&f.all, "a", false, "display all the values")
	fs.StringVar(&f.sql, "sql", "", "log every sample to this SQLite database `file`")
	fs.StringVar(&f.config, "config", "", "YAML configuration `file`")
	fs.BoolVar(&f.gauge, "gauge", false, "draw the current as a bar graph while logging")
	fs.BoolVar(&f.debug, "debug", false, "enable debug logs")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: ina226 [OPTIONS]\n")
		fmt.Fprintf(fs.Output(), "Reads values from an INA226 module on an I²C bus.\n\n")
		fs.PrintDefaults()
	}
	return fs
}

func newLogger(level zapcore.Level) (golog.Logger, error) {
	c := golog.NewDevelopmentLoggerConfig()
	c.Level = zap.NewAtomicLevelAt(level)
	l, err := c.Build()
	if err != nil {
		return nil, err
	}
	return l.Sugar().Named("ina226"), nil
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Parse(nil)
	}
	return config.Load(path)
}

func openDevice(cfg *config.Config, logger golog.Logger) (*ina226.Dev, func(), error) {
	opts := cfg.Opts()
	if cfg.Device.Transport == "smbus" {
		dev, err := ina226.NewSMBus(cfg.Device.SMBus, uint8(cfg.Device.Address), opts)
		if err != nil {
			return nil, nil, err
		}
		return dev, func() { _ = dev.Close() }, nil
	}
	bus, err := openBus(cfg.Device.Bus)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ina226.ErrDeviceNotFound, err)
	}
	logger.Debugw("bus opened", "bus", bus.String())
	dev, err := ina226.NewI2C(bus, cfg.Device.Address, opts)
	if err != nil {
		_ = bus.Close()
		return nil, nil, err
	}
	return dev, func() { _ = bus.Close() }, nil
}

// printOnce waits for a conversion then prints the requested values.
func printOnce(w io.Writer, src sampler.Source, f ina226.Fields, nominalVoltage float64) error {
	read := f
	if f&ina226.FieldPower != 0 && nominalVoltage > 0 {
		read |= ina226.FieldCurrent
		read &^= ina226.FieldPower
	}
	if err := src.Wait(); err != nil {
		return err
	}
	r, err := src.Read(read)
	if err != nil {
		return err
	}
	if f&ina226.FieldPower != 0 {
		p := r.Power
		if nominalVoltage > 0 {
			p = r.Current * nominalVoltage
		}
		fmt.Fprintf(w, "%.3f mW\n", p)
	}
	if f&ina226.FieldCurrent != 0 {
		fmt.Fprintf(w, "%.3f mA\n", r.Current)
	}
	if f&ina226.FieldBusVoltage != 0 {
		fmt.Fprintf(w, "%.3f V\n", r.BusVoltage)
	}
	if f&ina226.FieldShuntVoltage != 0 {
		fmt.Fprintf(w, "%.3f mV\n", r.ShuntVoltage)
	}
	return nil
}

// gaugeSink draws the current relative to the calibrated maximum.
type gaugeSink struct {
	d   *gauge.Dev
	max float64 // mA
}

func (g *gaugeSink) Write(rec sampler.Record) error {
	return g.d.Show(math.Abs(rec.Current)/g.max, fmt.Sprintf("%.2f mA %.3f V", rec.Current, rec.BusVoltage))
}

func (g *gaugeSink) Close() error {
	return g.d.Halt()
}

func buildSinks(cfg *config.Config, stdout io.Writer) ([]sampler.Sink, error) {
	var sinks []sampler.Sink
	closeAll := func() {
		for _, s := range sinks {
			_ = s.Close()
		}
	}
	if cfg.Sinks.CSV {
		sinks = append(sinks, csvlog.New(stdout, nil))
	}
	if cfg.Sinks.SQLite != "" {
		s, err := sqlstore.Open(cfg.Sinks.SQLite)
		if err != nil {
			closeAll()
			return nil, err
		}
		sinks = append(sinks, s)
	}
	if m := cfg.Sinks.Modbus; m != nil {
		c, err := modbussink.Dial(m.Endpoint, time.Duration(m.TimeoutMs)*time.Millisecond)
		if err != nil {
			closeAll()
			return nil, fmt.Errorf("modbus %s: %w", m.Endpoint, err)
		}
		s, err := modbussink.New(c, m.UnitID, m.Address)
		if err != nil {
			_ = c.Close()
			closeAll()
			return nil, err
		}
		sinks = append(sinks, s)
	}
	if g := cfg.Sinks.Gauge; g != nil {
		sinks = append(sinks, &gaugeSink{
			d:   gauge.New(&gauge.Opts{Width: g.Width}),
			max: cfg.Device.MaxCurrentA * 1000,
		})
	}
	return sinks, nil
}

func mainWithArgs(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var f flags
	fs := newFlagSet(&f, stderr)
	if len(args) == 0 {
		fs.SetOutput(stdout)
		fs.Usage()
		return nil
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return errUsage
	}
	if fs.NArg() != 0 {
		fmt.Fprintf(stderr, "unexpected argument %q\n", fs.Arg(0))
		fs.Usage()
		return errUsage
	}

	cfg, err := loadConfig(f.config)
	if err != nil {
		return err
	}
	if f.sql != "" {
		cfg.Sinks.SQLite = f.sql
		cfg.Sinks.CSV = true
	}
	if f.gauge && cfg.Sinks.Gauge == nil {
		cfg.Sinks.Gauge = &config.GaugeConfig{}
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}
	config.Normalize(cfg)

	level, err := zapcore.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	if f.debug {
		level = zapcore.DebugLevel
	}
	logger, err := newLogger(level)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	fields := f.fields()
	if fields == 0 && !cfg.Logging() {
		return nil
	}

	dev, closeDev, err := openDevice(cfg, logger)
	if err != nil {
		return err
	}
	defer closeDev()
	logger.Debugw("device ready", "device", dev.String(), "calibration", dev.Calibration().Register, "config", dev.Config().String())

	if !cfg.Logging() {
		return printOnce(stdout, dev, fields, cfg.Sampling.NominalVoltage)
	}

	sinks, err := buildSinks(cfg, stdout)
	if err != nil {
		return err
	}
	s, err := sampler.New(sampler.Config{
		Interval:       cfg.Interval(),
		NominalVoltage: cfg.Sampling.NominalVoltage,
		Logger:         logger,
	}, dev, sinks...)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Close(); err != nil {
			logger.Warnw("closing sinks", "error", err)
		}
	}()
	logger.Infow("logging", "interval", cfg.Interval(), "sqlite", cfg.Sinks.SQLite, "csv", cfg.Sinks.CSV)
	return s.Run(ctx)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := mainWithArgs(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if errors.Is(err, errUsage) {
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "ina226: %s.\n", err)
		os.Exit(1)
	}
}
