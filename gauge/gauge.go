// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package gauge implements a one line bar graph that outputs to a terminal
// using ANSI color codes.
//
// It is used to watch a measurement such as the current drawn through a
// shunt without any other display attached.
package gauge

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"math"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"periph.io/x/conn/v3/display"
)

// Opts represents the options available for this gauge.
type Opts struct {
	// Width is the number of cells of the bar. Defaults to 40.
	Width   int
	Palette *ansi256.Palette
	// Out defaults to a colorable stdout.
	Out io.Writer

	_ struct{}
}

// Colors of the filled cells depending on the level.
var (
	Low   = color.NRGBA{0x00, 0xc0, 0x00, 0xff}
	High  = color.NRGBA{0xe0, 0xc0, 0x00, 0xff}
	Peak  = color.NRGBA{0xe0, 0x00, 0x00, 0xff}
	Empty = color.NRGBA{0x30, 0x30, 0x30, 0xff}
)

// Dev is a bar graph printed on a single console line.
type Dev struct {
	w       io.Writer
	l       int
	palette ansi256.Palette

	pixels []byte
	label  string
	buf    bytes.Buffer
}

// New returns a Dev that displays at the console.
func New(opts *Opts) *Dev {
	o := Opts{}
	if opts != nil {
		o = *opts
	}
	if o.Width <= 0 {
		o.Width = 40
	}
	p := o.Palette
	if p == nil {
		p = ansi256.Default
	}
	w := o.Out
	if w == nil {
		w = colorable.NewColorableStdout()
	}
	return &Dev{
		w:       w,
		l:       o.Width,
		palette: *p,
		pixels:  make([]byte, 3*o.Width),
	}
}

func (d *Dev) String() string {
	return fmt.Sprintf("Gauge(%d)", d.l)
}

// Halt implements conn.Resource.
//
// It moves to the next line and resets the colors so the terminal is not
// corrupted.
func (d *Dev) Halt() error {
	_, err := d.w.Write([]byte("\n\033[0m"))
	return err
}

// Show fills the bar to level, a fraction of the full scale clamped to
// [0, 1], and prints label after it.
//
// The filled cells turn from green to yellow above 60% and to red above 85%.
func (d *Dev) Show(level float64, label string) error {
	if math.IsNaN(level) {
		level = 0
	}
	level = min(max(level, 0), 1)
	c := Low
	switch {
	case level > 0.85:
		c = Peak
	case level > 0.6:
		c = High
	}
	filled := int(math.Round(level * float64(d.l)))
	for i := 0; i < d.l; i++ {
		p := Empty
		if i < filled {
			p = c
		}
		d.pixels[3*i] = p.R
		d.pixels[3*i+1] = p.G
		d.pixels[3*i+2] = p.B
	}
	d.label = label
	_, err := d.refresh()
	return err
}

// Write accepts a stream of raw RGB cells and writes it to the console.
func (d *Dev) Write(pixels []byte) (int, error) {
	if len(pixels)%3 != 0 {
		return 0, errors.New("gauge: invalid RGB stream length")
	}
	copy(d.pixels, pixels)
	return d.refresh()
}

// ColorModel implements display.Drawer.
func (d *Dev) ColorModel() color.Model {
	return color.NRGBAModel
}

// Bounds implements display.Drawer.
func (d *Dev) Bounds() image.Rectangle {
	return image.Rectangle{Max: image.Point{X: d.l, Y: 1}}
}

// Draw implements display.Drawer. Only the first row of src is used.
func (d *Dev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	r = r.Intersect(d.Bounds())
	srcR := src.Bounds()
	srcR.Min = srcR.Min.Add(sp)
	if dX := r.Dx(); dX < srcR.Dx() {
		srcR.Max.X = srcR.Min.X + dX
	}
	deltaX3 := 3 * (r.Min.X - srcR.Min.X)
	for sX := srcR.Min.X; sX < srcR.Max.X; sX++ {
		r16, g16, b16, _ := src.At(sX, srcR.Min.Y).RGBA()
		dX3 := 3*sX + deltaX3
		d.pixels[dX3] = byte(r16 >> 8)
		d.pixels[dX3+1] = byte(g16 >> 8)
		d.pixels[dX3+2] = byte(b16 >> 8)
	}
	_, err := d.refresh()
	return err
}

func (d *Dev) refresh() (int, error) {
	d.buf.Reset()
	_, _ = d.buf.WriteString("\r\033[0m")
	for i := 0; i < d.l; i++ {
		c := color.NRGBA{d.pixels[3*i], d.pixels[3*i+1], d.pixels[3*i+2], 255}
		_, _ = io.WriteString(&d.buf, d.palette.Block(c))
	}
	_, _ = d.buf.WriteString("\033[0m ")
	_, _ = d.buf.WriteString(d.label)
	// Erase what is left of a longer previous label.
	_, _ = d.buf.WriteString("\033[K")
	_, err := d.buf.WriteTo(d.w)
	return len(d.pixels), err
}

var _ display.Drawer = &Dev{}
var _ fmt.Stringer = &Dev{}
