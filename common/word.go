// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package common contains functions used across multiple packages. For
// example, encoding of 16-bit register words.
package common

import "math"

// Word returns the 16-bit value stored most significant byte first in b[0:2].
func Word(b []byte) uint16 {
	return uint16(b[0])<<8 | uint16(b[1])
}

// PutWord stores v most significant byte first into b[0:2].
func PutWord(b []byte, v uint16) {
	b[0] = byte(v >> 8)
	b[1] = byte(v)
}

// Swap16 exchanges the two bytes of v.
//
// SMBus word transfers send the low byte first while most sensors from TI
// send the high byte first.
func Swap16(v uint16) uint16 {
	return v<<8 | v>>8
}

// Uint32Registers splits v into two 16-bit registers, high word first.
func Uint32Registers(v uint32) [2]uint16 {
	return [2]uint16{uint16(v >> 16), uint16(v)}
}

// Float32Registers splits the IEEE 754 representation of f into two 16-bit
// registers, high word first.
func Float32Registers(f float32) [2]uint16 {
	return Uint32Registers(math.Float32bits(f))
}

// RegistersBytes returns regs as a byte slice, each register most significant
// byte first.
func RegistersBytes(regs []uint16) []byte {
	b := make([]byte, 2*len(regs))
	for i, r := range regs {
		PutWord(b[2*i:], r)
	}
	return b
}
