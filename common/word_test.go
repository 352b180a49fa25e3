// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package common

import (
	"bytes"
	"testing"
)

func TestWord(t *testing.T) {
	var tests = []struct {
		bytes  []byte
		result uint16
	}{
		{bytes: []byte{0x54, 0x49}, result: 0x5449},
		{bytes: []byte{0x06, 0x40}, result: 0x0640},
		{bytes: []byte{0xff, 0xff}, result: 0xffff},
	}
	for _, test := range tests {
		if res := Word(test.bytes); res != test.result {
			t.Errorf("Word(%#v)!=0x%04x received 0x%04x", test.bytes, test.result, res)
		}
		b := make([]byte, 2)
		PutWord(b, test.result)
		if !bytes.Equal(b, test.bytes) {
			t.Errorf("PutWord(0x%04x)=%#v expected %#v", test.result, b, test.bytes)
		}
	}
}

func TestSwap16(t *testing.T) {
	if v := Swap16(0x4954); v != 0x5449 {
		t.Errorf("Swap16(0x4954)=0x%04x", v)
	}
	if v := Swap16(Swap16(0x1062)); v != 0x1062 {
		t.Errorf("double swap changed value: 0x%04x", v)
	}
}

func TestFloat32Registers(t *testing.T) {
	// 1.0 is 0x3f800000.
	if r := Float32Registers(1); r != [2]uint16{0x3f80, 0x0000} {
		t.Errorf("Float32Registers(1)=%#v", r)
	}
	if r := Uint32Registers(0x6553f100); r != [2]uint16{0x6553, 0xf100} {
		t.Errorf("Uint32Registers=%#v", r)
	}
	b := RegistersBytes([]uint16{0x3f80, 0x0001})
	if !bytes.Equal(b, []byte{0x3f, 0x80, 0x00, 0x01}) {
		t.Errorf("RegistersBytes=%#v", b)
	}
}
