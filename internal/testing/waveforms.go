// go-manchester
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-manchester.
//
// go-manchester is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-manchester is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-manchester; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

package testing

import (
	"errors"

	"github.com/ZaparooProject/go-manchester/internal/frame"
	"periph.io/x/conn/v3/gpio"
)

// ErrWireFault is returned by a Wire set to fail writes
var ErrWireFault = errors.New("simulated wire fault")

// BuildFrameBits returns the bit sequence of a frame: sync word low byte
// first, then payload, each byte LSB first.
func BuildFrameBits(sync uint16, payload []byte) []byte {
	data := make([]byte, frame.SyncBytes, frame.SyncBytes+len(payload))
	frame.PutSyncWord(data, sync)
	data = append(data, payload...)
	return frame.Bits(data)
}

// SampleBits reads n bits from per-tick levels. firstCentre is the tick index
// of the first centre transition and ticksPerBit the cell length. ok is false
// when a cell has no transition at its centre.
func SampleBits(levels []gpio.Level, firstCentre, ticksPerBit, n int) (bits []byte, ok bool) {
	bits = make([]byte, 0, n)
	for i := 0; i < n; i++ {
		centre := firstCentre + i*ticksPerBit
		if centre < 1 || centre >= len(levels) {
			return bits, false
		}
		if levels[centre] == levels[centre-1] {
			return bits, false
		}
		if levels[centre] == gpio.High {
			bits = append(bits, 1)
		} else {
			bits = append(bits, 0)
		}
	}
	return bits, true
}

// BitString renders bits as a string of 0 and 1
func BitString(bits []byte) string {
	out := make([]byte, len(bits))
	for i, b := range bits {
		out[i] = '0' + b
	}
	return string(out)
}
