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

// Package frame provides wire layout constants and helpers for Manchester frames
package frame

// Frame layout
const (
	SyncBytes   = 2  // Sync field length at the start of every frame
	BitsPerByte = 8  // Bits per byte, sent LSB first
	SyncBits    = 16 // Sync field length in bits
)

// Defaults match the reference hardware link
const (
	DefaultSyncWord  uint16 = 0xAA55 // Sync constant, low byte on the wire first
	DefaultFrameSize        = 10     // Frame size including the sync field
	MinFrameSize            = SyncBytes + 1
	MaxFrameSize            = 0xFFFF
)

// PutSyncWord stores the sync word in the first two bytes of buf, low byte first.
func PutSyncWord(buf []byte, word uint16) {
	buf[0] = byte(word & 0xFF)
	buf[1] = byte(word >> 8)
}

// SyncWord reads the sync word stored at the start of buf.
func SyncWord(buf []byte) uint16 {
	return uint16(buf[0]) | uint16(buf[1])<<8
}

// Bit returns bit n (0 = LSB) of b as 0 or 1.
func Bit(b byte, n uint8) byte {
	return (b >> n) & 0x01
}

// Bits expands data into its on-wire bit sequence, LSB of each byte first.
func Bits(data []byte) []byte {
	out := make([]byte, 0, len(data)*BitsPerByte)
	for _, b := range data {
		for n := uint8(0); n < BitsPerByte; n++ {
			out = append(out, Bit(b, n))
		}
	}
	return out
}
