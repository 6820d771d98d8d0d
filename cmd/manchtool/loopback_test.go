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

package main

import (
	"testing"

	manchester "github.com/ZaparooProject/go-manchester"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
)

func TestExchange(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		payload []byte
		want    []byte
	}{
		{name: "example", payload: []byte{0x12, 0x34}, want: []byte{0x12, 0x34}},
		{name: "full", payload: []byte{1, 2, 3, 4, 5, 6, 7, 8}, want: []byte{1, 2, 3, 4, 5, 6, 7, 8}},
		{name: "truncated", payload: []byte{1, 2, 3, 4, 5, 6, 7, 8, 9}, want: []byte{1, 2, 3, 4, 5, 6, 7, 8}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			res, err := exchange(manchester.DefaultConfig(), tt.payload)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.payload)
			assert.Len(t, res.raw, 10)
			assert.Len(t, res.waveform, res.ticks)
		})
	}
}

func TestWireBits(t *testing.T) {
	t.Parallel()
	got := wireBits(manchester.DefaultConfig(), []byte{0x12, 0x34})
	assert.Equal(t, "10101010 01010101 01001000 00101100", got)
}

func TestRenderWaveform(t *testing.T) {
	t.Parallel()
	levels := []gpio.Level{gpio.Low, gpio.Low, gpio.High, gpio.High, gpio.High, gpio.Low}

	assert.Equal(t, "_--", renderWaveform(levels, 4))
	assert.Equal(t, "__---_", renderWaveform(levels, 1))
	assert.Empty(t, renderWaveform(nil, 10))
}
