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

package manchester

import (
	"testing"

	mtesting "github.com/ZaparooProject/go-manchester/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
)

// runEncoder ticks enc until it goes idle and returns the per-tick levels
func runEncoder(t *testing.T, enc *Encoder, wire *mtesting.Wire) []gpio.Level {
	t.Helper()
	for i := 0; enc.Active(); i++ {
		require.Less(t, i, 100000, "encoder never finished")
		enc.Tick()
		wire.Advance()
	}
	return wire.Levels
}

func TestEncoder_ExampleWaveform(t *testing.T) {
	t.Parallel()
	wire := mtesting.NewWire(gpio.Low)
	enc, err := NewEncoder(wire)
	require.NoError(t, err)

	enc.Start([]byte{0x12, 0x34})
	levels := runEncoder(t, enc, wire)

	cfg := enc.Config()
	bits, ok := mtesting.SampleBits(levels, cfg.TicksPerBit(), cfg.TicksPerBit(), 32)
	require.True(t, ok, "every cell needs a centre transition")

	assert.Equal(t,
		"1010101001010101"+"01001000"+"00101100",
		mtesting.BitString(bits))
}

func TestEncoder_OneTransitionPerCentre(t *testing.T) {
	t.Parallel()
	wire := mtesting.NewWire(gpio.Low)
	enc, err := NewEncoder(wire)
	require.NoError(t, err)

	enc.Start([]byte{0x00, 0xFF, 0x0F})
	runEncoder(t, enc, wire)

	tpb := enc.Config().TicksPerBit()
	first := wire.Transitions[0].Tick
	for _, tr := range wire.Transitions {
		offset := (tr.Tick - first) % tpb
		assert.Contains(t, []int{0, tpb / 2}, offset,
			"transition at tick %d is neither a centre nor a cell boundary", tr.Tick)
	}
}

func TestEncoder_TruncatesOversizedPayload(t *testing.T) {
	t.Parallel()
	wire := mtesting.NewWire(gpio.Low)
	enc, err := NewEncoder(wire)
	require.NoError(t, err)

	payload := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}
	enc.Start(payload)

	assert.Equal(t, enc.Config().FrameSize, enc.sess.total)
	assert.Equal(t, []byte{0x55, 0xAA, 1, 2, 3, 4, 5, 6, 7, 8}, enc.sess.buf)

	levels := runEncoder(t, enc, wire)
	bits, ok := mtesting.SampleBits(levels, 10, 10, 80)
	require.True(t, ok)
	assert.Equal(t, mtesting.BuildFrameBits(0xAA55, payload[:8]), bits)
}

func TestEncoder_StartSupersedesTransmission(t *testing.T) {
	t.Parallel()
	wire := mtesting.NewWire(gpio.Low)
	enc, err := NewEncoder(wire)
	require.NoError(t, err)

	enc.Start([]byte{0xDE, 0xAD, 0xBE, 0xEF})
	for i := 0; i < 123; i++ {
		enc.Tick()
	}
	require.True(t, enc.Active())

	enc.Start([]byte{0x01})
	assert.Equal(t, 0, enc.sess.byteIdx)
	assert.Equal(t, uint8(0), enc.sess.bitIdx)
	assert.Equal(t, 3, enc.sess.total)
	assert.Equal(t, byte(1), enc.clock)
	assert.Equal(t, uint64(2), enc.Stats().FramesStarted)

	wire.Levels = nil
	levels := runEncoder(t, enc, wire)
	bits, ok := mtesting.SampleBits(levels, 10, 10, 24)
	require.True(t, ok)
	assert.Equal(t, mtesting.BuildFrameBits(0xAA55, []byte{0x01}), bits)
	assert.Equal(t, uint64(1), enc.Stats().FramesCompleted)
}

func TestEncoder_LeavesLineAtLastLevel(t *testing.T) {
	t.Parallel()
	wire := mtesting.NewWire(gpio.Low)
	enc, err := NewEncoder(wire)
	require.NoError(t, err)

	// MSB of 0x80 is the last bit sent
	enc.Start([]byte{0x80})
	runEncoder(t, enc, wire)
	assert.Equal(t, gpio.High, wire.Read())

	writes := wire.Writes()
	enc.Tick()
	enc.Tick()
	assert.Equal(t, writes, wire.Writes(), "idle encoder must not touch the line")
}

func TestEncoder_IdleLevel(t *testing.T) {
	t.Parallel()
	wire := mtesting.NewWire(gpio.Low)
	enc, err := NewEncoder(wire, WithIdleLevel(IdleLow))
	require.NoError(t, err)

	enc.Start([]byte{0x80})
	levels := runEncoder(t, enc, wire)

	assert.Equal(t, gpio.Low, wire.Read())
	last := wire.Transitions[len(wire.Transitions)-1]
	prev := wire.Transitions[len(wire.Transitions)-2]
	assert.Equal(t, gpio.Low, last.Level)
	assert.Equal(t, enc.Config().MidBitTick(), last.Tick-prev.Tick,
		"idle level is written half a bit after the last centre")
	assert.Len(t, levels, 11+23*10+5)
}

func TestEncoder_PolarityFallingIsOne(t *testing.T) {
	t.Parallel()
	wire := mtesting.NewWire(gpio.High)
	enc, err := NewEncoder(wire, WithPolarity(PolarityFallingIsOne))
	require.NoError(t, err)

	enc.Start([]byte{0x12})
	levels := runEncoder(t, enc, wire)

	bits, ok := mtesting.SampleBits(levels, 10, 10, 24)
	require.True(t, ok)
	want := mtesting.BuildFrameBits(0xAA55, []byte{0x12})
	for i := range want {
		want[i] ^= 1
	}
	assert.Equal(t, want, bits, "rising edges carry zeros")
}

func TestEncoder_WriteErrorsDoNotStall(t *testing.T) {
	t.Parallel()
	wire := mtesting.NewWire(gpio.Low)
	wire.SetFault(true)
	enc, err := NewEncoder(wire)
	require.NoError(t, err)

	enc.Start([]byte{0xAB})
	runEncoder(t, enc, wire)

	stats := enc.Stats()
	assert.False(t, enc.Active())
	assert.Equal(t, uint64(48), stats.WriteErrors)
	assert.Equal(t, uint64(24), stats.BitsSent)
	assert.Equal(t, uint64(1), stats.FramesCompleted)
}

func TestEncoder_EmptyPayloadSendsSyncOnly(t *testing.T) {
	t.Parallel()
	wire := mtesting.NewWire(gpio.Low)
	enc, err := NewEncoder(wire)
	require.NoError(t, err)

	enc.Start(nil)
	levels := runEncoder(t, enc, wire)

	assert.Len(t, levels, 11+15*10)
	bits, ok := mtesting.SampleBits(levels, 10, 10, 16)
	require.True(t, ok)
	assert.Equal(t, "1010101001010101", mtesting.BitString(bits))
}
