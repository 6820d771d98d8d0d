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
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
)

func payloadOf(n int) []byte {
	r := rand.New(rand.NewPCG(0x6d616e63, uint64(n)))
	p := make([]byte, n)
	for i := range p {
		p[i] = byte(r.UintN(256))
	}
	return p
}

func TestCodec_RoundTrip(t *testing.T) {
	t.Parallel()
	variants := []struct {
		name string
		idle gpio.Level
		opts []Option
	}{
		{name: "idle low", idle: gpio.Low},
		{name: "idle high", idle: gpio.High},
		{name: "falling is one", idle: gpio.Low, opts: []Option{WithPolarity(PolarityFallingIsOne)}},
		{name: "falling is one idle high", idle: gpio.High, opts: []Option{WithPolarity(PolarityFallingIsOne)}},
		{name: "driven idle high", idle: gpio.High, opts: []Option{WithIdleLevel(IdleHigh)}},
		{name: "wide frame", idle: gpio.Low, opts: []Option{WithFrameSize(34)}},
		{name: "four ticks per bit", idle: gpio.Low, opts: []Option{WithTickPeriod(25 * time.Microsecond)}},
	}

	for _, v := range variants {
		t.Run(v.name, func(t *testing.T) {
			t.Parallel()
			probe := newLoopback(t, v.idle, v.opts...)
			capacity := probe.dec.Config().PayloadCapacity()

			for n := 0; n <= capacity+3; n++ {
				t.Run(fmt.Sprintf("len=%d", n), func(t *testing.T) {
					lb := newLoopback(t, v.idle, v.opts...)
					payload := payloadOf(n)
					lb.transmit(payload)

					require.Len(t, lb.frames, 1)
					want := payload[:min(n, capacity)]
					got := lb.frames[0]
					assert.Equal(t, want, got[2:2+len(want)])
					for i := 2 + len(want); i < len(got); i++ {
						assert.Zero(t, got[i], "byte %d past the payload", i)
					}
					assert.Equal(t, len(want), lb.dec.Received())
					assert.Equal(t, DataReady, lb.dec.State())
				})
			}
		})
	}
}

func TestCodec_ExampleExchange(t *testing.T) {
	t.Parallel()
	lb := newLoopback(t, gpio.Low)

	lb.transmit([]byte{0x12, 0x34})

	require.Len(t, lb.frames, 1)
	assert.Equal(t, []byte{0x55, 0xAA, 0x12, 0x34, 0, 0, 0, 0, 0, 0}, lb.frames[0])
	assert.Equal(t, []byte{0x12, 0x34}, lb.dec.Payload())

	lb.run(1000)
	assert.Len(t, lb.frames, 1, "exactly one notification per frame")
}

func TestCodec_BackToBackWithResetInHandler(t *testing.T) {
	t.Parallel()
	lb := newLoopback(t, gpio.Low)
	lb.dec.SetFrameHandler(func(frame []byte) {
		lb.frames = append(lb.frames, append([]byte(nil), frame...))
		lb.dec.Reset()
	})

	payloads := [][]byte{
		{0x01},
		{0xFF, 0xFE, 0xFD, 0xFC, 0xFB, 0xFA, 0xF9, 0xF8},
		{},
		{0x80, 0x00, 0x7F},
	}
	for _, p := range payloads {
		lb.transmit(p)
	}

	require.Len(t, lb.frames, len(payloads))
	for i, p := range payloads {
		assert.Equal(t, p, lb.frames[i][2:2+len(p)], "frame %d", i)
	}
	assert.Equal(t, NotSynchronized, lb.dec.State())
}

func TestCodec_UnreadFrameBlocksNext(t *testing.T) {
	t.Parallel()
	lb := newLoopback(t, gpio.Low)

	lb.transmit([]byte{0xAA})
	lb.transmit([]byte{0xBB})

	require.Len(t, lb.frames, 1)
	assert.Equal(t, []byte{0xAA}, lb.dec.Payload())

	lb.dec.Reset()
	lb.transmit([]byte{0xCC})
	require.Len(t, lb.frames, 2)
	assert.Equal(t, []byte{0xCC}, lb.dec.Payload())
}
