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
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
)

// feeder drives a decoder with an ideal Manchester waveform, tick by tick
type feeder struct {
	dec    *Decoder
	tpb    int
	glitch int // ticks after each centre at which to inject a glitch; 0 disables
	level  gpio.Level
}

func newFeeder(dec *Decoder, idle gpio.Level) *feeder {
	return &feeder{dec: dec, level: idle, tpb: dec.Config().TicksPerBit()}
}

func (f *feeder) set(level gpio.Level) {
	if level == f.level {
		return
	}
	f.level = level
	f.dec.HandleLevel(level)
}

func (f *feeder) ticks(n int) {
	for i := 0; i < n; i++ {
		f.dec.Tick()
	}
}

// sendBits emits one cell per bit: first half at !bit, centre transition to bit
func (f *feeder) sendBits(bits []byte) {
	half := f.tpb / 2
	for _, b := range bits {
		if f.glitch > 0 && f.glitch < half {
			f.ticks(f.glitch)
			f.dec.HandleLevel(!f.level)
			f.dec.HandleLevel(f.level)
			f.ticks(half - f.glitch)
		} else {
			f.ticks(half)
		}
		f.set(b == 0)
		f.ticks(f.tpb - half)
		f.set(b == 1)
	}
}

func (f *feeder) sendFrame(sync uint16, payload []byte) {
	f.sendBits(mtesting.BuildFrameBits(sync, payload))
}

// loopback wires an encoder's output straight into a decoder through a
// simulated line
type loopback struct {
	enc    *Encoder
	dec    *Decoder
	wire   *mtesting.Wire
	frames [][]byte
}

func newLoopback(t *testing.T, idle gpio.Level, opts ...Option) *loopback {
	t.Helper()
	lb := &loopback{wire: mtesting.NewWire(idle)}

	enc, err := NewEncoder(lb.wire, opts...)
	require.NoError(t, err)

	decOpts := append([]Option{}, opts...)
	decOpts = append(decOpts, WithFrameHandler(func(frame []byte) {
		lb.frames = append(lb.frames, append([]byte(nil), frame...))
	}))
	dec, err := NewDecoder(lb.wire, decOpts...)
	require.NoError(t, err)

	lb.enc = enc
	lb.dec = dec
	return lb
}

// tick runs one timer interrupt followed by any pending edge interrupts
func (lb *loopback) tick() {
	lb.enc.Tick()
	lb.dec.Tick()
	lb.wire.Drain(lb.dec.HandleLevel)
	lb.wire.Advance()
}

func (lb *loopback) run(n int) {
	for i := 0; i < n; i++ {
		lb.tick()
	}
}

// transmit sends payload and runs until the encoder is idle and the decoder
// watchdog has had time to fire
func (lb *loopback) transmit(payload []byte) {
	lb.enc.Start(payload)
	for lb.enc.Active() {
		lb.tick()
	}
	lb.run(lb.dec.Config().WatchdogTicks() + 2)
}
