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

/*
Package manchester provides a software Manchester line codec for a single digital line.

The codec is made of two independent state machines driven by a periodic tick and by
level-change events on the input line. No serial hardware is involved: the encoder
writes an output line at fixed tick points and the decoder recovers bit and byte
alignment from inter-edge spacing alone.

Wire Format:

Every frame starts with a 16-bit sync word (0xAA55 by default, low byte first),
followed by up to FrameSize-2 payload bytes. Bits are sent LSB first. Each bit cell
has exactly one transition at its centre; with the default polarity a rising
transition is a 1 and a falling transition is a 0.

	sync 0x55      sync 0xAA      payload...
	1010 1010      0101 0101      ...

Basic Usage:

	import (
	    "github.com/ZaparooProject/go-manchester"
	    "github.com/ZaparooProject/go-manchester/link"
	    "github.com/ZaparooProject/go-manchester/transport/gpio"
	)

	line, err := gpio.Open("GPIO17", "GPIO27")
	if err != nil {
	    log.Fatal(err)
	}

	cfg := manchester.DefaultConfig()
	cfg.TickPeriod = time.Millisecond
	cfg.BitPeriod = 10 * time.Millisecond

	enc, err := manchester.NewEncoder(line, manchester.WithConfig(cfg))
	if err != nil {
	    log.Fatal(err)
	}
	dec, err := manchester.NewDecoder(line, manchester.WithConfig(cfg))
	if err != nil {
	    log.Fatal(err)
	}

	l := link.New(enc, dec, link.NewTicker(cfg.TickPeriod), line, nil)
	if err := l.Start(ctx); err != nil {
	    log.Fatal(err)
	}
	defer l.Stop()

	_ = l.Send(ctx, []byte("hi"))
	frame := <-l.Frames()

Bare-Metal Usage:

On a microcontroller the encoder and decoder are driven directly from interrupt
handlers. The timer handler calls Encoder.Tick and Decoder.Tick; the pin change
handler calls Decoder.HandleInterrupt. The two handlers must never interleave.

	func timerISR() {
	    enc.Tick()
	    dec.Tick()
	}

	func pinISR(pin string) {
	    dec.HandleInterrupt(pin)
	}

Limitations:

There is no payload integrity check. A frame is accepted once the full 16-bit sync
word matches exactly, and a frame shorter than FrameSize completes through the
decoder idle watchdog, with the unreceived tail left zeroed.

Thread Safety:

Encoder and Decoder are not safe for concurrent use. The link package serializes
ticks, edges, and commands onto one goroutine for hosted use.
*/
package manchester
