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
	"fmt"
	"io"
	"sort"

	manchester "github.com/ZaparooProject/go-manchester"
	"github.com/ZaparooProject/go-manchester/detection"
	"github.com/ZaparooProject/go-manchester/link"
	"github.com/hsanjuan/go-ndef"
)

// Output handles consistent formatting of command results
type Output struct {
	w io.Writer
}

// NewOutput creates a new output handler writing to w
func NewOutput(w io.Writer) *Output {
	return &Output{w: w}
}

func (o *Output) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(o.w, format, args...)
}

func (o *Output) codec(cfg *manchester.Config) {
	o.printf("   Bit rate: %s, %d ticks/bit, frame %d bytes (%d payload), sync 0x%04X\n",
		cfg.BitRate(), cfg.TicksPerBit(), cfg.FrameSize, cfg.PayloadCapacity(), cfg.SyncWord)
}

// Sending prints the header for a send run
func (o *Output) Sending(desc string, payload []byte, cfg *manchester.Config) {
	o.printf("Sending %d byte(s) on %s: % X\n", len(payload), desc, payload)
	o.codec(cfg)
	o.printf("   Air time: %s\n", cfg.FrameDuration(len(payload)))
}

// Sent prints progress after each frame
func (o *Output) Sent(n, total int) {
	o.printf("OK: frame %d/%d sent\n", n, total)
}

// Listening prints the header for a listen run
func (o *Output) Listening(desc string, cfg *manchester.Config) {
	o.printf("Listening on %s\n", desc)
	o.codec(cfg)
}

// Frame prints a decoded frame
func (o *Output) Frame(n int, f link.Frame) {
	o.printf("\nFRAME %d at %s: %d byte(s)\n", n, f.Received.Format("15:04:05.000"), len(f.Payload))
	o.printf("   Payload: % X\n", f.Payload)
	if printable(f.Payload) {
		o.printf("   Text: %q\n", string(f.Payload))
	}
	o.printf("   Raw: % X\n", f.Raw)
}

// NDEF prints a decoded NDEF message or why it could not be decoded
func (o *Output) NDEF(msg *ndef.Message, err error) {
	if err != nil {
		o.printf("   NDEF: %v\n", err)
		return
	}
	o.printf("   NDEF: %s\n", msg.String())
}

// Loopback prints a self-test exchange
func (o *Output) Loopback(cfg *manchester.Config, res *loopbackResult, bits, waveform string) {
	o.printf("Loopback of %d byte(s): % X\n", len(res.sent), res.sent)
	o.codec(cfg)
	o.printf("   Bits: %s\n", bits)
	o.printf("   Wave: %s\n", waveform)
	o.printf("   Decoded after %d ticks: % X\n", res.ticks, res.payload)
	o.printf("   Raw: % X\n", res.raw)
}

// NoDevices prints the empty detection result
func (o *Output) NoDevices() {
	o.printf("No candidate lines found\n")
}

// Devices prints detection results
func (o *Output) Devices(devices []detection.DeviceInfo) {
	o.printf("Found %d candidate line(s):\n", len(devices))
	for i, d := range devices {
		o.printf("  %d. %s\n", i+1, d.String())
		keys := make([]string, 0, len(d.Metadata))
		for k := range d.Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			o.printf("       %s=%s\n", k, d.Metadata[k])
		}
	}
}

func printable(b []byte) bool {
	if len(b) == 0 {
		return false
	}
	for _, c := range b {
		if c < 0x20 || c > 0x7E {
			return false
		}
	}
	return true
}
