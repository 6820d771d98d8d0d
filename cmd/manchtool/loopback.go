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
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	manchester "github.com/ZaparooProject/go-manchester"
	"github.com/ZaparooProject/go-manchester/internal/frame"
	"github.com/ZaparooProject/go-manchester/link"
	"periph.io/x/conn/v3/gpio"
)

var errLoopbackMismatch = errors.New("loopback payload mismatch")

// loopbackResult is one in-process exchange
type loopbackResult struct {
	sent     []byte
	raw      []byte
	payload  []byte
	waveform []gpio.Level
	ticks    int
}

// exchange encodes payload onto an in-memory line and decodes it again,
// stepping both codecs tick by tick.
func exchange(cfg *manchester.Config, payload []byte) (*loopbackResult, error) {
	line := link.NewLoopbackLine(gpio.Low)
	enc, err := manchester.NewEncoder(line, manchester.WithConfig(cfg))
	if err != nil {
		return nil, err
	}
	res := &loopbackResult{sent: payload}
	dec, err := manchester.NewDecoder(line, manchester.WithConfig(cfg), manchester.WithFrameHandler(func(raw []byte) {
		res.raw = append([]byte(nil), raw...)
	}))
	if err != nil {
		return nil, err
	}

	limit := cfg.TicksPerBit()*(cfg.FrameSize*frame.BitsPerByte+1) + cfg.WatchdogTicks() + cfg.TicksPerBit()
	enc.Start(payload)
	for res.ticks < limit && res.raw == nil {
		enc.Tick()
		dec.Tick()
		line.Drain(dec.HandleLevel)
		res.waveform = append(res.waveform, line.Read())
		res.ticks++
	}
	if res.raw == nil {
		return res, fmt.Errorf("no frame decoded after %d ticks (decoder %s)", res.ticks, dec.State())
	}
	res.payload = append([]byte(nil), dec.Payload()...)
	return res, nil
}

// wireBits is the sync word followed by the payload as it goes on the wire
func wireBits(cfg *manchester.Config, payload []byte) string {
	head := make([]byte, frame.SyncBytes)
	frame.PutSyncWord(head, cfg.SyncWord)
	n := min(len(payload), cfg.PayloadCapacity())

	var sb strings.Builder
	for i, b := range append(head, payload[:n]...) {
		if i > 0 {
			sb.WriteByte(' ')
		}
		for _, bit := range frame.Bits([]byte{b}) {
			sb.WriteByte('0' + bit)
		}
	}
	return sb.String()
}

// renderWaveform draws one character per half bit, '_' low and '-' high
func renderWaveform(levels []gpio.Level, ticksPerBit int) string {
	step := max(ticksPerBit/2, 1)
	var sb strings.Builder
	for i := 0; i < len(levels); i += step {
		if levels[i] {
			sb.WriteByte('-')
		} else {
			sb.WriteByte('_')
		}
	}
	return sb.String()
}

func runLoopback(_ context.Context, o *options, w io.Writer) error {
	payload, err := buildPayload(o.hex, o.text, o.ndefText, o.lang)
	if err != nil {
		return err
	}

	cfg := &o.file.Codec
	res, err := exchange(cfg, payload)
	if err != nil {
		return err
	}

	out := NewOutput(w)
	out.Loopback(cfg, res, wireBits(cfg, payload), renderWaveform(res.waveform, cfg.TicksPerBit()))
	if o.ndefText != "" {
		msg, err := decodeNDEF(res.payload)
		out.NDEF(msg, err)
	}

	want := payload[:min(len(payload), cfg.PayloadCapacity())]
	if !bytes.Equal(want, res.payload) {
		return fmt.Errorf("%w: sent % X, decoded % X", errLoopbackMismatch, want, res.payload)
	}
	return nil
}
