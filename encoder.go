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
	"github.com/ZaparooProject/go-manchester/internal/frame"
	"github.com/rs/zerolog"
	"periph.io/x/conn/v3/gpio"
)

// EncoderStats counts encoder activity
type EncoderStats struct {
	FramesStarted   uint64
	FramesCompleted uint64
	BitsSent        uint64
	WriteErrors     uint64
}

// Encoder emits frames on the output line, one half-cell per tick pair.
type Encoder struct {
	out    LineWriter
	cfg    *Config
	log    zerolog.Logger
	sess   session
	stats  EncoderStats
	phase  int
	mid    int
	end    int
	clock  byte
	idling bool
}

// NewEncoder creates an encoder writing to out
func NewEncoder(out LineWriter, opts ...Option) (*Encoder, error) {
	cfg, err := buildConfig(opts)
	if err != nil {
		return nil, err
	}

	return &Encoder{
		out:  out,
		cfg:  cfg,
		log:  cfg.log().With().Str("role", "encoder").Logger(),
		sess: newSession(cfg.FrameSize),
		mid:  cfg.MidBitTick(),
		end:  cfg.TicksPerBit(),
	}, nil
}

// Config returns the encoder's configuration
func (e *Encoder) Config() *Config {
	return e.cfg
}

// Start begins sending payload, prefixed with the sync word. Payloads longer
// than the frame capacity are truncated. A transmission already in progress
// is abandoned.
func (e *Encoder) Start(payload []byte) {
	n := len(payload)
	if n > e.cfg.PayloadCapacity() {
		e.log.Debug().Int("len", n).Int("capacity", e.cfg.PayloadCapacity()).Msg("payload truncated")
		n = e.cfg.PayloadCapacity()
	}

	copy(e.sess.buf[frame.SyncBytes:], payload[:n])
	frame.PutSyncWord(e.sess.buf, e.cfg.SyncWord)
	e.sess.rewind(0, n+frame.SyncBytes)

	e.phase = 0
	e.clock = 1
	e.idling = false
	e.sess.active = true
	e.stats.FramesStarted++

	e.log.Debug().Int("bytes", e.sess.total).Msg("frame started")
}

// Active reports whether a frame is being sent
func (e *Encoder) Active() bool {
	return e.sess.active
}

// Stats returns a copy of the encoder counters
func (e *Encoder) Stats() EncoderStats {
	return e.stats
}

// Tick advances the encoder by one timing-base interval. It writes the line
// at mid-bit and end-of-bit; the end-of-bit write is the centre transition of
// the Manchester cell.
func (e *Encoder) Tick() {
	if !e.sess.active {
		return
	}

	if e.idling {
		if e.phase == e.mid {
			level, _ := e.cfg.IdleLevel.Level()
			e.write(level)
			e.finish()
		}
		e.phase++
		return
	}

	if e.phase == e.mid || e.phase == e.end {
		e.write(gpio.Level(e.sess.bit()^e.clock^e.cfg.Polarity.invert() == 1))
		e.clock ^= 1
	}

	if e.phase == e.end {
		e.stats.BitsSent++
		if e.sess.advance() {
			if _, ok := e.cfg.IdleLevel.Level(); ok {
				e.idling = true
			} else {
				e.finish()
			}
		}
		e.phase = 0
	}

	e.phase++
}

func (e *Encoder) finish() {
	e.sess.active = false
	e.idling = false
	e.stats.FramesCompleted++
	e.log.Debug().Uint64("bits", e.stats.BitsSent).Msg("frame sent")
}

func (e *Encoder) write(level gpio.Level) {
	if err := e.out.Out(level); err != nil {
		e.stats.WriteErrors++
		e.log.Debug().Err(err).Msg("output write failed")
	}
}
