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

	"github.com/ZaparooProject/go-manchester/internal/frame"
	"github.com/rs/zerolog"
	"periph.io/x/conn/v3/gpio"
)

// DecodeState is the synchronization stage of the decoder
type DecodeState uint8

const (
	// NotSynchronized waits for two well-spaced alternating edges
	NotSynchronized DecodeState = iota
	// BitSynchronized is locked to bit cells and hunting for the sync word
	BitSynchronized
	// DataSynchronized is extracting payload bits
	DataSynchronized
	// DataReady holds a completed frame until Reset
	DataReady
)

// String returns a human-readable state name
func (s DecodeState) String() string {
	switch s {
	case NotSynchronized:
		return "not synchronized"
	case BitSynchronized:
		return "bit synchronized"
	case DataSynchronized:
		return "data synchronized"
	case DataReady:
		return "data ready"
	default:
		return fmt.Sprintf("DecodeState(%d)", uint8(s))
	}
}

// DecoderStats counts decoder activity
type DecoderStats struct {
	FramesDecoded       uint64
	WatchdogCompletions uint64
	BitLocks            uint64
	SyncMatches         uint64
	NoiseEdges          uint64
	Resets              uint64
}

// Decoder recovers frames from edges on the input line.
type Decoder struct {
	in        LineReader
	cfg       *Config
	onFrame   FrameHandler
	log       zerolog.Logger
	sess      session
	stats     DecoderStats
	elapsed   int
	threshold int
	watchdog  int
	received  int
	shift     uint16
	state     DecodeState
	cur       Edge
	prev      Edge
	invert    byte
}

// NewDecoder creates a decoder sampling in. in may be nil if edges are only
// delivered through HandleLevel.
func NewDecoder(in LineReader, opts ...Option) (*Decoder, error) {
	cfg, err := buildConfig(opts)
	if err != nil {
		return nil, err
	}

	onFrame := cfg.onFrame
	if onFrame == nil {
		onFrame = func([]byte) {}
	}

	return &Decoder{
		in:        in,
		cfg:       cfg,
		onFrame:   onFrame,
		log:       cfg.log().With().Str("role", "decoder").Logger(),
		sess:      newSession(cfg.FrameSize),
		threshold: cfg.SyncThreshold(),
		watchdog:  cfg.WatchdogTicks(),
		invert:    cfg.Polarity.invert(),
	}, nil
}

// Config returns the decoder's configuration
func (d *Decoder) Config() *Config {
	return d.cfg
}

// SetFrameHandler replaces the frame-ready notification. A nil handler
// restores the no-op default.
func (d *Decoder) SetFrameHandler(handler FrameHandler) {
	if handler == nil {
		handler = func([]byte) {}
	}
	d.onFrame = handler
}

// State returns the current synchronization stage
func (d *Decoder) State() DecodeState {
	return d.state
}

// Stats returns a copy of the decoder counters
func (d *Decoder) Stats() DecoderStats {
	return d.stats
}

// Frame returns the shared frame buffer, sync field included. Its contents
// are only meaningful in DataReady and are overwritten by the next frame.
func (d *Decoder) Frame() []byte {
	return d.sess.buf
}

// Received returns the number of complete payload bytes in the last frame
func (d *Decoder) Received() int {
	return d.received
}

// Payload returns the complete payload bytes of the last frame, or nil
// before a frame is ready. The slice aliases the shared buffer.
func (d *Decoder) Payload() []byte {
	if d.state != DataReady {
		return nil
	}
	return d.sess.buf[frame.SyncBytes : frame.SyncBytes+d.received]
}

// Reset returns the decoder to NotSynchronized from any state. The next edge
// re-arms it.
func (d *Decoder) Reset() {
	d.state = NotSynchronized
	d.sess.active = false
	d.cur, d.prev = EdgeNone, EdgeNone
	d.elapsed = 0
	d.shift = 0
	d.stats.Resets++
}

// HandleInterrupt is the edge dispatch entry point. Edges on pins other than
// the configured input pin are ignored.
func (d *Decoder) HandleInterrupt(pin string) {
	if d.cfg.inputPin != "" && pin != d.cfg.inputPin {
		return
	}
	d.HandleEdge()
}

// HandleEdge processes a transition, reading the input line for its direction
func (d *Decoder) HandleEdge() {
	if d.in == nil {
		return
	}
	d.HandleLevel(d.in.Read())
}

// HandleLevel processes a transition that left the line at level
func (d *Decoder) HandleLevel(level gpio.Level) {
	d.cur = EdgeFor(level)

	switch d.state {
	case NotSynchronized:
		d.hunt()
	case BitSynchronized:
		d.matchSync()
	case DataSynchronized:
		d.extract()
	case DataReady:
	}

	d.prev = d.cur
}

// Tick advances the inter-edge counter and runs the idle watchdog
func (d *Decoder) Tick() {
	if !d.sess.active {
		return
	}

	if d.state == DataSynchronized && d.elapsed >= d.watchdog {
		d.elapsed = 0
		d.stats.WatchdogCompletions++
		d.complete()
		return
	}

	d.elapsed++
}

// hunt looks for two alternating edges a full centre spacing apart. Both are
// then centre transitions, so both bits go into the shift register.
func (d *Decoder) hunt() {
	if !d.sess.active {
		d.sess.active = true
		d.elapsed = 0
		return
	}

	if d.prev == EdgeNone || d.cur == d.prev {
		return
	}

	spaced := d.elapsed >= d.threshold
	d.elapsed = 0
	if !spaced {
		d.stats.NoiseEdges++
		return
	}

	d.shift = 0
	d.push(d.bitFor(d.prev))
	d.push(d.bitFor(d.cur))
	d.sess.clear()
	d.state = BitSynchronized
	d.stats.BitLocks++
	d.log.Debug().Stringer("edge", d.cur).Msg("bit synchronized")
}

func (d *Decoder) matchSync() {
	if !d.qualify() {
		return
	}

	d.push(d.bitFor(d.cur))
	if d.shift != d.cfg.SyncWord {
		return
	}

	frame.PutSyncWord(d.sess.buf, d.shift)
	d.sess.rewind(frame.SyncBytes, len(d.sess.buf))
	d.state = DataSynchronized
	d.stats.SyncMatches++
	d.log.Debug().Uint16("sync", d.shift).Msg("data synchronized")
}

func (d *Decoder) extract() {
	if !d.qualify() {
		return
	}

	if d.bitFor(d.cur) == 1 {
		d.sess.setBit()
	}
	if d.sess.advance() {
		d.complete()
	}
}

// qualify reports whether the current edge is a centre transition and
// restarts the spacing counter if so. Closer edges leave the counter running.
func (d *Decoder) qualify() bool {
	if d.elapsed < d.threshold {
		d.stats.NoiseEdges++
		return false
	}
	d.elapsed = 0
	return true
}

func (d *Decoder) complete() {
	d.sess.active = false
	d.cur, d.prev = EdgeNone, EdgeNone
	d.state = DataReady
	d.received = d.sess.byteIdx - frame.SyncBytes
	d.stats.FramesDecoded++

	d.log.Debug().Int("payload", d.received).Msg("frame ready")
	d.onFrame(d.sess.buf)
}

// push shifts bit in as the most recent bit. After 16 pushes the first bit
// received sits at bit 0, matching the low-byte-first wire order.
func (d *Decoder) push(bit byte) {
	d.shift = d.shift>>1 | uint16(bit)<<15
}

func (d *Decoder) bitFor(edge Edge) byte {
	var bit byte
	if edge == EdgeRising {
		bit = 1
	}
	return bit ^ d.invert
}
