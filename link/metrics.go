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

package link

import "sync/atomic"

// Metrics contains link performance counters
type Metrics struct {
	Ticks          uint64 // Tick events processed
	Edges          uint64 // Edges delivered to the decoder
	Dropped        uint64 // Ticks or edges lost to a full queue
	FramesSent     uint64 // Payloads handed to the encoder
	FramesReceived uint64 // Frames completed by the decoder
	FramesDropped  uint64 // Frames lost to a full Frames channel
}

type counters struct {
	ticks          atomic.Uint64
	edges          atomic.Uint64
	dropped        atomic.Uint64
	framesSent     atomic.Uint64
	framesReceived atomic.Uint64
	framesDropped  atomic.Uint64
}

func (c *counters) snapshot() Metrics {
	return Metrics{
		Ticks:          c.ticks.Load(),
		Edges:          c.edges.Load(),
		Dropped:        c.dropped.Load(),
		FramesSent:     c.framesSent.Load(),
		FramesReceived: c.framesReceived.Load(),
		FramesDropped:  c.framesDropped.Load(),
	}
}
