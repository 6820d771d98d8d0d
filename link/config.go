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

import "time"

// Config holds the hosted dispatch settings
type Config struct {
	// OnFrame is called on the processor goroutine for every decoded frame
	OnFrame func(Frame)

	// QueueSize is the capacity of the event queue shared by ticks, edges
	// and commands
	QueueSize int

	// FrameBuffer is the capacity of the Frames channel. Frames that do not
	// fit are dropped and counted.
	FrameBuffer int

	// AutoReset re-arms the decoder as soon as a frame has been delivered
	AutoReset bool

	// CommandTimeout bounds how long Send, ResetDecoder and Flush wait for a
	// queue slot when the caller's context has no deadline
	CommandTimeout time.Duration
}

// DefaultConfig returns the default link configuration
func DefaultConfig() *Config {
	return &Config{
		QueueSize:      256,
		FrameBuffer:    8,
		AutoReset:      true,
		CommandTimeout: time.Second,
	}
}

func (c *Config) normalize() *Config {
	out := DefaultConfig()
	if c == nil {
		return out
	}
	*out = *c
	if out.QueueSize <= 0 {
		out.QueueSize = DefaultConfig().QueueSize
	}
	if out.FrameBuffer < 0 {
		out.FrameBuffer = 0
	}
	if out.CommandTimeout <= 0 {
		out.CommandTimeout = DefaultConfig().CommandTimeout
	}
	return out
}
