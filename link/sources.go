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

import (
	"context"
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"
)

// TickSource calls fn once per codec tick until ctx is done
type TickSource interface {
	Run(ctx context.Context, fn func()) error
}

// EdgeSource calls fn with the new line level after every transition until
// ctx is done
type EdgeSource interface {
	Watch(ctx context.Context, fn func(level gpio.Level)) error
}

// Drainer is implemented by edge sources whose transitions are produced on
// the processor goroutine itself. The link drains them after every tick
// instead of running Watch, so each edge lands in the tick that caused it.
type Drainer interface {
	Drain(fn func(level gpio.Level))
}

// Ticker is a TickSource backed by time.Ticker. Go timers cannot hold a
// microsecond period steadily, so hosted links usually stretch the tick.
type Ticker struct {
	period time.Duration
}

// NewTicker creates a tick source firing every period
func NewTicker(period time.Duration) *Ticker {
	return &Ticker{period: period}
}

// Period returns the tick period
func (t *Ticker) Period() time.Duration {
	return t.period
}

// Run implements TickSource
func (t *Ticker) Run(ctx context.Context, fn func()) error {
	ticker := time.NewTicker(t.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			fn()
		}
	}
}

// LoopbackLine is an in-memory line whose output is its own input. It
// implements LineWriter, LineReader, EdgeSource and Drainer.
type LoopbackLine struct {
	notify  chan struct{}
	pending []gpio.Level
	mu      sync.Mutex
	level   gpio.Level
}

// NewLoopbackLine creates a loopback line resting at level
func NewLoopbackLine(level gpio.Level) *LoopbackLine {
	return &LoopbackLine{
		level:  level,
		notify: make(chan struct{}, 1),
	}
}

// Out sets the line level and records an edge if it changed
func (l *LoopbackLine) Out(level gpio.Level) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level == l.level {
		return nil
	}
	l.level = level
	l.pending = append(l.pending, level)

	select {
	case l.notify <- struct{}{}:
	default:
	}
	return nil
}

// Read returns the current level
func (l *LoopbackLine) Read() gpio.Level {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// Drain delivers and clears the edges recorded since the last call
func (l *LoopbackLine) Drain(fn func(level gpio.Level)) {
	l.mu.Lock()
	pending := l.pending
	l.pending = nil
	l.mu.Unlock()

	for _, level := range pending {
		fn(level)
	}
}

// Watch delivers edges as they are written until ctx is done
func (l *LoopbackLine) Watch(ctx context.Context, fn func(level gpio.Level)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.notify:
			l.Drain(fn)
		}
	}
}
