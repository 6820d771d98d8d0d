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

// Package testing provides a simulated line for exercising the codec without hardware
package testing

import (
	"sync"

	"periph.io/x/conn/v3/gpio"
)

// Transition is a level change recorded on a Wire
type Transition struct {
	Tick  int
	Level gpio.Level
}

// Wire simulates a single digital line shared by a writer and a reader.
// Transitions written during a tick are held as pending edges until Drain,
// the way a pin interrupt stays pending until the timer handler returns.
type Wire struct {
	Transitions []Transition
	Levels      []gpio.Level
	pending     []gpio.Level
	mu          sync.Mutex
	tick        int
	writes      int
	level       gpio.Level
	failWrites  bool
}

// NewWire creates a wire idling at level
func NewWire(level gpio.Level) *Wire {
	return &Wire{level: level}
}

// Out implements the codec's line writer
func (w *Wire) Out(level gpio.Level) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.writes++
	if w.failWrites {
		return ErrWireFault
	}
	w.set(level)
	return nil
}

// Read implements the codec's line reader
func (w *Wire) Read() gpio.Level {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.level
}

// Glitch flips the line and flips it back within the current tick
func (w *Wire) Glitch() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.set(!w.level)
	w.set(!w.level)
}

// Toggle flips the line once, as an external source would
func (w *Wire) Toggle() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.set(!w.level)
}

// SetFault makes every following Out call fail
func (w *Wire) SetFault(fail bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.failWrites = fail
}

// Drain delivers pending edges in order, reporting the level each one left
func (w *Wire) Drain(fn func(level gpio.Level)) {
	w.mu.Lock()
	pending := w.pending
	w.pending = nil
	w.mu.Unlock()

	for _, level := range pending {
		fn(level)
	}
}

// Advance closes the current tick, recording the level at its end
func (w *Wire) Advance() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.Levels = append(w.Levels, w.level)
	w.tick++
}

// Tick returns the number of completed ticks
func (w *Wire) Tick() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.tick
}

// Writes returns the number of Out calls
func (w *Wire) Writes() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.writes
}

func (w *Wire) set(level gpio.Level) {
	if level == w.level {
		return
	}
	w.level = level
	w.pending = append(w.pending, level)
	w.Transitions = append(w.Transitions, Transition{Tick: w.tick, Level: level})
}
