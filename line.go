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
	"strings"

	"gopkg.in/yaml.v3"
	"periph.io/x/conn/v3/gpio"
)

// LineWriter drives the output line. periph.io gpio.PinOut satisfies it.
type LineWriter interface {
	// Out sets the line to the given logic level
	Out(level gpio.Level) error
}

// LineReader samples the input line. periph.io gpio.PinIn satisfies it.
type LineReader interface {
	// Read returns the current logic level of the line
	Read() gpio.Level
}

// LineFunc adapts a plain function to LineWriter
type LineFunc func(level gpio.Level) error

// Out calls f(level)
func (f LineFunc) Out(level gpio.Level) error {
	return f(level)
}

// Edge is the direction of an observed transition
type Edge uint8

const (
	EdgeNone Edge = iota
	EdgeRising
	EdgeFalling
)

// String returns a human-readable edge name
func (e Edge) String() string {
	switch e {
	case EdgeNone:
		return "none"
	case EdgeRising:
		return "rising"
	case EdgeFalling:
		return "falling"
	default:
		return fmt.Sprintf("Edge(%d)", uint8(e))
	}
}

// EdgeFor returns the edge that leaves the line at level
func EdgeFor(level gpio.Level) Edge {
	if level == gpio.High {
		return EdgeRising
	}
	return EdgeFalling
}

// Polarity selects which centre transition carries a 1 bit
type Polarity uint8

const (
	// PolarityRisingIsOne sends a 1 as a low-to-high centre transition
	PolarityRisingIsOne Polarity = iota
	// PolarityFallingIsOne sends a 1 as a high-to-low centre transition
	PolarityFallingIsOne
)

// String returns the polarity name used in config files
func (p Polarity) String() string {
	switch p {
	case PolarityRisingIsOne:
		return "rising"
	case PolarityFallingIsOne:
		return "falling"
	default:
		return fmt.Sprintf("Polarity(%d)", uint8(p))
	}
}

// invert is XORed into every encoded level and decoded bit
func (p Polarity) invert() byte {
	if p == PolarityFallingIsOne {
		return 1
	}
	return 0
}

// UnmarshalYAML accepts "rising" or "falling"
func (p *Polarity) UnmarshalYAML(value *yaml.Node) error {
	switch strings.ToLower(strings.TrimSpace(value.Value)) {
	case "", "rising":
		*p = PolarityRisingIsOne
	case "falling":
		*p = PolarityFallingIsOne
	default:
		return &ConfigError{Field: "polarity", Reason: fmt.Sprintf("unknown value %q", value.Value)}
	}
	return nil
}

// MarshalYAML writes the polarity name
func (p Polarity) MarshalYAML() (any, error) {
	return p.String(), nil
}

// IdleLevel is the level the encoder leaves on the line after a frame
type IdleLevel uint8

const (
	// IdleNone leaves the line at the level of the last centre transition
	IdleNone IdleLevel = iota
	// IdleLow drives the line low half a bit after the last cell
	IdleLow
	// IdleHigh drives the line high half a bit after the last cell
	IdleHigh
)

// String returns the idle level name used in config files
func (l IdleLevel) String() string {
	switch l {
	case IdleNone:
		return "none"
	case IdleLow:
		return "low"
	case IdleHigh:
		return "high"
	default:
		return fmt.Sprintf("IdleLevel(%d)", uint8(l))
	}
}

// Level returns the gpio level to drive. ok is false for IdleNone.
func (l IdleLevel) Level() (level gpio.Level, ok bool) {
	switch l {
	case IdleLow:
		return gpio.Low, true
	case IdleHigh:
		return gpio.High, true
	default:
		return gpio.Low, false
	}
}

// UnmarshalYAML accepts "none", "low" or "high"
func (l *IdleLevel) UnmarshalYAML(value *yaml.Node) error {
	switch strings.ToLower(strings.TrimSpace(value.Value)) {
	case "", "none":
		*l = IdleNone
	case "low":
		*l = IdleLow
	case "high":
		*l = IdleHigh
	default:
		return &ConfigError{Field: "idle_level", Reason: fmt.Sprintf("unknown value %q", value.Value)}
	}
	return nil
}

// MarshalYAML writes the idle level name
func (l IdleLevel) MarshalYAML() (any, error) {
	return l.String(), nil
}
