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
	"os"
	"time"

	"github.com/ZaparooProject/go-manchester/internal/frame"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
	"periph.io/x/conn/v3/physic"
)

// FrameHandler is called once per completed frame with the decoder's shared
// buffer. It runs in tick or edge context; copy the bytes out before the next
// frame begins.
type FrameHandler func(frame []byte)

// Config holds the fixed timing and framing constants of a link. Both ends
// must agree on every field.
type Config struct {
	logger       *zerolog.Logger
	onFrame      FrameHandler
	inputPin     string
	TickPeriod   time.Duration `yaml:"tick_period"`
	BitPeriod    time.Duration `yaml:"bit_period"`
	FrameSize    int           `yaml:"frame_size"`
	WatchdogBits int           `yaml:"watchdog_bits"`
	SyncWord     uint16        `yaml:"sync_word"`
	Polarity     Polarity      `yaml:"polarity"`
	IdleLevel    IdleLevel     `yaml:"idle_level"`
}

// DefaultConfig returns the timing of the reference microcontroller link:
// 10µs ticks, 100µs bits (10 kbit/s) and 10-byte frames.
func DefaultConfig() *Config {
	return &Config{
		TickPeriod:   10 * time.Microsecond,
		BitPeriod:    100 * time.Microsecond,
		FrameSize:    frame.DefaultFrameSize,
		WatchdogBits: 3,
		SyncWord:     frame.DefaultSyncWord,
		Polarity:     PolarityRisingIsOne,
		IdleLevel:    IdleNone,
	}
}

// ParseConfig decodes YAML on top of the defaults
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse codec config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig reads and validates a YAML config file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the operator
	if err != nil {
		return nil, fmt.Errorf("failed to read codec config: %w", err)
	}
	return ParseConfig(data)
}

// Validate checks that the timing constants produce unambiguous sampling points
func (c *Config) Validate() error {
	switch {
	case c.TickPeriod <= 0:
		return &ConfigError{Field: "tick_period", Reason: "must be positive"}
	case c.BitPeriod <= 0:
		return &ConfigError{Field: "bit_period", Reason: "must be positive"}
	case c.BitPeriod%c.TickPeriod != 0:
		return &ConfigError{
			Field:  "bit_period",
			Reason: fmt.Sprintf("%s is not a multiple of the %s tick", c.BitPeriod, c.TickPeriod),
		}
	}

	ticks := c.TicksPerBit()
	if ticks < 4 || ticks%2 != 0 {
		return &ConfigError{
			Field:  "bit_period",
			Reason: fmt.Sprintf("needs an even number of at least 4 ticks per bit, got %d", ticks),
		}
	}
	if c.FrameSize < frame.MinFrameSize || c.FrameSize > frame.MaxFrameSize {
		return &ConfigError{
			Field:  "frame_size",
			Reason: fmt.Sprintf("must be between %d and %d bytes", frame.MinFrameSize, frame.MaxFrameSize),
		}
	}
	// The decoder locks on the first alternating pair, so the first two sync
	// bits must differ for a frame to be caught from idle.
	if c.SyncWord&0x01 == (c.SyncWord>>1)&0x01 {
		return &ConfigError{
			Field:  "sync_word",
			Reason: fmt.Sprintf("%#04x: first two bits on the wire must differ", c.SyncWord),
		}
	}
	if c.WatchdogBits < 2 {
		return &ConfigError{Field: "watchdog_bits", Reason: "must be at least 2"}
	}
	if c.Polarity > PolarityFallingIsOne {
		return &ConfigError{Field: "polarity", Reason: c.Polarity.String()}
	}
	if c.IdleLevel > IdleHigh {
		return &ConfigError{Field: "idle_level", Reason: c.IdleLevel.String()}
	}
	return nil
}

// TicksPerBit returns the number of ticks in one bit cell
func (c *Config) TicksPerBit() int {
	return int(c.BitPeriod / c.TickPeriod)
}

// MidBitTick is the phase at which the encoder writes the first half of a cell
func (c *Config) MidBitTick() int {
	return c.TicksPerBit() / 2
}

// SyncThreshold is the minimum tick spacing for an edge to count as a
// centre transition. Boundary transitions arrive half a bit after a centre
// and fall below it.
func (c *Config) SyncThreshold() int {
	return c.TicksPerBit() * 3 / 4
}

// WatchdogTicks is how long the decoder waits for the next data edge before
// force-completing a frame
func (c *Config) WatchdogTicks() int {
	return c.WatchdogBits * c.TicksPerBit()
}

// PayloadCapacity returns the number of payload bytes a frame can carry
func (c *Config) PayloadCapacity() int {
	return c.FrameSize - frame.SyncBytes
}

// BitRate returns the line rate
func (c *Config) BitRate() physic.Frequency {
	return physic.PeriodToFrequency(c.BitPeriod)
}

// FrameDuration returns the air time of a frame carrying n payload bytes
func (c *Config) FrameDuration(n int) time.Duration {
	if n > c.PayloadCapacity() {
		n = c.PayloadCapacity()
	}
	return time.Duration((n+frame.SyncBytes)*frame.BitsPerByte) * c.BitPeriod
}

func (c *Config) log() zerolog.Logger {
	if c.logger != nil {
		return *c.logger
	}
	return Logger()
}
