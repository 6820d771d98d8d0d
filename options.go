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
	"time"

	"github.com/rs/zerolog"
)

// Option is a functional option for configuring an Encoder or Decoder
type Option func(*Config) error

// WithConfig replaces the codec constants with a copy of cfg. Apply it before
// any other option.
func WithConfig(cfg *Config) Option {
	return func(c *Config) error {
		if cfg == nil {
			return nil
		}
		logger, onFrame, pin := c.logger, c.onFrame, c.inputPin
		*c = *cfg
		if c.logger == nil {
			c.logger = logger
		}
		if c.onFrame == nil {
			c.onFrame = onFrame
		}
		if c.inputPin == "" {
			c.inputPin = pin
		}
		return nil
	}
}

// WithTickPeriod sets the timing-base interval
func WithTickPeriod(period time.Duration) Option {
	return func(c *Config) error {
		c.TickPeriod = period
		return nil
	}
}

// WithBitPeriod sets the duration of one bit cell
func WithBitPeriod(period time.Duration) Option {
	return func(c *Config) error {
		c.BitPeriod = period
		return nil
	}
}

// WithFrameSize sets the frame size in bytes, sync field included
func WithFrameSize(size int) Option {
	return func(c *Config) error {
		c.FrameSize = size
		return nil
	}
}

// WithSyncWord sets the 16-bit sync constant
func WithSyncWord(word uint16) Option {
	return func(c *Config) error {
		c.SyncWord = word
		return nil
	}
}

// WithPolarity selects which centre transition carries a 1
func WithPolarity(p Polarity) Option {
	return func(c *Config) error {
		c.Polarity = p
		return nil
	}
}

// WithIdleLevel makes the encoder return the line to level after each frame
func WithIdleLevel(level IdleLevel) Option {
	return func(c *Config) error {
		c.IdleLevel = level
		return nil
	}
}

// WithWatchdogBits sets the decoder idle watchdog in bit periods
func WithWatchdogBits(bits int) Option {
	return func(c *Config) error {
		c.WatchdogBits = bits
		return nil
	}
}

// WithLogger sets an instance logger instead of the package logger
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Config) error {
		c.logger = &logger
		return nil
	}
}

// WithFrameHandler sets the decoder's frame-ready notification
func WithFrameHandler(handler FrameHandler) Option {
	return func(c *Config) error {
		c.onFrame = handler
		return nil
	}
}

// WithInputPin names the input pin. Decoder.HandleInterrupt ignores other pins.
func WithInputPin(name string) Option {
	return func(c *Config) error {
		c.inputPin = name
		return nil
	}
}

func buildConfig(opts []Option) (*Config, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
