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

// Package serial drives a Manchester line over the modem-control pins of a
// serial port: RTS is the output and CTS is the input. USB adapters with
// exposed handshake pins make a cheap bench line.
package serial

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	manchester "github.com/ZaparooProject/go-manchester"
	"github.com/ZaparooProject/go-manchester/internal/transport"
	"go.bug.st/serial"
	"periph.io/x/conn/v3/gpio"
)

const (
	defaultPollInterval = time.Millisecond
	defaultSettle       = 250 * time.Millisecond
	defaultOpenRetries  = 3
	defaultOpenDelay    = 100 * time.Millisecond
)

// modemPort is the subset of serial.Port the line needs
type modemPort interface {
	SetRTS(rts bool) error
	GetModemStatusBits() (*serial.ModemStatusBits, error)
	Close() error
}

// Options configures a serial line
type Options struct {
	// Invert swaps the logic levels, for adapters behind an inverting driver
	Invert bool
	// PollInterval is how often Watch samples CTS
	PollInterval time.Duration
	// Settle bounds how long Open waits for the modem status to become readable
	Settle time.Duration
	// OpenRetries is how often a busy port is retried
	OpenRetries int
}

// DefaultOptions returns the default serial line options
func DefaultOptions() Options {
	return Options{
		PollInterval: defaultPollInterval,
		Settle:       defaultSettle,
		OpenRetries:  defaultOpenRetries,
	}
}

// Line is a LineWriter, LineReader and link.EdgeSource over RTS and CTS
type Line struct {
	port   modemPort
	name   string
	opts   Options
	mu     sync.Mutex
	level  gpio.Level
	closed bool
}

// Open opens the named port with RTS deasserted
func Open(name string, opts Options) (*Line, error) {
	mode := &serial.Mode{
		BaudRate: 115200,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
		InitialStatusBits: &serial.ModemOutputBits{
			RTS: opts.Invert,
			DTR: true,
		},
	}

	port, err := transport.WithRetry(transport.RetryConfig{
		Description: "open",
		Line:        name,
		MaxRetries:  opts.OpenRetries,
		RetryDelay:  defaultOpenDelay,
	}, func() (serial.Port, bool, error) {
		p, openErr := serial.Open(name, mode)
		if openErr == nil {
			return p, false, nil
		}
		var portErr *serial.PortError
		if errors.As(openErr, &portErr) && portErr.Code() == serial.PortBusy {
			return nil, true, nil
		}
		return nil, false, fmt.Errorf("failed to open serial port %s: %w", name, openErr)
	})
	if err != nil {
		return nil, err
	}

	l, err := newLine(port, name, opts)
	if err != nil {
		_ = port.Close()
		return nil, err
	}
	return l, nil
}

func newLine(port modemPort, name string, opts Options) (*Line, error) {
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	if opts.Settle <= 0 {
		opts.Settle = defaultSettle
	}

	l := &Line{port: port, name: name, opts: opts}

	// some adapters fail modem status reads right after open
	bits, err := transport.TimeoutRetry(opts.Settle, func() (*serial.ModemStatusBits, bool, error) {
		b, statusErr := port.GetModemStatusBits()
		if statusErr != nil {
			return nil, true, nil
		}
		return b, false, nil
	})
	if err != nil {
		return nil, manchester.NewLineError("status", name, manchester.ErrLineRead)
	}
	l.level = l.levelOf(bits.CTS)
	return l, nil
}

func (l *Line) levelOf(asserted bool) gpio.Level {
	return gpio.Level(asserted != l.opts.Invert)
}

// Out implements manchester.LineWriter by driving RTS
func (l *Line) Out(level gpio.Level) error {
	if err := l.port.SetRTS(bool(level) != l.opts.Invert); err != nil {
		return manchester.NewLineError("out", l.name, fmt.Errorf("%w: %w", manchester.ErrLineWrite, err))
	}
	return nil
}

// Read implements manchester.LineReader by sampling CTS. A failed sample
// returns the last level seen.
func (l *Line) Read() gpio.Level {
	level, err := l.sample()
	if err != nil {
		l.mu.Lock()
		defer l.mu.Unlock()
		return l.level
	}
	return level
}

func (l *Line) sample() (gpio.Level, error) {
	bits, err := l.port.GetModemStatusBits()
	if err != nil {
		return gpio.Low, manchester.NewLineError("read", l.name, fmt.Errorf("%w: %w", manchester.ErrLineRead, err))
	}
	return l.levelOf(bits.CTS), nil
}

// Watch implements link.EdgeSource by polling CTS
func (l *Line) Watch(ctx context.Context, fn func(level gpio.Level)) error {
	ticker := time.NewTicker(l.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		level, err := l.sample()
		if err != nil {
			if l.isClosed() {
				return err
			}
			continue
		}

		l.mu.Lock()
		changed := level != l.level
		l.level = level
		l.mu.Unlock()

		if changed {
			fn(level)
		}
	}
}

func (l *Line) isClosed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}

// Close releases the port
func (l *Line) Close() error {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()

	if err := l.port.Close(); err != nil {
		return fmt.Errorf("failed to close serial port %s: %w", l.name, err)
	}
	return nil
}

// String returns the port name
func (l *Line) String() string {
	return "serial(" + l.name + ")"
}
