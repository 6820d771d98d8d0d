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

// Package gpio drives a Manchester line over GPIO pins through periph.io
package gpio

import (
	"context"
	"fmt"
	"time"

	manchester "github.com/ZaparooProject/go-manchester"
	"github.com/ZaparooProject/go-manchester/internal/transport"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

const (
	// Edge waits return at this interval so Watch notices cancellation
	defaultPollTimeout = 100 * time.Millisecond

	defaultEdgeRetries    = 3
	defaultEdgeRetryDelay = 50 * time.Millisecond
)

// Options configures a GPIO line
type Options struct {
	Pull           gpio.Pull
	PollTimeout    time.Duration
	EdgeRetries    int
	EdgeRetryDelay time.Duration
}

// DefaultOptions returns options for an idle-low input
func DefaultOptions() Options {
	return Options{
		Pull:           gpio.PullDown,
		PollTimeout:    defaultPollTimeout,
		EdgeRetries:    defaultEdgeRetries,
		EdgeRetryDelay: defaultEdgeRetryDelay,
	}
}

// Line is a LineWriter, LineReader and link.EdgeSource over two GPIO pins.
// Either pin may be nil for a one-way line.
type Line struct {
	out  gpio.PinOut
	in   gpio.PinIn
	opts Options
}

// Open initializes the host drivers and opens the named pins. An empty name
// leaves that direction unused.
func Open(outName, inName string, opts Options) (*Line, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph host: %w", err)
	}

	var out gpio.PinOut
	if outName != "" {
		p := gpioreg.ByName(outName)
		if p == nil {
			return nil, manchester.NewLineError("open", outName, manchester.ErrLineUnavailable)
		}
		out = p
	}

	var in gpio.PinIn
	if inName != "" {
		p := gpioreg.ByName(inName)
		if p == nil {
			return nil, manchester.NewLineError("open", inName, manchester.ErrLineUnavailable)
		}
		in = p
	}

	return NewLine(out, in, opts)
}

// NewLine wraps already resolved pins and arms edge detection on in
func NewLine(out gpio.PinOut, in gpio.PinIn, opts Options) (*Line, error) {
	if opts.PollTimeout <= 0 {
		opts.PollTimeout = defaultPollTimeout
	}

	l := &Line{out: out, in: in, opts: opts}
	if in != nil {
		if err := l.armEdges(); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// armEdges configures the input for both edges. Freshly exported pins on
// Linux often reject edge setup for a few milliseconds, hence the retries.
func (l *Line) armEdges() error {
	var lastErr error
	_, err := transport.WithRetry(transport.RetryConfig{
		Description: "edge",
		Line:        l.in.Name(),
		MaxRetries:  l.opts.EdgeRetries,
		RetryDelay:  l.opts.EdgeRetryDelay,
		OnRetryFailed: func() error {
			return manchester.NewLineError("edge", l.in.Name(),
				fmt.Errorf("%w: %w", manchester.ErrLineUnavailable, lastErr))
		},
	}, func() (struct{}, bool, error) {
		if err := l.in.In(l.opts.Pull, gpio.BothEdges); err != nil {
			lastErr = err
			return struct{}{}, true, nil
		}
		return struct{}{}, false, nil
	})
	return err
}

// Out implements manchester.LineWriter
func (l *Line) Out(level gpio.Level) error {
	if l.out == nil {
		return manchester.NewLineError("out", "", manchester.ErrLineUnavailable)
	}
	if err := l.out.Out(level); err != nil {
		return manchester.NewLineError("out", l.out.Name(), fmt.Errorf("%w: %w", manchester.ErrLineWrite, err))
	}
	return nil
}

// Read implements manchester.LineReader. A line without an input reads low.
func (l *Line) Read() gpio.Level {
	if l.in == nil {
		return gpio.Low
	}
	return l.in.Read()
}

// Watch implements link.EdgeSource
func (l *Line) Watch(ctx context.Context, fn func(level gpio.Level)) error {
	if l.in == nil {
		return manchester.NewLineError("watch", "", manchester.ErrLineUnavailable)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if l.in.WaitForEdge(l.opts.PollTimeout) {
			fn(l.in.Read())
		}
	}
}

// Close disables edge detection and releases the pins
func (l *Line) Close() error {
	if l.in != nil {
		_ = l.in.In(gpio.PullNoChange, gpio.NoEdge)
		_ = l.in.Halt()
	}
	if l.out != nil {
		_ = l.out.Halt()
	}
	return nil
}

// String describes the pins in use
func (l *Line) String() string {
	out, in := "-", "-"
	if l.out != nil {
		out = l.out.Name()
	}
	if l.in != nil {
		in = l.in.Name()
	}
	return fmt.Sprintf("gpio(out=%s in=%s)", out, in)
}
