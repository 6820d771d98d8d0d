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

package main

import (
	"fmt"

	manchester "github.com/ZaparooProject/go-manchester"
	"github.com/ZaparooProject/go-manchester/link"
	gpioline "github.com/ZaparooProject/go-manchester/transport/gpio"
	serialline "github.com/ZaparooProject/go-manchester/transport/serial"
	"periph.io/x/conn/v3/gpio"
)

// line bundles whichever directions a backend provides
type line struct {
	writer manchester.LineWriter
	reader manchester.LineReader
	edges  link.EdgeSource
	close  func() error
	desc   string
}

func openLine(lc lineConfig) (*line, error) {
	switch lc.Kind {
	case "gpio":
		opts := gpioline.DefaultOptions()
		if lc.PollInterval > 0 {
			opts.PollTimeout = lc.PollInterval
		}
		l, err := gpioline.Open(lc.Out, lc.In, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to open GPIO line: %w", err)
		}
		return &line{writer: l, reader: l, edges: l, close: l.Close, desc: l.String()}, nil
	case "serial":
		if lc.Port == "" {
			return nil, fmt.Errorf("serial line needs a port")
		}
		opts := serialline.DefaultOptions()
		opts.Invert = lc.Invert
		if lc.PollInterval > 0 {
			opts.PollInterval = lc.PollInterval
		}
		l, err := serialline.Open(lc.Port, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to open serial line: %w", err)
		}
		return &line{writer: l, reader: l, edges: l, close: l.Close, desc: l.String()}, nil
	case "loopback":
		l := link.NewLoopbackLine(gpio.Low)
		return &line{writer: l, reader: l, edges: l, close: func() error { return nil }, desc: "loopback"}, nil
	default:
		return nil, fmt.Errorf("unknown line kind %q (want gpio, serial or loopback)", lc.Kind)
	}
}
