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
	"context"
	"errors"
	"fmt"
	"io"

	manchester "github.com/ZaparooProject/go-manchester"
	"github.com/ZaparooProject/go-manchester/link"
)

func runListen(ctx context.Context, o *options, w io.Writer) error {
	if o.file.Line.Kind == "gpio" && o.file.Line.In == "" {
		return errors.New("--in is required for a GPIO line")
	}
	ln, err := openLine(o.file.Line)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := ln.close(); closeErr != nil {
			o.log.Warn().Err(closeErr).Msg("failed to close line")
		}
	}()
	if ln.reader == nil || ln.edges == nil {
		return fmt.Errorf("%s cannot sample the line", ln.desc)
	}

	cfg := &o.file.Codec
	dec, err := manchester.NewDecoder(ln.reader, manchester.WithConfig(cfg))
	if err != nil {
		return err
	}
	lc := o.file.linkConfig()
	lc.AutoReset = true
	l, err := link.New(nil, dec, link.NewTicker(cfg.TickPeriod), ln.edges, lc)
	if err != nil {
		return err
	}

	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}
	if err := l.Start(ctx); err != nil {
		return err
	}
	defer func() { _ = l.Stop() }()

	out := NewOutput(w)
	out.Listening(ln.desc, cfg)

	seen := 0
	for f := range l.Frames() {
		seen++
		out.Frame(seen, f)
		if o.ndef {
			msg, err := decodeNDEF(f.Payload)
			out.NDEF(msg, err)
		}
		if o.count > 0 && seen >= o.count {
			break
		}
	}

	m := l.Metrics()
	o.log.Debug().
		Uint64("edges", m.Edges).
		Uint64("dropped", m.Dropped).
		Uint64("frames_dropped", m.FramesDropped).
		Msg("listen finished")

	if err := l.Stop(); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if o.count > 0 && seen < o.count {
		return fmt.Errorf("received %d of %d frames: %w", seen, o.count, ctx.Err())
	}
	return nil
}
