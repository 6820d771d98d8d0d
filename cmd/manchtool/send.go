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
	"time"

	manchester "github.com/ZaparooProject/go-manchester"
	"github.com/ZaparooProject/go-manchester/link"
)

func runSend(ctx context.Context, o *options, w io.Writer) error {
	payload, err := buildPayload(o.hex, o.text, o.ndefText, o.lang)
	if err != nil {
		return err
	}
	if o.repeat < 1 {
		return errors.New("--repeat must be at least 1")
	}

	cfg := &o.file.Codec
	if len(payload) > cfg.PayloadCapacity() {
		o.log.Warn().
			Int("len", len(payload)).
			Int("capacity", cfg.PayloadCapacity()).
			Msg("payload exceeds frame capacity and will be truncated")
	}

	if o.file.Line.Kind == "gpio" && o.file.Line.Out == "" {
		return errors.New("--out is required for a GPIO line")
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
	if ln.writer == nil {
		return fmt.Errorf("%s cannot drive the line", ln.desc)
	}

	enc, err := manchester.NewEncoder(ln.writer, manchester.WithConfig(cfg))
	if err != nil {
		return err
	}
	l, err := link.New(enc, nil, link.NewTicker(cfg.TickPeriod), nil, o.file.linkConfig())
	if err != nil {
		return err
	}
	if err := l.Start(ctx); err != nil {
		return err
	}
	defer func() { _ = l.Stop() }()

	out := NewOutput(w)
	out.Sending(ln.desc, payload, cfg)

	// air time plus generous slack for scheduler jitter
	budget := 10*cfg.FrameDuration(len(payload)) + time.Second
	for i := 0; i < o.repeat; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(o.interval):
			}
		}
		if err := sendOne(ctx, l, payload, budget); err != nil {
			return err
		}
		out.Sent(i+1, o.repeat)
	}

	o.log.Debug().
		Uint64("ticks", l.Metrics().Ticks).
		Uint64("dropped", l.Metrics().Dropped).
		Msg("send finished")
	return nil
}

func sendOne(ctx context.Context, l *link.Link, payload []byte, budget time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	if err := l.Send(ctx, payload); err != nil {
		return fmt.Errorf("failed to queue frame: %w", err)
	}
	if err := l.Flush(ctx); err != nil {
		return fmt.Errorf("frame did not finish: %w", err)
	}
	return nil
}
