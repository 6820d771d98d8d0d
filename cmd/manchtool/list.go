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
	"strings"

	"github.com/ZaparooProject/go-manchester/detection"
	_ "github.com/ZaparooProject/go-manchester/detection/gpio"
	_ "github.com/ZaparooProject/go-manchester/detection/serial"
)

func parseMode(s string) (detection.Mode, error) {
	switch strings.ToLower(s) {
	case "passive":
		return detection.Passive, nil
	case "safe":
		return detection.Safe, nil
	case "full":
		return detection.Full, nil
	default:
		return detection.Passive, fmt.Errorf("unknown detection mode %q (want passive, safe or full)", s)
	}
}

func runList(ctx context.Context, o *options, w io.Writer) error {
	mode, err := parseMode(o.mode)
	if err != nil {
		return err
	}

	opts := detection.DefaultOptions()
	opts.Mode = mode
	opts.Timeout = o.timeout
	opts.IgnorePaths = o.ignore

	devices, err := detection.DetectAllContext(ctx, &opts)
	out := NewOutput(w)
	if errors.Is(err, detection.ErrNoDevicesFound) {
		out.NoDevices()
		return nil
	}
	if err != nil {
		return fmt.Errorf("detection failed: %w", err)
	}
	out.Devices(devices)
	return nil
}
