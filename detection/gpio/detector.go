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

// Package gpio lists GPIO pins known to periph.io as line candidates
package gpio

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/ZaparooProject/go-manchester/detection"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

type detector struct {
	hostInit func() error
	pins     func() []gpio.PinIO
}

// New creates the GPIO detector
func New() detection.Detector {
	return &detector{
		hostInit: func() error {
			_, err := host.Init()
			return err
		},
		pins: gpioreg.All,
	}
}

func init() {
	detection.RegisterDetector(New())
}

func (*detector) Transport() string {
	return "gpio"
}

// Detect lists registered pins. Passive mode only sees pins registered so
// far; other modes load the host drivers first.
func (d *detector) Detect(ctx context.Context, opts *detection.Options) ([]detection.DeviceInfo, error) {
	if opts.Mode != detection.Passive {
		if err := d.hostInit(); err != nil {
			return nil, fmt.Errorf("failed to initialize periph host: %w", err)
		}
	}

	pins := d.pins()
	devices := make([]detection.DeviceInfo, 0, len(pins))
	for _, p := range pins {
		select {
		case <-ctx.Done():
			return devices, detection.ErrDetectionTimeout
		default:
		}

		dev, ok := describe(p, opts)
		if ok {
			devices = append(devices, dev)
		}
	}

	if len(devices) == 0 {
		return nil, detection.ErrNoDevicesFound
	}
	return devices, nil
}

func describe(p gpio.PinIO, opts *detection.Options) (detection.DeviceInfo, bool) {
	fn := p.Function()
	dev := detection.DeviceInfo{
		Transport:  "gpio",
		Path:       p.Name(),
		Name:       p.String(),
		Confidence: detection.Low,
		Metadata: map[string]string{
			"number":   strconv.Itoa(p.Number()),
			"function": fn,
		},
	}

	// pins muxed to another peripheral report e.g. "I2C1_SDA"
	if strings.HasPrefix(fn, "In") || strings.HasPrefix(fn, "Out") {
		dev.Confidence = detection.Medium
	}

	// Full mode checks that edge detection can be armed, then disarms it
	if opts.Mode == detection.Full && dev.Confidence == detection.Medium {
		if err := p.In(gpio.PullNoChange, gpio.BothEdges); err == nil {
			dev.Confidence = detection.High
			dev.Metadata["edges"] = "both"
			_ = p.In(gpio.PullNoChange, gpio.NoEdge)
		} else {
			dev.Metadata["edges"] = err.Error()
		}
	}

	return dev, true
}
