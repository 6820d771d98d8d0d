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

// Package serial lists serial ports whose modem-control pins can carry a line
package serial

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/ZaparooProject/go-manchester/detection"
	"go.bug.st/serial/enumerator"
)

type detector struct {
	list func() ([]*enumerator.PortDetails, error)
}

// New creates the serial port detector
func New() detection.Detector {
	return &detector{list: enumerator.GetDetailedPortsList}
}

func init() {
	detection.RegisterDetector(New())
}

func (*detector) Transport() string {
	return "serial"
}

func (d *detector) Detect(ctx context.Context, opts *detection.Options) ([]detection.DeviceInfo, error) {
	ports, err := d.list()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate serial ports: %w", err)
	}

	devices := make([]detection.DeviceInfo, 0, len(ports))
	for _, port := range ports {
		select {
		case <-ctx.Done():
			return devices, detection.ErrDetectionTimeout
		default:
		}

		if skipPort(port.Name) {
			continue
		}
		devices = append(devices, describe(port, opts))
	}

	if len(devices) == 0 {
		return nil, detection.ErrNoDevicesFound
	}
	return devices, nil
}

// skipPort drops ports that never have handshake pins wired out
func skipPort(name string) bool {
	switch runtime.GOOS {
	case "darwin":
		// tty.* duplicates cu.*; Bluetooth ports are virtual
		return strings.HasPrefix(name, "/dev/tty.") || strings.Contains(name, "Bluetooth")
	case "linux":
		// on-board UARTs rarely route RTS/CTS
		return strings.HasPrefix(name, "/dev/ttyS") || strings.HasPrefix(name, "/dev/ttyAMA")
	default:
		return false
	}
}

func describe(port *enumerator.PortDetails, opts *detection.Options) detection.DeviceInfo {
	dev := detection.DeviceInfo{
		Transport:  "serial",
		Path:       port.Name,
		Name:       port.Name,
		Confidence: detection.Low,
		Metadata:   map[string]string{},
	}
	if port.Product != "" {
		dev.Name = port.Product + " (" + port.Name + ")"
		dev.Metadata["product"] = port.Product
	}

	if port.IsUSB {
		dev.Confidence = detection.Medium
		if vidpid := detection.FormatVIDPID(port.VID, port.PID); vidpid != "" {
			dev.Metadata["vidpid"] = vidpid
			if detection.IsBlocked(vidpid, opts.Blocklist) {
				dev.Confidence = detection.Low
			}
		}
		if port.SerialNumber != "" {
			dev.Metadata["serial"] = port.SerialNumber
		}
	} else if vidpid := detection.ParseVIDPID(port.Product); vidpid != "" {
		dev.Metadata["vidpid"] = vidpid
	}

	return dev
}
