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

package serial

import (
	"context"
	"errors"
	"runtime"
	"testing"

	"github.com/ZaparooProject/go-manchester/detection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial/enumerator"
)

func TestDetector_DescribesPorts(t *testing.T) {
	t.Parallel()
	d := &detector{list: func() ([]*enumerator.PortDetails, error) {
		return []*enumerator.PortDetails{
			{Name: "/dev/ttyUSB0", IsUSB: true, VID: "0403", PID: "6001", SerialNumber: "A10K", Product: "FT232R"},
			{Name: "/dev/ttyUSB1", IsUSB: true, VID: "067b", PID: "2303"},
			{Name: "COM7", Product: "USB Serial VID:1A86 PID:7523"},
		}, nil
	}}

	opts := detection.DefaultOptions()
	devices, err := d.Detect(context.Background(), &opts)
	require.NoError(t, err)
	require.Len(t, devices, 3)

	ftdi := devices[0]
	assert.Equal(t, "serial", ftdi.Transport)
	assert.Equal(t, "FT232R (/dev/ttyUSB0)", ftdi.Name)
	assert.Equal(t, detection.Medium, ftdi.Confidence)
	assert.Equal(t, "0403:6001", ftdi.Metadata["vidpid"])
	assert.Equal(t, "A10K", ftdi.Metadata["serial"])

	assert.Equal(t, detection.Low, devices[1].Confidence, "blocklisted adapter")
	assert.Equal(t, "1A86:7523", devices[2].Metadata["vidpid"])
}

func TestDetector_Errors(t *testing.T) {
	t.Parallel()
	boom := errors.New("enumeration failed")
	d := &detector{list: func() ([]*enumerator.PortDetails, error) { return nil, boom }}

	_, err := d.Detect(context.Background(), &detection.Options{})
	require.ErrorIs(t, err, boom)

	d = &detector{list: func() ([]*enumerator.PortDetails, error) { return nil, nil }}
	_, err = d.Detect(context.Background(), &detection.Options{})
	assert.ErrorIs(t, err, detection.ErrNoDevicesFound)
}

func TestSkipPort(t *testing.T) {
	t.Parallel()
	assert.False(t, skipPort("/dev/ttyUSB0"))
	if runtime.GOOS == "linux" {
		assert.True(t, skipPort("/dev/ttyS0"))
		assert.True(t, skipPort("/dev/ttyAMA0"))
	}
}
