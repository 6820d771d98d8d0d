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

package gpio

import (
	"context"
	"testing"
	"time"

	manchester "github.com/ZaparooProject/go-manchester"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

func testOptions() Options {
	opts := DefaultOptions()
	opts.PollTimeout = 5 * time.Millisecond
	opts.EdgeRetryDelay = time.Millisecond
	return opts
}

func TestNewLine_ArmsBothEdges(t *testing.T) {
	t.Parallel()
	in := &gpiotest.Pin{N: "GPIO27", L: gpio.High, EdgesChan: make(chan gpio.Level, 4)}

	l, err := NewLine(nil, in, testOptions())
	require.NoError(t, err)
	assert.Equal(t, gpio.PullDown, in.P)
	assert.Equal(t, gpio.Low, l.Read(), "pull-down applied")
	assert.Equal(t, "gpio(out=- in=GPIO27)", l.String())
}

func TestNewLine_EdgeSetupFails(t *testing.T) {
	t.Parallel()
	// gpiotest refuses edge detection without an edge channel
	in := &gpiotest.Pin{N: "GPIO22"}

	l, err := NewLine(nil, in, testOptions())
	require.Error(t, err)
	assert.Nil(t, l)

	var lineErr *manchester.LineError
	require.ErrorAs(t, err, &lineErr)
	assert.Equal(t, "GPIO22", lineErr.Line)
	assert.ErrorIs(t, err, manchester.ErrLineUnavailable)
	assert.True(t, manchester.IsRetryable(err))
}

func TestLine_Out(t *testing.T) {
	t.Parallel()
	out := &gpiotest.Pin{N: "GPIO17"}

	l, err := NewLine(out, nil, testOptions())
	require.NoError(t, err)

	require.NoError(t, l.Out(gpio.High))
	assert.Equal(t, gpio.High, out.Read())
	require.NoError(t, l.Out(gpio.Low))
	assert.Equal(t, gpio.Low, out.Read())

	assert.Equal(t, gpio.Low, l.Read(), "no input pin")
}

func TestLine_OutWithoutPin(t *testing.T) {
	t.Parallel()
	l, err := NewLine(nil, nil, testOptions())
	require.NoError(t, err)

	err = l.Out(gpio.High)
	assert.ErrorIs(t, err, manchester.ErrLineUnavailable)
	assert.ErrorIs(t, l.Watch(context.Background(), func(gpio.Level) {}), manchester.ErrLineUnavailable)
}

func TestLine_Watch(t *testing.T) {
	t.Parallel()
	in := &gpiotest.Pin{N: "GPIO27", EdgesChan: make(chan gpio.Level, 4)}
	l, err := NewLine(nil, in, testOptions())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	got := make(chan gpio.Level, 4)
	done := make(chan error, 1)
	go func() {
		done <- l.Watch(ctx, func(level gpio.Level) { got <- level })
	}()

	in.EdgesChan <- gpio.High
	in.EdgesChan <- gpio.Low

	for _, want := range []gpio.Level{gpio.High, gpio.Low} {
		select {
		case level := <-got:
			assert.Equal(t, want, level)
		case <-time.After(2 * time.Second):
			require.FailNow(t, "edge not delivered")
		}
	}

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		require.FailNow(t, "watch did not stop")
	}
}

func TestLine_DrivesCodec(t *testing.T) {
	t.Parallel()
	out := &gpiotest.Pin{N: "GPIO17"}
	l, err := NewLine(out, nil, testOptions())
	require.NoError(t, err)

	enc, err := manchester.NewEncoder(l)
	require.NoError(t, err)

	enc.Start([]byte{0x80})
	for enc.Active() {
		enc.Tick()
	}
	assert.Equal(t, gpio.High, out.Read(), "last bit sent was a one")
	assert.Zero(t, enc.Stats().WriteErrors)
	require.NoError(t, l.Close())
}
