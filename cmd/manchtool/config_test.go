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
	"os"
	"path/filepath"
	"testing"
	"time"

	manchester "github.com/ZaparooProject/go-manchester"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "manchtool.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFileConfig_Defaults(t *testing.T) {
	t.Parallel()
	cfg, err := loadFileConfig("")
	require.NoError(t, err)

	assert.Equal(t, *manchester.DefaultConfig(), cfg.Codec)
	assert.Equal(t, "gpio", cfg.Line.Kind)
	assert.Equal(t, 256, cfg.Link.QueueSize)
	assert.True(t, cfg.Link.AutoReset)
}

func TestLoadFileConfig_Overlay(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, `
codec:
  bit_period: 200us
  frame_size: 34
line:
  kind: serial
  port: /dev/ttyUSB0
  poll_interval: 20us
  invert: true
link:
  queue_size: 1024
`)

	cfg, err := loadFileConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 200*time.Microsecond, cfg.Codec.BitPeriod)
	assert.Equal(t, 10*time.Microsecond, cfg.Codec.TickPeriod, "unset fields keep defaults")
	assert.Equal(t, 32, cfg.Codec.PayloadCapacity())
	assert.Equal(t, lineConfig{
		Kind:         "serial",
		Port:         "/dev/ttyUSB0",
		PollInterval: 20 * time.Microsecond,
		Invert:       true,
	}, cfg.Line)

	lc := cfg.linkConfig()
	assert.Equal(t, 1024, lc.QueueSize)
	assert.Equal(t, 8, lc.FrameBuffer)
	assert.True(t, lc.AutoReset)
}

func TestLoadFileConfig_Errors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{
			name: "missing file",
			path: func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.yaml") },
		},
		{
			name: "bad yaml",
			path: func(t *testing.T) string { return writeConfig(t, "codec: [") },
		},
		{
			name: "invalid codec",
			path: func(t *testing.T) string { return writeConfig(t, "codec:\n  frame_size: 1\n") },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg, err := loadFileConfig(tt.path(t))
			require.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}

func TestOpenLine(t *testing.T) {
	t.Parallel()
	ln, err := openLine(lineConfig{Kind: "loopback"})
	require.NoError(t, err)
	assert.Equal(t, "loopback", ln.desc)
	assert.NotNil(t, ln.writer)
	assert.NotNil(t, ln.edges)
	require.NoError(t, ln.close())

	_, err = openLine(lineConfig{Kind: "smoke-signal"})
	require.Error(t, err)

	_, err = openLine(lineConfig{Kind: "serial"})
	assert.ErrorContains(t, err, "needs a port")
}
