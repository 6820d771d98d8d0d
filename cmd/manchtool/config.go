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
	"os"
	"time"

	manchester "github.com/ZaparooProject/go-manchester"
	"github.com/ZaparooProject/go-manchester/link"
	"gopkg.in/yaml.v3"
)

// fileConfig is the on-disk layout of --config
type fileConfig struct {
	Codec manchester.Config `yaml:"codec"`
	Line  lineConfig        `yaml:"line"`
	Link  linkConfig        `yaml:"link"`
}

type lineConfig struct {
	Kind         string        `yaml:"kind"`
	Out          string        `yaml:"out"`
	In           string        `yaml:"in"`
	Port         string        `yaml:"port"`
	PollInterval time.Duration `yaml:"poll_interval"`
	Invert       bool          `yaml:"invert"`
}

type linkConfig struct {
	QueueSize   int  `yaml:"queue_size"`
	FrameBuffer int  `yaml:"frame_buffer"`
	AutoReset   bool `yaml:"auto_reset"`
}

func defaultFileConfig() *fileConfig {
	defaults := link.DefaultConfig()
	return &fileConfig{
		Codec: *manchester.DefaultConfig(),
		Line:  lineConfig{Kind: "gpio"},
		Link: linkConfig{
			QueueSize:   defaults.QueueSize,
			FrameBuffer: defaults.FrameBuffer,
			AutoReset:   defaults.AutoReset,
		},
	}
}

// loadFileConfig reads path over the defaults. An empty path returns the
// defaults.
func loadFileConfig(path string) (*fileConfig, error) {
	cfg := defaultFileConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Codec.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *fileConfig) linkConfig() *link.Config {
	lc := link.DefaultConfig()
	lc.QueueSize = c.Link.QueueSize
	lc.FrameBuffer = c.Link.FrameBuffer
	lc.AutoReset = c.Link.AutoReset
	return lc
}
