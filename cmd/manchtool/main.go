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

// manchtool sends, receives and self-tests Manchester frames on GPIO pins,
// serial modem-control lines or an in-process loopback.
//
// Usage:
//
//	manchtool send --hex 1234 --out GPIO17
//	manchtool listen --in GPIO27 --count 1
//	manchtool loopback --hex 1234
//	manchtool list --mode safe
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	manchester "github.com/ZaparooProject/go-manchester"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
)

type command struct {
	flags   func(fs *pflag.FlagSet, o *options)
	run     func(ctx context.Context, o *options, out io.Writer) error
	summary string
}

var commands = map[string]command{
	"send": {
		summary: "encode a payload onto the output line",
		flags:   sendFlags,
		run:     runSend,
	},
	"listen": {
		summary: "print frames decoded from the input line",
		flags:   listenFlags,
		run:     runListen,
	},
	"loopback": {
		summary: "encode and decode a payload in-process and show the waveform",
		flags:   sendFlags,
		run:     runLoopback,
	},
	"list": {
		summary: "list candidate GPIO pins and serial ports",
		flags:   listFlags,
		run:     runList,
	},
}

// options holds every flag; each command registers the ones it uses
type options struct {
	file     *fileConfig
	log      zerolog.Logger
	config   string
	lineKind string
	out      string
	in       string
	port     string
	hex      string
	text     string
	ndefText string
	lang     string
	mode     string
	ignore   []string
	tick     time.Duration
	bit      time.Duration
	timeout  time.Duration
	interval time.Duration
	frame    int
	repeat   int
	count    int
	invert   bool
	ndef     bool
	debug    bool
	mlock    bool
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		printUsage(stdout)
		return nil
	}

	name := args[0]
	cmd, ok := commands[name]
	if !ok {
		printUsage(stderr)
		return fmt.Errorf("unknown command %q", name)
	}

	o := &options{}
	fs := pflag.NewFlagSet("manchtool "+name, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	commonFlags(fs, o)
	cmd.flags(fs, o)
	if err := fs.Parse(args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	o.log = newLogger(stderr, o.debug)
	manchester.SetLogger(o.log)
	manchester.SetDebugEnabled(o.debug)

	file, err := loadFileConfig(o.config)
	if err != nil {
		return err
	}
	if err := o.apply(fs, file); err != nil {
		return err
	}
	o.file = file

	if o.mlock {
		if err := lockMemory(); err != nil {
			return err
		}
		defer unlockMemory()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return cmd.run(ctx, o, stdout)
}

func newLogger(w io.Writer, debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}).
		Level(level).With().Timestamp().Logger()
}

func commonFlags(fs *pflag.FlagSet, o *options) {
	fs.StringVarP(&o.config, "config", "c", "", "YAML config file with codec, line and link sections")
	fs.StringVar(&o.lineKind, "line", "", "line backend: gpio, serial or loopback")
	fs.StringVar(&o.port, "port", "", "serial port whose RTS/CTS pins carry the line")
	fs.BoolVar(&o.invert, "invert", false, "invert serial line levels")
	fs.DurationVar(&o.tick, "tick", 0, "codec tick period (overrides config)")
	fs.DurationVar(&o.bit, "bit", 0, "codec bit period (overrides config)")
	fs.IntVar(&o.frame, "frame-size", 0, "frame size in bytes including the sync word (overrides config)")
	fs.BoolVar(&o.debug, "debug", false, "enable debug logging")
	fs.BoolVar(&o.mlock, "mlock", false, "lock process memory to reduce timing jitter (Linux)")
}

func sendFlags(fs *pflag.FlagSet, o *options) {
	fs.StringVar(&o.out, "out", "", "GPIO pin driving the line")
	fs.StringVar(&o.hex, "hex", "", "payload as hex bytes")
	fs.StringVar(&o.text, "text", "", "payload as raw text")
	fs.StringVar(&o.ndefText, "ndef-text", "", "payload as an NDEF text record")
	fs.StringVar(&o.lang, "lang", "en", "language code for --ndef-text")
	fs.IntVar(&o.repeat, "repeat", 1, "number of times to send the frame")
	fs.DurationVar(&o.interval, "interval", 100*time.Millisecond, "pause between repeated frames")
}

func listenFlags(fs *pflag.FlagSet, o *options) {
	fs.StringVar(&o.in, "in", "", "GPIO pin sampling the line")
	fs.BoolVar(&o.ndef, "ndef", false, "decode payloads as NDEF messages")
	fs.IntVar(&o.count, "count", 0, "exit after this many frames (0 runs until interrupted)")
	fs.DurationVar(&o.timeout, "timeout", 0, "give up after this long (0 waits forever)")
}

func listFlags(fs *pflag.FlagSet, o *options) {
	fs.StringVar(&o.mode, "mode", "passive", "detection mode: passive, safe or full")
	fs.StringSliceVar(&o.ignore, "ignore", nil, "device paths or pin names to skip")
	fs.DurationVar(&o.timeout, "timeout", 5*time.Second, "detection timeout")
}

// apply lays explicitly set flags over the file config
func (o *options) apply(fs *pflag.FlagSet, file *fileConfig) error {
	if fs.Changed("line") {
		file.Line.Kind = o.lineKind
	}
	if fs.Changed("port") {
		file.Line.Port = o.port
		if !fs.Changed("line") {
			file.Line.Kind = "serial"
		}
	}
	if fs.Changed("invert") {
		file.Line.Invert = o.invert
	}
	if fs.Lookup("out") != nil && fs.Changed("out") {
		file.Line.Out = o.out
	}
	if fs.Lookup("in") != nil && fs.Changed("in") {
		file.Line.In = o.in
	}
	if fs.Changed("tick") {
		file.Codec.TickPeriod = o.tick
	}
	if fs.Changed("bit") {
		file.Codec.BitPeriod = o.bit
	}
	if fs.Changed("frame-size") {
		file.Codec.FrameSize = o.frame
	}
	return file.Codec.Validate()
}

func printUsage(w io.Writer) {
	_, _ = fmt.Fprintln(w, "usage: manchtool <command> [flags]")
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "commands:")

	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		_, _ = fmt.Fprintf(w, "  %-10s %s\n", name, commands[name].summary)
	}
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "run 'manchtool <command> --help' for flags")
}
