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

// Package link hosts an encoder and decoder on a general purpose OS, where
// ticks and edges arrive on separate goroutines. Every event is funnelled
// through one queue so the codec never sees a tick and an edge at once.
package link

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	manchester "github.com/ZaparooProject/go-manchester"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"periph.io/x/conn/v3/gpio"
)

// Frame is a decoded frame copied out of the decoder's shared buffer
type Frame struct {
	Received time.Time
	Raw      []byte
	Payload  []byte
}

type eventKind uint8

const (
	evTick eventKind = iota
	evEdge
	evSend
	evReset
	evFlush
)

type event struct {
	done    chan struct{}
	payload []byte
	kind    eventKind
	level   gpio.Level
}

// Link serializes ticks, edges and commands onto a single processor goroutine.
// A Link runs once; create a new one after Stop.
type Link struct {
	enc     *manchester.Encoder
	dec     *manchester.Decoder
	ticks   TickSource
	edges   EdgeSource
	drainer Drainer
	config  *Config
	events  chan event
	frames  chan Frame
	exited  chan struct{}
	cancel  context.CancelFunc
	group   *errgroup.Group
	log     zerolog.Logger
	waiters []chan struct{}
	metrics counters
	stopMu  sync.Mutex
	started atomic.Bool
	running atomic.Bool
}

// New creates a link. enc may be nil for a receive-only link and dec may be
// nil for a send-only link; edges may be nil when there is no decoder.
func New(enc *manchester.Encoder, dec *manchester.Decoder, ticks TickSource, edges EdgeSource,
	config *Config,
) (*Link, error) {
	if ticks == nil {
		return nil, errors.New("tick source cannot be nil")
	}
	if enc == nil && dec == nil {
		return nil, errors.New("link needs an encoder or a decoder")
	}
	if dec != nil && edges == nil {
		return nil, errors.New("decoder needs an edge source")
	}

	config = config.normalize()
	l := &Link{
		enc:    enc,
		dec:    dec,
		ticks:  ticks,
		edges:  edges,
		config: config,
		events: make(chan event, config.QueueSize),
		frames: make(chan Frame, config.FrameBuffer),
		exited: make(chan struct{}),
		log:    manchester.Logger().With().Str("component", "link").Logger(),
	}
	if d, ok := edges.(Drainer); ok {
		l.drainer = d
	}
	if dec != nil {
		dec.SetFrameHandler(l.handleFrame)
	}
	return l, nil
}

// Frames returns the channel decoded frames are delivered on. It is closed
// when the link stops.
func (l *Link) Frames() <-chan Frame {
	return l.frames
}

// Metrics returns a snapshot of the link counters
func (l *Link) Metrics() Metrics {
	return l.metrics.snapshot()
}

// IsRunning reports whether the link is processing events
func (l *Link) IsRunning() bool {
	return l.running.Load()
}

// Start launches the tick, edge and processor goroutines
func (l *Link) Start(ctx context.Context) error {
	if !l.started.CompareAndSwap(false, true) {
		return manchester.ErrLinkRunning
	}

	runCtx, cancel := context.WithCancel(ctx)
	group, gctx := errgroup.WithContext(runCtx)

	l.stopMu.Lock()
	l.cancel = cancel
	l.group = group
	l.stopMu.Unlock()
	l.running.Store(true)

	group.Go(func() error {
		defer close(l.exited)
		defer close(l.frames)
		defer l.running.Store(false)
		return l.process(gctx)
	})
	group.Go(func() error {
		return l.ticks.Run(gctx, l.onTick)
	})
	if l.edges != nil && l.drainer == nil {
		group.Go(func() error {
			return l.edges.Watch(gctx, l.onEdge)
		})
	}

	l.log.Debug().Int("queue", l.config.QueueSize).Msg("link started")
	return nil
}

// Wait blocks until the link stops and returns the first error that stopped
// it. Cancellation is not an error.
func (l *Link) Wait() error {
	l.stopMu.Lock()
	group := l.group
	l.stopMu.Unlock()

	if group == nil {
		return nil
	}
	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// Stop cancels the link and waits for its goroutines
func (l *Link) Stop() error {
	l.stopMu.Lock()
	cancel := l.cancel
	l.stopMu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	err := l.Wait()
	l.log.Debug().Msg("link stopped")
	return err
}

// Send queues payload for transmission, superseding any frame in progress.
// It returns once the encoder has taken the payload.
func (l *Link) Send(ctx context.Context, payload []byte) error {
	if l.enc == nil {
		return errors.New("link has no encoder")
	}
	return l.submit(ctx, event{kind: evSend, payload: append([]byte(nil), payload...)})
}

// ResetDecoder re-arms the decoder after a frame when AutoReset is off
func (l *Link) ResetDecoder(ctx context.Context) error {
	if l.dec == nil {
		return errors.New("link has no decoder")
	}
	return l.submit(ctx, event{kind: evReset})
}

// Flush waits until the encoder has finished the frame in progress
func (l *Link) Flush(ctx context.Context) error {
	if l.enc == nil {
		return nil
	}
	done := make(chan struct{})
	if err := l.submit(ctx, event{kind: evFlush, done: done}); err != nil {
		return err
	}
	select {
	case <-done:
		return nil
	case <-l.exited:
		return manchester.ErrLinkStopped
	case <-ctx.Done():
		return fmt.Errorf("flush: %w", ctx.Err())
	}
}

func (l *Link) submit(ctx context.Context, ev event) error {
	if !l.running.Load() {
		return manchester.ErrLinkStopped
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.config.CommandTimeout)
		defer cancel()
	}

	ack := ev.done
	if ev.kind != evFlush {
		ack = make(chan struct{})
		ev.done = ack
	}

	select {
	case l.events <- ev:
	case <-l.exited:
		return manchester.ErrLinkStopped
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", manchester.ErrQueueFull, ctx.Err())
	}

	if ev.kind == evFlush {
		return nil
	}
	select {
	case <-ack:
		return nil
	case <-l.exited:
		return manchester.ErrLinkStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// post queues a tick or edge without blocking the source goroutine
func (l *Link) post(ev event) error {
	select {
	case l.events <- ev:
		return nil
	default:
		l.metrics.dropped.Add(1)
		return manchester.ErrQueueFull
	}
}

func (l *Link) onTick() {
	_ = l.post(event{kind: evTick})
}

func (l *Link) onEdge(level gpio.Level) {
	_ = l.post(event{kind: evEdge, level: level})
}

func (l *Link) process(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-l.events:
			l.dispatch(ev)
		}
	}
}

func (l *Link) dispatch(ev event) {
	switch ev.kind {
	case evTick:
		l.metrics.ticks.Add(1)
		if l.enc != nil {
			l.enc.Tick()
		}
		if l.dec != nil {
			l.dec.Tick()
			if l.drainer != nil {
				l.drainer.Drain(l.handleLevel)
			}
		}
		if l.enc != nil && !l.enc.Active() {
			l.releaseWaiters()
		}
	case evEdge:
		l.handleLevel(ev.level)
	case evSend:
		l.enc.Start(ev.payload)
		l.metrics.framesSent.Add(1)
		l.log.Debug().Int("len", len(ev.payload)).Msg("frame queued")
	case evReset:
		l.dec.Reset()
	case evFlush:
		if l.enc.Active() {
			l.waiters = append(l.waiters, ev.done)
			return
		}
		close(ev.done)
		return
	}

	if ev.done != nil {
		close(ev.done)
	}
}

func (l *Link) handleLevel(level gpio.Level) {
	l.metrics.edges.Add(1)
	l.dec.HandleLevel(level)
}

func (l *Link) releaseWaiters() {
	for _, w := range l.waiters {
		close(w)
	}
	l.waiters = l.waiters[:0]
}

// handleFrame runs inside the decoder, on the processor goroutine
func (l *Link) handleFrame(raw []byte) {
	f := Frame{
		Raw:      append([]byte(nil), raw...),
		Payload:  append([]byte(nil), l.dec.Payload()...),
		Received: time.Now(),
	}
	l.metrics.framesReceived.Add(1)

	if l.config.AutoReset {
		l.dec.Reset()
	}

	if l.config.OnFrame != nil {
		l.config.OnFrame(f)
	}

	select {
	case l.frames <- f:
	default:
		l.metrics.framesDropped.Add(1)
		l.log.Warn().Int("len", len(f.Payload)).Msg("frame dropped, consumer too slow")
	}
}
