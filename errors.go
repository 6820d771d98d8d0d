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

package manchester

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// Configuration errors
	ErrInvalidConfig = errors.New("invalid codec configuration")

	// Line errors
	ErrLineUnavailable = errors.New("line unavailable")
	ErrLineWrite       = errors.New("line write failed")
	ErrLineRead        = errors.New("line read failed")

	// Link errors
	ErrLinkRunning = errors.New("link is already running")
	ErrLinkStopped = errors.New("link is not running")
	ErrQueueFull   = errors.New("event queue full")
)

// ConfigError describes a rejected configuration field
type ConfigError struct {
	Field  string
	Reason string
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid codec configuration: %s: %s", e.Field, e.Reason)
}

// Unwrap returns ErrInvalidConfig so errors.Is works on configuration failures
func (*ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

// LineError represents an error on a physical or virtual line
type LineError struct {
	Err       error
	Op        string
	Line      string
	Retryable bool
}

// Error implements the error interface
func (e *LineError) Error() string {
	if e.Line != "" {
		return fmt.Sprintf("%s on %s: %v", e.Op, e.Line, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error
func (e *LineError) Unwrap() error {
	return e.Err
}

// NewLineError creates a line error. Unavailable lines are retryable since
// pin exports and edge registration often settle after a short delay.
func NewLineError(op, line string, err error) *LineError {
	return &LineError{
		Op:        op,
		Line:      line,
		Err:       err,
		Retryable: errors.Is(err, ErrLineUnavailable) || errors.Is(err, ErrLineWrite) || errors.Is(err, ErrLineRead),
	}
}

// IsRetryable returns true if the error is worth retrying
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var lineErr *LineError
	if errors.As(err, &lineErr) {
		return lineErr.Retryable
	}

	switch {
	case errors.Is(err, ErrLineUnavailable),
		errors.Is(err, ErrLineWrite),
		errors.Is(err, ErrLineRead),
		errors.Is(err, ErrQueueFull):
		return true
	default:
		return false
	}
}
