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
	"os"
	"sync"

	"github.com/rs/zerolog"
)

var (
	loggerMu sync.RWMutex
	pkgLog   = zerolog.New(os.Stderr).With().Timestamp().Str("component", "manchester").Logger().
			Level(zerolog.InfoLevel)
)

// SetLogger replaces the package logger used by encoders and decoders that
// were not given one with WithLogger.
func SetLogger(logger zerolog.Logger) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	pkgLog = logger
}

// SetDebugEnabled toggles debug output on the package logger
func SetDebugEnabled(enabled bool) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	if enabled {
		pkgLog = pkgLog.Level(zerolog.DebugLevel)
	} else {
		pkgLog = pkgLog.Level(zerolog.InfoLevel)
	}
}

// Logger returns the current package logger
func Logger() zerolog.Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return pkgLog
}
