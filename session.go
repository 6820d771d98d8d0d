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

import "github.com/ZaparooProject/go-manchester/internal/frame"

// session is the cursor state of one encode or decode operation. The buffer
// is allocated once and reused for every frame.
type session struct {
	buf     []byte
	byteIdx int
	total   int
	bitIdx  uint8
	active  bool
}

func newSession(capacity int) session {
	return session{buf: make([]byte, capacity)}
}

// bit returns the data bit under the cursor
func (s *session) bit() byte {
	return frame.Bit(s.buf[s.byteIdx], s.bitIdx)
}

// setBit sets the bit under the cursor. Zero bits rely on the buffer
// having been cleared.
func (s *session) setBit() {
	s.buf[s.byteIdx] |= 1 << s.bitIdx
}

// advance moves the cursor one bit and reports whether the last byte is done
func (s *session) advance() bool {
	s.bitIdx++
	if s.bitIdx < frame.BitsPerByte {
		return false
	}
	s.bitIdx = 0
	s.byteIdx++
	return s.byteIdx == s.total
}

func (s *session) rewind(byteIdx, total int) {
	s.bitIdx = 0
	s.byteIdx = byteIdx
	s.total = total
}

func (s *session) clear() {
	for i := range s.buf {
		s.buf[i] = 0
	}
}
