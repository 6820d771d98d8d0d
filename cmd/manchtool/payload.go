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
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/hsanjuan/go-ndef"
)

var errNoPayload = errors.New("one of --hex, --text or --ndef-text is required")

// buildPayload turns exactly one of the payload flags into bytes
func buildPayload(hexStr, text, ndefText, lang string) ([]byte, error) {
	set := 0
	for _, s := range []string{hexStr, text, ndefText} {
		if s != "" {
			set++
		}
	}
	switch {
	case set == 0:
		return nil, errNoPayload
	case set > 1:
		return nil, errors.New("--hex, --text and --ndef-text are mutually exclusive")
	}

	switch {
	case hexStr != "":
		return parseHex(hexStr)
	case text != "":
		return []byte(text), nil
	default:
		return encodeNDEFText(ndefText, lang)
	}
}

// parseHex accepts "1234", "12 34" and "12:34"
func parseHex(s string) ([]byte, error) {
	clean := strings.NewReplacer(" ", "", ":", "", "0x", "", "0X", "").Replace(strings.TrimSpace(s))
	data, err := hex.DecodeString(clean)
	if err != nil {
		return nil, fmt.Errorf("invalid hex payload: %w", err)
	}
	return data, nil
}

func encodeNDEFText(text, lang string) ([]byte, error) {
	if lang == "" {
		lang = "en"
	}
	data, err := ndef.NewTextMessage(text, lang).Marshal()
	if err != nil {
		return nil, fmt.Errorf("failed to build NDEF message: %w", err)
	}
	return data, nil
}

// decodeNDEF parses payload as an NDEF message. Frames are fixed size, so
// trailing zero padding after the message is ignored.
func decodeNDEF(payload []byte) (*ndef.Message, error) {
	msg := &ndef.Message{}
	if _, err := msg.Unmarshal(payload); err != nil {
		return nil, fmt.Errorf("failed to parse NDEF message: %w", err)
	}
	return msg, nil
}
