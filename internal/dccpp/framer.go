package dccpp

// --------------------------------------------------------------------------
//
//	Gurux Ltd
//
// Filename:        $HeadURL$
//
// Version:         $Revision$,
//
//	$Date$
//	$Author$
//
// # Copyright (c) Gurux Ltd
//
// ---------------------------------------------------------------------------
//
//	DESCRIPTION
//
// This file is a part of Gurux Device Framework.
//
// Gurux Device Framework is Open Source software; you can redistribute it
// and/or modify it under the terms of the GNU General Public License
// as published by the Free Software Foundation; version 2 of the License.
// Gurux Device Framework is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU General Public License for more details.
//
// More information of Gurux products: https://www.gurux.org
//
// This code is licensed under the GNU General Public License v2.
// Full text may be retrieved at http://www.gnu.org/licenses/gpl-2.0.txt
// ---------------------------------------------------------------------------

import (
	"bytes"
)

const (
	// DefaultMaxFrameLen bounds a frame; longer input without an end
	// delimiter is discarded.
	DefaultMaxFrameLen = 256

	// DefaultStaleWindows is the number of consecutive receive-idle windows a
	// partial frame may wait for its end delimiter.
	DefaultStaleWindows = 20
)

// DiscardHandler is told about input the framer throws away.
type DiscardHandler func(reason string, data []byte)

// Framer splits a byte stream into '<'...'>' frames.
//
// It is not safe for concurrent use; the traffic reader owns it.
type Framer struct {
	buf          []byte
	idle         int
	maxLen       int
	staleWindows int
	onDiscard    DiscardHandler
}

// NewFramer returns a framer with default limits. onDiscard may be nil.
func NewFramer(onDiscard DiscardHandler) *Framer {
	return &Framer{
		maxLen:       DefaultMaxFrameLen,
		staleWindows: DefaultStaleWindows,
		onDiscard:    onDiscard,
	}
}

// Append adds received bytes.
func (f *Framer) Append(p []byte) {
	if len(p) == 0 {
		return
	}
	f.buf = append(f.buf, p...)
	f.idle = 0
}

// Next returns the next complete frame, delimiters included.
// It returns false when no complete frame is buffered.
func (f *Framer) Next() ([]byte, bool) {
	for {
		start := bytes.IndexByte(f.buf, FrameStart)
		if start < 0 {
			f.dropNoise(f.buf)
			f.buf = f.buf[:0]
			return nil, false
		}
		if start > 0 {
			f.dropNoise(f.buf[:start])
			f.buf = f.buf[start:]
		}
		end := bytes.IndexByte(f.buf, FrameEnd)
		// A new start before the end means the previous frame was truncated.
		if next := bytes.IndexByte(f.buf[1:], FrameStart); next >= 0 && (end < 0 || next+1 < end) {
			f.discard("truncated frame", f.buf[:next+1])
			f.buf = f.buf[next+1:]
			continue
		}
		if end < 0 {
			if len(f.buf) > f.maxLen {
				f.discard("oversized frame", f.buf)
				f.buf = f.buf[:0]
			}
			return nil, false
		}
		frame := make([]byte, end+1)
		copy(frame, f.buf[:end+1])
		f.buf = f.buf[end+1:]
		return frame, true
	}
}

// Idle is called once per receive-idle window with no new input. A partial
// frame that stays incomplete for the configured number of windows is
// discarded.
func (f *Framer) Idle() {
	if len(f.buf) == 0 {
		f.idle = 0
		return
	}
	f.idle++
	if f.idle >= f.staleWindows {
		f.discard("stale partial frame", f.buf)
		f.buf = f.buf[:0]
		f.idle = 0
	}
}

// Pending returns the number of buffered bytes not yet returned as a frame.
func (f *Framer) Pending() int {
	return len(f.buf)
}

// Reset drops all buffered input.
func (f *Framer) Reset() {
	f.buf = f.buf[:0]
	f.idle = 0
}

// dropNoise reports bytes outside any frame, ignoring line breaks and blanks.
func (f *Framer) dropNoise(data []byte) {
	if len(bytes.TrimSpace(data)) != 0 {
		f.discard("noise outside frame", data)
	}
}

func (f *Framer) discard(reason string, data []byte) {
	if f.onDiscard != nil {
		cp := make([]byte, len(data))
		copy(cp, data)
		f.onDiscard(reason, cp)
	}
}
