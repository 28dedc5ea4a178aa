// Copyright (c) 2025 Niema Moshiri and The Zaparoo Project.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of go-gameid.
//
// go-gameid is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// go-gameid is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with go-gameid.  If not, see <https://www.gnu.org/licenses/>.

package compressor

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/ulikunitz/xz/lzma"
)

// lzmaEncoder runs the x86 BCJ filter over the whole stream and feeds the
// result through an LZMA2 writer, mirroring the LZMA_FILTER_X86 +
// LZMA_FILTER_LZMA2 filter chain this back end is modeled on. Unlike zlib,
// the BCJ pass needs the complete byte sequence up front (branch targets
// are rewritten relative to their position in the whole stream), so input
// is buffered raw and only filtered and coded once EndStream is reached.
type lzmaEncoder struct {
	level   int
	extreme bool

	raw  bytes.Buffer
	out  bytes.Buffer
	done bool

	in, setOut []byte
}

func newLzmaEncoder(level int, extreme bool) (*lzmaEncoder, error) {
	return &lzmaEncoder{level: level, extreme: extreme}, nil
}

func (c *lzmaEncoder) SetInput(buf []byte)  { c.in = buf }
func (c *lzmaEncoder) SetOutput(buf []byte) { c.setOut = buf }
func (c *lzmaEncoder) RemainingOutput() int { return len(c.setOut) }
func (c *lzmaEncoder) Close() error         { return nil }

// RemainingInput is always 0: every byte handed to SetInput is copied into
// the raw accumulator immediately, there is nothing left pending consumption.
func (c *lzmaEncoder) RemainingInput() int { return 0 }

func (c *lzmaEncoder) Process(flush FlushMode) (Status, error) {
	if len(c.in) > 0 {
		c.raw.Write(c.in)
		c.in = nil
	}

	// SyncPoint closes this segment exactly like EndStream: the BCJ filter
	// and LZMA2 writer run over whatever has been buffered so far, and the
	// caller starts a fresh lzmaEncoder for whatever residue follows.
	if (flush == SyncPoint || flush == EndStream) && !c.done {
		filtered := make([]byte, c.raw.Len())
		copy(filtered, c.raw.Bytes())
		x86BCJ(filtered, true)

		w, err := lzma.NewWriter2(&c.out)
		if err != nil {
			return OK, fmt.Errorf("%w: lzma2: %w", ErrInit, err)
		}
		if _, err := w.Write(filtered); err != nil {
			return OK, fmt.Errorf("%w: lzma2 write: %w", ErrProcess, err)
		}
		if err := w.Close(); err != nil {
			return OK, fmt.Errorf("%w: lzma2 close: %w", ErrProcess, err)
		}
		c.done = true
	}

	n, _ := c.out.Read(c.setOut)
	c.setOut = c.setOut[n:]

	if c.done && c.out.Len() == 0 {
		return StreamEnd, nil
	}
	return OK, nil
}

// lzmaDecoder mirrors lzmaEncoder: it buffers compressed input, and once
// the LZMA2 stream decodes cleanly to completion it reverses the BCJ
// filter over the whole result before any of it is handed to the caller.
// Partial decode output can't be delivered earlier, since a BCJ-filtered
// byte near the end of the buffer can only be told apart from an
// unfiltered one once the whole stream is known.
type lzmaDecoder struct {
	accumulated bytes.Buffer
	lastDecoded []byte
	delivered   int
	finished    bool

	in, out []byte
}

func newLzmaDecoder() (*lzmaDecoder, error) {
	return &lzmaDecoder{}, nil
}

func (c *lzmaDecoder) SetInput(buf []byte)  { c.in = buf }
func (c *lzmaDecoder) SetOutput(buf []byte) { c.out = buf }
func (c *lzmaDecoder) RemainingInput() int  { return len(c.in) }
func (c *lzmaDecoder) RemainingOutput() int { return len(c.out) }
func (c *lzmaDecoder) Close() error         { return nil }

func (c *lzmaDecoder) Process(_ FlushMode) (Status, error) {
	if len(c.in) > 0 {
		c.accumulated.Write(c.in)
		c.in = nil
	}

	if !c.finished {
		r, err := lzma.NewReader2(bytes.NewReader(c.accumulated.Bytes()))
		if err != nil {
			return OK, fmt.Errorf("%w: lzma2: %w", ErrInit, err)
		}
		decoded, ferr := io.ReadAll(r)
		switch {
		case ferr == nil:
			x86BCJ(decoded, false)
			c.lastDecoded = decoded
			c.finished = true
		case errors.Is(ferr, io.ErrUnexpectedEOF):
			// stream not complete yet; wait for more compressed input.
		default:
			return OK, fmt.Errorf("%w: lzma2: %w", ErrProcess, ferr)
		}
	}

	if len(c.lastDecoded) > c.delivered {
		n := copy(c.out, c.lastDecoded[c.delivered:])
		c.out = c.out[n:]
		c.delivered += n
	}

	if c.finished && c.delivered >= len(c.lastDecoded) {
		return StreamEnd, nil
	}
	return OK, nil
}
