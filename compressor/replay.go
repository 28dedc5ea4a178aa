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
)

// replayDecoder adapts a pull-based decompressor (compress/flate,
// pierrec/lz4) to this package's push-based SetInput/Process contract. It keeps
// every compressed byte seen so far and re-runs the decoder over the whole
// accumulated prefix each Process call, delivering only the bytes beyond
// what it has already handed the caller.
//
// Decompression is a deterministic function of the compressed byte prefix,
// so this is correct; it trades CPU (re-decoding the prefix every call)
// for not needing a background goroutine to bridge Go's blocking Read-based
// decompressor APIs to a push model. The zlib and lz4 decoders use it; the
// lzma and flac decoders have their own accumulate-and-parse logic.
type replayDecoder struct {
	newReader func(io.Reader) (io.Reader, error)

	accumulated bytes.Buffer
	lastDecoded []byte
	delivered   int
	finished    bool

	in, out []byte
}

func (c *replayDecoder) SetInput(buf []byte)  { c.in = buf }
func (c *replayDecoder) SetOutput(buf []byte) { c.out = buf }
func (c *replayDecoder) RemainingInput() int  { return len(c.in) }
func (c *replayDecoder) RemainingOutput() int { return len(c.out) }
func (c *replayDecoder) Close() error         { return nil }

func (c *replayDecoder) Process(_ FlushMode) (Status, error) {
	if len(c.in) > 0 {
		c.accumulated.Write(c.in)
		c.in = nil
	}

	if !c.finished {
		r, err := c.newReader(bytes.NewReader(c.accumulated.Bytes()))
		if err != nil {
			return OK, fmt.Errorf("%w: %w", ErrInit, err)
		}
		decoded, ferr := io.ReadAll(r)
		if rc, ok := r.(io.Closer); ok {
			_ = rc.Close()
		}
		switch {
		case ferr == nil:
			c.finished = true
		case errors.Is(ferr, io.ErrUnexpectedEOF):
			// ran out of compressed bytes mid-frame; resume once more arrives.
		default:
			return OK, fmt.Errorf("%w: %w", ErrProcess, ferr)
		}
		c.lastDecoded = decoded
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
