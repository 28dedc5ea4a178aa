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
	"compress/flate"
	"fmt"
	"io"
)

// zlibEncoder wraps compress/flate in raw deflate mode, the same way the
// CHD codec in this module avoids the zlib wrapper's extra six bytes.
type zlibEncoder struct {
	w      *flate.Writer
	buf    bytes.Buffer
	closed bool

	in, out []byte
}

func newZlibEncoder(level int) (*zlibEncoder, error) {
	c := &zlibEncoder{}
	w, err := flate.NewWriter(&c.buf, level)
	if err != nil {
		return nil, fmt.Errorf("%w: zlib: %w", ErrInit, err)
	}
	c.w = w
	return c, nil
}

func (c *zlibEncoder) SetInput(buf []byte)  { c.in = buf }
func (c *zlibEncoder) SetOutput(buf []byte) { c.out = buf }
func (c *zlibEncoder) RemainingInput() int  { return len(c.in) }
func (c *zlibEncoder) RemainingOutput() int { return len(c.out) }
func (c *zlibEncoder) Close() error         { return nil }

func (c *zlibEncoder) Process(flush FlushMode) (Status, error) {
	if len(c.in) > 0 {
		if _, err := c.w.Write(c.in); err != nil {
			return OK, fmt.Errorf("%w: zlib write: %w", ErrProcess, err)
		}
		c.in = nil
	}

	// SyncPoint closes this deflate stream exactly like EndStream: the
	// segment becomes a complete, independently decodable unit, and the
	// caller starts a fresh zlibEncoder for whatever residue follows.
	if (flush == SyncPoint || flush == EndStream) && !c.closed {
		if err := c.w.Close(); err != nil {
			return OK, fmt.Errorf("%w: zlib close: %w", ErrProcess, err)
		}
		c.closed = true
	}

	n, _ := c.buf.Read(c.out)
	c.out = c.out[n:]

	if (flush == SyncPoint || flush == EndStream) && c.buf.Len() == 0 {
		return StreamEnd, nil
	}
	return OK, nil
}

// zlibDecoder is a replayDecoder over flate.NewReader.
type zlibDecoder struct {
	replayDecoder
}

func newZlibDecoder() (*zlibDecoder, error) {
	d := &zlibDecoder{}
	d.newReader = func(r io.Reader) (io.Reader, error) {
		return flate.NewReader(r), nil
	}
	return d, nil
}
