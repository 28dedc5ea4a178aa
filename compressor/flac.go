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

	"github.com/mewkiz/flac"
	"github.com/schollz/goflac"
)

const (
	flacSampleRate    = 44100
	flacChannels      = 2
	flacBitsPerSample = 16
)

// flacEncoder buffers raw interleaved 16-bit stereo PCM and, once the
// stream is complete, hands it to a pure-Go FLAC encoder in one shot: FLAC
// frames carry a running MD5 and frame-count expectation baked into the
// stream header, so, like lzma, there is no way to commit a prefix of
// output before the whole input is known.
type flacEncoder struct {
	raw  bytes.Buffer
	out  bytes.Buffer
	done bool

	in, setOut []byte
}

func newFlacEncoder(_ bool) (*flacEncoder, error) {
	return &flacEncoder{}, nil
}

func (c *flacEncoder) SetInput(buf []byte)  { c.in = buf }
func (c *flacEncoder) SetOutput(buf []byte) { c.setOut = buf }
func (c *flacEncoder) RemainingInput() int  { return 0 }
func (c *flacEncoder) RemainingOutput() int { return len(c.setOut) }
func (c *flacEncoder) Close() error         { return nil }

func (c *flacEncoder) Process(flush FlushMode) (Status, error) {
	if len(c.in) > 0 {
		c.raw.Write(c.in)
		c.in = nil
	}

	// SyncPoint closes this segment exactly like EndStream: whatever PCM
	// has been buffered so far is encoded as a complete FLAC stream, and
	// the caller starts a fresh flacEncoder for whatever residue follows.
	if (flush == SyncPoint || flush == EndStream) && !c.done {
		pcm := c.raw.Bytes()
		nSamples := len(pcm) / (flacChannels * 2)
		samples := make([][]int32, flacChannels)
		for ch := range samples {
			samples[ch] = make([]int32, nSamples)
		}
		for i := 0; i < nSamples; i++ {
			for ch := 0; ch < flacChannels; ch++ {
				off := (i*flacChannels + ch) * 2
				v := int16(uint16(pcm[off]) | uint16(pcm[off+1])<<8)
				samples[ch][i] = int32(v)
			}
		}

		enc, err := goflac.NewEncoder(&c.out, flacSampleRate, flacChannels, flacBitsPerSample)
		if err != nil {
			return OK, fmt.Errorf("%w: flac: %w", ErrInit, err)
		}
		if err := enc.Encode(samples); err != nil {
			return OK, fmt.Errorf("%w: flac encode: %w", ErrProcess, err)
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

// flacDecoder accumulates a compressed stream and attempts a full parse
// on every Process call, the same replay strategy as zlib and lz4, except
// that a failed attempt here can mean either "need more bytes" or "not a
// FLAC stream at all" with no clean way to tell the two apart from mewkiz's
// error values, so a failure is only surfaced once EndStream is reached.
type flacDecoder struct {
	accumulated bytes.Buffer
	lastDecoded []byte
	delivered   int
	finished    bool

	in, out []byte
}

func newFlacDecoder() (*flacDecoder, error) {
	return &flacDecoder{}, nil
}

func (c *flacDecoder) SetInput(buf []byte)  { c.in = buf }
func (c *flacDecoder) SetOutput(buf []byte) { c.out = buf }
func (c *flacDecoder) RemainingInput() int  { return len(c.in) }
func (c *flacDecoder) RemainingOutput() int { return len(c.out) }
func (c *flacDecoder) Close() error         { return nil }

func (c *flacDecoder) Process(flush FlushMode) (Status, error) {
	if len(c.in) > 0 {
		c.accumulated.Write(c.in)
		c.in = nil
	}

	if !c.finished {
		if decoded, err := decodeFLACStream(c.accumulated.Bytes()); err == nil {
			c.lastDecoded = decoded
			c.finished = true
		} else if flush == EndStream {
			return OK, fmt.Errorf("%w: flac: %w", ErrProcess, err)
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

// decodeFLACStream decodes every frame of a complete FLAC stream to
// interleaved 16-bit stereo PCM, the same frame walk the legacy CD-image
// codec in this module uses.
func decodeFLACStream(data []byte) ([]byte, error) {
	stream, err := flac.New(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer func() { _ = stream.Close() }()

	var out bytes.Buffer
	for {
		f, err := stream.ParseNext()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		if len(f.Subframes) == 0 {
			continue
		}
		channels := min(len(f.Subframes), flacChannels)
		for i := range f.Subframes[0].NSamples {
			for ch := 0; ch < channels; ch++ {
				s := int16(f.Subframes[ch].Samples[i])
				out.WriteByte(byte(s))
				out.WriteByte(byte(s >> 8))
			}
		}
	}
	return out.Bytes(), nil
}
