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
	"testing"
)

// runCoder drives c to completion against input, using a modest output
// chunk size so Process has to be called repeatedly like the orchestrator
// would, and returns everything written.
func runCoder(t *testing.T, c Coder, input []byte) []byte {
	t.Helper()

	var result bytes.Buffer
	chunk := make([]byte, 97) // deliberately not a multiple of anything
	remaining := input

	for {
		if c.RemainingInput() == 0 && len(remaining) > 0 {
			n := min(len(remaining), 61)
			c.SetInput(remaining[:n])
			remaining = remaining[n:]
		}

		c.SetOutput(chunk)
		flush := Continue
		if len(remaining) == 0 && c.RemainingInput() == 0 {
			flush = EndStream
		}
		status, err := c.Process(flush)
		if err != nil {
			t.Fatalf("Process: %v", err)
		}
		result.Write(chunk[:len(chunk)-c.RemainingOutput()])

		if status == StreamEnd {
			return result.Bytes()
		}
	}
}

func testRoundTrip(t *testing.T, kind Kind, data []byte) {
	t.Helper()

	enc, err := NewEncoder(kind, EncoderOptions{Level: 6})
	if err != nil {
		t.Fatalf("NewEncoder(%v): %v", kind, err)
	}
	compressed := runCoder(t, enc, data)
	if err := enc.Close(); err != nil {
		t.Fatalf("encoder Close: %v", err)
	}

	dec, err := NewDecoder(kind)
	if err != nil {
		t.Fatalf("NewDecoder(%v): %v", kind, err)
	}
	decompressed := runCoder(t, dec, compressed)
	if err := dec.Close(); err != nil {
		t.Fatalf("decoder Close: %v", err)
	}

	if !bytes.Equal(decompressed, data) {
		t.Fatalf("%v round trip mismatch: got %d bytes, want %d", kind, len(decompressed), len(data))
	}
}

func repeatingData(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i % 251)
	}
	return b
}

func TestNoneRoundTrip(t *testing.T) {
	t.Parallel()
	testRoundTrip(t, None, repeatingData(4000))
}

func TestZlibRoundTrip(t *testing.T) {
	t.Parallel()
	testRoundTrip(t, Zlib, repeatingData(20000))
}

func TestLz4RoundTrip(t *testing.T) {
	t.Parallel()
	testRoundTrip(t, Lz4, repeatingData(3*1024*1024))
}

func TestLzmaRoundTrip(t *testing.T) {
	t.Parallel()
	testRoundTrip(t, Lzma, repeatingData(20000))
}

func TestFlacRoundTrip(t *testing.T) {
	t.Parallel()
	// 1 second of 44.1kHz stereo 16-bit samples filled with a byte ramp.
	n := flacSampleRate * flacChannels * 2
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i)
	}
	testRoundTrip(t, Flac, data)
}

// testSyncPointSplit encodes first through enc up to a Process(SyncPoint)
// call, confirms that boundary alone drains to StreamEnd (the seekable
// container mode's encode-side contract every back end must honor), then
// independently decodes just that segment with a fresh decoder and checks
// it reproduces first without ever seeing second.
func testSyncPointSplit(t *testing.T, kind Kind, first, second []byte) {
	t.Helper()

	enc, err := NewEncoder(kind, EncoderOptions{Level: 6, SectorsPerBlock: 1})
	if err != nil {
		t.Fatalf("NewEncoder(%v): %v", kind, err)
	}

	var segment bytes.Buffer
	chunk := make([]byte, 97)
	remaining := first
	for {
		if enc.RemainingInput() == 0 && len(remaining) > 0 {
			n := min(len(remaining), 61)
			enc.SetInput(remaining[:n])
			remaining = remaining[n:]
		}
		enc.SetOutput(chunk)
		flush := Continue
		if len(remaining) == 0 && enc.RemainingInput() == 0 {
			flush = SyncPoint
		}
		status, err := enc.Process(flush)
		if err != nil {
			t.Fatalf("Process: %v", err)
		}
		segment.Write(chunk[:len(chunk)-enc.RemainingOutput()])
		if status == StreamEnd {
			break
		}
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("encoder Close after SyncPoint: %v", err)
	}

	dec, err := NewDecoder(kind)
	if err != nil {
		t.Fatalf("NewDecoder(%v): %v", kind, err)
	}
	decoded := runCoder(t, dec, segment.Bytes())
	if err := dec.Close(); err != nil {
		t.Fatalf("decoder Close: %v", err)
	}
	if !bytes.Equal(decoded, first) {
		t.Fatalf("%v sync-point segment mismatch: got %d bytes, want %d", kind, len(decoded), len(first))
	}

	// A fresh encoder, as drainEncoder constructs after a sync point,
	// independently round-trips whatever residue follows.
	testRoundTrip(t, kind, second)
}

func TestSyncPointSplitsSegment(t *testing.T) {
	t.Parallel()
	for _, kind := range []Kind{None, Zlib, Lzma, Lz4} {
		testSyncPointSplit(t, kind, repeatingData(8000), repeatingData(5000))
	}
}

func TestFlacSyncPointSplitsSegment(t *testing.T) {
	t.Parallel()
	n := flacSampleRate * flacChannels * 2 / 4
	first := make([]byte, n)
	second := make([]byte, n)
	for i := range first {
		first[i] = byte(i)
		second[i] = byte(i * 3)
	}
	testSyncPointSplit(t, Flac, first, second)
}

func TestNewEncoderUnknownKind(t *testing.T) {
	t.Parallel()
	if _, err := NewEncoder(Kind(200), EncoderOptions{}); err == nil {
		t.Fatal("expected error for unknown kind")
	}
	if _, err := NewDecoder(Kind(200)); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestX86BCJInvertible(t *testing.T) {
	t.Parallel()

	data := repeatingData(4096)
	// Sprinkle plausible CALL opcodes so the filter actually does work.
	for i := 0; i+4 < len(data); i += 37 {
		data[i] = 0xE8
	}
	original := bytes.Clone(data)

	x86BCJ(data, true)
	x86BCJ(data, false)

	if !bytes.Equal(data, original) {
		t.Fatal("x86BCJ(x86BCJ(data, true), false) != data")
	}
}
