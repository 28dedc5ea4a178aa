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

// Package compressor is a uniform streaming façade over the back-end
// compression algorithms used to pack stream residue: a byte copy, raw
// deflate, LZMA2 with an x86 BCJ filter, block LZ4-HC, and FLAC.
//
// The source this is modeled on had one struct that branched on an
// is_compression flag to decide which half of its API was legal to call.
// Here an Encoder and a Decoder are two distinct things a caller asks for
// by name; neither exposes the other's operations.
package compressor

import (
	"errors"
	"fmt"
)

// Kind names a back-end algorithm.
type Kind uint8

const (
	None Kind = iota
	Zlib
	Lzma
	Lz4
	Flac
)

// String returns the lowercase CLI name of k.
func (k Kind) String() string {
	switch k {
	case Zlib:
		return "zlib"
	case Lzma:
		return "lzma"
	case Lz4:
		return "lz4"
	case Flac:
		return "flac"
	default:
		return "none"
	}
}

// FlushMode tells Process how hard to push pending input through the
// back end before returning.
type FlushMode uint8

const (
	// Continue processes whatever input is available without forcing a
	// flush boundary.
	Continue FlushMode = iota
	// SyncPoint tells Process to finalize the segment seen so far exactly
	// as EndStream would — every back end treats the two identically,
	// returning StreamEnd once fully drained — so the segment is a
	// complete, independently decodable unit. The caller is expected to
	// construct a fresh Coder for whatever input follows; used for the
	// seekable container mode, where each such segment becomes a restart
	// boundary a decoder can resume from without replaying anything before
	// it.
	SyncPoint
	// EndStream tells the coder no further input will arrive at all.
	EndStream
)

// Status is the outcome of one Process call.
type Status uint8

const (
	// OK means the call completed; more Process calls may still be needed.
	OK Status = iota
	// StreamEnd means an EndStream or SyncPoint flush completed (for a
	// decoder: the stream is fully decoded) and every byte has been
	// emitted; RemainingOutput is necessarily 0 once drained.
	StreamEnd
)

var (
	// ErrInit indicates a back end failed to initialize.
	ErrInit = errors.New("compressor: initialization failed")
	// ErrProcess indicates a back end failed mid-stream (a real decoder
	// data error, not transient buffer exhaustion).
	ErrProcess = errors.New("compressor: processing failed")
)

// Coder is the streaming contract every back end implements. An instance is
// bound to one direction (encode or decode) and one stream: it is not
// thread-safe and not reusable across streams.
type Coder interface {
	// SetInput hands the coder a new region of input bytes. The coder
	// consumes from the front of it as Process is called.
	SetInput(buf []byte)
	// SetOutput hands the coder a new region to write output bytes into.
	SetOutput(buf []byte)
	// Process advances the coder by one step under the given flush mode.
	Process(flush FlushMode) (Status, error)
	// RemainingInput is the count of input bytes not yet consumed.
	RemainingInput() int
	// RemainingOutput is the count of output slots not yet filled.
	RemainingOutput() int
	// Close releases any resources held by the coder.
	Close() error
}

// EncoderOptions configures a back end's compression effort.
type EncoderOptions struct {
	Level           int  // 0-9
	Extreme         bool // handed to lzma and flac; neither changes its output for it
	SectorsPerBlock int  // 0 disables the seekable property
}

// NewEncoder constructs a compressing Coder for kind.
func NewEncoder(kind Kind, opts EncoderOptions) (Coder, error) {
	switch kind {
	case None:
		return newNoneCoder(), nil
	case Zlib:
		return newZlibEncoder(opts.Level)
	case Lzma:
		return newLzmaEncoder(opts.Level, opts.Extreme)
	case Lz4:
		return newLz4Encoder(opts.Level)
	case Flac:
		return newFlacEncoder(opts.Extreme)
	default:
		return nil, fmt.Errorf("%w: unknown kind %d", ErrInit, kind)
	}
}

// NewDecoder constructs a decompressing Coder for kind.
func NewDecoder(kind Kind) (Coder, error) {
	switch kind {
	case None:
		return newNoneCoder(), nil
	case Zlib:
		return newZlibDecoder()
	case Lzma:
		return newLzmaDecoder()
	case Lz4:
		return newLz4Decoder()
	case Flac:
		return newFlacDecoder()
	default:
		return nil, fmt.Errorf("%w: unknown kind %d", ErrInit, kind)
	}
}
