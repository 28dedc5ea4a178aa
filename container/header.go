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

package container

import (
	stdbinary "encoding/binary"
	"fmt"
	"io"

	"github.com/dcarrasco/ecm2/pkg/binary"
)

// OuterHeader is the 12-byte prologue of every ECM v3 file.
type OuterHeader struct {
	// FileTOCPosition is the absolute byte offset of the TOC block. The
	// TOC block follows every other block, so the writer lays those out
	// first and fills this in before the header is written.
	FileTOCPosition uint64
}

// WriteOuterHeader writes the fixed-size outer header to w.
func WriteOuterHeader(w io.Writer, h OuterHeader) error {
	if _, err := w.Write(Magic[:]); err != nil {
		return fmt.Errorf("%w: magic: %w", ErrCorruptedHeader, err)
	}
	if _, err := w.Write([]byte{Version}); err != nil {
		return fmt.Errorf("%w: version: %w", ErrCorruptedHeader, err)
	}
	if err := binary.WriteUint64LE(w, h.FileTOCPosition); err != nil {
		return fmt.Errorf("%w: toc position: %w", ErrCorruptedHeader, err)
	}
	return nil
}

// ReadOuterHeader reads and validates the outer header from r.
func ReadOuterHeader(r io.Reader) (OuterHeader, error) {
	buf := make([]byte, OuterHeaderSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return OuterHeader{}, fmt.Errorf("%w: %w", ErrCorruptedHeader, err)
	}
	if buf[0] != Magic[0] || buf[1] != Magic[1] || buf[2] != Magic[2] {
		return OuterHeader{}, ErrBadMagic
	}
	if buf[3] != Version {
		return OuterHeader{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, buf[3])
	}
	return OuterHeader{FileTOCPosition: stdbinary.LittleEndian.Uint64(buf[4:12])}, nil
}

// BlockHeader frames every block's payload: its type, the compression
// applied to it, and its on-disk and decompressed sizes.
type BlockHeader struct {
	Type            BlockType
	Compression     uint8
	BlockSize       uint64
	RealBlockSize   uint64
}

// WriteBlockHeader writes h to w.
func WriteBlockHeader(w io.Writer, h BlockHeader) error {
	if _, err := w.Write([]byte{uint8(h.Type), h.Compression}); err != nil {
		return fmt.Errorf("%w: block header: %w", ErrCorruptedHeader, err)
	}
	if err := binary.WriteUint64LE(w, h.BlockSize); err != nil {
		return fmt.Errorf("%w: block size: %w", ErrCorruptedHeader, err)
	}
	if err := binary.WriteUint64LE(w, h.RealBlockSize); err != nil {
		return fmt.Errorf("%w: real block size: %w", ErrCorruptedHeader, err)
	}
	return nil
}

// ReadBlockHeader reads one block header from r.
func ReadBlockHeader(r io.Reader) (BlockHeader, error) {
	buf := make([]byte, BlockHeaderSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return BlockHeader{}, fmt.Errorf("%w: %w", ErrCorruptedHeader, err)
	}
	return BlockHeader{
		Type:          BlockType(buf[0]),
		Compression:   buf[1],
		BlockSize:     stdbinary.LittleEndian.Uint64(buf[2:10]),
		RealBlockSize: stdbinary.LittleEndian.Uint64(buf[10:18]),
	}, nil
}
