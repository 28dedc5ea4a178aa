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
)

// WriteTOCBlock writes entries as the TOC block's payload (the block
// header framing it is written separately by the caller).
func WriteTOCBlock(w io.Writer, entries []TOCEntry) error {
	buf := make([]byte, TOCEntrySize)
	for _, e := range entries {
		buf[0] = uint8(e.Type)
		stdbinary.LittleEndian.PutUint64(buf[1:9], e.StartPosition)
		if _, err := w.Write(buf); err != nil {
			return fmt.Errorf("%w: toc entry: %w", ErrCorruptedHeader, err)
		}
	}
	return nil
}

// ReadTOCBlock reads a TOC block payload of realBlockSize bytes from r.
func ReadTOCBlock(r io.Reader, realBlockSize uint64) ([]TOCEntry, error) {
	if realBlockSize%TOCEntrySize != 0 {
		return nil, fmt.Errorf("%w: toc block size %d not a multiple of %d", ErrCorruptedHeader, realBlockSize, TOCEntrySize)
	}
	count := realBlockSize / TOCEntrySize
	entries := make([]TOCEntry, count)
	buf := make([]byte, TOCEntrySize)
	for i := range entries {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("%w: toc entry %d: %w", ErrCorruptedHeader, i, err)
		}
		typ := BlockType(buf[0])
		switch typ {
		case BlockDeleted, BlockMetadata, BlockTOC, BlockECM, BlockFile:
		default:
			return nil, fmt.Errorf("%w: %d", ErrUnknownBlockType, buf[0])
		}
		entries[i] = TOCEntry{
			Type:          typ,
			StartPosition: stdbinary.LittleEndian.Uint64(buf[1:9]),
		}
	}
	return entries, nil
}
