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

// ECMSubHeaderFixedSize is the size, in bytes, of the ECM sub-header up to
// (but not including) its two variable-length strings.
const ECMSubHeaderFixedSize = 1 + 1 + 8 + 8 + 8 + 8 + 8 + 1 + 1

// ECMSubHeader opens the ECM block's payload: the optimizations actually
// applied to every sector in the image, the seekable block stride, and the
// byte offsets (relative to the first byte of this sub-header) of the three mini-TOCs
// and the compressed sector data that follows them.
type ECMSubHeader struct {
	// Optimizations is the bitset of stripping rules the encode pass
	// actually applied; see the sector package's Flags.
	Optimizations uint8
	// SectorsPerBlock is the seekable sync-point stride, or 0 if the
	// stream isn't seekable.
	SectorsPerBlock uint8
	// CRCMode is reserved for a future EDC algorithm selector; this
	// package always writes it zero and tolerates any value on read.
	CRCMode uint64
	// StreamsTOCPos, SectorsTOCPos, SyncTOCPos, and ECMDataPos are byte
	// offsets relative to the first byte of the ECM sub-header.
	StreamsTOCPos uint64
	SectorsTOCPos uint64
	// SyncTOCPos locates the sync-TOC mini-block, which every container
	// carries between the sectors-TOC and the ECM data; for a non-seekable
	// stream the mini-TOC it names decodes to zero records.
	SyncTOCPos uint64
	ECMDataPos uint64
	Title      string
	ID         string
}

// WriteECMSubHeader writes h to w.
func WriteECMSubHeader(w io.Writer, h ECMSubHeader) error {
	if len(h.Title) > 0xFF || len(h.ID) > 0xFF {
		return fmt.Errorf("%w: title or id too long", ErrCorruptedHeader)
	}
	buf := make([]byte, ECMSubHeaderFixedSize)
	buf[0] = h.Optimizations
	buf[1] = h.SectorsPerBlock
	stdbinary.LittleEndian.PutUint64(buf[2:10], h.CRCMode)
	stdbinary.LittleEndian.PutUint64(buf[10:18], h.StreamsTOCPos)
	stdbinary.LittleEndian.PutUint64(buf[18:26], h.SectorsTOCPos)
	stdbinary.LittleEndian.PutUint64(buf[26:34], h.SyncTOCPos)
	stdbinary.LittleEndian.PutUint64(buf[34:42], h.ECMDataPos)
	buf[42] = uint8(len(h.Title))
	buf[43] = uint8(len(h.ID))
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("%w: ecm sub-header: %w", ErrCorruptedHeader, err)
	}
	if _, err := io.WriteString(w, h.Title); err != nil {
		return fmt.Errorf("%w: ecm sub-header title: %w", ErrCorruptedHeader, err)
	}
	if _, err := io.WriteString(w, h.ID); err != nil {
		return fmt.Errorf("%w: ecm sub-header id: %w", ErrCorruptedHeader, err)
	}
	return nil
}

// ReadECMSubHeader reads one ECM sub-header from r.
func ReadECMSubHeader(r io.Reader) (ECMSubHeader, error) {
	buf := make([]byte, ECMSubHeaderFixedSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return ECMSubHeader{}, fmt.Errorf("%w: %w", ErrCorruptedHeader, err)
	}
	h := ECMSubHeader{
		Optimizations:   buf[0],
		SectorsPerBlock: buf[1],
		CRCMode:         stdbinary.LittleEndian.Uint64(buf[2:10]),
		StreamsTOCPos:   stdbinary.LittleEndian.Uint64(buf[10:18]),
		SectorsTOCPos:   stdbinary.LittleEndian.Uint64(buf[18:26]),
		SyncTOCPos:      stdbinary.LittleEndian.Uint64(buf[26:34]),
		ECMDataPos:      stdbinary.LittleEndian.Uint64(buf[34:42]),
	}
	titleLen, idLen := buf[42], buf[43]
	title := make([]byte, titleLen)
	if _, err := io.ReadFull(r, title); err != nil {
		return ECMSubHeader{}, fmt.Errorf("%w: ecm sub-header title: %w", ErrCorruptedHeader, err)
	}
	id := make([]byte, idLen)
	if _, err := io.ReadFull(r, id); err != nil {
		return ECMSubHeader{}, fmt.Errorf("%w: ecm sub-header id: %w", ErrCorruptedHeader, err)
	}
	h.Title = string(title)
	h.ID = string(id)
	return h, nil
}

// EDCTrailerSize is the size, in bytes, of the whole-image EDC appended
// after the compressed sector data.
const EDCTrailerSize = 4

// WriteEDCTrailer appends the whole-image EDC to w.
func WriteEDCTrailer(w io.Writer, edc uint32) error {
	var buf [EDCTrailerSize]byte
	stdbinary.LittleEndian.PutUint32(buf[:], edc)
	if _, err := w.Write(buf[:]); err != nil {
		return fmt.Errorf("%w: edc trailer: %w", ErrCorruptedHeader, err)
	}
	return nil
}

// ReadEDCTrailer reads the whole-image EDC from r.
func ReadEDCTrailer(r io.Reader) (uint32, error) {
	var buf [EDCTrailerSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, fmt.Errorf("%w: edc trailer: %w", ErrCorruptedHeader, err)
	}
	return stdbinary.LittleEndian.Uint32(buf[:]), nil
}
