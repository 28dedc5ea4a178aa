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

	"github.com/dcarrasco/ecm2/compressor"
	"github.com/dcarrasco/ecm2/sector"
	"github.com/dcarrasco/ecm2/stream"
)

// StreamRecordSize is the packed size, in bytes, of one STREAM record.
const StreamRecordSize = 13

// SectorRecordSize is the packed size, in bytes, of one SECTOR record.
const SectorRecordSize = 5

// PackStreamRecord packs s into its 13-byte on-disk form. family occupies
// bit 0 of the leading byte, compression occupies bits 1-3; the remaining
// bits are always written zero.
func PackStreamRecord(s stream.Stream) []byte {
	buf := make([]byte, StreamRecordSize)
	buf[0] = uint8(s.Family)&0x1 | (uint8(s.Compression)&0x7)<<1
	stdbinary.LittleEndian.PutUint32(buf[1:5], uint32(s.EndSector))
	stdbinary.LittleEndian.PutUint64(buf[5:13], s.OutEndPosition)
	return buf
}

// UnpackStreamRecord is the inverse of PackStreamRecord.
func UnpackStreamRecord(buf []byte) (stream.Stream, error) {
	if len(buf) < StreamRecordSize {
		return stream.Stream{}, fmt.Errorf("%w: short stream record", ErrCorruptedHeader)
	}
	return stream.Stream{
		Family:         sector.Family(buf[0] & 0x1),
		Compression:    compressor.Kind((buf[0] >> 1) & 0x7),
		EndSector:      uint64(stdbinary.LittleEndian.Uint32(buf[1:5])),
		OutEndPosition: stdbinary.LittleEndian.Uint64(buf[5:13]),
	}, nil
}

// PackSectorRecord packs r into its 5-byte on-disk form. mode occupies the
// low 4 bits of the leading byte; the high 4 bits are always written zero.
func PackSectorRecord(r stream.Run) []byte {
	buf := make([]byte, SectorRecordSize)
	buf[0] = uint8(r.Mode) & 0xF
	stdbinary.LittleEndian.PutUint32(buf[1:5], r.Count)
	return buf
}

// UnpackSectorRecord is the inverse of PackSectorRecord.
func UnpackSectorRecord(buf []byte) (stream.Run, error) {
	if len(buf) < SectorRecordSize {
		return stream.Run{}, fmt.Errorf("%w: short sector record", ErrCorruptedHeader)
	}
	return stream.Run{
		Mode:  sector.Mode(buf[0] & 0xF),
		Count: stdbinary.LittleEndian.Uint32(buf[1:5]),
	}, nil
}

// SyncRecordSize is the packed size, in bytes, of one SYNC record.
const SyncRecordSize = 12

// SyncPoint is a seekable-mode restart boundary: the sector offset (from
// the start of the image) at which an encoded segment ends, and the byte
// position, absolute within the file, at which its compressed data ends.
// The next segment starts at SectorOffset, and its compressed data starts
// at this same BytePosition, so a decoder resuming at SectorOffset starts
// reading there and needs nothing recorded before it.
type SyncPoint struct {
	SectorOffset uint64
	BytePosition uint64
}

// PackSyncRecord packs s into its 12-byte on-disk form. SectorOffset is
// truncated to 32 bits on disk, the same way PackStreamRecord truncates
// EndSector: no single image reaches four billion sectors.
func PackSyncRecord(s SyncPoint) []byte {
	buf := make([]byte, SyncRecordSize)
	stdbinary.LittleEndian.PutUint32(buf[0:4], uint32(s.SectorOffset))
	stdbinary.LittleEndian.PutUint64(buf[4:12], s.BytePosition)
	return buf
}

// UnpackSyncRecord is the inverse of PackSyncRecord.
func UnpackSyncRecord(buf []byte) (SyncPoint, error) {
	if len(buf) < SyncRecordSize {
		return SyncPoint{}, fmt.Errorf("%w: short sync record", ErrCorruptedHeader)
	}
	return SyncPoint{
		SectorOffset: uint64(stdbinary.LittleEndian.Uint32(buf[0:4])),
		BytePosition: stdbinary.LittleEndian.Uint64(buf[4:12]),
	}, nil
}
