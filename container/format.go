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

// Package container reads and writes the ECM v3 file format: an outer
// header, a sequence of framed blocks, and a TOC block that locates them.
package container

// Magic is the 3-byte signature every ECM v3 file starts with.
var Magic = [3]byte{'E', 'C', 'M'}

// Version is the only container version this package writes or accepts.
const Version = 3

// OuterHeaderSize is the fixed size, in bytes, of the file's outer header.
const OuterHeaderSize = 12

// BlockHeaderSize is the fixed size, in bytes, of one block's framing.
const BlockHeaderSize = 18

// BlockType names the kind of payload a block carries.
type BlockType uint8

const (
	BlockDeleted BlockType = iota
	BlockMetadata
	BlockTOC
	BlockECM
	BlockFile
)

// String returns the canonical name of t.
func (t BlockType) String() string {
	switch t {
	case BlockDeleted:
		return "DELETED"
	case BlockMetadata:
		return "METADATA"
	case BlockTOC:
		return "TOC"
	case BlockECM:
		return "ECM"
	case BlockFile:
		return "FILE"
	default:
		return "UNKNOWN"
	}
}

// TOCEntrySize is the packed size, in bytes, of one TOC block entry.
const TOCEntrySize = 9

// TOCEntry locates one data block: its type, and its byte offset in the file.
type TOCEntry struct {
	Type          BlockType
	StartPosition uint64
}
