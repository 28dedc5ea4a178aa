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

package sector

// edcTable is the 256-entry byte-at-a-time table for the CD-ROM EDC CRC,
// reflected polynomial 0xD8018001. Built once at process start.
var edcTable [256]uint32

func init() {
	for i := range edcTable {
		edc := uint32(i)
		for range 8 {
			if edc&1 != 0 {
				edc = (edc >> 1) ^ 0xD8018001
			} else {
				edc >>= 1
			}
		}
		edcTable[i] = edc
	}
}

// EDC folds data into the running CRC value edc, LSB-first. Called with 0
// to start a fresh checksum; the same function computes both per-sector EDC
// fields and the whole-image trailer.
func EDC(edc uint32, data []byte) uint32 {
	for _, b := range data {
		edc = (edc >> 8) ^ edcTable[(edc^uint32(b))&0xFF]
	}
	return edc
}

func le32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func putLE32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}
