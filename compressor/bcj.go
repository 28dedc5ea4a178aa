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

// maskToBitNumber maps the low 3 bits of the BCJ filter's reject mask to
// the byte offset, within a candidate call/jump operand, that decided the
// most recent rejection.
var maskToBitNumber = [8]uint32{0, 1, 2, 2, 3, 3, 3, 3}

func test86MSByte(b byte) bool { return b == 0x00 || b == 0xFF }

// x86BCJ applies (encoding) or reverses (!encoding) the x86 branch-converter
// filter in place, the same transform xz's LZMA_FILTER_X86 runs ahead of
// LZMA2: every CALL/JMP (opcodes 0xE8/0xE9) operand that looks like an
// absolute address is rewritten to a position-independent one, which lets
// the LZMA coder behind it find far more repeated byte sequences in
// compiled code. It operates over the whole buffer in one call rather than
// the original's chunked form, since every stream passed through this
// back end is accumulated in full before a BCJ pass runs.
func x86BCJ(data []byte, encoding bool) {
	if len(data) < 5 {
		return
	}
	size := len(data) - 4
	var mask uint32
	pos := 0
	for pos < size {
		if data[pos]&0xFE != 0xE8 {
			pos++
			continue
		}

		if mask != 0 {
			shift := maskToBitNumber[mask&7]
			if mask > 4 || mask == 3 || test86MSByte(data[pos+int(shift)+1]) {
				mask = (mask >> 1) | 4
				pos++
				continue
			}
		}

		if !test86MSByte(data[pos+4]) {
			mask = (mask >> 1) | 4
			pos++
			continue
		}

		src := uint32(data[pos+1]) | uint32(data[pos+2])<<8 | uint32(data[pos+3])<<16 | uint32(data[pos+4])<<24
		var dest uint32
		for {
			if encoding {
				dest = uint32(pos) + src
			} else {
				dest = src - uint32(pos)
			}
			if mask == 0 {
				break
			}
			idx := maskToBitNumber[mask&7] * 8
			if !test86MSByte(byte(dest >> (24 - idx))) {
				break
			}
			src = dest ^ ((1 << (32 - idx)) - 1)
		}

		data[pos+1] = byte(dest)
		data[pos+2] = byte(dest >> 8)
		data[pos+3] = byte(dest >> 16)
		if dest&0x01000000 != 0 {
			data[pos+4] = 0xFF
		} else {
			data[pos+4] = 0x00
		}
		pos += 5
		mask = 0
	}
}
