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

import "bytes"

// Reed-Solomon P/Q product code over GF(2^8), primitive polynomial
// x^8+x^4+x^3+x^2+1 (0x11D). eccFLUT/eccBLUT are the forward/backward
// multiply-by-2 tables; both are built once at process start.
var eccFLUT, eccBLUT [256]uint8

func init() {
	for i := range 256 {
		j := i << 1
		if i&0x80 != 0 {
			j ^= 0x11D
		}
		eccFLUT[i] = uint8(j)
		eccBLUT[uint8(i)^uint8(j)] = uint8(i)
	}
}

// eccPLen and eccQLen are the parity byte counts of the P and Q layers.
const (
	eccPLen  = 2 * 86
	eccQLen  = 2 * 52
	eccQOff  = eccPLen
	eccTotal = eccPLen + eccQLen // 276
)

// eccLayer computes major_count*2 parity bytes over the 4-byte address
// followed by data, using the traversal shared by P and Q: address occupies
// the first 4 logical positions, data fills the rest, wrapping modulo
// major_count*minor_count. For Q, data is the sector data followed by the
// P parity, since the Q layer covers P.
func eccLayer(address, data []byte, majorCount, minorCount, majorMult, minorInc int, out []byte) {
	size := majorCount * minorCount
	for major := range majorCount {
		index := (major/2)*majorMult + (major & 1)
		var eccA, eccB uint8
		for range minorCount {
			var temp uint8
			if index < 4 {
				temp = address[index]
			} else {
				temp = data[index-4]
			}
			index += minorInc
			if index >= size {
				index -= size
			}
			eccA ^= temp
			eccB ^= temp
			eccA = eccFLUT[eccA]
		}
		eccA = eccBLUT[eccFLUT[eccA]^eccB]
		out[major] = eccA
		out[major+majorCount] = eccA ^ eccB
	}
}

// ECCCheckPQ reports whether ecc (276 bytes: P then Q) is the correct parity
// for address (4 bytes) followed by data, under the standard CD-ROM P
// (86x24, stride 2/86) and Q (52x43, stride 86/88) layout.
func ECCCheckPQ(address, data, ecc []byte) bool {
	var p [eccPLen]byte
	eccLayer(address, data, 86, 24, 2, 86, p[:])
	if !bytes.Equal(p[:], ecc[:eccPLen]) {
		return false
	}
	var q [eccQLen]byte
	eccLayer(address, append(data[:len(data):len(data)], p[:]...), 52, 43, 86, 88, q[:])
	return bytes.Equal(q[:], ecc[eccQOff:eccTotal])
}

// ECCWritePQ writes the 276-byte P/Q parity for address followed by data
// into ecc, which must be at least eccTotal bytes long.
func ECCWritePQ(address, data, ecc []byte) {
	eccLayer(address, data, 86, 24, 2, 86, ecc[:eccPLen])
	eccLayer(address, append(data[:len(data):len(data)], ecc[:eccPLen]...), 52, 43, 86, 88, ecc[eccQOff:eccTotal])
}
