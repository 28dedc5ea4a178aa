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

func isZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}

// Classify determines the CD-ROM mode of a raw 2352-byte sector. It is
// total: a buffer of the wrong length or one whose structure doesn't match
// any known mode yields Unknown rather than an error.
func Classify(s []byte) Mode {
	if len(s) != SectorSize {
		return Unknown
	}

	if !bytes.Equal(s[0:12], syncPattern[:]) {
		if isZero(s) {
			return CDDAGap
		}
		return CDDA
	}

	switch s[0x00F] {
	case 0x01:
		if isZero(s[0x814:0x81C]) &&
			ECCCheckPQ(s[0x00C:0x010], s[0x010:0x81C], s[0x81C:0x930]) &&
			EDC(0, s[0x000:0x810]) == le32(s[0x810:0x814]) {
			if isZero(s[0x010:0x810]) {
				return Mode1Gap
			}
			return Mode1
		}
		return Unknown

	case 0x02:
		if ECCCheckPQ(zeroAddress[:], s[0x010:0x81C], s[0x81C:0x930]) &&
			EDC(0, s[0x010:0x818]) == le32(s[0x818:0x81C]) {
			if isZero(s[0x018:0x818]) {
				return Mode2Form1Gap
			}
			return Mode2Form1
		}
		if EDC(0, s[0x010:0x92C]) == le32(s[0x92C:0x930]) {
			if isZero(s[0x018:0x92C]) {
				return Mode2Form2Gap
			}
			return Mode2Form2
		}
		if isZero(s[0x010:0x930]) {
			return Mode2Gap
		}
		return Mode2

	default:
		return Unknown
	}
}
