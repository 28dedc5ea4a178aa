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

// FramesPerSecond is the CD-ROM frame rate (one frame per sector).
const FramesPerSecond = 75

// FirstSectorOffset is the absolute frame number of sector index 0,
// i.e. the MSF stamp 00:02:00.
const FirstSectorOffset = 150

func bcd(v uint8) byte {
	return ((v / 10) << 4) | (v % 10)
}

// ToMSF converts a zero-based sector index into its 3-byte BCD
// minutes:seconds:frames stamp.
func ToMSF(index uint32) [3]byte {
	total := index + FirstSectorOffset
	minutes := total / (FramesPerSecond * 60)
	rem := total % (FramesPerSecond * 60)
	seconds := rem / FramesPerSecond
	frames := rem % FramesPerSecond
	return [3]byte{bcd(uint8(minutes)), bcd(uint8(seconds)), bcd(uint8(frames))}
}
