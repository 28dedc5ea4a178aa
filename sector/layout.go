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

// Flags is an 8-bit set of optimizations applied when stripping a sector.
// A flag disabled for the whole image (because some sector fails its
// lossless precondition) must be cleared before Clean/Regenerate are called
// for any sector of that image.
type Flags uint8

const (
	RemoveSync Flags = 1 << iota
	RemoveMSF
	RemoveMode
	RemoveBlanks
	RemoveRedundantFlag
	RemoveECC
	RemoveEDC
	RemoveGap
)

var syncPattern = [12]byte{0x00, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x00}

var zeroAddress = [4]byte{}

// fieldKind names a byte range of the 2352-byte sector layout.
type fieldKind int

const (
	fSync fieldKind = iota
	fMSF
	fMode
	fXASub1
	fXASub2
	fData
	fEDC
	fBlanks
	fECC
)

// field describes one contiguous byte range of a sector and the flag that
// governs whether it is stripped.
type field struct {
	kind   fieldKind
	off    int
	length int
	flag   Flags // 0 means the field is never stripped
}

// layout returns, in ascending offset order, the fields that make up a
// sector of the given mode. Clean, Regenerate and strippedSize all walk this
// same table so the two directions never drift apart.
func layout(mode Mode) []field {
	switch mode {
	case CDDA, CDDAGap:
		return []field{{fData, 0, SectorSize, 0}}

	case Mode1, Mode1Gap:
		return []field{
			{fSync, 0x000, 12, RemoveSync},
			{fMSF, 0x00C, 3, RemoveMSF},
			{fMode, 0x00F, 1, RemoveMode},
			{fData, 0x010, 0x800, 0},
			{fEDC, 0x810, 4, RemoveEDC},
			{fBlanks, 0x814, 8, RemoveBlanks},
			{fECC, 0x81C, eccTotal, RemoveECC},
		}

	case Mode2, Mode2Gap:
		return []field{
			{fSync, 0x000, 12, RemoveSync},
			{fMSF, 0x00C, 3, RemoveMSF},
			{fMode, 0x00F, 1, RemoveMode},
			{fData, 0x010, 0x920, 0},
		}

	case Mode2Form1, Mode2Form1Gap:
		return []field{
			{fSync, 0x000, 12, RemoveSync},
			{fMSF, 0x00C, 3, RemoveMSF},
			{fMode, 0x00F, 1, RemoveMode},
			{fXASub1, 0x010, 4, 0},
			{fXASub2, 0x014, 4, RemoveRedundantFlag},
			{fData, 0x018, 0x800, 0},
			{fEDC, 0x818, 4, RemoveEDC},
			{fECC, 0x81C, eccTotal, RemoveECC},
		}

	case Mode2Form2, Mode2Form2Gap:
		return []field{
			{fSync, 0x000, 12, RemoveSync},
			{fMSF, 0x00C, 3, RemoveMSF},
			{fMode, 0x00F, 1, RemoveMode},
			{fXASub1, 0x010, 4, 0},
			{fXASub2, 0x014, 4, RemoveRedundantFlag},
			{fData, 0x018, 0x914, 0},
			{fEDC, 0x92C, 4, RemoveEDC},
		}

	default:
		return nil
	}
}

// kept reports whether f survives stripping under flags, for the given mode.
func (f field) kept(mode Mode, flags Flags) bool {
	if f.kind == fData && mode.IsGap() {
		return flags&RemoveGap == 0
	}
	if f.flag == 0 {
		return true
	}
	return flags&f.flag == 0
}

// strippedSize returns the residue length Clean produces for mode under flags.
func strippedSize(mode Mode, flags Flags) int {
	n := 0
	for _, f := range layout(mode) {
		if f.kept(mode, flags) {
			n += f.length
		}
	}
	return n
}
