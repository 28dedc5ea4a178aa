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

// Package sector classifies raw 2352-byte CD-ROM sectors, strips the bytes
// that are algorithmically recoverable, and regenerates the original bytes
// from the stripped residue.
package sector

// SectorSize is the fixed size in bytes of one raw CD-ROM sector.
const SectorSize = 2352

// Mode identifies the CD-ROM encoding of a sector.
type Mode uint8

const (
	Unknown Mode = iota
	CDDA
	CDDAGap
	Mode1
	Mode1Gap
	Mode2
	Mode2Gap
	Mode2Form1
	Mode2Form1Gap
	Mode2Form2
	Mode2Form2Gap
)

// String returns the canonical name of m.
func (m Mode) String() string {
	switch m {
	case CDDA:
		return "CDDA"
	case CDDAGap:
		return "CDDA_GAP"
	case Mode1:
		return "MODE1"
	case Mode1Gap:
		return "MODE1_GAP"
	case Mode2:
		return "MODE2"
	case Mode2Gap:
		return "MODE2_GAP"
	case Mode2Form1:
		return "MODE2_FORM1"
	case Mode2Form1Gap:
		return "MODE2_FORM1_GAP"
	case Mode2Form2:
		return "MODE2_FORM2"
	case Mode2Form2Gap:
		return "MODE2_FORM2_GAP"
	default:
		return "UNKNOWN"
	}
}

// Family is the broad category a Mode belongs to, used to group runs into streams.
type Family uint8

const (
	// FamilyAudio covers CDDA and CDDA_GAP.
	FamilyAudio Family = iota
	// FamilyData covers every mode-1 and mode-2 variant.
	FamilyData
)

// Family returns the stream family that m belongs to.
func (m Mode) Family() Family {
	if m == CDDA || m == CDDAGap {
		return FamilyAudio
	}
	return FamilyData
}

// IsGap reports whether m is one of the all-zero "gap" variants.
func (m Mode) IsGap() bool {
	switch m {
	case CDDAGap, Mode1Gap, Mode2Gap, Mode2Form1Gap, Mode2Form2Gap:
		return true
	default:
		return false
	}
}
