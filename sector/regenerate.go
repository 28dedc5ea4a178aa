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

import "fmt"

// Regenerate rebuilds the full 2352-byte sector that Clean stripped, given
// the original mode, the absolute sector index (used to synthesize the MSF
// stamp), and the same flags Clean was called with. It is the exact inverse
// of Clean for any sector whose lossless preconditions held at encode time.
func Regenerate(residue []byte, mode Mode, index uint32, flags Flags) ([]byte, error) {
	fields := layout(mode)
	if fields == nil {
		return nil, ErrUnknownMode
	}

	out := make([]byte, SectorSize)
	cursor := 0
	for _, f := range fields {
		if f.kept(mode, flags) {
			if cursor+f.length > len(residue) {
				return nil, fmt.Errorf("%w: need %d more bytes at offset %d", ErrResidueSize, f.length, f.off)
			}
			copy(out[f.off:f.off+f.length], residue[cursor:cursor+f.length])
			cursor += f.length
			continue
		}
		synthesize(out, f, mode, index)
	}
	return out, nil
}

// synthesize fills a stripped field back into out. out must already hold
// every earlier field in layout order, since EDC and ECC are recomputed
// from bytes to their left.
func synthesize(out []byte, f field, mode Mode, index uint32) {
	switch f.kind {
	case fSync:
		copy(out[f.off:f.off+f.length], syncPattern[:])

	case fMSF:
		msf := ToMSF(index)
		copy(out[f.off:f.off+f.length], msf[:])

	case fMode:
		if mode == Mode1 || mode == Mode1Gap {
			out[f.off] = 0x01
		} else {
			out[f.off] = 0x02
		}

	case fXASub2:
		copy(out[f.off:f.off+f.length], out[f.off-4:f.off])

	case fEDC:
		var edc uint32
		switch mode {
		case Mode1, Mode1Gap:
			edc = EDC(0, out[0x000:0x810])
		case Mode2Form1, Mode2Form1Gap:
			edc = EDC(0, out[0x010:0x818])
		case Mode2Form2, Mode2Form2Gap:
			edc = EDC(0, out[0x010:0x92C])
		}
		putLE32(out[f.off:f.off+4], edc)

	case fECC:
		switch mode {
		case Mode1, Mode1Gap:
			ECCWritePQ(out[0x00C:0x010], out[0x010:0x81C], out[f.off:f.off+eccTotal])
		case Mode2Form1, Mode2Form1Gap:
			ECCWritePQ(zeroAddress[:], out[0x010:0x81C], out[f.off:f.off+eccTotal])
		}

	case fXASub1, fData, fBlanks:
		// fXASub1 is never stripped; fData and fBlanks synthesize to the
		// zero value out already carries.
	}
}
