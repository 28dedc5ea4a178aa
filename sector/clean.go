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

// Clean strips every byte range of s whose governing flag is set in flags,
// returning the concatenation of the surviving ranges in ascending offset
// order. mode must be a value previously returned by Classify and must not
// be Unknown.
func Clean(s []byte, mode Mode, flags Flags) ([]byte, error) {
	if len(s) != SectorSize {
		return nil, fmt.Errorf("%w: got %d bytes", ErrSectorSize, len(s))
	}
	fields := layout(mode)
	if fields == nil {
		return nil, ErrUnknownMode
	}

	out := make([]byte, 0, strippedSize(mode, flags))
	for _, f := range fields {
		if f.kept(mode, flags) {
			out = append(out, s[f.off:f.off+f.length]...)
		}
	}
	return out, nil
}

// StrippedSize returns the residue length Clean would produce for mode
// under flags, without doing the work of stripping.
func StrippedSize(mode Mode, flags Flags) int {
	return strippedSize(mode, flags)
}
