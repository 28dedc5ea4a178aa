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

import "errors"

var (
	// ErrSectorSize indicates a buffer that is not exactly SectorSize bytes.
	ErrSectorSize = errors.New("sector: buffer is not 2352 bytes")

	// ErrUnknownMode indicates Clean or Regenerate was called with Unknown,
	// which callers must not do: unknown sectors are passed through verbatim
	// one layer up.
	ErrUnknownMode = errors.New("sector: unknown mode cannot be cleaned or regenerated")

	// ErrResidueSize indicates a residue buffer shorter than the mode and
	// flags require.
	ErrResidueSize = errors.New("sector: residue too short for mode and flags")
)
