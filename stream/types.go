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

// Package stream segments a sector sequence into runs and families, and
// reconstructs that structure back from a container's two tables of
// contents on decode.
package stream

import (
	"github.com/dcarrasco/ecm2/compressor"
	"github.com/dcarrasco/ecm2/sector"
)

// Run is a maximal sequence of adjacent sectors sharing one mode.
type Run struct {
	Mode  sector.Mode
	Count uint32
}

// Stream is a maximal sequence of runs whose family doesn't change.
// EndSector is cumulative: the total sector count, across the whole
// image, consumed by every run up to and including this stream's last.
type Stream struct {
	Family         sector.Family
	Compression    compressor.Kind
	EndSector      uint64
	OutEndPosition uint64
}

// Script pairs a Stream with the ordered Runs that belong to it, the
// reconstructed form Reconstruct hands back to a decoder.
type Script struct {
	Stream Stream
	Runs   []Run
}

// Policy picks the compression back end a stream of the given family uses.
type Policy func(sector.Family) compressor.Kind
