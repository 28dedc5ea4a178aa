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

package stream

import "fmt"

// Reconstruct absorbs runs into streams by cumulative sector count until
// each stream's EndSector is reached, in order. It is the inverse of
// Segment applied to a container's two persisted tables rather than a
// live sector sequence.
func Reconstruct(streams []Stream, runs []Run) ([]Script, error) {
	scripts := make([]Script, 0, len(streams))

	var consumed uint64
	runIdx := 0
	for _, s := range streams {
		script := Script{Stream: s}
		for consumed < s.EndSector {
			if runIdx >= len(runs) {
				return nil, fmt.Errorf("%w: ran out of runs before reaching end_sector %d", ErrCorruptedStream, s.EndSector)
			}
			r := runs[runIdx]
			runIdx++
			consumed += uint64(r.Count)
			if consumed > s.EndSector {
				return nil, fmt.Errorf("%w: run overshoots end_sector %d by %d sectors", ErrCorruptedStream, s.EndSector, consumed-s.EndSector)
			}
			script.Runs = append(script.Runs, r)
		}
		scripts = append(scripts, script)
	}

	if runIdx != len(runs) {
		return nil, fmt.Errorf("%w: %d runs left over after the last stream", ErrCorruptedStream, len(runs)-runIdx)
	}

	return scripts, nil
}
