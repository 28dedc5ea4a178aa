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

import (
	"math"

	"github.com/dcarrasco/ecm2/sector"
)

// Segment walks next (which yields one classified sector mode at a time,
// returning ok=false once the image is exhausted) and splits it into runs
// of identical mode and streams of identical family, in a single pass. It
// returns the Sectors-TOC, the Streams-TOC, and the total sector count.
//
// next is handed modes rather than raw sectors: classification is C1's
// job, and keeping it out of this package lets a caller reuse a mode it
// already computed (the orchestrator's analyze pass needs the mode for
// other reasons too) instead of classifying twice.
func Segment(next func() (sector.Mode, bool), policy Policy) ([]Run, []Stream, uint64) {
	var runs []Run
	var streams []Stream

	var (
		total           uint64
		bootstrapped    bool
		currentMode     sector.Mode
		currentFamily   sector.Family
		currentRunCount uint32
	)

	for {
		mode, ok := next()
		if !ok {
			break
		}
		total++
		family := mode.Family()

		switch {
		case !bootstrapped:
			bootstrapped = true
			currentMode = mode
			currentFamily = family
			currentRunCount = 1

		case mode == currentMode && currentRunCount < math.MaxUint32:
			currentRunCount++

		default:
			runs = append(runs, Run{Mode: currentMode, Count: currentRunCount})
			if family != currentFamily {
				streams = append(streams, Stream{
					Family:      currentFamily,
					Compression: policy(currentFamily),
					EndSector:   total - 1,
				})
				currentFamily = family
			}
			currentMode = mode
			currentRunCount = 1
		}
	}

	if bootstrapped {
		runs = append(runs, Run{Mode: currentMode, Count: currentRunCount})
		streams = append(streams, Stream{
			Family:      currentFamily,
			Compression: policy(currentFamily),
			EndSector:   total,
		})
	}

	return runs, streams, total
}
