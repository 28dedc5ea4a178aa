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
	"reflect"
	"testing"

	"github.com/dcarrasco/ecm2/compressor"
	"github.com/dcarrasco/ecm2/sector"
)

func modeIterator(modes []sector.Mode) func() (sector.Mode, bool) {
	i := 0
	return func() (sector.Mode, bool) {
		if i >= len(modes) {
			return 0, false
		}
		m := modes[i]
		i++
		return m, true
	}
}

func testPolicy(family sector.Family) compressor.Kind {
	if family == sector.FamilyAudio {
		return compressor.Flac
	}
	return compressor.Lzma
}

func TestSegmentSingleRunSingleStream(t *testing.T) {
	t.Parallel()

	modes := []sector.Mode{sector.Mode1, sector.Mode1, sector.Mode1}
	runs, streams, total := Segment(modeIterator(modes), testPolicy)

	if total != 3 {
		t.Fatalf("total = %d, want 3", total)
	}
	want := []Run{{Mode: sector.Mode1, Count: 3}}
	if !reflect.DeepEqual(runs, want) {
		t.Fatalf("runs = %+v, want %+v", runs, want)
	}
	if len(streams) != 1 || streams[0].Family != sector.FamilyData || streams[0].EndSector != 3 {
		t.Fatalf("streams = %+v", streams)
	}
}

func TestSegmentMultipleRunsOneStream(t *testing.T) {
	t.Parallel()

	modes := []sector.Mode{
		sector.Mode1, sector.Mode1,
		sector.Mode2Form1, sector.Mode2Form1, sector.Mode2Form1,
		sector.Mode2Form2,
	}
	runs, streams, total := Segment(modeIterator(modes), testPolicy)

	if total != 6 {
		t.Fatalf("total = %d, want 6", total)
	}
	wantRuns := []Run{
		{Mode: sector.Mode1, Count: 2},
		{Mode: sector.Mode2Form1, Count: 3},
		{Mode: sector.Mode2Form2, Count: 1},
	}
	if !reflect.DeepEqual(runs, wantRuns) {
		t.Fatalf("runs = %+v, want %+v", runs, wantRuns)
	}
	if len(streams) != 1 || streams[0].EndSector != 6 {
		t.Fatalf("streams = %+v", streams)
	}
}

func TestSegmentFamilyBoundary(t *testing.T) {
	t.Parallel()

	modes := []sector.Mode{
		sector.CDDA, sector.CDDA,
		sector.Mode1, sector.Mode1, sector.Mode1,
		sector.CDDAGap,
	}
	runs, streams, total := Segment(modeIterator(modes), testPolicy)

	if total != 6 {
		t.Fatalf("total = %d, want 6", total)
	}
	wantRuns := []Run{
		{Mode: sector.CDDA, Count: 2},
		{Mode: sector.Mode1, Count: 3},
		{Mode: sector.CDDAGap, Count: 1},
	}
	if !reflect.DeepEqual(runs, wantRuns) {
		t.Fatalf("runs = %+v, want %+v", runs, wantRuns)
	}

	wantStreams := []Stream{
		{Family: sector.FamilyAudio, Compression: compressor.Flac, EndSector: 2},
		{Family: sector.FamilyData, Compression: compressor.Lzma, EndSector: 5},
		{Family: sector.FamilyAudio, Compression: compressor.Flac, EndSector: 6},
	}
	if !reflect.DeepEqual(streams, wantStreams) {
		t.Fatalf("streams = %+v, want %+v", streams, wantStreams)
	}
}

func TestSegmentEmpty(t *testing.T) {
	t.Parallel()

	runs, streams, total := Segment(modeIterator(nil), testPolicy)
	if total != 0 || runs != nil || streams != nil {
		t.Fatalf("expected all-empty result, got runs=%v streams=%v total=%d", runs, streams, total)
	}
}

func TestReconstructRoundTrip(t *testing.T) {
	t.Parallel()

	modes := []sector.Mode{
		sector.CDDA, sector.CDDA,
		sector.Mode1, sector.Mode1, sector.Mode1,
		sector.CDDAGap,
	}
	runs, streams, _ := Segment(modeIterator(modes), testPolicy)

	scripts, err := Reconstruct(streams, runs)
	if err != nil {
		t.Fatalf("Reconstruct: %v", err)
	}
	if len(scripts) != len(streams) {
		t.Fatalf("got %d scripts, want %d", len(scripts), len(streams))
	}

	var reassembledRuns []Run
	for i, s := range scripts {
		if !reflect.DeepEqual(s.Stream, streams[i]) {
			t.Fatalf("script %d stream = %+v, want %+v", i, s.Stream, streams[i])
		}
		reassembledRuns = append(reassembledRuns, s.Runs...)
	}
	if !reflect.DeepEqual(reassembledRuns, runs) {
		t.Fatalf("reassembled runs = %+v, want %+v", reassembledRuns, runs)
	}
}

func TestReconstructOvershoot(t *testing.T) {
	t.Parallel()

	streams := []Stream{{Family: sector.FamilyData, EndSector: 2}}
	runs := []Run{{Mode: sector.Mode1, Count: 5}}

	if _, err := Reconstruct(streams, runs); err == nil {
		t.Fatal("expected ErrCorruptedStream on overshoot")
	}
}

func TestReconstructLeftoverRuns(t *testing.T) {
	t.Parallel()

	streams := []Stream{{Family: sector.FamilyData, EndSector: 2}}
	runs := []Run{{Mode: sector.Mode1, Count: 2}, {Mode: sector.Mode1, Count: 1}}

	if _, err := Reconstruct(streams, runs); err == nil {
		t.Fatal("expected ErrCorruptedStream on leftover runs")
	}
}
