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

package ecm2

import (
	"fmt"
	"io"

	"github.com/dcarrasco/ecm2/compressor"
	"github.com/dcarrasco/ecm2/container"
	"github.com/dcarrasco/ecm2/sector"
	"github.com/dcarrasco/ecm2/stream"
)

// maxSectionLength bounds the io.SectionReader views this package opens
// over src. src's actual length is whatever the underlying io.ReaderAt
// holds; this package only ever needs to know where to *start* reading,
// never the file's true end, so it asks for "everything from here on" and
// lets each structural read consume exactly as many bytes as that
// structure's own framing says it needs.
const maxSectionLength = 1<<63 - 1

// ecmLocation bundles the structural reads Decode and DecodeFrom share: the
// ECM block's own header and sub-header, and where its payload begins.
type ecmLocation struct {
	ecmPos       int64
	ecmHeader    container.BlockHeader
	payloadStart int64
	subHeader    container.ECMSubHeader
}

// locateECMBlock walks src's outer header and TOC block to the ECM block
// and reads its sub-header, the structural prefix both Decode and
// DecodeFrom need before either can reach the compressed stream data.
func locateECMBlock(src io.ReaderAt) (ecmLocation, error) {
	outer, err := container.ReadOuterHeader(io.NewSectionReader(src, 0, maxSectionLength))
	if err != nil {
		return ecmLocation{}, err
	}

	tocPos := int64(outer.FileTOCPosition)
	tocReader := io.NewSectionReader(src, tocPos, maxSectionLength-tocPos)
	tocHeader, err := container.ReadBlockHeader(tocReader)
	if err != nil {
		return ecmLocation{}, err
	}
	entries, err := container.ReadTOCBlock(tocReader, tocHeader.RealBlockSize)
	if err != nil {
		return ecmLocation{}, err
	}

	var ecmPos int64
	found := false
	for _, e := range entries {
		if e.Type == container.BlockECM {
			ecmPos = int64(e.StartPosition)
			found = true
			break
		}
	}
	if !found {
		return ecmLocation{}, fmt.Errorf("%w: no ECM block in TOC", ErrCorruptedHeader)
	}

	ecmReader := io.NewSectionReader(src, ecmPos, maxSectionLength-ecmPos)
	ecmHeader, err := container.ReadBlockHeader(ecmReader)
	if err != nil {
		return ecmLocation{}, err
	}
	if ecmHeader.Type != container.BlockECM {
		return ecmLocation{}, fmt.Errorf("%w: TOC points at a %s block", ErrCorruptedHeader, ecmHeader.Type)
	}

	payloadStart := ecmPos + int64(container.BlockHeaderSize)
	subHeader, err := container.ReadECMSubHeader(ecmReader)
	if err != nil {
		return ecmLocation{}, err
	}

	return ecmLocation{ecmPos: ecmPos, ecmHeader: ecmHeader, payloadStart: payloadStart, subHeader: subHeader}, nil
}

// Decode reads a complete ECM2 container from src, regenerates every
// sector losslessly, writes the reconstructed raw image to dst, and
// verifies the whole-image EDC recorded at encode time.
func Decode(src io.ReaderAt, dst io.Writer, opts DecodeOptions) (*Report, error) {
	loc, err := locateECMBlock(src)
	if err != nil {
		return nil, err
	}

	streams, err := readStreamsTOC(src, loc.payloadStart, loc.subHeader)
	if err != nil {
		return nil, err
	}
	runs, err := readSectorsTOC(src, loc.payloadStart, loc.subHeader)
	if err != nil {
		return nil, err
	}

	scripts, err := stream.Reconstruct(streams, runs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptedStream, err)
	}

	flags := sector.Flags(loc.subHeader.Optimizations)
	ecmDataStart := loc.payloadStart + int64(loc.subHeader.ECMDataPos)
	ecmDataEnd := loc.payloadStart + int64(loc.ecmHeader.BlockSize) - container.EDCTrailerSize
	if ecmDataEnd < ecmDataStart {
		return nil, fmt.Errorf("%w: ecm data region has negative length", ErrCorruptedHeader)
	}

	syncPoints, err := readSyncTOC(src, loc.payloadStart, loc.subHeader)
	if err != nil {
		return nil, err
	}

	var imageEDC uint32
	var sectorIndex uint32
	var sectorsDone int64
	var totalSectors int64
	for _, r := range runs {
		totalSectors += int64(r.Count)
	}

	cursor := ecmDataStart
	var scriptStartSector uint64
	for i := range scripts {
		script := &scripts[i]
		// OutEndPosition is already an absolute file offset (assembleContainer
		// computed it that way so both sides agree without needing the ECM
		// block's position added back in here).
		streamEnd := int64(script.Stream.OutEndPosition)
		if streamEnd < cursor || streamEnd > ecmDataEnd {
			return nil, fmt.Errorf("%w: stream end position out of range", ErrCorruptedStream)
		}

		var scriptSectors uint64
		for _, r := range script.Runs {
			scriptSectors += uint64(r.Count)
		}
		scriptEndSector := scriptStartSector + scriptSectors

		// A seekable-mode encode may have closed and restarted this script's
		// encoder at every sync point within it, so its compressed span is
		// really N independently-closed segments concatenated back to back,
		// not one continuous stream: each has to be inflated on its own.
		for _, seg := range scriptSegments(scriptStartSector, scriptEndSector, cursor, streamEnd, syncPoints) {
			segRuns := sliceRuns(script.Runs, seg.startSector-scriptStartSector, seg.endSector-seg.startSector)
			compressed := io.NewSectionReader(src, seg.byteStart, seg.byteEnd-seg.byteStart)
			if err := decodeStream(compressed, script.Stream.Compression, segRuns, dst, &sectorIndex, &imageEDC, flags); err != nil {
				return nil, err
			}
		}

		cursor = streamEnd
		scriptStartSector = scriptEndSector
		for _, r := range script.Runs {
			sectorsDone += int64(r.Count)
			if opts.Progress != nil {
				opts.Progress("decode", sectorsDone, totalSectors)
			}
		}
	}

	trailerReader := io.NewSectionReader(src, ecmDataEnd, maxSectionLength-ecmDataEnd)
	wantEDC, err := container.ReadEDCTrailer(trailerReader)
	if err != nil {
		return nil, err
	}
	if wantEDC != imageEDC {
		return nil, ErrEDCMismatch
	}

	return &Report{
		SectorsTotal: uint64(totalSectors),
		BytesWritten: totalSectors * sector.SectorSize,
		ImageEDC:     imageEDC,
	}, nil
}

// readStreamsTOC reads and decompresses the streams-TOC at the offset
// subHeader.StreamsTOCPos names, relative to payloadStart.
func readStreamsTOC(src io.ReaderAt, payloadStart int64, subHeader container.ECMSubHeader) ([]stream.Stream, error) {
	pos := payloadStart + int64(subHeader.StreamsTOCPos)
	r := io.NewSectionReader(src, pos, maxSectionLength-pos)
	hdr, err := container.ReadMiniTOCHeader(r)
	if err != nil {
		return nil, err
	}
	compressed := make([]byte, hdr.CompressedSize)
	if _, err := io.ReadFull(r, compressed); err != nil {
		return nil, fmt.Errorf("%w: streams-toc: %w", ErrFileRead, err)
	}
	streams, err := container.DecodeStreamsTOC(hdr, compressed)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHeaderCompression, err)
	}
	return streams, nil
}

// readSectorsTOC is readStreamsTOC's counterpart for the sectors-TOC.
func readSectorsTOC(src io.ReaderAt, payloadStart int64, subHeader container.ECMSubHeader) ([]stream.Run, error) {
	pos := payloadStart + int64(subHeader.SectorsTOCPos)
	r := io.NewSectionReader(src, pos, maxSectionLength-pos)
	hdr, err := container.ReadMiniTOCHeader(r)
	if err != nil {
		return nil, err
	}
	compressed := make([]byte, hdr.CompressedSize)
	if _, err := io.ReadFull(r, compressed); err != nil {
		return nil, fmt.Errorf("%w: sectors-toc: %w", ErrFileRead, err)
	}
	runs, err := container.DecodeSectorsTOC(hdr, compressed)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHeaderCompression, err)
	}
	return runs, nil
}

// readSyncTOC is readStreamsTOC's counterpart for the sync-TOC. A stream
// encoded with no seekable stride still has a sync-TOC mini-block, just
// one with zero records.
func readSyncTOC(src io.ReaderAt, payloadStart int64, subHeader container.ECMSubHeader) ([]container.SyncPoint, error) {
	pos := payloadStart + int64(subHeader.SyncTOCPos)
	r := io.NewSectionReader(src, pos, maxSectionLength-pos)
	hdr, err := container.ReadMiniTOCHeader(r)
	if err != nil {
		return nil, err
	}
	compressed := make([]byte, hdr.CompressedSize)
	if _, err := io.ReadFull(r, compressed); err != nil {
		return nil, fmt.Errorf("%w: sync-toc: %w", ErrFileRead, err)
	}
	points, err := container.DecodeSyncTOC(hdr, compressed)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHeaderCompression, err)
	}
	return points, nil
}

// trimRuns drops the first skip sectors' worth of runs, splitting the run
// that straddles the boundary if skip doesn't land exactly on a run
// boundary. skip must not exceed the total sector count of runs.
func trimRuns(runs []stream.Run, skip uint64) []stream.Run {
	out := make([]stream.Run, 0, len(runs))
	for _, r := range runs {
		switch {
		case skip == 0:
			out = append(out, r)
		case skip >= uint64(r.Count):
			skip -= uint64(r.Count)
		default:
			out = append(out, stream.Run{Mode: r.Mode, Count: r.Count - uint32(skip)})
			skip = 0
		}
	}
	return out
}

// sliceRuns returns the runs covering exactly the length sectors starting
// skip sectors into runs, splitting the runs at both ends of the window as
// needed. skip+length must not exceed runs' total sector count.
func sliceRuns(runs []stream.Run, skip, length uint64) []stream.Run {
	trimmed := trimRuns(runs, skip)
	out := make([]stream.Run, 0, len(trimmed))
	remaining := length
	for _, r := range trimmed {
		if remaining == 0 {
			break
		}
		if uint64(r.Count) <= remaining {
			out = append(out, r)
			remaining -= uint64(r.Count)
		} else {
			out = append(out, stream.Run{Mode: r.Mode, Count: uint32(remaining)})
			remaining = 0
		}
	}
	return out
}

// segmentBound is one independently-compressed segment within a script's
// compressed span: the sector range it covers and the byte range, within
// src, its compressed form occupies.
type segmentBound struct {
	startSector, endSector uint64
	byteStart, byteEnd     int64
}

// scriptSegments splits one script's [byteStart, byteEnd) compressed span,
// covering sectors [scriptStart, scriptEnd), at every sync point recorded
// inside that sector range. A script encoded without a seekable stride (or
// one whose sync points all fall outside its own range) yields a single
// segment spanning the whole thing, matching the stream's own framing.
func scriptSegments(scriptStart, scriptEnd uint64, byteStart, byteEnd int64, syncPoints []container.SyncPoint) []segmentBound {
	segs := make([]segmentBound, 0, 1)
	curSector := scriptStart
	curByte := byteStart
	for _, p := range syncPoints {
		if p.SectorOffset <= scriptStart || p.SectorOffset >= scriptEnd {
			continue
		}
		segs = append(segs, segmentBound{
			startSector: curSector, endSector: p.SectorOffset,
			byteStart: curByte, byteEnd: int64(p.BytePosition),
		})
		curSector = p.SectorOffset
		curByte = int64(p.BytePosition)
	}
	segs = append(segs, segmentBound{startSector: curSector, endSector: scriptEnd, byteStart: curByte, byteEnd: byteEnd})
	return segs
}

// DecodeFrom reads only the compressed segment that covers startSector
// onward and every script after it, regenerating just the image's suffix
// from startSector through the end and writing it to dst. Unlike Decode,
// it does not verify the container's whole-image EDC trailer: that
// checksum is computed over sectors this call never reads.
//
// startSector must be a stream's own first sector or a sector a seekable
// encode recorded a sync point at (SectorsPerBlock must have been
// non-zero for any boundary besides a stream's own start to exist);
// anything else returns ErrNotSyncBoundary.
func DecodeFrom(src io.ReaderAt, dst io.Writer, startSector uint32, opts DecodeOptions) (*Report, error) {
	loc, err := locateECMBlock(src)
	if err != nil {
		return nil, err
	}

	streams, err := readStreamsTOC(src, loc.payloadStart, loc.subHeader)
	if err != nil {
		return nil, err
	}
	runs, err := readSectorsTOC(src, loc.payloadStart, loc.subHeader)
	if err != nil {
		return nil, err
	}
	syncPoints, err := readSyncTOC(src, loc.payloadStart, loc.subHeader)
	if err != nil {
		return nil, err
	}

	scripts, err := stream.Reconstruct(streams, runs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptedStream, err)
	}

	var totalSectors uint64
	for _, r := range runs {
		totalSectors += uint64(r.Count)
	}
	if uint64(startSector) >= totalSectors {
		return nil, fmt.Errorf("%w: sector %d is past the end of the image", ErrNotSyncBoundary, startSector)
	}

	flags := sector.Flags(loc.subHeader.Optimizations)
	ecmDataStart := loc.payloadStart + int64(loc.subHeader.ECMDataPos)

	var imageEDC uint32
	sectorIndex := startSector
	matched := false

	var scriptStartSector uint64
	cursor := ecmDataStart
	for i := range scripts {
		script := &scripts[i]
		streamEnd := int64(script.Stream.OutEndPosition)
		if streamEnd < cursor {
			return nil, fmt.Errorf("%w: stream end position out of range", ErrCorruptedStream)
		}

		var scriptSectors uint64
		for _, r := range script.Runs {
			scriptSectors += uint64(r.Count)
		}
		scriptEndSector := scriptStartSector + scriptSectors

		// A seekable-mode script can hold several independently-closed
		// segments; each segment boundary, and each script's own start, is
		// a valid resume point. Segments before the one startSector lands
		// in are skipped without decoding anything.
		for _, seg := range scriptSegments(scriptStartSector, scriptEndSector, cursor, streamEnd, syncPoints) {
			if !matched {
				if seg.startSector != uint64(startSector) {
					continue
				}
				matched = true
			}
			segRuns := sliceRuns(script.Runs, seg.startSector-scriptStartSector, seg.endSector-seg.startSector)
			compressed := io.NewSectionReader(src, seg.byteStart, seg.byteEnd-seg.byteStart)
			if err := decodeStream(compressed, script.Stream.Compression, segRuns, dst, &sectorIndex, &imageEDC, flags); err != nil {
				return nil, err
			}
			if opts.Progress != nil {
				opts.Progress("decode", int64(sectorIndex-startSector), int64(totalSectors-uint64(startSector)))
			}
		}

		cursor = streamEnd
		scriptStartSector = scriptEndSector
	}

	if !matched {
		return nil, fmt.Errorf("%w: sector %d", ErrNotSyncBoundary, startSector)
	}

	return &Report{
		SectorsTotal: uint64(sectorIndex - startSector),
		BytesWritten: int64(sectorIndex-startSector) * sector.SectorSize,
		ImageEDC:     imageEDC,
	}, nil
}

// decodeStream decompresses one stream's share of compressed in its
// entirety (mirroring the mini-TOCs' deflate/inflate shape: a stream's
// compressed size is small enough, relative to available memory, that
// there is no benefit to draining it sector-by-sector the way Encode's
// encoder side must), then regenerates each run's sectors in order,
// writing each to dst and folding it into *imageEDC.
func decodeStream(
	compressed io.Reader, kind compressor.Kind, runs []stream.Run,
	dst io.Writer, sectorIndex *uint32, imageEDC *uint32, flags sector.Flags,
) error {
	stripped := make([]int, 0, len(runs))
	for _, r := range runs {
		stripped = append(stripped, sector.StrippedSize(r.Mode, flags))
	}
	var uncompressedSize int
	for i, r := range runs {
		uncompressedSize += stripped[i] * int(r.Count)
	}

	residue, err := inflateStream(kind, compressed, uncompressedSize)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrProcessing, err)
	}

	offset := 0
	for i, r := range runs {
		size := stripped[i]
		for j := uint32(0); j < r.Count; j++ {
			if offset+size > len(residue) {
				return fmt.Errorf("%w: stream shorter than its sector table", ErrCorruptedStream)
			}
			raw, err := sector.Regenerate(residue[offset:offset+size], r.Mode, *sectorIndex, flags)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrProcessing, err)
			}
			if _, err := dst.Write(raw); err != nil {
				return fmt.Errorf("%w: %w", ErrFileWrite, err)
			}
			*imageEDC = sector.EDC(*imageEDC, raw)
			*sectorIndex++
			offset += size
		}
	}
	return nil
}

// inflateStream reads all of compressed and drives kind's decoder to
// completion, returning exactly uncompressedSize bytes.
func inflateStream(kind compressor.Kind, compressed io.Reader, uncompressedSize int) ([]byte, error) {
	dec, err := compressor.NewDecoder(kind)
	if err != nil {
		return nil, err
	}
	defer func() { _ = dec.Close() }()

	in, err := io.ReadAll(compressed)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFileRead, err)
	}

	out := make([]byte, 0, uncompressedSize)
	chunk := make([]byte, outputChunkSize)
	for {
		dec.SetInput(in)
		dec.SetOutput(chunk)
		status, err := dec.Process(compressor.EndStream)
		if err != nil {
			return nil, err
		}
		written := len(chunk) - dec.RemainingOutput()
		out = append(out, chunk[:written]...)
		in = in[len(in)-dec.RemainingInput():]
		if status == compressor.StreamEnd {
			if len(out) != uncompressedSize {
				return nil, fmt.Errorf("%w: decoded %d bytes, expected %d", ErrCorruptedStream, len(out), uncompressedSize)
			}
			return out, nil
		}
		if written == 0 && len(in) == 0 {
			return nil, fmt.Errorf("%w: decoder stalled before producing expected output", ErrProcessing)
		}
	}
}
