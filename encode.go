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
	"bytes"
	"fmt"
	"io"

	"github.com/dcarrasco/ecm2/compressor"
	"github.com/dcarrasco/ecm2/container"
	"github.com/dcarrasco/ecm2/sector"
	"github.com/dcarrasco/ecm2/stream"
)

// allOptimizations is the full optimization bitset Encode starts every
// image with; the analyze pass clears individual bits if that image fails
// one of their lossless preconditions.
const allOptimizations = sector.RemoveSync | sector.RemoveMSF | sector.RemoveMode |
	sector.RemoveBlanks | sector.RemoveRedundantFlag | sector.RemoveECC |
	sector.RemoveEDC | sector.RemoveGap

// Encode reads size bytes of raw 2352-byte sectors from src, strips every
// sector losslessly, compresses the resulting streams, and writes a
// complete ECM2 container to dst.
func Encode(src io.ReaderAt, size int64, dst io.Writer, opts EncodeOptions) (*Report, error) {
	if size <= 0 || size%sector.SectorSize != 0 {
		return nil, ErrInvalidSize
	}
	totalSectors := uint64(size / sector.SectorSize)

	policy := func(family sector.Family) compressor.Kind {
		if family == sector.FamilyAudio {
			return opts.AudioCompression
		}
		return opts.DataCompression
	}

	flags, runs, streams, err := analyzeImage(src, totalSectors, policy, opts.Progress)
	if err != nil {
		return nil, err
	}

	scripts, err := stream.Reconstruct(streams, runs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptedStream, err)
	}

	var ecmData bytes.Buffer
	var imageEDC uint32
	var sectorIndex uint32
	var sectorsDone int64
	var syncPoints []container.SyncPoint

	for i := range scripts {
		script := &scripts[i]
		compression := script.Stream.Compression
		newEncoder := func() (compressor.Coder, error) {
			return compressor.NewEncoder(compression, compressor.EncoderOptions{
				Level:           opts.Level,
				Extreme:         opts.Extreme,
				SectorsPerBlock: opts.SectorsPerBlock,
			})
		}

		segments, err := encodeStream(newEncoder, src, script.Runs, &sectorIndex, &imageEDC, flags, opts.SectorsPerBlock, &ecmData)
		if err != nil {
			return nil, err
		}
		syncPoints = append(syncPoints, segments...)
		script.Stream.OutEndPosition = uint64(ecmData.Len())

		for _, r := range script.Runs {
			sectorsDone += int64(r.Count)
			if opts.Progress != nil {
				opts.Progress("encode", sectorsDone, int64(totalSectors))
			}
		}
	}

	finalStreams := make([]stream.Stream, len(scripts))
	for i, s := range scripts {
		finalStreams[i] = s.Stream
	}

	return assembleContainer(dst, finalStreams, runs, ecmData.Bytes(), imageEDC, uint8(flags), syncPoints, opts)
}

// assembleContainer lays out the ECM block (sub-header, three compressed
// mini-TOCs, the already-compressed stream data, and the trailing EDC),
// then the TOC block, then writes the whole file to dst in one pass. Each
// stream's OutEndPosition, and every sync point's BytePosition, is
// expected relative to the start of ecmData; assembleContainer turns them
// into absolute file offsets before compressing the streams-TOC and
// sync-TOC.
func assembleContainer(
	dst io.Writer,
	streams []stream.Stream,
	runs []stream.Run,
	ecmData []byte,
	imageEDC uint32,
	optimizations uint8,
	syncPoints []container.SyncPoint,
	opts EncodeOptions,
) (*Report, error) {
	streamsTOCPos := uint64(container.ECMSubHeaderFixedSize + len(opts.Title) + len(opts.ID))
	ecmBlockPayloadStart := int64(container.OuterHeaderSize) + int64(container.BlockHeaderSize)

	sectorsCompressed, sectorsHdr, err := container.EncodeSectorsTOC(runs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHeaderCompression, err)
	}

	// STREAM and SYNC records are both fixed-size, so the streams-TOC's and
	// sync-TOC's compressed sizes can be measured before their position
	// fields hold final, absolute values: compress once to learn the
	// sizes, derive every offset from them, patch the positions in, and
	// recompress. If recompression happens to land on a different byte
	// count (zlib's output can vary slightly with its input bytes even at
	// a fixed input length), repeat; record counts never change, so this
	// converges in at most a couple of extra passes.
	_, placeholderStreamsHdr, err := container.EncodeStreamsTOC(streams)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHeaderCompression, err)
	}
	_, placeholderSyncHdr, err := container.EncodeSyncTOC(syncPoints)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHeaderCompression, err)
	}

	var streamsCompressed, syncCompressed []byte
	var streamsHdr, syncHdr container.MiniTOCHeader
	streamsSize := uint64(placeholderStreamsHdr.CompressedSize)
	syncSize := uint64(placeholderSyncHdr.CompressedSize)
	for {
		sectorsTOCPos := streamsTOCPos + container.MiniTOCHeaderSize + streamsSize
		syncTOCPos := sectorsTOCPos + container.MiniTOCHeaderSize + uint64(sectorsHdr.CompressedSize)
		ecmDataPos := syncTOCPos + container.MiniTOCHeaderSize + syncSize
		ecmDataAbsoluteStart := uint64(ecmBlockPayloadStart) + ecmDataPos

		absoluteStreams := make([]stream.Stream, len(streams))
		for i, s := range streams {
			s.OutEndPosition += ecmDataAbsoluteStart
			absoluteStreams[i] = s
		}
		absoluteSync := make([]container.SyncPoint, len(syncPoints))
		for i, p := range syncPoints {
			p.BytePosition += ecmDataAbsoluteStart
			absoluteSync[i] = p
		}

		streamsCompressed, streamsHdr, err = container.EncodeStreamsTOC(absoluteStreams)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrHeaderCompression, err)
		}
		syncCompressed, syncHdr, err = container.EncodeSyncTOC(absoluteSync)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrHeaderCompression, err)
		}
		if uint64(streamsHdr.CompressedSize) == streamsSize && uint64(syncHdr.CompressedSize) == syncSize {
			break
		}
		streamsSize = uint64(streamsHdr.CompressedSize)
		syncSize = uint64(syncHdr.CompressedSize)
	}

	sectorsTOCPos := streamsTOCPos + container.MiniTOCHeaderSize + uint64(streamsHdr.CompressedSize)
	syncTOCPos := sectorsTOCPos + container.MiniTOCHeaderSize + uint64(sectorsHdr.CompressedSize)
	ecmDataPos := syncTOCPos + container.MiniTOCHeaderSize + uint64(syncHdr.CompressedSize)

	subHeader := container.ECMSubHeader{
		Optimizations:   optimizations,
		SectorsPerBlock: uint8(opts.SectorsPerBlock),
		StreamsTOCPos:   streamsTOCPos,
		SectorsTOCPos:   sectorsTOCPos,
		SyncTOCPos:      syncTOCPos,
		ECMDataPos:      ecmDataPos,
		Title:           opts.Title,
		ID:              opts.ID,
	}

	var ecmBlock bytes.Buffer
	if err := container.WriteECMSubHeader(&ecmBlock, subHeader); err != nil {
		return nil, err
	}
	if err := container.WriteMiniTOCHeader(&ecmBlock, streamsHdr); err != nil {
		return nil, err
	}
	ecmBlock.Write(streamsCompressed)
	if err := container.WriteMiniTOCHeader(&ecmBlock, sectorsHdr); err != nil {
		return nil, err
	}
	ecmBlock.Write(sectorsCompressed)
	if err := container.WriteMiniTOCHeader(&ecmBlock, syncHdr); err != nil {
		return nil, err
	}
	ecmBlock.Write(syncCompressed)
	ecmBlock.Write(ecmData)
	if err := container.WriteEDCTrailer(&ecmBlock, imageEDC); err != nil {
		return nil, err
	}

	tocBlockOffset := uint64(ecmBlockPayloadStart) + uint64(ecmBlock.Len())

	var out bytes.Buffer
	if err := container.WriteOuterHeader(&out, container.OuterHeader{FileTOCPosition: tocBlockOffset}); err != nil {
		return nil, err
	}
	if err := container.WriteBlockHeader(&out, container.BlockHeader{
		Type:          container.BlockECM,
		Compression:   uint8(compressor.None),
		BlockSize:     uint64(ecmBlock.Len()),
		RealBlockSize: uint64(ecmBlock.Len()),
	}); err != nil {
		return nil, err
	}
	out.Write(ecmBlock.Bytes())

	// The TOC entry records the ECM block's *header* position, not its
	// payload: a decoder needs the header's BlockSize to know where the
	// compressed sector data ends, so it must read that header first.
	tocEntries := []container.TOCEntry{{Type: container.BlockECM, StartPosition: uint64(container.OuterHeaderSize)}}
	tocPayloadSize := uint64(len(tocEntries)) * container.TOCEntrySize
	if err := container.WriteBlockHeader(&out, container.BlockHeader{
		Type:          container.BlockTOC,
		Compression:   uint8(compressor.None),
		BlockSize:     tocPayloadSize,
		RealBlockSize: tocPayloadSize,
	}); err != nil {
		return nil, err
	}
	if err := container.WriteTOCBlock(&out, tocEntries); err != nil {
		return nil, err
	}

	n, err := dst.Write(out.Bytes())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFileWrite, err)
	}

	var sectorsTotal uint64
	for _, r := range runs {
		sectorsTotal += uint64(r.Count)
	}

	return &Report{SectorsTotal: sectorsTotal, BytesWritten: int64(n), ImageEDC: imageEDC}, nil
}

// encodeStream drains sectors described by runs from src (continuing the
// running sectorIndex across the whole image) through encoders newEncoder
// constructs, writing compressed output to sink and folding each raw
// sector into *imageEDC in order, so the accumulator carries forward
// correctly from one stream to the next. It returns the sync points
// recorded at every seekable-mode segment boundary within this stream,
// each one's SectorOffset counted from the start of the whole image and
// BytePosition relative to the start of sink's contents before this call.
func encodeStream(
	newEncoder func() (compressor.Coder, error),
	src io.ReaderAt,
	runs []stream.Run,
	sectorIndex *uint32,
	imageEDC *uint32,
	flags sector.Flags,
	sectorsPerBlock int,
	sink *bytes.Buffer,
) ([]container.SyncPoint, error) {
	total := 0
	for _, r := range runs {
		total += int(r.Count)
	}

	startIndex := *sectorIndex
	residues := make([][]byte, 0, total)
	raw := make([]byte, sector.SectorSize)
	pos := int64(*sectorIndex) * sector.SectorSize

	for _, r := range runs {
		for i := uint32(0); i < r.Count; i++ {
			if _, err := src.ReadAt(raw, pos); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrFileRead, err)
			}
			*imageEDC = sector.EDC(*imageEDC, raw)
			residue, err := sector.Clean(raw, r.Mode, flags)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrProcessing, err)
			}
			residues = append(residues, residue)
			pos += sector.SectorSize
			*sectorIndex++
		}
	}

	return drainEncoder(newEncoder, residues, sectorsPerBlock, sink, startIndex)
}

// outputChunkSize is the scratch size used to drain a compressor's output
// buffer; it is polled after every Process call and flushed to sink once a
// requested flush boundary has fully drained.
const outputChunkSize = 64 * 1024

// drainEncoder feeds residues one sector at a time through a Coder it
// obtains from newEncoder, requesting a sync point after every
// sectorsPerBlock-th sector (when non-zero) and an end-of-stream flush
// after the last one, appending every byte produced to sink. Every back
// end treats SyncPoint as a full close of the segment seen so far, so once
// one drains to StreamEnd this closes that Coder and asks newEncoder for a
// fresh one to carry the residues that follow: each segment becomes a
// complete, independently decodable unit, and its boundary is recorded as
// a container.SyncPoint.
func drainEncoder(
	newEncoder func() (compressor.Coder, error),
	residues [][]byte,
	sectorsPerBlock int,
	sink *bytes.Buffer,
	startSectorIndex uint32,
) ([]container.SyncPoint, error) {
	chunk := make([]byte, outputChunkSize)

	flushFor := func(i int) compressor.FlushMode {
		if i == len(residues)-1 {
			return compressor.EndStream
		}
		if sectorsPerBlock > 0 && (i+1)%sectorsPerBlock == 0 {
			return compressor.SyncPoint
		}
		return compressor.Continue
	}

	enc, err := newEncoder()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProcessing, err)
	}

	if len(residues) == 0 {
		enc.SetInput(nil)
		for {
			enc.SetOutput(chunk)
			status, err := enc.Process(compressor.EndStream)
			if err != nil {
				_ = enc.Close()
				return nil, fmt.Errorf("%w: %w", ErrProcessing, err)
			}
			sink.Write(chunk[:len(chunk)-enc.RemainingOutput()])
			if status == compressor.StreamEnd {
				if err := enc.Close(); err != nil {
					return nil, fmt.Errorf("%w: %w", ErrProcessing, err)
				}
				return nil, nil
			}
		}
	}

	var syncPoints []container.SyncPoint

	for i, residue := range residues {
		flush := flushFor(i)
		enc.SetInput(residue)
		for {
			boundary := enc.RemainingInput() == 0
			effective := compressor.Continue
			if boundary {
				effective = flush
			}
			enc.SetOutput(chunk)
			status, err := enc.Process(effective)
			if err != nil {
				_ = enc.Close()
				return nil, fmt.Errorf("%w: %w", ErrProcessing, err)
			}
			written := len(chunk) - enc.RemainingOutput()
			if written > 0 {
				sink.Write(chunk[:written])
			}
			if status == compressor.StreamEnd {
				if err := enc.Close(); err != nil {
					return nil, fmt.Errorf("%w: %w", ErrProcessing, err)
				}
				if flush == compressor.SyncPoint {
					syncPoints = append(syncPoints, container.SyncPoint{
						SectorOffset: uint64(startSectorIndex) + uint64(i) + 1,
						BytePosition: uint64(sink.Len()),
					})
					enc, err = newEncoder()
					if err != nil {
						return nil, fmt.Errorf("%w: %w", ErrProcessing, err)
					}
				}
				break
			}
			if boundary {
				break
			}
		}
	}
	return syncPoints, nil
}

// analyzeImage walks every sector of src once, classifying it, checking
// the lossless preconditions that can force an optimization bit off for
// the whole image, and segmenting the result into runs and streams.
func analyzeImage(
	src io.ReaderAt,
	totalSectors uint64,
	policy stream.Policy,
	progress ProgressFunc,
) (sector.Flags, []stream.Run, []stream.Stream, error) {
	flags := sector.Flags(allOptimizations)
	raw := make([]byte, sector.SectorSize)
	var index uint32

	next := func() (sector.Mode, bool) {
		if uint64(index) >= totalSectors {
			return 0, false
		}
		if _, err := src.ReadAt(raw, int64(index)*sector.SectorSize); err != nil {
			return sector.Unknown, false
		}
		mode := sector.Classify(raw)
		checkLosslessPreconditions(raw, mode, index, &flags)
		index++
		if progress != nil {
			progress("analyze", int64(index), int64(totalSectors))
		}
		return mode, true
	}

	runs, streams, _ := stream.Segment(next, policy)
	return flags, runs, streams, nil
}

// checkLosslessPreconditions clears bits in flags when stripping the
// corresponding field from this sector would not be losslessly
// reversible: an MSF stamp that disagrees with the sector's own index, or
// an XA sub-header whose two copies disagree with each other.
func checkLosslessPreconditions(raw []byte, mode sector.Mode, index uint32, flags *sector.Flags) {
	switch mode {
	case sector.Mode1, sector.Mode1Gap, sector.Mode2, sector.Mode2Gap,
		sector.Mode2Form1, sector.Mode2Form1Gap, sector.Mode2Form2, sector.Mode2Form2Gap:
		want := sector.ToMSF(index)
		if !bytes.Equal(raw[0x00C:0x00F], want[:]) {
			*flags &^= sector.RemoveMSF
		}
	}
	switch mode {
	case sector.Mode2Form1, sector.Mode2Form1Gap, sector.Mode2Form2, sector.Mode2Form2Gap:
		if !bytes.Equal(raw[0x010:0x014], raw[0x014:0x018]) {
			*flags &^= sector.RemoveRedundantFlag
		}
	}
}
