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

package container

import (
	stdbinary "encoding/binary"
	"fmt"
	"io"

	"github.com/dcarrasco/ecm2/compressor"
	"github.com/dcarrasco/ecm2/stream"
)

// MiniTOCHeaderSize is the packed size, in bytes, of one mini-TOC's framing.
const MiniTOCHeaderSize = 13

// miniTOCLevel is the zlib compression level the write pass always uses for
// the streams-TOC, sectors-TOC and sync-TOC mini-blocks.
const miniTOCLevel = 9

// MiniTOCHeader frames one of the three compressed record tables carried
// inside the ECM block: how many fixed-size records it unpacks to, and
// how large it is compressed and uncompressed.
type MiniTOCHeader struct {
	Compression      compressor.Kind
	Count            uint32
	UncompressedSize uint32
	CompressedSize   uint32
}

// WriteMiniTOCHeader writes h to w.
func WriteMiniTOCHeader(w io.Writer, h MiniTOCHeader) error {
	buf := make([]byte, MiniTOCHeaderSize)
	buf[0] = uint8(h.Compression)
	stdbinary.LittleEndian.PutUint32(buf[1:5], h.Count)
	stdbinary.LittleEndian.PutUint32(buf[5:9], h.UncompressedSize)
	stdbinary.LittleEndian.PutUint32(buf[9:13], h.CompressedSize)
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("%w: mini-toc header: %w", ErrCorruptedHeader, err)
	}
	return nil
}

// ReadMiniTOCHeader reads one mini-TOC header from r.
func ReadMiniTOCHeader(r io.Reader) (MiniTOCHeader, error) {
	buf := make([]byte, MiniTOCHeaderSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return MiniTOCHeader{}, fmt.Errorf("%w: %w", ErrCorruptedHeader, err)
	}
	return MiniTOCHeader{
		Compression:      compressor.Kind(buf[0]),
		Count:            stdbinary.LittleEndian.Uint32(buf[1:5]),
		UncompressedSize: stdbinary.LittleEndian.Uint32(buf[5:9]),
		CompressedSize:   stdbinary.LittleEndian.Uint32(buf[9:13]),
	}, nil
}

// deflate runs the compressor façade's kind encoder over data to
// completion and returns the compressed bytes. It is used for the three
// mini-TOCs, which are small enough to hold entirely in memory on both
// sides of the call.
func deflate(kind compressor.Kind, level int, data []byte) ([]byte, error) {
	enc, err := compressor.NewEncoder(kind, compressor.EncoderOptions{Level: level})
	if err != nil {
		return nil, err
	}
	defer enc.Close()

	var out []byte
	chunk := make([]byte, 32*1024)
	in := data
	for {
		enc.SetInput(in)
		enc.SetOutput(chunk)
		status, err := enc.Process(compressor.EndStream)
		if err != nil {
			return nil, err
		}
		written := len(chunk) - enc.RemainingOutput()
		out = append(out, chunk[:written]...)
		in = in[len(in)-enc.RemainingInput():]
		if status == compressor.StreamEnd {
			return out, nil
		}
	}
}

// inflate is the inverse of deflate: it drives kind's decoder over
// compressed until uncompressedSize bytes have been produced.
func inflate(kind compressor.Kind, compressed []byte, uncompressedSize uint32) ([]byte, error) {
	dec, err := compressor.NewDecoder(kind)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	out := make([]byte, 0, uncompressedSize)
	chunk := make([]byte, 32*1024)
	in := compressed
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
			return out, nil
		}
		if written == 0 && len(in) == 0 {
			return nil, fmt.Errorf("%w: mini-toc decoder stalled", ErrCorruptedHeader)
		}
	}
}

// EncodeStreamsTOC packs streams into STREAM records and zlib-compresses
// them, returning the compressed payload and its framing header.
func EncodeStreamsTOC(streams []stream.Stream) ([]byte, MiniTOCHeader, error) {
	raw := make([]byte, 0, len(streams)*StreamRecordSize)
	for _, s := range streams {
		raw = append(raw, PackStreamRecord(s)...)
	}
	compressed, err := deflate(compressor.Zlib, miniTOCLevel, raw)
	if err != nil {
		return nil, MiniTOCHeader{}, fmt.Errorf("streams-toc: %w", err)
	}
	return compressed, MiniTOCHeader{
		Compression:      compressor.Zlib,
		Count:            uint32(len(streams)),
		UncompressedSize: uint32(len(raw)),
		CompressedSize:   uint32(len(compressed)),
	}, nil
}

// DecodeStreamsTOC is the inverse of EncodeStreamsTOC.
func DecodeStreamsTOC(hdr MiniTOCHeader, compressed []byte) ([]stream.Stream, error) {
	raw, err := inflate(hdr.Compression, compressed, hdr.UncompressedSize)
	if err != nil {
		return nil, fmt.Errorf("streams-toc: %w", err)
	}
	if uint32(len(raw)) != hdr.Count*StreamRecordSize {
		return nil, fmt.Errorf("%w: streams-toc size mismatch", ErrCorruptedHeader)
	}
	streams := make([]stream.Stream, hdr.Count)
	for i := range streams {
		s, err := UnpackStreamRecord(raw[i*StreamRecordSize:])
		if err != nil {
			return nil, err
		}
		streams[i] = s
	}
	return streams, nil
}

// EncodeSectorsTOC packs runs into SECTOR records and zlib-compresses them.
func EncodeSectorsTOC(runs []stream.Run) ([]byte, MiniTOCHeader, error) {
	raw := make([]byte, 0, len(runs)*SectorRecordSize)
	for _, r := range runs {
		raw = append(raw, PackSectorRecord(r)...)
	}
	compressed, err := deflate(compressor.Zlib, miniTOCLevel, raw)
	if err != nil {
		return nil, MiniTOCHeader{}, fmt.Errorf("sectors-toc: %w", err)
	}
	return compressed, MiniTOCHeader{
		Compression:      compressor.Zlib,
		Count:            uint32(len(runs)),
		UncompressedSize: uint32(len(raw)),
		CompressedSize:   uint32(len(compressed)),
	}, nil
}

// DecodeSectorsTOC is the inverse of EncodeSectorsTOC.
func DecodeSectorsTOC(hdr MiniTOCHeader, compressed []byte) ([]stream.Run, error) {
	raw, err := inflate(hdr.Compression, compressed, hdr.UncompressedSize)
	if err != nil {
		return nil, fmt.Errorf("sectors-toc: %w", err)
	}
	if uint32(len(raw)) != hdr.Count*SectorRecordSize {
		return nil, fmt.Errorf("%w: sectors-toc size mismatch", ErrCorruptedHeader)
	}
	runs := make([]stream.Run, hdr.Count)
	for i := range runs {
		r, err := UnpackSectorRecord(raw[i*SectorRecordSize:])
		if err != nil {
			return nil, err
		}
		runs[i] = r
	}
	return runs, nil
}

// EncodeSyncTOC packs points into SYNC records and zlib-compresses them,
// the third mini-TOC alongside the streams-TOC and sectors-TOC. An empty
// points slice still produces a valid, zero-record mini-TOC: nothing in
// the image was encoded with a seekable stride.
func EncodeSyncTOC(points []SyncPoint) ([]byte, MiniTOCHeader, error) {
	raw := make([]byte, 0, len(points)*SyncRecordSize)
	for _, p := range points {
		raw = append(raw, PackSyncRecord(p)...)
	}
	compressed, err := deflate(compressor.Zlib, miniTOCLevel, raw)
	if err != nil {
		return nil, MiniTOCHeader{}, fmt.Errorf("sync-toc: %w", err)
	}
	return compressed, MiniTOCHeader{
		Compression:      compressor.Zlib,
		Count:            uint32(len(points)),
		UncompressedSize: uint32(len(raw)),
		CompressedSize:   uint32(len(compressed)),
	}, nil
}

// DecodeSyncTOC is the inverse of EncodeSyncTOC.
func DecodeSyncTOC(hdr MiniTOCHeader, compressed []byte) ([]SyncPoint, error) {
	raw, err := inflate(hdr.Compression, compressed, hdr.UncompressedSize)
	if err != nil {
		return nil, fmt.Errorf("sync-toc: %w", err)
	}
	if uint32(len(raw)) != hdr.Count*SyncRecordSize {
		return nil, fmt.Errorf("%w: sync-toc size mismatch", ErrCorruptedHeader)
	}
	points := make([]SyncPoint, hdr.Count)
	for i := range points {
		p, err := UnpackSyncRecord(raw[i*SyncRecordSize:])
		if err != nil {
			return nil, err
		}
		points[i] = p
	}
	return points, nil
}
