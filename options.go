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

import "github.com/dcarrasco/ecm2/compressor"

// Role is what Identify determined about a path: whether it should be
// handed to Encode or Decode.
type Role uint8

const (
	RoleEncode Role = iota
	RoleDecode
)

// String returns the lowercase CLI name of r.
func (r Role) String() string {
	if r == RoleDecode {
		return "decode"
	}
	return "encode"
}

// ProgressFunc is an optional callback Encode, Decode and DecodeFrom invoke
// as work completes: after each sector of the analyze pass, after each run
// of the encode pass and of Decode, and after each segment of DecodeFrom.
// phase is "analyze", "encode", or "decode".
type ProgressFunc func(phase string, sectorsDone, sectorsTotal int64)

// EncodeOptions configures one Encode call.
type EncodeOptions struct {
	// AudioCompression and DataCompression select the back end used for
	// audio-family and data-family streams respectively.
	AudioCompression compressor.Kind
	DataCompression  compressor.Kind
	// Level is the 0-9 compression effort passed to the chosen back ends.
	Level int
	// Extreme is handed to the lzma and flac back ends, which do not change
	// their output for it: no LZMA extreme preset or slower FLAC mode is
	// applied.
	Extreme bool
	// SectorsPerBlock, when non-zero, requests a sync point every N
	// sectors so a decoder can resume mid-stream; 0 disables it.
	SectorsPerBlock int
	// Title and ID are stored verbatim in the ECM sub-header.
	Title string
	ID    string
	// Progress, if set, is called as ProgressFunc describes.
	Progress ProgressFunc
}

// DecodeOptions configures one Decode call.
type DecodeOptions struct {
	// Progress, if set, is called as ProgressFunc describes.
	Progress ProgressFunc
}

// Report summarizes a completed Encode or Decode call.
type Report struct {
	// SectorsTotal is the number of 2352-byte sectors processed.
	SectorsTotal uint64
	// BytesWritten is the number of bytes written to the destination.
	BytesWritten int64
	// ImageEDC is the whole-image EDC accumulated over every raw sector,
	// in encode order: the value written to (Encode) or verified against
	// (Decode) the container's trailing EDC.
	ImageEDC uint32
}
