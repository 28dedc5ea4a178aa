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

// Package ecm2 drives the full encode and decode pipelines over the
// sector, stream, compressor, and container packages, and exposes the
// 4-byte magic auto-detection the CLI uses to pick a direction.
package ecm2

import "errors"

var (
	// ErrFileRead indicates a failure reading from the source.
	ErrFileRead = errors.New("ecm2: file read error")
	// ErrFileWrite indicates a failure writing to the destination.
	ErrFileWrite = errors.New("ecm2: file write error")
	// ErrHeaderCompression indicates a mini-TOC failed to inflate or deflate.
	ErrHeaderCompression = errors.New("ecm2: header compression error")
	// ErrBufferMemory indicates a compressor buffer could not be allocated
	// or grown to the size a stream required.
	ErrBufferMemory = errors.New("ecm2: buffer allocation error")
	// ErrProcessing indicates a compressor back end failed mid-stream.
	ErrProcessing = errors.New("ecm2: processing error")
	// ErrCorruptedStream indicates the Sectors-TOC and Streams-TOC
	// disagree about where a stream's sectors end.
	ErrCorruptedStream = errors.New("ecm2: corrupted stream tables")
	// ErrCorruptedHeader indicates a container header or sub-header
	// failed a structural check.
	ErrCorruptedHeader = errors.New("ecm2: corrupted container header")
	// ErrEDCMismatch indicates the decoded image's whole-image EDC does
	// not match the trailer recorded at encode time.
	ErrEDCMismatch = errors.New("ecm2: whole-image EDC mismatch")
	// ErrInvalidSize indicates the source size is not a positive multiple
	// of the raw sector size.
	ErrInvalidSize = errors.New("ecm2: source size is not a multiple of 2352")
	// ErrNotAnECMFile indicates Identify found the "ECM" magic followed by
	// a version byte this package's container format doesn't use.
	ErrNotAnECMFile = errors.New("ecm2: not an ECM2 file")
	// ErrNotSyncBoundary indicates DecodeFrom was asked to resume at a
	// sector that isn't a recorded seekable-mode sync point or a stream's
	// own start.
	ErrNotSyncBoundary = errors.New("ecm2: sector is not a sync-point boundary")
)
