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
	"os"
	"path/filepath"
	"testing"

	"github.com/dcarrasco/ecm2/compressor"
	"github.com/dcarrasco/ecm2/sector"
)

// buildCDDA returns a non-zero, non-sync-matching audio sector: Classify
// falls through to CDDA for anything that doesn't start with the sync
// pattern and isn't all zero.
func buildCDDA(fill byte) []byte {
	s := make([]byte, sector.SectorSize)
	for i := range s {
		s[i] = fill + byte(i)
	}
	return s
}

// buildMode1 returns a well-formed mode-1 sector for the given absolute
// sector index, with correct MSF, EDC and ECC, so Classify, Clean and
// Regenerate round-trip it under every optimization flag.
func buildMode1(t *testing.T, index uint32, fill byte) []byte {
	t.Helper()
	s := make([]byte, sector.SectorSize)
	copy(s[0:12], []byte{0x00, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x00})
	msf := sector.ToMSF(index)
	copy(s[0x00C:0x00F], msf[:])
	s[0x00F] = 0x01
	for i := 0x010; i < 0x810; i++ {
		s[i] = fill + byte(i)
	}
	edc := sector.EDC(0, s[0x000:0x810])
	s[0x810] = byte(edc)
	s[0x811] = byte(edc >> 8)
	s[0x812] = byte(edc >> 16)
	s[0x813] = byte(edc >> 24)
	sector.ECCWritePQ(s[0x00C:0x010], s[0x010:0x81C], s[0x81C:0x930])
	return s
}

func TestEncodeDecodeRoundTripAudio(t *testing.T) {
	t.Parallel()

	var raw bytes.Buffer
	for i := 0; i < 6; i++ {
		raw.Write(buildCDDA(byte(0x10 * i)))
	}
	src := bytes.NewReader(raw.Bytes())

	opts := EncodeOptions{
		AudioCompression: compressor.None,
		DataCompression:  compressor.None,
		Level:            0,
		Title:            "test image",
		ID:               "abc123",
	}

	var container bytes.Buffer
	encReport, err := Encode(src, int64(raw.Len()), &container, opts)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if encReport.SectorsTotal != 6 {
		t.Fatalf("SectorsTotal = %d, want 6", encReport.SectorsTotal)
	}

	var out bytes.Buffer
	decSrc := bytes.NewReader(container.Bytes())
	decReport, err := Decode(decSrc, &out, DecodeOptions{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if !bytes.Equal(out.Bytes(), raw.Bytes()) {
		t.Fatalf("round trip mismatch: got %d bytes, want %d bytes", out.Len(), raw.Len())
	}
	if decReport.ImageEDC != encReport.ImageEDC {
		t.Fatalf("ImageEDC mismatch: decode %d, encode %d", decReport.ImageEDC, encReport.ImageEDC)
	}
}

func TestEncodeDecodeRoundTripMixedFamilies(t *testing.T) {
	t.Parallel()

	var raw bytes.Buffer
	raw.Write(buildCDDA(0x20))
	raw.Write(buildCDDA(0x21))
	raw.Write(buildMode1(t, 2, 0x30))
	raw.Write(buildMode1(t, 3, 0x31))
	raw.Write(buildCDDA(0x22))

	src := bytes.NewReader(raw.Bytes())
	opts := EncodeOptions{
		AudioCompression: compressor.None,
		DataCompression:  compressor.None,
	}

	var containerBuf bytes.Buffer
	encReport, err := Encode(src, int64(raw.Len()), &containerBuf, opts)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	var out bytes.Buffer
	_, err = Decode(bytes.NewReader(containerBuf.Bytes()), &out, DecodeOptions{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if !bytes.Equal(out.Bytes(), raw.Bytes()) {
		t.Fatalf("round trip mismatch across CDDA/MODE1 boundary")
	}
	if encReport.SectorsTotal != 5 {
		t.Fatalf("SectorsTotal = %d, want 5", encReport.SectorsTotal)
	}
}

func TestSeekableDecodeFromBoundaries(t *testing.T) {
	t.Parallel()

	const sectors = 200
	const stride = 50

	var raw bytes.Buffer
	for i := 0; i < sectors; i++ {
		raw.Write(buildCDDA(byte(i)))
	}
	src := bytes.NewReader(raw.Bytes())

	opts := EncodeOptions{
		AudioCompression: compressor.Zlib,
		DataCompression:  compressor.Zlib,
		Level:            6,
		SectorsPerBlock:  stride,
	}

	var container bytes.Buffer
	if _, err := Encode(src, int64(raw.Len()), &container, opts); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	for start := 0; start < sectors; start += stride {
		var out bytes.Buffer
		decSrc := bytes.NewReader(container.Bytes())
		report, err := DecodeFrom(decSrc, &out, uint32(start), DecodeOptions{})
		if err != nil {
			t.Fatalf("DecodeFrom(%d): %v", start, err)
		}

		want := raw.Bytes()[start*sector.SectorSize:]
		if !bytes.Equal(out.Bytes(), want) {
			t.Fatalf("DecodeFrom(%d): suffix mismatch, got %d bytes, want %d", start, out.Len(), len(want))
		}
		if report.SectorsTotal != uint64(sectors-start) {
			t.Fatalf("DecodeFrom(%d): SectorsTotal = %d, want %d", start, report.SectorsTotal, sectors-start)
		}
	}
}

func TestDecodeFromRejectsNonBoundary(t *testing.T) {
	t.Parallel()

	const sectors = 100
	var raw bytes.Buffer
	for i := 0; i < sectors; i++ {
		raw.Write(buildCDDA(byte(i)))
	}
	src := bytes.NewReader(raw.Bytes())

	opts := EncodeOptions{
		AudioCompression: compressor.Zlib,
		DataCompression:  compressor.Zlib,
		SectorsPerBlock:  50,
	}
	var container bytes.Buffer
	if _, err := Encode(src, int64(raw.Len()), &container, opts); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	var out bytes.Buffer
	_, err := DecodeFrom(bytes.NewReader(container.Bytes()), &out, 17, DecodeOptions{})
	if err == nil {
		t.Fatal("expected an error resuming at a sector that isn't a recorded sync point")
	}
}

func TestDecodeFromWithoutSeekableMode(t *testing.T) {
	t.Parallel()

	var raw bytes.Buffer
	raw.Write(buildCDDA(0x50))
	raw.Write(buildCDDA(0x51))
	src := bytes.NewReader(raw.Bytes())

	opts := EncodeOptions{AudioCompression: compressor.None, DataCompression: compressor.None}
	var container bytes.Buffer
	if _, err := Encode(src, int64(raw.Len()), &container, opts); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	var out bytes.Buffer
	report, err := DecodeFrom(bytes.NewReader(container.Bytes()), &out, 0, DecodeOptions{})
	if err != nil {
		t.Fatalf("DecodeFrom(0): %v", err)
	}
	if !bytes.Equal(out.Bytes(), raw.Bytes()) {
		t.Fatal("DecodeFrom(0) on a non-seekable stream should still reproduce the whole image")
	}
	if report.SectorsTotal != 2 {
		t.Fatalf("SectorsTotal = %d, want 2", report.SectorsTotal)
	}
}

func TestEncodeRejectsBadSize(t *testing.T) {
	t.Parallel()

	src := bytes.NewReader(make([]byte, 100))
	_, err := Encode(src, 100, &bytes.Buffer{}, EncodeOptions{})
	if err == nil {
		t.Fatal("expected an error for a size that isn't a multiple of 2352")
	}
}

func TestIdentify(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	rawPath := filepath.Join(dir, "raw.bin")
	if err := os.WriteFile(rawPath, buildCDDA(0x40), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	role, err := Identify(rawPath)
	if err != nil {
		t.Fatalf("Identify(raw): %v", err)
	}
	if role != RoleEncode {
		t.Fatalf("Identify(raw) = %v, want RoleEncode", role)
	}

	var raw bytes.Buffer
	raw.Write(buildCDDA(0x41))
	src := bytes.NewReader(raw.Bytes())
	var containerBuf bytes.Buffer
	if _, err := Encode(src, int64(raw.Len()), &containerBuf, EncodeOptions{
		AudioCompression: compressor.None,
		DataCompression:  compressor.None,
	}); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	ecmPath := filepath.Join(dir, "image.ecm2")
	if err := os.WriteFile(ecmPath, containerBuf.Bytes(), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	role, err = Identify(ecmPath)
	if err != nil {
		t.Fatalf("Identify(ecm): %v", err)
	}
	if role != RoleDecode {
		t.Fatalf("Identify(ecm) = %v, want RoleDecode", role)
	}
}
