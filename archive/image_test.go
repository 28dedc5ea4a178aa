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

package archive_test

import (
	"testing"

	"github.com/dcarrasco/ecm2/archive"
)

func TestIsImageFile(t *testing.T) {
	t.Parallel()

	cases := map[string]bool{
		"game.bin":     true,
		"GAME.BIN":     true,
		"game.img":     true,
		"game.iso":     true,
		"readme.txt":   false,
		"cover.jpg":    false,
		"game.cue":     false,
		"no-extension": false,
	}
	for name, want := range cases {
		if got := archive.IsImageFile(name); got != want {
			t.Errorf("IsImageFile(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestDetectImageFile_FindsImage(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	zipPath := createTestZIP(t, tmpDir, "test.zip", map[string][]byte{
		"readme.txt": []byte("not a disc image"),
		"game.bin":   make([]byte, 2352*4),
	})

	arc, err := archive.Open(zipPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = arc.Close() }()

	member, err := archive.DetectImageFile(arc)
	if err != nil {
		t.Fatalf("DetectImageFile: %v", err)
	}
	if member != "game.bin" {
		t.Errorf("DetectImageFile() = %q, want %q", member, "game.bin")
	}
}

func TestDetectImageFile_RejectsMisalignedSize(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	zipPath := createTestZIP(t, tmpDir, "test.zip", map[string][]byte{
		"game.bin": make([]byte, 100), // not a multiple of 2352
	})

	arc, err := archive.Open(zipPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = arc.Close() }()

	if _, err := archive.DetectImageFile(arc); err == nil {
		t.Fatal("expected an error for a .bin member that isn't sector-aligned")
	}
}

func TestDetectImageFile_NoImages(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	zipPath := createTestZIP(t, tmpDir, "test.zip", map[string][]byte{
		"readme.txt": []byte("nothing here"),
	})

	arc, err := archive.Open(zipPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = arc.Close() }()

	if _, err := archive.DetectImageFile(arc); err == nil {
		t.Fatal("expected NoImageFilesError")
	}
}
