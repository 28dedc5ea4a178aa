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

package archive

import (
	"fmt"
	"path/filepath"
	"strings"
)

// rawSectorSize is the 2352-byte CD-ROM sector stride a member's size must
// be a multiple of to be considered a disc image rather than incidental
// archive clutter (a cue sheet, a log, box art).
const rawSectorSize = 2352

// imageExtensions are file extensions that indicate a raw CD-ROM image.
var imageExtensions = map[string]bool{
	".bin": true,
	".img": true,
	".iso": true,
}

// IsImageFile reports whether filename has a recognized raw disc image
// extension.
func IsImageFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return imageExtensions[ext]
}

// DetectImageFile finds the first disc image in an archive: the first
// member with a recognized image extension whose size is also an exact
// multiple of the raw sector size, so a stray same-named text file can't
// be picked by extension alone.
func DetectImageFile(arc Archive) (string, error) {
	files, err := arc.List()
	if err != nil {
		return "", fmt.Errorf("list archive files: %w", err)
	}

	for _, file := range files {
		if IsImageFile(file.Name) && file.Size > 0 && file.Size%rawSectorSize == 0 {
			return file.Name, nil
		}
	}

	return "", NoImageFilesError{Archive: "archive"}
}
