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
	"io"

	"github.com/dcarrasco/ecm2/chd"
)

// OpenLegacyCHD opens a MAME CHD CD image at path and re-serves it as a
// flat io.ReaderAt of raw 2352-byte sectors, so an existing CHD can be fed
// straight into an encode pass as if it were a bare .bin: "ecm2 can
// re-wrap a .chd into an .ecm2". The returned size is the image's raw
// size, not the CHD's 2048-byte logical-sector accounting.
func OpenLegacyCHD(path string) (io.ReaderAt, int64, io.Closer, error) {
	image, err := chd.Open(path)
	if err != nil {
		return nil, 0, nil, err
	}
	return image.RawSectorReader(), image.RawSize(), image, nil
}
