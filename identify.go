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
	"os"

	"github.com/dcarrasco/ecm2/container"
)

// Identify reads the first 4 bytes of the file at path and decides whether
// it is an ECM2 container (RoleDecode) or a raw image that should be
// encoded (RoleEncode). Only "ECM" followed by container.Version selects
// decode; "ECM" followed by any other version byte returns
// ErrNotAnECMFile, and any other magic (or a file shorter than 4 bytes) is
// treated as a raw source.
func Identify(path string) (Role, error) {
	f, err := os.Open(path) //nolint:gosec // path is caller-supplied by design
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrFileRead, err)
	}
	defer func() { _ = f.Close() }()

	var buf [4]byte
	n, err := f.Read(buf[:])
	if err != nil && n < len(buf) {
		// Fewer than 4 bytes means it can't possibly be an ECM2 file.
		return RoleEncode, nil
	}

	if buf[0] == container.Magic[0] && buf[1] == container.Magic[1] && buf[2] == container.Magic[2] {
		if buf[3] != container.Version {
			return 0, fmt.Errorf("%w: version byte %d", ErrNotAnECMFile, buf[3])
		}
		return RoleDecode, nil
	}
	return RoleEncode, nil
}
