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

import "errors"

var (
	// ErrBadMagic means the outer header's first 3 bytes weren't "ECM".
	ErrBadMagic = errors.New("container: bad magic")
	// ErrUnsupportedVersion means the header named a version other than 3.
	ErrUnsupportedVersion = errors.New("container: unsupported version")
	// ErrCorruptedHeader means a block or sub-header failed a structural check.
	ErrCorruptedHeader = errors.New("container: corrupted header")
	// ErrUnknownBlockType means a TOC or block header named a type this
	// package doesn't recognize.
	ErrUnknownBlockType = errors.New("container: unknown block type")
)
