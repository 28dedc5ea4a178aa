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

package compressor

// noneCoder is the NONE back end: a byte copy, shared by encode and decode.
type noneCoder struct {
	in  []byte
	out []byte
}

func newNoneCoder() *noneCoder { return &noneCoder{} }

func (c *noneCoder) SetInput(buf []byte)  { c.in = buf }
func (c *noneCoder) SetOutput(buf []byte) { c.out = buf }

func (c *noneCoder) Process(flush FlushMode) (Status, error) {
	n := min(len(c.in), len(c.out))
	copy(c.out[:n], c.in[:n])
	c.in = c.in[n:]
	c.out = c.out[n:]
	if (flush == EndStream || flush == SyncPoint) && len(c.in) == 0 {
		return StreamEnd, nil
	}
	return OK, nil
}

func (c *noneCoder) RemainingInput() int  { return len(c.in) }
func (c *noneCoder) RemainingOutput() int { return len(c.out) }
func (c *noneCoder) Close() error         { return nil }
