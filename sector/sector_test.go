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

package sector

import (
	"bytes"
	"testing"
)

// buildMode1 returns a well-formed mode-1 sector for the given absolute
// sector index, with correct MSF, EDC and ECC.
func buildMode1(t *testing.T, index uint32, userData []byte) []byte {
	t.Helper()
	s := make([]byte, SectorSize)
	copy(s[0:12], syncPattern[:])
	msf := ToMSF(index)
	copy(s[12:15], msf[:])
	s[0x00F] = 0x01
	copy(s[0x010:0x810], userData)
	edc := EDC(0, s[0x000:0x810])
	putLE32(s[0x810:0x814], edc)
	ECCWritePQ(s[0x00C:0x010], s[0x010:0x81C], s[0x81C:0x930])
	return s
}

func buildForm1(t *testing.T, index uint32, subHeader [4]byte, userData []byte) []byte {
	t.Helper()
	s := make([]byte, SectorSize)
	copy(s[0:12], syncPattern[:])
	msf := ToMSF(index)
	copy(s[12:15], msf[:])
	s[0x00F] = 0x02
	copy(s[0x010:0x014], subHeader[:])
	copy(s[0x014:0x018], subHeader[:])
	copy(s[0x018:0x818], userData)
	edc := EDC(0, s[0x010:0x818])
	putLE32(s[0x818:0x81C], edc)
	ECCWritePQ(zeroAddress[:], s[0x010:0x81C], s[0x81C:0x930])
	return s
}

func buildForm2(t *testing.T, index uint32, subHeader [4]byte, userData []byte) []byte {
	t.Helper()
	s := make([]byte, SectorSize)
	copy(s[0:12], syncPattern[:])
	msf := ToMSF(index)
	copy(s[12:15], msf[:])
	s[0x00F] = 0x02
	copy(s[0x010:0x014], subHeader[:])
	copy(s[0x014:0x018], subHeader[:])
	copy(s[0x018:0x92C], userData)
	edc := EDC(0, s[0x010:0x92C])
	putLE32(s[0x92C:0x930], edc)
	return s
}

func fillPattern(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i * 37)
	}
	return b
}

func TestClassify(t *testing.T) {
	t.Parallel()

	t.Run("CDDA silence", func(t *testing.T) {
		t.Parallel()
		s := make([]byte, SectorSize)
		if got := Classify(s); got != CDDAGap {
			t.Fatalf("got %v, want CDDA_GAP", got)
		}
	})

	t.Run("CDDA audio", func(t *testing.T) {
		t.Parallel()
		s := fillPattern(SectorSize)
		if got := Classify(s); got != CDDA {
			t.Fatalf("got %v, want CDDA", got)
		}
	})

	t.Run("MODE1", func(t *testing.T) {
		t.Parallel()
		s := buildMode1(t, 0, fillPattern(0x800))
		if got := Classify(s); got != Mode1 {
			t.Fatalf("got %v, want MODE1", got)
		}
	})

	t.Run("MODE1_GAP", func(t *testing.T) {
		t.Parallel()
		s := buildMode1(t, 0, make([]byte, 0x800))
		if got := Classify(s); got != Mode1Gap {
			t.Fatalf("got %v, want MODE1_GAP", got)
		}
	})

	t.Run("MODE2_FORM1", func(t *testing.T) {
		t.Parallel()
		s := buildForm1(t, 16, [4]byte{0x00, 0x00, 0x08, 0x00}, fillPattern(0x800))
		if got := Classify(s); got != Mode2Form1 {
			t.Fatalf("got %v, want MODE2_FORM1", got)
		}
	})

	t.Run("MODE2_FORM2", func(t *testing.T) {
		t.Parallel()
		s := buildForm2(t, 16, [4]byte{0x00, 0x00, 0x28, 0x00}, fillPattern(0x914))
		if got := Classify(s); got != Mode2Form2 {
			t.Fatalf("got %v, want MODE2_FORM2", got)
		}
	})
}

// allFlags is the full REMOVE_* bitset.
const allFlags = RemoveSync | RemoveMSF | RemoveMode | RemoveBlanks |
	RemoveRedundantFlag | RemoveECC | RemoveEDC | RemoveGap

func TestCleanRegenerateRoundTrip(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		index uint32
		build func(t *testing.T) []byte
	}{
		{"mode1", 0, func(t *testing.T) []byte { return buildMode1(t, 0, fillPattern(0x800)) }},
		{"mode1 gap", 5, func(t *testing.T) []byte { return buildMode1(t, 5, make([]byte, 0x800)) }},
		{"form1", 20, func(t *testing.T) []byte {
			return buildForm1(t, 20, [4]byte{1, 2, 3, 4}, fillPattern(0x800))
		}},
		{"form2", 30, func(t *testing.T) []byte {
			return buildForm2(t, 30, [4]byte{5, 6, 7, 8}, fillPattern(0x914))
		}},
		{"cdda", 40, func(t *testing.T) []byte { return fillPattern(SectorSize) }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			original := tc.build(t)
			mode := Classify(original)
			if mode == Unknown {
				t.Fatalf("test sector failed to classify")
			}

			for _, flags := range []Flags{0, allFlags, RemoveSync | RemoveGap} {
				residue, err := Clean(original, mode, flags)
				if err != nil {
					t.Fatalf("Clean(flags=%#x): %v", flags, err)
				}
				if len(residue) != StrippedSize(mode, flags) {
					t.Fatalf("residue length %d != StrippedSize %d", len(residue), StrippedSize(mode, flags))
				}
				regenerated, err := Regenerate(residue, mode, tc.index, flags)
				if err != nil {
					t.Fatalf("Regenerate(flags=%#x): %v", flags, err)
				}
				if !bytes.Equal(regenerated, original) {
					t.Fatalf("round-trip mismatch with flags=%#x", flags)
				}
			}
		})
	}
}

func TestRegenerateUnknownMode(t *testing.T) {
	t.Parallel()

	if _, err := Clean(make([]byte, SectorSize), Unknown, 0); err == nil {
		t.Fatal("expected error cleaning Unknown mode")
	}
	if _, err := Regenerate(nil, Unknown, 0, 0); err == nil {
		t.Fatal("expected error regenerating Unknown mode")
	}
}

func TestMSFFirstSector(t *testing.T) {
	t.Parallel()

	msf := ToMSF(0)
	if msf != [3]byte{0x00, 0x02, 0x00} {
		t.Fatalf("got %02x:%02x:%02x, want 00:02:00", msf[0], msf[1], msf[2])
	}
}
