// Copyright 2024 The Neutron Authors
// This file is part of the neutron-host library.
//
// The neutron-host library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The neutron-host library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the neutron-host library. If not, see <http://www.gnu.org/licenses/>.

package common

import "encoding/binary"

// headerSizeMask isolates bits 7:6 of the first header byte, which select
// the header width. The fourth combination (11) is reserved and currently
// unimplemented. It is an unrecoverable fault rather than a recoverable
// NotImplemented, since a forward-compatibility slot that silently
// "succeeds" with garbage data is worse than a hard stop.
const (
	headerSizeMask     byte = 0b1100_0000
	headerSizeSelect1  byte = 0b0000_0000
	headerSizeSelect2  byte = 0b0100_0000
	headerSizeSelect4  byte = 0b1000_0000
	headerSizeReserved byte = 0b1100_0000
)

// HeaderToU32 parses the 1/2/4-byte length-self-describing header found at
// the start of an ABI-typed map value. Bits 7:6 of the first byte select the
// header width: 00=1 byte, 01=2 bytes, 10=4 bytes, 11=reserved. It returns
// the header width in bytes and the little-endian u32 assembled from
// exactly that many header bytes, zero-padded in the high bytes — matching
// the wire convention byte-for-byte, selector bits included, so re-encoding
// with HeaderFromU32 reproduces the same header bytes.
func HeaderToU32(b []byte) (size int, value uint32, err *Error) {
	if len(b) == 0 {
		return 0, 0, ErrInvalidCoMapAccess
	}
	switch b[0] & headerSizeMask {
	case headerSizeSelect1:
		return 1, uint32(b[0]), nil
	case headerSizeSelect2:
		if len(b) < 2 {
			return 0, 0, ErrInvalidCoMapAccess
		}
		return 2, uint32(binary.LittleEndian.Uint16(b[:2])), nil
	case headerSizeSelect4:
		if len(b) < 4 {
			return 0, 0, ErrInvalidCoMapAccess
		}
		return 4, binary.LittleEndian.Uint32(b[:4]), nil
	default: // headerSizeReserved
		return 0, 0, ErrNotImplemented
	}
}

// HeaderFromU32 is HeaderToU32's inverse: it takes the little-endian u32 a
// prior HeaderToU32 call (or an equivalently selector-tagged value)
// produced, reads the header width back out of the selector bits already
// present in its low byte, and returns exactly that many little-endian
// bytes. The caller is responsible for the value's low byte already
// carrying the selector bits for the width it wants; this function does
// not choose a width on the caller's behalf.
func HeaderFromU32(value uint32) (size int, out []byte, err *Error) {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, value)
	switch b[0] & headerSizeMask {
	case headerSizeSelect1:
		return 1, b[:1], nil
	case headerSizeSelect2:
		return 2, b[:2], nil
	case headerSizeSelect4:
		return 4, b[:4], nil
	default: // headerSizeReserved
		return 0, nil, ErrNotImplemented
	}
}
