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

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

// AddressDataLen is the width of the opaque identifier portion of an Address.
const AddressDataLen = 20

// Address identifies a contract: a 32-bit version tag selecting the guest
// ABI/VM family the address belongs to, plus a 20-byte opaque identifier.
// Two addresses are equal iff both fields are equal.
type Address struct {
	version uint32
	data    [AddressDataLen]byte
}

// NewAddress builds an Address from a version and a 20-byte identifier.
func NewAddress(version uint32, data [AddressDataLen]byte) Address {
	return Address{version: version, data: data}
}

// Version returns the VM-family tag. It is observable to guest code and is
// the key used by VMManager to select a hypervisor factory.
func (a Address) Version() uint32 { return a.version }

// Data returns the 20-byte opaque identifier.
func (a Address) Data() [AddressDataLen]byte { return a.data }

// Equal reports whether two addresses are identical in both fields.
func (a Address) Equal(o Address) bool {
	return a.version == o.version && a.data == o.data
}

// Bytes returns the little-endian version (4 bytes) followed by the 20-byte
// identifier, matching the storage key layout used for token-transfer
// records.
func (a Address) Bytes() []byte {
	out := make([]byte, 4+AddressDataLen)
	binary.LittleEndian.PutUint32(out[:4], a.version)
	copy(out[4:], a.data[:])
	return out
}

func (a Address) String() string {
	return fmt.Sprintf("v%d:%s", a.version, hex.EncodeToString(a.data[:]))
}
