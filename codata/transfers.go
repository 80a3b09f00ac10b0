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

package codata

import (
	"encoding/binary"

	"github.com/earlgreytech/neutron-host/common"
)

// inFlightTransferKey builds the reserved-prefix key used while a
// transfer is still in-flight within this execution chain:
// [0x00 | owner.version_LE4 | owner.data[20] | 0x5F | id_LE8].
func inFlightTransferKey(owner common.Address, id uint64) []byte {
	key := make([]byte, 0, 1+4+common.AddressDataLen+1+8)
	key = append(key, 0x00)
	key = append(key, owner.Bytes()...)
	key = append(key, 0x5F)
	idBuf := make([]byte, 8)
	binary.LittleEndian.PutUint64(idBuf, id)
	return append(key, idBuf...)
}

func encodeAmount(v uint64) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, v)
	return buf
}

func decodeAmount(b []byte) uint64 {
	if len(b) < 8 {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

// PushOutputTransfer records that the currently executing frame has
// committed to send value units of the named token id owned by owner. It
// bypasses the leading-zero-byte key rejection (this is the one
// host-internal builder allowed to write into the reserved namespace), adds
// the amount to the running total the guest's output carries for the
// callee to see, and accumulates it against the current frame so
// ComputeOutgoingTransferValue can answer without re-walking the arena.
func (c *CoData) PushOutputTransfer(owner common.Address, id uint64, value uint64) {
	key := inFlightTransferKey(owner, id)
	existing, _ := c.rawGetKey(c.to, key)
	total := decodeAmount(existing) + value
	c.rawPushOutputKey(key, encodeAmount(total))

	c.CurrentContext().addTransfer(owner, id, value)
}

// PeekInputTransfer reads the running transfer total visible in the current
// input map for owner/id.
func (c *CoData) PeekInputTransfer(owner common.Address, id uint64) (uint64, *common.Error) {
	v, ok := c.rawGetKey(c.ti, inFlightTransferKey(owner, id))
	if !ok {
		return 0, common.ErrItemDoesntExist
	}
	return decodeAmount(v), nil
}

// ElementPopTransfer reads and removes the in-flight transfer entry from
// the current input map. Reserved for privileged elements (the storage
// element's token-accounting functions); guest code cannot reach it
// directly, since it is never exposed through the public element dispatch
// surface.
func (c *CoData) ElementPopTransfer(owner common.Address, id uint64) (uint64, *common.Error) {
	key := inFlightTransferKey(owner, id)
	v, ok := c.rawGetKey(c.ti, key)
	if !ok {
		return 0, common.ErrItemDoesntExist
	}
	c.rawDeleteKey(c.ti, key)
	return decodeAmount(v), nil
}

// ComputeOutgoingTransferValue sums every PushOutputTransfer(owner, id, v)
// performed, for the given owner/id pair, by a frame whose SelfAddress
// equals address and that is currently live on the context stack —
// "how much have I committed to send so far in this execution chain."
func (c *CoData) ComputeOutgoingTransferValue(owner common.Address, id uint64, address common.Address) uint64 {
	var total uint64
	key := transferKey{owner, id}
	for _, ctx := range c.contexts {
		if !ctx.SelfAddress.Equal(address) {
			continue
		}
		if ctx.transfers == nil {
			continue
		}
		total += ctx.transfers[key]
	}
	return total
}
