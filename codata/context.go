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

// Package codata implements CoData, the per-execution data-exchange
// substrate described in the design document: a pair of stacks, a stack of
// key/value maps, and the context stack that ties both to the call tree.
package codata

import "github.com/earlgreytech/neutron-host/common"

// ExecutionContext is the per-call frame: identity, gas, value, permissions,
// and the map-arena indices this frame was given when it was pushed. The
// three indices never change for the lifetime of the frame — they are its
// restore point, handed back to CoData's global cursors whenever this frame
// becomes current again (see CoData.PopContext).
type ExecutionContext struct {
	Flags uint64

	Sender      common.Address
	Origin      common.Address
	SelfAddress common.Address

	GasLimit  uint64
	ValueSent uint64

	ExecutionType common.ExecutionType
	Permissions   common.Permissions

	InputMapIdx  int
	OutputMapIdx int
	ResultMapIdx int

	// transfers accumulates the value pushed via PushOutputTransfer by this
	// frame, keyed by owner+id, so ComputeOutgoingTransferValue can sum
	// across every live frame with a matching self address without having
	// to re-read the (possibly already popped) comap arena.
	transfers map[transferKey]uint64
}

type transferKey struct {
	owner common.Address
	id    uint64
}

func (c *ExecutionContext) addTransfer(owner common.Address, id uint64, value uint64) {
	if c.transfers == nil {
		c.transfers = make(map[transferKey]uint64)
	}
	c.transfers[transferKey{owner, id}] += value
}
