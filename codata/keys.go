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

import "github.com/earlgreytech/neutron-host/common"

// checkUserKey rejects any key whose first byte is 0: that namespace is
// reserved for host-constructed internal entries (token-transfer records).
func checkUserKey(key []byte) *common.Error {
	if len(key) > 0 && key[0] == 0 {
		return common.ErrInvalidCoMapAccess
	}
	return nil
}

// PushOutputKey writes key/value into the current output map. Keys with a
// leading zero byte are rejected recoverably.
func (c *CoData) PushOutputKey(key, value []byte) *common.Error {
	if err := checkUserKey(key); err != nil {
		return err
	}
	c.maps[c.to][string(key)] = value
	return nil
}

// PushInputKey writes key/value directly into the current input map. This
// is a test/host-injection primitive, not guest-reachable.
func (c *CoData) PushInputKey(key, value []byte) *common.Error {
	if err := checkUserKey(key); err != nil {
		return err
	}
	c.maps[c.ti][string(key)] = value
	return nil
}

// PeekInputKey reads key from the current input map.
func (c *CoData) PeekInputKey(key []byte) ([]byte, *common.Error) {
	v, ok := c.maps[c.ti][string(key)]
	if !ok {
		return nil, common.ErrItemDoesntExist
	}
	return v, nil
}

// PeekResultKey reads key from the current result map.
func (c *CoData) PeekResultKey(key []byte) ([]byte, *common.Error) {
	v, ok := c.maps[c.tr][string(key)]
	if !ok {
		return nil, common.ErrItemDoesntExist
	}
	return v, nil
}

// rawPushOutputKey bypasses the leading-zero-byte rejection; used only by
// the private token-transfer builder in transfers.go.
func (c *CoData) rawPushOutputKey(key, value []byte) {
	c.maps[c.to][string(key)] = value
}

func (c *CoData) rawGetKey(idx int, key []byte) ([]byte, bool) {
	v, ok := c.maps[idx][string(key)]
	return v, ok
}

func (c *CoData) rawDeleteKey(idx int, key []byte) {
	delete(c.maps[idx], string(key))
}

// CurrentMapIndices exposes the live (input, output, result) cursor triple,
// primarily for tests asserting the map-arena invariant.
func (c *CoData) CurrentMapIndices() (ti, to, tr int) { return c.ti, c.to, c.tr }

// MapCount reports the size of the map arena.
func (c *CoData) MapCount() int { return len(c.maps) }
