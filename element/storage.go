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

package element

import (
	"github.com/earlgreytech/neutron-host/codata"
	"github.com/earlgreytech/neutron-host/common"
	"github.com/earlgreytech/neutron-host/gas"
	"github.com/earlgreytech/neutron-host/state"
)

// Storage function IDs. The low IDs are public (guest-reachable through
// CallSystem.Call, which masks the private bit off); the private-bit-set
// IDs bypass the user-space key prefix and are reachable only via
// PrivateCall — used by hypervisors persisting code/data; the transfer IDs
// wrap CoData's in-flight token-transfer accounting.
const (
	FuncLoadState  uint32 = 0
	FuncStoreState uint32 = 1
	FuncKeyExists  uint32 = 2

	FuncPrivateLoad  uint32 = functionPrivateBit | 0
	FuncPrivateStore uint32 = functionPrivateBit | 1

	FuncPushOutputTransfer  uint32 = functionPrivateBit | 2
	FuncPeekInputTransfer   uint32 = functionPrivateBit | 3
	FuncElementPopTransfer  uint32 = functionPrivateBit | 4
)

// userKeyPrefix is prepended to every key reaching the store through the
// public StoreState/LoadState/KeyExists functions, separating user-space
// keys from the \x02 private prefix (code/data) and the \x00 reserved
// token-accounting prefix.
const userKeyPrefix = 0x5F

func userKey(key []byte) []byte {
	out := make([]byte, 0, len(key)+1)
	out = append(out, userKeyPrefix)
	return append(out, key...)
}

// StorageElement implements GLOBAL_STORAGE_FEATURE. Arguments and results
// travel over CoData's byte-string stacks: each function pops its
// arguments (in order) and pushes its results, returning Result(0) on
// success, per the feature's stack-based mini-ABI. The exceptions are
// FuncPeekInputTransfer and FuncElementPopTransfer, which push nothing and
// return the transfer amount as Result(amount).
type StorageElement struct {
	gs       *state.GlobalState
	schedule *gas.Schedule
}

// NewStorageElement wires a GlobalState and gas schedule into the element.
func NewStorageElement(gs *state.GlobalState, schedule *gas.Schedule) *StorageElement {
	return &StorageElement{gs: gs, schedule: schedule}
}

func (s *StorageElement) charge(cd *codata.CoData, function uint32, payloadLen int) *common.Error {
	c := s.schedule.ElementFunction(GlobalStorageFeature, function)
	cost := c.Base + c.PerByte*uint64(payloadLen)
	if !gas.Charge(&cd.GasRemaining, cost) {
		return common.ErrOutOfGas
	}
	return nil
}

func (s *StorageElement) SystemCall(cs *CallSystem, cd *codata.CoData, function uint32) (ElementResult, *common.Error) {
	self := cd.CurrentContext().SelfAddress

	switch function {
	case FuncLoadState:
		key, err := cd.PopInputStack()
		if err != nil {
			return ElementResult{}, err
		}
		if err := s.charge(cd, function, len(key)); err != nil {
			return ElementResult{}, err
		}
		v, err := s.gs.ReadKey(self, userKey(key))
		if err != nil {
			return ElementResult{}, err
		}
		cd.PushOutputStack(v)
		return Result(0), nil

	case FuncStoreState:
		value, err := cd.PopInputStack()
		if err != nil {
			return ElementResult{}, err
		}
		key, err := cd.PopInputStack()
		if err != nil {
			return ElementResult{}, err
		}
		if err := s.charge(cd, function, len(key)+len(value)); err != nil {
			return ElementResult{}, err
		}
		if err := s.gs.WriteKey(self, userKey(key), value); err != nil {
			return ElementResult{}, err
		}
		return Result(0), nil

	case FuncKeyExists:
		key, err := cd.PopInputStack()
		if err != nil {
			return ElementResult{}, err
		}
		if err := s.charge(cd, function, len(key)); err != nil {
			return ElementResult{}, err
		}
		if _, err := s.gs.ReadKey(self, userKey(key)); err != nil {
			cd.PushOutputStack([]byte{0})
		} else {
			cd.PushOutputStack([]byte{1})
		}
		return Result(0), nil

	case FuncPrivateLoad:
		key, err := cd.PopInputStack()
		if err != nil {
			return ElementResult{}, err
		}
		v, err := s.gs.ReadKey(self, key)
		if err != nil {
			return ElementResult{}, err
		}
		cd.PushOutputStack(v)
		return Result(0), nil

	case FuncPrivateStore:
		value, err := cd.PopInputStack()
		if err != nil {
			return ElementResult{}, err
		}
		key, err := cd.PopInputStack()
		if err != nil {
			return ElementResult{}, err
		}
		if err := s.gs.WriteKey(self, key, value); err != nil {
			return ElementResult{}, err
		}
		return Result(0), nil

	case FuncPushOutputTransfer:
		idBytes, err := cd.PopInputStack()
		if err != nil {
			return ElementResult{}, err
		}
		valueBytes, err := cd.PopInputStack()
		if err != nil {
			return ElementResult{}, err
		}
		id := decodeU64(idBytes)
		value := decodeU64(valueBytes)
		cd.PushOutputTransfer(self, id, value)
		return Result(0), nil

	case FuncPeekInputTransfer:
		idBytes, err := cd.PopInputStack()
		if err != nil {
			return ElementResult{}, err
		}
		v, err := cd.PeekInputTransfer(self, decodeU64(idBytes))
		if err != nil {
			return ElementResult{}, err
		}
		return Result(v), nil

	case FuncElementPopTransfer:
		idBytes, err := cd.PopInputStack()
		if err != nil {
			return ElementResult{}, err
		}
		v, err := cd.ElementPopTransfer(self, decodeU64(idBytes))
		if err != nil {
			return ElementResult{}, err
		}
		return Result(v), nil
	}

	return ElementResult{}, common.ErrInvalidSystemFunction
}

func decodeU64(b []byte) uint64 {
	var v uint64
	for _, c := range b {
		v = (v << 8) | uint64(c)
	}
	return v
}
