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

package hypervisor

import (
	"encoding/binary"

	"github.com/earlgreytech/neutron-host/codata"
	"github.com/earlgreytech/neutron-host/common"
	"github.com/earlgreytech/neutron-host/element"
	"github.com/earlgreytech/neutron-host/gas"
)

// codeInputKey and dataInputKey are the well-known map keys a Deploy or
// BareExecution frame carries its initial code/data section under.
var (
	codeInputKey = []byte("!.c")
	dataInputKey = []byte("!.d")
)

// codeStorageKey and dataStorageKey are the reserved private-prefix keys
// persisted code/data live under once a contract has been deployed.
var (
	codeStorageKey = []byte{0x02, 0x00}
	dataStorageKey = []byte{0x02, 0x10}
)

// BareVM is the reference hypervisor used by the CLI test harness (§4.3.1):
// a tiny register machine (hypervisor/vm.go) wearing the VMHypervisor
// capability set. It is not a consensus-relevant component — the real guest
// emulator this host would drive in production is out of scope here.
type BareVM struct {
	schedule *gas.Schedule

	vm           *registerVM
	data         []byte
	pendingField uint8 // register OpSysCall designated for the resumed result
}

// NewBareVMFactory returns a Factory that builds a fresh BareVM bound to
// schedule, suitable for VMManager.Register.
func NewBareVMFactory(schedule *gas.Schedule) Factory {
	return func() VMHypervisor {
		return &BareVM{schedule: schedule}
	}
}

func privateLoad(cd *codata.CoData, cs *element.CallSystem, key []byte) ([]byte, *common.Error) {
	cd.PushOutputStack(key)
	cd.EnterElement()
	_, err := cs.PrivateCall(cd, element.GlobalStorageFeature, element.FuncPrivateLoad)
	cd.ExitElement()
	if err != nil {
		return nil, err
	}
	return cd.PopInputStack()
}

func privateStore(cd *codata.CoData, cs *element.CallSystem, key, value []byte) *common.Error {
	cd.PushOutputStack(key)
	cd.PushOutputStack(value)
	cd.EnterElement()
	_, err := cs.PrivateCall(cd, element.GlobalStorageFeature, element.FuncPrivateStore)
	cd.ExitElement()
	return err
}

// decodeConstants reinterprets a raw data section as a pool of 8-byte
// little-endian constants for OpLoadConst, truncating any trailing partial
// word.
func decodeConstants(data []byte) []uint64 {
	n := len(data) / 8
	out := make([]uint64, n)
	for i := 0; i < n; i++ {
		out[i] = binary.LittleEndian.Uint64(data[i*8 : i*8+8])
	}
	return out
}

func (b *BareVM) EnterState(cd *codata.CoData, cs *element.CallSystem) *common.Error {
	ctx := cd.CurrentContext()

	var code, data []byte
	switch ctx.ExecutionType {
	case common.Deploy:
		var err *common.Error
		code, err = cd.PeekInputKey(codeInputKey)
		if err != nil {
			return err
		}
		data, err = cd.PeekInputKey(dataInputKey)
		if err != nil {
			return err
		}
		if err := privateStore(cd, cs, codeStorageKey, code); err != nil {
			return err
		}
		if err := privateStore(cd, cs, dataStorageKey, data); err != nil {
			return err
		}
	case common.BareExecution:
		var err *common.Error
		code, err = cd.PeekInputKey(codeInputKey)
		if err != nil {
			return err
		}
		data, _ = cd.PeekInputKey(dataInputKey)
	default: // common.Call
		var err *common.Error
		code, err = privateLoad(cd, cs, codeStorageKey)
		if err != nil {
			return err
		}
		data, _ = privateLoad(cd, cs, dataStorageKey)
	}

	b.data = data
	b.vm = newRegisterVM(code, decodeConstants(data))
	return nil
}

func (b *BareVM) opCost(op Opcode) uint64 {
	return b.schedule.VMOp(uint32(op))
}

func (b *BareVM) Execute(cd *codata.CoData) (VMResult, *common.Error) {
	for {
		kind, cost, a, b2, c, stepErr := b.vm.step(b.opCost)
		if !gas.Charge(&cd.GasRemaining, cost) {
			return VMResult{Kind: Ended, StatusCode: statusOutOfGas}, nil
		}
		if stepErr != nil {
			return VMResult{Kind: Ended, StatusCode: statusInvalidOpcode}, nil
		}
		switch kind {
		case stepHalted:
			return VMResult{Kind: Ended, StatusCode: uint32(b.vm.getReg(a))}, nil
		case stepSysCall:
			// OpSysCall operands: a=feature register, b2=function register,
			// c=register the resumed result/error is written back to.
			b.pendingField = c
			return VMResult{Kind: ElementCall, FeatureID: uint32(b.vm.getReg(a)), FunctionID: uint32(b.vm.getReg(b2))}, nil
		}
	}
}

// statusOutOfGas and statusInvalidOpcode are BareVM-specific Ended codes;
// they have no consensus meaning outside this reference hypervisor.
const (
	statusOutOfGas      uint32 = 0xffff_ffff
	statusInvalidOpcode uint32 = 0xffff_fffe
)

func (b *BareVM) SetResult(v uint64) {
	b.vm.setReg(b.pendingField, v)
}

func (b *BareVM) SetError(code uint64) {
	// High bit marks the resumed value as an error code to the convention
	// used by this reference VM's guest programs; a real emulator would
	// have its own ABI for distinguishing the two.
	b.vm.setReg(b.pendingField, code|(1<<63))
}

func (b *BareVM) ExitState(cd *codata.CoData, cs *element.CallSystem) {}
