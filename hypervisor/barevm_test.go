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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/earlgreytech/neutron-host/codata"
	"github.com/earlgreytech/neutron-host/common"
	"github.com/earlgreytech/neutron-host/element"
	"github.com/earlgreytech/neutron-host/gas"
	"github.com/earlgreytech/neutron-host/state"
)

func testAddr() common.Address {
	var data [common.AddressDataLen]byte
	data[0] = 7
	return common.NewAddress(1, data)
}

func encodeWord(op Opcode, a, b, c uint8) []byte {
	w := uint32(op) | uint32(a)<<8 | uint32(b)<<16 | uint32(c)<<24
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, w)
	return buf
}

func TestBareVM_HaltReturnsEnded(t *testing.T) {
	code := append(
		encodeWord(OpLoadConst, 1, 0, 0),
		encodeWord(OpHalt, 1, 0, 0)...,
	)

	gs, err := state.New("")
	require.NoError(t, err)
	defer gs.Close()
	gs.Checkpoint()
	cs := element.NewCallSystem(element.NewStorageElement(gs, gas.Default()), element.NewLoggingElement(nil, gas.Default()))

	constants := make([]byte, 8)
	binary.LittleEndian.PutUint64(constants, 5)

	cd := codata.NewTopLevelCall(testAddr(), 1_000_000, 0)
	cd.CurrentContext().ExecutionType = common.BareExecution
	require.Nil(t, cd.PushInputKey([]byte("!.c"), code))
	require.Nil(t, cd.PushInputKey([]byte("!.d"), constants))

	bv := NewBareVMFactory(gas.Default())().(*BareVM)
	require.Nil(t, bv.EnterState(cd, cs))

	res, cerr := bv.Execute(cd)
	require.Nil(t, cerr)
	assert.Equal(t, Ended, res.Kind)
	assert.Equal(t, uint32(5), res.StatusCode)
}

func TestBareVM_SysCallSuspendsAndResumes(t *testing.T) {
	code := encodeWord(OpSysCall, 10, 11, 12)
	code = append(code, encodeWord(OpHalt, 12, 0, 0)...)

	gs, err := state.New("")
	require.NoError(t, err)
	defer gs.Close()
	gs.Checkpoint()
	cs := element.NewCallSystem(element.NewStorageElement(gs, gas.Default()), element.NewLoggingElement(nil, gas.Default()))

	cd := codata.NewTopLevelCall(testAddr(), 1_000_000, 0)
	cd.CurrentContext().ExecutionType = common.BareExecution
	require.Nil(t, cd.PushInputKey([]byte("!.c"), code))

	bv := NewBareVMFactory(gas.Default())().(*BareVM)
	require.Nil(t, bv.EnterState(cd, cs))
	// Seed the feature/function registers the syscall reads.
	bv.vm.setReg(10, uint64(element.TestFeature))
	bv.vm.setReg(11, 0)

	res, cerr := bv.Execute(cd)
	require.Nil(t, cerr)
	assert.Equal(t, ElementCall, res.Kind)
	assert.Equal(t, element.TestFeature, res.FeatureID)

	bv.SetResult(42)
	res2, cerr := bv.Execute(cd)
	require.Nil(t, cerr)
	assert.Equal(t, Ended, res2.Kind)
	assert.Equal(t, uint32(42), res2.StatusCode)
}

func TestVMManager_UnknownVersionIsInvalidVM(t *testing.T) {
	vmm := NewVMManager()
	_, err := vmm.New(99)
	require.NotNil(t, err)
	assert.Equal(t, common.ErrInvalidVM, err)
}

func TestVMManager_RegisteredVersionBuildsHypervisor(t *testing.T) {
	vmm := NewVMManager()
	vmm.Register(1, NewBareVMFactory(gas.Default()))
	hv, err := vmm.New(1)
	require.Nil(t, err)
	assert.NotNil(t, hv)
}
