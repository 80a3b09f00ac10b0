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

package manager

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/earlgreytech/neutron-host/codata"
	"github.com/earlgreytech/neutron-host/common"
	"github.com/earlgreytech/neutron-host/element"
	"github.com/earlgreytech/neutron-host/gas"
	"github.com/earlgreytech/neutron-host/hypervisor"
	"github.com/earlgreytech/neutron-host/state"
)

func testAddr(version uint32) common.Address {
	var data [common.AddressDataLen]byte
	data[0] = 9
	return common.NewAddress(version, data)
}

func encodeWord(op hypervisor.Opcode, a, b, c uint8) []byte {
	w := uint32(op) | uint32(a)<<8 | uint32(b)<<16 | uint32(c)<<24
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, w)
	return buf
}

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	gs, err := state.New("")
	require.NoError(t, err)
	t.Cleanup(func() { gs.Close() })

	cs := element.NewCallSystem(element.NewStorageElement(gs, gas.Default()), element.NewLoggingElement(nil, gas.Default()))
	require.Nil(t, cs.Register(element.TestFeature, element.EchoElement{}))

	vmm := hypervisor.NewVMManager()
	vmm.Register(1, hypervisor.NewBareVMFactory(gas.Default()))

	return New(vmm, cs, gs, nil)
}

func TestManager_Run_SimpleHalt(t *testing.T) {
	m := newTestManager(t)

	code := append(
		encodeWord(hypervisor.OpLoadConst, 1, 0, 0),
		encodeWord(hypervisor.OpHalt, 1, 0, 0)...,
	)
	constants := make([]byte, 8)
	binary.LittleEndian.PutUint64(constants, 3)

	cd := codata.NewTopLevelCall(testAddr(1), 1_000_000, 0)
	cd.CurrentContext().ExecutionType = common.BareExecution
	require.Nil(t, cd.PushInputKey([]byte("!.c"), code))
	require.Nil(t, cd.PushInputKey([]byte("!.d"), constants))

	res, err := m.Run(cd)
	require.Nil(t, err)
	assert.Equal(t, uint32(3), res.StatusCode)
	assert.Greater(t, res.GasUsed, uint64(0))
}

func TestManager_Run_UnknownVMVersionIsPromotedAtTopLevel(t *testing.T) {
	m := newTestManager(t)
	cd := codata.NewTopLevelCall(testAddr(42), 1_000_000, 0)

	_, err := m.Run(cd)
	require.NotNil(t, err)
	assert.False(t, err.IsRecoverable())
	assert.True(t, errors.Is(err, common.ErrInvalidVM))
}

func TestManager_Run_ElementCallRoundTrip(t *testing.T) {
	m := newTestManager(t)

	// R10 = TEST_FEATURE, R11 = function 0, syscall writes result into R12,
	// then halt with whatever landed in R12.
	code := encodeWord(hypervisor.OpLoadConst, 10, 0, 0)
	code = append(code, encodeWord(hypervisor.OpLoadConst, 11, 0, 1)...)
	code = append(code, encodeWord(hypervisor.OpSysCall, 10, 11, 12)...)
	code = append(code, encodeWord(hypervisor.OpHalt, 12, 0, 0)...)

	constants := make([]byte, 16)
	binary.LittleEndian.PutUint64(constants[0:8], uint64(element.TestFeature))
	binary.LittleEndian.PutUint64(constants[8:16], 0)

	cd := codata.NewTopLevelCall(testAddr(1), 1_000_000, 0)
	cd.CurrentContext().ExecutionType = common.BareExecution
	require.Nil(t, cd.PushInputKey([]byte("!.c"), code))
	require.Nil(t, cd.PushInputKey([]byte("!.d"), constants))

	res, err := m.Run(cd)
	require.Nil(t, err)
	// EchoElement with an empty input stack pushes nothing back, so the
	// element call resolves to Result(0) and the guest halts with status 0.
	assert.Equal(t, uint32(0), res.StatusCode)
}
