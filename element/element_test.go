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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/earlgreytech/neutron-host/codata"
	"github.com/earlgreytech/neutron-host/common"
	"github.com/earlgreytech/neutron-host/gas"
	"github.com/earlgreytech/neutron-host/state"
)

func addr(b byte) common.Address {
	var data [common.AddressDataLen]byte
	data[0] = b
	return common.NewAddress(1, data)
}

func newTestCoData(t *testing.T) *codata.CoData {
	t.Helper()
	return codata.NewTopLevelCall(addr(1), 1_000_000, 0)
}

func newTestCallSystem(t *testing.T) (*CallSystem, *state.GlobalState) {
	t.Helper()
	gs, err := state.New("")
	require.NoError(t, err)
	gs.Checkpoint()
	cs := NewCallSystem(NewStorageElement(gs, gas.Default()), NewLoggingElement(nil, gas.Default()))
	require.Nil(t, cs.Register(TestFeature, EchoElement{}))
	return cs, gs
}

// call drives one element invocation exactly as the Manager would: enter
// the element boundary, dispatch, exit. Results land on the input stack
// the caller reads after this returns.
func call(cd *codata.CoData, fn func() (ElementResult, *common.Error)) (ElementResult, *common.Error) {
	cd.EnterElement()
	res, err := fn()
	cd.ExitElement()
	return res, err
}

func TestStorageElement_StoreThenLoad(t *testing.T) {
	cs, gs := newTestCallSystem(t)
	defer gs.Close()
	cd := newTestCoData(t)

	cd.PushOutputStack([]byte("balance"))
	cd.PushOutputStack([]byte("100"))
	_, err := call(cd, func() (ElementResult, *common.Error) {
		return cs.PrivateCall(cd, GlobalStorageFeature, FuncStoreState)
	})
	require.Nil(t, err)

	cd.PushOutputStack([]byte("balance"))
	res, err := call(cd, func() (ElementResult, *common.Error) {
		return cs.PrivateCall(cd, GlobalStorageFeature, FuncLoadState)
	})
	require.Nil(t, err)
	assert.Equal(t, uint64(0), res.Value)

	v, perr := cd.PeekInputStack(0)
	require.Nil(t, perr)
	assert.Equal(t, []byte("100"), v)
}

func TestStorageElement_KeyExists(t *testing.T) {
	cs, gs := newTestCallSystem(t)
	defer gs.Close()
	cd := newTestCoData(t)

	cd.PushOutputStack([]byte("missing"))
	_, err := call(cd, func() (ElementResult, *common.Error) {
		return cs.PrivateCall(cd, GlobalStorageFeature, FuncKeyExists)
	})
	require.Nil(t, err)
	v, perr := cd.PeekInputStack(0)
	require.Nil(t, perr)
	assert.Equal(t, []byte{0}, v)
}

func TestCallSystem_ReservedFeatureRegistration(t *testing.T) {
	cs, gs := newTestCallSystem(t)
	defer gs.Close()
	err := cs.Register(GlobalStorageFeature, EchoElement{})
	require.NotNil(t, err)
	assert.Equal(t, common.ErrReservedFeatureID, err)
}

func TestCallSystem_BorrowReentrancyFault(t *testing.T) {
	cs := NewCallSystem(reenteringElement{}, NewLoggingElement(nil, gas.Default()))
	cd := newTestCoData(t)

	_, err := call(cd, func() (ElementResult, *common.Error) {
		return cs.Call(cd, GlobalStorageFeature, 0)
	})
	require.NotNil(t, err)
	assert.Equal(t, common.ErrElementBorrowed, err)
}

// reenteringElement calls its own feature ID again before returning, which
// must fail the single-live-borrow rule rather than deadlock or recurse.
type reenteringElement struct{}

func (reenteringElement) SystemCall(cs *CallSystem, cd *codata.CoData, function uint32) (ElementResult, *common.Error) {
	return cs.PrivateCall(cd, GlobalStorageFeature, function)
}

func TestCallSystem_PublicCallMasksPrivateBit(t *testing.T) {
	cs, gs := newTestCallSystem(t)
	defer gs.Close()
	cd := newTestCoData(t)

	cd.PushOutputStack([]byte("k"))
	// FuncPrivateLoad has the private bit set; Call must mask it back down
	// to FuncLoadState, not reach the private key-bypass path.
	_, err := call(cd, func() (ElementResult, *common.Error) {
		return cs.Call(cd, GlobalStorageFeature, FuncPrivateLoad)
	})
	require.NotNil(t, err)
	assert.Equal(t, common.ErrItemDoesntExist, err)
}

func TestEchoElement_RoundTrip(t *testing.T) {
	cs, gs := newTestCallSystem(t)
	defer gs.Close()
	cd := newTestCoData(t)

	cd.PushOutputStack([]byte("a"))
	cd.PushOutputStack([]byte("b"))
	_, err := call(cd, func() (ElementResult, *common.Error) {
		return cs.PrivateCall(cd, TestFeature, 0)
	})
	require.Nil(t, err)

	v0, perr := cd.PeekInputStack(0)
	require.Nil(t, perr)
	assert.Equal(t, []byte("b"), v0)
	v1, perr := cd.PeekInputStack(1)
	require.Nil(t, perr)
	assert.Equal(t, []byte("a"), v1)
}
