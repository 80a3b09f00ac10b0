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

package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/earlgreytech/neutron-host/common"
)

func testAddr(b byte) common.Address {
	var data [common.AddressDataLen]byte
	data[0] = b
	return common.NewAddress(1, data)
}

func TestGlobalState_WriteRequiresOpenCheckpoint(t *testing.T) {
	gs, err := New("")
	require.NoError(t, err)
	defer gs.Close()

	werr := gs.WriteKey(testAddr(1), []byte("k"), []byte("v"))
	assert.NotNil(t, werr)
	assert.False(t, werr.IsRecoverable())
}

func TestGlobalState_RevertDiscardsOverlayWrites(t *testing.T) {
	gs, err := New("")
	require.NoError(t, err)
	defer gs.Close()

	gs.Checkpoint()
	require.Nil(t, gs.WriteKey(testAddr(1), []byte("k"), []byte("v1")))
	v, rerr := gs.ReadKey(testAddr(1), []byte("k"))
	require.Nil(t, rerr)
	assert.Equal(t, []byte("v1"), v)

	require.Nil(t, gs.RevertSingleCheckpoint())
	_, rerr = gs.ReadKey(testAddr(1), []byte("k"))
	assert.Equal(t, common.ErrItemDoesntExist, rerr)
}

func TestGlobalState_CommitMergesIntoParentOverlay(t *testing.T) {
	gs, err := New("")
	require.NoError(t, err)
	defer gs.Close()

	gs.Checkpoint()
	require.Nil(t, gs.WriteKey(testAddr(1), []byte("outer"), []byte("o")))
	gs.Checkpoint()
	require.Nil(t, gs.WriteKey(testAddr(1), []byte("inner"), []byte("i")))
	require.Nil(t, gs.CommitSingleCheckpoint())
	assert.Equal(t, 1, gs.Depth())

	v, rerr := gs.ReadKey(testAddr(1), []byte("inner"))
	require.Nil(t, rerr)
	assert.Equal(t, []byte("i"), v)
}

func TestGlobalState_CommitCollisionTopWins(t *testing.T) {
	gs, err := New("")
	require.NoError(t, err)
	defer gs.Close()

	gs.Checkpoint()
	require.Nil(t, gs.WriteKey(testAddr(1), []byte("k"), []byte("outer")))
	gs.Checkpoint()
	require.Nil(t, gs.WriteKey(testAddr(1), []byte("k"), []byte("inner")))
	require.Nil(t, gs.CommitSingleCheckpoint())

	v, rerr := gs.ReadKey(testAddr(1), []byte("k"))
	require.Nil(t, rerr)
	assert.Equal(t, []byte("inner"), v)
}

func TestGlobalState_CommitPersistsPastOverlayLifetime(t *testing.T) {
	gs, err := New("")
	require.NoError(t, err)
	defer gs.Close()

	gs.Checkpoint()
	require.Nil(t, gs.WriteKey(testAddr(2), []byte("k"), []byte("persisted")))
	require.Nil(t, gs.Commit())
	assert.Equal(t, 0, gs.Depth())

	v, rerr := gs.ReadKey(testAddr(2), []byte("k"))
	require.Nil(t, rerr)
	assert.Equal(t, []byte("persisted"), v)
}

func TestGlobalState_ReadMissIsRecoverable(t *testing.T) {
	gs, err := New("")
	require.NoError(t, err)
	defer gs.Close()

	_, rerr := gs.ReadKey(testAddr(3), []byte("nope"))
	require.NotNil(t, rerr)
	assert.True(t, rerr.IsRecoverable())
}
