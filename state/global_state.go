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

// Package state implements the checkpointed global key-value store: a
// committed baseline plus a LIFO stack of per-address overlays,
// mechanically tied to the Manager's call stack so a recoverable sub-call
// failure rolls back exactly the state it wrote.
//
// The checkpoint/revert/commit machinery adapts a journal pattern — "a
// list of undoable journal entries keyed by dirty address" becomes "a
// stack of full overlay snapshots keyed by address and key" — so
// GlobalState's revert is O(1) per checkpoint rather than an
// entry-by-entry replay, since overlays (not individual mutations) are
// the unit of rollback here.
package state

import (
	lru "github.com/hashicorp/golang-lru"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"

	"github.com/earlgreytech/neutron-host/common"
	"github.com/earlgreytech/neutron-host/log"
)

// addrKey is the flattened (address, key) pair used as a map key within an
// overlay.
type addrKey struct {
	addr common.Address
	key  string
}

// overlay is one checkpoint's worth of pending writes.
type overlay map[addrKey][]byte

// GlobalState is the durable, checkpointed store backing GLOBAL_STORAGE_FEATURE.
// The committed baseline lives in a goleveldb database (grounded on the
// durable-storage dependency the wider example pack reaches for); a small
// LRU sits in front of it so repeated reads of hot keys during a single
// transaction don't round-trip through the disk engine.
type GlobalState struct {
	db       *leveldb.DB
	readCache *lru.Cache
	overlays []overlay
}

const readCacheSize = 4096

// New opens (or creates) a GlobalState backed by a goleveldb database at
// path. Passing "" backs it with an in-memory storage.Storage, useful for
// tests and the CLI harness.
func New(path string) (*GlobalState, error) {
	var db *leveldb.DB
	var err error
	if path == "" {
		db, err = leveldb.Open(storage.NewMemStorage(), nil)
	} else {
		db, err = leveldb.OpenFile(path, nil)
	}
	if err != nil {
		return nil, err
	}
	cache, _ := lru.New(readCacheSize)
	return &GlobalState{db: db, readCache: cache}, nil
}

func dbKey(addr common.Address, key []byte) []byte {
	out := make([]byte, 0, len(addr.Bytes())+len(key))
	out = append(out, addr.Bytes()...)
	return append(out, key...)
}

// ReadKey searches the overlay stack top-down, then the LRU, then the
// committed baseline. A miss anywhere in the chain is ErrItemDoesntExist,
// which storage-element callers may in turn promote to ErrStateOutOfRent
// when the miss reflects state that expired rather than state that was
// never written.
func (g *GlobalState) ReadKey(addr common.Address, key []byte) ([]byte, *common.Error) {
	ak := addrKey{addr, string(key)}
	for i := len(g.overlays) - 1; i >= 0; i-- {
		if v, ok := g.overlays[i][ak]; ok {
			return v, nil
		}
	}

	dk := dbKey(addr, key)
	if v, ok := g.readCache.Get(string(dk)); ok {
		return v.([]byte), nil
	}

	v, err := g.db.Get(dk, nil)
	if err == leveldb.ErrNotFound {
		return nil, common.ErrItemDoesntExist
	}
	if err != nil {
		log.Error("global state read failed", "addr", addr, "err", err)
		return nil, common.ErrItemDoesntExist
	}
	g.readCache.Add(string(dk), v)
	return v, nil
}

// WriteKey writes to the topmost overlay. The host must always have opened
// a checkpoint before executing a frame, so an empty overlay stack here is
// a developer error, not something a contract could ever trigger.
func (g *GlobalState) WriteKey(addr common.Address, key, value []byte) *common.Error {
	if len(g.overlays) == 0 {
		return common.ErrDeveloperError
	}
	g.overlays[len(g.overlays)-1][addrKey{addr, string(key)}] = value
	return nil
}

// Checkpoint pushes a new empty overlay and returns the new stack depth.
func (g *GlobalState) Checkpoint() int {
	g.overlays = append(g.overlays, make(overlay))
	return len(g.overlays)
}

// Depth reports the current overlay stack depth.
func (g *GlobalState) Depth() int { return len(g.overlays) }

// RevertSingleCheckpoint discards the top overlay.
func (g *GlobalState) RevertSingleCheckpoint() *common.Error {
	if len(g.overlays) == 0 {
		return common.ErrItemDoesntExist
	}
	g.overlays = g.overlays[:len(g.overlays)-1]
	return nil
}

// CommitSingleCheckpoint merges the top overlay into the one beneath it,
// with the top overlay's entries winning on key collision.
func (g *GlobalState) CommitSingleCheckpoint() *common.Error {
	if len(g.overlays) < 2 {
		return common.ErrDeveloperError
	}
	top := g.overlays[len(g.overlays)-1]
	under := g.overlays[len(g.overlays)-2]
	for k, v := range top {
		under[k] = v
	}
	g.overlays = g.overlays[:len(g.overlays)-1]
	return nil
}

// CollapseCheckpoints merges every overlay into a single one, preserving
// the usual top-wins-on-collision rule (later overlays shadow earlier ones).
func (g *GlobalState) CollapseCheckpoints() {
	if len(g.overlays) <= 1 {
		return
	}
	merged := make(overlay)
	for _, o := range g.overlays {
		for k, v := range o {
			merged[k] = v
		}
	}
	g.overlays = []overlay{merged}
}

// Commit collapses every overlay into the durable baseline and clears the
// overlay stack. A batch write failure is unrecoverable: if the committed
// transaction's effects cannot be made durable, nothing downstream can be
// trusted either.
func (g *GlobalState) Commit() *common.Error {
	g.CollapseCheckpoints()
	if len(g.overlays) == 0 {
		return nil
	}
	batch := new(leveldb.Batch)
	for ak, v := range g.overlays[0] {
		dk := dbKey(ak.addr, []byte(ak.key))
		batch.Put(dk, v)
		g.readCache.Add(string(dk), v)
	}
	if err := g.db.Write(batch, nil); err != nil {
		log.Error("global state commit failed", "err", err)
		return common.ErrDatabaseCommitError
	}
	g.overlays = nil
	return nil
}

// Close releases the underlying database handle.
func (g *GlobalState) Close() error {
	return g.db.Close()
}
