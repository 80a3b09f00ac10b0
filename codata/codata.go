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

// comap is a single key/value map in the arena. Keys are the raw byte
// strings (converted to Go strings only for use as map keys; values keep
// their original byte-slice identity).
type comap map[string][]byte

// CoData is the central data substrate shared between a caller, any
// elements it invokes, and any callee it spawns. It owns its context
// vector, both stack vectors, and the map arena; nothing outside CoData
// retains pointers into these structures across mutating operations.
type CoData struct {
	contexts []*ExecutionContext

	// stacks holds the two ordered byte-string sequences S0/S1. inputIdx
	// selects which of the two is currently "input"; the other is "output".
	stacks   [2][][]byte
	inputIdx int

	// maps is the heap-ordered arena of comaps. ti/to/tr are the cursors
	// designating the current input/output/result map. Invariant:
	// to == ti+1, tr == to+1, tr+1 == len(maps).
	maps   []comap
	ti, to, tr int

	// elementSaves is the save stack used by EnterElement/ExitElement to
	// support elements calling other elements (private_call).
	elementSaves []elementSave

	// GasRemaining is the single source of truth for gas accounting;
	// hypervisors decrement it during instruction execution.
	GasRemaining uint64
}

type elementSave struct {
	ti, to, tr int
	inputIdx   int
}

// NewTopLevel constructs a fresh CoData for a top-level call or deploy: one
// context frame with map indices (0,1,2), two empty stacks, input
// designation 0.
func NewTopLevel(ctx *ExecutionContext, gasLimit uint64) *CoData {
	ctx.InputMapIdx, ctx.OutputMapIdx, ctx.ResultMapIdx = 0, 1, 2
	return &CoData{
		contexts:     []*ExecutionContext{ctx},
		maps:         []comap{make(comap), make(comap), make(comap)},
		ti:           0,
		to:           1,
		tr:           2,
		GasRemaining: gasLimit,
	}
}

// NewTopLevelCall builds the initial context for a Call-type top-level
// execution (sender == origin == self, full mutable permissions).
func NewTopLevelCall(self common.Address, gasLimit, valueSent uint64) *CoData {
	ctx := &ExecutionContext{
		Sender:        self,
		Origin:        self,
		SelfAddress:   self,
		GasLimit:      gasLimit,
		ValueSent:     valueSent,
		ExecutionType: common.Call,
		Permissions:   common.PermissionsMutable,
	}
	return NewTopLevel(ctx, gasLimit)
}

// NewTopLevelDeploy is NewTopLevelCall's Deploy-typed counterpart.
func NewTopLevelDeploy(self common.Address, gasLimit, valueSent uint64) *CoData {
	ctx := &ExecutionContext{
		Sender:        self,
		Origin:        self,
		SelfAddress:   self,
		GasLimit:      gasLimit,
		ValueSent:     valueSent,
		ExecutionType: common.Deploy,
		Permissions:   common.PermissionsMutable,
	}
	return NewTopLevel(ctx, gasLimit)
}

// ContextCount returns the number of live frames on the context stack.
func (c *CoData) ContextCount() int { return len(c.contexts) }

// CurrentContext returns the top-of-stack frame.
func (c *CoData) CurrentContext() *ExecutionContext {
	return c.contexts[len(c.contexts)-1]
}

// PeekContext returns the frame i slots below the top (0 = current).
func (c *CoData) PeekContext(i int) (*ExecutionContext, *common.Error) {
	idx := len(c.contexts) - 1 - i
	if idx < 0 || idx >= len(c.contexts) {
		return nil, common.ErrContextIndexEmpty
	}
	return c.contexts[idx], nil
}

// PushNestedContext pushes a new nested call/deploy frame on top of the
// currently executing one. caller's current output map becomes the
// callee's input; caller's current result map becomes the callee's output
// (and is cleared); a fresh map is allocated as the callee's own result.
// Permissions must not widen beyond the caller's; callers are expected to
// have validated this already via common.Permissions.LessEq.
func (c *CoData) PushNestedContext(ctx *ExecutionContext) {
	ctx.InputMapIdx = c.to
	ctx.OutputMapIdx = c.tr
	ctx.ResultMapIdx = len(c.maps)

	c.maps[c.tr] = make(comap)
	c.maps = append(c.maps, make(comap))

	c.ti, c.to, c.tr = ctx.InputMapIdx, ctx.OutputMapIdx, ctx.ResultMapIdx
	c.contexts = append(c.contexts, ctx)
}

// NewNestedCall builds a nested Call-type context: sender is the caller's
// self address; origin is inherited unchanged from the root of the chain.
func (c *CoData) NewNestedCall(self common.Address, gasLimit, valueSent uint64, perms common.Permissions) *ExecutionContext {
	caller := c.CurrentContext()
	return &ExecutionContext{
		Sender:        caller.SelfAddress,
		Origin:        caller.Origin,
		SelfAddress:   self,
		GasLimit:      gasLimit,
		ValueSent:     valueSent,
		ExecutionType: common.Call,
		Permissions:   perms,
	}
}

// NewNestedDeploy is NewNestedCall's Deploy-typed counterpart.
func (c *CoData) NewNestedDeploy(self common.Address, gasLimit, valueSent uint64, perms common.Permissions) *ExecutionContext {
	ctx := c.NewNestedCall(self, gasLimit, valueSent, perms)
	ctx.ExecutionType = common.Deploy
	return ctx
}

// PopContext destroys the topmost map (always the popped frame's own result
// map, by the tr+1==len(maps) invariant) and restores the global cursors
// from the frame being returned to — a pure restore, since that frame's
// recorded indices have not changed since it was pushed.
func (c *CoData) PopContext() *common.Error {
	if len(c.contexts) == 0 {
		return common.ErrContextIndexEmpty
	}
	c.maps = c.maps[:len(c.maps)-1]
	c.contexts = c.contexts[:len(c.contexts)-1]
	if len(c.contexts) > 0 {
		parent := c.contexts[len(c.contexts)-1]
		c.ti, c.to, c.tr = parent.InputMapIdx, parent.OutputMapIdx, parent.ResultMapIdx
	}
	return nil
}
