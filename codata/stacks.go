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

func (c *CoData) outputStackIdx() int { return 1 - c.inputIdx }

// PushOutputStack appends a byte string to the current output stack.
func (c *CoData) PushOutputStack(b []byte) {
	idx := c.outputStackIdx()
	c.stacks[idx] = append(c.stacks[idx], b)
}

// PopInputStack removes and returns the top of the current input stack.
func (c *CoData) PopInputStack() ([]byte, *common.Error) {
	s := c.stacks[c.inputIdx]
	if len(s) == 0 {
		return nil, common.ErrItemDoesntExist
	}
	v := s[len(s)-1]
	c.stacks[c.inputIdx] = s[:len(s)-1]
	return v, nil
}

// PeekInputStack returns the item i slots below the top of the current
// input stack without removing it (i=0 is the top).
func (c *CoData) PeekInputStack(i int) ([]byte, *common.Error) {
	s := c.stacks[c.inputIdx]
	if i < 0 || i >= len(s) {
		return nil, common.ErrItemDoesntExist
	}
	return s[len(s)-1-i], nil
}

// DropInputStack pops and discards the top of the current input stack.
func (c *CoData) DropInputStack() *common.Error {
	_, err := c.PopInputStack()
	return err
}

// ClearInputStack empties the current input stack.
func (c *CoData) ClearInputStack() {
	c.stacks[c.inputIdx] = c.stacks[c.inputIdx][:0]
}

// InputStackLen reports the number of items in the current input stack.
func (c *CoData) InputStackLen() int {
	return len(c.stacks[c.inputIdx])
}

// flipStacks swaps which of S0/S1 is designated input vs. output. It is a
// pure label swap: called twice in a row it is a no-op on stack contents
// (property 2). Callers that need the "enter/exit" semantics of emptying
// the freshly designated output additionally call clearOutputStack.
func (c *CoData) flipStacks() {
	c.inputIdx = 1 - c.inputIdx
}

func (c *CoData) clearOutputStack() {
	c.stacks[c.outputStackIdx()] = nil
}

// MoveInputToOutputCostack destructively moves the current input stack to
// become the current output stack: the callee's input becomes literally
// the caller's input, and the old input is left empty. This is a cheap
// swap-and-reset rather than a copy.
func (c *CoData) MoveInputToOutputCostack() {
	outIdx := c.outputStackIdx()
	c.stacks[outIdx] = c.stacks[c.inputIdx]
	c.stacks[c.inputIdx] = nil
}
