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

// EnterElement performs the element-entry half of the element boundary:
// the guest's output becomes the element's input, and the element gets a
// fresh, empty output to write its own results into.
//
// Concretely: the stack designations swap (the guest's prior output
// becomes input) and the freshly designated output stack is emptied; the
// map cursors rotate cyclically (ti'=to, to'=tr, tr'=ti) and the freshly
// designated output map is cleared. The pre-call state is pushed onto an
// internal save stack so ExitElement can restore it exactly, which is what
// lets elements call other elements (private_call) without losing track of
// the enclosing frame's view.
func (c *CoData) EnterElement() {
	c.elementSaves = append(c.elementSaves, elementSave{
		ti: c.ti, to: c.to, tr: c.tr, inputIdx: c.inputIdx,
	})

	c.flipStacks()
	c.clearOutputStack()

	newTi, newTo, newTr := c.to, c.tr, c.ti
	c.ti, c.to, c.tr = newTi, newTo, newTr
	c.maps[c.to] = make(comap)
}

// ExitElement performs the element-exit half of the boundary: stacks flip
// back (so the element's output becomes the guest's new input) and the
// freshly designated output — whatever the frame's pre-call output stack
// had left over, unconsumed by the element — is emptied, so an element
// invocation always leaves the stacks holding nothing but its own outputs.
// Map cursors are restored from the enclosing frame, so the guest's own
// result map now reflects what the element produced.
func (c *CoData) ExitElement() {
	n := len(c.elementSaves)
	save := c.elementSaves[n-1]
	c.elementSaves = c.elementSaves[:n-1]

	c.flipStacks()
	c.clearOutputStack()

	c.ti, c.to, c.tr = save.ti, save.to, save.tr
}
