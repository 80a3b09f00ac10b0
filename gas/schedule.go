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

// Package gas holds the GasSchedule read by hypervisors and elements while
// charging a call's remaining gas. The schedule itself is just data;
// TOML-loading it follows the naoina/toml config pattern used throughout
// this repo (see internal/config).
package gas

// ElementFunctionCost is the cost parameters for one (feature, function)
// pair. Base is charged unconditionally; PerByte is charged against the
// length of whatever payload the function call carries (argument bytes for
// host calls, key plus value bytes for storage writes).
type ElementFunctionCost struct {
	Base    uint64 `toml:"base"`
	PerByte uint64 `toml:"per_byte"`
}

// Schedule is read-only once execution starts; the CLI harness (through
// internal/config) and tests build one and hand it to the elements and
// hypervisors that charge against it.
type Schedule struct {
	// VMOpCost maps a guest VM's numeric opcode to its cost. Hypervisors
	// that don't model per-opcode costs (e.g. BareVM) can leave this empty
	// and charge a flat per-instruction cost instead.
	VMOpCost map[uint32]uint64 `toml:"vm_op_cost"`

	// ElementCost maps feature_id -> function_id -> cost.
	ElementCost map[uint32]map[uint32]ElementFunctionCost `toml:"element_cost"`
}

// Default is a conservative, always-available schedule used when no
// configuration file is supplied.
func Default() *Schedule {
	return &Schedule{
		VMOpCost: map[uint32]uint64{},
		ElementCost: map[uint32]map[uint32]ElementFunctionCost{
			2: { // GLOBAL_STORAGE_FEATURE
				0: {Base: 200, PerByte: 3}, // read_key
				1: {Base: 5000, PerByte: 20}, // write_key
			},
			4: { // LOGGING_FEATURE
				0: {Base: 375, PerByte: 8},
			},
		},
	}
}

// ElementFunction looks up the cost for a feature/function pair, falling
// back to a flat minimum charge if the schedule has no entry — an
// unmodeled host call is never free.
func (s *Schedule) ElementFunction(feature, function uint32) ElementFunctionCost {
	if s == nil {
		return ElementFunctionCost{Base: 1}
	}
	if fns, ok := s.ElementCost[feature]; ok {
		if c, ok := fns[function]; ok {
			return c
		}
	}
	return ElementFunctionCost{Base: 1}
}

// VMOp looks up a guest opcode's cost, defaulting to 1 if unmodeled.
func (s *Schedule) VMOp(op uint32) uint64 {
	if s == nil {
		return 1
	}
	if c, ok := s.VMOpCost[op]; ok {
		return c
	}
	return 1
}

// Charge subtracts cost from remaining and reports whether enough gas was
// left to pay it. When cost exceeds remaining, remaining is set to 0 and
// Charge returns false (gas exhausted).
func Charge(remaining *uint64, cost uint64) bool {
	if cost > *remaining {
		*remaining = 0
		return false
	}
	*remaining -= cost
	return true
}
