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
	"github.com/earlgreytech/neutron-host/codata"
	"github.com/earlgreytech/neutron-host/common"
	"github.com/earlgreytech/neutron-host/element"
)

// VMResultKind distinguishes the two outcomes Execute can suspend on.
type VMResultKind uint8

const (
	// Ended means the guest halted; StatusCode is its reported status.
	Ended VMResultKind = iota
	// ElementCall means the guest issued a host call; the Manager must
	// dispatch it through CallSystem and resume the guest with the result.
	ElementCall
)

// VMResult is what Execute returns each time it suspends.
type VMResult struct {
	Kind       VMResultKind
	StatusCode uint32
	FeatureID  uint32
	FunctionID uint32
}

// VMHypervisor is the abstract capability set the Manager drives. One
// instance is bound to exactly one execution frame's lifetime: EnterState
// is called once before the first Execute, ExitState once after the last.
type VMHypervisor interface {
	// EnterState loads (and, for Deploy, persists) the frame's code and
	// data before execution begins.
	EnterState(cd *codata.CoData, cs *element.CallSystem) *common.Error

	// Execute runs the guest until it halts or issues a host call.
	Execute(cd *codata.CoData) (VMResult, *common.Error)

	// SetResult resumes a guest suspended on ElementCall with a success
	// value.
	SetResult(v uint64)

	// SetError resumes a guest suspended on ElementCall with a recoverable
	// error code.
	SetError(code uint64)

	// ExitState releases or commits any hypervisor-internal resources
	// after execution ends, successfully or not.
	ExitState(cd *codata.CoData, cs *element.CallSystem)
}

// Factory builds a fresh VMHypervisor for one execution frame.
type Factory func() VMHypervisor

// VMManager maps a guest address's version tag to the factory that builds
// the matching hypervisor.
type VMManager struct {
	factories map[uint32]Factory
}

// NewVMManager builds an empty registry.
func NewVMManager() *VMManager {
	return &VMManager{factories: make(map[uint32]Factory)}
}

// Register binds version to factory, overwriting any prior binding.
func (m *VMManager) Register(version uint32, f Factory) {
	m.factories[version] = f
}

// New builds a hypervisor for version, or a recoverable InvalidVM error if
// no factory is registered for it.
func (m *VMManager) New(version uint32) (VMHypervisor, *common.Error) {
	f, ok := m.factories[version]
	if !ok {
		return nil, common.ErrInvalidVM
	}
	return f(), nil
}
