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

package common

// Permissions is the four-valued permission lattice carried by every
// ExecutionContext: two independent axes (self vs. external) each gated by
// two independent capabilities (modify vs. access).
type Permissions struct {
	ModifySelf     bool
	ModifyExternal bool
	AccessSelf     bool
	AccessExternal bool
}

// Canonical permission sets.
var (
	PermissionsPure      = Permissions{}
	PermissionsIsolated  = Permissions{ModifySelf: true, AccessSelf: true}
	PermissionsImmutable = Permissions{AccessSelf: true, AccessExternal: true}
	PermissionsMutable   = Permissions{ModifySelf: true, ModifyExternal: true, AccessSelf: true, AccessExternal: true}
)

// LessEq reports whether p is no wider than o in the lattice: every
// capability p grants, o also grants. A nested call may only be made with
// permissions LessEq the caller's.
func (p Permissions) LessEq(o Permissions) bool {
	return (!p.ModifySelf || o.ModifySelf) &&
		(!p.ModifyExternal || o.ModifyExternal) &&
		(!p.AccessSelf || o.AccessSelf) &&
		(!p.AccessExternal || o.AccessExternal)
}

// AssertModifySelf fails recoverably unless ModifySelf is granted.
func (p Permissions) AssertModifySelf() *Error {
	if !p.ModifySelf {
		return ErrRequiresPermissionSelfMod
	}
	return nil
}

// AssertModifyExternal fails recoverably unless ModifyExternal is granted.
func (p Permissions) AssertModifyExternal() *Error {
	if !p.ModifyExternal {
		return ErrRequiresPermissionExternalMod
	}
	return nil
}

// AssertAccessSelf fails recoverably unless AccessSelf is granted.
func (p Permissions) AssertAccessSelf() *Error {
	if !p.AccessSelf {
		return ErrRequiresPermissionSelfAccess
	}
	return nil
}

// AssertAccessExternal fails recoverably unless AccessExternal is granted.
func (p Permissions) AssertAccessExternal() *Error {
	if !p.AccessExternal {
		return ErrRequiresPermissionExternalAccess
	}
	return nil
}

// ExecutionType selects how a frame's code and data section are obtained.
type ExecutionType uint8

const (
	// Call loads code and data from storage under the self address.
	Call ExecutionType = iota
	// Deploy persists code and data from the initial input map under the
	// self address before execution begins.
	Deploy
	// BareExecution reads code and data from the initial input map without
	// persisting them; used by test harnesses.
	BareExecution
)

func (t ExecutionType) String() string {
	switch t {
	case Deploy:
		return "deploy"
	case BareExecution:
		return "bare"
	default:
		return "call"
	}
}
