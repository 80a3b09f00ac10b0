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

// Package common holds the identity, permission and error primitives shared
// by every other package in the host: addresses, the permission lattice, and
// the two-tier (recoverable/unrecoverable) error taxonomy described in the
// design document.
package common

import (
	"errors"
	"fmt"
)

// Kind distinguishes errors the executing contract can observe and react to
// from errors that unwind the entire transaction.
type Kind uint8

const (
	// Recoverable errors are returned to the guest through hv.set_error and
	// only revert the checkpoint opened by the frame that raised them.
	Recoverable Kind = iota
	// Unrecoverable errors propagate to the top of the call stack and are
	// never swallowed.
	Unrecoverable
)

func (k Kind) String() string {
	if k == Unrecoverable {
		return "unrecoverable"
	}
	return "recoverable"
}

// baseCode is the first numeric code handed out to a recoverable error.
// Codes are assigned in declaration order below and are stable: once
// published, a code must never be reassigned to a different error.
const baseCode = 0x8000_0001

// Error is the host's structured error type. Every error that crosses a
// component boundary in this module is a *Error; TopLevelError is the one
// constructor that wraps another *Error inside it.
type Error struct {
	kind Kind
	code uint32
	msg  string
	wrapped error
}

func (e *Error) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("%s (code=0x%08x): %v", e.msg, e.code, e.wrapped)
	}
	return fmt.Sprintf("%s (code=0x%08x)", e.msg, e.code)
}

// Unwrap supports errors.Is / errors.As against the wrapped cause, if any.
func (e *Error) Unwrap() error { return e.wrapped }

// Code returns the stable numeric code identifying this error's kind.
func (e *Error) Code() uint32 { return e.code }

// IsRecoverable reports whether the contract can observe this error.
func (e *Error) IsRecoverable() bool { return e.kind == Recoverable }

func newRecoverable(code uint32, msg string) *Error {
	return &Error{kind: Recoverable, code: code, msg: msg}
}

func newUnrecoverable(code uint32, msg string) *Error {
	return &Error{kind: Unrecoverable, code: code, msg: msg}
}

// Recoverable error family. Codes are assigned sequentially starting at
// baseCode; do not reorder.
var (
	ErrItemDoesntExist          = newRecoverable(baseCode+0, "item doesn't exist")
	ErrInvalidSystemFunction    = newRecoverable(baseCode+1, "invalid system function")
	ErrInvalidCoMapAccess       = newRecoverable(baseCode+2, "invalid comap access")
	ErrLowTokenBalance          = newRecoverable(baseCode+3, "low token balance")
	ErrRequiresPermissionSelfAccess     = newRecoverable(baseCode+4, "requires self-access permission")
	ErrRequiresPermissionExternalAccess = newRecoverable(baseCode+5, "requires external-access permission")
	ErrRequiresPermissionSelfMod        = newRecoverable(baseCode+6, "requires self-modify permission")
	ErrRequiresPermissionExternalMod    = newRecoverable(baseCode+7, "requires external-modify permission")
	ErrPureCallOfImpureContract = newRecoverable(baseCode+8, "pure call of impure contract")
	ErrInvalidVM                = newRecoverable(baseCode+9, "invalid vm version")
	ErrStateOutOfRent           = newRecoverable(baseCode+10, "state out of rent")
)

// Unrecoverable error family. These terminate the whole transaction.
var (
	ErrNotImplemented         = newUnrecoverable(baseCode+100, "not implemented")
	ErrContextIndexEmpty      = newUnrecoverable(baseCode+101, "context index empty")
	ErrDatabaseCommitError    = newUnrecoverable(baseCode+102, "database commit error")
	ErrErrorInitializingVM    = newUnrecoverable(baseCode+103, "error initializing vm")
	ErrOutOfGas               = newUnrecoverable(baseCode+104, "out of gas")
	ErrInvalidElementOperation = newUnrecoverable(baseCode+105, "invalid element operation")
	ErrDeveloperError         = newUnrecoverable(baseCode+106, "developer error")
	ErrElementBorrowed        = newUnrecoverable(baseCode+107, "element already borrowed")
	ErrReservedFeatureID      = newUnrecoverable(baseCode+108, "feature id is reserved")
)

// TopLevelError wraps a recoverable error that escaped the outermost call
// frame. A recoverable error can never silently terminate a transaction:
// once it reaches depth 0 it is wrapped here and becomes unrecoverable.
func TopLevelError(inner *Error) *Error {
	wrapped := newUnrecoverable(baseCode+200, fmt.Sprintf("top level error: %s", inner.msg))
	wrapped.wrapped = inner
	return wrapped
}

// Is reports whether err is (or wraps) a *Error with the same code as target,
// so callers can write errors.Is(err, common.ErrItemDoesntExist).
func (e *Error) Is(target error) bool {
	var te *Error
	if errors.As(target, &te) {
		return te.code == e.code
	}
	return false
}
