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

// Package element implements CallSystem, the (feature_id, function_id)
// dispatcher, along with the two hard-wired elements (global storage,
// logging) and the re-entrancy guard that backs every element borrow.
package element

import (
	"github.com/earlgreytech/neutron-host/codata"
	"github.com/earlgreytech/neutron-host/common"
)

// GLOBAL_STORAGE_FEATURE and LOGGING_FEATURE are the two element IDs that
// are always present and cannot be registered over.
const (
	GlobalStorageFeature uint32 = 2
	LoggingFeature       uint32 = 4
)

// functionPrivateBit is the top bit of a function ID; a public Call masks
// it off before dispatch, making privately-numbered functions unreachable
// from guest code.
const functionPrivateBit uint32 = 1 << 31

// ResultKind distinguishes the two shapes an element's response can take.
type ResultKind uint8

const (
	// ResultValue means the element fully handled the call; Value is the
	// guest's syscall return.
	ResultValue ResultKind = iota
	// ResultNewCall means the element pushed a new nested context onto
	// CoData and the Manager must recurse to run it.
	ResultNewCall
)

// ElementResult is the outcome of a single system_call.
type ElementResult struct {
	Kind  ResultKind
	Value uint64
}

// Result builds a ResultValue outcome.
func Result(v uint64) ElementResult { return ElementResult{Kind: ResultValue, Value: v} }

// NewCall builds a ResultNewCall outcome.
func NewCall() ElementResult { return ElementResult{Kind: ResultNewCall} }

// Element is a pluggable host-service module. Implementations must be safe
// to call only while holding their own borrow (CallSystem enforces this;
// Element implementations do not need their own locking for the
// single-borrow invariant, only for state genuinely shared across borrows;
// GlobalState itself has no internal locking).
type Element interface {
	SystemCall(cs *CallSystem, cd *codata.CoData, function uint32) (ElementResult, *common.Error)
}
